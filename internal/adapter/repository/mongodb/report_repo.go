package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mohashafici/DalagHub/internal/marketplace/domain"
)

type ReportRepository struct {
	collection *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{collection: db.Collection("product_reports")}
}

func (r *ReportRepository) Insert(ctx context.Context, report *domain.Report) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, &reportDocument{
		ID:          report.ID,
		ProductID:   report.ProductID,
		ReporterID:  report.ReporterID,
		Reason:      report.Reason,
		Description: report.Description,
		CreatedAt:   report.CreatedAt,
	})
	return err
}
