package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mohashafici/DalagHub/internal/marketplace/domain"
)

type RoleRepository struct {
	collection *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{collection: db.Collection("user_roles")}
}

func (r *RoleRepository) Add(ctx context.Context, userID string, role domain.Role) error {
	_, err := r.collection.InsertOne(ctx, roleDocument{UserID: userID, Role: role})
	return err
}

func (r *RoleRepository) FindByUser(ctx context.Context, userID string) ([]domain.Role, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	var docs []roleDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	roles := make([]domain.Role, 0, len(docs))
	for _, doc := range docs {
		roles = append(roles, doc.Role)
	}
	return roles, nil
}
