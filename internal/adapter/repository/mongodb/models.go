package mongodb

import (
	"time"

	"github.com/mohashafici/DalagHub/internal/marketplace/domain"
)

// Documents use string UUIDs as _id so listing ids and identity ids share
// one representation across Mongo, Redis and the HTTP layer.

type listingDocument struct {
	ID          string               `bson:"_id"`
	Title       string               `bson:"title"`
	Category    domain.Category      `bson:"category"`
	Subcategory string               `bson:"subcategory"`
	Quantity    string               `bson:"quantity"`
	Price       string               `bson:"price"`
	Description string               `bson:"description,omitempty"`
	Images      []string             `bson:"images"`
	Location    string               `bson:"location"`
	Status      domain.ListingStatus `bson:"status"`
	SellerID    string               `bson:"seller_id"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

type profileDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email,omitempty"`
	Phone     string    `bson:"phone,omitempty"`
	Location  string    `bson:"location"`
	CreatedAt time.Time `bson:"created_at"`
}

type roleDocument struct {
	UserID string      `bson:"user_id"`
	Role   domain.Role `bson:"role"`
}

type reportDocument struct {
	ID          string              `bson:"_id"`
	ProductID   string              `bson:"product_id"`
	ReporterID  string              `bson:"reporter_id,omitempty"`
	Reason      domain.ReportReason `bson:"reason"`
	Description string              `bson:"description,omitempty"`
	CreatedAt   time.Time           `bson:"created_at"`
}

func toListingDocument(l *domain.Listing) *listingDocument {
	if l == nil {
		return nil
	}
	return &listingDocument{
		ID:          l.ID,
		Title:       l.Title,
		Category:    l.Category,
		Subcategory: l.Subcategory,
		Quantity:    l.Quantity,
		Price:       l.Price,
		Description: l.Description,
		Images:      l.Images,
		Location:    l.Location,
		Status:      l.Status,
		SellerID:    l.SellerID,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func toDomainListing(d *listingDocument) *domain.Listing {
	if d == nil {
		return nil
	}
	return &domain.Listing{
		ID:          d.ID,
		Title:       d.Title,
		Category:    d.Category,
		Subcategory: d.Subcategory,
		Quantity:    d.Quantity,
		Price:       d.Price,
		Description: d.Description,
		Images:      d.Images,
		Location:    d.Location,
		Status:      d.Status,
		SellerID:    d.SellerID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	listings := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		listings = append(listings, toDomainListing(doc))
	}
	return listings
}

func toProfileDocument(p *domain.Profile) *profileDocument {
	if p == nil {
		return nil
	}
	return &profileDocument{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Location:  p.Location,
		CreatedAt: p.CreatedAt,
	}
}

func toDomainProfile(d *profileDocument) *domain.Profile {
	if d == nil {
		return nil
	}
	return &domain.Profile{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Location:  d.Location,
		CreatedAt: d.CreatedAt,
	}
}
