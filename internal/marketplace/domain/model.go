package domain

import "time"

type ListingStatus string

const (
	StatusActive ListingStatus = "active"
	StatusSold   ListingStatus = "sold"
)

type Category string

const (
	CategoryCrops     Category = "crops"
	CategoryLivestock Category = "livestock"
)

// PlaceholderImage substitutes for listings saved without photos so the
// images slice is never empty at render time.
const PlaceholderImage = "/placeholder.svg"

// DefaultPrice is stored when the seller leaves the price field blank.
const DefaultPrice = "Negotiable"

// Listing is a single product-for-sale record (crop or livestock lot).
// SellerName and SellerPhone are joined from the seller's profile at fetch
// time; they are a snapshot and can go stale until the next refetch.
type Listing struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Category    Category      `json:"category"`
	Subcategory string        `json:"subcategory"`
	Quantity    string        `json:"quantity"`
	Price       string        `json:"price"`
	Description string        `json:"description,omitempty"`
	Images      []string      `json:"images"`
	Location    string        `json:"location"`
	Status      ListingStatus `json:"status"`
	SellerID    string        `json:"seller_id"`
	SellerName  string        `json:"seller_name,omitempty"`
	SellerPhone string        `json:"seller_phone,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Profile is the display/contact record associated with an identity.
// It is created at registration and read-only from this service afterwards.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

type ReportReason string

const (
	ReportReasonSpam          ReportReason = "spam"
	ReportReasonInappropriate ReportReason = "inappropriate"
	ReportReasonFraud         ReportReason = "fraud"
	ReportReasonDuplicate     ReportReason = "duplicate"
	ReportReasonOther         ReportReason = "other"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReportReasonSpam, ReportReasonInappropriate, ReportReasonFraud,
		ReportReasonDuplicate, ReportReasonOther:
		return true
	}
	return false
}

// Report is a buyer-submitted flag against a listing for moderation review.
// Write-only: this service inserts reports and never reads them back.
type Report struct {
	ID          string       `json:"id"`
	ProductID   string       `json:"product_id"`
	ReporterID  string       `json:"reporter_id,omitempty"`
	Reason      ReportReason `json:"reason"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Identity is the authenticated principal managed by the auth service.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
