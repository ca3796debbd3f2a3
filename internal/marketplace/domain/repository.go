package domain

import "context"

type ListingRepository interface {
	Insert(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status ListingStatus) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	// FindActive returns every active listing ordered by creation time
	// descending.
	FindActive(ctx context.Context) ([]*Listing, error)
	// FindBySeller returns the seller's listings in any status, newest first.
	FindBySeller(ctx context.Context, sellerID string) ([]*Listing, error)
}

type ProfileRepository interface {
	Insert(ctx context.Context, profile *Profile) error
	FindByID(ctx context.Context, id string) (*Profile, error)
	// FindByIDs batch-resolves profiles for the given ids, keyed by id.
	// Missing ids are simply absent from the result.
	FindByIDs(ctx context.Context, ids []string) (map[string]*Profile, error)
}

type RoleRepository interface {
	// Add inserts a single role assignment row for the user.
	Add(ctx context.Context, userID string, role Role) error
	FindByUser(ctx context.Context, userID string) ([]Role, error)
}

type ReportRepository interface {
	Insert(ctx context.Context, report *Report) error
}

// ImageStorage is the object storage boundary. Keys are namespaced per
// identity; the returned string is a public URL.
type ImageStorage interface {
	Upload(ctx context.Context, identityID, filename string, data []byte) (string, error)
	UploadMultiple(ctx context.Context, identityID string, files []UploadFile) []string
}

type UploadFile struct {
	Name string
	Data []byte
}
