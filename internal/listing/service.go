// internal/listing/service.go
package listing

import (
	"context"

	"github.com/google/uuid"
)

// CreateRequest carries the fields of a new listing. Item, Qty, Location and
// Contact are required.
type CreateRequest struct {
	OwnerID      uuid.UUID
	Item         string
	Qty          string
	Mode         string
	Price        int
	Expiry       string
	PickupWindow string
	Location     string
	Contact      string
	Dietary      []string
	Notes        string
}

// Service defines the interface for the listing store.
type Service interface {
	CreateListing(ctx context.Context, req CreateRequest) (*Listing, error)
	GetListing(ctx context.Context, id uuid.UUID) (*Listing, error)
	ListListings(ctx context.Context, status string) ([]*Listing, error)
	WithdrawListing(ctx context.Context, id, ownerID uuid.UUID) error
	DeleteListing(ctx context.Context, id, ownerID uuid.UUID) error
}
