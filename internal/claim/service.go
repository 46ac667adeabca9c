// internal/claim/service.go
package claim

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the claim ledger.
type Service interface {
	Claim(ctx context.Context, listingID, claimantID uuid.UUID, contact, location string) (*Claim, error)
	ClaimsFor(ctx context.Context, listingID uuid.UUID) ([]*Claim, error)
	MarkUnavailable(ctx context.Context, listingID, ownerID uuid.UUID) error
}
