// internal/waste/service.go
package waste

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the waste tracker.
type Service interface {
	LogWaste(ctx context.Context, accountID uuid.UUID, item string, qty float64, units, reason string) (*Entry, error)
	Entries(ctx context.Context, accountID uuid.UUID) ([]*Entry, error)
	TotalsByReason(ctx context.Context, accountID uuid.UUID) ([]ReasonTotal, error)
}
