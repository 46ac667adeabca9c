// internal/waste/domain.go
package waste

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Waste reasons offered by the tracker.
const (
	ReasonOvercooked = "Overcooked"
	ReasonForgotten  = "Forgotten"
	ReasonSpoiled    = "Spoiled"
	ReasonLeftover   = "Leftover not used"
	ReasonOther      = "Other"
)

// ValidationError reports an unusable waste entry.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid waste entry: %s", e.Field)
}

// Entry is one logged instance of discarded food.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	Item      string    `json:"item"`
	Qty       float64   `json:"qty"`
	Units     string    `json:"units"`
	Reason    string    `json:"reason"`
	LoggedAt  time.Time `json:"logged_at"`
}

// ReasonTotal aggregates logged quantity per waste reason.
type ReasonTotal struct {
	Reason string  `json:"reason"`
	Total  float64 `json:"total"`
}

// WasteLoggedEvent is journaled per logged entry.
type WasteLoggedEvent struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	Item      string    `json:"item"`
	Qty       float64   `json:"qty"`
	Reason    string    `json:"reason"`
}
