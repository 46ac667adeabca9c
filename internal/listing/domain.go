// internal/listing/domain.go
package listing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Listing statuses. A listing starts available; confirmed and unavailable are
// terminal (only deletion removes them).
const (
	StatusAvailable   = "available"
	StatusConfirmed   = "confirmed"
	StatusUnavailable = "unavailable"
)

// Offer modes carried over from the posting form.
const (
	ModeDonate = "donate"
	ModeSell   = "sell"
)

var (
	ErrNotFound         = errors.New("listing not found")
	ErrNotOwner         = errors.New("requesting actor does not own this listing")
	ErrAlreadyConfirmed = errors.New("listing has already been confirmed")
)

// ValidationError reports a missing required field on a create request.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field %q is empty", e.Field)
}

// Listing is a posted offer of surplus food.
type Listing struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Item         string    `json:"item"`
	Qty          string    `json:"qty"`
	Mode         string    `json:"mode"`
	Price        int       `json:"price"`
	Expiry       time.Time `json:"expiry,omitempty"`
	PickupWindow string    `json:"pickup_window,omitempty"`
	Location     string    `json:"location"`
	Contact      string    `json:"contact"`
	Dietary      []string  `json:"dietary,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Status       string    `json:"status"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanTransition reports whether a listing may move from one status to
// another. Transitions are one-shot: once a listing leaves available it never
// returns, and terminal states only leave the system via deletion.
func CanTransition(from, to string) bool {
	if from == StatusAvailable {
		return to == StatusConfirmed || to == StatusUnavailable
	}
	return false
}

// ListingPostedEvent is journaled when an owner creates a listing.
type ListingPostedEvent struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`
	Item    string    `json:"item"`
	Qty     string    `json:"qty"`
	Mode    string    `json:"mode"`
	Price   int       `json:"price"`
}

// ListingWithdrawnEvent is journaled when an owner withdraws a listing.
type ListingWithdrawnEvent struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// ListingDeletedEvent is journaled when an owner deletes a listing; the
// delete cascades to its claims.
type ListingDeletedEvent struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	ClaimsRemoved int       `json:"claims_removed"`
}
