// internal/claim/domain.go
package claim

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Claim outcomes. Every attempt is persisted; only an accepted claim changed
// the listing's status.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Rejection reasons recorded on rejected attempts.
const (
	ReasonAlreadyClaimed    = "already_claimed"
	ReasonSelfClaim         = "self_claim"
	ReasonDuplicateClaimant = "duplicate_claimant"
)

var (
	ErrAlreadyClaimed    = errors.New("listing is no longer available")
	ErrSelfClaim         = errors.New("owner cannot claim their own listing")
	ErrDuplicateClaimant = errors.New("claimant already has a claim on this listing")
)

// Claim records one actor's attempt to take possession of a listing.
type Claim struct {
	ID         uuid.UUID `json:"id"`
	ListingID  uuid.UUID `json:"listing_id"`
	ClaimantID uuid.UUID `json:"claimant_id"`
	Contact    string    `json:"contact,omitempty"`
	Location   string    `json:"location,omitempty"`
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	ClaimedAt  time.Time `json:"claimed_at"`
}

// ListingClaimedEvent is journaled when a claim is accepted and the listing
// flips to confirmed.
type ListingClaimedEvent struct {
	ClaimID    uuid.UUID `json:"claim_id"`
	ListingID  uuid.UUID `json:"listing_id"`
	ClaimantID uuid.UUID `json:"claimant_id"`
}

// ClaimRejectedEvent is journaled when an attempt is refused.
type ClaimRejectedEvent struct {
	ClaimID    uuid.UUID `json:"claim_id"`
	ListingID  uuid.UUID `json:"listing_id"`
	ClaimantID uuid.UUID `json:"claimant_id"`
	Reason     string    `json:"reason"`
}
