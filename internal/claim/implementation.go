// internal/claim/implementation.go
package claim

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"foodwise/internal/clients"
	"foodwise/internal/listing"
	"foodwise/pkg/eventstore"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// service implements the Service interface.
type service struct {
	eventStore       *eventstore.EventStore
	db               *sql.DB
	listingClient    *clients.ListingClient
	accountClient    *clients.AccountClient
	rejectSelfClaims bool
	tracer           trace.Tracer
}

// NewService creates a new claim ledger instance. rejectSelfClaims controls
// whether an owner may claim their own listing; the policy is deliberately
// configurable.
func NewService(es *eventstore.EventStore, db *sql.DB, listingClient *clients.ListingClient, accountClient *clients.AccountClient, rejectSelfClaims bool) Service {
	return &service{
		eventStore:       es,
		db:               db,
		listingClient:    listingClient,
		accountClient:    accountClient,
		rejectSelfClaims: rejectSelfClaims,
		tracer:           otel.Tracer("foodwise/claim"),
	}
}

// Claim attempts the one-shot available-to-confirmed transition. The status
// check, the conditional status update and the claim row insert run in a
// single transaction; the affected-row count of the conditional update
// decides the race between concurrent claimants. Rejected attempts are
// persisted with their reason.
func (s *service) Claim(ctx context.Context, listingID, claimantID uuid.UUID, contact, location string) (*Claim, error) {
	ctx, span := s.tracer.Start(ctx, "claim.claim",
		trace.WithAttributes(
			attribute.String("listing.id", listingID.String()),
			attribute.String("claimant.id", claimantID.String()),
		),
	)
	defer span.End()

	// Validate the claimant before touching the listing row.
	if s.accountClient != nil {
		acct, err := s.accountClient.GetAccount(ctx, claimantID)
		if err != nil {
			return nil, fmt.Errorf("failed to get claimant account: %w", err)
		}
		if acct.Status != "active" {
			return nil, fmt.Errorf("claimant account is not active")
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerID uuid.UUID
	var status string
	err = tx.QueryRowContext(ctx, `SELECT owner_id, status FROM listings WHERE id = $1`, listingID).Scan(&ownerID, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, listing.ErrNotFound
		}
		return nil, fmt.Errorf("load listing: %w", err)
	}

	var reason string
	switch {
	case status != listing.StatusAvailable:
		reason = ReasonAlreadyClaimed
	case s.rejectSelfClaims && ownerID == claimantID:
		reason = ReasonSelfClaim
	default:
		var duplicate bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM claims WHERE listing_id = $1 AND claimant_id = $2)
		`, listingID, claimantID).Scan(&duplicate)
		if err != nil {
			return nil, fmt.Errorf("check duplicate claimant: %w", err)
		}
		if duplicate {
			reason = ReasonDuplicateClaimant
		}
	}

	if reason == "" {
		res, err := tx.ExecContext(ctx, `
			UPDATE listings
			SET status = $1, version = version + 1, updated_at = NOW()
			WHERE id = $2 AND status = $3
		`, listing.StatusConfirmed, listingID, listing.StatusAvailable)
		if err != nil {
			return nil, fmt.Errorf("confirm listing: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("confirm listing: %w", err)
		}
		if affected == 0 {
			// A concurrent claimant or withdraw won; this attempt is
			// recorded as rejected.
			reason = ReasonAlreadyClaimed
		}
	}

	c := &Claim{
		ID:         uuid.New(),
		ListingID:  listingID,
		ClaimantID: claimantID,
		Contact:    contact,
		Location:   location,
		Outcome:    OutcomeAccepted,
		ClaimedAt:  time.Now().UTC(),
	}
	if reason != "" {
		c.Outcome = OutcomeRejected
		c.Reason = reason
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO claims (id, listing_id, claimant_id, contact, location, outcome, reason, claimed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.ListingID, c.ClaimantID, c.Contact, c.Location, c.Outcome, c.Reason, c.ClaimedAt)
	if err != nil {
		return nil, fmt.Errorf("insert claim: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	span.SetAttributes(
		attribute.String("claim.outcome", c.Outcome),
		attribute.String("claim.reason", c.Reason),
	)

	if reason != "" {
		s.journal(ctx, listingID, "ClaimRejected", ClaimRejectedEvent{
			ClaimID:    c.ID,
			ListingID:  listingID,
			ClaimantID: claimantID,
			Reason:     reason,
		})
		return nil, rejectionError(reason)
	}

	s.journal(ctx, listingID, "ListingClaimed", ListingClaimedEvent{
		ClaimID:    c.ID,
		ListingID:  listingID,
		ClaimantID: claimantID,
	})
	return c, nil
}

// ClaimsFor returns all recorded attempts for a listing, newest first.
func (s *service) ClaimsFor(ctx context.Context, listingID uuid.UUID) ([]*Claim, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, listing_id, claimant_id, contact, location, outcome, reason, claimed_at
		FROM claims
		WHERE listing_id = $1
		ORDER BY claimed_at DESC
	`, listingID)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var out []*Claim
	for rows.Next() {
		c := &Claim{}
		err := rows.Scan(&c.ID, &c.ListingID, &c.ClaimantID, &c.Contact, &c.Location, &c.Outcome, &c.Reason, &c.ClaimedAt)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}
	return out, nil
}

// MarkUnavailable delegates withdrawal to the listing store. The listing
// store's conditional update serializes it against pending claims on the same
// row.
func (s *service) MarkUnavailable(ctx context.Context, listingID, ownerID uuid.UUID) error {
	return s.listingClient.Withdraw(ctx, listingID, ownerID)
}

func rejectionError(reason string) error {
	switch reason {
	case ReasonSelfClaim:
		return ErrSelfClaim
	case ReasonDuplicateClaimant:
		return ErrDuplicateClaimant
	default:
		return ErrAlreadyClaimed
	}
}

// journal appends a provenance event; the committed claims table is the
// authority, so append failures are logged only.
func (s *service) journal(ctx context.Context, aggregateID uuid.UUID, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("marshal %s event for %s: %v", eventType, aggregateID, err)
		return
	}
	version, err := s.eventStore.CurrentVersion(ctx, aggregateID)
	if err != nil {
		log.Printf("journal version for %s: %v", aggregateID, err)
		return
	}
	err = s.eventStore.Append(ctx, aggregateID, "listing", version, []eventstore.Event{
		{EventType: eventType, EventData: jsonData},
	})
	if err != nil {
		log.Printf("journal %s for %s: %v", eventType, aggregateID, err)
	}
}
