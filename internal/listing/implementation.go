// internal/listing/implementation.go
package listing

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"foodwise/pkg/eventstore"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// service implements the Service interface.
type service struct {
	eventStore *eventstore.EventStore
	db         *sql.DB
}

// NewService creates a new listing service instance.
func NewService(es *eventstore.EventStore, db *sql.DB) Service {
	return &service{
		eventStore: es,
		db:         db,
	}
}

// CreateListing validates and persists a new listing with status available.
func (s *service) CreateListing(ctx context.Context, req CreateRequest) (*Listing, error) {
	for field, value := range map[string]string{
		"item":     req.Item,
		"qty":      req.Qty,
		"location": req.Location,
		"contact":  req.Contact,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, &ValidationError{Field: field}
		}
	}

	mode := req.Mode
	if mode != ModeSell {
		mode = ModeDonate
	}
	price := req.Price
	if mode == ModeDonate {
		price = 0
	}

	var expiry time.Time
	if req.Expiry != "" {
		parsed, err := time.Parse("2006-01-02", req.Expiry)
		if err != nil {
			return nil, &ValidationError{Field: "expiry"}
		}
		expiry = parsed
	}

	now := time.Now().UTC()
	item := &Listing{
		ID:           uuid.New(),
		OwnerID:      req.OwnerID,
		Item:         strings.TrimSpace(req.Item),
		Qty:          strings.TrimSpace(req.Qty),
		Mode:         mode,
		Price:        price,
		Expiry:       expiry,
		PickupWindow: strings.TrimSpace(req.PickupWindow),
		Location:     strings.TrimSpace(req.Location),
		Contact:      strings.TrimSpace(req.Contact),
		Dietary:      req.Dietary,
		Notes:        req.Notes,
		Status:       StatusAvailable,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := `
		INSERT INTO listings (id, owner_id, item, qty, mode, price, expiry, pickup_window, location, contact, dietary, notes, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	var expiryArg interface{}
	if !item.Expiry.IsZero() {
		expiryArg = item.Expiry
	}
	_, err := s.db.ExecContext(ctx, query,
		item.ID, item.OwnerID, item.Item, item.Qty, item.Mode, item.Price,
		expiryArg, item.PickupWindow, item.Location, item.Contact,
		pq.Array(item.Dietary), item.Notes, item.Status, item.Version,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}

	s.journal(ctx, item.ID, "ListingPosted", ListingPostedEvent{
		ID:      item.ID,
		OwnerID: item.OwnerID,
		Item:    item.Item,
		Qty:     item.Qty,
		Mode:    item.Mode,
		Price:   item.Price,
	})

	return item, nil
}

// GetListing retrieves a listing by its ID.
func (s *service) GetListing(ctx context.Context, id uuid.UUID) (*Listing, error) {
	query := selectColumns + ` WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, id)
	item, err := scanListing(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return item, nil
}

// ListListings returns listings newest first, optionally filtered by status.
func (s *service) ListListings(ctx context.Context, status string) ([]*Listing, error) {
	query := selectColumns
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var items []*Listing
	for rows.Next() {
		item, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return items, nil
}

// WithdrawListing sets an available listing to unavailable. Withdrawing an
// already-unavailable listing is a no-op; a confirmed listing cannot be
// withdrawn.
func (s *service) WithdrawListing(ctx context.Context, id, ownerID uuid.UUID) error {
	current, err := s.GetListing(ctx, id)
	if err != nil {
		return err
	}
	if current.OwnerID != ownerID {
		return ErrNotOwner
	}

	switch current.Status {
	case StatusUnavailable:
		return nil
	case StatusConfirmed:
		return ErrAlreadyConfirmed
	}

	// Conditional update so a racing claim and a withdraw serialize on the
	// status column; the affected-row count tells us who won.
	res, err := s.db.ExecContext(ctx, `
		UPDATE listings
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, StatusUnavailable, id, StatusAvailable)
	if err != nil {
		return fmt.Errorf("withdraw listing: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("withdraw listing: %w", err)
	}
	if affected == 0 {
		// Lost the race: re-read to see what the listing became.
		after, err := s.GetListing(ctx, id)
		if err != nil {
			return err
		}
		if after.Status == StatusConfirmed {
			return ErrAlreadyConfirmed
		}
		return nil
	}

	s.journal(ctx, id, "ListingWithdrawn", ListingWithdrawnEvent{ID: id, OwnerID: ownerID})
	return nil
}

// DeleteListing removes a listing and all claims that reference it in one
// transaction.
func (s *service) DeleteListing(ctx context.Context, id, ownerID uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var storedOwner uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT owner_id FROM listings WHERE id = $1 FOR UPDATE`, id).Scan(&storedOwner)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("lock listing: %w", err)
	}
	if storedOwner != ownerID {
		return ErrNotOwner
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE listing_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete claims: %w", err)
	}
	claimsRemoved, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.journal(ctx, id, "ListingDeleted", ListingDeletedEvent{
		ID:            id,
		OwnerID:       ownerID,
		ClaimsRemoved: int(claimsRemoved),
	})
	return nil
}

// journal appends a provenance event. The read model is the authority; a
// journal failure is logged, not surfaced to the caller.
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

const selectColumns = `
	SELECT id, owner_id, item, qty, mode, price, expiry, pickup_window, location, contact, dietary, notes, status, version, created_at, updated_at
	FROM listings`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*Listing, error) {
	item := &Listing{}
	var expiry sql.NullTime
	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.Item,
		&item.Qty,
		&item.Mode,
		&item.Price,
		&expiry,
		&item.PickupWindow,
		&item.Location,
		&item.Contact,
		pq.Array(&item.Dietary),
		&item.Notes,
		&item.Status,
		&item.Version,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if expiry.Valid {
		item.Expiry = expiry.Time
	}
	return item, nil
}
