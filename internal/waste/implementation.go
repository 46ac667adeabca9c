// internal/waste/implementation.go
package waste

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
)

// service implements the Service interface.
type service struct {
	eventStore *eventstore.EventStore
	db         *sql.DB
}

// NewService creates a new waste tracker instance.
func NewService(es *eventstore.EventStore, db *sql.DB) Service {
	return &service{
		eventStore: es,
		db:         db,
	}
}

// LogWaste records one discarded-food entry.
func (s *service) LogWaste(ctx context.Context, accountID uuid.UUID, item string, qty float64, units, reason string) (*Entry, error) {
	if strings.TrimSpace(item) == "" {
		return nil, &ValidationError{Field: "item must not be empty"}
	}
	if qty <= 0 {
		return nil, &ValidationError{Field: "qty must be positive"}
	}

	switch reason {
	case ReasonOvercooked, ReasonForgotten, ReasonSpoiled, ReasonLeftover:
	default:
		reason = ReasonOther
	}

	entry := &Entry{
		ID:        uuid.New(),
		AccountID: accountID,
		Item:      strings.TrimSpace(item),
		Qty:       qty,
		Units:     units,
		Reason:    reason,
		LoggedAt:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO waste_log (id, account_id, item, qty, units, reason, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.AccountID, entry.Item, entry.Qty, entry.Units, entry.Reason, entry.LoggedAt)
	if err != nil {
		return nil, fmt.Errorf("insert waste entry: %w", err)
	}

	s.journal(ctx, entry)
	return entry, nil
}

// Entries returns an account's waste log, newest first.
func (s *service) Entries(ctx context.Context, accountID uuid.UUID) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, item, qty, units, reason, logged_at
		FROM waste_log
		WHERE account_id = $1
		ORDER BY logged_at DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list waste entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		err := rows.Scan(&e.ID, &e.AccountID, &e.Item, &e.Qty, &e.Units, &e.Reason, &e.LoggedAt)
		if err != nil {
			return nil, fmt.Errorf("scan waste entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate waste entries: %w", err)
	}
	return entries, nil
}

// TotalsByReason sums logged quantity per reason for one account.
func (s *service) TotalsByReason(ctx context.Context, accountID uuid.UUID) ([]ReasonTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT reason, SUM(qty)
		FROM waste_log
		WHERE account_id = $1
		GROUP BY reason
		ORDER BY SUM(qty) DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("aggregate waste: %w", err)
	}
	defer rows.Close()

	var totals []ReasonTotal
	for rows.Next() {
		var rt ReasonTotal
		if err := rows.Scan(&rt.Reason, &rt.Total); err != nil {
			return nil, fmt.Errorf("scan waste total: %w", err)
		}
		totals = append(totals, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate waste totals: %w", err)
	}
	return totals, nil
}

func (s *service) journal(ctx context.Context, entry *Entry) {
	jsonData, err := json.Marshal(WasteLoggedEvent{
		ID:        entry.ID,
		AccountID: entry.AccountID,
		Item:      entry.Item,
		Qty:       entry.Qty,
		Reason:    entry.Reason,
	})
	if err != nil {
		log.Printf("marshal WasteLogged event for %s: %v", entry.ID, err)
		return
	}
	err = s.eventStore.Append(ctx, entry.ID, "waste_entry", 0, []eventstore.Event{
		{EventType: "WasteLogged", EventData: jsonData},
	})
	if err != nil {
		log.Printf("journal WasteLogged for %s: %v", entry.ID, err)
	}
}
