package waste

import (
	"context"
	"testing"

	"foodwise/internal/testdb"
	"foodwise/pkg/eventstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	db := testdb.Connect(t)
	return NewService(eventstore.NewEventStore(db), db)
}

func TestLogWasteValidation(t *testing.T) {
	svc := NewService(nil, nil)
	ctx := context.Background()

	_, err := svc.LogWaste(ctx, uuid.New(), "   ", 1, "kg", ReasonSpoiled)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.LogWaste(ctx, uuid.New(), "Rice", 0, "kg", ReasonSpoiled)
	require.ErrorAs(t, err, &verr)

	_, err = svc.LogWaste(ctx, uuid.New(), "Rice", -2, "kg", ReasonSpoiled)
	require.ErrorAs(t, err, &verr)
}

func TestLogWasteCoercesUnknownReason(t *testing.T) {
	svc := newTestService(t)

	entry, err := svc.LogWaste(context.Background(), uuid.New(), "Rice", 1.5, "kg", "dropped it")
	require.NoError(t, err)
	assert.Equal(t, ReasonOther, entry.Reason)
}

func TestEntriesReturnsOwnLogOnly(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	accountID := uuid.New()

	_, err := svc.LogWaste(ctx, accountID, "Rice", 1, "kg", ReasonLeftover)
	require.NoError(t, err)
	_, err = svc.LogWaste(ctx, accountID, "Milk", 0.5, "l", ReasonSpoiled)
	require.NoError(t, err)
	_, err = svc.LogWaste(ctx, uuid.New(), "Bread", 2, "loaves", ReasonForgotten)
	require.NoError(t, err)

	entries, err := svc.Entries(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, accountID, e.AccountID)
	}
}

func TestTotalsByReason(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	accountID := uuid.New()

	_, err := svc.LogWaste(ctx, accountID, "Rice", 2, "kg", ReasonSpoiled)
	require.NoError(t, err)
	_, err = svc.LogWaste(ctx, accountID, "Dal", 1, "kg", ReasonSpoiled)
	require.NoError(t, err)
	_, err = svc.LogWaste(ctx, accountID, "Bread", 0.5, "kg", ReasonOvercooked)
	require.NoError(t, err)

	totals, err := svc.TotalsByReason(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	// Ordered by summed quantity, largest first.
	assert.Equal(t, ReasonSpoiled, totals[0].Reason)
	assert.InDelta(t, 3.0, totals[0].Total, 1e-9)
	assert.Equal(t, ReasonOvercooked, totals[1].Reason)
	assert.InDelta(t, 0.5, totals[1].Total, 1e-9)
}
