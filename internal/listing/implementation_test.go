package listing

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

func validRequest(ownerID uuid.UUID) CreateRequest {
	return CreateRequest{
		OwnerID:  ownerID,
		Item:     "Veg biryani",
		Qty:      "5 plates",
		Mode:     ModeDonate,
		Location: "Campus Block A",
		Contact:  "555-0101",
		Dietary:  []string{"veg"},
	}
}

func TestCreateListingValidation(t *testing.T) {
	svc := NewService(nil, nil)

	cases := []struct {
		name   string
		mutate func(*CreateRequest)
		field  string
	}{
		{"blank item", func(r *CreateRequest) { r.Item = "  " }, "item"},
		{"blank qty", func(r *CreateRequest) { r.Qty = "" }, "qty"},
		{"blank location", func(r *CreateRequest) { r.Location = "" }, "location"},
		{"blank contact", func(r *CreateRequest) { r.Contact = "" }, "contact"},
		{"bad expiry", func(r *CreateRequest) { r.Expiry = "tomorrow" }, "expiry"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest(uuid.New())
			tc.mutate(&req)

			_, err := svc.CreateListing(context.Background(), req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestCreateListingStartsAvailable(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateListing(ctx, validRequest(uuid.New()))
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, created.Status)
	assert.Equal(t, 1, created.Version)

	fetched, err := svc.GetListing(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Veg biryani", fetched.Item)
	assert.Equal(t, []string{"veg"}, fetched.Dietary)
}

func TestCreateListingDonateForcesZeroPrice(t *testing.T) {
	svc := newTestService(t)

	req := validRequest(uuid.New())
	req.Mode = ModeDonate
	req.Price = 250

	created, err := svc.CreateListing(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, created.Price)
}

func TestGetListingNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetListing(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListListingsFiltersByStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	open, err := svc.CreateListing(ctx, validRequest(owner))
	require.NoError(t, err)
	withdrawn, err := svc.CreateListing(ctx, validRequest(owner))
	require.NoError(t, err)
	require.NoError(t, svc.WithdrawListing(ctx, withdrawn.ID, owner))

	available, err := svc.ListListings(ctx, StatusAvailable)
	require.NoError(t, err)

	ids := make(map[uuid.UUID]bool)
	for _, item := range available {
		assert.Equal(t, StatusAvailable, item.Status)
		ids[item.ID] = true
	}
	assert.True(t, ids[open.ID])
	assert.False(t, ids[withdrawn.ID])
}

func TestWithdrawListingIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.CreateListing(ctx, validRequest(owner))
	require.NoError(t, err)

	require.NoError(t, svc.WithdrawListing(ctx, created.ID, owner))
	require.NoError(t, svc.WithdrawListing(ctx, created.ID, owner))

	fetched, err := svc.GetListing(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusUnavailable, fetched.Status)
	assert.Equal(t, 2, fetched.Version)
}

func TestWithdrawListingRequiresOwner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateListing(ctx, validRequest(uuid.New()))
	require.NoError(t, err)

	err = svc.WithdrawListing(ctx, created.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotOwner)

	fetched, err := svc.GetListing(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, fetched.Status)
}

func TestWithdrawListingNotFound(t *testing.T) {
	svc := newTestService(t)

	err := svc.WithdrawListing(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithdrawConfirmedListingFails(t *testing.T) {
	db := testdb.Connect(t)
	svc := NewService(eventstore.NewEventStore(db), db)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.CreateListing(ctx, validRequest(owner))
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `UPDATE listings SET status = $1 WHERE id = $2`, StatusConfirmed, created.ID)
	require.NoError(t, err)

	err = svc.WithdrawListing(ctx, created.ID, owner)
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
}

func TestDeleteListingCascadesToClaims(t *testing.T) {
	db := testdb.Connect(t)
	svc := NewService(eventstore.NewEventStore(db), db)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.CreateListing(ctx, validRequest(owner))
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO claims (id, listing_id, claimant_id, contact, location, outcome, reason, claimed_at)
		VALUES ($1, $2, $3, '555-0102', 'Block B', 'accepted', '', NOW())
	`, uuid.New(), created.ID, uuid.New())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteListing(ctx, created.ID, owner))

	_, err = svc.GetListing(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var remaining int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claims WHERE listing_id = $1`, created.ID).Scan(&remaining))
	assert.Equal(t, 0, remaining)
}

func TestDeleteListingRequiresOwner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateListing(ctx, validRequest(uuid.New()))
	require.NoError(t, err)

	err = svc.DeleteListing(ctx, created.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.GetListing(ctx, created.ID)
	require.NoError(t, err)
}

func TestDeleteListingNotFound(t *testing.T) {
	svc := newTestService(t)

	err := svc.DeleteListing(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
