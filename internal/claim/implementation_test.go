package claim

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"foodwise/internal/listing"
	"foodwise/internal/testdb"
	"foodwise/pkg/eventstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type claimFixture struct {
	db       *sql.DB
	claims   Service
	listings listing.Service
}

func newFixture(t *testing.T, rejectSelfClaims bool) *claimFixture {
	db := testdb.Connect(t)
	es := eventstore.NewEventStore(db)
	return &claimFixture{
		db:       db,
		claims:   NewService(es, db, nil, nil, rejectSelfClaims),
		listings: listing.NewService(es, db),
	}
}

func (f *claimFixture) postListing(t *testing.T, ownerID uuid.UUID) *listing.Listing {
	t.Helper()
	created, err := f.listings.CreateListing(context.Background(), listing.CreateRequest{
		OwnerID:  ownerID,
		Item:     "Bread loaves",
		Qty:      "12",
		Location: "Bakery, Main St",
		Contact:  "555-0199",
	})
	require.NoError(t, err)
	return created
}

func TestClaimConfirmsListing(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	created := f.postListing(t, uuid.New())
	claimant := uuid.New()

	c, err := f.claims.Claim(ctx, created.ID, claimant, "555-0102", "Hostel C")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, c.Outcome)
	assert.Empty(t, c.Reason)

	fetched, err := f.listings.GetListing(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusConfirmed, fetched.Status)
}

func TestSecondClaimIsRejectedAndRecorded(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	created := f.postListing(t, uuid.New())

	_, err := f.claims.Claim(ctx, created.ID, uuid.New(), "", "")
	require.NoError(t, err)

	_, err = f.claims.Claim(ctx, created.ID, uuid.New(), "", "")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	attempts, err := f.claims.ClaimsFor(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)

	outcomes := map[string]int{}
	for _, a := range attempts {
		outcomes[a.Outcome]++
	}
	assert.Equal(t, 1, outcomes[OutcomeAccepted])
	assert.Equal(t, 1, outcomes[OutcomeRejected])
}

func TestClaimUnknownListing(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.claims.Claim(context.Background(), uuid.New(), uuid.New(), "", "")
	assert.ErrorIs(t, err, listing.ErrNotFound)
}

func TestClaimWithdrawnListingIsRejected(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	owner := uuid.New()
	created := f.postListing(t, owner)
	require.NoError(t, f.listings.WithdrawListing(ctx, created.ID, owner))

	_, err := f.claims.Claim(ctx, created.ID, uuid.New(), "", "")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	attempts, err := f.claims.ClaimsFor(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, ReasonAlreadyClaimed, attempts[0].Reason)
}

func TestSelfClaimPolicy(t *testing.T) {
	t.Run("rejected by default", func(t *testing.T) {
		f := newFixture(t, true)
		ctx := context.Background()
		owner := uuid.New()
		created := f.postListing(t, owner)

		_, err := f.claims.Claim(ctx, created.ID, owner, "", "")
		assert.ErrorIs(t, err, ErrSelfClaim)

		fetched, err := f.listings.GetListing(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, listing.StatusAvailable, fetched.Status)
	})

	t.Run("allowed when configured", func(t *testing.T) {
		f := newFixture(t, false)
		ctx := context.Background()
		owner := uuid.New()
		created := f.postListing(t, owner)

		c, err := f.claims.Claim(ctx, created.ID, owner, "", "")
		require.NoError(t, err)
		assert.Equal(t, OutcomeAccepted, c.Outcome)
	})
}

func TestDuplicateClaimantIsRejected(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	created := f.postListing(t, uuid.New())
	claimant := uuid.New()

	// A prior recorded attempt, regardless of outcome, blocks the claimant.
	_, err := f.db.ExecContext(ctx, `
		INSERT INTO claims (id, listing_id, claimant_id, outcome, reason)
		VALUES ($1, $2, $3, 'rejected', 'already_claimed')
	`, uuid.New(), created.ID, claimant)
	require.NoError(t, err)

	_, err = f.claims.Claim(ctx, created.ID, claimant, "", "")
	assert.ErrorIs(t, err, ErrDuplicateClaimant)

	fetched, err := f.listings.GetListing(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusAvailable, fetched.Status)
}

func TestConcurrentClaimsConfirmExactlyOne(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	created := f.postListing(t, uuid.New())

	const claimants = 10
	var wg sync.WaitGroup
	errs := make([]error, claimants)

	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.claims.Claim(ctx, created.ID, uuid.New(), "", "")
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyClaimed)
		}
	}
	assert.Equal(t, 1, accepted, "exactly one claimant should win")

	fetched, err := f.listings.GetListing(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusConfirmed, fetched.Status)

	attempts, err := f.claims.ClaimsFor(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, claimants)
}

func TestClaimsForEmptyListing(t *testing.T) {
	f := newFixture(t, true)
	created := f.postListing(t, uuid.New())

	attempts, err := f.claims.ClaimsFor(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, attempts)
}
