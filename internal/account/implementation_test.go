package account

import (
	"context"
	"fmt"
	"testing"

	"foodwise/internal/testdb"
	"foodwise/pkg/eventstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Each test builds its own service so the login rate limiter starts with a
// full burst.
func newTestService(t *testing.T) Service {
	db := testdb.Connect(t)
	return NewService(eventstore.NewEventStore(db), db)
}

func uniqueEmail() string {
	return fmt.Sprintf("actor-%s@example.com", uuid.New())
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	email := uniqueEmail()

	acct, err := svc.Register(ctx, email, "Priya", RoleRestaurant, "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, RoleRestaurant, acct.Role)
	assert.Equal(t, "active", acct.Status)

	authed, err := svc.Authenticate(ctx, email, "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, authed.ID)
}

func TestRegisterDefaultsUnknownRole(t *testing.T) {
	svc := newTestService(t)

	acct, err := svc.Register(context.Background(), uniqueEmail(), "Sam", "admin", "pw")
	require.NoError(t, err)
	assert.Equal(t, RoleHousehold, acct.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	email := uniqueEmail()

	_, err := svc.Register(ctx, email, "First", RoleHousehold, "pw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, email, "Second", RoleHousehold, "pw2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	email := uniqueEmail()

	_, err := svc.Register(ctx, email, "Priya", RoleNGO, "right-pass")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, email, "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, uniqueEmail(), "right-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRateLimiterTripsAfterBurst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// The limiter allows a burst of 5 login attempts.
	for i := 0; i < 5; i++ {
		_, err := svc.Authenticate(ctx, uniqueEmail(), "pw")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := svc.Authenticate(ctx, uniqueEmail(), "pw")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestGetAccount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	acct, err := svc.Register(ctx, uniqueEmail(), "Priya", RoleHousehold, "pw")
	require.NoError(t, err)

	fetched, err := svc.GetAccount(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, acct.Email, fetched.Email)

	_, err = svc.GetAccount(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
