// internal/account/service.go
package account

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the account service.
type Service interface {
	Register(ctx context.Context, email, name, role, password string) (*Account, error)
	Authenticate(ctx context.Context, email, password string) (*Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
}
