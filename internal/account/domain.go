// internal/account/domain.go
package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Actor roles. A household or restaurant posts listings; an NGO or household
// claims them. Roles label intent only, they do not gate operations.
const (
	RoleHousehold  = "household"
	RoleRestaurant = "restaurant"
	RoleNGO        = "ngo"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limit exceeded")
)

// Account identifies an actor (seller/restaurant or consumer/NGO).
type Account struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Credential holds an account's argon2id password hash. Never serialized.
type Credential struct {
	AccountID    uuid.UUID `json:"account_id"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
}

// AccountRegisteredEvent is journaled when a new actor registers.
type AccountRegisteredEvent struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}
