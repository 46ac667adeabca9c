// internal/account/implementation.go
package account

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"foodwise/pkg/eventstore"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/time/rate"
)

// service implements the Service interface.
type service struct {
	eventStore  *eventstore.EventStore
	db          *sql.DB
	rateLimiter *rate.Limiter
}

// NewService creates a new account service instance.
func NewService(es *eventstore.EventStore, db *sql.DB) Service {
	return &service{
		eventStore:  es,
		db:          db,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute), 5),
	}
}

// Register creates a new actor account with an argon2id-hashed credential.
func (s *service) Register(ctx context.Context, email, name, role, password string) (*Account, error) {
	switch role {
	case RoleHousehold, RoleRestaurant, RoleNGO:
	default:
		role = RoleHousehold
	}

	passwordHash, salt, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	acct := &Account{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Role:      role,
		Status:    "active",
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	credential := &Credential{
		AccountID:    acct.ID,
		PasswordHash: passwordHash,
		Salt:         salt,
	}

	if err := s.insertAccount(ctx, acct, credential); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	s.journal(ctx, acct.ID, AccountRegisteredEvent{
		ID:    acct.ID,
		Email: acct.Email,
		Name:  acct.Name,
		Role:  acct.Role,
	})

	return acct, nil
}

func (s *service) insertAccount(ctx context.Context, acct *Account, credential *Credential) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO accounts (id, email, name, role, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, acct.ID, acct.Email, acct.Name, acct.Role, acct.Status, acct.Version, acct.CreatedAt, acct.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credentials (account_id, password_hash, salt)
		VALUES ($1, $2, $3)
	`, credential.AccountID, credential.PasswordHash, credential.Salt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Authenticate verifies an actor's credentials and returns the account.
// Login attempts are rate limited to slow credential stuffing.
func (s *service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	acct, err := s.getByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	var credential Credential
	err = s.db.QueryRowContext(ctx, `
		SELECT account_id, password_hash, salt FROM credentials WHERE account_id = $1
	`, acct.ID).Scan(&credential.AccountID, &credential.PasswordHash, &credential.Salt)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	ok, err := verifyPassword(password, credential.Salt, credential.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return acct, nil
}

func (s *service) getByEmail(ctx context.Context, email string) (*Account, error) {
	acct := &Account{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, role, status, version, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`, email).Scan(&acct.ID, &acct.Email, &acct.Name, &acct.Role, &acct.Status, &acct.Version, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// GetAccount retrieves an account by its ID.
func (s *service) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	acct := &Account{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, role, status, version, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, id).Scan(&acct.ID, &acct.Email, &acct.Name, &acct.Role, &acct.Status, &acct.Version, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return acct, nil
}

func (s *service) journal(ctx context.Context, aggregateID uuid.UUID, data AccountRegisteredEvent) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("marshal AccountRegistered event for %s: %v", aggregateID, err)
		return
	}
	err = s.eventStore.Append(ctx, aggregateID, "account", 0, []eventstore.Event{
		{EventType: "AccountRegistered", EventData: jsonData},
	})
	if err != nil {
		log.Printf("journal AccountRegistered for %s: %v", aggregateID, err)
	}
}
