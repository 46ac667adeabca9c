// internal/testdb/testdb.go
package testdb

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/lib/pq"
)

// Connect opens a PostgreSQL connection for package tests and installs the
// schema. Tests are skipped when no database is reachable.
func Connect(t testing.TB) *sql.DB {
	t.Helper()

	get := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		get("PGHOST", "localhost"), get("PGPORT", "5432"),
		get("PGUSER", "user"), get("PGPASSWORD", "password"), get("PGDATABASE", "testdb"))

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open database connection: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("skipping: could not connect to postgres: %v", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return db
}

// Schema is the full read-model plus journal schema, mirrored in schema.sql.
const Schema = `
	CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		aggregate_id UUID NOT NULL,
		aggregate_type TEXT NOT NULL,
		event_type TEXT NOT NULL,
		event_data JSONB NOT NULL,
		version INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (aggregate_id, version)
	);

	CREATE TABLE IF NOT EXISTS listings (
		id UUID PRIMARY KEY,
		owner_id UUID NOT NULL,
		item TEXT NOT NULL,
		qty TEXT NOT NULL,
		mode TEXT NOT NULL DEFAULT 'donate',
		price INT NOT NULL DEFAULT 0,
		expiry DATE,
		pickup_window TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL,
		contact TEXT NOT NULL,
		dietary TEXT[] NOT NULL DEFAULT '{}',
		notes TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'available',
		version INT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS claims (
		id UUID PRIMARY KEY,
		listing_id UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		claimant_id UUID NOT NULL,
		contact TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		claimed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'household',
		status TEXT NOT NULL DEFAULT 'active',
		version INT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS credentials (
		account_id UUID PRIMARY KEY REFERENCES accounts(id) ON DELETE CASCADE,
		password_hash TEXT NOT NULL,
		salt TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS waste_log (
		id UUID PRIMARY KEY,
		account_id UUID NOT NULL,
		item TEXT NOT NULL,
		qty DOUBLE PRECISION NOT NULL,
		units TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL,
		logged_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`
