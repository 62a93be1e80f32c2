package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dka-services/account-core/internal/logging"
	"github.com/dka-services/account-core/internal/server/models"
	"github.com/dka-services/account-core/internal/server/repositories/repomanager"
)

const testSchema = `
	DROP TABLE IF EXISTS account_events;
	DROP TABLE IF EXISTS session_tokens;
	DROP TABLE IF EXISTS accounts;
	DROP TABLE IF EXISTS places;
	DROP TABLE IF EXISTS infos;
	DROP TABLE IF EXISTS credentials;
	CREATE TABLE credentials (
		id TEXT PRIMARY KEY,
		parent TEXT,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE infos (
		id TEXT PRIMARY KEY,
		parent TEXT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE places (
		id TEXT PRIMARY KEY,
		parent TEXT,
		address TEXT NOT NULL,
		postal_code TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE accounts (
		id TEXT PRIMARY KEY,
		info_id TEXT,
		credential_id TEXT,
		place_id TEXT,
		reference_id TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMP NOT NULL,
		created_unix INTEGER NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		updated_unix INTEGER NOT NULL,
		deleted_at TIMESTAMP,
		deleted_unix INTEGER
	);
	CREATE TABLE session_tokens (
		jti TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		issuer TEXT NOT NULL,
		subject TEXT NOT NULL,
		expires_at_unix INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE account_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		op TEXT NOT NULL,
		account_id TEXT NOT NULL,
		info_id TEXT,
		credential_id TEXT,
		place_id TEXT,
		created_at TIMESTAMP NOT NULL,
		processed_at TIMESTAMP
	);
`

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:services_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newAccountService(t *testing.T) (*AccountService, *sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	db := setupDB(t)
	rm := repomanager.NewPostgresRepositoryManager()
	return NewAccountService(db, rm, testLogger()), db, rm
}

func createTestAccount(t *testing.T, svc *AccountService, suffix string) *models.AccountView {
	t.Helper()
	view, err := svc.Create(context.Background(),
		InfoInput{FirstName: "Ada", LastName: "Lovelace"},
		CredentialInput{
			Email:    suffix + "@example.com",
			Username: "user-" + suffix,
			Password: "s3cret-" + suffix,
		},
		PlaceInput{Address: "1 Main St", PostalCode: "00100"})
	require.NoError(t, err)
	return view
}
