package accounts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dka-services/account-core/internal/common"
	"github.com/dka-services/account-core/internal/server/models"
)

const testSchema = `
	DROP TABLE IF EXISTS accounts;
	DROP TABLE IF EXISTS credentials;
	DROP TABLE IF EXISTS infos;
	DROP TABLE IF EXISTS places;
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
`

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:accounts_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db
}

func str(s string) *string { return &s }

func seedAggregate(t *testing.T, db *sql.DB, accountID, suffix string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	credID, infoID, placeID := "cred-"+suffix, "info-"+suffix, "place-"+suffix

	_, err := db.ExecContext(ctx,
		`INSERT INTO credentials (id, parent, email, username, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, 'hash', $5)`,
		credID, accountID, suffix+"@example.com", "user-"+suffix, now)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		`INSERT INTO infos (id, parent, first_name, last_name, created_at)
		 VALUES ($1, $2, 'Ada', 'Lovelace', $3)`, infoID, accountID, now)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		`INSERT INTO places (id, parent, address, postal_code, created_at)
		 VALUES ($1, $2, '1 Main St', '00100', $3)`, placeID, accountID, now)
	require.NoError(t, err)

	repo := NewPostgresRepository(db)
	require.NoError(t, repo.Create(ctx, &models.Account{
		ID:           accountID,
		InfoID:       str(infoID),
		CredentialID: credID,
		PlaceID:      str(placeID),
		Status:       models.StatusActive,
		CreatedAt:    now,
		CreatedUnix:  now.Unix(),
		UpdatedAt:    now,
		UpdatedUnix:  now.Unix(),
	}))
}

func TestGetView_JoinsAndRedacts(t *testing.T) {
	db := setupDB(t)
	seedAggregate(t, db, "acc-1", "a1")

	view, err := NewPostgresRepository(db).GetView(context.Background(), "acc-1")
	require.NoError(t, err)

	require.Equal(t, "acc-1", view.ID)
	require.Equal(t, models.StatusActive, view.Status)
	require.Equal(t, "a1@example.com", view.Credential.Email)
	require.Equal(t, "user-a1", view.Credential.Username)
	require.Equal(t, "Ada", view.Info.FirstName)
	require.Equal(t, "1 Main St", view.Place.Address)
}

func TestGetView_NotFound(t *testing.T) {
	db := setupDB(t)

	_, err := NewPostgresRepository(db).GetView(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetView_AbsentSatellitesAreNil(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := db.ExecContext(ctx,
		`INSERT INTO credentials (id, parent, email, username, password_hash, created_at)
		 VALUES ('c-only', 'acc-min', 'min@example.com', 'min', 'hash', $1)`, now)
	require.NoError(t, err)

	repo := NewPostgresRepository(db)
	require.NoError(t, repo.Create(ctx, &models.Account{
		ID: "acc-min", CredentialID: "c-only", Status: models.StatusActive,
		CreatedAt: now, CreatedUnix: now.Unix(), UpdatedAt: now, UpdatedUnix: now.Unix(),
	}))

	view, err := repo.GetView(ctx, "acc-min")
	require.NoError(t, err)
	require.Nil(t, view.Info)
	require.Nil(t, view.Place)
	require.NotNil(t, view.Credential)
}

func TestListViews_LimitAndOrder(t *testing.T) {
	db := setupDB(t)
	seedAggregate(t, db, "acc-1", "a1")
	seedAggregate(t, db, "acc-2", "a2")
	seedAggregate(t, db, "acc-3", "a3")

	repo := NewPostgresRepository(db)

	all, err := repo.ListViews(context.Background(), ViewOptions{AllowLargeSort: true})
	require.NoError(t, err)
	require.Len(t, all, 3)

	two, err := repo.ListViews(context.Background(), ViewOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, two, 2)
}

func TestTouchAndDelete(t *testing.T) {
	db := setupDB(t)
	seedAggregate(t, db, "acc-1", "a1")
	ctx := context.Background()
	repo := NewPostgresRepository(db)

	ok, err := repo.Touch(ctx, "acc-1", time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Touch(ctx, "missing", time.Now().UTC())
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.Delete(ctx, "acc-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Delete(ctx, "acc-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDetachRef_KeepsWinner(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	now := time.Now().UTC()
	repo := NewPostgresRepository(db)

	// Two roots claiming the same info satellite; acc-2 must lose its ref.
	_, err := db.ExecContext(ctx,
		`INSERT INTO credentials (id, email, username, password_hash, created_at)
		 VALUES ('c1', 'c1@example.com', 'c1', 'h', $1), ('c2', 'c2@example.com', 'c2', 'h', $1)`, now)
	require.NoError(t, err)

	for _, id := range []string{"acc-1", "acc-2"} {
		cred := map[string]string{"acc-1": "c1", "acc-2": "c2"}[id]
		require.NoError(t, repo.Create(ctx, &models.Account{
			ID: id, InfoID: str("shared-info"), CredentialID: cred, Status: models.StatusActive,
			CreatedAt: now, CreatedUnix: now.Unix(), UpdatedAt: now, UpdatedUnix: now.Unix(),
		}))
	}

	n, err := repo.DetachRef(ctx, RefInfo, "shared-info", "acc-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	var infoID sql.NullString
	require.NoError(t, db.QueryRowContext(ctx, `SELECT info_id FROM accounts WHERE id = 'acc-2'`).Scan(&infoID))
	require.False(t, infoID.Valid, "losing account must be detached")

	require.NoError(t, db.QueryRowContext(ctx, `SELECT info_id FROM accounts WHERE id = 'acc-1'`).Scan(&infoID))
	require.True(t, infoID.Valid, "winning account keeps its ref")
}
