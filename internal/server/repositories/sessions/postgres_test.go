package sessions

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

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:sessions_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`
		DROP TABLE IF EXISTS session_tokens;
		CREATE TABLE session_tokens (
			jti TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			issuer TEXT NOT NULL,
			subject TEXT NOT NULL,
			expires_at_unix INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMP NOT NULL
		);`)
	require.NoError(t, err)
	return db
}

func TestCreateFindRevoke(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewPostgresRepository(db)

	token := &models.SessionToken{
		JTI:           "jti-1",
		AccountID:     "acc-1",
		Issuer:        "accounts.dka",
		Subject:       "refresh",
		ExpiresAtUnix: time.Now().Add(24 * time.Hour).Unix(),
		Status:        models.TokenActive,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, token))

	got, err := repo.Find(ctx, "jti-1")
	require.NoError(t, err)
	require.Equal(t, models.TokenActive, got.Status)
	require.Equal(t, "acc-1", got.AccountID)
	require.Equal(t, "refresh", got.Subject)

	ok, err := repo.Revoke(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, ok)

	got, err = repo.Find(ctx, "jti-1")
	require.NoError(t, err)
	require.Equal(t, models.TokenRevoked, got.Status)

	// second revoke is a no-op
	ok, err = repo.Revoke(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFind_Missing(t *testing.T) {
	db := setupDB(t)

	_, err := NewPostgresRepository(db).Find(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
