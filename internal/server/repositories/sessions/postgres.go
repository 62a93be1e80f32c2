package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dka-services/account-core/internal/common"
	"github.com/dka-services/account-core/internal/dbx"
	"github.com/dka-services/account-core/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.SessionToken) error {
	query := `
		INSERT INTO session_tokens (jti, account_id, issuer, subject, expires_at_unix, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.ExecContext(ctx, query,
		t.JTI, t.AccountID, t.Issuer, t.Subject, t.ExpiresAtUnix, t.Status, t.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, jti string) (*models.SessionToken, error) {
	query := `
		SELECT jti, account_id, issuer, subject, expires_at_unix, status, created_at
		FROM session_tokens
		WHERE jti = $1
	`
	t := &models.SessionToken{}
	err := r.db.QueryRowContext(ctx, query, jti).
		Scan(&t.JTI, &t.AccountID, &t.Issuer, &t.Subject, &t.ExpiresAtUnix, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Revoke(ctx context.Context, jti string) (bool, error) {
	query := `UPDATE session_tokens SET status = 'revoked' WHERE jti = $1 AND status = 'active'`
	one, err := dbx.ExecOne(ctx, r.db, query, jti)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return one, nil
}
