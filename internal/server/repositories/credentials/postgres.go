package credentials

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

func (r *PostgresRepository) Create(ctx context.Context, c *models.Credential) error {
	query := `
		INSERT INTO credentials (id, parent, email, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		c.ID, c.Parent, c.Email, c.Username, c.PasswordHash, c.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.Credential, error) {
	query := `
		SELECT id, parent, email, username, password_hash, created_at
		FROM credentials
		WHERE username = $1 OR email = $1
	`
	c := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, login).
		Scan(&c.ID, &c.Parent, &c.Email, &c.Username, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) SetParent(ctx context.Context, id string, parent *string) (bool, error) {
	one, err := dbx.ExecOne(ctx, r.db, `UPDATE credentials SET parent = $1 WHERE id = $2`, parent, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return one, nil
}

func (r *PostgresRepository) UpdateByParent(ctx context.Context, accountID string, upd Update) (bool, error) {
	var (
		query string
		args  []any
	)
	if upd.PasswordHash != "" {
		query = `UPDATE credentials SET email = $1, username = $2, password_hash = $3 WHERE parent = $4`
		args = []any{upd.Email, upd.Username, upd.PasswordHash, accountID}
	} else {
		query = `UPDATE credentials SET email = $1, username = $2 WHERE parent = $3`
		args = []any{upd.Email, upd.Username, accountID}
	}

	one, err := dbx.ExecOne(ctx, r.db, query, args...)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return one, nil
}

func (r *PostgresRepository) DeleteByParent(ctx context.Context, accountID string) (bool, error) {
	one, err := dbx.ExecOne(ctx, r.db, `DELETE FROM credentials WHERE parent = $1`, accountID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return one, nil
}

func (r *PostgresRepository) ClearParent(ctx context.Context, accountID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE credentials SET parent = NULL WHERE parent = $1`, accountID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
