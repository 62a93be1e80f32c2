package infos

import (
	"context"
	"fmt"

	"github.com/dka-services/account-core/internal/dbx"
	"github.com/dka-services/account-core/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, i *models.Info) error {
	query := `
		INSERT INTO infos (id, parent, first_name, last_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		i.ID, i.Parent, i.FirstName, i.LastName, i.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetParent(ctx context.Context, id string, parent *string) (bool, error) {
	one, err := dbx.ExecOne(ctx, r.db, `UPDATE infos SET parent = $1 WHERE id = $2`, parent, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return one, nil
}

func (r *PostgresRepository) UpdateByParent(ctx context.Context, accountID string, upd Update) (bool, error) {
	query := `UPDATE infos SET first_name = $1, last_name = $2 WHERE parent = $3`
	one, err := dbx.ExecOne(ctx, r.db, query, upd.FirstName, upd.LastName, accountID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return one, nil
}

func (r *PostgresRepository) DeleteByParent(ctx context.Context, accountID string) (bool, error) {
	one, err := dbx.ExecOne(ctx, r.db, `DELETE FROM infos WHERE parent = $1`, accountID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return one, nil
}

func (r *PostgresRepository) ClearParent(ctx context.Context, accountID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE infos SET parent = NULL WHERE parent = $1`, accountID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
