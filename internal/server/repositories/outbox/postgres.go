package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) Append(ctx context.Context, e *models.ChangeEvent) error {
	query := `
		INSERT INTO account_events (op, account_id, info_id, credential_id, place_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		string(e.Op), e.AccountID, e.InfoID, e.CredentialID, e.PlaceID, e.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) NextUnprocessed(ctx context.Context) (*models.ChangeEvent, error) {
	query := `
		SELECT id, op, account_id, info_id, credential_id, place_id, created_at
		FROM account_events
		WHERE processed_at IS NULL
		ORDER BY id
		LIMIT 1
	`
	e := &models.ChangeEvent{}
	var op string
	err := r.db.QueryRowContext(ctx, query).
		Scan(&e.ID, &op, &e.AccountID, &e.InfoID, &e.CredentialID, &e.PlaceID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	e.Op = models.ChangeOp(op)
	return e, nil
}

func (r *PostgresRepository) MarkProcessed(ctx context.Context, id int64, at time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE account_events SET processed_at = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
