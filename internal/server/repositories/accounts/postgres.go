package accounts

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

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts
			(id, info_id, credential_id, place_id, reference_id, status,
			 created_at, created_unix, updated_at, updated_unix)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.InfoID, a.CredentialID, a.PlaceID, a.ReferenceID, a.Status,
		a.CreatedAt, a.CreatedUnix, a.UpdatedAt, a.UpdatedUnix)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT id, info_id, credential_id, place_id, reference_id, status,
		       created_at, created_unix, updated_at, updated_unix, deleted_at, deleted_unix
		FROM accounts
		WHERE id = $1
	`
	a := &models.Account{}
	var credentialID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.InfoID, &credentialID, &a.PlaceID, &a.ReferenceID, &a.Status,
		&a.CreatedAt, &a.CreatedUnix, &a.UpdatedAt, &a.UpdatedUnix, &a.DeletedAt, &a.DeletedUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	a.CredentialID = credentialID.String
	return a, nil
}

func (r *PostgresRepository) Touch(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE accounts SET updated_at = $1, updated_unix = $2
		WHERE id = $3 AND status = 'active'
	`
	one, err := dbx.ExecOne(ctx, r.db, query, at, at.Unix(), id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return one, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	one, err := dbx.ExecOne(ctx, r.db, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return one, nil
}

const viewColumns = `
	a.id, a.status, a.reference_id,
	a.created_at, a.created_unix, a.updated_at, a.updated_unix,
	c.email, c.username,
	i.first_name, i.last_name,
	p.address, p.postal_code
`

const viewJoins = `
	FROM accounts a
	JOIN credentials c ON c.id = a.credential_id
	LEFT JOIN infos i ON i.id = a.info_id
	LEFT JOIN places p ON p.id = a.place_id
`

func (r *PostgresRepository) GetView(ctx context.Context, id string) (*models.AccountView, error) {
	query := `SELECT ` + viewColumns + viewJoins + `WHERE a.id = $1 AND a.status = 'active'`

	view, err := scanView(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return view, nil
}

func (r *PostgresRepository) ListViews(ctx context.Context, opts ViewOptions) ([]*models.AccountView, error) {
	query := `SELECT ` + viewColumns + viewJoins + `WHERE a.status = 'active'`
	if opts.AllowLargeSort {
		query += ` ORDER BY a.created_unix`
	}

	var args []any
	if opts.Limit > 0 {
		query += ` LIMIT $1`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var views []*models.AccountView
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return views, nil
}

func (r *PostgresRepository) DetachRef(ctx context.Context, column RefColumn, satelliteID, keepAccountID string) (int64, error) {
	var query string
	switch column {
	case RefInfo:
		query = `UPDATE accounts SET info_id = NULL WHERE info_id = $1 AND id <> $2`
	case RefCredential:
		query = `UPDATE accounts SET credential_id = NULL WHERE credential_id = $1 AND id <> $2`
	case RefPlace:
		query = `UPDATE accounts SET place_id = NULL WHERE place_id = $1 AND id <> $2`
	default:
		return 0, fmt.Errorf("unknown ref column %q", column)
	}

	res, err := r.db.ExecContext(ctx, query, satelliteID, keepAccountID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanView(s scanner) (*models.AccountView, error) {
	var (
		view      models.AccountView
		email     string
		username  string
		firstName sql.NullString
		lastName  sql.NullString
		address   sql.NullString
		postal    sql.NullString
	)

	err := s.Scan(
		&view.ID, &view.Status, &view.ReferenceID,
		&view.CreatedAt, &view.CreatedUnix, &view.UpdatedAt, &view.UpdatedUnix,
		&email, &username,
		&firstName, &lastName,
		&address, &postal,
	)
	if err != nil {
		return nil, err
	}

	view.Credential = &models.CredentialView{Email: email, Username: username}
	if firstName.Valid || lastName.Valid {
		view.Info = &models.InfoView{FirstName: firstName.String, LastName: lastName.String}
	}
	if address.Valid || postal.Valid {
		view.Place = &models.PlaceView{Address: address.String, PostalCode: postal.String}
	}
	return &view, nil
}
