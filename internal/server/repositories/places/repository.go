// Package places declares the repository contract for the address
// satellite.
package places

import (
	"context"

	"github.com/dka-services/account-core/internal/server/models"
)

// Update carries the field group applied to a place scoped by its owning
// account.
type Update struct {
	Address    string
	PostalCode string
}

type Repository interface {
	Create(ctx context.Context, place *models.Place) error
	SetParent(ctx context.Context, id string, parent *string) (bool, error)
	UpdateByParent(ctx context.Context, accountID string, upd Update) (bool, error)
	DeleteByParent(ctx context.Context, accountID string) (bool, error)
	ClearParent(ctx context.Context, accountID string) (int64, error)
}
