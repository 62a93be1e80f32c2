// Package infos declares the repository contract for the profile-name
// satellite.
package infos

import (
	"context"

	"github.com/dka-services/account-core/internal/server/models"
)

// Update carries the field group applied to an info scoped by its owning
// account.
type Update struct {
	FirstName string
	LastName  string
}

type Repository interface {
	Create(ctx context.Context, info *models.Info) error
	SetParent(ctx context.Context, id string, parent *string) (bool, error)
	UpdateByParent(ctx context.Context, accountID string, upd Update) (bool, error)
	DeleteByParent(ctx context.Context, accountID string) (bool, error)
	ClearParent(ctx context.Context, accountID string) (int64, error)
}
