// Package credentials declares the repository contract for the login
// satellite.
package credentials

import (
	"context"

	"github.com/dka-services/account-core/internal/server/models"
)

// Update carries the field group applied to a credential scoped by its
// owning account. An empty PasswordHash leaves the stored hash untouched.
type Update struct {
	Email        string
	Username     string
	PasswordHash string
}

type Repository interface {
	// Create inserts a credential. Unique-index conflicts on email or
	// username surface as driver errors classified by the caller.
	Create(ctx context.Context, credential *models.Credential) error

	// GetByLogin finds a credential whose username or email equals login.
	GetByLogin(ctx context.Context, login string) (*models.Credential, error)

	// SetParent points the satellite's back-reference at parent (nil clears).
	// Reports whether exactly one row changed.
	SetParent(ctx context.Context, id string, parent *string) (bool, error)

	// UpdateByParent applies the field group to the credential owned by
	// accountID. Reports whether exactly one row changed.
	UpdateByParent(ctx context.Context, accountID string, upd Update) (bool, error)

	// DeleteByParent removes the credential owned by accountID.
	DeleteByParent(ctx context.Context, accountID string) (bool, error)

	// ClearParent detaches every credential pointing at accountID, returning
	// the number of rows touched.
	ClearParent(ctx context.Context, accountID string) (int64, error)
}
