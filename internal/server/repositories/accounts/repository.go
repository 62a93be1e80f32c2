// Package accounts declares the repository contract for the aggregate root
// and the joined read views derived from it.
package accounts

import (
	"context"
	"time"

	"github.com/dka-services/account-core/internal/server/models"
)

// RefColumn names a satellite-reference column on the account row.
type RefColumn string

const (
	RefInfo       RefColumn = "info_id"
	RefCredential RefColumn = "credential_id"
	RefPlace      RefColumn = "place_id"
)

// ViewOptions controls the joined read path.
type ViewOptions struct {
	// Limit caps the number of returned rows when positive.
	Limit int
	// AllowLargeSort permits the ordered full scan needed for a
	// deterministic listing; without it rows come back in storage order.
	AllowLargeSort bool
}

type Repository interface {
	// Create inserts the aggregate root.
	Create(ctx context.Context, account *models.Account) error

	// Get returns the raw root row (no join, no redaction). Implementations
	// return a not-found error when the account is absent.
	Get(ctx context.Context, id string) (*models.Account, error)

	// Touch bumps the updated timestamps; reports whether the root existed.
	Touch(ctx context.Context, id string, at time.Time) (bool, error)

	// Delete removes the root row; reports whether exactly one row went away.
	Delete(ctx context.Context, id string) (bool, error)

	// GetView returns the joined, redacted view for one account.
	// Implementations return a not-found error when the account is absent.
	GetView(ctx context.Context, id string) (*models.AccountView, error)

	// ListViews returns joined, redacted views for all active accounts.
	ListViews(ctx context.Context, opts ViewOptions) ([]*models.AccountView, error)

	// DetachRef clears column on every account other than keepAccountID that
	// references satelliteID, returning how many rows were detached.
	DetachRef(ctx context.Context, column RefColumn, satelliteID, keepAccountID string) (int64, error)
}
