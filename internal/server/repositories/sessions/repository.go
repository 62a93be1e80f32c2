// Package sessions declares the repository contract for session-token
// revocation records.
package sessions

import (
	"context"

	"github.com/dka-services/account-core/internal/server/models"
)

// Repository defines operations for persisting, retrieving, and revoking
// session-token records keyed by jti.
type Repository interface {
	// Create stores a new revocation record with status active.
	Create(ctx context.Context, token *models.SessionToken) error

	// Find looks up a record by jti. Implementations return a not-found
	// error when the record is absent.
	Find(ctx context.Context, jti string) (*models.SessionToken, error)

	// Revoke flips a record to revoked. Reports whether a row changed;
	// revoking an already-revoked record reports false.
	Revoke(ctx context.Context, jti string) (bool, error)
}
