// Package outbox declares the repository contract for the account change
// feed. Events are appended in the same transaction as the aggregate write
// that produced them and consumed oldest-first by the reconciler.
package outbox

import (
	"context"
	"time"

	"github.com/dka-services/account-core/internal/server/models"
)

type Repository interface {
	// Append stores a new unprocessed event.
	Append(ctx context.Context, event *models.ChangeEvent) error

	// NextUnprocessed returns the oldest unprocessed event, or a not-found
	// error when the feed is drained.
	NextUnprocessed(ctx context.Context) (*models.ChangeEvent, error)

	// MarkProcessed stamps the event so it is never delivered again.
	MarkProcessed(ctx context.Context, id int64, at time.Time) error
}
