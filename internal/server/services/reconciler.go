package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dka-services/account-core/internal/common"
	"github.com/dka-services/account-core/internal/dbx"
	"github.com/dka-services/account-core/internal/logging"
	"github.com/dka-services/account-core/internal/server/models"
	"github.com/dka-services/account-core/internal/server/repositories/accounts"
	"github.com/dka-services/account-core/internal/server/repositories/repomanager"
)

// Reconciler enforces single ownership of satellites after the fact. It
// consumes the account outbox oldest-first and, per event, points each
// referenced satellite back at its root and detaches the same reference
// from any other account row. Each event is handled in its own transaction
// and marked processed exactly once; a failed event is abandoned with a log
// line, never retried.
type Reconciler struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	poll        time.Duration
}

func NewReconciler(db *sql.DB, m repomanager.RepositoryManager, poll time.Duration, l logging.Logger) *Reconciler {
	return &Reconciler{db: db, repomanager: m, poll: poll, logger: l.With("module", "reconciler")}
}

// Run drains the outbox, then sleeps for the poll interval, until ctx is
// cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	r.logger.Info(ctx, "reconciler started", "poll", r.poll.String())
	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()
	for {
		r.Drain(ctx)
		select {
		case <-ctx.Done():
			r.logger.Info(ctx, "reconciler stopped")
			return
		case <-ticker.C:
		}
	}
}

// Drain processes every pending event until the feed is empty. Exposed so
// tests and the shutdown path can flush the feed synchronously.
func (r *Reconciler) Drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		event, err := r.repomanager.Outbox(r.db).NextUnprocessed(ctx)
		if err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				r.logger.Error(ctx, "reading change feed failed", "error", err.Error())
			}
			return
		}
		if err := r.handle(ctx, event); err != nil {
			// abandoned, not retried; the event is still marked below
			r.logger.Error(ctx, "event abandoned",
				"event_id", event.ID, "op", string(event.Op), "account_id", event.AccountID,
				"error", err.Error())
		}
		if err := r.repomanager.Outbox(r.db).MarkProcessed(ctx, event.ID, time.Now().UTC()); err != nil {
			r.logger.Error(ctx, "marking event processed failed", "event_id", event.ID, "error", err.Error())
			return
		}
	}
}

func (r *Reconciler) handle(ctx context.Context, event *models.ChangeEvent) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		switch event.Op {
		case models.OpInsert, models.OpUpdate:
			return r.claimRefs(ctx, tx, event)
		case models.OpDelete:
			return r.releaseRefs(ctx, tx, event.AccountID)
		default:
			return fmt.Errorf("unknown op %q", event.Op)
		}
	})
}

// claimRefs makes every satellite the event references point back at the
// event's account and strips the same reference from any other account row.
// The event's account wins; older claimants lose their reference.
func (r *Reconciler) claimRefs(ctx context.Context, tx dbx.DBTX, event *models.ChangeEvent) error {
	refs := []struct {
		column accounts.RefColumn
		id     *string
		setFn  func(ctx context.Context, id string, parent *string) (bool, error)
	}{
		{accounts.RefInfo, event.InfoID, r.repomanager.Infos(tx).SetParent},
		{accounts.RefCredential, event.CredentialID, r.repomanager.Credentials(tx).SetParent},
		{accounts.RefPlace, event.PlaceID, r.repomanager.Places(tx).SetParent},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		if _, err := ref.setFn(ctx, *ref.id, &event.AccountID); err != nil {
			return fmt.Errorf("claim %s: %w", ref.column, err)
		}
		detached, err := r.repomanager.Accounts(tx).DetachRef(ctx, ref.column, *ref.id, event.AccountID)
		if err != nil {
			return fmt.Errorf("detach %s: %w", ref.column, err)
		}
		if detached > 0 {
			r.logger.Warn(ctx, "duplicate satellite reference repaired",
				"column", string(ref.column), "satellite_id", *ref.id,
				"owner", event.AccountID, "detached", detached)
		}
	}
	return nil
}

// releaseRefs clears parent on satellites still pointing at a removed root.
// Satellites themselves are never deleted here.
func (r *Reconciler) releaseRefs(ctx context.Context, tx dbx.DBTX, accountID string) error {
	clears := []struct {
		name string
		fn   func(ctx context.Context, accountID string) (int64, error)
	}{
		{"infos", r.repomanager.Infos(tx).ClearParent},
		{"credentials", r.repomanager.Credentials(tx).ClearParent},
		{"places", r.repomanager.Places(tx).ClearParent},
	}
	for _, c := range clears {
		if _, err := c.fn(ctx, accountID); err != nil {
			return fmt.Errorf("release %s: %w", c.name, err)
		}
	}
	return nil
}
