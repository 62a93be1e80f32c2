// Package services contains the server-side business logic: the identity
// aggregate store, the session-token lifecycle, and the ownership
// reconciler.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dka-services/account-core/internal/common"
	"github.com/dka-services/account-core/internal/cryptox"
	"github.com/dka-services/account-core/internal/dbx"
	"github.com/dka-services/account-core/internal/logging"
	"github.com/dka-services/account-core/internal/server/models"
	"github.com/dka-services/account-core/internal/server/repositories/accounts"
	"github.com/dka-services/account-core/internal/server/repositories/credentials"
	"github.com/dka-services/account-core/internal/server/repositories/infos"
	"github.com/dka-services/account-core/internal/server/repositories/places"
	"github.com/dka-services/account-core/internal/server/repositories/repomanager"
)

// ReadOptions controls ReadAll.
type ReadOptions struct {
	Limit          int
	AllowLargeSort bool
}

// AccountService owns CRUD and transactional consistency for the Account
// root and its three satellites. Every mutation commits atomically; a
// partially written aggregate is never observable.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *AccountService {
	return &AccountService{db: db, repomanager: m, logger: l.With("module", "account_service")}
}

// checkStore gates every operation on store connectivity. A disconnected
// store is retryable (unavailable); any other ping failure is an unknown
// store state and not retryable.
func (s *AccountService) checkStore(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err == nil {
		return nil
	}
	if dbx.IsConnectivity(err) {
		return fmt.Errorf("store disconnected: %w", common.ErrorUnavailable)
	}
	s.logger.Error(ctx, "store in unknown state", "error", err.Error())
	return fmt.Errorf("store state unknown: %w", common.ErrorInternal)
}

// Create builds an aggregate in one transaction: satellites first, then the
// root referencing them, then the back-reference patches, then a joined
// re-read confirming the aggregate materialized.
func (s *AccountService) Create(ctx context.Context, info InfoInput, cred CredentialInput, place PlaceInput) (*models.AccountView, error) {
	if err := s.checkStore(ctx); err != nil {
		return nil, err
	}
	if err := validateCredentialInput(cred, true); err != nil {
		return nil, err
	}

	hash, err := cryptox.HashPassword(cred.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", common.ErrorInternal)
	}

	now := time.Now().UTC()
	accountID := models.NewAccountID()
	infoID, credID, placeID := models.NewID(), models.NewID(), models.NewID()

	var view *models.AccountView
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Infos(tx).Create(ctx, &models.Info{
			ID: infoID, FirstName: info.FirstName, LastName: info.LastName, CreatedAt: now,
		}); err != nil {
			return classifyWriteError("insert info", err)
		}

		if err := s.repomanager.Credentials(tx).Create(ctx, &models.Credential{
			ID: credID, Email: cred.Email, Username: cred.Username, PasswordHash: hash, CreatedAt: now,
		}); err != nil {
			return classifyWriteError("insert credential", err)
		}

		if err := s.repomanager.Places(tx).Create(ctx, &models.Place{
			ID: placeID, Address: place.Address, PostalCode: place.PostalCode, CreatedAt: now,
		}); err != nil {
			return classifyWriteError("insert place", err)
		}

		if err := s.repomanager.Accounts(tx).Create(ctx, &models.Account{
			ID:           accountID,
			InfoID:       &infoID,
			CredentialID: credID,
			PlaceID:      &placeID,
			Status:       models.StatusActive,
			CreatedAt:    now,
			CreatedUnix:  now.Unix(),
			UpdatedAt:    now,
			UpdatedUnix:  now.Unix(),
		}); err != nil {
			return classifyWriteError("insert account", err)
		}

		// back-reference patches; each must hit its satellite
		patches := []struct {
			name string
			fn   func() (bool, error)
		}{
			{"info", func() (bool, error) { return s.repomanager.Infos(tx).SetParent(ctx, infoID, &accountID) }},
			{"credential", func() (bool, error) { return s.repomanager.Credentials(tx).SetParent(ctx, credID, &accountID) }},
			{"place", func() (bool, error) { return s.repomanager.Places(tx).SetParent(ctx, placeID, &accountID) }},
		}
		for _, p := range patches {
			one, err := p.fn()
			if err != nil {
				return classifyWriteError("patch "+p.name, err)
			}
			if !one {
				return fmt.Errorf("patch %s missed its row: %w", p.name, common.ErrorTxAborted)
			}
		}

		// confirm materialization inside the transaction
		v, err := s.repomanager.Accounts(tx).GetView(ctx, accountID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("aggregate did not materialize: %w", common.ErrorNotFound)
			}
			return classifyWriteError("confirm aggregate", err)
		}

		if err := s.repomanager.Outbox(tx).Append(ctx, &models.ChangeEvent{
			Op:           models.OpInsert,
			AccountID:    accountID,
			InfoID:       &infoID,
			CredentialID: &credID,
			PlaceID:      &placeID,
			CreatedAt:    now,
		}); err != nil {
			return classifyWriteError("append event", err)
		}

		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account created", "account_id", accountID)
	return view, nil
}

// ReadAll returns the joined, redacted views of all active accounts.
func (s *AccountService) ReadAll(ctx context.Context, opts ReadOptions) ([]*models.AccountView, error) {
	if err := s.checkStore(ctx); err != nil {
		return nil, err
	}

	views, err := s.repomanager.Accounts(s.db).ListViews(ctx, accounts.ViewOptions{
		Limit:          opts.Limit,
		AllowLargeSort: opts.AllowLargeSort,
	})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, fmt.Errorf("no accounts: %w", common.ErrorNotFound)
	}
	return views, nil
}

// ReadByID returns the joined, redacted view of one account.
func (s *AccountService) ReadByID(ctx context.Context, id string) (*models.AccountView, error) {
	if err := s.checkStore(ctx); err != nil {
		return nil, err
	}
	if err := validateAccountID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Accounts(s.db).GetView(ctx, id)
}

// UpdateOne applies the present field groups to their satellites, all
// scoped by parent == id, in one transaction. The count of modified groups
// must equal the count of requested groups or the whole update aborts.
func (s *AccountService) UpdateOne(ctx context.Context, id string, upd UpdateInput) (*models.AccountView, error) {
	if err := s.checkStore(ctx); err != nil {
		return nil, err
	}
	if err := validateAccountID(id); err != nil {
		return nil, err
	}
	requested := upd.groups()
	if requested == 0 {
		return nil, fmt.Errorf("no field groups to update: %w", common.ErrorValidation)
	}

	var credentialHash string
	if upd.Credential != nil {
		if err := validateCredentialInput(*upd.Credential, false); err != nil {
			return nil, err
		}
		if upd.Credential.Password != "" {
			hash, err := cryptox.HashPassword(upd.Credential.Password)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", common.ErrorInternal)
			}
			credentialHash = hash
		}
	}

	now := time.Now().UTC()

	var view *models.AccountView
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		modified := 0

		if upd.Info != nil {
			one, err := s.repomanager.Infos(tx).UpdateByParent(ctx, id, infos.Update{
				FirstName: upd.Info.FirstName, LastName: upd.Info.LastName,
			})
			if err != nil {
				return classifyWriteError("update info", err)
			}
			if one {
				modified++
			}
		}

		if upd.Credential != nil {
			one, err := s.repomanager.Credentials(tx).UpdateByParent(ctx, id, credentials.Update{
				Email: upd.Credential.Email, Username: upd.Credential.Username, PasswordHash: credentialHash,
			})
			if err != nil {
				return classifyWriteError("update credential", err)
			}
			if one {
				modified++
			}
		}

		if upd.Place != nil {
			one, err := s.repomanager.Places(tx).UpdateByParent(ctx, id, places.Update{
				Address: upd.Place.Address, PostalCode: upd.Place.PostalCode,
			})
			if err != nil {
				return classifyWriteError("update place", err)
			}
			if one {
				modified++
			}
		}

		if modified != requested {
			return fmt.Errorf("updated %d of %d field groups: %w", modified, requested, common.ErrorTxAborted)
		}

		if _, err := s.repomanager.Accounts(tx).Touch(ctx, id, now); err != nil {
			return classifyWriteError("touch account", err)
		}

		root, err := s.repomanager.Accounts(tx).Get(ctx, id)
		if err != nil {
			return err
		}
		var credID *string
		if root.CredentialID != "" {
			credID = &root.CredentialID
		}
		if err := s.repomanager.Outbox(tx).Append(ctx, &models.ChangeEvent{
			Op:           models.OpUpdate,
			AccountID:    id,
			InfoID:       root.InfoID,
			CredentialID: credID,
			PlaceID:      root.PlaceID,
			CreatedAt:    now,
		}); err != nil {
			return classifyWriteError("append event", err)
		}

		v, err := s.repomanager.Accounts(tx).GetView(ctx, id)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account updated", "account_id", id, "groups", requested)
	return view, nil
}

// DeleteOne removes the root and all three satellites in one transaction.
// Each of the four deletes must affect exactly one row; a short count means
// the aggregate was already inconsistent and the delete aborts.
func (s *AccountService) DeleteOne(ctx context.Context, id string) (*models.AccountView, error) {
	if err := s.checkStore(ctx); err != nil {
		return nil, err
	}
	if err := validateAccountID(id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var view *models.AccountView
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		v, err := s.repomanager.Accounts(tx).GetView(ctx, id)
		if err != nil {
			return err
		}

		deletes := []struct {
			name string
			fn   func() (bool, error)
		}{
			{"info", func() (bool, error) { return s.repomanager.Infos(tx).DeleteByParent(ctx, id) }},
			{"credential", func() (bool, error) { return s.repomanager.Credentials(tx).DeleteByParent(ctx, id) }},
			{"place", func() (bool, error) { return s.repomanager.Places(tx).DeleteByParent(ctx, id) }},
			{"account", func() (bool, error) { return s.repomanager.Accounts(tx).Delete(ctx, id) }},
		}
		for _, d := range deletes {
			one, err := d.fn()
			if err != nil {
				return classifyWriteError("delete "+d.name, err)
			}
			if !one {
				return fmt.Errorf("delete %s affected zero or many rows: %w", d.name, common.ErrorExhausted)
			}
		}

		if err := s.repomanager.Outbox(tx).Append(ctx, &models.ChangeEvent{
			Op: models.OpDelete, AccountID: id, CreatedAt: now,
		}); err != nil {
			return classifyWriteError("append event", err)
		}

		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account deleted", "account_id", id)
	return view, nil
}

// classifyWriteError resolves a driver error raised inside a transaction to
// an error kind: unique-index conflicts are reported as such, everything
// else aborts the transaction.
func classifyWriteError(step string, err error) error {
	if dbx.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", step, common.ErrorConflict)
	}
	return fmt.Errorf("%s: %v: %w", step, err, common.ErrorTxAborted)
}
