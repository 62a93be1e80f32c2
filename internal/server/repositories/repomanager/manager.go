// Package repomanager wires repository constructors behind a single
// interface so services can run any repository against either the shared
// *sql.DB or an open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dka-services/account-core/internal/dbx"
	"github.com/dka-services/account-core/internal/server/repositories/accounts"
	"github.com/dka-services/account-core/internal/server/repositories/credentials"
	"github.com/dka-services/account-core/internal/server/repositories/infos"
	"github.com/dka-services/account-core/internal/server/repositories/outbox"
	"github.com/dka-services/account-core/internal/server/repositories/places"
	"github.com/dka-services/account-core/internal/server/repositories/sessions"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	Infos(db dbx.DBTX) infos.Repository
	Places(db dbx.DBTX) places.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Outbox(db dbx.DBTX) outbox.Repository
}
