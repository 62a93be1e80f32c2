// Package models defines the persisted data models of the identity
// aggregate and the session-token bookkeeping.
package models

import "time"

// Account lifecycle status values.
const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

// Account is the aggregate root. It references its satellites by id; the
// satellites point back via their Parent field. CredentialID is mandatory
// and unique across accounts, InfoID and PlaceID are optional but unique
// when set.
type Account struct {
	ID           string
	InfoID       *string
	CredentialID string
	PlaceID      *string
	// ReferenceID optionally points at an external source-of-truth record.
	ReferenceID *string
	Status      string

	// Lifecycle timestamps are stored twice: human-readable and epoch form.
	CreatedAt   time.Time
	CreatedUnix int64
	UpdatedAt   time.Time
	UpdatedUnix int64
	DeletedAt   *time.Time
	DeletedUnix *int64
}
