package models

import "time"

// ChangeOp identifies the kind of aggregate mutation behind an event.
type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// ChangeEvent is one row of the account outbox. Aggregate mutations append
// an event in the same transaction as the write; the reconciler consumes
// events oldest-first and repairs satellite back-references.
//
// The satellite columns carry the reference values after the mutation
// (nil for delete events).
type ChangeEvent struct {
	ID           int64
	Op           ChangeOp
	AccountID    string
	InfoID       *string
	CredentialID *string
	PlaceID      *string
	CreatedAt    time.Time
	ProcessedAt  *time.Time
}
