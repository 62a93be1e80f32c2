package models

import "time"

// Session-token revocation statuses.
const (
	TokenActive  = "active"
	TokenRevoked = "revoked"
)

// SessionToken is the revocation record persisted for every refresh token.
// JTI is the identifier embedded in the token itself.
type SessionToken struct {
	JTI           string
	AccountID     string
	Issuer        string
	Subject       string
	ExpiresAtUnix int64
	Status        string
	CreatedAt     time.Time
}
