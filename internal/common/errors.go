// Package common holds the error kinds shared by services and the transport
// boundary. Callers never see raw driver or crypto errors, only one of these
// sentinels (possibly wrapped with extra context).
package common

import "errors"

var (

	// validation / lookup errors
	ErrorValidation = errors.New("validation error")
	ErrorNotFound   = errors.New("not found")
	ErrorConflict   = errors.New("already exists")

	// transactional errors
	ErrorTxAborted = errors.New("transaction aborted")
	ErrorAborted   = errors.New("operation aborted")
	ErrorExhausted = errors.New("resource exhausted")

	// auth errors
	ErrorUnauthenticated = errors.New("unauthenticated")

	// token-verification outcomes, classified exhaustively
	ErrorTokenExpired         = errors.New("token expired")
	ErrorTokenMalformed       = errors.New("token malformed")
	ErrorTokenRevoked         = errors.New("token revoked")
	ErrorTokenIssuerMismatch  = errors.New("token issuer mismatch")
	ErrorTokenSubjectMismatch = errors.New("token subject mismatch")
	ErrorTokenUnclassified    = errors.New("token verification failed: unclassified")

	// session bookkeeping
	ErrorSessionMissing = errors.New("session record missing")

	// store state
	ErrorUnavailable = errors.New("service unavailable")
	ErrorInternal    = errors.New("internal error")
)
