package dbx

import (
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is SQLSTATE 23505.
const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err was caused by a unique-index
// conflict. It understands pgx errors and, for the sqlite driver used in
// tests, falls back to the message text.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// IsConnectivity reports whether err looks like a lost or unreachable
// connection rather than a statement-level failure. Callers map
// connectivity failures to "unavailable" and everything else reported by a
// ping to "internal".
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 - connection exceptions.
		return strings.HasPrefix(pgErr.Code, "08")
	}

	return pgconn.Timeout(err)
}
