package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// accountNamespace is the fixed namespace for aggregate-root ids.
var accountNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://dka-services.dev/account"))

// NewAccountID derives a root id by hashing the current time plus entropy
// into the account namespace, so root ids are stable-format UUIDs that do
// not collide across hosts.
func NewAccountID() string {
	var entropy [8]byte
	_, _ = rand.Read(entropy[:])

	seed := time.Now().UTC().Format(time.RFC3339Nano) + "/" + hex.EncodeToString(entropy[:])
	return uuid.NewSHA1(accountNamespace, []byte(seed)).String()
}

// NewID returns a random identifier for satellites and token jtis.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id is a syntactically valid identifier.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
