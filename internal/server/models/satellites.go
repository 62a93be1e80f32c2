package models

import "time"

// Credential is the login satellite. Email and Username are unique across
// all credentials. Parent is nil until the aggregate links it to its root.
type Credential struct {
	ID           string
	Parent       *string
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Info is the profile-name satellite.
type Info struct {
	ID        string
	Parent    *string
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// Place is the address satellite.
type Place struct {
	ID         string
	Parent     *string
	Address    string
	PostalCode string
	CreatedAt  time.Time
}
