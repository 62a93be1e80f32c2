package models

import "time"

// AccountView is the denormalized read model: root joined with its
// satellites, with internal satellite ids and the password hash stripped.
// It is the only shape the service hands out of read paths and the payload
// embedded in session tokens.
type AccountView struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	ReferenceID *string         `json:"reference,omitempty"`
	Info        *InfoView       `json:"info,omitempty"`
	Credential  *CredentialView `json:"credential,omitempty"`
	Place       *PlaceView      `json:"place,omitempty"`
	CreatedAt   time.Time       `json:"created"`
	CreatedUnix int64           `json:"createdUnix"`
	UpdatedAt   time.Time       `json:"updated"`
	UpdatedUnix int64           `json:"updatedUnix"`
}

type InfoView struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type CredentialView struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type PlaceView struct {
	Address    string `json:"address"`
	PostalCode string `json:"postalCode"`
}
