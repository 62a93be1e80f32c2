package services

import (
	"fmt"
	"regexp"

	"github.com/dka-services/account-core/internal/common"
	"github.com/dka-services/account-core/internal/server/models"
)

// InfoInput carries the profile-name fields for create/update operations.
type InfoInput struct {
	FirstName string
	LastName  string
}

// CredentialInput carries the login fields. Password is plaintext here and
// hashed before it ever reaches a repository.
type CredentialInput struct {
	Email    string
	Username string
	Password string
}

// PlaceInput carries the address fields.
type PlaceInput struct {
	Address    string
	PostalCode string
}

// UpdateInput names the field groups touched by UpdateOne. Nil groups are
// left alone; at least one group must be present.
type UpdateInput struct {
	Info       *InfoInput
	Credential *CredentialInput
	Place      *PlaceInput
}

func (u UpdateInput) groups() int {
	n := 0
	if u.Info != nil {
		n++
	}
	if u.Credential != nil {
		n++
	}
	if u.Place != nil {
		n++
	}
	return n
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validateCredentialInput(in CredentialInput, passwordRequired bool) error {
	if in.Username == "" {
		return fmt.Errorf("username is required: %w", common.ErrorValidation)
	}
	if !emailRe.MatchString(in.Email) {
		return fmt.Errorf("invalid email %q: %w", in.Email, common.ErrorValidation)
	}
	if passwordRequired && in.Password == "" {
		return fmt.Errorf("password is required: %w", common.ErrorValidation)
	}
	return nil
}

func validateAccountID(id string) error {
	if !models.ValidID(id) {
		return fmt.Errorf("malformed account id %q: %w", id, common.ErrorValidation)
	}
	return nil
}

func validateJTI(jti string) error {
	if !models.ValidID(jti) {
		return fmt.Errorf("malformed jti %q: %w", jti, common.ErrorValidation)
	}
	return nil
}
