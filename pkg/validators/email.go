// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"net/mail"
)

var (
	ErrEmailEmpty   = errors.New(`"email" is required`)
	ErrEmailInvalid = errors.New(`"email" must be a valid email`)
)

func EmailValidator(e string) error {
	if e == "" {
		return ErrEmailEmpty
	}

	// ParseAddress also accepts "Name <addr>" forms, only bare addresses
	// are valid here
	a, err := mail.ParseAddress(e)
	if err != nil || a.Address != e {
		return ErrEmailInvalid
	}

	return nil
}
