package validators

import "errors"

const (
	minPasswordLength = 6
	maxPasswordLength = 255
)

var (
	ErrPasswordTooShort = errors.New(`"password" length must be at least 6 characters long`)
	ErrPasswordTooLong  = errors.New(`"password" length must be less than or equal to 255 characters long`)
	ErrPasswordEmpty    = errors.New(`"password" is required`)
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) < minPasswordLength {
		return ErrPasswordTooShort
	}

	if len(p) > maxPasswordLength {
		return ErrPasswordTooLong
	}

	return nil
}
