package service

import (
	"errors"
	"unicode"
)

var (
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
	ErrPasswordNumeric   = errors.New("password cannot be entirely numeric")
	ErrPasswordTooSimple = errors.New("password must contain letters and digits")
	ErrPasswordsMismatch = errors.New("passwords must be the same")
)

const minPasswordLength = 8

// ValidatePassword aplica la politica de fortaleza a una password nueva.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	var hasLetter, hasDigit, hasOther bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasOther = true
		}
	}

	if hasDigit && !hasLetter && !hasOther {
		return ErrPasswordNumeric
	}
	if !hasLetter || !hasDigit {
		return ErrPasswordTooSimple
	}
	return nil
}
