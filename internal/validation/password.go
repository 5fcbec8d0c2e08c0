// Package validation holds input validation rules shared by services.
package validation

import (
	"errors"
	"regexp"
	"unicode"
)

const (
	minPasswordLength = 12
	maxPasswordLength = 128
	minUsernameLength = 3
	maxUsernameLength = 30
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*[a-zA-Z0-9]$`)

// ValidatePassword enforces the password policy: 12-128 characters with at
// least one upper-case letter, one lower-case letter, one digit and one
// special character.
func ValidatePassword(password string) error {
	runes := []rune(password)
	if len(runes) < minPasswordLength {
		return errors.New("password must be at least 12 characters long")
	}
	if len(runes) > maxPasswordLength {
		return errors.New("password must be at most 128 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if !hasUpper {
		return errors.New("password must contain an upper-case letter")
	}
	if !hasLower {
		return errors.New("password must contain a lower-case letter")
	}
	if !hasDigit {
		return errors.New("password must contain a digit")
	}
	if !hasSpecial {
		return errors.New("password must contain a special character")
	}
	return nil
}

// ValidateUsername enforces the username format: 3-30 characters, letters,
// digits, dash or underscore, starting and ending with a letter or digit.
func ValidateUsername(username string) error {
	if len(username) < minUsernameLength {
		return errors.New("username must be at least 3 characters long")
	}
	if len(username) > maxUsernameLength {
		return errors.New("username must be at most 30 characters long")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username may contain only letters, digits, dashes and underscores, and must start and end with a letter or digit")
	}
	return nil
}
