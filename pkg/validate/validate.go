// Package validate holds the pre-flight form validators. A failing
// validator rejects synchronously with domain.ErrValidation before any
// request is issued.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
)

const (
	passwordMinLength = 8
	usernameMinLength = 3
	usernameMaxLength = 20
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe    = regexp.MustCompile(`^09\d{8}$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	lowerRe    = regexp.MustCompile(`[a-z]`)
	upperRe    = regexp.MustCompile(`[A-Z]`)
	digitRe    = regexp.MustCompile(`\d`)
)

func failf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

func Email(email string) error {
	if email == "" {
		return failf("email is required")
	}
	if !emailRe.MatchString(email) {
		return failf("invalid email format")
	}
	return nil
}

// Password requires at least 8 chars with an upper, a lower and a digit.
func Password(password string) error {
	if password == "" {
		return failf("password is required")
	}
	if len(password) < passwordMinLength {
		return failf("password must be at least %d characters", passwordMinLength)
	}
	if !lowerRe.MatchString(password) {
		return failf("password must contain a lowercase letter")
	}
	if !upperRe.MatchString(password) {
		return failf("password must contain an uppercase letter")
	}
	if !digitRe.MatchString(password) {
		return failf("password must contain a digit")
	}
	return nil
}

func PasswordConfirm(password, confirm string) error {
	if confirm == "" {
		return failf("password confirmation is required")
	}
	if password != confirm {
		return failf("passwords do not match")
	}
	return nil
}

func Username(name string) error {
	if name == "" {
		return failf("username is required")
	}
	if len(name) < usernameMinLength {
		return failf("username must be at least %d characters", usernameMinLength)
	}
	if len(name) > usernameMaxLength {
		return failf("username must be at most %d characters", usernameMaxLength)
	}
	if !usernameRe.MatchString(name) {
		return failf("username may contain only letters, digits and underscore")
	}
	return nil
}

// Phone validates a TW mobile number: 09 followed by 8 digits.
func Phone(phone string) error {
	if phone == "" {
		return failf("phone is required")
	}
	if !phoneRe.MatchString(phone) {
		return failf("invalid phone format")
	}
	return nil
}

func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return failf("%s is required", field)
	}
	return nil
}

func MinLength(field, value string, n int) error {
	if len(value) < n {
		return failf("%s must be at least %d characters", field, n)
	}
	return nil
}
