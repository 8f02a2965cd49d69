package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/validate"
)

func TestEmail(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, validate.Email("test@example.com"))
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, email := range []string{"", "plain", "a b@c.d", "no@tld"} {
			err := validate.Email(email)
			require.Error(t, err, email)
			assert.ErrorIs(t, err, domain.ErrValidation)
		}
	})
}

func TestPassword(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, validate.Password("Test123456"))
	})

	t.Run("Invalid", func(t *testing.T) {
		cases := map[string]string{
			"empty":   "",
			"short":   "Ab1",
			"noUpper": "test123456",
			"noLower": "TEST123456",
			"noDigit": "TestTestTest",
		}
		for name, password := range cases {
			t.Run(name, func(t *testing.T) {
				err := validate.Password(password)
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
			})
		}
	})
}

func TestPasswordConfirm(t *testing.T) {
	assert.NoError(t, validate.PasswordConfirm("Test123456", "Test123456"))
	assert.ErrorIs(t, validate.PasswordConfirm("Test123456", ""), domain.ErrValidation)
	assert.ErrorIs(t, validate.PasswordConfirm("Test123456", "Other123456"), domain.ErrValidation)
}

func TestUsername(t *testing.T) {
	assert.NoError(t, validate.Username("user_01"))
	assert.ErrorIs(t, validate.Username(""), domain.ErrValidation)
	assert.ErrorIs(t, validate.Username("ab"), domain.ErrValidation)
	assert.ErrorIs(t, validate.Username("way_too_long_username_here"), domain.ErrValidation)
	assert.ErrorIs(t, validate.Username("bad name"), domain.ErrValidation)
}

func TestPhone(t *testing.T) {
	assert.NoError(t, validate.Phone("0912345678"))
	assert.ErrorIs(t, validate.Phone(""), domain.ErrValidation)
	assert.ErrorIs(t, validate.Phone("0812345678"), domain.ErrValidation)
	assert.ErrorIs(t, validate.Phone("091234567"), domain.ErrValidation)
}

func TestRequired(t *testing.T) {
	assert.NoError(t, validate.Required("name", "value"))
	assert.ErrorIs(t, validate.Required("name", "   "), domain.ErrValidation)
}

func TestMinLength(t *testing.T) {
	assert.NoError(t, validate.MinLength("bio", "abcd", 4))
	assert.ErrorIs(t, validate.MinLength("bio", "abc", 4), domain.ErrValidation)
}
