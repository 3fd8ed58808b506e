// AngelaMos | 2026
// validation_test.go

package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

type signup struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestFormatValidationError(t *testing.T) {
	v := core.NewValidator()

	tests := []struct {
		name string
		in   signup
		want string
	}{
		{
			"missing email",
			signup{Username: "alice", Password: "secret1"},
			"email is required",
		},
		{
			"bad email",
			signup{Email: "nope", Username: "alice", Password: "secret1"},
			"email must be a valid email address",
		},
		{
			"short username",
			signup{Email: "a@b.io", Username: "al", Password: "secret1"},
			"username must be at least 3 characters",
		},
		{
			"username charset",
			signup{Email: "a@b.io", Username: "al ice!", Password: "secret1"},
			"username can only contain letters, numbers, and underscores",
		},
		{
			"short password",
			signup{Email: "a@b.io", Username: "alice", Password: "123"},
			"password must be at least 6 characters",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.in)
			require.Error(t, err)
			assert.Equal(t, tc.want, core.FormatValidationError(err))
		})
	}
}

func TestValidatorAcceptsGoodInput(t *testing.T) {
	v := core.NewValidator()
	err := v.Struct(signup{Email: "a@b.io", Username: "alice_01", Password: "secret1"})
	assert.NoError(t, err)
}
