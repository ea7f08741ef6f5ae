package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan47bennett/typescript-reddit/internal/models"
)

func TestFieldErrors_Register(t *testing.T) {
	tests := []struct {
		name  string
		input models.UsernamePasswordInput
		want  []models.FieldError
	}{
		{
			name:  "valid",
			input: models.UsernamePasswordInput{Email: "a@x.com", Username: "alice", Password: "secret1"},
		},
		{
			name:  "email without at sign",
			input: models.UsernamePasswordInput{Email: "ax.com", Username: "alice", Password: "secret1"},
			want:  []models.FieldError{{Field: "email", Message: "Invalid email"}},
		},
		{
			name:  "short username",
			input: models.UsernamePasswordInput{Email: "a@x.com", Username: "al", Password: "secret1"},
			want:  []models.FieldError{{Field: "username", Message: "Username length must be greater than 2"}},
		},
		{
			name:  "username with at sign",
			input: models.UsernamePasswordInput{Email: "a@x.com", Username: "al@ce", Password: "secret1"},
			want:  []models.FieldError{{Field: "username", Message: `Username cannot include "@"`}},
		},
		{
			name:  "short password",
			input: models.UsernamePasswordInput{Email: "a@x.com", Username: "alice", Password: "1234"},
			want:  []models.FieldError{{Field: "password", Message: "Password length must be greater than 4"}},
		},
		{
			name:  "every field invalid",
			input: models.UsernamePasswordInput{Email: "ax", Username: "a", Password: ""},
			want: []models.FieldError{
				{Field: "email", Message: "Invalid email"},
				{Field: "username", Message: "Username length must be greater than 2"},
				{Field: "password", Message: "Password length must be greater than 4"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fieldErrors(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldErrors_NewPassword(t *testing.T) {
	got, err := fieldErrors(newPasswordInput{NewPassword: "abc"})
	require.NoError(t, err)
	assert.Equal(t, []models.FieldError{{Field: "newPassword", Message: "Password length must be greater than 4"}}, got)

	got, err = fieldErrors(newPasswordInput{NewPassword: "abcde"})
	require.NoError(t, err)
	assert.Nil(t, got)
}
