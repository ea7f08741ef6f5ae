package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/dan47bennett/typescript-reddit/internal/apperrors"
)

func TestTranslateUniqueViolation(t *testing.T) {
	plain := errors.New("connection refused")
	unknown := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "posts_pkey"}
	notNull := &pgconn.PgError{Code: pgerrcode.NotNullViolation, ConstraintName: UsernameConstraint}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "username constraint",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: UsernameConstraint},
			want: apperrors.ErrUsernameTaken,
		},
		{
			name: "email constraint",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: EmailConstraint},
			want: apperrors.ErrEmailTaken,
		},
		{
			name: "wrapped email constraint",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: EmailConstraint}),
			want: apperrors.ErrEmailTaken,
		},
		{
			name: "constraint name missing, detail names column",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, Detail: "Key (username)=(alice) already exists."},
			want: apperrors.ErrUsernameTaken,
		},
		{
			name: "unknown constraint passes through",
			err:  unknown,
			want: unknown,
		},
		{
			name: "other sql state passes through",
			err:  notNull,
			want: notNull,
		},
		{
			name: "non postgres error passes through",
			err:  plain,
			want: plain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TranslateUniqueViolation(tt.err))
		})
	}
}
