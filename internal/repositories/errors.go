package repositories

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dan47bennett/typescript-reddit/internal/apperrors"
)

// Unique constraints declared by the users migration.
const (
	UsernameConstraint = "users_username_key"
	EmailConstraint    = "users_email_key"
)

// TranslateUniqueViolation maps a unique violation on the users table to the
// matching sentinel error. Any other error, including violations of unknown
// constraints, is returned unchanged.
func TranslateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return err
	}

	switch {
	case pgErr.ConstraintName == UsernameConstraint,
		pgErr.ConstraintName == "" && strings.Contains(pgErr.Detail, "(username)"):
		return apperrors.ErrUsernameTaken
	case pgErr.ConstraintName == EmailConstraint,
		pgErr.ConstraintName == "" && strings.Contains(pgErr.Detail, "(email)"):
		return apperrors.ErrEmailTaken
	default:
		return err
	}
}
