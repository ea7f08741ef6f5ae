package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/dan47bennett/typescript-reddit/internal/apperrors"
	"github.com/dan47bennett/typescript-reddit/internal/models"
)

const userColumns = `id, username, email, password, created_at, updated_at`

// UserReadRepository handles user read operations
type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByID returns apperrors.ErrUserNotFound when no row matches.
func (r *UserReadRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByUsername returns apperrors.ErrUserNotFound when no row matches.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.getOne(ctx, query, username)
}

// GetByEmail returns apperrors.ErrUserNotFound when no row matches.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *UserReadRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, query, arg)

	logQuery(query, []any{arg}, user.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserWriteRepository handles user write operations
type UserWriteRepository struct {
	db *sqlx.DB
}

func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Create inserts a user without checking for existing rows first; the unique
// constraints decide. A conflict is reported as apperrors.ErrUsernameTaken or
// apperrors.ErrEmailTaken.
func (r *UserWriteRepository) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	const query = `
		INSERT INTO users (username, email, password, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + userColumns

	var user models.User
	err := r.db.GetContext(ctx, &user, query, username, email, passwordHash)

	// password hash is not logged
	logQuery(query, []any{username, email}, user.ID, err)

	if err != nil {
		return nil, TranslateUniqueViolation(err)
	}
	return &user, nil
}

// UpdatePassword stores a new password hash for the user.
func (r *UserWriteRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	const query = `
		UPDATE users
		SET password = $2, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, []any{id}, rowsAffected, err)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
