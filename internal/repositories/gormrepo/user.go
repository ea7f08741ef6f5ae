// Package gormrepo implements the user and post repositories on top of gorm.
// It satisfies the same contracts as the sqlx repositories and runs against
// the same migrated schema.
package gormrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dan47bennett/typescript-reddit/internal/apperrors"
	"github.com/dan47bennett/typescript-reddit/internal/logger"
	"github.com/dan47bennett/typescript-reddit/internal/models"
	"github.com/dan47bennett/typescript-reddit/internal/repositories"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) first(ctx context.Context, cond string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(cond, arg).Take(&user).Error

	logger.Log.Infow("gorm take", "table", "users", "where", cond, "args", []any{arg}, "result", user.ID, "error", err)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create relies on the unique constraints to reject duplicates.
func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	user := models.User{
		Username: username,
		Email:    email,
		Password: passwordHash,
	}
	err := r.db.WithContext(ctx).Create(&user).Error

	logger.Log.Infow("gorm create", "table", "users", "args", []any{username, email}, "result", user.ID, "error", err)

	if err != nil {
		return nil, repositories.TranslateUniqueViolation(err)
	}
	return &user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"password": passwordHash, "updated_at": time.Now()})

	logger.Log.Infow("gorm update", "table", "users", "args", []any{id}, "result", res.RowsAffected, "error", res.Error)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
