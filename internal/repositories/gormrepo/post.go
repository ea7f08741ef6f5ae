package gormrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dan47bennett/typescript-reddit/internal/apperrors"
	"github.com/dan47bennett/typescript-reddit/internal/logger"
	"github.com/dan47bennett/typescript-reddit/internal/models"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// List returns posts newest first. A limit <= 0 returns every post.
func (r *PostRepository) List(ctx context.Context, limit int) ([]models.Post, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	posts := []models.Post{}
	err := q.Find(&posts).Error

	logger.Log.Infow("gorm find", "table", "posts", "limit", limit, "result", len(posts), "error", err)

	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&post).Error

	logger.Log.Infow("gorm take", "table", "posts", "args", []any{id}, "result", post.ID, "error", err)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) Create(ctx context.Context, creatorID int, title, text string) (*models.Post, error) {
	post := models.Post{
		Title:     title,
		Text:      text,
		CreatorID: creatorID,
	}
	err := r.db.WithContext(ctx).Create(&post).Error

	logger.Log.Infow("gorm create", "table", "posts", "args", []any{title, creatorID}, "result", post.ID, "error", err)

	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update only touches posts owned by creatorID.
func (r *PostRepository) Update(ctx context.Context, id, creatorID int, title string, text *string) (*models.Post, error) {
	values := map[string]any{"title": title, "updated_at": time.Now()}
	if text != nil {
		values["text"] = *text
	}

	var post models.Post
	res := r.db.WithContext(ctx).
		Model(&post).
		Clauses(clause.Returning{}).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Updates(values)

	logger.Log.Infow("gorm update", "table", "posts", "args", []any{id, creatorID, title}, "result", res.RowsAffected, "error", res.Error)

	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrPostNotFound
	}
	return &post, nil
}

func (r *PostRepository) Delete(ctx context.Context, id, creatorID int) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Delete(&models.Post{})

	logger.Log.Infow("gorm delete", "table", "posts", "args", []any{id, creatorID}, "result", res.RowsAffected, "error", res.Error)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
