package services

import (
	"context"
	"errors"

	"github.com/dan47bennett/typescript-reddit/internal/apperrors"
	"github.com/dan47bennett/typescript-reddit/internal/logger"
	"github.com/dan47bennett/typescript-reddit/internal/models"
)

//go:generate mockgen -source=post.go -destination=mock_post.go -package=services

// MaxPostsLimit caps the number of posts returned by one listing.
const MaxPostsLimit = 50

// PostReader defines read-only operations for posts.
type PostReader interface {
	List(ctx context.Context, limit int) ([]models.Post, error)
	GetByID(ctx context.Context, id int) (*models.Post, error)
}

// PostWriter defines write operations for posts.
type PostWriter interface {
	Create(ctx context.Context, creatorID int, title, text string) (*models.Post, error)
	Update(ctx context.Context, id, creatorID int, title string, text *string) (*models.Post, error)
	Delete(ctx context.Context, id, creatorID int) (bool, error)
}

type PostService struct {
	reader PostReader
	writer PostWriter
	events EventPublisher
}

func NewPostService(reader PostReader, writer PostWriter, events EventPublisher) *PostService {
	return &PostService{
		reader: reader,
		writer: writer,
		events: events,
	}
}

// List returns posts newest first. A limit <= 0 means no limit.
func (svc *PostService) List(ctx context.Context, limit int) ([]models.Post, error) {
	if limit > MaxPostsLimit {
		limit = MaxPostsLimit
	}
	if limit < 0 {
		limit = 0
	}

	posts, err := svc.reader.List(ctx, limit)
	if err != nil {
		logger.Log.Errorw("failed to list posts", "limit", limit, "err", err)
		return nil, err
	}
	return posts, nil
}

// Get returns nil without error when the post does not exist.
func (svc *PostService) Get(ctx context.Context, id int) (*models.Post, error) {
	post, err := svc.reader.GetByID(ctx, id)
	if errors.Is(err, apperrors.ErrPostNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.Log.Errorw("failed to get post", "post_id", id, "err", err)
		return nil, err
	}
	return post, nil
}

func (svc *PostService) Create(ctx context.Context, userID int, in models.PostInput) (*models.Post, error) {
	post, err := svc.writer.Create(ctx, userID, in.Title, in.Text)
	if err != nil {
		logger.Log.Errorw("failed to create post", "user_id", userID, "err", err)
		return nil, err
	}

	svc.events.Publish(ctx, models.EventPostCreated, userID, post.ID)
	return post, nil
}

// Update edits a post owned by userID. It returns nil when the post is
// absent or belongs to someone else.
func (svc *PostService) Update(ctx context.Context, userID, id int, title string, text *string) (*models.Post, error) {
	post, err := svc.writer.Update(ctx, id, userID, title, text)
	if errors.Is(err, apperrors.ErrPostNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.Log.Errorw("failed to update post", "post_id", id, "user_id", userID, "err", err)
		return nil, err
	}

	svc.events.Publish(ctx, models.EventPostUpdated, userID, post.ID)
	return post, nil
}

// Delete removes a post owned by userID and reports whether a row was removed.
func (svc *PostService) Delete(ctx context.Context, userID, id int) (bool, error) {
	deleted, err := svc.writer.Delete(ctx, id, userID)
	if err != nil {
		logger.Log.Errorw("failed to delete post", "post_id", id, "user_id", userID, "err", err)
		return false, err
	}

	if deleted {
		svc.events.Publish(ctx, models.EventPostDeleted, userID, id)
	}
	return deleted, nil
}
