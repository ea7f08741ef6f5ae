package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/dan47bennett/typescript-reddit/internal/apperrors"
	"github.com/dan47bennett/typescript-reddit/internal/models"
)

const postColumns = `id, title, text, creator_id, created_at, updated_at`

// PostReadRepository handles post read operations
type PostReadRepository struct {
	db *sqlx.DB
}

func NewPostReadRepository(db *sqlx.DB) *PostReadRepository {
	return &PostReadRepository{db: db}
}

// List returns posts newest first. A limit <= 0 returns every post.
func (r *PostReadRepository) List(ctx context.Context, limit int) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	posts := []models.Post{}
	err := r.db.SelectContext(ctx, &posts, query, args...)

	logQuery(query, args, len(posts), err)

	if err != nil {
		return nil, err
	}
	return posts, nil
}

// GetByID returns apperrors.ErrPostNotFound when no row matches.
func (r *PostReadRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	const query = `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	var post models.Post
	err := r.db.GetContext(ctx, &post, query, id)

	logQuery(query, []any{id}, post.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// PostWriteRepository handles post write operations
type PostWriteRepository struct {
	db *sqlx.DB
}

func NewPostWriteRepository(db *sqlx.DB) *PostWriteRepository {
	return &PostWriteRepository{db: db}
}

func (r *PostWriteRepository) Create(ctx context.Context, creatorID int, title, text string) (*models.Post, error) {
	const query = `
		INSERT INTO posts (title, text, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + postColumns

	var post models.Post
	err := r.db.GetContext(ctx, &post, query, title, text, creatorID)

	logQuery(query, []any{title, creatorID}, post.ID, err)

	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update changes title and, when text is not nil, text of a post owned by
// creatorID. Posts that do not exist or belong to someone else yield
// apperrors.ErrPostNotFound.
func (r *PostWriteRepository) Update(ctx context.Context, id, creatorID int, title string, text *string) (*models.Post, error) {
	const query = `
		UPDATE posts
		SET title = $3, text = COALESCE($4, text), updated_at = NOW()
		WHERE id = $1 AND creator_id = $2
		RETURNING ` + postColumns

	var post models.Post
	err := r.db.GetContext(ctx, &post, query, id, creatorID, title, text)

	logQuery(query, []any{id, creatorID, title}, post.ID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post owned by creatorID and reports whether a row was removed.
func (r *PostWriteRepository) Delete(ctx context.Context, id, creatorID int) (bool, error) {
	const query = `DELETE FROM posts WHERE id = $1 AND creator_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, creatorID)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, []any{id, creatorID}, rowsAffected, err)

	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}
