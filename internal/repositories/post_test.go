package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan47bennett/typescript-reddit/internal/apperrors"
)

var postRowColumns = []string{"id", "title", "text", "creator_id", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestPostReadRepository_List(t *testing.T) {
	now := time.Now()

	t.Run("with limit", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostReadRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM posts ORDER BY created_at DESC, id DESC LIMIT $1")).
			WithArgs(2).
			WillReturnRows(sqlmock.NewRows(postRowColumns).
				AddRow(2, "second", "b", 1, now, now).
				AddRow(1, "first", "a", 1, now, now))

		posts, err := repo.List(context.Background(), 2)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "second", posts[0].Title)
		assert.Equal(t, 1, posts[1].CreatorID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("without limit returns empty slice", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostReadRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM posts ORDER BY created_at DESC, id DESC")).
			WithArgs().
			WillReturnRows(sqlmock.NewRows(postRowColumns))

		posts, err := repo.List(context.Background(), 0)
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostReadRepository(db)

		mock.ExpectQuery("FROM posts").WillReturnError(sql.ErrConnDone)

		posts, err := repo.List(context.Background(), 5)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.Nil(t, posts)
	})
}

func TestPostReadRepository_GetByID(t *testing.T) {
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostReadRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM posts WHERE id = $1")).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(postRowColumns).AddRow(7, "title", "text", 3, now, now))

		post, err := repo.GetByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, 7, post.ID)
		assert.Equal(t, 3, post.CreatorID)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostReadRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM posts WHERE id = $1")).
			WithArgs(8).
			WillReturnRows(sqlmock.NewRows(postRowColumns))

		post, err := repo.GetByID(context.Background(), 8)
		assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
		assert.Nil(t, post)
	})
}

func TestPostWriteRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostWriteRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO posts")).
		WithArgs("hello", "world", 4).
		WillReturnRows(sqlmock.NewRows(postRowColumns).AddRow(1, "hello", "world", 4, now, now))

	post, err := repo.Create(context.Background(), 4, "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, 1, post.ID)
	assert.Equal(t, "world", post.Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostWriteRepository_Update(t *testing.T) {
	now := time.Now()
	text := "new body"

	t.Run("updated", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostWriteRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE posts")).
			WithArgs(1, 4, "new title", "new body").
			WillReturnRows(sqlmock.NewRows(postRowColumns).AddRow(1, "new title", "new body", 4, now, now))

		post, err := repo.Update(context.Background(), 1, 4, "new title", &text)
		require.NoError(t, err)
		assert.Equal(t, "new title", post.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not owned or missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostWriteRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE posts")).
			WithArgs(1, 5, "new title", nil).
			WillReturnRows(sqlmock.NewRows(postRowColumns))

		post, err := repo.Update(context.Background(), 1, 5, "new title", nil)
		assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
		assert.Nil(t, post)
	})
}

func TestPostWriteRepository_Delete(t *testing.T) {
	tests := []struct {
		name    string
		result  sql.Result
		execErr error
		want    bool
		wantErr bool
	}{
		{name: "deleted", result: sqlmock.NewResult(0, 1), want: true},
		{name: "nothing to delete", result: sqlmock.NewResult(0, 0), want: false},
		{name: "db error", execErr: errors.New("boom"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewPostWriteRepository(db)

			exp := mock.ExpectExec(regexp.QuoteMeta("DELETE FROM posts WHERE id = $1 AND creator_id = $2")).
				WithArgs(9, 2)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(tt.result)
			}

			deleted, err := repo.Delete(context.Background(), 9, 2)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, deleted)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
