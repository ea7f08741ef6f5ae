package gormrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dan47bennett/typescript-reddit/internal/apperrors"
	"github.com/dan47bennett/typescript-reddit/internal/repositories"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

var userRowColumns = []string{"id", "username", "email", "password", "created_at", "updated_at"}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{name: "created"},
		{
			name:    "username taken",
			dbErr:   &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: repositories.UsernameConstraint},
			wantErr: apperrors.ErrUsernameTaken,
		},
		{
			name:    "email taken",
			dbErr:   &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: repositories.EmailConstraint},
			wantErr: apperrors.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gdb, mock := newMockGorm(t)
			repo := NewUserRepository(gdb)

			exp := mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`))
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
			}

			user, err := repo.Create(context.Background(), "alice", "a@x.com", "hash")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 3, user.ID)
				assert.Equal(t, "alice", user.Username)
				assert.False(t, user.CreatedAt.IsZero())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Get(t *testing.T) {
	now := time.Now()

	t.Run("by email", func(t *testing.T) {
		gdb, mock := newMockGorm(t)
		repo := NewUserRepository(gdb)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(1, "bob", "b@x.com", "hash", now, now))

		user, err := repo.GetByEmail(context.Background(), "b@x.com")
		require.NoError(t, err)
		assert.Equal(t, "bob", user.Username)
	})

	t.Run("missing", func(t *testing.T) {
		gdb, mock := newMockGorm(t)
		repo := NewUserRepository(gdb)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		user, err := repo.GetByID(context.Background(), 10)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		assert.Nil(t, user)
	})

	t.Run("db error", func(t *testing.T) {
		gdb, mock := newMockGorm(t)
		repo := NewUserRepository(gdb)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
			WillReturnError(errors.New("boom"))

		_, err := repo.GetByUsername(context.Background(), "x")
		assert.EqualError(t, err, "boom")
	})
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	gdb, mock := newMockGorm(t)
	repo := NewUserRepository(gdb)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.UpdatePassword(context.Background(), 1, "new"))
	assert.ErrorIs(t, repo.UpdatePassword(context.Background(), 2, "new"), apperrors.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var postRowColumns = []string{"id", "title", "text", "creator_id", "created_at", "updated_at"}

func TestPostRepository_List(t *testing.T) {
	gdb, mock := newMockGorm(t)
	repo := NewPostRepository(gdb)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" ORDER BY created_at DESC,id DESC LIMIT $1`)).
		WillReturnRows(sqlmock.NewRows(postRowColumns).
			AddRow(2, "b", "", 1, now, now).
			AddRow(1, "a", "", 1, now, now))

	posts, err := repo.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, 2, posts[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByID_NotFound(t *testing.T) {
	gdb, mock := newMockGorm(t)
	repo := NewPostRepository(gdb)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows(postRowColumns))

	post, err := repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
	assert.Nil(t, post)
}

func TestPostRepository_Create(t *testing.T) {
	gdb, mock := newMockGorm(t)
	repo := NewPostRepository(gdb)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	post, err := repo.Create(context.Background(), 2, "title", "text")
	require.NoError(t, err)
	assert.Equal(t, 5, post.ID)
	assert.Equal(t, 2, post.CreatorID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Update(t *testing.T) {
	now := time.Now()
	text := "body"

	t.Run("updated", func(t *testing.T) {
		gdb, mock := newMockGorm(t)
		repo := NewPostRepository(gdb)

		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE "posts" SET`)).
			WillReturnRows(sqlmock.NewRows(postRowColumns).AddRow(1, "title", "body", 2, now, now))

		post, err := repo.Update(context.Background(), 1, 2, "title", &text)
		require.NoError(t, err)
		assert.Equal(t, 1, post.ID)
		assert.Equal(t, "body", post.Text)
	})

	t.Run("not owned", func(t *testing.T) {
		gdb, mock := newMockGorm(t)
		repo := NewPostRepository(gdb)

		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE "posts" SET`)).
			WillReturnRows(sqlmock.NewRows(postRowColumns))

		post, err := repo.Update(context.Background(), 1, 3, "title", nil)
		assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
		assert.Nil(t, post)
	})
}

func TestPostRepository_Delete(t *testing.T) {
	gdb, mock := newMockGorm(t)
	repo := NewPostRepository(gdb)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE id = $1 AND creator_id = $2`)).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.Delete(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
