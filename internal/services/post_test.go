package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan47bennett/typescript-reddit/internal/apperrors"
	"github.com/dan47bennett/typescript-reddit/internal/models"
)

func newPostService(t *testing.T) (*PostService, *MockPostReader, *MockPostWriter, *MockEventPublisher) {
	ctrl := gomock.NewController(t)
	reader := NewMockPostReader(ctrl)
	writer := NewMockPostWriter(ctrl)
	events := NewMockEventPublisher(ctrl)
	return NewPostService(reader, writer, events), reader, writer, events
}

func TestPostService_List(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "no limit", limit: 0, wantLimit: 0},
		{name: "negative means no limit", limit: -3, wantLimit: 0},
		{name: "within cap", limit: 10, wantLimit: 10},
		{name: "capped", limit: 500, wantLimit: MaxPostsLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, reader, _, _ := newPostService(t)
			reader.EXPECT().List(gomock.Any(), tt.wantLimit).Return([]models.Post{{ID: 1}}, nil)

			posts, err := svc.List(context.Background(), tt.limit)
			require.NoError(t, err)
			assert.Len(t, posts, 1)
		})
	}

	t.Run("reader error", func(t *testing.T) {
		svc, reader, _, _ := newPostService(t)
		reader.EXPECT().List(gomock.Any(), 0).Return(nil, errors.New("db error"))

		_, err := svc.List(context.Background(), 0)
		assert.Error(t, err)
	})
}

func TestPostService_Get(t *testing.T) {
	svc, reader, _, _ := newPostService(t)

	reader.EXPECT().GetByID(gomock.Any(), 1).Return(&models.Post{ID: 1, Title: "hi"}, nil)
	post, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "hi", post.Title)

	reader.EXPECT().GetByID(gomock.Any(), 2).Return(nil, apperrors.ErrPostNotFound)
	post, err = svc.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, post)

	reader.EXPECT().GetByID(gomock.Any(), 3).Return(nil, errors.New("db error"))
	_, err = svc.Get(context.Background(), 3)
	assert.Error(t, err)
}

func TestPostService_Create(t *testing.T) {
	svc, _, writer, events := newPostService(t)

	writer.EXPECT().Create(gomock.Any(), 7, "title", "text").Return(&models.Post{ID: 11, CreatorID: 7}, nil)
	events.EXPECT().Publish(gomock.Any(), models.EventPostCreated, 7, 11)

	post, err := svc.Create(context.Background(), 7, models.PostInput{Title: "title", Text: "text"})
	require.NoError(t, err)
	assert.Equal(t, 11, post.ID)
}

func TestPostService_Update(t *testing.T) {
	text := "new text"

	t.Run("owner", func(t *testing.T) {
		svc, _, writer, events := newPostService(t)
		writer.EXPECT().Update(gomock.Any(), 11, 7, "title", &text).Return(&models.Post{ID: 11, Text: text}, nil)
		events.EXPECT().Publish(gomock.Any(), models.EventPostUpdated, 7, 11)

		post, err := svc.Update(context.Background(), 7, 11, "title", &text)
		require.NoError(t, err)
		assert.Equal(t, text, post.Text)
	})

	t.Run("not owner", func(t *testing.T) {
		svc, _, writer, _ := newPostService(t)
		writer.EXPECT().Update(gomock.Any(), 11, 8, "title", nil).Return(nil, apperrors.ErrPostNotFound)

		post, err := svc.Update(context.Background(), 8, 11, "title", nil)
		require.NoError(t, err)
		assert.Nil(t, post)
	})
}

func TestPostService_Delete(t *testing.T) {
	svc, _, writer, events := newPostService(t)

	writer.EXPECT().Delete(gomock.Any(), 11, 7).Return(true, nil)
	events.EXPECT().Publish(gomock.Any(), models.EventPostDeleted, 7, 11)
	deleted, err := svc.Delete(context.Background(), 7, 11)
	require.NoError(t, err)
	assert.True(t, deleted)

	writer.EXPECT().Delete(gomock.Any(), 12, 7).Return(false, nil)
	deleted, err = svc.Delete(context.Background(), 7, 12)
	require.NoError(t, err)
	assert.False(t, deleted)
}
