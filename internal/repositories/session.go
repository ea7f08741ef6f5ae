package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dan47bennett/typescript-reddit/internal/apperrors"
	"github.com/dan47bennett/typescript-reddit/internal/logger"
	"github.com/dan47bennett/typescript-reddit/internal/models"
)

const sessionKeyPrefix = "session:"

// SessionRedisRepository stores session records keyed by session id.
type SessionRedisRepository struct {
	client *redis.Client
}

func NewSessionRedisRepository(client *redis.Client) *SessionRedisRepository {
	return &SessionRedisRepository{client: client}
}

// Get returns apperrors.ErrSessionNotFound for unknown or evicted ids.
func (r *SessionRedisRepository) Get(ctx context.Context, id string) (*models.SessionData, error) {
	key := sessionKeyPrefix + id

	val, err := r.client.Get(ctx, key).Bytes()
	logger.Log.Debugw("redis get", "key", sessionKeyPrefix+"<redacted>", "error", err)
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var data models.SessionData
	if err := json.Unmarshal(val, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Save writes the record; a zero ttl keeps it until deleted or evicted.
func (r *SessionRedisRepository) Save(ctx context.Context, id string, data models.SessionData, ttl time.Duration) error {
	val, err := json.Marshal(data)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, sessionKeyPrefix+id, val, ttl).Err()
	logger.Log.Debugw("redis set", "key", sessionKeyPrefix+"<redacted>", "user_id", data.UserID, "ttl", ttl, "error", err)
	return err
}

// Delete is a no-op for ids that do not exist.
func (r *SessionRedisRepository) Delete(ctx context.Context, id string) error {
	err := r.client.Del(ctx, sessionKeyPrefix+id).Err()
	logger.Log.Debugw("redis del", "key", sessionKeyPrefix+"<redacted>", "error", err)
	return err
}
