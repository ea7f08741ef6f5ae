package repositories

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dan47bennett/typescript-reddit/internal/apperrors"
	"github.com/dan47bennett/typescript-reddit/internal/logger"
)

const resetTokenKeyPrefix = "reset-token:"

// ResetTokenRedisRepository maps password reset tokens to user ids.
type ResetTokenRedisRepository struct {
	client *redis.Client
}

func NewResetTokenRedisRepository(client *redis.Client) *ResetTokenRedisRepository {
	return &ResetTokenRedisRepository{client: client}
}

func (r *ResetTokenRedisRepository) Save(ctx context.Context, token string, userID int, ttl time.Duration) error {
	err := r.client.Set(ctx, resetTokenKeyPrefix+token, strconv.Itoa(userID), ttl).Err()
	logger.Log.Debugw("redis set", "key", resetTokenKeyPrefix+"<redacted>", "ttl", ttl, "error", err)
	return err
}

// Take reads and deletes the token atomically with GETDEL. It returns
// apperrors.ErrResetTokenNotFound for unknown, used or expired tokens.
func (r *ResetTokenRedisRepository) Take(ctx context.Context, token string) (int, error) {
	val, err := r.client.GetDel(ctx, resetTokenKeyPrefix+token).Result()
	logger.Log.Debugw("redis getdel", "key", resetTokenKeyPrefix+"<redacted>", "error", err)
	if errors.Is(err, redis.Nil) {
		return 0, apperrors.ErrResetTokenNotFound
	}
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(val)
}
