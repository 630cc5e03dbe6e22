package refreshtokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/azura/internal/common"
	"github.com/dmitrijs2005/azura/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "refresh_token:"

// swapScript replaces the stored digest only when it still equals ARGV[1].
var swapScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0
`)

// RedisRepository keeps one key per user holding the token digest. Keys
// expire together with the token.
type RedisRepository struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisRepository(client redis.UniversalClient) *RedisRepository {
	return &RedisRepository{client: client, now: time.Now}
}

func key(userID string) string { return keyPrefix + userID }

func (r *RedisRepository) ttl(expires time.Time) time.Duration {
	return expires.Sub(r.now())
}

func (r *RedisRepository) Upsert(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	ttl := r.ttl(expires)
	if ttl <= 0 {
		return r.Delete(ctx, userID)
	}
	if err := r.client.Set(ctx, key(userID), tokenHash, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) Find(ctx context.Context, userID string) (*models.RefreshToken, error) {
	pipe := r.client.Pipeline()
	get := pipe.Get(ctx, key(userID))
	pttl := pipe.PTTL(ctx, key(userID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis error: %w", err)
	}

	hash, err := get.Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	t := &models.RefreshToken{UserID: userID, TokenHash: hash}
	if d := pttl.Val(); d > 0 {
		t.Expires = r.now().Add(d)
	}
	return t, nil
}

func (r *RedisRepository) Swap(ctx context.Context, userID, oldHash, newHash string, expires time.Time) error {
	ttl := r.ttl(expires)
	if ttl < time.Millisecond {
		return common.ErrVersionConflict
	}

	n, err := swapScript.Run(ctx, r.client, []string{key(userID)}, oldHash, newHash, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if n == 0 {
		return common.ErrVersionConflict
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}
