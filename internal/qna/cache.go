package qna

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AnswerCache keeps recent answers keyed by the literal question text.
// Textually identical but semantically different questions collide; that
// imprecision is accepted.
type AnswerCache interface {
	Get(ctx context.Context, question string) (string, bool, error)
	Set(ctx context.Context, question, answer string, ttl time.Duration) error
}

// RedisCache is the production AnswerCache.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("qna: connect redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, question string) (string, bool, error) {
	answer, err := c.client.Get(ctx, question).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("qna: cache get: %w", err)
	}
	return answer, true, nil
}

func (c *RedisCache) Set(ctx context.Context, question, answer string, ttl time.Duration) error {
	if err := c.client.Set(ctx, question, answer, ttl).Err(); err != nil {
		return fmt.Errorf("qna: cache set: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
