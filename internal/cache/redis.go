package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "talkspace:engagement:"

// Redis keeps each day's result in a hash holding the payload and its
// content type. Keys do not expire.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to redisURL and pings it.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return n > 0, nil
}

func (r *Redis) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.HGet(ctx, redisKeyPrefix+key, "value").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// writeOnce sets both hash fields only when the key does not exist yet.
var writeOnce = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], "value", ARGV[1], "content_type", ARGV[2])
return 1
`)

func (r *Redis) Write(ctx context.Context, key string, value []byte, contentType string) error {
	if err := writeOnce.Run(ctx, r.client, []string{redisKeyPrefix + key}, value, contentType).Err(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
