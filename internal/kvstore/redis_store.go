package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IsaacDSC/kvcache/internal/cfg"
	"github.com/redis/go-redis/v9"
)

type Redis struct {
	client *redis.Client
}

var _ Store = (*Redis)(nil)

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// NewRedisClient connects to the configured server and pings it.
func NewRedisClient(ctx context.Context, conf cfg.Cache) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.CacheAddr,
		Password: conf.CachePassword,
		DB:       conf.CacheDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error connecting to redis at %s: %w", conf.CacheAddr, err)
	}

	return client, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("error setting value for key %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting value for key %s: %w", key, err)
	}
	return b, nil
}

func (r *Redis) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.SetEx(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("error setting value with ttl %s for key %s: %w", ttl, key, err)
	}
	return nil
}

func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("error incrementing key %s: %w", key, err)
	}
	return n, nil
}

func (r *Redis) RPush(ctx context.Context, key string, value []byte) error {
	if err := r.client.RPush(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("error appending to list %s: %w", key, err)
	}
	return nil
}

func (r *Redis) RPushPair(ctx context.Context, firstKey string, first []byte, secondKey string, second []byte) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, firstKey, first)
		pipe.RPush(ctx, secondKey, second)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error appending to lists %s and %s: %w", firstKey, secondKey, err)
	}
	return nil
}

func (r *Redis) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	values, err := r.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading list %s: %w", key, err)
	}

	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = []byte(v)
	}
	return out, nil
}

func (r *Redis) FlushDB(ctx context.Context) error {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("error flushing db: %w", err)
	}
	return nil
}
