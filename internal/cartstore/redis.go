package cartstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisKV stores values as plain Redis strings. A positive ttl expires idle
// carts; every Set refreshes it.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisKV accepts either a redis:// URL or a bare host:port.
func NewRedisKV(addr string, ttl time.Duration) *RedisKV {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
		}
	}
	return &RedisKV{client: redis.NewClient(opts), ttl: ttl}
}

// Ping retries until Redis answers, the attempts run out, or ctx ends.
func (r *RedisKV) Ping(ctx context.Context, attempts int) error {
	var err error
	for i := 0; i < max(attempts, 1); i++ {
		if err = r.client.Ping(ctx).Err(); err == nil {
			return nil
		}

		backoff := min(time.Duration(1<<uint(i))*100*time.Millisecond, 5*time.Second)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("redis not reachable: %w", err)
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}
