package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRegistry keeps refresh tokens in Redis so several API instances share one
// view of the live token per subject. Entries expire with the refresh token TTL.
type RedisRegistry struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig configures a RedisRegistry
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedisRegistry connects to Redis and verifies the connection
func NewRedisRegistry(ctx context.Context, cfg RedisConfig) (*RedisRegistry, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("refresh registry: redis ping failed: %w", err)
	}

	return NewRedisRegistryWithClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedisRegistryWithClient wraps an existing client
func NewRedisRegistryWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisRegistry) key(subject string) string {
	if r.prefix == "" {
		return "refresh:" + subject
	}
	return r.prefix + ":refresh:" + subject
}

// Put stores token as the subject's live refresh token
func (r *RedisRegistry) Put(ctx context.Context, subject, token string) error {
	if err := r.client.Set(ctx, r.key(subject), token, r.ttl).Err(); err != nil {
		return fmt.Errorf("refresh registry: set %s: %w", subject, err)
	}
	return nil
}

// Get returns the subject's live refresh token
func (r *RedisRegistry) Get(ctx context.Context, subject string) (string, bool, error) {
	token, err := r.client.Get(ctx, r.key(subject)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("refresh registry: get %s: %w", subject, err)
	}
	return token, true, nil
}

// Ping checks the Redis connection
func (r *RedisRegistry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}
