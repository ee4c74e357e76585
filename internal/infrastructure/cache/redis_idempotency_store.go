package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultDedupePrefix = "webhook:dedupe:"

// RedisIdempotencyStore keeps webhook delivery IDs in Redis so every
// replica sees the same dedupe state.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisIdempotencyStore connects to Redis and verifies the connection
// with a 5s ping before returning the store.
func NewRedisIdempotencyStore(cfg RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: defaultDedupePrefix,
	}, nil
}

// NewRedisIdempotencyStoreWithClient wraps an existing client, used when a
// client is shared across components or injected in tests.
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultDedupePrefix
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkProcessed claims a delivery ID with a TTL. SETNX makes the claim
// atomic: true means this caller won the claim, false means another
// delivery with the same ID already settled.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	claimed, err := s.client.SetNX(ctx, s.keyPrefix+deliveryID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark delivery as processed: %w", err)
	}
	return claimed, nil
}

// IsProcessed reports whether a delivery ID has been claimed.
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, deliveryID string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+deliveryID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if delivery is processed: %w", err)
	}
	return exists > 0, nil
}

// Close closes the Redis client.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

// GetClient exposes the underlying client for monitoring and tests.
func (s *RedisIdempotencyStore) GetClient() *redis.Client {
	return s.client
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
