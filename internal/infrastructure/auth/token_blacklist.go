package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist invalidates JWTs before their natural expiry, either a
// single token by JTI or every token an account holds.
type TokenBlacklist interface {
	// AddToBlacklist records a token's JTI. The ttl should match the
	// remaining lifetime of the token.
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error

	// IsBlacklisted reports whether the JTI has been revoked.
	IsBlacklisted(ctx context.Context, jti string) (bool, error)

	// AddAccountTokensToBlacklist records an invalidation timestamp for the
	// account. Tokens issued before that instant are rejected.
	AddAccountTokensToBlacklist(ctx context.Context, accountID string, ttl time.Duration) error

	// IsAccountTokenInvalidated reports whether a token issued at
	// tokenIssuedAt predates the account's invalidation timestamp.
	IsAccountTokenInvalidated(ctx context.Context, accountID string, tokenIssuedAt time.Time) (bool, error)
}

const blacklistKeyPrefix = "token:blacklist:"

// RedisTokenBlacklist is the Redis-backed TokenBlacklist used in production.
type RedisTokenBlacklist struct {
	client    *redis.Client
	keyPrefix string
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// RedisTokenBlacklistConfig holds the Redis connection settings.
type RedisTokenBlacklistConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisTokenBlacklist connects to Redis and verifies the connection.
func NewRedisTokenBlacklist(cfg RedisTokenBlacklistConfig) (*RedisTokenBlacklist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis for token blacklist: %w", err)
	}

	return NewRedisTokenBlacklistWithClient(client), nil
}

// NewRedisTokenBlacklistWithClient wraps an existing Redis client.
func NewRedisTokenBlacklistWithClient(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{
		client:    client,
		keyPrefix: blacklistKeyPrefix,
	}
}

func (b *RedisTokenBlacklist) jtiKey(jti string) string {
	return b.keyPrefix + "jti:" + jti
}

func (b *RedisTokenBlacklist) accountKey(accountID string) string {
	return b.keyPrefix + "account:" + accountID
}

func (b *RedisTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}

func (b *RedisTokenBlacklist) AddAccountTokensToBlacklist(ctx context.Context, accountID string, ttl time.Duration) error {
	invalidatedAt := time.Now().Unix()
	if err := b.client.Set(ctx, b.accountKey(accountID), invalidatedAt, ttl).Err(); err != nil {
		return fmt.Errorf("failed to invalidate account tokens: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsAccountTokenInvalidated(ctx context.Context, accountID string, tokenIssuedAt time.Time) (bool, error) {
	value, err := b.client.Get(ctx, b.accountKey(accountID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check account token invalidation: %w", err)
	}

	invalidatedAt, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse invalidation timestamp: %w", err)
	}

	return tokenIssuedAt.Unix() <= invalidatedAt, nil
}

// Close closes the underlying Redis client.
func (b *RedisTokenBlacklist) Close() error {
	return b.client.Close()
}

// GetClient exposes the Redis client for health checks and tests.
func (b *RedisTokenBlacklist) GetClient() *redis.Client {
	return b.client
}

// InMemoryTokenBlacklist is a map-backed TokenBlacklist for tests and
// single-instance development setups. It does not share state across
// processes.
type InMemoryTokenBlacklist struct {
	mu            sync.RWMutex
	jtiExpiry     map[string]time.Time
	invalidatedAt map[string]time.Time
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)

func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		jtiExpiry:     make(map[string]time.Time),
		invalidatedAt: make(map[string]time.Time),
	}
}

func (b *InMemoryTokenBlacklist) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jtiExpiry[jti] = time.Now().Add(ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, exists := b.jtiExpiry[jti]
	if !exists {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(b.jtiExpiry, jti)
		return false, nil
	}
	return true, nil
}

func (b *InMemoryTokenBlacklist) AddAccountTokensToBlacklist(_ context.Context, accountID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.invalidatedAt[accountID] = time.Now()
	return nil
}

func (b *InMemoryTokenBlacklist) IsAccountTokenInvalidated(_ context.Context, accountID string, tokenIssuedAt time.Time) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cutoff, exists := b.invalidatedAt[accountID]
	if !exists {
		return false, nil
	}

	// Nanosecond precision so tokens issued in the same second as the
	// invalidation are still caught.
	return tokenIssuedAt.UnixNano() <= cutoff.UnixNano(), nil
}
