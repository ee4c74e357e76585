package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Lion1208/fastpay/internal/domain/platform"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const settingsCacheKey = "platform:settings"

// CachedSettingsRepository decorates a platform.SettingsRepository
// with a Redis cache. Settings change rarely but are read on every
// deposit and withdrawal, so the database only sees a load when the
// cache key expires or a save invalidates it.
type CachedSettingsRepository struct {
	inner  platform.SettingsRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSettingsRepository creates a new CachedSettingsRepository
func NewCachedSettingsRepository(inner platform.SettingsRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedSettingsRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSettingsRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Load returns the cached settings when fresh, otherwise loads from
// the inner repository and refreshes the cache. Cache failures fall
// through to the database rather than failing the request.
func (r *CachedSettingsRepository) Load(ctx context.Context) (platform.Settings, error) {
	cached, err := r.client.Get(ctx, settingsCacheKey).Bytes()
	if err == nil {
		var settings platform.Settings
		if err := json.Unmarshal(cached, &settings); err == nil {
			return settings, nil
		}
		r.logger.Warn("discarding corrupt settings cache entry")
	} else if err != redis.Nil {
		r.logger.Warn("settings cache read failed", zap.Error(err))
	}

	settings, err := r.inner.Load(ctx)
	if err != nil {
		return settings, err
	}

	if payload, err := json.Marshal(settings); err == nil {
		if err := r.client.Set(ctx, settingsCacheKey, payload, r.ttl).Err(); err != nil {
			r.logger.Warn("settings cache write failed", zap.Error(err))
		}
	}
	return settings, nil
}

// Save stores the settings and invalidates the cache
func (r *CachedSettingsRepository) Save(ctx context.Context, s platform.Settings) error {
	if err := r.inner.Save(ctx, s); err != nil {
		return err
	}
	if err := r.client.Del(ctx, settingsCacheKey).Err(); err != nil {
		r.logger.Warn("settings cache invalidation failed", zap.Error(err))
	}
	return nil
}

// Ensure CachedSettingsRepository implements platform.SettingsRepository
var _ platform.SettingsRepository = (*CachedSettingsRepository)(nil)
