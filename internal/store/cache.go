package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"copro-workers/internal/common/logger"
	"copro-workers/internal/models"
)

const snapshotKeyPrefix = "condo:snapshot:"

func SnapshotCacheKey(id string) string {
	return snapshotKeyPrefix + id
}

// CachedSnapshots puts a redis cache-aside in front of GetSnapshot. Redis
// failures degrade to a database read and are only logged.
type CachedSnapshots struct {
	*SnapshotStore
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSnapshots(s *SnapshotStore, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedSnapshots {
	return &CachedSnapshots{
		SnapshotStore: s,
		redis:         rdb,
		ttl:           ttl,
		logger:        log.WithFields(map[string]interface{}{"component": "snapshot-cache"}),
	}
}

func (c *CachedSnapshots) GetSnapshot(ctx context.Context, id string) (*models.EntitySnapshot, error) {
	key := SnapshotCacheKey(id)

	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var snap models.EntitySnapshot
		if jsonErr := json.Unmarshal([]byte(val), &snap); jsonErr == nil {
			return &snap, nil
		}
		c.logger.Warn("discarding unreadable cache entry", map[string]interface{}{"key": key})
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("snapshot cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}

	snap, err := c.SnapshotStore.GetSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(snap); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("snapshot cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return snap, nil
}

// Invalidate drops the cached snapshot, typically after a registry update.
func (c *CachedSnapshots) Invalidate(ctx context.Context, id string) error {
	return c.redis.Del(ctx, SnapshotCacheKey(id)).Err()
}

// ResolveSnapshot returns the inline snapshot when present, otherwise loads
// it by id.
func ResolveSnapshot(ctx context.Context, r Reader, id string, inline *models.EntitySnapshot) (*models.EntitySnapshot, error) {
	if inline != nil {
		return inline, nil
	}
	if id == "" {
		return nil, ErrNotFound
	}
	return r.GetSnapshot(ctx, id)
}
