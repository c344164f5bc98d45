package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"dispatch-board/internal/core/cache"
	"dispatch-board/internal/features/mapview/domain"
)

const snapshotCacheKey = "map_snapshot"

// RedisSnapshotRepository implements ports.SnapshotRepository on the cache
// adapter. The snapshot is a convenience copy for cold console loads; the
// synchronizer's in-memory state stays authoritative.
type RedisSnapshotRepository struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRedisSnapshotRepository creates a repository storing snapshots with the
// given TTL (0 means no expiration).
func NewRedisSnapshotRepository(c cache.Cache, ttl time.Duration) *RedisSnapshotRepository {
	return &RedisSnapshotRepository{
		cache: c,
		ttl:   ttl,
	}
}

// Publish stores the snapshot, replacing any previous one.
func (r *RedisSnapshotRepository) Publish(ctx context.Context, snapshot domain.MapSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal map snapshot: %w", err)
	}

	if err := r.cache.Set(ctx, snapshotCacheKey, data, r.ttl); err != nil {
		return fmt.Errorf("failed to save map snapshot to cache: %w", err)
	}

	return nil
}

// Load returns the stored snapshot, or (nil, nil) when none exists.
func (r *RedisSnapshotRepository) Load(ctx context.Context) (*domain.MapSnapshot, error) {
	data, err := r.cache.Get(ctx, snapshotCacheKey)
	if err != nil {
		if strings.Contains(err.Error(), "key not found") {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get map snapshot from cache: %w", err)
	}

	var snapshot domain.MapSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal map snapshot: %w", err)
	}

	return &snapshot, nil
}
