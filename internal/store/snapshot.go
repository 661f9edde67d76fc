package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"

	"github.com/zabloncharles/eventportal/internal/record"
)

// Snapshot cache keys and defaults.
const (
	eventSnapshotKey = "snapshot:events"
	groupSnapshotKey = "snapshot:groups"

	// DefaultSnapshotTTL bounds snapshot staleness. Discovery
	// re-filters the cached snapshot on every interaction, so a short
	// TTL only controls how quickly new documents appear.
	DefaultSnapshotTTL = 30 * time.Second
)

// SnapshotCache wraps a Source with a Redis-backed snapshot cache.
// Whole snapshots are cached as CBOR blobs: discovery re-runs against
// the same records many times per session (every keystroke, every map
// move), and the core itself holds no cache by design, so this is where
// "re-filter without re-fetch" lives.
//
// Cache failures fail open: a Redis error falls back to the underlying
// source and logs a warning.
type SnapshotCache struct {
	source Source
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache builds a SnapshotCache. A non-positive TTL uses
// DefaultSnapshotTTL.
func NewSnapshotCache(source Source, client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{source: source, client: client, ttl: ttl}
}

// Events returns the cached event snapshot, refreshing from the
// underlying source on a miss.
func (c *SnapshotCache) Events(ctx context.Context) ([]record.Event, error) {
	raw, err := c.client.Get(ctx, eventSnapshotKey).Bytes()
	if err == nil {
		var events []record.Event
		if err := cbor.Unmarshal(raw, &events); err == nil {
			return events, nil
		}
		slog.WarnContext(ctx, "discarding corrupt event snapshot", "error", err)
	} else if !errors.Is(err, redis.Nil) {
		slog.WarnContext(ctx, "event snapshot cache read failed", "error", err)
	}

	events, err := c.source.Events(ctx)
	if err != nil {
		return nil, err
	}

	c.put(ctx, eventSnapshotKey, events)
	return events, nil
}

// Groups returns the cached group snapshot, refreshing from the
// underlying source on a miss.
func (c *SnapshotCache) Groups(ctx context.Context) ([]record.Group, error) {
	raw, err := c.client.Get(ctx, groupSnapshotKey).Bytes()
	if err == nil {
		var groups []record.Group
		if err := cbor.Unmarshal(raw, &groups); err == nil {
			return groups, nil
		}
		slog.WarnContext(ctx, "discarding corrupt group snapshot", "error", err)
	} else if !errors.Is(err, redis.Nil) {
		slog.WarnContext(ctx, "group snapshot cache read failed", "error", err)
	}

	groups, err := c.source.Groups(ctx)
	if err != nil {
		return nil, err
	}

	c.put(ctx, groupSnapshotKey, groups)
	return groups, nil
}

// Invalidate drops both cached snapshots, forcing the next read through
// to the source.
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, eventSnapshotKey, groupSnapshotKey).Err(); err != nil {
		return fmt.Errorf("invalidate snapshots: %w", err)
	}
	return nil
}

// put writes a snapshot blob best-effort; a failed write only means the
// next read refetches.
func (c *SnapshotCache) put(ctx context.Context, key string, v any) {
	raw, err := cbor.Marshal(v)
	if err != nil {
		slog.WarnContext(ctx, "failed to encode snapshot", "key", key, "error", err)
		return
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "failed to write snapshot cache", "key", key, "error", err)
	}
}
