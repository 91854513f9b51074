package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	snapshotKey = "playlist:snapshot"
	revisionKey = "playlist:revision"
	snapshotTTL = 24 * time.Hour
)

// Cache keeps the last published snapshot and a monotonically increasing
// revision, so late-joining clients and restarting stage bridges can fetch
// state without replaying commands. A nil Cache is disabled.
type Cache struct {
	rdb *redis.Client
}

// Connect opens the client. An empty address disables the cache.
func Connect(address, username, password string) *Cache {
	if address == "" {
		return nil
	}
	return &Cache{rdb: redis.NewClient(&redis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       0,
	})}
}

// StoreSnapshot bumps the revision and stores the snapshot JSON. Failures
// are logged only; the cache is an accelerator, not a source of truth.
func (c *Cache) StoreSnapshot(ctx context.Context, snapshot any) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		log.Error().Err(err).Msg("[redis] snapshot marshal failed")
		return
	}
	if err := c.rdb.Incr(ctx, revisionKey).Err(); err != nil {
		log.Warn().Err(err).Msg("[redis] revision bump failed")
	}
	if err := c.rdb.Set(ctx, snapshotKey, payload, snapshotTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("[redis] snapshot store failed")
	}
}

// Invalidate drops the stored snapshot, e.g. when the playlist is replaced.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, snapshotKey).Err(); err != nil {
		log.Warn().Err(err).Msg("[redis] snapshot invalidate failed")
	}
}

// Revision returns the current snapshot revision, 0 when unknown.
func (c *Cache) Revision(ctx context.Context) int64 {
	if c == nil {
		return 0
	}
	rev, err := c.rdb.Get(ctx, revisionKey).Int64()
	if err != nil {
		return 0
	}
	return rev
}

// Close releases the client.
func (c *Cache) Close() {
	if c != nil {
		c.rdb.Close()
	}
}
