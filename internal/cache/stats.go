// Package cache keeps computed group stats in Redis so repeated dashboard
// and stats reads skip recomputation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
)

// StatsCache stores per-member stats for a group. Any write to a group's
// expenses must call Invalidate for that group.
//
// Readers that miss take the group's Generation before loading expenses and
// pass it to SetStats. Invalidate bumps the generation, so stats computed
// from a snapshot older than the last write are never stored.
type StatsCache interface {
	// GetStats returns the cached stats and whether they were present.
	GetStats(ctx context.Context, groupID, memberID string) (*ledger.Stats, bool, error)
	// Generation returns the group's current invalidation count.
	Generation(ctx context.Context, groupID string) (int64, error)
	// SetStats stores stats if the group is still at generation. It reports
	// whether the entry was written.
	SetStats(ctx context.Context, groupID, memberID string, generation int64, stats ledger.Stats) (bool, error)
	Invalidate(ctx context.Context, groupID string) error
}

// RedisStatsCache keeps one hash per group: key "stats:<group>", field = member
// id. The generation lives in "stats:<group>:gen".
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ StatsCache = (*RedisStatsCache)(nil)

// NewRedisStatsCache wraps client. Entries expire after ttl.
func NewRedisStatsCache(client *redis.Client, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{client: client, ttl: ttl}
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func statsKey(groupID string) string {
	return "stats:" + groupID
}

func generationKey(groupID string) string {
	return "stats:" + groupID + ":gen"
}

// setIfGeneration writes one hash field only while the generation key still
// holds ARGV[1]. A missing generation counts as 0.
//
// KEYS[1] generation key, KEYS[2] stats hash.
// ARGV[1] generation, ARGV[2] member id, ARGV[3] stats JSON, ARGV[4] ttl seconds.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[2], ARGV[2], ARGV[3])
redis.call('EXPIRE', KEYS[2], ARGV[4])
return 1
`)

func (c *RedisStatsCache) GetStats(ctx context.Context, groupID, memberID string) (*ledger.Stats, bool, error) {
	raw, err := c.client.HGet(ctx, statsKey(groupID), memberID).Result()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("get stats %s/%s: %w", groupID, memberID, err)
	}

	var stats ledger.Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("decode stats %s/%s: %w", groupID, memberID, err)
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return &stats, true, nil
}

func (c *RedisStatsCache) Generation(ctx context.Context, groupID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(groupID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get stats generation %s: %w", groupID, err)
	}
	return gen, nil
}

func (c *RedisStatsCache) SetStats(ctx context.Context, groupID, memberID string, generation int64, stats ledger.Stats) (bool, error) {
	body, err := json.Marshal(stats)
	if err != nil {
		return false, fmt.Errorf("encode stats: %w", err)
	}

	keys := []string{generationKey(groupID), statsKey(groupID)}
	stored, err := setIfGeneration.Run(ctx, c.client, keys,
		strconv.FormatInt(generation, 10),
		memberID,
		string(body),
		strconv.FormatInt(int64(c.ttl/time.Second), 10),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("set stats %s/%s: %w", groupID, memberID, err)
	}
	return stored == 1, nil
}

// Invalidate bumps the generation before dropping the hash, so a reader that
// loaded before this call cannot store its result afterwards.
func (c *RedisStatsCache) Invalidate(ctx context.Context, groupID string) error {
	if err := c.client.Incr(ctx, generationKey(groupID)).Err(); err != nil {
		return fmt.Errorf("bump stats generation %s: %w", groupID, err)
	}
	if err := c.client.Del(ctx, statsKey(groupID)).Err(); err != nil {
		return fmt.Errorf("invalidate stats %s: %w", groupID, err)
	}
	return nil
}

// NopStatsCache never stores anything. Used when Redis is not configured.
type NopStatsCache struct{}

var _ StatsCache = NopStatsCache{}

func (NopStatsCache) GetStats(context.Context, string, string) (*ledger.Stats, bool, error) {
	return nil, false, nil
}

func (NopStatsCache) Generation(context.Context, string) (int64, error) { return 0, nil }

func (NopStatsCache) SetStats(context.Context, string, string, int64, ledger.Stats) (bool, error) {
	return false, nil
}

func (NopStatsCache) Invalidate(context.Context, string) error { return nil }
