package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "letsplay:slots:"

// NewRedisClient connects to the optional shared cache. Returns nil
// when addr is empty or the server does not answer; callers fall back
// to the in-memory store.
func NewRedisClient(addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("snapshot: redis %s unreachable, using in-memory cache: %v", addr, err)
		_ = client.Close()
		return nil
	}
	return client
}

// Redis is a Store backed by a shared Redis instance, so several CLI
// invocations on one machine reuse the same day snapshots.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func (r *Redis) redisKey(venueID int64, date string) string {
	return fmt.Sprintf("%s%d:%s", redisPrefix, venueID, date)
}

func (r *Redis) Get(ctx context.Context, venueID int64, date string) (Snapshot, bool) {
	raw, err := r.rdb.Get(ctx, r.redisKey(venueID, date)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("snapshot: redis get: %v", err)
		}
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		log.Printf("snapshot: dropping undecodable cache entry: %v", err)
		_ = r.rdb.Del(ctx, r.redisKey(venueID, date)).Err()
		return Snapshot{}, false
	}
	return snap, true
}

func (r *Redis) Put(ctx context.Context, snap Snapshot) {
	raw, err := json.Marshal(snap)
	if err != nil {
		log.Printf("snapshot: marshal: %v", err)
		return
	}
	if err := r.rdb.Set(ctx, r.redisKey(snap.VenueID, snap.Date), raw, r.ttl).Err(); err != nil {
		log.Printf("snapshot: redis set: %v", err)
	}
}

func (r *Redis) Invalidate(ctx context.Context, venueID int64, date string) {
	if err := r.rdb.Del(ctx, r.redisKey(venueID, date)).Err(); err != nil {
		log.Printf("snapshot: redis del: %v", err)
	}
}
