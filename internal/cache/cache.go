// Package cache stores day schedules so repeated timeline views of the same
// resource and date skip the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrMiss is returned by Get when nothing is cached for the key.
	ErrMiss = errors.New("cache miss")
	// ErrStale is returned by Set when the resource was invalidated after
	// the version passed to it was read. Nothing is stored.
	ErrStale = errors.New("cache entry is stale")
)

// ScheduleCache keeps the reservations of one resource per calendar day.
//
// A fill reads Version before loading from the store and hands it to Set.
// Invalidate advances the version, so a fill that raced a write is refused
// instead of caching the list from before the write.
type ScheduleCache interface {
	Get(ctx context.Context, resourceID int64, date string) ([]model.Reservation, error)
	Version(ctx context.Context, resourceID int64) (int64, error)
	Set(ctx context.Context, resourceID int64, date string, version int64, reservations []model.Reservation) error
	Invalidate(ctx context.Context, resourceID int64) error
	Close() error
}

// Redis caches each resource as one hash, `schedule:{id}`, with a field per date.
// Dropping the hash invalidates every day of the resource at once. The
// counter `schedule:{id}:version` is bumped on every invalidation.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects lazily; the first command reports connectivity problems.
func NewRedis(addr, password string, db int, ttl time.Duration) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Redis{client: client, ttl: ttl}
}

func key(resourceID int64) string {
	return "schedule:" + strconv.FormatInt(resourceID, 10)
}

func versionKey(resourceID int64) string {
	return key(resourceID) + ":version"
}

// Version returns the invalidation counter of the resource, 0 if it was never
// invalidated.
func (r *Redis) Version(ctx context.Context, resourceID int64) (int64, error) {
	v, err := r.client.Get(ctx, versionKey(resourceID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("cache.redis.Version: %w", err)
	}
	return v, nil
}

func (r *Redis) Get(ctx context.Context, resourceID int64, date string) ([]model.Reservation, error) {
	const op = "cache.redis.Get"

	data, err := r.client.HGet(ctx, key(resourceID), date).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Entries are stored in wire form; the service re-anchors the wall clock.
	var out []model.Reservation
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// Set stores the day under WATCH of the version counter. The write is
// dropped with ErrStale if the counter moved past version.
func (r *Redis) Set(ctx context.Context, resourceID int64, date string, version int64, reservations []model.Reservation) error {
	const op = "cache.redis.Set"

	if reservations == nil {
		reservations = []model.Reservation{}
	}
	data, err := json.Marshal(reservations)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	k, vk := key(resourceID), versionKey(resourceID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, vk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != version {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, date, data)
			pipe.Expire(ctx, k, r.ttl)
			return nil
		})
		return err
	}, vk)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStale), errors.Is(err, redis.TxFailedErr):
		return ErrStale
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Invalidate bumps the version and drops every cached day of the resource.
func (r *Redis) Invalidate(ctx context.Context, resourceID int64) error {
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, versionKey(resourceID))
	pipe.Del(ctx, key(resourceID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache.redis.Invalidate: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("cache.redis.Close: %w", err)
	}
	return nil
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, int64, string) ([]model.Reservation, error)      { return nil, ErrMiss }
func (Noop) Version(context.Context, int64) (int64, error)                        { return 0, nil }
func (Noop) Set(context.Context, int64, string, int64, []model.Reservation) error { return nil }
func (Noop) Invalidate(context.Context, int64) error                              { return nil }
func (Noop) Close() error                                                         { return nil }
