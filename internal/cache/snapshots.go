// Package cache keeps the latest dashboard snapshots in Redis so state
// survives a server restart and new instances can serve it before their
// first collection read.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "dashboard:snapshot:"

// snapshots go stale quickly; anything older than this is useless anyway
// because the watcher refreshes on every change.
const ttl = 10 * time.Minute

// Snapshots is a nil-safe wrapper: a nil *Snapshots (Redis not configured
// or unreachable) turns every call into a no-op.
type Snapshots struct {
	rdb *redis.Client
}

// Connect dials Redis and verifies the connection. The caller treats an
// error as "run without the cache", not as fatal.
func Connect(addr, password string) (*Snapshots, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}
	return &Snapshots{rdb: rdb}, nil
}

// Set stores the marshaled payload for a message type.
func (s *Snapshots) Set(ctx context.Context, messageType string, data []byte) error {
	if s == nil {
		return nil
	}
	return s.rdb.Set(ctx, keyPrefix+messageType, data, ttl).Err()
}

// Get returns the cached payload for a message type, or nil when absent.
func (s *Snapshots) Get(ctx context.Context, messageType string) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	data, err := s.rdb.Get(ctx, keyPrefix+messageType).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Close releases the underlying client.
func (s *Snapshots) Close() error {
	if s == nil {
		return nil
	}
	return s.rdb.Close()
}
