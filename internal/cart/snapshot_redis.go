package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

const guestSnapshotTTL = 30 * 24 * time.Hour

type snapshotStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type snapshotKeyer interface {
	CartSnapshotKey(sessionID string) string
}

// RedisSnapshotRepository persists guest cart snapshots keyed by the
// visitor's session id.
type RedisSnapshotRepository struct {
	store     snapshotStore
	keyer     snapshotKeyer
	sessionID string
	ttl       time.Duration
}

// NewRedisSnapshotRepository binds a snapshot repository to one session.
func NewRedisSnapshotRepository(store snapshotStore, keyer snapshotKeyer, sessionID string) (*RedisSnapshotRepository, error) {
	if store == nil || keyer == nil {
		return nil, fmt.Errorf("snapshot store and keyer are required")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	return &RedisSnapshotRepository{
		store:     store,
		keyer:     keyer,
		sessionID: sessionID,
		ttl:       guestSnapshotTTL,
	}, nil
}

// Load returns the stored lines; a missing key is an empty cart.
func (r *RedisSnapshotRepository) Load(ctx context.Context) ([]Line, error) {
	raw, err := r.store.Get(ctx, r.keyer.CartSnapshotKey(r.sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return []Line{}, nil
		}
		return nil, fmt.Errorf("loading cart snapshot: %w", err)
	}
	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("decoding cart snapshot: %w", err)
	}
	return lines, nil
}

// Save writes the full line set, refreshing the TTL.
func (r *RedisSnapshotRepository) Save(ctx context.Context, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encoding cart snapshot: %w", err)
	}
	return r.store.Set(ctx, r.keyer.CartSnapshotKey(r.sessionID), string(raw), r.ttl)
}

// Drop deletes the snapshot entirely, used once a guest cart has been
// reconciled into a server cart.
func (r *RedisSnapshotRepository) Drop(ctx context.Context) error {
	return r.store.Del(ctx, r.keyer.CartSnapshotKey(r.sessionID))
}
