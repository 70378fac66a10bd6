// Package cache holds the Redis-backed read caches and the pending scoring queue.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/config"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStates caches recovery snapshots of finalized sessions. Snapshots of
// in_progress sessions change on every write and are never stored.
type SessionStates struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionStates creates a SessionStates cache.
func NewSessionStates(rdb *redis.Client, ttl time.Duration) *SessionStates {
	return &SessionStates{rdb: rdb, ttl: ttl}
}

// Get returns the cached state, or nil on a miss.
func (c *SessionStates) Get(ctx context.Context, sessionID uuid.UUID) (*model.SessionState, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.SessionStateKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session state: %w", err)
	}

	var state model.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	return &state, nil
}

// Set stores a finalized session's state. In-progress states are ignored.
func (c *SessionStates) Set(ctx context.Context, state *model.SessionState) error {
	if !state.Session.Status.IsTerminal() {
		return nil
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	return c.rdb.Set(ctx, config.CacheKey.SessionStateKey(state.Session.ID), raw, c.ttl).Err()
}
