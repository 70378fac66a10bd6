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

// Results mirrors persisted results in Redis. The database row stays the
// source of truth; results are immutable so entries never go stale.
type Results struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewResults creates a Results mirror.
func NewResults(rdb *redis.Client, ttl time.Duration) *Results {
	return &Results{rdb: rdb, ttl: ttl}
}

// Get returns the mirrored result, or nil on a miss.
func (c *Results) Get(ctx context.Context, sessionID uuid.UUID) (*model.TestResult, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.ResultKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get result: %w", err)
	}

	var res model.TestResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &res, nil
}

// Set mirrors a persisted result. SETNX keeps the first copy.
func (c *Results) Set(ctx context.Context, res *model.TestResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return c.rdb.SetNX(ctx, config.CacheKey.ResultKey(res.SessionID), raw, c.ttl).Err()
}
