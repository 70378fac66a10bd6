package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrQueueEmpty is returned by Pop when nothing arrived before the timeout.
var ErrQueueEmpty = errors.New("queue empty")

// GuardTTL bounds how long a session stays marked as queued or in flight.
// A worker that dies mid-item releases it to the sweeper after this long.
const GuardTTL = 15 * time.Minute

// enqueueScript pushes each ID whose guard key was free and reports how many
// were pushed. KEYS[1] is the list, KEYS[2..] the guards; ARGV[1] is the TTL
// in seconds, ARGV[2..] the IDs.
var enqueueScript = redis.NewScript(`
local pushed = 0
for i = 2, #KEYS do
	if redis.call('SET', KEYS[i], '1', 'NX', 'EX', ARGV[1]) then
		redis.call('RPUSH', KEYS[1], ARGV[i])
		pushed = pushed + 1
	end
end
return pushed
`)

// ScoringQueue is the Redis list of finalized sessions awaiting a result.
// Each session appears at most once while it is queued or being processed.
type ScoringQueue struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewScoringQueue creates a ScoringQueue on the configured list key.
func NewScoringQueue(rdb *redis.Client) *ScoringQueue {
	return &ScoringQueue{rdb: rdb, key: config.WorkerKey.PendingScoringQueue, ttl: GuardTTL}
}

// Enqueue appends a session ID unless it is already queued or in flight.
func (q *ScoringQueue) Enqueue(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := q.push(ctx, []uuid.UUID{sessionID}); err != nil {
		return fmt.Errorf("enqueue %s: %w", sessionID, err)
	}
	return nil
}

// EnqueueMany appends every ID not already queued or in flight and returns
// how many were actually pushed.
func (q *ScoringQueue) EnqueueMany(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return q.push(ctx, ids)
}

func (q *ScoringQueue) push(ctx context.Context, ids []uuid.UUID) (int, error) {
	keys := make([]string, 0, len(ids)+1)
	args := make([]any, 0, len(ids)+1)
	keys = append(keys, q.key)
	args = append(args, int(q.ttl/time.Second))
	for _, id := range ids {
		keys = append(keys, q.guard(id))
		args = append(args, id.String())
	}
	return enqueueScript.Run(ctx, q.rdb, keys, args...).Int()
}

func (q *ScoringQueue) guard(sessionID uuid.UUID) string {
	return q.key + ":" + sessionID.String()
}

// Requeue pushes a session back after a failed attempt. The guard is kept
// and refreshed, so concurrent sweeps still see it as pending.
func (q *ScoringQueue) Requeue(ctx context.Context, sessionID uuid.UUID) error {
	_, err := q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, q.guard(sessionID), "1", q.ttl)
		pipe.RPush(ctx, q.key, sessionID.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("requeue %s: %w", sessionID, err)
	}
	return nil
}

// Done releases a session's guard once it no longer needs scoring.
func (q *ScoringQueue) Done(ctx context.Context, sessionID uuid.UUID) error {
	return q.rdb.Del(ctx, q.guard(sessionID)).Err()
}

// Pop blocks up to timeout for the next session ID. The session stays
// guarded until Done or the guard TTL.
func (q *ScoringQueue) Pop(ctx context.Context, timeout time.Duration) (uuid.UUID, error) {
	item, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrQueueEmpty
		}
		return uuid.Nil, err
	}
	if len(item) < 2 {
		return uuid.Nil, ErrQueueEmpty
	}
	id, err := uuid.Parse(item[1])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid queued session id %q: %w", item[1], err)
	}
	return id, nil
}

// Len reports how many sessions are waiting.
func (q *ScoringQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
