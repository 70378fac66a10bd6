package config

import (
	"fmt"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionStateKey returns the cache key for a session's recovery snapshot
// (status, answers-so-far, recorded times).
func (r *CacheKeyStruct) SessionStateKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("session:%s:state", sessionID)
}

// ResultKey returns the cache key for a session's immutable result.
func (r *CacheKeyStruct) ResultKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("result:%s", sessionID)
}

// SubmitRateKey returns the rate limiter bucket key for a user's submit calls.
func (r *CacheKeyStruct) SubmitRateKey(userID string) string {
	return fmt.Sprintf("ratelimit:submit:%s", userID)
}

var CacheKey = NewCacheKeyStruct()
