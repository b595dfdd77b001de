package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache is an explicit request-cache keyed by request signature.
// Mutations invalidate their dependents via DeletePrefix so reads observe
// writes on the next fetch instead of via optimistic local state.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Cache key layout. Everything hanging off a level-subject shares the
// "<kind>:<levelSubjectID>" shape so a completion can invalidate both the
// calendar and the module evaluation lists with two prefix deletes.

func CalendarCacheKey(levelSubjectID string) string {
	return "calendar:" + levelSubjectID
}

func ModuleEvalsCacheKey(levelSubjectID string, moduleNumber int) string {
	return fmt.Sprintf("module-evals:%s:%d", levelSubjectID, moduleNumber)
}

func ModuleEvalsCachePrefix(levelSubjectID string) string {
	return "module-evals:" + levelSubjectID + ":"
}
