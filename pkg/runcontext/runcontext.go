package runcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type key string

const (
	keyRunID     key = "run_id"
	keyStartTime key = "run_start_time"
)

// Begin stamps a pipeline invocation with its identity and start time so
// every stage logs against the same run.
func Begin(parent context.Context) context.Context {
	ctx := context.WithValue(parent, keyRunID, uuid.New())
	return context.WithValue(ctx, keyStartTime, time.Now())
}

// RunID returns the invocation identity, generating one if the context was
// never stamped.
func RunID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(keyRunID).(uuid.UUID); ok {
		return id
	}
	return uuid.New()
}

// StartTime returns when the run began
func StartTime(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(keyStartTime).(time.Time)
	return t, ok
}

// Elapsed reports how long the run has been going; zero if unstamped
func Elapsed(ctx context.Context) time.Duration {
	if t, ok := StartTime(ctx); ok {
		return time.Since(t)
	}
	return 0
}
