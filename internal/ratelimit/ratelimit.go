// Package ratelimit provides the fixed-window counter behind the auth
// endpoints. The Counter interface lets the service back onto an in-process
// map or a shared Redis instance without changing its logic.
package ratelimit

import (
	"context"
	"time"
)

type Counter interface {
	// Increment bumps the counter for key within the current window and
	// returns the new count. The first hit of a window starts it.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}
