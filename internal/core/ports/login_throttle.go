package ports

import "context"

// LoginThrottle is the single source of truth for lockout decisions.
// Failures are windowed relative to the most recent failure, not a fixed
// wall-clock bucket; a record older than the window counts as absent.
type LoginThrottle interface {
	IsLocked(ctx context.Context, identity string) (bool, error)
	RecordFailure(ctx context.Context, identity string) error
	Reset(ctx context.Context, identity string) error
}
