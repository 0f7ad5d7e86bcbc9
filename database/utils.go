package database

import (
	"context"
	"time"
)

// Timeouts for store operations
const (
	// ShortTimeout for single document reads and writes
	ShortTimeout = 5 * time.Second

	// MediumTimeout for connects, index creation and bulk deletes
	MediumTimeout = 10 * time.Second
)

// withTimeout bounds ctx by timeout, keeping an earlier parent deadline
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}
