package testing

import (
	"context"
	"testing"
	"time"
)

// CreateTestContext creates a context with a timeout for tests
func CreateTestContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// SkipIfShort skips container-backed tests under -short
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// FixedClock returns a clock function pinned to the given instant
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
