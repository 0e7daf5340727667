package testutil

import (
	"context"
	"testing"
	"time"
)

const (
	// DefaultCommandTimeout bounds tests that spawn real child
	// processes (executor batch and interactive tests).
	DefaultCommandTimeout = 30 * time.Second

	// DefaultTestBuffer is subtracted from the test deadline so cleanup
	// runs before the test itself times out.
	DefaultTestBuffer = 5 * time.Second
)

// ContextWithTestDeadline creates a context that respects the test's
// deadline, minus DefaultTestBuffer for cleanup. If the test has no
// deadline, or the adjusted deadline is already past, the fallback
// duration is used instead.
func ContextWithTestDeadline(t *testing.T, fallback time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()

	if deadline, ok := t.Deadline(); ok {
		adjusted := deadline.Add(-DefaultTestBuffer)
		if time.Until(adjusted) > 0 {
			return context.WithDeadline(context.Background(), adjusted)
		}
	}
	return context.WithTimeout(context.Background(), fallback)
}

// ContextWithTimeout creates a context with the specified timeout and
// logs it for debugging.
func ContextWithTimeout(t *testing.T, timeout time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	t.Logf("Context timeout: %v", timeout)
	return context.WithTimeout(context.Background(), timeout)
}

// CommandContext creates a context with the standard timeout for tests
// that run real child processes.
func CommandContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return ContextWithTestDeadline(t, DefaultCommandTimeout)
}
