package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CI runs without a controlling terminal, so raw-mode transitions can
// only be exercised for their non-TTY error paths here. The restoration
// invariant itself is covered against a fake terminal in the executor
// package tests.

func TestTerminal_NonTTY(t *testing.T) {
	t.Parallel()

	tm := New()
	if tm.IsTTY() {
		t.Skip("stdin is a TTY; non-TTY behavior not testable")
	}

	err := tm.EnterRaw()
	require.Error(t, err)
	assert.False(t, tm.IsRaw())

	// ExitRaw without a snapshot is a no-op.
	assert.NoError(t, tm.ExitRaw())
}

func TestTerminal_ExitRawIdempotent(t *testing.T) {
	t.Parallel()

	tm := New()
	assert.NoError(t, tm.ExitRaw())
	assert.NoError(t, tm.ExitRaw())
}
