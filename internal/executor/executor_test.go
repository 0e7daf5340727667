package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkarlsen/shellguard/internal/safety"
	"github.com/pkarlsen/shellguard/internal/testutil"
)

func newBatchExecutor(timeout, grace time.Duration) *Executor {
	return New("/bin/sh", timeout, grace, &fakeConsole{})
}

func TestExecute_BlockedFailsFast(t *testing.T) {
	t.Parallel()

	marker := filepath.Join(t.TempDir(), "ran")
	e := newBatchExecutor(5*time.Second, time.Second)

	_, err := e.Execute(context.Background(), Candidate{
		Command: "touch " + marker,
		Verdict: safety.Verdict{Decision: safety.Blocked, Reason: "matches blocked command"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBlocked)
	assert.Contains(t, err.Error(), "matches blocked command")

	// The command was never spawned.
	_, statErr := os.Stat(marker)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExecute_ConfirmationGate(t *testing.T) {
	t.Parallel()

	e := newBatchExecutor(5*time.Second, time.Second)
	candidate := Candidate{
		Command: "echo confirmed",
		Verdict: safety.Verdict{Decision: safety.NeedsConfirmation, Reason: "risky"},
	}

	// Without acknowledgment: refused, not executed.
	_, err := e.Execute(context.Background(), candidate)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfirmationRequired)

	// With acknowledgment: runs normally.
	candidate.Acknowledged = true
	res, err := e.Execute(context.Background(), candidate)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "confirmed\n", string(res.Stdout))
}

func TestExecute_BatchCapturesOutput(t *testing.T) {
	t.Parallel()

	e := newBatchExecutor(5*time.Second, time.Second)
	ctx, cancel := testutil.CommandContext(t)
	defer cancel()

	res, err := e.Execute(ctx, Candidate{
		Command: "echo out; echo err >&2",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))
	assert.False(t, res.TimedOut)
	assert.True(t, res.TerminalRestored)
	assert.Greater(t, res.Duration, time.Duration(0))
}

func TestExecute_BatchNonzeroExit(t *testing.T) {
	t.Parallel()

	e := newBatchExecutor(5*time.Second, time.Second)
	res, err := e.Execute(context.Background(), Candidate{
		Command: "echo partial; exit 3",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "partial\n", string(res.Stdout))
}

func TestExecute_BatchTimeout(t *testing.T) {
	t.Parallel()

	e := newBatchExecutor(300*time.Millisecond, 300*time.Millisecond)

	ctx, cancel := testutil.CommandContext(t)
	defer cancel()

	start := time.Now()
	res, err := e.Execute(ctx, Candidate{
		Command: "echo before; sleep 10; echo after",
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	// Partial output captured before the kill.
	assert.Equal(t, "before\n", string(res.Stdout))
	assert.NotEqual(t, 0, res.ExitCode)
	// Bounded by timeout + grace, with slack for slow machines.
	assert.Less(t, elapsed, 3*time.Second)
}

func TestExecute_BatchInterrupt(t *testing.T) {
	t.Parallel()

	e := newBatchExecutor(30*time.Second, 300*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	var res *Result
	var err error
	go func() {
		res, err = e.Execute(ctx, Candidate{Command: "sleep 10"})
		close(done)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Execute did not unblock after interrupt")
	}

	require.NoError(t, err)
	assert.False(t, res.TimedOut)
	assert.NotEqual(t, 0, res.ExitCode)
}

func TestExitCodeValues(t *testing.T) {
	t.Parallel()

	e := newBatchExecutor(5*time.Second, time.Second)

	res, err := e.Execute(context.Background(), Candidate{Command: "true"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)

	res, err = e.Execute(context.Background(), Candidate{Command: "false"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
}
