package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"
)

// runBatch spawns the command with captured stdout/stderr and waits for
// it under the configured wall-clock timeout. On timeout the process
// group gets SIGTERM, then SIGKILL after the grace interval; the result
// keeps whatever output was captured and has TimedOut set.
func (e *Executor) runBatch(ctx context.Context, c Candidate) (*Result, error) {
	cmd := exec.Command(e.shell, "-c", c.Command)
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start command: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	var waitErr error
	timedOut := false

	select {
	case waitErr = <-done:
	case <-ctx.Done():
		// Operator interrupt: terminate and unblock.
		e.log.Info("interrupt during batch execution", "command", c.Command)
		waitErr = e.terminate(cmd, done)
	case <-timer.C:
		timedOut = true
		e.log.Warn("batch command timed out", "command", c.Command, "timeout", e.timeout)
		waitErr = e.terminate(cmd, done)
	}

	result := &Result{
		ExitCode:         exitCode(cmd, waitErr),
		Stdout:           stdout.Bytes(),
		Stderr:           stderr.Bytes(),
		Duration:         time.Since(start),
		TimedOut:         timedOut,
		TerminalRestored: true, // batch never touches terminal mode
	}
	return result, nil
}

// terminate asks the child's process group to exit, waits the grace
// interval, then force-kills. Always drains the Wait result so the child
// is reaped.
func (e *Executor) terminate(cmd *exec.Cmd, done <-chan error) error {
	signalGroup(cmd, unix.SIGTERM)

	select {
	case err := <-done:
		return err
	case <-time.After(e.grace):
	}

	signalGroup(cmd, unix.SIGKILL)
	return <-done
}

// exitCode extracts the child's exit status. A signal-killed child
// reports -1 via ProcessState, which is kept as-is.
func exitCode(cmd *exec.Cmd, waitErr error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if waitErr != nil {
		if ee, ok := waitErr.(*exec.ExitError); ok {
			return ee.ExitCode()
		}
		return -1
	}
	return 0
}
