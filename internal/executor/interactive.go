package executor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// terminalSession owns a live interactive attachment: the child process
// handle and the pty master. Exclusively owned by the Executor that
// created it and released on every exit path.
type terminalSession struct {
	cmd  *exec.Cmd
	ptmx *os.File
}

// release closes the pty and reaps the child. Used on setup-failure
// paths where the normal wait flow never runs.
func (s *terminalSession) release() {
	_ = s.ptmx.Close()
	signalGroup(s.cmd, unix.SIGKILL)
	_ = s.cmd.Wait()
}

// runInteractive attaches the command to a fresh pseudo-terminal and
// relays bytes between it and the invoking terminal until the child
// exits. No timeout applies: an editor may run indefinitely. The
// invoking terminal's mode is restored on every exit path: normal exit,
// cancellation, or relay failure.
func (e *Executor) runInteractive(ctx context.Context, c Candidate) (*Result, error) {
	cmd := exec.Command(e.shell, "-c", c.Command)
	start := time.Now()

	ptmx, err := pty.Start(cmd)
	if err != nil {
		// The invoking terminal was never touched and the command was
		// not attempted.
		return nil, &TerminalAttachError{Err: err}
	}
	sess := &terminalSession{cmd: cmd, ptmx: ptmx}

	e.resize(sess)
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, unix.SIGWINCH)
	defer func() {
		signal.Stop(winch)
		close(winch)
	}()
	go func() {
		for range winch {
			e.resize(sess)
		}
	}()

	rawEntered := false
	if e.console.IsTTY() {
		if err := e.console.EnterRaw(); err != nil {
			sess.release()
			return nil, &TerminalAttachError{Err: err}
		}
		rawEntered = true
	}
	// Safety net for panics in the relay path; ExitRaw is idempotent.
	defer func() {
		if rawEntered {
			_ = e.console.ExitRaw()
		}
	}()

	// Operator keystrokes flow to the child unmodified; in raw mode a
	// ^C arrives as a byte and the child's own line discipline turns it
	// into SIGINT, so interrupts reach the program, not the engine.
	inDone := make(chan struct{})
	go func() {
		defer close(inDone)
		_, _ = io.Copy(ptmx, e.console.In())
	}()

	outDone := make(chan error, 1)
	go func() {
		_, err := io.Copy(e.console.Out(), ptmx)
		outDone <- err
	}()

	waitDone := make(chan error, 1)
	go func() { waitDone <- cmd.Wait() }()

	var waitErr error
wait:
	for {
		select {
		case waitErr = <-waitDone:
			break wait
		case <-ctx.Done():
			// Session teardown: the child will not get further input.
			e.log.Info("interactive session canceled", "command", c.Command)
			waitErr = e.terminate(cmd, waitDone)
			break wait
		case err := <-outDone:
			if err == nil || isPtyClosed(err) {
				// Output drained because the child exited; the wait
				// result arrives next.
				continue
			}
			// Relay broken: the operator can no longer see the child.
			e.log.Warn("terminal relay failed", "command", c.Command, "err", err)
			waitErr = e.terminate(cmd, waitDone)
			break wait
		}
	}

	// Closing the master unblocks the output relay.
	_ = ptmx.Close()

	// The input relay must stop reading now: a byte typed after the
	// session ends belongs to the session's next reader, not to a
	// leftover copy into a closed pty. CancelInput unblocks the pending
	// Read; inputs that cannot be interrupted (no deadline support) keep
	// the pre-cancel behavior.
	if err := e.console.CancelInput(); err == nil {
		<-inDone
		_ = e.console.ResumeInput()
	}

	var restoreErr error
	if rawEntered {
		restoreErr = e.console.ExitRaw()
	}

	result := &Result{
		ExitCode:         exitCode(cmd, waitErr),
		Duration:         time.Since(start),
		TerminalRestored: restoreErr == nil,
	}

	if restoreErr != nil {
		// Never masked by the command's own outcome: a broken terminal
		// is worse than a failed command.
		e.log.Error("terminal restoration failed", "err", restoreErr)
		return result, &RestoreError{Err: restoreErr}
	}
	return result, nil
}

// isPtyClosed reports whether a relay error just means the pty went away
// because the child exited. Linux reports EIO on reads from a master
// whose slave side closed.
func isPtyClosed(err error) bool {
	return errors.Is(err, unix.EIO) || errors.Is(err, os.ErrClosed) || errors.Is(err, io.EOF)
}

// resize propagates the invoking terminal's dimensions to the pty.
func (e *Executor) resize(sess *terminalSession) {
	w, h, err := e.console.Size()
	if err != nil || w <= 0 || h <= 0 {
		return
	}
	_ = pty.Setsize(sess.ptmx, &pty.Winsize{Cols: uint16(w), Rows: uint16(h)})
}
