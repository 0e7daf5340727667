// Package executor runs classified commands. Batch commands run to
// completion with captured output under a wall-clock timeout; interactive
// commands get a pseudo-terminal with a bidirectional relay to the
// invoking terminal. The safety gate is enforced here: a Blocked verdict
// never spawns a process, and a NeedsConfirmation verdict requires a
// prior operator acknowledgment.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pkarlsen/shellguard/internal/logging"
	"github.com/pkarlsen/shellguard/internal/safety"
)

// Candidate is one command ready for execution: the translated text plus
// its risk verdict and interactivity classification. Immutable once
// classified.
type Candidate struct {
	// Command is the shell command text.
	Command string

	// Intent is the natural-language request this command came from.
	Intent string

	// Verdict is the risk classification of Command.
	Verdict safety.Verdict

	// Interactive selects PTY execution instead of batch capture.
	Interactive bool

	// Acknowledged records that the operator already confirmed a
	// NeedsConfirmation verdict. The executor itself never prompts.
	Acknowledged bool
}

// Result describes a finished (or forcibly terminated) command.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration

	// TimedOut is set when a batch command exceeded its deadline and
	// was killed. Stdout/Stderr keep whatever was captured.
	TimedOut bool

	// TerminalRestored reports whether the invoking terminal's mode was
	// put back after an interactive session. Always true for batch.
	TerminalRestored bool
}

// ErrBlocked is returned when a candidate's verdict forbids execution.
var ErrBlocked = errors.New("command blocked by safety policy")

// ErrConfirmationRequired is returned when a NeedsConfirmation candidate
// arrives without operator acknowledgment.
var ErrConfirmationRequired = errors.New("command requires operator confirmation")

// TerminalAttachError reports a failure to allocate or attach a
// pseudo-terminal. The invoking terminal is guaranteed untouched and the
// command was not attempted.
type TerminalAttachError struct {
	Err error
}

func (e *TerminalAttachError) Error() string {
	return fmt.Sprintf("failed to attach terminal: %v", e.Err)
}

func (e *TerminalAttachError) Unwrap() error { return e.Err }

// RestoreError reports that restoring the invoking terminal's mode
// failed after an interactive session. It is escalated as its own
// condition rather than masked by the command's result.
type RestoreError struct {
	Err error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("terminal mode restoration failed: %v", e.Err)
}

func (e *RestoreError) Unwrap() error { return e.Err }

// Console is the invoking terminal as the executor sees it. term.Terminal
// implements it; tests substitute a fake to verify the restoration
// invariant.
type Console interface {
	IsTTY() bool
	EnterRaw() error
	ExitRaw() error
	Size() (width, height int, err error)
	In() io.Reader
	Out() io.Writer

	// CancelInput unblocks a pending Read on In so the input relay can
	// stop when an interactive session ends; ResumeInput makes In
	// readable again afterwards.
	CancelInput() error
	ResumeInput() error
}

// Executor runs candidates. One Executor serves one session; its Console
// and any live TerminalSession are exclusively owned and must not be
// shared.
type Executor struct {
	shell   string
	timeout time.Duration
	grace   time.Duration
	console Console
	log     *logging.Logger
}

// New creates an Executor. shell is the interpreter for command text
// (normally /bin/sh), timeout bounds batch commands, grace is the
// interval between SIGTERM and SIGKILL on timeout.
func New(shell string, timeout, grace time.Duration, console Console) *Executor {
	return &Executor{
		shell:   shell,
		timeout: timeout,
		grace:   grace,
		console: console,
		log:     logging.With("component", "executor"),
	}
}

// Execute runs one candidate and returns its result.
//
// Blocked verdicts fail fast with ErrBlocked and nothing is spawned.
// NeedsConfirmation verdicts without Acknowledged fail with
// ErrConfirmationRequired. Interactive candidates run attached to a
// pseudo-terminal with no timeout; batch candidates run with captured
// output under the configured timeout.
func (e *Executor) Execute(ctx context.Context, c Candidate) (*Result, error) {
	switch c.Verdict.Decision {
	case safety.Blocked:
		e.log.Warn("refusing blocked command", "command", c.Command, "rule", c.Verdict.Rule)
		return nil, fmt.Errorf("%w: %s", ErrBlocked, c.Verdict.Reason)
	case safety.NeedsConfirmation:
		if !c.Acknowledged {
			return nil, fmt.Errorf("%w: %s", ErrConfirmationRequired, c.Verdict.Reason)
		}
	}

	if c.Interactive {
		return e.runInteractive(ctx, c)
	}
	return e.runBatch(ctx, c)
}
