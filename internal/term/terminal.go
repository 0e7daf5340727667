// Package term controls the invoking terminal. It snapshots the terminal
// mode before an interactive session and restores it afterwards; that
// restoration is the most safety-critical operation in the engine, since
// a missed restore leaves the operator's terminal unusable.
package term

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// Terminal wraps the process's controlling terminal with raw-mode state
// tracking. The zero value is not usable; construct with New.
type Terminal struct {
	in       *os.File
	out      *os.File
	oldState *term.State
	isRaw    bool
}

// New creates a Terminal over stdin/stdout.
func New() *Terminal {
	return &Terminal{in: os.Stdin, out: os.Stdout}
}

// IsTTY reports whether the input is an actual terminal.
func (t *Terminal) IsTTY() bool {
	return term.IsTerminal(int(t.in.Fd()))
}

// EnterRaw snapshots the current terminal mode and switches to raw mode.
// Returns an error if already raw or if the switch fails; on failure the
// terminal is left untouched.
func (t *Terminal) EnterRaw() error {
	if t.isRaw {
		return fmt.Errorf("terminal already in raw mode")
	}

	oldState, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}

	t.oldState = oldState
	t.isRaw = true
	return nil
}

// ExitRaw restores the mode snapshot taken by EnterRaw. Safe to call
// when not in raw mode.
func (t *Terminal) ExitRaw() error {
	if !t.isRaw || t.oldState == nil {
		return nil
	}

	if err := term.Restore(int(t.in.Fd()), t.oldState); err != nil {
		return fmt.Errorf("failed to restore terminal: %w", err)
	}

	t.isRaw = false
	t.oldState = nil
	return nil
}

// IsRaw reports whether the terminal is currently in raw mode.
func (t *Terminal) IsRaw() bool {
	return t.isRaw
}

// Size returns the current terminal width and height.
func (t *Terminal) Size() (width, height int, err error) {
	width, height, err = term.GetSize(int(t.in.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get terminal size: %w", err)
	}
	return width, height, nil
}

// CancelInput expires the input read deadline so a Read blocked on the
// terminal returns immediately. Input stays unreadable until
// ResumeInput. TTYs and pipes are pollable on Linux; inputs without
// deadline support return an error and are left untouched.
func (t *Terminal) CancelInput() error {
	return t.in.SetReadDeadline(time.Now())
}

// ResumeInput clears the deadline set by CancelInput.
func (t *Terminal) ResumeInput() error {
	return t.in.SetReadDeadline(time.Time{})
}

// In returns the terminal input.
func (t *Terminal) In() io.Reader { return t.in }

// Out returns the terminal output.
func (t *Terminal) Out() io.Writer { return t.out }
