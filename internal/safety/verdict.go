// Package safety classifies shell commands before execution. It provides
// the risk classifier (block list + confirmation patterns) and the
// interactivity detector (does a command need a live terminal). Both are
// pure functions over the command text: no I/O, no clock, same input
// always yields the same answer.
package safety

// Decision is the classification outcome for a command.
type Decision int

const (
	// Allowed means the command may run without further checks.
	// It is the zero value.
	Allowed Decision = iota

	// NeedsConfirmation means the command requires explicit operator
	// approval before execution.
	NeedsConfirmation

	// Blocked means the command must never be executed.
	Blocked
)

// String returns the string representation of a Decision.
func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case NeedsConfirmation:
		return "needs_confirmation"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Verdict holds the outcome of classifying one command.
type Verdict struct {
	// Decision is the classification decision.
	Decision Decision

	// Reason is a human-readable explanation of why this decision was made.
	// Empty for Allowed.
	Reason string

	// Rule identifies the matched rule: the block-list entry or the
	// confirmation pattern source text. Empty for Allowed.
	Rule string
}

// Safe reports whether the command may run without operator confirmation.
func (v Verdict) Safe() bool {
	return v.Decision == Allowed
}
