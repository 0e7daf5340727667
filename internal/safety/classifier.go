package safety

import (
	"fmt"
	"regexp"
	"strings"
)

// ConfirmRule is one confirmation pattern: a regular expression over the
// normalized command text plus a description surfaced to the operator.
type ConfirmRule struct {
	// Pattern is the regular expression source text.
	Pattern string

	// Description explains what the pattern guards against.
	Description string

	re *regexp.Regexp
}

// Classifier decides whether a command is blocked, needs confirmation,
// or may run freely. Rule order is part of the contract: the block list
// is checked before the confirmation patterns, and within each list the
// first match wins.
type Classifier struct {
	blocked []string
	confirm []ConfirmRule
}

// NewClassifier compiles the given rule sets into a Classifier.
// Both lists are evaluated in the order given. Returns an error if any
// confirmation pattern fails to compile.
func NewClassifier(blocked []string, confirm []ConfirmRule) (*Classifier, error) {
	rules := make([]ConfirmRule, len(confirm))
	for i, r := range confirm {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid confirmation pattern %q: %w", r.Pattern, err)
		}
		rules[i] = ConfirmRule{Pattern: r.Pattern, Description: r.Description, re: re}
	}

	normalized := make([]string, len(blocked))
	for i, b := range blocked {
		normalized[i] = normalize(b)
	}

	return &Classifier{blocked: normalized, confirm: rules}, nil
}

// Classify returns the verdict for the given command text.
// Empty or whitespace-only commands are Allowed (a no-op runs nothing).
func (c *Classifier) Classify(command string) Verdict {
	cmd := normalize(command)
	if cmd == "" {
		return Verdict{Decision: Allowed}
	}

	for _, entry := range c.blocked {
		if entry == "" {
			continue
		}
		if strings.Contains(cmd, entry) {
			return Verdict{
				Decision: Blocked,
				Reason:   fmt.Sprintf("matches blocked command %q", entry),
				Rule:     entry,
			}
		}
	}

	for _, rule := range c.confirm {
		if rule.re.MatchString(cmd) {
			return Verdict{
				Decision: NeedsConfirmation,
				Reason:   rule.Description,
				Rule:     rule.Pattern,
			}
		}
	}

	return Verdict{Decision: Allowed}
}

// normalize collapses runs of whitespace into single spaces and trims the
// ends. Matching stays case-sensitive on command syntax; only whitespace
// is canonicalized.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DefaultBlockedCommands returns the built-in block list: commands that
// are never executed regardless of confirmation settings.
func DefaultBlockedCommands() []string {
	return []string{
		"rm -rf /",
		"rm -fr /",
		"rm -rf /*",
		"dd if=/dev/zero of=/dev/sda",
		":(){ :|:& };:",
		"mv / /dev/null",
		"> /dev/sda",
	}
}

// DefaultConfirmRules returns the built-in confirmation patterns.
// Order matters: the first matching rule supplies the reason shown to
// the operator.
func DefaultConfirmRules() []ConfirmRule {
	return []ConfirmRule{
		{Pattern: `rm\s+-[a-zA-Z]*[rf][a-zA-Z]*`, Description: "recursive or forced file deletion"},
		{Pattern: `dd\s+.*of=/dev/`, Description: "raw write to a block device"},
		{Pattern: `mkfs`, Description: "filesystem format destroys existing data"},
		{Pattern: `>\s*/etc/`, Description: "redirection overwrites a system configuration file"},
		{Pattern: `>\s*/boot/`, Description: "redirection overwrites a boot file"},
		{Pattern: `;\s*rm\s`, Description: "chained deletion after another command"},
		{Pattern: `chmod\s+(-[a-zA-Z]+\s+)*777\s+/`, Description: "world-writable permissions on a system path"},
		{Pattern: `chown\s+-R\b`, Description: "recursive ownership change"},
		{Pattern: `\b(shutdown|reboot|halt|poweroff)\b`, Description: "system shutdown or reboot"},
		{Pattern: `\binit\s+0\b`, Description: "system halt via init"},
		{Pattern: `kill\s+-9\s+1\b`, Description: "killing PID 1 brings the system down"},
		{Pattern: `history\s+-c`, Description: "clears shell history"},
	}
}
