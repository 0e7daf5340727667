package safety

import (
	"path/filepath"
	"strings"
)

// wrappers are programs that run another program; they are stripped before
// the registry lookup so "sudo vim" resolves to "vim".
var wrappers = map[string]bool{
	"sudo":    true,
	"env":     true,
	"nohup":   true,
	"command": true,
	"exec":    true,
	"time":    true,
}

// Detector decides whether a command needs a live terminal attachment.
// Unknown programs default to batch: a false negative merely loses some
// terminal niceties, while a false positive would leave captured output
// unflushed.
type Detector struct {
	programs []string
	lookup   map[string]bool
}

// NewDetector builds a Detector over the given known-interactive program
// registry. The registry is an ordered list to keep the matching contract
// explicit, though membership alone decides the outcome.
func NewDetector(programs []string) *Detector {
	lookup := make(map[string]bool, len(programs))
	for _, p := range programs {
		lookup[p] = true
	}
	return &Detector{programs: programs, lookup: lookup}
}

// IsInteractive reports whether the command requires a terminal.
// Every pipeline stage is evaluated; if any stage's program is in the
// registry the whole command is interactive (a pipeline into a pager
// still needs a terminal).
func (d *Detector) IsInteractive(command string) bool {
	for _, stage := range splitStages(command) {
		prog, args := stageProgram(stage)
		if prog == "" {
			continue
		}
		if d.lookup[prog] {
			return true
		}
		// tail only holds the terminal when following a file.
		if prog == "tail" && hasFollowFlag(args) {
			return true
		}
	}
	return false
}

// splitStages breaks a compound command at pipe and sequencing operators.
func splitStages(command string) []string {
	f := func(r rune) bool {
		return r == '|' || r == ';' || r == '&'
	}
	return strings.FieldsFunc(command, f)
}

// stageProgram extracts the executable name of one pipeline stage:
// leading environment assignments and wrapper programs (with their flags)
// are skipped, and any path prefix is stripped.
func stageProgram(stage string) (string, []string) {
	tokens := strings.Fields(stage)

	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		switch {
		case strings.Contains(tok, "=") && !strings.HasPrefix(tok, "-"):
			// FOO=bar prefix assignment.
			i++
		case wrappers[filepath.Base(tok)]:
			i++
			// Skip the wrapper's own flags (e.g. sudo -u admin).
			for i < len(tokens) && strings.HasPrefix(tokens[i], "-") {
				i++
				// Flags that consume a value.
				if i < len(tokens) && (tokens[i-1] == "-u" || tokens[i-1] == "-g") {
					i++
				}
			}
		default:
			return filepath.Base(tok), tokens[i+1:]
		}
	}
	return "", nil
}

func hasFollowFlag(args []string) bool {
	for _, a := range args {
		if a == "-f" || a == "-F" || a == "--follow" {
			return true
		}
		if strings.HasPrefix(a, "-") && !strings.HasPrefix(a, "--") && strings.ContainsAny(a, "fF") {
			return true
		}
	}
	return false
}

// DefaultInteractivePrograms returns the built-in known-interactive
// registry: editors, pagers, monitors, database shells, login shells,
// remote-access clients and language REPLs.
func DefaultInteractivePrograms() []string {
	return []string{
		"vim", "vi", "nano", "emacs", "pico",
		"less", "more", "most",
		"top", "htop", "btop", "watch",
		"mysql", "psql", "sqlite3", "redis-cli", "mongosh",
		"bash", "sh", "zsh", "ksh", "csh", "fish",
		"ssh", "sftp", "ftp", "telnet", "mosh",
		"python", "python3", "ipython", "irb", "node",
		"tmux", "screen",
		"man", "visudo", "vipw", "crontab",
	}
}
