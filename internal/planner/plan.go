// Package planner decomposes a compound task into an ordered command
// plan and executes it step by step with per-step status tracking.
// Steps run strictly in order; later steps may depend on earlier side
// effects, so there is no reordering and no parallelism.
package planner

import (
	"strings"

	"github.com/google/uuid"

	"github.com/pkarlsen/shellguard/internal/executor"
	"github.com/pkarlsen/shellguard/internal/llm"
	"github.com/pkarlsen/shellguard/internal/safety"
)

// StepStatus is the lifecycle state of one plan step.
type StepStatus int

const (
	// StepPending means the step has not started.
	StepPending StepStatus = iota
	// StepRunning means the step is currently executing.
	StepRunning
	// StepSucceeded means the step finished with exit code zero.
	StepSucceeded
	// StepFailed means the step finished with a nonzero exit code,
	// timed out, or could not be started.
	StepFailed
	// StepSkipped means the step was never executed: blocked verdict,
	// declined confirmation, or an earlier failure under fail-stop.
	StepSkipped
)

// String returns a human-readable status name.
func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepRunning:
		return "running"
	case StepSucceeded:
		return "succeeded"
	case StepFailed:
		return "failed"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is final.
func (s StepStatus) Terminal() bool {
	return s == StepSucceeded || s == StepFailed || s == StepSkipped
}

// Step is one command of a plan together with its outcome.
type Step struct {
	Candidate executor.Candidate
	Status    StepStatus

	// Result is set once the step executed (Succeeded or Failed after
	// spawning); nil for skipped steps.
	Result *executor.Result

	// Note explains a Skipped or Failed status: the verdict reason, the
	// declined confirmation, or the execution error.
	Note string
}

// TaskPlan is an ordered command sequence derived from one compound
// task. It is owned by the Planner for the task's lifetime and discarded
// afterwards.
type TaskPlan struct {
	ID          string
	Intent      string
	Explanation string
	Steps       []Step
}

// Counts returns how many steps finished in each terminal state.
func (p *TaskPlan) Counts() (succeeded, failed, skipped int) {
	for _, s := range p.Steps {
		switch s.Status {
		case StepSucceeded:
			succeeded++
		case StepFailed:
			failed++
		case StepSkipped:
			skipped++
		}
	}
	return
}

// BuildCandidate classifies one planned command into an execution
// candidate. The risk verdict comes from the classifier; a command the
// model itself flagged as dangerous is raised to NeedsConfirmation when
// the rules alone would have allowed it.
func BuildCandidate(classifier *safety.Classifier, detector *safety.Detector, intent string, pc llm.PlannedCommand) executor.Candidate {
	verdict := classifier.Classify(pc.Command)
	if verdict.Decision == safety.Allowed && pc.Dangerous {
		reason := pc.Reason
		if reason == "" {
			reason = "flagged as dangerous by the model"
		}
		verdict = safety.Verdict{Decision: safety.NeedsConfirmation, Reason: reason}
	}
	return executor.Candidate{
		Command:     pc.Command,
		Intent:      intent,
		Verdict:     verdict,
		Interactive: detector.IsInteractive(pc.Command),
	}
}

// NewTaskPlan builds a classified plan from translated commands.
func NewTaskPlan(classifier *safety.Classifier, detector *safety.Detector, intent, explanation string, commands []llm.PlannedCommand) *TaskPlan {
	steps := make([]Step, 0, len(commands))
	for _, pc := range commands {
		steps = append(steps, Step{
			Candidate: BuildCandidate(classifier, detector, intent, pc),
			Status:    StepPending,
		})
	}
	return &TaskPlan{
		ID:          uuid.NewString(),
		Intent:      intent,
		Explanation: explanation,
		Steps:       steps,
	}
}

// SplitChain breaks an &&- or ;-chained command into its parts. Parts
// run in separate shells, so callers must not split chains whose steps
// share shell state; sharesShellState is the guard.
func SplitChain(command string) []string {
	var sep string
	switch {
	case strings.Contains(command, "&&"):
		sep = "&&"
	case strings.Contains(command, ";"):
		sep = ";"
	default:
		return []string{command}
	}

	parts := make([]string, 0)
	for _, p := range strings.Split(command, sep) {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return []string{command}
	}
	return parts
}

// sharesShellState reports whether any chain part mutates shell state a
// later part would depend on: a working-directory change, a variable
// assignment, or a sourced script. Such a chain must stay in one shell.
func sharesShellState(parts []string) bool {
	for _, part := range parts {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "cd", "pushd", "popd", "export", "set", "unset", "source", ".":
			return true
		}
		if strings.Contains(fields[0], "=") {
			return true
		}
	}
	return false
}
