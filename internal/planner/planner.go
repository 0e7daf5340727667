package planner

import (
	"context"
	"fmt"

	"github.com/pkarlsen/shellguard/internal/executor"
	"github.com/pkarlsen/shellguard/internal/llm"
	"github.com/pkarlsen/shellguard/internal/logging"
	"github.com/pkarlsen/shellguard/internal/safety"
)

// ConfirmFunc asks the operator to approve one risky command. It is
// invoked exactly once per NeedsConfirmation verdict, before execution.
type ConfirmFunc func(command, reason string) bool

// CommandRunner executes one classified candidate. *executor.Executor
// implements it; tests substitute a recorder.
type CommandRunner interface {
	Execute(ctx context.Context, c executor.Candidate) (*executor.Result, error)
}

// Options configures a Planner with explicit dependencies.
type Options struct {
	Translator llm.Translator
	Classifier *safety.Classifier
	Detector   *safety.Detector
	Runner     CommandRunner

	// ConfirmDangerous gates whether NeedsConfirmation verdicts prompt
	// at all; when false they are treated as acknowledged.
	ConfirmDangerous bool

	// ContinueOnError keeps the plan running past a failed step instead
	// of skipping the remainder (fail-stop is the default).
	ContinueOnError bool

	// AbortOnDeclined turns a declined confirmation into a plan abort.
	// The default is to skip the declined step and continue.
	AbortOnDeclined bool
}

// Planner turns compound intents into plans and runs them.
type Planner struct {
	translator llm.Translator
	classifier *safety.Classifier
	detector   *safety.Detector
	runner     CommandRunner

	confirmDangerous bool
	continueOnError  bool
	abortOnDeclined  bool

	log *logging.Logger
}

// New creates a Planner from options.
func New(opts Options) *Planner {
	return &Planner{
		translator:       opts.Translator,
		classifier:       opts.Classifier,
		detector:         opts.Detector,
		runner:           opts.Runner,
		confirmDangerous: opts.ConfirmDangerous,
		continueOnError:  opts.ContinueOnError,
		abortOnDeclined:  opts.AbortOnDeclined,
		log:              logging.With("component", "planner"),
	}
}

// Plan asks the model collaborator to decompose the intent into an
// ordered command list and classifies every command exactly as in the
// single-command flow. A single translated command that is a long
// side-effect chain is split into discrete steps.
func (p *Planner) Plan(ctx context.Context, intent string, history []llm.Message) (*TaskPlan, error) {
	tr, err := p.translator.Translate(ctx, intent, history)
	if err != nil {
		return nil, fmt.Errorf("planning %q: %w", intent, err)
	}
	if !tr.Actionable {
		return nil, fmt.Errorf("%w: no actionable commands for %q", llm.ErrTranslationFailure, intent)
	}

	return p.Build(intent, tr), nil
}

// Build turns an already translated response into a classified plan.
// Callers that translate themselves (to route single versus compound
// flows) use this to avoid a second model round trip.
func (p *Planner) Build(intent string, tr *llm.Translation) *TaskPlan {
	commands := tr.Commands
	if len(commands) == 1 {
		commands = p.maybeSplit(commands[0])
	}

	plan := NewTaskPlan(p.classifier, p.detector, intent, tr.Explanation, commands)
	p.log.Debug("plan built", "intent", intent, "steps", len(plan.Steps))
	return plan
}

// maybeSplit breaks one heavily chained batch command into separate
// steps so each part gets its own verdict and status. Interactive
// commands and short chains stay whole.
func (p *Planner) maybeSplit(pc llm.PlannedCommand) []llm.PlannedCommand {
	if p.detector.IsInteractive(pc.Command) {
		return []llm.PlannedCommand{pc}
	}
	parts := SplitChain(pc.Command)
	if len(parts) < 3 || sharesShellState(parts) {
		return []llm.PlannedCommand{pc}
	}
	split := make([]llm.PlannedCommand, 0, len(parts))
	for _, part := range parts {
		split = append(split, llm.PlannedCommand{
			Command:     part,
			Explanation: pc.Explanation,
			Dangerous:   pc.Dangerous,
			Reason:      pc.Reason,
		})
	}
	return split
}

// Run executes the plan in order, mutating step statuses, and returns
// the same plan. Step N+1 never starts before step N reaches a terminal
// status.
//
// Policy, in order of precedence per step:
//   - Blocked verdict: the step is Skipped and the plan continues;
//     blocked is not fatal to the remaining steps.
//   - NeedsConfirmation: confirm is invoked once; a decline Skips the
//     step and the plan continues. With AbortOnDeclined the remaining
//     steps are Skipped instead.
//   - Nonzero exit or timeout: the step is Failed and, under the
//     default fail-stop policy, all remaining Pending steps become
//     Skipped. ContinueOnError overrides.
func (p *Planner) Run(ctx context.Context, plan *TaskPlan, confirm ConfirmFunc) *TaskPlan {
	for i := range plan.Steps {
		step := &plan.Steps[i]

		switch step.Candidate.Verdict.Decision {
		case safety.Blocked:
			step.Status = StepSkipped
			step.Note = step.Candidate.Verdict.Reason
			p.log.Warn("step blocked", "command", step.Candidate.Command, "reason", step.Note)
			continue

		case safety.NeedsConfirmation:
			if p.confirmDangerous {
				if confirm == nil || !confirm(step.Candidate.Command, step.Candidate.Verdict.Reason) {
					step.Status = StepSkipped
					step.Note = "confirmation declined"
					if p.abortOnDeclined {
						p.skipRemaining(plan, i+1, "plan aborted by declined confirmation")
						return plan
					}
					continue
				}
			}
			step.Candidate.Acknowledged = true
		}

		step.Status = StepRunning
		res, err := p.runner.Execute(ctx, step.Candidate)
		if err != nil {
			step.Status = StepFailed
			step.Note = err.Error()
		} else {
			step.Result = res
			if res.ExitCode == 0 && !res.TimedOut {
				step.Status = StepSucceeded
			} else {
				step.Status = StepFailed
				if res.TimedOut {
					step.Note = "timed out"
				} else {
					step.Note = fmt.Sprintf("exit code %d", res.ExitCode)
				}
			}
		}

		if step.Status == StepFailed && !p.continueOnError {
			p.skipRemaining(plan, i+1, "previous step failed")
			return plan
		}
	}
	return plan
}

func (p *Planner) skipRemaining(plan *TaskPlan, from int, note string) {
	for i := from; i < len(plan.Steps); i++ {
		if plan.Steps[i].Status == StepPending {
			plan.Steps[i].Status = StepSkipped
			plan.Steps[i].Note = note
		}
	}
}
