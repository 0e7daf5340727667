package session

import (
	"errors"

	"github.com/pkarlsen/shellguard/internal/executor"
	"github.com/pkarlsen/shellguard/internal/planner"
)

// ErrConfirmationDeclined marks a command the operator refused to
// confirm. It is surfaced in the Report, never retried.
var ErrConfirmationDeclined = errors.New("confirmation declined")

// Outcome summarizes how one utterance was resolved.
type Outcome int

const (
	// OutcomeCompleted means every command that was supposed to run
	// finished with exit code zero.
	OutcomeCompleted Outcome = iota

	// OutcomeNotActionable means the model found nothing to execute in
	// the utterance (a question, small talk, an impossible request).
	OutcomeNotActionable

	// OutcomeTranslationFailure means the model collaborator was
	// unreachable or returned unparsable output. Nothing was executed.
	OutcomeTranslationFailure

	// OutcomeBlocked means the classifier vetoed the command. Nothing
	// was executed.
	OutcomeBlocked

	// OutcomeDeclined means the operator refused confirmation for a
	// single command. Nothing was executed.
	OutcomeDeclined

	// OutcomeFailed means at least one command ran and failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeNotActionable:
		return "not actionable"
	case OutcomeTranslationFailure:
		return "translation failure"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeDeclined:
		return "declined"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Report is what the orchestrator hands to the presentation layer for
// one utterance: the candidate(s), their verdicts, and what actually
// ran. Exactly one of Candidate or Plan is set once a translation
// succeeds; both are nil on translation failure.
type Report struct {
	ID          string
	Utterance   string
	Explanation string
	Outcome     Outcome

	// Err carries the failure detail for TranslationFailure, Declined
	// and execution errors. Nil on success.
	Err error

	// Candidate and Result describe the single-command flow.
	Candidate *executor.Candidate
	Result    *executor.Result

	// Plan describes the compound flow, with per-step statuses.
	Plan *planner.TaskPlan

	// Analysis is the model's optional summary of the command output.
	Analysis string
}

// Compound reports whether the utterance resolved to a multi-step plan.
func (r *Report) Compound() bool {
	return r.Plan != nil
}
