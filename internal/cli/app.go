package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkarlsen/shellguard/internal/config"
	"github.com/pkarlsen/shellguard/internal/executor"
	"github.com/pkarlsen/shellguard/internal/history"
	"github.com/pkarlsen/shellguard/internal/llm"
	"github.com/pkarlsen/shellguard/internal/planner"
	"github.com/pkarlsen/shellguard/internal/safety"
	"github.com/pkarlsen/shellguard/internal/session"
	"github.com/pkarlsen/shellguard/internal/stream"
	"github.com/pkarlsen/shellguard/internal/sysinfo"
	"github.com/pkarlsen/shellguard/internal/term"
)

// sessionBuilder assembles the orchestrator from config. It is a
// variable so tests can substitute an orchestrator with a mock model
// and runner.
var sessionBuilder = buildSession

func buildSession(ctx context.Context, cfg *config.Config, analyze bool, progress stream.ProgressFunc) (*session.Orchestrator, error) {
	classifier, err := safety.NewClassifier(cfg.Security.BlockedCommands, cfg.Security.ConfirmRules())
	if err != nil {
		return nil, fmt.Errorf("compiling safety rules: %w", err)
	}
	detector := safety.NewDetector(cfg.Security.InteractivePrograms)

	runner := executor.New(
		cfg.Exec.Shell,
		time.Duration(cfg.Exec.TimeoutSeconds)*time.Second,
		time.Duration(cfg.Exec.GraceSeconds)*time.Second,
		term.New(),
	)

	var clientOpts []llm.ClientOption
	if snap, err := sysinfo.Collect(ctx); err == nil {
		clientOpts = append(clientOpts, llm.WithSystemContext(snap.PromptContext()))
	}
	translator := llm.NewClient(
		cfg.API.BaseURL,
		cfg.API.APIKey,
		cfg.API.Model,
		time.Duration(cfg.API.TimeoutSeconds)*time.Second,
		clientOpts...,
	)

	var recorder session.Recorder
	if cfg.UI.HistoryFile != "" {
		store, err := history.Open(config.ExpandPath(cfg.UI.HistoryFile), cfg.UI.MaxHistory)
		if err != nil {
			return nil, fmt.Errorf("opening history: %w", err)
		}
		recorder = store
	}

	return session.New(session.Options{
		Translator:       translator,
		Classifier:       classifier,
		Detector:         detector,
		Runner:           runner,
		Recorder:         recorder,
		ConfirmDangerous: cfg.Security.ConfirmDangerousCommands,
		ContinueOnError:  cfg.Security.ContinueOnError,
		AbortOnDeclined:  cfg.Security.OnDeclined == config.OnDeclinedAbort,
		AnalyzeOutput:    analyze,
		Progress:         progress,
	}), nil
}

// modelProgress renders model output to w as it streams in, so the
// operator watches the translation form instead of a silent pause. The
// stream goes to stderr in the commands; the structured report stays on
// stdout.
func modelProgress(w io.Writer) stream.ProgressFunc {
	return func(fragment, _ string) {
		fmt.Fprint(w, fragment)
	}
}

// promptConfirm returns a ConfirmFunc that asks on out and reads the
// answer from in. Anything other than y/yes declines.
func promptConfirm(in *bufio.Reader, out io.Writer) planner.ConfirmFunc {
	return func(command, reason string) bool {
		fmt.Fprintf(out, "This command may be risky: %s\n", reason)
		fmt.Fprintf(out, "  %s\nRun it? [y/N]: ", command)

		line, err := in.ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

// renderReport writes a handled utterance's outcome for the operator.
func renderReport(w io.Writer, r *session.Report) {
	if r.Explanation != "" {
		fmt.Fprintf(w, "Understanding: %s\n", r.Explanation)
	}

	switch r.Outcome {
	case session.OutcomeTranslationFailure:
		fmt.Fprintf(w, "Could not translate the request: %v\n", r.Err)
		return
	case session.OutcomeNotActionable:
		fmt.Fprintln(w, "Nothing to execute.")
		return
	}

	if r.Compound() {
		renderPlan(w, r.Plan)
	} else {
		renderSingle(w, r)
	}

	if r.Analysis != "" {
		fmt.Fprintf(w, "\nAnalysis: %s\n", r.Analysis)
	}
}

func renderSingle(w io.Writer, r *session.Report) {
	c := r.Candidate
	if c == nil {
		return
	}
	fmt.Fprintf(w, "$ %s\n", c.Command)

	switch r.Outcome {
	case session.OutcomeBlocked:
		fmt.Fprintf(w, "Blocked: %s\n", c.Verdict.Reason)
		return
	case session.OutcomeDeclined:
		fmt.Fprintln(w, "Skipped: confirmation declined.")
		return
	}

	if r.Result == nil {
		if r.Err != nil {
			fmt.Fprintf(w, "Execution failed: %v\n", r.Err)
		}
		return
	}

	w.Write(r.Result.Stdout)
	w.Write(r.Result.Stderr)
	switch {
	case r.Result.TimedOut:
		fmt.Fprintln(w, "Command timed out and was killed.")
	case r.Result.ExitCode != 0:
		fmt.Fprintf(w, "exit status %d\n", r.Result.ExitCode)
	}
}

func renderPlan(w io.Writer, plan *planner.TaskPlan) {
	fmt.Fprintf(w, "Plan: %d steps\n", len(plan.Steps))
	for i, step := range plan.Steps {
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, step.Status, step.Candidate.Command)
		if step.Note != "" {
			fmt.Fprintf(w, "   %s\n", step.Note)
		}
		if step.Result != nil {
			writeIndented(w, step.Result.Stdout)
			writeIndented(w, step.Result.Stderr)
		}
	}
	succeeded, failed, skipped := plan.Counts()
	fmt.Fprintf(w, "%d succeeded, %d failed, %d skipped\n", succeeded, failed, skipped)
}

func writeIndented(w io.Writer, output []byte) {
	text := strings.TrimRight(string(output), "\n")
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(w, "   %s\n", line)
	}
}
