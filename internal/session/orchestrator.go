// Package session coordinates one conversation: it routes utterances
// through translation, classification and execution, and assembles a
// Report per utterance for the presentation layer. The orchestrator
// never runs a command itself; execution always flows through the
// executor or the planner so the safety gate cannot be bypassed.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/pkarlsen/shellguard/internal/llm"
	"github.com/pkarlsen/shellguard/internal/logging"
	"github.com/pkarlsen/shellguard/internal/planner"
	"github.com/pkarlsen/shellguard/internal/safety"
	"github.com/pkarlsen/shellguard/internal/stream"
)

// Recorder persists handled utterances. *history.Store implements it;
// a nil Recorder disables persistence.
type Recorder interface {
	Record(utterance, command, outcome string) error
}

// Options configures an Orchestrator. Translator, Classifier, Detector
// and Runner are required.
type Options struct {
	Translator llm.Translator
	Classifier *safety.Classifier
	Detector   *safety.Detector
	Runner     planner.CommandRunner
	Recorder   Recorder

	// ConfirmDangerous gates confirmation prompts. When false,
	// NeedsConfirmation verdicts run without asking.
	ConfirmDangerous bool

	// ContinueOnError and AbortOnDeclined are the plan policies,
	// forwarded to the planner.
	ContinueOnError bool
	AbortOnDeclined bool

	// AnalyzeOutput asks the model to summarize captured output after a
	// successful single batch command.
	AnalyzeOutput bool

	// Progress observes model output fragments while a translation
	// streams in. When set, Handle uses the streaming endpoint and
	// assembles the response fragment by fragment; nil keeps the
	// blocking call.
	Progress stream.ProgressFunc

	// MaxContextTurns caps the conversation turns forwarded to the
	// model. Zero means the default of 10.
	MaxContextTurns int
}

const defaultContextTurns = 10

// Orchestrator handles one session's utterances, strictly one at a
// time. Independent sessions get independent orchestrators; they share
// only the immutable classifier and detector rules.
type Orchestrator struct {
	mu sync.Mutex

	translator llm.Translator
	classifier *safety.Classifier
	detector   *safety.Detector
	runner     planner.CommandRunner
	planner    *planner.Planner
	recorder   Recorder

	confirmDangerous bool
	analyzeOutput    bool
	maxContextTurns  int
	progress         stream.ProgressFunc

	// messages is the conversation context, oldest first.
	messages []llm.Message

	log *logging.Logger
}

// New creates an Orchestrator from options.
func New(opts Options) *Orchestrator {
	turns := opts.MaxContextTurns
	if turns <= 0 {
		turns = defaultContextTurns
	}
	return &Orchestrator{
		translator: opts.Translator,
		classifier: opts.Classifier,
		detector:   opts.Detector,
		runner:     opts.Runner,
		recorder:   opts.Recorder,
		planner: planner.New(planner.Options{
			Translator:       opts.Translator,
			Classifier:       opts.Classifier,
			Detector:         opts.Detector,
			Runner:           opts.Runner,
			ConfirmDangerous: opts.ConfirmDangerous,
			ContinueOnError:  opts.ContinueOnError,
			AbortOnDeclined:  opts.AbortOnDeclined,
		}),
		confirmDangerous: opts.ConfirmDangerous,
		analyzeOutput:    opts.AnalyzeOutput,
		maxContextTurns:  turns,
		progress:         opts.Progress,
		log:              logging.With("component", "session"),
	}
}

// Handle processes one utterance end to end and always returns a
// Report, even on failure. The error return is reserved for context
// cancellation; every domain failure (translation, veto, decline,
// nonzero exit) is recorded in the Report instead, so a session
// survives any single command's failure and stays ready for the next
// utterance.
func (o *Orchestrator) Handle(ctx context.Context, utterance string, confirm planner.ConfirmFunc) (*Report, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	report := &Report{ID: uuid.NewString(), Utterance: utterance}

	tr, err := o.translate(ctx, utterance)
	if err != nil {
		if ctx.Err() != nil {
			report.Outcome = OutcomeTranslationFailure
			report.Err = ctx.Err()
			return report, ctx.Err()
		}
		o.log.Error("translation failed", "utterance", utterance, "error", err)
		report.Outcome = OutcomeTranslationFailure
		report.Err = err
		o.record(report)
		return report, nil
	}

	report.Explanation = tr.Explanation
	o.remember(utterance, tr)

	if !tr.Actionable {
		report.Outcome = OutcomeNotActionable
		o.record(report)
		return report, nil
	}

	if tr.Compound || len(tr.Commands) > 1 {
		o.handleCompound(ctx, report, tr, confirm)
	} else {
		o.handleSingle(ctx, report, tr.Single(), confirm)
	}

	o.record(report)
	return report, nil
}

// translate obtains the model's interpretation of the utterance. With a
// progress observer attached the streaming endpoint is used and the
// observer sees the response form fragment by fragment; the assembled
// text parses identically to the blocking call's payload.
func (o *Orchestrator) translate(ctx context.Context, utterance string) (*llm.Translation, error) {
	if o.progress == nil {
		return o.translator.Translate(ctx, utterance, o.contextMessages())
	}

	ts, err := o.translator.TranslateStream(ctx, utterance, o.contextMessages())
	if err != nil {
		return nil, err
	}
	text, err := stream.NewConsumer(ts).Consume(ctx, o.progress)
	if err != nil {
		return nil, err
	}
	return llm.ParseTranslation(text)
}

// handleSingle classifies and executes one command, gating on the
// verdict before anything reaches the runner.
func (o *Orchestrator) handleSingle(ctx context.Context, report *Report, pc llm.PlannedCommand, confirm planner.ConfirmFunc) {
	candidate := planner.BuildCandidate(o.classifier, o.detector, report.Utterance, pc)
	report.Candidate = &candidate

	switch candidate.Verdict.Decision {
	case safety.Blocked:
		o.log.Warn("command blocked", "command", candidate.Command, "rule", candidate.Verdict.Rule)
		report.Outcome = OutcomeBlocked
		return

	case safety.NeedsConfirmation:
		if o.confirmDangerous {
			if confirm == nil || !confirm(candidate.Command, candidate.Verdict.Reason) {
				report.Outcome = OutcomeDeclined
				report.Err = ErrConfirmationDeclined
				return
			}
		}
		candidate.Acknowledged = true
	}

	res, err := o.runner.Execute(ctx, candidate)
	report.Result = res
	if err != nil {
		o.log.Error("execution failed", "command", candidate.Command, "error", err)
		report.Outcome = OutcomeFailed
		report.Err = err
		return
	}
	if res.ExitCode != 0 || res.TimedOut {
		report.Outcome = OutcomeFailed
		return
	}
	report.Outcome = OutcomeCompleted

	if o.analyzeOutput && !candidate.Interactive {
		o.analyze(ctx, report, candidate.Command)
	}
}

// handleCompound builds a plan from the translation already in hand and
// runs it under the configured policies.
func (o *Orchestrator) handleCompound(ctx context.Context, report *Report, tr *llm.Translation, confirm planner.ConfirmFunc) {
	plan := o.planner.Build(report.Utterance, tr)
	o.planner.Run(ctx, plan, confirm)
	report.Plan = plan

	_, failed, _ := plan.Counts()
	if failed > 0 {
		report.Outcome = OutcomeFailed
		return
	}
	report.Outcome = OutcomeCompleted
}

// analyze asks the model for a short summary of the captured output.
// Analysis is best effort; a failure is logged and the report keeps its
// execution outcome.
func (o *Orchestrator) analyze(ctx context.Context, report *Report, command string) {
	if report.Result == nil {
		return
	}
	summary, err := o.translator.AnalyzeOutput(ctx, command,
		string(report.Result.Stdout), string(report.Result.Stderr))
	if err != nil {
		o.log.Debug("output analysis skipped", "command", command, "error", err)
		return
	}
	report.Analysis = summary
}

// remember appends the exchange to the conversation context, keeping at
// most maxContextTurns turns.
func (o *Orchestrator) remember(utterance string, tr *llm.Translation) {
	reply := tr.Explanation
	if reply == "" && len(tr.Commands) > 0 {
		reply = tr.Commands[0].Command
	}
	o.messages = append(o.messages,
		llm.Message{Role: "user", Content: utterance},
		llm.Message{Role: "assistant", Content: reply},
	)
	if max := o.maxContextTurns * 2; len(o.messages) > max {
		o.messages = o.messages[len(o.messages)-max:]
	}
}

// contextMessages returns the conversation context to forward with the
// next translation request.
func (o *Orchestrator) contextMessages() []llm.Message {
	return o.messages
}

// record persists the handled utterance. Best effort: persistence
// failures are logged, never surfaced to the operator.
func (o *Orchestrator) record(report *Report) {
	if o.recorder == nil {
		return
	}
	command := ""
	switch {
	case report.Plan != nil:
		for _, step := range report.Plan.Steps {
			if err := o.recorder.Record(report.Utterance, step.Candidate.Command, step.Status.String()); err != nil {
				o.log.Debug("history write failed", "error", err)
				return
			}
		}
		return
	case report.Candidate != nil:
		command = report.Candidate.Command
	}
	if err := o.recorder.Record(report.Utterance, command, report.Outcome.String()); err != nil {
		o.log.Debug("history write failed", "error", err)
	}
}
