// Package llm defines the model collaborator interface and an
// OpenAI-compatible HTTP client implementing it. The engine consumes the
// collaborator as an abstract Translator so tests can substitute a
// deterministic fake.
package llm

import (
	"context"
	"errors"

	"github.com/pkarlsen/shellguard/internal/stream"
)

// ErrTranslationFailure marks a model collaborator that was unreachable
// or returned output that could not be parsed. Nothing is executed when
// translation fails.
var ErrTranslationFailure = errors.New("translation failure")

// Message is one turn of conversation context passed to the model.
type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// PlannedCommand is one shell command proposed by the model.
type PlannedCommand struct {
	Command     string `json:"command"`
	Explanation string `json:"explanation"`
	Dangerous   bool   `json:"dangerous"`
	Reason      string `json:"reason_if_dangerous"`
}

// Translation is the model's interpretation of one utterance.
// Actionable distinguishes "no command to run" from an empty answer.
type Translation struct {
	Actionable  bool
	Compound    bool
	Commands    []PlannedCommand
	Explanation string
}

// Single returns the sole command of a non-compound translation.
func (t *Translation) Single() PlannedCommand {
	if len(t.Commands) == 0 {
		return PlannedCommand{}
	}
	return t.Commands[0]
}

// Translator is the model collaborator. Implementations must clearly
// distinguish "no actionable command" (Actionable=false, nil error) from
// a failure (ErrTranslationFailure); callers do not silently retry.
type Translator interface {
	// Translate turns an utterance plus conversation context into a
	// command list.
	Translate(ctx context.Context, utterance string, history []Message) (*Translation, error)

	// TranslateStream is the streaming variant: it returns a token
	// stream whose assembled text parses to the same payload.
	TranslateStream(ctx context.Context, utterance string, history []Message) (stream.TokenStream, error)

	// AnalyzeOutput asks the model to summarize a finished command's
	// output for the operator.
	AnalyzeOutput(ctx context.Context, command, stdout, stderr string) (string, error)
}
