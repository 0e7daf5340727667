package llm

import (
	"context"

	"github.com/pkarlsen/shellguard/internal/stream"
)

// MockTranslator is a test double for Translator.
type MockTranslator struct {
	// TranslateFunc is called when Translate is invoked.
	// If nil, Translate returns a non-actionable translation.
	TranslateFunc func(ctx context.Context, utterance string, history []Message) (*Translation, error)

	// TranslateStreamFunc is called when TranslateStream is invoked.
	// If nil, an empty stream is returned.
	TranslateStreamFunc func(ctx context.Context, utterance string, history []Message) (stream.TokenStream, error)

	// AnalyzeOutputFunc is called when AnalyzeOutput is invoked.
	// If nil, AnalyzeOutput returns "".
	AnalyzeOutputFunc func(ctx context.Context, command, stdout, stderr string) (string, error)
}

var _ Translator = (*MockTranslator)(nil)

// Translate calls the mock function if set.
func (m *MockTranslator) Translate(ctx context.Context, utterance string, history []Message) (*Translation, error) {
	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, utterance, history)
	}
	return &Translation{}, nil
}

// TranslateStream calls the mock function if set.
func (m *MockTranslator) TranslateStream(ctx context.Context, utterance string, history []Message) (stream.TokenStream, error) {
	if m.TranslateStreamFunc != nil {
		return m.TranslateStreamFunc(ctx, utterance, history)
	}
	return &stream.SliceStream{}, nil
}

// AnalyzeOutput calls the mock function if set.
func (m *MockTranslator) AnalyzeOutput(ctx context.Context, command, stdout, stderr string) (string, error) {
	if m.AnalyzeOutputFunc != nil {
		return m.AnalyzeOutputFunc(ctx, command, stdout, stderr)
	}
	return "", nil
}
