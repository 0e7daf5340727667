package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkarlsen/shellguard/internal/logging"
	"github.com/pkarlsen/shellguard/internal/stream"
)

const systemPrompt = `You are a Linux administration assistant. Translate the user's request into shell commands.
Respond with JSON only, no prose outside the JSON.
For a single command: {"command": "...", "explanation": "...", "dangerous": true/false, "reason_if_dangerous": "..."}
For a multi-step task: {"commands": [{"command": "...", "explanation": "...", "dangerous": true/false, "reason_if_dangerous": "..."}], "explanation": "..."}
If the request is not an actionable command, respond: {"command": "", "explanation": "why"}`

const analysisPrompt = `You are a Linux administration assistant. Briefly explain the following command output to the operator, noting errors and what to do next. Answer in plain text.`

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithSystemContext appends host information (OS, memory, disks) to the
// system prompt so the model proposes commands that fit the machine.
func WithSystemContext(info string) ClientOption {
	return func(c *Client) { c.systemContext = info }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log *logging.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL       string
	apiKey        string
	model         string
	systemContext string
	httpClient    *http.Client
	log           *logging.Logger
}

var _ Translator = (*Client)(nil)

// NewClient creates a Client for the given endpoint. timeout bounds
// non-streaming requests; streaming requests are bounded by their context.
func NewClient(baseURL, apiKey, model string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		log:        logging.With("component", "llm"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Translate implements Translator using a blocking completion request.
func (c *Client) Translate(ctx context.Context, utterance string, history []Message) (*Translation, error) {
	text, err := c.complete(ctx, c.translationMessages(utterance, history))
	if err != nil {
		return nil, err
	}
	return ParseTranslation(text)
}

// TranslateStream implements Translator using a streaming completion
// request. The returned stream's assembled text parses identically to
// the Translate payload.
func (c *Client) TranslateStream(ctx context.Context, utterance string, history []Message) (stream.TokenStream, error) {
	return c.openStream(ctx, c.translationMessages(utterance, history))
}

// AnalyzeOutput implements Translator.
func (c *Client) AnalyzeOutput(ctx context.Context, command, stdout, stderr string) (string, error) {
	content := fmt.Sprintf("Command: %s\n\nStdout:\n%s\n\nStderr:\n%s", command, stdout, stderr)
	return c.complete(ctx, []Message{
		{Role: "system", Content: analysisPrompt},
		{Role: "user", Content: content},
	})
}

func (c *Client) translationMessages(utterance string, history []Message) []Message {
	sys := systemPrompt
	if c.systemContext != "" {
		sys += "\n\nHost information:\n" + c.systemContext
	}
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: sys})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: utterance})
	return messages
}

func (c *Client) complete(ctx context.Context, messages []Message) (string, error) {
	resp, err := c.post(ctx, chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: server returned status %d: %s", ErrTranslationFailure, resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrTranslationFailure, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: response contains no choices", ErrTranslationFailure)
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) openStream(ctx context.Context, messages []Message) (stream.TokenStream, error) {
	resp, err := c.post(ctx, chatRequest{Model: c.model, Messages: messages, Stream: true})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: server returned status %d: %s", ErrTranslationFailure, resp.StatusCode, string(body))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseStream{body: resp.Body, scanner: scanner, log: c.log}, nil
}

func (c *Client) post(ctx context.Context, payload chatRequest) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrTranslationFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrTranslationFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	client := c.httpClient
	if payload.Stream {
		// No client timeout for streaming; the context bounds it.
		client = &http.Client{Transport: c.httpClient.Transport}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrTranslationFailure, err)
	}
	return resp, nil
}

// sseStream adapts a Server-Sent Events response body to a TokenStream.
// Each "data:" line carries one chat chunk; "[DONE]" ends the stream.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	log     *logging.Logger
	done    bool
}

// Recv returns the next non-empty content delta.
func (s *sseStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			s.close()
			return "", io.EOF
		}
		var chunk chatChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			s.log.Warn("skipping malformed stream chunk", "err", err)
			continue
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			return chunk.Choices[0].Delta.Content, nil
		}
	}

	err := s.scanner.Err()
	s.close()
	if err != nil {
		return "", fmt.Errorf("reading stream: %w", err)
	}
	return "", io.EOF
}

func (s *sseStream) close() {
	if !s.done {
		s.done = true
		s.body.Close()
	}
}
