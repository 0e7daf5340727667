package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkarlsen/shellguard/internal/stream"
	"github.com/pkarlsen/shellguard/internal/testutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", "test-model", 5*time.Second, opts...)
}

func TestClient_Translate(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.False(t, req.Stream)
		// System prompt first, utterance last.
		require.NotEmpty(t, req.Messages)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "show disk usage", req.Messages[len(req.Messages)-1].Content)

		fmt.Fprint(w, `{"choices": [{"message": {"content": "{\"command\": \"df -h\", \"explanation\": \"disk usage\"}"}}]}`)
	})

	tr, err := client.Translate(context.Background(), "show disk usage", nil)
	require.NoError(t, err)
	assert.True(t, tr.Actionable)
	assert.Equal(t, "df -h", tr.Single().Command)
}

func TestClient_Translate_HistoryForwarded(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 4) // system + 2 history + utterance
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "assistant", req.Messages[2].Role)
		fmt.Fprint(w, `{"choices": [{"message": {"content": "{\"command\": \"ls\"}"}}]}`)
	})

	history := []Message{
		{Role: "user", Content: "list files"},
		{Role: "assistant", Content: "ran ls"},
	}
	_, err := client.Translate(context.Background(), "again", history)
	require.NoError(t, err)
}

func TestClient_Translate_ServerError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.Translate(context.Background(), "anything", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTranslationFailure)
	assert.Contains(t, err.Error(), "429")
}

func TestClient_Translate_Unreachable(t *testing.T) {
	t.Parallel()

	client := NewClient("http://127.0.0.1:1", "", "m", time.Second)
	_, err := client.Translate(context.Background(), "anything", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTranslationFailure)
}

func TestClient_TranslateStream(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, testutil.SampleSSEBody(`{"command": `, `"uptime"}`))
	})

	ts, err := client.TranslateStream(context.Background(), "uptime please", nil)
	require.NoError(t, err)

	text, err := stream.NewConsumer(ts).Consume(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, `{"command": "uptime"}`, text)

	tr, err := ParseTranslation(text)
	require.NoError(t, err)
	assert.Equal(t, "uptime", tr.Single().Command)
}

func TestClient_TranslateStream_SkipsMalformedChunks(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprint(w, `data: {"choices": [{"delta": {"content": "ok"}}]}`+"\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	ts, err := client.TranslateStream(context.Background(), "x", nil)
	require.NoError(t, err)

	text, err := stream.NewConsumer(ts).Consume(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestClient_AnalyzeOutput(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Messages[1].Content, "exit status 2")
		fmt.Fprint(w, `{"choices": [{"message": {"content": "the directory does not exist"}}]}`)
	})

	analysis, err := client.AnalyzeOutput(context.Background(), "ls /nope", "", "exit status 2")
	require.NoError(t, err)
	assert.Equal(t, "the directory does not exist", analysis)
}

func TestClient_SystemContextInPrompt(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Messages[0].Content, "debian 12")
		fmt.Fprint(w, `{"choices": [{"message": {"content": "{\"command\": \"ls\"}"}}]}`)
	}, WithSystemContext("os: debian 12"))

	_, err := client.Translate(context.Background(), "x", nil)
	require.NoError(t, err)
}
