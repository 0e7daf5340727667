package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTestFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := WriteTestFile(t, dir, "nested/dir/file.txt", "hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestSetupConfigDir(t *testing.T) {
	t.Parallel()

	dir, configPath := SetupConfigDir(t)
	assert.DirExists(t, dir)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "blocked_commands")
}

func TestSampleSSEBody(t *testing.T) {
	t.Parallel()

	body := SampleSSEBody("{\"comm", "and\": \"uptime\"}")
	assert.Contains(t, body, `data: {"choices":[{"delta":{"content":"{\"comm"}}]}`)
	assert.Contains(t, body, "data: [DONE]")
}

func TestContextWithTestDeadline(t *testing.T) {
	t.Parallel()

	ctx, cancel := ContextWithTestDeadline(t, time.Minute)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.True(t, deadline.After(time.Now()))
}
