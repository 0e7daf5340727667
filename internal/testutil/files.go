package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteTestFile writes content to path relative to base, creating
// parent directories as needed, and returns the absolute path.
func WriteTestFile(t *testing.T, base, path, content string) string {
	t.Helper()

	full := filepath.Join(base, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

// SetupConfigDir creates a temp directory holding SampleConfigYAML as
// config.yaml and returns the directory and the config file path. The
// directory is removed when the test completes.
func SetupConfigDir(t *testing.T) (dir, configPath string) {
	t.Helper()

	dir = t.TempDir()
	configPath = WriteTestFile(t, dir, "config.yaml", SampleConfigYAML)
	return dir, configPath
}
