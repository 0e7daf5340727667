package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkarlsen/shellguard/internal/testutil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultProvider, cfg.API.Provider)
	assert.Equal(t, DefaultExecTimeoutSecs, cfg.Exec.TimeoutSeconds)
	assert.True(t, cfg.Security.ConfirmDangerousCommands)
	assert.Equal(t, OnDeclinedSkip, cfg.Security.OnDeclined)
	assert.NotEmpty(t, cfg.Security.BlockedCommands)
	assert.NotEmpty(t, cfg.Security.ConfirmPatterns)
	assert.NotEmpty(t, cfg.Security.InteractivePrograms)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `exec:
  timeout_seconds: 120
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.Exec.TimeoutSeconds)
	assert.Equal(t, DefaultGraceSecs, cfg.Exec.GraceSeconds)
	assert.Equal(t, DefaultModel, cfg.API.Model)
}

func TestLoad_FullFile(t *testing.T) {
	t.Parallel()

	_, path := testutil.SetupConfigDir(t)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.API.APIKey)
	assert.Equal(t, []string{"rm -rf /", "mkfs /dev/sda"}, cfg.Security.BlockedCommands)
	require.Len(t, cfg.Security.ConfirmPatterns, 1)
	assert.Equal(t, "recursive deletion", cfg.Security.ConfirmPatterns[0].Description)
	assert.Equal(t, "/bin/sh", cfg.Exec.Shell)
	assert.Equal(t, 100, cfg.UI.MaxHistory)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_SecurityOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `security:
  confirm_dangerous_commands: false
  blocked_commands:
    - "drop database"
  confirm_patterns:
    - pattern: "systemctl stop"
      description: "stopping a service"
  on_declined: abort
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Security.ConfirmDangerousCommands)
	assert.Equal(t, []string{"drop database"}, cfg.Security.BlockedCommands)
	require.Len(t, cfg.Security.ConfirmPatterns, 1)
	assert.Equal(t, "stopping a service", cfg.Security.ConfirmPatterns[0].Description)
	assert.Equal(t, OnDeclinedAbort, cfg.Security.OnDeclined)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "exec: [not a map")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero exec timeout", func(c *Config) { c.Exec.TimeoutSeconds = 0 }, "exec.timeout_seconds"},
		{"negative grace", func(c *Config) { c.Exec.GraceSeconds = -1 }, "exec.grace_seconds"},
		{"empty shell", func(c *Config) { c.Exec.Shell = "" }, "exec.shell"},
		{"zero api timeout", func(c *Config) { c.API.TimeoutSeconds = 0 }, "api.timeout_seconds"},
		{"bad on_declined", func(c *Config) { c.Security.OnDeclined = "ignore" }, "security.on_declined"},
		{"zero max history", func(c *Config) { c.UI.MaxHistory = 0 }, "ui.max_history"},
		{
			"broken confirm pattern",
			func(c *Config) {
				c.Security.ConfirmPatterns = []ConfirmPattern{{Pattern: "(["}}
			},
			"security.confirm_patterns",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := Validate(&cfg)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x.yaml"), ExpandPath("~/x.yaml"))
	assert.Equal(t, "/etc/x.yaml", ExpandPath("/etc/x.yaml"))
	assert.Equal(t, "x.yaml", ExpandPath("x.yaml"))
}
