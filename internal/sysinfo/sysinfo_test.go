package sysinfo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	t.Parallel()

	s, err := Collect(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, s.Hostname)
	assert.NotZero(t, s.MemoryTotal)
}

func TestPromptContext(t *testing.T) {
	t.Parallel()

	s := &Snapshot{
		Hostname:      "web01",
		OS:            "linux",
		Platform:      "debian 12.5",
		KernelVersion: "6.1.0-18-amd64",
		KernelArch:    "x86_64",
		Uptime:        49*time.Hour + 30*time.Minute,
		MemoryTotal:   16 * 1024 * 1024 * 1024,
		MemoryUsed:    42.3,
		DiskTotal:     512 * 1024 * 1024 * 1024,
		DiskUsed:      91.7,
	}

	got := s.PromptContext()
	assert.Contains(t, got, "hostname: web01")
	assert.Contains(t, got, "os: debian 12.5")
	assert.Contains(t, got, "kernel: 6.1.0-18-amd64 x86_64")
	assert.Contains(t, got, "uptime: 2d 1h")
	assert.Contains(t, got, "memory: 16.0 GiB total, 42% used")
	assert.Contains(t, got, "disk /: 512.0 GiB total, 92% used")
}

func TestPromptContext_SkipsEmptyFields(t *testing.T) {
	t.Parallel()

	s := &Snapshot{Hostname: "bare"}
	got := s.PromptContext()
	assert.Equal(t, "hostname: bare", got)
}

func TestFormatUptime(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "12m", formatUptime(12*time.Minute))
	assert.Equal(t, "3h 5m", formatUptime(3*time.Hour+5*time.Minute))
	assert.Equal(t, "10d 0h", formatUptime(240*time.Hour))
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KiB", formatBytes(1024))
	assert.Equal(t, "1.5 MiB", formatBytes(3*1024*1024/2))
	assert.Equal(t, "8.0 GiB", formatBytes(8*1024*1024*1024))
}
