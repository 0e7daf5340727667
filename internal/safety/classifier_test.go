package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(DefaultBlockedCommands(), DefaultConfirmRules())
	require.NoError(t, err)
	return c
}

func TestClassify_Blocked(t *testing.T) {
	t.Parallel()

	c := newDefaultClassifier(t)

	tests := []struct {
		name    string
		command string
	}{
		{"exact match", "rm -rf /"},
		{"embedded in longer command", "cd /tmp && rm -rf /"},
		{"surrounding whitespace", "   rm -rf /   "},
		{"collapsed internal whitespace", "rm   -rf   /"},
		{"fork bomb", ":(){ :|:& };:"},
		{"raw device wipe", "dd if=/dev/zero of=/dev/sda bs=1M"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := c.Classify(tt.command)
			assert.Equal(t, Blocked, v.Decision)
			assert.NotEmpty(t, v.Reason)
			assert.NotEmpty(t, v.Rule)
		})
	}
}

func TestClassify_NeedsConfirmation(t *testing.T) {
	t.Parallel()

	c := newDefaultClassifier(t)

	tests := []struct {
		name    string
		command string
	}{
		{"recursive delete of a subdirectory", "rm -rf /var/log/old"},
		{"dd onto a block device", "dd if=backup.img of=/dev/sdb"},
		{"mkfs", "mkfs.ext4 /dev/sdb1"},
		{"redirect into etc", "echo nameserver 1.1.1.1 > /etc/resolv.conf"},
		{"chained deletion", "find /tmp -name '*.log'; rm old.log"},
		{"reboot", "sudo reboot"},
		{"kill init", "kill -9 1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := c.Classify(tt.command)
			assert.Equal(t, NeedsConfirmation, v.Decision, "command: %s", tt.command)
			assert.NotEmpty(t, v.Reason)
		})
	}
}

func TestClassify_Allowed(t *testing.T) {
	t.Parallel()

	c := newDefaultClassifier(t)

	for _, command := range []string{
		"ls -la /tmp",
		"df -h",
		"systemctl status nginx",
		"grep -r TODO ./src",
		"rm notes.txt", // plain rm without -r/-f is not guarded
	} {
		v := c.Classify(command)
		assert.Equal(t, Allowed, v.Decision, "command: %s", command)
		assert.Empty(t, v.Reason)
	}
}

func TestClassify_EmptyCommand(t *testing.T) {
	t.Parallel()

	c := newDefaultClassifier(t)

	assert.Equal(t, Allowed, c.Classify("").Decision)
	assert.Equal(t, Allowed, c.Classify("   ").Decision)
	assert.Equal(t, Allowed, c.Classify("\t\n").Decision)
}

func TestClassify_BlockedBeforeConfirmation(t *testing.T) {
	t.Parallel()

	// "rm -rf /" matches both the block list and the recursive-delete
	// confirmation pattern; the block list wins.
	c := newDefaultClassifier(t)
	v := c.Classify("rm -rf /")
	assert.Equal(t, Blocked, v.Decision)
}

func TestClassify_FirstMatchByListOrder(t *testing.T) {
	t.Parallel()

	// Two block entries match; the verdict reports the first by list order.
	c, err := NewClassifier([]string{"systemctl stop", "stop sshd"}, nil)
	require.NoError(t, err)

	v := c.Classify("systemctl stop sshd")
	assert.Equal(t, Blocked, v.Decision)
	assert.Equal(t, "systemctl stop", v.Rule)

	// Reversing the list reverses the reported rule.
	c, err = NewClassifier([]string{"stop sshd", "systemctl stop"}, nil)
	require.NoError(t, err)

	v = c.Classify("systemctl stop sshd")
	assert.Equal(t, "stop sshd", v.Rule)
}

func TestClassify_ConfirmationFirstMatchWins(t *testing.T) {
	t.Parallel()

	c, err := NewClassifier(nil, []ConfirmRule{
		{Pattern: `rm\s+-rf`, Description: "first"},
		{Pattern: `rm`, Description: "second"},
	})
	require.NoError(t, err)

	v := c.Classify("rm -rf build/")
	assert.Equal(t, NeedsConfirmation, v.Decision)
	assert.Equal(t, "first", v.Reason)
}

func TestClassify_Deterministic(t *testing.T) {
	t.Parallel()

	c := newDefaultClassifier(t)
	for _, command := range []string{"", "ls", "rm -rf /opt/data", "rm -rf /"} {
		first := c.Classify(command)
		second := c.Classify(command)
		assert.Equal(t, first, second)
	}
}

func TestNewClassifier_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewClassifier(nil, []ConfirmRule{{Pattern: `([`, Description: "broken"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid confirmation pattern")
}
