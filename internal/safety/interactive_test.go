package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsInteractive(t *testing.T) {
	t.Parallel()

	d := NewDetector(DefaultInteractivePrograms())

	tests := []struct {
		name    string
		command string
		want    bool
	}{
		{"editor", "vim /etc/hosts", true},
		{"plain listing", "ls -la /tmp", false},
		{"pipeline into pager", "ps aux | less", true},
		{"sudo wrapper", "sudo vim /etc/fstab", true},
		{"sudo with user flag", "sudo -u postgres psql", true},
		{"env assignment prefix", "EDITOR=vim crontab -e", true},
		{"env wrapper", "env TERM=xterm htop", true},
		{"absolute path", "/usr/bin/vim notes.txt", true},
		{"remote shell", "ssh admin@web01", true},
		{"database shell", "mysql -u root app_db", true},
		{"tail follow", "tail -f /var/log/syslog", true},
		{"tail without follow", "tail -n 50 /var/log/syslog", false},
		{"batch pipeline", "cat access.log | grep 500 | wc -l", false},
		{"chained batch", "mkdir -p /tmp/x && cp a /tmp/x", false},
		{"interactive stage mid-chain", "make build && less build.log", true},
		{"unknown program", "my-custom-tool --serve", false},
		{"empty", "", false},
		{"whitespace only", "   ", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, d.IsInteractive(tt.command), "command: %s", tt.command)
		})
	}
}

func TestIsInteractive_Deterministic(t *testing.T) {
	t.Parallel()

	d := NewDetector(DefaultInteractivePrograms())
	for _, command := range []string{"vim x", "ls", "ps aux | less"} {
		assert.Equal(t, d.IsInteractive(command), d.IsInteractive(command))
	}
}

func TestIsInteractive_CustomRegistry(t *testing.T) {
	t.Parallel()

	d := NewDetector([]string{"myrepl"})
	assert.True(t, d.IsInteractive("myrepl --local"))
	assert.False(t, d.IsInteractive("vim /etc/hosts"))
}
