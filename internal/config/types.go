package config

// APIConfig describes the model collaborator endpoint.
type APIConfig struct {
	Provider       string `yaml:"provider"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ConfirmPattern is a configured confirmation rule: a regular expression
// over command text plus the reason shown to the operator when it matches.
type ConfirmPattern struct {
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description"`
}

// SecurityConfig holds the safety rule sets. The lists are ordered;
// match order is observable behavior.
type SecurityConfig struct {
	ConfirmDangerousCommands bool             `yaml:"confirm_dangerous_commands"`
	BlockedCommands          []string         `yaml:"blocked_commands"`
	ConfirmPatterns          []ConfirmPattern `yaml:"confirm_patterns"`
	InteractivePrograms      []string         `yaml:"interactive_programs"`

	// ContinueOnError keeps a plan running past a failed step instead of
	// skipping the remainder.
	ContinueOnError bool `yaml:"continue_on_error"`

	// OnDeclined controls what a declined confirmation does to the rest
	// of a plan: "skip" (default) or "abort".
	OnDeclined string `yaml:"on_declined"`
}

// ExecConfig bounds batch command execution.
type ExecConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	GraceSeconds   int    `yaml:"grace_seconds"`
	Shell          string `yaml:"shell"`
}

// UIConfig holds history persistence settings.
type UIConfig struct {
	HistoryFile string `yaml:"history_file"`
	MaxHistory  int    `yaml:"max_history"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Config represents the shellguard config file.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Security SecurityConfig `yaml:"security"`
	Exec     ExecConfig     `yaml:"exec"`
	UI       UIConfig       `yaml:"ui"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// OnDeclined policy values.
const (
	OnDeclinedSkip  = "skip"
	OnDeclinedAbort = "abort"
)
