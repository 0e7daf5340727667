package testutil

import (
	"fmt"
	"strings"
)

// SampleConfigYAML is a complete config file touching every section.
const SampleConfigYAML = `api:
  provider: openai
  base_url: https://api.openai.com/v1
  api_key: test-key
  model: gpt-4o-mini
  timeout_seconds: 60
security:
  confirm_dangerous_commands: true
  blocked_commands:
    - "rm -rf /"
    - "mkfs /dev/sda"
  confirm_patterns:
    - pattern: 'rm\s+-[a-zA-Z]*r'
      description: recursive deletion
  continue_on_error: false
  on_declined: skip
exec:
  timeout_seconds: 30
  grace_seconds: 5
  shell: /bin/sh
ui:
  history_file: history.yaml
  max_history: 100
logging:
  level: warn
`

// SampleSingleCommandJSON is a model response proposing one command.
const SampleSingleCommandJSON = `{
  "command": "df -h",
  "explanation": "shows disk usage per filesystem",
  "dangerous": false
}`

// SampleCompoundJSON is a model response proposing an ordered sequence.
const SampleCompoundJSON = `{
  "commands": [
    {"command": "apt-get update", "explanation": "refresh package index"},
    {"command": "apt-get -y upgrade", "explanation": "apply upgrades"}
  ],
  "explanation": "update the system in two steps"
}`

// SampleRefusalJSON is a model response with nothing to execute.
const SampleRefusalJSON = `{
  "command": "",
  "explanation": "that request does not map to a shell command"
}`

// SampleSSEBody renders fragments as the server-sent-events body an
// OpenAI-compatible streaming endpoint produces, ending with [DONE].
func SampleSSEBody(fragments ...string) string {
	var b strings.Builder
	for _, f := range fragments {
		fmt.Fprintf(&b, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", f)
	}
	b.WriteString("data: [DONE]\n\n")
	return b.String()
}
