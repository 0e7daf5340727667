package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawTranslation mirrors the JSON shapes the model is prompted to emit:
// either a single object with "command", or an object with a "commands"
// array for compound tasks.
type rawTranslation struct {
	Command     string           `json:"command"`
	Commands    []PlannedCommand `json:"commands"`
	Explanation string           `json:"explanation"`
	Dangerous   bool             `json:"dangerous"`
	Reason      string           `json:"reason_if_dangerous"`
}

// ParseTranslation parses model output into a Translation. Markdown code
// fences around the JSON are tolerated. An empty command and an empty
// commands array both mean "no actionable command", which is a valid
// translation, not an error.
func ParseTranslation(text string) (*Translation, error) {
	payload := stripFences(strings.TrimSpace(text))
	if payload == "" {
		return nil, fmt.Errorf("%w: empty model response", ErrTranslationFailure)
	}

	var raw rawTranslation
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("%w: unparsable model response: %v", ErrTranslationFailure, err)
	}

	if len(raw.Commands) > 0 {
		commands := make([]PlannedCommand, 0, len(raw.Commands))
		for _, c := range raw.Commands {
			if strings.TrimSpace(c.Command) == "" {
				continue
			}
			commands = append(commands, c)
		}
		if len(commands) == 0 {
			return &Translation{Explanation: raw.Explanation}, nil
		}
		return &Translation{
			Actionable:  true,
			Compound:    len(commands) > 1,
			Commands:    commands,
			Explanation: raw.Explanation,
		}, nil
	}

	if strings.TrimSpace(raw.Command) == "" {
		return &Translation{Explanation: raw.Explanation}, nil
	}

	return &Translation{
		Actionable: true,
		Commands: []PlannedCommand{{
			Command:     raw.Command,
			Explanation: raw.Explanation,
			Dangerous:   raw.Dangerous,
			Reason:      raw.Reason,
		}},
		Explanation: raw.Explanation,
	}, nil
}

// stripFences removes a surrounding markdown code fence, with or without
// a language tag.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "sh", ...).
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
