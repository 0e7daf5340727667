// Package history persists the session's handled utterances to a yaml
// file so past commands and their outcomes survive restarts.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Entry is one handled utterance. Command is empty when nothing was
// executed (translation failure, not actionable).
type Entry struct {
	Timestamp time.Time `yaml:"timestamp"`
	Utterance string    `yaml:"utterance"`
	Command   string    `yaml:"command,omitempty"`
	Outcome   string    `yaml:"outcome"`
}

// Store is an append-only history backed by a single yaml file. The
// file holds at most max entries; older entries are dropped first.
type Store struct {
	mu      sync.Mutex
	path    string
	max     int
	entries []Entry

	// now is replaceable in tests.
	now func() time.Time
}

// Open loads the history at path, creating an empty store if the file
// does not exist yet. max caps the number of retained entries; zero or
// negative means unlimited.
func Open(path string, max int) (*Store, error) {
	s := &Store{path: path, max: max, now: time.Now}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("parsing history %s: %w", path, err)
	}
	s.trim()
	return s, nil
}

// Record appends one entry and writes the file.
func (s *Store) Record(utterance, command, outcome string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, Entry{
		Timestamp: s.now().UTC(),
		Utterance: utterance,
		Command:   command,
		Outcome:   outcome,
	})
	s.trim()
	return s.write()
}

// Entries returns a copy of the retained history, oldest first.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Recent returns up to n of the newest entries, oldest first.
func (s *Store) Recent(n int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]Entry, n)
	copy(out, s.entries[len(s.entries)-n:])
	return out
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) trim() {
	if s.max > 0 && len(s.entries) > s.max {
		s.entries = s.entries[len(s.entries)-s.max:]
	}
}

func (s *Store) write() error {
	data, err := yaml.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating history directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing history %s: %w", s.path, err)
	}
	return nil
}
