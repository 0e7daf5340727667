// Package testutil provides shared test helpers for shellguard.
//
// # Fixtures
//
// The fixtures.go file provides sample data for testing:
//
//   - SampleConfigYAML - a complete config file
//   - SampleSingleCommandJSON, SampleCompoundJSON - model responses
//   - SampleRefusalJSON - a non-actionable model response
//   - SampleSSEBody(fragments) - a server-sent-events response body
//
// # File Helpers
//
// The files.go file provides test filesystem setup:
//
//   - WriteTestFile(t, base, path, content) - writes a file in a test dir
//   - SetupConfigDir(t) - creates a config directory with SampleConfigYAML
//
// # Timeout Helpers
//
// The timeout.go file provides deadline-aware contexts:
//
//   - ContextWithTestDeadline(t, fallback) - respects the test deadline
//   - ContextWithTimeout(t, timeout) - plain timeout with logging
package testutil
