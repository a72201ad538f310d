package clitest

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes ANSI escape sequences from s.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// CollapseWhitespace folds all runs of whitespace into single spaces and
// trims the ends. Useful for assertions that should not depend on wrapping
// or indentation.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Normalize rewrites raw command output into a stable form for assertions
// and snapshots: ANSI sequences are stripped, CRLF pairs become LF, bare
// carriage returns are dropped, and sandbox-specific paths are replaced
// with the placeholders {HOME} and {SANDBOX}.
func (e *Environment) Normalize(s string) string {
	s = StripANSI(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "")
	// Home is nested under the root, so it must be substituted first.
	s = strings.ReplaceAll(s, e.HomeDir(), "{HOME}")
	s = strings.ReplaceAll(s, e.root, "{SANDBOX}")
	return s
}
