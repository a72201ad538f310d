package clitest

import "al.essio.dev/pkg/shellescape"

// Quote returns s quoted for safe interpolation into a POSIX shell command
// line (see RunShell).
func Quote(s string) string {
	return shellescape.Quote(s)
}

// QuoteCommand quotes each argument and joins them into a single shell
// command line.
func QuoteCommand(args []string) string {
	return shellescape.QuoteCommand(args)
}
