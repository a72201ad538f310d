package clitest

import "strings"

// keySequence maps a key name to the literal bytes written to the child's
// stdin. There is no PTY involved, so only keys with a plain byte
// representation are supported; escape-sequence keys (arrows, function
// keys) are meaningless on a pipe.
func keySequence(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "enter", "return":
		return "\n", true
	case "tab":
		return "\t", true
	case "space":
		return " ", true
	}
	return "", false
}
