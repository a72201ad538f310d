package clitest

import "errors"

// Sentinel errors returned by the harness. Errors are wrapped with context;
// match them with errors.Is.
var (
	// ErrSpawn indicates a child process could not be started at all.
	ErrSpawn = errors.New("clitest: failed to spawn process")

	// ErrNotRunning is returned when input is sent to a process that has
	// already reached a terminal state. This is a bug in the test itself.
	ErrNotRunning = errors.New("clitest: process is not running")

	// ErrUnknownKey is returned by PressKey for unsupported key names.
	ErrUnknownKey = errors.New("clitest: unknown key")

	// ErrTimeout is returned when an Expect or WaitForExit deadline elapses.
	ErrTimeout = errors.New("clitest: timeout")

	// ErrProcessExited is returned by Expect when the process terminated
	// before the expected text appeared. Distinct from ErrTimeout so a test
	// can tell "too slow" from "crashed or printed the wrong thing".
	ErrProcessExited = errors.New("clitest: process exited before expected output")
)
