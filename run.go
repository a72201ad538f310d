package clitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result is the outcome of a one-shot command run to completion.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Run executes a command to completion inside the sandbox and captures its
// exit code and output. A non-zero exit code is reported in the Result, not
// as an error; errors are reserved for failing to start (ErrSpawn) or
// exceeding the Environment's default timeout (ErrTimeout, after which the
// process has been killed).
func (e *Environment) Run(name string, args ...string) (*Result, error) {
	return e.RunWith(SpawnOptions{}, name, args...)
}

// RunWith is Run with per-call options.
func (e *Environment) RunWith(opts SpawnOptions, name string, args ...string) (*Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	if cmd.Dir == "" {
		cmd.Dir = e.WorkDir()
	}
	cmd.Env = e.childEnv(opts.Env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("run", "command", QuoteCommand(append([]string{name}, args...)), "dir", cmd.Dir)

	err := cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		if ctx.Err() != nil {
			return res, fmt.Errorf("run %s: %w after %v", name, ErrTimeout, e.timeout)
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, name, err)
}

// RunShell runs a script via /bin/sh -c. Use Quote or QuoteCommand when
// interpolating values into the script.
func (e *Environment) RunShell(script string) (*Result, error) {
	return e.Run("/bin/sh", "-c", script)
}
