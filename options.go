package clitest

import (
	"log/slog"
	"time"
)

type envConfig struct {
	timeout      time.Duration
	pollInterval time.Duration
	logger       *slog.Logger
	keep         bool
	env          []string
}

// EnvOption configures an Environment created by NewEnvironment.
type EnvOption func(*envConfig)

// WithDefaultTimeout sets the default deadline for Expect, WaitForExit, and
// Run. The package default is DefaultTimeout.
func WithDefaultTimeout(d time.Duration) EnvOption {
	return func(c *envConfig) {
		c.timeout = d
	}
}

// WithPollInterval sets how often Expect re-checks the output buffers.
func WithPollInterval(d time.Duration) EnvOption {
	return func(c *envConfig) {
		c.pollInterval = d
	}
}

// WithLogger injects a logger for harness diagnostics. By default all
// logging is discarded.
func WithLogger(logger *slog.Logger) EnvOption {
	return func(c *envConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEnv appends environment variables (KEY=VALUE) passed to every child
// process spawned in this Environment.
func WithEnv(env ...string) EnvOption {
	return func(c *envConfig) {
		c.env = append(c.env, env...)
	}
}

// WithKeepSandbox leaves the sandbox directory in place after teardown, for
// debugging. The CLITEST_KEEP=1 environment variable has the same effect.
func WithKeepSandbox() EnvOption {
	return func(c *envConfig) {
		c.keep = true
	}
}
