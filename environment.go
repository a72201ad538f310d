package clitest

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Environment is an isolated filesystem sandbox plus a factory and registry
// for the processes a test runs. Every Process spawned through an
// Environment is force-killed when the Environment closes, before the
// sandbox directory is removed, so no child outlives its test.
//
// Children see HOME, the XDG base directories, and TMPDIR pointing inside
// the sandbox; the host environment is not inherited beyond PATH.
type Environment struct {
	t      testing.TB
	root   string
	logger *slog.Logger

	timeout      time.Duration
	pollInterval time.Duration
	keep         bool
	baseEnv      []string

	mu     sync.Mutex
	procs  []*Process
	closed bool
}

// SpawnOptions adjusts a single Spawn or Run call.
type SpawnOptions struct {
	// Dir is the working directory; defaults to the sandbox work dir.
	Dir string
	// Env appends KEY=VALUE entries to the sandbox environment.
	Env []string
}

// NewEnvironment creates a sandbox rooted at a fresh temp directory and
// registers teardown via t.Cleanup.
func NewEnvironment(t testing.TB, opts ...EnvOption) *Environment {
	t.Helper()

	cfg := envConfig{
		timeout:      DefaultTimeout,
		pollInterval: defaultPollInterval,
		logger:       slog.New(slog.DiscardHandler),
		keep:         os.Getenv("CLITEST_KEEP") == "1",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	root := filepath.Join(os.TempDir(), "clitest-"+uuid.NewString())
	for _, dir := range []string{
		filepath.Join(root, "home", ".config"),
		filepath.Join(root, "home", ".cache"),
		filepath.Join(root, "home", ".local", "share"),
		filepath.Join(root, "home", ".local", "state"),
		filepath.Join(root, "work"),
		filepath.Join(root, "tmp"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("clitest: failed to create sandbox directory: %v", err)
		}
	}

	e := &Environment{
		t:            t,
		root:         root,
		logger:       cfg.logger.With("sandbox", root),
		timeout:      cfg.timeout,
		pollInterval: cfg.pollInterval,
		keep:         cfg.keep,
		baseEnv:      cfg.env,
	}
	t.Cleanup(func() {
		if err := e.Close(); err != nil {
			t.Errorf("clitest: environment teardown: %v", err)
		}
	})
	return e
}

// Root returns the sandbox root directory.
func (e *Environment) Root() string {
	return e.root
}

// HomeDir returns the sandbox home directory (the child's $HOME).
func (e *Environment) HomeDir() string {
	return filepath.Join(e.root, "home")
}

// WorkDir returns the default working directory for spawned processes.
func (e *Environment) WorkDir() string {
	return filepath.Join(e.root, "work")
}

// WriteFile writes a file at the given path relative to the work dir,
// creating parent directories as needed.
func (e *Environment) WriteFile(relPath string, content []byte) error {
	path := filepath.Join(e.WorkDir(), relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

// childEnv builds the full environment for a child process.
func (e *Environment) childEnv(extra []string) []string {
	home := e.HomeDir()
	env := []string{
		"HOME=" + home,
		"XDG_CONFIG_HOME=" + filepath.Join(home, ".config"),
		"XDG_CACHE_HOME=" + filepath.Join(home, ".cache"),
		"XDG_DATA_HOME=" + filepath.Join(home, ".local", "share"),
		"XDG_STATE_HOME=" + filepath.Join(home, ".local", "state"),
		"TMPDIR=" + filepath.Join(e.root, "tmp"),
		"PATH=" + os.Getenv("PATH"),
		"TERM=dumb",
	}
	env = append(env, e.baseEnv...)
	return append(env, extra...)
}

// Spawn starts an interactive process with its standard streams redirected
// to pipes and returns the controlling Process. The Environment retains the
// Process and kills it on teardown.
func (e *Environment) Spawn(name string, args ...string) (*Process, error) {
	return e.SpawnWith(SpawnOptions{}, name, args...)
}

// SpawnWith is Spawn with per-call options.
func (e *Environment) SpawnWith(opts SpawnOptions, name string, args ...string) (*Process, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: environment is closed", ErrSpawn)
	}
	e.mu.Unlock()

	cmd := exec.Command(name, args...)
	cmd.Dir = opts.Dir
	if cmd.Dir == "" {
		cmd.Dir = e.WorkDir()
	}
	cmd.Env = e.childEnv(opts.Env)

	e.logger.Debug("spawn", "command", QuoteCommand(append([]string{name}, args...)), "dir", cmd.Dir)

	p, err := startProcess(cmd, e.logger, e.timeout, e.pollInterval)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.procs = append(e.procs, p)
	e.mu.Unlock()
	return p, nil
}

// Close kills every process spawned through this Environment, waits for
// each to be reaped, and removes the sandbox directory (unless keep-sandbox
// is set). Safe to call more than once.
func (e *Environment) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	procs := e.procs
	e.mu.Unlock()

	var g errgroup.Group
	for _, p := range procs {
		g.Go(func() error {
			p.Kill()
			<-p.Done()
			return nil
		})
	}
	_ = g.Wait()

	if e.keep {
		e.logger.Info("keeping sandbox", "root", e.root)
		return nil
	}
	return os.RemoveAll(e.root)
}
