package clitest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Status is the lifecycle state of a spawned process.
type Status int

const (
	// StatusRunning is the only initial state.
	StatusRunning Status = iota
	// StatusExited means the process terminated on its own.
	StatusExited
	// StatusKilled means Kill tore the process down before it exited.
	StatusKilled
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusExited:
		return "exited"
	case StatusKilled:
		return "killed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

const (
	// DefaultTimeout bounds Expect and WaitForExit unless overridden per
	// call or per Environment.
	DefaultTimeout = 5 * time.Second

	defaultPollInterval = 10 * time.Millisecond
	drainChunkSize      = 4096
)

// Process controls one spawned interactive child. Its stdout and stderr are
// drained continuously by background goroutines so the child can never
// block on a full pipe, regardless of whether the test is currently
// reading. All methods are safe for concurrent use.
//
// Create a Process with [Environment.Spawn].
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *outputBuffer
	stderr *outputBuffer

	stdoutPipe *os.File
	stderrPipe *os.File
	closeOnce  sync.Once

	logger       *slog.Logger
	timeout      time.Duration
	pollInterval time.Duration

	// drained is released once both drain goroutines have read their
	// stream to end-of-data. The exit watcher waits on it before
	// publishing the terminal state, so no bytes written right at exit
	// time are lost.
	drained sync.WaitGroup

	// done closes exactly once, when the terminal status has been
	// recorded. The exit watcher and Kill race for finalOnce; whichever
	// wins determines the terminal state.
	done      chan struct{}
	finalOnce sync.Once

	mu       sync.Mutex
	status   Status
	exitCode int
}

// startProcess starts cmd with all three standard streams redirected to
// pipes and kicks off the background drain and exit watcher goroutines.
func startProcess(cmd *exec.Cmd, logger *slog.Logger, timeout, pollInterval time.Duration) (*Process, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %w", ErrSpawn, err)
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("%w: stdout pipe: %w", ErrSpawn, err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdin.Close()
		stdoutR.Close()
		stdoutW.Close()
		return nil, fmt.Errorf("%w: stderr pipe: %w", ErrSpawn, err)
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		stdoutR.Close()
		stdoutW.Close()
		stderrR.Close()
		stderrW.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, cmd.Path, err)
	}

	// The child holds its own copies of the write ends; dropping ours
	// means the drain goroutines observe end-of-data when the child exits.
	stdoutW.Close()
	stderrW.Close()

	p := &Process{
		cmd:          cmd,
		stdin:        stdin,
		stdout:       &outputBuffer{},
		stderr:       &outputBuffer{},
		stdoutPipe:   stdoutR,
		stderrPipe:   stderrR,
		logger:       logger.With("pid", cmd.Process.Pid),
		timeout:      timeout,
		pollInterval: pollInterval,
		done:         make(chan struct{}),
		status:       StatusRunning,
		exitCode:     -1,
	}

	p.drained.Add(2)
	go p.drainLoop(stdoutR, p.stdout, "stdout")
	go p.drainLoop(stderrR, p.stderr, "stderr")
	go p.watchExit()

	return p, nil
}

// drainLoop continuously reads one output stream into its buffer. It stops
// on end-of-data or a read fault; a fault is logged and terminates only
// this drain, never the Process.
func (p *Process) drainLoop(r io.Reader, buf *outputBuffer, stream string) {
	defer p.drained.Done()
	chunk := make([]byte, drainChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.append(chunk[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				p.logger.Debug("stream read fault", "stream", stream, "error", err)
			}
			return
		}
	}
}

// watchExit blocks until the child terminates, collects the output tail,
// and records the terminal state exactly once.
func (p *Process) watchExit() {
	err := p.cmd.Wait()

	// Both drains reach end-of-data once the child's pipe ends are gone.
	// Waiting for them here guarantees the buffers hold everything the
	// child ever wrote before the terminal state becomes observable.
	p.drained.Wait()

	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			// Wait itself faulted (e.g. the process was reaped
			// externally). Publish a best-effort status anyway so a
			// caller blocked in WaitForExit always unblocks.
			p.logger.Debug("wait fault", "error", err)
			code = -1
		}
	}
	p.finalize(StatusExited, code)
	p.closePipes()
}

// finalize records the terminal state. First writer wins; redundant calls
// are no-ops.
func (p *Process) finalize(status Status, code int) {
	p.finalOnce.Do(func() {
		p.mu.Lock()
		p.status = status
		p.exitCode = code
		p.mu.Unlock()
		p.logger.Debug("process finished", "status", status, "exitCode", code)
		close(p.done)
	})
}

func (p *Process) closePipes() {
	p.closeOnce.Do(func() {
		_ = p.stdin.Close()
		_ = p.stdoutPipe.Close()
		_ = p.stderrPipe.Close()
	})
}

// SendInput writes text to the child's stdin exactly as given.
func (p *Process) SendInput(text string) error {
	if st := p.GetStatus(); st != StatusRunning {
		return fmt.Errorf("send input: %w (status %s)", ErrNotRunning, st)
	}
	if _, err := io.WriteString(p.stdin, text); err != nil {
		return fmt.Errorf("send input: %w", err)
	}
	return nil
}

// SendLine writes text followed by a newline to the child's stdin.
func (p *Process) SendLine(text string) error {
	return p.SendInput(text + "\n")
}

// PressKey writes the literal byte sequence for a named key (enter, tab,
// space). Unknown names fail with ErrUnknownKey.
func (p *Process) PressKey(name string) error {
	seq, ok := keySequence(name)
	if !ok {
		return fmt.Errorf("press key %q: %w", name, ErrUnknownKey)
	}
	return p.SendInput(seq)
}

// PressEnter writes a single line terminator.
func (p *Process) PressEnter() error {
	return p.PressKey("enter")
}

// CloseStdin closes the child's stdin, signalling end-of-input.
func (p *Process) CloseStdin() error {
	return p.stdin.Close()
}

// Expect blocks until text appears on stdout, the timeout elapses
// (ErrTimeout), or the process terminates without producing it
// (ErrProcessExited). The search starts where the previous successful
// Expect on stdout left off, so the same output is never matched twice.
// Returns the full stdout captured so far.
func (p *Process) Expect(text string, timeout ...time.Duration) (string, error) {
	return p.expect(p.stdout, "stdout", text, timeout)
}

// ExpectStderr is Expect against the stderr stream.
func (p *Process) ExpectStderr(text string, timeout ...time.Duration) (string, error) {
	return p.expect(p.stderr, "stderr", text, timeout)
}

func (p *Process) expect(buf *outputBuffer, stream, text string, timeout []time.Duration) (string, error) {
	d := p.waitTimeout(timeout)
	deadline := time.Now().Add(d)
	for {
		if time.Now().After(deadline) {
			return buf.snapshot(), fmt.Errorf("expect %q on %s: %w after %v", text, stream, ErrTimeout, d)
		}
		if buf.consume(text) {
			return buf.snapshot(), nil
		}
		select {
		case <-p.done:
			// On natural exit the watcher flushes the drains before
			// closing done, so a single final scan sees everything the
			// child ever wrote.
			if buf.consume(text) {
				return buf.snapshot(), nil
			}
			return buf.snapshot(), fmt.Errorf("expect %q on %s: %w (status %s, exit code %d)",
				text, stream, ErrProcessExited, p.GetStatus(), p.ExitCode())
		case <-time.After(p.pollInterval):
		}
	}
}

// WaitForExit blocks until the process reaches a terminal state and returns
// its exit code. If it is already terminal the recorded code is returned
// immediately. On timeout the process is force-killed before ErrTimeout is
// returned; a runaway child must not outlive the test that gave up on it.
func (p *Process) WaitForExit(timeout ...time.Duration) (int, error) {
	d := p.waitTimeout(timeout)
	select {
	case <-p.done:
		return p.ExitCode(), nil
	case <-time.After(d):
		p.Kill()
		return -1, fmt.Errorf("wait for exit: %w after %v", ErrTimeout, d)
	}
}

// Kill forcefully terminates the process. It is idempotent: calling it on
// an already-exited or already-killed process is a no-op. Signal delivery
// faults are swallowed, since the desired end state (process not running)
// already holds.
func (p *Process) Kill() {
	p.mu.Lock()
	running := p.status == StatusRunning
	p.mu.Unlock()
	if !running {
		return
	}
	p.logger.Debug("killing process")
	_ = p.cmd.Process.Kill()
	p.closePipes()
	p.finalize(StatusKilled, -1)
}

// Stdout returns the full stdout captured so far, non-destructively.
func (p *Process) Stdout() string {
	return p.stdout.snapshot()
}

// Stderr returns the full stderr captured so far, non-destructively.
func (p *Process) Stderr() string {
	return p.stderr.snapshot()
}

// StdoutLen returns the current length of the captured stdout.
func (p *Process) StdoutLen() int {
	return p.stdout.length()
}

// GetStatus returns the current lifecycle state.
func (p *Process) GetStatus() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// ExitCode returns the recorded exit code, or -1 while the process is still
// running or after it was killed.
func (p *Process) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}

// PID returns the OS process id of the child.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Done returns a channel that closes once the process reaches a terminal
// state. After a natural exit the output buffers are complete at that
// point; after Kill the pipes were torn down without a final flush.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

func (p *Process) waitTimeout(timeout []time.Duration) time.Duration {
	if len(timeout) > 0 && timeout[0] > 0 {
		return timeout[0]
	}
	return p.timeout
}
