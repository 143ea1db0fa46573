package sendmail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// DefaultShell is the shell ShellRunner uses when none is set.
const DefaultShell = "/bin/sh"

// DefaultWaitDelay is how long a runner waits, once the MTA has exited or
// been killed, for its children to release standard error.
const DefaultWaitDelay = 5 * time.Second

// maxStderr is how much of the MTA's standard error is kept for ExitError.
const maxStderr = 4096

// Runner runs a Command with body as its standard input and waits for it to
// finish. Sendmail calls exactly one Run per delivery.
type Runner interface {
	Run(ctx context.Context, c *Command, body io.Reader) error
}

// RunnerFunc adapts an ordinary function to the Runner interface.
type RunnerFunc func(ctx context.Context, c *Command, body io.Reader) error

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, c *Command, body io.Reader) error {
	return f(ctx, c, body)
}

// ExecRunner runs the MTA binary directly, passing Command.Args() as the
// argument vector. No shell is involved, so no word of the command is ever
// reinterpreted.
//
// If the context ends before the process exits, the process is killed and
// the returned *ExitError unwraps to the context error.
type ExecRunner struct {
	// WaitDelay bounds how long Run waits for the standard error pipe to
	// close after the process is gone. Children of the MTA that inherited the
	// pipe would otherwise hold Run open until they exit. DefaultWaitDelay is
	// used when it is zero.
	WaitDelay time.Duration
}

// Run starts the process, copies body to its standard input, closes it, and
// waits for the process to exit. It returns a *SpawnError if the process
// cannot be started, a *WriteError if the body cannot be fully written, and an
// *ExitError if the process exits non-zero. When the write fails and the exit
// status is also non-zero, both are returned, joined.
func (r *ExecRunner) Run(ctx context.Context, c *Command, body io.Reader) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args()...)
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	stderr := &tailBuffer{max: maxStderr}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &SpawnError{Path: c.Path, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return &SpawnError{Path: c.Path, Err: err}
	}

	// a child of the MTA may keep the pipe open without reading it
	stop := context.AfterFunc(ctx, func() { _ = stdin.Close() })
	defer stop()

	var writeErr error
	if _, err := io.Copy(stdin, body); err != nil {
		writeErr = &WriteError{Err: err}
	}

	// the MTA only sees the end of the message once stdin is closed
	if err := stdin.Close(); err != nil && writeErr == nil {
		writeErr = &WriteError{Err: err}
	}

	exitErr := waitError(ctx, cmd.Wait(), stderr.String())

	switch {
	case writeErr != nil && exitErr != nil:
		return errors.Join(writeErr, exitErr)
	case writeErr != nil:
		return writeErr
	default:
		return exitErr
	}
}

// waitError turns the result of exec.Cmd.Wait into the error Run returns.
func waitError(ctx context.Context, err error, stderr string) error {
	// the MTA exited cleanly, only a child still held standard error
	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		return nil
	}

	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return fmt.Errorf("sendmail: waiting for process: %w", err)
	}

	exitErr := &ExitError{
		Code:   ee.ExitCode(),
		Stderr: strings.TrimSpace(stderr),
		Err:    err,
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		exitErr.Err = ctxErr
	}

	return exitErr
}

// ShellRunner runs the command line from Command.ShellLine() through a shell
// with "-c". The shell execs the MTA, so cancellation kills the MTA itself.
// Use it only when the configured arguments string depends on shell
// processing. A binary that cannot be found is reported by the shell, so it
// surfaces as an *ExitError with status 127 rather than a *SpawnError.
type ShellRunner struct {
	// Shell is the shell binary. DefaultShell is used when it is empty.
	Shell string

	// WaitDelay works as it does for ExecRunner.
	WaitDelay time.Duration
}

// Run runs the shell command line, with the same error handling as
// ExecRunner.
func (r *ShellRunner) Run(ctx context.Context, c *Command, body io.Reader) error {
	sh := r.Shell
	if sh == "" {
		sh = DefaultShell
	}

	shc := &Command{
		Path:  sh,
		Extra: []string{"-c", "exec " + c.ShellLine()},
	}

	return (&ExecRunner{WaitDelay: r.WaitDelay}).Run(ctx, shc, body)
}

// tailBuffer is an io.Writer that keeps only the last max bytes written to
// it. os/exec writes to it from its own goroutine.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

// Write appends p, discarding the oldest bytes beyond max.
func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

// String returns the retained bytes.
func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return string(t.buf)
}
