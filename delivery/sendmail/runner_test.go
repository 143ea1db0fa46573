package sendmail_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-sendmail/delivery"
	"github.com/zostay/go-sendmail/delivery/sendmail"
)

// fakeMTA is a shell script standing in for sendmail. It records its
// arguments and standard input in dir.
//
// Tests using it do not call t.Parallel(): a script still open for writing
// when another goroutine forks fails to exec with ETXTBSY.
type fakeMTA struct {
	dir  string
	path string
}

func newFakeMTA(t *testing.T, tail string) *fakeMTA {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake MTA needs a POSIX shell")
	}
	if _, err := os.Stat(sendmail.DefaultShell); err != nil {
		t.Skip("fake MTA needs " + sendmail.DefaultShell)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "sendmail")

	script := "#!/bin/sh\n" +
		"printf '%s\\000' \"$@\" > " + sendmail.Escape(filepath.Join(dir, "args")) + "\n" +
		tail + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o700))

	return &fakeMTA{dir: dir, path: path}
}

// recordingMTA reads the whole message and then exits with the given tail.
func recordingMTA(t *testing.T, tail string) *fakeMTA {
	t.Helper()

	return newFakeMTA(t, `cat > "$(dirname "$0")/stdin"`+"\n"+tail)
}

func (f *fakeMTA) args(t *testing.T) []string {
	t.Helper()

	b, err := os.ReadFile(filepath.Join(f.dir, "args"))
	require.NoError(t, err)

	s := strings.TrimSuffix(string(b), "\x00")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\x00")
}

func (f *fakeMTA) stdin(t *testing.T) string {
	t.Helper()

	b, err := os.ReadFile(filepath.Join(f.dir, "stdin"))
	require.NoError(t, err)
	return string(b)
}

func basicEnvelope() *delivery.Envelope {
	return &delivery.Envelope{
		From: "a@b.com",
		To:   []string{"c@d.com"},
		Body: []byte("Hello\n"),
	}
}

func TestExecRunner_Delivers(t *testing.T) {
	mta := recordingMTA(t, "exit 0")

	sm, err := sendmail.New(sendmail.WithLocation(mta.path))
	require.NoError(t, err)

	require.NoError(t, sm.DeliverEnvelope(context.Background(), basicEnvelope()))
	assert.Equal(t, []string{"-i", "-f", "a@b.com", "--", "c@d.com"}, mta.args(t))
	assert.Equal(t, "Hello\r\n", mta.stdin(t))
}

func TestExecRunner_HostileAddresses(t *testing.T) {
	for _, runner := range []sendmail.Runner{&sendmail.ExecRunner{}, &sendmail.ShellRunner{}} {
		mta := recordingMTA(t, "exit 0")
		pwned := filepath.Join(mta.dir, "pwned")

		env := &delivery.Envelope{
			From: "a b@c.com",
			To: []string{
				"x$(touch " + pwned + ")@example.com",
				"`touch " + pwned + "`@example.com",
				"y;touch " + pwned + "@example.com",
				"-oQ/tmp/x",
			},
			Body: []byte("x"),
		}

		sm, err := sendmail.New(
			sendmail.WithLocation(mta.path),
			sendmail.WithRunner(runner),
		)
		require.NoError(t, err)

		require.NoError(t, sm.DeliverEnvelope(context.Background(), env))
		assert.Equal(t, append([]string{"-i", "-f", "a b@c.com", "--"}, env.To...), mta.args(t))

		_, err = os.Stat(pwned)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	}
}

func TestExecRunner_TempFail(t *testing.T) {
	mta := recordingMTA(t, "echo 'queue is full, try later' >&2\nexit 75")

	sm, err := sendmail.New(sendmail.WithLocation(mta.path))
	require.NoError(t, err)

	err = sm.DeliverEnvelope(context.Background(), basicEnvelope())

	var exitErr *sendmail.ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, 75, exitErr.Code)
	assert.True(t, exitErr.Temporary())
	assert.Equal(t, "queue is full, try later", exitErr.Stderr)
	assert.EqualError(t, err, "sendmail: exited with status 75: queue is full, try later")

	var execErr *exec.ExitError
	assert.True(t, errors.As(err, &execErr))

	// the message was still fully written
	assert.Equal(t, "Hello\r\n", mta.stdin(t))
}

func TestExecRunner_PermanentFailure(t *testing.T) {
	mta := recordingMTA(t, "exit 67")

	sm, err := sendmail.New(sendmail.WithLocation(mta.path))
	require.NoError(t, err)

	err = sm.DeliverEnvelope(context.Background(), basicEnvelope())

	var exitErr *sendmail.ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, 67, exitErr.Code)
	assert.False(t, exitErr.Temporary())
	assert.Empty(t, exitErr.Stderr)
}

func TestExecRunner_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-sendmail")
	sm, err := sendmail.New(sendmail.WithLocation(missing))
	require.NoError(t, err)

	err = sm.DeliverEnvelope(context.Background(), basicEnvelope())

	var spawnErr *sendmail.SpawnError
	require.True(t, errors.As(err, &spawnErr), "got %v", err)
	assert.Equal(t, missing, spawnErr.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestExecRunner_NotExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sendmail")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o600))

	sm, err := sendmail.New(sendmail.WithLocation(path))
	require.NoError(t, err)

	err = sm.DeliverEnvelope(context.Background(), basicEnvelope())

	var spawnErr *sendmail.SpawnError
	assert.True(t, errors.As(err, &spawnErr), "got %v", err)
}

func TestExecRunner_ExitsEarly(t *testing.T) {
	// never reads its input
	mta := newFakeMTA(t, "exit 3")

	sm, err := sendmail.New(sendmail.WithLocation(mta.path))
	require.NoError(t, err)

	env := basicEnvelope()
	env.Body = []byte(strings.Repeat("0123456789abcdef\n", 1<<16))

	err = sm.DeliverEnvelope(context.Background(), env)

	var exitErr *sendmail.ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, 3, exitErr.Code)
}

func TestExecRunner_ContextCanceled(t *testing.T) {
	mta := newFakeMTA(t, "exec sleep 30")

	sm, err := sendmail.New(sendmail.WithLocation(mta.path))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = sm.DeliverEnvelope(ctx, basicEnvelope())
	assert.Less(t, time.Since(start), 20*time.Second)

	var exitErr *sendmail.ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, -1, exitErr.Code)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, exitErr.Temporary())
}

func TestRunner_ContextCanceledWithChild(t *testing.T) {
	// the plain sleep is a child of the script and keeps stderr open after
	// the script itself is killed
	mta := newFakeMTA(t, "cat > /dev/null\nsleep 10")

	for _, runner := range []sendmail.Runner{
		&sendmail.ExecRunner{WaitDelay: 300 * time.Millisecond},
		&sendmail.ShellRunner{WaitDelay: 300 * time.Millisecond},
	} {
		sm, err := sendmail.New(
			sendmail.WithLocation(mta.path),
			sendmail.WithRunner(runner),
		)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)

		start := time.Now()
		err = sm.DeliverEnvelope(ctx, basicEnvelope())
		elapsed := time.Since(start)
		cancel()

		assert.Less(t, elapsed, 5*time.Second, "%T", runner)

		var exitErr *sendmail.ExitError
		require.True(t, errors.As(err, &exitErr), "%T: got %v", runner, err)
		assert.Equal(t, -1, exitErr.Code)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
}

func TestExecRunner_BackgroundChild(t *testing.T) {
	mta := newFakeMTA(t, "cat > /dev/null\nsleep 10 &\nexit 0")

	sm, err := sendmail.New(
		sendmail.WithLocation(mta.path),
		sendmail.WithRunner(&sendmail.ExecRunner{WaitDelay: 300 * time.Millisecond}),
	)
	require.NoError(t, err)

	start := time.Now()
	assert.NoError(t, sm.DeliverEnvelope(context.Background(), basicEnvelope()))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestShellRunner_Arguments(t *testing.T) {
	mta := recordingMTA(t, "exit 0")

	sm, err := sendmail.New(
		sendmail.WithLocation(mta.path),
		sendmail.WithArguments(`-i -F "Web Site"`),
		sendmail.WithRunner(&sendmail.ShellRunner{}),
	)
	require.NoError(t, err)

	require.NoError(t, sm.DeliverEnvelope(context.Background(), basicEnvelope()))
	assert.Equal(t, []string{"-i", "-F", "Web Site", "-f", "a@b.com", "--", "c@d.com"}, mta.args(t))
	assert.Equal(t, "Hello\r\n", mta.stdin(t))
}

func TestShellRunner_Missing(t *testing.T) {
	if _, err := os.Stat(sendmail.DefaultShell); err != nil {
		t.Skip("needs " + sendmail.DefaultShell)
	}

	sm, err := sendmail.New(
		sendmail.WithLocation(filepath.Join(t.TempDir(), "no-such-sendmail")),
		sendmail.WithRunner(&sendmail.ShellRunner{}),
	)
	require.NoError(t, err)

	err = sm.DeliverEnvelope(context.Background(), basicEnvelope())

	var exitErr *sendmail.ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, 127, exitErr.Code)
}
