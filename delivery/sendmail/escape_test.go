package sendmail_test

import (
	"bytes"
	"os/exec"
	"strings"
	"testing"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-sendmail/delivery/sendmail"
)

var nastyWords = []string{
	"",
	"plain@example.com",
	"a b@c.com",
	"tab\there@example.com",
	"line\nbreak",
	"it's@example.com",
	`"quoted"@example.com`,
	`back\slash@example.com`,
	"$HOME@example.com",
	"${IFS}@example.com",
	"`id`@example.com",
	"$(touch nope)@example.com",
	"semi;colon@example.com",
	"pipe|amp&@example.com",
	"<redirect>@example.com",
	"glob*?[x]@example.com",
	"~tilde@example.com",
	"bang!@example.com",
	"-oQ/tmp/x",
	"#hash@example.com",
	"ünïcödé@example.com",
}

func TestEscape_SplitRoundTrip(t *testing.T) {
	t.Parallel()

	for _, w := range nastyWords {
		words, err := shellquote.Split(sendmail.Escape(w))
		require.NoError(t, err, w)
		assert.Equal(t, []string{w}, words, "escaped %q", w)
	}
}

func TestEscape_ShellRoundTrip(t *testing.T) {
	t.Parallel()

	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no POSIX shell available")
	}

	line := "printf '%s\\000' " + sendmail.EscapeAll(nastyWords...)
	out, err := exec.Command(sh, "-c", line).Output()
	require.NoError(t, err)

	got := strings.Split(string(bytes.TrimSuffix(out, []byte{0})), "\x00")
	assert.Equal(t, nastyWords, got)
}

func TestEscape_Sender(t *testing.T) {
	t.Parallel()

	words, err := shellquote.Split(sendmail.EscapeAll("-f", "a b@c.com"))
	require.NoError(t, err)
	assert.Equal(t, []string{"-f", "a b@c.com"}, words)

	assert.Equal(t, "''", sendmail.Escape(""))
	assert.Equal(t, "plain@example.com", sendmail.Escape("plain@example.com"))
}
