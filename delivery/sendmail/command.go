package sendmail

import (
	"strings"

	"github.com/zostay/go-sendmail/delivery"
)

// Command is one invocation of the MTA. It is built fresh for every delivery.
type Command struct {
	// Path is the MTA binary.
	Path string

	// Arguments is the configured arguments string, exactly as given.
	Arguments string

	// Extra holds Arguments split into words.
	Extra []string

	// Envelope holds the flags derived from the envelope: "-f", the sender,
	// "--", and then each recipient.
	Envelope []string
}

// BuildCommand builds the command to deliver env with the given settings. It
// fails with ErrBadArguments if settings.Arguments cannot be split into words.
func BuildCommand(settings Settings, env *delivery.Envelope) (*Command, error) {
	extra, err := splitArguments(settings.Arguments)
	if err != nil {
		return nil, err
	}

	envelope := make([]string, 0, len(env.To)+3)
	envelope = append(envelope, "-f", env.From, "--")
	envelope = append(envelope, env.To...)

	return &Command{
		Path:      settings.Location,
		Arguments: settings.Arguments,
		Extra:     extra,
		Envelope:  envelope,
	}, nil
}

// Args returns the full argument vector that follows Path.
func (c *Command) Args() []string {
	args := make([]string, 0, len(c.Extra)+len(c.Envelope))
	args = append(args, c.Extra...)
	return append(args, c.Envelope...)
}

// String returns the command as a shell command line with every word
// escaped.
func (c *Command) String() string {
	return EscapeAll(append([]string{c.Path}, c.Args()...)...)
}

// ShellLine returns the command line for running through a shell. Path and the
// envelope words are escaped, but Arguments is included verbatim so that it
// gets the shell processing a legacy configuration may expect.
func (c *Command) ShellLine() string {
	parts := make([]string, 0, 3)
	parts = append(parts, Escape(c.Path))
	if a := strings.TrimSpace(c.Arguments); a != "" {
		parts = append(parts, a)
	}
	parts = append(parts, EscapeAll(c.Envelope...))
	return strings.Join(parts, " ")
}
