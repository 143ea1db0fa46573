package sendmail

import (
	"fmt"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
)

// Escape returns s quoted so that a POSIX shell reads it back as exactly one
// word equal to s, whatever whitespace, quotes, or metacharacters it holds.
// The empty string becomes ''.
func Escape(s string) string {
	q := shellquote.Join(s)

	// shellquote leaves a leading # alone, which the shell takes as a comment
	if strings.HasPrefix(q, "#") {
		q = `\` + q
	}

	return q
}

// EscapeAll escapes each word and joins them with single spaces.
func EscapeAll(words ...string) string {
	qs := make([]string, len(words))
	for i, w := range words {
		qs[i] = Escape(w)
	}
	return strings.Join(qs, " ")
}

// splitArguments splits an arguments string into words using shell quoting
// rules. No expansion of any kind is performed.
func splitArguments(s string) ([]string, error) {
	words, err := shellquote.Split(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrBadArguments, s, err)
	}
	return words, nil
}
