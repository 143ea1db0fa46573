package sendmail

import (
	"errors"
	"fmt"
)

// Configuration errors.
var (
	// ErrNoLocation is returned by New() when the MTA location is blank.
	ErrNoLocation = errors.New("sendmail location may not be blank")

	// ErrUnknownSetting is returned when a settings map or file names a key
	// other than "location" or "arguments".
	ErrUnknownSetting = errors.New("unknown sendmail setting")

	// ErrBadArguments is returned when the configured arguments string cannot
	// be split into words, usually because of an unterminated quote.
	ErrBadArguments = errors.New("cannot parse sendmail arguments")
)

// ExitTempFail is the sysexits.h EX_TEMPFAIL status sendmail-compatible MTAs
// use to say "try again later".
const ExitTempFail = 75

// SpawnError is returned when the MTA process could not be started at all,
// for example because the binary does not exist or is not executable.
type SpawnError struct {
	Path string
	Err  error
}

// Error describes the failure.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("sendmail: cannot start %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *SpawnError) Unwrap() error {
	return e.Err
}

// WriteError is returned when the message could not be completely written to
// the MTA's standard input, typically because the process exited early and the
// pipe broke.
type WriteError struct {
	Err error
}

// Error describes the failure.
func (e *WriteError) Error() string {
	return fmt.Sprintf("sendmail: writing message: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// ExitError is returned when the MTA terminates with a non-zero status or is
// killed. Code is -1 when the process did not exit normally.
type ExitError struct {
	Code int

	// Stderr holds the tail of what the MTA wrote to standard error.
	Stderr string

	// Err is the context error if the process was killed because its context
	// ended, otherwise the error returned from waiting on the process.
	Err error
}

// Error describes the failure, including any stderr output.
func (e *ExitError) Error() string {
	msg := fmt.Sprintf("sendmail: exited with status %d", e.Code)
	if e.Code < 0 {
		msg = fmt.Sprintf("sendmail: terminated: %v", e.Err)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the MTA asked for the delivery to be tried again
// later.
func (e *ExitError) Temporary() bool {
	return e.Code == ExitTempFail
}
