package delivery

import (
	"errors"
	"fmt"
	"strings"
)

// MaxAddressLength is the longest envelope address, in bytes, that will be
// handed to a transport.
const MaxAddressLength = 2000

// Errors wrapped by ValidationError to describe what was wrong.
var (
	ErrNoSender         = errors.New("sender address may not be blank")
	ErrNoRecipients     = errors.New("recipient addresses may not be blank")
	ErrNoBody           = errors.New("message may not be blank")
	ErrAddressTooLong   = errors.New("address may not exceed 2kB")
	ErrAddressLineBreak = errors.New("address may not contain CR or LF line breaks")
	ErrAddressNUL       = errors.New("address may not contain NUL")
)

// ValidationError is returned when a message cannot be turned into a
// deliverable envelope. Nothing has been sent when this error is returned.
type ValidationError struct {
	// Field names the envelope part at fault: "from", "to", or "body".
	Field string

	// Address is the offending address, if the problem is with one address.
	Address string

	// Err is one of the Err* values above.
	Err error
}

// Error returns a description of the validation failure.
func (e *ValidationError) Error() string {
	if e.Address != "" {
		return fmt.Sprintf("invalid envelope %s %q: %v", e.Field, e.Address, e.Err)
	}
	return fmt.Sprintf("invalid envelope %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying reason.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Envelope is the routing information for a single delivery plus the
// encoded message itself.
type Envelope struct {
	// From is the envelope sender (the reverse-path).
	From string

	// To is the ordered list of envelope recipients.
	To []string

	// Body is the entire encoded message, header included.
	Body []byte
}

// Validate checks the envelope invariants: a sender, at least one recipient,
// a non-empty body, and no address that is overlong or contains a line
// break. It returns a *ValidationError on failure.
func (e *Envelope) Validate() error {
	if err := checkAddress("from", e.From); err != nil {
		return err
	}

	if len(e.To) == 0 {
		return &ValidationError{Field: "to", Err: ErrNoRecipients}
	}

	for _, to := range e.To {
		if err := checkAddress("to", to); err != nil {
			return err
		}
	}

	if len(e.Body) == 0 {
		return &ValidationError{Field: "body", Err: ErrNoBody}
	}

	return nil
}

func checkAddress(field, a string) error {
	switch {
	case strings.TrimSpace(a) == "":
		if field == "from" {
			return &ValidationError{Field: field, Err: ErrNoSender}
		}
		return &ValidationError{Field: field, Err: ErrNoRecipients}
	case len(a) > MaxAddressLength:
		return &ValidationError{Field: field, Address: a[:32] + "...", Err: ErrAddressTooLong}
	case strings.ContainsAny(a, "\r\n"):
		return &ValidationError{Field: field, Address: a, Err: ErrAddressLineBreak}
	case strings.ContainsRune(a, 0):
		return &ValidationError{Field: field, Address: a, Err: ErrAddressNUL}
	}
	return nil
}
