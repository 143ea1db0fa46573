package delivery

import (
	"bytes"
	"errors"
	"io"

	"github.com/zostay/go-sendmail/message/header"
)

// Message is anything that can be delivered: a header to pull the envelope
// from and an already encoded body. *message.Opaque satisfies this
// interface.
type Message interface {
	// GetHeader returns the message header.
	GetHeader() *header.Header

	// GetReader returns the body. It may be nil when the body is empty.
	GetReader() io.Reader
}

// Validator derives a validated Envelope from a message.
type Validator func(Message) (*Envelope, error)

// CheckParams is the default Validator. The envelope sender is the
// Return-path address, falling back to the first Sender address and then the
// first From address. The recipients are every address in To, Cc, and Bcc, in
// that order, with duplicates removed. The body is the header without any Bcc
// fields, followed by the message body.
//
// It returns a *ValidationError if the result does not pass
// Envelope.Validate.
func CheckParams(m Message) (*Envelope, error) {
	h := m.GetHeader()

	env := &Envelope{
		From: EnvelopeFrom(h),
		To:   EnvelopeTo(h),
	}

	// report address problems before bothering to encode the message
	if err := checkAddress("from", env.From); err != nil {
		return nil, err
	}
	if len(env.To) == 0 {
		return nil, &ValidationError{Field: "to", Err: ErrNoRecipients}
	}

	buf := &bytes.Buffer{}
	if err := writeMessage(buf, h, m.GetReader()); err != nil {
		return nil, err
	}
	env.Body = buf.Bytes()

	if err := env.Validate(); err != nil {
		return nil, err
	}

	return env, nil
}

// EnvelopeFrom returns the envelope sender for the header, or an empty string
// if there is none.
func EnvelopeFrom(h *header.Header) string {
	rp, err := h.GetReturnPath()
	if (err == nil || errors.Is(err, header.ErrManyFields)) && rp != "" {
		return rp
	}

	for _, name := range []string{header.Sender, header.From} {
		al, err := h.GetAddressList(name)
		if err != nil && !errors.Is(err, header.ErrManyFields) {
			continue
		}

		if specs := header.AddrSpecs(al); len(specs) > 0 {
			return specs[0]
		}
	}

	return ""
}

// EnvelopeTo returns the envelope recipients for the header in To, Cc, Bcc
// order. Each address appears once, at its first position.
func EnvelopeTo(h *header.Header) []string {
	seen := map[string]struct{}{}
	var to []string
	for _, name := range []string{header.To, header.Cc, header.Bcc} {
		als, err := h.GetAllAddressLists(name)
		if err != nil {
			continue
		}

		for _, al := range als {
			for _, spec := range header.AddrSpecs(al) {
				if _, dup := seen[spec]; dup {
					continue
				}
				seen[spec] = struct{}{}
				to = append(to, spec)
			}
		}
	}
	return to
}

// writeMessage writes a copy of h with the Bcc fields removed, then body.
// The Bcc recipients are already in the envelope and must not be shown to
// the other recipients.
func writeMessage(w io.Writer, h *header.Header, body io.Reader) error {
	out := h.Clone()
	ixs := out.GetIndexesNamed(header.Bcc)
	for i := len(ixs) - 1; i >= 0; i-- {
		if err := out.DeleteField(ixs[i]); err != nil {
			return err
		}
	}

	if _, err := out.WriteTo(w); err != nil {
		return err
	}

	if body != nil {
		if _, err := io.Copy(w, body); err != nil {
			return err
		}
	}

	return nil
}
