package message

import (
	"io"

	"github.com/zostay/go-sendmail/message/header"
)

// Opaque is the base-level email message. It is simply a header and a message
// body, very similar to the net/mail message implementation.
type Opaque struct {
	// Header will contain the header of the message.
	header.Header

	// Reader will contain the body content of the message. If the content is
	// zero bytes long, then Reader may be nil.
	io.Reader
}

// WriteTo writes the Opaque header, the blank line that ends it, and the body
// to the destination io.Writer.
//
// This can only be safely called once as it will consume the io.Reader.
func (m *Opaque) WriteTo(w io.Writer) (int64, error) {
	total, err := m.Header.WriteTo(w)
	if err != nil {
		return total, err
	}

	if m.Reader != nil {
		bn, err := io.Copy(w, m.Reader)
		total += bn
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// GetHeader returns the header for the message.
func (m *Opaque) GetHeader() *header.Header {
	return &m.Header
}

// GetReader returns the reader containing the body of the message.
func (m *Opaque) GetReader() io.Reader {
	return m.Reader
}
