package message

import (
	"bytes"

	"github.com/zostay/go-sendmail/message/header"
)

// Buffer provides tools for constructing email messages. Set the header
// through the embedded header.Header, write the body through the io.Writer
// interface, and then call Opaque() to get the finished message.
type Buffer struct {
	header.Header
	buf bytes.Buffer
}

// Write implements io.Writer, appending to the message body.
func (b *Buffer) Write(p []byte) (int, error) {
	return b.buf.Write(p)
}

// Opaque returns an Opaque message holding a copy of the header and the body
// written so far. The Buffer may continue to be used afterward without
// affecting the returned message.
func (b *Buffer) Opaque() *Opaque {
	body := make([]byte, b.buf.Len())
	copy(body, b.buf.Bytes())

	return &Opaque{
		Header: *b.Header.Clone(),
		Reader: bytes.NewReader(body),
	}
}
