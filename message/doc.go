// Package message provides the message object handed to a delivery method: a
// header plus an opaque body. Messages come either from parsing existing
// bytes with Parse() or from composing a new one in a Buffer:
//
//	buf := &message.Buffer{}
//	_ = buf.SetFrom("alice@example.com")
//	_ = buf.SetTo("bob@example.com")
//	buf.SetSubject("hello")
//	_, _ = fmt.Fprintln(buf, "Hi, Bob.")
//
//	msg := buf.Opaque()
//
// The body is never interpreted. MIME structure, if any, is the business of
// whoever composed the message.
package message
