package header

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	// ErrBadStart is returned by Parse when the header begins with a
	// continuation line. The stray line is dropped and the rest of the header
	// is still returned, so this error is recoverable.
	ErrBadStart = errors.New("header starts with a continuation line")

	// ErrMalformedField is returned by Parse when a line is neither a
	// continuation nor a "Name: body" field.
	ErrMalformedField = errors.New("malformed header field")
)

func isContinuation(line []byte) bool {
	return len(line) > 0 && (line[0] == ' ' || line[0] == '\t')
}

// unfold joins the lines of a folded field body and trims the surrounding
// whitespace, per the unfolding rule in RFC 5322 section 2.2.3.
func unfold(lines [][]byte) string {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.Write(l)
	}
	return string(bytes.TrimSpace(buf.Bytes()))
}

// Parse will parse the given slice of bytes into an email header using the
// given line break. It will assume the entire slice given represents the
// header to be parsed. A trailing blank line, if present, is ignored.
//
// Each field keeps its raw bytes, so writing the header back out reproduces
// the input until a field is modified.
func Parse(m []byte, lb Break) (*Header, error) {
	if lb == Meh {
		lb = DetectBreak(m)
		if lb == Meh {
			lb = CRLF
		}
	}

	m = bytes.TrimRight(m, "\r\n")

	h := &Header{Base: Base{lbr: lb}}
	h.initBase()
	if len(m) == 0 {
		return h, nil
	}

	var finalErr error
	var cur [][]byte
	flush := func() error {
		if cur == nil {
			return nil
		}

		defer func() { cur = nil }()

		first := cur[0]
		colon := bytes.IndexByte(first, ':')
		if colon <= 0 {
			return fmt.Errorf("%w: %q", ErrMalformedField, first)
		}

		name := string(bytes.TrimSpace(first[:colon]))
		bodyLines := append([][]byte{first[colon+1:]}, cur[1:]...)
		f := &Field{
			name: name,
			body: unfold(bodyLines),
			raw:  bytes.Join(cur, lb.Bytes()),
		}
		h.fields = append(h.fields, f)
		return nil
	}

	for _, line := range bytes.Split(m, lb.Bytes()) {
		if isContinuation(line) {
			if cur == nil {
				finalErr = ErrBadStart
				continue
			}
			cur = append(cur, line)
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		cur = [][]byte{line}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return h, finalErr
}
