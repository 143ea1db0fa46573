package header

import (
	"errors"
	"io"
	"strings"
)

var (
	// ErrIndexOutOfRange when an attempt is made to access a header field index
	// that is too large or to small.
	ErrIndexOutOfRange = errors.New("header field index is out of range")
)

// Base represents a basic email message header. It is an ordered list of
// fields plus the line break used to separate them on output.
type Base struct {
	lbr    Break
	fields []*Field
}

// initBase initializes the Break and fields values lazily.
func (h *Base) initBase() {
	if h.lbr == Meh {
		h.lbr = CRLF
	}
	if h.fields == nil {
		h.fields = make([]*Field, 0, 10)
	}
}

// Break returns the line break used to separate header fields and terminate the
// header. A zero Base uses CRLF.
func (h *Base) Break() Break {
	if h.lbr == Meh {
		return CRLF
	}
	return h.lbr
}

// SetBreak changes the line break to use with this header.
func (h *Base) SetBreak(lbr Break) {
	h.lbr = lbr
}

// GetField returns the nth field or nil if n is out of range.
func (h *Base) GetField(n int) *Field {
	if n < 0 || n >= len(h.fields) {
		return nil
	}
	return h.fields[n]
}

// Len returns the number of header fields in the header.
func (h *Base) Len() int {
	return len(h.fields)
}

// GetIndexesNamed returns the indexes of fields with the given name. Names are
// matched case-insensitively.
func (h *Base) GetIndexesNamed(name string) []int {
	var is []int
	for i, f := range h.fields {
		if strings.EqualFold(f.Name(), name) {
			is = append(is, i)
		}
	}
	return is
}

// ListFields returns all the fields in the header.
func (h *Base) ListFields() []*Field {
	fs := make([]*Field, len(h.fields))
	copy(fs, h.fields)
	return fs
}

// InsertBeforeField will insert the given name and body values into the header
// at the given index. The index is clamped to the range of the header.
func (h *Base) InsertBeforeField(n int, name, body string) {
	h.initBase()

	if n < 0 {
		n = 0
	}
	if n > len(h.fields) {
		n = len(h.fields)
	}

	h.fields = append(h.fields, nil)
	copy(h.fields[n+1:], h.fields[n:])
	h.fields[n] = NewField(name, body)
}

// DeleteField removes the nth field from the header. Fails with an error if the
// given index is out of range.
func (h *Base) DeleteField(n int) error {
	if n < 0 || n >= len(h.fields) {
		return ErrIndexOutOfRange
	}

	copy(h.fields[n:], h.fields[n+1:])
	h.fields = h.fields[:len(h.fields)-1]

	return nil
}

// ClearFields removes all fields from the header.
func (h *Base) ClearFields() {
	h.fields = h.fields[:0]
}

// WriteTo writes each field followed by the line break and then a final line
// break to terminate the header.
func (h *Base) WriteTo(w io.Writer) (int64, error) {
	lbr := h.Break().Bytes()

	var total int64
	for _, f := range h.fields {
		n, err := w.Write(f.Bytes())
		total += int64(n)
		if err != nil {
			return total, err
		}

		n, err = w.Write(lbr)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	n, err := w.Write(lbr)
	total += int64(n)
	return total, err
}
