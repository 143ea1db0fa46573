package header

import "strings"

// Field is a single header field. A field parsed from a message remembers the
// raw bytes it was read from so that it can be written back out unchanged until
// it is modified.
type Field struct {
	name string
	body string
	raw  []byte
}

// NewField constructs a new field with the given name and body.
func NewField(name, body string) *Field {
	return &Field{name: name, body: body}
}

// Name returns the field name.
func (f *Field) Name() string {
	return f.name
}

// Body returns the unfolded field body with the surrounding whitespace
// trimmed.
func (f *Field) Body() string {
	return f.body
}

// SetName changes the field name. The raw bytes are discarded.
func (f *Field) SetName(n string) {
	f.name = n
	f.raw = nil
}

// SetBody changes the field body. The raw bytes are discarded.
func (f *Field) SetBody(b string) {
	f.body = b
	f.raw = nil
}

// Bytes returns the field as it will be output, without a trailing line
// break.
func (f *Field) Bytes() []byte {
	if f.raw != nil {
		return f.raw
	}

	var sb strings.Builder
	sb.Grow(len(f.name) + len(f.body) + 2)
	sb.WriteString(f.name)
	sb.WriteString(": ")
	sb.WriteString(f.body)
	return []byte(sb.String())
}

// String returns Bytes() as a string.
func (f *Field) String() string {
	return string(f.Bytes())
}
