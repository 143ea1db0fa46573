package header

import (
	"fmt"
	"io"
	"mime"

	"golang.org/x/text/encoding/ianaindex"
)

// wordDecoder decodes RFC 2047 encoded-words. The standard library only knows
// UTF-8, US-ASCII, and ISO-8859-1, so every other charset is looked up in the
// IANA index provided by golang.org/x/text.
var wordDecoder = &mime.WordDecoder{CharsetReader: CharsetReader}

// CharsetReader returns a reader that transcodes input from the named
// charset into UTF-8. It is suitable for use as mime.WordDecoder.CharsetReader.
func CharsetReader(charset string, input io.Reader) (io.Reader, error) {
	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		return nil, err
	}

	if e == nil {
		return nil, fmt.Errorf("no encoding found for charset %q", charset)
	}

	return e.NewDecoder().Reader(input), nil
}

// DecodeWords decodes any RFC 2047 encoded-words found in the given field
// body.
func DecodeWords(body string) (string, error) {
	return wordDecoder.DecodeHeader(body)
}

// GetDecoded returns the body of the named field with encoded-words decoded.
// It returns ErrNoSuchField or ErrManyFields under the same conditions as
// Get().
func (h *Header) GetDecoded(name string) (string, error) {
	body, err := h.Get(name)
	if err != nil {
		return body, err
	}

	return DecodeWords(body)
}
