package message

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/zostay/go-sendmail/message/header"
)

// Constants related to Parse() options.
const (
	// DefaultChunkSize the default size of chunks to read from the input while
	// splitting the message into header and body. Defaults to 16K, though this
	// could change at any time.
	DefaultChunkSize = 16_384

	// DefaultMaxHeaderLength is the default maximum byte length to scan before
	// giving up on finding the end of the header.
	DefaultMaxHeaderLength = bufio.MaxScanTokenSize
)

// ErrLargeHeader is returned by Parse when the header is longer than the
// configured WithMaxHeaderLength option (or the default,
// DefaultMaxHeaderLength).
var ErrLargeHeader = errors.New("the header exceeds the maximum parse length")

var splits = [][]byte{
	[]byte("\x0d\x0a\x0d\x0a"), // \r\n\r\n
	[]byte("\x0a\x0d\x0a\x0d"), // \n\r\n\r, extremely unlikely, possibly never
	[]byte("\x0a\x0a"),         // \n\n
	[]byte("\x0d\x0d"),         // \r\r
}

type parser struct {
	maxHeaderLen int
	chunkSize    int
}

// ParseOption refers to options that may be passed to the Parse function to
// modify how the parser works.
type ParseOption func(pr *parser)

// WithMaxHeaderLength is a ParseOption that sets the maximum size the buffer is
// allowed to reach before parsing exits with an ErrLargeHeader error. Setting
// this to a value less than or equal to 0 will result in there being no
// maximum length.
func WithMaxHeaderLength(n int) ParseOption {
	return func(pr *parser) { pr.maxHeaderLen = n }
}

// WithChunkSize is a ParseOption that controls how many bytes to read at a time
// while looking for the end of the header.
func WithChunkSize(chunkSize int) ParseOption {
	return func(pr *parser) { pr.chunkSize = chunkSize }
}

// searchForSplit looks for a header/body split. Returns -1, nil if none is
// found. Otherwise, it returns the position just past the earliest split and
// the line break the header uses.
func searchForSplit(buf []byte) (pos int, crlf []byte) {
	pos = -1
	first := -1
	for _, s := range splits {
		if testPos := bytes.Index(buf, s); testPos > -1 && (first < 0 || testPos < first) {
			first = testPos
			pos = testPos + len(s)
			crlf = s[0 : len(s)/2]
		}
	}
	return
}

// splitHeadFromBody reads chunks from r until the blank line ending the header
// is found. It returns the header bytes (including the final break), the line
// break in use, and a reader for the body. The body reader yields the rest of
// the last chunk and then the unread part of r.
func (pr *parser) splitHeadFromBody(r io.Reader) ([]byte, header.Break, io.Reader, error) {
	p := make([]byte, pr.chunkSize)
	buf := &bytes.Buffer{}
	searched := 0
	for {
		n, err := r.Read(p)

		if pr.maxHeaderLen > 0 && n+buf.Len() > pr.maxHeaderLen {
			return nil, header.Meh, nil, ErrLargeHeader
		}

		isEOF := errors.Is(err, io.EOF)
		if err != nil && !isEOF {
			return nil, header.Meh, nil, err
		}

		buf.Write(p[:n])

		pos, crlf := searchForSplit(buf.Bytes()[searched:])
		if pos >= 0 {
			pos += searched
			all := buf.Bytes()
			hdr := all[:pos]
			rest := all[pos:]
			return hdr, header.Break(crlf), io.MultiReader(bytes.NewReader(rest), r), nil
		}

		if isEOF {
			break
		}

		// the last 3 bytes might be the prefix to the split point
		searched = buf.Len() - 3
		if searched < 0 {
			searched = 0
		}
	}

	// No blank line at all, so the whole input is header and there is no
	// body.
	return buf.Bytes(), header.DetectBreak(buf.Bytes()), nil, nil
}

// Parse will consume input from the given reader until the end of the header
// and return an *Opaque whose body reads the remainder of the input.
//
// The header is read in chunks (see WithChunkSize()) until a blank line of any
// of the common line break styles is found. That line break is then used to
// split up the header fields. If the header grows beyond
// WithMaxHeaderLength() (or DefaultMaxHeaderLength) first, Parse fails with
// ErrLargeHeader.
//
// Recoverable header errors, such as header.ErrBadStart, are returned along
// with the message.
func Parse(r io.Reader, opts ...ParseOption) (*Opaque, error) {
	pr := &parser{
		maxHeaderLen: DefaultMaxHeaderLength,
		chunkSize:    DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(pr)
	}

	if pr.chunkSize <= 0 {
		pr.chunkSize = DefaultChunkSize
	}

	hdr, lbr, body, err := pr.splitHeadFromBody(r)
	if err != nil {
		return nil, err
	}

	head, err := header.Parse(hdr, lbr)
	if head == nil {
		return nil, err
	}

	return &Opaque{Header: *head, Reader: body}, err
}
