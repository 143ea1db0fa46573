package message_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-sendmail/message"
	"github.com/zostay/go-sendmail/message/header"
)

const simpleMessage = "From: alice@example.com\r\n" +
	"To: bob@example.com\r\n" +
	"Subject: lunch\r\n" +
	"\r\n" +
	"Noon?\r\n" +
	"\r\n" +
	"-- Alice\r\n"

func TestParse(t *testing.T) {
	t.Parallel()

	m, err := message.Parse(strings.NewReader(simpleMessage))
	require.NoError(t, err)

	assert.Equal(t, header.CRLF, m.Break())
	assert.Equal(t, 3, m.Len())

	s, err := m.GetSubject()
	assert.NoError(t, err)
	assert.Equal(t, "lunch", s)

	body, err := io.ReadAll(m.GetReader())
	assert.NoError(t, err)
	assert.Equal(t, "Noon?\r\n\r\n-- Alice\r\n", string(body))
}

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []string{
		simpleMessage,
		strings.ReplaceAll(simpleMessage, "\r\n", "\n"),
		"Subject: folded\n\tacross lines\nTo: x@example.com\n\nbody\n",
	}

	for _, in := range tests {
		// a tiny chunk size forces the split to be found across reads
		m, err := message.Parse(strings.NewReader(in), message.WithChunkSize(5))
		require.NoError(t, err)

		out := &bytes.Buffer{}
		n, err := m.WriteTo(out)
		assert.NoError(t, err)
		assert.Equal(t, int64(len(in)), n)
		assert.Equal(t, in, out.String())
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	t.Parallel()

	m, err := message.Parse(strings.NewReader("Subject: nothing else\n"))
	require.NoError(t, err)

	assert.Nil(t, m.GetReader())
	assert.Equal(t, header.LF, m.Break())
}

func TestParse_LargeHeader(t *testing.T) {
	t.Parallel()

	in := "Subject: " + strings.Repeat("x", 100) + "\r\n\r\nbody"
	_, err := message.Parse(strings.NewReader(in),
		message.WithChunkSize(16),
		message.WithMaxHeaderLength(64),
	)
	assert.ErrorIs(t, err, message.ErrLargeHeader)
}

func TestParse_EarliestSplitWins(t *testing.T) {
	t.Parallel()

	in := "Subject: unix\n\nbody with a stray\r\n\r\nin it\n"
	m, err := message.Parse(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, header.LF, m.Break())
	body, err := io.ReadAll(m.GetReader())
	assert.NoError(t, err)
	assert.Equal(t, "body with a stray\r\n\r\nin it\n", string(body))
}
