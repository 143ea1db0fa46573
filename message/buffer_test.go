package message_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-sendmail/message"
)

func TestBuffer_Opaque(t *testing.T) {
	t.Parallel()

	buf := &message.Buffer{}
	require.NoError(t, buf.SetFrom("alice@example.com"))
	require.NoError(t, buf.SetTo("bob@example.com"))
	buf.SetSubject("test simple")

	_, err := fmt.Fprint(buf, "Hello\r\n")
	require.NoError(t, err)

	m := buf.Opaque()
	assert.Equal(t, &m.Header, m.GetHeader())
	assert.NotNil(t, m.GetReader())

	const expect = "From: alice@example.com\r\n" +
		"To: bob@example.com\r\n" +
		"Subject: test simple\r\n" +
		"\r\n" +
		"Hello\r\n"

	out := &bytes.Buffer{}
	n, err := m.WriteTo(out)
	assert.NoError(t, err)
	assert.Equal(t, int64(len(expect)), n)
	assert.Equal(t, expect, out.String())

	// later changes to the buffer do not leak into the message
	buf.SetSubject("changed")
	s, err := m.GetSubject()
	assert.NoError(t, err)
	assert.Equal(t, "test simple", s)
}
