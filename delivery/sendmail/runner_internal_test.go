package sendmail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTailBuffer(t *testing.T) {
	t.Parallel()

	tb := &tailBuffer{max: 8}

	n, err := tb.Write([]byte("abc"))
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "abc", tb.String())

	n, err = tb.Write([]byte("defghij"))
	assert.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "cdefghij", tb.String())

	_, _ = tb.Write([]byte(strings.Repeat("z", 100)))
	assert.Equal(t, "zzzzzzzz", tb.String())
}
