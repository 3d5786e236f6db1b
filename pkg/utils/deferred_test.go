package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferredWriter_Flush(t *testing.T) {
	var d DeferredWriter

	_, err := d.Write([]byte("one\n"))
	require.NoError(t, err)
	_, err = d.Write([]byte("two\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, d.Flush(&out))
	assert.Equal(t, "one\ntwo\n", out.String())

	out.Reset()
	require.NoError(t, d.Flush(&out))
	assert.Empty(t, out.String(), "flush empties the buffer")
}

type countingWriter struct {
	writes []string
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.writes = append(c.writes, string(p))
	return len(p), nil
}

func TestDeferredWriter_FlushWritesLines(t *testing.T) {
	var d DeferredWriter
	_, _ = d.Write([]byte("{\"a\":1}\n{\"b\":2}\npartial"))

	var w countingWriter
	require.NoError(t, d.Flush(&w))

	assert.Equal(t, []string{"{\"a\":1}\n", "{\"b\":2}\n", "partial"}, w.writes)
}
