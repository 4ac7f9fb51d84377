package wire

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLineBasic(t *testing.T) {
	r := NewReader(strings.NewReader("hello\nworld\n"))

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "hello", line)

	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "world", line)

	_, err = r.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadLineStripsCarriageReturn(t *testing.T) {
	r := NewReader(strings.NewReader("hello\r\nplain\n"))

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "hello", line)

	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "plain", line)
}

func TestReadLineEmptyLine(t *testing.T) {
	r := NewReader(strings.NewReader("\n\r\n"))

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "", line)

	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "", line)
}

func TestReadLineMaxPayloadAccepted(t *testing.T) {
	payload := strings.Repeat("a", MaxInbound)
	r := NewReader(strings.NewReader(payload + "\n"))

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, payload, line)
}

func TestReadLineMaxPayloadWithCRAccepted(t *testing.T) {
	payload := strings.Repeat("a", MaxInbound)
	r := NewReader(strings.NewReader(payload + "\r\n"))

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, payload, line)
}

func TestReadLineOneOverMaxRejectedThenRecovers(t *testing.T) {
	long := strings.Repeat("a", MaxInbound+1)
	r := NewReader(strings.NewReader(long + "\nnext\n"))

	_, err := r.ReadLine()
	assert.ErrorIs(t, err, ErrTooLong)

	// The session stays usable: the following line is delivered.
	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "next", line)
}

func TestReadLineHugeLineDiscardSpansReads(t *testing.T) {
	long := strings.Repeat("x", 10*MaxInbound)
	r := NewReader(strings.NewReader(long + "\nafter\n"))

	_, err := r.ReadLine()
	assert.ErrorIs(t, err, ErrTooLong)

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "after", line)

	_, err = r.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadLineReportsOversizeOncePerLine(t *testing.T) {
	r := NewReader(strings.NewReader(
		strings.Repeat("x", 2000) + "\n" +
			strings.Repeat("y", 2000) + "\n" +
			"ok\n"))

	_, err := r.ReadLine()
	assert.ErrorIs(t, err, ErrTooLong)

	_, err = r.ReadLine()
	assert.ErrorIs(t, err, ErrTooLong)

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "ok", line)
}

func TestReadLineFinalLineWithoutTerminator(t *testing.T) {
	r := NewReader(strings.NewReader("tail"))

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "tail", line)

	_, err = r.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadLineInvalidUTF8(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xff, 0xfe, '\n'}))

	_, err := r.ReadLine()
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestReadLineUTF8Accepted(t *testing.T) {
	r := NewReader(strings.NewReader("héllo wörld 🌍\n"))

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "héllo wörld 🌍", line)
}

func TestReadLineSmallLimit(t *testing.T) {
	r := NewReaderSize(strings.NewReader("abcdef\nab\n"), 4)

	_, err := r.ReadLine()
	assert.ErrorIs(t, err, ErrTooLong)

	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "ab", line)
}

func TestWriteLineAppendsTerminator(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteLine("hello"))
	require.NoError(t, w.WriteLine(""))

	assert.Equal(t, "hello\n\n", buf.String())
}

func TestWriteLineRejectsOversize(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	err := w.WriteLine(strings.Repeat("a", MaxOutbound+1))
	assert.ErrorIs(t, err, ErrTooLong)
	assert.Zero(t, buf.Len())

	require.NoError(t, w.WriteLine(strings.Repeat("a", MaxOutbound)))
}

func TestWriteLineRejectsEmbeddedNewline(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	err := w.WriteLine("two\nlines")
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestWriteLinesSplitsBlocks(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteLines("first\nsecond\nthird"))
	assert.Equal(t, "first\nsecond\nthird\n", buf.String())
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteLine("alpha: hello"))
	require.NoError(t, w.WriteLine("beta joined"))

	r := NewReader(&buf)
	line, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "alpha: hello", line)

	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "beta joined", line)
}
