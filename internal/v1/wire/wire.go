// Package wire frames the chat protocol: UTF-8 text lines terminated by
// '\n', with an optional '\r' before the terminator stripped on the way in.
// Inbound payloads are capped at MaxInbound bytes; outbound lines at
// MaxOutbound. An oversize inbound line is reported once and then skipped,
// even when the skip spans several reads, so one abusive line never costs
// the connection.
package wire

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	// MaxInbound is the largest accepted payload of a single client line,
	// excluding the line terminator.
	MaxInbound = 400

	// MaxOutbound is the largest payload the server writes in a single line.
	// Server-originated lines wrap client text in short templates, so a
	// fixed margin over MaxInbound is enough.
	MaxOutbound = MaxInbound + 100
)

var (
	// ErrTooLong reports a line exceeding the reader's or writer's limit.
	ErrTooLong = errors.New("wire: line exceeds maximum length")

	// ErrInvalidUTF8 reports an inbound line that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("wire: line is not valid UTF-8")
)

// Reader reads '\n'-terminated lines with a maximum payload length.
type Reader struct {
	br         *bufio.Reader
	max        int
	discarding bool
}

// NewReader returns a Reader limited to MaxInbound payload bytes.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, MaxInbound)
}

// NewReaderSize returns a Reader limited to max payload bytes per line.
func NewReaderSize(r io.Reader, max int) *Reader {
	// The buffer admits max payload bytes plus "\r\n". A line that cannot
	// terminate within the buffer is oversize by construction.
	return &Reader{
		br:  bufio.NewReaderSize(r, max+2),
		max: max,
	}
}

// ReadLine returns the next line with its terminator (and any trailing '\r')
// removed.
//
// An oversize line yields ErrTooLong exactly once; the remainder of that
// line is skipped on the following call and the stream then resumes with
// the next line. A final line at EOF without a terminator is delivered;
// the EOF is reported on the call after it. Lines that are not valid UTF-8
// yield ErrInvalidUTF8.
func (r *Reader) ReadLine() (string, error) {
	if r.discarding {
		if err := r.skipLine(); err != nil {
			return "", err
		}
		r.discarding = false
	}

	line, err := r.br.ReadSlice('\n')
	switch {
	case err == nil:
		return r.checkLine(trimLine(line))
	case errors.Is(err, bufio.ErrBufferFull):
		// No terminator within max+2 buffered bytes: the payload cannot fit
		// the limit. Skip the rest of the line on the next call.
		r.discarding = true
		return "", ErrTooLong
	case errors.Is(err, io.EOF) && len(line) > 0:
		// Stream ended mid-line; deliver what arrived.
		return r.checkLine(trimLine(line))
	default:
		return "", err
	}
}

func (r *Reader) checkLine(s string) (string, error) {
	if len(s) > r.max {
		return "", ErrTooLong
	}
	if !utf8.ValidString(s) {
		return "", ErrInvalidUTF8
	}
	return s, nil
}

// skipLine consumes input through the next '\n'.
func (r *Reader) skipLine() error {
	for {
		_, err := r.br.ReadSlice('\n')
		if err == nil {
			return nil
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return err
	}
}

// trimLine drops the trailing '\n', then a trailing '\r' if present.
func trimLine(line []byte) string {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
	}
	if n > 0 && line[n-1] == '\r' {
		n--
	}
	return string(line[:n])
}

// Writer writes '\n'-terminated lines with a maximum payload length.
type Writer struct {
	bw  *bufio.Writer
	max int
}

// NewWriter returns a Writer limited to MaxOutbound payload bytes.
func NewWriter(w io.Writer) *Writer {
	return NewWriterSize(w, MaxOutbound)
}

// NewWriterSize returns a Writer limited to max payload bytes per line.
func NewWriterSize(w io.Writer, max int) *Writer {
	return &Writer{
		bw:  bufio.NewWriterSize(w, max+1),
		max: max,
	}
}

// WriteLine writes s followed by '\n' and flushes. s must not contain a
// raw '\n' (use WriteLines for multi-line text) and must fit the limit.
func (w *Writer) WriteLine(s string) error {
	if len(s) > w.max {
		return fmt.Errorf("%w: %d bytes", ErrTooLong, len(s))
	}
	if strings.ContainsRune(s, '\n') {
		return errors.New("wire: line contains embedded newline")
	}
	if _, err := w.bw.WriteString(s); err != nil {
		return err
	}
	if err := w.bw.WriteByte('\n'); err != nil {
		return err
	}
	return w.bw.Flush()
}

// WriteLines splits s on '\n' and writes each piece as its own line.
func (w *Writer) WriteLines(s string) error {
	for _, line := range strings.Split(s, "\n") {
		if err := w.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}
