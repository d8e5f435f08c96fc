// Package frame turns a stream of reads from one connection into protocol lines.
package frame

import (
	"bytes"
	"errors"
	"strings"
)

// DefaultMaxLine is the buffer size used when none is configured.
const DefaultMaxLine = 256

// ErrOverflow is reported when the buffer fills up without a line terminator.
var ErrOverflow = errors.New("line exceeds buffer")

// Status describes the outcome of a Feed or Next call.
type Status int

const (
	// NeedMore means no complete line is buffered yet.
	NeedMore Status = iota
	// Line means Result.Text holds one complete line.
	Line
	// Overflow means the buffer filled without a terminator.
	Overflow
	// Closed means the stream ended and no complete lines remain.
	Closed
)

func (s Status) String() string {
	switch s {
	case NeedMore:
		return "need_more"
	case Line:
		return "line"
	case Overflow:
		return "overflow"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Result is a single framing outcome.
type Result struct {
	Status Status
	Text   string
	Err    error
}

// Framer buffers bytes for one connection and splits them on CR, LF or CRLF.
// It is not safe for concurrent use.
type Framer struct {
	buf      []byte
	max      int
	skipLF   bool
	closed   bool
	closeErr error
	overflow bool
}

// New returns a framer whose buffer holds at most max bytes.
func New(max int) *Framer {
	if max <= 0 {
		max = DefaultMaxLine
	}
	return &Framer{
		buf: make([]byte, 0, max),
		max: max,
	}
}

// Max returns the buffer capacity.
func (f *Framer) Max() int {
	return f.max
}

// Buffered returns the number of bytes waiting for a terminator.
func (f *Framer) Buffered() int {
	return len(f.buf)
}

// Feed appends one delivery and returns the first complete line, if any.
// A non-nil readErr marks the stream as ended: lines already buffered are still
// returned by subsequent Next calls before Closed is reported.
func (f *Framer) Feed(p []byte, readErr error) Result {
	if !f.closed && !f.overflow {
		f.buf = append(f.buf, p...)
	}
	if readErr != nil && !f.closed {
		f.closed = true
		f.closeErr = readErr
	}
	return f.Next()
}

// Next returns the next buffered line without consuming new input.
func (f *Framer) Next() Result {
	if f.overflow {
		return Result{Status: Overflow, Err: ErrOverflow}
	}

	// A CR at the end of the previous delivery may be the first half of CRLF.
	if f.skipLF && len(f.buf) > 0 {
		if f.buf[0] == '\n' {
			f.consume(1)
		}
		f.skipLF = false
	}

	// A line and its terminator must fit in max bytes, however many
	// deliveries it took to arrive.
	window := f.buf[:min(len(f.buf), f.max)]
	if i := bytes.IndexAny(window, "\r\n"); i >= 0 {
		text := strings.TrimRight(string(f.buf[:i]), "\r\n\x00")
		next := i + 1
		if f.buf[i] == '\r' {
			switch {
			case next < len(f.buf) && f.buf[next] == '\n':
				next++
			case next == len(f.buf):
				f.skipLF = true
			}
		}
		f.consume(next)
		return Result{Status: Line, Text: text}
	}

	if len(f.buf) >= f.max {
		f.overflow = true
		f.buf = f.buf[:0]
		return Result{Status: Overflow, Err: ErrOverflow}
	}
	if f.closed {
		f.buf = f.buf[:0]
		return Result{Status: Closed, Err: f.closeErr}
	}
	return Result{Status: NeedMore}
}

func (f *Framer) consume(n int) {
	f.buf = append(f.buf[:0], f.buf[n:]...)
}
