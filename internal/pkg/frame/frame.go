// Package frame splits a robot byte stream into message bodies.
//
// A frame is a body followed by the terminator {0x07, 0x08}. The reader
// enforces a per-call length budget so that a misbehaving robot is cut off as
// soon as it exceeds what the current session state can accept, instead of
// after the whole frame has arrived.
package frame

import (
	"bufio"
	"fmt"
	"io"

	"robonav/internal/pkg/message"

	"github.com/pkg/errors"
)

const (
	bell      byte = 0x07
	backspace byte = 0x08

	// interruptMaxLen bounds the RECHARGING / FULL POWER carve-out.
	interruptMaxLen = 12
)

var (
	// ErrMessageTooLong is matched by every TooLongError.
	ErrMessageTooLong = errors.New("message too long")
	// ErrConnectionClosed is returned when the peer closes the stream mid-read.
	ErrConnectionClosed = errors.New("connection closed")
)

var interruptKeywords = [][]byte{
	[]byte(message.RechargingKeyword),
	[]byte(message.FullPowerKeyword),
}

// TooLongError reports a body that overflowed its length budget.
type TooLongError struct {
	Body string
	Len  int
}

func (e *TooLongError) Error() string {
	return fmt.Sprintf("message too long: %q (%d bytes)", e.Body, e.Len)
}

func (e *TooLongError) Unwrap() error { return ErrMessageTooLong }

// TransportError wraps a failure of the underlying stream, including timeouts.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + " failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Reader reads frames from a byte stream.
type Reader struct {
	r io.ByteReader
}

// NewReader creates a Reader over r, buffering it unless it already reads bytes.
func NewReader(r io.Reader) *Reader {
	if br, ok := r.(io.ByteReader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

// Read returns the next frame body. maxLen is the budget for the body plus
// the terminator; a body longer than maxLen-2 fails with a TooLongError
// unless it is still a prefix of an interrupt keyword within 12 bytes.
func (r *Reader) Read(maxLen int) (string, error) {
	var buf []byte
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return "", ErrConnectionClosed
			}
			return "", &TransportError{Op: "read", Err: err}
		}
		if b == backspace && len(buf) > 0 && buf[len(buf)-1] == bell {
			return string(buf[:len(buf)-1]), nil
		}
		buf = append(buf, b)
		if overflows(maxLen, buf) && !(isInterruptPrefix(buf) && !overflows(interruptMaxLen, buf)) {
			return "", &TooLongError{Body: string(buf), Len: len(buf)}
		}
	}
}

// overflows reports whether buf no longer fits a frame of maxLen. A trailing
// bell in the last permitted position is the start of the terminator.
func overflows(maxLen int, buf []byte) bool {
	n := len(buf)
	if n <= maxLen-2 {
		return false
	}
	return !(n == maxLen-1 && buf[n-1] == bell)
}

func isInterruptPrefix(buf []byte) bool {
	for _, kw := range interruptKeywords {
		n := len(buf)
		if n > len(kw) {
			n = len(kw)
		}
		if string(buf[:n]) == string(kw[:n]) {
			return true
		}
	}
	return false
}

// Write sends body followed by the terminator.
func Write(w io.Writer, body string) error {
	payload := append([]byte(body), message.Terminator...)
	if _, err := w.Write(payload); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}
