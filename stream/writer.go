package stream

import (
	"errors"
	"math"
)

// DefaultMaxSize bounds Writer output when no explicit size is configured.
const DefaultMaxSize = 64 << 10

// ErrOverflow is returned when a write would exceed the writer's maximum size.
var ErrOverflow = errors.New("stream: output exceeds maximum size")

// Writer accumulates encoded bytes up to a maximum size.
type Writer struct {
	buf     []byte
	maxSize int
}

// NewWriter creates a Writer bounded to maxSize bytes.
// maxSize <= 0 means unbounded.
func NewWriter(maxSize int) *Writer {
	return &Writer{maxSize: maxSize}
}

// Bytes returns the written bytes without transferring ownership.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// MaxSize returns the configured bound, 0 if unbounded.
func (w *Writer) MaxSize() int {
	if w.maxSize <= 0 {
		return 0
	}
	return w.maxSize
}

// Available returns how many more bytes may be written.
func (w *Writer) Available() int {
	if w.maxSize <= 0 {
		return math.MaxInt
	}
	return w.maxSize - len(w.buf)
}

// Write appends p. It implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) > w.Available() {
		return 0, ErrOverflow
	}
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// WriteByte appends a single byte.
func (w *Writer) WriteByte(b byte) error {
	if w.Available() < 1 {
		return ErrOverflow
	}
	w.buf = append(w.buf, b)
	return nil
}

// WriteString appends s without an intermediate copy.
func (w *Writer) WriteString(s string) (int, error) {
	if len(s) > w.Available() {
		return 0, ErrOverflow
	}
	w.buf = append(w.buf, s...)
	return len(s), nil
}

// Release transfers ownership of the accumulated bytes to the caller and
// resets the writer. The bound is kept.
func (w *Writer) Release() []byte {
	out := w.buf
	w.buf = nil
	return out
}

// Reset discards written bytes but keeps the allocated capacity.
func (w *Writer) Reset(maxSize int) {
	w.buf = w.buf[:0]
	w.maxSize = maxSize
}
