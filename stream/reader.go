package stream

import (
	"fmt"
	"io"
)

// Reader reads from a byte slice with position tracking.
type Reader struct {
	data []byte
	pos  int
	base int // absolute offset of data[0] in the outermost stream
}

// NewReader creates a Reader over data. The slice is not copied.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the absolute byte position, counting from the start of
// the outermost stream for substreams.
func (r *Reader) Position() int {
	return r.base + r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Remaining returns the unread bytes without consuming them.
// The returned slice aliases the reader's data.
func (r *Reader) Remaining() []byte {
	return r.data[r.pos:]
}

// Skip advances past n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || n > r.Len() {
		return r.wrapError(io.ErrUnexpectedEOF)
	}
	r.pos += n
	return nil
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.Len() == 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// ReadBytes reads exactly n bytes into a fresh slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, r.wrapError(io.ErrUnexpectedEOF)
	}
	buf := make([]byte, n)
	copy(buf, r.data[r.pos:])
	r.pos += n
	return buf, nil
}

// ReadRemaining reads all remaining bytes into a fresh slice.
func (r *Reader) ReadRemaining() []byte {
	buf, _ := r.ReadBytes(r.Len())
	return buf
}

// Sub returns a Reader over the next n bytes and advances past them.
func (r *Reader) Sub(n int) (*Reader, error) {
	if n < 0 || n > r.Len() {
		return nil, r.wrapError(io.ErrUnexpectedEOF)
	}
	sub := &Reader{
		data: r.data[r.pos : r.pos+n : r.pos+n],
		base: r.base + r.pos,
	}
	r.pos += n
	return sub, nil
}

func (r *Reader) wrapError(err error) error {
	return &PositionError{Position: r.Position(), Err: err}
}

// PositionError is a read failure annotated with the absolute stream position.
type PositionError struct {
	Err      error
	Position int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("stream: at position %d: %v", e.Position, e.Err)
}

func (e *PositionError) Unwrap() error {
	return e.Err
}

// WrapError annotates err with the current position.
func (r *Reader) WrapError(err error) error {
	return r.wrapError(err)
}
