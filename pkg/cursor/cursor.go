// Package cursor provides a sequential reader over an immutable byte buffer.
package cursor

import (
	"encoding/binary"
	"fmt"

	"github.com/ssargent/rgbpng/pkg/pngerr"
)

// Cursor reads a byte buffer front to back while tracking its offset.
// The offset never exceeds the buffer length and does not move when a
// read fails.
type Cursor struct {
	buf    []byte
	offset int
}

// New creates a cursor positioned at the start of buf
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset returns the number of bytes consumed so far
func (c *Cursor) Offset() int {
	return c.offset
}

// Remaining returns the number of unread bytes
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.offset
}

// Take returns the next n bytes and advances past them. The returned slice
// aliases the underlying buffer.
func (c *Cursor) Take(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative read of %d bytes", pngerr.ErrOutOfBounds, n)
	}
	if n > c.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			pngerr.ErrOutOfBounds, n, c.offset, c.Remaining())
	}
	b := c.buf[c.offset : c.offset+n : c.offset+n]
	c.offset += n
	return b, nil
}

// TakeUint reads an n-byte unsigned integer (1 <= n <= 8) in the given order.
func (c *Cursor) TakeUint(n int, order binary.ByteOrder) (uint64, error) {
	if n < 1 || n > 8 {
		return 0, fmt.Errorf("cursor: unsupported integer width %d", n)
	}
	b, err := c.Take(n)
	if err != nil {
		return 0, err
	}

	// widen into 8 bytes on the side order treats as least significant
	var buf [8]byte
	if order.Uint16([]byte{0, 1}) == 1 {
		copy(buf[8-n:], b)
	} else {
		copy(buf[:n], b)
	}
	return order.Uint64(buf[:]), nil
}

// TakeUint32 reads a big-endian uint32
func (c *Cursor) TakeUint32() (uint32, error) {
	v, err := c.TakeUint(4, binary.BigEndian)
	return uint32(v), err
}

// TakeUint8 reads a single byte
func (c *Cursor) TakeUint8() (uint8, error) {
	v, err := c.TakeUint(1, binary.BigEndian)
	return uint8(v), err
}
