package encoding

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// writeUvarint appends n to buf using the standard LEB128 unsigned varint
// encoding, the same binary.PutUvarint scheme used to pack integers
// elsewhere in the retrieved corpus.
func writeUvarint(buf []byte, n uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	w := binary.PutUvarint(tmp[:], n)
	return append(buf, tmp[:w]...)
}

// zigzagEncode maps a signed value onto the unsigned range so small
// negative numbers also encode to few bytes: 0,-1,1,-2,2 -> 0,1,2,3,4.
func zigzagEncode(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

// zigzagDecode reverses zigzagEncode.
func zigzagDecode(n uint64) int64 {
	return int64(n>>1) ^ -int64(n&1)
}

// writeZigzag appends the zigzag-encoded form of n.
func writeZigzag(buf []byte, n int64) []byte {
	return writeUvarint(buf, zigzagEncode(n))
}

// cursor is a read position into a decoded chunk's body. Every chunk body
// is parsed with one of these rather than an io.Reader, since chunks are
// always read fully into memory first (spec §6: length-prefixed, so the
// whole body is available up front).
type cursor struct {
	data []byte
	pos  int
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

func (c *cursor) remaining() int {
	return len(c.data) - c.pos
}

func (c *cursor) uvarint() (uint64, error) {
	n, w := binary.Uvarint(c.data[c.pos:])
	if w <= 0 {
		return 0, errors.Wrap(ErrMalformedChunk, "encoding: truncated or oversized varint")
	}
	c.pos += w
	return n, nil
}

func (c *cursor) zigzag() (int64, error) {
	n, err := c.uvarint()
	if err != nil {
		return 0, err
	}
	return zigzagDecode(n), nil
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || n > c.remaining() {
		return nil, errors.Wrap(ErrMalformedChunk, "encoding: chunk body too short")
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) string(n int) (string, error) {
	b, err := c.bytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *cursor) lenPrefixedBytes() ([]byte, error) {
	n, err := c.uvarint()
	if err != nil {
		return nil, err
	}
	return c.bytes(int(n))
}

func (c *cursor) lenPrefixedString() (string, error) {
	b, err := c.lenPrefixedBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// stripBit pops the low bit off *n, shifting the rest right -- the
// flag-packed-into-a-varint pattern spec §6 uses for AgentAssignment and
// Frontier elements. TimeDAG parents are written as plain varints and do
// not use it.
func stripBit(n *uint64) bool {
	bit := *n&1 == 1
	*n >>= 1
	return bit
}

// withBit shifts n left and sets its new low bit to bit. Pushing bits with
// this in the reverse order they'll later be stripped reconstructs the
// same packed value.
func withBit(n uint64, bit bool) uint64 {
	n <<= 1
	if bit {
		n |= 1
	}
	return n
}

func writeLenPrefixed(buf []byte, b []byte) []byte {
	buf = writeUvarint(buf, uint64(len(b)))
	return append(buf, b...)
}
