package bitio

import "errors"

var (
	ErrEndOfStream    = errors.New("read past end of stream")
	ErrNotAligned     = errors.New("stream is not byte aligned")
	ErrInvalidNumBits = errors.New("must read or write between 0-32 bits, inclusive")
	ErrNonZeroPadding = errors.New("nonzero zero-padding-to-byte")
)

// BitSink is what the arithmetic encoder writes to.
type BitSink interface {
	WriteBits(value uint32, numBits int)
	WriteByteAlignment()
	NumberOfWrittenBits() uint64
}

// BitSource is what the arithmetic decoder reads from.
type BitSource interface {
	ReadByte() (byte, error)
	PeekPreviousByte() (uint8, error)
	BitsUntilByteAligned() int
	BitsRead() uint64
}
