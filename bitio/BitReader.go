package bitio

import "io"

// BitReader reads bits, MSB first, from an in-memory byte slice.
type BitReader struct {
	data   []byte
	bitPos uint64
}

func NewBitReader(data []byte) *BitReader {
	return &BitReader{data: data}
}

// NewBitReaderFromReader drains in completely before reading starts.
func NewBitReaderFromReader(in io.Reader) (*BitReader, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	return NewBitReader(data), nil
}

func (br *BitReader) BitsLeft() uint64 {
	return uint64(len(br.data))*8 - br.bitPos
}

func (br *BitReader) AtEnd() bool {
	return br.BitsLeft() == 0
}

// read single bit.
func (br *BitReader) readBit() (uint8, error) {
	if br.bitPos >= uint64(len(br.data))*8 {
		return 0, ErrEndOfStream
	}
	b := br.data[br.bitPos>>3]
	bit := (b >> (7 - br.bitPos&7)) & 1
	br.bitPos++
	return bit, nil
}

func (br *BitReader) ReadBit() (uint8, error) {
	return br.readBit()
}

func (br *BitReader) ReadBool() (bool, error) {
	v, err := br.readBit()
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

// ReadBits reads up to 32 bits. Nothing is consumed if there are not enough
// bits left.
func (br *BitReader) ReadBits(bits int) (uint32, error) {
	if bits < 0 || bits > 32 {
		return 0, ErrInvalidNumBits
	}
	if bits == 0 {
		return 0, nil
	}
	if uint64(bits) > br.BitsLeft() {
		return 0, ErrEndOfStream
	}

	var v uint32
	for i := 0; i < bits; i++ {
		b, _ := br.readBit()
		v = v<<1 | uint32(b)
	}
	return v, nil
}

// ShowBits peeks at the next bits without consuming them.
func (br *BitReader) ShowBits(bits int) (uint32, error) {
	pos := br.bitPos
	v, err := br.ReadBits(bits)
	br.bitPos = pos
	return v, err
}

// ReadByte satisfies io.ByteReader. Takes the fast path when aligned.
func (br *BitReader) ReadByte() (byte, error) {
	if br.bitPos&7 == 0 {
		idx := br.bitPos >> 3
		if idx >= uint64(len(br.data)) {
			return 0, ErrEndOfStream
		}
		br.bitPos += 8
		return br.data[idx], nil
	}
	v, err := br.ReadBits(8)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}

// PeekPreviousByte returns the last byte that had any of its bits consumed.
func (br *BitReader) PeekPreviousByte() (uint8, error) {
	if br.bitPos == 0 {
		return 0, ErrEndOfStream
	}
	return br.data[(br.bitPos-1)>>3], nil
}

func (br *BitReader) SkipBits(bits uint64) error {
	if bits > br.BitsLeft() {
		return ErrEndOfStream
	}
	br.bitPos += bits
	return nil
}

func (br *BitReader) BitsUntilByteAligned() int {
	return int((8 - br.bitPos&7) & 7)
}

func (br *BitReader) BitsRead() uint64 {
	return br.bitPos
}

// ZeroPadToByte skips to the next byte boundary. Padding has to be zero.
func (br *BitReader) ZeroPadToByte() error {
	remaining := br.BitsUntilByteAligned()
	if remaining == 0 {
		return nil
	}
	padding, err := br.ReadBits(remaining)
	if err != nil {
		return err
	}
	if padding != 0 {
		return ErrNonZeroPadding
	}
	return nil
}
