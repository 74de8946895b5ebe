package bitio

// BitWriter appends bits, MSB first, to a growable byte buffer.
type BitWriter struct {
	buffer      []byte
	held        uint8
	heldBits    int
	bitsWritten uint64
}

func NewBitWriter() *BitWriter {
	return &BitWriter{}
}

// NewBitWriterWithCapacity preallocates the buffer. Handy when the caller
// has a rough idea of the output size (eg. number of symbols).
func NewBitWriterWithCapacity(capacity int) *BitWriter {
	return &BitWriter{buffer: make([]byte, 0, capacity)}
}

// WriteBits writes the low numBits of value, most significant first.
func (bw *BitWriter) WriteBits(value uint32, numBits int) {
	if numBits < 0 || numBits > 32 {
		panic(ErrInvalidNumBits)
	}
	if numBits == 0 {
		return
	}

	v := uint64(value)
	if numBits < 32 {
		v &= (uint64(1) << numBits) - 1
	}
	acc := uint64(bw.held)<<numBits | v
	total := bw.heldBits + numBits
	for total >= 8 {
		total -= 8
		bw.buffer = append(bw.buffer, byte(acc>>total))
	}
	bw.held = uint8(acc & ((uint64(1) << total) - 1))
	bw.heldBits = total
	bw.bitsWritten += uint64(numBits)
}

func (bw *BitWriter) WriteBit(bit uint8) {
	bw.WriteBits(uint32(bit&1), 1)
}

// WriteByte satisfies io.ByteWriter. Never fails.
func (bw *BitWriter) WriteByte(b byte) error {
	bw.WriteBits(uint32(b), 8)
	return nil
}

// WriteAlignZero pads with zero bits up to the next byte boundary.
func (bw *BitWriter) WriteAlignZero() {
	if bw.heldBits == 0 {
		return
	}
	bw.WriteBits(0, 8-bw.heldBits)
}

// WriteByteAlignment writes a single one bit followed by zero bits up to the
// next byte boundary. Always writes at least one bit.
func (bw *BitWriter) WriteByteAlignment() {
	bw.WriteBits(1, 1)
	bw.WriteAlignZero()
}

func (bw *BitWriter) BitsUntilByteAligned() int {
	return (8 - bw.heldBits) & 7
}

func (bw *BitWriter) NumberOfWrittenBits() uint64 {
	return bw.bitsWritten
}

// Bytes returns a copy of everything written so far. A trailing partial byte
// is zero padded in the copy only, the writer itself is left untouched.
func (bw *BitWriter) Bytes() []byte {
	out := make([]byte, len(bw.buffer), len(bw.buffer)+1)
	copy(out, bw.buffer)
	if bw.heldBits > 0 {
		out = append(out, bw.held<<(8-bw.heldBits))
	}
	return out
}

func (bw *BitWriter) Reset() {
	bw.buffer = bw.buffer[:0]
	bw.held = 0
	bw.heldBits = 0
	bw.bitsWritten = 0
}
