package bitio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteBits(t *testing.T) {

	for _, tc := range []struct {
		name         string
		values       []uint32
		numBits      []int
		expected     []byte
		expectedBits uint64
	}{
		{
			name:         "single byte",
			values:       []uint32{0xAB},
			numBits:      []int{8},
			expected:     []byte{0xAB},
			expectedBits: 8,
		},
		{
			name:         "nibbles",
			values:       []uint32{0xA, 0xB, 0xC},
			numBits:      []int{4, 4, 4},
			expected:     []byte{0xAB, 0xC0},
			expectedBits: 12,
		},
		{
			name:         "value masked to width",
			values:       []uint32{0xFFFF},
			numBits:      []int{3},
			expected:     []byte{0xE0},
			expectedBits: 3,
		},
		{
			name:         "32 bits unaligned",
			values:       []uint32{1, 0xDEADBEEF},
			numBits:      []int{1, 32},
			expected:     []byte{0xEF, 0x56, 0xDF, 0x77, 0x80},
			expectedBits: 33,
		},
		{
			name:         "zero bits",
			values:       []uint32{5},
			numBits:      []int{0},
			expected:     []byte{},
			expectedBits: 0,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bw := NewBitWriter()
			for i := range tc.values {
				bw.WriteBits(tc.values[i], tc.numBits[i])
			}
			assert.Equal(t, tc.expected, bw.Bytes())
			assert.Equal(t, tc.expectedBits, bw.NumberOfWrittenBits())
		})
	}
}

func TestWriteByteAlignment(t *testing.T) {
	bw := NewBitWriter()
	bw.WriteBits(0x5, 3)
	bw.WriteByteAlignment()
	assert.Equal(t, []byte{0xB0}, bw.Bytes())
	assert.Equal(t, 0, bw.BitsUntilByteAligned())

	// already aligned still writes a full byte
	bw.WriteByteAlignment()
	assert.Equal(t, []byte{0xB0, 0x80}, bw.Bytes())
}

func TestWriteByteAndReset(t *testing.T) {
	bw := NewBitWriterWithCapacity(4)
	assert.NoError(t, bw.WriteByte(0x12))
	bw.WriteBit(1)
	assert.Equal(t, 7, bw.BitsUntilByteAligned())
	bw.WriteAlignZero()
	assert.Equal(t, []byte{0x12, 0x80}, bw.Bytes())

	bw.Reset()
	assert.Equal(t, []byte{}, bw.Bytes())
	assert.Equal(t, uint64(0), bw.NumberOfWrittenBits())
}

func TestWriteThenRead(t *testing.T) {
	bw := NewBitWriter()
	bw.WriteBits(0x3, 2)
	bw.WriteBits(0x1234, 16)
	bw.WriteBits(0x1, 1)
	bw.WriteAlignZero()

	br := NewBitReader(bw.Bytes())
	v, err := br.ReadBits(2)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x3), v)
	v, err = br.ReadBits(16)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x1234), v)
	b, err := br.ReadBool()
	assert.NoError(t, err)
	assert.True(t, b)
	assert.NoError(t, br.ZeroPadToByte())
	assert.True(t, br.AtEnd())
}
