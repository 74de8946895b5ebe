package bitio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReadbit tests the reading a single bit.
func TestReadbit(t *testing.T) {

	for _, tc := range []struct {
		name      string
		data      []uint8
		expected  uint8
		expectErr bool
	}{
		{
			name:      "result 1",
			data:      []uint8{0x80},
			expected:  1,
			expectErr: false,
		},
		{
			name:      "result 0",
			data:      []uint8{0x7F},
			expected:  0,
			expectErr: false,
		},
		{
			name:      "no data",
			data:      []uint8{},
			expected:  0,
			expectErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {

			br := NewBitReader(tc.data)

			resp, err := br.readBit()
			if err != nil && !tc.expectErr {
				t.Errorf("got error when none was expected : %v", err)
			}

			if err == nil && tc.expectErr {
				t.Errorf("expected error but got none")
			}

			if resp != tc.expected {
				t.Errorf("expected %v but got %v", tc.expected, resp)
			}
		})
	}
}

// TestReadbits tests the reading multiple bits.
func TestReadbits(t *testing.T) {

	for _, tc := range []struct {
		name      string
		data      []uint8
		numBits   int
		expected  uint32
		expectErr bool
	}{
		{
			name:     "4 bits",
			data:     []uint8{0xF0},
			numBits:  4,
			expected: 15,
		},
		{
			name:     "7 bits",
			data:     []uint8{0xFF},
			numBits:  7,
			expected: 127,
		},
		{
			name:     "10 bits, expecting b1111111100",
			data:     []uint8{0xFF, 0x02},
			numBits:  10,
			expected: 0x3FC,
		},
		{
			name:     "32 bits",
			data:     []uint8{0xFF, 0x02, 0x03, 0xD4},
			numBits:  32,
			expected: 0xFF0203D4,
		},
		{
			name:      "33 bits",
			data:      []uint8{0xFF, 0x02, 0x03, 0xD4, 0x00},
			numBits:   33,
			expectErr: true,
		},
		{
			name:      "not enough data",
			data:      []uint8{0xFF},
			numBits:   9,
			expectErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {

			br := NewBitReader(tc.data)

			resp, err := br.ReadBits(tc.numBits)
			if err != nil && !tc.expectErr {
				t.Errorf("got error when none was expected : %v", err)
			}

			if err == nil && tc.expectErr {
				t.Errorf("expected error but got none")
			}

			if resp != tc.expected {
				t.Errorf("expected %v but got %v", tc.expected, resp)
			}
		})
	}
}

func TestReadByteUnaligned(t *testing.T) {
	br := NewBitReader([]byte{0xAB, 0xCD})
	_, err := br.ReadBits(4)
	require.NoError(t, err)

	b, err := br.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xBC), b)
	assert.Equal(t, 4, br.BitsUntilByteAligned())

	prev, err := br.PeekPreviousByte()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xCD), prev)
}

func TestReadByteEndOfStream(t *testing.T) {
	br := NewBitReader([]byte{0x01})
	b, err := br.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), b)

	_, err = br.ReadByte()
	assert.ErrorIs(t, err, ErrEndOfStream)
	assert.True(t, br.AtEnd())
}

func TestPeekPreviousByteBeforeRead(t *testing.T) {
	br := NewBitReader([]byte{0x01})
	_, err := br.PeekPreviousByte()
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestShowBitsDoesNotConsume(t *testing.T) {
	br := NewBitReader([]byte{0xA5})
	v, err := br.ShowBits(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xA), v)
	assert.Equal(t, uint64(0), br.BitsRead())

	v, err = br.ReadBits(8)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xA5), v)
}

func TestZeroPadToByte(t *testing.T) {

	for _, tc := range []struct {
		name      string
		data      []uint8
		skip      int
		expectErr bool
	}{
		{
			name: "already aligned",
			data: []uint8{0xFF},
		},
		{
			name: "zero padding",
			data: []uint8{0xE0, 0x01},
			skip: 3,
		},
		{
			name:      "non zero padding",
			data:      []uint8{0xE1},
			skip:      3,
			expectErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			br := NewBitReader(tc.data)
			_, err := br.ReadBits(tc.skip)
			require.NoError(t, err)

			err = br.ZeroPadToByte()
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrNonZeroPadding)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, br.BitsUntilByteAligned())
		})
	}
}

func TestNewBitReaderFromReader(t *testing.T) {
	br, err := NewBitReaderFromReader(bytes.NewReader([]byte{0x12, 0x34}))
	require.NoError(t, err)
	assert.Equal(t, uint64(16), br.BitsLeft())

	v, err := br.ReadBits(16)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1234), v)
}

func TestSkipBits(t *testing.T) {
	br := NewBitReader([]byte{0x0F, 0xF0})
	require.NoError(t, br.SkipBits(4))
	v, err := br.ReadBits(8)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFF), v)
	assert.ErrorIs(t, br.SkipBits(5), ErrEndOfStream)
}
