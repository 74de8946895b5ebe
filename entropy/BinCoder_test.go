package entropy

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/kpfaulkner/cabac-go/bitio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type opKind int

const (
	opContext opKind = iota
	opBypass
	opBypassBins
	opTerminate
	opRice
	opAlign
)

type codingOp struct {
	kind    opKind
	value   uint32
	ctxID   uint32
	numBins int
	rice    uint32
}

const (
	testCutoff  = 5
	testMaxLog2 = 15
)

func encodeOps(t *testing.T, bank *ContextBank, ops []codingOp) []byte {
	t.Helper()

	bw := bitio.NewBitWriter()
	enc := NewBinEncoder(bw, bank)
	enc.Start()
	for _, op := range ops {
		switch op.kind {
		case opContext:
			require.NoError(t, enc.EncodeBin(uint8(op.value), op.ctxID))
		case opBypass:
			enc.EncodeBinEP(uint8(op.value))
		case opBypassBins:
			enc.EncodeBinsEP(op.value, op.numBins)
		case opTerminate:
			enc.EncodeBinTrm(uint8(op.value))
		case opRice:
			require.NoError(t, enc.EncodeRemAbsEP(op.value, op.rice, testCutoff, testMaxLog2))
		case opAlign:
			enc.Align()
		}
	}
	enc.EncodeBinTrm(1)
	enc.Finish()
	enc.WriteByteAlignment()
	return bw.Bytes()
}

func decodeOps(t *testing.T, bank *ContextBank, data []byte, ops []codingOp) {
	t.Helper()

	dec := NewBinDecoder(bitio.NewBitReader(data), bank)
	require.NoError(t, dec.Start())
	for i, op := range ops {
		var got uint32
		switch op.kind {
		case opContext:
			bin, err := dec.DecodeBin(op.ctxID)
			require.NoError(t, err)
			got = uint32(bin)
		case opBypass:
			bin, err := dec.DecodeBinEP()
			require.NoError(t, err)
			got = uint32(bin)
		case opBypassBins:
			bins, err := dec.DecodeBinsEP(op.numBins)
			require.NoError(t, err)
			got = bins
		case opTerminate:
			bin, err := dec.DecodeBinTrm()
			require.NoError(t, err)
			got = uint32(bin)
		case opRice:
			v, err := dec.DecodeRemAbsEP(op.rice, testCutoff, testMaxLog2)
			require.NoError(t, err)
			got = v
		case opAlign:
			dec.Align()
			got = op.value
		}
		require.Equal(t, op.value, got, "op %d kind %d", i, op.kind)
	}
	bin, err := dec.DecodeBinTrm()
	require.NoError(t, err)
	require.Equal(t, uint8(1), bin)
	require.NoError(t, dec.Finish())
}

func randomOps(rnd *rand.Rand, n int, numContexts int) []codingOp {
	ops := make([]codingOp, 0, n)
	for i := 0; i < n; i++ {
		switch k := rnd.Intn(20); {
		case k < 12:
			ctx := uint32(rnd.Intn(numContexts))
			// skew each context so adaptation has something to learn
			bin := uint32(0)
			if rnd.Intn(10) < int(ctx%10) {
				bin = 1
			}
			ops = append(ops, codingOp{kind: opContext, value: bin, ctxID: ctx})
		case k < 15:
			ops = append(ops, codingOp{kind: opBypass, value: uint32(rnd.Intn(2))})
		case k < 17:
			numBins := rnd.Intn(33)
			v := rnd.Uint32()
			if numBins < 32 {
				v &= 1<<numBins - 1
			}
			ops = append(ops, codingOp{kind: opBypassBins, value: v, numBins: numBins})
		case k < 18:
			ops = append(ops, codingOp{kind: opTerminate, value: 0})
		case k < 19:
			ops = append(ops, codingOp{kind: opRice, value: uint32(rnd.Intn(1 << testMaxLog2)), rice: uint32(rnd.Intn(5))})
		default:
			ops = append(ops, codingOp{kind: opAlign})
		}
	}
	return ops
}

func TestBinCoderEmptyUnit(t *testing.T) {
	bank, err := NewContextBank(1, 0.5, 8)
	require.NoError(t, err)

	data := encodeOps(t, bank, nil)
	assert.Equal(t, []byte{0xFE, 0x80}, data)
	decodeOps(t, bank.Clone(), data, nil)
}

func TestBinCoderSingleBypassBin(t *testing.T) {
	bank, err := NewContextBank(1, 0.5, 8)
	require.NoError(t, err)

	ops := []codingOp{{kind: opBypass, value: 1}}
	data := encodeOps(t, bank, ops)
	assert.Equal(t, []byte{0xFE, 0xC0}, data)
	decodeOps(t, bank.Clone(), data, ops)
}

func TestBinCoderRoundTrip(t *testing.T) {

	for _, tc := range []struct {
		name        string
		seed        int64
		numOps      int
		numContexts int
		p1          float64
		shiftIdx    uint8
	}{
		{
			name:        "short",
			seed:        1,
			numOps:      10,
			numContexts: 1,
			p1:          0.5,
			shiftIdx:    8,
		},
		{
			name:        "many contexts",
			seed:        2,
			numOps:      5000,
			numContexts: 37,
			p1:          0.5,
			shiftIdx:    4,
		},
		{
			name:        "skewed init",
			seed:        3,
			numOps:      5000,
			numContexts: 10,
			p1:          0.02,
			shiftIdx:    0,
		},
		{
			name:        "slow adaptation",
			seed:        4,
			numOps:      20000,
			numContexts: 171,
			p1:          0.9,
			shiftIdx:    15,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rnd := rand.New(rand.NewSource(tc.seed))
			ops := randomOps(rnd, tc.numOps, tc.numContexts)

			bank, err := NewContextBank(tc.numContexts, tc.p1, tc.shiftIdx)
			require.NoError(t, err)
			initial := bank.Clone()

			data := encodeOps(t, bank, ops)
			decodeOps(t, initial, data, ops)
		})
	}
}

func TestBinCoderRiceEscapes(t *testing.T) {
	var ops []codingOp
	for _, rice := range []uint32{0, 1, 4, 14} {
		for _, v := range []uint32{0, 1, 4, 5, 31, 4099, 4100, 4101, 20000, 1<<testMaxLog2 - 1} {
			ops = append(ops, codingOp{kind: opRice, value: v, rice: rice})
		}
	}

	bank, err := NewContextBank(1, 0.5, 8)
	require.NoError(t, err)
	data := encodeOps(t, bank, ops)
	decodeOps(t, bank.Clone(), data, ops)
}

func TestBinCoderRiceInvalidParams(t *testing.T) {
	bank, err := NewContextBank(1, 0.5, 8)
	require.NoError(t, err)
	enc := NewBinEncoder(bitio.NewBitWriter(), bank)
	enc.Start()

	for _, tc := range []struct {
		name    string
		value   uint32
		rice    uint32
		cutoff  uint32
		maxLog2 int
	}{
		{name: "value exceeds dynamic range", value: 1 << 15, rice: 0, cutoff: 5, maxLog2: 15},
		{name: "zero cutoff", value: 1, rice: 0, cutoff: 0, maxLog2: 15},
		{name: "cutoff too large", value: 1, rice: 0, cutoff: 17, maxLog2: 15},
		{name: "rice param too large", value: 1, rice: 15, cutoff: 5, maxLog2: 15},
		{name: "dynamic range too large", value: 1, rice: 0, cutoff: 5, maxLog2: 32},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := enc.EncodeRemAbsEP(tc.value, tc.rice, tc.cutoff, tc.maxLog2)
			assert.True(t, errors.Is(err, ErrInvalidRiceParams), "got %v", err)
		})
	}
}

// bypass bins never consult a model so the bank used for decoding is irrelevant.
func TestBinCoderBypassIgnoresContexts(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	var ops []codingOp
	for i := 0; i < 500; i++ {
		ops = append(ops, codingOp{kind: opBypass, value: uint32(rnd.Intn(2))})
	}
	ops = append(ops, codingOp{kind: opBypassBins, value: 0xdeadbeef, numBins: 32})

	bank, err := NewContextBank(1, 0.5, 8)
	require.NoError(t, err)
	data := encodeOps(t, bank, ops)

	other, err := NewContextBank(3, 0.01, 0)
	require.NoError(t, err)
	decodeOps(t, other, data, ops)
}

func TestBinCoderCompressesSkewedSource(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))
	ops := make([]codingOp, 10000)
	for i := range ops {
		bin := uint32(0)
		if rnd.Intn(100) < 5 {
			bin = 1
		}
		ops[i] = codingOp{kind: opContext, value: bin}
	}

	bank, err := NewContextBank(1, 0.5, 8)
	require.NoError(t, err)
	data := encodeOps(t, bank.Clone(), ops)
	assert.Less(t, len(data)*8, 5000)
	decodeOps(t, bank, data, ops)
}

func TestBinDecoderErrors(t *testing.T) {
	bank, err := NewContextBank(2, 0.5, 8)
	require.NoError(t, err)

	t.Run("not started", func(t *testing.T) {
		dec := NewBinDecoder(bitio.NewBitReader([]byte{0xFE, 0x80}), bank.Clone())
		_, err := dec.DecodeBin(0)
		assert.True(t, errors.Is(err, ErrNotStarted))
		_, err = dec.DecodeBinEP()
		assert.True(t, errors.Is(err, ErrNotStarted))
		assert.True(t, errors.Is(dec.Finish(), ErrNotStarted))
	})

	t.Run("empty stream", func(t *testing.T) {
		dec := NewBinDecoder(bitio.NewBitReader(nil), bank.Clone())
		err := dec.Start()
		assert.True(t, errors.Is(err, ErrCorruptStream))
		assert.True(t, errors.Is(err, bitio.ErrEndOfStream))
	})

	t.Run("truncated stream", func(t *testing.T) {
		rnd := rand.New(rand.NewSource(5))
		ops := randomOps(rnd, 2000, 2)
		data := encodeOps(t, bank.Clone(), ops)

		dec := NewBinDecoder(bitio.NewBitReader(data[:len(data)/2]), bank.Clone())
		require.NoError(t, dec.Start())
		var decodeErr error
		for _, op := range ops {
			switch op.kind {
			case opContext:
				_, decodeErr = dec.DecodeBin(op.ctxID)
			case opBypass:
				_, decodeErr = dec.DecodeBinEP()
			case opBypassBins:
				_, decodeErr = dec.DecodeBinsEP(op.numBins)
			case opTerminate:
				_, decodeErr = dec.DecodeBinTrm()
			case opRice:
				_, decodeErr = dec.DecodeRemAbsEP(op.rice, testCutoff, testMaxLog2)
			case opAlign:
				dec.Align()
			}
			if decodeErr != nil {
				break
			}
		}
		assert.True(t, errors.Is(decodeErr, ErrCorruptStream), "got %v", decodeErr)
	})

	t.Run("missing stop pattern", func(t *testing.T) {
		dec := NewBinDecoder(bitio.NewBitReader([]byte{0xFE, 0x00}), bank.Clone())
		require.NoError(t, dec.Start())
		bin, err := dec.DecodeBinTrm()
		require.NoError(t, err)
		assert.Equal(t, uint8(1), bin)
		assert.True(t, errors.Is(dec.Finish(), ErrCorruptStream))
	})

	t.Run("context out of range", func(t *testing.T) {
		dec := NewBinDecoder(bitio.NewBitReader([]byte{0xFE, 0x80}), bank.Clone())
		require.NoError(t, dec.Start())
		_, err := dec.DecodeBin(2)
		assert.True(t, errors.Is(err, ErrContextOutOfRange))
	})

	t.Run("unaligned source", func(t *testing.T) {
		br := bitio.NewBitReader([]byte{0xFE, 0x80, 0x00})
		_, err := br.ReadBit()
		require.NoError(t, err)
		dec := NewBinDecoder(br, bank.Clone())
		assert.True(t, errors.Is(dec.Start(), bitio.ErrNotAligned))
	})

	t.Run("too many bypass bins", func(t *testing.T) {
		dec := NewBinDecoder(bitio.NewBitReader([]byte{0xFE, 0x80}), bank.Clone())
		require.NoError(t, dec.Start())
		_, err := dec.DecodeBinsEP(33)
		assert.True(t, errors.Is(err, ErrInvalidNumBins))
	})
}

func TestBinEncoderErrors(t *testing.T) {
	bank, err := NewContextBank(2, 0.5, 8)
	require.NoError(t, err)

	enc := NewBinEncoder(bitio.NewBitWriter(), bank)
	assert.Panics(t, func() { enc.EncodeBinEP(1) })

	enc.Start()
	assert.True(t, errors.Is(enc.EncodeBin(0, 2), ErrContextOutOfRange))
	assert.Panics(t, func() { enc.EncodeBinsEP(0, 33) })

	enc.EncodeBinTrm(1)
	enc.Finish()
	assert.Panics(t, func() { enc.EncodeBinTrm(1) })
}

func TestBinEncoderNumWrittenBits(t *testing.T) {
	bank, err := NewContextBank(1, 0.5, 8)
	require.NoError(t, err)
	bw := bitio.NewBitWriter()
	enc := NewBinEncoder(bw, bank)
	enc.Start()
	assert.Equal(t, uint64(0), enc.NumWrittenBits())

	enc.EncodeBinsEP(0x12345, 20)
	assert.Equal(t, uint64(20), enc.NumWrittenBits())

	enc.EncodeBinTrm(1)
	enc.Finish()
	enc.WriteByteAlignment()
	assert.GreaterOrEqual(t, len(bw.Bytes())*8, 20)
}
