package entropy

import "github.com/kpfaulkner/cabac-go/bitio"

const (
	rangeStart = 510

	// range after Align, bypass bins then map straight onto stream bits.
	rangeAligned = 256

	// renormalise as soon as range drops below this.
	rangeMin = 256
)

// BinEncoder is the arithmetic encoder. low holds the not yet emitted part of
// the code value, bytes that may still receive a carry are held back in
// bufferedByte / numBufferedBytes.
type BinEncoder struct {
	sink             bitio.BitSink
	contexts         *ContextBank
	low              uint32
	rng              uint32
	bufferedByte     uint32
	numBufferedBytes int32
	bitsLeft         int32
	started          bool
}

func NewBinEncoder(sink bitio.BitSink, contexts *ContextBank) *BinEncoder {
	return &BinEncoder{
		sink:     sink,
		contexts: contexts,
	}
}

func (e *BinEncoder) Contexts() *ContextBank {
	return e.contexts
}

func (e *BinEncoder) Start() {
	e.low = 0
	e.rng = rangeStart
	e.bitsLeft = 23
	e.numBufferedBytes = 0
	e.bufferedByte = 0xff
	e.started = true
}

// Finish flushes everything still held in the registers to the sink. The
// encoder has to be started again before further use.
func (e *BinEncoder) Finish() {
	e.mustBeStarted()

	if e.low>>(32-e.bitsLeft) != 0 {
		e.sink.WriteBits(e.bufferedByte+1, 8)
		for e.numBufferedBytes > 1 {
			e.sink.WriteBits(0x00, 8)
			e.numBufferedBytes--
		}
		e.low -= 1 << (32 - e.bitsLeft)
	} else {
		if e.numBufferedBytes > 0 {
			e.sink.WriteBits(e.bufferedByte, 8)
		}
		for e.numBufferedBytes > 1 {
			e.sink.WriteBits(0xff, 8)
			e.numBufferedBytes--
		}
	}
	e.sink.WriteBits(e.low>>8, int(24-e.bitsLeft))
	e.started = false
}

// WriteByteAlignment writes the stop bit and pads the sink to a byte
// boundary. Used after a terminating bin of 1 and Finish, lets the decoder
// check it ended in the right place.
func (e *BinEncoder) WriteByteAlignment() {
	e.sink.WriteByteAlignment()
}

// NumWrittenBits includes bits still held back in the registers.
func (e *BinEncoder) NumWrittenBits() uint64 {
	return e.sink.NumberOfWrittenBits() + 8*uint64(e.numBufferedBytes) + uint64(23-e.bitsLeft)
}

// EncodeBin codes a bin with the probability held by context ctxID and then
// adapts that context.
func (e *BinEncoder) EncodeBin(bin uint8, ctxID uint32) error {
	e.mustBeStarted()

	model, err := e.contexts.Model(ctxID)
	if err != nil {
		return err
	}

	lps := model.LPS(e.rng)
	e.rng -= lps
	if bin != model.MPS() {
		numBits := renormBitsLPS(lps)
		e.bitsLeft -= numBits
		e.low += e.rng
		e.low <<= numBits
		e.rng = lps << numBits
		if e.bitsLeft < 12 {
			e.writeOut()
		}
	} else if e.rng < rangeMin {
		// MPS range is always at least half of rangeMin, a single shift is enough.
		e.bitsLeft--
		e.low <<= 1
		e.rng <<= 1
		if e.bitsLeft < 12 {
			e.writeOut()
		}
	}
	model.Update(bin)
	return nil
}

// EncodeBinEP codes a bin with a fixed 50/50 split.
func (e *BinEncoder) EncodeBinEP(bin uint8) {
	e.mustBeStarted()

	e.low <<= 1
	if bin != 0 {
		e.low += e.rng
	}
	e.bitsLeft--
	if e.bitsLeft < 12 {
		e.writeOut()
	}
}

// EncodeBinsEP codes the low numBins of bins as bypass bins, MSB first.
func (e *BinEncoder) EncodeBinsEP(bins uint32, numBins int) {
	e.mustBeStarted()
	if numBins < 0 || numBins > 32 {
		panic(ErrInvalidNumBins)
	}
	if numBins < 32 {
		bins &= (1 << numBins) - 1
	}

	for numBins > 8 {
		numBins -= 8
		pattern := bins >> numBins
		e.low <<= 8
		e.low += e.rng * pattern
		bins -= pattern << numBins
		e.bitsLeft -= 8
		if e.bitsLeft < 12 {
			e.writeOut()
		}
	}
	e.low <<= numBins
	e.low += e.rng * bins
	e.bitsLeft -= int32(numBins)
	if e.bitsLeft < 12 {
		e.writeOut()
	}
}

// EncodeBinTrm codes a terminating bin. A 1 marks the end of the coded unit.
func (e *BinEncoder) EncodeBinTrm(bin uint8) {
	e.mustBeStarted()

	e.rng -= 2
	if bin != 0 {
		e.low += e.rng
		e.low <<= 7
		e.rng = 2 << 7
		e.bitsLeft -= 7
	} else if e.rng >= rangeMin {
		return
	} else {
		e.low <<= 1
		e.rng <<= 1
		e.bitsLeft--
	}
	if e.bitsLeft < 12 {
		e.writeOut()
	}
}

// EncodeRemAbsEP codes value as a Golomb-Rice code with parameter riceParam.
// Values with a unary prefix of cutoff or more switch to an exp-Golomb escape
// limited to maxLog2DynamicRange suffix bits.
func (e *BinEncoder) EncodeRemAbsEP(value uint32, riceParam uint32, cutoff uint32, maxLog2DynamicRange int) error {
	if err := ValidateRiceParams(riceParam, cutoff, maxLog2DynamicRange); err != nil {
		return err
	}
	if maxLog2DynamicRange < 32 && uint64(value) >= uint64(1)<<maxLog2DynamicRange {
		return ErrInvalidRiceParams
	}

	threshold := uint64(cutoff) << riceParam
	if uint64(value) < threshold {
		bitMask := uint32(1)<<riceParam - 1
		length := int(value>>riceParam) + 1
		e.EncodeBinsEP(uint32(1)<<length-2, length)
		e.EncodeBinsEP(value&bitMask, int(riceParam))
		return nil
	}

	maxPrefixLength := uint32(32 - int(cutoff) - maxLog2DynamicRange)
	prefixLength := uint32(0)
	suffixLength := uint32(0)
	codeValue := (value >> riceParam) - cutoff

	if uint64(codeValue) >= uint64(1)<<maxPrefixLength-1 {
		prefixLength = maxPrefixLength
		suffixLength = uint32(maxLog2DynamicRange)
	} else {
		for uint64(codeValue) > uint64(2)<<prefixLength-2 {
			prefixLength++
		}
		// +1 for the separator bit
		suffixLength = prefixLength + riceParam + 1
	}

	totalPrefixLength := prefixLength + cutoff
	bitMask := uint32(1)<<riceParam - 1
	prefix := uint32(uint64(1)<<totalPrefixLength - 1)
	suffix := ((codeValue - (uint32(1)<<prefixLength - 1)) << riceParam) | (value & bitMask)
	e.EncodeBinsEP(prefix, int(totalPrefixLength))
	e.EncodeBinsEP(suffix, int(suffixLength))
	return nil
}

// Align sets the range so following bypass bins line up with stream bits.
func (e *BinEncoder) Align() {
	e.mustBeStarted()
	e.rng = rangeAligned
}

func (e *BinEncoder) writeOut() {
	leadByte := e.low >> (24 - e.bitsLeft)
	e.bitsLeft += 8
	e.low &= 0xffffffff >> e.bitsLeft

	if leadByte == 0xff {
		e.numBufferedBytes++
		return
	}

	if e.numBufferedBytes > 0 {
		carry := leadByte >> 8
		b := e.bufferedByte + carry
		e.bufferedByte = leadByte & 0xff
		e.sink.WriteBits(b, 8)

		b = (0xff + carry) & 0xff
		for e.numBufferedBytes > 1 {
			e.sink.WriteBits(b, 8)
			e.numBufferedBytes--
		}
	} else {
		e.numBufferedBytes = 1
		e.bufferedByte = leadByte
	}
}

func (e *BinEncoder) mustBeStarted() {
	if !e.started {
		panic("entropy: BinEncoder used before Start")
	}
}

// ValidateRiceParams checks a rice configuration can be coded within 32 bit
// bypass chunks.
func ValidateRiceParams(riceParam uint32, cutoff uint32, maxLog2DynamicRange int) error {
	if maxLog2DynamicRange < 1 || maxLog2DynamicRange > 31 {
		return ErrInvalidRiceParams
	}
	if cutoff == 0 || int(cutoff) >= 32-maxLog2DynamicRange {
		return ErrInvalidRiceParams
	}
	if int(riceParam) >= maxLog2DynamicRange {
		return ErrInvalidRiceParams
	}
	return nil
}
