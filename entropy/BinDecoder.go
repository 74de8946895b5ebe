package entropy

import (
	"fmt"

	"github.com/kpfaulkner/cabac-go/bitio"
)

// BinDecoder mirrors BinEncoder. value holds 16 significant bits aligned with
// rng << 7, bitsNeeded counts down to the next byte read.
type BinDecoder struct {
	src        bitio.BitSource
	contexts   *ContextBank
	rng        uint32
	value      uint32
	bitsNeeded int32
	started    bool
}

func NewBinDecoder(src bitio.BitSource, contexts *ContextBank) *BinDecoder {
	return &BinDecoder{
		src:      src,
		contexts: contexts,
	}
}

func (d *BinDecoder) Contexts() *ContextBank {
	return d.contexts
}

func (d *BinDecoder) Start() error {
	if d.src.BitsUntilByteAligned() != 0 {
		return bitio.ErrNotAligned
	}

	d.rng = rangeStart
	d.bitsNeeded = -8
	hi, err := d.readByte()
	if err != nil {
		return err
	}
	lo, err := d.readByte()
	if err != nil {
		return err
	}
	d.value = uint32(hi)<<8 | uint32(lo)
	d.started = true
	return nil
}

// Finish checks that the last consumed byte ends with the stop bit written by
// BinEncoder.WriteByteAlignment.
func (d *BinDecoder) Finish() error {
	if !d.started {
		return ErrNotStarted
	}
	d.started = false

	lastByte, err := d.src.PeekPreviousByte()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptStream, err)
	}
	if (uint32(lastByte)<<(8+d.bitsNeeded))&0xff != 0x80 {
		return fmt.Errorf("%w: no proper stop/alignment pattern at end of stream", ErrCorruptStream)
	}
	return nil
}

// NumBitsRead is the number of stream bits the decoded bins account for.
func (d *BinDecoder) NumBitsRead() uint64 {
	return uint64(int64(d.src.BitsRead()) + int64(d.bitsNeeded))
}

func (d *BinDecoder) DecodeBin(ctxID uint32) (uint8, error) {
	if !d.started {
		return 0, ErrNotStarted
	}

	model, err := d.contexts.Model(ctxID)
	if err != nil {
		return 0, err
	}

	bin := model.MPS()
	lps := model.LPS(d.rng)
	d.rng -= lps
	scaledRange := d.rng << 7

	if d.value < scaledRange {
		// MPS path
		if d.rng < rangeMin {
			d.rng <<= 1
			d.value <<= 1
			d.bitsNeeded++
			if err := d.refill(); err != nil {
				return 0, err
			}
		}
	} else {
		// LPS path
		bin = 1 - bin
		numBits := renormBitsLPS(lps)
		d.value -= scaledRange
		d.value <<= numBits
		d.rng = lps << numBits
		d.bitsNeeded += numBits
		if err := d.refill(); err != nil {
			return 0, err
		}
	}
	model.Update(bin)
	return bin, nil
}

func (d *BinDecoder) DecodeBinEP() (uint8, error) {
	if !d.started {
		return 0, ErrNotStarted
	}

	d.value += d.value
	d.bitsNeeded++
	if d.bitsNeeded >= 0 {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		d.value += uint32(b)
		d.bitsNeeded = -8
	}

	scaledRange := d.rng << 7
	if d.value >= scaledRange {
		d.value -= scaledRange
		return 1, nil
	}
	return 0, nil
}

// DecodeBinsEP decodes numBins bypass bins, first decoded bin ends up as the
// MSB of the result.
func (d *BinDecoder) DecodeBinsEP(numBins int) (uint32, error) {
	if !d.started {
		return 0, ErrNotStarted
	}
	if numBins < 0 || numBins > 32 {
		return 0, ErrInvalidNumBins
	}

	remBins := numBins
	bins := uint32(0)
	for remBins > 8 {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		d.value = (d.value << 8) + (uint32(b) << (8 + d.bitsNeeded))
		scaledRange := d.rng << 15
		for i := 0; i < 8; i++ {
			bins += bins
			scaledRange >>= 1
			if d.value >= scaledRange {
				bins++
				d.value -= scaledRange
			}
		}
		remBins -= 8
	}

	d.bitsNeeded += int32(remBins)
	d.value <<= remBins
	if d.bitsNeeded >= 0 {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		d.value += uint32(b) << d.bitsNeeded
		d.bitsNeeded -= 8
	}

	scaledRange := d.rng << (remBins + 7)
	for i := 0; i < remBins; i++ {
		bins += bins
		scaledRange >>= 1
		if d.value >= scaledRange {
			bins++
			d.value -= scaledRange
		}
	}
	return bins, nil
}

func (d *BinDecoder) DecodeBinTrm() (uint8, error) {
	if !d.started {
		return 0, ErrNotStarted
	}

	d.rng -= 2
	scaledRange := d.rng << 7
	if d.value >= scaledRange {
		return 1, nil
	}
	if d.rng < rangeMin {
		d.rng <<= 1
		d.value <<= 1
		d.bitsNeeded++
		if d.bitsNeeded == 0 {
			b, err := d.readByte()
			if err != nil {
				return 0, err
			}
			d.value += uint32(b)
			d.bitsNeeded = -8
		}
	}
	return 0, nil
}

// DecodeRemAbsEP is the inverse of BinEncoder.EncodeRemAbsEP.
func (d *BinDecoder) DecodeRemAbsEP(riceParam uint32, cutoff uint32, maxLog2DynamicRange int) (uint32, error) {
	if err := ValidateRiceParams(riceParam, cutoff, maxLog2DynamicRange); err != nil {
		return 0, err
	}

	maxPrefix := uint32(32 - maxLog2DynamicRange)
	prefix := uint32(0)
	codeWord := uint8(0)
	for {
		prefix++
		bin, err := d.DecodeBinEP()
		if err != nil {
			return 0, err
		}
		codeWord = bin
		if codeWord == 0 || prefix >= maxPrefix {
			break
		}
	}
	prefix -= uint32(1 - codeWord)

	if prefix < cutoff {
		suffix, err := d.DecodeBinsEP(int(riceParam))
		if err != nil {
			return 0, err
		}
		return prefix<<riceParam + suffix, nil
	}

	numSuffixBins := int(prefix-cutoff) + int(riceParam)
	if prefix == maxPrefix {
		numSuffixBins = maxLog2DynamicRange
	}
	suffix, err := d.DecodeBinsEP(numSuffixBins)
	if err != nil {
		return 0, err
	}
	return ((uint32(1)<<(prefix-cutoff) + cutoff - 1) << riceParam) + suffix, nil
}

func (d *BinDecoder) Align() {
	d.rng = rangeAligned
}

func (d *BinDecoder) refill() error {
	if d.bitsNeeded < 0 {
		return nil
	}
	b, err := d.readByte()
	if err != nil {
		return err
	}
	d.value += uint32(b) << d.bitsNeeded
	d.bitsNeeded -= 8
	return nil
}

func (d *BinDecoder) readByte() (uint8, error) {
	b, err := d.src.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorruptStream, err)
	}
	return b, nil
}
