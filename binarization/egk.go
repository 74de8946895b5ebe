package binarization

import (
	"fmt"
	"math"

	"github.com/kpfaulkner/cabac-go/util"
)

func checkK(k int) error {
	if k < 0 || k > MaxK {
		return fmt.Errorf("%w: EGk order %d outside 0..%d", ErrInvalidParams, k, MaxK)
	}
	return nil
}

// egkPrefixLength is the number of leading zeros of the EGk code of symbol,
// floor(log2(symbol + 2^k)) - k.
func egkPrefixLength(symbol uint64, k int) (int, error) {
	offset := uint64(1) << k
	if symbol > math.MaxUint64-offset {
		return 0, fmt.Errorf("%w: %d overflows EG%d", ErrOutOfRange, symbol, k)
	}
	return util.FloorLog2(symbol+offset) - k, nil
}

func egkSuffix(symbol uint64, prefixLen int, k int) uint64 {
	return symbol - (uint64(1)<<(prefixLen+k) - uint64(1)<<k)
}

// EncodeEGkBypass writes the exp-golomb code of order k: prefixLen zeros, a
// one, then prefixLen+k suffix bins.
func EncodeEGkBypass(w BinWriter, symbol uint64, k int) error {
	if err := checkK(k); err != nil {
		return err
	}
	prefixLen, err := egkPrefixLength(symbol, k)
	if err != nil {
		return err
	}

	writeBypassBits(w, 1, prefixLen+1)
	writeBypassBits(w, egkSuffix(symbol, prefixLen, k), prefixLen+k)
	return nil
}

// EncodeEGk context codes the prefix, prefix bin n uses ctxIDs[n]. The suffix
// is always bypass coded. maxPrefixBins bounds the prefix including its
// terminating one.
func EncodeEGk(w BinWriter, symbol uint64, k int, maxPrefixBins int, ctxIDs []uint32) error {
	if err := checkK(k); err != nil {
		return err
	}
	if err := checkContexts(ctxIDs, maxPrefixBins); err != nil {
		return err
	}
	prefixLen, err := egkPrefixLength(symbol, k)
	if err != nil {
		return err
	}
	if prefixLen+1 > maxPrefixBins {
		return fmt.Errorf("%w: EG%d prefix of %d needs more than %d bins", ErrOutOfRange, k, symbol, maxPrefixBins)
	}

	for n := 0; n < prefixLen; n++ {
		if err := w.EncodeBin(0, ctxIDs[n]); err != nil {
			return err
		}
	}
	if err := w.EncodeBin(1, ctxIDs[prefixLen]); err != nil {
		return err
	}
	writeBypassBits(w, egkSuffix(symbol, prefixLen, k), prefixLen+k)
	return nil
}

func DecodeEGkBypass(r BinReader, k int) (uint64, error) {
	if err := checkK(k); err != nil {
		return 0, err
	}

	prefixLen := 0
	for {
		bin, err := r.DecodeBinEP()
		if err != nil {
			return 0, err
		}
		if bin == 1 {
			break
		}
		prefixLen++
		if prefixLen+k > 63 {
			return 0, ErrPrefixTooLong
		}
	}
	return decodeEGkSuffix(r, prefixLen, k)
}

func DecodeEGk(r BinReader, k int, maxPrefixBins int, ctxIDs []uint32) (uint64, error) {
	if err := checkK(k); err != nil {
		return 0, err
	}
	if err := checkContexts(ctxIDs, maxPrefixBins); err != nil {
		return 0, err
	}

	prefixLen := 0
	for {
		if prefixLen >= maxPrefixBins || prefixLen+k > 63 {
			return 0, ErrPrefixTooLong
		}
		bin, err := r.DecodeBin(ctxIDs[prefixLen])
		if err != nil {
			return 0, err
		}
		if bin == 1 {
			break
		}
		prefixLen++
	}
	return decodeEGkSuffix(r, prefixLen, k)
}

func decodeEGkSuffix(r BinReader, prefixLen int, k int) (uint64, error) {
	suffix, err := readBypassBits(r, prefixLen+k)
	if err != nil {
		return 0, err
	}
	return suffix + uint64(1)<<(prefixLen+k) - uint64(1)<<k, nil
}
