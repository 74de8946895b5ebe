package binarization

import "fmt"

func checkBI(symbol uint64, numBins int) error {
	if numBins < 0 || numBins > MaxBIBins {
		return fmt.Errorf("%w: BI needs 0..%d bins, got %d", ErrInvalidParams, MaxBIBins, numBins)
	}
	if numBins < MaxBIBins && symbol>>numBins != 0 {
		return fmt.Errorf("%w: %d needs more than %d bins", ErrOutOfRange, symbol, numBins)
	}
	return nil
}

// EncodeBIBypass writes symbol as numBins bypass bins, MSB first.
func EncodeBIBypass(w BinWriter, symbol uint64, numBins int) error {
	if err := checkBI(symbol, numBins); err != nil {
		return err
	}
	writeBypassBits(w, symbol, numBins)
	return nil
}

// EncodeBI writes symbol as numBins context coded bins, MSB first. The bin
// at position i from the MSB uses ctxIDs[i].
func EncodeBI(w BinWriter, symbol uint64, numBins int, ctxIDs []uint32) error {
	if err := checkBI(symbol, numBins); err != nil {
		return err
	}
	if err := checkContexts(ctxIDs, numBins); err != nil {
		return err
	}
	for i := 0; i < numBins; i++ {
		bin := uint8(symbol>>(numBins-1-i)) & 1
		if err := w.EncodeBin(bin, ctxIDs[i]); err != nil {
			return err
		}
	}
	return nil
}

func DecodeBIBypass(r BinReader, numBins int) (uint64, error) {
	if err := checkBI(0, numBins); err != nil {
		return 0, err
	}
	return readBypassBits(r, numBins)
}

func DecodeBI(r BinReader, numBins int, ctxIDs []uint32) (uint64, error) {
	if err := checkBI(0, numBins); err != nil {
		return 0, err
	}
	if err := checkContexts(ctxIDs, numBins); err != nil {
		return 0, err
	}
	var symbol uint64
	for i := 0; i < numBins; i++ {
		bin, err := r.DecodeBin(ctxIDs[i])
		if err != nil {
			return 0, err
		}
		symbol = symbol<<1 | uint64(bin)
	}
	return symbol, nil
}

// writeBypassBits splits codes wider than the 32 bin bypass primitive.
func writeBypassBits(w BinWriter, value uint64, numBins int) {
	if numBins > 32 {
		w.EncodeBinsEP(uint32(value>>32), numBins-32)
		numBins = 32
	}
	w.EncodeBinsEP(uint32(value), numBins)
}

func readBypassBits(r BinReader, numBins int) (uint64, error) {
	var hi uint32
	var err error
	if numBins > 32 {
		hi, err = r.DecodeBinsEP(numBins - 32)
		if err != nil {
			return 0, err
		}
		numBins = 32
	}
	lo, err := r.DecodeBinsEP(numBins)
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}
