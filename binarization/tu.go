package binarization

import "fmt"

func checkTU(symbol uint64, numMaxBins int) error {
	if numMaxBins < 0 {
		return fmt.Errorf("%w: negative TU maximum %d", ErrInvalidParams, numMaxBins)
	}
	if symbol > uint64(numMaxBins) {
		return fmt.Errorf("%w: %d exceeds TU maximum %d", ErrOutOfRange, symbol, numMaxBins)
	}
	return nil
}

// EncodeTUBypass writes symbol ones followed by a terminating zero. The
// maximum symbol numMaxBins is written without the terminator.
func EncodeTUBypass(w BinWriter, symbol uint64, numMaxBins int) error {
	if err := checkTU(symbol, numMaxBins); err != nil {
		return err
	}

	rem := symbol
	for rem >= 32 {
		w.EncodeBinsEP(0xffffffff, 32)
		rem -= 32
	}
	if symbol < uint64(numMaxBins) {
		w.EncodeBinsEP(uint32(1)<<(rem+1)-2, int(rem)+1)
	} else {
		w.EncodeBinsEP(uint32(1)<<rem-1, int(rem))
	}
	return nil
}

// EncodeTU is the context coded form of EncodeTUBypass, bin n uses
// ctxIDs[n].
func EncodeTU(w BinWriter, symbol uint64, numMaxBins int, ctxIDs []uint32) error {
	if err := checkTU(symbol, numMaxBins); err != nil {
		return err
	}
	if err := checkContexts(ctxIDs, numMaxBins); err != nil {
		return err
	}

	n := uint64(0)
	for ; n < symbol; n++ {
		if err := w.EncodeBin(1, ctxIDs[n]); err != nil {
			return err
		}
	}
	if symbol < uint64(numMaxBins) {
		return w.EncodeBin(0, ctxIDs[n])
	}
	return nil
}

func DecodeTUBypass(r BinReader, numMaxBins int) (uint64, error) {
	if err := checkTU(0, numMaxBins); err != nil {
		return 0, err
	}

	symbol := uint64(0)
	for symbol < uint64(numMaxBins) {
		bin, err := r.DecodeBinEP()
		if err != nil {
			return 0, err
		}
		if bin == 0 {
			break
		}
		symbol++
	}
	return symbol, nil
}

func DecodeTU(r BinReader, numMaxBins int, ctxIDs []uint32) (uint64, error) {
	if err := checkTU(0, numMaxBins); err != nil {
		return 0, err
	}
	if err := checkContexts(ctxIDs, numMaxBins); err != nil {
		return 0, err
	}

	symbol := uint64(0)
	for symbol < uint64(numMaxBins) {
		bin, err := r.DecodeBin(ctxIDs[symbol])
		if err != nil {
			return 0, err
		}
		if bin == 0 {
			break
		}
		symbol++
	}
	return symbol, nil
}
