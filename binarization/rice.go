package binarization

import "fmt"

// EncodeRice codes symbol as a Golomb-Rice remainder with an exp-golomb
// escape, all bins bypass coded.
func EncodeRice(w BinWriter, symbol uint64, p Params) error {
	if err := validateRice(p); err != nil {
		return err
	}
	if symbol >= uint64(1)<<p.MaxLog2DynamicRange {
		return fmt.Errorf("%w: %d exceeds dynamic range 2^%d", ErrOutOfRange, symbol, p.MaxLog2DynamicRange)
	}
	return w.EncodeRemAbsEP(uint32(symbol), p.RiceParam, p.Cutoff, p.MaxLog2DynamicRange)
}

func DecodeRice(r BinReader, p Params) (uint64, error) {
	if err := validateRice(p); err != nil {
		return 0, err
	}
	v, err := r.DecodeRemAbsEP(p.RiceParam, p.Cutoff, p.MaxLog2DynamicRange)
	if err != nil {
		return 0, err
	}
	return uint64(v), nil
}
