package binarization

// BinAt reports bin n of the context coded part of symbol's bin string. ok
// is false when the string is shorter than n+1.
func BinAt(kind Kind, p Params, symbol uint64, n int) (bin uint8, ok bool) {
	if n < 0 {
		return 0, false
	}
	switch kind {
	case BI:
		if n >= p.NumBins || p.NumBins > MaxBIBins {
			return 0, false
		}
		return uint8(symbol>>(p.NumBins-1-n)) & 1, true
	case TU:
		if uint64(n) < symbol {
			return 1, true
		}
		if uint64(n) == symbol && symbol < uint64(p.NumBins) {
			return 0, true
		}
	case EGk:
		prefixLen := UnaryLength(kind, p, symbol)
		if uint64(n) < prefixLen {
			return 0, true
		}
		if uint64(n) == prefixLen {
			return 1, true
		}
	}
	return 0, false
}

// UnaryLength is the length of the unary run at the start of symbol's bin
// string: the number of ones for TU and the number of prefix zeros for EGk.
// The run is followed by its terminating bin. Zero for the other kinds.
func UnaryLength(kind Kind, p Params, symbol uint64) uint64 {
	switch kind {
	case TU:
		return symbol
	case EGk:
		if p.K < 0 || p.K > MaxK {
			return 0
		}
		prefixLen, err := egkPrefixLength(symbol, p.K)
		if err != nil {
			return uint64(64 - p.K)
		}
		return uint64(prefixLen)
	}
	return 0
}
