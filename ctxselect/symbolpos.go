package ctxselect

func (m SymbolPosMode) numBuckets() int {
	switch m {
	case SymbolPosThresholds, SymbolPosLumaGt1:
		return 4
	case SymbolPosLumaSig:
		return 3
	case SymbolPosChromaSig, SymbolPosChromaGt1:
		return 2
	}
	return 1
}

func (p Params) validateSymbolPos() error {
	switch p.SymbolPos {
	case SymbolPosNone, SymbolPosLumaSig, SymbolPosChromaSig, SymbolPosLumaGt1, SymbolPosChromaGt1:
		return nil
	case SymbolPosThresholds:
		if p.Thresholds[0] > p.Thresholds[1] || p.Thresholds[1] > p.Thresholds[2] {
			return ErrInvalidThresholds
		}
		return nil
	}
	return ErrUnknownSymbolPosMode
}

// bucket maps the index d of a symbol within its sequence to a bucket.
// The luma/chroma splits follow the significance and greater-than-one
// position classes of VVC residual coding.
func (p Params) bucket(d int) int {
	switch p.SymbolPos {
	case SymbolPosThresholds:
		b := 0
		for _, t := range p.Thresholds {
			if uint64(d) >= t {
				b++
			}
		}
		return b
	case SymbolPosLumaSig:
		if d < 2 {
			return 0
		}
		if d < 5 {
			return 1
		}
		return 2
	case SymbolPosChromaSig:
		if d < 2 {
			return 0
		}
		return 1
	case SymbolPosLumaGt1:
		switch {
		case d == 0:
			return 0
		case d < 3:
			return 1
		case d < 10:
			return 2
		}
		return 3
	case SymbolPosChromaGt1:
		if d == 0 {
			return 0
		}
		return 1
	}
	return 0
}
