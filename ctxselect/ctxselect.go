package ctxselect

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownModel            = errors.New("unknown context model")
	ErrInvalidOrder            = errors.New("history order out of range")
	ErrInvalidRestPos          = errors.New("rest position must not be negative")
	ErrTooManyContexts         = errors.New("context count does not fit in 32 bits")
	ErrUnsupportedBinarization = errors.New("binarization can not be context modelled")
	ErrInvalidThresholds       = errors.New("symbol position thresholds must not decrease")
	ErrUnknownSymbolPosMode    = errors.New("unknown symbol position mode")
)

// MaxOrder is the longest symbol history a model can look at.
const MaxOrder = 3

const (
	DefaultOrder     = 1
	DefaultRestPos   = 10
	DefaultSymbolMax = 32
)

// ModelKind chooses how bins are mapped to contexts.
type ModelKind uint8

const (
	// BAC codes every bin with the same context.
	BAC ModelKind = 0

	// BinPosition uses the position of the bin within the bin string.
	BinPosition ModelKind = 1

	// BinsOrderN compares against the bin at the same position of the
	// previous symbols.
	BinsOrderN ModelKind = 2

	// SymbolOrderN uses the previous symbol values, clipped.
	SymbolOrderN ModelKind = 3

	// SumOrderN uses the clipped sum of the previous symbol values.
	SumOrderN ModelKind = 8
)

func (k ModelKind) String() string {
	switch k {
	case BAC:
		return "BAC"
	case BinPosition:
		return "BINPOSITION"
	case BinsOrderN:
		return "BINSORDERN"
	case SymbolOrderN:
		return "SYMBOLORDERN"
	case SumOrderN:
		return "SUMORDERN"
	}
	return fmt.Sprintf("ModelKind(%d)", uint8(k))
}

func ParseModelKind(s string) (ModelKind, error) {
	switch strings.ToUpper(strings.ReplaceAll(s, "_", "")) {
	case "BAC":
		return BAC, nil
	case "BINPOSITION":
		return BinPosition, nil
	case "BINSORDERN":
		return BinsOrderN, nil
	case "SYMBOLORDERN":
		return SymbolOrderN, nil
	case "SUMORDERN":
		return SumOrderN, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

// usesHistory reports whether the model looks at previous symbols.
func (k ModelKind) usesHistory() bool {
	return k == BinsOrderN || k == SymbolOrderN || k == SumOrderN
}

// SymbolPosMode buckets the index of the symbol within its sequence, each
// bucket gets its own copy of the base contexts.
type SymbolPosMode uint8

const (
	SymbolPosNone SymbolPosMode = iota
	SymbolPosThresholds
	SymbolPosLumaSig
	SymbolPosChromaSig
	SymbolPosLumaGt1
	SymbolPosChromaGt1
)

func (m SymbolPosMode) String() string {
	switch m {
	case SymbolPosNone:
		return "NONE"
	case SymbolPosThresholds:
		return "THRESHOLDS"
	case SymbolPosLumaSig:
		return "LUMASIG"
	case SymbolPosChromaSig:
		return "CHROMASIG"
	case SymbolPosLumaGt1:
		return "LUMAGT1"
	case SymbolPosChromaGt1:
		return "CHROMAGT1"
	}
	return fmt.Sprintf("SymbolPosMode(%d)", uint8(m))
}

func ParseSymbolPosMode(s string) (SymbolPosMode, error) {
	switch strings.ToUpper(strings.ReplaceAll(s, "_", "")) {
	case "", "NONE":
		return SymbolPosNone, nil
	case "THRESHOLDS":
		return SymbolPosThresholds, nil
	case "LUMASIG":
		return SymbolPosLumaSig, nil
	case "CHROMASIG":
		return SymbolPosChromaSig, nil
	case "LUMAGT1":
		return SymbolPosLumaGt1, nil
	case "CHROMAGT1":
		return SymbolPosChromaGt1, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSymbolPosMode, s)
}

// Params configures a context model. Fields a model does not use are
// ignored.
type Params struct {
	Order      int
	RestPos    int
	Offset     uint32
	SymbolMax  uint64
	SymbolPos  SymbolPosMode
	Thresholds [3]uint64
}

// ParamsFromVector reads the positional form
// [order, restPos, offset, symbolMax, symbolPosMode, t1, t2, t3].
func ParamsFromVector(v []uint32) Params {
	p := Params{
		Order:     DefaultOrder,
		RestPos:   DefaultRestPos,
		SymbolMax: DefaultSymbolMax,
	}
	if len(v) > 0 {
		p.Order = int(v[0])
	}
	if len(v) > 1 {
		p.RestPos = int(v[1])
	}
	if len(v) > 2 {
		p.Offset = v[2]
	}
	if len(v) > 3 {
		p.SymbolMax = uint64(v[3])
	}
	if len(v) > 4 {
		p.SymbolPos = SymbolPosMode(v[4])
	}
	for i := 0; i < 3 && len(v) > 5+i; i++ {
		p.Thresholds[i] = uint64(v[5+i])
	}
	return p
}

func (p Params) Vector() []uint32 {
	return []uint32{
		uint32(p.Order), uint32(p.RestPos), p.Offset, uint32(p.SymbolMax), uint32(p.SymbolPos),
		uint32(p.Thresholds[0]), uint32(p.Thresholds[1]), uint32(p.Thresholds[2]),
	}
}
