package binarization

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOutOfRange           = errors.New("symbol can not be represented with the given binarization parameters")
	ErrContextArrayTooShort = errors.New("context id array shorter than the longest bin string")
	ErrPrefixTooLong        = errors.New("exp-golomb prefix exceeds its maximum length")
	ErrInvalidParams        = errors.New("invalid binarization parameters")
	ErrUnknownKind          = errors.New("unknown binarization")
)

// Kind selects how an unsigned integer is turned into bins. Values match the
// ids used in parameter vectors and profiles.
type Kind uint8

const (
	BI   Kind = 0
	TU   Kind = 1
	EGk  Kind = 2
	RICE Kind = 4
)

const (
	// MaxBIBins is the widest fixed length code, a full uint64.
	MaxBIBins = 64

	// MaxK keeps 2^k well inside a uint64.
	MaxK = 32

	DefaultNumMaxBins          = 512
	DefaultRiceCutoff          = 5
	DefaultMaxLog2DynamicRange = 15
)

func (k Kind) String() string {
	switch k {
	case BI:
		return "BI"
	case TU:
		return "TU"
	case EGk:
		return "EGk"
	case RICE:
		return "RICE"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(s) {
	case "BI":
		return BI, nil
	case "TU":
		return TU, nil
	case "EGK":
		return EGk, nil
	case "RICE":
		return RICE, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Params holds the parameters of every binarization, each kind reads the
// fields it needs.
type Params struct {
	// NumBins is the code length for BI, the maximum symbol (and bin count)
	// for TU and the maximum number of context coded prefix bins for EGk.
	NumBins int

	// K is the exp-golomb order.
	K int

	RiceParam           uint32
	Cutoff              uint32
	MaxLog2DynamicRange int
}

// ParamsFromVector reads the positional form
// [numBins, k, riceParam, cutoff, maxLog2DynamicRange]. Missing trailing
// entries take their defaults.
func ParamsFromVector(v []uint32) Params {
	p := Params{
		NumBins:             DefaultNumMaxBins,
		Cutoff:              DefaultRiceCutoff,
		MaxLog2DynamicRange: DefaultMaxLog2DynamicRange,
	}
	if len(v) > 0 {
		p.NumBins = int(v[0])
	}
	if len(v) > 1 {
		p.K = int(v[1])
	}
	if len(v) > 2 {
		p.RiceParam = v[2]
	}
	if len(v) > 3 {
		p.Cutoff = v[3]
	}
	if len(v) > 4 {
		p.MaxLog2DynamicRange = int(v[4])
	}
	return p
}

// Vector is the inverse of ParamsFromVector.
func (p Params) Vector() []uint32 {
	return []uint32{uint32(p.NumBins), uint32(p.K), p.RiceParam, p.Cutoff, uint32(p.MaxLog2DynamicRange)}
}

func (p Params) Validate(kind Kind) error {
	switch kind {
	case BI:
		if p.NumBins < 0 || p.NumBins > MaxBIBins {
			return fmt.Errorf("%w: BI needs 0..%d bins, got %d", ErrInvalidParams, MaxBIBins, p.NumBins)
		}
	case TU:
		if p.NumBins < 0 {
			return fmt.Errorf("%w: negative TU maximum %d", ErrInvalidParams, p.NumBins)
		}
	case EGk:
		if p.K < 0 || p.K > MaxK {
			return fmt.Errorf("%w: EGk order %d outside 0..%d", ErrInvalidParams, p.K, MaxK)
		}
		if p.NumBins < 1 {
			return fmt.Errorf("%w: EGk needs room for at least one prefix bin", ErrInvalidParams)
		}
	case RICE:
		if err := validateRice(p); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
	}
	return nil
}

func validateRice(p Params) error {
	if p.MaxLog2DynamicRange < 1 || p.MaxLog2DynamicRange > 31 {
		return fmt.Errorf("%w: dynamic range 2^%d", ErrInvalidParams, p.MaxLog2DynamicRange)
	}
	if p.Cutoff == 0 || int(p.Cutoff) >= 32-p.MaxLog2DynamicRange {
		return fmt.Errorf("%w: cutoff %d", ErrInvalidParams, p.Cutoff)
	}
	if int(p.RiceParam) >= p.MaxLog2DynamicRange {
		return fmt.Errorf("%w: rice parameter %d", ErrInvalidParams, p.RiceParam)
	}
	return nil
}

// MaxBins is the number of context ids a context coded call needs, the
// length of the longest context coded bin string. RICE is never context
// coded.
func MaxBins(kind Kind, p Params) int {
	switch kind {
	case BI, TU, EGk:
		return p.NumBins
	}
	return 0
}

// BinWriter is the set of bin primitives an encoder offers.
type BinWriter interface {
	EncodeBin(bin uint8, ctxID uint32) error
	EncodeBinEP(bin uint8)
	EncodeBinsEP(bins uint32, numBins int)
	EncodeRemAbsEP(value uint32, riceParam uint32, cutoff uint32, maxLog2DynamicRange int) error
}

// BinReader is the decoding counterpart of BinWriter.
type BinReader interface {
	DecodeBin(ctxID uint32) (uint8, error)
	DecodeBinEP() (uint8, error)
	DecodeBinsEP(numBins int) (uint32, error)
	DecodeRemAbsEP(riceParam uint32, cutoff uint32, maxLog2DynamicRange int) (uint32, error)
}

// Encode binarizes symbol and codes the bins with the given context ids.
// RICE codes are always bypass coded and ignore ctxIDs.
func Encode(w BinWriter, kind Kind, p Params, symbol uint64, ctxIDs []uint32) error {
	switch kind {
	case BI:
		return EncodeBI(w, symbol, p.NumBins, ctxIDs)
	case TU:
		return EncodeTU(w, symbol, p.NumBins, ctxIDs)
	case EGk:
		return EncodeEGk(w, symbol, p.K, p.NumBins, ctxIDs)
	case RICE:
		return EncodeRice(w, symbol, p)
	}
	return fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
}

func EncodeBypass(w BinWriter, kind Kind, p Params, symbol uint64) error {
	switch kind {
	case BI:
		return EncodeBIBypass(w, symbol, p.NumBins)
	case TU:
		return EncodeTUBypass(w, symbol, p.NumBins)
	case EGk:
		return EncodeEGkBypass(w, symbol, p.K)
	case RICE:
		return EncodeRice(w, symbol, p)
	}
	return fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
}

func Decode(r BinReader, kind Kind, p Params, ctxIDs []uint32) (uint64, error) {
	switch kind {
	case BI:
		return DecodeBI(r, p.NumBins, ctxIDs)
	case TU:
		return DecodeTU(r, p.NumBins, ctxIDs)
	case EGk:
		return DecodeEGk(r, p.K, p.NumBins, ctxIDs)
	case RICE:
		return DecodeRice(r, p)
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
}

func DecodeBypass(r BinReader, kind Kind, p Params) (uint64, error) {
	switch kind {
	case BI:
		return DecodeBIBypass(r, p.NumBins)
	case TU:
		return DecodeTUBypass(r, p.NumBins)
	case EGk:
		return DecodeEGkBypass(r, p.K)
	case RICE:
		return DecodeRice(r, p)
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
}

func checkContexts(ctxIDs []uint32, needed int) error {
	if len(ctxIDs) < needed {
		return fmt.Errorf("%w: have %d, need %d", ErrContextArrayTooShort, len(ctxIDs), needed)
	}
	return nil
}
