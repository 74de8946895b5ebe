package ctxselect

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/kpfaulkner/cabac-go/binarization"
	"github.com/kpfaulkner/cabac-go/util"
)

// Selector maps bin position, symbol history and symbol index to a context
// id for one fixed configuration. It holds no coding state and may be shared.
//
// Ids are laid out as
//
//	offset + bucket*baseTotal + key*restPos + min(n, restPos)
//
// where key is derived from the history and the single rest context
// baseTotal-1 serves every n >= restPos.
type Selector struct {
	kind      ModelKind
	params    Params
	binKind   binarization.Kind
	binParams binarization.Params

	// base of one history digit.
	base uint64

	// multipliers[i] = restPos * base^i
	multipliers [MaxOrder]uint64

	restCtx     uint64
	baseTotal   uint64
	numContexts uint64
}

// New validates the configuration and precomputes the id layout.
func New(kind ModelKind, p Params, binKind binarization.Kind, binParams binarization.Params) (*Selector, error) {
	if binKind == binarization.RICE {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBinarization, binKind)
	}
	if err := binParams.Validate(binKind); err != nil {
		return nil, err
	}
	if kind.usesHistory() && (p.Order < 1 || p.Order > MaxOrder) {
		return nil, fmt.Errorf("%w: %d, must be 1..%d", ErrInvalidOrder, p.Order, MaxOrder)
	}
	if p.RestPos < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRestPos, p.RestPos)
	}
	if err := p.validateSymbolPos(); err != nil {
		return nil, err
	}

	s := &Selector{
		kind:      kind,
		params:    p,
		binKind:   binKind,
		binParams: binParams,
	}
	if err := s.layout(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Selector) layout() error {
	p := s.params
	restPos := uint64(p.RestPos)

	switch s.kind {
	case BAC:
		s.baseTotal = 1
		return s.addSymbolPositions()
	case BinPosition:
		s.restCtx = restPos
		s.baseTotal = restPos + 1
		return s.addSymbolPositions()
	case BinsOrderN:
		s.base = 3
		if s.binKind == binarization.BI {
			s.base = 2
		}
	case SymbolOrderN, SumOrderN:
		if p.SymbolMax == math.MaxUint64 {
			return ErrTooManyContexts
		}
		s.base = p.SymbolMax + 1
	default:
		return fmt.Errorf("%w: %d", ErrUnknownModel, uint8(s.kind))
	}

	keys := s.base
	s.multipliers[0] = restPos
	if s.kind != SumOrderN {
		var ok bool
		keys, ok = util.PowChecked(s.base, p.Order)
		if !ok {
			return ErrTooManyContexts
		}
		for i := 1; i < p.Order; i++ {
			s.multipliers[i] = s.multipliers[i-1] * s.base
		}
	}

	hi, keyed := bits.Mul64(keys, restPos)
	if hi != 0 || keyed >= math.MaxUint32 {
		return ErrTooManyContexts
	}
	s.restCtx = keyed
	s.baseTotal = keyed + 1
	return s.addSymbolPositions()
}

func (s *Selector) addSymbolPositions() error {
	buckets := uint64(s.params.SymbolPos.numBuckets())
	hi, total := bits.Mul64(buckets, s.baseTotal)
	if hi != 0 {
		return ErrTooManyContexts
	}
	total += uint64(s.params.Offset)
	if total > math.MaxUint32 {
		return ErrTooManyContexts
	}
	s.numContexts = total
	return nil
}

// NumContexts is the number of contexts the ids of this selector can
// address, offset included. A context bank needs at least this many.
func (s *Selector) NumContexts() uint32 {
	return uint32(s.numContexts)
}

func (s *Selector) Kind() ModelKind {
	return s.kind
}

func (s *Selector) Params() Params {
	return s.params
}

// ContextID returns the context for bin n of the symbol at index symbolIdx
// of its sequence. prev[0] is the most recent previous symbol, missing
// history entries count as 0.
func (s *Selector) ContextID(n int, prev []uint64, symbolIdx int) uint32 {
	return uint32(s.symbolOffset(symbolIdx) + s.baseID(n, prev, s.historyKey(prev)))
}

// ContextIDs fills dst[n] with the context of bin n for every n < len(dst).
func (s *Selector) ContextIDs(dst []uint32, prev []uint64, symbolIdx int) {
	offset := s.symbolOffset(symbolIdx)
	key := s.historyKey(prev)
	restPos := s.params.RestPos

	for n := range dst {
		if n >= restPos && s.kind != BAC {
			rest := uint32(offset + s.restCtx)
			for i := n; i < len(dst); i++ {
				dst[i] = rest
			}
			return
		}
		dst[n] = uint32(offset + s.baseID(n, prev, key))
	}
}

func (s *Selector) symbolOffset(symbolIdx int) uint64 {
	if symbolIdx < 0 {
		symbolIdx = 0
	}
	return uint64(s.params.Offset) + uint64(s.params.bucket(symbolIdx))*s.baseTotal
}

// historyKey is the position independent part of the history, unused by
// BinsOrderN whose digits depend on n.
func (s *Selector) historyKey(prev []uint64) uint64 {
	switch s.kind {
	case SymbolOrderN:
		key := uint64(0)
		for i := 0; i < s.params.Order; i++ {
			key += util.Min(historyAt(prev, i), s.params.SymbolMax) * s.multipliers[i]
		}
		return key
	case SumOrderN:
		sum := uint64(0)
		for i := 0; i < s.params.Order; i++ {
			var carry uint64
			sum, carry = bits.Add64(sum, historyAt(prev, i), 0)
			if carry != 0 {
				sum = math.MaxUint64
			}
		}
		return util.Min(sum, s.params.SymbolMax) * s.multipliers[0]
	}
	return 0
}

func (s *Selector) baseID(n int, prev []uint64, key uint64) uint64 {
	switch s.kind {
	case BAC:
		return 0
	case BinPosition:
		return uint64(util.Min(n, s.params.RestPos))
	}

	if n >= s.params.RestPos {
		return s.restCtx
	}
	if s.kind == BinsOrderN {
		key = 0
		for i := 0; i < s.params.Order; i++ {
			key += s.binDigit(historyAt(prev, i), n) * s.multipliers[i]
		}
	}
	return key + uint64(n)
}

// binDigit describes bin n of a previous symbol. For BI it is the bin
// itself. For the unary strings of TU and EGk it is 0 when the previous
// string ended before n, 1 inside its unary run and 2 at the bin that
// terminates the run.
func (s *Selector) binDigit(prevSymbol uint64, n int) uint64 {
	if s.binKind == binarization.BI {
		bin, _ := binarization.BinAt(s.binKind, s.binParams, prevSymbol, n)
		return uint64(bin)
	}

	runLength := binarization.UnaryLength(s.binKind, s.binParams, prevSymbol)
	switch {
	case uint64(n) > runLength:
		return 0
	case uint64(n) < runLength:
		return 1
	}
	return 2
}

func historyAt(prev []uint64, i int) uint64 {
	if i < len(prev) {
		return prev[i]
	}
	return 0
}

// NumContexts is a shortcut for New(...).NumContexts().
func NumContexts(kind ModelKind, p Params, binKind binarization.Kind, binParams binarization.Params) (uint32, error) {
	s, err := New(kind, p, binKind, binParams)
	if err != nil {
		return 0, err
	}
	return s.NumContexts(), nil
}
