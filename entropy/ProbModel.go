package entropy

import (
	"math"

	"github.com/kpfaulkner/cabac-go/util"
)

const (
	probBits  = 15
	probBits0 = 10
	probBits1 = 14

	// keep the top probBits0 / probBits1 bits of the 15 bit estimates.
	mask0 = uint16(((1 << probBits0) - 1) << (probBits - probBits0))
	mask1 = uint16(((1 << probBits1) - 1) << (probBits - probBits1))

	maxProbState = 1<<probBits - 1

	MaxShiftIdx = 15
)

// number of renormalisation shifts for an LPS range, indexed by lps >> 3.
var renormTable = [32]uint8{
	6, 5, 4, 4, 3, 3, 3, 3, 2, 2, 2, 2, 2, 2, 2, 2,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
}

// ContextInit is the starting point for a single context.
type ContextInit struct {
	P1       float64
	ShiftIdx uint8
}

// ProbModel is an adaptive estimate of the probability that the next bin is
// a 1. Two windows are tracked, a fast one (state[0]) and a slow one
// (state[1]), and the coder uses their average.
type ProbModel struct {
	state [2]uint16
	rate  uint8
}

func NewProbModel(p1 float64, shiftIdx uint8) (ProbModel, error) {
	m := ProbModel{}
	if err := m.Init(p1, shiftIdx); err != nil {
		return ProbModel{}, err
	}
	return m, nil
}

// Init sets the initial estimate and the adaptation rate. Larger shiftIdx
// values adapt more slowly.
func (m *ProbModel) Init(p1 float64, shiftIdx uint8) error {
	if math.IsNaN(p1) || p1 < 0 || p1 > 1 {
		return ErrInvalidProbability
	}
	if shiftIdx > MaxShiftIdx {
		return ErrInvalidShiftIdx
	}

	p := util.Clip(uint32(math.Round(p1*(1<<probBits))), 1, maxProbState)
	m.state[0] = uint16(p) & mask0
	m.state[1] = uint16(p) & mask1
	m.setShiftIdx(shiftIdx)
	return nil
}

func (m *ProbModel) setShiftIdx(shiftIdx uint8) {
	rate0 := 2 + ((shiftIdx >> 2) & 3)
	rate1 := 3 + rate0 + (shiftIdx & 3)
	m.rate = 16*rate0 + rate1
}

// Update moves both windows towards the coded bin.
func (m *ProbModel) Update(bin uint8) {
	rate0 := m.rate >> 4
	rate1 := m.rate & 15

	m.state[0] -= (m.state[0] >> rate0) & mask0
	m.state[1] -= (m.state[1] >> rate1) & mask1
	if bin != 0 {
		m.state[0] += (uint16(maxProbState) >> rate0) & mask0
		m.state[1] += (uint16(maxProbState) >> rate1) & mask1
	}
}

// State is the combined 8 bit estimate.
func (m *ProbModel) State() uint8 {
	return uint8((uint32(m.state[0]) + uint32(m.state[1])) >> 8)
}

// MPS is the most probable symbol.
func (m *ProbModel) MPS() uint8 {
	return m.State() >> 7
}

// LPS returns the sub range assigned to the least probable symbol. Never less
// than 4 so the range can not collapse.
func (m *ProbModel) LPS(rng uint32) uint32 {
	q := uint32(m.State())
	if q&0x80 != 0 {
		q ^= 0xff
	}
	return ((q>>2)*(rng>>5))>>1 + 4
}

// P1 is the current estimate for a 1 bin as a float. Only for reporting.
func (m *ProbModel) P1() float64 {
	return float64(uint32(m.state[0])+uint32(m.state[1])) / float64(2<<probBits)
}

func (m *ProbModel) ShiftIdx() uint8 {
	rate0 := m.rate >> 4
	rate1 := m.rate & 15
	return (rate0-2)<<2 | (rate1 - 3 - rate0)
}

func renormBitsLPS(lps uint32) int32 {
	return int32(renormTable[lps>>3])
}
