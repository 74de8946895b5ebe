package entropy

import "fmt"

// ContextBank is the fixed size set of probability models owned by a single
// encoder or decoder.
type ContextBank struct {
	models  []ProbModel
	initial []ProbModel
}

// NewContextBank creates numContexts models all starting from the same
// estimate.
func NewContextBank(numContexts int, p1 float64, shiftIdx uint8) (*ContextBank, error) {
	if numContexts <= 0 {
		return nil, ErrEmptyContextBank
	}
	m, err := NewProbModel(p1, shiftIdx)
	if err != nil {
		return nil, err
	}
	b := &ContextBank{models: make([]ProbModel, numContexts)}
	for i := range b.models {
		b.models[i] = m
	}
	b.initial = append([]ProbModel(nil), b.models...)
	return b, nil
}

// NewContextBankWithInits creates one model per entry in inits.
func NewContextBankWithInits(inits []ContextInit) (*ContextBank, error) {
	if len(inits) == 0 {
		return nil, ErrEmptyContextBank
	}
	b := &ContextBank{models: make([]ProbModel, len(inits))}
	for i, ci := range inits {
		if err := b.models[i].Init(ci.P1, ci.ShiftIdx); err != nil {
			return nil, fmt.Errorf("context %d: %w", i, err)
		}
	}
	b.initial = append([]ProbModel(nil), b.models...)
	return b, nil
}

func (b *ContextBank) Len() int {
	return len(b.models)
}

func (b *ContextBank) Model(ctxID uint32) (*ProbModel, error) {
	if uint64(ctxID) >= uint64(len(b.models)) {
		return nil, fmt.Errorf("%w: %d >= %d", ErrContextOutOfRange, ctxID, len(b.models))
	}
	return &b.models[ctxID], nil
}

// Clone gives an independent copy, eg. to hand the same starting state to a
// decoder.
func (b *ContextBank) Clone() *ContextBank {
	c := &ContextBank{
		models:  append([]ProbModel(nil), b.models...),
		initial: b.initial,
	}
	return c
}

// Reset puts every model back to the state it was created with.
func (b *ContextBank) Reset() {
	copy(b.models, b.initial)
}
