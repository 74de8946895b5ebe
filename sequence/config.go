package sequence

import (
	"github.com/pkg/errors"

	"github.com/kpfaulkner/cabac-go/binarization"
	"github.com/kpfaulkner/cabac-go/ctxselect"
)

var (
	ErrFinished              = errors.New("coder already finished")
	ErrBankTooSmall          = errors.New("context bank smaller than the context model needs")
	ErrInvalidHistoryOffsets = errors.New("history offsets must be at least 1")
	ErrMissingTerminator     = errors.New("coded unit does not end with a terminating bin")
)

// Config is everything encoder and decoder have to agree on.
type Config struct {
	Binarization binarization.Kind
	BinParams    binarization.Params
	ContextModel ctxselect.ModelKind
	CtxParams    ctxselect.Params
}

// ConfigFromVectors builds a Config from the positional parameter vectors,
// see binarization.ParamsFromVector and ctxselect.ParamsFromVector.
func ConfigFromVectors(binKind binarization.Kind, binParams []uint32, model ctxselect.ModelKind, ctxParams []uint32) Config {
	return Config{
		Binarization: binKind,
		BinParams:    binarization.ParamsFromVector(binParams),
		ContextModel: model,
		CtxParams:    ctxselect.ParamsFromVector(ctxParams),
	}
}

// Validate checks the configuration. RICE is only ever bypass coded so its
// context model is not looked at.
func (c Config) Validate() error {
	_, err := c.selector()
	return err
}

// NumContexts is the smallest context bank the configuration can run with.
func (c Config) NumContexts() (uint32, error) {
	s, err := c.selector()
	if err != nil {
		return 0, err
	}
	if s == nil {
		return 1, nil
	}
	return s.NumContexts(), nil
}

// selector returns nil, nil for RICE.
func (c Config) selector() (*ctxselect.Selector, error) {
	if c.Binarization == binarization.RICE {
		if err := c.BinParams.Validate(c.Binarization); err != nil {
			return nil, errors.Wrap(err, "invalid binarization")
		}
		return nil, nil
	}
	s, err := ctxselect.New(c.ContextModel, c.CtxParams, c.Binarization, c.BinParams)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid configuration %s/%s", c.Binarization, c.ContextModel)
	}
	return s, nil
}

// maxBins is the length of the context id scratch.
func (c Config) maxBins() int {
	return binarization.MaxBins(c.Binarization, c.BinParams)
}

// defaultHistoryOffsets looks back 1..order symbols.
func (c Config) defaultHistoryOffsets() []int {
	order := c.CtxParams.Order
	if order < 1 {
		order = 1
	}
	if order > ctxselect.MaxOrder {
		order = ctxselect.MaxOrder
	}
	offsets := make([]int, order)
	for i := range offsets {
		offsets[i] = i + 1
	}
	return offsets
}
