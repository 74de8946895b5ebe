package sequence

import (
	"github.com/pkg/errors"

	"github.com/kpfaulkner/cabac-go/binarization"
	"github.com/kpfaulkner/cabac-go/bitio"
	"github.com/kpfaulkner/cabac-go/ctxselect"
	"github.com/kpfaulkner/cabac-go/entropy"
	"github.com/kpfaulkner/cabac-go/util"
)

// Encoder codes symbols into a single coded unit. It owns its context bank
// and output buffer, so independent encoders can run on separate goroutines.
type Encoder struct {
	cfg      Config
	settings *settings
	selector *ctxselect.Selector
	writer   *bitio.BitWriter
	bin      *entropy.BinEncoder

	// scratch
	ctxIDs  []uint32
	history []uint64

	finished bool
}

func NewEncoder(cfg Config, opts ...Option) (*Encoder, error) {
	sel, err := cfg.selector()
	if err != nil {
		return nil, err
	}
	s, err := newSettings(cfg, opts)
	if err != nil {
		return nil, err
	}
	needed, err := cfg.NumContexts()
	if err != nil {
		return nil, err
	}
	bank, err := s.newBank(needed)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create context bank")
	}

	s.logger.Debugf("encoder %s/%s, %d contexts (%d needed), history offsets %v",
		cfg.Binarization, cfg.ContextModel, bank.Len(), needed, s.historyOffsets)

	e := &Encoder{
		cfg:      cfg,
		settings: s,
		selector: sel,
		writer:   bitio.NewBitWriter(),
		ctxIDs:   util.GetUint32Slice(cfg.maxBins()),
		history:  util.GetUint64Slice(len(s.historyOffsets)),
	}
	e.bin = entropy.NewBinEncoder(e.writer, bank)
	e.bin.Start()
	return e, nil
}

// EncodeSymbol codes one symbol with context modelling. history[0] is the
// most recent earlier symbol, symbolIdx the position of symbol within its
// sequence.
func (e *Encoder) EncodeSymbol(symbol uint64, history []uint64, symbolIdx int) error {
	if e.finished {
		return ErrFinished
	}
	if e.selector == nil {
		return errors.Wrapf(ctxselect.ErrUnsupportedBinarization, "%s is bypass only", e.cfg.Binarization)
	}
	e.selector.ContextIDs(e.ctxIDs, history, symbolIdx)
	return binarization.Encode(e.bin, e.cfg.Binarization, e.cfg.BinParams, symbol, e.ctxIDs)
}

// EncodeSymbols codes symbols as one sequence, the history of each symbol
// is taken from the ones before it.
func (e *Encoder) EncodeSymbols(symbols []uint64) error {
	if e.finished {
		return ErrFinished
	}
	for i, sym := range symbols {
		e.settings.fillHistory(e.history, symbols, i)
		if err := e.EncodeSymbol(sym, e.history, i); err != nil {
			return errors.Wrapf(err, "symbol %d", i)
		}
	}
	return nil
}

// EncodeSymbolsBypass codes symbols without touching any context.
func (e *Encoder) EncodeSymbolsBypass(symbols []uint64) error {
	if e.finished {
		return ErrFinished
	}
	for i, sym := range symbols {
		if err := binarization.EncodeBypass(e.bin, e.cfg.Binarization, e.cfg.BinParams, sym); err != nil {
			return errors.Wrapf(err, "symbol %d", i)
		}
	}
	return nil
}

// Finish terminates the coded unit and returns it. The encoder can not be
// used afterwards.
func (e *Encoder) Finish() ([]byte, error) {
	if e.finished {
		return nil, ErrFinished
	}
	e.bin.EncodeBinTrm(1)
	e.bin.Finish()
	e.bin.WriteByteAlignment()
	e.finished = true

	util.ReturnUint32Slice(e.ctxIDs)
	util.ReturnUint64Slice(e.history)
	e.ctxIDs, e.history = nil, nil

	e.settings.logger.Debugf("encoder finished, %d bits", e.writer.NumberOfWrittenBits())
	return e.writer.Bytes(), nil
}

// Bitstream returns the bytes written so far. Only complete after Finish.
func (e *Encoder) Bitstream() []byte {
	return e.writer.Bytes()
}

// Contexts exposes the bank, eg. to inspect adapted probabilities.
func (e *Encoder) Contexts() *entropy.ContextBank {
	return e.bin.Contexts()
}
