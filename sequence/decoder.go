package sequence

import (
	"github.com/pkg/errors"

	"github.com/kpfaulkner/cabac-go/binarization"
	"github.com/kpfaulkner/cabac-go/bitio"
	"github.com/kpfaulkner/cabac-go/ctxselect"
	"github.com/kpfaulkner/cabac-go/entropy"
	"github.com/kpfaulkner/cabac-go/util"
)

// Decoder reads symbols back from a coded unit made by Encoder with the same
// Config and options.
type Decoder struct {
	cfg      Config
	settings *settings
	selector *ctxselect.Selector
	reader   *bitio.BitReader
	bin      *entropy.BinDecoder

	ctxIDs  []uint32
	history []uint64

	finished bool
}

func NewDecoder(data []byte, cfg Config, opts ...Option) (*Decoder, error) {
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

	s.logger.Debugf("decoder %s/%s, %d contexts (%d needed), %d bytes",
		cfg.Binarization, cfg.ContextModel, bank.Len(), needed, len(data))

	d := &Decoder{
		cfg:      cfg,
		settings: s,
		selector: sel,
		reader:   bitio.NewBitReader(data),
		ctxIDs:   util.GetUint32Slice(cfg.maxBins()),
		history:  util.GetUint64Slice(len(s.historyOffsets)),
	}
	d.bin = entropy.NewBinDecoder(d.reader, bank)
	if err := d.bin.Start(); err != nil {
		return nil, errors.Wrap(err, "unable to start decoder")
	}
	return d, nil
}

// DecodeSymbol mirrors Encoder.EncodeSymbol.
func (d *Decoder) DecodeSymbol(history []uint64, symbolIdx int) (uint64, error) {
	if d.finished {
		return 0, ErrFinished
	}
	if d.selector == nil {
		return 0, errors.Wrapf(ctxselect.ErrUnsupportedBinarization, "%s is bypass only", d.cfg.Binarization)
	}
	d.selector.ContextIDs(d.ctxIDs, history, symbolIdx)
	return binarization.Decode(d.bin, d.cfg.Binarization, d.cfg.BinParams, d.ctxIDs)
}

// DecodeSymbols decodes a sequence of n symbols coded by
// Encoder.EncodeSymbols.
func (d *Decoder) DecodeSymbols(n int) ([]uint64, error) {
	if d.finished {
		return nil, ErrFinished
	}
	if n < 0 {
		return nil, errors.Errorf("negative symbol count %d", n)
	}
	symbols := make([]uint64, n)
	for i := range symbols {
		d.settings.fillHistory(d.history, symbols, i)
		sym, err := d.DecodeSymbol(d.history, i)
		if err != nil {
			return nil, errors.Wrapf(err, "symbol %d", i)
		}
		symbols[i] = sym
	}
	return symbols, nil
}

func (d *Decoder) DecodeSymbolsBypass(n int) ([]uint64, error) {
	if d.finished {
		return nil, ErrFinished
	}
	if n < 0 {
		return nil, errors.Errorf("negative symbol count %d", n)
	}
	symbols := make([]uint64, n)
	for i := range symbols {
		sym, err := binarization.DecodeBypass(d.bin, d.cfg.Binarization, d.cfg.BinParams)
		if err != nil {
			return nil, errors.Wrapf(err, "symbol %d", i)
		}
		symbols[i] = sym
	}
	return symbols, nil
}

// Finish reads the terminating bin and checks the unit ends where the
// encoder ended it.
func (d *Decoder) Finish() error {
	if d.finished {
		return ErrFinished
	}
	d.finished = true
	util.ReturnUint32Slice(d.ctxIDs)
	util.ReturnUint64Slice(d.history)
	d.ctxIDs, d.history = nil, nil

	trm, err := d.bin.DecodeBinTrm()
	if err != nil {
		return errors.Wrap(err, "unable to read terminating bin")
	}
	if trm != 1 {
		return ErrMissingTerminator
	}
	if err := d.bin.Finish(); err != nil {
		return errors.Wrap(err, "unit does not end cleanly")
	}
	return nil
}

func (d *Decoder) Contexts() *entropy.ContextBank {
	return d.bin.Contexts()
}
