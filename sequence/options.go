package sequence

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/cabac-go/ctxselect"
	"github.com/kpfaulkner/cabac-go/entropy"
	"github.com/kpfaulkner/cabac-go/options"
	"github.com/kpfaulkner/cabac-go/util"
)

// Option configures an Encoder or Decoder. Both sides of a coded unit need
// the same options.
type Option func(s *settings) error

type settings struct {
	initP1         float64
	shiftIdx       uint8
	contextInits   []entropy.ContextInit
	numContexts    uint32
	historyOffsets []int
	logger         *log.Entry
}

func newSettings(cfg Config, opts []Option) (*settings, error) {
	s := &settings{
		initP1:   options.DefaultInitP1,
		shiftIdx: options.DefaultShiftIdx,
		logger:   log.NewEntry(log.StandardLogger()),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.historyOffsets == nil {
		s.historyOffsets = cfg.defaultHistoryOffsets()
	}
	return s, nil
}

// WithHistoryOffsets sets which earlier symbols make up the history, offset 1
// being the symbol just before the current one. The first offset feeds the
// first history slot of the context model.
func WithHistoryOffsets(offsets []int) Option {
	return func(s *settings) error {
		if len(offsets) == 0 || len(offsets) > ctxselect.MaxOrder {
			return errors.Wrapf(ErrInvalidHistoryOffsets, "need 1..%d offsets, got %d", ctxselect.MaxOrder, len(offsets))
		}
		for _, off := range offsets {
			if off < 1 {
				return errors.Wrapf(ErrInvalidHistoryOffsets, "offset %d", off)
			}
		}
		s.historyOffsets = append([]int(nil), offsets...)
		return nil
	}
}

// WithContextInit starts every context from the same estimate.
func WithContextInit(p1 float64, shiftIdx uint8) Option {
	return func(s *settings) error {
		s.initP1 = p1
		s.shiftIdx = shiftIdx
		return nil
	}
}

// WithContextInits gives every context its own starting estimate, the bank
// gets exactly len(inits) contexts.
func WithContextInits(inits []entropy.ContextInit) Option {
	return func(s *settings) error {
		s.contextInits = append([]entropy.ContextInit(nil), inits...)
		return nil
	}
}

// WithNumContexts makes the bank larger than the context model needs.
func WithNumContexts(n uint32) Option {
	return func(s *settings) error {
		s.numContexts = n
		return nil
	}
}

// WithLogger sends the coder's debug output to logger instead of the
// standard logger.
func WithLogger(logger *log.Entry) Option {
	return func(s *settings) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// newBank sizes the bank to the configuration, needed is the count reported
// by Config.NumContexts.
func (s *settings) newBank(needed uint32) (*entropy.ContextBank, error) {
	if s.contextInits != nil {
		if uint32(len(s.contextInits)) < needed {
			return nil, errors.Wrapf(ErrBankTooSmall, "%d context inits, need %d", len(s.contextInits), needed)
		}
		return entropy.NewContextBankWithInits(s.contextInits)
	}

	if s.numContexts != 0 && s.numContexts < needed {
		return nil, errors.Wrapf(ErrBankTooSmall, "%d contexts, need %d", s.numContexts, needed)
	}
	n := util.Max(needed, s.numContexts)
	return entropy.NewContextBank(int(n), s.initP1, s.shiftIdx)
}

// fillHistory writes the history of symbols[i] into dst.
func (s *settings) fillHistory(dst []uint64, symbols []uint64, i int) {
	for j, off := range s.historyOffsets {
		if i-off >= 0 {
			dst[j] = symbols[i-off]
		} else {
			dst[j] = 0
		}
	}
}

// FromCoderOptions maps CoderOptions onto coder options.
func FromCoderOptions(o *options.CoderOptions) []Option {
	res := []Option{WithContextInit(o.InitP1, o.ShiftIdx)}
	if o.ContextInits != nil {
		res = append(res, WithContextInits(o.ContextInits))
	}
	if o.NumContexts != 0 {
		res = append(res, WithNumContexts(o.NumContexts))
	}
	if o.HistoryOffsets != nil {
		res = append(res, WithHistoryOffsets(o.HistoryOffsets))
	}
	if o.Debug {
		res = append(res, WithLogger(debugLogger()))
	}
	return res
}

// debugLogger writes where the standard logger does, at debug level, without
// touching the standard logger's own level.
func debugLogger() *log.Entry {
	std := log.StandardLogger()
	l := log.New()
	l.SetOutput(std.Out)
	l.SetFormatter(std.Formatter)
	l.SetLevel(log.DebugLevel)
	return log.NewEntry(l)
}
