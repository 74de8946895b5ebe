package options

import "github.com/kpfaulkner/cabac-go/entropy"

const (
	DefaultInitP1   = 0.5
	DefaultShiftIdx = 8
)

// CoderOptions are the knobs of a coded unit that are not part of the
// binarization / context model configuration. Encoder and decoder must use
// the same values.
type CoderOptions struct {
	// InitP1 and ShiftIdx initialise every context unless ContextInits is set.
	InitP1   float64
	ShiftIdx uint8

	// ContextInits, if set, gives each context its own initial state.
	ContextInits []entropy.ContextInit

	// NumContexts grows the bank beyond what the context model needs. 0 means
	// exactly the needed size.
	NumContexts uint32

	// HistoryOffsets picks which earlier symbols form the history, nil means
	// 1..order.
	HistoryOffsets []int

	Debug bool
}

// NewCoderOptions copies options as given. nil gives the defaults. Zero
// fields are honored: InitP1 0 is clamped to the lowest probability state
// when the bank is built, the same as ShiftIdx 0 keeps the fastest window.
func NewCoderOptions(options *CoderOptions) *CoderOptions {

	opt := &CoderOptions{
		InitP1:   DefaultInitP1,
		ShiftIdx: DefaultShiftIdx,
	}
	if options != nil {
		opt.InitP1 = options.InitP1
		opt.ShiftIdx = options.ShiftIdx
		opt.ContextInits = append([]entropy.ContextInit(nil), options.ContextInits...)
		if len(opt.ContextInits) == 0 {
			opt.ContextInits = nil
		}
		opt.NumContexts = options.NumContexts
		if options.HistoryOffsets != nil {
			opt.HistoryOffsets = append([]int(nil), options.HistoryOffsets...)
		}
		opt.Debug = options.Debug
	}
	return opt
}
