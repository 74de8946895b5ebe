package testcommon

// Bin is a single recorded bin. CtxID is only meaningful for context coded
// bins.
type Bin struct {
	Value  uint8
	CtxID  uint32
	Bypass bool
}

type binWriter interface {
	EncodeBin(bin uint8, ctxID uint32) error
	EncodeBinEP(bin uint8)
	EncodeBinsEP(bins uint32, numBins int)
	EncodeRemAbsEP(value uint32, riceParam uint32, cutoff uint32, maxLog2DynamicRange int) error
}

// BinRecorder records every bin written through it and optionally forwards
// to a real encoder.
type BinRecorder struct {
	Bins     []Bin
	RiceData []uint32

	realBinWriter binWriter
}

// NewBinRecorder wraps realBinWriter, which may be nil.
func NewBinRecorder(realBinWriter binWriter) *BinRecorder {
	br := &BinRecorder{
		realBinWriter: realBinWriter,
	}

	return br
}

func (r *BinRecorder) EncodeBin(bin uint8, ctxID uint32) error {
	if r.realBinWriter != nil {
		if err := r.realBinWriter.EncodeBin(bin, ctxID); err != nil {
			return err
		}
	}
	r.Bins = append(r.Bins, Bin{Value: bin, CtxID: ctxID})
	return nil
}

func (r *BinRecorder) EncodeBinEP(bin uint8) {
	if r.realBinWriter != nil {
		r.realBinWriter.EncodeBinEP(bin)
	}
	r.Bins = append(r.Bins, Bin{Value: bin, Bypass: true})
}

func (r *BinRecorder) EncodeBinsEP(bins uint32, numBins int) {
	if r.realBinWriter != nil {
		r.realBinWriter.EncodeBinsEP(bins, numBins)
	}
	for i := numBins - 1; i >= 0; i-- {
		r.Bins = append(r.Bins, Bin{Value: uint8(bins>>i) & 1, Bypass: true})
	}
}

func (r *BinRecorder) EncodeRemAbsEP(value uint32, riceParam uint32, cutoff uint32, maxLog2DynamicRange int) error {
	if r.realBinWriter != nil {
		if err := r.realBinWriter.EncodeRemAbsEP(value, riceParam, cutoff, maxLog2DynamicRange); err != nil {
			return err
		}
	}
	r.RiceData = append(r.RiceData, value)
	return nil
}

// Values returns just the bin values, handy for comparing bin strings.
func (r *BinRecorder) Values() []uint8 {
	res := make([]uint8, len(r.Bins))
	for i, b := range r.Bins {
		res[i] = b.Value
	}
	return res
}

// ContextIDs returns the contexts used by the context coded bins in order.
func (r *BinRecorder) ContextIDs() []uint32 {
	var res []uint32
	for _, b := range r.Bins {
		if !b.Bypass {
			res = append(res, b.CtxID)
		}
	}
	return res
}

func (r *BinRecorder) Reset() {
	r.Bins = r.Bins[:0]
	r.RiceData = r.RiceData[:0]
}
