package testcommon

import (
	"errors"
	"fmt"
)

var ErrNoMoreBins = errors.New("no more data")

// FakeBinReader replays bins, usually the ones captured by a BinRecorder.
type FakeBinReader struct {
	Bins     []Bin
	RiceData []uint32

	// ContextsRequested collects the ctxID of every DecodeBin call.
	ContextsRequested []uint32
}

func NewFakeBinReader(bins []Bin) *FakeBinReader {
	return &FakeBinReader{Bins: bins}
}

func NewFakeBinReaderFromRecorder(rec *BinRecorder) *FakeBinReader {
	return &FakeBinReader{
		Bins:     append([]Bin(nil), rec.Bins...),
		RiceData: append([]uint32(nil), rec.RiceData...),
	}
}

func (f *FakeBinReader) next(bypass bool) (uint8, error) {
	if len(f.Bins) == 0 {
		return 0, ErrNoMoreBins
	}
	b := f.Bins[0]
	f.Bins = f.Bins[1:]
	if b.Bypass != bypass {
		return 0, fmt.Errorf("bin mode mismatch, recorded bypass=%v", b.Bypass)
	}
	return b.Value, nil
}

func (f *FakeBinReader) DecodeBin(ctxID uint32) (uint8, error) {
	f.ContextsRequested = append(f.ContextsRequested, ctxID)
	return f.next(false)
}

func (f *FakeBinReader) DecodeBinEP() (uint8, error) {
	return f.next(true)
}

func (f *FakeBinReader) DecodeBinsEP(numBins int) (uint32, error) {
	var res uint32
	for i := 0; i < numBins; i++ {
		b, err := f.next(true)
		if err != nil {
			return 0, err
		}
		res = res<<1 | uint32(b)
	}
	return res, nil
}

func (f *FakeBinReader) DecodeRemAbsEP(riceParam uint32, cutoff uint32, maxLog2DynamicRange int) (uint32, error) {
	if len(f.RiceData) > 0 {
		val := f.RiceData[0]
		f.RiceData = f.RiceData[1:]
		return val, nil
	}
	return 0, ErrNoMoreBins
}
