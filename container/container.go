// Package container frames a coded unit together with everything needed to
// decode it. The body is a protobuf wire format record.
package container

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/kpfaulkner/cabac-go/binarization"
	"github.com/kpfaulkner/cabac-go/ctxselect"
	"github.com/kpfaulkner/cabac-go/entropy"
	"github.com/kpfaulkner/cabac-go/options"
	"github.com/kpfaulkner/cabac-go/sequence"
)

const (
	magic   = "CBAC"
	Version = 1

	// MaxSymbols bounds the symbol count Decode will allocate for.
	MaxSymbols = 1 << 26

	// MaxNumBins and MaxContexts bound the per-bin scratch and the context
	// bank a container header can ask Decode for.
	MaxNumBins  = 1 << 16
	MaxContexts = 1 << 20
)

var (
	ErrBadMagic           = errors.New("not a coded unit container")
	ErrUnsupportedVersion = errors.New("unsupported container version")
	ErrMalformed          = errors.New("malformed container")
)

// field numbers
const (
	fieldVersion        protowire.Number = 1
	fieldBinarization   protowire.Number = 2
	fieldBinParams      protowire.Number = 3
	fieldContextModel   protowire.Number = 4
	fieldCtxParams      protowire.Number = 5
	fieldBypass         protowire.Number = 6
	fieldNumSymbols     protowire.Number = 7
	fieldInitP1         protowire.Number = 8
	fieldShiftIdx       protowire.Number = 9
	fieldNumContexts    protowire.Number = 10
	fieldHistoryOffsets protowire.Number = 11
	fieldContextInit    protowire.Number = 12
	fieldPayload        protowire.Number = 13

	// inside fieldContextInit
	fieldInitEntryP1       protowire.Number = 1
	fieldInitEntryShiftIdx protowire.Number = 2
)

// Unit is a coded unit plus its coding parameters.
type Unit struct {
	Config     sequence.Config
	Options    options.CoderOptions
	Bypass     bool
	NumSymbols uint64
	Payload    []byte
}

// Marshal returns the framed form of u, magic included.
func Marshal(u *Unit) []byte {
	b := []byte(magic)
	b = appendVarint(b, fieldVersion, Version)
	b = appendVarint(b, fieldBinarization, uint64(u.Config.Binarization))
	b = appendPacked(b, fieldBinParams, u.Config.BinParams.Vector())
	b = appendVarint(b, fieldContextModel, uint64(u.Config.ContextModel))
	b = appendPacked(b, fieldCtxParams, u.Config.CtxParams.Vector())
	if u.Bypass {
		b = appendVarint(b, fieldBypass, 1)
	}
	b = appendVarint(b, fieldNumSymbols, u.NumSymbols)

	b = protowire.AppendTag(b, fieldInitP1, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(u.Options.InitP1))
	b = appendVarint(b, fieldShiftIdx, uint64(u.Options.ShiftIdx))
	if u.Options.NumContexts != 0 {
		b = appendVarint(b, fieldNumContexts, uint64(u.Options.NumContexts))
	}
	if len(u.Options.HistoryOffsets) > 0 {
		offsets := make([]uint32, len(u.Options.HistoryOffsets))
		for i, off := range u.Options.HistoryOffsets {
			offsets[i] = uint32(off)
		}
		b = appendPacked(b, fieldHistoryOffsets, offsets)
	}
	for _, ci := range u.Options.ContextInits {
		var entry []byte
		entry = protowire.AppendTag(entry, fieldInitEntryP1, protowire.Fixed64Type)
		entry = protowire.AppendFixed64(entry, math.Float64bits(ci.P1))
		entry = appendVarint(entry, fieldInitEntryShiftIdx, uint64(ci.ShiftIdx))
		b = protowire.AppendTag(b, fieldContextInit, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}

	b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
	b = protowire.AppendBytes(b, u.Payload)
	return b
}

// Unmarshal parses the output of Marshal. Unknown fields are skipped.
func Unmarshal(b []byte) (*Unit, error) {
	if !bytes.HasPrefix(b, []byte(magic)) {
		return nil, ErrBadMagic
	}
	b = b[len(magic):]

	u := &Unit{}
	version := uint64(0)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, errors.Wrap(ErrMalformed, protowire.ParseError(n).Error())
		}
		b = b[n:]

		var err error
		switch {
		case num == fieldContextInit && typ == protowire.BytesType:
			var entry []byte
			entry, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				var ci entropy.ContextInit
				ci, err = parseContextInit(entry)
				u.Options.ContextInits = append(u.Options.ContextInits, ci)
			}
		case num == fieldInitP1 && typ == protowire.Fixed64Type:
			var v uint64
			v, n = protowire.ConsumeFixed64(b)
			u.Options.InitP1 = math.Float64frombits(v)
		case typ == protowire.BytesType:
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			if n >= 0 {
				err = u.setBytes(num, v)
			}
		case typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			if num == fieldVersion {
				version = v
			}
			u.setVarint(num, v)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, errors.Wrapf(ErrMalformed, "field %d: %v", num, protowire.ParseError(n))
		}
		if err != nil {
			return nil, errors.Wrapf(err, "field %d", num)
		}
		b = b[n:]
	}

	if version != Version {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", version)
	}
	return u, nil
}

func (u *Unit) setVarint(num protowire.Number, v uint64) {
	switch num {
	case fieldBinarization:
		u.Config.Binarization = binarization.Kind(v)
	case fieldContextModel:
		u.Config.ContextModel = ctxselect.ModelKind(v)
	case fieldBypass:
		u.Bypass = v != 0
	case fieldNumSymbols:
		u.NumSymbols = v
	case fieldShiftIdx:
		u.Options.ShiftIdx = uint8(v)
	case fieldNumContexts:
		u.Options.NumContexts = uint32(v)
	}
}

func (u *Unit) setBytes(num protowire.Number, v []byte) error {
	switch num {
	case fieldBinParams:
		vec, err := parsePacked(v)
		if err != nil {
			return err
		}
		u.Config.BinParams = binarization.ParamsFromVector(vec)
	case fieldCtxParams:
		vec, err := parsePacked(v)
		if err != nil {
			return err
		}
		u.Config.CtxParams = ctxselect.ParamsFromVector(vec)
	case fieldHistoryOffsets:
		vec, err := parsePacked(v)
		if err != nil {
			return err
		}
		u.Options.HistoryOffsets = make([]int, len(vec))
		for i, off := range vec {
			u.Options.HistoryOffsets[i] = int(off)
		}
	case fieldPayload:
		u.Payload = append([]byte(nil), v...)
	}
	return nil
}

func parseContextInit(b []byte) (entropy.ContextInit, error) {
	var ci entropy.ContextInit
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return ci, ErrMalformed
		}
		b = b[n:]
		switch {
		case num == fieldInitEntryP1 && typ == protowire.Fixed64Type:
			var v uint64
			v, n = protowire.ConsumeFixed64(b)
			ci.P1 = math.Float64frombits(v)
		case num == fieldInitEntryShiftIdx && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			ci.ShiftIdx = uint8(v)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return ci, ErrMalformed
		}
		b = b[n:]
	}
	return ci, nil
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendPacked(b []byte, num protowire.Number, vec []uint32) []byte {
	var packed []byte
	for _, v := range vec {
		packed = protowire.AppendVarint(packed, uint64(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func parsePacked(b []byte) ([]uint32, error) {
	var vec []uint32
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, ErrMalformed
		}
		if v > math.MaxUint32 {
			return nil, errors.Wrapf(ErrMalformed, "value %d does not fit 32 bits", v)
		}
		vec = append(vec, uint32(v))
		b = b[n:]
	}
	return vec, nil
}

// Write frames u onto w.
func Write(w io.Writer, u *Unit) error {
	if _, err := w.Write(Marshal(u)); err != nil {
		return errors.Wrap(err, "unable to write container")
	}
	return nil
}

// Read reads a whole container from r.
func Read(r io.Reader) (*Unit, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read container")
	}
	return Unmarshal(b)
}

// Encode codes symbols with cfg and opts and frames the result.
func Encode(symbols []uint64, cfg sequence.Config, opts *options.CoderOptions, bypass bool) (*Unit, error) {
	o := options.NewCoderOptions(opts)
	enc, err := sequence.NewEncoder(cfg, sequence.FromCoderOptions(o)...)
	if err != nil {
		return nil, err
	}
	if bypass {
		err = enc.EncodeSymbolsBypass(symbols)
	} else {
		err = enc.EncodeSymbols(symbols)
	}
	if err != nil {
		return nil, err
	}
	payload, err := enc.Finish()
	if err != nil {
		return nil, err
	}
	return &Unit{
		Config:     cfg,
		Options:    *o,
		Bypass:     bypass,
		NumSymbols: uint64(len(symbols)),
		Payload:    payload,
	}, nil
}

// checkLimits rejects headers whose coder would allocate more than the
// container limits allow. Nothing is allocated before the checks pass.
func (u *Unit) checkLimits() error {
	if u.NumSymbols > MaxSymbols {
		return errors.Wrapf(ErrMalformed, "%d symbols, limit is %d", u.NumSymbols, MaxSymbols)
	}
	if n := binarization.MaxBins(u.Config.Binarization, u.Config.BinParams); n > MaxNumBins {
		return corrupt("%d bins per symbol, limit is %d", n, MaxNumBins)
	}
	if u.Options.NumContexts > MaxContexts {
		return corrupt("%d contexts, limit is %d", u.Options.NumContexts, MaxContexts)
	}
	if len(u.Options.ContextInits) > MaxContexts {
		return corrupt("%d context inits, limit is %d", len(u.Options.ContextInits), MaxContexts)
	}
	needed, err := u.Config.NumContexts()
	if err != nil {
		return err
	}
	if needed > MaxContexts {
		return corrupt("context model needs %d contexts, limit is %d", needed, MaxContexts)
	}
	return nil
}

// corrupt matches both ErrMalformed and entropy.ErrCorruptStream.
func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrMalformed, entropy.ErrCorruptStream, fmt.Sprintf(format, args...))
}

// Decode decodes the symbols of u.
func (u *Unit) Decode() ([]uint64, error) {
	if err := u.checkLimits(); err != nil {
		return nil, err
	}
	dec, err := sequence.NewDecoder(u.Payload, u.Config, sequence.FromCoderOptions(&u.Options)...)
	if err != nil {
		return nil, err
	}
	var symbols []uint64
	if u.Bypass {
		symbols, err = dec.DecodeSymbolsBypass(int(u.NumSymbols))
	} else {
		symbols, err = dec.DecodeSymbols(int(u.NumSymbols))
	}
	if err != nil {
		return nil, err
	}
	if err := dec.Finish(); err != nil {
		return nil, err
	}
	return symbols, nil
}
