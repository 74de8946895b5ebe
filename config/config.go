// Package config loads coder profiles from YAML. A profile names the
// binarization and context model and carries everything else a coded unit
// needs, so encoder and decoder can share one file.
package config

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/kpfaulkner/cabac-go/binarization"
	"github.com/kpfaulkner/cabac-go/ctxselect"
	"github.com/kpfaulkner/cabac-go/entropy"
	"github.com/kpfaulkner/cabac-go/options"
	"github.com/kpfaulkner/cabac-go/sequence"
)

var ErrInvalidProfile = errors.New("invalid profile")

type ContextInit struct {
	P1       float64 `yaml:"p1"`
	ShiftIdx uint8   `yaml:"shift_idx"`
}

// Profile is the YAML form of a coder configuration. Parameter vectors use
// the positional layouts of binarization.ParamsFromVector and
// ctxselect.ParamsFromVector, missing entries take their defaults.
type Profile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	Binarization string   `yaml:"binarization"`
	BinParams    []uint32 `yaml:"bin_params,omitempty"`
	ContextModel string   `yaml:"context_model"`
	CtxParams    []uint32 `yaml:"ctx_params,omitempty"`

	// SymbolPos overrides the mode in CtxParams when set, by name.
	SymbolPos string `yaml:"symbol_pos,omitempty"`

	Bypass bool `yaml:"bypass,omitempty"`

	InitP1         *float64      `yaml:"init_p1,omitempty"`
	ShiftIdx       *uint8        `yaml:"shift_idx,omitempty"`
	NumContexts    uint32        `yaml:"num_contexts,omitempty"`
	HistoryOffsets []int         `yaml:"history_offsets,omitempty"`
	ContextInits   []ContextInit `yaml:"context_inits,omitempty"`
}

// LoadProfile reads and validates the profile at path.
func LoadProfile(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read profile %s", path)
	}
	p, err := ParseProfile(b)
	if err != nil {
		return nil, errors.Wrapf(err, "profile %s", path)
	}
	return p, nil
}

// ParseProfile parses and validates a YAML profile. Unknown keys are an
// error.
func ParseProfile(b []byte) (*Profile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	p := &Profile{}
	if err := dec.Decode(p); err != nil {
		return nil, errors.Wrap(ErrInvalidProfile, err.Error())
	}
	if _, err := p.SequenceConfig(); err != nil {
		return nil, err
	}
	return p, nil
}

// SequenceConfig resolves the names and vectors of the profile.
func (p *Profile) SequenceConfig() (sequence.Config, error) {
	binKind, err := binarization.ParseKind(p.Binarization)
	if err != nil {
		return sequence.Config{}, errors.Wrap(err, "binarization")
	}

	model := ctxselect.BAC
	if p.ContextModel != "" {
		model, err = ctxselect.ParseModelKind(p.ContextModel)
		if err != nil {
			return sequence.Config{}, errors.Wrap(err, "context_model")
		}
	}

	cfg := sequence.ConfigFromVectors(binKind, p.BinParams, model, p.CtxParams)
	if p.SymbolPos != "" {
		mode, err := ctxselect.ParseSymbolPosMode(p.SymbolPos)
		if err != nil {
			return sequence.Config{}, errors.Wrap(err, "symbol_pos")
		}
		cfg.CtxParams.SymbolPos = mode
	}
	if err := cfg.Validate(); err != nil {
		return sequence.Config{}, err
	}
	return cfg, nil
}

func (p *Profile) CoderOptions() *options.CoderOptions {
	o := &options.CoderOptions{
		InitP1:         options.DefaultInitP1,
		ShiftIdx:       options.DefaultShiftIdx,
		NumContexts:    p.NumContexts,
		HistoryOffsets: p.HistoryOffsets,
	}
	if p.InitP1 != nil {
		o.InitP1 = *p.InitP1
	}
	if p.ShiftIdx != nil {
		o.ShiftIdx = *p.ShiftIdx
	}
	for _, ci := range p.ContextInits {
		o.ContextInits = append(o.ContextInits, entropy.ContextInit{P1: ci.P1, ShiftIdx: ci.ShiftIdx})
	}
	return options.NewCoderOptions(o)
}

// Marshal writes p back out as YAML.
func (p *Profile) Marshal() ([]byte, error) {
	b, err := yaml.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal profile")
	}
	return b, nil
}
