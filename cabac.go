package cabac

import (
	"github.com/pkg/errors"

	"github.com/kpfaulkner/cabac-go/options"
	"github.com/kpfaulkner/cabac-go/sequence"
)

// Encode codes symbols as a single context coded unit.
func Encode(symbols []uint64, cfg sequence.Config, opts *options.CoderOptions) ([]byte, error) {
	enc, err := sequence.NewEncoder(cfg, coderOptions(opts)...)
	if err != nil {
		return nil, err
	}
	if err := enc.EncodeSymbols(symbols); err != nil {
		return nil, errors.Wrap(err, "encode")
	}
	return enc.Finish()
}

// Decode reads n symbols from a unit made by Encode with the same cfg and
// opts.
func Decode(data []byte, n int, cfg sequence.Config, opts *options.CoderOptions) ([]uint64, error) {
	dec, err := sequence.NewDecoder(data, cfg, coderOptions(opts)...)
	if err != nil {
		return nil, err
	}
	symbols, err := dec.DecodeSymbols(n)
	if err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if err := dec.Finish(); err != nil {
		return nil, err
	}
	return symbols, nil
}

// EncodeBypass codes symbols with every bin bypass coded. The context model
// part of cfg is still validated but not used.
func EncodeBypass(symbols []uint64, cfg sequence.Config, opts *options.CoderOptions) ([]byte, error) {
	enc, err := sequence.NewEncoder(cfg, coderOptions(opts)...)
	if err != nil {
		return nil, err
	}
	if err := enc.EncodeSymbolsBypass(symbols); err != nil {
		return nil, errors.Wrap(err, "encode bypass")
	}
	return enc.Finish()
}

func DecodeBypass(data []byte, n int, cfg sequence.Config, opts *options.CoderOptions) ([]uint64, error) {
	dec, err := sequence.NewDecoder(data, cfg, coderOptions(opts)...)
	if err != nil {
		return nil, err
	}
	symbols, err := dec.DecodeSymbolsBypass(n)
	if err != nil {
		return nil, errors.Wrap(err, "decode bypass")
	}
	if err := dec.Finish(); err != nil {
		return nil, err
	}
	return symbols, nil
}

func coderOptions(opts *options.CoderOptions) []sequence.Option {
	return sequence.FromCoderOptions(options.NewCoderOptions(opts))
}
