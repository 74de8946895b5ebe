package entropy

import "errors"

var (
	ErrInvalidProbability = errors.New("initial probability must be within [0,1]")
	ErrInvalidShiftIdx    = errors.New("shift index out of range")
	ErrEmptyContextBank   = errors.New("context bank needs at least one context")
	ErrContextOutOfRange  = errors.New("context index exceeds context bank size")
	ErrCorruptStream      = errors.New("corrupt stream")
	ErrNotStarted         = errors.New("decoder used before Start")
	ErrInvalidNumBins     = errors.New("number of bypass bins must be between 0-32, inclusive")
	ErrInvalidRiceParams  = errors.New("invalid rice parameters")
)
