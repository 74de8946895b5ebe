package options

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kpfaulkner/cabac-go/entropy"
)

func TestNewCoderOptions(t *testing.T) {

	for _, tc := range []struct {
		name     string
		options  *CoderOptions
		expected *CoderOptions
	}{
		{
			name:     "nil gives defaults",
			options:  nil,
			expected: &CoderOptions{InitP1: 0.5, ShiftIdx: 8},
		},
		{
			name:     "zero fields are kept",
			options:  &CoderOptions{},
			expected: &CoderOptions{InitP1: 0, ShiftIdx: 0},
		},
		{
			name:     "zero probability kept like zero shift",
			options:  &CoderOptions{InitP1: 0, ShiftIdx: 4},
			expected: &CoderOptions{InitP1: 0, ShiftIdx: 4},
		},
		{
			name: "copied",
			options: &CoderOptions{
				InitP1:         0.25,
				ShiftIdx:       12,
				ContextInits:   []entropy.ContextInit{{P1: 0.1, ShiftIdx: 2}},
				NumContexts:    40,
				HistoryOffsets: []int{1, 3},
				Debug:          true,
			},
			expected: &CoderOptions{
				InitP1:         0.25,
				ShiftIdx:       12,
				ContextInits:   []entropy.ContextInit{{P1: 0.1, ShiftIdx: 2}},
				NumContexts:    40,
				HistoryOffsets: []int{1, 3},
				Debug:          true,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NewCoderOptions(tc.options))
		})
	}
}

func TestNewCoderOptionsCopies(t *testing.T) {
	in := &CoderOptions{HistoryOffsets: []int{1, 2}}
	out := NewCoderOptions(in)
	in.HistoryOffsets[0] = 7
	assert.Equal(t, []int{1, 2}, out.HistoryOffsets)
}
