package util

import (
	"math"
	"testing"
)

func TestFloorLog2(t *testing.T) {
	tests := []struct {
		input    uint64
		expected int
	}{
		{0, -1},
		{1, 0},
		{2, 1},
		{3, 1},
		{4, 2},
		{255, 7},
		{256, 8},
		{math.MaxUint64, 63},
	}

	for _, tt := range tests {
		result := FloorLog2(tt.input)
		if result != tt.expected {
			t.Errorf("FloorLog2(%d) = %d; want %d", tt.input, result, tt.expected)
		}
	}
}

// Clip tests
func TestClip(t *testing.T) {
	tests := []struct {
		v, lo, hi int32
		expected  int32
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tt := range tests {
		result := Clip(tt.v, tt.lo, tt.hi)
		if result != tt.expected {
			t.Errorf("Clip(%d, %d, %d) = %d; want %d", tt.v, tt.lo, tt.hi, result, tt.expected)
		}
	}
}

func TestClipUnsigned(t *testing.T) {
	if Clip(uint32(0), 1, 32767) != 1 {
		t.Error("Clip(0, 1, 32767) should be 1")
	}
	if Clip(uint32(32768), 1, 32767) != 32767 {
		t.Error("Clip(32768, 1, 32767) should be 32767")
	}
}

func TestPowChecked(t *testing.T) {
	tests := []struct {
		base     uint64
		exp      int
		expected uint64
		ok       bool
	}{
		{2, 0, 1, true},
		{0, 0, 1, true},
		{3, 3, 27, true},
		{17, 3, 4913, true},
		{2, 63, 1 << 63, true},
		{2, 64, 0, false},
		{1 << 32, 2, 0, false},
	}

	for _, tt := range tests {
		result, ok := PowChecked(tt.base, tt.exp)
		if ok != tt.ok || result != tt.expected {
			t.Errorf("PowChecked(%d, %d) = %d, %v; want %d, %v", tt.base, tt.exp, result, ok, tt.expected, tt.ok)
		}
	}
}

func TestMinHistoryClip(t *testing.T) {
	tests := []struct {
		symbol    uint64
		symbolMax uint64
		expected  uint64
	}{
		{0, 16, 0},
		{16, 16, 16},
		{200, 16, 16},
		{math.MaxUint64, 32, 32},
		{5, 0, 0},
	}

	for _, tt := range tests {
		result := Min(tt.symbol, tt.symbolMax)
		if result != tt.expected {
			t.Errorf("Min(%d, %d) = %d; want %d", tt.symbol, tt.symbolMax, result, tt.expected)
		}
	}
}

func TestMinBinPosition(t *testing.T) {
	tests := []struct {
		n        int
		restPos  int
		expected int
	}{
		{0, 0, 0},
		{3, 10, 3},
		{10, 10, 10},
		{511, 10, 10},
	}

	for _, tt := range tests {
		result := Min(tt.n, tt.restPos)
		if result != tt.expected {
			t.Errorf("Min(%d, %d) = %d; want %d", tt.n, tt.restPos, result, tt.expected)
		}
	}
}

func TestMaxBankSize(t *testing.T) {
	tests := []struct {
		needed    uint32
		requested uint32
		expected  uint32
	}{
		{171, 0, 171},
		{171, 171, 171},
		{171, 1000, 1000},
		{1, math.MaxUint32, math.MaxUint32},
	}

	for _, tt := range tests {
		result := Max(tt.needed, tt.requested)
		if result != tt.expected {
			t.Errorf("Max(%d, %d) = %d; want %d", tt.needed, tt.requested, result, tt.expected)
		}
	}
}

func TestMinMaxNaN(t *testing.T) {
	if !math.IsNaN(Max(1.0, math.NaN())) {
		t.Error("Max with NaN should return NaN")
	}
	if !math.IsNaN(Min(math.NaN(), 1.0)) {
		t.Error("Min with NaN should return NaN")
	}
	if Max[uint32]() != 0 || Min[int]() != 0 {
		t.Error("no arguments should give the zero value")
	}
}
