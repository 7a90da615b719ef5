package cast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat64(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		v    any
		want float64
		ok   bool
	}{
		{"float64", float64(1.5), 1.5, true},
		{"float32", float32(2.5), 2.5, true},
		{"int", 3, 3, true},
		{"int64", int64(4), 4, true},
		{"uint64", uint64(12), 12, true},
		{"numeric string", " 0.25 ", 0.25, true},
		{"bad string", "warm", 0, false},
		{"NaN string", "NaN", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ToFloat64(tt.v)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestToInt64(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		v    any
		want int64
		ok   bool
	}{
		{"int", 40, 40, true},
		{"float64 truncates", 40.9, 40, true},
		{"uint64 clamps", uint64(math.MaxUint64), math.MaxInt64, true},
		{"float64 clamps high", 1e20, math.MaxInt64, true},
		{"float64 clamps low", -1e20, math.MinInt64, true},
		{"float32 clamps", float32(1e20), math.MaxInt64, true},
		{"string", "8192", 8192, true},
		{"NaN", math.NaN(), 0, false},
		{"bad string", "many", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ToInt64(tt.v)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToInt32_Clamps(t *testing.T) {
	t.Parallel()
	got, ok := ToInt32(int64(999_999_999_999))
	assert.True(t, ok)
	assert.Equal(t, int32(math.MaxInt32), got)

	got, ok = ToInt32(int64(-999_999_999_999))
	assert.True(t, ok)
	assert.Equal(t, int32(math.MinInt32), got)

	got, ok = ToInt32(1e20)
	assert.True(t, ok)
	assert.Equal(t, int32(math.MaxInt32), got)

	got, ok = ToInt32(-1e20)
	assert.True(t, ok)
	assert.Equal(t, int32(math.MinInt32), got)

	_, ok = ToInt32("x")
	assert.False(t, ok)
}
