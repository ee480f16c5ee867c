package kpi

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"numeric string", "12500", 12500},
		{"decimal string", "1250.5", 1250.5},
		{"padded string", " 42 ", 42},
		{"empty string", "", 0},
		{"garbage string", "abc", 0},
		{"comma separated", "12,500", 0},
		{"nil", nil, 0},
		{"float", 12500.0, 12500},
		{"int", 300, 300},
		{"int64", int64(7), 7},
		{"json number", json.Number("99"), 99},
		{"bool", true, 0},
		{"slice", []any{"1"}, 0},
		{"nan", math.NaN(), 0},
		{"infinite string", "Inf", 0},
		{"digit separators", "1_000", 0},
		{"hex string", "0x10", 0},
		{"exponent string", "1e3", 1000},
		{"negative string", "-250", -250},
		{"int8", int8(-8), -8},
		{"int16", int16(1600), 1600},
		{"uint", uint(5), 5},
		{"uint8", uint8(200), 200},
		{"uint16", uint16(60000), 60000},
		{"uint32", uint32(70000), 70000},
		{"uint64", uint64(1) << 40, 1 << 40},
		{"json number with separators", json.Number("1_000"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToNumber(tt.value))
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "検討中", ToString("検討中"))
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "", ToString(12))
	assert.Equal(t, "", ToString([]any{"x"}))
}

func TestDateOnly(t *testing.T) {
	assert.Equal(t, "2024-02-03", DateOnly("2024-02-03T10:20:30.000Z"))
	assert.Equal(t, "2024-02-03", DateOnly("2024-02-03"))
	assert.Equal(t, "", DateOnly(""))
}

func TestInRange(t *testing.T) {
	r := DateRange{Start: "2024-02-01", End: "2024-02-29"}

	assert.True(t, InRange("2024-02-01", r))
	assert.True(t, InRange("2024-02-29", r))
	assert.True(t, InRange("2024-02-10", r))
	assert.False(t, InRange("2024-01-31", r))
	assert.False(t, InRange("2024-03-01", r))
	assert.False(t, InRange("", r))
}
