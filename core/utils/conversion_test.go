package utils_test

import (
	"encoding/json"
	"testing"

	"grocer/core/utils"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"Nil", nil, 0},
		{"Int", 7, 7},
		{"Float", 3.0, 3},
		{"Number", json.Number("42"), 42},
		{"FloatNumber", json.Number("12.5"), 12},
		{"String", " 15 ", 15},
		{"FloatString", "9.99", 9},
		{"Garbage", "abc", 0},
		{"Bytes", []byte("8"), 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.ToInt(tt.in))
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", utils.ToString(nil))
	assert.Equal(t, "254656543", utils.ToString(json.Number("254656543")))
	assert.Equal(t, "254656543", utils.ToString(float64(254656543)))
	assert.Equal(t, "12", utils.ToString(12))
	assert.Equal(t, "milk", utils.ToString("milk"))
}
