package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{"Zero", 0, ""},
		{"Negative", -50, ""},
		{"Small", 895, "₱895"},
		{"Thousands", 9677, "₱9,677"},
		{"Millions", 1234567, "₱1,234,567"},
		{"Rounded", 7394.6, "₱7,395"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatPrice(tt.value))
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		expected float64
	}{
		{"Formatted", "₱7,395", 7395},
		{"Plain", "895", 895},
		{"Empty", "", 0},
		{"Garbage", "n/a", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePrice(tt.price))
		})
	}
}

func TestPriceRoundTrip(t *testing.T) {
	assert.Equal(t, 9677.0, ParsePrice(FormatPrice(9677)))
}
