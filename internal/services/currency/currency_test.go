package currency

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0", "R$0,00"},
		{"0.5", "R$0,50"},
		{"12", "R$12,00"},
		{"1234.56", "R$1.234,56"},
		{"1000000", "R$1.000.000,00"},
		{"-50", "-R$50,00"},
		{"-1234.5", "-R$1.234,50"},
		{"10.005", "R$10,01"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Format(decimal.RequireFromString(tt.input))
			if result != tt.expected {
				t.Errorf("Format(%s) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"25", "25,00%"},
		{"11.1111", "11,11%"},
		{"-3.456", "-3,46%"},
		{"0", "0,00%"},
	}

	for _, tt := range tests {
		result := FormatPercent(decimal.RequireFromString(tt.input))
		if result != tt.expected {
			t.Errorf("FormatPercent(%s) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
