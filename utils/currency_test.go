package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.13, Round2(10.125000001))
	assert.Equal(t, 0.35, Round2(0.349999))
	assert.Equal(t, 100.0, Round2(100))
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, int64(2500), ToMinorUnits(25))
	assert.Equal(t, int64(0), ToMinorUnits(0))
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "₹0.00"},
		{12.5, "₹12.50"},
		{999.999, "₹1,000.00"},
		{1234567.891, "₹1,234,567.89"},
		{-45, "-₹45.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney("₹", tt.amount))
	}
}
