package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"0.01", true},
		{"12.75", true},
		{"12.750000", true},
		{"999999999999.9999", true},
		{"1e3", true},
		{"0", false},
		{"-3", false},
		{"0.00001", false},
		{"1000000000000", false},
		{"1e400", false},
		{"1e20000000", false},
		{"1e-400", false},
		{"-1e20000000", false},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidAmount(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestAmountWithinBounds_AllowsNonPositive(t *testing.T) {
	assert.True(t, AmountWithinBounds(decimal.Zero))
	assert.True(t, AmountWithinBounds(decimal.RequireFromString("-3.5")))
	assert.False(t, AmountWithinBounds(decimal.RequireFromString("-1e400")))
}
