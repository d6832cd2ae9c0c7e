package gst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "Zero Only"},
		{7, "Seven Only"},
		{15, "Fifteen Only"},
		{110, "One Hundred Ten Only"},
		{202, "Two Hundred Two Only"},
		{1519, "One Thousand Five Hundred Nineteen Only"},
		{152340, "One Lakh Fifty Two Thousand Three Hundred Forty Only"},
		{12345678, "One Crore Twenty Three Lakh Forty Five Thousand Six Hundred Seventy Eight Only"},
		{-5, "Minus Five Only"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AmountInWords(tt.in))
	}
}
