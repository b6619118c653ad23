package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wadTimes(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestParseTokenAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		want     string
		wantErr  bool
	}{
		{name: "whole", amount: "100", decimals: 18, want: "100000000000000000000"},
		{name: "fractional", amount: "12.5", decimals: 18, want: "12500000000000000000"},
		{name: "six decimals", amount: "0.25", decimals: 6, want: "250000"},
		{name: "zero", amount: "0", decimals: 18, want: "0"},
		{name: "trimmed", amount: " 1.5 ", decimals: 18, want: "1500000000000000000"},
		{name: "negative", amount: "-1", decimals: 18, wantErr: true},
		{name: "too precise", amount: "0.1234567", decimals: 6, wantErr: true},
		{name: "garbage", amount: "1.2.3", decimals: 18, wantErr: true},
		{name: "empty", amount: "", decimals: 18, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTokenAmount(tt.amount, tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFormatBigInt18RoundTrip(t *testing.T) {
	v, err := ParseTokenAmount("12.5", 18)
	require.NoError(t, err)
	assert.Equal(t, "12.50", FormatBigInt18(v, 2))
}

func TestFormatBigInt18(t *testing.T) {
	tests := []struct {
		name   string
		value  *big.Int
		places int
		want   string
	}{
		{name: "nil", value: nil, places: 2, want: "0.00"},
		{name: "zero places", value: wadTimes(1234567), places: 0, want: "1,234,567"},
		{name: "truncates", value: big.NewInt(1999999999999999999), places: 2, want: "1.99"},
		{name: "precise", value: wadTimes(3), places: 4, want: "3.0000"},
		{name: "sub one", value: big.NewInt(120000000000000000), places: 2, want: "0.12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBigInt18(tt.value, tt.places))
		})
	}
}

func TestFormatBigInt18Compact(t *testing.T) {
	tests := []struct {
		name  string
		value *big.Int
		want  string
	}{
		{name: "million and a half", value: wadTimes(1_500_000), want: "1.5M"},
		{name: "exact million", value: wadTimes(2_000_000), want: "2M"},
		{name: "billions", value: wadTimes(3_200_000_000), want: "3.2B"},
		{name: "thousands", value: wadTimes(1234), want: "1.2K"},
		{name: "below thousand", value: wadTimes(999), want: "999"},
		{name: "zero", value: big.NewInt(0), want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBigInt18Compact(tt.value))
		})
	}
}
