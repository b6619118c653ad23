// Package token converts between human token amounts and exact minor units,
// and renders minor-unit values for display.
package token

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var wad = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ParseTokenAmount converts a whole-token amount such as "12.5" into minor
// units using the currency's decimal count. Amounts with more fractional
// digits than the currency supports are rejected rather than rounded.
func ParseTokenAmount(amount string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, fmt.Errorf("invalid token amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("negative token amount %q", amount)
	}
	shifted := d.Shift(int32(decimals))
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("amount %q exceeds %d decimal places", amount, decimals)
	}
	return shifted.BigInt(), nil
}

// FormatBigInt18 renders an 18-decimal minor-unit value with the integer part
// comma-grouped and the fraction truncated to places digits.
func FormatBigInt18(value *big.Int, places int) string {
	if value == nil {
		value = new(big.Int)
	}
	integer, remainder := new(big.Int).QuoRem(value, wad, new(big.Int))
	intStr := groupThousands(integer.String())
	if places <= 0 {
		return intStr
	}
	frac := fmt.Sprintf("%018s", remainder.String())
	if places < len(frac) {
		frac = frac[:places]
	}
	return intStr + "." + frac
}

// FormatBigInt18Precise is FormatBigInt18 with four fractional digits.
func FormatBigInt18Precise(value *big.Int) string {
	return FormatBigInt18(value, 4)
}

// FormatBigInt18Compact renders an 18-decimal minor-unit value as a compact
// K/M/B figure with at most one decimal, or comma-grouped below one thousand.
func FormatBigInt18Compact(value *big.Int) string {
	if value == nil {
		value = new(big.Int)
	}
	integer := new(big.Int).Quo(value, wad)
	billion := big.NewInt(1_000_000_000)
	million := big.NewInt(1_000_000)
	thousand := big.NewInt(1_000)
	switch {
	case integer.Cmp(billion) >= 0:
		return oneDecimal(integer, billion) + "B"
	case integer.Cmp(million) >= 0:
		return oneDecimal(integer, million) + "M"
	case integer.Cmp(thousand) >= 0:
		return oneDecimal(integer, thousand) + "K"
	default:
		return groupThousands(integer.String())
	}
}

// oneDecimal scales value by unit keeping one truncated decimal, dropping a
// trailing ".0".
func oneDecimal(value, unit *big.Int) string {
	scaled := new(big.Int).Mul(value, big.NewInt(10))
	scaled.Quo(scaled, unit)
	whole, frac := new(big.Int).QuoRem(scaled, big.NewInt(10), new(big.Int))
	if frac.Sign() == 0 {
		return whole.String()
	}
	return whole.String() + "." + frac.String()
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
