// Package types provides common type aliases and utilities.
package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Stored amounts arrive as decimal strings ("199.995") and must not pass
// through float64 before rounding.
type Money = decimal.Decimal

// ParseMoney coerces a decoded store value into Money.
// Accepts decimal strings, native numbers and anything with a decimal
// String() form (bson Decimal128). ok is false for nil, empty and garbage.
func ParseMoney(v any) (Money, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(x), true
	case float32:
		return decimal.NewFromFloat32(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt32(x), true
	case int64:
		return decimal.NewFromInt(x), true
	case decimal.Decimal:
		return x, true
	case fmt.Stringer:
		return ParseMoney(x.String())
	default:
		return decimal.Zero, false
	}
}

// Amount is a monetary display value already rounded to 2 decimal places.
// It marshals as a JSON number with exactly two fractional digits.
type Amount float64

// NewAmount rounds m half away from zero to 2 places.
func NewAmount(m Money) Amount {
	f, _ := m.Round(2).Float64()
	return Amount(f)
}

// String renders the amount with two fractional digits.
func (a Amount) String() string {
	return strconv.FormatFloat(float64(a), 'f', 2, 64)
}

// Float64 returns the amount as a plain float.
func (a Amount) Float64() float64 { return float64(a) }

// MarshalJSON encodes Amount as a JSON number (not string).
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	*a = NewAmount(d)
	return nil
}
