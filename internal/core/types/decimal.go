// Package types provides common numeric types and parsing utilities.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// DisplayPlaces is the number of fractional digits shown for amounts.
const DisplayPlaces int32 = 2

var hundred = decimal.NewFromInt(100)

// Hundred returns 100 as Money. Used for percentage math.
func Hundred() Money {
	return hundred
}

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// ParseDecimalOrZero parses form input into a decimal.
// Empty, malformed and non-finite input yields zero; it never fails.
func ParseDecimalOrZero(s string) Money {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseNonNegativeOrZero is ParseDecimalOrZero with negative values clamped to zero.
// Quantities and rates typed into a form are never negative.
func ParseNonNegativeOrZero(s string) Money {
	d := ParseDecimalOrZero(s)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Round2 rounds half away from zero to DisplayPlaces.
func Round2(m Money) Money {
	return m.Round(DisplayPlaces)
}

// Format2 renders m with exactly two fractional digits.
func Format2(m Money) string {
	return m.StringFixed(DisplayPlaces)
}

// Amount is a Money value that arrives from the backend or a form either as a JSON
// number, a JSON string or null. Null and "" decode to zero.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a Money value.
func NewAmount(m Money) Amount {
	return Amount{Decimal: m}
}

// MarshalJSON encodes the amount as a 2-decimal string, matching the backend's
// DecimalField serialization.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(Format2(a.Decimal))
}

// UnmarshalJSON accepts a JSON number, a quoted decimal or null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			a.Decimal = decimal.Zero
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("parse amount %q: %w", s, err)
		}
		a.Decimal = d
		return nil
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("parse amount: %w", err)
	}
	a.Decimal = d
	return nil
}

// FormValue is raw numeric form input. It decodes from a JSON number, a JSON string
// or null and keeps the text; interpretation is left to ParseDecimalOrZero.
type FormValue string

// UnmarshalJSON keeps the literal text of numbers and the content of strings.
// Any other token (bool, object) decodes to an empty value.
func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*v = FormValue(data)
	default:
		*v = ""
	}
	return nil
}

// Decimal parses the value, yielding zero for empty or malformed input.
func (v FormValue) Decimal() Money {
	return ParseDecimalOrZero(string(v))
}

// NonNegative parses the value, yielding zero for empty, malformed or negative input.
func (v FormValue) NonNegative() Money {
	return ParseNonNegativeOrZero(string(v))
}
