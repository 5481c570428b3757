package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity is a signed fixed-point stock quantity with 4 decimal places (scale = 1e4).
//
// Stock arithmetic is additive only, so a scaled integer keeps running balances
// exact and comparable with ==. JSON is a number with up to 4 decimals.
type Quantity int64

const QuantityScale int64 = 10_000

// MaxQuantityUnits is the largest whole-unit magnitude a Quantity can hold.
const MaxQuantityUnits = math.MaxInt64 / QuantityScale

// ErrQuantityRange is returned for quantities that do not fit a Quantity.
var ErrQuantityRange = errors.New("quantity out of range")

func quantityFromFloat64(v float64) (Quantity, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parse quantity: non-finite value")
	}
	scaled := math.Round(v * float64(QuantityScale))
	if math.Abs(scaled) > float64(MaxQuantityUnits*QuantityScale) {
		return 0, ErrQuantityRange
	}
	return Quantity(scaled), nil
}

// NewQuantityFromInt creates a whole-unit quantity.
func NewQuantityFromInt(v int64) Quantity { return Quantity(v * QuantityScale) }

// ParseQuantity parses a decimal string strictly.
func ParseQuantity(s string) (Quantity, error) {
	return parseQuantityString(s)
}

// ParseQuantityOrZero parses form input; empty or malformed input yields zero.
func ParseQuantityOrZero(s string) Quantity {
	q, err := parseQuantityString(s)
	if err != nil {
		return 0
	}
	return q
}

func (q Quantity) Float64() float64 { return float64(q) / float64(QuantityScale) }

// Decimal returns q as an exact decimal.
func (q Quantity) Decimal() decimal.Decimal { return decimal.New(int64(q), -4) }

func (q Quantity) IsZero() bool { return q == 0 }

func (q Quantity) IsPositive() bool { return q > 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

func (q Quantity) Neg() Quantity { return -q }

func (q Quantity) Add(o Quantity) Quantity { return q + o }

// AddChecked adds o and reports false when the sum leaves the int64 range.
func (q Quantity) AddChecked(o Quantity) (Quantity, bool) {
	sum := q + o
	if (o > 0 && sum < q) || (o < 0 && sum > q) {
		return 0, false
	}
	return sum, true
}

func (q Quantity) Abs() Quantity {
	if q < 0 {
		return -q
	}
	return q
}

// String returns a decimal string with 4 fractional digits.
func (q Quantity) String() string {
	neg := q < 0
	v := q
	if neg {
		v = -v
	}
	intPart := int64(v) / QuantityScale
	frac := int64(v) % QuantityScale
	if neg {
		return fmt.Sprintf("-%d.%04d", intPart, frac)
	}
	return fmt.Sprintf("%d.%04d", intPart, frac)
}

// MarshalJSON encodes Quantity as JSON number (not string), preserving 4 digits.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts a JSON number, a string or null.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if strings.TrimSpace(raw) == "" {
			*q = 0
			return nil
		}
	}

	parsed, err := parseQuantityString(raw)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

func parseQuantityString(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}

	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parse quantity: %w", err)
		}
		return quantityFromFloat64(f)
	}

	sign := int64(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = strings.TrimPrefix(s, "-")
	} else if strings.HasPrefix(s, "+") {
		s = strings.TrimPrefix(s, "+")
	}

	intPartStr, fracStr, _ := strings.Cut(s, ".")
	if intPartStr == "" && fracStr == "" {
		return 0, fmt.Errorf("parse quantity: no digits")
	}
	if intPartStr == "" {
		intPartStr = "0"
	}
	intPart, err := strconv.ParseUint(intPartStr, 10, 63)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrQuantityRange
		}
		return 0, fmt.Errorf("parse quantity integer part: %w", err)
	}
	if intPart > uint64(MaxQuantityUnits) {
		return 0, ErrQuantityRange
	}

	// Pad right to 4 digits, truncate the rest.
	if len(fracStr) > 4 {
		fracStr = fracStr[:4]
	}
	for len(fracStr) < 4 {
		fracStr += "0"
	}
	frac, err := strconv.ParseUint(fracStr, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("parse quantity fractional part: %w", err)
	}

	units := int64(intPart) * QuantityScale
	if int64(frac) > math.MaxInt64-units {
		return 0, ErrQuantityRange
	}
	return Quantity(sign * (units + int64(frac))), nil
}
