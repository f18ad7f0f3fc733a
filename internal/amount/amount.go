// Package amount normalises monetary values arriving from heterogeneous sources
// and rounds aggregates to cents.
package amount

import (
	"encoding/json"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Normalize coerces v into a finite float64. Numbers pass through, strings
// accept whitespace grouping and a decimal comma, everything else yields 0.
func Normalize(v any) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(val)
	case float32:
		return finite(float64(val))
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case Value:
		return finite(float64(val))
	case *Value:
		if val == nil {
			return 0
		}
		return finite(float64(*val))
	case *float64:
		if val == nil {
			return 0
		}
		return finite(*val)
	case decimal.Decimal:
		return finite(val.InexactFloat64())
	case json.Number:
		return parseString(string(val))
	case string:
		return parseString(val)
	case *string:
		if val == nil {
			return 0
		}
		return parseString(*val)
	default:
		return 0
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseString(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		if r == ',' {
			return '.'
		}
		return r
	}, s)
	if cleaned == "" {
		return 0
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	return finite(d.InexactFloat64())
}

// Round2 rounds x to two decimals, half away from zero.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// Add returns the cent-rounded sum of a running total and a new amount.
func Add(total, x float64) float64 {
	return Round2(total + x)
}

// Sum adds values, rounding at every accumulation step.
func Sum(values ...float64) float64 {
	var total float64
	for _, v := range values {
		total = Add(total, v)
	}
	return total
}

// Value is a monetary field that tolerates string encodings on the wire.
type Value float64

// Float64 returns the plain float.
func (v Value) Float64() float64 {
	return float64(v)
}

// UnmarshalJSON accepts numbers, strings and null. Malformed input decodes to 0.
func (v *Value) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "" || raw == "null":
		*v = 0
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*v = 0
			return nil
		}
		*v = Value(parseString(s))
	default:
		*v = Value(parseString(raw))
	}
	return nil
}

// UnmarshalText is used by text based decoders such as TOML.
func (v *Value) UnmarshalText(text []byte) error {
	*v = Value(parseString(string(text)))
	return nil
}
