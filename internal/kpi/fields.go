// internal/kpi/fields.go
package kpi

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is a single row fetched from a record store, keyed by field label.
// Values are scalars (string, number) or absent.
type Record = map[string]any

// ToNumber coerces a field value to a float. Anything that is not a number or
// a plain decimal string yields 0.
func ToNumber(value any) float64 {
	switch v := value.(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		return parseDecimal(string(v))
	case string:
		return parseDecimal(strings.TrimSpace(v))
	default:
		return 0
	}
}

// parseDecimal accepts digits, sign, point and exponent only. Hex, digit
// separators and the Inf/NaN spellings are rejected.
func parseDecimal(s string) float64 {
	if s == "" || strings.IndexFunc(s, notDecimal) >= 0 {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

func notDecimal(r rune) bool {
	return !(r >= '0' && r <= '9') && !strings.ContainsRune("+-.eE", r)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ToString returns the value when it is a string, "" otherwise.
func ToString(value any) string {
	s, _ := value.(string)
	return s
}

// DateOnly strips the time portion from an ISO timestamp by splitting on the
// "T" separator. The upstream "Created" field is the only caller; it depends
// on the store keeping that timestamp layout.
func DateOnly(value string) string {
	date, _, _ := strings.Cut(value, "T")
	return date
}

// InRange reports whether a YYYY-MM-DD string falls inside r, both ends
// inclusive. Empty dates are never in range.
func InRange(date string, r DateRange) bool {
	return date != "" && date >= r.Start && date <= r.End
}

func fieldString(rec Record, field string) string {
	return ToString(rec[field])
}

// fieldBlank reports whether field is absent, null or the empty string.
func fieldBlank(rec Record, field string) bool {
	v, ok := rec[field]
	return !ok || v == nil || v == ""
}

func fieldNumber(rec Record, field string) float64 {
	return ToNumber(rec[field])
}
