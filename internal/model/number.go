package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Number is a JSON value that may arrive as a number, a numeric string,
// or be absent. Foxy serializes prices and quantities as strings ("10.00"),
// while catalog providers use plain numbers; comparisons must treat
// "10", 10 and 10.0 as equal.
type Number struct {
	raw   string
	value float64
	valid bool
}

// NewNumber creates a valid Number from a float.
func NewNumber(v float64) Number {
	return Number{raw: strconv.FormatFloat(v, 'f', -1, 64), value: v, valid: true}
}

// UnmarshalJSON accepts numbers, numeric strings, null and empty strings.
// Non-numeric strings produce an invalid Number rather than an error so a
// single odd field never rejects a whole payload.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = Number{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return err
		}
		s = strings.TrimSpace(unquoted)
	}
	if s == "" {
		*n = Number{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = Number{raw: s}
		return nil
	}
	*n = Number{raw: s, value: v, valid: true}
	return nil
}

// MarshalJSON writes the numeric value, or null when invalid.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.value, 'f', -1, 64)), nil
}

// Float returns the numeric value and whether one was present.
func (n Number) Float() (float64, bool) {
	return n.value, n.valid
}

// IsZero reports whether the value is absent, non-numeric or zero.
// Mirrors JavaScript falsiness for quantities: "" and 0 both skip checks.
func (n Number) IsZero() bool {
	return !n.valid || n.value == 0
}

// String returns the original representation, or the formatted value.
func (n Number) String() string {
	if n.raw != "" {
		return n.raw
	}
	if n.valid {
		return strconv.FormatFloat(n.value, 'f', -1, 64)
	}
	return ""
}

// FlexString is a JSON value that may arrive as a string or a number.
// Product codes are strings in Foxy but frequently plain numbers in
// catalog exports; pairing compares their string forms.
type FlexString string

// UnmarshalJSON accepts strings, numbers and null.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return err
		}
		*f = FlexString(unquoted)
		return nil
	}
	// Numeric literal: keep its textual form so 123 pairs with "123".
	*f = FlexString(s)
	return nil
}

// String returns the underlying string.
func (f FlexString) String() string {
	return string(f)
}

// Coerce converts an arbitrary decoded JSON value to a float64.
// Used when catalog fields come back as interface{} from dynamic
// field lookups.
func Coerce(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case nil:
		return 0, false
	default:
		return 0, false
	}
}
