package frame

import (
	"strconv"
	"strings"
)

// ============================================================================
// VALUE — a single nullable cell
// ============================================================================
// Sources are untyped text. A cell parses to a number when it can, to a string
// otherwise, and to null for the usual missing-data markers.
// ============================================================================

// Kind identifies what a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "null"
	}
}

// Value is an immutable nullable cell. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// Null returns the missing value.
func Null() Value { return Value{} }

// Str wraps a string.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Num wraps a number.
func Num(f float64) Value { return Value{kind: KindNumber, num: f} }

// missingMarkers are the cell texts treated as missing data.
var missingMarkers = map[string]bool{
	"":     true,
	"NA":   true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"N/A":  true,
	"n/a":  true,
}

// Parse converts raw cell text into a Value.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	if missingMarkers[s] {
		return Null()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Num(f)
	}
	return Str(s)
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Float returns the numeric content. ok is false for strings and nulls.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// String returns the text form: "" for null, the shortest exact
// representation for numbers ("2015", "0.25").
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Interface returns the Go value for serialization: nil, string or float64.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	default:
		return nil
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	default:
		return true
	}
}

// Compare orders values: null < number < string; numbers numerically,
// strings lexically.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		return rank(a.kind) - rank(b.kind)
	}
	switch a.kind {
	case KindNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	case KindString:
		return strings.Compare(a.str, b.str)
	default:
		return 0
	}
}

func rank(k Kind) int {
	switch k {
	case KindNumber:
		return 1
	case KindString:
		return 2
	default:
		return 0
	}
}
