package model

import (
	"strconv"
	"time"
)

// ValueKind classifies a cell value
type ValueKind int

const (
	KindNull   ValueKind = iota // Missing or invalidated
	KindString                  // JSON string
	KindNumber                  // JSON number or parsed real
	KindBool                    // JSON true/false
	KindJSON                    // Structured object or array, kept as compact JSON text
	KindTime                    // Parsed UTC timestamp
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindJSON:
		return "json"
	case KindTime:
		return "time"
	default:
		return "null"
	}
}

// Value is a typed, nullable cell of a batch
type Value struct {
	Kind ValueKind
	Str  string    // KindString text, KindJSON raw document, or KindNumber source literal
	Num  float64   // KindNumber
	Bool bool      // KindBool
	Time time.Time // KindTime, always UTC
}

// Null is the zero value
var Null = Value{}

// String builds a string value
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Number builds a numeric value
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// NumberLiteral builds a numeric value that remembers its source text, so
// identifiers wider than a float64 mantissa render without loss
func NumberLiteral(f float64, literal string) Value {
	return Value{Kind: KindNumber, Num: f, Str: literal}
}

// Bool builds a boolean value
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// JSON builds a structured value from compact JSON text
func JSON(raw string) Value { return Value{Kind: KindJSON, Str: raw} }

// Time builds a timestamp value normalized to UTC
func Time(t time.Time) Value { return Value{Kind: KindTime, Time: t.UTC()} }

// IsNull reports whether the value is missing
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Text renders the value the way it is written to flat outputs.
// Null renders as the empty string.
func (v Value) Text() string {
	switch v.Kind {
	case KindString, KindJSON:
		return v.Str
	case KindNumber:
		if v.Str != "" {
			return v.Str
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindTime:
		return v.Time.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// Key is an equality key that distinguishes kinds, so the string "1" and the number 1 differ.
// Two nulls share the same key.
func (v Value) Key() string {
	prefix := strconv.Itoa(int(v.Kind)) + ":"
	if v.Kind == KindNumber {
		return prefix + strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return prefix + v.Text()
}

// Equal reports whether two values are identical in kind and content
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindTime:
		return v.Time.Equal(o.Time)
	case KindNumber:
		return v.Num == o.Num
	case KindBool:
		return v.Bool == o.Bool
	default:
		return v.Str == o.Str
	}
}
