package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// ValueKind is the type tag of a Value.
type ValueKind string

const (
	KindNull   ValueKind = ""
	KindBool   ValueKind = "boolean"
	KindNumber ValueKind = "number"
	KindString ValueKind = "string"
)

// Value is a variable value: one of boolean, number or string.
// The zero Value is null (an unset variable) and is falsy.
type Value struct {
	kind ValueKind
	b    bool
	n    float64
	s    string
}

// Bool creates a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number creates a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String creates a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// ValueOf converts a decoded scalar (bool, numeric kinds, string, json.Number) to a Value.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", x.String(), err)
		}
		return Number(f), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}

// Kind returns the type tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is unset.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Truthy follows the usual scripting rules: false, 0, NaN, "" and null are falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0 && !math.IsNaN(v.n)
	case KindString:
		return v.s != ""
	default:
		return false
	}
}

// AsNumber coerces the value to a number with JavaScript's Number(v) || 0
// rules: strings accept decimal literals, 0x/0o/0b integers and Infinity;
// anything else (including NaN) is 0.
func (v Value) AsNumber() float64 {
	var n float64
	switch v.kind {
	case KindBool:
		if v.b {
			n = 1
		}
	case KindNumber:
		n = v.n
	case KindString:
		n = parseNumber(v.s)
	}
	if math.IsNaN(n) {
		return 0
	}
	return n
}

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// parseNumber follows the StringToNumber grammar. Unparsable input is NaN.
func parseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			if s[2] == '+' || s[2] == '-' {
				return math.NaN()
			}
			i, ok := new(big.Int).SetString(s[2:], base)
			if !ok {
				return math.NaN()
			}
			f, _ := new(big.Float).SetInt(i).Float64()
			return f
		}
	}
	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// String renders the value the way a text element would display it.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// Equal reports strict equality (same kind, same payload).
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindString:
		return v.s == o.s
	default:
		return true
	}
}

// Interface returns the Go scalar held by the value (nil for null).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	default:
		return nil
	}
}

// MarshalJSON encodes the value as a bare JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a bare JSON scalar.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Variable is an authored prototype variable.
type Variable struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	DefaultValue Value  `json:"defaultValue"`
}
