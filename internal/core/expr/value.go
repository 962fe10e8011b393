package expr

import (
	"strconv"
)

// Kind identifies the type held by a Value.
type Kind int

const (
	KindNumber Kind = iota
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is the result of evaluating an expression.
type Value struct {
	Kind Kind
	Num  float64
	Bool bool
}

// Number wraps a numeric value.
func Number(v float64) Value {
	return Value{Kind: KindNumber, Num: v}
}

// Bool wraps a boolean value.
func Bool(v bool) Value {
	return Value{Kind: KindBool, Bool: v}
}

func (v Value) String() string {
	if v.Kind == KindBool {
		return strconv.FormatBool(v.Bool)
	}
	return FormatNumber(v.Num)
}

// FormatNumber renders a number the way membership literals are compared:
// integral values have no fractional part.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Env resolves identifiers during evaluation.
type Env interface {
	Lookup(name string) (Value, bool)
	Collection(name string) ([]string, bool)
}

// MapEnv is an Env backed by plain maps.
type MapEnv struct {
	Values      map[string]Value
	Collections map[string][]string
}

// Lookup implements Env.
func (m MapEnv) Lookup(name string) (Value, bool) {
	v, ok := m.Values[name]
	return v, ok
}

// Collection implements Env.
func (m MapEnv) Collection(name string) ([]string, bool) {
	c, ok := m.Collections[name]
	return c, ok
}
