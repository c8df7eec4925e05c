package yamlite

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the tag of a Value.
type Kind int

const (
	KindMapping Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindMapping:
		return "mapping"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a node of a parsed document. The concrete types are *Mapping,
// Int, Float, Bool and String; no other package can implement it.
type Value interface {
	Kind() Kind
	String() string
	isValue()
}

// Int is an integer leaf.
type Int int64

// Float is a floating point leaf.
type Float float64

// Bool is a boolean leaf, written True or False.
type Bool bool

// String is a string leaf, stored verbatim.
type String string

func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (Bool) Kind() Kind   { return KindBool }
func (String) Kind() Kind { return KindString }

func (v Int) String() string { return strconv.FormatInt(int64(v), 10) }

// String formats the float so that it never reads back as an integer.
func (v Float) String() string {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	s := strconv.FormatFloat(f, 'g', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' || s[i] == 'e' {
			return s
		}
	}

	return s + ".0"
}

func (v Bool) String() string {
	if v {
		return "True"
	}
	return "False"
}

func (v String) String() string { return string(v) }

func (Int) isValue()      {}
func (Float) isValue()    {}
func (Bool) isValue()     {}
func (String) isValue()   {}
func (*Mapping) isValue() {}

// Mapping is a set of uniquely keyed values. Keys() reports keys in the
// order they were first inserted; that order carries no meaning and is
// ignored by Equal.
type Mapping struct {
	keys    []string
	entries map[string]Value
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{entries: make(map[string]Value, 8)}
}

// Kind returns KindMapping.
func (m *Mapping) Kind() Kind { return KindMapping }

// String summarises the mapping; use Marshal for the full text.
func (m *Mapping) String() string {
	return fmt.Sprintf("mapping(%d keys)", m.Len())
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.entries[key]
	return v, ok
}

// set stores v under key, keeping the key's original position on overwrite.
func (m *Mapping) set(key string, v Value) {
	if _, ok := m.entries[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = v
}

// child returns the mapping stored under key, creating it if the key is
// absent or holds a scalar. An existing mapping is returned untouched.
func (m *Mapping) child(key string) *Mapping {
	if cur, ok := m.entries[key].(*Mapping); ok {
		return cur
	}

	c := NewMapping()
	m.set(key, c)
	return c
}

// Equal reports whether a and b are structurally equal. Floats compare by
// value, except that NaN equals NaN.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case *Mapping:
		bv, ok := b.(*Mapping)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.keys {
			other, ok := bv.entries[k]
			if !ok || !Equal(av.entries[k], other) {
				return false
			}
		}
		return true
	case Float:
		bv, ok := b.(Float)
		if !ok {
			return false
		}
		if math.IsNaN(float64(av)) && math.IsNaN(float64(bv)) {
			return true
		}
		return av == bv
	case nil:
		return b == nil
	default:
		return a == b
	}
}

// ToAny converts v to plain Go values: map[string]any, int64, float64,
// bool or string. A nil value or nil *Mapping yields nil.
func ToAny(v Value) any {
	switch t := v.(type) {
	case *Mapping:
		if t == nil {
			return nil
		}
		out := make(map[string]any, t.Len())
		for _, k := range t.keys {
			out[k] = ToAny(t.entries[k])
		}
		return out
	case Int:
		return int64(t)
	case Float:
		return float64(t)
	case Bool:
		return bool(t)
	case String:
		return string(t)
	default:
		return nil
	}
}
