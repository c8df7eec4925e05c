package yamlite

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

// indentUnit is the indentation written by the encoder.
const indentUnit = "  "

// Marshal returns the document encoding of v.
//
// v must be a *Mapping, a map with string keys, or a struct (or a pointer
// to one of these). The mapping from Go values is:
//   - *Mapping, Value -> written as is
//   - map[string]T, struct -> nested mapping; map keys are sorted
//   - integers -> Int, floats -> Float, bool -> True/False
//   - string, time.Duration -> String
//
// Struct fields are named by their `yamlite` tag, or the field name; "-"
// skips a field and the omitempty option skips zero values.
//
// Because the dialect has no quoting, keys and strings must survive a
// parse unchanged. Marshal returns an error wrapping ErrUnrepresentable
// for keys containing ':' or surrounding whitespace, for strings that
// would read back as another type, and for nil values.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// An Encoder writes documents to an output stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the document encoding of v to the stream. See Marshal for
// details about the conversion of Go values.
func (enc *Encoder) Encode(v any) error {
	root, err := valueOf(reflect.ValueOf(v))
	if err != nil {
		return err
	}

	m, ok := root.(*Mapping)
	if !ok {
		return fmt.Errorf("yamlite: document root must be a mapping, not %s", root.Kind())
	}

	s := newState(enc.w)
	s.writeMapping(m, 0)
	err = s.err
	putState(s)

	return err
}

// state holds the encoding state for a single Encode call.
type state struct {
	w   io.Writer
	err error
}

var statePool = sync.Pool{
	New: func() any {
		return new(state)
	},
}

// newState retrieves a new state from the pool.
func newState(w io.Writer) *state {
	s := statePool.Get().(*state)
	s.w = w
	return s
}

// putState returns a state to the pool.
func putState(s *state) {
	s.w = nil
	s.err = nil
	statePool.Put(s)
}

// write writes str unless an earlier write failed.
func (s *state) write(str string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, str)
}

// writeMapping writes each entry of m on its own line at the given depth.
func (s *state) writeMapping(m *Mapping, depth int) {
	prefix := strings.Repeat(indentUnit, depth)
	for _, key := range m.keys {
		if s.err != nil {
			return
		}
		if err := checkKey(key); err != nil {
			s.err = err
			return
		}

		switch v := m.entries[key].(type) {
		case *Mapping:
			s.write(prefix + key + ":\n")
			s.writeMapping(v, depth+1)
		default:
			text, err := scalarText(v)
			if err != nil {
				s.err = fmt.Errorf("yamlite: key %q: %w", key, err)
				return
			}
			s.write(prefix + key + ": " + text + "\n")
		}
	}
}

// checkKey reports whether key reads back unchanged as a key.
func checkKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("yamlite: empty key: %w", ErrUnrepresentable)
	case strings.ContainsRune(key, ':'):
		return fmt.Errorf("yamlite: key %q contains ':': %w", key, ErrUnrepresentable)
	case strings.TrimSpace(key) != key:
		return fmt.Errorf("yamlite: key %q has surrounding whitespace: %w", key, ErrUnrepresentable)
	case strings.ContainsAny(key, "\r\n"):
		return fmt.Errorf("yamlite: key %q contains a line break: %w", key, ErrUnrepresentable)
	}
	return nil
}

// scalarText returns the text of a leaf, checking that it coerces back to
// an equal value.
func scalarText(v Value) (string, error) {
	text := v.String()
	if v.Kind() == KindString {
		switch {
		case text == "":
			return "", fmt.Errorf("empty string: %w", ErrUnrepresentable)
		case strings.ContainsAny(text, ":\r\n"):
			return "", fmt.Errorf("string %q contains ':' or a line break: %w", text, ErrUnrepresentable)
		case strings.TrimSpace(text) != text:
			return "", fmt.Errorf("string %q has surrounding whitespace: %w", text, ErrUnrepresentable)
		}
	}

	if back := Coerce(text); !Equal(back, v) {
		return "", fmt.Errorf("%s %q would read back as %s: %w", v.Kind(), text, back.Kind(), ErrUnrepresentable)
	}

	return text, nil
}

// valueOf converts a Go value into a Value tree.
func valueOf(v reflect.Value) (Value, error) {
	if v.IsValid() && v.CanInterface() {
		if val, ok := v.Interface().(Value); ok && !isNilValue(v) {
			return val, nil
		}
	}

	var err error
	v = indirect(v, &err)
	if err != nil {
		return nil, err
	}

	// A nil pointer or interface has no representation.
	if !v.IsValid() {
		return nil, fmt.Errorf("yamlite: nil value: %w", ErrUnrepresentable)
	}
	if v.Type() == durationType {
		return String(time.Duration(v.Int()).String()), nil
	}

	switch v.Kind() {
	case reflect.Map:
		return mapValueOf(v)
	case reflect.Struct:
		if v.CanAddr() {
			if m, ok := v.Addr().Interface().(*Mapping); ok {
				return m, nil
			}
		}
		return structValueOf(v)
	case reflect.String:
		return String(v.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("yamlite: value %d overflows Int: %w", u, ErrUnrepresentable)
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(v.Float()), nil
	case reflect.Bool:
		return Bool(v.Bool()), nil
	default:
		// Any type we don't explicitly handle is unsupported.
		return nil, fmt.Errorf("yamlite: unsupported type: %s", v.Type())
	}
}

// mapValueOf converts a map with string keys, sorting the keys so the
// output is deterministic.
func mapValueOf(v reflect.Value) (Value, error) {
	if v.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("yamlite: map key type must be a string, not %s", v.Type().Key())
	}

	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	m := NewMapping()
	for _, key := range keys {
		child, err := valueOf(v.MapIndex(key))
		if err != nil {
			return nil, err
		}
		m.set(key.String(), child)
	}

	return m, nil
}

// structValueOf converts the exported fields of a struct in declaration order.
func structValueOf(v reflect.Value) (Value, error) {
	m := NewMapping()
	for i := 0; i < v.NumField(); i++ {
		field := v.Type().Field(i)
		if !field.IsExported() {
			continue
		}

		name := fieldName(field)
		if name == "-" {
			continue
		}

		fv := v.Field(i)
		if hasTagOption(field, "omitempty") && fv.IsZero() {
			continue
		}

		child, err := valueOf(fv)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		m.set(name, child)
	}

	return m, nil
}

// isNilValue reports whether v is a nil pointer or interface.
func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// indirect walks down a chain of pointers and interfaces to find the underlying
// concrete value. If a nil pointer is found, it returns an invalid reflect.Value.
func indirect(v reflect.Value, err *error) reflect.Value {
	// The loop limit guards against circular data structures.
	for i := 0; i < 1000; i++ {
		if !v.IsValid() {
			return v
		}
		kind := v.Kind()
		if kind != reflect.Pointer && kind != reflect.Interface {
			return v
		}
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}

	*err = fmt.Errorf("yamlite: encountered a circular or excessively deep data structure")
	return reflect.Value{}
}
