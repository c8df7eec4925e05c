package yamlite

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

var (
	valueType    = reflect.TypeOf((*Value)(nil)).Elem()
	mappingType  = reflect.TypeOf((*Mapping)(nil))
	durationType = reflect.TypeOf(time.Duration(0))
)

// DecodeValue stores src in the value pointed to by v.
//
// The conversion rules are:
//   - Value and *Mapping destinations receive the parsed nodes directly.
//   - any receives plain Go values (see ToAny).
//   - structs are filled from mappings, matching the `yamlite` tag or else
//     the field name; fields tagged "-" and keys without a field are skipped.
//   - map[string]T is filled from a mapping.
//   - integer and float fields accept Int and Float; a Float must be whole
//     to go into an integer field.
//   - string fields accept any leaf, using its textual form, since the
//     dialect has no quoting to force a string.
//   - time.Duration fields accept a String such as "1m30s".
//
// Lists and slices are not part of the dialect and are rejected.
func DecodeValue(src Value, v any) error {
	if v == nil {
		return errors.New("cannot decode into a nil value")
	}

	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr {
		return errors.New("destination is not a pointer")
	}
	if val.IsNil() {
		return errors.New("destination pointer is nil")
	}

	return setValueReflect(val.Elem(), src)
}

// setValueReflect recursively sets values to dst from src using reflection.
func setValueReflect(dst reflect.Value, src Value) error {
	if src == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	switch dst.Type() {
	case valueType:
		dst.Set(reflect.ValueOf(src))
		return nil
	case mappingType:
		m, ok := src.(*Mapping)
		if !ok {
			return fmt.Errorf("cannot decode %s into *Mapping", src.Kind())
		}
		dst.Set(reflect.ValueOf(m))
		return nil
	case durationType:
		return setDuration(dst, src)
	}

	// If the destination is an interface, set plain Go values.
	if dst.Kind() == reflect.Interface {
		s := reflect.ValueOf(ToAny(src))
		if !s.Type().AssignableTo(dst.Type()) {
			return fmt.Errorf("cannot decode %s into %s", src.Kind(), dst.Type())
		}
		dst.Set(s)
		return nil
	}

	switch dst.Kind() {
	case reflect.Struct:
		return setStruct(dst, src)
	case reflect.Map:
		return setMap(dst, src)
	case reflect.Ptr:
		return setPtr(dst, src)
	case reflect.String:
		return setString(dst, src)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setInt(dst, src)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return setUint(dst, src)
	case reflect.Float32, reflect.Float64:
		return setFloat(dst, src)
	case reflect.Bool:
		return setBool(dst, src)
	default:
		return fmt.Errorf("cannot decode %s into %s", src.Kind(), dst.Type())
	}
}

// setStruct decodes a mapping into a struct.
func setStruct(dst reflect.Value, src Value) error {
	m, ok := src.(*Mapping)
	if !ok {
		return fmt.Errorf("cannot decode %s into struct", src.Kind())
	}

	structType := dst.Type()
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldValue := dst.Field(i)

		// Skip unexported fields.
		if !fieldValue.CanSet() {
			continue
		}

		name := fieldName(field)
		if name == "-" {
			continue
		}

		if v, exists := m.Get(name); exists {
			if err := setValueReflect(fieldValue, v); err != nil {
				return fmt.Errorf("error setting field %s: %w", field.Name, err)
			}
		}
	}

	return nil
}

// fieldName returns the key a struct field is read from.
func fieldName(field reflect.StructField) string {
	name, _ := parseStructTag(field.Tag)
	if name == "" {
		return field.Name
	}
	return name
}

// parseStructTag splits a `yamlite:"name,opt,..."` tag.
func parseStructTag(tag reflect.StructTag) (string, []string) {
	parts := strings.Split(tag.Get("yamlite"), ",")
	return parts[0], parts[1:]
}

// hasTagOption reports whether the field's tag carries opt, e.g. "omitempty".
func hasTagOption(field reflect.StructField, opt string) bool {
	_, opts := parseStructTag(field.Tag)
	for _, o := range opts {
		if o == opt {
			return true
		}
	}
	return false
}

// setMap decodes a mapping into a map with string keys.
func setMap(dst reflect.Value, src Value) error {
	m, ok := src.(*Mapping)
	if !ok {
		return fmt.Errorf("cannot decode %s into map", src.Kind())
	}

	mapType := dst.Type()
	if mapType.Key().Kind() != reflect.String {
		return fmt.Errorf("maps with non-string keys are not supported")
	}

	newMap := reflect.MakeMapWithSize(mapType, m.Len())
	for _, key := range m.keys {
		elem := reflect.New(mapType.Elem()).Elem()
		if err := setValueReflect(elem, m.entries[key]); err != nil {
			return fmt.Errorf("error setting map value for key %s: %w", key, err)
		}
		newMap.SetMapIndex(reflect.ValueOf(key).Convert(mapType.Key()), elem)
	}

	dst.Set(newMap)
	return nil
}

// setPtr decodes into a freshly allocated pointee.
func setPtr(dst reflect.Value, src Value) error {
	newPtr := reflect.New(dst.Type().Elem())
	if err := setValueReflect(newPtr.Elem(), src); err != nil {
		return err
	}

	dst.Set(newPtr)
	return nil
}

// setString stores the textual form of any leaf.
func setString(dst reflect.Value, src Value) error {
	if src.Kind() == KindMapping {
		return fmt.Errorf("cannot decode mapping into string")
	}
	dst.SetString(src.String())
	return nil
}

// setInt converts Int and whole Float values to a signed integer.
func setInt(dst reflect.Value, src Value) error {
	switch v := src.(type) {
	case Int:
		if dst.OverflowInt(int64(v)) {
			return fmt.Errorf("value %d overflows %s", v, dst.Type())
		}
		dst.SetInt(int64(v))
		return nil
	case Float:
		f := float64(v)
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return fmt.Errorf("cannot decode float %g into integer type", f)
		}
		if f < math.MinInt64 || f >= math.MaxInt64 || dst.OverflowInt(int64(f)) {
			return fmt.Errorf("value %g overflows %s", f, dst.Type())
		}
		dst.SetInt(int64(f))
		return nil
	default:
		return fmt.Errorf("cannot decode %s into integer", src.Kind())
	}
}

// setUint converts non-negative Int and whole Float values to an unsigned integer.
func setUint(dst reflect.Value, src Value) error {
	switch v := src.(type) {
	case Int:
		if v < 0 {
			return fmt.Errorf("cannot decode negative value %d into unsigned integer", v)
		}
		if dst.OverflowUint(uint64(v)) {
			return fmt.Errorf("value %d overflows %s", v, dst.Type())
		}
		dst.SetUint(uint64(v))
		return nil
	case Float:
		f := float64(v)
		if f < 0 {
			return fmt.Errorf("cannot decode negative value %g into unsigned integer", f)
		}
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return fmt.Errorf("cannot decode float %g into integer type", f)
		}
		if f >= math.MaxUint64 || dst.OverflowUint(uint64(f)) {
			return fmt.Errorf("value %g overflows %s", f, dst.Type())
		}
		dst.SetUint(uint64(f))
		return nil
	default:
		return fmt.Errorf("cannot decode %s into unsigned integer", src.Kind())
	}
}

// setFloat converts Int and Float values to a float.
func setFloat(dst reflect.Value, src Value) error {
	var f float64
	switch v := src.(type) {
	case Int:
		f = float64(v)
	case Float:
		f = float64(v)
	default:
		return fmt.Errorf("cannot decode %s into float", src.Kind())
	}

	if dst.OverflowFloat(f) {
		return fmt.Errorf("value %g overflows %s", f, dst.Type())
	}
	dst.SetFloat(f)
	return nil
}

// setBool accepts only Bool leaves.
func setBool(dst reflect.Value, src Value) error {
	v, ok := src.(Bool)
	if !ok {
		return fmt.Errorf("cannot decode %s into bool", src.Kind())
	}
	dst.SetBool(bool(v))
	return nil
}

// setDuration parses a String leaf with time.ParseDuration.
func setDuration(dst reflect.Value, src Value) error {
	s, ok := src.(String)
	if !ok {
		return fmt.Errorf("cannot decode %s into duration", src.Kind())
	}

	d, err := time.ParseDuration(string(s))
	if err != nil {
		return err
	}
	dst.SetInt(int64(d))
	return nil
}
