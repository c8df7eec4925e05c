package yamlite

import (
	"errors"
	"strings"
)

// Lookup follows path from m and returns the value it names. An empty path
// returns m itself.
func (m *Mapping) Lookup(path ...string) (Value, bool) {
	var cur Value = m
	for _, key := range path {
		mp, ok := cur.(*Mapping)
		if !ok {
			return nil, false
		}
		if cur, ok = mp.Get(key); !ok {
			return nil, false
		}
	}

	return cur, true
}

// SplitPath splits a dotted path such as "data.model.path" into keys.
// The empty string is the root and yields no keys.
func SplitPath(dotted string) []string {
	if dotted == "" {
		return nil
	}
	return strings.Split(dotted, ".")
}

// JoinPath is the inverse of SplitPath.
func JoinPath(path []string) string {
	return strings.Join(path, ".")
}

// WalkFunc is called by Walk for every value below the root. Returning
// SkipMapping from a call on a mapping skips its children.
type WalkFunc func(path []string, v Value) error

// SkipMapping is used as a return value from a WalkFunc to skip the
// children of the mapping it was called on.
var SkipMapping = errors.New("skip this mapping")

// Walk visits every value under m depth first, in key insertion order.
// The path slice passed to fn must not be retained. A nil m visits nothing.
func Walk(m *Mapping, fn WalkFunc) error {
	if m == nil {
		return nil
	}
	return walk(m, make([]string, 0, 8), fn)
}

func walk(m *Mapping, path []string, fn WalkFunc) error {
	for _, key := range m.keys {
		v := m.entries[key]
		p := append(path, key)

		err := fn(p, v)
		if err == SkipMapping {
			continue
		}
		if err != nil {
			return err
		}

		if child, ok := v.(*Mapping); ok {
			if err := walk(child, p, fn); err != nil {
				return err
			}
		}
	}

	return nil
}
