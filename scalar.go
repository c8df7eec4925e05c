package yamlite

import (
	"errors"
	"strconv"
	"strings"
)

// Coerce converts the text of a leaf into a typed value. It tries an
// integer, then a decimal float, then the literals True and False, and
// otherwise returns the text unchanged as a String. It never fails.
//
// An integer outside the int64 range is kept as a String, since no Int
// holds it and a Float would lose digits.
func Coerce(s string) Value {
	i, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return Int(i)
	}
	if errors.Is(err, strconv.ErrRange) {
		return String(s)
	}

	if f, ok := parseDecimalFloat(s); ok {
		return Float(f)
	}

	switch s {
	case "True":
		return Bool(true)
	case "False":
		return Bool(false)
	}

	return String(s)
}

// parseDecimalFloat accepts what strconv.ParseFloat does, minus hex
// mantissas and digit separators. Values outside the float64 range are
// rejected rather than rounded to infinity.
func parseDecimalFloat(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "_xX") {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return f, true
}
