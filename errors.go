package yamlite

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by errors.Is against the corresponding error types.
var (
	ErrMalformedLine           = errors.New("malformed line")
	ErrInconsistentIndentation = errors.New("inconsistent indentation")
	ErrOrphanedKey             = errors.New("orphaned key")
	ErrConflictingKey          = errors.New("conflicting key")
)

// ErrUnrepresentable is wrapped by encoding errors for values that the
// dialect cannot express.
var ErrUnrepresentable = errors.New("value cannot be represented")

// MalformedLineError reports a non-blank line that is not a mapping-open
// or key-value line.
type MalformedLineError struct {
	Line    int    // 1-based line number.
	Content string // Raw line, without its terminator.
	Reason  string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d: %s: %s: %q", e.Line, ErrMalformedLine, e.Reason, e.Content)
}

func (e *MalformedLineError) Is(target error) bool { return target == ErrMalformedLine }

// InconsistentIndentationError reports leading whitespace that is not a
// whole repetition of the document's indentation unit.
type InconsistentIndentationError struct {
	Line    int
	Content string
	Indent  string // Leading whitespace of the line.
	Unit    string // Indentation unit learned from the document.
}

func (e *InconsistentIndentationError) Error() string {
	return fmt.Sprintf("line %d: %s: indent %s is not a multiple of unit %s: %q",
		e.Line, ErrInconsistentIndentation, describeIndent(e.Indent), describeIndent(e.Unit), e.Content)
}

func (e *InconsistentIndentationError) Is(target error) bool {
	return target == ErrInconsistentIndentation
}

// OrphanedKeyError reports a line nested deeper than the mappings open
// above it.
type OrphanedKeyError struct {
	Line    int
	Content string
	Depth   int // Depth of the offending line.
	Open    int // Number of mappings open when it was read.
}

func (e *OrphanedKeyError) Error() string {
	return fmt.Sprintf("line %d: %s: depth %d but only %d open mapping(s): %q",
		e.Line, ErrOrphanedKey, e.Depth, e.Open, e.Content)
}

func (e *OrphanedKeyError) Is(target error) bool { return target == ErrOrphanedKey }

// ConflictingKeyError reports a key written twice in a way that would
// discard data. It is only returned when strict keys are enabled.
type ConflictingKeyError struct {
	Line     int
	Content  string
	Key      string
	Existing Kind // Kind already stored under Key.
}

func (e *ConflictingKeyError) Error() string {
	return fmt.Sprintf("line %d: %s: %q already holds a %s: %q",
		e.Line, ErrConflictingKey, e.Key, e.Existing, e.Content)
}

func (e *ConflictingKeyError) Is(target error) bool { return target == ErrConflictingKey }

// describeIndent renders whitespace readably, e.g. "3 spaces" or "1 tab+2 spaces".
func describeIndent(ws string) string {
	if ws == "" {
		return "none"
	}

	var (
		parts []string
		run   rune
		n     int
	)
	flush := func() {
		if n == 0 {
			return
		}
		name := "space"
		switch run {
		case '\t':
			name = "tab"
		case ' ':
		default:
			name = fmt.Sprintf("%U", run)
		}
		if n > 1 {
			name += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, name))
	}
	for _, r := range ws {
		if r != run {
			flush()
			run, n = r, 0
		}
		n++
	}
	flush()

	return strings.Join(parts, "+")
}
