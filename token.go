package yamlite

import "fmt"

// lineKind classifies a physical line of input.
type lineKind int

const (
	lineBlank lineKind = iota
	lineMappingOpen
	lineKeyValue
)

// line is one classified line of input.
type line struct {
	Kind   lineKind
	Num    int    // Line number (1-based).
	Raw    string // Line content without its terminator.
	Indent string // Leading whitespace, verbatim.
	Key    string // Trimmed key; empty for blank lines.
	Value  string // Trimmed value; only set for key-value lines.
}

// String returns a human-readable representation of the line.
func (l line) String() string {
	switch l.Kind {
	case lineBlank:
		return fmt.Sprintf("%d: Blank", l.Num)
	case lineMappingOpen:
		return fmt.Sprintf("%d: Open(%q, indent=%q)", l.Num, l.Key, l.Indent)
	case lineKeyValue:
		return fmt.Sprintf("%d: KeyValue(%q=%q, indent=%q)", l.Num, l.Key, l.Value, l.Indent)
	default:
		return fmt.Sprintf("%d: Unknown(%d)", l.Num, l.Kind)
	}
}
