package yamlite

import (
	"io"
	"strings"
)

// parser assembles classified lines into a document. A parser is used for
// exactly one parse; the indentation unit and the path stack never outlive it.
type parser struct {
	lexer *lexer
	opts  options

	root *Mapping
	unit string   // Indentation unit, learned from the first indented line.
	path []string // Keys of the open mappings; path[d] was opened at depth d.
}

// newParser creates a new parser reading from l.
func newParser(l *lexer, opts options) *parser {
	return &parser{
		lexer: l,
		opts:  opts,
		root:  NewMapping(),
		path:  make([]string, 0, 8),
	}
}

// parse consumes every line and returns the root mapping. On error no
// document is returned.
func (p *parser) parse() (*Mapping, error) {
	for {
		ln, err := p.lexer.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if ln.Kind == lineBlank {
			continue
		}

		if err := p.apply(ln); err != nil {
			return nil, err
		}
	}

	return p.root, nil
}

// apply places a single non-blank line into the document.
func (p *parser) apply(ln line) error {
	depth, err := p.depth(ln)
	if err != nil {
		return err
	}

	// A line can only nest directly under a mapping that is still open.
	if depth > len(p.path) {
		return &OrphanedKeyError{Line: ln.Num, Content: ln.Raw, Depth: depth, Open: len(p.path)}
	}

	switch ln.Kind {
	case lineMappingOpen:
		// Branches at this depth or deeper are closed by the new mapping.
		p.path = p.path[:depth]

		dest, err := p.resolve(ln, p.path)
		if err != nil {
			return err
		}
		if err := p.checkConflict(dest, ln, true); err != nil {
			return err
		}
		dest.child(ln.Key)
		p.path = append(p.path, ln.Key)

	case lineKeyValue:
		// A leaf writes under its first depth ancestors and leaves the
		// open path untouched.
		dest, err := p.resolve(ln, p.path[:depth])
		if err != nil {
			return err
		}
		if err := p.checkConflict(dest, ln, false); err != nil {
			return err
		}
		dest.set(ln.Key, Coerce(ln.Value))
	}

	return nil
}

// depth returns how many indentation units prefix the line, learning the
// unit from the first indented line.
func (p *parser) depth(ln line) (int, error) {
	if ln.Indent == "" {
		return 0, nil
	}

	if p.unit == "" {
		p.unit = ln.Indent
	}

	n := len(ln.Indent) / len(p.unit)
	if len(ln.Indent)%len(p.unit) != 0 || ln.Indent != strings.Repeat(p.unit, n) {
		return 0, &InconsistentIndentationError{
			Line:    ln.Num,
			Content: ln.Raw,
			Indent:  ln.Indent,
			Unit:    p.unit,
		}
	}

	return n, nil
}

// resolve walks from the root along path and returns the mapping that
// receives the line. An ancestor since overwritten by a scalar orphans it.
func (p *parser) resolve(ln line, path []string) (*Mapping, error) {
	cur := p.root
	for i, key := range path {
		next, ok := cur.entries[key].(*Mapping)
		if !ok {
			return nil, &OrphanedKeyError{Line: ln.Num, Content: ln.Raw, Depth: len(path), Open: i}
		}
		cur = next
	}

	return cur, nil
}

// checkConflict rejects writes that would discard an existing value when
// strict keys are enabled. Re-opening an existing mapping is always allowed.
func (p *parser) checkConflict(dest *Mapping, ln line, opening bool) error {
	if !p.opts.strictKeys {
		return nil
	}

	cur, ok := dest.entries[ln.Key]
	if !ok {
		return nil
	}
	if opening && cur.Kind() == KindMapping {
		return nil
	}

	return &ConflictingKeyError{Line: ln.Num, Content: ln.Raw, Key: ln.Key, Existing: cur.Kind()}
}
