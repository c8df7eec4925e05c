// Package yamlite parses a small indentation-structured configuration
// dialect into a tree of nested mappings with typed leaves.
//
// A document is a sequence of lines. A line ending in a colon opens a
// nested mapping; a line of the form "key: value" sets a leaf. Nesting is
// expressed only by indentation, whose unit is learned from the first
// indented line:
//
//	data:
//	  model:
//	    path: models/mvp.joblib
//	    version: 3
//	  threshold: 0.5
//	debug: False
//
// Leaves are coerced to Int, Float, Bool (True/False only) or String, in
// that order. Lists, comments, quoting and multi-line values are not part
// of the dialect.
package yamlite

import (
	"bytes"
	"io"
	"os"
	"strings"
)

// Option configures a parse.
type Option func(*options)

type options struct {
	strictKeys bool
}

// WithStrictKeys makes the parser return a ConflictingKeyError when a key
// is written twice, instead of keeping the last write. Re-opening a mapping
// that already exists is still allowed.
func WithStrictKeys() Option {
	return func(o *options) {
		o.strictKeys = true
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Decoder reads and decodes a document from an input stream.
type Decoder struct {
	r    io.Reader
	opts options
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opts: buildOptions(opts)}
}

// Parse reads the whole input and returns its root mapping.
func (dec *Decoder) Parse() (*Mapping, error) {
	return newParser(newLexer(dec.r), dec.opts).parse()
}

// Decode reads the document from the input stream and stores the result in
// the value pointed to by v. See DecodeValue for the conversion rules.
func (dec *Decoder) Decode(v any) error {
	root, err := dec.Parse()
	if err != nil {
		return err
	}

	return DecodeValue(root, v)
}

// Parse parses a document held in memory. An empty or blank document
// yields an empty mapping.
func Parse(data []byte, opts ...Option) (*Mapping, error) {
	return NewDecoder(bytes.NewReader(data), opts...).Parse()
}

// ParseString is like Parse but takes a string.
func ParseString(s string, opts ...Option) (*Mapping, error) {
	return NewDecoder(strings.NewReader(s), opts...).Parse()
}

// ParseFile reads and parses the document at path. Errors opening or
// reading the file are returned unchanged.
func ParseFile(path string, opts ...Option) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return NewDecoder(f, opts...).Parse()
}

// Unmarshal parses data and stores the result in the value pointed to by v.
// If v is nil or not a pointer, it returns an error.
func Unmarshal(data []byte, v any, opts ...Option) error {
	return NewDecoder(bytes.NewReader(data), opts...).Decode(v)
}
