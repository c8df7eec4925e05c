// Package config wraps a parsed document in a read-only configuration
// object addressed by dotted paths such as "data.model.path".
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yamlite-lang/go-yamlite"
)

// ErrNotFound is returned, wrapped in a *PathError, when a path names no value.
var ErrNotFound = errors.New("not found")

// PathError records a failed lookup and the path that caused it.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("config: %q: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// TypeError is returned when a path holds a value of another kind than
// the one requested.
type TypeError struct {
	Path string
	Want yamlite.Kind
	Got  yamlite.Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("config: %q: want %s, got %s", e.Path, e.Want, e.Got)
}

// Config is an immutable view over a parsed document. It is safe for
// concurrent use.
type Config struct {
	root     *yamlite.Mapping
	prefix   []string
	logger   *slog.Logger
	validate *validator.Validate
}

// Option configures a Config.
type Option func(*settings)

type settings struct {
	logger    *slog.Logger
	parseOpts []yamlite.Option
}

// WithLogger sets the logger used for load events and fallbacks to
// defaults. Without it nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithStrictKeys makes Load reject documents that write a key twice.
func WithStrictKeys() Option {
	return func(s *settings) {
		s.parseOpts = append(s.parseOpts, yamlite.WithStrictKeys())
	}
}

func buildSettings(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// New returns a Config over root. A nil root behaves as an empty document.
func New(root *yamlite.Mapping, opts ...Option) *Config {
	s := buildSettings(opts)
	if root == nil {
		root = yamlite.NewMapping()
	}

	return &Config{
		root:     root,
		logger:   s.logger.With(slog.String("component", "config")),
		validate: newValidator(),
	}
}

// Load parses the document at path and returns a Config over it.
func Load(path string, opts ...Option) (*Config, error) {
	s := buildSettings(opts)
	logger := s.logger.With(slog.String("component", "config"))

	root, err := yamlite.ParseFile(path, s.parseOpts...)
	if err != nil {
		logger.Error("failed to load config", slog.String("path", path), slog.String("error", err.Error()))
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}

	logger.Debug("config loaded", slog.String("path", path), slog.Int("keys", root.Len()))

	return &Config{
		root:     root,
		logger:   logger,
		validate: newValidator(),
	}, nil
}

// newValidator returns a validator that reports fields by their yamlite key.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yamlite"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	return v
}

// Root returns the mapping this Config reads from.
func (c *Config) Root() *yamlite.Mapping {
	if len(c.prefix) == 0 {
		return c.root
	}
	v, _ := c.root.Lookup(c.prefix...)
	m, _ := v.(*yamlite.Mapping)
	return m
}

// full returns path as seen from the document root, for error messages.
func (c *Config) full(path string) string {
	if len(c.prefix) == 0 {
		return path
	}
	if path == "" {
		return yamlite.JoinPath(c.prefix)
	}
	return yamlite.JoinPath(c.prefix) + "." + path
}

// Get returns the value at the dotted path. The empty path is the root.
func (c *Config) Get(path string) (yamlite.Value, error) {
	keys := append(append([]string(nil), c.prefix...), yamlite.SplitPath(path)...)
	v, ok := c.root.Lookup(keys...)
	if !ok {
		return nil, &PathError{Path: c.full(path), Err: ErrNotFound}
	}
	return v, nil
}

// Has reports whether path names a value.
func (c *Config) Has(path string) bool {
	_, err := c.Get(path)
	return err == nil
}

// Keys returns the keys of the mapping at path in document order.
func (c *Config) Keys(path string) ([]string, error) {
	m, err := c.mapping(path)
	if err != nil {
		return nil, err
	}
	return m.Keys(), nil
}

func (c *Config) mapping(path string) (*yamlite.Mapping, error) {
	v, err := c.Get(path)
	if err != nil {
		return nil, err
	}
	m, ok := v.(*yamlite.Mapping)
	if !ok {
		return nil, &TypeError{Path: c.full(path), Want: yamlite.KindMapping, Got: v.Kind()}
	}
	return m, nil
}

// Sub returns a Config rooted at the mapping at path.
func (c *Config) Sub(path string) (*Config, error) {
	if _, err := c.mapping(path); err != nil {
		return nil, err
	}

	return &Config{
		root:     c.root,
		prefix:   append(append([]string(nil), c.prefix...), yamlite.SplitPath(path)...),
		logger:   c.logger,
		validate: c.validate,
	}, nil
}

// String returns the string at path.
func (c *Config) String(path string) (string, error) {
	v, err := c.Get(path)
	if err != nil {
		return "", err
	}
	s, ok := v.(yamlite.String)
	if !ok {
		return "", &TypeError{Path: c.full(path), Want: yamlite.KindString, Got: v.Kind()}
	}
	return string(s), nil
}

// Int returns the integer at path.
func (c *Config) Int(path string) (int64, error) {
	v, err := c.Get(path)
	if err != nil {
		return 0, err
	}
	i, ok := v.(yamlite.Int)
	if !ok {
		return 0, &TypeError{Path: c.full(path), Want: yamlite.KindInt, Got: v.Kind()}
	}
	return int64(i), nil
}

// Float returns the number at path. Integers are widened.
func (c *Config) Float(path string) (float64, error) {
	v, err := c.Get(path)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case yamlite.Float:
		return float64(n), nil
	case yamlite.Int:
		return float64(n), nil
	}
	return 0, &TypeError{Path: c.full(path), Want: yamlite.KindFloat, Got: v.Kind()}
}

// Bool returns the boolean at path.
func (c *Config) Bool(path string) (bool, error) {
	v, err := c.Get(path)
	if err != nil {
		return false, err
	}
	b, ok := v.(yamlite.Bool)
	if !ok {
		return false, &TypeError{Path: c.full(path), Want: yamlite.KindBool, Got: v.Kind()}
	}
	return bool(b), nil
}

// StringOr returns the string at path, or def if the path is missing or
// holds another kind.
func (c *Config) StringOr(path, def string) string {
	s, err := c.String(path)
	if err != nil {
		c.fallback(path, err)
		return def
	}
	return s
}

// IntOr is like StringOr for integers.
func (c *Config) IntOr(path string, def int64) int64 {
	i, err := c.Int(path)
	if err != nil {
		c.fallback(path, err)
		return def
	}
	return i
}

// FloatOr is like StringOr for numbers.
func (c *Config) FloatOr(path string, def float64) float64 {
	f, err := c.Float(path)
	if err != nil {
		c.fallback(path, err)
		return def
	}
	return f
}

// BoolOr is like StringOr for booleans.
func (c *Config) BoolOr(path string, def bool) bool {
	b, err := c.Bool(path)
	if err != nil {
		c.fallback(path, err)
		return def
	}
	return b
}

// fallback logs a default being used: missing paths at debug level, kind
// mismatches as warnings.
func (c *Config) fallback(path string, err error) {
	var typeErr *TypeError
	if errors.As(err, &typeErr) {
		c.logger.Warn("config value has unexpected kind, using default",
			slog.String("path", typeErr.Path),
			slog.String("want", typeErr.Want.String()),
			slog.String("got", typeErr.Got.String()))
		return
	}
	c.logger.Debug("config value missing, using default", slog.String("path", c.full(path)))
}

// Decode stores the value at path in v (see yamlite.DecodeValue) and then
// checks the `validate` struct tags of v. Validation failures are returned
// as validator.ValidationErrors wrapped with the path.
func (c *Config) Decode(path string, v any) error {
	src, err := c.Get(path)
	if err != nil {
		return err
	}

	if err := yamlite.DecodeValue(src, v); err != nil {
		return fmt.Errorf("config: decode %q: %w", c.full(path), err)
	}

	if reflect.Indirect(reflect.ValueOf(v)).Kind() != reflect.Struct {
		return nil
	}
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("config: validate %q: %w", c.full(path), err)
	}

	return nil
}
