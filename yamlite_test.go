package yamlite

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestValues(t *testing.T) {
	f := func(name, input string, expected map[string]any) {
		t.Helper()
		t.Run(name, func(t *testing.T) {
			t.Helper()
			root, err := ParseString(input)
			require.NoError(t, err)
			assert.Equal(t, expected, ToAny(root))

			// Try again via the decoder.
			var result any
			require.NoError(t, NewDecoder(strings.NewReader(input)).Decode(&result))
			assert.Equal(t, expected, result)
		})
	}

	f("nested_scalars", "a:\n  b: 1\n  c: 2.5\n", map[string]any{
		"a": map[string]any{"b": int64(1), "c": 2.5},
	})
	f("bool_and_string", "x: True\ny: hello\n", map[string]any{
		"x": true, "y": "hello",
	})
	f("trailing_blank_line", "a:\n  b: 1\na2: 3\n  ", map[string]any{
		"a": map[string]any{"b": int64(1)}, "a2": int64(3),
	})
	f("empty_document", "", map[string]any{})
	f("blank_document", "\n   \n\t\n", map[string]any{})
	f("empty_mapping", "a:\nb: 1\n", map[string]any{
		"a": map[string]any{}, "b": int64(1),
	})
	f("no_trailing_newline", "a: 1", map[string]any{"a": int64(1)})
	f("crlf", "a:\r\n  b: 1\r\n", map[string]any{
		"a": map[string]any{"b": int64(1)},
	})
	f("four_space_unit", "a:\n    b:\n        c: x\n    d: 4\n", map[string]any{
		"a": map[string]any{"b": map[string]any{"c": "x"}, "d": int64(4)},
	})
	f("tab_unit", "a:\n\tb:\n\t\tc: x\n", map[string]any{
		"a": map[string]any{"b": map[string]any{"c": "x"}},
	})
	f("blank_lines_between", "a:\n\n  b: 1\n\n\n  c: 2\n", map[string]any{
		"a": map[string]any{"b": int64(1), "c": int64(2)},
	})
	f("dedent_several_levels", "a:\n  b:\n    c:\n      d: 1\ne: 2\n", map[string]any{
		"a": map[string]any{"b": map[string]any{"c": map[string]any{"d": int64(1)}}},
		"e": int64(2),
	})
	f("value_after_last_colon", "url: http://localhost:8080\n", map[string]any{
		"url": int64(8080),
	})
	f("leaf_keeps_sibling_mapping_open", "a:\n  x:\n  b: 1\n    c: 2\n", map[string]any{
		"a": map[string]any{"x": map[string]any{"c": int64(2)}, "b": int64(1)},
	})
	f("root_leaf_keeps_nested_path_open", "a:\n  b:\n    c: 1\nd: 2\n    e: 3\n", map[string]any{
		"a": map[string]any{"b": map[string]any{"c": int64(1), "e": int64(3)}},
		"d": int64(2),
	})
	f("unit_learned_from_first_indent_only", "a:\n  b: 1\nc:\n  d: 2\n", map[string]any{
		"a": map[string]any{"b": int64(1)},
		"c": map[string]any{"d": int64(2)},
	})
}

func TestErrors(t *testing.T) {
	f := func(name, input string, target error, line int) {
		t.Helper()
		t.Run(name, func(t *testing.T) {
			t.Helper()
			root, err := ParseString(input)
			require.Error(t, err)
			assert.Nil(t, root, "no partial document on error")
			assert.ErrorIs(t, err, target)
			assert.Contains(t, err.Error(), fmt.Sprintf("line %d:", line))
		})
	}

	f("indented_first_line", "  a: 1\n", ErrOrphanedKey, 1)
	f("indented_first_line_after_blank", "\n\n    a:\n", ErrOrphanedKey, 3)
	f("jump_two_levels", "a:\n  b:\n      c: 1\n", ErrOrphanedKey, 3)
	f("jump_after_dedent", "a:\n  b: 1\nc:\n      d: 1\n", ErrOrphanedKey, 4)
	f("indent_under_leaf", "a: 1\n  b: 2\n", ErrOrphanedKey, 2)
	f("indent_under_overwritten_open_mapping", "a:\n  b:\n  b: 1\n    c: 2\n", ErrOrphanedKey, 4)
	f("indent_under_overwritten_mapping", "a:\n  b: 1\na: 5\n  c: 2\n", ErrOrphanedKey, 4)
	f("two_then_three_spaces", "a:\n  b: 1\n   c: 2\n", ErrInconsistentIndentation, 3)
	f("three_then_two_spaces", "a:\n   b:\n  c: 2\n", ErrInconsistentIndentation, 3)
	f("tab_then_spaces", "a:\n\tb:\n  c: 1\n", ErrInconsistentIndentation, 3)
	f("mixed_tab_space_same_width", "a:\n \tb:\n\t c: 1\n", ErrInconsistentIndentation, 3)
	f("no_colon", "a: 1\nplain words\n", ErrMalformedLine, 2)
	f("empty_key", "a:\n  : 1\n", ErrMalformedLine, 2)
	f("open_with_two_colons", "a: b:\n", ErrMalformedLine, 1)
}

func TestErrorDetails(t *testing.T) {
	_, err := ParseString("a:\n  b: 1\n   c: 2\n")

	var indErr *InconsistentIndentationError
	require.True(t, errors.As(err, &indErr))
	assert.Equal(t, 3, indErr.Line)
	assert.Equal(t, "   c: 2", indErr.Content)
	assert.Equal(t, "   ", indErr.Indent)
	assert.Equal(t, "  ", indErr.Unit)
	assert.Equal(t, `line 3: inconsistent indentation: indent 3 spaces is not a multiple of unit 2 spaces: "   c: 2"`, err.Error())

	_, err = ParseString("a:\n  b:\n      c: 1\n")

	var orphan *OrphanedKeyError
	require.True(t, errors.As(err, &orphan))
	assert.Equal(t, 3, orphan.Line)
	assert.Equal(t, 3, orphan.Depth)
	assert.Equal(t, 2, orphan.Open)
	assert.Equal(t, "      c: 1", orphan.Content)

	_, err = ParseString("a:\n\tb:\n  c: 1\n")
	assert.Contains(t, err.Error(), "indent 2 spaces is not a multiple of unit 1 tab")
}

func TestDeterministic(t *testing.T) {
	doc := readFixture(t, "conf.yaml")

	first, err := Parse(doc)
	require.NoError(t, err)
	second, err := Parse(doc)
	require.NoError(t, err)

	assert.True(t, Equal(first, second))
	assert.NotSame(t, first, second, "every parse builds a new tree")
}

func TestNoSiblingLeakage(t *testing.T) {
	root, err := ParseString(`a:
  b:
    c: 1
  d: 2
e:
  f: 3
`)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": int64(1)},
			"d": int64(2),
		},
		"e": map[string]any{"f": int64(3)},
	}, ToAny(root))
}

func TestReopenMappingIsIdempotent(t *testing.T) {
	root, err := ParseString(`a:
  x: 1
b: 2
a:
  y: 3
`)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"a": map[string]any{"x": int64(1), "y": int64(3)},
		"b": int64(2),
	}, ToAny(root))
	assert.Equal(t, []string{"a", "b"}, root.Keys())
}

func TestLastWriteWins(t *testing.T) {
	f := func(name, input string, expected map[string]any) {
		t.Helper()
		t.Run(name, func(t *testing.T) {
			root, err := ParseString(input)
			require.NoError(t, err)
			assert.Equal(t, expected, ToAny(root))
		})
	}

	f("scalar_over_scalar", "a: 1\na: 2\n", map[string]any{"a": int64(2)})
	f("scalar_over_mapping", "a:\n  b: 1\na: 5\n", map[string]any{"a": int64(5)})
	f("mapping_over_scalar", "a: 5\na:\n  b: 1\n", map[string]any{"a": map[string]any{"b": int64(1)}})
}

func TestStrictKeys(t *testing.T) {
	f := func(name, input string, existing Kind) {
		t.Helper()
		t.Run(name, func(t *testing.T) {
			_, err := ParseString(input, WithStrictKeys())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConflictingKey)

			var cErr *ConflictingKeyError
			require.True(t, errors.As(err, &cErr))
			assert.Equal(t, "a", cErr.Key)
			assert.Equal(t, existing, cErr.Existing)
		})
	}

	f("scalar_over_scalar", "a: 1\na: 2\n", KindInt)
	f("scalar_over_mapping", "a:\n  b: 1\na: 5\n", KindMapping)
	f("mapping_over_scalar", "a: x\na:\n  b: 1\n", KindString)

	// Reopening a mapping is not a conflict.
	root, err := ParseString("a:\n  x: 1\nb: 2\na:\n  y: 3\n", WithStrictKeys())
	require.NoError(t, err)
	assert.Equal(t, 2, root.Len())
}

func TestConcurrentParses(t *testing.T) {
	var g errgroup.Group
	for i := 0; i < 32; i++ {
		i := i
		g.Go(func() error {
			// Alternate the indentation unit so any shared state would show.
			unit := strings.Repeat(" ", 1+i%4)
			doc := fmt.Sprintf("n%d:\n%sv: %d\n%sleaf:\n%s%sx: True\n", i, unit, i, unit, unit, unit)

			root, err := ParseString(doc)
			if err != nil {
				return err
			}

			want := map[string]any{
				fmt.Sprintf("n%d", i): map[string]any{
					"v":    int64(i),
					"leaf": map[string]any{"x": true},
				},
			}
			if got := ToAny(root); !assert.ObjectsAreEqual(want, got) {
				return fmt.Errorf("doc %d: got %v, want %v", i, got, want)
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())
}

func TestParseFile(t *testing.T) {
	root, err := ParseFile(filepath.Join("testdata", "conf.yaml"))
	require.NoError(t, err)

	v, ok := root.Lookup("data", "model", "path")
	require.True(t, ok)
	assert.Equal(t, String("models/mvp_model.joblib"), v)

	_, err = ParseFile(filepath.Join("testdata", "does-not-exist.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var pathErr *fs.PathError
	assert.True(t, errors.As(err, &pathErr), "file errors are returned unchanged")
}

func TestUnmarshal(t *testing.T) {
	var out map[string]any
	require.NoError(t, Unmarshal([]byte("a:\n  b: 1\n"), &out))
	assert.Equal(t, map[string]any{"a": map[string]any{"b": int64(1)}}, out)

	err := Unmarshal([]byte("  a: 1\n"), &out)
	assert.ErrorIs(t, err, ErrOrphanedKey)
}

// TestDocuments parses testdata/*.yaml and compares each with the JSON file
// of the same name.
func TestDocuments(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "expected fixtures in testdata")

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			root, err := ParseFile(path)
			require.NoError(t, err)

			b, err := os.ReadFile(strings.TrimSuffix(path, ".yaml") + ".json")
			require.NoError(t, err)

			var expected map[string]any
			require.NoError(t, json.Unmarshal(b, &expected))

			assert.Equal(t, expected, normalizeToJSON(t, ToAny(root)))
		})
	}
}

// normalizeToJSON round-trips v through encoding/json so numbers compare
// the way the fixture files decode.
func normalizeToJSON(t *testing.T, v any) map[string]any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func readFixture(t testing.TB, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return b
}

func FuzzParse(f *testing.F) {
	seeds := []string{
		"",
		"a:\n  b: 1\n  c: 2.5\n",
		"x: True\ny: hello\n",
		"a:\n  b: 1\na2: 3\n  ",
		"  a: 1",
		"a:\n  b: 1\n   c: 2",
		"a:\n\tb: x\n",
		"a: b: c",
		"a: b:",
		"plain",
		"a:\n  b:\n    c:\n  d: nan\ne: -inf",
		"a: 1\na:\n  b: 2",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		root, err := ParseString(input)
		if err != nil {
			assert.Nil(t, root)
			return
		}

		again, err := ParseString(input)
		require.NoError(t, err)
		require.True(t, Equal(root, again), "parsing must be deterministic")

		// Whatever the encoder can express must read back unchanged.
		out, err := Marshal(root)
		if err != nil {
			require.ErrorIs(t, err, ErrUnrepresentable)
			return
		}
		back, err := Parse(out)
		require.NoError(t, err, "re-parsing %q", out)
		require.True(t, Equal(root, back), "round trip of %q via %q", input, out)
	})
}

func BenchmarkParse(b *testing.B) {
	doc := readFixture(b, "conf.yaml")
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := Parse(doc); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}
