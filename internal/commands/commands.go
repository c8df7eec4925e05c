package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yamlite-lang/go-yamlite"
)

// CheckCommand parses each file and reports whether it is well formed.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check that documents parse",
		ArgsUsage: "FILE...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("check: expected at least one FILE argument")
			}

			ok := color.New(color.FgGreen, color.Bold)
			fail := color.New(color.FgRed, color.Bold)

			failed := 0
			for _, name := range c.Args().Slice() {
				if _, err := parseArg(c, name); err != nil {
					failed++
					fail.Fprint(c.App.Writer, "FAIL")
					fmt.Fprintf(c.App.Writer, " %s\n", err)
					continue
				}
				ok.Fprint(c.App.Writer, "ok")
				fmt.Fprintf(c.App.Writer, "   %s\n", name)
			}

			if failed > 0 {
				return fmt.Errorf("check: %d of %d document(s) failed", failed, c.NArg())
			}
			return nil
		},
	}
}

// JSONCommand prints a document as indented JSON.
func JSONCommand() *cli.Command {
	return &cli.Command{
		Name:      "json",
		Usage:     "Print a document as JSON",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			name, err := oneFile(c)
			if err != nil {
				return err
			}
			root, err := parseArg(c, name)
			if err != nil {
				return err
			}

			b, err := json.MarshalIndent(jsonValue(root), "", "  ")
			if err != nil {
				return fmt.Errorf("json: %w", err)
			}
			_, err = fmt.Fprintf(c.App.Writer, "%s\n", b)
			return err
		},
	}
}

// jsonValue converts v for encoding/json. NaN and the infinities have no
// JSON number form and are written as strings ("NaN", "+Inf", "-Inf").
func jsonValue(v yamlite.Value) any {
	switch t := v.(type) {
	case *yamlite.Mapping:
		out := make(map[string]any, t.Len())
		for _, key := range t.Keys() {
			child, _ := t.Get(key)
			out[key] = jsonValue(child)
		}
		return out
	case yamlite.Float:
		if f := float64(t); math.IsNaN(f) || math.IsInf(f, 0) {
			return t.String()
		}
	}
	return yamlite.ToAny(v)
}

// YAMLCommand prints a document as YAML, keeping its key order.
func YAMLCommand() *cli.Command {
	return &cli.Command{
		Name:      "yaml",
		Usage:     "Print a document as YAML",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			name, err := oneFile(c)
			if err != nil {
				return err
			}
			root, err := parseArg(c, name)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(c.App.Writer)
			enc.SetIndent(2)
			if err := enc.Encode(yamlNode(root)); err != nil {
				return fmt.Errorf("yaml: %w", err)
			}
			return enc.Close()
		},
	}
}

// yamlNode converts a value to a YAML node. Leaves carry explicit tags so
// strings such as "42" are quoted on output.
func yamlNode(v yamlite.Value) *yaml.Node {
	switch t := v.(type) {
	case *yamlite.Mapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range t.Keys() {
			child, _ := t.Get(key)
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				yamlNode(child))
		}
		return n
	case yamlite.Int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: t.String()}
	case yamlite.Float:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(float64(t))}
	case yamlite.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(bool(t))}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.String()}
	}
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	return yamlite.Float(f).String()
}

// GetCommand prints the value at a dotted path.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print the value at a dotted path such as data.model.path",
		ArgsUsage: "FILE PATH",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("get: expected FILE and PATH arguments, got %d argument(s)", c.NArg())
			}
			root, err := parseArg(c, c.Args().Get(0))
			if err != nil {
				return err
			}

			path := c.Args().Get(1)
			v, ok := root.Lookup(yamlite.SplitPath(path)...)
			if !ok {
				loggerFrom(c).Debug("path not found", slog.String("path", path))
				return fmt.Errorf("get: path %q not found", path)
			}

			if m, ok := v.(*yamlite.Mapping); ok {
				return yamlite.NewEncoder(c.App.Writer).Encode(m)
			}
			_, err = fmt.Fprintln(c.App.Writer, v.String())
			return err
		},
	}
}

// PathsCommand lists every path of a document with its kind and value.
func PathsCommand() *cli.Command {
	return &cli.Command{
		Name:      "paths",
		Usage:     "List every path in a document",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "leaves",
				Usage: "Only list leaf values",
			},
		},
		Action: func(c *cli.Context) error {
			name, err := oneFile(c)
			if err != nil {
				return err
			}
			root, err := parseArg(c, name)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(c.App.Writer)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Path", "Kind", "Value"})

			leavesOnly := c.Bool("leaves")
			err = yamlite.Walk(root, func(path []string, v yamlite.Value) error {
				if v.Kind() == yamlite.KindMapping {
					if !leavesOnly {
						t.AppendRow(table.Row{yamlite.JoinPath(path), v.Kind(), ""})
					}
					return nil
				}
				t.AppendRow(table.Row{yamlite.JoinPath(path), v.Kind(), v.String()})
				return nil
			})
			if err != nil {
				return err
			}

			t.Render()
			return nil
		},
	}
}

// FmtCommand re-emits a document in canonical form.
func FmtCommand() *cli.Command {
	return &cli.Command{
		Name:      "fmt",
		Usage:     "Rewrite a document with two-space indentation",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "Write the result back to FILE instead of standard output",
			},
		},
		Action: func(c *cli.Context) error {
			name, err := oneFile(c)
			if err != nil {
				return err
			}
			root, err := parseArg(c, name)
			if err != nil {
				return err
			}

			out, err := yamlite.Marshal(root)
			if err != nil {
				return fmt.Errorf("fmt: %w", err)
			}

			if !c.Bool("write") || name == "-" {
				_, err = c.App.Writer.Write(out)
				return err
			}

			info, err := os.Stat(name)
			if err != nil {
				return err
			}
			if err := os.WriteFile(name, out, info.Mode().Perm()); err != nil {
				return err
			}
			loggerFrom(c).Info("formatted document", slog.String("file", name))
			return nil
		},
	}
}
