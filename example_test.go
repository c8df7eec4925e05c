package yamlite_test

import (
	"errors"
	"fmt"

	"github.com/yamlite-lang/go-yamlite"
)

func ExampleParseString() {
	doc := `
data:
  model:
    path: models/mvp.joblib
    version: 3
  threshold: 0.5
debug: False
`
	root, err := yamlite.ParseString(doc)
	if err != nil {
		panic(err)
	}

	v, _ := root.Lookup("data", "model", "version")
	fmt.Println(v.Kind(), v)

	v, _ = root.Lookup(yamlite.SplitPath("data.threshold")...)
	fmt.Println(v.Kind(), v)

	v, _ = root.Lookup("debug")
	fmt.Println(v.Kind(), v)
	// Output:
	// int 3
	// float 0.5
	// bool False
}

func ExampleParseString_error() {
	_, err := yamlite.ParseString("a:\n  b: 1\n   c: 2\n")

	var indErr *yamlite.InconsistentIndentationError
	if errors.As(err, &indErr) {
		fmt.Println("line", indErr.Line)
	}
	fmt.Println(errors.Is(err, yamlite.ErrInconsistentIndentation))
	// Output:
	// line 3
	// true
}

func ExampleUnmarshal() {
	type Model struct {
		Path    string `yamlite:"path"`
		Version int    `yamlite:"version"`
	}

	doc := `
model:
  path: models/mvp.joblib
  version: 3
`
	var conf struct {
		Model Model `yamlite:"model"`
	}
	if err := yamlite.Unmarshal([]byte(doc), &conf); err != nil {
		panic(err)
	}

	fmt.Printf("%s v%d\n", conf.Model.Path, conf.Model.Version)
	// Output:
	// models/mvp.joblib v3
}

func ExampleMarshal() {
	data := map[string]any{
		"name":   "Alice",
		"age":    30,
		"active": true,
		"limits": map[string]any{"cpu": 0.5, "memory": 512},
	}

	res, err := yamlite.Marshal(data)
	if err != nil {
		panic(err)
	}

	fmt.Print(string(res))
	// Output:
	// active: True
	// age: 30
	// limits:
	//   cpu: 0.5
	//   memory: 512
	// name: Alice
}

func ExampleWalk() {
	root, _ := yamlite.ParseString("a:\n  b: 1\n  c:\n    d: x\ne: True\n")

	_ = yamlite.Walk(root, func(path []string, v yamlite.Value) error {
		if v.Kind() != yamlite.KindMapping {
			fmt.Println(yamlite.JoinPath(path), "=", v)
		}
		return nil
	})
	// Output:
	// a.b = 1
	// a.c.d = x
	// e = True
}
