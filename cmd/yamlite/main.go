package main

import (
	"fmt"
	"os"

	"github.com/yamlite-lang/go-yamlite/internal/commands"
)

// Version is populated at build time.
var Version = "dev"

func main() {
	if err := commands.NewApp(Version).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "yamlite:", err)
		os.Exit(1)
	}
}
