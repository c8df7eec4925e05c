// Package commands implements the yamlite command line tool.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/yamlite-lang/go-yamlite"
	"github.com/yamlite-lang/go-yamlite/internal/logging"
)

const (
	metaLogger   = "logger"
	metaSettings = "settings"
)

var globalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    "strict",
		Usage:   "Reject documents that write the same key twice",
		EnvVars: []string{"YAMLITE_STRICT"},
	},
	&cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level: debug, info, warning, error or critical (default from YAMLITE_LOG_LEVEL)",
	},
	&cli.StringFlag{
		Name:  "log-format",
		Usage: "Log format: text or json (default from YAMLITE_LOG_FORMAT)",
	},
	&cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	},
}

// NewApp returns the yamlite tool. Output goes to the app's Writer and logs
// to its ErrWriter, so callers can redirect both before running it.
func NewApp(version string) *cli.App {
	return &cli.App{
		Name:    "yamlite",
		Usage:   "Inspect and convert yamlite documents",
		Version: version,
		Description: "yamlite reads indentation-structured key: value documents.\n" +
			"FILE may be - to read from standard input.",
		Flags: globalFlags,
		Before: func(c *cli.Context) error {
			settings, err := logging.LoadSettings()
			if err != nil {
				return err
			}
			if c.IsSet("strict") {
				settings.Strict = c.Bool("strict")
			}
			if c.IsSet("log-level") {
				settings.LogLevel = c.String("log-level")
			}
			if c.IsSet("log-format") {
				settings.LogFormat = c.String("log-format")
			}
			if c.Bool("no-color") {
				color.NoColor = true
			}

			logger, err := logging.New(settings, c.App.ErrWriter)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			c.App.Metadata = map[string]interface{}{
				metaLogger:   logger,
				metaSettings: settings,
			}
			return nil
		},
		Commands: []*cli.Command{
			CheckCommand(),
			JSONCommand(),
			YAMLCommand(),
			GetCommand(),
			PathsCommand(),
			FmtCommand(),
		},
	}
}

// loggerFrom returns the logger stored by the app's Before hook.
func loggerFrom(c *cli.Context) *slog.Logger {
	if l, ok := c.App.Metadata[metaLogger].(*slog.Logger); ok {
		return l
	}
	return logging.Discard()
}

func parseOptions(c *cli.Context) []yamlite.Option {
	if s, ok := c.App.Metadata[metaSettings].(logging.Settings); ok && s.Strict {
		return []yamlite.Option{yamlite.WithStrictKeys()}
	}
	return nil
}

// parseArg parses the document named by a FILE argument.
func parseArg(c *cli.Context, name string) (*yamlite.Mapping, error) {
	logger := loggerFrom(c)
	start := time.Now()

	var r io.Reader
	if name == "-" {
		r = c.App.Reader
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	root, err := yamlite.NewDecoder(r, parseOptions(c)...).Parse()
	if err != nil {
		logger.Debug("parse failed", slog.String("file", name), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	logger.Debug("parsed document",
		slog.String("file", name),
		slog.Int("keys", root.Len()),
		slog.Duration("elapsed", time.Since(start)))

	return root, nil
}

// oneFile returns the single FILE argument of a command.
func oneFile(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("%s: expected exactly one FILE argument, got %d", c.Command.Name, c.NArg())
	}
	return c.Args().First(), nil
}
