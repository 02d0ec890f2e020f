// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// chatmark renders chat-flavoured markdown for the terminal, as HTML,
// or as a serialized render tree.
//
// The input is a file argument, or standard input when no file (or
// "-") is given. With --view the document opens in an interactive
// viewer that re-renders on resize, can load images on request, and
// with --stream reveals the input a line at a time the way a chat
// response arrives.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/chatmark/lib/codec"
	"github.com/bureau-foundation/chatmark/lib/config"
	"github.com/bureau-foundation/chatmark/lib/htmlrender"
	"github.com/bureau-foundation/chatmark/lib/markdown"
	"github.com/bureau-foundation/chatmark/lib/termrender"
	"github.com/bureau-foundation/chatmark/lib/treedump"
	"github.com/bureau-foundation/chatmark/lib/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

// usageError is a mistake in the command line. It exits with status 2.
type usageError struct {
	err error
}

func usage(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }
func (e usageError) ExitCode() int { return 2 }

// Output formats.
const (
	formatANSI = "ansi"
	formatHTML = "html"
	formatJSON = "json"
	formatCBOR = "cbor"
	// formatCBORDiag is the CBOR snapshot in RFC 8949 diagnostic
	// notation.
	formatCBORDiag = "cbor-diag"
)

type options struct {
	format      string
	width       int
	configPath  string
	view        bool
	stream      time.Duration
	logLevel    string
	logOutput   string
	showVersion bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var flags options
	flagSet := pflag.NewFlagSet("chatmark", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&flags.format, "format", formatANSI, "output format: ansi, html, json, cbor, or cbor-diag")
	flagSet.IntVar(&flags.width, "width", 0, "render width in columns (default: terminal width, or 80)")
	flagSet.StringVar(&flags.configPath, "config", "", "configuration file (default: $"+config.EnvVar+")")
	flagSet.BoolVar(&flags.view, "view", false, "open the interactive viewer")
	flagSet.DurationVar(&flags.stream, "stream", 0, "with --view, reveal the input one line per interval")
	flagSet.StringVar(&flags.logLevel, "log-level", "warn", "log level: debug, info, warn, or error")
	flagSet.StringVar(&flags.logOutput, "log-output", "", "with --view, also write JSON log records to this file")
	flagSet.BoolVar(&flags.showVersion, "version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil
		}
		return usageError{err: err}
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stderr, flagSet)
		return nil
	}
	if flags.showVersion {
		version.Print(stdout, "chatmark")
		return nil
	}

	switch flags.format {
	case formatANSI, formatHTML, formatJSON, formatCBOR, formatCBORDiag:
	default:
		return usage("unknown format %q (want ansi, html, json, cbor, or cbor-diag)", flags.format)
	}
	if flags.width < 0 {
		return usage("--width must not be negative")
	}
	if flags.stream < 0 {
		return usage("--stream must not be negative")
	}
	if flags.stream > 0 && !flags.view {
		return usage("--stream requires --view")
	}
	if flags.logOutput != "" && !flags.view {
		return usage("--log-output requires --view")
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(flags.logLevel)); err != nil {
		return usage("invalid --log-level %q", flags.logLevel)
	}

	positional := flagSet.Args()
	if len(positional) > 1 {
		return usage("unexpected argument: %s", positional[1])
	}
	path := ""
	if len(positional) == 1 {
		path = positional[0]
	}

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}

	source, err := readInput(path, stdin)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, level).With("command", "chatmark")
	renderOptions := terminalOptions(cfg, flags.width, stdout)

	if flags.view {
		return runViewer(viewerParams{
			source:     source,
			fromStdin:  path == "" || path == "-",
			config:     cfg,
			render:     renderOptions,
			stream:     flags.stream,
			level:      level,
			logOutput:  flags.logOutput,
			textLogger: logger,
		})
	}

	logger.Debug("rendering", "format", flags.format, "bytes", len(source), "width", renderOptions.Width)
	return render(stdout, markdown.Parse(source), flags.format, cfg, renderOptions)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading standard input: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

// terminalOptions builds renderer options from the configuration.
// Width precedence: --width, then layout.width, then the width of
// stdout when it is a terminal, then termrender.DefaultWidth.
func terminalOptions(cfg *config.Config, width int, stdout io.Writer) termrender.Options {
	if width == 0 {
		width = cfg.Layout.Width
	}
	if width == 0 {
		width = terminalWidth(stdout)
	}
	return termrender.Options{
		Width:        width,
		Compiler:     cfg.Compiler(),
		Images:       cfg.Policies().Images,
		CodeTheme:    cfg.Layout.CodeTheme,
		TableEpsilon: cfg.Layout.TableEpsilon,
		Hyperlinks:   isTerminal(stdout),
	}
}

func render(stdout io.Writer, items []markdown.RenderItem, format string, cfg *config.Config, renderOptions termrender.Options) error {
	var output []byte
	switch format {
	case formatHTML:
		output = []byte(htmlrender.Render(items, htmlrender.Options{
			Compiler: renderOptions.Compiler,
			Images:   renderOptions.Images,
		}))
	case formatJSON:
		encoded, err := treedump.JSON(items)
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		output = encoded
	case formatCBOR:
		encoded, err := treedump.CBOR(items)
		if err != nil {
			return fmt.Errorf("encoding CBOR: %w", err)
		}
		output = encoded
	case formatCBORDiag:
		encoded, err := treedump.CBOR(items)
		if err != nil {
			return fmt.Errorf("encoding CBOR: %w", err)
		}
		diagnostic, err := codec.Diagnose(encoded)
		if err != nil {
			return fmt.Errorf("formatting CBOR diagnostic: %w", err)
		}
		output = []byte(diagnostic + "\n")
	default:
		text := termrender.New(renderOptions).Render(items)
		if text != "" {
			text += "\n"
		}
		output = []byte(text)
	}
	if _, err := stdout.Write(output); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `chatmark renders chat markdown: paragraphs, headings, fenced code,
pipe tables, and inline code, links, images, and bold.

Links and images are checked against the configured policies. Links
that need confirmation show their destination; images are only
fetched by the interactive viewer, and only when the image policy
allows it.

Usage:
  chatmark [flags] [file]

Reads standard input when no file (or "-") is given.

Examples:
  # Render a file for the terminal
  chatmark notes.md

  # Emit HTML
  chatmark --format html notes.md > notes.html

  # Inspect the render tree
  echo '# Title' | chatmark --format json
  echo '# Title' | chatmark --format cbor-diag

  # Watch a response arrive a line at a time
  chatmark --view --stream 50ms response.md

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
