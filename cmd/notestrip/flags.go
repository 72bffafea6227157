package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"tools.zach/dev/notestrip/internal/config"
	"tools.zach/dev/notestrip/internal/paths"
)

// ///////////////////////////////////////////////
// Options
// ///////////////////////////////////////////////

// usageError marks a command-line mistake. It exits with status 2.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// options holds the parsed command line.
type options struct {
	colors string
	output string

	configPath  string
	assetsDir   string
	background  string
	padding     config.PaddingConfig
	spacing     int
	logLevel    string
	watch       bool
	printConfig bool
	version     bool

	// set holds the long names of flags given explicitly.
	set map[string]bool
}

// shortNames maps single-dash aliases to their long flag names.
var shortNames = map[string]string{
	"bg": "background",
	"pt": "padding-top",
	"pl": "padding-left",
	"pr": "padding-right",
	"pb": "padding-bottom",
	"s":  "spacing",
}

// longName returns the canonical name for a flag.
func longName(name string) string {
	if long, ok := shortNames[name]; ok {
		return long
	}
	return name
}

// ///////////////////////////////////////////////
// Flag Set
// ///////////////////////////////////////////////

// newFlagSet registers every flag on a new set bound to o. Flags with an
// alias are registered under both names sharing one variable.
func newFlagSet(o *options, out io.Writer) *flag.FlagSet {
	def := config.DefaultConfig()

	fs := flag.NewFlagSet(paths.BinaryName, flag.ContinueOnError)
	fs.SetOutput(out)

	stringFlag(fs, &o.background, def.Layout.Background, "background color (#rgb or #rrggbb)", "bg", "background")
	intFlag(fs, &o.padding.Top, def.Layout.Padding.Top, "padding above the glyphs in pixels", "pt", "padding-top")
	intFlag(fs, &o.padding.Left, def.Layout.Padding.Left, "padding left of the first glyph in pixels", "pl", "padding-left")
	intFlag(fs, &o.padding.Right, def.Layout.Padding.Right, "padding right of the last glyph in pixels", "pr", "padding-right")
	intFlag(fs, &o.padding.Bottom, def.Layout.Padding.Bottom, "padding below the tallest glyph in pixels", "pb", "padding-bottom")
	intFlag(fs, &o.spacing, def.Layout.Spacing, "gap between adjacent glyphs in pixels", "s", "spacing")

	fs.StringVar(&o.configPath, "config", paths.ConfigFile, "TOML config file")
	fs.StringVar(&o.assetsDir, "assets-dir", def.Assets.Dir, "directory holding one image per character")
	fs.StringVar(&o.logLevel, "log-level", def.Log.Level, "log level (trace, debug, info, warn, error, fail)")
	fs.BoolVar(&o.watch, "watch", false, "re-render when the asset directory or config file changes")
	fs.BoolVar(&o.printConfig, "print-config", false, "print the default config and exit")
	fs.BoolVar(&o.version, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [flags] <colors-string> <output-path>\n\nflags:\n", paths.BinaryName)
		fs.PrintDefaults()
	}
	return fs
}

func stringFlag(fs *flag.FlagSet, p *string, value, usage string, names ...string) {
	for _, n := range names {
		fs.StringVar(p, n, value, usage)
	}
}

func intFlag(fs *flag.FlagSet, p *int, value int, usage string, names ...string) {
	for _, n := range names {
		fs.IntVar(p, n, value, usage)
	}
}

// printUsage writes the usage text to w.
func printUsage(w io.Writer) {
	newFlagSet(&options{}, w).Usage()
}

// ///////////////////////////////////////////////
// Parsing
// ///////////////////////////////////////////////

// parseArgs parses args, allowing flags before, between, and after the
// positional arguments. Everything after "--" is positional. Returns
// [flag.ErrHelp] for -h/--help and a *usageError for anything malformed.
func parseArgs(args []string) (*options, error) {
	o := &options{set: make(map[string]bool)}
	fs := newFlagSet(o, io.Discard)

	var positional []string
	for len(args) > 0 {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, &usageError{msg: err.Error()}
		}
		rest := fs.Args()
		if n := len(args) - len(rest); n > 0 && args[n-1] == "--" {
			positional = append(positional, rest...)
			break
		}
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}

	fs.Visit(func(f *flag.Flag) {
		o.set[longName(f.Name)] = true
	})

	if o.printConfig || o.version {
		return o, nil
	}
	if len(positional) != 2 {
		return nil, &usageError{msg: fmt.Sprintf("expected <colors-string> <output-path>, got %d arguments", len(positional))}
	}
	o.colors, o.output = positional[0], positional[1]
	return o, nil
}

// apply overrides cfg with every explicitly set flag.
func (o *options) apply(cfg *config.Config) {
	if o.set["background"] {
		cfg.Layout.Background = o.background
	}
	if o.set["padding-top"] {
		cfg.Layout.Padding.Top = o.padding.Top
	}
	if o.set["padding-left"] {
		cfg.Layout.Padding.Left = o.padding.Left
	}
	if o.set["padding-right"] {
		cfg.Layout.Padding.Right = o.padding.Right
	}
	if o.set["padding-bottom"] {
		cfg.Layout.Padding.Bottom = o.padding.Bottom
	}
	if o.set["spacing"] {
		cfg.Layout.Spacing = o.spacing
	}
	if o.set["assets-dir"] {
		cfg.Assets.Dir = o.assetsDir
	}
	if o.set["log-level"] {
		cfg.Log.Level = o.logLevel
	}
}
