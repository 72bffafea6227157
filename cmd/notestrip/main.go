// Package main implements notestrip, which composes per-character glyph
// images into a single horizontal strip image.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
	"unicode/utf8"

	rootpkg "tools.zach/dev/notestrip"
	"tools.zach/dev/notestrip/internal/assets"
	"tools.zach/dev/notestrip/internal/config"
	"tools.zach/dev/notestrip/internal/hexcolor"
	"tools.zach/dev/notestrip/internal/logger"
	"tools.zach/dev/notestrip/internal/paths"
	"tools.zach/dev/notestrip/internal/strip"
	"tools.zach/dev/notestrip/internal/watch"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.2.0"
//
// When ldflags are not set, resolveVersion reads the VCS info that Go embeds
// automatically.
var version = "dev"

// resolveVersion returns the build version string. If [version] was set via
// ldflags it is returned as-is; otherwise the embedded VCS revision and dirty
// state are used to construct a "dev+<hash>" tag.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// Exit Codes
// ///////////////////////////////////////////////

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

// app carries the process environment so run can be driven from tests.
type app struct {
	stdout io.Writer
	stderr io.Writer
	// wd resolves relative paths (config, assets, output, log file).
	wd paths.WorkDir
	// signals is called once watch mode starts and returns the channel that
	// ends it.
	signals func() <-chan os.Signal
	// onRender, when set, is called after every render with its result.
	onRender func(err error)
}

func main() {
	root, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: working directory: %v\n", err)
		os.Exit(exitFailure)
	}
	a := &app{
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		wd:      paths.WorkDir{Root: root},
		signals: signalChannel,
	}
	os.Exit(a.run(os.Args[1:]))
}

// run executes one invocation and returns the process exit code.
func (a *app) run(args []string) int {
	slog.SetDefault(slog.New(logger.NewHandler(a.stderr, logger.LevelInfo)))

	o, err := parseArgs(args)
	if errors.Is(err, flag.ErrHelp) {
		printUsage(a.stdout)
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		printUsage(a.stderr)
		return exitUsage
	}

	if o.version {
		fmt.Fprintf(a.stdout, "%s %s\n", paths.BinaryName, resolveVersion())
		return exitOK
	}
	if o.printConfig {
		if _, err := a.stdout.Write(rootpkg.DefaultConfigTOML); err != nil {
			return exitFailure
		}
		return exitOK
	}

	cfgPath := a.wd.Resolve(o.configPath)
	cfg, err := loadConfig(o, cfgPath)
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return exitFailure
	}

	logFile := ""
	if cfg.Log.File != "" {
		logFile = a.wd.Resolve(cfg.Log.File)
	}
	log, logCloser := logger.NewLogger(a.stderr, logger.Options{
		Level:     logger.ParseLevel(cfg.Log.Level),
		File:      logFile,
		MaxSizeMB: cfg.Log.MaxSizeMB,
	})
	defer logCloser.Close()
	slog.SetDefault(log)

	slog.Debug("notestrip starting", "version", resolveVersion(), "config", cfgPath)

	if !o.watch {
		err := a.render(o, cfg)
		a.rendered(err)
		if err != nil {
			logger.Fail(slog.Default(), "render failed", "error", err)
			fmt.Fprintf(a.stderr, "error: %v\n", err)
			return exitFailure
		}
		return exitOK
	}

	if err := a.checkWatchOutput(o, cfg); err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return exitFailure
	}
	dir := a.wd.Resolve(cfg.Assets.Dir)
	w, err := watch.New(dir, cfgPath)
	if err != nil {
		slog.Error("failed to create watcher", "error", err)
		return exitFailure
	}
	err = a.render(o, cfg)
	a.rendered(err)
	if err != nil {
		slog.Error("render failed", "error", err)
		fmt.Fprintf(a.stderr, "error: %v\n", err)
	}
	return a.watchLoop(o, cfgPath, dir, w)
}

// rendered passes err to the onRender hook, if any.
func (a *app) rendered(err error) {
	if a.onRender != nil {
		a.onRender(err)
	}
}

// loadConfig reads the config file at path and applies explicitly set flags
// on top. A missing file is only an error when --config was given.
func loadConfig(o *options, path string) (*config.Config, error) {
	if o.set["config"] {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid option: %w", err)
	}
	return cfg, nil
}

// ///////////////////////////////////////////////
// Rendering
// ///////////////////////////////////////////////

// render indexes the asset directory and writes the strip for o.colors.
func (a *app) render(o *options, cfg *config.Config) error {
	layout, err := cfg.StripLayout()
	if err != nil {
		return err
	}

	dir := a.wd.Resolve(cfg.Assets.Dir)
	idx, err := assets.Scan(dir, cfg.Assets.Ignore)
	if err != nil {
		return err
	}
	slog.Debug("indexed glyph assets", "dir", idx.Dir(), "files", idx.Len())
	slog.Debug("layout",
		"background", hexcolor.Format(layout.Background),
		"spacing", layout.Spacing,
		"padding", fmt.Sprintf("%d/%d/%d/%d", layout.Padding.Top, layout.Padding.Left, layout.Padding.Right, layout.Padding.Bottom))

	out := a.wd.Resolve(o.output)
	start := time.Now()
	canvas, err := strip.Render(o.colors, idx, layout, out)
	if err != nil {
		return err
	}

	b := canvas.Bounds()
	slog.Info("wrote strip",
		"path", out,
		"glyphs", utf8.RuneCountInString(o.colors),
		"width", b.Dx(),
		"height", b.Dy(),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// ///////////////////////////////////////////////
// Watch Mode
// ///////////////////////////////////////////////

// checkWatchOutput rejects an output path inside the asset directory, since
// every write would trigger another render.
func (a *app) checkWatchOutput(o *options, cfg *config.Config) error {
	dir := filepath.Clean(a.wd.Resolve(cfg.Assets.Dir))
	if filepath.Dir(a.wd.Resolve(o.output)) == dir {
		return fmt.Errorf("output %s must not be inside the watched asset directory %s", o.output, dir)
	}
	return nil
}

// watchLoop re-renders on every change w reports until a shutdown signal
// arrives. The caller creates w before the first render and the loop owns it
// from then on. Failures are logged and the loop keeps waiting.
func (a *app) watchLoop(o *options, cfgPath, dir string, w *watch.Watcher) int {
	defer func() { w.Close() }()

	if w.Polling() {
		slog.Info("using polling mode for file watching")
	}
	slog.Info("watching for changes", "dir", dir, "config", cfgPath)

	stop := a.signals()
	for {
		select {
		case sig := <-stop:
			slog.Info("received signal, shutting down", "signal", sig.String())
			return exitOK
		case <-w.Events():
			next, err := loadConfig(o, cfgPath)
			if err != nil {
				slog.Error("config reload failed", "error", err)
				continue
			}
			if err := a.checkWatchOutput(o, next); err != nil {
				slog.Error("config reload rejected", "error", err)
				continue
			}

			if nextDir := a.wd.Resolve(next.Assets.Dir); nextDir != dir {
				nw, err := watch.New(nextDir, cfgPath)
				if err != nil {
					slog.Error("failed to watch new asset directory", "dir", nextDir, "error", err)
					continue
				}
				w.Close()
				w, dir = nw, nextDir
				slog.Info("asset directory changed", "dir", dir)
			}

			err = a.render(o, next)
			a.rendered(err)
			if err != nil {
				slog.Error("render failed", "error", err)
			}
		}
	}
}
