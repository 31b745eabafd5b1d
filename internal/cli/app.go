// Package cli implements the fmbridge command line: availability checks,
// blocking and streaming generation in the terminal, and the HTTP server.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"fmbridge/internal/bridge"
	"fmbridge/internal/config"
	"fmbridge/internal/engine"
)

// Options are the persistent flags shared by every subcommand.
type Options struct {
	ConfigPath string
	Engine     string
	LogLevel   string
	NoColor    bool
}

// app is the state built once flags are parsed.
type app struct {
	opts   Options
	cfg    config.Config
	log    zerolog.Logger
	bridge *bridge.Bridge
	out    io.Writer
	errOut io.Writer
}

// newEngine is swapped in tests.
var newEngine = engine.FromConfig

func (a *app) init() error {
	cfg, err := config.LoadOrDefault(a.opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if a.opts.Engine != "" {
		cfg.Engine = a.opts.Engine
		cfg.ApplyDefaults()
	}
	if a.opts.LogLevel != "" {
		cfg.LogLevel = a.opts.LogLevel
	}
	a.cfg = cfg
	a.log = newLogger(a.errOut, cfg.LogLevel)
	if a.opts.NoColor {
		color.NoColor = true
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	a.bridge = bridge.NewWithConfig(bridge.Config{Engine: eng, Logger: &a.log})
	a.log.Debug().Str("engine", eng.Name()).Msg("engine ready")
	return nil
}

func (a *app) close() {
	if a.bridge == nil {
		return
	}
	if c, ok := a.bridge.Engine().(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.Warn().Err(err).Msg("engine close")
		}
	}
}

// newLogger returns a console logger at level (debug|info|warn|error).
func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(lvl).With().Timestamp().Logger()
}

// Run executes the CLI with args and returns the command error, if any.
func Run(ctx context.Context, args []string, out, errOut io.Writer) error {
	a := &app{out: out, errOut: errOut}
	root := buildRootCmd(a)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	defer a.close()
	return root.ExecuteContext(ctx)
}

// Main is the process entry point used by cmd/fmbridge.
func Main(ctx context.Context) int {
	if err := Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
