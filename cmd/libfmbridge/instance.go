// Command libfmbridge builds the bridge as a C shared library:
//
//	go build -buildmode=c-shared -o libfmbridge.so ./cmd/libfmbridge
//
// The library reads its configuration from the file named by FMBRIDGE_CONFIG
// on first use and falls back to the echo engine when the variable is unset.
package main

import (
	"context"
	"iter"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"fmbridge/internal/bridge"
	"fmbridge/internal/config"
	"fmbridge/internal/engine"
)

const configEnv = "FMBRIDGE_CONFIG"

var (
	instOnce sync.Once
	inst     *bridge.Bridge
)

// instance returns the process-wide bridge, building it on first use.
func instance() *bridge.Bridge {
	instOnce.Do(func() { inst = loadBridge(os.Getenv(configEnv)) })
	return inst
}

// loadBridge builds a bridge from the config at path. A broken configuration
// yields a bridge whose engine reports itself unavailable, so callers see it
// through fm_check_availability and onError instead of a crash.
func loadBridge(path string) *bridge.Bridge {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("lib", "fmbridge").Logger()
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("load config")
		return bridge.NewWithConfig(bridge.Config{Engine: brokenEngine{reason: "configuration error: " + err.Error()}, Logger: &log})
	}
	if lvl, perr := zerolog.ParseLevel(cfg.LogLevel); perr == nil {
		log = log.Level(lvl)
	}
	eng, err := engine.FromConfig(cfg)
	if err != nil {
		log.Error().Err(err).Str("engine", cfg.Engine).Msg("build engine")
		return bridge.NewWithConfig(bridge.Config{Engine: brokenEngine{reason: err.Error()}, Logger: &log})
	}
	return bridge.NewWithConfig(bridge.Config{Engine: eng, Logger: &log})
}

// brokenEngine stands in for an engine that could not be built.
type brokenEngine struct{ reason string }

func (brokenEngine) Name() string       { return "unconfigured" }
func (b brokenEngine) Available() error { return engine.ErrDependencyUnavailable(b.reason) }

func (b brokenEngine) Snapshots(context.Context, string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) { yield("", b.Available()) }
}

// cText makes s safe to hand to C as a NUL-terminated UTF-8 string.
// Embedded NULs would silently truncate the copy, so they become U+FFFD.
func cText(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	return strings.ReplaceAll(s, "\x00", "\uFFFD")
}

func main() {}
