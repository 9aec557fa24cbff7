// Command muxwatch watches an input directory and converts every new media
// file to mp4 with ffmpeg, using the streams and parameters chosen by the
// selected profile.
//
// It loads the profile file and flags, validates paths, and then either
// runs system diagnostics (--check), prints the ledger (--history), or
// polls until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/backmassage/muxwatch/internal/check"
	"github.com/backmassage/muxwatch/internal/config"
	"github.com/backmassage/muxwatch/internal/display"
	"github.com/backmassage/muxwatch/internal/ffmpeg"
	"github.com/backmassage/muxwatch/internal/ledger"
	"github.com/backmassage/muxwatch/internal/logging"
	"github.com/backmassage/muxwatch/internal/naming"
	"github.com/backmassage/muxwatch/internal/pipeline"
	"github.com/backmassage/muxwatch/internal/probe"
	"github.com/backmassage/muxwatch/internal/registry"
	"github.com/backmassage/muxwatch/internal/supervisor"
	"github.com/backmassage/muxwatch/internal/worker"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, os.Args[1:], version); err != nil {
		fmt.Fprintf(os.Stderr, "muxwatch: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "muxwatch: %v\n", err)
		return 1
	}
	profile := cfg.Profile()

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "muxwatch: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Utility modes.
	if cfg.HistoryOnly {
		return showHistory(&cfg, log)
	}

	display.PrintBanner(os.Stdout, version)

	if cfg.CheckOnly {
		if !check.RunCheck(profile, log) {
			return 1
		}
		return 0
	}

	// Resolve and validate paths: input must exist, output is created if
	// needed, and output must not be inside input.
	inputAbs, err := absPath(cfg.InputDir)
	if err != nil {
		log.Error("Input not found: %s", cfg.InputDir)
		return 1
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Error("Cannot create output directory: %s", cfg.OutputDir)
		return 1
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		log.Error("Cannot resolve output path: %s", cfg.OutputDir)
		return 1
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		log.Error("%v", err)
		log.Error("Choose an output path outside: %s", cfg.InputDir)
		return 1
	}

	log.Info("=== muxwatch v%s (%s) ===", version, commit)
	log.Info("In:      %s", cfg.InputDir)
	log.Info("Out:     %s", cfg.OutputDir)
	log.Info("Profile: %s (subtitles %s, on completion %s)", profile.Name, profile.Subtitles, cfg.Action(profile))

	// Fail fast if ffmpeg/ffprobe are unavailable.
	if err := check.CheckDeps(profile); err != nil {
		log.Error("%v", err)
		return 1
	}

	// Phase 3: Collaborators.
	deps := worker.Deps{
		Config:  &cfg,
		Profile: profile,
		Prober:  probe.Prober{Executable: ffmpeg.ProbeExecutable(profile)},
		Runner:  supervisor.New(),
		Log:     log,
		Claims:  naming.NewOutputClaims(),
	}
	poller := &pipeline.Poller{
		Config:   &cfg,
		Registry: registry.New(),
		Log:      log,
	}
	if cfg.StateDir != "" {
		store, err := ledger.Open(cfg.StateDir)
		if err != nil {
			log.Error("Cannot open ledger: %v", err)
			return 1
		}
		defer store.Close()
		deps.Ledger = store
		poller.History = store
		log.Info("Ledger:  %s", cfg.StateDir)
	}
	poller.Deps = deps

	// Phase 4: Signal handling. The first SIGINT/SIGTERM cancels the
	// context; running conversions are stopped and waited for. A second
	// signal falls through to the default handler.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		signal.Stop(sigCh)
		log.Warn("Received interrupt, stopping running conversions (again to force quit)")
		cancel()
	}()

	// Phase 5: Poll until interrupted.
	poller.Run(ctx)
	return 0
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func showHistory(cfg *config.Config, log *logging.Logger) int {
	if _, err := os.Stat(cfg.StateDir); errors.Is(err, os.ErrNotExist) {
		log.Warn("No ledger at %s", cfg.StateDir)
		return 0
	}
	store, err := ledger.Open(cfg.StateDir)
	if err != nil {
		log.Error("Cannot open ledger: %v", err)
		return 1
	}
	defer store.Close()

	records, err := store.List()
	if err != nil {
		log.Error("Cannot read ledger: %v", err)
		return 1
	}
	printHistory(os.Stdout, records)
	return 0
}
