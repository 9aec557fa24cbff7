package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/muxwatch/internal/config"
	"github.com/backmassage/muxwatch/internal/display"
	"github.com/backmassage/muxwatch/internal/ledger"
	"github.com/backmassage/muxwatch/internal/logging"
	"github.com/backmassage/muxwatch/internal/registry"
	"github.com/backmassage/muxwatch/internal/worker"
)

// History looks up the last recorded outcome for an input; see ledger.Store.
type History interface {
	Get(path string) (*ledger.Record, error)
}

// Poller is the top-level watch loop.
type Poller struct {
	Config   *config.Config
	Registry *registry.Registry
	Deps     worker.Deps // Template for every worker; OnDone is chained.
	History  History     // Optional.
	Log      *logging.Logger
}

// Run polls until ctx is canceled. Each cycle lists the input directory,
// reaps finished workers and starts a worker for every listed file that
// has none, all under one registry critical section. Between cycles it
// sleeps for the poll interval or until ctx is canceled.
//
// Run returns only after every worker it started has finished.
func (p *Poller) Run(ctx context.Context) RunStats {
	log := p.Log
	if log == nil {
		log = logging.Discard()
	}
	var stats tally

	deps := p.Deps
	chained := deps.OnDone
	deps.OnDone = func(r worker.Result) {
		stats.update(func(s *RunStats) { s.add(r) })
		if chained != nil {
			chained(r)
		}
	}
	start := func(path string) registry.Handle {
		return worker.Start(ctx, worker.New(deps, path))
	}

	skipped := make(map[string]bool)
	log.Info("Watching %s every %s (extensions: %s)",
		p.Config.InputDir, p.Config.PollInterval, strings.Join(p.Config.Extensions, ", "))

	for {
		files, err := List(p.Config.InputDir, p.Config.Extensions)
		if err != nil {
			log.Error("Cannot list %s: %v", p.Config.InputDir, err)
			files = nil
		}
		files = p.filterConverted(files, skipped, &stats, log)

		reaped, started := p.Registry.Dispatch(files, start)
		for _, path := range reaped {
			log.Debug("Reaped worker for %s", filepath.Base(path))
		}
		if n := len(started); n > 0 {
			stats.update(func(s *RunStats) { s.Started += n })
			log.Info("Started %d new conversion(s), %d running", n, p.Registry.Len())
		}

		if !sleep(ctx, p.Config.PollInterval) {
			break
		}
	}

	if running := p.Registry.Paths(); len(running) > 0 {
		log.Warn("Shutting down, waiting for %d running conversion(s)", len(running))
		for _, path := range running {
			log.Info("  waiting for %s", filepath.Base(path))
		}
	}
	p.Registry.Wait()

	final := stats.snapshot()
	logSummary(log, &final)
	return final
}

// filterConverted drops inputs that the ledger says were already converted
// and have not changed since. Only applies when the completion action is
// none for the active profile; other actions move the input away.
func (p *Poller) filterConverted(files []string, reported map[string]bool, stats *tally, log *logging.Logger) []string {
	if p.History == nil || p.Config.Action(p.Deps.Profile) != config.CompleteNone {
		return files
	}
	kept := files[:0]
	for _, path := range files {
		if p.alreadyConverted(path, log) {
			if !reported[path] {
				reported[path] = true
				stats.update(func(s *RunStats) { s.Skipped++ })
				log.Debug("Skip (already converted): %s", filepath.Base(path))
			}
			continue
		}
		delete(reported, path)
		kept = append(kept, path)
	}
	return kept
}

func (p *Poller) alreadyConverted(path string, log *logging.Logger) bool {
	rec, err := p.History.Get(path)
	if err != nil {
		log.Warn("Ledger lookup failed for %s: %v", filepath.Base(path), err)
		return false
	}
	if rec == nil || rec.State != worker.Done.String() {
		return false
	}
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return rec.Unchanged(fi.Size(), fi.ModTime())
}

// sleep waits for d or until ctx is canceled. It reports whether the loop
// should keep going.
func sleep(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func logSummary(log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d converted, %d failed, %d deferred, %d skipped (%d started)",
		stats.Succeeded, stats.Failed, stats.Deferred, stats.Skipped, stats.Started)
	if stats.Succeeded == 0 {
		return
	}

	saved := stats.SpaceSaved()
	if saved >= 0 {
		log.Success("  Total space saved: %s (input %s -> output %s)",
			display.FormatBytes(saved),
			display.FormatBytes(stats.TotalInputBytes),
			display.FormatBytes(stats.TotalOutputBytes))
	} else {
		log.Warn("  Total space saved: %s (overall output is larger)",
			display.FormatBytesWithSign(saved))
	}
}
