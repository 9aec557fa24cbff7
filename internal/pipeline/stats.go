package pipeline

import (
	"errors"
	"sync"

	"github.com/backmassage/muxwatch/internal/worker"
)

// RunStats tracks aggregate counters and byte totals across a watch run.
type RunStats struct {
	Started          int
	Succeeded        int
	Failed           int
	Deferred         int // Output was busy; retried on a later cycle.
	Skipped          int // Already converted according to the ledger.
	TotalInputBytes  int64
	TotalOutputBytes int64
}

// SpaceSaved returns the aggregate byte difference between inputs and outputs.
// Positive means outputs are smaller; negative means they grew.
func (s *RunStats) SpaceSaved() int64 {
	return s.TotalInputBytes - s.TotalOutputBytes
}

// add folds one worker result into the totals. Byte totals only count
// successful conversions.
func (s *RunStats) add(r worker.Result) {
	switch {
	case r.State == worker.Done:
		s.Succeeded++
		s.TotalInputBytes += r.InputSize
		s.TotalOutputBytes += r.OutputSize
	case errors.Is(r.Err, worker.ErrOutputBusy):
		s.Deferred++
	default:
		s.Failed++
	}
}

// tally is RunStats shared between the poll loop and worker goroutines.
type tally struct {
	mu sync.Mutex
	s  RunStats
}

func (t *tally) update(fn func(s *RunStats)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.s)
}

func (t *tally) snapshot() RunStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s
}
