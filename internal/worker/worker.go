// Package worker converts one input file: probe, choose streams, build the
// ffmpeg arguments, run ffmpeg into a temporary file under the supervisor,
// then move the result into place and apply the completion action.
//
// Every failure is contained in the returned [Result]; nothing a single
// file does can stop the poller or other workers.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/muxwatch/internal/config"
	"github.com/backmassage/muxwatch/internal/display"
	"github.com/backmassage/muxwatch/internal/ffmpeg"
	"github.com/backmassage/muxwatch/internal/ledger"
	"github.com/backmassage/muxwatch/internal/logging"
	"github.com/backmassage/muxwatch/internal/naming"
	"github.com/backmassage/muxwatch/internal/planner"
	"github.com/backmassage/muxwatch/internal/probe"
	"github.com/backmassage/muxwatch/internal/supervisor"
)

// Prober inspects an input file.
type Prober interface {
	Probe(ctx context.Context, path string) (*probe.Inventory, error)
}

// Runner runs a process to completion; see supervisor.Supervisor.
type Runner interface {
	Run(ctx context.Context, executable string, args []string, sink func(string)) (int, error)
}

// Recorder persists outcomes; see ledger.Store.
type Recorder interface {
	Put(r ledger.Record) error
}

// Deps are the collaborators shared by every worker.
type Deps struct {
	Config  *config.Config
	Profile *config.Profile
	Prober  Prober
	Runner  Runner
	Log     *logging.Logger

	Ledger Recorder             // Optional.
	Claims *naming.OutputClaims // Optional.
	OnDone func(Result)         // Optional; called once with the final result.
}

// Result is the outcome of one worker run.
type Result struct {
	Path       string
	Output     string
	RunID      string
	State      State // Done or Failed.
	Err        error // Nil when State is Done.
	ExitCode   int   // -1 when ffmpeg never ran to completion.
	InputSize  int64
	OutputSize int64
	Started    time.Time
	Finished   time.Time
}

// stderrTail is how many ffmpeg stderr lines are kept for Classify.
const stderrTail = 20

// Worker converts a single input path. A Worker is used once.
type Worker struct {
	deps  Deps
	path  string
	runID string
	log   *logging.Logger
	state State
}

// New prepares a worker for path. Each worker gets its own run ID, carried
// on every log line and in the ledger.
func New(deps Deps, path string) *Worker {
	runID := uuid.NewString()
	log := deps.Log
	if log == nil {
		log = logging.Discard()
	}
	return &Worker{
		deps:  deps,
		path:  path,
		runID: runID,
		log:   log.With("file", path).With("run", runID[:8]),
	}
}

// Path returns the input path.
func (w *Worker) Path() string { return w.path }

// Run executes the state machine to completion. Cancellation of ctx stops
// a running ffmpeg, but once ffmpeg has exited successfully Finalizing
// always runs.
func (w *Worker) Run(ctx context.Context) (res Result) {
	res = Result{
		Path:     w.path,
		RunID:    w.runID,
		ExitCode: -1,
		Started:  time.Now(),
	}
	var modTime time.Time
	if fi, err := os.Stat(w.path); err == nil {
		res.InputSize, modTime = fi.Size(), fi.ModTime()
	}

	p := w.deps.Profile
	output := naming.OutputPath(w.path, w.deps.Config.OutputDir, ffmpeg.OutputFormat)
	tmp := naming.TempPath(output)
	res.Output = output

	defer func() {
		res.Finished = time.Now()
		w.record(&res, modTime)
		if w.deps.OnDone != nil {
			w.deps.OnDone(res)
		}
	}()

	if claims := w.deps.Claims; claims != nil {
		if ok, owner := claims.Claim(w.path, output); !ok {
			w.log.Warn("Output %s is being written for %s; retrying next cycle", filepath.Base(output), owner)
			res.State, res.Err = Failed, ErrOutputBusy
			return res
		}
		defer claims.Release(w.path, output)
	}
	// Never leave a partial file behind, whatever happened below.
	defer removeTemp(tmp, w.log)

	w.log.Info("Start converting")

	// --- Probing ---
	w.enter(Probing)
	inv, err := w.deps.Prober.Probe(ctx, w.path)
	if err != nil {
		return w.fail(&res, &ProbeError{Err: err})
	}
	w.log.Debug("Streams: %s", inv.Summary())
	sel, err := planner.Select(p, inv)
	if err != nil {
		return w.fail(&res, &ProbeError{Err: err})
	}
	w.log.Info("Selected %s", sel)
	if sel.Subtitle != nil && sel.Subtitle.IsBitmap && p.Subtitles != config.SubtitleNone {
		w.log.Warn("Subtitle %s is a bitmap format; subtitle mode %s may not handle it", sel.Subtitle, p.Subtitles)
	}

	// --- BuildingArgs ---
	w.enter(BuildingArgs)
	args := ffmpeg.Build(p, sel, w.path, tmp)
	exe := ffmpeg.Executable(p)
	w.log.Debug("Executing %s %s", exe, strings.Join(args, " "))

	// --- Encoding ---
	w.enter(Encoding)
	if err := ctx.Err(); err != nil {
		return w.fail(&res, &EncodeError{ExitCode: -1, Err: supervisor.ErrCanceled})
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return w.fail(&res, &EncodeError{ExitCode: -1, Err: err})
	}
	removeTemp(tmp, w.log)

	tail := make([]string, 0, stderrTail)
	forward := w.log.Sink(filepath.Base(exe))
	sink := func(line string) {
		if len(tail) == stderrTail {
			tail = append(tail[:0], tail[1:]...)
		}
		tail = append(tail, line)
		forward(line)
	}
	code, err := w.deps.Runner.Run(ctx, exe, args, sink)
	res.ExitCode = code
	if err != nil || code != 0 {
		return w.fail(&res, &EncodeError{ExitCode: code, Reason: ffmpeg.Classify(tail), Err: err})
	}

	// --- Finalizing ---
	w.enter(Finalizing)
	size, err := w.finalize(tmp, output)
	if err != nil {
		return w.fail(&res, &FinalizeError{Err: err})
	}
	res.OutputSize = size

	w.enter(Done)
	res.State = Done
	w.log.Success("Done converting in %s (%s -> %s)", display.FormatDuration(time.Since(res.Started)),
		display.FormatBytes(res.InputSize), display.FormatBytes(size))
	return res
}

// finalize moves the temporary output into place and applies the
// completion action. It does not observe cancellation.
func (w *Worker) finalize(tmp, output string) (int64, error) {
	if err := os.Rename(tmp, output); err != nil {
		return 0, fmt.Errorf("move output into place: %w", err)
	}
	var size int64
	if fi, err := os.Stat(output); err == nil {
		size = fi.Size()
	}

	switch action := w.deps.Config.Action(w.deps.Profile); action {
	case config.CompleteDelete:
		if err := os.Remove(w.path); err != nil {
			return size, fmt.Errorf("delete input: %w", err)
		}
		w.log.Info("Deleted input")
	case config.CompleteRename:
		done := naming.DonePath(w.path)
		if err := os.Rename(w.path, done); err != nil {
			return size, fmt.Errorf("rename input: %w", err)
		}
		w.log.Info("Renamed input to %s", filepath.Base(done))
	case config.CompleteNone:
	}
	return size, nil
}

func (w *Worker) enter(s State) {
	w.state = s
	w.log.Info("-> %s", s)
}

func (w *Worker) fail(res *Result, err error) Result {
	from := w.state
	w.state = Failed
	res.State, res.Err = Failed, err
	if errors.Is(err, supervisor.ErrCanceled) {
		w.log.Warn("-> Failed in %s: %v", from, err)
	} else {
		w.log.Error("-> Failed in %s: %v", from, err)
	}
	return *res
}

func (w *Worker) record(res *Result, modTime time.Time) {
	if w.deps.Ledger == nil || errors.Is(res.Err, ErrOutputBusy) {
		return
	}
	r := ledger.Record{
		Path:       res.Path,
		RunID:      res.RunID,
		State:      res.State.String(),
		ExitCode:   res.ExitCode,
		Size:       res.InputSize,
		ModTime:    modTime,
		Output:     res.Output,
		OutputSize: res.OutputSize,
		StartedAt:  res.Started,
		FinishedAt: res.Finished,
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
	if err := w.deps.Ledger.Put(r); err != nil {
		w.log.Warn("Could not write ledger record: %v", err)
	}
}

func removeTemp(tmp string, log *logging.Logger) {
	if err := os.Remove(tmp); err == nil {
		log.Debug("Removed temporary output %s", filepath.Base(tmp))
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Warn("Could not remove temporary output: %v", err)
	}
}
