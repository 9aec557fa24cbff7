// Package supervisor runs one external process to completion while
// streaming its stderr line by line, and stops it on cancellation with a
// SIGTERM followed, after a grace period, by SIGKILL.
//
// A non-zero exit status is returned as data; only failures to start or
// observe the process, and cancellation, are reported as errors.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultGrace is the wait between SIGTERM and SIGKILL.
const DefaultGrace = 10 * time.Second

// drainLinger bounds how long stderr is still read after the child has
// exited. Descendants that inherited the pipe can otherwise hold it open.
const drainLinger = 2 * time.Second

// ErrCanceled is returned when ctx was canceled before the process exited
// on its own.
var ErrCanceled = errors.New("process canceled")

// StartError reports that the executable could not be launched.
type StartError struct {
	Executable string
	Err        error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Executable, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// Supervisor runs child processes. The zero value uses [DefaultGrace].
type Supervisor struct {
	Grace time.Duration
}

// New returns a Supervisor with the default grace period.
func New() *Supervisor {
	return &Supervisor{Grace: DefaultGrace}
}

func (s *Supervisor) grace() time.Duration {
	if s == nil || s.Grace <= 0 {
		return DefaultGrace
	}
	return s.Grace
}

// Run starts executable with args, forwards every stderr line to sink in
// emission order, and returns the exit code. Stdin and stdout are bound to
// the null device.
//
// When ctx is canceled the child gets SIGTERM, then SIGKILL if it is still
// alive after the grace period; Run then returns the final exit code
// (usually -1) together with ErrCanceled. The stderr reader is always
// joined before Run returns.
func (s *Supervisor) Run(ctx context.Context, executable string, args []string, sink func(string)) (int, error) {
	if sink == nil {
		sink = func(string) {}
	}

	r, w, err := os.Pipe()
	if err != nil {
		return -1, &StartError{Executable: executable, Err: err}
	}

	cmd := exec.Command(executable, args...)
	cmd.Stderr = w
	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return -1, &StartError{Executable: executable, Err: err}
	}
	// The child holds its own copy; ours must go so EOF arrives at exit.
	w.Close()

	var g errgroup.Group
	g.Go(func() error { return drain(r, sink) })

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	canceled, waitErr := s.await(ctx, cmd.Process, exited)

	linger := time.AfterFunc(drainLinger, func() { r.Close() })
	drainErr := g.Wait()
	linger.Stop()
	r.Close()

	code := exitCode(cmd, waitErr)
	if canceled {
		return code, ErrCanceled
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return code, fmt.Errorf("wait %s: %w", executable, waitErr)
	}
	if drainErr != nil {
		return code, fmt.Errorf("read %s stderr: %w", executable, drainErr)
	}
	return code, nil
}

// await waits for the process to exit or for ctx to be canceled. An exit
// that is already available wins over a cancellation seen at the same time,
// so a finished run is never reported as canceled.
func (s *Supervisor) await(ctx context.Context, p *os.Process, exited <-chan error) (bool, error) {
	select {
	case err := <-exited:
		return false, err
	case <-ctx.Done():
	}
	select {
	case err := <-exited:
		return false, err
	default:
	}
	return true, s.terminate(p, exited)
}

// terminate asks the process to stop, escalating to a kill once the grace
// period runs out. It returns the result of Wait.
func (s *Supervisor) terminate(p *os.Process, exited <-chan error) error {
	// Signal fails on platforms without SIGTERM; the kill below still runs.
	_ = p.Signal(syscall.SIGTERM)

	t := time.NewTimer(s.grace())
	defer t.Stop()
	select {
	case err := <-exited:
		return err
	case <-t.C:
	}

	_ = p.Kill()
	return <-exited
}

func exitCode(cmd *exec.Cmd, waitErr error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
