package worker

import "context"

// Handle tracks a worker running on its own goroutine. It satisfies
// registry.Handle.
type Handle struct {
	w      *Worker
	done   chan struct{}
	result Result
}

// Start runs w.Run(ctx) on a new goroutine and returns its handle.
func Start(ctx context.Context, w *Worker) *Handle {
	h := &Handle{w: w, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.result = w.Run(ctx)
	}()
	return h
}

// Done is closed when the worker has finished.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Alive reports whether the worker is still running.
func (h *Handle) Alive() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the worker finishes and returns its result.
func (h *Handle) Wait() Result {
	<-h.done
	return h.result
}

// Path returns the input path the worker was started for.
func (h *Handle) Path() string { return h.w.Path() }
