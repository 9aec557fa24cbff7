// Package registry tracks the worker running for each input path. It is
// the only place that decides whether a path may get a new worker: a path
// is claimed at most once until its worker has finished and been reaped.
package registry

import (
	"sort"
	"sync"
)

// Handle is the lifecycle view of a running worker.
type Handle interface {
	// Done is closed when the worker has finished.
	Done() <-chan struct{}
}

// Registry maps input paths to live worker handles. All methods are
// goroutine-safe; each one is a single critical section.
type Registry struct {
	mu      sync.Mutex
	handles map[string]Handle
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

// TryClaim registers the worker returned by start under path. start is
// called, under the lock, only when path is free; TryClaim returns false
// without calling it otherwise.
func (r *Registry) TryClaim(path string, start func() Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claimLocked(path, start)
}

// Release forgets path regardless of its worker's state.
func (r *Registry) Release(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, path)
}

// ReapFinished removes every entry whose worker is done and returns the
// reaped paths in sorted order.
func (r *Registry) ReapFinished() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reapLocked()
}

// Dispatch runs one poll cycle's bookkeeping in a single critical section:
// reap finished workers, then claim and start a worker for every path in
// paths that is not already registered. It returns the reaped paths and the
// newly started ones.
func (r *Registry) Dispatch(paths []string, start func(path string) Handle) (reaped, started []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reaped = r.reapLocked()
	for _, p := range paths {
		if r.claimLocked(p, func() Handle { return start(p) }) {
			started = append(started, p)
		}
	}
	return reaped, started
}

// Len returns the number of registered paths.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Paths returns the registered paths in sorted order.
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make([]string, 0, len(r.handles))
	for p := range r.handles {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Wait blocks until every registered worker is done, releasing each entry
// as its worker finishes. The lock is not held while waiting.
func (r *Registry) Wait() {
	for {
		r.mu.Lock()
		var path string
		var h Handle
		for p, ph := range r.handles {
			path, h = p, ph
			break
		}
		r.mu.Unlock()

		if h == nil {
			return
		}
		<-h.Done()

		r.mu.Lock()
		if cur, ok := r.handles[path]; ok && isDone(cur) {
			delete(r.handles, path)
		}
		r.mu.Unlock()
	}
}

func (r *Registry) claimLocked(path string, start func() Handle) bool {
	if _, ok := r.handles[path]; ok {
		return false
	}
	h := start()
	if h == nil {
		return false
	}
	r.handles[path] = h
	return true
}

func (r *Registry) reapLocked() []string {
	var reaped []string
	for p, h := range r.handles {
		if isDone(h) {
			delete(r.handles, p)
			reaped = append(reaped, p)
		}
	}
	sort.Strings(reaped)
	return reaped
}

func isDone(h Handle) bool {
	select {
	case <-h.Done():
		return true
	default:
		return false
	}
}
