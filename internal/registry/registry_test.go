package registry

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeHandle finishes when finish is called.
type fakeHandle struct {
	done chan struct{}
	once sync.Once
}

func newFake() *fakeHandle { return &fakeHandle{done: make(chan struct{})} }

func (f *fakeHandle) Done() <-chan struct{} { return f.done }
func (f *fakeHandle) finish()               { f.once.Do(func() { close(f.done) }) }

func TestTryClaim_Dedup(t *testing.T) {
	r := New()
	h := newFake()
	if !r.TryClaim("/in/a.mkv", func() Handle { return h }) {
		t.Fatal("first claim refused")
	}
	called := false
	if r.TryClaim("/in/a.mkv", func() Handle { called = true; return newFake() }) {
		t.Error("second claim of a live path accepted")
	}
	if called {
		t.Error("start called for an already claimed path")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestTryClaim_NilHandle(t *testing.T) {
	r := New()
	if r.TryClaim("/in/a.mkv", func() Handle { return nil }) {
		t.Error("nil handle registered")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestReapFinished(t *testing.T) {
	r := New()
	a, b := newFake(), newFake()
	r.TryClaim("/in/a.mkv", func() Handle { return a })
	r.TryClaim("/in/b.mkv", func() Handle { return b })

	if got := r.ReapFinished(); len(got) != 0 {
		t.Errorf("ReapFinished() = %v before any finished", got)
	}

	a.finish()
	if got := r.ReapFinished(); !reflect.DeepEqual(got, []string{"/in/a.mkv"}) {
		t.Errorf("ReapFinished() = %v, want [/in/a.mkv]", got)
	}
	// Reaped path may be claimed again; live one may not.
	if !r.TryClaim("/in/a.mkv", func() Handle { return newFake() }) {
		t.Error("reaped path could not be re-claimed")
	}
	if r.TryClaim("/in/b.mkv", func() Handle { return newFake() }) {
		t.Error("live path re-claimed")
	}
}

func TestRelease(t *testing.T) {
	r := New()
	r.TryClaim("/in/a.mkv", func() Handle { return newFake() })
	r.Release("/in/a.mkv")
	if r.Len() != 0 {
		t.Errorf("Len() = %d after Release", r.Len())
	}
}

func TestDispatch(t *testing.T) {
	r := New()
	handles := map[string]*fakeHandle{}
	start := func(p string) Handle {
		h := newFake()
		handles[p] = h
		return h
	}

	_, started := r.Dispatch([]string{"/in/a.mkv", "/in/b.mkv", "/in/a.mkv"}, start)
	if !reflect.DeepEqual(started, []string{"/in/a.mkv", "/in/b.mkv"}) {
		t.Errorf("started = %v", started)
	}

	handles["/in/b.mkv"].finish()
	reaped, started := r.Dispatch([]string{"/in/a.mkv", "/in/b.mkv", "/in/c.mkv"}, start)
	if !reflect.DeepEqual(reaped, []string{"/in/b.mkv"}) {
		t.Errorf("reaped = %v, want [/in/b.mkv]", reaped)
	}
	if !reflect.DeepEqual(started, []string{"/in/b.mkv", "/in/c.mkv"}) {
		t.Errorf("started = %v, want b re-claimed and c new", started)
	}
	if !reflect.DeepEqual(r.Paths(), []string{"/in/a.mkv", "/in/b.mkv", "/in/c.mkv"}) {
		t.Errorf("Paths() = %v", r.Paths())
	}
}

func TestConcurrentClaims_AtMostOnePerPath(t *testing.T) {
	r := New()
	const paths = 8
	var live [paths]int32
	var violations int32
	var wg sync.WaitGroup

	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; round < 200; round++ {
				list := make([]string, paths)
				for i := range list {
					list[i] = fmt.Sprintf("/in/%d.mkv", i)
				}
				r.Dispatch(list, func(p string) Handle {
					var i int
					fmt.Sscanf(p, "/in/%d.mkv", &i)
					if atomic.AddInt32(&live[i], 1) > 1 {
						atomic.AddInt32(&violations, 1)
					}
					h := newFake()
					go func() {
						time.Sleep(time.Duration(round%3) * time.Microsecond)
						// Leave the live set before signalling completion.
						atomic.AddInt32(&live[i], -1)
						h.finish()
					}()
					return h
				})
			}
		}()
	}
	wg.Wait()
	r.Wait()

	if violations != 0 {
		t.Errorf("%d concurrent duplicate workers observed", violations)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after Wait", r.Len())
	}
}

func TestWait_JoinsAll(t *testing.T) {
	r := New()
	hs := []*fakeHandle{newFake(), newFake(), newFake()}
	for i, h := range hs {
		h := h
		r.TryClaim(fmt.Sprintf("/in/%d.mkv", i), func() Handle { return h })
	}

	waited := make(chan struct{})
	go func() {
		r.Wait()
		close(waited)
	}()

	for _, h := range hs[:2] {
		h.finish()
	}
	select {
	case <-waited:
		t.Fatal("Wait returned while a worker was still running")
	case <-time.After(50 * time.Millisecond):
	}

	hs[2].finish()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after all workers finished")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after Wait", r.Len())
	}
}
