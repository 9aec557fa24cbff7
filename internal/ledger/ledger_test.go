package ledger

import (
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTemp(t)
	mod := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := Record{
		Path:     "/media/in/movie.mkv",
		RunID:    "7c1f",
		State:    "Done",
		Size:     1024,
		ModTime:  mod,
		Output:   "/media/out/movie.mp4",
		ExitCode: 0,
	}
	if err := s.Put(r); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(r.Path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.State != "Done" || got.Output != r.Output {
		t.Fatalf("Get() = %+v", got)
	}
	if !got.Unchanged(1024, mod) {
		t.Error("Unchanged(same) = false")
	}
	if got.Unchanged(1024, mod.Add(time.Second)) || got.Unchanged(2048, mod) {
		t.Error("Unchanged(modified) = true")
	}
}

func TestGet_Missing(t *testing.T) {
	s := openTemp(t)
	got, err := s.Get("/nope.mkv")
	if err != nil || got != nil {
		t.Errorf("Get(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestPut_Replaces(t *testing.T) {
	s := openTemp(t)
	_ = s.Put(Record{Path: "/in/a.mkv", State: "Failed", ExitCode: 1})
	_ = s.Put(Record{Path: "/in/a.mkv", State: "Done"})
	got, _ := s.Get("/in/a.mkv")
	if got == nil || got.State != "Done" || got.ExitCode != 0 {
		t.Errorf("Get() = %+v, want latest record", got)
	}
}

func TestList(t *testing.T) {
	s := openTemp(t)
	for _, p := range []string{"/in/c.mkv", "/in/a.mkv", "/in/b.mkv"} {
		if err := s.Put(Record{Path: p, State: "Done"}); err != nil {
			t.Fatal(err)
		}
	}
	records, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 || records[0].Path != "/in/a.mkv" || records[2].Path != "/in/c.mkv" {
		t.Errorf("List() = %+v", records)
	}
}

func TestReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Put(Record{Path: "/in/a.mkv", State: "Done"})
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if got, _ := s.Get("/in/a.mkv"); got == nil {
		t.Error("record lost across reopen")
	}
}
