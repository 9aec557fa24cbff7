// Package ledger persists the outcome of every conversion in a pebble
// database, keyed by absolute input path. It backs the -history command and
// lets the poller recognise inputs that were already converted and left in
// place.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/pebble"
)

// Record is the last known outcome for one input file.
type Record struct {
	Path       string    `json:"path"`
	RunID      string    `json:"run_id"`
	State      string    `json:"state"`
	Error      string    `json:"error,omitempty"`
	ExitCode   int       `json:"exit_code"`
	Size       int64     `json:"size"`
	ModTime    time.Time `json:"mod_time"`
	Output     string    `json:"output,omitempty"`
	OutputSize int64     `json:"output_size,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Unchanged reports whether the record describes an input with the given
// size and modification time.
func (r *Record) Unchanged(size int64, modTime time.Time) bool {
	return r.Size == size && r.ModTime.Equal(modTime)
}

// Store is an open ledger. Methods are safe for concurrent use.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) the ledger under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Put stores r, replacing any previous record for r.Path.
func (s *Store) Put(r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger record: %w", err)
	}
	return s.db.Set([]byte(r.Path), data, pebble.Sync)
}

// Get returns the record for path, or nil when none exists.
func (s *Store) Get(path string) (*Record, error) {
	data, closer, err := s.db.Get([]byte(path))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ledger record: %w", err)
	}
	defer closer.Close()

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger record: %w", err)
	}
	return &r, nil
}

// List returns every record in key (path) order. Undecodable entries are
// skipped.
func (s *Store) List() ([]Record, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	var records []Record
	for iter.First(); iter.Valid(); iter.Next() {
		var r Record
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iteration error: %w", err)
	}
	return records, nil
}
