// Package memory is an in-memory ActivityWriter for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	ports "premi/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []ports.ActivityRow
}

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, row ports.ActivityRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []ports.ActivityRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.ActivityRow(nil), s.rows...)
}
