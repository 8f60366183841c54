package memory

import (
	"context"
	"fmt"
	"sync"

	"carlog/internal/core"
	ports "carlog/internal/sheets"
)

var _ ports.RecordSink = (*Store)(nil)

// Store is an in-process sheet used when no spreadsheet is configured and in
// tests.
type Store struct {
	mu    sync.Mutex
	order []string
	rows  map[string][]any
}

func New() *Store {
	return &Store{rows: make(map[string][]any)}
}

// ExportRecord stores the record's row and returns a synthetic row reference.
func (s *Store) ExportRecord(_ context.Context, car core.CarProfile, rec core.MaintenanceRecord) (string, error) {
	if rec.ID == "" {
		return "", fmt.Errorf("export record: missing id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[rec.ID]; !ok {
		s.order = append(s.order, rec.ID)
	}
	s.rows[rec.ID] = ports.Row(car, rec)
	return fmt.Sprintf("mem:%s", rec.ID), nil
}

func (s *Store) RemoveRecord(_ context.Context, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[recordID]; !ok {
		return nil
	}
	delete(s.rows, recordID)
	for i, id := range s.order {
		if id == recordID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Rows returns a copy of the exported rows in first-export order.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, append([]any(nil), s.rows[id]...))
	}
	return out
}
