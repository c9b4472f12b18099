package store

import (
	"context"
	"sync"
	"time"
)

// MemoryJournal keeps settlement rows in process. Demo mode and tests
// use it in place of Postgres; it satisfies the same surface.
type MemoryJournal struct {
	mu   sync.Mutex
	rows []Settlement
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Append(_ context.Context, rec Settlement) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	j.rows = append(j.rows, rec)
	return nil
}

func (j *MemoryJournal) List(_ context.Context, status string, unreconciledOnly bool, limit, offset int) ([]Settlement, error) {
	if limit <= 0 {
		limit = 50
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	matched := make([]Settlement, 0, len(j.rows))
	// Newest first, matching the Postgres ordering.
	for i := len(j.rows) - 1; i >= 0; i-- {
		rec := j.rows[i]
		if status != "" && rec.Status != status {
			continue
		}
		if unreconciledOnly && rec.Reconciled {
			continue
		}
		matched = append(matched, rec)
	}
	if offset >= len(matched) {
		return []Settlement{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (j *MemoryJournal) Get(_ context.Context, id string) (*Settlement, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.rows {
		if j.rows[i].ID == id {
			rec := j.rows[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (j *MemoryJournal) MarkReconciled(_ context.Context, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := range j.rows {
		if j.rows[i].ID == id {
			j.rows[i].Reconciled = true
			return nil
		}
	}
	return ErrNotFound
}
