package history

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and deployments without a database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*SolveRecord
}

// NewInMemoryRepository creates a new in-memory solve history repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[string]*SolveRecord),
	}
}

// Get retrieves a solve record by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*SolveRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	// Return a copy
	cpy := *rec
	return &cpy, nil
}

// List retrieves solve records, newest first, with pagination.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*SolveRecord
	for _, rec := range r.records {
		cpy := *rec
		records = append(records, &cpy)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if opts.Cursor != "" {
		for i, rec := range records {
			if rec.ID == opts.Cursor {
				records = records[i+1:]
				break
			}
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{
		Items: records,
	}

	if len(records) > limit {
		result.Items = records[:limit]
		result.NextCursor = records[limit-1].ID
	}

	return result, nil
}

// Create stores a new solve record.
func (r *InMemoryRepository) Create(_ context.Context, record *SolveRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *record
	r.records[record.ID] = &cpy
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
