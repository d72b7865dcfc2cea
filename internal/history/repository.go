package history

import "context"

// ListOptions contains options for listing solve records.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains the results of listing solve records.
type ListResult struct {
	Items      []*SolveRecord
	NextCursor string
}

// Repository defines the interface for solve history persistence.
type Repository interface {
	// Get retrieves a solve record by ID.
	Get(ctx context.Context, id string) (*SolveRecord, error)

	// List retrieves solve records, newest first, with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Create stores a new solve record.
	Create(ctx context.Context, record *SolveRecord) error
}
