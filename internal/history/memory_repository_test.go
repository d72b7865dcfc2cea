package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository_CreateAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	record := &SolveRecord{
		ID:            "rec-1",
		Profile:       "driving-car",
		LocationCount: 12,
		SolverCode:    0,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, repo.Create(ctx, record))

	got, err := repo.Get(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, 12, got.LocationCount)

	// The stored record must be a copy, not an alias.
	record.LocationCount = 99
	got, err = repo.Get(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, 12, got.LocationCount)
}

func TestInMemoryRepository_GetNotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestInMemoryRepository_ListNewestFirstWithPagination(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &SolveRecord{
			ID:        fmt.Sprintf("rec-%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, err := repo.List(ctx, ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "rec-4", page.Items[0].ID)
	assert.Equal(t, "rec-3", page.Items[1].ID)
	require.NotEmpty(t, page.NextCursor)

	page, err = repo.List(ctx, ListOptions{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "rec-2", page.Items[0].ID)
	assert.Equal(t, "rec-1", page.Items[1].ID)
}
