package memory_test

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"linire-backend/internal/domain"
	"linire-backend/internal/repository/memory"
	"linire-backend/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock returns a clock that advances one minute per call
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func seed(t *testing.T, repo *memory.SubmissionRepository, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		id, err := repo.Create(context.Background(), &domain.Submission{
			FirstName: fmt.Sprintf("First%d", i),
			LastName:  "Banda",
			Email:     fmt.Sprintf("user%d@example.com", i),
			Phone:     "0977450621",
			Service:   "corporate",
			Message:   "I need legal help please",
			Consent:   true,
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestSubmissionRepository_Create(t *testing.T) {
	repo := memory.NewSubmissionRepositoryWithClock(steppingClock())

	sub := &domain.Submission{FirstName: "Jo", Status: domain.StatusArchived}
	id, err := repo.Create(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, domain.StatusNew, sub.Status, "store forces status=new")
	assert.False(t, sub.CreatedAt.IsZero())

	id2, err := repo.Create(context.Background(), &domain.Submission{FirstName: "Ann"})
	require.NoError(t, err)
	assert.Greater(t, id2, id)
}

func TestSubmissionRepository_Create_Concurrent(t *testing.T) {
	repo := memory.NewSubmissionRepository()

	var wg sync.WaitGroup
	ids := make(chan int64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.Create(context.Background(), &domain.Submission{FirstName: "Jo"})
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 50)
}

func TestSubmissionRepository_ListPage(t *testing.T) {
	repo := memory.NewSubmissionRepositoryWithClock(steppingClock())
	ids := seed(t, repo, 25)
	ctx := context.Background()

	first, err := repo.ListPage(ctx, domain.FilterAll, 1, 20)
	require.NoError(t, err)
	assert.Len(t, first, 20)
	assert.Equal(t, ids[24], first[0].ID, "newest first")
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i-1].CreatedAt.After(first[i].CreatedAt))
	}

	second, err := repo.ListPage(ctx, domain.FilterAll, 2, 20)
	require.NoError(t, err)
	assert.Len(t, second, 5)
	assert.Equal(t, ids[0], second[4].ID)

	beyond, err := repo.ListPage(ctx, domain.FilterAll, 3, 20)
	require.NoError(t, err)
	assert.NotNil(t, beyond)
	assert.Empty(t, beyond)

	for _, page := range []int{math.MaxInt, math.MaxInt / 10, math.MaxInt/20 + 1} {
		huge, err := repo.ListPage(ctx, domain.FilterAll, page, 20)
		require.NoError(t, err, "page %d", page)
		assert.Empty(t, huge, "page %d", page)
	}
}

func TestSubmissionRepository_CountsAddUp(t *testing.T) {
	repo := memory.NewSubmissionRepositoryWithClock(steppingClock())
	ids := seed(t, repo, 10)
	ctx := context.Background()

	require.NoError(t, repo.UpdateStatus(ctx, ids[0], domain.StatusRead))
	require.NoError(t, repo.UpdateStatus(ctx, ids[1], domain.StatusReplied))
	require.NoError(t, repo.UpdateStatus(ctx, ids[2], domain.StatusArchived))
	require.NoError(t, repo.UpdateStatus(ctx, ids[3], domain.StatusArchived))

	all, err := repo.CountByStatus(ctx, domain.FilterAll)
	require.NoError(t, err)

	var sum int64
	for _, s := range domain.AllStatuses {
		n, err := repo.CountByStatus(ctx, domain.StatusFilter(s))
		require.NoError(t, err)
		sum += n
	}
	assert.Equal(t, all, sum)

	stats, err := repo.AggregateCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SubmissionStats{Total: 10, New: 6, Read: 1, Replied: 1}, *stats)
}

func TestSubmissionRepository_UpdateStatus(t *testing.T) {
	repo := memory.NewSubmissionRepositoryWithClock(steppingClock())
	ids := seed(t, repo, 1)
	ctx := context.Background()

	t.Run("Should be idempotent", func(t *testing.T) {
		require.NoError(t, repo.UpdateStatus(ctx, ids[0], domain.StatusReplied))
		once, err := repo.GetByID(ctx, ids[0])
		require.NoError(t, err)

		require.NoError(t, repo.UpdateStatus(ctx, ids[0], domain.StatusReplied))
		twice, err := repo.GetByID(ctx, ids[0])
		require.NoError(t, err)

		assert.Equal(t, once, twice)
	})

	t.Run("Should not touch created_at", func(t *testing.T) {
		before, _ := repo.GetByID(ctx, ids[0])
		require.NoError(t, repo.UpdateStatus(ctx, ids[0], domain.StatusNew))
		after, _ := repo.GetByID(ctx, ids[0])
		assert.Equal(t, before.CreatedAt, after.CreatedAt)
	})

	t.Run("Should report unknown ids", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, 999, domain.StatusRead)
		assert.ErrorIs(t, err, domain.ErrSubmissionNotFound)
	})
}

func TestSubmissionRepository_SharedBehaviour(t *testing.T) {
	repotest.Run(t, func(t *testing.T) domain.SubmissionRepository {
		return memory.NewSubmissionRepositoryWithClock(steppingClock())
	})
}
