// Package repotest holds the behaviour checks every submission store must
// pass. The memory store runs them in unit tests; the SQL stores run them
// against real databases under the integration build tag.
package repotest

import (
	"context"
	"fmt"
	"math"
	"testing"

	"linire-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store for one subtest
type Factory func(t *testing.T) domain.SubmissionRepository

// Run executes the shared checks, calling newRepo once per subtest.
func Run(t *testing.T, newRepo Factory) {
	t.Run("create assigns id status and created_at", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		sub := newSubmission(0)
		sub.Status = domain.StatusArchived
		id, err := repo.Create(ctx, sub)
		require.NoError(t, err)
		assert.Positive(t, id)
		assert.Equal(t, id, sub.ID)
		assert.Equal(t, domain.StatusNew, sub.Status, "store forces status=new")
		assert.False(t, sub.CreatedAt.IsZero())

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "First0", got.FirstName)
		assert.Equal(t, "I need legal help &amp; advice", got.Message)
		assert.True(t, got.Consent)
		assert.Equal(t, domain.StatusNew, got.Status)
	})

	t.Run("count all equals the sum of per-status counts", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		ids := Seed(t, repo, 8)

		require.NoError(t, repo.UpdateStatus(ctx, ids[0], domain.StatusRead))
		require.NoError(t, repo.UpdateStatus(ctx, ids[1], domain.StatusReplied))
		require.NoError(t, repo.UpdateStatus(ctx, ids[2], domain.StatusArchived))
		require.NoError(t, repo.UpdateStatus(ctx, ids[3], domain.StatusArchived))

		all, err := repo.CountByStatus(ctx, domain.FilterAll)
		require.NoError(t, err)
		assert.Equal(t, int64(8), all)

		var sum int64
		for _, s := range domain.AllStatuses {
			n, err := repo.CountByStatus(ctx, domain.StatusFilter(s))
			require.NoError(t, err)
			sum += n
		}
		assert.Equal(t, all, sum)

		stats, err := repo.AggregateCounts(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.SubmissionStats{Total: 8, New: 4, Read: 1, Replied: 1}, *stats)
	})

	t.Run("aggregate counts on an empty store are zero", func(t *testing.T) {
		repo := newRepo(t)

		stats, err := repo.AggregateCounts(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.SubmissionStats{}, *stats)
	})

	t.Run("pages are newest first and past the end is empty", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		ids := Seed(t, repo, 5)

		first, err := repo.ListPage(ctx, domain.FilterAll, 1, 3)
		require.NoError(t, err)
		require.Len(t, first, 3)
		assert.Equal(t, ids[4], first[0].ID)

		second, err := repo.ListPage(ctx, domain.FilterAll, 2, 3)
		require.NoError(t, err)
		require.Len(t, second, 2)
		assert.Equal(t, ids[0], second[1].ID)
		AssertNewestFirst(t, append(first, second...))

		for _, page := range []int{3, 1000, math.MaxInt / 3, math.MaxInt} {
			beyond, err := repo.ListPage(ctx, domain.FilterAll, page, 3)
			require.NoError(t, err, "page %d", page)
			assert.NotNil(t, beyond, "page %d", page)
			assert.Empty(t, beyond, "page %d", page)
		}
	})

	t.Run("filters select by status", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		ids := Seed(t, repo, 3)
		require.NoError(t, repo.UpdateStatus(ctx, ids[1], domain.StatusReplied))

		replied, err := repo.ListPage(ctx, domain.StatusFilter(domain.StatusReplied), 1, 20)
		require.NoError(t, err)
		require.Len(t, replied, 1)
		assert.Equal(t, ids[1], replied[0].ID)
		assert.Equal(t, domain.StatusReplied, replied[0].Status)

		fresh, err := repo.ListAll(ctx, domain.StatusFilter(domain.StatusNew))
		require.NoError(t, err)
		require.Len(t, fresh, 2)
		assert.Equal(t, []int64{ids[2], ids[0]}, []int64{fresh[0].ID, fresh[1].ID})

		everything, err := repo.ListAll(ctx, domain.FilterAll)
		require.NoError(t, err)
		assert.Len(t, everything, 3)
		AssertNewestFirst(t, everything)
	})

	t.Run("update status is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		ids := Seed(t, repo, 1)

		require.NoError(t, repo.UpdateStatus(ctx, ids[0], domain.StatusRead))
		before, err := repo.GetByID(ctx, ids[0])
		require.NoError(t, err)

		require.NoError(t, repo.UpdateStatus(ctx, ids[0], domain.StatusRead), "same status again is not a miss")
		after, err := repo.GetByID(ctx, ids[0])
		require.NoError(t, err)

		assert.Equal(t, domain.StatusRead, after.Status)
		assert.Equal(t, before.Status, after.Status)
		assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		Seed(t, repo, 1)

		err := repo.UpdateStatus(ctx, 999999, domain.StatusRead)
		assert.ErrorIs(t, err, domain.ErrSubmissionNotFound)

		_, err = repo.GetByID(ctx, 999999)
		assert.ErrorIs(t, err, domain.ErrSubmissionNotFound)
	})
}

// Seed stores n submissions in order and returns their ids
func Seed(t *testing.T, repo domain.SubmissionRepository, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		id, err := repo.Create(context.Background(), newSubmission(i))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

// AssertNewestFirst checks created_at descending with id breaking ties
func AssertNewestFirst(t *testing.T, subs []domain.Submission) {
	t.Helper()
	for i := 1; i < len(subs); i++ {
		prev, cur := subs[i-1], subs[i]
		if prev.CreatedAt.Equal(cur.CreatedAt) {
			assert.Greater(t, prev.ID, cur.ID, "tie at index %d", i)
			continue
		}
		assert.True(t, prev.CreatedAt.After(cur.CreatedAt), "order at index %d", i)
	}
}

func newSubmission(i int) *domain.Submission {
	return &domain.Submission{
		FirstName: fmt.Sprintf("First%d", i),
		LastName:  "Banda",
		Email:     fmt.Sprintf("user%d@example.com", i),
		Phone:     "0977450621",
		Service:   "corporate",
		Message:   "I need legal help &amp; advice",
		Consent:   true,
	}
}
