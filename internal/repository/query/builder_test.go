package query_test

import (
	"math"
	"testing"

	"linire-backend/internal/domain"
	"linire-backend/internal/repository/query"

	"github.com/stretchr/testify/assert"
)

func TestBuilder(t *testing.T) {
	t.Run("Should skip WHERE for the all filter", func(t *testing.T) {
		q := query.New(query.Dollar, "SELECT COUNT(*) FROM contact_submissions").
			WhereStatus(domain.FilterAll)
		assert.Equal(t, "SELECT COUNT(*) FROM contact_submissions", q.SQL())
		assert.Empty(t, q.Args())
	})

	t.Run("Should number postgres placeholders in order", func(t *testing.T) {
		q := query.New(query.Dollar, "SELECT id FROM contact_submissions").
			WhereStatus(domain.StatusFilter("replied")).
			Append("ORDER BY created_at DESC, id DESC").
			Page(3, 20)
		assert.Equal(t,
			"SELECT id FROM contact_submissions WHERE status = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3",
			q.SQL())
		assert.Equal(t, []any{"replied", 20, 40}, q.Args())
	})

	t.Run("Should use question marks for mysql", func(t *testing.T) {
		q := query.New(query.Question, "SELECT id FROM contact_submissions").
			WhereStatus(domain.StatusFilter("new")).
			Where("id > ?", int64(5)).
			Page(0, 10)
		assert.Equal(t,
			"SELECT id FROM contact_submissions WHERE status = ? AND id > ? LIMIT ? OFFSET ?",
			q.SQL())
		assert.Equal(t, []any{"new", int64(5), 10, 0}, q.Args())
	})

	t.Run("Should keep the offset positive for huge page numbers", func(t *testing.T) {
		for _, page := range []int{math.MaxInt, math.MaxInt / 10, math.MaxInt/20 + 1} {
			q := query.New(query.Dollar, "SELECT id FROM contact_submissions").Page(page, 20)
			args := q.Args()
			offset, ok := args[1].(int)
			if assert.True(t, ok) {
				assert.GreaterOrEqual(t, offset, 0, "page %d", page)
			}
		}
	})
}
