// Package memory keeps submissions in process memory. It backs local
// development (DB_DRIVER=memory) and the end-to-end tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"linire-backend/internal/domain"
)

// SubmissionRepository is a mutex-guarded in-memory domain.SubmissionRepository
type SubmissionRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]domain.Submission
	now    func() time.Time
}

// NewSubmissionRepository returns an empty store using the wall clock.
func NewSubmissionRepository() *SubmissionRepository {
	return NewSubmissionRepositoryWithClock(func() time.Time { return time.Now().UTC() })
}

// NewSubmissionRepositoryWithClock lets tests control created_at.
func NewSubmissionRepositoryWithClock(now func() time.Time) *SubmissionRepository {
	return &SubmissionRepository{
		rows: make(map[int64]domain.Submission),
		now:  now,
	}
}

var _ domain.SubmissionRepository = (*SubmissionRepository)(nil)

func (r *SubmissionRepository) Create(ctx context.Context, sub *domain.Submission) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.NewStorageError("create submission", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	sub.ID = r.nextID
	sub.Status = domain.StatusNew
	sub.CreatedAt = r.now()
	r.rows[sub.ID] = *sub
	return sub.ID, nil
}

func (r *SubmissionRepository) CountByStatus(ctx context.Context, filter domain.StatusFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, s := range r.rows {
		if matches(s, filter) {
			n++
		}
	}
	return n, nil
}

func (r *SubmissionRepository) ListPage(ctx context.Context, filter domain.StatusFilter, page, pageSize int) ([]domain.Submission, error) {
	if page < 1 {
		page = 1
	}

	matched := r.newestFirst(filter)
	if pageSize <= 0 || page > (len(matched)+pageSize-1)/pageSize {
		return []domain.Submission{}, nil
	}
	offset := (page - 1) * pageSize
	end := offset + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *SubmissionRepository) ListAll(ctx context.Context, filter domain.StatusFilter) ([]domain.Submission, error) {
	return r.newestFirst(filter), nil
}

// newestFirst snapshots the rows matching filter ordered by created_at
// then id, both descending
func (r *SubmissionRepository) newestFirst(filter domain.StatusFilter) []domain.Submission {
	r.mu.RLock()
	matched := make([]domain.Submission, 0, len(r.rows))
	for _, s := range r.rows {
		if matches(s, filter) {
			matched = append(matched, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}

func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id int64, status domain.SubmissionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.rows[id]
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	s.Status = status
	r.rows[id] = s
	return nil
}

func (r *SubmissionRepository) AggregateCounts(ctx context.Context) (*domain.SubmissionStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &domain.SubmissionStats{Total: int64(len(r.rows))}
	for _, s := range r.rows {
		switch s.Status {
		case domain.StatusNew:
			stats.New++
		case domain.StatusRead:
			stats.Read++
		case domain.StatusReplied:
			stats.Replied++
		}
	}
	return stats, nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrSubmissionNotFound
	}
	return &s, nil
}

func matches(s domain.Submission, filter domain.StatusFilter) bool {
	return filter.IsAll() || s.Status == filter.Status()
}
