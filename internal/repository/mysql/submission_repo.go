// Package mysql stores submissions in the contact_submissions table of the
// MySQL schema the site originally ran on.
package mysql

import (
	"context"
	"database/sql"
	"errors"

	"linire-backend/internal/domain"
	"linire-backend/internal/repository/query"

	"github.com/jmoiron/sqlx"
)

const submissionColumns = `id, first_name, last_name, email, phone, service, message, consent, status, created_at`

// SubmissionRepository is a sqlx-backed domain.SubmissionRepository
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

var _ domain.SubmissionRepository = (*SubmissionRepository)(nil)

// withTx runs fn inside a transaction that is rolled back unless fn succeeds.
func (r *SubmissionRepository) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	t, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() { _ = t.Rollback() }()
	if err := fn(t); err != nil {
		return err
	}

	return t.Commit()
}

// Create inserts the row and reads back the id, status and created_at the
// database assigned.
func (r *SubmissionRepository) Create(ctx context.Context, sub *domain.Submission) (int64, error) {
	const insert = `
		INSERT INTO contact_submissions (first_name, last_name, email, phone, service, message, consent, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, insert,
			sub.FirstName, sub.LastName, sub.Email, sub.Phone, sub.Service, sub.Message, sub.Consent,
			string(domain.StatusNew),
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		return tx.GetContext(ctx, sub, `SELECT `+submissionColumns+` FROM contact_submissions WHERE id = ?`, id)
	})
	if err != nil {
		return 0, domain.NewStorageError("create submission", err)
	}
	return sub.ID, nil
}

func (r *SubmissionRepository) CountByStatus(ctx context.Context, filter domain.StatusFilter) (int64, error) {
	q := query.New(query.Question, `SELECT COUNT(*) FROM contact_submissions`).WhereStatus(filter)

	var total int64
	if err := r.db.GetContext(ctx, &total, q.SQL(), q.Args()...); err != nil {
		return 0, domain.NewStorageError("count submissions", err)
	}
	return total, nil
}

func (r *SubmissionRepository) ListPage(ctx context.Context, filter domain.StatusFilter, page, pageSize int) ([]domain.Submission, error) {
	q := query.New(query.Question, `SELECT `+submissionColumns+` FROM contact_submissions`).
		WhereStatus(filter).
		Append(`ORDER BY created_at DESC, id DESC`).
		Page(page, pageSize)

	return r.list(ctx, q)
}

func (r *SubmissionRepository) ListAll(ctx context.Context, filter domain.StatusFilter) ([]domain.Submission, error) {
	q := query.New(query.Question, `SELECT `+submissionColumns+` FROM contact_submissions`).
		WhereStatus(filter).
		Append(`ORDER BY created_at DESC, id DESC`)

	return r.list(ctx, q)
}

func (r *SubmissionRepository) list(ctx context.Context, q *query.Builder) ([]domain.Submission, error) {
	subs := []domain.Submission{}
	if err := r.db.SelectContext(ctx, &subs, q.SQL(), q.Args()...); err != nil {
		return nil, domain.NewStorageError("list submissions", err)
	}
	return subs, nil
}

// UpdateStatus overwrites the status unconditionally. MySQL reports zero
// affected rows when the value is unchanged, so a miss is confirmed with a
// lookup before returning ErrSubmissionNotFound.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id int64, status domain.SubmissionStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE contact_submissions SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return domain.NewStorageError("update submission status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.NewStorageError("update submission status", err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM contact_submissions WHERE id = ?)`, id); err != nil {
		return domain.NewStorageError("update submission status", err)
	}
	if !exists {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

func (r *SubmissionRepository) AggregateCounts(ctx context.Context) (*domain.SubmissionStats, error) {
	const q = `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(status = ?), 0) AS new,
			COALESCE(SUM(status = ?), 0) AS ` + "`read`" + `,
			COALESCE(SUM(status = ?), 0) AS replied
		FROM contact_submissions
	`
	var stats domain.SubmissionStats
	row := r.db.QueryRowxContext(ctx, q, string(domain.StatusNew), string(domain.StatusRead), string(domain.StatusReplied))
	if err := row.Scan(&stats.Total, &stats.New, &stats.Read, &stats.Replied); err != nil {
		return nil, domain.NewStorageError("aggregate submission counts", err)
	}
	return &stats, nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	var s domain.Submission
	err := r.db.GetContext(ctx, &s, `SELECT `+submissionColumns+` FROM contact_submissions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, domain.NewStorageError("get submission", err)
	}
	return &s, nil
}
