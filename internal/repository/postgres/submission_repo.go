package postgres

import (
	"context"
	"errors"

	"linire-backend/internal/domain"
	"linire-backend/internal/repository/query"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const submissionColumns = `id, first_name, last_name, email, phone, service, message, consent, status, created_at`

type submissionRepo struct {
	db *pgxpool.Pool
}

func NewSubmissionRepository(db *pgxpool.Pool) domain.SubmissionRepository {
	return &submissionRepo{db: db}
}

// Create inserts a submission and fills in the id, status and created_at
// assigned by the database
func (r *submissionRepo) Create(ctx context.Context, sub *domain.Submission) (int64, error) {
	query := `INSERT INTO contact_submissions (first_name, last_name, email, phone, service, message, consent, status)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, status, created_at`
	err := r.db.QueryRow(ctx, query,
		sub.FirstName, sub.LastName, sub.Email, sub.Phone, sub.Service, sub.Message, sub.Consent,
		string(domain.StatusNew),
	).Scan(&sub.ID, &sub.Status, &sub.CreatedAt)
	if err != nil {
		return 0, domain.NewStorageError("create submission", err)
	}
	return sub.ID, nil
}

func (r *submissionRepo) CountByStatus(ctx context.Context, filter domain.StatusFilter) (int64, error) {
	q := query.New(query.Dollar, `SELECT COUNT(*) FROM contact_submissions`).WhereStatus(filter)

	var total int64
	if err := r.db.QueryRow(ctx, q.SQL(), q.Args()...).Scan(&total); err != nil {
		return 0, domain.NewStorageError("count submissions", err)
	}
	return total, nil
}

func (r *submissionRepo) ListPage(ctx context.Context, filter domain.StatusFilter, page, pageSize int) ([]domain.Submission, error) {
	q := query.New(query.Dollar, `SELECT `+submissionColumns+` FROM contact_submissions`).
		WhereStatus(filter).
		Append(`ORDER BY created_at DESC, id DESC`).
		Page(page, pageSize)

	return r.list(ctx, q)
}

func (r *submissionRepo) ListAll(ctx context.Context, filter domain.StatusFilter) ([]domain.Submission, error) {
	q := query.New(query.Dollar, `SELECT `+submissionColumns+` FROM contact_submissions`).
		WhereStatus(filter).
		Append(`ORDER BY created_at DESC, id DESC`)

	return r.list(ctx, q)
}

func (r *submissionRepo) list(ctx context.Context, q *query.Builder) ([]domain.Submission, error) {
	rows, err := r.db.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, domain.NewStorageError("list submissions", err)
	}
	defer rows.Close()

	subs := []domain.Submission{}
	for rows.Next() {
		var s domain.Submission
		if err := rows.Scan(
			&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Service,
			&s.Message, &s.Consent, &s.Status, &s.CreatedAt,
		); err != nil {
			return nil, domain.NewStorageError("scan submission", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list submissions", err)
	}
	return subs, nil
}

// UpdateStatus overwrites the status unconditionally (last writer wins)
func (r *submissionRepo) UpdateStatus(ctx context.Context, id int64, status domain.SubmissionStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE contact_submissions SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return domain.NewStorageError("update submission status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

// AggregateCounts fetches the dashboard counters in one round trip
func (r *submissionRepo) AggregateCounts(ctx context.Context) (*domain.SubmissionStats, error) {
	query := `SELECT
                COUNT(*),
                COUNT(*) FILTER (WHERE status = $1),
                COUNT(*) FILTER (WHERE status = $2),
                COUNT(*) FILTER (WHERE status = $3)
              FROM contact_submissions`

	var stats domain.SubmissionStats
	err := r.db.QueryRow(ctx, query, string(domain.StatusNew), string(domain.StatusRead), string(domain.StatusReplied)).
		Scan(&stats.Total, &stats.New, &stats.Read, &stats.Replied)
	if err != nil {
		return nil, domain.NewStorageError("aggregate submission counts", err)
	}
	return &stats, nil
}

func (r *submissionRepo) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM contact_submissions WHERE id = $1`

	var s domain.Submission
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Service,
		&s.Message, &s.Consent, &s.Status, &s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, domain.NewStorageError("get submission", err)
	}
	return &s, nil
}
