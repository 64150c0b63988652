package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SubmissionStatus is the review state of a contact submission
type SubmissionStatus string

const (
	StatusNew      SubmissionStatus = "new"
	StatusRead     SubmissionStatus = "read"
	StatusReplied  SubmissionStatus = "replied"
	StatusArchived SubmissionStatus = "archived"
)

// AllStatuses lists every status in display order
var AllStatuses = []SubmissionStatus{StatusNew, StatusRead, StatusReplied, StatusArchived}

// Valid reports whether s is one of the four known statuses
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusNew, StatusRead, StatusReplied, StatusArchived:
		return true
	}
	return false
}

// ParseStatus converts a raw form value into a SubmissionStatus.
// Unknown values are rejected with ErrInvalidStatus.
func ParseStatus(raw string) (SubmissionStatus, error) {
	s := SubmissionStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// StatusFilter restricts listing/count queries. The zero value and
// FilterAll both mean "no filter".
type StatusFilter string

const FilterAll StatusFilter = "all"

// ParseStatusFilter maps the ?status= query value to a filter.
// Anything that is not a known status falls back to FilterAll.
func ParseStatusFilter(raw string) StatusFilter {
	s := SubmissionStatus(strings.ToLower(strings.TrimSpace(raw)))
	if s.Valid() {
		return StatusFilter(s)
	}
	return FilterAll
}

// IsAll reports whether the filter matches every submission
func (f StatusFilter) IsAll() bool {
	return f == "" || f == FilterAll
}

// Status returns the status the filter selects; only meaningful when !IsAll()
func (f StatusFilter) Status() SubmissionStatus {
	return SubmissionStatus(f)
}

func (f StatusFilter) String() string {
	if f.IsAll() {
		return string(FilterAll)
	}
	return string(f)
}

// Submission is a stored contact form entry
type Submission struct {
	ID        int64            `json:"id" db:"id"`
	FirstName string           `json:"first_name" db:"first_name"`
	LastName  string           `json:"last_name" db:"last_name"`
	Email     string           `json:"email" db:"email"`
	Phone     string           `json:"phone" db:"phone"`
	Service   string           `json:"service" db:"service"`
	Message   string           `json:"message" db:"message"`
	Consent   bool             `json:"consent" db:"consent"`
	Status    SubmissionStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// FullName joins first and last name for display
func (s Submission) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// ServiceLabel returns the human label of the submission's service
func (s Submission) ServiceLabel() string {
	return ServiceLabel(s.Service)
}

var serviceLabels = map[string]string{
	"corporate":    "Corporate & Business Advisory",
	"commercial":   "Commercial Law",
	"construction": "Construction Law",
	"governance":   "Corporate Governance",
	"regulatory":   "Regulatory & Compliance",
	"banking":      "Banking & Finance Law",
	"property":     "Property Law & Conveyancing",
	"employment":   "Employment & Labour Law",
	"dispute":      "Dispute Resolution",
	"other":        "Other",
}

// ServiceLabel maps a service code to its display label.
// Unknown codes are returned verbatim.
func ServiceLabel(code string) string {
	if label, ok := serviceLabels[code]; ok {
		return label
	}
	return code
}

// SubmissionStats feeds the dashboard cards. Archived is not shown there.
type SubmissionStats struct {
	Total   int64 `json:"total"`
	New     int64 `json:"new"`
	Read    int64 `json:"read"`
	Replied int64 `json:"replied"`
}

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidStatus      = errors.New("invalid submission status")
)

// StorageError wraps failures of the underlying persistence medium
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err unless it is nil or already a domain sentinel
func NewStorageError(op string, err error) error {
	if err == nil || errors.Is(err, ErrSubmissionNotFound) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// SubmissionRepository is the persistence contract for submissions
type SubmissionRepository interface {
	// Create assigns id, created_at and status=new, and returns the new id
	Create(ctx context.Context, sub *Submission) (int64, error)
	CountByStatus(ctx context.Context, filter StatusFilter) (int64, error)
	// ListPage returns at most pageSize rows, newest first. A page past the
	// end yields an empty slice.
	ListPage(ctx context.Context, filter StatusFilter, page, pageSize int) ([]Submission, error)
	// ListAll returns every matching row, newest first, from one read
	ListAll(ctx context.Context, filter StatusFilter) ([]Submission, error)
	UpdateStatus(ctx context.Context, id int64, status SubmissionStatus) error
	AggregateCounts(ctx context.Context) (*SubmissionStats, error)
	GetByID(ctx context.Context, id int64) (*Submission, error)
}
