package domain

import "context"

const DefaultAdminPageSize = 20

// AdminPrincipal identifies the admin behind a request
type AdminPrincipal struct {
	Username string `json:"username"`
}

// PaginatedResult for list responses
type PaginatedResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// SubmissionListing is one page of the admin table plus the global stats
type SubmissionListing struct {
	PaginatedResult[Submission]
	Filter StatusFilter    `json:"filter"`
	Stats  SubmissionStats `json:"stats"`
}

// StatusUpdateResult carries the flash message shown after the redirect
type StatusUpdateResult struct {
	Success      bool   `json:"success"`
	FlashMessage string `json:"flashMessage"`
}

const (
	MsgStatusUpdated      = "Status updated successfully"
	MsgStatusUpdateFailed = "Failed to update status"
)

// SubmissionExport is a rendered spreadsheet of submissions
type SubmissionExport struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AdminUsecase defines the admin review workflow
type AdminUsecase interface {
	ListSubmissions(ctx context.Context, filter StatusFilter, page, pageSize int) (*SubmissionListing, error)
	UpdateStatus(ctx context.Context, id int64, action string) (*StatusUpdateResult, error)
	GetSubmission(ctx context.Context, id int64) (*Submission, error)
	ExportSubmissions(ctx context.Context, filter StatusFilter) (*SubmissionExport, error)
}
