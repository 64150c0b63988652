package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"linire-backend/internal/domain"
	"linire-backend/pkg/apperror"
	"linire-backend/pkg/metrics"
	"linire-backend/pkg/security"
)

type adminUsecase struct {
	repo     domain.SubmissionRepository
	audit    *security.AuditLogger
	log      *slog.Logger
	pageSize int
}

// NewAdminUsecase builds the admin review workflow. pageSize <= 0 uses
// domain.DefaultAdminPageSize.
func NewAdminUsecase(repo domain.SubmissionRepository, audit *security.AuditLogger, log *slog.Logger, pageSize int) domain.AdminUsecase {
	if pageSize <= 0 {
		pageSize = domain.DefaultAdminPageSize
	}
	if audit == nil {
		audit = security.NopAuditLogger()
	}
	if log == nil {
		log = slog.Default()
	}
	return &adminUsecase{repo: repo, audit: audit, log: log, pageSize: pageSize}
}

// ListSubmissions returns one page of submissions matching filter together
// with the dashboard counts, which always cover every submission.
func (u *adminUsecase) ListSubmissions(ctx context.Context, filter domain.StatusFilter, page, pageSize int) (*domain.SubmissionListing, error) {
	if _, err := u.requireAdmin(ctx); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = u.pageSize
	}

	total, err := u.repo.CountByStatus(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to count submissions: %w", err))
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	// Pages past the end are empty; comparing page numbers keeps a huge
	// ?page= from overflowing the offset.
	items := []domain.Submission{}
	if page <= totalPages {
		items, err = u.repo.ListPage(ctx, filter, page, pageSize)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("failed to list submissions: %w", err))
		}
	}

	stats, err := u.repo.AggregateCounts(ctx)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to aggregate submissions: %w", err))
	}

	return &domain.SubmissionListing{
		PaginatedResult: domain.PaginatedResult[domain.Submission]{
			Data:       items,
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
		Filter: filter,
		Stats:  *stats,
	}, nil
}

// UpdateStatus moves a submission to the status named by action. Only an
// absent admin session is returned as an error; everything else becomes
// the flash message.
func (u *adminUsecase) UpdateStatus(ctx context.Context, id int64, action string) (*domain.StatusUpdateResult, error) {
	admin, err := u.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	failed := &domain.StatusUpdateResult{Success: false, FlashMessage: domain.MsgStatusUpdateFailed}

	status, err := domain.ParseStatus(action)
	if err != nil {
		metrics.StatusUpdatesTotal.WithLabelValues("invalid", "failed").Inc()
		u.log.Warn("Rejected status update", "submission_id", id, "error", err)
		return failed, nil
	}

	if id <= 0 {
		metrics.StatusUpdatesTotal.WithLabelValues(string(status), "failed").Inc()
		u.log.Warn("Rejected status update", "submission_id", id, "error", "invalid id")
		return failed, nil
	}

	if err := u.repo.UpdateStatus(ctx, id, status); err != nil {
		metrics.StatusUpdatesTotal.WithLabelValues(string(status), "failed").Inc()
		if errors.Is(err, domain.ErrSubmissionNotFound) {
			u.log.Warn("Status update for unknown submission", "submission_id", id, "status", status)
		} else {
			u.log.Error("Status update failed", "op", "update status", "submission_id", id, "status", status, "error", err)
		}
		return failed, nil
	}

	metrics.StatusUpdatesTotal.WithLabelValues(string(status), "ok").Inc()
	u.audit.LogStatusChanged(ctx, admin.Username, id, string(status))

	return &domain.StatusUpdateResult{Success: true, FlashMessage: domain.MsgStatusUpdated}, nil
}

// GetSubmission returns a single submission for the detail view
func (u *adminUsecase) GetSubmission(ctx context.Context, id int64) (*domain.Submission, error) {
	if _, err := u.requireAdmin(ctx); err != nil {
		return nil, err
	}

	if id <= 0 {
		return nil, apperror.BadRequest("Invalid submission ID")
	}

	sub, err := u.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSubmissionNotFound) {
			return nil, apperror.NotFound("Submission not found")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to get submission: %w", err))
	}
	return sub, nil
}

// requireAdmin checks the admin principal set by the session middleware
func (u *adminUsecase) requireAdmin(ctx context.Context) (domain.AdminPrincipal, error) {
	admin, ok := domain.AdminPrincipalFrom(ctx)
	if !ok {
		return domain.AdminPrincipal{}, apperror.Unauthorized("Admin session required")
	}
	return admin, nil
}
