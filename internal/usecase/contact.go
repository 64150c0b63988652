package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"linire-backend/internal/domain"
	"linire-backend/pkg/apperror"
	"linire-backend/pkg/metrics"
	"linire-backend/pkg/validation"
)

type contactUsecase struct {
	repo       domain.SubmissionRepository
	validator  *validation.ContactValidator
	dispatcher domain.NotificationDispatcher
	log        *slog.Logger
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(repo domain.SubmissionRepository, validator *validation.ContactValidator, dispatcher domain.NotificationDispatcher, log *slog.Logger) domain.ContactUsecase {
	if log == nil {
		log = slog.Default()
	}
	return &contactUsecase{
		repo:       repo,
		validator:  validator,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Submit sanitizes the raw form, validates it, stores it and hands it to
// the notification dispatcher.
func (uc *contactUsecase) Submit(ctx context.Context, form domain.ContactForm) (*domain.ContactResult, error) {
	req := sanitizeForm(form)

	result := uc.validator.Validate(req)
	if !result.IsValid {
		metrics.SubmissionsTotal.WithLabelValues("invalid").Inc()
		uc.log.Debug("Contact form rejected", "fields", len(result.Errors))
		return &domain.ContactResult{
			Success: false,
			Message: domain.MsgContactInvalid,
			Errors:  result.Errors,
		}, nil
	}

	sub := req.ToSubmission()
	id, err := uc.repo.Create(ctx, sub)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		op := "create submission"
		var storageErr *domain.StorageError
		if errors.As(err, &storageErr) {
			op = storageErr.Op
		}
		uc.log.Error("Contact form submission failed", "op", op, "error", err)
		return nil, apperror.New(http.StatusInternalServerError, domain.MsgContactFailed, err)
	}
	sub.ID = id

	metrics.SubmissionsTotal.WithLabelValues("accepted").Inc()
	uc.log.Info("Contact form submission stored", "submission_id", id, "service", sub.Service)

	// The row is committed; email outcomes no longer affect the response.
	uc.dispatcher.Dispatch(*sub)

	return &domain.ContactResult{
		Success:      true,
		Message:      domain.MsgContactAccepted,
		SubmissionID: id,
	}, nil
}

func sanitizeForm(form domain.ContactForm) *domain.ContactRequest {
	return &domain.ContactRequest{
		FirstName: validation.SanitizeInput(form.FirstName),
		LastName:  validation.SanitizeInput(form.LastName),
		Email:     validation.SanitizeInput(form.Email),
		Phone:     validation.SanitizeInput(form.Phone),
		Service:   validation.SanitizeInput(form.Service),
		Message:   validation.SanitizeInput(form.Message),
		Consent:   validation.IsTruthy(form.Consent),
	}
}
