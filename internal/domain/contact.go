package domain

import "context"

// ContactForm is the raw contact form as posted by the browser
type ContactForm struct {
	FirstName string `form:"firstName" json:"firstName"`
	LastName  string `form:"lastName" json:"lastName"`
	Email     string `form:"email" json:"email"`
	Phone     string `form:"phone" json:"phone"`
	Service   string `form:"service" json:"service"`
	Message   string `form:"message" json:"message"`
	Consent   string `form:"consent" json:"consent"`
}

// ContactRequest is a sanitized contact form ready for validation
type ContactRequest struct {
	FirstName string `json:"firstName" validate:"notblank,trimmed_min=2"`
	LastName  string `json:"lastName" validate:"notblank,trimmed_min=2"`
	Email     string `json:"email" validate:"notblank,email"`
	Phone     string `json:"phone" validate:"notblank,contact_phone"`
	Service   string `json:"service" validate:"notblank"`
	Message   string `json:"message" validate:"notblank,trimmed_min=10"`
	Consent   bool   `json:"consent" validate:"required"`
}

// ToSubmission builds the entity to persist. Id, status and created_at are
// left for the store to assign.
func (r *ContactRequest) ToSubmission() *Submission {
	return &Submission{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Service:   r.Service,
		Message:   r.Message,
		Consent:   r.Consent,
	}
}

// ValidationResult holds every field error found in a request
type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ContactResult is the JSON body returned to the contact form
type ContactResult struct {
	Success      bool              `json:"success"`
	Message      string            `json:"message"`
	Errors       map[string]string `json:"errors,omitempty"`
	SubmissionID int64             `json:"submissionId,omitempty"`
}

const (
	MsgContactInvalid  = "Please correct the errors in the form"
	MsgContactAccepted = "Thank you for your inquiry. We will contact you within 24 hours."
	MsgContactFailed   = "An error occurred. Please try again later."
)

// ContactUsecase runs the public contact intake
type ContactUsecase interface {
	// Submit sanitizes, validates and stores a form, then schedules the
	// notifications. Validation problems are reported in the result; a
	// non-nil error means the submission could not be stored.
	Submit(ctx context.Context, form ContactForm) (*ContactResult, error)
}

// Notifier sends the two emails that follow a submission
type Notifier interface {
	NotifyAdmin(ctx context.Context, sub Submission) error
	SendAutoReply(ctx context.Context, sub Submission) error
}

// NotificationDispatcher schedules notifications without blocking the caller
type NotificationDispatcher interface {
	Dispatch(sub Submission)
}
