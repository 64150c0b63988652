package notify

import (
	"errors"
	"fmt"
)

// Kind names the email a notification job sends
type Kind string

const (
	KindAdmin     Kind = "admin"
	KindAutoReply Kind = "auto_reply"
)

var (
	ErrCircuitOpen = errors.New("notify: mail transport circuit open")
	ErrQueueFull   = errors.New("notify: queue full")
	ErrClosed      = errors.New("notify: dispatcher closed")
)

// NotificationError records a best-effort send that did not go out
type NotificationError struct {
	Kind         Kind
	SubmissionID int64
	Err          error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify %s for submission #%d: %v", e.Kind, e.SubmissionID, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
