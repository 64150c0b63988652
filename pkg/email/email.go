package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"html/template"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"linire-backend/config"
	"linire-backend/internal/domain"
)

var ErrNotConfigured = errors.New("email: smtp not configured")

// SendFunc matches smtp.SendMail
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService sends contact notifications via SMTP
type EmailService struct {
	host        string
	port        string
	username    string
	password    string
	fromEmail   string
	toEmail     string
	siteName    string
	sitePhone   string
	siteEmail   string
	siteAddress string

	send SendFunc
	now  func() time.Time
}

var _ domain.Notifier = (*EmailService)(nil)

// NewEmailService creates a new email service from the SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		username:    cfg.SMTPUsername,
		password:    cfg.SMTPPassword,
		fromEmail:   cfg.SMTPFromEmail,
		toEmail:     cfg.ContactEmailTo,
		siteName:    cfg.SiteName,
		sitePhone:   cfg.SitePhone,
		siteEmail:   cfg.ContactEmailTo,
		siteAddress: cfg.SiteAddress,
		send:        smtp.SendMail,
		now:         time.Now,
	}
}

// WithSendFunc replaces the SMTP transport
func (s *EmailService) WithSendFunc(fn SendFunc) *EmailService {
	s.send = fn
	return s
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}

type adminEmailData struct {
	SiteName    string
	Name        string
	Email       string
	Phone       string
	Service     string
	Message     []string
	SubmittedAt string
}

type autoReplyData struct {
	SiteName  string
	FirstName string
	Service   string
	Phone     string
	Email     string
	Address   string
	Year      int
}

var (
	adminTmpl     = template.Must(template.New("admin").Parse(adminEmailTemplate))
	autoReplyTmpl = template.Must(template.New("auto_reply").Parse(autoReplyTemplate))
)

// NotifyAdmin emails the firm inbox about a new submission. Reply-To is
// the client so the admin can answer directly.
func (s *EmailService) NotifyAdmin(ctx context.Context, sub domain.Submission) error {
	data := adminEmailData{
		SiteName:    s.siteName,
		Name:        plain(sub.FullName()),
		Email:       plain(sub.Email),
		Phone:       plain(sub.Phone),
		Service:     plain(sub.ServiceLabel()),
		Message:     strings.Split(plain(sub.Message), "\n"),
		SubmittedAt: s.now().Format("2006-01-02 15:04:05"),
	}

	body, err := render(adminTmpl, data)
	if err != nil {
		return err
	}

	replyTo := (&mail.Address{Name: plain(sub.FullName()), Address: plain(sub.Email)}).String()
	subject := fmt.Sprintf("New Contact Form Submission - %s %s", plain(sub.FirstName), plain(sub.LastName))

	return s.deliver(ctx, s.toEmail, subject, replyTo, body)
}

// SendAutoReply acknowledges the submission to the client
func (s *EmailService) SendAutoReply(ctx context.Context, sub domain.Submission) error {
	data := autoReplyData{
		SiteName:  s.siteName,
		FirstName: plain(sub.FirstName),
		Service:   plain(sub.ServiceLabel()),
		Phone:     s.sitePhone,
		Email:     s.siteEmail,
		Address:   s.siteAddress,
		Year:      s.now().Year(),
	}

	body, err := render(autoReplyTmpl, data)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Thank you for contacting %s", s.siteName)
	return s.deliver(ctx, plain(sub.Email), subject, "", body)
}

func (s *EmailService) deliver(ctx context.Context, to, subject, replyTo, body string) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}

	msg := s.buildMessage(to, subject, replyTo, body)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	// net/smtp has no context support; give up waiting when ctx ends.
	done := make(chan error, 1)
	go func() {
		done <- s.send(addr, auth, s.fromEmail, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}

func (s *EmailService) buildMessage(to, subject, replyTo, body string) []byte {
	from := (&mail.Address{Name: s.siteName, Address: s.fromEmail}).String()

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", headerValue(to))
	if replyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", headerValue(replyTo))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", headerValue(subject)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func render(t *template.Template, data any) (string, error) {
	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}

// plain reverses the storage-time HTML escaping; the templates escape again.
func plain(s string) string {
	return html.UnescapeString(s)
}

func headerValue(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
