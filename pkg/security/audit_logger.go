package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of audit event
type EventType string

const (
	EventLoginFailed        EventType = "login_failed"
	EventLoginBlocked       EventType = "login_blocked"
	EventLoginSuccess       EventType = "login_success"
	EventLogout             EventType = "logout"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventBlockCreated       EventType = "block_created"
	EventStatusChanged      EventType = "submission_status_changed"
	EventDataExport         EventType = "data_export"
	EventServerError        EventType = "server_error"
)

// Severity is derived from EventType, never supplied by callers
type Severity string

const (
	SeverityINFO   Severity = "INFO"
	SeverityMEDIUM Severity = "MEDIUM"
	SeverityWARN   Severity = "WARN"
	SeverityHIGH   Severity = "HIGH"
)

var eventSeverity = map[EventType]Severity{
	EventLoginSuccess:       SeverityINFO,
	EventLogout:             SeverityINFO,
	EventStatusChanged:      SeverityINFO,
	EventDataExport:         SeverityMEDIUM,
	EventServerError:        SeverityMEDIUM,
	EventLoginFailed:        SeverityWARN,
	EventRateLimitTriggered: SeverityWARN,
	EventLoginBlocked:       SeverityHIGH,
	EventBlockCreated:       SeverityHIGH,
	EventUnauthorizedAccess: SeverityHIGH,
}

// GetSeverity returns the severity for an event type, MEDIUM when unmapped
func GetSeverity(eventType EventType) Severity {
	if severity, ok := eventSeverity[eventType]; ok {
		return severity
	}
	return SeverityMEDIUM
}

func (s Severity) level() zapcore.Level {
	switch s {
	case SeverityINFO:
		return zapcore.InfoLevel
	case SeverityHIGH:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// AuditEvent is one line of the audit trail
type AuditEvent struct {
	Timestamp    time.Time
	Event        EventType
	SubjectType  string // "username", "ip", "submission"
	SubjectValue string // masked or hashed for PII
	IP           string
	UserAgent    string
	RequestID    string
	Details      map[string]any
}

// AuditLogger writes admin and abuse events to a dedicated zap logger
type AuditLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// NewAuditLogger builds a JSON zap logger writing to stdout
func NewAuditLogger(serviceName, environment string) *AuditLogger {
	config := zap.NewProductionConfig()
	if environment != "production" {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return NewAuditLoggerWithZap(logger, serviceName, environment)
}

func NewAuditLoggerWithZap(logger *zap.Logger, serviceName, environment string) *AuditLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// NopAuditLogger discards everything
func NopAuditLogger() *AuditLogger {
	return NewAuditLoggerWithZap(zap.NewNop(), "", "")
}

// Log writes event at the level derived from its type
func (al *AuditLogger) Log(ctx context.Context, event AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	severity := GetSeverity(event.Event)

	fields := []zap.Field{
		zap.String("service", al.serviceName),
		zap.String("env", al.environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(severity)),
		zap.Time("event_time", event.Timestamp),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	al.zapLogger.Log(severity.level(), string(event.Event), fields...)
}

func (al *AuditLogger) LogLoginFailed(ctx context.Context, username, ip, userAgent, requestID, reason string) {
	al.Log(ctx, AuditEvent{
		Event:        EventLoginFailed,
		SubjectType:  "username",
		SubjectValue: MaskUsername(username),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]any{"reason": reason},
	})
}

func (al *AuditLogger) LogLoginSuccess(ctx context.Context, username, ip, userAgent, requestID string) {
	al.Log(ctx, AuditEvent{
		Event:        EventLoginSuccess,
		SubjectType:  "username",
		SubjectValue: MaskUsername(username),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
	})
}

func (al *AuditLogger) LogLoginBlocked(ctx context.Context, username, ip, userAgent, requestID string) {
	al.Log(ctx, AuditEvent{
		Event:        EventLoginBlocked,
		SubjectType:  "username",
		SubjectValue: MaskUsername(username),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]any{"reason": "too_many_failed_attempts"},
	})
}

func (al *AuditLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	al.Log(ctx, AuditEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]any{"endpoint": endpoint},
	})
}

func (al *AuditLogger) LogBlockCreated(ctx context.Context, username, ip string, duration time.Duration) {
	al.Log(ctx, AuditEvent{
		Event:        EventBlockCreated,
		SubjectType:  "username",
		SubjectValue: MaskUsername(username),
		IP:           ip,
		Details:      map[string]any{"duration_minutes": int(duration.Minutes())},
	})
}

// LogStatusChanged records an admin moving a submission between statuses
func (al *AuditLogger) LogStatusChanged(ctx context.Context, admin string, submissionID int64, status string) {
	al.Log(ctx, AuditEvent{
		Event:        EventStatusChanged,
		SubjectType:  "submission",
		SubjectValue: strconv.FormatInt(submissionID, 10),
		Details:      map[string]any{"admin": MaskUsername(admin), "status": status},
	})
}

func (al *AuditLogger) LogDataExport(ctx context.Context, admin, filter string, rows int) {
	al.Log(ctx, AuditEvent{
		Event:        EventDataExport,
		SubjectType:  "username",
		SubjectValue: MaskUsername(admin),
		Details:      map[string]any{"filter": filter, "rows": rows},
	})
}

// Sync flushes any buffered log entries
func (al *AuditLogger) Sync() error {
	return al.zapLogger.Sync()
}

// --- Helper Functions ---

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := strings.IndexByte(email, '@')
	if atIndex < 0 {
		return MaskUsername(email)
	}
	if atIndex <= 1 {
		return "***" + email[atIndex:]
	}
	return email[:1] + "***" + email[atIndex:]
}

// MaskUsername keeps the first character only
func MaskUsername(name string) string {
	if strings.Contains(name, "@") {
		return MaskEmail(name)
	}
	if len(name) < 2 {
		return "***"
	}
	return name[:1] + "***"
}

// HashValue creates a short SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
