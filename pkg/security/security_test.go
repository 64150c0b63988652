package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditLogger_LevelFollowsSeverity(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	al := NewAuditLoggerWithZap(zap.New(core), "linire-backend", "test")

	al.LogLoginSuccess(context.Background(), "admin", "10.0.0.1", "curl", "req-1")
	al.LogLoginFailed(context.Background(), "admin", "10.0.0.1", "curl", "req-2", "invalid_credentials")
	al.LogLoginBlocked(context.Background(), "admin", "10.0.0.1", "curl", "req-3")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	fields := entries[1].ContextMap()
	assert.Equal(t, "login_failed", fields["event"])
	assert.Equal(t, "a***", fields["subject_value"])
	assert.Equal(t, "req-2", fields["request_id"])
}

func TestAuditLogger_StatusChanged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	al := NewAuditLoggerWithZap(zap.New(core), "linire-backend", "test")

	al.LogStatusChanged(context.Background(), "admin", 12, "replied")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "submission_status_changed", fields["event"])
	assert.Equal(t, "12", fields["subject_value"])
}

func TestMasking(t *testing.T) {
	assert.Equal(t, "j***@example.com", MaskEmail("jane@example.com"))
	assert.Equal(t, "***@example.com", MaskEmail("j@example.com"))
	assert.Equal(t, "***", MaskEmail("ab"))
	assert.Equal(t, "a***", MaskUsername("admin"))
	assert.Equal(t, "***", MaskUsername("a"))
	assert.Len(t, HashValue("admin"), 16)
	assert.Equal(t, SeverityMEDIUM, GetSeverity(EventType("unknown")))
}

func TestLoginTracker_InMemoryBlocksAfterMaxAttempts(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	lt := NewLoginTracker(LoginTrackerConfig{MaxAttempts: 3, AttemptWindow: time.Minute, BlockDuration: 15 * time.Minute}, nil, nil)
	lt.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		blocked, count, err := lt.RecordFailedAttempt(ctx, "admin", "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, blocked)
		assert.Equal(t, i, count)
	}

	remaining, err := lt.RemainingAttempts(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	blocked, _, err := lt.RecordFailedAttempt(ctx, "admin", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, blocked)

	isBlocked, err := lt.IsBlocked(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, isBlocked)

	other, err := lt.IsBlocked(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.False(t, other)

	now = now.Add(16 * time.Minute)
	isBlocked, err = lt.IsBlocked(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, isBlocked, "block expires")
}

func TestLoginTracker_ClearAttempts(t *testing.T) {
	lt := NewLoginTracker(LoginTrackerConfig{MaxAttempts: 2}, nil, nil)
	ctx := context.Background()

	_, _, err := lt.RecordFailedAttempt(ctx, "admin", "10.0.0.1")
	require.NoError(t, err)
	require.NoError(t, lt.ClearAttempts(ctx, "10.0.0.1"))

	remaining, err := lt.RemainingAttempts(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}
