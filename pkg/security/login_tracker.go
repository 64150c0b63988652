package security

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// LoginTrackerConfig holds configuration for admin login lockout
type LoginTrackerConfig struct {
	MaxAttempts   int           // failed attempts before block
	AttemptWindow time.Duration // window for counting attempts
	BlockDuration time.Duration // lockout after MaxAttempts
}

// DefaultLoginTrackerConfig mirrors the site's historic limits: 5 attempts, 15 minute lockout
func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// Redis key patterns
const (
	failLoginIPPrefix    = "fail:login:ip:"
	blockedLoginIPPrefix = "blocked:login:ip:"
)

// KEYS[1] = counter key, ARGV[1] = TTL in seconds. Returns count after increment.
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

type attemptEntry struct {
	count        int
	resetAt      time.Time
	blockedUntil time.Time
}

// LoginTracker counts failed admin logins per client IP and blocks the IP
// once MaxAttempts is reached. Redis backs it when available, otherwise an
// in-process map does.
type LoginTracker struct {
	config LoginTrackerConfig
	client *goredis.Client
	audit  *AuditLogger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*attemptEntry
}

// NewLoginTracker creates a tracker. client may be nil.
func NewLoginTracker(config LoginTrackerConfig, client *goredis.Client, audit *AuditLogger) *LoginTracker {
	def := DefaultLoginTrackerConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.AttemptWindow <= 0 {
		config.AttemptWindow = def.AttemptWindow
	}
	if config.BlockDuration <= 0 {
		config.BlockDuration = def.BlockDuration
	}
	if audit == nil {
		audit = NopAuditLogger()
	}
	return &LoginTracker{
		config:  config,
		client:  client,
		audit:   audit,
		now:     time.Now,
		entries: make(map[string]*attemptEntry),
	}
}

// IsBlocked reports whether ip is locked out
func (lt *LoginTracker) IsBlocked(ctx context.Context, ip string) (bool, error) {
	if lt.client != nil {
		exists, err := lt.client.Exists(ctx, blockedLoginIPPrefix+ip).Result()
		if err != nil {
			return false, fmt.Errorf("failed to check IP block: %w", err)
		}
		return exists > 0, nil
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()
	entry, ok := lt.entries[ip]
	return ok && lt.now().Before(entry.blockedUntil), nil
}

// RecordFailedAttempt counts a failure and reports whether ip is now blocked
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, username, ip string) (bool, int, error) {
	var count int
	if lt.client != nil {
		var err error
		count, err = lt.atomicIncrement(ctx, failLoginIPPrefix+ip, int(lt.config.AttemptWindow.Seconds()))
		if err != nil {
			return false, 0, fmt.Errorf("failed to increment login counter: %w", err)
		}
	} else {
		count = lt.incrementInMemory(ip)
	}

	if count < lt.config.MaxAttempts {
		return false, count, nil
	}

	if err := lt.block(ctx, ip); err != nil {
		return true, count, err
	}
	lt.audit.LogBlockCreated(ctx, username, ip, lt.config.BlockDuration)
	return true, count, nil
}

// ClearAttempts forgets failures for ip after a successful login
func (lt *LoginTracker) ClearAttempts(ctx context.Context, ip string) error {
	if lt.client != nil {
		if err := lt.client.Del(ctx, failLoginIPPrefix+ip).Err(); err != nil {
			return fmt.Errorf("failed to clear login attempts: %w", err)
		}
		return nil
	}

	lt.mu.Lock()
	delete(lt.entries, ip)
	lt.mu.Unlock()
	return nil
}

// RemainingAttempts returns how many failures ip has left before a block
func (lt *LoginTracker) RemainingAttempts(ctx context.Context, ip string) (int, error) {
	var count int
	if lt.client != nil {
		n, err := lt.client.Get(ctx, failLoginIPPrefix+ip).Int()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return 0, fmt.Errorf("failed to get attempt count: %w", err)
		}
		count = n
	} else {
		lt.mu.Lock()
		if entry, ok := lt.entries[ip]; ok && lt.now().Before(entry.resetAt) {
			count = entry.count
		}
		lt.mu.Unlock()
	}

	remaining := lt.config.MaxAttempts - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (lt *LoginTracker) atomicIncrement(ctx context.Context, key string, ttlSeconds int) (int, error) {
	result, err := lt.client.Eval(ctx, incrWithTTLScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, err
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result type from Lua script")
	}
	return int(count), nil
}

func (lt *LoginTracker) incrementInMemory(ip string) int {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	now := lt.now()
	entry, ok := lt.entries[ip]
	if !ok {
		entry = &attemptEntry{}
		lt.entries[ip] = entry
	}
	if !now.Before(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(lt.config.AttemptWindow)
	}
	entry.count++
	return entry.count
}

func (lt *LoginTracker) block(ctx context.Context, ip string) error {
	if lt.client != nil {
		if err := lt.client.Set(ctx, blockedLoginIPPrefix+ip, "1", lt.config.BlockDuration).Err(); err != nil {
			return fmt.Errorf("failed to set IP block: %w", err)
		}
		return nil
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()
	if entry, ok := lt.entries[ip]; ok {
		entry.blockedUntil = lt.now().Add(lt.config.BlockDuration)
	}
	return nil
}
