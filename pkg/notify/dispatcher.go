package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"linire-backend/internal/domain"
	"linire-backend/pkg/metrics"
)

type Config struct {
	Workers          int           // goroutines draining the queue
	QueueSize        int           // buffered jobs before Dispatch starts dropping
	SendTimeout      time.Duration // per email
	BreakerThreshold int           // consecutive failures of one kind before its breaker opens
	BreakerOpenFor   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Workers:          2,
		QueueSize:        100,
		SendTimeout:      15 * time.Second,
		BreakerThreshold: 5,
		BreakerOpenFor:   time.Minute,
	}
}

// Dispatcher sends the admin notification and the client auto-reply for each
// submission on background workers. Failures are logged and counted only.
type Dispatcher struct {
	notifier domain.Notifier
	log      *slog.Logger
	breakers map[Kind]*Breaker
	timeout  time.Duration

	mu     sync.RWMutex
	closed bool
	jobs   chan domain.Submission
	wg     sync.WaitGroup
}

var _ domain.NotificationDispatcher = (*Dispatcher)(nil)

// NewDispatcher starts cfg.Workers workers that call notifier.
func NewDispatcher(notifier domain.Notifier, cfg Config, log *slog.Logger) *Dispatcher {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = def.SendTimeout
	}
	if cfg.BreakerThreshold <= 0 {
		cfg.BreakerThreshold = def.BreakerThreshold
	}
	if cfg.BreakerOpenFor <= 0 {
		cfg.BreakerOpenFor = def.BreakerOpenFor
	}
	if log == nil {
		log = slog.Default()
	}

	d := &Dispatcher{
		notifier: notifier,
		log:      log,
		breakers: map[Kind]*Breaker{
			KindAdmin:     NewBreaker(cfg.BreakerThreshold, cfg.BreakerOpenFor),
			KindAutoReply: NewBreaker(cfg.BreakerThreshold, cfg.BreakerOpenFor),
		},
		timeout:  cfg.SendTimeout,
		jobs:     make(chan domain.Submission, cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

// Dispatch queues sub without blocking. When the queue is full or the
// dispatcher is closed the job is dropped and logged.
func (d *Dispatcher) Dispatch(sub domain.Submission) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(sub, ErrClosed)
		return
	}

	select {
	case d.jobs <- sub:
		metrics.NotificationQueueDepth.Set(float64(len(d.jobs)))
	default:
		d.drop(sub, ErrQueueFull)
	}
}

// Close stops accepting jobs and waits for queued ones to finish or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for sub := range d.jobs {
		metrics.NotificationQueueDepth.Set(float64(len(d.jobs)))
		d.process(sub)
	}
}

// process sends the admin notification first, then the auto-reply. One
// failing does not skip the other.
func (d *Dispatcher) process(sub domain.Submission) {
	_ = d.send(KindAdmin, sub, d.notifier.NotifyAdmin)
	_ = d.send(KindAutoReply, sub, d.notifier.SendAutoReply)
}

// send runs fn behind the breaker of its kind. Auto-replies go to addresses
// typed by the public, so their failures must not stop admin notifications.
func (d *Dispatcher) send(kind Kind, sub domain.Submission, fn func(context.Context, domain.Submission) error) error {
	breaker := d.breakers[kind]
	if !breaker.TryAcquire() {
		return d.fail(kind, sub, ErrCircuitOpen)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := fn(ctx, sub); err != nil {
		breaker.OnFailure()
		return d.fail(kind, sub, err)
	}

	breaker.OnSuccess()
	metrics.NotificationsTotal.WithLabelValues(string(kind), "sent").Inc()
	d.log.Info("Notification sent", "kind", kind, "submission_id", sub.ID)
	return nil
}

func (d *Dispatcher) fail(kind Kind, sub domain.Submission, err error) error {
	nerr := &NotificationError{Kind: kind, SubmissionID: sub.ID, Err: err}
	metrics.NotificationsTotal.WithLabelValues(string(kind), "failed").Inc()
	d.log.Warn("Notification failed", "kind", kind, "submission_id", sub.ID, "error", nerr)
	return nerr
}

func (d *Dispatcher) drop(sub domain.Submission, reason error) {
	metrics.NotificationsTotal.WithLabelValues(string(KindAdmin), "dropped").Inc()
	metrics.NotificationsTotal.WithLabelValues(string(KindAutoReply), "dropped").Inc()
	d.log.Warn("Notification job dropped", "submission_id", sub.ID, "error", reason)
}
