package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/hiring-workflow/internal/notify"
	"github.com/spec-kit/hiring-workflow/internal/observability"
)

// NotificationWorker drains a bounded queue of application ids into a Notifier.
// Enqueue never blocks: when the queue is full the job is dropped and logged.
type NotificationWorker struct {
	notifier notify.Notifier
	logger   *zap.Logger
	metrics  *observability.Metrics
	queue    chan string
	workers  int
	timeout  time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	mu        sync.RWMutex
	stopped   bool
	wg        sync.WaitGroup
}

// NotificationWorkerOptions configures the pool.
type NotificationWorkerOptions struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// NewNotificationWorker builds a worker pool. Call Start before enqueueing.
func NewNotificationWorker(notifier notify.Notifier, logger *zap.Logger, metrics *observability.Metrics, opts NotificationWorkerOptions) *NotificationWorker {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
		queue:    make(chan string, opts.QueueSize),
		workers:  opts.Workers,
		timeout:  opts.SendTimeout,
	}
}

// Start launches the goroutines. Cancelling ctx aborts in-flight sends.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		for i := 0; i < w.workers; i++ {
			w.wg.Add(1)
			go w.run(ctx)
		}
	})
}

// Enqueue schedules a status email. It reports false if the job was dropped.
func (w *NotificationWorker) Enqueue(applicationID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		w.drop(applicationID, "stopped")
		return false
	}
	select {
	case w.queue <- applicationID:
		return true
	default:
		w.drop(applicationID, "queue full")
		return false
	}
}

// Stop closes the queue and waits for queued jobs to drain.
func (w *NotificationWorker) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		close(w.queue)
		w.mu.Unlock()
	})
	w.wg.Wait()
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for applicationID := range w.queue {
		w.send(ctx, applicationID)
	}
}

func (w *NotificationWorker) send(parent context.Context, applicationID string) {
	ctx, cancel := context.WithTimeout(parent, w.timeout)
	defer cancel()

	if err := w.notifier.SendStatusEmail(ctx, applicationID); err != nil {
		w.metrics.RecordNotification("failed")
		w.logger.Warn("status email failed",
			zap.String("application_id", applicationID),
			zap.Error(err))
		return
	}
	w.metrics.RecordNotification("sent")
	w.logger.Debug("status email sent", zap.String("application_id", applicationID))
}

func (w *NotificationWorker) drop(applicationID, reason string) {
	w.metrics.RecordNotification("dropped")
	w.logger.Warn("status email dropped",
		zap.String("application_id", applicationID),
		zap.String("reason", reason))
}
