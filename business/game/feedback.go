package game

import (
	"context"
	"sync"
	"time"

	"replacementGame/domain"
	"replacementGame/pkg/logger"
	"replacementGame/pkg/metrics"
)

type FeedbackLogger interface {
	LogFeedback(ctx context.Context, entry domain.FeedbackEntry) error
}

// FeedbackFailure is an entry the dispatcher could not deliver.
type FeedbackFailure struct {
	Entry domain.FeedbackEntry
	Err   error
}

type DispatcherConfig struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
	// OnFailure receives every undelivered entry. It runs on a dispatcher
	// worker and must not block for long.
	OnFailure func(FeedbackFailure)
}

// FeedbackDispatcher is the detached task that ships feedback entries to
// the replacement service. Submitting a round never waits on it: entries
// are queued, sent by background workers under their own timeout, and
// failures end on the dispatcher's failure path (log, metrics, OnFailure).
// A full queue drops the entry.
type FeedbackDispatcher struct {
	sink      FeedbackLogger
	queue     chan domain.FeedbackEntry
	timeout   time.Duration
	onFailure func(FeedbackFailure)

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewFeedbackDispatcher(sink FeedbackLogger, cfg DispatcherConfig) *FeedbackDispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	d := &FeedbackDispatcher{
		sink:      sink,
		queue:     make(chan domain.FeedbackEntry, cfg.QueueSize),
		timeout:   cfg.Timeout,
		onFailure: cfg.OnFailure,
	}

	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.work()
	}

	return d
}

// Dispatch queues an entry and reports whether it was accepted.
func (d *FeedbackDispatcher) Dispatch(entry domain.FeedbackEntry) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.FeedbackDispatch.WithLabelValues("dropped").Inc()
		logger.Warn("feedback dropped, dispatcher closed", "user_id", entry.UserID, "original_id", entry.OriginalID)
		return false
	}

	select {
	case d.queue <- entry:
		return true
	default:
		metrics.FeedbackDispatch.WithLabelValues("dropped").Inc()
		logger.Warn("feedback dropped, queue full", "user_id", entry.UserID, "original_id", entry.OriginalID)
		return false
	}
}

// Close stops intake and waits for queued entries to be sent or for ctx to end.
func (d *FeedbackDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
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

func (d *FeedbackDispatcher) work() {
	defer d.wg.Done()

	for entry := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.sink.LogFeedback(ctx, entry)
		cancel()

		if err == nil {
			metrics.FeedbackDispatch.WithLabelValues("sent").Inc()
			continue
		}

		metrics.FeedbackDispatch.WithLabelValues("failed").Inc()
		logger.Error("logging feedback failed",
			"user_id", entry.UserID,
			"original_id", entry.OriginalID,
			"replacement_id", entry.ReplacementID,
			"error", err,
		)
		if d.onFailure != nil {
			d.onFailure(FeedbackFailure{Entry: entry, Err: err})
		}
	}
}
