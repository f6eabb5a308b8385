package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"replacementGame/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeedbackLogger struct {
	mu      sync.Mutex
	got     []domain.FeedbackEntry
	err     error
	release chan struct{}
}

func (f *fakeFeedbackLogger) LogFeedback(ctx context.Context, entry domain.FeedbackEntry) error {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, entry)
	return f.err
}

func (f *fakeFeedbackLogger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func TestDispatcherDelivers(t *testing.T) {
	sink := &fakeFeedbackLogger{}
	d := NewFeedbackDispatcher(sink, DispatcherConfig{QueueSize: 8, Workers: 2, Timeout: time.Second})

	for i := 0; i < 5; i++ {
		assert.True(t, d.Dispatch(domain.FeedbackEntry{UserID: "u", Score: float64(i)}))
	}

	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 5, sink.count())
}

func TestDispatcherReportsFailures(t *testing.T) {
	sink := &fakeFeedbackLogger{err: errors.New("service down")}
	failures := make(chan FeedbackFailure, 4)
	d := NewFeedbackDispatcher(sink, DispatcherConfig{
		QueueSize: 4,
		Workers:   1,
		Timeout:   time.Second,
		OnFailure: func(f FeedbackFailure) { failures <- f },
	})

	d.Dispatch(domain.FeedbackEntry{UserID: "u", OriginalID: "a"})

	select {
	case f := <-failures:
		assert.Equal(t, "a", f.Entry.OriginalID)
		assert.EqualError(t, f.Err, "service down")
	case <-time.After(2 * time.Second):
		t.Fatal("failure was not reported")
	}
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := &fakeFeedbackLogger{release: make(chan struct{})}
	d := NewFeedbackDispatcher(sink, DispatcherConfig{QueueSize: 1, Workers: 1, Timeout: 5 * time.Second})

	// first entry is picked up by the blocked worker, second fills the queue
	require.True(t, d.Dispatch(domain.FeedbackEntry{OriginalID: "1"}))
	assert.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.True(t, d.Dispatch(domain.FeedbackEntry{OriginalID: "2"}))

	start := time.Now()
	assert.False(t, d.Dispatch(domain.FeedbackEntry{OriginalID: "3"}))
	assert.Less(t, time.Since(start), 100*time.Millisecond, "dispatch must never block")

	close(sink.release)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 2, sink.count())
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewFeedbackDispatcher(&fakeFeedbackLogger{}, DispatcherConfig{})
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	assert.False(t, d.Dispatch(domain.FeedbackEntry{}))
}

func TestDispatcherCloseHonorsDeadline(t *testing.T) {
	sink := &fakeFeedbackLogger{release: make(chan struct{})}
	d := NewFeedbackDispatcher(sink, DispatcherConfig{QueueSize: 1, Workers: 1, Timeout: 5 * time.Second})
	d.Dispatch(domain.FeedbackEntry{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
	close(sink.release)
}
