package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	mu    sync.Mutex
	calls []int
	err   error
}

func (r *recordingEnqueuer) EnqueueAuditCleanup(retentionDays int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, retentionDays)
	return r.err
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 3 * * *"))
	assert.NoError(t, ValidateSchedule("*/5 * * * *"))
	assert.Error(t, ValidateSchedule("0 0 3 * * *"), "seconds field is not accepted")
	assert.Error(t, ValidateSchedule("daily"))
}

func TestSchedulerLifecycle(t *testing.T) {
	enq := &recordingEnqueuer{}
	s := NewAuditCleanupScheduler(enq, "0 3 * * *", 30)
	assert.Nil(t, s.NextRun())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx), "second start is a no-op")

	next := s.NextRun()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())
	assert.True(t, next.After(time.Now()))

	s.Stop()
	assert.Nil(t, s.NextRun())
	s.Stop()
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	s := NewAuditCleanupScheduler(&recordingEnqueuer{}, "0 3 * * *", 30)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return s.NextRun() == nil }, time.Second, 10*time.Millisecond)
}

func TestSchedulerInvalidSchedule(t *testing.T) {
	s := NewAuditCleanupScheduler(&recordingEnqueuer{}, "not a schedule", 30)
	assert.Error(t, s.Start(context.Background()))
}

func TestRunNow(t *testing.T) {
	enq := &recordingEnqueuer{}
	s := NewAuditCleanupScheduler(enq, "0 3 * * *", 45)

	require.NoError(t, s.RunNow())
	s.run()
	assert.Equal(t, []int{45, 45}, enq.calls)

	enq.err = errors.New("queue closed")
	assert.Error(t, s.RunNow())
	s.run()
}
