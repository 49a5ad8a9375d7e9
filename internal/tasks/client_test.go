package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/config"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	cfg := DefaultConfig()
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestDatabasePath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "bookstore-tasks.db"), DatabasePath("data/bookstore.db"))
	assert.Equal(t, "bookstore-tasks.db", DatabasePath("bookstore.db?cache=shared"))
	assert.Equal(t, "catalog-tasks", DatabasePath("catalog"))
}

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()

	client, err := NewClient(filepath.Join(tmpDir, "test.db"), DefaultConfig())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(tmpDir, "test-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")
	assert.NoError(t, client.Close())
}

func TestClientStartStop(t *testing.T) {
	client := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)
	client.Start(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx))
	assert.True(t, client.Stop(stopCtx), "stopping twice is a no-op")
}

type fakeCleaner struct {
	mu        sync.Mutex
	retention time.Duration
	calls     chan struct{}
	err       error
}

func (f *fakeCleaner) DeleteOldEvents(retention time.Duration) (int64, error) {
	f.mu.Lock()
	f.retention = retention
	f.mu.Unlock()
	if f.calls != nil {
		f.calls <- struct{}{}
	}
	return 3, f.err
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	cleaner := &fakeCleaner{}
	process := CleanupAuditEventsProcessor(cleaner)

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{RetentionDays: 7}))
	assert.Equal(t, 7*24*time.Hour, cleaner.retention)

	require.NoError(t, process(context.Background(), CleanupAuditEventsTask{}))
	assert.Equal(t, 90*24*time.Hour, cleaner.retention)

	cleaner.err = errors.New("disk full")
	assert.ErrorContains(t, process(context.Background(), CleanupAuditEventsTask{}), "disk full")

	assert.Error(t, CleanupAuditEventsProcessor(nil)(context.Background(), CleanupAuditEventsTask{}))
}

func TestCleanupAuditEventsQueue(t *testing.T) {
	client := newTestClient(t)
	cleaner := &fakeCleaner{calls: make(chan struct{}, 1)}
	client.Register(NewCleanupAuditEventsQueue(cleaner))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer stopCancel()
		client.Stop(stopCtx)
	}()

	ids, err := client.Add(CleanupAuditEventsTask{RetentionDays: 30}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	select {
	case <-cleaner.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("cleanup task was not executed within timeout")
	}

	cleaner.mu.Lock()
	defer cleaner.mu.Unlock()
	assert.Equal(t, 30*24*time.Hour, cleaner.retention)
}

func TestCleanupTaskConfig(t *testing.T) {
	var task backlite.Task = CleanupAuditEventsTask{}
	cfg := task.Config()

	assert.Equal(t, AuditCleanupQueue, cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.NotNil(t, cfg.Retention)
}

func TestNewConfig(t *testing.T) {
	assert.Equal(t, DefaultConfig(), NewConfig(config.Tasks{}))

	cfg := NewConfig(config.Tasks{Workers: 4, ReleaseAfter: time.Minute})
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
}

func TestInlineCleanup(t *testing.T) {
	cleaner := &fakeCleaner{}

	require.NoError(t, InlineCleanup{Cleaner: cleaner}.EnqueueAuditCleanup(14))
	assert.Equal(t, 14*24*time.Hour, cleaner.retention)
}
