// Package tasks runs background jobs on a backlite queue stored in its own
// SQLite database.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/bookstore/internal/logging"
)

// Client wraps backlite to provide task queue functionality.
type Client struct {
	client *backlite.Client
	db     *sql.DB
	config Config

	mu      sync.Mutex
	started bool
}

// DatabasePath returns the tasks database path for a catalog database,
// e.g. ./bookstore.db becomes ./bookstore-tasks.db.
func DatabasePath(mainDBPath string) string {
	mainDBPath, _, _ = strings.Cut(mainDBPath, "?")
	dir := filepath.Dir(mainDBPath)
	base := filepath.Base(mainDBPath)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+"-tasks"+ext)
}

// NewClient opens the tasks database next to mainDBPath and installs the
// backlite schema.
func NewClient(mainDBPath string, cfg Config) (*Client, error) {
	db, err := sql.Open("sqlite3", DatabasePath(mainDBPath)+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          logging.TaskLogger{Logger: log.StandardLogger()},
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create backlite client: %w", err)
	}

	if err := client.Install(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to install backlite schema: %w", err)
	}

	return &Client{client: client, db: db, config: cfg}, nil
}

// Register registers task queues. Must be called before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.client.Register(q)
	}
}

// Start begins processing tasks. It does not block.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.client.Start(ctx)
	log.WithField("workers", c.config.Workers).Info("Task queue started")
}

// Stop waits for running tasks to finish. It returns false when ctx
// expired first.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.Lock()
	started := c.started
	c.started = false
	c.mu.Unlock()
	if !started {
		return true
	}

	ok := c.client.Stop(ctx)
	if ok {
		log.Info("Task queue stopped")
	} else {
		log.Warn("Task queue stopped before all tasks completed")
	}
	return ok
}

// Close releases the tasks database. Call after Stop.
func (c *Client) Close() error {
	return c.db.Close()
}

// Add starts an operation to enqueue one or more tasks.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.client.Add(tasks...)
}
