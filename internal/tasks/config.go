package tasks

import (
	"time"

	"github.com/mrlokans/bookstore/internal/config"
)

// Config holds configuration for the task queue.
type Config struct {
	// Workers is the number of concurrent task workers.
	Workers int

	// ReleaseAfter is when stuck tasks are released back to the queue.
	ReleaseAfter time.Duration

	// CleanupInterval is how often completed tasks are purged.
	CleanupInterval time.Duration
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Workers:         1,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

// NewConfig builds a Config from the application settings, keeping
// defaults for unset values.
func NewConfig(cfg config.Tasks) Config {
	c := DefaultConfig()
	if cfg.Workers > 0 {
		c.Workers = cfg.Workers
	}
	if cfg.ReleaseAfter > 0 {
		c.ReleaseAfter = cfg.ReleaseAfter
	}
	if cfg.CleanupInterval > 0 {
		c.CleanupInterval = cfg.CleanupInterval
	}
	return c
}
