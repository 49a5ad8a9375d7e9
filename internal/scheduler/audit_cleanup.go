// Package scheduler triggers periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// CleanupEnqueuer schedules an audit cleanup run.
type CleanupEnqueuer interface {
	EnqueueAuditCleanup(retentionDays int) error
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// AuditCleanupScheduler enqueues an audit cleanup on a cron schedule.
type AuditCleanupScheduler struct {
	enqueuer      CleanupEnqueuer
	schedule      string
	retentionDays int

	cron    *cron.Cron
	entryID cron.EntryID
	parsed  cron.Schedule
	mu      sync.RWMutex
	running bool
}

// NewAuditCleanupScheduler creates a scheduler. It does nothing until Start.
func NewAuditCleanupScheduler(enqueuer CleanupEnqueuer, schedule string, retentionDays int) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		enqueuer:      enqueuer,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(parser)),
	}
}

// Start registers the job and starts the cron loop. The scheduler stops
// when ctx is cancelled.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	parsed, err := parser.Parse(s.schedule)
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	s.parsed = parsed
	s.entryID = s.cron.Schedule(parsed, cron.FuncJob(s.run))
	s.cron.Start()
	s.running = true

	log.WithFields(log.Fields{
		"schedule":       s.schedule,
		"retention_days": s.retentionDays,
		"next_run":       parsed.Next(time.Now()),
	}).Info("Audit cleanup scheduler started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a running job and stops the scheduler.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.running = false

	log.Info("Audit cleanup scheduler stopped")
}

// RunNow enqueues a cleanup immediately.
func (s *AuditCleanupScheduler) RunNow() error {
	return s.enqueuer.EnqueueAuditCleanup(s.retentionDays)
}

// NextRun returns the next scheduled run, or nil when stopped.
func (s *AuditCleanupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return nil
	}
	next := s.parsed.Next(time.Now())
	return &next
}

func (s *AuditCleanupScheduler) run() {
	if err := s.RunNow(); err != nil {
		log.WithError(err).Error("Failed to enqueue audit cleanup")
		return
	}
	log.WithField("retention_days", s.retentionDays).Info("Audit cleanup enqueued")
}
