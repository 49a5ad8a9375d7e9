// Package audit records who changed what in the catalog.
package audit

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/query"
)

const maxDescriptionLength = 500

// FieldChange is one entry of AuditEvent.Changes.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

const queueSize = 256

// Service provides high-level audit logging. Events are stamped when they
// are recorded and stored in that order by a single background writer;
// Wait blocks until all pending writes are stored.
type Service struct {
	repo    *audit.Repository
	queue   chan *entities.AuditEvent
	done    chan struct{}
	pending sync.WaitGroup
	stop    sync.Once
}

// NewService creates a new audit service and starts its writer.
func NewService(repo *audit.Repository) *Service {
	s := &Service{
		repo:  repo,
		queue: make(chan *entities.AuditEvent, queueSize),
		done:  make(chan struct{}),
	}
	go s.write()
	return s
}

// Log stores an event synchronously.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync queues an event for the background writer. It blocks while the
// queue is full.
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	s.pending.Add(1)
	s.queue <- event
}

func (s *Service) write() {
	defer close(s.done)
	for event := range s.queue {
		if err := s.repo.LogEvent(event); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"action":      event.Action,
				"entity_type": event.EntityType,
			}).Error("Failed to store audit event")
		}
		s.pending.Done()
	}
}

// Wait blocks until queued events have been stored.
func (s *Service) Wait() {
	s.pending.Wait()
}

// Close stores the remaining queued events and stops the writer. Events
// must not be recorded after Close.
func (s *Service) Close() {
	s.stop.Do(func() { close(s.queue) })
	<-s.done
}

// RecordChange logs a create, update or delete of a catalog record. before
// and after are the serialized representations; either may be nil.
func (s *Service) RecordChange(actor *uint, action entities.AuditAction, entityType string, id uint, label string, before, after any) {
	changes, err := Diff(before, after)
	if err != nil {
		log.WithError(err).WithField("entity_type", entityType).Warn("Failed to compute audit diff")
	}
	if action == entities.AuditActionUpdate && len(changes) == 0 {
		return
	}

	event := &entities.AuditEvent{
		UserID:      lo.FromPtr(actor),
		Action:      action,
		EntityType:  entityType,
		EntityID:    &id,
		Description: truncate(describe(action, entityType, label), maxDescriptionLength),
		Status:      entities.AuditStatusSuccess,
	}
	if len(changes) > 0 {
		if raw, err := json.Marshal(changes); err == nil {
			event.Changes = datatypes.JSON(raw)
		}
	}
	s.LogAsync(event)
}

// RecordLogin logs a login attempt.
func (s *Service) RecordLogin(userID *uint, username, ip string, ok bool) {
	event := &entities.AuditEvent{
		UserID:      lo.FromPtr(userID),
		Action:      entities.AuditActionLogin,
		EntityType:  "user",
		EntityID:    userID,
		Description: truncate("Login as "+username, maxDescriptionLength),
		IPAddress:   ip,
		Status:      entities.AuditStatusSuccess,
	}
	if !ok {
		event.Status = entities.AuditStatusFailed
	}
	s.LogAsync(event)
}

// List returns events for the audit API.
func (s *Service) List(l query.Listing) ([]entities.AuditEvent, int64, error) {
	return s.repo.List(l)
}

// History returns every event recorded for one record, newest first.
func (s *Service) History(entityType string, id uint) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsForEntity(entityType, id)
}

// DeleteOldEvents removes events older than the retention period.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(time.Now().Add(-retention))
}

// Diff compares the JSON representations of before and after and returns
// the fields whose values differ.
func Diff(before, after any) (map[string]FieldChange, error) {
	old, err := asMap(before)
	if err != nil {
		return nil, err
	}
	cur, err := asMap(after)
	if err != nil {
		return nil, err
	}

	fields := lo.Uniq(append(lo.Keys(old), lo.Keys(cur)...))
	sort.Strings(fields)

	changes := make(map[string]FieldChange)
	for _, f := range fields {
		if f == "id" {
			continue
		}
		o, n := old[f], cur[f]
		if reflect.DeepEqual(o, n) {
			continue
		}
		changes[f] = FieldChange{Old: o, New: n}
	}
	return changes, nil
}

func asMap(v any) (map[string]any, error) {
	if v == nil || reflect.ValueOf(v).Kind() == reflect.Ptr && reflect.ValueOf(v).IsNil() {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode %T: %w", v, err)
	}
	return m, nil
}

func describe(action entities.AuditAction, entityType, label string) string {
	switch action {
	case entities.AuditActionCreate:
		return fmt.Sprintf("Added %s %q", entityType, label)
	case entities.AuditActionDelete:
		return fmt.Sprintf("Deleted %s %q", entityType, label)
	default:
		return fmt.Sprintf("Changed %s %q", entityType, label)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
