// Package audit provides storage for the catalog change history.
package audit

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/query"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// ForEntity limits events to one entity type and, when id is non-nil, one
// record. A blank entity type matches everything.
func ForEntity(entityType string, id *uint) query.Scope {
	if entityType == "" && id == nil {
		return nil
	}
	return func(db *gorm.DB) *gorm.DB {
		if entityType != "" {
			db = db.Where("audit_events.entity_type = ?", entityType)
		}
		if id != nil {
			db = db.Where("audit_events.entity_id = ?", *id)
		}
		return db
	}
}

// List retrieves events matching the listing, newest first unless the
// listing orders otherwise.
func (r *Repository) List(l query.Listing) ([]entities.AuditEvent, int64, error) {
	var total int64
	if err := r.db.Model(&entities.AuditEvent{}).Scopes(l.Scopes()...).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit events: %w", err)
	}

	order := l.Order
	if order == "" {
		order = query.AuditOrdering.Default()
	}
	q := r.db.Model(&entities.AuditEvent{}).Scopes(l.Scopes()...).Order(order)
	if l.Page != nil {
		if err := l.Page.Resolve(total); err != nil {
			return nil, total, err
		}
		q = q.Offset(l.Page.Offset()).Limit(l.Page.Limit())
	}

	var events []entities.AuditEvent
	if err := q.Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit events: %w", err)
	}
	return events, total, nil
}

// GetEventsForEntity returns the full history of one record, newest first.
func (r *Repository) GetEventsForEntity(entityType string, id uint) ([]entities.AuditEvent, error) {
	var events []entities.AuditEvent
	err := r.db.Scopes(ForEntity(entityType, &id)).Order(query.AuditOrdering.Default()).Find(&events).Error
	return events, err
}

// DeleteOldEvents removes audit events older than the specified time.
// Returns the number of deleted events.
func (r *Repository) DeleteOldEvents(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
