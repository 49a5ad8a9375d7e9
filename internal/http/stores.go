package http

import (
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/query"
)

// Each controller depends only on the store methods it uses. The
// repositories in internal/database satisfy these interfaces.

// AuthorStore provides author persistence.
type AuthorStore interface {
	List(l query.Listing) ([]entities.Author, int64, error)
	GetByID(id uint) (*entities.Author, error)
	GetWithBooks(id uint) (*entities.Author, error)
	FindByIDs(ids []uint) ([]entities.Author, error)
	Create(author *entities.Author) error
	Update(author *entities.Author) error
	Delete(id uint) (*entities.Author, error)
}

// BookStore provides book persistence. authorIDs replaces the book's author
// links; nil leaves them untouched on update.
type BookStore interface {
	List(l query.Listing) ([]entities.Book, int64, error)
	GetByID(id uint) (*entities.Book, error)
	Create(book *entities.Book, authorIDs []uint) error
	Update(book *entities.Book, authorIDs []uint) error
	Delete(id uint) (*entities.Book, error)
}

// ChangeRecorder writes the change history of catalog records.
type ChangeRecorder interface {
	RecordChange(actor *uint, action entities.AuditAction, entityType string, id uint, label string, before, after any)
}

// AuditLister reads the change history.
type AuditLister interface {
	List(l query.Listing) ([]entities.AuditEvent, int64, error)
}

// nopRecorder is used when no audit service is configured.
type nopRecorder struct{}

func (nopRecorder) RecordChange(*uint, entities.AuditAction, string, uint, string, any, any) {}
