// Package books provides database operations for catalog books and their
// author associations.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetByID(123)
package books

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/query"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func preloadAuthors(db *gorm.DB) *gorm.DB {
	return db.Preload("Authors", func(db *gorm.DB) *gorm.DB {
		return db.Order(query.AuthorOrdering.Default())
	})
}

// List returns the books matching the listing, with authors loaded, and the
// total match count. A nil Page returns every match.
func (r *Repository) List(l query.Listing) ([]entities.Book, int64, error) {
	var total int64
	if err := r.db.Model(&entities.Book{}).Scopes(l.Scopes()...).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	order := l.Order
	if order == "" {
		order = query.BookOrdering.Default()
	}
	q := r.db.Model(&entities.Book{}).Scopes(l.Scopes()...).Scopes(preloadAuthors).Order(order)
	if l.Page != nil {
		if err := l.Page.Resolve(total); err != nil {
			return nil, total, err
		}
		q = q.Offset(l.Page.Offset()).Limit(l.Page.Limit())
	}

	var books []entities.Book
	if err := q.Find(&books).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	return books, total, nil
}

// GetByID retrieves a book with its authors. Missing rows return
// gorm.ErrRecordNotFound.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.Scopes(preloadAuthors).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Create inserts a book and links it to authorIDs in one transaction.
func (r *Repository) Create(book *entities.Book, authorIDs []uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(book).Error; err != nil {
			return err
		}
		return replaceAuthors(tx, book, authorIDs)
	})
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// Update writes every column of an existing book. When authorIDs is non-nil
// the author links are replaced by exactly that set.
func (r *Repository) Update(book *entities.Book, authorIDs []uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(book).Error; err != nil {
			return err
		}
		if authorIDs == nil {
			return nil
		}
		return replaceAuthors(tx, book, authorIDs)
	})
	if err != nil {
		return fmt.Errorf("failed to update book %d: %w", book.ID, err)
	}
	return nil
}

// Delete removes a book and its author links.
func (r *Repository) Delete(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(preloadAuthors).First(&book, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&book).Association("Authors").Clear(); err != nil {
			return fmt.Errorf("failed to unlink authors: %w", err)
		}
		return tx.Delete(&book).Error
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}

func replaceAuthors(tx *gorm.DB, book *entities.Book, authorIDs []uint) error {
	authors := []entities.Author{}
	if len(authorIDs) == 0 {
		book.Authors = authors
		return tx.Model(book).Association("Authors").Clear()
	}
	if err := tx.Where("id IN ?", authorIDs).Order(query.AuthorOrdering.Default()).Find(&authors).Error; err != nil {
		return err
	}
	if err := tx.Model(book).Association("Authors").Replace(authors); err != nil {
		return err
	}
	book.Authors = authors
	return nil
}
