// Package authors provides database operations for catalog authors.
package authors

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/query"
)

// Repository handles all author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns the authors matching the listing and the total match count.
func (r *Repository) List(l query.Listing) ([]entities.Author, int64, error) {
	var total int64
	base := r.db.Model(&entities.Author{}).Scopes(l.Scopes()...)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count authors: %w", err)
	}

	q := r.db.Model(&entities.Author{}).Scopes(l.Scopes()...).Order(orderOrDefault(l.Order))
	if l.Page != nil {
		if err := l.Page.Resolve(total); err != nil {
			return nil, total, err
		}
		q = q.Offset(l.Page.Offset()).Limit(l.Page.Limit())
	}

	var authors []entities.Author
	if err := q.Find(&authors).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list authors: %w", err)
	}
	return authors, total, nil
}

// GetByID retrieves an author. Missing rows return gorm.ErrRecordNotFound.
func (r *Repository) GetByID(id uint) (*entities.Author, error) {
	var author entities.Author
	if err := r.db.First(&author, id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

// GetWithBooks retrieves an author together with its books ordered by title.
func (r *Repository) GetWithBooks(id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.Preload("Books", func(db *gorm.DB) *gorm.DB {
		return db.Order(query.BookOrdering.Default())
	}).First(&author, id).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// FindByIDs returns the authors with the given ids, ordered by name. Unknown
// ids are skipped.
func (r *Repository) FindByIDs(ids []uint) ([]entities.Author, error) {
	var authors []entities.Author
	if len(ids) == 0 {
		return authors, nil
	}
	err := r.db.Where("id IN ?", ids).Order(query.AuthorOrdering.Default()).Find(&authors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}
	return authors, nil
}

func (r *Repository) Create(author *entities.Author) error {
	if err := r.db.Omit(clause.Associations).Create(author).Error; err != nil {
		return fmt.Errorf("failed to create author: %w", err)
	}
	return nil
}

// Update writes every column of an existing author.
func (r *Repository) Update(author *entities.Author) error {
	if err := r.db.Omit(clause.Associations).Save(author).Error; err != nil {
		return fmt.Errorf("failed to update author %d: %w", author.ID, err)
	}
	return nil
}

// Delete removes an author and its book links. The books themselves are kept.
func (r *Repository) Delete(id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&author, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&author).Association("Books").Clear(); err != nil {
			return fmt.Errorf("failed to unlink books: %w", err)
		}
		return tx.Delete(&author).Error
	})
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Author{}).Count(&count).Error
	return count, err
}

func orderOrDefault(order string) string {
	if order == "" {
		return query.AuthorOrdering.Default()
	}
	return order
}
