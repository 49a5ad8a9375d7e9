package authors

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/query"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "authors.db")+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Author{}, &entities.Book{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db), db
}

func strPtr(s string) *string {
	return &s
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo, _ := setupTestDB(t)

	birth := entities.NewDate(1882, 1, 18)
	author := &entities.Author{Name: "A.A. Milne", Email: strPtr("milne@example.com"), BirthDate: &birth}
	require.NoError(t, repo.Create(author))
	assert.NotZero(t, author.ID)

	found, err := repo.GetByID(author.ID)
	require.NoError(t, err)
	assert.Equal(t, "A.A. Milne", found.Name)
	assert.Equal(t, "milne@example.com", *found.Email)
	assert.Equal(t, "1882-01-18", found.BirthDate.String())

	_, err = repo.GetByID(999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_Update(t *testing.T) {
	repo, _ := setupTestDB(t)

	author := &entities.Author{Name: "Terry Pratchett", Email: strPtr("terry@example.com")}
	require.NoError(t, repo.Create(author))

	author.Bio = "Discworld"
	author.Email = nil
	require.NoError(t, repo.Update(author))

	found, err := repo.GetByID(author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Discworld", found.Bio)
	assert.Nil(t, found.Email)
}

func TestRepository_List(t *testing.T) {
	repo, _ := setupTestDB(t)

	for _, name := range []string{"Z.Z. Top", "A.A. Milne", "Mary Shelley"} {
		require.NoError(t, repo.Create(&entities.Author{Name: name, Bio: "Writer of " + name}))
	}

	t.Run("default ordering is by name", func(t *testing.T) {
		authors, total, err := repo.List(query.Listing{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, authors, 3)
		assert.Equal(t, "A.A. Milne", authors[0].Name)
		assert.Equal(t, "Z.Z. Top", authors[2].Name)
	})

	t.Run("search and ordering", func(t *testing.T) {
		authors, total, err := repo.List(query.Listing{
			Filters: []query.Scope{query.SearchAuthors("writer")},
			Order:   query.AuthorOrdering.Clause("-name"),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, "Z.Z. Top", authors[0].Name)

		authors, total, err = repo.List(query.Listing{Filters: []query.Scope{query.SearchAuthors("shelley")}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Mary Shelley", authors[0].Name)
	})

	t.Run("paginated", func(t *testing.T) {
		page := query.Page{Number: 2, Size: 2}
		authors, total, err := repo.List(query.Listing{Page: &page})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, authors, 1)
		assert.Equal(t, "Z.Z. Top", authors[0].Name)
	})
}

func TestRepository_Delete(t *testing.T) {
	repo, db := setupTestDB(t)

	author := &entities.Author{Name: "Neil Gaiman"}
	require.NoError(t, repo.Create(author))
	book := &entities.Book{Title: "Coraline"}
	require.NoError(t, db.Create(book).Error)
	require.NoError(t, db.Model(book).Association("Authors").Append(author))

	deleted, err := repo.Delete(author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Neil Gaiman", deleted.Name)

	_, err = repo.GetByID(author.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var remaining entities.Book
	require.NoError(t, db.Preload("Authors").First(&remaining, book.ID).Error)
	assert.Equal(t, "Coraline", remaining.Title)
	assert.Empty(t, remaining.Authors)

	_, err = repo.Delete(author.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_GetWithBooks(t *testing.T) {
	repo, db := setupTestDB(t)

	author := &entities.Author{Name: "J.R.R. Tolkien"}
	require.NoError(t, repo.Create(author))
	for _, title := range []string{"The Silmarillion", "The Hobbit"} {
		book := &entities.Book{Title: title}
		require.NoError(t, db.Create(book).Error)
		require.NoError(t, db.Model(book).Association("Authors").Append(author))
	}

	found, err := repo.GetWithBooks(author.ID)
	require.NoError(t, err)
	require.Len(t, found.Books, 2)
	assert.Equal(t, "The Hobbit", found.Books[0].Title)

	byIDs, err := repo.FindByIDs([]uint{author.ID, 404})
	require.NoError(t, err)
	assert.Len(t, byIDs, 1)
}
