// Package database provides the data access layer for the catalog.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── authors/         # Author CRUD
//	├── books/           # Book CRUD and author associations
//	└── audit/           # Change history
//
// Each sub-package provides a Repository type over a shared *gorm.DB:
//
//	db, err := database.NewDatabase("./bookstore.db", "warn")
//	authorsRepo := authors.NewRepository(db.DB)
//	booksRepo := books.NewRepository(db.DB)
//
// List methods take a query.Listing built from request parameters, so
// filtering, search, ordering and pagination stay out of the repositories.
package database
