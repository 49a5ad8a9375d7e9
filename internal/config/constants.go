package config

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./bookstore.db"

	// DefaultPageSize is the number of results per API list page
	DefaultPageSize = 10

	// DefaultMaxPageSize caps the page_size query parameter
	DefaultMaxPageSize = 100

	// DefaultExpensiveBooksMinPrice is the lower bound used by the expensive_books action
	DefaultExpensiveBooksMinPrice = "50"
)
