// Package query turns request parameters into GORM scopes for the catalog
// list endpoints.
//
// Filter predicates are built with squirrel and handed to GORM as WHERE
// fragments, so every scope composes with the others:
//
//	filter, err := query.ParseBookFilter(c.Request.URL.Query())
//	listing := query.Listing{
//		Filters: []query.Scope{filter.Scope(), query.SearchBooks(c.Query("search"))},
//		Order:   query.BookOrdering.Clause(c.Query("ordering")),
//		Page:    &page,
//	}
//	books, total, err := repo.List(listing)
package query
