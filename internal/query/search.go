package query

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/lo"

	"github.com/mrlokans/bookstore/internal/entities"
)

// SearchField renders a case-insensitive match of one search term.
type SearchField func(term string) sq.Sqlizer

// Column searches a plain column.
func Column(column string) SearchField {
	return func(term string) sq.Sqlizer {
		return IContains(column, term)
	}
}

// BookAuthorName searches the names of a book's authors.
func BookAuthorName(term string) sq.Sqlizer {
	sub := sq.Select("book_authors.book_id").
		From(entities.BookAuthorsTable).
		Join("authors ON authors.id = book_authors.author_id").
		Where(IContains("authors.name", term))
	return inSubquery("books.id", sub)
}

var (
	AuthorSearchFields = []SearchField{
		Column("authors.name"),
		Column("authors.email"),
		Column("authors.bio"),
	}
	BookSearchFields = []SearchField{
		Column("books.title"),
		Column("books.isbn"),
		Column("books.genre"),
		BookAuthorName,
	}
)

// SearchTerms splits a search parameter on whitespace and commas.
func SearchTerms(raw string) []string {
	terms := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	return lo.Uniq(terms)
}

// Search builds a predicate where every term matches at least one field.
func Search(raw string, fields []SearchField) sq.Sqlizer {
	terms := SearchTerms(raw)
	if len(terms) == 0 || len(fields) == 0 {
		return nil
	}
	all := sq.And{}
	for _, term := range terms {
		match := sq.Or{}
		for _, field := range fields {
			match = append(match, field(term))
		}
		all = append(all, match)
	}
	return all
}

func SearchAuthors(raw string) Scope {
	return Where(Search(raw, AuthorSearchFields))
}

func SearchBooks(raw string) Scope {
	return Where(Search(raw, BookSearchFields))
}
