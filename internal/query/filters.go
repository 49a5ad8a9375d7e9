package query

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/lo"

	"github.com/mrlokans/bookstore/internal/entities"
)

const msgEnterNumber = "Enter a number."

// FilterError maps a query parameter to the reasons its value was rejected.
type FilterError map[string][]string

func (e FilterError) Error() string {
	keys := lo.Keys(map[string][]string(e))
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e[k], " "))
	}
	return "invalid filter parameters: " + strings.Join(parts, "; ")
}

// Fields exposes the per-parameter messages for error responses.
func (e FilterError) Fields() map[string][]string {
	return e
}

func (e FilterError) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// BookFilter holds the named predicates accepted by the book list endpoint.
// Zero values impose no constraint.
type BookFilter struct {
	Title     string
	Genre     string
	AuthorIDs []uint
	MinPrice  *entities.Price
	MaxPrice  *entities.Price
}

// ParseBookFilter reads title, genre, authors, min_price and max_price from
// the query string. Unknown parameters are ignored; blank values are skipped.
func ParseBookFilter(values url.Values) (BookFilter, error) {
	var f BookFilter
	errs := FilterError{}

	// Text filters are trimmed like form input; by_genre is not.
	f.Title = strings.TrimSpace(values.Get("title"))
	f.Genre = strings.TrimSpace(values.Get("genre"))

	for _, raw := range values["authors"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil || id == 0 {
				errs.add("authors", fmt.Sprintf("%q is not a valid value.", part))
				continue
			}
			f.AuthorIDs = append(f.AuthorIDs, uint(id))
		}
	}
	f.AuthorIDs = lo.Uniq(f.AuthorIDs)

	if raw := strings.TrimSpace(values.Get("min_price")); raw != "" {
		p, err := ParsePriceBound(raw, true)
		if err != nil {
			errs.add("min_price", msgEnterNumber)
		} else {
			f.MinPrice = &p
		}
	}
	if raw := strings.TrimSpace(values.Get("max_price")); raw != "" {
		p, err := ParsePriceBound(raw, false)
		if err != nil {
			errs.add("max_price", msgEnterNumber)
		} else {
			f.MaxPrice = &p
		}
	}

	if len(errs) > 0 {
		return BookFilter{}, errs
	}
	return f, nil
}

// ParsePriceBound parses a price used as an inclusive bound. Values with more
// than two decimals are rounded towards the inside of the range: up for a
// lower bound, down for an upper bound. Rounding works on the decimal digits,
// so "19.990" is exactly 19.99.
func ParsePriceBound(raw string, lower bool) (entities.Price, error) {
	p, err := entities.ParsePrice(raw)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, entities.ErrInvalidPrice) {
		return 0, err
	}

	s := strings.TrimSpace(raw)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimLeft(s, "+-")
	whole, frac, _ := strings.Cut(s, ".")

	var dropped string
	if len(frac) > entities.PriceDecimalPlaces {
		frac, dropped = frac[:entities.PriceDecimalPlaces], frac[entities.PriceDecimalPlaces:]
	}
	frac += strings.Repeat("0", entities.PriceDecimalPlaces-len(frac))
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}

	cents, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil || cents == math.MaxInt64 {
		return 0, entities.ErrInvalidPrice
	}
	// Truncation moved the value towards zero; step one cent away from zero
	// when that left it outside the bound.
	if strings.Trim(dropped, "0") != "" && lower != negative {
		cents++
	}
	if negative {
		cents = -cents
	}
	return entities.Price(cents), nil
}

// IsEmpty reports whether the filter imposes no constraint.
func (f BookFilter) IsEmpty() bool {
	return f.Title == "" && f.Genre == "" && len(f.AuthorIDs) == 0 && f.MinPrice == nil && f.MaxPrice == nil
}

// Predicate combines every supplied constraint with AND.
func (f BookFilter) Predicate() sq.Sqlizer {
	preds := sq.And{}
	if f.Title != "" {
		preds = append(preds, IContains("books.title", f.Title))
	}
	if f.Genre != "" {
		preds = append(preds, IContains("books.genre", f.Genre))
	}
	if len(f.AuthorIDs) > 0 {
		preds = append(preds, booksWithAuthors(f.AuthorIDs))
	}
	if f.MinPrice != nil {
		preds = append(preds, sq.GtOrEq{"books.price": f.MinPrice.Cents()})
	}
	if f.MaxPrice != nil {
		preds = append(preds, sq.LtOrEq{"books.price": f.MaxPrice.Cents()})
	}
	if len(preds) == 0 {
		return nil
	}
	return preds
}

// Scope applies the filter to a books query.
func (f BookFilter) Scope() Scope {
	return Where(f.Predicate())
}

// booksWithAuthors matches books linked to any of the given authors. The
// subquery keeps each book at most once however many authors match.
func booksWithAuthors(ids []uint) sq.Sqlizer {
	sub := sq.Select("book_authors.book_id").
		From(entities.BookAuthorsTable).
		Where(sq.Eq{"book_authors.author_id": ids})
	return inSubquery("books.id", sub)
}

func inSubquery(column string, sub sq.SelectBuilder) sq.Sqlizer {
	sql, args, err := sub.ToSql()
	if err != nil {
		return errSqlizer{err}
	}
	return sq.Expr(column+" IN ("+sql+")", args...)
}

type errSqlizer struct{ err error }

func (e errSqlizer) ToSql() (string, []interface{}, error) {
	return "", nil, e.err
}

// GenreScope is the case-insensitive genre match used by the by_genre action.
// The value is used as given, surrounding spaces included; an empty genre
// matches every book.
func GenreScope(genre string) Scope {
	if genre == "" {
		return nil
	}
	return Where(IContains("books.genre", genre))
}

// MinPriceScope keeps books priced at or above min.
func MinPriceScope(min entities.Price) Scope {
	return Where(sq.GtOrEq{"books.price": min.Cents()})
}
