package serializers

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/mrlokans/bookstore/internal/entities"
)

// Shape selects the book representation for an operation.
type Shape int

const (
	// ShapeDetail embeds full author objects.
	ShapeDetail Shape = iota
	// ShapeList embeds author display names.
	ShapeList
)

type BookDetail struct {
	ID              uint            `json:"id"`
	Title           string          `json:"title"`
	Authors         []Author        `json:"authors"`
	ISBN            *string         `json:"isbn"`
	PublicationDate *entities.Date  `json:"publication_date"`
	Price           *entities.Price `json:"price"`
	Genre           string          `json:"genre"`
}

type BookListItem struct {
	ID              uint            `json:"id"`
	Title           string          `json:"title"`
	Authors         []string        `json:"authors"`
	ISBN            *string         `json:"isbn"`
	PublicationDate *entities.Date  `json:"publication_date"`
	Price           *entities.Price `json:"price"`
	Genre           string          `json:"genre"`
}

func NewBookDetail(b entities.Book) BookDetail {
	return BookDetail{
		ID:              b.ID,
		Title:           b.Title,
		Authors:         NewAuthors(b.Authors),
		ISBN:            b.ISBN,
		PublicationDate: b.PublicationDate,
		Price:           b.Price,
		Genre:           b.Genre,
	}
}

func NewBookListItem(b entities.Book) BookListItem {
	return BookListItem{
		ID:              b.ID,
		Title:           b.Title,
		Authors:         b.AuthorNames(),
		ISBN:            b.ISBN,
		PublicationDate: b.PublicationDate,
		Price:           b.Price,
		Genre:           b.Genre,
	}
}

// NewBook renders one book in the requested shape.
func NewBook(b entities.Book, shape Shape) any {
	if shape == ShapeList {
		return NewBookListItem(b)
	}
	return NewBookDetail(b)
}

// NewBooks renders books in the requested shape.
func NewBooks(books []entities.Book, shape Shape) []any {
	return lo.Map(books, func(b entities.Book, _ int) any {
		return NewBook(b, shape)
	})
}

// AuthorLookup resolves author ids referenced by a book payload.
type AuthorLookup interface {
	FindByIDs(ids []uint) ([]entities.Author, error)
}

type bookRules struct {
	Title string `json:"title" validate:"required,max=200"`
	Genre string `json:"genre" validate:"max=50"`
}

// BookInput is a validated book payload. Nil fields were not supplied.
type BookInput struct {
	Title           *string
	ISBN            **string
	PublicationDate **entities.Date
	Price           **entities.Price
	Genre           *string
	// AuthorIDs is nil when author_ids was absent and replaces the book's
	// authors otherwise.
	AuthorIDs []uint
}

// DecodeBook validates a payload. The nested authors key is read-only and
// ignored; links are written through author_ids.
func DecodeBook(p Payload, mode Mode, authors AuthorLookup) (*BookInput, error) {
	r := newFieldReader(p)
	in := &BookInput{}

	in.Title, _ = r.String("title", false)
	in.ISBN, _ = r.NullableString("isbn")
	in.PublicationDate, _ = r.NullableDate("publication_date")
	in.Price, _ = r.NullablePrice("price")
	in.Genre, _ = r.String("genre", true)
	in.AuthorIDs, _ = r.IDList("author_ids")

	if len(in.AuthorIDs) > 0 && !r.errs.Has("author_ids") {
		found, err := authors.FindByIDs(in.AuthorIDs)
		if err != nil {
			return nil, err
		}
		known := lo.SliceToMap(found, func(a entities.Author) (uint, bool) { return a.ID, true })
		for _, id := range in.AuthorIDs {
			if !known[id] {
				r.errs.Add("author_ids", fmt.Sprintf(MsgPkMissing, id))
			}
		}
	}

	rules := bookRules{Title: lo.FromPtr(in.Title), Genre: lo.FromPtr(in.Genre)}
	if err := checkStruct(rules, mode, r); err != nil {
		return nil, err
	}

	if err := r.errs.OrNil(); err != nil {
		return nil, err
	}
	return in, nil
}

// Apply copies the supplied scalar fields onto book. Author links are
// persisted separately from AuthorIDs.
func (in *BookInput) Apply(book *entities.Book) {
	if in.Title != nil {
		book.Title = *in.Title
	}
	if in.ISBN != nil {
		book.ISBN = *in.ISBN
	}
	if in.PublicationDate != nil {
		book.PublicationDate = *in.PublicationDate
	}
	if in.Price != nil {
		book.Price = *in.Price
	}
	if in.Genre != nil {
		book.Genre = *in.Genre
	}
}
