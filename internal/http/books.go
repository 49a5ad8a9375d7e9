package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/query"
	"github.com/mrlokans/bookstore/internal/serializers"
)

const entityBook = "book"

type BooksController struct {
	store     BookStore
	authors   serializers.AuthorLookup
	recorder  ChangeRecorder
	paginator query.Paginator

	// expensiveMinPrice is the min_price used by ExpensiveBooks when the
	// request does not supply one.
	expensiveMinPrice string
}

func NewBooksController(store BookStore, authors serializers.AuthorLookup, recorder ChangeRecorder, paginator query.Paginator, expensiveMinPrice string) *BooksController {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if strings.TrimSpace(expensiveMinPrice) == "" {
		expensiveMinPrice = config.DefaultExpensiveBooksMinPrice
	}
	return &BooksController{
		store:             store,
		authors:           authors,
		recorder:          recorder,
		paginator:         paginator,
		expensiveMinPrice: expensiveMinPrice,
	}
}

// RegisterRoutes mounts the book resource on group, which is expected to be
// rooted at /api/books.
func (bc *BooksController) RegisterRoutes(group gin.IRoutes) {
	group.GET("/", bc.List)
	group.POST("/", bc.Create)
	group.GET("/by_genre/", bc.ByGenre)
	group.GET("/expensive_books/", bc.ExpensiveBooks)
	group.GET("/:id/", bc.Retrieve)
	group.PUT("/:id/", bc.Update)
	group.PATCH("/:id/", bc.PartialUpdate)
	group.DELETE("/:id/", bc.Delete)
}

// List returns a page of books in the list shape.
// GET /api/books/?title=&genre=&authors=&min_price=&max_price=&search=&ordering=&page=
func (bc *BooksController) List(c *gin.Context) {
	values := c.Request.URL.Query()
	filter, err := query.ParseBookFilter(values)
	if err != nil {
		respondError(c, err, "parse book filter")
		return
	}
	page, err := bc.paginator.Page(values)
	if err != nil {
		respondError(c, err, "list books")
		return
	}

	books, total, err := bc.store.List(query.Listing{
		Filters: []query.Scope{filter.Scope(), query.SearchBooks(values.Get("search"))},
		Order:   query.BookOrdering.Clause(values.Get("ordering")),
		Page:    &page,
	})
	if err != nil {
		respondError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, query.NewEnvelope(absoluteURL(c), page, total, serializers.NewBooks(books, serializers.ShapeList)))
}

// ByGenre returns every book whose genre contains the genre parameter.
// GET /api/books/by_genre/?genre=
func (bc *BooksController) ByGenre(c *gin.Context) {
	bc.unpaginated(c, query.GenreScope(c.Query("genre")), "books by genre")
}

// ExpensiveBooks returns every book priced at or above min_price.
// GET /api/books/expensive_books/?min_price=
func (bc *BooksController) ExpensiveBooks(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("min_price"))
	if raw == "" {
		raw = bc.expensiveMinPrice
	}
	minPrice, err := query.ParsePriceBound(raw, true)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"min_price": []string{"Enter a number."}})
		return
	}
	bc.unpaginated(c, query.MinPriceScope(minPrice), "expensive books")
}

func (bc *BooksController) unpaginated(c *gin.Context, scope query.Scope, context string) {
	books, _, err := bc.store.List(query.Listing{
		Filters: []query.Scope{scope},
		Order:   query.BookOrdering.Default(),
	})
	if err != nil {
		respondError(c, err, context)
		return
	}
	c.JSON(http.StatusOK, serializers.NewBooks(books, serializers.ShapeDetail))
}

// Create adds a book and links the authors listed in author_ids.
// POST /api/books/
func (bc *BooksController) Create(c *gin.Context) {
	payload, err := serializers.ReadPayload(c.Request)
	if err != nil {
		respondError(c, err, "read book payload")
		return
	}
	input, err := serializers.DecodeBook(payload, serializers.ModeCreate, bc.authors)
	if err != nil {
		respondError(c, err, "decode book")
		return
	}

	var book entities.Book
	input.Apply(&book)
	if err := bc.store.Create(&book, input.AuthorIDs); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	saved, err := bc.store.GetByID(book.ID)
	if err != nil {
		respondInternalError(c, err, "reload book")
		return
	}

	out := serializers.NewBookDetail(*saved)
	bc.recorder.RecordChange(auth.ActorID(c), entities.AuditActionCreate, entityBook, saved.ID, saved.String(), nil, out)
	c.JSON(http.StatusCreated, out)
}

// Retrieve returns one book in the detail shape.
// GET /api/books/:id/
func (bc *BooksController) Retrieve(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := bc.store.GetByID(id)
	if err != nil {
		respondError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, serializers.NewBookDetail(*book))
}

// Update replaces a book.
// PUT /api/books/:id/
func (bc *BooksController) Update(c *gin.Context) {
	bc.update(c, serializers.ModeUpdate)
}

// PartialUpdate changes the supplied fields of a book.
// PATCH /api/books/:id/
func (bc *BooksController) PartialUpdate(c *gin.Context) {
	bc.update(c, serializers.ModePartial)
}

func (bc *BooksController) update(c *gin.Context, mode serializers.Mode) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := bc.store.GetByID(id)
	if err != nil {
		respondError(c, err, "get book")
		return
	}
	before := serializers.NewBookDetail(*book)

	payload, err := serializers.ReadPayload(c.Request)
	if err != nil {
		respondError(c, err, "read book payload")
		return
	}
	input, err := serializers.DecodeBook(payload, mode, bc.authors)
	if err != nil {
		respondError(c, err, "decode book")
		return
	}

	input.Apply(book)
	if err := bc.store.Update(book, input.AuthorIDs); err != nil {
		respondInternalError(c, err, "update book")
		return
	}

	saved, err := bc.store.GetByID(book.ID)
	if err != nil {
		respondInternalError(c, err, "reload book")
		return
	}

	out := serializers.NewBookDetail(*saved)
	bc.recorder.RecordChange(auth.ActorID(c), entities.AuditActionUpdate, entityBook, saved.ID, saved.String(), before, out)
	c.JSON(http.StatusOK, out)
}

// Delete removes a book and its author links.
// DELETE /api/books/:id/
func (bc *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := bc.store.Delete(id)
	if err != nil {
		respondError(c, err, "delete book")
		return
	}

	bc.recorder.RecordChange(auth.ActorID(c), entities.AuditActionDelete, entityBook, book.ID, book.String(), serializers.NewBookDetail(*book), nil)
	c.Status(http.StatusNoContent)
}
