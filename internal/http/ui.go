package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/logging"
	"github.com/mrlokans/bookstore/internal/query"
)

// AuthorPageStore is the author access needed by the HTML pages.
type AuthorPageStore interface {
	List(l query.Listing) ([]entities.Author, int64, error)
	GetWithBooks(id uint) (*entities.Author, error)
}

// BookPageStore is the book access needed by the HTML pages.
type BookPageStore interface {
	List(l query.Listing) ([]entities.Book, int64, error)
	GetByID(id uint) (*entities.Book, error)
}

// HistorySource returns the recorded changes of one catalog record.
type HistorySource interface {
	History(entityType string, id uint) ([]entities.AuditEvent, error)
}

// UIController renders the read-only catalog pages.
type UIController struct {
	authors AuthorPageStore
	books   BookPageStore
	history HistorySource
}

// NewUIController creates the page controller. history may be nil, which
// hides the change history on detail pages.
func NewUIController(authors AuthorPageStore, books BookPageStore, history HistorySource) *UIController {
	return &UIController{
		authors: authors,
		books:   books,
		history: history,
	}
}

func (controller *UIController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/books/")
	})
	router.GET("/authors/", controller.AuthorsPage)
	router.GET("/authors/:id/", controller.AuthorPage)
	router.GET("/books/", controller.BooksPage)
	router.GET("/books/:id/", controller.BookPage)
}

func (controller *UIController) AuthorsPage(c *gin.Context) {
	authors, _, err := controller.authors.List(query.Listing{Order: query.AuthorOrdering.Default()})
	if err != nil {
		controller.renderError(c, err, "list authors")
		return
	}

	controller.render(c, http.StatusOK, "author_list", gin.H{
		"Title":   "Authors",
		"Authors": authors,
	})
}

func (controller *UIController) AuthorPage(c *gin.Context) {
	id, ok := controller.pageID(c)
	if !ok {
		return
	}

	author, err := controller.authors.GetWithBooks(id)
	if err != nil {
		controller.renderError(c, err, "get author")
		return
	}

	controller.render(c, http.StatusOK, "author_detail", gin.H{
		"Title":   author.Name,
		"Author":  author,
		"History": controller.changes(c, entityAuthor, author.ID),
	})
}

func (controller *UIController) BooksPage(c *gin.Context) {
	books, _, err := controller.books.List(query.Listing{Order: query.BookOrdering.Default()})
	if err != nil {
		controller.renderError(c, err, "list books")
		return
	}

	controller.render(c, http.StatusOK, "book_list", gin.H{
		"Title": "Books",
		"Books": books,
	})
}

func (controller *UIController) BookPage(c *gin.Context) {
	id, ok := controller.pageID(c)
	if !ok {
		return
	}

	book, err := controller.books.GetByID(id)
	if err != nil {
		controller.renderError(c, err, "get book")
		return
	}

	controller.render(c, http.StatusOK, "book_detail", gin.H{
		"Title":   book.Title,
		"Book":    book,
		"History": controller.changes(c, entityBook, book.ID),
	})
}

// changes returns the record's history for anonymous deployments and
// admins. A failed lookup hides the section instead of failing the page.
func (controller *UIController) changes(c *gin.Context, entityType string, id uint) []entities.AuditEvent {
	if controller.history == nil {
		return nil
	}
	if GetAuthTemplateData(c).Enabled && !auth.Allows(auth.GetUserRole(c), auth.PermViewHistory) {
		return nil
	}

	events, err := controller.history.History(entityType, id)
	if err != nil {
		logging.FromContext(c).WithError(err).WithField("entity_type", entityType).Warn("Failed to load change history")
		return nil
	}
	return events
}

func (controller *UIController) pageID(c *gin.Context) (uint, bool) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		controller.notFound(c)
		return 0, false
	}
	return id, true
}

func (controller *UIController) render(c *gin.Context, status int, name string, data gin.H) {
	data["Auth"] = GetAuthTemplateData(c)
	c.HTML(status, name, data)
}

func (controller *UIController) notFound(c *gin.Context) {
	controller.render(c, http.StatusNotFound, "error", gin.H{
		"Title":   "Page not found",
		"Message": "The page you requested does not exist.",
	})
}

func (controller *UIController) renderError(c *gin.Context, err error, context string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		controller.notFound(c)
		return
	}
	_ = c.Error(err)
	logging.FromContext(c).WithError(err).WithField("context", context).Error("Failed to render page")
	controller.render(c, http.StatusInternalServerError, "error", gin.H{
		"Title":   "Server error",
		"Message": "Something went wrong while loading this page.",
	})
}

// changedFields lists the field names of an event's changes, sorted.
func changedFields(raw datatypes.JSON) []string {
	var changes map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &changes) != nil {
		return nil
	}
	fields := lo.Keys(changes)
	slices.Sort(fields)
	return fields
}
