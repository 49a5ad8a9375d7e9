package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/query"
	"github.com/mrlokans/bookstore/internal/serializers"
)

const entityAuthor = "author"

type AuthorsController struct {
	store     AuthorStore
	recorder  ChangeRecorder
	paginator query.Paginator
}

func NewAuthorsController(store AuthorStore, recorder ChangeRecorder, paginator query.Paginator) *AuthorsController {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &AuthorsController{
		store:     store,
		recorder:  recorder,
		paginator: paginator,
	}
}

// RegisterRoutes mounts the author resource on group, which is expected to
// be rooted at /api/authors.
func (ac *AuthorsController) RegisterRoutes(group gin.IRoutes) {
	group.GET("/", ac.List)
	group.POST("/", ac.Create)
	group.GET("/:id/", ac.Retrieve)
	group.PUT("/:id/", ac.Update)
	group.PATCH("/:id/", ac.PartialUpdate)
	group.DELETE("/:id/", ac.Delete)
}

// List returns a page of authors.
// GET /api/authors/?search=&ordering=&page=&page_size=
func (ac *AuthorsController) List(c *gin.Context) {
	values := c.Request.URL.Query()
	page, err := ac.paginator.Page(values)
	if err != nil {
		respondError(c, err, "list authors")
		return
	}

	authors, total, err := ac.store.List(query.Listing{
		Filters: []query.Scope{query.SearchAuthors(values.Get("search"))},
		Order:   query.AuthorOrdering.Clause(values.Get("ordering")),
		Page:    &page,
	})
	if err != nil {
		respondError(c, err, "list authors")
		return
	}

	c.JSON(http.StatusOK, query.NewEnvelope(absoluteURL(c), page, total, serializers.NewAuthors(authors)))
}

// Create adds an author.
// POST /api/authors/
func (ac *AuthorsController) Create(c *gin.Context) {
	payload, err := serializers.ReadPayload(c.Request)
	if err != nil {
		respondError(c, err, "read author payload")
		return
	}
	input, err := serializers.DecodeAuthor(payload, serializers.ModeCreate)
	if err != nil {
		respondError(c, err, "decode author")
		return
	}

	var author entities.Author
	input.Apply(&author)
	if err := ac.store.Create(&author); err != nil {
		respondInternalError(c, err, "create author")
		return
	}

	out := serializers.NewAuthor(author)
	ac.recorder.RecordChange(auth.ActorID(c), entities.AuditActionCreate, entityAuthor, author.ID, author.String(), nil, out)
	c.JSON(http.StatusCreated, out)
}

// Retrieve returns one author.
// GET /api/authors/:id/
func (ac *AuthorsController) Retrieve(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	author, err := ac.store.GetByID(id)
	if err != nil {
		respondError(c, err, "get author")
		return
	}
	c.JSON(http.StatusOK, serializers.NewAuthor(*author))
}

// Update replaces an author.
// PUT /api/authors/:id/
func (ac *AuthorsController) Update(c *gin.Context) {
	ac.update(c, serializers.ModeUpdate)
}

// PartialUpdate changes the supplied fields of an author.
// PATCH /api/authors/:id/
func (ac *AuthorsController) PartialUpdate(c *gin.Context) {
	ac.update(c, serializers.ModePartial)
}

func (ac *AuthorsController) update(c *gin.Context, mode serializers.Mode) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	author, err := ac.store.GetByID(id)
	if err != nil {
		respondError(c, err, "get author")
		return
	}
	before := serializers.NewAuthor(*author)

	payload, err := serializers.ReadPayload(c.Request)
	if err != nil {
		respondError(c, err, "read author payload")
		return
	}
	input, err := serializers.DecodeAuthor(payload, mode)
	if err != nil {
		respondError(c, err, "decode author")
		return
	}

	input.Apply(author)
	if err := ac.store.Update(author); err != nil {
		respondInternalError(c, err, "update author")
		return
	}

	out := serializers.NewAuthor(*author)
	ac.recorder.RecordChange(auth.ActorID(c), entities.AuditActionUpdate, entityAuthor, author.ID, author.String(), before, out)
	c.JSON(http.StatusOK, out)
}

// Delete removes an author. Its books are kept.
// DELETE /api/authors/:id/
func (ac *AuthorsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	author, err := ac.store.Delete(id)
	if err != nil {
		respondError(c, err, "delete author")
		return
	}

	ac.recorder.RecordChange(auth.ActorID(c), entities.AuditActionDelete, entityAuthor, author.ID, author.String(), serializers.NewAuthor(*author), nil)
	c.Status(http.StatusNoContent)
}
