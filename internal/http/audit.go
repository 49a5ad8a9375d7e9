package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	auditrepo "github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/query"
)

type AuditController struct {
	events    AuditLister
	paginator query.Paginator
}

func NewAuditController(events AuditLister, paginator query.Paginator) *AuditController {
	return &AuditController{
		events:    events,
		paginator: paginator,
	}
}

// List returns a page of audit events, newest first.
// GET /api/audit/?entity_type=&entity_id=&ordering=&page=
func (ac *AuditController) List(c *gin.Context) {
	values := c.Request.URL.Query()

	var entityID *uint
	if raw := strings.TrimSpace(values.Get("entity_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"entity_id": []string{"Enter a whole number."}})
			return
		}
		v := uint(id)
		entityID = &v
	}

	page, err := ac.paginator.Page(values)
	if err != nil {
		respondError(c, err, "list audit events")
		return
	}

	events, total, err := ac.events.List(query.Listing{
		Filters: []query.Scope{auditrepo.ForEntity(strings.TrimSpace(values.Get("entity_type")), entityID)},
		Order:   query.AuditOrdering.Clause(values.Get("ordering")),
		Page:    &page,
	})
	if err != nil {
		respondError(c, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, query.NewEnvelope(absoluteURL(c), page, total, events))
}
