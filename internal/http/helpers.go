package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/logging"
	"github.com/mrlokans/bookstore/internal/query"
	"github.com/mrlokans/bookstore/internal/serializers"
)

// Error details shared by every JSON endpoint.
const (
	DetailNotFound    = "Not found."
	DetailServerError = "A server error occurred."
)

// ErrorResponse is the body of every non-validation API error.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// fieldErrors is implemented by errors that carry per-field messages.
type fieldErrors interface {
	Fields() map[string][]string
}

// --- Error Response Helpers ---

func respondDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Detail: detail})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context) {
	respondDetail(c, http.StatusNotFound, DetailNotFound)
}

// respondInternalError logs the error and sends a 500 response. The error
// text is never sent to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	_ = c.Error(err)
	logging.FromContext(c).WithError(err).WithField("context", context).Error("Internal error")
	respondDetail(c, http.StatusInternalServerError, DetailServerError)
}

// respondError maps an error from the decoding, query or storage layers to
// its response.
func respondError(c *gin.Context, err error, context string) {
	var fe fieldErrors
	var pe *serializers.ParseError
	switch {
	case errors.As(err, &fe):
		c.AbortWithStatusJSON(http.StatusBadRequest, fe.Fields())
	case errors.As(err, &pe):
		respondDetail(c, http.StatusBadRequest, pe.Detail)
	case errors.Is(err, query.ErrInvalidPage):
		respondDetail(c, http.StatusNotFound, query.ErrInvalidPage.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondNotFound(c)
	default:
		respondInternalError(c, err, context)
	}
}

// --- Parameter Parsing ---

// parseIDParam extracts a positive integer id from the URL. Anything else
// does not name a record, so the caller gets a 404.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := parseUintParam(c.Param(paramName))
	if err != nil {
		respondNotFound(c)
		return 0, false
	}
	return id, true
}

var errInvalidID = errors.New("invalid id")

func parseUintParam(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

// absoluteURL rebuilds the request URL including scheme and host, for
// pagination links.
func absoluteURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
	}
}
