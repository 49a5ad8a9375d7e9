// Package readonly blocks catalog writes while the service runs in
// read-only mode.
package readonly

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Message is the detail returned for blocked writes.
const Message = "This catalog is read-only."

// ContextKey is set to true on every request while read-only mode is on.
const ContextKey = "read_only"

var safeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// Session endpoints stay writable so users can still sign in.
var allowedPrefixes = []string{
	"/login",
	"/logout",
	"/api/auth/",
}

// Middleware rejects unsafe methods with 403 when enabled.
type Middleware struct {
	enabled bool
}

func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

func (m *Middleware) Enabled() bool {
	return m != nil && m.enabled
}

// Handler returns the gin middleware. A disabled middleware passes
// everything through.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKey, m.Enabled())
		if !m.Enabled() || safeMethods[c.Request.Method] || allowed(c.Request.URL.Path) {
			c.Next()
			return
		}

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": Message})
			return
		}
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.String(http.StatusForbidden, Message)
		c.Abort()
	}
}

func allowed(path string) bool {
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
