package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/auth"
)

const authTemplateDataKey = "auth_template_data"

// AuthTemplateData holds authentication info for templates.
type AuthTemplateData struct {
	Enabled   bool   // Whether local auth is active
	LoggedIn  bool   // Whether the page was requested with a session
	Username  string // Current user's username (empty if not logged in)
	CanWrite  bool
	CSRFToken string // CSRF token for forms (empty when auth disabled)
}

// AuthContextMiddleware injects authentication data into the Gin context.
// Templates read it as .Auth.
func AuthContextMiddleware(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		data := AuthTemplateData{
			Enabled:   enabled,
			CanWrite:  !enabled,
			CSRFToken: auth.GetCSRFToken(c),
		}

		if enabled && auth.GetUserID(c) != auth.DefaultUserID {
			data.LoggedIn = true
			data.Username = auth.GetUsername(c)
			data.CanWrite = auth.Allows(auth.GetUserRole(c), auth.PermEditCatalog)
		}

		c.Set(authTemplateDataKey, data)
		c.Next()
	}
}

// GetAuthTemplateData retrieves auth data from context for use in templates.
func GetAuthTemplateData(c *gin.Context) AuthTemplateData {
	if data, exists := c.Get(authTemplateDataKey); exists {
		if authData, ok := data.(AuthTemplateData); ok {
			return authData
		}
	}
	return AuthTemplateData{}
}
