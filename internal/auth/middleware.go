package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyRole     = "auth_role"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone      AuthType = "none"
	AuthTypeAnonymous AuthType = "anonymous"
	AuthTypeSession   AuthType = "session"
	AuthTypeBearer    AuthType = "bearer"
)

// DefaultUserID is used for anonymous requests and when authentication is disabled.
const DefaultUserID = uint(0)

// Error details returned to API clients.
const (
	DetailNotAuthenticated = "Authentication credentials were not provided."
	DetailInvalidToken     = "Invalid token."
	DetailPermissionDenied = "You do not have permission to perform this action."
)

// Middleware identifies the caller and enforces write permissions.
//
// In local mode reads are public. Unsafe methods need an API token or a
// logged-in session, and the caller's role must allow writes.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
	}
}

// Enabled reports whether local authentication is active.
func (m *Middleware) Enabled() bool {
	return m.config.Mode == config.AuthModeLocal
}

// Handler returns a gin middleware that identifies the caller. It never
// rejects a request except for a malformed or unknown bearer token.
func (m *Middleware) Handler() gin.HandlerFunc {
	if !m.Enabled() {
		return func(c *gin.Context) {
			c.Set(ContextKeyUserID, DefaultUserID)
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			user, err := m.service.ValidateToken(token)
			if err != nil {
				c.Header("WWW-Authenticate", `Bearer realm="api"`)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": DetailInvalidToken})
				return
			}
			setUserContext(c, user, AuthTypeBearer)
			c.Next()
			return
		}

		if user := m.sessionUser(c); user != nil {
			setUserContext(c, user, AuthTypeSession)
			c.Next()
			return
		}

		c.Set(ContextKeyUserID, DefaultUserID)
		c.Set(ContextKeyAuthType, AuthTypeAnonymous)
		c.Next()
	}
}

func (m *Middleware) sessionUser(c *gin.Context) *entities.User {
	if m.sessionManager == nil {
		return nil
	}
	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}
	user, err := m.service.GetUserByID(userID)
	if err != nil {
		return nil
	}
	return user
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, bool) {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func setUserContext(c *gin.Context, user *entities.User, authType AuthType) {
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUsername, user.Username)
	c.Set(ContextKeyRole, user.Role)
	c.Set(ContextKeyAuthType, authType)
}

// RequireWrite lets safe methods through and requires a write-capable user
// for everything else.
func (m *Middleware) RequireWrite() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.Enabled() || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if !IsAuthenticated(c) {
			abortNotAuthenticated(c)
			return
		}
		if !Allows(GetUserRole(c), PermEditCatalog) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": DetailPermissionDenied})
			return
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous callers in local mode.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.Enabled() && !IsAuthenticated(c) {
			abortNotAuthenticated(c)
			return
		}
		c.Next()
	}
}

// RequirePermission returns a middleware that requires perm in local mode.
func (m *Middleware) RequirePermission(perm Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.Enabled() {
			c.Next()
			return
		}
		if !IsAuthenticated(c) {
			abortNotAuthenticated(c)
			return
		}
		if !Allows(GetUserRole(c), perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": DetailPermissionDenied})
			return
		}
		c.Next()
	}
}

func abortNotAuthenticated(c *gin.Context) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": DetailNotAuthenticated})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns DefaultUserID (0) if not authenticated or auth is disabled.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return DefaultUserID
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// GetUserRole retrieves the authenticated user's role from the context.
func GetUserRole(c *gin.Context) entities.UserRole {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}

// IsAuthenticated reports whether the request carries a known user, or
// whether authentication is disabled altogether.
func IsAuthenticated(c *gin.Context) bool {
	switch GetAuthType(c) {
	case AuthTypeSession, AuthTypeBearer, AuthTypeNone:
		return true
	}
	return false
}

// ActorID returns the user id to attribute changes to, nil for anonymous callers.
func ActorID(c *gin.Context) *uint {
	if id := GetUserID(c); id != DefaultUserID {
		return &id
	}
	return nil
}
