package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// LoginRecorder receives the outcome of every login attempt.
type LoginRecorder interface {
	RecordLogin(userID *uint, username, ip string, ok bool)
}

// safeRedirect returns path when it is a local absolute path, "/" otherwise.
func safeRedirect(path string) string {
	switch {
	case path == "",
		!strings.HasPrefix(path, "/"),
		strings.HasPrefix(path, "//"),
		strings.Contains(path, "://"),
		strings.Contains(path, `\`):
		return "/"
	}
	return path
}

// AuthController serves the login and logout pages.
type AuthController struct {
	service  *Service
	sessions *SessionManager
	limiter  *LoginLimiter
	recorder LoginRecorder
}

// NewAuthController creates the controller. recorder may be nil.
func NewAuthController(service *Service, sessions *SessionManager, limiter *LoginLimiter, recorder LoginRecorder) *AuthController {
	return &AuthController{
		service:  service,
		sessions: sessions,
		limiter:  limiter,
		recorder: recorder,
	}
}

// RegisterRoutes registers the login and logout routes.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.limiter.Middleware(), ac.Login)
	router.GET("/logout", ac.Logout)
	router.POST("/logout", ac.Logout)
}

// LoginPage renders the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	if ac.sessions.GetUserID(c.Request) != 0 {
		c.Redirect(http.StatusFound, "/")
		return
	}

	data := gin.H{"Next": safeRedirect(c.Query("next"))}
	if hasUsers, err := ac.service.HasUsers(); err == nil && !hasUsers {
		data["Error"] = "No users exist yet. Create one with the create-user command."
	}
	ac.render(c, http.StatusOK, data)
}

// Login handles the login form submission.
func (ac *AuthController) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := safeRedirect(c.PostForm("next"))
	ip := c.ClientIP()

	user, err := ac.service.Authenticate(username, password)
	if err != nil {
		ac.limiter.RecordFailure(ip, username)
		ac.record(nil, username, ip, false)

		msg := "Please enter a correct username and password."
		status := http.StatusUnauthorized
		if errors.Is(err, ErrAccountLocked) {
			msg = "This account is temporarily locked. Please try again later."
			status = http.StatusForbidden
		} else if !errors.Is(err, ErrUserNotFound) && !errors.Is(err, ErrInvalidPassword) {
			log.WithError(err).Error("Login failed")
			msg = "Login is temporarily unavailable."
			status = http.StatusInternalServerError
		}
		ac.render(c, status, gin.H{"Next": next, "Username": username, "Error": msg})
		return
	}

	ac.limiter.RecordSuccess(ip, username)
	if err := ac.sessions.CreateSession(c.Request, user); err != nil {
		log.WithError(err).Error("Failed to create session")
		ac.render(c, http.StatusInternalServerError, gin.H{
			"Next":     next,
			"Username": username,
			"Error":    "Login is temporarily unavailable.",
		})
		return
	}
	ac.record(&user.ID, user.Username, ip, true)

	c.Redirect(http.StatusFound, next)
}

// Logout destroys the session and redirects to the login page.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.sessions.DestroySession(c.Request); err != nil {
		log.WithError(err).Warn("Failed to destroy session")
	}
	c.Redirect(http.StatusFound, "/login")
}

func (ac *AuthController) render(c *gin.Context, status int, data gin.H) {
	data["Title"] = "Log in"
	data["CSRFToken"] = GetCSRFToken(c)
	data["CSRFField"] = CSRFFieldName
	c.HTML(status, "login", data)
}

func (ac *AuthController) record(userID *uint, username, ip string, ok bool) {
	if ac.recorder != nil {
		ac.recorder.RecordLogin(userID, username, ip, ok)
	}
}

// TokenController issues and revokes API tokens for the calling user.
type TokenController struct {
	service *Service
}

// NewTokenController creates a new token controller.
func NewTokenController(service *Service) *TokenController {
	return &TokenController{service: service}
}

// RegisterRoutes registers the token endpoints. The group must already
// require an authenticated user.
func (tc *TokenController) RegisterRoutes(router gin.IRouter) {
	router.POST("/token", tc.Create)
	router.DELETE("/token", tc.Revoke)
}

// Create issues a new token, replacing the previous one. The plaintext is
// only ever returned here.
func (tc *TokenController) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == DefaultUserID {
		abortNotAuthenticated(c)
		return
	}

	token, err := tc.service.GenerateToken(userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to generate API token")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "A server error occurred."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// Revoke removes the caller's token.
func (tc *TokenController) Revoke(c *gin.Context) {
	userID := GetUserID(c)
	if userID == DefaultUserID {
		abortNotAuthenticated(c)
		return
	}

	if err := tc.service.RevokeToken(userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to revoke API token")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "A server error occurred."})
		return
	}
	c.Status(http.StatusNoContent)
}
