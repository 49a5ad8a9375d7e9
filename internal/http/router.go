package http

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/logging"
	"github.com/mrlokans/bookstore/internal/readonly"
	"github.com/mrlokans/bookstore/web"
)

// templateFuncs are the helpers available to every page template.
var templateFuncs = template.FuncMap{
	"join":          strings.Join,
	"changedFields": changedFields,
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	authMiddleware := cfg.AuthMiddleware
	if authMiddleware == nil {
		authMiddleware = auth.NewMiddleware(nil, nil, config.Auth{Mode: config.AuthModeNone})
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(logging.Middleware(logger))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.FromContext(c).WithField("panic", fmt.Sprint(recovered)).Error("Recovered from panic")
		respondDetail(c, http.StatusInternalServerError, DetailServerError)
	}))

	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.AuthConfig.SecureCookies && authMiddleware.Enabled() {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	router.Use(readonly.NewMiddleware(cfg.ReadOnly).Handler())

	// Sessions load before the auth handler so it can read the user id
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.LoadAndSave())
	}
	router.Use(authMiddleware.Handler())

	// CSRF runs after the auth handler: it needs to know how the caller
	// authenticated
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies))
	}

	// Inject auth data for templates
	router.Use(AuthContextMiddleware(authMiddleware.Enabled()))

	tmpl := template.Must(web.ParseTemplates(cfg.TemplatesPath, templateFuncs))
	router.SetHTMLTemplate(tmpl)

	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	router.NoRoute(func(c *gin.Context) {
		if isAPIPath(c.Request.URL.Path) {
			respondNotFound(c)
			return
		}
		c.HTML(http.StatusNotFound, "error", gin.H{
			"Title":   "Page not found",
			"Message": "The page you requested does not exist.",
			"Auth":    GetAuthTemplateData(c),
		})
	})
	router.NoMethod(func(c *gin.Context) {
		respondDetail(c, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", c.Request.Method))
	})

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	if cfg.CleanupSchedule != nil {
		health.WithCleanupSchedule(cfg.CleanupSchedule)
	}
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	// Authentication routes
	if cfg.AuthService != nil && authMiddleware.Enabled() {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.LoginLimiter, cfg.LoginRecorder)
		authController.RegisterRoutes(router)

		tokens := router.Group("/api/auth", authMiddleware.RequireAuth())
		auth.NewTokenController(cfg.AuthService).RegisterRoutes(tokens)
	}

	// Catalog API
	paginator := cfg.paginator()
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	authors := router.Group("/api/authors", authMiddleware.RequireWrite())
	NewAuthorsController(cfg.Authors, recorder, paginator).RegisterRoutes(authors)

	books := router.Group("/api/books", authMiddleware.RequireWrite())
	NewBooksController(cfg.Books, cfg.Authors, recorder, paginator, cfg.API.ExpensiveBooksMinPrice).RegisterRoutes(books)

	if cfg.AuditLog != nil {
		auditController := NewAuditController(cfg.AuditLog, paginator)
		router.GET("/api/audit/", authMiddleware.RequirePermission(auth.PermViewHistory), auditController.List)
	}

	// UI routes
	NewUIController(cfg.Authors, cfg.Books, cfg.History).RegisterRoutes(router)

	return router
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
