package http

import (
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/metrics"
	"github.com/mrlokans/bookstore/internal/query"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router.
type RouterConfig struct {
	// Catalog
	Authors AuthorStore
	Books   BookStore
	API     config.API

	// ReadOnly rejects every catalog write with 403
	ReadOnly bool

	// Change history. Any may be nil.
	Recorder ChangeRecorder
	AuditLog AuditLister
	History  HistorySource

	// Health checks; nil reports the database as not configured
	Database        Pinger
	Version         string
	CleanupSchedule CleanupSchedule

	// UI paths. An empty TemplatesPath uses the embedded templates.
	TemplatesPath string
	StaticPath    string

	// Authentication. A nil AuthMiddleware disables authentication.
	AuthConfig     config.Auth
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	LoginLimiter   *auth.LoginLimiter
	LoginRecorder  auth.LoginRecorder
	CSRFSecret     []byte

	// Observability. A nil Logger uses the standard logrus logger.
	Logger  *log.Logger
	Metrics *metrics.Metrics
}

func (cfg RouterConfig) paginator() query.Paginator {
	return query.Paginator{PageSize: cfg.API.PageSize, MaxPageSize: cfg.API.MaxPageSize}
}
