package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	auditrepo "github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/database/authors"
	"github.com/mrlokans/bookstore/internal/database/books"
	http_controllers "github.com/mrlokans/bookstore/internal/http"
	"github.com/mrlokans/bookstore/internal/logging"
	"github.com/mrlokans/bookstore/internal/metrics"
	"github.com/mrlokans/bookstore/internal/scheduler"
	"github.com/mrlokans/bookstore/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App is a fully wired service. Close releases everything Build opened.
type App struct {
	Router *gin.Engine

	db         *database.Database
	auditSvc   *audit.Service
	taskClient *tasks.Client
	scheduler  *scheduler.AuditCleanupScheduler
	limiter    *auth.LoginLimiter
	cancel     context.CancelFunc
}

// Build opens the database and wires every component behind the router.
func Build(cfg *config.Config, version string) (*App, error) {
	if err := scheduler.ValidateSchedule(cfg.Audit.CleanupSchedule); err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(cfg.Database.Path, cfg.Database.LogLevel)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{db: db, cancel: cancel}

	authorRepo := authors.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	app.auditSvc = audit.NewService(auditrepo.NewRepository(db.DB))

	var enqueuer scheduler.CleanupEnqueuer = tasks.InlineCleanup{Cleaner: app.auditSvc}
	if cfg.Tasks.Enabled {
		app.taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.NewConfig(cfg.Tasks))
		if err != nil {
			app.Close(ctx)
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		app.taskClient.Register(tasks.NewCleanupAuditEventsQueue(app.auditSvc))
		app.taskClient.Start(ctx)
		enqueuer = app.taskClient
	} else {
		log.Info("Background tasks disabled, audit cleanup runs inline")
	}

	app.scheduler = scheduler.NewAuditCleanupScheduler(enqueuer, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
	if err := app.scheduler.Start(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}

	routerCfg := http_controllers.RouterConfig{
		Authors:         authorRepo,
		Books:           bookRepo,
		API:             cfg.API,
		ReadOnly:        cfg.Global.ReadOnly,
		Recorder:        app.auditSvc,
		AuditLog:        app.auditSvc,
		History:         app.auditSvc,
		Database:        db,
		Version:         version,
		CleanupSchedule: app.scheduler,
		TemplatesPath:   cfg.UI.TemplatesPath,
		StaticPath:      existingDir(cfg.UI.StaticPath),
		AuthConfig:      cfg.Auth,
		Logger:          log.StandardLogger(),
	}
	if cfg.Global.ReadOnly {
		log.Warn("Read-only mode enabled, catalog writes are rejected")
	}
	if cfg.Metrics.Enabled {
		routerCfg.Metrics = metrics.New()
	}

	if cfg.Auth.Mode == config.AuthModeLocal {
		if err := app.wireAuth(cfg.Auth, &routerCfg); err != nil {
			app.Close(ctx)
			return nil, err
		}
	} else {
		log.Info("Authentication mode: none (no authentication required)")
	}

	app.Router = http_controllers.NewRouter(routerCfg)
	return app, nil
}

func (a *App) wireAuth(cfg config.Auth, routerCfg *http_controllers.RouterConfig) error {
	log.Info("Authentication mode: local")

	service := auth.NewService(a.db.DB, cfg)

	sqlDB, err := a.db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessions, err := auth.NewSessionManager(sqlDB, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}

	secret, err := csrfSecret(cfg.SessionSecret)
	if err != nil {
		return err
	}

	a.limiter = auth.NewLoginLimiter(cfg)

	routerCfg.AuthService = service
	routerCfg.SessionManager = sessions
	routerCfg.AuthMiddleware = auth.NewMiddleware(service, sessions, cfg)
	routerCfg.LoginLimiter = a.limiter
	routerCfg.LoginRecorder = a.auditSvc
	routerCfg.CSRFSecret = secret

	if hasUsers, _ := service.HasUsers(); !hasUsers {
		log.Warn("No users found. Run 'bookstore create-user' to create an administrator.")
	}
	return nil
}

// csrfSecret decodes a hex secret, uses a non-hex value as raw bytes and
// generates a fresh secret when none is configured.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	log.Warn("Generated session secret (set AUTH_SESSION_SECRET to persist sessions across restarts)")
	return hex.DecodeString(generated)
}

func existingDir(path string) string {
	if path == "" {
		return ""
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		log.WithField("path", path).Debug("Static directory not found, static files disabled")
		return ""
	}
	return path
}

// Close stops background work in dependency order and closes the database.
func (a *App) Close(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.taskClient != nil {
		a.taskClient.Stop(ctx)
		if err := a.taskClient.Close(); err != nil {
			log.WithError(err).Error("Error closing task database")
		}
	}
	a.cancel()
	a.limiter.Stop()
	if a.auditSvc != nil {
		a.auditSvc.Close()
	}
	if err := a.db.Close(); err != nil {
		log.WithError(err).Error("Error closing database")
	}
}

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if onShutdown != nil {
			onShutdown(context.Background())
		}
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.WithFields(log.Fields{"signal": sig.String(), "timeout": timeout}).Info("Shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	shutdownErr := srv.Shutdown(ctx)
	if onShutdown != nil {
		onShutdown(ctx)
	}
	if shutdownErr != nil {
		return fmt.Errorf("server shutdown: %w", shutdownErr)
	}

	log.Info("Server exiting")
	return nil
}

// Run configures logging, builds the application and serves it.
func Run(cfg *config.Config, version string) error {
	logging.Setup(cfg.Log)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.WithField("version", version).Info("Starting Bookstore")

	app, err := Build(cfg, version)
	if err != nil {
		return err
	}
	return Serve(app.Router, cfg, app.Close)
}
