package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping() error
}

// CleanupSchedule reports when the next audit cleanup runs.
type CleanupSchedule interface {
	NextRun() *time.Time
}

type HealthResponse struct {
	Status           string            `json:"status"`
	Time             string            `json:"time"`
	Version          string            `json:"version,omitempty"`
	Checks           map[string]string `json:"checks"`
	NextAuditCleanup *time.Time        `json:"next_audit_cleanup,omitempty"`
}

type HealthController struct {
	db       Pinger
	version  string
	schedule CleanupSchedule
}

// NewHealthController creates the controller. db may be nil.
func NewHealthController(db Pinger, version string) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
	}
}

// WithCleanupSchedule adds the next audit cleanup time to the status.
func (h *HealthController) WithCleanupSchedule(schedule CleanupSchedule) *HealthController {
	h.schedule = schedule
	return h
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}
	if h.schedule != nil {
		health.NextAuditCleanup = h.schedule.NextRun()
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}

func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
