package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping() error
}

// ScanSchedule exposes the overdue scan scheduler state. It is informational
// and never makes the service unhealthy.
type ScanSchedule interface {
	IsRunning() bool
	GetNextRunTime() *time.Time
}

type HealthResponse struct {
	Status        string            `json:"status"`
	Time          string            `json:"time"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Version       string            `json:"version,omitempty"`
	Checks        map[string]string `json:"checks"`
}

type HealthController struct {
	db        Pinger
	schedule  ScanSchedule
	version   string
	startedAt time.Time
}

// NewHealthController creates the /health handler. schedule may be nil.
func NewHealthController(db Pinger, schedule ScanSchedule, version string) *HealthController {
	return &HealthController{
		db:        db,
		schedule:  schedule,
		version:   version,
		startedAt: time.Now(),
	}
}

// Status handles GET /health
func (h *HealthController) Status(c *gin.Context) {
	checks := map[string]string{
		"database":     "not configured",
		"overdue_scan": "disabled",
	}
	healthy := true

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}

	if h.schedule != nil {
		checks["overdue_scan"] = "stopped"
		if h.schedule.IsRunning() {
			checks["overdue_scan"] = "running"
			if next := h.schedule.GetNextRunTime(); next != nil {
				checks["overdue_scan"] = "next run " + next.UTC().Format(time.RFC3339)
			}
		}
	}

	now := time.Now()
	resp := HealthResponse{
		Status:        "healthy",
		Time:          now.Format(time.RFC3339),
		UptimeSeconds: int64(now.Sub(h.startedAt).Seconds()),
		Version:       h.version,
		Checks:        checks,
	}

	statusCode := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, resp)
}
