package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const healthTimeout = 2 * time.Second

// Probe checks one backing service.
type Probe func(ctx context.Context) error

// QueueDepth reports the pending-scoring backlog.
type QueueDepth func(ctx context.Context) (int64, error)

// SystemHandler serves the unauthenticated health endpoint.
type SystemHandler struct {
	probes    map[string]Probe
	queue     QueueDepth
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(probes map[string]Probe, queue QueueDepth, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		probes:    probes,
		queue:     queue,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthReport struct {
	Status       string            `json:"status"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
	PendingQueue *int64            `json:"pending_scoring,omitempty"`
	Goroutines   int               `json:"goroutines"`
	GoVersion    string            `json:"go_version"`
}

// Health godoc
// GET /health
// 200 when every probe passes, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	report := healthReport{
		Status:       "ok",
		Uptime:       formatDuration(time.Since(h.startTime)),
		Dependencies: make(map[string]string, len(h.probes)),
		Goroutines:   runtime.NumGoroutine(),
		GoVersion:    runtime.Version(),
	}

	names := make([]string, 0, len(h.probes))
	for name := range h.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.probes[name](ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health probe failed")
			report.Dependencies[name] = "down"
			report.Status = "degraded"
			continue
		}
		report.Dependencies[name] = "up"
	}

	if h.queue != nil {
		if n, err := h.queue(ctx); err == nil {
			report.PendingQueue = &n
		}
	}

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.Header("Cache-Control", "no-store")
	response.Success(c, status, report)
}

// ---------- Helpers ----------

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
