package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
)

// Pinger is the slice of the database pool the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process liveness and database reachability.
type HealthHandler struct {
	db     Pinger
	logger *log.Logger
}

// NewHealthHandler creates a [HealthHandler]. db may be nil, in which
// case only liveness is reported.
func NewHealthHandler(db Pinger, logger *log.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"GET /api/health"}
}

// ServeHTTP answers 200 when the database is reachable, 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			h.logger.Error("database unreachable", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
