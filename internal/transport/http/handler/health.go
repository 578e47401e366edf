package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and database health.
type HealthHandler struct {
	db      Pinger
	timeout time.Duration
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, timeout: 3 * time.Second}
}

func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}

func (h *HealthHandler) DB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}
