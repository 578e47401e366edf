package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ainager-onboarding/internal/domain"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// httpError maps a service error onto a status and a client-safe message.
// Causes behind generic messages are logged, never returned.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, detail(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, detail(err, domain.ErrRateLimited))
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusBadRequest, "invalid or expired code")
	case errors.Is(err, domain.ErrUpstreamFetch):
		slog.Warn("website analysis failed", "request_id", chimiddleware.GetReqID(r.Context()), "error", err)
		writeError(w, http.StatusBadRequest, "could not analyze website")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusBadRequest, detail(err, domain.ErrNotFound))
	default:
		slog.Error("request failed", "request_id", chimiddleware.GetReqID(r.Context()),
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// detail strips the trailing sentinel text from a wrapped error message.
func detail(err, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}
