package handler

import (
	"context"
	"net/http"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/api/response"
)

// Pinger is anything whose connectivity the health check reports.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler returns an http.HandlerFunc for GET /healthz reporting
// each named dependency as "ok" or "degraded".
func NewHealthHandler(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string, len(deps))
		degraded := false
		for name, p := range deps {
			checks[name] = "ok"
			if err := p.Ping(r.Context()); err != nil {
				checks[name] = "degraded"
				degraded = true
			}
		}

		if degraded {
			response.Status(w, http.StatusServiceUnavailable, map[string]any{
				"error":    "One or more services degraded",
				"status":   "degraded",
				"services": checks,
			})
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
