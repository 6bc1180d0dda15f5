package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/Ronnakrit11/nextai-ytsummary/internal/api/middleware"
	"github.com/Ronnakrit11/nextai-ytsummary/internal/api/response"
)

// Dependencies holds all handler dependencies for the router.
type Dependencies struct {
	HealthHandler http.HandlerFunc

	TranscriptHandler http.HandlerFunc
	AnalyzeHandler    http.HandlerFunc

	SaveHandler   http.HandlerFunc
	ListHandler   http.HandlerFunc
	GetHandler    http.HandlerFunc
	UpdateHandler http.HandlerFunc
	DeleteHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
// Every route is served both at the root and under /api.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Not found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
	})

	r.Get("/healthz", orNotImplemented(deps.HealthHandler))

	r.Group(func(r chi.Router) { mountRoutes(r, deps) })
	r.Route("/api", func(r chi.Router) { mountRoutes(r, deps) })

	return r
}

func mountRoutes(r chi.Router, deps Dependencies) {
	r.With(mw.TranscriptCORS).Post("/transcript", orNotImplemented(deps.TranscriptHandler))
	r.With(mw.TranscriptCORS).Options("/transcript", preflightOK)

	r.Post("/analyze", orNotImplemented(deps.AnalyzeHandler))

	r.Post("/save-analysis", orNotImplemented(deps.SaveHandler))
	r.Get("/saved-analyses", orNotImplemented(deps.ListHandler))
	r.Get("/saved-analyses/{id}", orNotImplemented(deps.GetHandler))
	r.Put("/saved-analyses/{id}", orNotImplemented(deps.UpdateHandler))
	r.Delete("/saved-analyses/{id}", orNotImplemented(deps.DeleteHandler))
}

func preflightOK(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "Endpoint not yet implemented", "")
	}
}
