package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/api/response"
	"github.com/Ronnakrit11/nextai-ytsummary/internal/store"
	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

const (
	msgInvalidBody      = "Invalid JSON in request body"
	msgMissingFields    = "Missing required fields"
	msgIDRequired       = "Analysis ID is required"
	msgAnalysisRequired = "Analysis data is required"
	msgNotFound         = "Analysis not found"
	msgDeleted          = "Analysis deleted successfully"

	msgSaveFailed   = "Failed to save analysis"
	msgListFailed   = "Failed to fetch saved analyses"
	msgGetFailed    = "Failed to fetch analysis"
	msgUpdateFailed = "Failed to update analysis"
	msgDeleteFailed = "Failed to delete analysis"
)

// SavedAnalysisStore defines the persistence operations the saved-analysis
// handlers depend on. store.Store satisfies it.
type SavedAnalysisStore interface {
	Create(ctx context.Context, p store.NewSavedAnalysis) (*models.SavedAnalysis, error)
	Get(ctx context.Context, id string) (*models.SavedAnalysis, error)
	List(ctx context.Context) ([]*models.SavedAnalysis, error)
	Update(ctx context.Context, id string, a models.Analysis) (*models.SavedAnalysis, error)
	Delete(ctx context.Context, id string) error
}

// NewSaveHandler returns an http.HandlerFunc for POST /save-analysis.
func NewSaveHandler(s SavedAnalysisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			VideoID  string           `json:"videoId"`
			VideoURL string           `json:"videoUrl"`
			Analysis *models.Analysis `json:"analysis"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, msgInvalidBody, err.Error())
			return
		}

		if strings.TrimSpace(req.VideoID) == "" || strings.TrimSpace(req.VideoURL) == "" || req.Analysis == nil {
			response.Error(w, http.StatusBadRequest, msgMissingFields, "")
			return
		}

		rec, err := s.Create(r.Context(), store.NewSavedAnalysis{
			VideoID:  req.VideoID,
			VideoURL: req.VideoURL,
			Analysis: req.Analysis,
		})
		if err != nil {
			switch {
			case errors.Is(err, store.ErrValidation):
				response.Error(w, http.StatusBadRequest, msgMissingFields, err.Error())
			default:
				slog.Error("save analysis failed", "video_id", req.VideoID, "error", err)
				response.Error(w, http.StatusInternalServerError, msgSaveFailed, err.Error())
			}
			return
		}

		response.JSON(w, map[string]any{"success": true, "id": rec.ID})
	}
}

// NewListHandler returns an http.HandlerFunc for GET /saved-analyses.
func NewListHandler(s SavedAnalysisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.List(r.Context())
		if err != nil {
			slog.Error("list analyses failed", "error", err)
			response.Error(w, http.StatusInternalServerError, msgListFailed, err.Error())
			return
		}
		if records == nil {
			records = []*models.SavedAnalysis{}
		}
		response.JSON(w, map[string]any{"analyses": records})
	}
}

// NewGetHandler returns an http.HandlerFunc for GET /saved-analyses/{id}.
func NewGetHandler(s SavedAnalysisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := analysisID(w, r)
		if !ok {
			return
		}

		rec, err := s.Get(r.Context(), id)
		if err != nil {
			writeStoreError(w, err, msgGetFailed, id)
			return
		}
		response.JSON(w, map[string]any{"analysis": rec})
	}
}

// NewUpdateHandler returns an http.HandlerFunc for PUT /saved-analyses/{id}.
// Only the analysis content is replaced; videoId and videoUrl are ignored.
func NewUpdateHandler(s SavedAnalysisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := analysisID(w, r)
		if !ok {
			return
		}

		var req struct {
			Analysis *models.Analysis `json:"analysis"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, msgInvalidBody, err.Error())
			return
		}
		if req.Analysis == nil {
			response.Error(w, http.StatusBadRequest, msgAnalysisRequired, "")
			return
		}

		rec, err := s.Update(r.Context(), id, *req.Analysis)
		if err != nil {
			writeStoreError(w, err, msgUpdateFailed, id)
			return
		}
		response.JSON(w, map[string]any{"success": true, "analysis": rec})
	}
}

// NewDeleteHandler returns an http.HandlerFunc for DELETE /saved-analyses/{id}.
func NewDeleteHandler(s SavedAnalysisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := analysisID(w, r)
		if !ok {
			return
		}

		if err := s.Delete(r.Context(), id); err != nil {
			writeStoreError(w, err, msgDeleteFailed, id)
			return
		}
		response.JSON(w, map[string]any{"success": true, "message": msgDeleted})
	}
}

func analysisID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		response.Error(w, http.StatusBadRequest, msgIDRequired, "")
		return "", false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, err error, msg, id string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, msgNotFound, "")
	default:
		slog.Error("store operation failed", "id", id, "error", err)
		response.Error(w, http.StatusInternalServerError, msg, err.Error())
	}
}
