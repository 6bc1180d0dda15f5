package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/ai"
	"github.com/Ronnakrit11/nextai-ytsummary/internal/api/response"
	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

const (
	msgTranscriptRequired = "Transcript is required"
	msgAnalyzeFailed      = "Failed to analyze transcript"
)

// AnalysisGenerator defines the interface the analyze handler depends on.
type AnalysisGenerator interface {
	Analyze(ctx context.Context, items []models.TranscriptItem) (*models.Analysis, error)
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /analyze.
func NewAnalyzeHandler(gen AnalysisGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Transcript []models.TranscriptItem `json:"transcript"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, msgInvalidJSON, err.Error())
			return
		}

		analysis, err := gen.Analyze(r.Context(), req.Transcript)
		if err != nil {
			switch {
			case errors.Is(err, ai.ErrEmptyTranscript):
				response.Error(w, http.StatusBadRequest, msgTranscriptRequired, "")
			default:
				slog.Warn("analysis failed", "error", err, "segments", len(req.Transcript))
				response.Error(w, http.StatusInternalServerError, msgAnalyzeFailed, err.Error())
			}
			return
		}

		response.JSON(w, map[string]any{"analysis": analysis})
	}
}
