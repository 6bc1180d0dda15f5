package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/api/response"
	"github.com/Ronnakrit11/nextai-ytsummary/internal/transcript"
	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

const (
	msgContentType = "Content-Type must be application/json"
	msgInvalidJSON = "Invalid JSON payload"
)

// TranscriptFetcher defines the interface the transcript handler depends on.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, url string) ([]models.TranscriptItem, error)
}

// NewTranscriptHandler returns an http.HandlerFunc for POST /transcript.
func NewTranscriptHandler(f TranscriptFetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
			response.Error(w, http.StatusBadRequest, msgContentType, "")
			return
		}

		// Decoded loosely so a non-string url is a validation error, not a JSON one.
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, msgInvalidJSON, err.Error())
			return
		}

		url, ok := body["url"].(string)
		if !ok || strings.TrimSpace(url) == "" {
			response.Error(w, http.StatusBadRequest, transcript.MsgURLRequired, "")
			return
		}

		items, err := f.Fetch(r.Context(), url)
		if err != nil {
			writeTranscriptError(w, err)
			return
		}

		response.JSON(w, map[string]any{"transcript": items})
	}
}

func writeTranscriptError(w http.ResponseWriter, err error) {
	var te *transcript.Error
	if !errors.As(err, &te) {
		response.Error(w, http.StatusInternalServerError, transcript.MsgUnknown, err.Error())
		return
	}

	body := response.ErrorBody{Error: te.Message, VideoID: te.VideoID}
	switch {
	case errors.Is(te, transcript.ErrInvalidInput):
		response.ErrorFor(w, http.StatusBadRequest, body)
	case errors.Is(te, transcript.ErrNoCaptions):
		status := http.StatusBadRequest
		if errors.Is(te, transcript.ErrEmptyTranscript) {
			status = http.StatusNotFound
		}
		response.ErrorFor(w, status, body)
	case errors.Is(te, transcript.ErrNetwork):
		response.ErrorFor(w, http.StatusServiceUnavailable, body)
	default:
		if te.Err != nil {
			body.Details = te.Err.Error()
		}
		response.ErrorFor(w, http.StatusInternalServerError, body)
	}
}
