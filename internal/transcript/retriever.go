// Package transcript retrieves caption transcripts for YouTube videos and
// classifies retrieval failures into a small user-facing taxonomy.
package transcript

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
	"github.com/Ronnakrit11/nextai-ytsummary/pkg/youtubeurl"
)

// Fetcher is the upstream transcript capability.
type Fetcher interface {
	FetchTranscript(ctx context.Context, videoID string) ([]models.TranscriptItem, error)
}

// Retriever validates a video URL, fetches its transcript, and classifies failures.
type Retriever struct {
	fetcher Fetcher
}

// NewRetriever creates a Retriever backed by f.
func NewRetriever(f Fetcher) *Retriever {
	return &Retriever{fetcher: f}
}

// Fetch returns the non-empty transcript of the video at rawURL.
// Every failure is an *Error. No retries are attempted.
func (r *Retriever) Fetch(ctx context.Context, rawURL string) ([]models.TranscriptItem, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, &Error{Kind: ErrInvalidInput, Message: MsgURLRequired}
	}

	videoID := youtubeurl.HostVideoID(rawURL)
	if videoID == "" {
		return nil, &Error{Kind: ErrInvalidInput, Message: MsgInvalidURL}
	}

	items, err := r.fetcher.FetchTranscript(ctx, videoID)
	if err != nil {
		classified := Classify(err)
		classified.VideoID = videoID
		slog.Warn("transcript fetch failed",
			"video_id", videoID,
			"kind", classified.Kind.Error(),
			"error", err,
		)
		return nil, classified
	}

	if len(items) == 0 {
		return nil, &Error{
			Kind:    ErrNoCaptions,
			Message: MsgEmpty,
			VideoID: videoID,
			Err:     ErrEmptyTranscript,
		}
	}

	return items, nil
}
