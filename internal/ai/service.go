package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

// Generator turns a transcript into an Analysis using the injected provider.
type Generator struct {
	provider models.AIProvider
	timeout  time.Duration
	maxChars int
}

// NewGenerator creates a Generator. maxChars bounds the transcript text sent
// to the provider; timeout bounds each provider call.
func NewGenerator(provider models.AIProvider, timeout time.Duration, maxChars int) *Generator {
	return &Generator{
		provider: provider,
		timeout:  timeout,
		maxChars: maxChars,
	}
}

// Analyze validates the transcript, calls the provider once, and checks that
// the result is complete. Empty input fails with ErrEmptyTranscript without
// contacting the provider; every later failure wraps ErrGenerationFailed.
func (g *Generator) Analyze(ctx context.Context, items []models.TranscriptItem) (*models.Analysis, error) {
	text := joinTranscript(items)
	if text == "" {
		return nil, ErrEmptyTranscript
	}
	text = truncateString(text, g.maxChars)

	analyzeCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	result, err := g.provider.Analyze(analyzeCtx, text)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(analyzeCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", ErrInferenceTimeout, err)
		}
		slog.Warn("analysis generation failed",
			"provider", g.provider.Name(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	analysis, err := normalize(result)
	if err != nil {
		slog.Warn("analysis incomplete", "provider", g.provider.Name(), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	slog.Debug("analysis generated",
		"provider", g.provider.Name(),
		"key_points", len(analysis.KeyPoints),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return analysis, nil
}

// joinTranscript concatenates segment text with single spaces.
func joinTranscript(items []models.TranscriptItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if t := strings.TrimSpace(it.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// normalize trims fields, drops blank key points, and rejects incomplete results.
func normalize(a models.Analysis) (*models.Analysis, error) {
	out := models.Analysis{
		Topic:     strings.TrimSpace(a.Topic),
		Summary:   strings.TrimSpace(a.Summary),
		KeyPoints: make([]string, 0, len(a.KeyPoints)),
	}
	for _, kp := range a.KeyPoints {
		if kp = strings.TrimSpace(kp); kp != "" {
			out.KeyPoints = append(out.KeyPoints, kp)
		}
	}

	var missing []string
	if out.Topic == "" {
		missing = append(missing, "topic")
	}
	if len(out.KeyPoints) == 0 {
		missing = append(missing, "keyPoints")
	}
	if out.Summary == "" {
		missing = append(missing, "summary")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncompleteAnalysis, strings.Join(missing, ", "))
	}
	return &out, nil
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
