package ai

import "errors"

var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")

	// ErrEmptyTranscript is returned before any provider call when there is nothing to analyze.
	ErrEmptyTranscript = errors.New("transcript is empty")
	// ErrGenerationFailed wraps every failure that happens after input validation.
	ErrGenerationFailed = errors.New("analysis generation failed")
	// ErrIncompleteAnalysis means the provider answered without a topic, summary, or key points.
	ErrIncompleteAnalysis = errors.New("analysis is missing required fields")
)
