package transcript

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by Retriever.Fetch matches exactly one
// of these with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid video url")
	ErrNoCaptions   = errors.New("no captions available")
	ErrNetwork      = errors.New("network error fetching transcript")
	ErrUnknown      = errors.New("transcript fetch failed")

	// ErrEmptyTranscript is wrapped by an ErrNoCaptions failure when the
	// upstream answered with zero segments.
	ErrEmptyTranscript = errors.New("empty transcript")
)

// User-facing messages, one per failure mode.
const (
	MsgURLRequired = "YouTube URL is required and must be a string"
	MsgInvalidURL  = "Invalid YouTube URL. Please provide a valid video URL."
	MsgNoCaptions  = "This video does not have captions or transcripts enabled. Please try a different video that has closed captions available."
	MsgEmpty       = "This video does not have any captions available. Please try a different video."
	MsgNetwork     = "Network error while fetching transcript. Please check your connection and try again."
	MsgUnknown     = "Unable to fetch video transcript. Please ensure the video has captions enabled and try again, or use a different video."
)

// Error is a classified transcript failure.
type Error struct {
	Kind    error  // one of ErrInvalidInput, ErrNoCaptions, ErrNetwork, ErrUnknown
	Message string // safe to show to end users
	VideoID string
	Err     error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

// Is reports whether target is the failure kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code is a structured failure reason reported by a Fetcher.
type Code int

const (
	CodeUnknown Code = iota
	CodeNetwork
	CodeDisabled
	CodeNotAvailable
	CodeVideoUnavailable
	CodeTooManyRequests
)

func (c Code) String() string {
	switch c {
	case CodeNetwork:
		return "network"
	case CodeDisabled:
		return "disabled"
	case CodeNotAvailable:
		return "not_available"
	case CodeVideoUnavailable:
		return "video_unavailable"
	case CodeTooManyRequests:
		return "too_many_requests"
	default:
		return "unknown"
	}
}

// FetchError is returned by YouTubeFetcher.
type FetchError struct {
	Code    Code
	VideoID string
	Msg     string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("youtube %s: %s: %v", e.VideoID, e.Msg, e.Err)
	}
	return fmt.Sprintf("youtube %s: %s", e.VideoID, e.Msg)
}

// TranscriptCode lets Classify map the failure without inspecting its text.
func (e *FetchError) TranscriptCode() Code {
	return e.Code
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
