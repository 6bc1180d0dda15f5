package transcript

import (
	"context"
	"errors"
	"net"
	"strings"
)

// coder is implemented by fetcher errors that carry a structured reason.
type coder interface {
	TranscriptCode() Code
}

// classificationRule maps a case-insensitive substring of an upstream error
// message to a failure kind. Rules are evaluated in order.
type classificationRule struct {
	pattern string
	kind    error
}

var classificationRules = []classificationRule{
	{pattern: "could not find any transcripts", kind: ErrNoCaptions},
	{pattern: "transcript is disabled", kind: ErrNoCaptions},
	{pattern: "transcripts are disabled", kind: ErrNoCaptions},
	{pattern: "no transcript available", kind: ErrNoCaptions},
	{pattern: "no transcripts are available", kind: ErrNoCaptions},
	{pattern: "network error", kind: ErrNetwork},
	{pattern: "failed to fetch", kind: ErrNetwork},
}

// Classify maps an arbitrary fetch failure to a classified *Error. It returns
// nil for a nil error and passes an already classified *Error through.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var c coder
	if errors.As(err, &c) {
		return newError(kindForCode(c.TranscriptCode()), err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return newError(ErrNetwork, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return newError(ErrNetwork, err)
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range classificationRules {
		if strings.Contains(msg, rule.pattern) {
			return newError(rule.kind, err)
		}
	}
	return newError(ErrUnknown, err)
}

func kindForCode(c Code) error {
	switch c {
	case CodeNetwork:
		return ErrNetwork
	case CodeDisabled, CodeNotAvailable:
		return ErrNoCaptions
	default:
		return ErrUnknown
	}
}

func newError(kind, cause error) *Error {
	return &Error{Kind: kind, Message: messageFor(kind), Err: cause}
}

func messageFor(kind error) string {
	switch kind {
	case ErrInvalidInput:
		return MsgInvalidURL
	case ErrNoCaptions:
		return MsgNoCaptions
	case ErrNetwork:
		return MsgNetwork
	default:
		return MsgUnknown
	}
}
