// Package prompt holds the prompt text sent to completion providers and the
// parser for their replies.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

const systemPrompt = `You analyze YouTube video transcripts.
Reply with a single JSON object and nothing else, using exactly these fields:
{
  "topic": "the main subject of the video in a short phrase",
  "keyPoints": ["3 to 7 concise takeaways, one sentence each"],
  "summary": "a readable summary of the video in one or two paragraphs"
}
Write in the same language as the transcript. Do not invent facts that are not in the transcript.`

// GetSystemPrompt returns the instructions that fix the reply format.
func GetSystemPrompt() string {
	return systemPrompt
}

// GetUserPrompt wraps the transcript text.
func GetUserPrompt(transcript string) string {
	var sb strings.Builder
	sb.WriteString("Analyze the following video transcript.\n\nTranscript:\n")
	sb.WriteString(transcript)
	return sb.String()
}

// StripFences removes a surrounding markdown code fence, which some models
// add even when asked for bare JSON.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseAnalysis decodes a provider reply into an Analysis. It does not check
// that the fields are populated.
func ParseAnalysis(raw string) (models.Analysis, error) {
	body := StripFences(raw)
	if body == "" {
		return models.Analysis{}, fmt.Errorf("empty reply")
	}

	var a models.Analysis
	if err := json.Unmarshal([]byte(body), &a); err != nil {
		// Models sometimes wrap the object in prose; retry on the outermost braces.
		start, end := strings.IndexByte(body, '{'), strings.LastIndexByte(body, '}')
		if start < 0 || end <= start {
			return models.Analysis{}, fmt.Errorf("decoding reply: %w", err)
		}
		if err2 := json.Unmarshal([]byte(body[start:end+1]), &a); err2 != nil {
			return models.Analysis{}, fmt.Errorf("decoding reply: %w", err2)
		}
	}
	return a, nil
}
