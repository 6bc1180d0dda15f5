package models

import (
	"strings"
	"time"
)

// DefaultTitle is used when an analysis has no topic to derive a title from.
const DefaultTitle = "Untitled Analysis"

// TranscriptItem is one caption segment. Offset and Duration are in seconds.
type TranscriptItem struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Offset   float64 `json:"offset"`
}

// Analysis is the AI-generated digest of a transcript.
type Analysis struct {
	Topic     string   `json:"topic"     bson:"topic"`
	KeyPoints []string `json:"keyPoints" bson:"keyPoints"`
	Summary   string   `json:"summary"   bson:"summary"`
}

// SavedAnalysis is a persisted Analysis tied to the video it was generated from.
// ID, VideoID, VideoURL, and CreatedAt never change after creation.
type SavedAnalysis struct {
	ID        string    `json:"id"        bson:"_id"`
	VideoID   string    `json:"videoId"   bson:"videoId"`
	VideoURL  string    `json:"videoUrl"  bson:"videoUrl"`
	Title     string    `json:"title"     bson:"title"`
	Analysis  Analysis  `json:"analysis"  bson:"analysis"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// TitleFor derives the display title of an analysis.
func TitleFor(a Analysis) string {
	if strings.TrimSpace(a.Topic) == "" {
		return DefaultTitle
	}
	return a.Topic
}
