// Package models contains shared data models used across the ytsummary codebase.
package models

import "context"

// AIProvider is the interface every completion backend implements.
// Callers receive it by injection and never construct a concrete provider.
type AIProvider interface {
	// Analyze turns transcript text into a topic, key points, and summary.
	Analyze(ctx context.Context, transcript string) (Analysis, error)
	// Name returns the provider identifier (e.g., "openai", "ollama").
	Name() string
}
