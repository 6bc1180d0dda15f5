package mock

import (
	"context"
	"sync/atomic"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/ai"
	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

// MockProvider satisfies models.AIProvider for testing.
type MockProvider struct {
	Name_       string
	AnalyzeFunc func(ctx context.Context, transcript string) (models.Analysis, error)

	calls atomic.Int32
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Analyze(ctx context.Context, transcript string) (models.Analysis, error) {
	m.calls.Add(1)
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, transcript)
	}
	return models.Analysis{}, nil
}

// Calls returns how many times Analyze has been invoked.
func (m *MockProvider) Calls() int { return int(m.calls.Load()) }

// NewMockProvider returns a MockProvider with a complete default analysis.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		AnalyzeFunc: func(_ context.Context, _ string) (models.Analysis, error) {
			return models.Analysis{
				Topic:     "Mock topic",
				KeyPoints: []string{"First mock point", "Second mock point"},
				Summary:   "Mock summary for testing",
			}, nil
		},
	}
}

// NewStaticProvider returns a MockProvider that always returns a.
func NewStaticProvider(a models.Analysis) *MockProvider {
	return &MockProvider{
		Name_: "mock-static",
		AnalyzeFunc: func(_ context.Context, _ string) (models.Analysis, error) {
			return a, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		AnalyzeFunc: func(_ context.Context, _ string) (models.Analysis, error) {
			return models.Analysis{}, err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		AnalyzeFunc: func(ctx context.Context, _ string) (models.Analysis, error) {
			<-ctx.Done()
			return models.Analysis{}, ai.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
