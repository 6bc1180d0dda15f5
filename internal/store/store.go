package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrValidation = errors.New("validation failed")

// Store is the data access interface for saved analyses. Every call is
// atomic for a single record; concurrent updates are last-write-wins.
type Store interface {
	Ping(ctx context.Context) error
	Close() error

	Create(ctx context.Context, p NewSavedAnalysis) (*models.SavedAnalysis, error)
	Get(ctx context.Context, id string) (*models.SavedAnalysis, error)
	// List returns every saved analysis, newest first. Never nil.
	List(ctx context.Context) ([]*models.SavedAnalysis, error)
	// Update replaces the analysis and derived title. Identity fields are untouched.
	Update(ctx context.Context, id string, a models.Analysis) (*models.SavedAnalysis, error)
	Delete(ctx context.Context, id string) error
}

// NewSavedAnalysis is the input to Store.Create.
type NewSavedAnalysis struct {
	VideoID  string
	VideoURL string
	Analysis *models.Analysis
}

func (p NewSavedAnalysis) validate() error {
	var missing []string
	if strings.TrimSpace(p.VideoID) == "" {
		missing = append(missing, "videoId")
	}
	if strings.TrimSpace(p.VideoURL) == "" {
		missing = append(missing, "videoUrl")
	}
	if p.Analysis == nil {
		missing = append(missing, "analysis")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Clock supplies creation timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type storeOptions struct {
	clock Clock
	newID func() string
}

// Option configures a Store implementation.
type Option func(*storeOptions)

// WithClock overrides the time source used for CreatedAt.
func WithClock(c Clock) Option {
	return func(o *storeOptions) {
		o.clock = c
	}
}

// WithIDGenerator overrides how record ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(o *storeOptions) {
		o.newID = fn
	}
}

func buildOptions(opts []Option) storeOptions {
	o := storeOptions{
		clock: SystemClock{},
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newRecord validates p and builds the record to insert. precision is the
// timestamp resolution of the backing engine.
func (o storeOptions) newRecord(p NewSavedAnalysis, precision time.Duration) (*models.SavedAnalysis, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &models.SavedAnalysis{
		ID:        o.newID(),
		VideoID:   p.VideoID,
		VideoURL:  p.VideoURL,
		Title:     models.TitleFor(*p.Analysis),
		Analysis:  cloneAnalysis(*p.Analysis),
		CreatedAt: o.clock.Now().UTC().Truncate(precision),
	}, nil
}

func cloneAnalysis(a models.Analysis) models.Analysis {
	out := a
	if a.KeyPoints != nil {
		out.KeyPoints = append([]string(nil), a.KeyPoints...)
	} else {
		out.KeyPoints = []string{}
	}
	return out
}
