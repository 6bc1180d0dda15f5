// Package pipeline runs one submission through transcript retrieval and
// analysis, exposing its progress as an observable state machine.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
	"github.com/Ronnakrit11/nextai-ytsummary/pkg/youtubeurl"
)

// ErrBusy is returned by Submit when a run is already in progress or its
// result has not been reset.
var ErrBusy = errors.New("pipeline is not idle")

const (
	MsgURLRequired  = "Please enter a YouTube URL"
	MsgInvalidURL   = "Please enter a valid YouTube URL"
	MsgNoTranscript = "This video does not have a transcript available."
	MsgNoAnalysis   = "Failed to generate analysis"
	MsgUnexpected   = "An unexpected error occurred. Please try again."

	noTranscriptPhrase = "Could not find any transcripts"
)

const (
	defaultTickInterval = 300 * time.Millisecond
	initialProgress     = 10
	progressStep        = 5
	progressCeiling     = 40
)

// State is a pipeline lifecycle state.
type State int

const (
	Idle State = iota
	FetchingTranscript
	AnalyzingContent
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FetchingTranscript:
		return "fetching_transcript"
	case AnalyzingContent:
		return "analyzing_content"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s only leaves via Reset.
func (s State) Terminal() bool {
	return s == Complete || s == Failed
}

// TranscriptSource retrieves the transcript for a video URL.
type TranscriptSource interface {
	FetchTranscript(ctx context.Context, url string) ([]models.TranscriptItem, error)
}

// Analyzer turns a transcript into an Analysis.
type Analyzer interface {
	Analyze(ctx context.Context, items []models.TranscriptItem) (*models.Analysis, error)
}

// UserMessager is implemented by errors that carry a message safe to show to
// end users.
type UserMessager interface {
	UserMessage() string
}

// Snapshot is a copy of the observable pipeline state.
type Snapshot struct {
	State      State
	Progress   int
	VideoID    string
	VideoURL   string
	Transcript []models.TranscriptItem
	Analysis   *models.Analysis
	Err        string
}

// Pipeline sequences URL validation, transcript retrieval, and analysis for
// one submission at a time. It is safe for concurrent use.
type Pipeline struct {
	source   TranscriptSource
	analyzer Analyzer
	tick     time.Duration

	mu       sync.Mutex
	gen      uint64
	seq      uint64 // bumped on every change, under mu
	snap     Snapshot
	onChange func(Snapshot)

	notifyMu  sync.Mutex
	delivered uint64 // seq of the last snapshot handed to onChange, under notifyMu
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTickInterval sets how often progress advances while fetching.
// A non-positive interval disables the progress ticker.
func WithTickInterval(d time.Duration) Option {
	return func(p *Pipeline) { p.tick = d }
}

// WithOnChange registers fn to receive every state change.
func WithOnChange(fn func(Snapshot)) Option {
	return func(p *Pipeline) { p.onChange = fn }
}

// New creates an idle Pipeline.
func New(source TranscriptSource, analyzer Analyzer, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:   source,
		analyzer: analyzer,
		tick:     defaultTickInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnChange replaces the change callback. fn is invoked outside the state
// lock after every transition and progress tick. Deliveries are serialized
// and never go backwards: a snapshot superseded before its turn is dropped.
// fn must not call Submit or Reset.
func (p *Pipeline) OnChange(fn func(Snapshot)) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap.clone()
}

// Submit starts a run for rawURL. Validation failures move the pipeline
// straight to Failed. The returned channel closes once the run's stages have
// finished, whether or not their results were kept.
func (p *Pipeline) Submit(ctx context.Context, rawURL string) (<-chan struct{}, error) {
	done := make(chan struct{})

	p.mu.Lock()
	if p.snap.State != Idle {
		p.mu.Unlock()
		return nil, ErrBusy
	}

	url := rawURL
	var failMsg string
	switch {
	case strings.TrimSpace(url) == "":
		failMsg = MsgURLRequired
	case !youtubeurl.IsValidURL(url):
		failMsg = MsgInvalidURL
	}
	if failMsg != "" {
		p.snap = Snapshot{State: Failed, Err: failMsg}
		p.unlockAndNotify()
		close(done)
		return done, nil
	}

	p.gen++
	gen := p.gen
	p.snap = Snapshot{
		State:    FetchingTranscript,
		Progress: initialProgress,
		VideoID:  youtubeurl.ExtractVideoID(url),
		VideoURL: url,
	}
	p.unlockAndNotify()

	go p.run(ctx, gen, url, done)
	return done, nil
}

// Reset returns the pipeline to Idle from any state. Results of a run still
// in flight are discarded when they arrive.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	p.gen++
	p.snap = Snapshot{State: Idle}
	p.unlockAndNotify()
}

func (p *Pipeline) run(ctx context.Context, gen uint64, url string, done chan<- struct{}) {
	defer close(done)

	stopTicker := p.startTicker(gen)
	items, err := p.source.FetchTranscript(ctx, url)
	stopTicker()

	if err != nil {
		p.fail(gen, transcriptMessage(err))
		return
	}
	if !p.advance(gen, func(s *Snapshot) {
		s.State = AnalyzingContent
		s.Progress = 100
		s.Transcript = items
	}) {
		return
	}

	analysis, err := p.analyzer.Analyze(ctx, items)
	switch {
	case err != nil:
		p.fail(gen, userMessage(err))
	case analysis == nil:
		p.fail(gen, MsgNoAnalysis)
	default:
		p.advance(gen, func(s *Snapshot) {
			s.State = Complete
			s.Analysis = analysis
		})
	}
}

// startTicker advances progress toward the ceiling while the transcript is
// being fetched. The returned func stops it and waits for it to exit.
func (p *Pipeline) startTicker(gen uint64) func() {
	if p.tick <= 0 {
		return func() {}
	}

	stop := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		t := time.NewTicker(p.tick)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				p.advance(gen, func(s *Snapshot) {
					if s.State == FetchingTranscript {
						s.Progress = min(s.Progress+progressStep, progressCeiling)
					}
				})
			}
		}
	}()
	return func() {
		close(stop)
		<-exited
	}
}

// fail moves the run to Failed, dropping any partial results.
func (p *Pipeline) fail(gen uint64, msg string) {
	p.advance(gen, func(s *Snapshot) {
		*s = Snapshot{State: Failed, Err: msg}
	})
}

// advance applies fn if gen is still the current run and notifies observers.
// It reports whether the update was applied.
func (p *Pipeline) advance(gen uint64, fn func(*Snapshot)) bool {
	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return false
	}
	fn(&p.snap)
	p.unlockAndNotify()
	return true
}

// unlockAndNotify releases p.mu and hands the state it guarded to the
// change callback. Must be called with p.mu held.
func (p *Pipeline) unlockAndNotify() {
	p.seq++
	seq := p.seq
	cb := p.onChange
	snap := p.snap.clone()
	p.mu.Unlock()
	if cb == nil {
		return
	}

	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	if seq < p.delivered {
		return
	}
	p.delivered = seq
	cb(snap)
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Transcript != nil {
		out.Transcript = append([]models.TranscriptItem(nil), s.Transcript...)
	}
	if s.Analysis != nil {
		a := *s.Analysis
		a.KeyPoints = append([]string(nil), s.Analysis.KeyPoints...)
		out.Analysis = &a
	}
	return out
}

func transcriptMessage(err error) string {
	msg := userMessage(err)
	if strings.Contains(msg, noTranscriptPhrase) {
		return MsgNoTranscript
	}
	return msg
}

func userMessage(err error) string {
	var um UserMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgUnexpected
}
