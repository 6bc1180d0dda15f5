package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

// MemoryStore implements Store in process memory. Used by tests and the
// "memory" driver; contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
	seq     uint64
	opts    storeOptions
}

type memoryRecord struct {
	rec *models.SavedAnalysis
	seq uint64 // insertion order, breaks CreatedAt ties
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*memoryRecord),
		opts:    buildOptions(opts),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Create(_ context.Context, p NewSavedAnalysis) (*models.SavedAnalysis, error) {
	rec, err := s.opts.newRecord(p, time.Nanosecond)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.records[rec.ID] = &memoryRecord{rec: rec, seq: s.seq}
	return copyRecord(rec), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.SavedAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(r.rec), nil
}

func (s *MemoryStore) List(_ context.Context) ([]*models.SavedAnalysis, error) {
	s.mu.RLock()
	all := make([]*memoryRecord, 0, len(s.records))
	for _, r := range s.records {
		all = append(all, r)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		ti, tj := all[i].rec.CreatedAt, all[j].rec.CreatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return all[i].seq > all[j].seq
	})

	out := make([]*models.SavedAnalysis, 0, len(all))
	for _, r := range all {
		out = append(out, copyRecord(r.rec))
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, a models.Analysis) (*models.SavedAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.rec.Title = models.TitleFor(a)
	r.rec.Analysis = cloneAnalysis(a)
	return copyRecord(r.rec), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func copyRecord(r *models.SavedAnalysis) *models.SavedAnalysis {
	out := *r
	out.Analysis = cloneAnalysis(r.Analysis)
	return &out
}
