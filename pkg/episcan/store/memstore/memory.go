package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/episcan/pkg/episcan/internalerr"
	"github.com/cognicore/episcan/pkg/episcan/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	results map[string]store.Result
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{results: make(map[string]store.Result)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveResult replaces the result stored for r.EpisodeID.
func (s *Store) SaveResult(ctx context.Context, r store.Result) error {
	if r.EpisodeID == "" {
		return internalerr.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.EpisodeID] = copyResult(r)
	return nil
}

// GetResult implements store.Store.
func (s *Store) GetResult(ctx context.Context, episodeID string) (store.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[episodeID]
	if !ok {
		return store.Result{}, internalerr.ErrNotFound
	}
	return copyResult(r), nil
}

// ListResults implements store.Store.
func (s *Store) ListResults(ctx context.Context, limit int) ([]store.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Result, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, copyResult(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EmittedAt.Equal(out[j].EmittedAt) {
			return out[i].EmittedAt.After(out[j].EmittedAt)
		}
		return out[i].RunID > out[j].RunID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// BrandMentions implements store.Store.
func (s *Store) BrandMentions(ctx context.Context) ([]store.BrandStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type acc struct {
		episodes map[string]struct{}
		mentions int64
		confSum  float64
		n        int
	}
	byBrand := make(map[string]*acc)
	for _, r := range s.results {
		for _, e := range r.Entities {
			if e.Kind != "Item" || e.Fields.Brand == "" {
				continue
			}
			a, ok := byBrand[e.Fields.Brand]
			if !ok {
				a = &acc{episodes: make(map[string]struct{})}
				byBrand[e.Fields.Brand] = a
			}
			a.episodes[r.EpisodeID] = struct{}{}
			a.mentions += int64(e.MentionCount)
			a.confSum += e.Confidence
			a.n++
		}
	}

	stats := make([]store.BrandStat, 0, len(byBrand))
	for brand, a := range byBrand {
		stats = append(stats, store.BrandStat{
			Brand:         brand,
			Episodes:      int64(len(a.episodes)),
			Mentions:      a.mentions,
			AvgConfidence: a.confSum / float64(a.n),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Brand < stats[j].Brand })
	return stats, nil
}

func copyResult(r store.Result) store.Result {
	out := r
	out.Entities = make([]store.Entity, len(r.Entities))
	for i, e := range r.Entities {
		e.Sources = append([]string(nil), e.Sources...)
		out.Entities[i] = e
	}
	return out
}
