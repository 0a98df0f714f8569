package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
	"github.com/cognicore/episcan/pkg/episcan/internalerr"
	"github.com/cognicore/episcan/pkg/episcan/store"
)

func result(episode, runID string, at time.Time, brands ...string) store.Result {
	r := store.Result{RunID: runID, EpisodeID: episode, Tier: "primary", EmittedAt: at}
	for _, b := range brands {
		r.Entities = append(r.Entities, store.Entity{
			Kind:         "Item",
			Name:         "コート",
			Confidence:   70,
			MentionCount: 2,
			Fields:       candidate.Fields{Brand: b},
			Sources:      []string{"d1"},
		})
	}
	return r
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := New()
	r := result("ep1", "run1", time.Unix(100, 0), "UNIQLO")
	if err := s.SaveResult(ctx, r); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	r.Entities[0].Sources[0] = "mutated"
	got, err := s.GetResult(ctx, "ep1")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if got.Entities[0].Sources[0] != "d1" {
		t.Error("store must keep its own copy")
	}

	if _, err := s.GetResult(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.SaveResult(ctx, store.Result{}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSaveReplacesEpisode(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.SaveResult(ctx, result("ep1", "run1", time.Unix(100, 0), "UNIQLO"))
	_ = s.SaveResult(ctx, result("ep1", "run2", time.Unix(200, 0), "GU"))

	got, _ := s.GetResult(ctx, "ep1")
	if got.RunID != "run2" || got.Entities[0].Fields.Brand != "GU" {
		t.Fatalf("expected replacement, got %+v", got)
	}
	list, _ := s.ListResults(ctx, 0)
	if len(list) != 1 {
		t.Fatalf("expected 1 stored result, got %d", len(list))
	}
}

func TestListResultsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.SaveResult(ctx, result("ep1", "run1", time.Unix(100, 0)))
	_ = s.SaveResult(ctx, result("ep2", "run2", time.Unix(300, 0)))
	_ = s.SaveResult(ctx, result("ep3", "run3", time.Unix(200, 0)))

	list, err := s.ListResults(ctx, 2)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(list) != 2 || list[0].EpisodeID != "ep2" || list[1].EpisodeID != "ep3" {
		t.Fatalf("unexpected order %+v", list)
	}
}

func TestBrandMentions(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.SaveResult(ctx, result("ep1", "run1", time.Unix(100, 0), "UNIQLO", "GU"))
	_ = s.SaveResult(ctx, result("ep2", "run2", time.Unix(200, 0), "UNIQLO"))

	stats, err := s.BrandMentions(ctx)
	if err != nil {
		t.Fatalf("BrandMentions: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 brands, got %+v", stats)
	}
	if stats[0].Brand != "GU" || stats[1].Brand != "UNIQLO" {
		t.Fatalf("stats should be sorted by brand: %+v", stats)
	}
	u := stats[1]
	if u.Episodes != 2 || u.Mentions != 4 || u.AvgConfidence != 70 {
		t.Errorf("unexpected UNIQLO stats %+v", u)
	}
}
