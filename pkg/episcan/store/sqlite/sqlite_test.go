package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
	"github.com/cognicore/episcan/pkg/episcan/internalerr"
	"github.com/cognicore/episcan/pkg/episcan/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleResult(episode, runID string, at time.Time, brands ...string) store.Result {
	r := store.Result{RunID: runID, EpisodeID: episode, Tier: "primary", EmittedAt: at}
	for _, b := range brands {
		r.Entities = append(r.Entities, store.Entity{
			Kind:         "Item",
			Name:         "ダウンジャケット",
			Confidence:   88,
			MentionCount: 2,
			Fields:       candidate.Fields{Brand: b, Price: 5990},
			Sources:      []string{"d1", "d2"},
		})
	}
	return r
}

// TestSQLiteRoundTrip stores a result and reads it back
func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	at := time.Date(2026, 3, 4, 5, 6, 7, 123456789, time.UTC)
	r := sampleResult("ep1", "01HZZZZZZZZZZZZZZZZZZZZZZZ", at, "UNIQLO")
	r.Entities = append(r.Entities, store.Entity{
		Kind:         "Location",
		Name:         "びっくりドンキー",
		Category:     "ハンバーグ",
		Confidence:   50,
		MentionCount: 1,
		Inferred:     true,
	})
	if err := st.SaveResult(ctx, r); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	got, err := st.GetResult(ctx, "ep1")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if !got.EmittedAt.Equal(at) {
		t.Errorf("emitted_at = %v, want %v", got.EmittedAt, at)
	}
	if len(got.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(got.Entities))
	}
	item := got.Entities[0]
	if item.Fields.Brand != "UNIQLO" || item.Fields.Price != 5990 || len(item.Sources) != 2 {
		t.Errorf("item mismatch: %+v", item)
	}
	loc := got.Entities[1]
	if !loc.Inferred || loc.Category != "ハンバーグ" || len(loc.Sources) != 0 {
		t.Errorf("location mismatch: %+v", loc)
	}
}

func TestSQLiteNotFoundAndInvalid(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	if _, err := st.GetResult(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := st.SaveResult(ctx, store.Result{EpisodeID: "ep"}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

// TestSQLiteReplace checks that re-running an episode replaces its result
func TestSQLiteReplace(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	if err := st.SaveResult(ctx, sampleResult("ep1", "run1", time.Unix(100, 0), "UNIQLO")); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	if err := st.SaveResult(ctx, sampleResult("ep1", "run2", time.Unix(200, 0), "GU")); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	got, err := st.GetResult(ctx, "ep1")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if got.RunID != "run2" || len(got.Entities) != 1 || got.Entities[0].Fields.Brand != "GU" {
		t.Fatalf("expected replacement, got %+v", got)
	}

	stats, err := st.BrandMentions(ctx)
	if err != nil {
		t.Fatalf("BrandMentions: %v", err)
	}
	if len(stats) != 1 || stats[0].Brand != "GU" {
		t.Fatalf("old entities should be gone, got %+v", stats)
	}
}

func TestSQLiteListAndBrandMentions(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	for _, r := range []store.Result{
		sampleResult("ep1", "run1", time.Unix(100, 0), "UNIQLO"),
		sampleResult("ep2", "run2", time.Unix(300, 0), "UNIQLO", "ZARA"),
		sampleResult("ep3", "run3", time.Unix(200, 0)),
	} {
		if err := st.SaveResult(ctx, r); err != nil {
			t.Fatalf("SaveResult: %v", err)
		}
	}

	list, err := st.ListResults(ctx, 2)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(list) != 2 || list[0].EpisodeID != "ep2" || list[1].EpisodeID != "ep3" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if len(list[0].Entities) != 2 {
		t.Errorf("entities not loaded: %+v", list[0])
	}

	stats, err := st.BrandMentions(ctx)
	if err != nil {
		t.Fatalf("BrandMentions: %v", err)
	}
	if len(stats) != 2 || stats[0].Brand != "UNIQLO" || stats[1].Brand != "ZARA" {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats[0].Episodes != 2 || stats[0].Mentions != 4 || stats[0].AvgConfidence != 88 {
		t.Errorf("unexpected UNIQLO stats %+v", stats[0])
	}
}
