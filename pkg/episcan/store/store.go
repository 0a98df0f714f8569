package store

import (
	"context"
	"time"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
	"github.com/cognicore/episcan/pkg/episcan/emit"
)

// Store persists emitted selection results. It sits outside the pipeline:
// the engine never reads from it.
type Store interface {
	Close() error

	// SaveResult stores r, replacing any earlier result for the same episode
	SaveResult(ctx context.Context, r Result) error
	// GetResult returns the stored result for an episode or
	// internalerr.ErrNotFound
	GetResult(ctx context.Context, episodeID string) (Result, error)
	// ListResults returns up to limit results, most recent first
	ListResults(ctx context.Context, limit int) ([]Result, error)

	// BrandMentions aggregates stored item entities per brand
	BrandMentions(ctx context.Context) ([]BrandStat, error)
}

// Result is a stored selection
type Result struct {
	RunID     string
	EpisodeID string
	Tier      string
	EmittedAt time.Time
	Entities  []Entity
}

// Entity is a stored selected entity
type Entity struct {
	Kind         string
	Name         string
	Category     string
	Confidence   float64
	MentionCount int
	Fields       candidate.Fields
	Sources      []string
	Inferred     bool
}

// BrandStat summarizes how often a brand was selected
type BrandStat struct {
	Brand         string
	Episodes      int64
	Mentions      int64
	AvgConfidence float64
}

// FromOutput converts an emitted output into its stored form
func FromOutput(out emit.Output) Result {
	r := Result{
		RunID:     out.RunID,
		EpisodeID: out.EpisodeID,
		Tier:      string(out.SelectionTier),
		EmittedAt: out.EmittedAt,
		Entities:  make([]Entity, len(out.Entities)),
	}
	for i, e := range out.Entities {
		r.Entities[i] = Entity{
			Kind:         string(e.Kind),
			Name:         e.Name,
			Category:     e.Category,
			Confidence:   e.Confidence,
			MentionCount: e.MentionCount,
			Fields:       e.ExtractedFields,
			Sources:      append([]string(nil), e.SupportingSourceIDs...),
			Inferred:     e.Inferred,
		}
	}
	return r
}
