package autotune

import (
	"context"
	"errors"
	"sort"

	"github.com/cognicore/episcan/pkg/episcan/dict"
	"github.com/cognicore/episcan/pkg/episcan/store"
)

// StatsProvider supplies per-brand selection stats (e.g., from the store).
type StatsProvider interface {
	BrandMentions(ctx context.Context) ([]store.BrandStat, error)
}

// Reviewer optionally approves brand additions.
type Reviewer interface {
	ApproveBrand(ctx context.Context, sugg Suggestion) (bool, error)
}

// Suggestion is a proposed brand dictionary entry.
type Suggestion struct {
	Brand         string
	Episodes      int64
	AvgConfidence float64
}

// Thresholds control auto-approval sensitivity.
type Thresholds struct {
	MinEpisodes   int64
	MinConfidence float64
}

// BrandTuner proposes brands that passed the shape heuristic often enough to
// deserve a dictionary entry.
type BrandTuner struct {
	Provider   StatsProvider
	Dict       *dict.Dict
	Thresholds Thresholds
	Reviewer   Reviewer
}

// Run returns suggestions ordered by episode count, then brand.
func (t *BrandTuner) Run(ctx context.Context) ([]Suggestion, error) {
	if t.Provider == nil {
		return nil, errors.New("brand autotune: nil stats provider")
	}
	stats, err := t.Provider.BrandMentions(ctx)
	if err != nil {
		return nil, err
	}
	th := t.thresholdsOrDefault()

	var suggestions []Suggestion
	for _, stat := range stats {
		if t.Dict != nil && t.Dict.KnownBrand(stat.Brand) {
			continue
		}
		if stat.Episodes < th.MinEpisodes {
			continue
		}
		if stat.AvgConfidence < th.MinConfidence {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Brand:         stat.Brand,
			Episodes:      stat.Episodes,
			AvgConfidence: stat.AvgConfidence,
		})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Episodes != suggestions[j].Episodes {
			return suggestions[i].Episodes > suggestions[j].Episodes
		}
		return suggestions[i].Brand < suggestions[j].Brand
	})

	if t.Reviewer == nil {
		return suggestions, nil
	}

	var approved []Suggestion
	for _, s := range suggestions {
		ok, err := t.Reviewer.ApproveBrand(ctx, s)
		if err != nil {
			return nil, err
		}
		if ok {
			approved = append(approved, s)
		}
	}
	return approved, nil
}

func (t *BrandTuner) thresholdsOrDefault() Thresholds {
	th := t.Thresholds
	if th.MinEpisodes == 0 {
		th.MinEpisodes = 3
	}
	if th.MinConfidence == 0 {
		th.MinConfidence = 60
	}
	return th
}

// Apply appends approved suggestions to tables as new canonical brands
func Apply(tables dict.Tables, suggestions []Suggestion) dict.Tables {
	out := tables
	out.Brands = append([]dict.BrandEntry(nil), tables.Brands...)
	for _, s := range suggestions {
		out.Brands = append(out.Brands, dict.BrandEntry{Canonical: s.Brand})
	}
	return out
}
