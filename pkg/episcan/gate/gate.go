package gate

import (
	"sort"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
)

// Tier records which threshold admitted the selected entities
type Tier string

const (
	Primary  Tier = "primary"
	Fallback Tier = "fallback"
	None     Tier = "none"
)

// Thresholds configure the gate
type Thresholds struct {
	Primary    float64 `yaml:"primary" toml:"primary"`
	Fallback   float64 `yaml:"fallback" toml:"fallback"`
	MaxResults int     `yaml:"max_results" toml:"max_results"`
}

// DefaultThresholds returns primary 70, fallback 50, at most 3 results
func DefaultThresholds() Thresholds {
	return Thresholds{Primary: 70, Fallback: 50, MaxResults: 3}
}

// Result is the selected entity set for one episode
type Result struct {
	EpisodeID string
	Tier      Tier
	Entities  []candidate.Merged
}

// Gate ranks merged candidates and applies the thresholds
type Gate struct {
	th Thresholds
}

// New creates a gate. The zero Thresholds selects DefaultThresholds; any
// other value is used as given, so Primary: 0 admits every candidate. A
// non-positive MaxResults always means the default of 3.
func New(th Thresholds) *Gate {
	def := DefaultThresholds()
	if th.Primary == 0 && th.Fallback == 0 {
		th.Primary, th.Fallback = def.Primary, def.Fallback
	}
	if th.MaxResults <= 0 {
		th.MaxResults = def.MaxResults
	}
	return &Gate{th: th}
}

// Thresholds returns the effective thresholds
func (g *Gate) Thresholds() Thresholds {
	return g.th
}

// Select keeps the best candidates at or above the primary threshold. Only
// when none qualify is the fallback threshold tried. An empty selection is
// reported with tier None and is not an error.
func (g *Gate) Select(episodeID string, merged []candidate.Merged) Result {
	ranked := Rank(merged)
	for _, step := range []struct {
		tier      Tier
		threshold float64
	}{
		{Primary, g.th.Primary},
		{Fallback, g.th.Fallback},
	} {
		picked := g.take(ranked, step.threshold)
		if len(picked) > 0 {
			return Result{EpisodeID: episodeID, Tier: step.tier, Entities: picked}
		}
	}
	return Result{EpisodeID: episodeID, Tier: None, Entities: []candidate.Merged{}}
}

func (g *Gate) take(ranked []candidate.Merged, threshold float64) []candidate.Merged {
	var out []candidate.Merged
	for _, m := range ranked {
		// compare the emitted (rounded) score so 69.97 counts as 70
		if m.Confidence.Round() < threshold {
			// ranked is sorted by confidence, nothing further qualifies
			break
		}
		out = append(out, m)
		if len(out) == g.th.MaxResults {
			break
		}
	}
	return out
}

// Rank sorts a copy of merged by confidence, then mention count, then
// discovery order
func Rank(merged []candidate.Merged) []candidate.Merged {
	ranked := append([]candidate.Merged(nil), merged...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.MentionCount != b.MentionCount {
			return a.MentionCount > b.MentionCount
		}
		return a.Discovery < b.Discovery
	})
	return ranked
}
