// Package merge folds raw candidates that share a normalized key into one
// merged candidate per real-world entity.
//
// Identity is the exact normalized key. Spelling variants such as
// "スシロー" and "sushiro" stay separate unless the dictionary maps one onto
// the other; the scoring weights assume that behavior.
package merge

import (
	"sort"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
)

// Merger groups and folds candidates
type Merger struct {
	// MentionBonus is added once for every mention beyond the first
	MentionBonus float64
}

// New creates a merger
func New(mentionBonus float64) *Merger {
	if mentionBonus < 0 {
		mentionBonus = 0
	}
	return &Merger{MentionBonus: mentionBonus}
}

type group struct {
	key     string
	members []candidate.Raw
}

func (g *group) first() candidate.Raw {
	return g.members[0]
}

func (g *group) maxConfidence() candidate.Confidence {
	var best candidate.Confidence
	for _, m := range g.members {
		if m.Confidence > best {
			best = m.Confidence
		}
	}
	return best
}

// Merge groups raws by key. The result does not depend on the order of
// raws: members are folded in canonical discovery order (document, offset,
// rule precedence).
func (m *Merger) Merge(raws []candidate.Raw) []candidate.Merged {
	if len(raws) == 0 {
		return nil
	}
	sorted := append([]candidate.Raw(nil), raws...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Before(sorted[j])
	})

	groups := make(map[string]*group)
	var brandOnly []candidate.Raw
	for _, r := range sorted {
		if r.BrandOnly() {
			brandOnly = append(brandOnly, r)
			continue
		}
		addTo(groups, r.Key(), r)
	}

	// brand-only mentions are matched against the specific groups before
	// any of them is attached, so attachment cannot depend on order
	targets := brandTargets(groups)
	for _, r := range brandOnly {
		key := r.Key()
		if t, ok := targets[candidate.Fold(r.Fields.Brand)]; ok {
			key = t
		}
		addTo(groups, key, r)
	}

	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		sort.SliceStable(g.members, func(i, j int) bool {
			return g.members[i].Before(g.members[j])
		})
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i].first(), ordered[j].first()
		if a.Before(b) {
			return true
		}
		if b.Before(a) {
			return false
		}
		return ordered[i].key < ordered[j].key
	})

	out := make([]candidate.Merged, len(ordered))
	for i, g := range ordered {
		out[i] = m.fold(g)
		out[i].Discovery = i
	}
	return out
}

func addTo(groups map[string]*group, key string, r candidate.Raw) {
	g, ok := groups[key]
	if !ok {
		g = &group{key: key}
		groups[key] = g
	}
	g.members = append(g.members, r)
}

// brandTargets picks, per folded brand, the specific item group a bare brand
// mention should join: highest confidence first, then smallest key
func brandTargets(groups map[string]*group) map[string]string {
	type best struct {
		key  string
		conf candidate.Confidence
	}
	picks := make(map[string]best)
	for key, g := range groups {
		r := g.first()
		if r.Kind != candidate.Item || r.Fields.Brand == "" {
			continue
		}
		brand := candidate.Fold(r.Fields.Brand)
		conf := g.maxConfidence()
		cur, ok := picks[brand]
		if !ok || conf > cur.conf || (conf == cur.conf && key < cur.key) {
			picks[brand] = best{key: key, conf: conf}
		}
	}
	out := make(map[string]string, len(picks))
	for brand, p := range picks {
		out[brand] = p.key
	}
	return out
}

func (m *Merger) fold(g *group) candidate.Merged {
	first := g.first()
	merged := candidate.Merged{
		Key:          g.key,
		Kind:         first.Kind,
		MentionCount: len(g.members),
	}

	var (
		best     candidate.Raw
		haveBest bool
		seen     = make(map[string]struct{})
	)
	for _, r := range g.members {
		if merged.Category == "" {
			merged.Category = r.Category
		}
		merged.Fields = merged.Fields.Union(r.Fields)
		if _, ok := seen[r.DocID]; !ok && r.DocID != "" {
			seen[r.DocID] = struct{}{}
			merged.SupportingSources = append(merged.SupportingSources, r.DocID)
		}
		if r.Name != "" && (!haveBest || r.Confidence > best.Confidence) {
			best, haveBest = r, true
		}
	}

	merged.BestName = best.Name
	if !haveBest {
		merged.BestName = first.Fields.Brand
	}

	// merging only ever promotes
	top := g.maxConfidence()
	promoted := candidate.Confidence(float64(top) + m.MentionBonus*float64(len(g.members)-1)).Clamp()
	if promoted < top {
		promoted = top
	}
	merged.Confidence = promoted
	return merged
}
