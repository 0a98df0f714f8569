package infer

import (
	"sort"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
	"github.com/cognicore/episcan/pkg/episcan/dict"
)

// SignalScorer scores category signals
type SignalScorer interface {
	ScoreSignal(sig candidate.CategorySignal) candidate.Confidence
}

// Policy controls how much an inferred store is discounted
type Policy struct {
	Discount float64 `yaml:"discount" toml:"discount"`
	Floor    float64 `yaml:"floor" toml:"floor"`
}

// DefaultPolicy returns the stock discount policy
func DefaultPolicy() Policy {
	return Policy{Discount: 10, Floor: 50}
}

// Inferencer maps category signals to representative stores
type Inferencer struct {
	dict   *dict.Dict
	policy Policy
}

// New creates an inferencer
func New(d *dict.Dict, p Policy) *Inferencer {
	if p.Discount <= 0 {
		p.Discount = DefaultPolicy().Discount
	}
	return &Inferencer{dict: d, policy: p}
}

// InferStore returns the canonical store for a category, if any
func (in *Inferencer) InferStore(category string) (string, bool) {
	return in.dict.StoreFor(category)
}

// Discount derives an inferred confidence from the category signal's own
// confidence c. The floor only lifts values that started above it, so the
// result is always strictly below c.
func (in *Inferencer) Discount(c candidate.Confidence) candidate.Confidence {
	v := float64(c) - in.policy.Discount
	if v < in.policy.Floor && float64(c) > in.policy.Floor {
		v = in.policy.Floor
	}
	if v < 0 {
		v = 0
	}
	return candidate.Confidence(v)
}

// Infer appends inferred stores to merged when it holds no direct location.
// One candidate is produced per category, scored from its strongest signal.
func (in *Inferencer) Infer(merged []candidate.Merged, signals []candidate.CategorySignal, scorer SignalScorer) []candidate.Merged {
	if len(signals) == 0 {
		return merged
	}
	for _, m := range merged {
		if m.Kind == candidate.Location && !m.Inferred {
			return merged
		}
	}

	type acc struct {
		category string
		store    string
		best     candidate.Confidence
		count    int
		sources  []string
		first    candidate.CategorySignal
	}
	byStore := make(map[string]*acc)
	for _, sig := range signals {
		store, ok := in.InferStore(sig.Category)
		if !ok {
			continue
		}
		a, ok := byStore[store]
		if !ok {
			a = &acc{category: sig.Category, store: store, first: sig}
			byStore[store] = a
		}
		if before(sig, a.first) {
			a.first = sig
			a.category = sig.Category
		}
		if c := scorer.ScoreSignal(sig); c > a.best {
			a.best = c
		}
		a.count++
		if !contains(a.sources, sig.DocID) {
			a.sources = append(a.sources, sig.DocID)
		}
	}
	if len(byStore) == 0 {
		return merged
	}

	accs := make([]*acc, 0, len(byStore))
	for _, a := range byStore {
		sort.Strings(a.sources)
		accs = append(accs, a)
	}
	sort.Slice(accs, func(i, j int) bool {
		return before(accs[i].first, accs[j].first)
	})

	out := append([]candidate.Merged(nil), merged...)
	for _, a := range accs {
		out = append(out, candidate.Merged{
			Key:               candidate.Key(candidate.Location, a.store),
			Kind:              candidate.Location,
			BestName:          a.store,
			Category:          a.category,
			Confidence:        in.Discount(a.best),
			MentionCount:      a.count,
			SupportingSources: a.sources,
			Inferred:          true,
			Discovery:         len(out),
		})
	}
	return out
}

func before(a, b candidate.CategorySignal) bool {
	if a.DocIndex != b.DocIndex {
		return a.DocIndex < b.DocIndex
	}
	if a.Offset != b.Offset {
		return a.Offset < b.Offset
	}
	return a.Category < b.Category
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
