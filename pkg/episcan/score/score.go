package score

import (
	"strings"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
	"github.com/cognicore/episcan/pkg/episcan/dict"
)

// Weights are the additive bucket values. They were tuned by hand against
// sample episodes and are meant to be overridden from configuration.
type Weights struct {
	IntentStrong   float64 `yaml:"intent_strong" toml:"intent_strong"`
	IntentMid      float64 `yaml:"intent_mid" toml:"intent_mid"`
	IntentBaseline float64 `yaml:"intent_baseline" toml:"intent_baseline"`

	Price   float64 `yaml:"price" toml:"price"`
	Address float64 `yaml:"address" toml:"address"`
	Phone   float64 `yaml:"phone" toml:"phone"`
	Hours   float64 `yaml:"hours" toml:"hours"`

	KnownBrand    float64 `yaml:"known_brand" toml:"known_brand"`
	KnownLandmark float64 `yaml:"known_landmark" toml:"known_landmark"`

	// Trust is multiplied by the source document's trust (0..1)
	Trust float64 `yaml:"trust" toml:"trust"`
}

// DefaultWeights returns the stock weights
func DefaultWeights() Weights {
	return Weights{
		IntentStrong:   30,
		IntentMid:      22,
		IntentBaseline: 15,
		Price:          20,
		Address:        15,
		Phone:          10,
		Hours:          8,
		KnownBrand:     25,
		KnownLandmark:  20,
		Trust:          20,
	}
}

// Scorer computes confidence from independent signal buckets
type Scorer struct {
	weights Weights
	dict    *dict.Dict
}

// NewScorer creates a scorer with the given weights
func NewScorer(w Weights, d *dict.Dict) *Scorer {
	return &Scorer{weights: w, dict: d}
}

// Weights returns the weights in use
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Breakdown provides the contribution of every bucket
type Breakdown struct {
	Intent     float64
	Structured float64
	Dictionary float64
	Trust      float64
	Total      candidate.Confidence
}

// Score calculates the confidence of a raw candidate
//
// score = intent + structured + dictionary + trust·w, clamped to [0, 100]
func (s *Scorer) Score(raw candidate.Raw, matched string) candidate.Confidence {
	return s.ScoreWithBreakdown(raw, matched).Total
}

// ScoreWithBreakdown calculates the score with per-bucket detail
func (s *Scorer) ScoreWithBreakdown(raw candidate.Raw, matched string) Breakdown {
	text := matched + " " + raw.Context
	b := Breakdown{
		Intent: s.intent(raw.Kind, text),
		Trust:  s.weights.Trust * clampTrust(raw.Trust),
	}

	switch raw.Kind {
	case candidate.Item:
		if raw.Fields.Price > 0 {
			b.Structured += s.weights.Price
		}
		if s.dict.KnownBrand(raw.Fields.Brand) {
			b.Dictionary = s.weights.KnownBrand
		}
	case candidate.Location:
		if raw.Fields.Address != "" {
			b.Structured += s.weights.Address
		}
		if raw.Fields.Phone != "" {
			b.Structured += s.weights.Phone
		}
		if raw.Fields.Hours != "" {
			b.Structured += s.weights.Hours
		}
		if _, ok := s.dict.Landmark(raw.Name); ok {
			b.Dictionary = s.weights.KnownLandmark
		}
	}

	b.Total = candidate.Confidence(b.Intent + b.Structured + b.Dictionary + b.Trust).Clamp()
	return b
}

// ScoreAll assigns a confidence to every candidate using its excerpt as the
// matched rule text
func (s *Scorer) ScoreAll(raws []candidate.Raw) []candidate.Raw {
	out := make([]candidate.Raw, len(raws))
	for i, r := range raws {
		r.Confidence = s.Score(r, r.Excerpt)
		out[i] = r
	}
	return out
}

// ScoreSignal scores a category signal. The category keyword is itself a
// dictionary hit, so it earns the landmark bucket.
func (s *Scorer) ScoreSignal(sig candidate.CategorySignal) candidate.Confidence {
	total := s.intent(candidate.Location, sig.Context) +
		s.weights.KnownLandmark +
		s.weights.Trust*clampTrust(sig.Trust)
	return candidate.Confidence(total).Clamp()
}

func (s *Scorer) intent(kind candidate.Kind, text string) float64 {
	in := s.dict.Tables().Intent
	strong, mid := in.LocationStrong, in.LocationMid
	if kind == candidate.Item {
		strong, mid = in.ItemStrong, in.ItemMid
	}
	switch {
	case containsAny(text, strong):
		return s.weights.IntentStrong
	case containsAny(text, mid):
		return s.weights.IntentMid
	default:
		return s.weights.IntentBaseline
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(text, candidate.Normalize(w)) {
			return true
		}
	}
	return false
}

func clampTrust(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
