package candidate

import "math"

// Confidence is the canonical 0-100 score. Tiers are derived from it.
type Confidence float64

// Tier is a coarse view of a confidence score
type Tier string

const (
	High   Tier = "high"
	Medium Tier = "medium"
	Low    Tier = "low"
)

// Tier boundaries
const (
	HighFloor   Confidence = 80
	MediumFloor Confidence = 60
)

// Clamp bounds c to [0, 100]
func (c Confidence) Clamp() Confidence {
	return Confidence(math.Max(0, math.Min(100, float64(c))))
}

// Tier maps the score onto high/medium/low
func (c Confidence) Tier() Tier {
	switch {
	case c >= HighFloor:
		return High
	case c >= MediumFloor:
		return Medium
	default:
		return Low
	}
}

// Round returns the score rounded to one decimal place
func (c Confidence) Round() float64 {
	return math.Round(float64(c)*10) / 10
}

// FromTier returns the representative score for a tier label, used when a
// collaborator only supplies a tier
func FromTier(t Tier) Confidence {
	switch t {
	case High:
		return 85
	case Medium:
		return 70
	case Low:
		return 40
	}
	return 0
}
