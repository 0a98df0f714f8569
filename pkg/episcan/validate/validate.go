// Package validate drops raw candidates that cannot plausibly name an entity.
//
// The two kinds use opposite defaults. Items are rejected unless the brand
// looks like a brand (dictionary hit, a Latin run or a katakana run), while
// locations are accepted unless they fail a structural check, since place
// names vary too much for a positive test.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
	"github.com/cognicore/episcan/pkg/episcan/dict"
)

// Bounds are inclusive rune-length limits
type Bounds struct {
	Min int `yaml:"min" toml:"min"`
	Max int `yaml:"max" toml:"max"`
}

func (b Bounds) contains(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= b.Min && n <= b.Max
}

// Limits holds the length bounds applied per field
type Limits struct {
	ItemName     Bounds `yaml:"item_name" toml:"item_name"`
	Brand        Bounds `yaml:"brand" toml:"brand"`
	LocationName Bounds `yaml:"location_name" toml:"location_name"`
}

// DefaultLimits returns the standard bounds
func DefaultLimits() Limits {
	return Limits{
		ItemName:     Bounds{Min: 2, Max: 50},
		Brand:        Bounds{Min: 2, Max: 20},
		LocationName: Bounds{Min: 3, Max: 50},
	}
}

var (
	latinRun   = regexp.MustCompile(`[A-Za-z][A-Za-z0-9&.'\-]{1,19}`)
	kanaRun    = regexp.MustCompile(`[\p{Katakana}ー]{2,15}`)
	numericRe  = regexp.MustCompile(`^[0-9\s\-.,:]+$`)
	bracketsRe = regexp.MustCompile(`[()\[\]{}【】「」『』<>〈〉《》]`)
)

// Filter checks candidates against the dictionaries and limits
type Filter struct {
	dict   *dict.Dict
	limits Limits
}

// New creates a filter
func New(d *dict.Dict, limits Limits) *Filter {
	return &Filter{dict: d, limits: limits}
}

// Reason explains a verdict
type Reason string

const (
	ReasonLength     Reason = "length"
	ReasonExcluded   Reason = "excluded"
	ReasonStructure  Reason = "structure"
	ReasonUnknown    Reason = "unknown_brand"
	ReasonDictionary Reason = "dictionary"
	ReasonBrandShape Reason = "brand_shape"
	ReasonDefault    Reason = "default_accept"
	ReasonKind       Reason = "unknown_kind"
)

// Check returns the verdict for raw and why it was reached
func (f *Filter) Check(raw candidate.Raw) (bool, Reason) {
	switch raw.Kind {
	case candidate.Item:
		return f.checkItem(raw)
	case candidate.Location:
		return f.checkLocation(raw.Name)
	}
	return false, ReasonKind
}

// Valid reports whether raw should continue through the pipeline
func (f *Filter) Valid(raw candidate.Raw) bool {
	ok, _ := f.Check(raw)
	return ok
}

// Apply returns the candidates that pass Valid, preserving order
func (f *Filter) Apply(raws []candidate.Raw) []candidate.Raw {
	out := make([]candidate.Raw, 0, len(raws))
	for _, r := range raws {
		if f.Valid(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f *Filter) checkItem(raw candidate.Raw) (bool, Reason) {
	brand := strings.TrimSpace(raw.Fields.Brand)
	// brand-only mentions carry a generic noun such as 服, which is exempt
	// from the name bounds
	if !raw.BrandOnly() && !f.limits.ItemName.contains(raw.Name) {
		return false, ReasonLength
	}
	if !f.limits.Brand.contains(brand) {
		return false, ReasonLength
	}
	// exclusions win over any dictionary hit
	if f.dict.ItemExcluded(raw.Name) || f.dict.ItemExcluded(brand) {
		return false, ReasonExcluded
	}
	if f.dict.KnownBrand(brand) {
		return true, ReasonDictionary
	}
	if LooksLikeBrand(brand) {
		return true, ReasonBrandShape
	}
	return false, ReasonUnknown
}

// LooksLikeBrand is the fallback brand test for tokens missing from the
// dictionary: a Latin run of 2-20 or a katakana run of 2-15 characters
func LooksLikeBrand(brand string) bool {
	return latinRun.MatchString(brand) || kanaRun.MatchString(brand)
}

func (f *Filter) checkLocation(name string) (bool, Reason) {
	name = strings.TrimSpace(name)
	if !f.limits.LocationName.contains(name) {
		return false, ReasonLength
	}
	if numericRe.MatchString(name) || bracketsRe.MatchString(name) {
		return false, ReasonStructure
	}
	if f.dict.LocationExcluded(name) {
		return false, ReasonExcluded
	}
	if _, ok := f.dict.Landmark(name); ok {
		return true, ReasonDictionary
	}
	return true, ReasonDefault
}
