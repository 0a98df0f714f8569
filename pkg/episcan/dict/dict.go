package dict

import (
	"sort"
	"strings"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
)

// Tables is the serializable form of the reference dictionaries
type Tables struct {
	Brands             []BrandEntry    `yaml:"brands" toml:"brands"`
	ItemNouns          []string        `yaml:"item_nouns" toml:"item_nouns"`
	GenericItemNouns   []string        `yaml:"generic_item_nouns" toml:"generic_item_nouns"`
	Colors             []string        `yaml:"colors" toml:"colors"`
	ItemExclusions     []string        `yaml:"item_exclusions" toml:"item_exclusions"`
	LocationExclusions []string        `yaml:"location_exclusions" toml:"location_exclusions"`
	Landmarks          []string        `yaml:"landmarks" toml:"landmarks"`
	Cities             []string        `yaml:"cities" toml:"cities"`
	VenueSuffixes      []string        `yaml:"venue_suffixes" toml:"venue_suffixes"`
	Categories         []CategoryEntry `yaml:"categories" toml:"categories"`
	Intent             Intent          `yaml:"intent" toml:"intent"`
}

// BrandEntry maps a canonical brand name to its hand-maintained aliases
type BrandEntry struct {
	Canonical string   `yaml:"canonical" toml:"canonical"`
	Aliases   []string `yaml:"aliases" toml:"aliases"`
}

// CategoryEntry maps a food/place category keyword to a representative store
type CategoryEntry struct {
	Keyword string `yaml:"keyword" toml:"keyword"`
	Store   string `yaml:"store" toml:"store"`
}

// Intent holds the context clue keyword sets used by the scorer
type Intent struct {
	ItemStrong     []string `yaml:"item_strong" toml:"item_strong"`
	ItemMid        []string `yaml:"item_mid" toml:"item_mid"`
	LocationStrong []string `yaml:"location_strong" toml:"location_strong"`
	LocationMid    []string `yaml:"location_mid" toml:"location_mid"`
}

// Dict is the compiled, read-only lookup view of Tables. It is safe for
// concurrent use.
type Dict struct {
	tables    Tables
	brands    map[string]string // folded alias → canonical
	landmarks []string          // folded
	stores    map[string]string // folded keyword → store
}

// New compiles tables into a Dict
func New(t Tables) *Dict {
	d := &Dict{
		tables: t,
		brands: make(map[string]string),
		stores: make(map[string]string),
	}
	for _, b := range t.Brands {
		if strings.TrimSpace(b.Canonical) == "" {
			continue
		}
		d.brands[candidate.Fold(b.Canonical)] = b.Canonical
		for _, alias := range b.Aliases {
			if key := candidate.Fold(alias); key != "" {
				d.brands[key] = b.Canonical
			}
		}
	}
	for _, l := range append(append([]string{}, t.Landmarks...), t.Cities...) {
		if key := candidate.Fold(l); key != "" {
			d.landmarks = append(d.landmarks, key)
		}
	}
	// longer landmarks first so containment checks report the most specific
	sort.SliceStable(d.landmarks, func(i, j int) bool {
		return len(d.landmarks[i]) > len(d.landmarks[j])
	})
	for _, c := range t.Categories {
		if key := candidate.Fold(c.Keyword); key != "" && c.Store != "" {
			d.stores[key] = c.Store
		}
	}
	return d
}

// Tables returns the source tables
func (d *Dict) Tables() Tables {
	return d.tables
}

// CanonicalBrand resolves a brand token through the alias table
func (d *Dict) CanonicalBrand(brand string) (string, bool) {
	c, ok := d.brands[candidate.Fold(brand)]
	return c, ok
}

// KnownBrand reports whether brand is in the dictionary
func (d *Dict) KnownBrand(brand string) bool {
	_, ok := d.CanonicalBrand(brand)
	return ok
}

// Landmark returns the first known landmark or city contained in name
func (d *Dict) Landmark(name string) (string, bool) {
	folded := candidate.Fold(name)
	if folded == "" {
		return "", false
	}
	for _, l := range d.landmarks {
		if strings.Contains(folded, l) {
			return l, true
		}
	}
	return "", false
}

// ItemExcluded reports whether s contains an item exclusion keyword
func (d *Dict) ItemExcluded(s string) bool {
	return containsAny(s, d.tables.ItemExclusions)
}

// LocationExcluded reports whether s contains a location exclusion keyword
func (d *Dict) LocationExcluded(s string) bool {
	return containsAny(s, d.tables.LocationExclusions)
}

// GenericNoun reports whether name is only a generic item noun
func (d *Dict) GenericNoun(name string) bool {
	folded := candidate.Fold(name)
	for _, g := range d.tables.GenericItemNouns {
		if folded == candidate.Fold(g) {
			return true
		}
	}
	return false
}

// Color returns the first dictionary color word found in s
func (d *Dict) Color(s string) (string, bool) {
	for _, c := range d.tables.Colors {
		if c != "" && strings.Contains(s, c) {
			return c, true
		}
	}
	return "", false
}

// StoreFor maps a category keyword to its representative store
func (d *Dict) StoreFor(category string) (string, bool) {
	s, ok := d.stores[candidate.Fold(category)]
	return s, ok
}

// Empty reports whether the tables hold nothing the generator can match
func (d *Dict) Empty() bool {
	t := d.tables
	return len(t.Brands) == 0 && len(t.ItemNouns) == 0 && len(t.Cities) == 0 &&
		len(t.VenueSuffixes) == 0 && len(t.Categories) == 0
}

func containsAny(s string, keywords []string) bool {
	folded := candidate.Fold(s)
	if folded == "" {
		return false
	}
	for _, kw := range keywords {
		k := candidate.Fold(kw)
		if k != "" && strings.Contains(folded, k) {
			return true
		}
	}
	return false
}
