package candidate

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Kind identifies the entity kind a candidate refers to
type Kind string

const (
	Location Kind = "Location"
	Item     Kind = "Item"
)

// SourceType describes where a document's text came from
type SourceType string

const (
	TitleDescription SourceType = "title_description"
	Comment          SourceType = "comment"
	SearchSnippet    SourceType = "search_snippet"
)

// Valid reports whether t is one of the known source types
func (t SourceType) Valid() bool {
	switch t {
	case TitleDescription, Comment, SearchSnippet:
		return true
	}
	return false
}

// SourceDocument is one piece of text about an episode, produced by a fetcher
type SourceDocument struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	SourceType  SourceType `json:"sourceType"`
	SourceTrust float64    `json:"sourceTrust"`
	OriginURL   string     `json:"originUrl,omitempty"`
}

// Fields holds structured values parsed next to a mention.
// Empty strings and a zero price mean "not found".
type Fields struct {
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Hours   string `json:"hours,omitempty"`
	Brand   string `json:"brand,omitempty"`
	Price   int    `json:"price,omitempty"`
	Color   string `json:"color,omitempty"`
}

// Union fills every empty field of f from other and returns the result
func (f Fields) Union(other Fields) Fields {
	if f.Address == "" {
		f.Address = other.Address
	}
	if f.Phone == "" {
		f.Phone = other.Phone
	}
	if f.Hours == "" {
		f.Hours = other.Hours
	}
	if f.Brand == "" {
		f.Brand = other.Brand
	}
	if f.Price == 0 {
		f.Price = other.Price
	}
	if f.Color == "" {
		f.Color = other.Color
	}
	return f
}

func (f Fields) compare(o Fields) int {
	for _, p := range [][2]string{
		{f.Brand, o.Brand},
		{f.Address, o.Address},
		{f.Phone, o.Phone},
		{f.Hours, o.Hours},
		{f.Color, o.Color},
	} {
		if c := strings.Compare(p[0], p[1]); c != 0 {
			return c
		}
	}
	switch {
	case f.Price < o.Price:
		return -1
	case f.Price > o.Price:
		return 1
	}
	return 0
}

// Raw is a single extraction from one document
type Raw struct {
	Kind     Kind
	Name     string // empty for brand-only item mentions
	Category string
	Fields   Fields
	Excerpt  string // matched rule text
	Context  string // excerpt plus surrounding text

	DocID    string
	DocIndex int // position of the source document in the run input
	Offset   int // byte offset of the match in the normalized text
	Rule     string
	RuleRank int
	Trust    float64

	Confidence Confidence
	// GenericName keeps the generic noun of a brand-only mention for display
	GenericName string
}

// Before reports whether r was discovered before o. Position comes first;
// the remaining keys only make the order total, so raws from separate
// Generate calls that share a position still sort the same way.
func (r Raw) Before(o Raw) bool {
	if r.DocIndex != o.DocIndex {
		return r.DocIndex < o.DocIndex
	}
	if r.Offset != o.Offset {
		return r.Offset < o.Offset
	}
	if r.RuleRank != o.RuleRank {
		return r.RuleRank < o.RuleRank
	}
	if r.Name != o.Name {
		return r.Name < o.Name
	}
	if r.DocID != o.DocID {
		return r.DocID < o.DocID
	}
	if r.Confidence != o.Confidence {
		return r.Confidence > o.Confidence
	}
	if c := r.Fields.compare(o.Fields); c != 0 {
		return c < 0
	}
	if r.Category != o.Category {
		return r.Category < o.Category
	}
	if r.Rule != o.Rule {
		return r.Rule < o.Rule
	}
	if r.Excerpt != o.Excerpt {
		return r.Excerpt < o.Excerpt
	}
	if r.Context != o.Context {
		return r.Context < o.Context
	}
	if r.GenericName != o.GenericName {
		return r.GenericName < o.GenericName
	}
	return r.Trust < o.Trust
}

// Key returns the dedup identity of the candidate
func (r Raw) Key() string {
	if r.Kind == Item {
		return Key(r.Kind, r.Fields.Brand, r.Name)
	}
	return Key(r.Kind, r.Name)
}

// BrandOnly reports whether r names a brand without a specific item
func (r Raw) BrandOnly() bool {
	return r.Kind == Item && r.Name == "" && r.Fields.Brand != ""
}

// Merged is the result of folding all raw candidates sharing a key
type Merged struct {
	Key               string
	Kind              Kind
	BestName          string
	Category          string
	Confidence        Confidence
	MentionCount      int
	SupportingSources []string
	Fields            Fields
	Inferred          bool
	Discovery         int // rank in canonical discovery order
}

// Key builds a normalized identity from kind and name parts. Case, width,
// whitespace and punctuation differences collapse; spelling variants do not.
func Key(kind Kind, parts ...string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(kind)))
	for _, p := range parts {
		b.WriteByte('|')
		b.WriteString(Fold(p))
	}
	return b.String()
}

// Fold returns the comparison form of s
func Fold(s string) string {
	s = width.Fold.String(norm.NFKC.String(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Normalize prepares raw document text for rule matching
func Normalize(s string) string {
	return norm.NFKC.String(s)
}

// CategorySignal records a food/place category keyword seen in a document
// that can stand in for a missing store name
type CategorySignal struct {
	Category string
	DocID    string
	DocIndex int
	Offset   int
	Trust    float64
	Context  string
}
