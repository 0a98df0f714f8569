// Package extract turns source documents into raw Location and Item
// candidates by running ordered regexp cascades over normalized text.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
	"github.com/cognicore/episcan/pkg/episcan/dict"
)

// Generator applies the location and item cascades to documents.
// It is immutable after construction and safe for concurrent use.
type Generator struct {
	dict      *dict.Dict
	locations []Rule
	items     []Rule
	signals   []categoryMatcher
	window    int
}

type categoryMatcher struct {
	keyword string
	re      *regexp.Regexp // set for ASCII keywords, which need word boundaries
}

// Options tunes the generator
type Options struct {
	// ContextRunes is the number of runes kept on each side of a match for
	// field lookup and intent scoring
	ContextRunes int
}

// New compiles the rule cascades from the dictionaries
func New(d *dict.Dict, opts Options) *Generator {
	if opts.ContextRunes <= 0 {
		opts.ContextRunes = 40
	}
	g := &Generator{
		dict:      d,
		locations: locationRules(d),
		items:     itemRules(d),
		window:    opts.ContextRunes,
	}
	for _, c := range d.Tables().Categories {
		kw := candidate.Normalize(strings.TrimSpace(c.Keyword))
		if kw == "" {
			continue
		}
		m := categoryMatcher{keyword: kw}
		if isASCII(kw) {
			m.re = regexp.MustCompile(`(?:^|[^A-Za-z0-9])(` + regexp.QuoteMeta(kw) + `)(?:[^A-Za-z0-9]|$)`)
		}
		g.signals = append(g.signals, m)
	}
	return g
}

// Rules returns the cascade for kind in precedence order
func (g *Generator) Rules(kind candidate.Kind) []Rule {
	if kind == candidate.Item {
		return append([]Rule(nil), g.items...)
	}
	return append([]Rule(nil), g.locations...)
}

// Generate extracts raw candidates from every document. Zero matches is a
// normal, empty result.
func (g *Generator) Generate(docs []candidate.SourceDocument) []candidate.Raw {
	var out []candidate.Raw
	for i, doc := range docs {
		text := candidate.Normalize(doc.Text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, g.cascade(g.locations, text, i, doc)...)
		out = append(out, g.cascade(g.items, text, i, doc)...)
	}
	return out
}

// Signals finds category keywords in every document
func (g *Generator) Signals(docs []candidate.SourceDocument) []candidate.CategorySignal {
	var out []candidate.CategorySignal
	for i, doc := range docs {
		text := candidate.Normalize(doc.Text)
		for _, m := range g.signals {
			start := -1
			if m.re != nil {
				if loc := m.re.FindStringSubmatchIndex(text); loc != nil {
					start = loc[2]
				}
			} else {
				start = strings.Index(text, m.keyword)
			}
			if start < 0 {
				continue
			}
			out = append(out, candidate.CategorySignal{
				Category: m.keyword,
				DocID:    doc.ID,
				DocIndex: i,
				Offset:   start,
				Trust:    doc.SourceTrust,
				Context:  g.context(text, start, start+len(m.keyword)),
			})
		}
	}
	return out
}

type span struct{ start, end int }

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// cascade runs every rule to exhaustion, in order, skipping matches that
// overlap text claimed by an earlier rule
func (g *Generator) cascade(rules []Rule, text string, docIndex int, doc candidate.SourceDocument) []candidate.Raw {
	var (
		claimed []span
		out     []candidate.Raw
	)
	for rank, rule := range rules {
		for _, loc := range rule.re.FindAllStringSubmatchIndex(text, -1) {
			s := span{loc[0], loc[1]}
			if overlapsAny(s, claimed) {
				continue
			}
			groups := submatches(text, loc)
			raw, ok := rule.build(g, groups)
			if !ok {
				continue
			}
			claimed = append(claimed, s)
			if raw.Fields.Address != "" && addressAttached(out, raw.Fields.Address) {
				continue
			}

			raw.Kind = rule.Kind
			raw.Rule = rule.Name
			raw.RuleRank = rank
			raw.Excerpt = groups[0]
			raw.Context = g.context(text, s.start, s.end)
			raw.DocID = doc.ID
			raw.DocIndex = docIndex
			raw.Offset = s.start
			raw.Trust = doc.SourceTrust
			if raw.Kind == candidate.Location {
				raw.Fields = raw.Fields.Union(g.locationFields(text, s.end))
			}
			out = append(out, raw)
		}
	}
	return out
}

func (g *Generator) location(name, category string) candidate.Raw {
	return candidate.Raw{
		Name:     strings.TrimSpace(name),
		Category: category,
	}
}

// item builds an item candidate; brand is canonicalized through the alias
// table and an unparseable price is left out
func (g *Generator) item(brand, name, price string) (candidate.Raw, bool) {
	brand = strings.TrimSpace(brand)
	name = strings.TrimSpace(name)
	if brand == "" || name == "" {
		return candidate.Raw{}, false
	}
	brand = g.resolveBrand(brand)
	raw := candidate.Raw{
		Name: name,
		Fields: candidate.Fields{
			Brand: brand,
			Price: parsePrice(price),
		},
	}
	if color, ok := g.dict.Color(name); ok {
		raw.Fields.Color = color
	}
	if g.dict.GenericNoun(name) {
		raw.GenericName = name
		raw.Name = ""
	}
	return raw, true
}

// resolveBrand canonicalizes brand through the alias table. The Latin brand
// shape can swallow preceding words ("my fav UNIQLO"), so when the whole run
// is unknown the longest word suffix found in the dictionary wins.
func (g *Generator) resolveBrand(brand string) string {
	if canonical, ok := g.dict.CanonicalBrand(brand); ok {
		return canonical
	}
	words := strings.Fields(brand)
	for i := 1; i < len(words); i++ {
		if canonical, ok := g.dict.CanonicalBrand(strings.Join(words[i:], " ")); ok {
			return canonical
		}
	}
	return brand
}

// locationFields looks for address, phone and opening hours shortly after
// a location mention
func (g *Generator) locationFields(text string, end int) candidate.Fields {
	tail := text[end:]
	if cut := runeOffset(tail, g.window*2); cut < len(tail) {
		tail = tail[:cut]
	}
	var f candidate.Fields
	if m := addressRe.FindStringSubmatch(tail); m != nil {
		f.Address = m[1]
	}
	if m := phoneRe.FindStringSubmatch(tail); m != nil {
		f.Phone = m[1]
	}
	if m := hoursRe.FindStringSubmatch(tail); m != nil {
		f.Hours = m[1] + "-" + m[2]
	}
	return f
}

func (g *Generator) context(text string, start, end int) string {
	from := start
	for n := 0; n < g.window && from > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end + runeOffset(text[end:], g.window)
	return text[from:to]
}

// parsePrice returns the yen amount in s, or 0 when s is not a clean price
func parsePrice(s string) int {
	s = strings.NewReplacer("¥", "", "円", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if s == "" || strings.Contains(s, ".") || len(s) > 9 {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func submatches(text string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}
	return groups
}

// addressAttached reports whether an earlier candidate already carries addr
// as a field, in which case a standalone address candidate adds nothing
func addressAttached(out []candidate.Raw, addr string) bool {
	for _, r := range out {
		if r.Fields.Address == addr {
			return true
		}
	}
	return false
}

func overlapsAny(s span, claimed []span) bool {
	for _, c := range claimed {
		if s.overlaps(c) {
			return true
		}
	}
	return false
}

// runeOffset returns the byte length of the first n runes of s
func runeOffset(s string, n int) int {
	off := 0
	for i := 0; i < n && off < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
	}
	return off
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
