package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
	"github.com/cognicore/episcan/pkg/episcan/dict"
)

// Rule is one entry of an ordered extraction cascade. Rules earlier in the
// cascade claim text first; later rules never match inside a claimed span.
type Rule struct {
	Name string
	Kind candidate.Kind
	re   *regexp.Regexp
	// build turns submatches into a candidate; ok=false drops the match
	build func(g *Generator, groups []string) (candidate.Raw, bool)
}

// Pattern returns the compiled expression source, for diagnostics
func (r Rule) Pattern() string {
	return r.re.String()
}

const (
	placeChars = `[\p{Han}\p{Katakana}A-Za-z0-9ー・&']`
	latinBrand = `[A-Za-z][A-Za-z0-9&.'\-]*(?: [A-Za-z0-9&.'\-]+){0,2}`
	kanaBrand  = `[\p{Katakana}ー・]{2,15}`
	// price in parentheses, either ¥-prefixed or 円-suffixed
	pricePat = `\(\s*(¥\s*[0-9][0-9,.]*|[0-9][0-9,.]*\s*円)[^()\n]{0,8}\)`
)

// locationRules builds the location cascade, most precise first
func locationRules(d *dict.Dict) []Rule {
	t := d.Tables()
	rules := []Rule{
		{
			Name: "filming_phrase",
			re:   regexp.MustCompile(`(?:撮影地|ロケ地|撮影場所|ロケ場所|撮影スポット)\s*(?:は|:|=)?\s*[「『]?([^\s「」『』、。,!?()\n]{2,30})[」』]?`),
			build: func(g *Generator, m []string) (candidate.Raw, bool) {
				return g.location(trimCopula(m[1]), ""), true
			},
		},
		{
			Name: "shoot_verb",
			re:   regexp.MustCompile(`(` + placeChars + `{2,30})\s*で(?:の)?\s*(?:撮影|ロケ)`),
			build: func(g *Generator, m []string) (candidate.Raw, bool) {
				return g.location(m[1], ""), true
			},
		},
	}
	if alt := alternation(t.VenueSuffixes); alt != "" {
		rules = append(rules, Rule{
			Name: "venue_suffix",
			re:   regexp.MustCompile(`(` + placeChars + `{1,25}?)\s?(` + alt + `)`),
			build: func(g *Generator, m []string) (candidate.Raw, bool) {
				name := strings.TrimSpace(m[1]) + m[2]
				return g.location(name, m[2]), true
			},
		})
	}
	if alt := alternation(t.Cities); alt != "" {
		rules = append(rules, Rule{
			Name: "city_prefix",
			re:   regexp.MustCompile(`(` + alt + `)(?:の)?(` + placeChars + `{2,20})`),
			build: func(g *Generator, m []string) (candidate.Raw, bool) {
				// 東京都…/大阪府… is an address, left to the address rule
				if strings.HasPrefix(m[2], "都") || strings.HasPrefix(m[2], "府") {
					return candidate.Raw{}, false
				}
				return g.location(m[1]+m[2], ""), true
			},
		})
	}
	rules = append(rules, Rule{
		Name: "address",
		re:   addressRe,
		build: func(g *Generator, m []string) (candidate.Raw, bool) {
			raw := g.location(m[1], "")
			raw.Fields.Address = m[1]
			return raw, true
		},
	})
	for i := range rules {
		rules[i].Kind = candidate.Location
	}
	return rules
}

// itemRules builds the item cascade, most precise first
func itemRules(d *dict.Dict) []Rule {
	t := d.Tables()
	brand := `(` + brandAlternation(t.Brands) + latinBrand + `|` + kanaBrand + `)`
	rules := []Rule{
		{
			Name: "bracket_price",
			re:   regexp.MustCompile(`【\s*([^【】\n]{1,30}?)\s*】\s*([^【】()\n、。!?]{1,50})(?:\s*` + pricePat + `)?`),
			build: func(g *Generator, m []string) (candidate.Raw, bool) {
				return g.item(m[1], m[2], m[3])
			},
		},
		{
			Name: "brand_item_price",
			re:   regexp.MustCompile(brand + `\s*の\s*([^\s【】()、。!?の]{1,50}?)\s*` + pricePat),
			build: func(g *Generator, m []string) (candidate.Raw, bool) {
				return g.item(m[1], m[2], m[3])
			},
		},
	}
	if nouns := alternation(t.ItemNouns); nouns != "" {
		noun := `((?:[\p{Katakana}\p{Han}ー・]{0,15}?)(?:` + nouns + `))`
		rules = append(rules,
			Rule{
				Name: "wear_verb",
				re:   regexp.MustCompile(`(?:着用|愛用|使用)[^\n。]{0,12}?` + brand + `\s*の\s*` + noun + `(?:\s*` + pricePat + `)?`),
				build: func(g *Generator, m []string) (candidate.Raw, bool) {
					return g.item(m[1], m[2], m[3])
				},
			},
			Rule{
				Name: "brand_category",
				re:   regexp.MustCompile(brand + `\s*(の)?\s*` + noun),
				build: func(g *Generator, m []string) (candidate.Raw, bool) {
					// a bare katakana run glued to a noun is usually one word
					// ("ダウンジャケット"), so demand の unless the brand is known
					if m[2] == "" && !g.dict.KnownBrand(m[1]) && !latinStart(m[1]) {
						return candidate.Raw{}, false
					}
					return g.item(m[1], m[3], "")
				},
			},
		)
	}
	for i := range rules {
		rules[i].Kind = candidate.Item
	}
	return rules
}

var (
	addressRe = regexp.MustCompile(`((?:東京都|北海道|大阪府|京都府|\p{Han}{2,3}県)\p{Han}{1,6}?[市区町村郡][\p{Han}\p{Katakana}ー]{0,10}(?:[0-9]+(?:[-−丁目番地号]+[0-9]*)*)?)`)
	phoneRe   = regexp.MustCompile(`(0[0-9]{1,4}-[0-9]{1,4}-[0-9]{3,4})`)
	hoursRe   = regexp.MustCompile(`([0-9]{1,2}:[0-9]{2})\s*[~〜\-]\s*([0-9]{1,2}:[0-9]{2})`)
)

// alternation joins literal terms into a regexp alternation, longest first
func alternation(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = candidate.Normalize(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	sort.SliceStable(quoted, func(i, j int) bool {
		return len(quoted[i]) > len(quoted[j])
	})
	return strings.Join(quoted, "|")
}

// brandAlternation lists dictionary brands and aliases ahead of the generic
// brand shapes so known names win; the result ends with "|" when non-empty
func brandAlternation(brands []dict.BrandEntry) string {
	var terms []string
	for _, b := range brands {
		terms = append(terms, b.Canonical)
		terms = append(terms, b.Aliases...)
	}
	alt := alternation(terms)
	if alt == "" {
		return ""
	}
	return alt + "|"
}

func latinStart(s string) bool {
	return s != "" && (s[0] >= 'A' && s[0] <= 'Z' || s[0] >= 'a' && s[0] <= 'z')
}

var copulaTails = []string{"でした", "です", "だった", "だよ", "とのこと", "だそう"}

func trimCopula(s string) string {
	for _, tail := range copulaTails {
		if strings.HasSuffix(s, tail) && len(s) > len(tail) {
			return strings.TrimSuffix(s, tail)
		}
	}
	return s
}
