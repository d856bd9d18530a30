package normalizer

import (
	"regexp"
	"sort"
	"strings"
)

// NormalizationRule is one priority-ordered rewrite step. Replace receives
// the full regex submatches (index 0 is the whole match) and returns the
// replacement text.
type NormalizationRule struct {
	ID          string
	Pattern     *regexp.Regexp
	Replace     func(groups []string) string
	Priority    int
	Category    string
	TestCases   []RuleTestCase
}

// RuleTestCase documents an input/output pair a rule is expected to satisfy.
type RuleTestCase struct {
	Input  string
	Output string
}

// RuleSet is a priority-sorted, immutable list of rules.
type RuleSet struct {
	rules []NormalizationRule
}

// NewRuleSet sorts rules descending by priority (ties broken by ID for
// determinism) and returns an immutable set.
func NewRuleSet(rules []NormalizationRule) *RuleSet {
	sorted := make([]NormalizationRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].ID < sorted[j].ID
	})
	return &RuleSet{rules: sorted}
}

func (rs *RuleSet) Rules() []NormalizationRule { return rs.rules }

// DefaultRuleSet builds the production rule set described by the priority
// bands in the normalizer spec: lexicon lookup, dates, times, currency,
// percentages, units, ranges, large numbers, ordinals/versions, slash/
// bracket/ellipsis cleanup, acronyms, and final spacing cleanup.
func DefaultRuleSet(lx *Lexicon) *RuleSet {
	var rules []NormalizationRule

	rules = append(rules, lexiconRule(lx))
	rules = append(rules, dateRules()...)
	rules = append(rules, timeRule())
	rules = append(rules, currencyRules()...)
	rules = append(rules, percentRules()...)
	rules = append(rules, unitRules()...)
	rules = append(rules, rangeRules()...)
	rules = append(rules, largeNumberRules()...)
	rules = append(rules, ordinalVersionRules()...)
	rules = append(rules, punctuationRules()...)
	rules = append(rules, acronymRules(lx)...)
	rules = append(rules, spacingRules()...)

	return NewRuleSet(rules)
}

// --- priority 100: lexicon ---

var identifierPattern = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9]{1,9}\b`)

func lexiconRule(lx *Lexicon) NormalizationRule {
	return NormalizationRule{
		ID:       "lexicon_lookup",
		Pattern:  identifierPattern,
		Priority: 100,
		Category: "lexicon",
		Replace: func(g []string) string {
			if entry, ok := lx.Lookup(g[0]); ok {
				return entry.Reading
			}
			return g[0]
		},
	}
}

// --- priority 95-98: dates ---

func dateRules() []NormalizationRule {
	isoDate := regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashDate := regexp.MustCompile(`\b(\d{4})/(\d{1,2})/(\d{1,2})\b`)
	koreanDate := regexp.MustCompile(`(\d{1,2})월\s*(\d{1,2})일`)

	return []NormalizationRule{
		{
			ID: "date_iso", Pattern: isoDate, Priority: 98, Category: "date",
			Replace: func(g []string) string { return spelledDate(g[1], g[2], g[3]) },
		},
		{
			ID: "date_slash", Pattern: slashDate, Priority: 97, Category: "date",
			Replace: func(g []string) string { return spelledDate(g[1], g[2], g[3]) },
		},
		{
			ID: "date_korean", Pattern: koreanDate, Priority: 95, Category: "date",
			Replace: func(g []string) string {
				month, _ := NumberToKoreanString(g[1])
				day, _ := NumberToKoreanString(g[2])
				return month + "월 " + day + "일"
			},
		},
	}
}

func spelledDate(year, month, day string) string {
	y, _ := NumberToKoreanString(year)
	m, _ := NumberToKoreanString(strings.TrimLeft(month, "0"))
	d, _ := NumberToKoreanString(strings.TrimLeft(day, "0"))
	if m == "" {
		m = "영"
	}
	if d == "" {
		d = "영"
	}
	return y + "년 " + m + "월 " + d + "일"
}

// --- priority 96: times ---

func timeRule() NormalizationRule {
	pattern := regexp.MustCompile(`\b(\d{1,2}):(\d{2})(?::(\d{2}))?\b`)
	return NormalizationRule{
		ID: "time_hms", Pattern: pattern, Priority: 96, Category: "time",
		Replace: func(g []string) string {
			h, _ := NumberToKoreanString(strings.TrimLeft(g[1], "0"))
			m, _ := NumberToKoreanString(strings.TrimLeft(g[2], "0"))
			if h == "" {
				h = "영"
			}
			out := h + "시"
			if m == "" || g[2] == "00" {
				out += " 정각"
			} else {
				out += " " + m + "분"
			}
			if len(g) > 3 && g[3] != "" {
				s, _ := NumberToKoreanString(strings.TrimLeft(g[3], "0"))
				if s == "" {
					s = "영"
				}
				out += " " + s + "초"
			}
			return out
		},
	}
}

// --- priority 91-93: currency ---

func currencyRules() []NormalizationRule {
	wonLarge := regexp.MustCompile(`([\d,]+)\s*(만|억|조)\s*원`)
	wonPlain := regexp.MustCompile(`([\d,]+)\s*원`)
	dollar := regexp.MustCompile(`\$\s*([\d,]+(?:\.\d+)?)\s*(million|billion|만|억)?`)

	return []NormalizationRule{
		{
			ID: "currency_won_large", Pattern: wonLarge, Priority: 93, Category: "currency",
			Replace: func(g []string) string {
				n, ok := NumberToKoreanString(g[1])
				if !ok {
					return g[0]
				}
				magnitude := g[2]
				return n + magnitude + " 원"
			},
		},
		{
			ID: "currency_won_plain", Pattern: wonPlain, Priority: 92, Category: "currency",
			Replace: func(g []string) string {
				n, ok := NumberToKoreanString(g[1])
				if !ok {
					return g[0]
				}
				return n + " 원"
			},
		},
		{
			ID: "currency_dollar", Pattern: dollar, Priority: 91, Category: "currency",
			Replace: func(g []string) string {
				amount := g[1]
				suffix := ""
				if len(g) > 2 {
					suffix = g[2]
				}
				if strings.Contains(amount, ".") {
					parts := strings.SplitN(amount, ".", 2)
					out := DecimalToKorean(parts[0], parts[1])
					return out + " 달러" + dollarSuffix(suffix)
				}
				n, ok := NumberToKoreanString(amount)
				if !ok {
					return g[0]
				}
				return n + " 달러" + dollarSuffix(suffix)
			},
		},
	}
}

func dollarSuffix(s string) string {
	switch s {
	case "million":
		return " 백만"
	case "billion":
		return " 십억"
	case "만", "억":
		return " " + s
	default:
		return ""
	}
}

// --- priority 87-88: percentages ---

func percentRules() []NormalizationRule {
	decimalPct := regexp.MustCompile(`(\d+)\.(\d+)\s*%`)
	intPct := regexp.MustCompile(`(\d+)\s*%`)
	return []NormalizationRule{
		{
			ID: "percent_decimal", Pattern: decimalPct, Priority: 88, Category: "percent",
			Replace: func(g []string) string {
				return DecimalToKorean(g[1], g[2]) + " 퍼센트"
			},
		},
		{
			ID: "percent_int", Pattern: intPct, Priority: 87, Category: "percent",
			Replace: func(g []string) string {
				n, ok := NumberToKoreanString(g[1])
				if !ok {
					return g[0]
				}
				return n + " 퍼센트"
			},
		},
	}
}

// --- priority 80-84: units ---

func unitRules() []NormalizationRule {
	var alt []string
	for _, u := range unitOrder {
		alt = append(alt, regexp.QuoteMeta(u))
	}
	pattern := regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(` + strings.Join(alt, "|") + `)\b`)
	return []NormalizationRule{
		{
			ID: "unit_measure", Pattern: pattern, Priority: 82, Category: "unit",
			Replace: func(g []string) string {
				reading, ok := unitReadings[g[2]]
				if !ok {
					return g[0]
				}
				if strings.Contains(g[1], ".") {
					parts := strings.SplitN(g[1], ".", 2)
					return DecimalToKorean(parts[0], parts[1]) + " " + reading
				}
				n, ok := NumberToKoreanString(g[1])
				if !ok {
					return g[0]
				}
				return n + " " + reading
			},
		},
	}
}

// --- priority 76-78: ranges ---

func rangeRules() []NormalizationRule {
	tilde := regexp.MustCompile(`(\d+)\s*~\s*(\d+)`)
	dashCounter := regexp.MustCompile(`(\d+)\s*-\s*(\d+)\s*(개|명|번|살|세|시간|분|일|년|월|주)`)
	return []NormalizationRule{
		{
			ID: "range_tilde", Pattern: tilde, Priority: 78, Category: "range",
			Replace: func(g []string) string {
				a, _ := NumberToKoreanString(g[1])
				b, _ := NumberToKoreanString(g[2])
				return a + "에서 " + b + " 사이"
			},
		},
		{
			ID: "range_dash_counter", Pattern: dashCounter, Priority: 76, Category: "range",
			Replace: func(g []string) string {
				a, _ := NumberToKoreanString(g[1])
				b, _ := NumberToKoreanString(g[2])
				return a + "에서 " + b + g[3]
			},
		},
	}
}

// --- priority 60-68: large numbers ---

func largeNumberRules() []NormalizationRule {
	magnitudeSuffix := regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(만|억|조)(?:\s*원)?`)
	commaGrouped := regexp.MustCompile(`\b\d{1,3}(?:,\d{3})+\b`)
	bareLarge := regexp.MustCompile(`\b\d{5,}\b`)

	return []NormalizationRule{
		{
			ID: "number_magnitude_suffix", Pattern: magnitudeSuffix, Priority: 68, Category: "number",
			Replace: func(g []string) string {
				if strings.Contains(g[1], ".") {
					parts := strings.SplitN(g[1], ".", 2)
					return DecimalToKorean(parts[0], parts[1]) + g[2]
				}
				n, ok := NumberToKoreanString(g[1])
				if !ok {
					return g[0]
				}
				return n + g[2]
			},
		},
		{
			ID: "number_comma_grouped", Pattern: commaGrouped, Priority: 64, Category: "number",
			Replace: func(g []string) string {
				n, ok := NumberToKoreanString(g[0])
				if !ok {
					return g[0]
				}
				return n
			},
		},
		{
			ID: "number_bare_large", Pattern: bareLarge, Priority: 60, Category: "number",
			Replace: func(g []string) string {
				n, ok := NumberToKoreanString(g[0])
				if !ok {
					return g[0]
				}
				return n
			},
		},
	}
}

// --- priority 54-55: ordinals / versions ---

func ordinalVersionRules() []NormalizationRule {
	ordinal := regexp.MustCompile(`제\s*(\d+)`)
	version := regexp.MustCompile(`\bv(\d+)(?:\.(\d+))?(?:\.(\d+))?\b`)

	return []NormalizationRule{
		{
			ID: "ordinal_je", Pattern: ordinal, Priority: 55, Category: "ordinal",
			Replace: func(g []string) string {
				n, ok := NumberToKoreanString(g[1])
				if !ok {
					return g[0]
				}
				return "제" + n
			},
		},
		{
			ID: "version_string", Pattern: version, Priority: 54, Category: "version",
			Replace: func(g []string) string {
				parts := []string{g[1]}
				if len(g) > 2 && g[2] != "" {
					parts = append(parts, g[2])
				}
				if len(g) > 3 && g[3] != "" {
					parts = append(parts, g[3])
				}
				var words []string
				for _, p := range parts {
					n, _ := NumberToKoreanString(p)
					words = append(words, n)
				}
				return "버전 " + strings.Join(words, " 점 ")
			},
		},
	}
}

// --- priority 40-45: slash/bracket/ellipsis cleanup ---

func punctuationRules() []NormalizationRule {
	slashBetweenWords := regexp.MustCompile(`([가-힣A-Za-z]+)\s*/\s*([가-힣A-Za-z]+)`)
	brackets := regexp.MustCompile(`[\(\)\[\]（）［］]`)
	ellipsis := regexp.MustCompile(`\.{3,}|…`)

	return []NormalizationRule{
		{
			ID: "slash_or", Pattern: slashBetweenWords, Priority: 45, Category: "punctuation",
			Replace: func(g []string) string { return g[1] + " 또는 " + g[2] },
		},
		{
			ID: "bracket_removal", Pattern: brackets, Priority: 42, Category: "punctuation",
			Replace: func(g []string) string { return "" },
		},
		{
			ID: "ellipsis_comma", Pattern: ellipsis, Priority: 40, Category: "punctuation",
			Replace: func(g []string) string { return ", " },
		},
	}
}

// --- priority 36-38: acronyms ---

func acronymRules(lx *Lexicon) []NormalizationRule {
	shortAcronym := regexp.MustCompile(`\b[A-Z]{2,5}\b`)
	camelCase := regexp.MustCompile(`\b[A-Z][a-z]+(?:[A-Z][a-z]+)+\b`)

	return []NormalizationRule{
		{
			ID: "acronym_letters", Pattern: shortAcronym, Priority: 38, Category: "acronym",
			Replace: func(g []string) string {
				if entry, ok := lx.Lookup(g[0]); ok {
					return entry.Reading
				}
				var b strings.Builder
				for i := 0; i < len(g[0]); i++ {
					reading, ok := commonAcronymReadings[g[0][i]]
					if !ok {
						return g[0]
					}
					b.WriteString(reading)
				}
				return b.String()
			},
		},
		{
			ID: "acronym_camelcase_split", Pattern: camelCase, Priority: 36, Category: "acronym",
			Replace: func(g []string) string {
				return splitCamelCase(g[0])
			},
		},
	}
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

func splitCamelCase(s string) string {
	return camelBoundary.ReplaceAllString(s, "$1 $2")
}

// --- priority 30-32: spacing / particle gluing ---

func spacingRules() []NormalizationRule {
	multiSpace := regexp.MustCompile(`[ \t]{2,}`)
	particleGlue := regexp.MustCompile(`([가-힣]+)\s+(은|는|이|가|을|를|와|과|도|만)\b`)

	return []NormalizationRule{
		{
			ID: "particle_glue", Pattern: particleGlue, Priority: 32, Category: "spacing",
			Replace: func(g []string) string { return g[1] + g[2] },
		},
		{
			ID: "space_collapse", Pattern: multiSpace, Priority: 30, Category: "spacing",
			Replace: func(g []string) string { return " " },
		},
	}
}
