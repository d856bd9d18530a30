// Package normalizer rewrites raw Korean script text into a TTS-safe form:
// numbers, dates, currency, units, and acronyms are expanded into their
// spoken reading, and every rewrite is recorded in a token map so callers
// can explain (or undo) exactly what changed.
package normalizer

import (
	"regexp"
	"strings"
)

// TokenMapEntry records one rewrite: the original substring, what it became,
// which rule produced it, and its byte offsets in the pre-normalization text.
type TokenMapEntry struct {
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
	Rule       string `json:"rule"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
}

// Warning flags text the normalizer could not confidently rewrite, such as
// an out-of-vocabulary foreign word left as-is.
type Warning struct {
	Kind    string `json:"kind"`
	Text    string `json:"text"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Message string `json:"message"`
}

const WarningOutOfVocabulary = "out_of_vocabulary"

// Normalizer applies a RuleSet to raw text and produces normalized text plus
// provenance for every change.
type Normalizer struct {
	rules   *RuleSet
	lexicon *Lexicon
}

// New builds a Normalizer with the default production rule set layered on
// top of the given lexicon (pass NewLexicon(GlobalLexiconEntries) for the
// built-in table, or a Merge()'d lexicon to add project/user overrides).
func New(lexicon *Lexicon) *Normalizer {
	return &Normalizer{rules: DefaultRuleSet(lexicon), lexicon: lexicon}
}

// oovCandidate matches a run of Latin letters not already resolved by any
// rule above — the final scan used to emit out-of-vocabulary warnings.
var oovCandidate = regexp.MustCompile(`[A-Za-z]{2,}`)

// Normalize rewrites text in descending rule priority order. Each rule is
// applied to the *current* state of the string (later rules see earlier
// rewrites), which lets lower-priority cleanup rules (spacing, leftover
// punctuation) operate on the output of higher-priority content rules.
// Token map offsets are measured against the text as it stood immediately
// before that rule ran.
func (n *Normalizer) Normalize(text string) (string, []TokenMapEntry, []Warning) {
	current := text
	var tokenMap []TokenMapEntry

	for _, rule := range n.rules.Rules() {
		current, tokenMap = applyRule(rule, current, tokenMap)
	}

	current = collapseSpaces(current)

	warnings := detectOutOfVocabulary(current)

	return current, tokenMap, warnings
}

func applyRule(rule NormalizationRule, text string, tokenMap []TokenMapEntry) (string, []TokenMapEntry) {
	if text == "" {
		return text, tokenMap
	}

	locs := rule.Pattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return text, tokenMap
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if start < last {
			// Overlapping with a previous replacement in this same pass;
			// skip it rather than double-processing already-rewritten text.
			continue
		}
		groups := submatchStrings(text, loc)
		replacement := rule.Replace(groups)

		b.WriteString(text[last:start])
		b.WriteString(replacement)

		if replacement != groups[0] {
			tokenMap = append(tokenMap, TokenMapEntry{
				Original:   groups[0],
				Normalized: replacement,
				Rule:       rule.ID,
				Start:      start,
				End:        end,
			})
		}
		last = end
	}
	b.WriteString(text[last:])
	return b.String(), tokenMap
}

func submatchStrings(text string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		s, e := loc[2*i], loc[2*i+1]
		if s < 0 || e < 0 {
			groups[i] = ""
			continue
		}
		groups[i] = text[s:e]
	}
	return groups
}

func collapseSpaces(text string) string {
	text = regexp.MustCompile(`[ \t]{2,}`).ReplaceAllString(text, " ")
	text = regexp.MustCompile(` +\n`).ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// knownLatinWords are Latin-script tokens that are intentionally left
// unread (e.g. already-resolved brand names lowercase the rule missed, or
// deliberately kept English loanwords) and should not trigger a warning.
var knownLatinWords = map[string]bool{
	"OK": true, "ok": true,
}

func detectOutOfVocabulary(text string) []Warning {
	var warnings []Warning
	for _, loc := range oovCandidate.FindAllStringIndex(text, -1) {
		word := text[loc[0]:loc[1]]
		if knownLatinWords[word] {
			continue
		}
		warnings = append(warnings, Warning{
			Kind:    WarningOutOfVocabulary,
			Text:    word,
			Start:   loc[0],
			End:     loc[1],
			Message: "unresolved Latin-script token left in normalized text",
		})
	}
	return warnings
}
