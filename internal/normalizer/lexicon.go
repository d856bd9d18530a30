package normalizer

import "strings"

// Priority controls which lexicon layer wins when the same term is defined
// in more than one place. User overrides shadow project; project shadows global.
type Priority string

const (
	PriorityUser    Priority = "user"
	PriorityProject Priority = "project"
	PriorityGlobal  Priority = "global"
)

var priorityRank = map[Priority]int{
	PriorityUser:    0,
	PriorityProject: 1,
	PriorityGlobal:  2,
}

// LexiconEntry is a single term → TTS reading mapping.
type LexiconEntry struct {
	Term     string
	Reading  string
	Variants []string
	Category string
	Priority Priority
	Phoneme  string
}

// Lexicon is a case-insensitive, priority-layered term lookup table.
// Entries are keyed by lowercased term and by each lowercased variant,
// which falls back to the main entry's reading.
type Lexicon struct {
	entries map[string][]LexiconEntry
}

// NewLexicon builds a lexicon from the global/project/user entry set.
func NewLexicon(entries []LexiconEntry) *Lexicon {
	lx := &Lexicon{entries: make(map[string][]LexiconEntry)}
	for _, e := range entries {
		lx.add(strings.ToLower(e.Term), e)
		for _, v := range e.Variants {
			lx.add(strings.ToLower(v), e)
		}
	}
	return lx
}

func (lx *Lexicon) add(key string, e LexiconEntry) {
	lx.entries[key] = append(lx.entries[key], e)
}

// Merge returns a new Lexicon combining the receiver with override entries.
// Used to layer a per-run user lexicon on top of the built-in project/global tables.
func (lx *Lexicon) Merge(overrides []LexiconEntry) *Lexicon {
	combined := make([]LexiconEntry, 0, len(overrides))
	for _, list := range lx.entries {
		combined = append(combined, list...)
	}
	combined = append(combined, overrides...)
	return NewLexicon(combined)
}

// Lookup finds the best entry for term, preferring user over project over global.
func (lx *Lexicon) Lookup(term string) (LexiconEntry, bool) {
	candidates, ok := lx.entries[strings.ToLower(term)]
	if !ok || len(candidates) == 0 {
		return LexiconEntry{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if priorityRank[c.Priority] < priorityRank[best.Priority] {
			best = c
		}
	}
	return best, true
}

// GlobalLexiconEntries is the built-in brand/acronym reading table.
// This is a representative seed set; production deployments layer a
// project and user lexicon on top via Merge.
var GlobalLexiconEntries = []LexiconEntry{
	{Term: "API", Reading: "에이피아이", Category: "tech", Priority: PriorityGlobal},
	{Term: "AI", Reading: "에이아이", Category: "tech", Priority: PriorityGlobal},
	{Term: "CEO", Reading: "씨이오", Category: "business", Priority: PriorityGlobal},
	{Term: "IPO", Reading: "아이피오", Category: "business", Priority: PriorityGlobal},
	{Term: "GDP", Reading: "지디피", Category: "economics", Priority: PriorityGlobal},
	{Term: "SNS", Reading: "에스엔에스", Category: "tech", Priority: PriorityGlobal},
	{Term: "NFT", Reading: "엔에프티", Category: "tech", Priority: PriorityGlobal},
	{Term: "CPU", Reading: "씨피유", Category: "tech", Priority: PriorityGlobal},
	{Term: "GPU", Reading: "지피유", Category: "tech", Priority: PriorityGlobal},
	{Term: "ETF", Reading: "이티에프", Category: "finance", Priority: PriorityGlobal},
	{Term: "KOSPI", Reading: "코스피", Category: "finance", Priority: PriorityGlobal},
	{Term: "IT", Reading: "아이티", Category: "tech", Priority: PriorityGlobal},
	{Term: "PD", Reading: "피디", Category: "media", Priority: PriorityGlobal},
	{Term: "VIP", Reading: "브이아이피", Category: "general", Priority: PriorityGlobal},
	{Term: "OECD", Reading: "오이시디", Category: "economics", Priority: PriorityGlobal},
	{Term: "Google", Reading: "구글", Category: "brand", Priority: PriorityGlobal, Variants: []string{"GOOGLE"}},
	{Term: "Apple", Reading: "애플", Category: "brand", Priority: PriorityGlobal},
	{Term: "YouTube", Reading: "유튜브", Category: "brand", Priority: PriorityGlobal, Variants: []string{"Youtube"}},
}

// commonAcronymReadings maps single uppercase letters to their Korean
// alphabet-name reading, consulted before falling back to a generic
// letter-by-letter spellout.
var commonAcronymReadings = map[byte]string{
	'A': "에이", 'B': "비", 'C': "씨", 'D': "디", 'E': "이",
	'F': "에프", 'G': "지", 'H': "에이치", 'I': "아이", 'J': "제이",
	'K': "케이", 'L': "엘", 'M': "엠", 'N': "엔", 'O': "오",
	'P': "피", 'Q': "큐", 'R': "알", 'S': "에스", 'T': "티",
	'U': "유", 'V': "브이", 'W': "더블유", 'X': "엑스", 'Y': "와이", 'Z': "제트",
}
