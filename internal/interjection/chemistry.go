package interjection

import (
	"math/rand"
	"strings"

	"github.com/apresai/koreanpodcast/internal/script"
)

// StylePreset is the overall conversational tone a run is generated for.
type StylePreset string

const (
	PresetNews     StylePreset = "NEWS"
	PresetFriendly StylePreset = "FRIENDLY"
	PresetDeepDive StylePreset = "DEEPDIVE"
)

// presetConfig holds the per-preset constants governing strong-reaction
// gating and opening-window embargoes.
type presetConfig struct {
	openingNoReactionSec int
	strongReactionCap    int
}

var presetConfigs = map[StylePreset]presetConfig{
	PresetNews:     {openingNoReactionSec: 120, strongReactionCap: 0},
	PresetFriendly: {openingNoReactionSec: 90, strongReactionCap: 2},
	PresetDeepDive: {openingNoReactionSec: 120, strongReactionCap: 1},
}

func configFor(preset StylePreset) presetConfig {
	if c, ok := presetConfigs[preset]; ok {
		return c
	}
	return presetConfigs[PresetFriendly]
}

// charsPerSecond maps pace to the reading-speed constant used to estimate
// elapsed episode time from turn text length.
func charsPerSecond(pace script.Pace) float64 {
	switch pace {
	case script.PaceSlow:
		return 4
	case script.PaceFast:
		return 6
	default:
		return 5
	}
}

func charsExcludingSpaces(s string) int {
	n := 0
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' {
			n++
		}
	}
	return n
}

func turnDurationSec(t script.ScriptTurn) float64 {
	speechSec := float64(charsExcludingSpaces(t.RawText)) / charsPerSecond(t.Pace)
	pauseSec := float64(t.PauseMsBefore+t.PauseMsAfter) / 1000.0
	return speechSec + pauseSec
}

// baseInjectionProbability scales with banter level; HOST_B carries the
// full weight, HOST_A a small fraction of it.
func baseInjectionProbability(banterLevel int) float64 {
	switch {
	case banterLevel <= 0:
		return 0.10
	case banterLevel == 1:
		return 0.20
	case banterLevel == 2:
		return 0.35
	default:
		return 0.50
	}
}

// Engine walks a ScriptDraft turn by turn, attaching interjections, strong
// reactions, humor tags, and laugh cues under per-run mutable state. A new
// Engine must be created per run — state is never shared across episodes.
type Engine struct {
	lib    *Library
	rng    *rand.Rand
	preset StylePreset
	banter int

	usageCount          map[string]int
	lastUsedTurn        map[string]int
	strongReactionCount int
	lastInterjectionTurn int
	humorTurnIndices    []int
	lastLaughTurn       int
}

// NewEngine builds a chemistry engine against the given library, preset,
// and banter level (0-3). rng may be nil to use a source with the fixed
// seed 1; tests should pass a seeded rand.Rand for determinism.
func NewEngine(lib *Library, preset StylePreset, banterLevel int, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Engine{
		lib:                 lib,
		rng:                 rng,
		preset:              preset,
		banter:              banterLevel,
		usageCount:          make(map[string]int),
		lastUsedTurn:        make(map[string]int),
		lastInterjectionTurn: -1000,
		lastLaughTurn:       -1000,
	}
}

func intentEligibleForInjection(intent script.Intent) bool {
	switch intent {
	case script.IntentReact, script.IntentAskQuestion, script.IntentSummarize, script.IntentTransition:
		return true
	default:
		return false
	}
}

func categoryForIntent(intent script.Intent, rng *rand.Rand) Category {
	switch intent {
	case script.IntentReact:
		if rng.Float64() < 0.5 {
			return CategorySurpriseWow
		}
		return CategoryEmpathy
	case script.IntentAskQuestion:
		return CategoryThinking
	default: // summarize, transition
		return CategoryApprovalRespect
	}
}

func (eng *Engine) sectionTypeForTurn(draft *script.ScriptDraft, turnIndex int) string {
	for _, seg := range draft.Segments {
		if turnIndex >= seg.StartTurnIndex && turnIndex <= seg.EndTurnIndex {
			return seg.Type
		}
	}
	return ""
}

// Enrich walks draft turn by turn and returns the EnrichedScript plus the
// HumorQA validation record for the result.
func (eng *Engine) Enrich(draft *script.ScriptDraft) (*script.EnrichedScript, *HumorQA) {
	turns := make([]script.ScriptTurn, len(draft.Turns))
	copy(turns, draft.Turns)

	var laughCues []script.LaughCue
	var humorCues []script.HumorCue
	var callbackRefs []script.CallbackRef

	elapsed := 0.0
	for i := range turns {
		turn := &turns[i]
		elapsedAtStart := elapsed

		eng.tryInjectInterjection(draft, turn, i, elapsedAtStart)
		eng.tryStrongReaction(turn, i, elapsedAtStart)
		humorAssigned := eng.tryHumorTag(turn, i, turns)
		if humorAssigned {
			cue := script.HumorCue{Type: turn.HumorTag, TargetTurnIndex: i}
			if ref := eng.callbackReference(i); ref >= 0 && turn.HumorTag == "callback_joke" {
				cue.CallbackTurnIndex = ref
				callbackRefs = append(callbackRefs, script.CallbackRef{
					SourceTurnIndex: i,
					TargetTurnIndex: ref,
					JokeExcerpt:     turns[ref].RawText,
				})
			}
			humorCues = append(humorCues, cue)
			eng.humorTurnIndices = append(eng.humorTurnIndices, i)
		}
		if eng.tryLaughCue(turn, i) {
			laughCues = append(laughCues, script.LaughCue{
				ID:                   turn.LaughCueID,
				Type:                 laughTypeForHumor(turn.HumorTag),
				InsertAfterTurnIndex: i,
				DurationMs:           laughDurationMs(turn.HumorTag),
				VolumeOffsetDb:       -8,
			})
			eng.lastLaughTurn = i
		}

		elapsed += turnDurationSec(*turn)
	}

	usage := make(map[string]int, len(eng.usageCount))
	for k, v := range eng.usageCount {
		usage[k] = v
	}

	enriched := &script.EnrichedScript{
		EpisodeTitle:        draft.EpisodeTitle,
		Turns:               turns,
		Segments:            draft.Segments,
		HumorCues:           humorCues,
		LaughCues:           laughCues,
		InterjectionUsage:   usage,
		StrongReactionCount: eng.strongReactionCount,
		CallbackRefs:        callbackRefs,
	}

	return enriched, eng.validate(enriched)
}

func (eng *Engine) tryInjectInterjection(draft *script.ScriptDraft, turn *script.ScriptTurn, index int, elapsedAtStart float64) {
	if turn.Speaker != script.HostB && turn.Speaker != script.HostA {
		return
	}
	if !intentEligibleForInjection(turn.Intent) {
		return
	}
	if index-eng.lastInterjectionTurn < 2 {
		return
	}
	section := eng.sectionTypeForTurn(draft, index)
	if section == "opening" && elapsedAtStart < 30 {
		return
	}

	prob := baseInjectionProbability(eng.banter)
	if turn.Speaker == script.HostA {
		prob *= 0.2
	}
	if eng.rng.Float64() >= prob {
		return
	}

	cat := categoryForIntent(turn.Intent, eng.rng)
	candidates := eng.eligibleCandidates(cat, turn.Speaker, section, index)
	if len(candidates) == 0 {
		return
	}
	chosen := candidates[eng.rng.Intn(len(candidates))]

	turn.Interjection = &script.TurnInterjection{
		Text:     chosen.Text,
		Category: string(chosen.Category),
		Position: script.InterjectionStart,
	}
	eng.usageCount[chosen.Text]++
	eng.lastUsedTurn[chosen.Text] = index
	eng.lastInterjectionTurn = index
}

func (eng *Engine) eligibleCandidates(cat Category, speaker script.Speaker, section string, index int) []Entry {
	var out []Entry
	for _, e := range eng.lib.ByCategory(cat, speaker) {
		if eng.usageCount[e.Text] >= maxUsageFor(e) {
			continue
		}
		if last, ok := eng.lastUsedTurn[e.Text]; ok && index-last < e.MinTurnGap {
			continue
		}
		if containsString(e.ForbiddenSections, section) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (eng *Engine) tryStrongReaction(turn *script.ScriptTurn, index int, elapsedAtStart float64) {
	if turn.Speaker != script.HostB || turn.Intent != script.IntentReact {
		return
	}
	cfg := configFor(eng.preset)
	if cfg.strongReactionCap == 0 {
		return
	}
	if elapsedAtStart < float64(cfg.openingNoReactionSec) {
		return
	}
	if eng.strongReactionCount >= cfg.strongReactionCap {
		return
	}
	if len(eng.lib.StrongReactions) == 0 {
		return
	}
	// Strong reactions are a finite, high-impact resource; each eligible
	// turn gets one attempt at a fixed 0.35 probability, independent of
	// banter level.
	if eng.rng.Float64() >= 0.35 {
		return
	}
	line := eng.lib.StrongReactions[eng.rng.Intn(len(eng.lib.StrongReactions))]
	turn.RawText = line.Text + " " + turn.RawText
	turn.IsStrongReaction = true
	eng.strongReactionCount++
}

func humorEligibleIntent(intent script.Intent) bool {
	switch intent {
	case script.IntentGiveExample, script.IntentReact, script.IntentTransition:
		return true
	default:
		return false
	}
}

func (eng *Engine) recentHumorCount(index int) int {
	count := 0
	for _, h := range eng.humorTurnIndices {
		if index-h <= 5 {
			count++
		}
	}
	return count
}

func (eng *Engine) tryHumorTag(turn *script.ScriptTurn, index int, allTurns []script.ScriptTurn) bool {
	if !humorEligibleIntent(turn.Intent) {
		return false
	}
	if eng.recentHumorCount(index) >= 1 {
		return false
	}
	prob := 0.10 + 0.08*float64(eng.banter)
	if eng.rng.Float64() >= prob {
		return false
	}

	if eng.rng.Float64() < 0.25 && len(eng.humorTurnIndices) > 0 {
		turn.HumorTag = "callback_joke"
	} else {
		tags := []string{"light_tease", "wordplay", "observational"}
		turn.HumorTag = tags[eng.rng.Intn(len(tags))]
	}
	return true
}

func (eng *Engine) callbackReference(index int) int {
	if len(eng.humorTurnIndices) == 0 {
		return -1
	}
	return eng.humorTurnIndices[len(eng.humorTurnIndices)-1]
}

func (eng *Engine) tryLaughCue(turn *script.ScriptTurn, index int) bool {
	if turn.HumorTag == "" {
		return false
	}
	if index-eng.lastLaughTurn < 3 {
		return false
	}
	turn.LaughCueID = "laugh_" + turn.ID
	return true
}

func laughTypeForHumor(humorTag string) script.LaughCueType {
	switch humorTag {
	case "callback_joke":
		return script.BigLaugh
	case "wordplay":
		return script.SoftLaugh
	default:
		return script.LightChuckle
	}
}

func laughDurationMs(humorTag string) int {
	switch laughTypeForHumor(humorTag) {
	case script.BigLaugh:
		return 1800
	case script.SoftLaugh:
		return 1200
	default:
		return 700
	}
}

// HumorQA is the validation record emitted after chemistry enrichment.
type HumorQA struct {
	Score                int      `json:"score"`
	RepeatedInterjections []string `json:"repeatedInterjections"`
	StrongReactionCount   int      `json:"strongReactionCount"`
	OpeningHumorCount     int      `json:"openingHumorCount"`
	DetectedSlang         []string `json:"detectedSlang"`
	ConsecutiveInterjections int   `json:"consecutiveInterjections"`
}

func (eng *Engine) validate(enriched *script.EnrichedScript) *HumorQA {
	qa := &HumorQA{}
	score := 100

	for text, count := range enriched.InterjectionUsage {
		limit := 2
		if text == "맞아요" {
			limit = 3
		}
		if count > limit {
			qa.RepeatedInterjections = append(qa.RepeatedInterjections, text)
		}
	}
	score -= 10 * len(qa.RepeatedInterjections)

	qa.StrongReactionCount = enriched.StrongReactionCount
	if qa.StrongReactionCount > 2 {
		score -= 20
	}

	elapsed := 0.0
	for _, t := range enriched.Turns {
		if elapsed < 90 && t.HumorTag != "" {
			qa.OpeningHumorCount++
		}
		elapsed += turnDurationSec(t)
	}
	if qa.OpeningHumorCount > 1 {
		score -= 15
	}

	for _, t := range enriched.Turns {
		for _, slang := range eng.lib.ForbiddenSlang {
			if strings.Contains(t.RawText, slang) {
				qa.DetectedSlang = append(qa.DetectedSlang, slang)
			}
		}
	}
	score -= 5 * len(qa.DetectedSlang)

	lastInterjTurn := -1000
	for i, t := range enriched.Turns {
		if t.Interjection == nil {
			continue
		}
		if i-lastInterjTurn == 1 {
			qa.ConsecutiveInterjections++
		}
		lastInterjTurn = i
	}
	score -= 10 * qa.ConsecutiveInterjections

	if score < 0 {
		score = 0
	}
	qa.Score = score
	return qa
}
