package script

import (
	"context"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/apresai/koreanpodcast/internal/interjection"
	"github.com/apresai/koreanpodcast/internal/outline"
)

// TemplateGenerator is the deterministic, LLM-free scriptwriter. For each
// outline section it fills a section-type-specific turn pattern from a
// phrase bank, substituting in the section's keypoints/examples.
type TemplateGenerator struct {
	rng *rand.Rand
}

// NewTemplateGenerator builds a template generator. rng may be nil to use
// a fixed default seed; pass a seeded *rand.Rand in tests for determinism.
func NewTemplateGenerator(rng *rand.Rand) *TemplateGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(7))
	}
	return &TemplateGenerator{rng: rng}
}

func (g *TemplateGenerator) Generate(ctx context.Context, o *outline.ContentOutline, opts GenerateOptions) (*ScriptDraft, error) {
	personaA, personaB := buildPersonaPair(opts.SpeakerNames)

	draft := &ScriptDraft{EpisodeTitle: o.EpisodeTitle}
	index := 0

	for _, sec := range o.Sections {
		secID := sectionID(sec.Type, sec.Order)
		startIndex := index
		var turns []ScriptTurn

		switch sec.Type {
		case outline.SectionOpening:
			turns = g.openingTurns(sec, personaA, personaB)
		case outline.SectionKeypoint:
			turns = g.keypointTurns(sec, personaA, personaB)
		case outline.SectionExample, outline.SectionAnalogy:
			turns = g.exampleTurns(sec, personaA, personaB)
		case outline.SectionCaution, outline.SectionCounter:
			turns = g.counterTurns(sec, personaA, personaB)
		case outline.SectionRecap:
			turns = g.recapTurns(sec, personaA, personaB)
		case outline.SectionClosing:
			turns = g.closingTurns(sec, personaA, personaB)
		default:
			turns = g.keypointTurns(sec, personaA, personaB)
		}

		for i := range turns {
			turns[i].ID = newTurnID()
			turns[i].Index = index
			turns[i].SectionID = secID
			index++
		}
		draft.Turns = append(draft.Turns, turns...)

		draft.Segments = append(draft.Segments, ScriptSegment{
			ID:               secID,
			Title:            sectionTitle(sec),
			Type:             string(sec.Type),
			StartTurnIndex:   startIndex,
			EndTurnIndex:     index - 1,
			TargetDurationMs: sec.EstimatedDurationSec * 1000,
		})
	}

	if len(draft.Turns) == 0 {
		// Zero keypoint sections still must yield a complete opening +
		// closing pair per the boundary behavior in §8.
		turns := append(g.openingTurns(outline.OutlineSection{Type: outline.SectionOpening}, personaA, personaB),
			g.closingTurns(outline.OutlineSection{Type: outline.SectionClosing}, personaA, personaB)...)
		for i := range turns {
			turns[i].ID = newTurnID()
			turns[i].Index = i
			turns[i].SectionID = "section_fallback"
		}
		draft.Turns = turns
		draft.Segments = []ScriptSegment{{
			ID: "section_fallback", Title: "Episode", Type: "opening",
			StartTurnIndex: 0, EndTurnIndex: len(turns) - 1,
		}}
	}

	splitLongTurns(draft, opts.Preset)
	assignPauses(draft)
	assignDurations(draft)
	fillSegmentDurations(draft)

	return draft, nil
}

func sectionTitle(sec outline.OutlineSection) string {
	if len(sec.Keypoints) > 0 {
		return truncateTitle(sec.Keypoints[0])
	}
	return string(sec.Type)
}

func truncateTitle(s string) string {
	r := []rune(s)
	if len(r) > 40 {
		return string(r[:40])
	}
	return s
}

// sectionID builds a stable, order-derived section id, so segments and
// turns agree on which section a turn belongs to without round-tripping
// through the outline package.
func sectionID(t outline.SectionType, order int) string {
	return string(t) + "_" + strconv.Itoa(order)
}

func pick(rng *rand.Rand, items []string) string {
	return items[rng.Intn(len(items))]
}

func fillOne(tpl string, args ...string) string {
	out := tpl
	for _, a := range args {
		out = strings.Replace(out, "%s", a, 1)
	}
	return out
}

func kp(sec outline.OutlineSection, i int, fallback string) string {
	if i < len(sec.Keypoints) {
		return sec.Keypoints[i]
	}
	return fallback
}

// --- Opening ---

var openingHooks = []string{
	"오늘 진짜 재밌는 얘기 하나 가져왔는데요, %s",
	"시작부터 좀 놀라운 얘기로 열어볼게요. %s",
	"요즘 계속 머릿속에 맴도는 주제가 있어서 오늘 한번 제대로 파보려고요. %s",
}

var openingResponses = []string{
	"오 기대되는데요, 한번 들어볼게요.",
	"오늘 왠지 길게 얘기할 것 같은 느낌인데요.",
	"좋아요, 그럼 어디서부터 시작할까요?",
}

func (g *TemplateGenerator) openingTurns(sec outline.OutlineSection, a, b Persona) []ScriptTurn {
	hook := kp(sec, 0, "오늘 다룰 이야기")
	return []ScriptTurn{
		{Speaker: HostA, Intent: IntentOpenerHook, RawText: fillOne(pick(g.rng, openingHooks), hook)},
		{Speaker: HostB, Intent: IntentIntroduceTopic, RawText: pick(g.rng, openingResponses)},
	}
}

// --- Keypoint: four alternative four-turn patterns ---

var keypointExplainLines = []string{
	"이 부분의 핵심은 이거예요. %s",
	"정리하면 이렇게 되는 거거든요. %s",
	"한 줄로 요약하자면, %s",
}

var keypointQuestionLines = []string{
	"그런데 그게 왜 이렇게 중요한 거예요?",
	"잠깐, 그럼 이게 실제로는 어떻게 작동하는 거예요?",
	"그 부분이 좀 더 궁금한데요, 조금만 더 풀어주실 수 있어요?",
}

var keypointClarifyLines = []string{
	"그러니까 쉽게 말하면, %s",
	"풀어서 설명하면 이런 느낌이에요. %s",
}

var keypointReactLines = []string{
	"아 그렇게 되는 거였군요.",
	"오 이제 좀 그림이 그려지네요.",
	"듣고 보니 확실히 납득이 가네요.",
}

func (g *TemplateGenerator) keypointTurns(sec outline.OutlineSection, a, b Persona) []ScriptTurn {
	point := kp(sec, 0, "이번 포인트")
	patterns := [][]ScriptTurn{
		{
			{Speaker: HostA, Intent: IntentExplainPoint, RawText: fillOne(pick(g.rng, keypointExplainLines), point)},
			{Speaker: HostB, Intent: IntentAskQuestion, RawText: pick(g.rng, keypointQuestionLines)},
			{Speaker: HostA, Intent: IntentClarify, RawText: fillOne(pick(g.rng, keypointClarifyLines), kp(sec, 1, point))},
			{Speaker: HostB, Intent: IntentReact, RawText: pick(g.rng, keypointReactLines)},
		},
		{
			{Speaker: HostB, Intent: IntentAskQuestion, RawText: pick(g.rng, keypointQuestionLines)},
			{Speaker: HostA, Intent: IntentExplainPoint, RawText: fillOne(pick(g.rng, keypointExplainLines), point)},
			{Speaker: HostB, Intent: IntentReact, RawText: pick(g.rng, keypointReactLines)},
			{Speaker: HostA, Intent: IntentSummarize, RawText: fillOne(pick(g.rng, keypointClarifyLines), kp(sec, 1, point))},
		},
		{
			{Speaker: HostA, Intent: IntentExplainPoint, RawText: fillOne(pick(g.rng, keypointExplainLines), point)},
			{Speaker: HostB, Intent: IntentCounter, RawText: "음, 근데 반대로 보면 이런 경우도 있지 않을까요?"},
			{Speaker: HostA, Intent: IntentClarify, RawText: fillOne(pick(g.rng, keypointClarifyLines), kp(sec, 1, point))},
			{Speaker: HostB, Intent: IntentReact, RawText: pick(g.rng, keypointReactLines)},
		},
		{
			{Speaker: HostB, Intent: IntentGiveExample, RawText: fillOne("예를 들면 %s 같은 경우가 있겠네요.", kp(sec, 1, point))},
			{Speaker: HostA, Intent: IntentExplainPoint, RawText: fillOne(pick(g.rng, keypointExplainLines), point)},
			{Speaker: HostB, Intent: IntentAskQuestion, RawText: pick(g.rng, keypointQuestionLines)},
			{Speaker: HostA, Intent: IntentSummarize, RawText: fillOne(pick(g.rng, keypointClarifyLines), point)},
		},
	}
	return patterns[g.rng.Intn(len(patterns))]
}

// --- Example / analogy ---

var exampleExplainLines = []string{
	"실제 사례를 하나 들어볼게요. %s",
	"이해를 돕기 위해 예를 들면, %s",
}

var exampleReactLines = []string{
	"아 그 비유 진짜 와닿네요.",
	"오 그 예시 딱 이해되는데요.",
}

func (g *TemplateGenerator) exampleTurns(sec outline.OutlineSection, a, b Persona) []ScriptTurn {
	ex := kp(sec, 0, "예시")
	return []ScriptTurn{
		{Speaker: HostA, Intent: IntentGiveExample, RawText: fillOne(pick(g.rng, exampleExplainLines), ex)},
		{Speaker: HostB, Intent: IntentReact, RawText: pick(g.rng, exampleReactLines)},
	}
}

// --- Caution / counter ---

var counterCautionLines = []string{
	"근데 여기서 한 가지 짚고 넘어갈 게 있어요. %s",
	"다만 주의할 점도 있는데요, %s",
}

var counterConfirmLines = []string{
	"맞아요, 그 부분은 저도 걸렸어요.",
	"그러게요, 그 리스크는 무시하면 안 될 것 같아요.",
}

func (g *TemplateGenerator) counterTurns(sec outline.OutlineSection, a, b Persona) []ScriptTurn {
	caution := kp(sec, 0, "주의할 점")
	return []ScriptTurn{
		{Speaker: HostA, Intent: IntentCounter, RawText: fillOne(pick(g.rng, counterCautionLines), caution)},
		{Speaker: HostB, Intent: IntentClarify, RawText: pick(g.rng, counterConfirmLines)},
	}
}

// --- Recap ---

var recapSummaryLines = []string{
	"자, 여기까지 정리해보면 %s",
	"지금까지 나온 얘기를 묶어보면 %s",
}

var recapTransitionLines = []string{
	"그럼 다음 얘기로 넘어가 볼까요?",
	"이제 다음 포인트로 가보죠.",
}

func (g *TemplateGenerator) recapTurns(sec outline.OutlineSection, a, b Persona) []ScriptTurn {
	point := kp(sec, 0, "지금까지 얘기")
	return []ScriptTurn{
		{Speaker: HostA, Intent: IntentSummarize, RawText: fillOne(pick(g.rng, recapSummaryLines), point)},
		{Speaker: HostB, Intent: IntentTransition, RawText: pick(g.rng, recapTransitionLines)},
	}
}

// --- Closing: three stylistic variants ---

func (g *TemplateGenerator) closingTurns(sec outline.OutlineSection, a, b Persona) []ScriptTurn {
	variants := [][]ScriptTurn{
		{
			{Speaker: HostA, Intent: IntentClosing, RawText: "오늘 얘기 진짜 알찼던 것 같아요. 여기서 정리하고 마무리할게요."},
			{Speaker: HostB, Intent: IntentClosing, RawText: "네, 오늘도 들어주셔서 감사합니다. 다음 편에서 또 만나요."},
		},
		{
			{Speaker: HostB, Intent: IntentClosing, RawText: "오늘 얘기하면서 저도 많이 배운 것 같아요."},
			{Speaker: HostA, Intent: IntentClosing, RawText: "맞아요, 다음에 또 재밌는 주제로 찾아올게요. 들어주셔서 감사합니다."},
		},
		{
			{Speaker: HostA, Intent: IntentClosing, RawText: "자 오늘은 여기까지 정리해볼게요."},
			{Speaker: HostB, Intent: IntentClosing, RawText: "네 다음 편까지 건강하게 지내시고요, 감사합니다!"},
		},
	}
	return variants[g.rng.Intn(len(variants))]
}

// --- Post-processing: sentence splitting ---

var sentenceBoundary = regexp.MustCompile(`([.!?。！？])\s*`)
var conjunctionSplit = regexp.MustCompile(`(그리고|그래서|하지만|그런데|또한)\s`)

// splitLongTurns splits any turn whose RawText exceeds the preset's
// sentence-length ceiling at a sentence boundary, falling back to a comma
// or Korean conjunction word when no sentence boundary exists.
func splitLongTurns(draft *ScriptDraft, preset interjection.StylePreset) {
	ceiling := SentenceLengthCeiling(preset)
	var out []ScriptTurn
	for _, t := range draft.Turns {
		if len([]rune(t.RawText)) <= ceiling {
			out = append(out, t)
			continue
		}
		parts := splitText(t.RawText, ceiling)
		for i, p := range parts {
			nt := t
			nt.RawText = p
			if i > 0 && t.Intent != IntentClosing {
				nt.Intent = IntentClarify
			}
			out = append(out, nt)
		}
	}
	draft.Turns = out
	reindexTurns(draft)
}

func splitText(text string, ceiling int) []string {
	if locs := sentenceBoundary.FindAllStringIndex(text, -1); len(locs) > 1 {
		var parts []string
		last := 0
		for _, loc := range locs {
			parts = append(parts, strings.TrimSpace(text[last:loc[1]]))
			last = loc[1]
		}
		if last < len(text) {
			parts = append(parts, strings.TrimSpace(text[last:]))
		}
		return mergeShort(parts, ceiling)
	}
	if strings.Contains(text, ",") {
		return mergeShort(splitKeep(text, ","), ceiling)
	}
	if loc := conjunctionSplit.FindStringIndex(text); loc != nil {
		return mergeShort([]string{strings.TrimSpace(text[:loc[0]]), strings.TrimSpace(text[loc[0]:])}, ceiling)
	}
	return []string{text}
}

func splitKeep(text, sep string) []string {
	raw := strings.Split(text, sep)
	var out []string
	for i, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if i < len(raw)-1 {
			p += sep
		}
		out = append(out, p)
	}
	return out
}

// mergeShort recombines adjacent fragments that are still safely under the
// ceiling, so a sentence made of several short clauses isn't exploded into
// one turn per clause.
func mergeShort(parts []string, ceiling int) []string {
	var out []string
	cur := ""
	for _, p := range parts {
		if cur == "" {
			cur = p
			continue
		}
		if len([]rune(cur))+1+len([]rune(p)) <= ceiling {
			cur += " " + p
		} else {
			out = append(out, cur)
			cur = p
		}
	}
	if cur != "" {
		out = append(out, cur)
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}

func reindexTurns(draft *ScriptDraft) {
	for i := range draft.Turns {
		draft.Turns[i].Index = i
	}
	shift := make(map[string]int)
	for i, t := range draft.Turns {
		if _, ok := shift[t.SectionID]; !ok {
			shift[t.SectionID] = i
		}
	}
	for si, seg := range draft.Segments {
		start, end := -1, -1
		for i, t := range draft.Turns {
			if t.SectionID == seg.ID {
				if start == -1 {
					start = i
				}
				end = i
			}
		}
		if start >= 0 {
			draft.Segments[si].StartTurnIndex = start
			draft.Segments[si].EndTurnIndex = end
		}
	}
}

// --- Post-processing: pace/pause/duration heuristics ---

func paceFor(intent Intent) Pace {
	switch intent {
	case IntentReact, IntentAskQuestion:
		return PaceFast
	case IntentSummarize, IntentClosing, IntentOpenerHook:
		return PaceSlow
	default:
		return PaceNormal
	}
}

func pausesFor(intent Intent, isFirst bool) (before, after int) {
	if isFirst {
		before = 0
	} else {
		switch intent {
		case IntentTransition, IntentClosing:
			before = 450
		case IntentCounter:
			before = 350
		default:
			before = 180
		}
	}
	switch intent {
	case IntentAskQuestion:
		after = 350
	case IntentClosing:
		after = 450
	case IntentTransition:
		after = 300
	default:
		after = 180
	}
	if before > 600 {
		before = 600
	}
	if after > 500 {
		after = 500
	}
	return before, after
}

func assignPauses(draft *ScriptDraft) {
	for i := range draft.Turns {
		t := &draft.Turns[i]
		t.Pace = paceFor(t.Intent)
		t.PauseMsBefore, t.PauseMsAfter = pausesFor(t.Intent, i == 0)
	}
}

// charsPerSecondFor mirrors interjection.charsPerSecond's reading-speed
// constants; duplicated here to keep script's estimate self-contained
// until the chemistry engine re-derives real elapsed time during
// enrichment.
func charsPerSecondFor(pace Pace) float64 {
	switch pace {
	case PaceSlow:
		return 4
	case PaceFast:
		return 6
	default:
		return 5
	}
}

func charsExcludingSpacesIn(s string) int {
	n := 0
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' {
			n++
		}
	}
	return n
}

func assignDurations(draft *ScriptDraft) {
	for i := range draft.Turns {
		t := &draft.Turns[i]
		speechMs := float64(charsExcludingSpacesIn(t.RawText)) / charsPerSecondFor(t.Pace) * 1000
		t.EstimatedDurationMs = int(speechMs) + t.PauseMsBefore + t.PauseMsAfter
	}
}

func fillSegmentDurations(draft *ScriptDraft) {
	for si := range draft.Segments {
		seg := &draft.Segments[si]
		total := 0
		for i := seg.StartTurnIndex; i <= seg.EndTurnIndex && i >= 0 && i < len(draft.Turns); i++ {
			total += draft.Turns[i].EstimatedDurationMs
		}
		seg.ActualDurationMs = total
	}
}
