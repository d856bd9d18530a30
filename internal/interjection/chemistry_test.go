package interjection

import (
	"math/rand"
	"testing"

	"github.com/apresai/koreanpodcast/internal/script"
)

func buildDraft(n int) *script.ScriptDraft {
	turns := make([]script.ScriptTurn, 0, n)
	intents := []script.Intent{
		script.IntentOpenerHook, script.IntentExplainPoint, script.IntentReact,
		script.IntentAskQuestion, script.IntentGiveExample, script.IntentSummarize,
		script.IntentTransition, script.IntentClosing,
	}
	for i := 0; i < n; i++ {
		speaker := script.HostA
		if i%2 == 1 {
			speaker = script.HostB
		}
		turns = append(turns, script.ScriptTurn{
			ID:      idFor(i),
			Index:   i,
			Speaker: speaker,
			RawText: "이것은 테스트 문장입니다 숫자와 내용을 담고 있습니다",
			Intent:  intents[i%len(intents)],
			Pace:    script.PaceNormal,
		})
	}
	return &script.ScriptDraft{
		EpisodeTitle: "test",
		Turns:        turns,
		Segments: []script.ScriptSegment{
			{ID: "s1", Type: "opening", StartTurnIndex: 0, EndTurnIndex: 2},
			{ID: "s2", Type: "keypoint", StartTurnIndex: 3, EndTurnIndex: n - 2},
			{ID: "s3", Type: "closing", StartTurnIndex: n - 1, EndTurnIndex: n - 1},
		},
	}
}

func idFor(i int) string {
	return "t" + string(rune('0'+i%10))
}

func TestEnrich_StrongReactionCapRespectsPreset(t *testing.T) {
	draft := buildDraft(60)
	eng := NewEngine(NewDefaultLibrary(), PresetNews, 3, rand.New(rand.NewSource(42)))
	enriched, _ := eng.Enrich(draft)
	if enriched.StrongReactionCount != 0 {
		t.Fatalf("NEWS preset must never emit strong reactions, got %d", enriched.StrongReactionCount)
	}
}

func TestEnrich_InterjectionUsageNeverExceedsQuota(t *testing.T) {
	draft := buildDraft(80)
	eng := NewEngine(NewDefaultLibrary(), PresetFriendly, 3, rand.New(rand.NewSource(7)))
	enriched, _ := eng.Enrich(draft)
	for text, count := range enriched.InterjectionUsage {
		limit := 2
		if text == "맞아요" {
			limit = 3
		}
		if count > limit {
			t.Errorf("interjection %q used %d times, want <= %d", text, count, limit)
		}
	}
}

func TestEnrich_NoAdjacentInterjections(t *testing.T) {
	draft := buildDraft(80)
	eng := NewEngine(NewDefaultLibrary(), PresetFriendly, 3, rand.New(rand.NewSource(3)))
	enriched, _ := eng.Enrich(draft)
	last := -1000
	for i, turn := range enriched.Turns {
		if turn.Interjection == nil {
			continue
		}
		if i-last < 2 {
			t.Fatalf("turns %d and %d both carry interjections, want a gap >= 2", last, i)
		}
		last = i
	}
}

func TestEnrich_HumorQADetectsForbiddenSlang(t *testing.T) {
	draft := buildDraft(10)
	draft.Turns[3].RawText = "이건 레전드야 진짜"
	eng := NewEngine(NewDefaultLibrary(), PresetFriendly, 1, rand.New(rand.NewSource(1)))
	_, qa := eng.Enrich(draft)
	if len(qa.DetectedSlang) == 0 {
		t.Fatalf("expected forbidden slang to be detected, got %+v", qa)
	}
}
