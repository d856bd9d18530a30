package script

import (
	"context"
	"math/rand"
	"testing"

	"github.com/apresai/koreanpodcast/internal/interjection"
	"github.com/apresai/koreanpodcast/internal/outline"
)

func sampleOutline() *outline.ContentOutline {
	return &outline.ContentOutline{
		EpisodeTitle: "테스트 에피소드",
		Sections: []outline.OutlineSection{
			{Type: outline.SectionOpening, Order: 0, EstimatedDurationSec: 60},
			{Type: outline.SectionKeypoint, Order: 1, Keypoints: []string{"핵심 포인트 하나", "세부 설명"}, EstimatedDurationSec: 180},
			{Type: outline.SectionExample, Order: 2, Keypoints: []string{"예시 하나"}, EstimatedDurationSec: 90},
			{Type: outline.SectionCaution, Order: 3, Keypoints: []string{"주의할 점"}, EstimatedDurationSec: 90},
			{Type: outline.SectionRecap, Order: 4, Keypoints: []string{"요약"}, EstimatedDurationSec: 60},
			{Type: outline.SectionClosing, Order: 5, EstimatedDurationSec: 30},
		},
	}
}

func TestTemplateGenerator_ProducesContiguousNonEmptyTurns(t *testing.T) {
	g := NewTemplateGenerator(rand.New(rand.NewSource(1)))
	draft, err := g.Generate(context.Background(), sampleOutline(), GenerateOptions{Preset: interjection.PresetFriendly})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(draft.Turns) == 0 {
		t.Fatal("expected at least one turn")
	}
	for i, turn := range draft.Turns {
		if turn.Index != i {
			t.Fatalf("turn %d has Index %d, want %d", i, turn.Index, i)
		}
		if turn.RawText == "" {
			t.Fatalf("turn %d has empty RawText", i)
		}
	}
}

func TestTemplateGenerator_EmptyOutlineStillYieldsOpeningAndClosing(t *testing.T) {
	g := NewTemplateGenerator(rand.New(rand.NewSource(2)))
	empty := &outline.ContentOutline{EpisodeTitle: "빈 에피소드"}
	draft, err := g.Generate(context.Background(), empty, GenerateOptions{Preset: interjection.PresetFriendly})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(draft.Turns) < 2 {
		t.Fatalf("expected a fallback opening+closing pair, got %d turns", len(draft.Turns))
	}
	if draft.Turns[0].Intent != IntentOpenerHook {
		t.Fatalf("expected first turn to open, got intent %q", draft.Turns[0].Intent)
	}
	last := draft.Turns[len(draft.Turns)-1]
	if last.Intent != IntentClosing {
		t.Fatalf("expected last turn to close, got intent %q", last.Intent)
	}
}

func TestTemplateGenerator_SplitsOverlongTurns(t *testing.T) {
	g := NewTemplateGenerator(rand.New(rand.NewSource(3)))
	o := &outline.ContentOutline{
		EpisodeTitle: "긴 문장 테스트",
		Sections: []outline.OutlineSection{
			{Type: outline.SectionKeypoint, Order: 0, Keypoints: []string{
				"이것은 매우 길게 이어지는 문장입니다. 그리고 계속 이어집니다. 하지만 또 계속됩니다. 그런데 더 길어집니다. 그래서 쪼개져야 합니다.",
			}, EstimatedDurationSec: 120},
		},
	}
	draft, err := g.Generate(context.Background(), o, GenerateOptions{Preset: interjection.PresetNews})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ceiling := SentenceLengthCeiling(interjection.PresetNews)
	for _, turn := range draft.Turns {
		if len([]rune(turn.RawText)) > ceiling {
			t.Fatalf("turn %q exceeds ceiling %d", turn.RawText, ceiling)
		}
	}
}

func TestSafetyCheck_FlagsSensitiveAbsoluteClaim(t *testing.T) {
	draft := &ScriptDraft{Turns: []ScriptTurn{
		{Index: 0, RawText: "이 방법은 100% 확실합니다."},
	}}
	issues := SafetyCheck(draft)
	if len(issues) == 0 {
		t.Fatal("expected a safety issue for an absolute medical/legal claim")
	}
}

func TestSafetyCheck_CleanDraftHasNoIssues(t *testing.T) {
	draft := &ScriptDraft{Turns: []ScriptTurn{
		{Index: 0, RawText: "오늘은 이 주제에 대해 이야기해볼게요."},
	}}
	if issues := SafetyCheck(draft); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}
