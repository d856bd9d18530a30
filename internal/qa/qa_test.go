package qa

import (
	"testing"

	"github.com/apresai/koreanpodcast/internal/audio"
	"github.com/apresai/koreanpodcast/internal/interjection"
	"github.com/apresai/koreanpodcast/internal/script"
	"github.com/apresai/koreanpodcast/internal/tts"
)

func sampleEnriched() *script.EnrichedScript {
	return &script.EnrichedScript{
		Turns: []script.ScriptTurn{
			{ID: "t1", RawText: "오늘은 날씨가 좋네요", Intent: "smallTalk", PauseMsBefore: 300, PauseMsAfter: 300, EstimatedDurationMs: 2000},
			{ID: "t2", RawText: "네 정말 그렇습니다", Intent: "agree", PauseMsBefore: 320, PauseMsAfter: 280, EstimatedDurationMs: 2000},
		},
		InterjectionUsage:   map[string]int{"헐": 1},
		StrongReactionCount: 1,
	}
}

func TestPronunciation_CleanTextScoresHigh(t *testing.T) {
	score := Pronunciation(sampleEnriched())
	if score.Score < 80 {
		t.Fatalf("expected a high pronunciation score for clean text, got %v", score.Score)
	}
}

func TestPronunciation_FlagsUnloggedNumber(t *testing.T) {
	enriched := sampleEnriched()
	enriched.Turns[0].RawText = "가격은 123456원입니다"
	score := Pronunciation(enriched)
	if len(score.Issues) == 0 {
		t.Fatal("expected an issue for an unlogged numeric literal")
	}
}

func TestRhythm_FlagsUniformPauses(t *testing.T) {
	enriched := &script.EnrichedScript{
		Turns: []script.ScriptTurn{
			{RawText: "짧게", PauseMsBefore: 300, PauseMsAfter: 300},
			{RawText: "짧게", PauseMsBefore: 300, PauseMsAfter: 300},
			{RawText: "짧게", PauseMsBefore: 300, PauseMsAfter: 300},
		},
	}
	score := Rhythm(enriched)
	if score.Score >= 100 {
		t.Fatalf("expected uniform pauses to be penalized, got %v", score.Score)
	}
}

func TestRepetition_FlagsRepeatedPhrase(t *testing.T) {
	enriched := &script.EnrichedScript{
		Turns: []script.ScriptTurn{
			{RawText: "이 부분은 정말 중요한 포인트예요"},
			{RawText: "이 부분은 정말 중요한 포인트예요"},
		},
	}
	score := Repetition(enriched)
	if len(score.Issues) == 0 {
		t.Fatal("expected a repeated-phrase issue")
	}
}

func TestHumor_FlagsForbiddenSlang(t *testing.T) {
	lib := interjection.NewDefaultLibrary()
	enriched := sampleEnriched()
	if len(lib.ForbiddenSlang) == 0 {
		t.Skip("no forbidden slang entries to test against")
	}
	enriched.Turns[0].RawText = lib.ForbiddenSlang[0]
	score := Humor(enriched, lib)
	found := false
	for _, iss := range score.Issues {
		if iss.Severity == SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a critical issue for forbidden slang")
	}
}

func TestArtifacts_FlagsClippingWarning(t *testing.T) {
	final := &audio.FinalAudioResult{MeasuredLoudness: audio.LoudnessReport{OutputI: "-16.00"}}
	results := []tts.TTSSynthesisResult{{TurnID: "t1", Warning: "possible clipping detected"}}
	score := Artifacts(final, results)
	if score.Score >= 100 {
		t.Fatalf("expected clipping to be penalized, got %v", score.Score)
	}
}

func TestAnalyze_PassesCleanEpisode(t *testing.T) {
	enriched := sampleEnriched()
	lib := interjection.NewDefaultLibrary()
	final := &audio.FinalAudioResult{MeasuredLoudness: audio.LoudnessReport{OutputI: "-16.00"}}
	report := Analyze(enriched, final, nil, lib, 0)
	if report.OverallScore <= 0 {
		t.Fatalf("expected a positive overall score, got %v", report.OverallScore)
	}
}
