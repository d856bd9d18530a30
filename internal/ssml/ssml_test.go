package ssml

import (
	"strings"
	"testing"

	"github.com/apresai/koreanpodcast/internal/script"
)

func TestCompile_GoogleProsodyAndEmphasis(t *testing.T) {
	turn := script.ScriptTurn{
		NormalizedText: "이게 진짜 신기한 부분이에요",
		Pace:           script.PaceFast,
		EmphasisWords:  []string{"신기한"},
		PauseMsBefore:  180,
		PauseMsAfter:   180,
	}
	out := Compile(turn, "google")
	if !strings.HasPrefix(out, "<speak>") || !strings.HasSuffix(out, "</speak>") {
		t.Fatalf("expected <speak> wrapper, got %q", out)
	}
	if !strings.Contains(out, `<prosody rate="1.1">`) {
		t.Fatalf("expected fast-pace prosody rate 1.1, got %q", out)
	}
	if !strings.Contains(out, `<emphasis level="strong">신기한</emphasis>`) {
		t.Fatalf("expected emphasis markup around 신기한, got %q", out)
	}
	if !strings.Contains(out, `<break time="180ms"/>`) {
		t.Fatalf("expected leading/trailing pause breaks, got %q", out)
	}
}

func TestCompile_NonGooglePlainBody(t *testing.T) {
	turn := script.ScriptTurn{NormalizedText: "그렇군요", Pace: script.PaceNormal}
	out := Compile(turn, "elevenlabs")
	if strings.Contains(out, "<prosody") {
		t.Fatalf("non-google provider should not receive prosody markup, got %q", out)
	}
	if !strings.Contains(out, "그렇군요") {
		t.Fatalf("expected body text present, got %q", out)
	}
}

func TestCompile_InterjectionStartAndLaughStrip(t *testing.T) {
	turn := script.ScriptTurn{
		NormalizedText: "(피식) 그거 진짜 웃기네요",
		Pace:           script.PaceNormal,
		Interjection: &script.TurnInterjection{
			Text:     "헐",
			Category: "surprise_wow",
			Position: script.InterjectionStart,
		},
	}
	out := Compile(turn, "google")
	if !strings.Contains(out, "헐") {
		t.Fatalf("expected leading interjection text, got %q", out)
	}
	if strings.Contains(out, "피식") {
		t.Fatalf("expected laugh marker stripped, got %q", out)
	}
	if !strings.Contains(out, `<break time="100ms"/>`) {
		t.Fatalf("expected 100ms pause after leading interjection, got %q", out)
	}
}

func TestCompile_NoPauseElementWhenZero(t *testing.T) {
	turn := script.ScriptTurn{NormalizedText: "안녕하세요", Pace: script.PaceNormal}
	out := Compile(turn, "google")
	if strings.Count(out, "<break") != 0 {
		t.Fatalf("expected no break elements for zero pauses, got %q", out)
	}
}

func TestPlainText_AppendsTrailingInterjection(t *testing.T) {
	turn := script.ScriptTurn{
		NormalizedText: "그게 맞는 것 같아요",
		Interjection: &script.TurnInterjection{
			Text:     "그렇죠",
			Position: script.InterjectionEnd,
		},
	}
	out := PlainText(turn)
	if !strings.HasSuffix(out, "그렇죠") {
		t.Fatalf("expected trailing interjection appended, got %q", out)
	}
}
