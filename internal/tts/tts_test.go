package tts

import (
	"context"
	"testing"

	"github.com/apresai/koreanpodcast/internal/script"
)

func TestEstimateDurationMs_ExcludesSpaces(t *testing.T) {
	got := EstimateDurationMs("가 나 다")
	want := 3 * 1000 / 5
	if got != want {
		t.Fatalf("EstimateDurationMs(%q) = %d, want %d", "가 나 다", got, want)
	}
}

func TestNewAdapter_UnknownProvider(t *testing.T) {
	_, err := NewAdapter("bogus", ProviderConfig{})
	if err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}

func TestNewAdapter_DevModeWhenNoCredentials(t *testing.T) {
	for _, provider := range []string{"openai", "elevenlabs", "azure"} {
		adapter, err := NewAdapter(provider, ProviderConfig{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", provider, err)
		}
		res, err := adapter.SynthesizeTurn(context.Background(), script.ScriptTurn{ID: "t1", NormalizedText: "안녕하세요"}, VoiceProfile{Provider: provider})
		if err != nil {
			t.Fatalf("%s: dev mode should not error: %v", provider, err)
		}
		if !res.DevMode {
			t.Fatalf("%s: expected DevMode result with no credentials", provider)
		}
		if res.DurationMs <= 0 {
			t.Fatalf("%s: expected a positive estimated duration, got %d", provider, res.DurationMs)
		}
	}
}

func TestWithRetry_StopsOnNonRetryableError(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return errNonRetryable
	})
	if err != errNonRetryable {
		t.Fatalf("expected the non-retryable error to surface immediately, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt for a non-retryable error, got %d", attempts)
	}
}

func TestWithRetry_RetriesRetryableError(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return &RetryableError{StatusCode: 429, Body: "rate limited"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestSynthesizeBatch_MarksFailedTurns(t *testing.T) {
	turns := []script.ScriptTurn{
		{ID: "t1", Speaker: script.HostA, NormalizedText: "하나"},
		{ID: "t2", Speaker: script.HostB, NormalizedText: "둘"},
	}
	adapter := &failingAdapter{failID: "t2"}
	voiceFor := func(s script.Speaker) VoiceProfile { return VoiceProfile{Provider: "google"} }

	results, err := SynthesizeBatch(context.Background(), adapter, turns, voiceFor, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	failed := FailedTurnIDs(results)
	if len(failed) != 1 || failed[0] != "t2" {
		t.Fatalf("expected only t2 to fail, got %v", failed)
	}
}

type errSentinel struct{ msg string }

func (e *errSentinel) Error() string { return e.msg }

var errNonRetryable = &errSentinel{msg: "permanent failure"}

type failingAdapter struct {
	failID string
}

func (a *failingAdapter) ProviderName() string              { return "fake" }
func (a *failingAdapter) EstimateDuration(text string) int  { return EstimateDurationMs(text) }
func (a *failingAdapter) SynthesizeTurn(ctx context.Context, turn script.ScriptTurn, voice VoiceProfile) (TTSSynthesisResult, error) {
	if turn.ID == a.failID {
		return TTSSynthesisResult{}, errNonRetryable
	}
	return TTSSynthesisResult{TurnID: turn.ID, DurationMs: EstimateDurationMs(turn.NormalizedText)}, nil
}
