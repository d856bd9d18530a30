// Package tts synthesizes per-turn audio across Google, OpenAI, ElevenLabs,
// and Azure, behind a single TTSAdapter capability set. Providers without
// credentials configured fall back to development mode: silent dummy audio
// with a char-count duration estimate, so the rest of the pipeline can run
// end-to-end without live API access.
package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apresai/koreanpodcast/internal/script"
)

// Role is the conversational function a voice plays, used to pick sensible
// default voice IDs per provider when the caller doesn't name one.
type Role string

const (
	RoleStableExplainer  Role = "stable_explainer"
	RoleReactiveCurious  Role = "reactive_curious"
	RoleExpertGuest      Role = "expert_guest"
)

// VoiceProfile selects the provider, voice, and prosody envelope used to
// synthesize a host's turns.
type VoiceProfile struct {
	Provider     string  `json:"provider"` // google | openai | elevenlabs | azure
	VoiceID      string  `json:"voiceId"`
	Language     string  `json:"language"`
	Gender       string  `json:"gender"`
	Role         Role    `json:"role"`
	PitchOffset  float64 `json:"pitchOffset"`  // semitones, -20..20
	SpeakingRate float64 `json:"speakingRate"` // 0.25..4.0
}

// AudioFormat tags the encoding of synthesized bytes.
type AudioFormat string

const (
	FormatMP3 AudioFormat = "mp3"
	FormatPCM AudioFormat = "pcm"
)

// TTSSynthesisResult is the per-turn output of a synthesis call.
type TTSSynthesisResult struct {
	TurnID      string      `json:"turnId"`
	AudioData   []byte      `json:"-"`
	Format      AudioFormat `json:"format"`
	DurationMs  int         `json:"durationMs"`
	Provider    string      `json:"provider"`
	DevMode     bool        `json:"devMode"`
	Warning     string      `json:"warning,omitempty"`
}

// TTSAdapter is the capability set every provider implementation exposes.
// New providers are additive: the dispatch in NewAdapter is the only switch
// statement over provider names in the package.
type TTSAdapter interface {
	SynthesizeTurn(ctx context.Context, turn script.ScriptTurn, voice VoiceProfile) (TTSSynthesisResult, error)
	EstimateDuration(text string) int
	ProviderName() string
}

// EstimateDurationMs applies the shared chars-excluding-spaces/5 estimate
// every adapter falls back to when a provider doesn't report real duration.
func EstimateDurationMs(text string) int {
	n := 0
	for _, r := range text {
		if r != ' ' && r != '\t' && r != '\n' {
			n++
		}
	}
	return n * 1000 / 5
}

// ProviderConfig holds the credentials and per-provider tuning the caller
// supplies when building an adapter.
type ProviderConfig struct {
	APIKey       string
	Region       string // required by azure
	Model        string
	HTTPTimeout  time.Duration
}

// NewAdapter builds the TTSAdapter for the named provider. An empty APIKey
// is not an error — the adapter runs in development mode instead.
func NewAdapter(provider string, cfg ProviderConfig) (TTSAdapter, error) {
	switch provider {
	case "google":
		return NewGoogleAdapter(cfg)
	case "openai":
		return NewOpenAIAdapter(cfg), nil
	case "elevenlabs":
		return NewElevenLabsAdapter(cfg), nil
	case "azure":
		return NewAzureAdapter(cfg), nil
	default:
		return nil, fmt.Errorf("unknown TTS provider %q: choose google, openai, elevenlabs, or azure", provider)
	}
}

// --- shared retry machinery, grounded on the teacher's provider.go ---

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 100 * time.Millisecond
	defaultBackoffMulti   = 4 // 100ms, 400ms per §4.5
)

// RetryableError signals a transient provider failure (429/5xx/timeout)
// that WithRetry should retry rather than surface immediately.
type RetryableError struct {
	StatusCode int
	Body       string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("tts provider error (status %d): %s", e.StatusCode, e.Body)
}

func isRetryable(ctx context.Context, err error) bool {
	var re *RetryableError
	if errors.As(err, &re) {
		return true
	}
	if ctx.Err() == nil && (os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded)) {
		return true
	}
	return false
}

// WithRetry runs fn up to defaultMaxAttempts times with exponential
// backoff (100ms, 400ms) on retryable errors, per §4.5's batch-synthesis
// retry budget.
func WithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	backoff := defaultInitialBackoff

	for attempt := 1; attempt <= defaultMaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isRetryable(ctx, err) {
			return err
		}
		lastErr = err
		if attempt < defaultMaxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= time.Duration(defaultBackoffMulti)
		}
	}
	return lastErr
}

// devModeResult builds the silent-audio, estimated-duration stand-in
// returned when a provider has no credentials configured.
func devModeResult(turnID, provider, text string) TTSSynthesisResult {
	return TTSSynthesisResult{
		TurnID:     turnID,
		AudioData:  []byte{},
		Format:     FormatMP3,
		DurationMs: EstimateDurationMs(text),
		Provider:   provider,
		DevMode:    true,
	}
}

func textForSynthesis(turn script.ScriptTurn) string {
	if strings.TrimSpace(turn.SSML) != "" {
		return turn.SSML
	}
	if turn.NormalizedText != "" {
		return turn.NormalizedText
	}
	return turn.RawText
}
