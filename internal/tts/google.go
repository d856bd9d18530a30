package tts

import (
	"context"
	"fmt"
	"os"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"github.com/apresai/koreanpodcast/internal/script"
	"github.com/apresai/koreanpodcast/internal/ssml"
)

// GoogleAdapter speaks SSML through the Cloud Text-to-Speech API, the only
// provider in the set that accepts markup instead of plain text.
type GoogleAdapter struct {
	client *texttospeech.Client
	devMode bool
}

// NewGoogleAdapter builds the Google adapter. Google's SDK reads
// GOOGLE_APPLICATION_CREDENTIALS itself, so dev mode here keys off that
// variable rather than cfg.APIKey.
func NewGoogleAdapter(cfg ProviderConfig) (*GoogleAdapter, error) {
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" && cfg.APIKey == "" {
		return &GoogleAdapter{devMode: true}, nil
	}

	client, err := texttospeech.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("google tts client: %w", err)
	}
	return &GoogleAdapter{client: client}, nil
}

func (a *GoogleAdapter) ProviderName() string { return "google" }

func (a *GoogleAdapter) EstimateDuration(text string) int {
	return EstimateDurationMs(text)
}

func (a *GoogleAdapter) SynthesizeTurn(ctx context.Context, turn script.ScriptTurn, voice VoiceProfile) (TTSSynthesisResult, error) {
	fragment := ssml.Compile(turn, "google")
	if a.devMode {
		return devModeResult(turn.ID, "google", fragment), nil
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Ssml{Ssml: fragment},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: orDefault(voice.Language, "ko-KR"),
			Name:         voice.VoiceID,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   texttospeechpb.AudioEncoding_MP3,
			SampleRateHertz: 24000,
			SpeakingRate:    orDefaultF(voice.SpeakingRate, 1.0),
			PitchSemitones:  voice.PitchOffset,
		},
	}

	var resp *texttospeechpb.SynthesizeSpeechResponse
	err := WithRetry(ctx, func() error {
		var callErr error
		resp, callErr = a.client.SynthesizeSpeech(ctx, req)
		if callErr != nil {
			return &RetryableError{StatusCode: 0, Body: callErr.Error()}
		}
		return nil
	})
	if err != nil {
		return TTSSynthesisResult{}, fmt.Errorf("google synthesis failed for turn %s: %w", turn.ID, err)
	}

	return TTSSynthesisResult{
		TurnID:     turn.ID,
		AudioData:  resp.AudioContent,
		Format:     FormatMP3,
		DurationMs: EstimateDurationMs(textForSynthesis(turn)),
		Provider:   "google",
	}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orDefaultF(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
