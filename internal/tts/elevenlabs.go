package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apresai/koreanpodcast/internal/script"
	"github.com/apresai/koreanpodcast/internal/ssml"
)

const (
	elevenLabsAPIBase   = "https://api.elevenlabs.io/v1/text-to-speech"
	elevenLabsModelID   = "eleven_multilingual_v2"
	elevenLabsOutputFmt = "mp3_44100_128"
)

type elevenLabsRequest struct {
	Text          string                `json:"text"`
	ModelID       string                `json:"model_id"`
	VoiceSettings *elevenLabsVoiceTuning `json:"voice_settings,omitempty"`
}

type elevenLabsVoiceTuning struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
	Speed           float64 `json:"speed"`
}

// ElevenLabsAdapter speaks plain text through the voice-scoped ElevenLabs
// endpoint. It never receives SSML markup; emphasis and pace live only in
// the voiceSettings tuning and the speed parameter.
type ElevenLabsAdapter struct {
	apiKey     string
	httpClient *http.Client
	devMode    bool
}

func NewElevenLabsAdapter(cfg ProviderConfig) *ElevenLabsAdapter {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &ElevenLabsAdapter{
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		devMode:    cfg.APIKey == "",
	}
}

func (a *ElevenLabsAdapter) ProviderName() string { return "elevenlabs" }

func (a *ElevenLabsAdapter) EstimateDuration(text string) int {
	return EstimateDurationMs(text)
}

func (a *ElevenLabsAdapter) SynthesizeTurn(ctx context.Context, turn script.ScriptTurn, voice VoiceProfile) (TTSSynthesisResult, error) {
	text := ssml.PlainText(turn)
	if a.devMode {
		return devModeResult(turn.ID, "elevenlabs", text), nil
	}

	speed := voice.SpeakingRate
	if speed == 0 {
		speed = 1.0
	}
	reqBody := elevenLabsRequest{
		Text:    text,
		ModelID: elevenLabsModelID,
		VoiceSettings: &elevenLabsVoiceTuning{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Style:           0.3,
			UseSpeakerBoost: true,
			Speed:           speed,
		},
	}

	var audio []byte
	err := WithRetry(ctx, func() error {
		var callErr error
		audio, callErr = a.doRequest(ctx, voice.VoiceID, reqBody)
		return callErr
	})
	if err != nil {
		return TTSSynthesisResult{}, fmt.Errorf("elevenlabs synthesis failed for turn %s: %w", turn.ID, err)
	}

	return TTSSynthesisResult{
		TurnID:     turn.ID,
		AudioData:  audio,
		Format:     FormatMP3,
		DurationMs: EstimateDurationMs(text),
		Provider:   "elevenlabs",
	}, nil
}

func (a *ElevenLabsAdapter) doRequest(ctx context.Context, voiceID string, reqBody elevenLabsRequest) ([]byte, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?output_format=%s", elevenLabsAPIBase, voiceID, elevenLabsOutputFmt)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= http.StatusInternalServerError {
		errBody, _ := io.ReadAll(res.Body)
		return nil, &RetryableError{StatusCode: res.StatusCode, Body: string(errBody)}
	}
	if res.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elevenlabs api error (status %d): %s", res.StatusCode, string(errBody))
	}

	return io.ReadAll(res.Body)
}
