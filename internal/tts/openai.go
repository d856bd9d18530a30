package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/apresai/koreanpodcast/internal/script"
	"github.com/apresai/koreanpodcast/internal/ssml"
)

// openaiVoiceByRole maps VoiceProfile.Role to the speech-endpoint voice
// name when the caller hasn't pinned a specific voiceId.
var openaiVoiceByRole = map[Role]string{
	RoleStableExplainer: "onyx",
	RoleReactiveCurious: "nova",
	RoleExpertGuest:     "echo",
}

// OpenAIAdapter speaks plain text through the speech endpoint. SSML is
// unsupported; pace is expressed only through the speed parameter.
type OpenAIAdapter struct {
	client  oai.Client
	devMode bool
}

func NewOpenAIAdapter(cfg ProviderConfig) *OpenAIAdapter {
	if cfg.APIKey == "" {
		return &OpenAIAdapter{devMode: true}
	}
	return &OpenAIAdapter{client: oai.NewClient(option.WithAPIKey(cfg.APIKey))}
}

func (a *OpenAIAdapter) ProviderName() string { return "openai" }

func (a *OpenAIAdapter) EstimateDuration(text string) int {
	return EstimateDurationMs(text)
}

func (a *OpenAIAdapter) SynthesizeTurn(ctx context.Context, turn script.ScriptTurn, voice VoiceProfile) (TTSSynthesisResult, error) {
	text := ssml.PlainText(turn)
	if a.devMode {
		return devModeResult(turn.ID, "openai", text), nil
	}

	voiceName := voice.VoiceID
	if voiceName == "" {
		voiceName = openaiVoiceByRole[voice.Role]
		if voiceName == "" {
			voiceName = "alloy"
		}
	}
	speed := voice.SpeakingRate
	if speed == 0 {
		speed = 1.0
	}

	var data []byte
	err := WithRetry(ctx, func() error {
		resp, callErr := a.client.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
			Model: oai.SpeechModelTTS1,
			Input: text,
			Voice: oai.AudioSpeechNewParamsVoice(voiceName),
			Speed: param.NewOpt(speed),
		})
		if callErr != nil {
			return &RetryableError{StatusCode: 0, Body: callErr.Error()}
		}
		defer resp.Body.Close()
		buf, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("read speech response: %w", readErr)
		}
		data = buf
		return nil
	})
	if err != nil {
		return TTSSynthesisResult{}, fmt.Errorf("openai synthesis failed for turn %s: %w", turn.ID, err)
	}

	return TTSSynthesisResult{
		TurnID:     turn.ID,
		AudioData:  bytes.Clone(data),
		Format:     FormatMP3,
		DurationMs: EstimateDurationMs(text),
		Provider:   "openai",
	}, nil
}
