package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/apresai/koreanpodcast/internal/script"
	"github.com/apresai/koreanpodcast/internal/ssml"
)

const azureDefaultVoice = "ko-KR-SunHiNeural"

// AzureAdapter speaks SSML through the Azure Cognitive Services Speech
// REST endpoint, authenticated with a subscription key rather than the
// bearer tokens the Speech SDK normally issues.
type AzureAdapter struct {
	apiKey     string
	region     string
	httpClient *http.Client
	devMode    bool
}

func NewAzureAdapter(cfg ProviderConfig) *AzureAdapter {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &AzureAdapter{
		apiKey: cfg.APIKey,
		region: cfg.Region,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: timeout,
			},
		},
		devMode: cfg.APIKey == "",
	}
}

func (a *AzureAdapter) ProviderName() string { return "azure" }

func (a *AzureAdapter) EstimateDuration(text string) int {
	return EstimateDurationMs(text)
}

func (a *AzureAdapter) endpoint() string {
	return fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", a.region)
}

func (a *AzureAdapter) SynthesizeTurn(ctx context.Context, turn script.ScriptTurn, voice VoiceProfile) (TTSSynthesisResult, error) {
	fragment := ssml.Compile(turn, "azure")
	if a.devMode {
		return devModeResult(turn.ID, "azure", fragment), nil
	}

	voiceName := voice.VoiceID
	if voiceName == "" {
		voiceName = azureDefaultVoice
	}
	body := azureSSMLDocument(fragment, voiceName, orDefault(voice.Language, "ko-KR"))

	var audio []byte
	err := WithRetry(ctx, func() error {
		var callErr error
		audio, callErr = a.doRequest(ctx, body)
		return callErr
	})
	if err != nil {
		return TTSSynthesisResult{}, fmt.Errorf("azure synthesis failed for turn %s: %w", turn.ID, err)
	}

	return TTSSynthesisResult{
		TurnID:     turn.ID,
		AudioData:  audio,
		Format:     FormatMP3,
		DurationMs: EstimateDurationMs(textForSynthesis(turn)),
		Provider:   "azure",
	}, nil
}

// azureSSMLDocument wraps the compiled fragment's inner markup in the full
// <speak>/<voice> envelope the Speech REST endpoint requires, since our
// compiler emits a bare <speak>...</speak> fragment without a voice tag.
func azureSSMLDocument(fragment, voiceName, language string) string {
	inner := fragment
	inner = trimSpeakTags(inner)
	return fmt.Sprintf(
		`<speak version="1.0" xml:lang="%s"><voice name="%s">%s</voice></speak>`,
		language, voiceName, inner,
	)
}

func trimSpeakTags(s string) string {
	const open, close = "<speak>", "</speak>"
	if len(s) >= len(open)+len(close) {
		s = s[len(open) : len(s)-len(close)]
	}
	return s
}

func (a *AzureAdapter) doRequest(ctx context.Context, ssmlBody string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint(), bytes.NewReader([]byte(ssmlBody)))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.apiKey)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", "audio-24khz-96kbitrate-mono-mp3")

	res, err := a.httpClient.Do(req)
	if err != nil {
		return nil, &RetryableError{StatusCode: 0, Body: err.Error()}
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= http.StatusInternalServerError {
		errBody, _ := io.ReadAll(res.Body)
		return nil, &RetryableError{StatusCode: res.StatusCode, Body: string(errBody)}
	}
	if res.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("azure speech api error (status %d): %s", res.StatusCode, string(errBody))
	}

	return io.ReadAll(res.Body)
}
