package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apresai/koreanpodcast/internal/interjection"
	"github.com/apresai/koreanpodcast/internal/pipeline"
	"github.com/apresai/koreanpodcast/internal/progress"
	"github.com/apresai/koreanpodcast/internal/script"
	"github.com/apresai/koreanpodcast/internal/tts"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "koreanpodcast",
	Short: "Turn written source material into a two-host Korean conversational podcast",
	RunE: func(cmd *cobra.Command, args []string) error {
		flagTUI = true
		return runGenerate(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("koreanpodcast %s\n", Version)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a podcast episode from written content",
	RunE:  runGenerate,
}

var (
	flagInput            string
	flagOutput           string
	flagTopic            string
	flagStyle            string
	flagBanterLevel      int
	flagDurationSec      int
	flagVoice1           string
	flagVoice2           string
	flagScriptOnly       bool
	flagFromScript       string
	flagVerbose          bool
	flagMode             string
	flagModel            string
	flagTUI              bool
	flagAnthropicAPIKey  string
	flagGoogleAPIKey     string
	flagElevenLabsAPIKey string
	flagOpenAIAPIKey     string
	flagAzureAPIKey      string
	flagAzureRegion      string
	flagMaxRegenAttempts int
	flagPassThreshold    float64
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&flagInput, "input", "i", "", "Source content (URL, PDF path, or text file path)")
	generateCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file path (MP3)")
	generateCmd.Flags().StringVarP(&flagTopic, "topic", "p", "", "Focus the conversation on a specific topic")
	generateCmd.Flags().StringVarP(&flagStyle, "style", "s", "FRIENDLY", "Conversational style preset: "+strings.Join(script.StylePresetNames(), ", "))
	generateCmd.Flags().IntVarP(&flagBanterLevel, "banter", "b", 2, "Banter intensity, 1 (reserved) to 3 (lively)")
	generateCmd.Flags().IntVarP(&flagDurationSec, "duration", "d", 600, "Target episode duration in seconds")
	generateCmd.Flags().StringVarP(&flagVoice1, "voice1", "1", "", "Voice for host A (provider:voiceID or plain voiceID)")
	generateCmd.Flags().StringVarP(&flagVoice2, "voice2", "2", "", "Voice for host B (provider:voiceID or plain voiceID)")
	generateCmd.Flags().BoolVarP(&flagScriptOnly, "script-only", "S", false, "Output script JSON only, skip TTS and assembly")
	generateCmd.Flags().StringVarP(&flagFromScript, "from-script", "f", "", "Generate audio from an existing script JSON file")
	generateCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable detailed logging")
	generateCmd.Flags().BoolVarP(&flagTUI, "tui", "t", false, "Interactive setup wizard for generation options")
	generateCmd.Flags().StringVarP(&flagMode, "mode", "M", "template", "Scriptwriter mode: template or llm")
	generateCmd.Flags().StringVarP(&flagModel, "model", "m", "", "LLM model id, only consulted when --mode=llm")
	generateCmd.Flags().IntVar(&flagMaxRegenAttempts, "max-regen-attempts", 3, "Maximum regeneration attempts before giving up")
	generateCmd.Flags().Float64Var(&flagPassThreshold, "pass-threshold", 78, "Minimum overall QA score to accept the episode")
	generateCmd.Flags().StringVar(&flagAnthropicAPIKey, "anthropic-api-key", "", "Anthropic API key (overrides ANTHROPIC_API_KEY env var), used by --mode=llm")
	generateCmd.Flags().StringVar(&flagGoogleAPIKey, "google-api-key", "", "Google Cloud TTS credentials path override")
	generateCmd.Flags().StringVar(&flagElevenLabsAPIKey, "elevenlabs-api-key", "", "ElevenLabs API key (overrides ELEVENLABS_API_KEY env var)")
	generateCmd.Flags().StringVar(&flagOpenAIAPIKey, "openai-api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	generateCmd.Flags().StringVar(&flagAzureAPIKey, "azure-api-key", "", "Azure Speech subscription key (overrides AZURE_SPEECH_KEY env var)")
	generateCmd.Flags().StringVar(&flagAzureRegion, "azure-region", "", "Azure Speech region (overrides AZURE_SPEECH_REGION env var)")
}

func Execute() error {
	return rootCmd.Execute()
}

// parseVoiceSpec splits a "provider:voiceID" flag value. A bare voiceID
// (no colon) leaves provider empty so the caller can apply a default.
func parseVoiceSpec(spec string) (provider, voiceID string) {
	if spec == "" {
		return "", ""
	}
	if idx := strings.Index(spec, ":"); idx >= 0 {
		return spec[:idx], spec[idx+1:]
	}
	return "", spec
}

func envOrFlag(envVar, flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	return os.Getenv(envVar)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if flagTUI {
		if err := runInteractiveSetup(); err != nil {
			return err
		}
	}

	if flagFromScript == "" && flagInput == "" {
		return fmt.Errorf("either --input (-i) or --from-script (-f) is required")
	}
	if flagFromScript != "" && flagInput != "" {
		return fmt.Errorf("--input and --from-script are mutually exclusive")
	}
	if !script.IsValidStylePreset(flagStyle) {
		return fmt.Errorf("invalid style %q: must be one of %s", flagStyle, strings.Join(script.StylePresetNames(), ", "))
	}
	if flagBanterLevel < 1 || flagBanterLevel > 3 {
		return fmt.Errorf("invalid banter level %d: must be 1, 2, or 3", flagBanterLevel)
	}
	mode := script.Mode(flagMode)
	if mode != script.ModeTemplate && mode != script.ModeLLM {
		return fmt.Errorf("invalid mode %q: must be template or llm", flagMode)
	}
	if mode == script.ModeLLM && envOrFlag("ANTHROPIC_API_KEY", flagAnthropicAPIKey) == "" {
		return fmt.Errorf("--mode=llm requires ANTHROPIC_API_KEY (or --anthropic-api-key)")
	}

	v1Provider, v1ID := parseVoiceSpec(flagVoice1)
	v2Provider, v2ID := parseVoiceSpec(flagVoice2)
	if v1Provider == "" {
		v1Provider = "google"
	}
	if v2Provider == "" {
		v2Provider = "google"
	}

	if !flagScriptOnly {
		if err := checkFFmpeg(); err != nil {
			return err
		}
	}

	var outputPath, logFile string
	if flagOutput != "" {
		outputPath = filepath.Join(pipeline.OutputBaseDir, "episodes", filepath.Base(flagOutput))
		logFile = pipeline.LogFilePath(flagOutput)
	}

	providerConfigs := map[string]tts.ProviderConfig{
		"google":      {APIKey: envOrFlag("GOOGLE_APPLICATION_CREDENTIALS", flagGoogleAPIKey)},
		"elevenlabs":  {APIKey: envOrFlag("ELEVENLABS_API_KEY", flagElevenLabsAPIKey)},
		"openai":      {APIKey: envOrFlag("OPENAI_API_KEY", flagOpenAIAPIKey)},
		"azure":       {APIKey: envOrFlag("AZURE_SPEECH_KEY", flagAzureAPIKey), Region: envOrFlag("AZURE_SPEECH_REGION", flagAzureRegion)},
	}

	opts := pipeline.Options{
		Input:              flagInput,
		Output:             outputPath,
		Topic:              flagTopic,
		StylePreset:        interjection.StylePreset(flagStyle),
		BanterLevel:        flagBanterLevel,
		TargetDurationSec:  flagDurationSec,
		Mode:               mode,
		Model:              flagModel,
		APIKey:             flagAnthropicAPIKey,
		FromScript:         flagFromScript,
		ScriptOnly:         flagScriptOnly,
		Verbose:            flagVerbose,
		LogFile:            logFile,
		Voice1Provider:     v1Provider,
		Voice1ID:           v1ID,
		Voice2Provider:     v2Provider,
		Voice2ID:           v2ID,
		TTSProviderConfigs: providerConfigs,
		PassThreshold:      flagPassThreshold,
		MaxRegenAttempts:   flagMaxRegenAttempts,
	}

	if !flagVerbose {
		r := progress.NewBarRenderer(os.Stdout)
		defer r.Finish()
		opts.OnProgress = r.Handle
	}

	return pipeline.Run(cmd.Context(), opts)
}

func checkFFmpeg() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH — install it before generating audio")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return fmt.Errorf("ffprobe not found in PATH — install it before generating audio")
	}
	return nil
}
