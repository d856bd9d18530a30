// Package pipeline orchestrates the full run: ingest, outline, script
// generation, chemistry enrichment, per-turn normalization, SSML
// compilation, multi-provider TTS synthesis, audio post-production, QA
// scoring, and the bounded regeneration loop.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/apresai/koreanpodcast/internal/audio"
	"github.com/apresai/koreanpodcast/internal/ingest"
	"github.com/apresai/koreanpodcast/internal/interjection"
	"github.com/apresai/koreanpodcast/internal/normalizer"
	"github.com/apresai/koreanpodcast/internal/observability"
	"github.com/apresai/koreanpodcast/internal/outline"
	"github.com/apresai/koreanpodcast/internal/progress"
	"github.com/apresai/koreanpodcast/internal/qa"
	"github.com/apresai/koreanpodcast/internal/regen"
	"github.com/apresai/koreanpodcast/internal/script"
	"github.com/apresai/koreanpodcast/internal/ssml"
	"github.com/apresai/koreanpodcast/internal/tts"
)

// OutputBaseDir is the root directory for all generated output.
const OutputBaseDir = "podcaster-output"

// tracerServiceVersion is reported to the OTEL resource when tracing is enabled.
const tracerServiceVersion = "dev"

// Options configures a single episode run.
type Options struct {
	Input             string
	Output            string
	Topic             string
	StylePreset       interjection.StylePreset
	BanterLevel       int
	TargetDurationSec int
	Mode              script.Mode
	Model             string
	APIKey            string
	FromScript        string
	ScriptOnly        bool
	Verbose           bool
	LogFile           string

	Voice1Provider string
	Voice1ID       string
	Voice2Provider string
	Voice2ID       string

	TTSProviderConfigs map[string]tts.ProviderConfig
	AudioOptions       audio.ProcessingOptions
	PassThreshold      float64
	MaxRegenAttempts   int

	OnProgress progress.Callback
}

// CLICommand returns a reproducible command line for the current options.
func (o Options) CLICommand() string {
	var parts []string
	parts = append(parts, "podcaster generate")
	if o.Input != "" {
		parts = append(parts, fmt.Sprintf("-i %q", o.Input))
	}
	if o.FromScript != "" {
		parts = append(parts, fmt.Sprintf("--from-script %q", o.FromScript))
	}
	if o.Output != "" {
		parts = append(parts, fmt.Sprintf("-o %q", o.Output))
	}
	if o.StylePreset != "" {
		parts = append(parts, "--style", string(o.StylePreset))
	}
	if o.BanterLevel != 0 {
		parts = append(parts, fmt.Sprintf("--banter %d", o.BanterLevel))
	}
	if o.Mode != "" && o.Mode != script.ModeTemplate {
		parts = append(parts, "--mode", string(o.Mode))
	}
	if o.Topic != "" {
		parts = append(parts, fmt.Sprintf("--topic %q", o.Topic))
	}
	if o.ScriptOnly {
		parts = append(parts, "--script-only")
	}
	return strings.Join(parts, " ")
}

// StageError reports which stage of the run failed and why.
type StageError struct {
	Stage   string
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error { return e.Err }

// EnsureOutputDirs creates the output directory tree.
func EnsureOutputDirs() error {
	dirs := []string{
		filepath.Join(OutputBaseDir, "episodes"),
		filepath.Join(OutputBaseDir, "scripts"),
		filepath.Join(OutputBaseDir, "logs"),
		filepath.Join(OutputBaseDir, "tempfiles"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("create output directory %s: %w", d, err)
		}
	}
	return nil
}

// ScriptPath returns the script JSON path for a given output filename.
func ScriptPath(output string) string {
	base := filepath.Base(output)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(OutputBaseDir, "scripts", name+".json")
}

// LogFilePath returns the log file path for a given output filename.
func LogFilePath(output string) string {
	base := filepath.Base(output)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(OutputBaseDir, "logs", name+".log")
}

var slugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	s := strings.ToLower(title)
	s = slugNonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = s[:50]
		s = strings.TrimRight(s, "-")
	}
	return s
}

// AutoOutputName derives a filename from the episode title and a timestamp.
func AutoOutputName(title string) string {
	slug := slugify(title)
	if slug == "" {
		slug = "podcast"
	}
	return slug + "-" + time.Now().Format("20060102-1504") + ".mp3"
}

func voiceProfileFor(speaker script.Speaker, opts Options) tts.VoiceProfile {
	switch speaker {
	case script.HostA:
		return tts.VoiceProfile{Provider: opts.Voice1Provider, VoiceID: opts.Voice1ID, Role: tts.RoleStableExplainer, Language: "ko-KR"}
	case script.HostB:
		return tts.VoiceProfile{Provider: opts.Voice2Provider, VoiceID: opts.Voice2ID, Role: tts.RoleReactiveCurious, Language: "ko-KR"}
	default:
		return tts.VoiceProfile{Provider: opts.Voice1Provider, VoiceID: opts.Voice1ID, Role: tts.RoleExpertGuest, Language: "ko-KR"}
	}
}

// run carries the state threaded through every stage of one episode.
type run struct {
	ctx     context.Context
	opts    Options
	logf    func(string, ...interface{})
	emit    func(progress.Stage, string, float64)
	start   time.Time
	lexicon *normalizer.Lexicon
	norm    *normalizer.Normalizer
	lib     *interjection.Library
	rng     *rand.Rand
	tmpDir  string
}

// Run executes the full pipeline for a single episode.
func Run(ctx context.Context, opts Options) error {
	start := time.Now()

	if err := EnsureOutputDirs(); err != nil {
		return fmt.Errorf("setup output directories: %w", err)
	}
	if opts.TargetDurationSec == 0 {
		opts.TargetDurationSec = 600
	}
	if opts.StylePreset == "" {
		opts.StylePreset = interjection.PresetFriendly
	}
	if opts.PassThreshold == 0 {
		opts.PassThreshold = 78
	}
	if opts.MaxRegenAttempts == 0 {
		opts.MaxRegenAttempts = regen.DefaultMaxAttempts
	}

	var logWriter io.Writer = os.Stdout
	if opts.LogFile != "" {
		lf, err := os.Create(opts.LogFile)
		if err != nil {
			return fmt.Errorf("create log file: %w", err)
		}
		defer lf.Close()
		if opts.Verbose {
			logWriter = io.MultiWriter(os.Stdout, lf)
		} else {
			logWriter = lf
		}
	}
	logger := observability.InitLogger(logWriter)
	logf := func(format string, args ...interface{}) { logger.Info(fmt.Sprintf(format, args...)) }

	emit := func(stage progress.Stage, msg string, pct float64) {
		if opts.OnProgress != nil {
			opts.OnProgress(progress.NewEvent(stage, msg, pct, start))
		}
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var tracerProvider *sdktrace.TracerProvider
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		tp, err := observability.InitTracer(ctx, "koreanpodcast", tracerServiceVersion)
		if err != nil {
			logf("WARNING: tracing disabled: %v", err)
		} else {
			tracerProvider = tp
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
					logf("WARNING: tracer shutdown: %v", err)
				}
			}()
		}
	}

	logf("Pipeline started — style=%s banter=%d mode=%s", opts.StylePreset, opts.BanterLevel, opts.Mode)
	logf("Equivalent CLI: %s", opts.CLICommand())

	lexicon := normalizer.NewLexicon(normalizer.GlobalLexiconEntries)
	r := &run{
		ctx: ctx, opts: opts, logf: logf, emit: emit, start: start,
		lexicon: lexicon,
		norm:    normalizer.New(lexicon),
		lib:     interjection.NewDefaultLibrary(),
		rng:     rand.New(rand.NewSource(1)),
	}

	var enriched *script.EnrichedScript
	var err error

	if opts.FromScript != "" {
		logf("Loading script from %s...", opts.FromScript)
		enriched, err = script.LoadScript(opts.FromScript)
		if err != nil {
			return &StageError{Stage: "script", Message: "failed to load script", Err: err}
		}
	} else {
		enriched, err = r.generate()
		if err != nil {
			return err
		}
	}

	if opts.Output == "" {
		autoName := AutoOutputName(enriched.EpisodeTitle)
		opts.Output = filepath.Join(OutputBaseDir, "episodes", autoName)
		opts.LogFile = LogFilePath(autoName)
		r.opts = opts
	}

	scriptPath := ScriptPath(opts.Output)
	if err := script.SaveScript(enriched, scriptPath); err != nil {
		logf("WARNING: failed to save script: %v", err)
	} else {
		logf("Script saved to %s (use --from-script to resume)", scriptPath)
	}

	if opts.ScriptOnly {
		emit(progress.StageComplete, fmt.Sprintf("Script saved to %s", scriptPath), 1.0)
		return nil
	}

	tmpDir, err := os.MkdirTemp(filepath.Join(OutputBaseDir, "tempfiles"), "run-*")
	if err != nil {
		return &StageError{Stage: "tts", Message: "failed to create temp directory", Err: err}
	}
	r.tmpDir = tmpDir
	defer os.RemoveAll(tmpDir)

	final, synthResults, err := r.synthesizeAndAssemble(enriched)
	if err != nil {
		return err
	}

	report := qa.Analyze(enriched, final, synthResults, r.lib, opts.PassThreshold)
	logf("QA: overall=%.0f pass=%v", report.OverallScore, report.Pass)
	emit(progress.StageQA, fmt.Sprintf("QA score: %.0f", report.OverallScore), 0.95)

	if !report.Pass {
		emit(progress.StageRegen, "Regenerating to address QA findings...", 0.95)
		regenResult, rerr := regen.Run(ctx, report, r.regenActions(&enriched, &final, &synthResults), opts.MaxRegenAttempts)
		if rerr != nil {
			return &StageError{Stage: "regen", Message: "regeneration loop failed", Err: rerr}
		}
		logf("Regeneration: attempts=%d success=%v strategies=%v", regenResult.Attempts, regenResult.Success, regenResult.Strategies)
		report = regenResult.FinalReport
	}

	if err := os.WriteFile(opts.Output, final.AudioData, 0644); err != nil {
		return &StageError{Stage: "export", Message: "failed to write output", Err: err}
	}

	completion := progress.Event{Stage: progress.StageComplete, LogFile: opts.LogFile, Elapsed: time.Since(start)}
	if info, statErr := os.Stat(opts.Output); statErr == nil {
		sizeMB := float64(info.Size()) / (1024 * 1024)
		mins := final.DurationMs / 60000
		secs := (final.DurationMs / 1000) % 60
		duration := fmt.Sprintf("%d:%02d", mins, secs)
		completion.OutputFile = opts.Output
		completion.SizeMB = sizeMB
		completion.Duration = duration
		completion.Percent = 1.0
		completion.Message = fmt.Sprintf("Episode saved to %s (%s, %.1f MB, QA %.0f)", opts.Output, duration, sizeMB, report.OverallScore)
		logf(completion.Message)
	}
	logf("Total pipeline time: %s", time.Since(start).Round(time.Millisecond))
	if opts.OnProgress != nil {
		opts.OnProgress(completion)
	}
	return nil
}

// generate runs ingest → outline → scriptwriter → chemistry enrichment →
// per-turn normalization → SSML compilation.
func (r *run) generate() (*script.EnrichedScript, error) {
	opts := r.opts
	r.emit(progress.StageIngest, "Ingesting content...", 0.0)
	r.logf("Stage 1: Ingesting content from %s", opts.Input)
	ingester := ingest.NewIngester(opts.Input)
	content, err := ingester.Ingest(r.ctx, opts.Input)
	if err != nil {
		return nil, &StageError{Stage: "ingest", Message: "failed to extract content", Err: err}
	}
	r.logf("Ingest complete: %d words from %s", content.WordCount, content.Source)
	r.emit(progress.StageIngest, "Ingest complete", 0.05)

	if content.WordCount < 100 {
		return nil, &StageError{Stage: "ingest", Message: fmt.Sprintf("input too short (%d words) — need at least 100 words", content.WordCount)}
	}

	r.emit(progress.StageOutline, "Building outline...", 0.08)
	r.logf("Stage 2: Building content outline")
	co, err := outline.BuildOutline([]outline.SourceDocument{{ID: content.Source, Content: content.Text, Title: content.Title}}, opts.TargetDurationSec)
	if err != nil {
		return nil, &StageError{Stage: "outline", Message: "failed to build outline", Err: err}
	}
	r.emit(progress.StageOutline, "Outline complete", 0.12)

	genOpts := script.GenerateOptions{
		Preset:      opts.StylePreset,
		BanterLevel: opts.BanterLevel,
		Mode:        opts.Mode,
		Model:       opts.Model,
		APIKey:      opts.APIKey,
	}
	gen, err := script.NewGenerator(genOpts)
	if err != nil {
		return nil, &StageError{Stage: "script", Message: "failed to create scriptwriter", Err: err}
	}

	r.emit(progress.StageScript, "Generating script...", 0.15)
	r.logf("Stage 3: Generating script (mode=%s)", opts.Mode)
	draft, err := gen.Generate(r.ctx, co, genOpts)
	if err != nil {
		return nil, &StageError{Stage: "script", Message: "failed to generate script", Err: err}
	}
	if issues := script.SafetyCheck(draft); len(issues) > 0 {
		r.logf("Safety check flagged: %v", issues)
	}
	r.emit(progress.StageScript, "Script complete", 0.20)

	r.emit(progress.StageEnrich, "Enriching with chemistry engine...", 0.22)
	r.logf("Stage 4: Running chemistry engine")
	engine := interjection.NewEngine(r.lib, opts.StylePreset, opts.BanterLevel, r.rng)
	enriched, humorQA := engine.Enrich(draft)
	if len(humorQA.DetectedSlang) > 0 || len(humorQA.RepeatedInterjections) > 0 {
		r.logf("Chemistry QA: slang=%v repeatedInterjections=%v", humorQA.DetectedSlang, humorQA.RepeatedInterjections)
	}
	r.emit(progress.StageEnrich, "Enrichment complete", 0.25)

	r.emit(progress.StageNormalize, "Normalizing turns...", 0.27)
	r.logf("Stage 5: Normalizing %d turns", len(enriched.Turns))
	for i := range enriched.Turns {
		t := &enriched.Turns[i]
		normalized, tokenMap, warnings := r.norm.Normalize(t.RawText)
		t.NormalizedText = normalized
		for _, tm := range tokenMap {
			t.NormalizationLog = append(t.NormalizationLog, script.NormalizationLogEntry{Original: tm.Original, Normalized: tm.Normalized, Rule: tm.Rule})
		}
		for _, w := range warnings {
			r.logf("  normalization warning: %s %q", w.Kind, w.Text)
		}
	}
	r.emit(progress.StageNormalize, "Normalization complete", 0.30)

	for i := range enriched.Turns {
		t := &enriched.Turns[i]
		t.SSML = ssml.Compile(*t, voiceProfileFor(t.Speaker, opts).Provider)
	}

	return enriched, nil
}

// synthesizeAndAssemble batch-synthesizes every turn and runs the audio
// post-production chain.
func (r *run) synthesizeAndAssemble(enriched *script.EnrichedScript) (*audio.FinalAudioResult, []tts.TTSSynthesisResult, error) {
	opts := r.opts
	r.emit(progress.StageTTS, fmt.Sprintf("Synthesizing %d turns...", len(enriched.Turns)), 0.32)
	r.logf("Stage 6: Synthesizing audio")

	providerCache := map[string]tts.TTSAdapter{}
	getAdapter := func(provider string) (tts.TTSAdapter, error) {
		if a, ok := providerCache[provider]; ok {
			return a, nil
		}
		cfg := opts.TTSProviderConfigs[provider]
		a, err := tts.NewAdapter(provider, cfg)
		if err != nil {
			return nil, err
		}
		providerCache[provider] = a
		return a, nil
	}

	voiceFor := func(speaker script.Speaker) tts.VoiceProfile { return voiceProfileFor(speaker, opts) }

	// group turns by provider so each provider's adapter runs its own batch.
	byProvider := map[string][]script.ScriptTurn{}
	order := []string{}
	for _, t := range enriched.Turns {
		p := voiceFor(t.Speaker).Provider
		if _, seen := byProvider[p]; !seen {
			order = append(order, p)
		}
		byProvider[p] = append(byProvider[p], t)
	}

	resultByTurn := map[string]tts.TTSSynthesisResult{}
	var allResults []tts.TTSSynthesisResult
	for _, provider := range order {
		adapter, err := getAdapter(provider)
		if err != nil {
			return nil, nil, &StageError{Stage: "tts", Message: "failed to create TTS provider " + provider, Err: err}
		}
		batch, err := tts.SynthesizeBatch(r.ctx, adapter, byProvider[provider], voiceFor, 3)
		if err != nil {
			return nil, nil, &StageError{Stage: "tts", Message: "batch synthesis failed", Err: err}
		}
		for _, res := range batch {
			if res.Err != nil {
				return nil, nil, &StageError{Stage: "tts", Message: "turn synthesis failed: " + res.TurnID, Err: res.Err}
			}
			resultByTurn[res.TurnID] = res.Result
			allResults = append(allResults, res.Result)
		}
	}
	r.emit(progress.StageTTS, "TTS complete", 0.75)

	turnAudio := make([][]byte, len(enriched.Turns))
	turnDurations := make([]int, len(enriched.Turns))
	for i, t := range enriched.Turns {
		res := resultByTurn[t.ID]
		turnAudio[i] = res.AudioData
		turnDurations[i] = res.DurationMs
	}

	r.emit(progress.StageAssembly, "Assembling episode...", 0.78)
	r.logf("Stage 7: Post-production")
	audioOpts := opts.AudioOptions
	if audioOpts.OutputFormat == "" {
		audioOpts = audio.DefaultOptions()
	}
	laughClipPath := func(t script.LaughCueType) string { return "" }
	final, err := audio.Process(r.ctx, turnAudio, enriched.Segments, turnDurations, enriched.LaughCues, laughClipPath, r.tmpDir, audioOpts)
	if err != nil {
		return nil, nil, &StageError{Stage: "assembly", Message: "failed to assemble episode", Err: err}
	}
	r.emit(progress.StageAssembly, "Assembly complete", 0.90)

	return final, allResults, nil
}

// regenActions wires the five regeneration strategies back into this run's
// stages, rebinding the enriched script / final audio / synth results the
// caller holds so later loop iterations see each repair's output.
func (r *run) regenActions(enriched **script.EnrichedScript, final **audio.FinalAudioResult, synthResults *[]tts.TTSSynthesisResult) regen.Actions {
	rescore := func() *qa.QAReport {
		return qa.Analyze(*enriched, *final, *synthResults, r.lib, r.opts.PassThreshold)
	}

	return regen.Actions{
		ReSynthesize: func(ctx context.Context, report *qa.QAReport) (*qa.QAReport, error) {
			r.logf("Regen: re-synthesizing audio")
			f, sr, err := r.synthesizeAndAssemble(*enriched)
			if err != nil {
				return nil, err
			}
			*final, *synthResults = f, sr
			return rescore(), nil
		},
		AdjustScript: func(ctx context.Context, report *qa.QAReport) (*qa.QAReport, error) {
			r.logf("Regen: adjusting script in place")
			adjustInPlace(*enriched, r.lib)
			f, sr, err := r.synthesizeAndAssemble(*enriched)
			if err != nil {
				return nil, err
			}
			*final, *synthResults = f, sr
			return rescore(), nil
		},
		ReNormalize: func(ctx context.Context, report *qa.QAReport) (*qa.QAReport, error) {
			r.logf("Regen: re-normalizing turns")
			for i := range (*enriched).Turns {
				t := &(*enriched).Turns[i]
				normalized, tokenMap, _ := r.norm.Normalize(t.RawText)
				t.NormalizedText = normalized
				t.NormalizationLog = nil
				for _, tm := range tokenMap {
					t.NormalizationLog = append(t.NormalizationLog, script.NormalizationLogEntry{Original: tm.Original, Normalized: tm.Normalized, Rule: tm.Rule})
				}
				t.SSML = ssml.Compile(*t, voiceProfileFor(t.Speaker, r.opts).Provider)
			}
			f, sr, err := r.synthesizeAndAssemble(*enriched)
			if err != nil {
				return nil, err
			}
			*final, *synthResults = f, sr
			return rescore(), nil
		},
		RegenerateScript: func(ctx context.Context, report *qa.QAReport) (*qa.QAReport, error) {
			r.logf("Regen: regenerating script with prior complaints")
			complaints := complaintsFrom(report)
			genOpts := script.GenerateOptions{
				Preset: r.opts.StylePreset, BanterLevel: r.opts.BanterLevel,
				Mode: r.opts.Mode, Model: r.opts.Model, APIKey: r.opts.APIKey,
				PriorComplaints: complaints,
			}
			co, err := outline.BuildOutline([]outline.SourceDocument{{ID: "regen", Content: (*enriched).EpisodeTitle}}, r.opts.TargetDurationSec)
			if err != nil {
				return nil, err
			}
			gen, err := script.NewGenerator(genOpts)
			if err != nil {
				return nil, err
			}
			draft, err := gen.Generate(ctx, co, genOpts)
			if err != nil {
				return nil, err
			}
			engine := interjection.NewEngine(r.lib, r.opts.StylePreset, r.opts.BanterLevel, r.rng)
			next, _ := engine.Enrich(draft)
			*enriched = next
			f, sr, err := r.synthesizeAndAssemble(*enriched)
			if err != nil {
				return nil, err
			}
			*final, *synthResults = f, sr
			return rescore(), nil
		},
		FullRegeneration: func(ctx context.Context, report *qa.QAReport) (*qa.QAReport, error) {
			r.logf("Regen: full regeneration from source")
			next, err := r.generate()
			if err != nil {
				return nil, err
			}
			*enriched = next
			f, sr, err := r.synthesizeAndAssemble(*enriched)
			if err != nil {
				return nil, err
			}
			*final, *synthResults = f, sr
			return rescore(), nil
		},
	}
}

// adjustInPlace strips forbidden slang and prunes the most-overused
// interjection without touching anything else in the script.
func adjustInPlace(enriched *script.EnrichedScript, lib *interjection.Library) {
	for i := range enriched.Turns {
		t := &enriched.Turns[i]
		for _, slang := range lib.ForbiddenSlang {
			t.RawText = strings.ReplaceAll(t.RawText, slang, "")
		}
	}
	var worstText string
	worstCount := 0
	for text, count := range enriched.InterjectionUsage {
		if count > worstCount {
			worstText, worstCount = text, count
		}
	}
	if worstText == "" {
		return
	}
	pruned := false
	for i := range enriched.Turns {
		t := &enriched.Turns[i]
		if !pruned && t.Interjection != nil && t.Interjection.Text == worstText {
			t.RawText = strings.Replace(t.RawText, worstText, "", 1)
			t.Interjection = nil
			pruned = true
			enriched.InterjectionUsage[worstText]--
		}
	}
}

func complaintsFrom(report *qa.QAReport) []string {
	var complaints []string
	for _, m := range []qa.MetricScore{report.Rhythm, report.Repetition, report.Humor} {
		for _, iss := range m.Issues {
			complaints = append(complaints, iss.Message)
		}
	}
	return complaints
}
