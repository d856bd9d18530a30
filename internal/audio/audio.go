// Package audio shells out to ffmpeg/ffprobe to turn per-turn MP3 buffers
// into a finished episode: crossfaded concatenation, laugh-clip mixing,
// loudness normalization, optional compression/de-essing/room tone,
// chapter computation, and WAV/MP3 export.
package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/apresai/koreanpodcast/internal/script"
)

const (
	AudioBitrate    = "192k"
	AudioSampleRate = "24000"
	AudioChannels   = "2"
	AudioCodec      = "libmp3lame"
	AudioQuality    = "0"
)

// StageError names the processing stage a tool failure occurred in, so
// callers can surface which part of the chain broke without parsing the
// underlying exec.ExitError.
type StageError struct {
	Stage   string
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[audio:%s] %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[audio:%s] %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error { return e.Err }

// ProcessingOptions controls the optional stages of the post-production
// chain. Concatenation, loudness normalization, and export always run.
type ProcessingOptions struct {
	CrossfadeMs         int
	TargetLoudnessLUFS  float64
	CompressionEnabled  bool
	CompressionThreshDb float64
	CompressionRatio    float64
	DeEsserEnabled      bool
	DeEsserFrequencyHz  float64
	RoomToneEnabled     bool
	RoomToneLevelDb     float64
	OutputFormat        string // "mp3" | "wav"
}

// DefaultOptions returns the spec's default tuning for every optional
// knob, with compression/de-essing/room-tone left off.
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		CrossfadeMs:         40,
		TargetLoudnessLUFS:  -16,
		CompressionThreshDb: -20,
		CompressionRatio:    3.0,
		DeEsserFrequencyHz:  6000,
		RoomToneLevelDb:     -45,
		OutputFormat:        "mp3",
	}
}

// LoudnessReport is the subset of ffmpeg's loudnorm JSON report we record.
type LoudnessReport struct {
	InputI       string `json:"input_i"`
	InputTP      string `json:"input_tp"`
	InputLRA     string `json:"input_lra"`
	InputThresh  string `json:"input_thresh"`
	OutputI      string `json:"output_i"`
	OutputTP     string `json:"output_tp"`
	OutputLRA    string `json:"output_lra"`
	OutputThresh string `json:"output_thresh"`
	TargetOffset string `json:"target_offset"`
}

// Chapter is a named time range in the final audio, one per ScriptSegment.
type Chapter struct {
	Title    string `json:"title"`
	StartMs  int    `json:"startMs"`
	EndMs    int    `json:"endMs"`
}

// FinalAudioResult is the post-production chain's output: the encoded
// bytes plus everything the QA analyzer and manifest writer need.
type FinalAudioResult struct {
	AudioData       []byte
	Format          string
	DurationMs      int
	MeasuredLoudness LoudnessReport
	Chapters        []Chapter
}

func runTool(ctx context.Context, stage, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &StageError{Stage: stage, Message: fmt.Sprintf("%s failed", name), Err: fmt.Errorf("%w: %s", err, stderr.String())}
	}
	return nil
}

func runToolCapture(ctx context.Context, stage, name string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &StageError{Stage: stage, Message: fmt.Sprintf("%s failed", name), Err: fmt.Errorf("%w: %s", err, stderr.String())}
	}
	return stdout.String(), nil
}

// writeTurnFiles writes each turn's audio bytes to tmpDir as
// turn_NNN.mp3 and returns the ordered file paths.
func writeTurnFiles(tmpDir string, buffers [][]byte) ([]string, error) {
	files := make([]string, 0, len(buffers))
	for i, buf := range buffers {
		path := filepath.Join(tmpDir, fmt.Sprintf("turn_%04d.mp3", i))
		if err := os.WriteFile(path, buf, 0644); err != nil {
			return nil, &StageError{Stage: "concat", Message: fmt.Sprintf("write turn %d", i), Err: err}
		}
		files = append(files, path)
	}
	return files, nil
}

// Concatenate crossfades adjacent turn buffers with an equal-power
// crossfade of crossfadeMs between every pair, left-folding the chain
// for N buffers. A single buffer is passed through unchanged.
func Concatenate(ctx context.Context, turnAudio [][]byte, tmpDir string, crossfadeMs int) (string, error) {
	if len(turnAudio) == 0 {
		return "", &StageError{Stage: "concat", Message: "no audio buffers to concatenate"}
	}

	files, err := writeTurnFiles(tmpDir, turnAudio)
	if err != nil {
		return "", err
	}
	if len(files) == 1 {
		return files[0], nil
	}

	crossfadeSec := float64(crossfadeMs) / 1000.0
	current := files[0]
	for i := 1; i < len(files); i++ {
		out := filepath.Join(tmpDir, fmt.Sprintf("concat_%04d.mp3", i))
		filter := fmt.Sprintf("acrossfade=d=%.3f:c1=tri:c2=tri", crossfadeSec)
		args := []string{
			"-i", current, "-i", files[i],
			"-filter_complex", filter,
			"-c:a", AudioCodec, "-b:a", AudioBitrate, "-q:a", AudioQuality,
			"-ar", AudioSampleRate, "-ac", AudioChannels,
			"-y", out,
		}
		if err := runTool(ctx, "concat", "ffmpeg", args); err != nil {
			return "", err
		}
		current = out
	}
	return current, nil
}

// probeDurationMs runs ffprobe to get a media file's duration in
// milliseconds.
func probeDurationMs(ctx context.Context, path string) (int, error) {
	out, err := runToolCapture(ctx, "probe", "ffprobe", []string{
		"-v", "quiet", "-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path,
	})
	if err != nil {
		return 0, err
	}
	var seconds float64
	if _, scanErr := fmt.Sscanf(strings.TrimSpace(out), "%f", &seconds); scanErr != nil {
		return 0, &StageError{Stage: "probe", Message: "parse ffprobe duration", Err: scanErr}
	}
	return int(seconds * 1000), nil
}

// InsertLaughs mixes laugh clips into the track at the cumulative-duration
// offset of each cue's insertAfterTurnIndex, skipping any cue whose clip
// path is empty. Each laugh is mixed at its full cue duration; it is not
// trimmed against the next turn's speech.
func InsertLaughs(ctx context.Context, trackPath string, cues []script.LaughCue, laughClipPath func(script.LaughCueType) string, turnDurationsMs []int, tmpDir string) (string, error) {
	if len(cues) == 0 {
		return trackPath, nil
	}

	cumulative := make([]int, len(turnDurationsMs)+1)
	for i, d := range turnDurationsMs {
		cumulative[i+1] = cumulative[i] + d
	}

	current := trackPath
	for i, cue := range cues {
		if cue.InsertAfterTurnIndex+1 >= len(cumulative) {
			continue
		}
		offsetMs := cumulative[cue.InsertAfterTurnIndex+1]

		// laughDurationMs always comes out equal to cue.DurationMs, so the
		// atrim below keeps the whole cue duration.
		maxOverlap := cue.DurationMs - 100
		if maxOverlap < 0 {
			maxOverlap = 0
		}
		laughDurationMs := cue.DurationMs
		if laughDurationMs > maxOverlap+100 {
			laughDurationMs = maxOverlap + 100
		}

		clipPath := laughClipPath(cue.Type)
		if clipPath == "" {
			continue
		}
		out := filepath.Join(tmpDir, fmt.Sprintf("laugh_mix_%04d.mp3", i))
		filter := fmt.Sprintf(
			"[1:a]volume=%fdB,atrim=0:%f,adelay=%d|%d[laugh];[0:a][laugh]amix=inputs=2:duration=first:dropout_transition=0[out]",
			cue.VolumeOffsetDb, float64(laughDurationMs)/1000.0, offsetMs, offsetMs,
		)
		args := []string{
			"-i", current, "-i", clipPath,
			"-filter_complex", filter, "-map", "[out]",
			"-c:a", AudioCodec, "-b:a", AudioBitrate, "-q:a", AudioQuality,
			"-ar", AudioSampleRate, "-ac", AudioChannels,
			"-y", out,
		}
		if err := runTool(ctx, "laughs", "ffmpeg", args); err != nil {
			return "", err
		}
		current = out
	}
	return current, nil
}

// Normalize runs a single-pass loudnorm targeting the given integrated
// loudness, a true-peak ceiling of -1.5 dBTP, and a loudness range of 11,
// parsing the tool's JSON report for the measured output loudness.
func Normalize(ctx context.Context, inputPath, outputPath string, targetLUFS float64) (LoudnessReport, error) {
	filter := fmt.Sprintf("loudnorm=I=%.1f:TP=-1.5:LRA=11:print_format=json", targetLUFS)
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", inputPath, "-af", filter,
		"-c:a", AudioCodec, "-b:a", AudioBitrate, "-q:a", AudioQuality,
		"-ar", AudioSampleRate, "-ac", AudioChannels,
		"-y", outputPath,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return LoudnessReport{}, &StageError{Stage: "normalize", Message: "loudnorm failed", Err: fmt.Errorf("%w: %s", err, stderr.String())}
	}

	report, err := parseLoudnormReport(stderr.String())
	if err != nil {
		return LoudnessReport{}, &StageError{Stage: "normalize", Message: "parse loudnorm report", Err: err}
	}
	return report, nil
}

// parseLoudnormReport extracts the trailing JSON object ffmpeg writes to
// stderr when loudnorm's print_format=json is set.
func parseLoudnormReport(stderrOutput string) (LoudnessReport, error) {
	start := strings.LastIndex(stderrOutput, "{")
	end := strings.LastIndex(stderrOutput, "}")
	if start == -1 || end == -1 || end < start {
		return LoudnessReport{}, fmt.Errorf("no loudnorm JSON report found in ffmpeg output")
	}
	var report LoudnessReport
	if err := json.Unmarshal([]byte(stderrOutput[start:end+1]), &report); err != nil {
		return LoudnessReport{}, fmt.Errorf("unmarshal loudnorm report: %w", err)
	}
	return report, nil
}

// Compress applies an optional acompressor pass. Attack and release are
// fixed at 5ms/50ms per the post-production tuning; only threshold and
// ratio are caller-configurable.
func Compress(ctx context.Context, inputPath, outputPath string, thresholdDb, ratio float64) error {
	filter := fmt.Sprintf("acompressor=threshold=%fdB:ratio=%.1f:attack=5:release=50", thresholdDb, ratio)
	args := []string{
		"-i", inputPath, "-af", filter,
		"-c:a", AudioCodec, "-b:a", AudioBitrate, "-q:a", AudioQuality,
		"-ar", AudioSampleRate, "-ac", AudioChannels,
		"-y", outputPath,
	}
	return runTool(ctx, "compress", "ffmpeg", args)
}

// DeEss applies ffmpeg's deesser filter with intensity 0.5 and maximum
// reduction 0.5. frequencyHz is not used as a center frequency: it is
// divided by 12000 (capped at 1) and passed as the filter's f parameter,
// the share of original frequency content kept. No ±2kHz band is set.
func DeEss(ctx context.Context, inputPath, outputPath string, frequencyHz float64) error {
	nyquist := 12000.0 // half of the 24kHz output sample rate
	keepRatio := frequencyHz / nyquist
	if keepRatio > 1 {
		keepRatio = 1
	}
	filter := fmt.Sprintf("deesser=i=0.5:m=0.5:f=%.3f", keepRatio)
	args := []string{
		"-i", inputPath, "-af", filter,
		"-c:a", AudioCodec, "-b:a", AudioBitrate, "-q:a", AudioQuality,
		"-ar", AudioSampleRate, "-ac", AudioChannels,
		"-y", outputPath,
	}
	return runTool(ctx, "deess", "ffmpeg", args)
}

// AddRoomTone mixes in low-level brown noise for the track's full
// duration at levelDb, so silence between turns never reads as dead air.
func AddRoomTone(ctx context.Context, inputPath, outputPath string, levelDb float64) error {
	durationMs, err := probeDurationMs(ctx, inputPath)
	if err != nil {
		return err
	}
	durationSec := float64(durationMs) / 1000.0

	filter := fmt.Sprintf(
		"[1:a]volume=%fdB,atrim=0:%f[tone];[0:a][tone]amix=inputs=2:duration=first:dropout_transition=0[out]",
		levelDb, durationSec,
	)
	args := []string{
		"-i", inputPath,
		"-f", "lavfi", "-i", "anoisesrc=color=brown:amplitude=1",
		"-filter_complex", filter, "-map", "[out]",
		"-c:a", AudioCodec, "-b:a", AudioBitrate, "-q:a", AudioQuality,
		"-ar", AudioSampleRate, "-ac", AudioChannels,
		"-y", outputPath,
	}
	return runTool(ctx, "roomtone", "ffmpeg", args)
}

// BuildChapters computes each segment's time range from the cumulative
// sum of per-turn durations, per segment.startTurnIndex/endTurnIndex.
func BuildChapters(segments []script.ScriptSegment, turnDurationsMs []int) []Chapter {
	cumulative := make([]int, len(turnDurationsMs)+1)
	for i, d := range turnDurationsMs {
		cumulative[i+1] = cumulative[i] + d
	}

	chapters := make([]Chapter, 0, len(segments))
	for _, seg := range segments {
		if seg.StartTurnIndex < 0 || seg.EndTurnIndex >= len(turnDurationsMs) {
			continue
		}
		chapters = append(chapters, Chapter{
			Title:   seg.Title,
			StartMs: cumulative[seg.StartTurnIndex],
			EndMs:   cumulative[seg.EndTurnIndex+1],
		})
	}
	return chapters
}

// Export writes the final track to disk in the requested format. WAV
// output requires a transcoding pass to PCM 16-bit little-endian; MP3 is
// already in its final encoding and is copied through unchanged.
func Export(ctx context.Context, inputPath, outputPath, format string) error {
	switch format {
	case "wav":
		args := []string{
			"-i", inputPath,
			"-c:a", "pcm_s16le", "-ar", AudioSampleRate, "-ac", AudioChannels,
			"-y", outputPath,
		}
		return runTool(ctx, "export", "ffmpeg", args)
	case "mp3", "":
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return &StageError{Stage: "export", Message: "read final track", Err: err}
		}
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return &StageError{Stage: "export", Message: "write output file", Err: err}
		}
		return nil
	default:
		return &StageError{Stage: "export", Message: fmt.Sprintf("unsupported format %q", format)}
	}
}

// Process runs the full post-production chain: concatenate, insert
// laughs, normalize, then the optional compression/de-ess/room-tone
// stages, then compute chapters and export.
func Process(ctx context.Context, turnAudio [][]byte, segments []script.ScriptSegment, turnDurationsMs []int, laughCues []script.LaughCue, laughClipPath func(script.LaughCueType) string, tmpDir string, opts ProcessingOptions) (*FinalAudioResult, error) {
	concatenated, err := Concatenate(ctx, turnAudio, tmpDir, opts.CrossfadeMs)
	if err != nil {
		return nil, err
	}

	withLaughs := concatenated
	if len(laughCues) > 0 && laughClipPath != nil {
		withLaughs, err = InsertLaughs(ctx, concatenated, laughCues, laughClipPath, turnDurationsMs, tmpDir)
		if err != nil {
			return nil, err
		}
	}

	normalizedPath := filepath.Join(tmpDir, "normalized.mp3")
	report, err := Normalize(ctx, withLaughs, normalizedPath, opts.TargetLoudnessLUFS)
	if err != nil {
		return nil, err
	}
	current := normalizedPath

	if opts.CompressionEnabled {
		out := filepath.Join(tmpDir, "compressed.mp3")
		if err := Compress(ctx, current, out, opts.CompressionThreshDb, opts.CompressionRatio); err != nil {
			return nil, err
		}
		current = out
	}

	if opts.DeEsserEnabled {
		out := filepath.Join(tmpDir, "deessed.mp3")
		if err := DeEss(ctx, current, out, opts.DeEsserFrequencyHz); err != nil {
			return nil, err
		}
		current = out
	}

	if opts.RoomToneEnabled {
		out := filepath.Join(tmpDir, "roomtone.mp3")
		if err := AddRoomTone(ctx, current, out, opts.RoomToneLevelDb); err != nil {
			return nil, err
		}
		current = out
	}

	format := opts.OutputFormat
	if format == "" {
		format = "mp3"
	}
	ext := format
	finalPath := filepath.Join(tmpDir, "final."+ext)
	if err := Export(ctx, current, finalPath, format); err != nil {
		return nil, err
	}

	durationMs, err := probeDurationMs(ctx, current)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(finalPath)
	if err != nil {
		return nil, &StageError{Stage: "export", Message: "read exported file", Err: err}
	}

	return &FinalAudioResult{
		AudioData:        data,
		Format:           format,
		DurationMs:       durationMs,
		MeasuredLoudness: report,
		Chapters:         BuildChapters(segments, turnDurationsMs),
	}, nil
}
