package audio

import (
	"testing"

	"github.com/apresai/koreanpodcast/internal/script"
)

func TestBuildChapters_ComputesCumulativeRanges(t *testing.T) {
	segments := []script.ScriptSegment{
		{Title: "Intro", StartTurnIndex: 0, EndTurnIndex: 1},
		{Title: "Main", StartTurnIndex: 2, EndTurnIndex: 3},
	}
	durations := []int{1000, 2000, 1500, 2500}

	chapters := BuildChapters(segments, durations)
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	if chapters[0].StartMs != 0 || chapters[0].EndMs != 3000 {
		t.Fatalf("intro chapter range wrong: %+v", chapters[0])
	}
	if chapters[1].StartMs != 3000 || chapters[1].EndMs != 7000 {
		t.Fatalf("main chapter range wrong: %+v", chapters[1])
	}
}

func TestBuildChapters_SkipsOutOfRangeSegment(t *testing.T) {
	segments := []script.ScriptSegment{
		{Title: "Ghost", StartTurnIndex: 0, EndTurnIndex: 5},
	}
	durations := []int{1000}

	chapters := BuildChapters(segments, durations)
	if len(chapters) != 0 {
		t.Fatalf("expected the out-of-range segment to be skipped, got %+v", chapters)
	}
}

func TestParseLoudnormReport_ExtractsTrailingJSON(t *testing.T) {
	stderr := "some ffmpeg log noise\n" +
		`{"input_i" : "-23.00", "input_tp" : "-5.00", "input_lra" : "4.00", ` +
		`"input_thresh" : "-33.10", "output_i" : "-16.00", "output_tp" : "-1.50", ` +
		`"output_lra" : "11.00", "output_thresh" : "-26.00", "target_offset" : "0.00"}` +
		"\nmore trailing noise"

	report, err := parseLoudnormReport(stderr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.OutputI != "-16.00" {
		t.Fatalf("expected output_i -16.00, got %q", report.OutputI)
	}
}

func TestParseLoudnormReport_NoJSONReturnsError(t *testing.T) {
	_, err := parseLoudnormReport("no json here")
	if err == nil {
		t.Fatal("expected an error when no JSON report is present")
	}
}

func TestDefaultOptions_MatchesSpecDefaults(t *testing.T) {
	opts := DefaultOptions()
	if opts.CrossfadeMs != 40 {
		t.Fatalf("expected default crossfade 40ms, got %d", opts.CrossfadeMs)
	}
	if opts.TargetLoudnessLUFS != -16 {
		t.Fatalf("expected default target loudness -16 LUFS, got %v", opts.TargetLoudnessLUFS)
	}
	if opts.CompressionEnabled || opts.DeEsserEnabled || opts.RoomToneEnabled {
		t.Fatal("expected all optional stages off by default")
	}
}
