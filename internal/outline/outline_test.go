package outline

import "testing"

func TestBuildOutline_DurationSharesSumWithinTolerance(t *testing.T) {
	sources := []SourceDocument{{
		ID:      "doc1",
		Content: "첫 번째 문단입니다.\n\n두 번째 문단입니다 API 사용량이 늘었습니다.\n\n세 번째 문단 GDP 성장률은 3.1% 입니다.\n\n마지막 문단입니다.",
	}}
	o, err := BuildOutline(sources, 600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total := 0
	for _, s := range o.Sections {
		total += s.EstimatedDurationSec
	}
	diff := total - 600
	if diff < 0 {
		diff = -diff
	}
	if float64(diff) > 600*0.05 {
		t.Fatalf("section duration shares sum to %d, want within 5%% of 600", total)
	}
}

func TestBuildOutline_NumberContextNeverEmpty(t *testing.T) {
	sources := []SourceDocument{{ID: "doc1", Content: "매출이 2,400만원으로 증가했습니다."}}
	o, err := BuildOutline(sources, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(o.ExtractedNumbers) == 0 {
		t.Fatalf("expected at least one extracted number")
	}
	for _, n := range o.ExtractedNumbers {
		if n.Context == "" {
			t.Fatalf("number %q has empty context", n.Raw)
		}
	}
}

func TestBuildOutline_NoParagraphsFails(t *testing.T) {
	_, err := BuildOutline([]SourceDocument{{ID: "empty", Content: ""}}, 300)
	if err == nil {
		t.Fatalf("expected IngestError for empty source")
	}
	if _, ok := err.(*IngestError); !ok {
		t.Fatalf("expected *IngestError, got %T", err)
	}
}
