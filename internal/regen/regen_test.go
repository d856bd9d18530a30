package regen

import (
	"context"
	"errors"
	"testing"

	"github.com/apresai/koreanpodcast/internal/qa"
)

func passingReport() *qa.QAReport {
	return &qa.QAReport{
		Pronunciation: qa.MetricScore{Score: 90},
		Rhythm:        qa.MetricScore{Score: 90},
		Repetition:    qa.MetricScore{Score: 90},
		Humor:         qa.MetricScore{Score: 90},
		Artifacts:     qa.MetricScore{Score: 90},
		Naturalness:   qa.MetricScore{Score: 90},
		OverallScore:  90,
		Pass:          true,
	}
}

func TestDecide_ClippingTakesPriority(t *testing.T) {
	report := &qa.QAReport{
		Artifacts: qa.MetricScore{Score: 40, Issues: []qa.Issue{
			{Metric: "artifacts", Severity: qa.SeverityCritical, Message: "clipping detected: boom"},
		}},
	}
	if got := Decide(report); got != StrategyReSynthesize {
		t.Fatalf("expected re_synthesize, got %s", got)
	}
}

func TestDecide_ForbiddenSlangOverridesScores(t *testing.T) {
	report := &qa.QAReport{
		Humor: qa.MetricScore{Score: 30, Issues: []qa.Issue{
			{Metric: "humor", Severity: qa.SeverityCritical, Message: "forbidden slang detected"},
		}},
	}
	if got := Decide(report); got != StrategyAdjustScript {
		t.Fatalf("expected adjust_script, got %s", got)
	}
}

func TestDecide_LowPronunciationTriggersRenormalize(t *testing.T) {
	report := &qa.QAReport{Pronunciation: qa.MetricScore{Score: 50}}
	if got := Decide(report); got != StrategyReNormalize {
		t.Fatalf("expected re_normalize, got %s", got)
	}
}

func TestDecide_LowNaturalnessTriggersFullRegeneration(t *testing.T) {
	report := &qa.QAReport{
		Pronunciation: qa.MetricScore{Score: 90},
		Rhythm:        qa.MetricScore{Score: 90},
		Repetition:    qa.MetricScore{Score: 90},
		Humor:         qa.MetricScore{Score: 90},
		Naturalness:   qa.MetricScore{Score: 50},
	}
	if got := Decide(report); got != StrategyFullRegeneration {
		t.Fatalf("expected full_regeneration, got %s", got)
	}
}

func TestRun_ReturnsImmediatelyWhenAlreadyPassing(t *testing.T) {
	result, err := Run(context.Background(), passingReport(), Actions{}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.Attempts != 0 {
		t.Fatalf("expected a zero-attempt success, got %+v", result)
	}
}

func TestRun_StopsAsSoonAsReportPasses(t *testing.T) {
	failing := &qa.QAReport{Pronunciation: qa.MetricScore{Score: 50}}
	calls := 0
	actions := Actions{
		ReNormalize: func(ctx context.Context, report *qa.QAReport) (*qa.QAReport, error) {
			calls++
			return passingReport(), nil
		},
	}
	result, err := Run(context.Background(), failing, actions, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || calls != 1 || result.Attempts != 1 {
		t.Fatalf("expected one successful attempt, got %+v (calls=%d)", result, calls)
	}
}

func TestRun_ExhaustsAttemptsAndReportsFailure(t *testing.T) {
	failing := &qa.QAReport{Pronunciation: qa.MetricScore{Score: 50}}
	actions := Actions{
		ReNormalize: func(ctx context.Context, report *qa.QAReport) (*qa.QAReport, error) {
			return failing, nil
		},
	}
	result, err := Run(context.Background(), failing, actions, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success || result.Attempts != 2 {
		t.Fatalf("expected exhausted attempts with failure, got %+v", result)
	}
}

func TestRun_PropagatesActionError(t *testing.T) {
	failing := &qa.QAReport{Pronunciation: qa.MetricScore{Score: 50}}
	actions := Actions{
		ReNormalize: func(ctx context.Context, report *qa.QAReport) (*qa.QAReport, error) {
			return nil, errors.New("boom")
		},
	}
	_, err := Run(context.Background(), failing, actions, 2)
	if err == nil {
		t.Fatal("expected an error to propagate")
	}
}
