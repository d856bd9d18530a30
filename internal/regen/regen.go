// Package regen decides how to repair a failing episode and drives the
// bounded retry loop that applies the decision.
package regen

import (
	"context"
	"fmt"
	"strings"

	"github.com/apresai/koreanpodcast/internal/qa"
)

// Strategy names one of the five remediation paths, ordered by how much
// of the pipeline they re-run.
type Strategy string

const (
	StrategyReSynthesize     Strategy = "re_synthesize"
	StrategyAdjustScript     Strategy = "adjust_script"
	StrategyReNormalize      Strategy = "re_normalize"
	StrategyRegenerateScript Strategy = "regenerate_script"
	StrategyFullRegeneration Strategy = "full_regeneration"
)

// DefaultMaxAttempts bounds how many regeneration rounds a single
// episode gets before the run is emitted as a failure.
const DefaultMaxAttempts = 3

// Decide inspects a QAReport and picks the cheapest strategy that could
// plausibly fix it, in priority order: clipping first, then forbidden
// slang, then the per-dimension score thresholds.
func Decide(report *qa.QAReport) Strategy {
	for _, iss := range allIssues(report) {
		if strings.Contains(strings.ToLower(iss.Message), "clipping") {
			return StrategyReSynthesize
		}
	}
	for _, iss := range allIssues(report) {
		if iss.Severity == qa.SeverityCritical && strings.Contains(strings.ToLower(iss.Message), "slang") {
			return StrategyAdjustScript
		}
	}
	if report.Pronunciation.Score < 70 {
		return StrategyReNormalize
	}
	if report.Rhythm.Score < 60 || report.Repetition.Score < 60 || report.Humor.Score < 60 {
		return StrategyRegenerateScript
	}
	if report.Naturalness.Score < 60 {
		return StrategyFullRegeneration
	}
	return StrategyAdjustScript
}

func allIssues(report *qa.QAReport) []qa.Issue {
	var all []qa.Issue
	for _, m := range []qa.MetricScore{
		report.Pronunciation, report.Rhythm, report.Repetition,
		report.Humor, report.Artifacts, report.Naturalness,
	} {
		all = append(all, m.Issues...)
	}
	return all
}

// Actions bundles the pipeline callbacks the controller invokes for
// each strategy. Every callback re-enters the pipeline at the
// narrowest stage the strategy requires and returns the episode's
// freshly recomputed QAReport.
type Actions struct {
	ReSynthesize     func(ctx context.Context, report *qa.QAReport) (*qa.QAReport, error)
	AdjustScript     func(ctx context.Context, report *qa.QAReport) (*qa.QAReport, error)
	ReNormalize      func(ctx context.Context, report *qa.QAReport) (*qa.QAReport, error)
	RegenerateScript func(ctx context.Context, report *qa.QAReport) (*qa.QAReport, error)
	FullRegeneration func(ctx context.Context, report *qa.QAReport) (*qa.QAReport, error)
}

// Result is the outcome of the regeneration loop.
type Result struct {
	Success      bool
	Attempts     int
	Strategies   []Strategy
	FinalReport  *qa.QAReport
}

// Run drives the bounded retry loop: decide a strategy, apply it, and
// stop as soon as the report passes or attempts run out.
func Run(ctx context.Context, initial *qa.QAReport, actions Actions, maxAttempts int) (*Result, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	report := initial
	result := &Result{FinalReport: report}

	if report.Pass {
		result.Success = true
		return result, nil
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		strategy := Decide(report)
		result.Strategies = append(result.Strategies, strategy)
		result.Attempts++

		var apply func(context.Context, *qa.QAReport) (*qa.QAReport, error)
		switch strategy {
		case StrategyReSynthesize:
			apply = actions.ReSynthesize
		case StrategyAdjustScript:
			apply = actions.AdjustScript
		case StrategyReNormalize:
			apply = actions.ReNormalize
		case StrategyRegenerateScript:
			apply = actions.RegenerateScript
		case StrategyFullRegeneration:
			apply = actions.FullRegeneration
		default:
			return result, fmt.Errorf("regen: no action wired for strategy %q", strategy)
		}
		if apply == nil {
			return result, fmt.Errorf("regen: strategy %q has no action configured", strategy)
		}

		next, err := apply(ctx, report)
		if err != nil {
			return result, fmt.Errorf("regen: strategy %q failed: %w", strategy, err)
		}
		report = next
		result.FinalReport = report

		if report.Pass {
			result.Success = true
			return result, nil
		}
	}

	result.Success = false
	return result, nil
}
