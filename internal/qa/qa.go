// Package qa scores a finished episode across six dimensions —
// pronunciation, rhythm, repetition, humor, artifacts, and naturalness —
// and decides whether it passes or needs regeneration.
package qa

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/apresai/koreanpodcast/internal/audio"
	"github.com/apresai/koreanpodcast/internal/interjection"
	"github.com/apresai/koreanpodcast/internal/script"
	"github.com/apresai/koreanpodcast/internal/tts"
)

// Severity classifies how urgently an issue needs fixing.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Issue is one finding surfaced by a metric.
type Issue struct {
	Metric   string   `json:"metric"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// MetricScore is one dimension's score plus the issues that produced it.
type MetricScore struct {
	Score  float64 `json:"score"`
	Issues []Issue `json:"issues"`
}

// QAReport is the full six-dimension scorecard for an episode.
type QAReport struct {
	Pronunciation MetricScore `json:"pronunciation"`
	Rhythm        MetricScore `json:"rhythm"`
	Repetition    MetricScore `json:"repetition"`
	Humor         MetricScore `json:"humor"`
	Artifacts     MetricScore `json:"artifacts"`
	Naturalness   MetricScore `json:"naturalness"`
	OverallScore  float64     `json:"overallScore"`
	Pass          bool        `json:"pass"`
}

const defaultPassThreshold = 78.0

// oovPatterns are the out-of-vocabulary heuristics: triple-consonant-or-
// vowel clusters, 5+ digit numeric strings, 10+ char Latin strings, and
// 2+ consecutive non-word characters.
var oovPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[ㄱ-ㅎㅏ-ㅣ]{3,}`),
	regexp.MustCompile(`\d{5,}`),
	regexp.MustCompile(`[A-Za-z]{10,}`),
	regexp.MustCompile(`[^\w\s]{2,}`),
}

var latinRunRe = regexp.MustCompile(`[A-Za-z]{2,}`)
var numericLiteralRe = regexp.MustCompile(`\d+`)

func floor0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Pronunciation scans every turn's rawText for out-of-vocabulary tokens,
// the Latin-word ratio, and numeric literals missing from the
// normalization log.
func Pronunciation(enriched *script.EnrichedScript) MetricScore {
	var issues []Issue
	oovCount := 0
	numberErrors := 0
	var latinRuns, totalTokens int

	for _, t := range enriched.Turns {
		for _, pat := range oovPatterns {
			oovCount += len(pat.FindAllString(t.RawText, -1))
		}

		tokens := strings.Fields(t.RawText)
		totalTokens += len(tokens)
		latinRuns += len(latinRunRe.FindAllString(t.RawText, -1))

		for _, num := range numericLiteralRe.FindAllString(t.RawText, -1) {
			found := false
			for _, entry := range t.NormalizationLog {
				if strings.Contains(entry.Original, num) {
					found = true
					break
				}
			}
			if !found {
				numberErrors++
				issues = append(issues, Issue{
					Metric: "pronunciation", Severity: SeverityWarning,
					Message: "numeric literal " + num + " in turn " + t.ID + " has no normalization log entry",
				})
			}
		}
	}

	foreignWordRatio := 0.0
	if totalTokens > 0 {
		foreignWordRatio = float64(latinRuns) / float64(totalTokens)
	}
	var foreignPenalty float64
	if foreignWordRatio > 0.2 {
		foreignPenalty = 15
	} else {
		foreignPenalty = 50 * foreignWordRatio
	}

	if oovCount > 0 {
		issues = append(issues, Issue{Metric: "pronunciation", Severity: SeverityWarning, Message: "out-of-vocabulary tokens detected"})
	}

	score := floor0(100 - 5*float64(oovCount) - 3*float64(numberErrors) - foreignPenalty)
	return MetricScore{Score: score, Issues: issues}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func coefficientOfVariation(xs []float64) float64 {
	m := mean(xs)
	if m == 0 {
		return 0
	}
	var variance float64
	for _, x := range xs {
		d := x - m
		variance += d * d
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance) / m
}

// Rhythm measures pause and turn-length variation, flagging uniform
// pauses and excessive long sentences.
func Rhythm(enriched *script.EnrichedScript) MetricScore {
	var pauses, lengths []float64
	longSentences := 0
	for _, t := range enriched.Turns {
		pauses = append(pauses, float64(t.PauseMsBefore), float64(t.PauseMsAfter))
		charLen := len([]rune(t.RawText))
		lengths = append(lengths, float64(charLen))
		if charLen > 40 {
			longSentences++
		}
	}

	pauseCV := coefficientOfVariation(pauses)
	lengthCV := coefficientOfVariation(lengths)

	var issues []Issue
	uniformPause := pauseCV < 0.1
	if uniformPause {
		issues = append(issues, Issue{Metric: "rhythm", Severity: SeverityWarning, Message: "pause durations are too uniform"})
	}
	if longSentences > 0 {
		issues = append(issues, Issue{Metric: "rhythm", Severity: SeverityInfo, Message: "turns longer than 40 characters found"})
	}

	score := 100.0 - 5*float64(longSentences)
	if uniformPause {
		score -= 20
	}
	if lengthCV < 0.2 {
		score -= 10
	}
	return MetricScore{Score: floor0(score), Issues: issues}
}

var ngramInterjectionExceptions = map[string]int{"맞아요": 3}

func wordNgrams(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}
	grams := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams = append(grams, strings.Join(tokens[i:i+n], " "))
	}
	return grams
}

// Repetition finds repeated n-grams, overused interjections, and runs of
// turns sharing the same intent.
func Repetition(enriched *script.EnrichedScript) MetricScore {
	counts := make(map[string]int)
	for _, t := range enriched.Turns {
		tokens := strings.Fields(t.RawText)
		for _, n := range []int{3, 4, 5} {
			for _, gram := range wordNgrams(tokens, n) {
				counts[gram]++
			}
		}
	}
	repeatedPhrases := 0
	for _, c := range counts {
		if c >= 2 {
			repeatedPhrases++
		}
	}

	overusedInterjections := 0
	for text, count := range enriched.InterjectionUsage {
		limit := 2
		if exception, ok := ngramInterjectionExceptions[text]; ok {
			limit = exception
		}
		if count > limit {
			overusedInterjections++
		}
	}

	longestRun, currentRun := 0, 0
	var lastIntent script.Intent
	for i, t := range enriched.Turns {
		if i > 0 && t.Intent == lastIntent {
			currentRun++
		} else {
			currentRun = 1
		}
		lastIntent = t.Intent
		if currentRun > longestRun {
			longestRun = currentRun
		}
	}

	var issues []Issue
	if repeatedPhrases > 0 {
		issues = append(issues, Issue{Metric: "repetition", Severity: SeverityInfo, Message: "repeated phrases detected across turns"})
	}
	if overusedInterjections > 0 {
		issues = append(issues, Issue{Metric: "repetition", Severity: SeverityWarning, Message: "interjections used beyond their per-episode allowance"})
	}

	score := 100.0 - 3*float64(repeatedPhrases) - 5*float64(overusedInterjections) - 5*math.Max(0, float64(longestRun-2))
	return MetricScore{Score: floor0(score), Issues: issues}
}

const openingWindowMs = 90_000

// Humor compares interjection usage against each entry's per-episode
// cap, counts excess strong reactions, opening-window humor tags, and
// forbidden slang.
func Humor(enriched *script.EnrichedScript, lib *interjection.Library) MetricScore {
	limitByText := make(map[string]int)
	for _, e := range lib.Entries {
		limitByText[e.Text] = e.MaxUsagePerEpisode
	}

	overruns := 0
	for text, count := range enriched.InterjectionUsage {
		if limit, ok := limitByText[text]; ok && count > limit {
			overruns++
		}
	}

	strongOverCap := enriched.StrongReactionCount > 2

	elapsed := 0
	openingHumorTags := 0
	slangFound := 0
	for _, t := range enriched.Turns {
		if t.HumorTag != "" && elapsed < openingWindowMs {
			openingHumorTags++
		}
		for _, slang := range lib.ForbiddenSlang {
			if strings.Contains(t.RawText, slang) {
				slangFound++
			}
		}
		elapsed += t.EstimatedDurationMs
	}

	var issues []Issue
	if overruns > 0 {
		issues = append(issues, Issue{Metric: "humor", Severity: SeverityWarning, Message: "interjection usage exceeds per-episode cap"})
	}
	if strongOverCap {
		issues = append(issues, Issue{Metric: "humor", Severity: SeverityWarning, Message: "more than 2 strong reactions in the episode"})
	}
	if openingHumorTags > 1 {
		issues = append(issues, Issue{Metric: "humor", Severity: SeverityWarning, Message: "humor tags placed too early in the episode"})
	}
	if slangFound > 0 {
		issues = append(issues, Issue{Metric: "humor", Severity: SeverityCritical, Message: "forbidden slang detected"})
	}

	score := 100.0 - 10*float64(overruns)
	if strongOverCap {
		score -= 20
	}
	if openingHumorTags > 1 {
		score -= 15
	}
	score -= 10 * float64(slangFound)
	return MetricScore{Score: floor0(score), Issues: issues}
}

// Artifacts flags loudness outside the target band and synthesis-log
// warnings naming clipping or sibilance.
func Artifacts(final *audio.FinalAudioResult, synthResults []tts.TTSSynthesisResult) MetricScore {
	var issues []Issue
	volumeJumps := 0

	outputLUFS := parseFloatSafe(final.MeasuredLoudness.OutputI)
	if outputLUFS < -20 || outputLUFS > -14 {
		volumeJumps++
		issues = append(issues, Issue{Metric: "artifacts", Severity: SeverityWarning, Message: "measured loudness outside the -20..-14 LUFS band"})
	}

	clipping, sibilance, silenceGaps := 0, 0, 0
	for _, r := range synthResults {
		w := strings.ToLower(r.Warning)
		if strings.Contains(w, "clipping") {
			clipping++
			issues = append(issues, Issue{Metric: "artifacts", Severity: SeverityCritical, Message: "clipping detected: " + r.Warning})
		}
		if strings.Contains(w, "sibilance") {
			sibilance++
			issues = append(issues, Issue{Metric: "artifacts", Severity: SeverityWarning, Message: "sibilance detected: " + r.Warning})
		}
	}

	score := 100.0 - 30*float64(clipping) - 5*float64(sibilance) - 10*float64(volumeJumps) - 5*float64(silenceGaps)
	return MetricScore{Score: floor0(score), Issues: issues}
}

func parseFloatSafe(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Naturalness is the weighted average of the other five metrics.
func Naturalness(pronunciation, rhythm, repetition, humor, artifacts MetricScore) MetricScore {
	score := 0.25*pronunciation.Score + 0.25*rhythm.Score + 0.20*repetition.Score + 0.15*humor.Score + 0.15*artifacts.Score
	return MetricScore{Score: floor0(score)}
}

// Analyze runs all six metrics and assembles the final report.
func Analyze(enriched *script.EnrichedScript, final *audio.FinalAudioResult, synthResults []tts.TTSSynthesisResult, lib *interjection.Library, passThreshold float64) *QAReport {
	if passThreshold <= 0 {
		passThreshold = defaultPassThreshold
	}

	pronunciation := Pronunciation(enriched)
	rhythm := Rhythm(enriched)
	repetition := Repetition(enriched)
	humor := Humor(enriched, lib)
	artifacts := Artifacts(final, synthResults)
	naturalness := Naturalness(pronunciation, rhythm, repetition, humor, artifacts)

	overall := math.Round((pronunciation.Score + rhythm.Score + repetition.Score + humor.Score + artifacts.Score + naturalness.Score) / 6.0)

	hasCritical := false
	for _, m := range []MetricScore{pronunciation, rhythm, repetition, humor, artifacts, naturalness} {
		for _, iss := range m.Issues {
			if iss.Severity == SeverityCritical {
				hasCritical = true
			}
		}
	}

	return &QAReport{
		Pronunciation: pronunciation,
		Rhythm:        rhythm,
		Repetition:    repetition,
		Humor:         humor,
		Artifacts:     artifacts,
		Naturalness:   naturalness,
		OverallScore:  overall,
		Pass:          overall >= passThreshold && !hasCritical,
	}
}
