package script

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/apresai/koreanpodcast/internal/interjection"
)

// SafetyCheck scans a draft for forbidden slang and medical/legal absolutes
// without mutating it. It runs after both the template and LLM generators,
// since the template phrase bank is hand-written but the LLM path is not
// constrained beyond its system prompt.
func SafetyCheck(draft *ScriptDraft) []string {
	var issues []string
	lib := interjection.NewDefaultLibrary()
	for _, t := range draft.Turns {
		for _, slang := range lib.ForbiddenSlang {
			if strings.Contains(t.RawText, slang) {
				issues = append(issues, fmt.Sprintf("turn %d uses forbidden slang %q", t.Index, slang))
			}
		}
		for _, abs := range sensitiveAbsolutes {
			if strings.Contains(t.RawText, abs) {
				issues = append(issues, fmt.Sprintf("turn %d states a sensitive claim as fact: %q", t.Index, abs))
			}
		}
	}
	return issues
}

var sensitiveAbsolutes = []string{
	"무조건 효과가 있습니다", "100% 확실합니다", "반드시 나을 수 있습니다",
	"절대적으로 옳습니다", "틀림없이 사실입니다",
}

var formalEndingRe = regexp.MustCompile(`(습니다|입니다)[.!?]?\s*$`)

const openingWindowMs = 90_000

// validateDraft runs the LLM-mode checks the template generator doesn't
// need, since its phrase bank is already hand-constrained: strong
// reactions must land after the 90-second opening window, closing/opener
// turns aside no line may end in the written register, and no reaction
// line may repeat more than twice across the episode.
func validateDraft(draft *ScriptDraft, preset interjection.StylePreset) []string {
	issues := SafetyCheck(draft)
	issues = append(issues, checkStrongReactionWindow(draft)...)
	issues = append(issues, checkFormalEndings(draft)...)
	issues = append(issues, checkReactionRepetition(draft)...)
	return issues
}

func checkStrongReactionWindow(draft *ScriptDraft) []string {
	var issues []string
	elapsed := 0
	for _, t := range draft.Turns {
		if t.IsStrongReaction && elapsed < openingWindowMs {
			issues = append(issues, fmt.Sprintf("turn %d is a strong reaction at %dms, before the %dms opening window", t.Index, elapsed, openingWindowMs))
		}
		elapsed += t.EstimatedDurationMs
	}
	return issues
}

func checkFormalEndings(draft *ScriptDraft) []string {
	var issues []string
	for _, t := range draft.Turns {
		if t.Intent == IntentOpenerHook || t.Intent == IntentClosing {
			continue
		}
		if formalEndingRe.MatchString(t.RawText) {
			issues = append(issues, fmt.Sprintf("turn %d ends in written register (-습니다/-입니다) outside the opening/closing: %q", t.Index, t.RawText))
		}
	}
	return issues
}

func checkReactionRepetition(draft *ScriptDraft) []string {
	counts := make(map[string]int)
	for _, t := range draft.Turns {
		if t.Intent != IntentReact {
			continue
		}
		counts[t.RawText]++
	}
	var issues []string
	for text, n := range counts {
		if n > 2 {
			issues = append(issues, fmt.Sprintf("reaction line %q repeats %d times, max is 2", text, n))
		}
	}
	return issues
}
