// Package outline turns pre-extracted source text into the ContentOutline
// the scriptwriter builds turns from: a fixed opening/keypoint/closing
// section shape plus extracted numbers and technical terms.
package outline

import (
	"fmt"
	"regexp"
	"strings"
)

// SourceType tags the origin of a SourceDocument.
type SourceType string

const (
	SourceText     SourceType = "text"
	SourceMarkdown SourceType = "markdown"
	SourcePDF      SourceType = "pdf"
	SourceURL      SourceType = "url"
	SourceSummary  SourceType = "summary"
)

// SourceDocument is raw input content. Immutable once constructed.
type SourceDocument struct {
	ID       string
	Type     SourceType
	Content  string
	Title    string
	Metadata map[string]string
}

// SectionType enumerates the outline section kinds.
type SectionType string

const (
	SectionOpening  SectionType = "opening"
	SectionKeypoint SectionType = "keypoint"
	SectionExample  SectionType = "example"
	SectionAnalogy  SectionType = "analogy"
	SectionCaution  SectionType = "caution"
	SectionCounter  SectionType = "counter"
	SectionRecap    SectionType = "recap"
	SectionClosing  SectionType = "closing"
)

// OutlineSection is one structural beat of the episode.
type OutlineSection struct {
	Type               SectionType
	Keypoints          []string
	Examples           []string
	EstimatedDurationSec int
	Order              int
}

// NumberMention is an extracted numeric literal plus surrounding context.
type NumberMention struct {
	Raw     string
	Context string
}

// ContentOutline is the structural plan the scriptwriter builds turns from.
type ContentOutline struct {
	DocumentID            string
	EpisodeTitle          string
	TotalEstimatedDurationSec int
	Sections              []OutlineSection
	KeyFacts              []string
	ExtractedNumbers      []NumberMention
	TechnicalTerms        []string
	RiskList              []string
}

// IngestError marks a failure to parse any paragraph from the given sources.
type IngestError struct {
	Message string
}

func (e *IngestError) Error() string { return fmt.Sprintf("ingest: %s", e.Message) }

var numberPattern = regexp.MustCompile(`\d[\d,.]*`)
var technicalTermPattern = regexp.MustCompile(`\b[A-Z]{2,}\b`)

const numberContextWindow = 20

// BuildOutline concatenates source content, splits into paragraphs, and
// emits a ContentOutline whose section duration shares sum to
// targetDurationSec: one opening section (10%), up to three keypoint
// sections (the remaining 80%, equally divided among however many
// paragraph groups are found), and one closing section (10%).
func BuildOutline(sources []SourceDocument, targetDurationSec int) (*ContentOutline, error) {
	var combined strings.Builder
	for i, s := range sources {
		if i > 0 {
			combined.WriteString("\n\n")
		}
		combined.WriteString(s.Content)
	}

	paragraphs := splitParagraphs(combined.String())
	if len(paragraphs) == 0 {
		return nil, &IngestError{Message: "no parseable paragraphs in source documents"}
	}

	keypointGroups := groupParagraphs(paragraphs, 3)

	openingSec := targetDurationSec / 10
	closingSec := targetDurationSec / 10
	keypointTotalSec := targetDurationSec - openingSec - closingSec

	var sections []OutlineSection
	order := 0

	sections = append(sections, OutlineSection{
		Type:               SectionOpening,
		Keypoints:          firstN(paragraphs, 1),
		EstimatedDurationSec: openingSec,
		Order:              order,
	})
	order++

	perKeypointSec := 0
	if len(keypointGroups) > 0 {
		perKeypointSec = keypointTotalSec / len(keypointGroups)
	}
	for _, group := range keypointGroups {
		sections = append(sections, OutlineSection{
			Type:               SectionKeypoint,
			Keypoints:          group,
			EstimatedDurationSec: perKeypointSec,
			Order:              order,
		})
		order++
	}

	sections = append(sections, OutlineSection{
		Type:               SectionClosing,
		Keypoints:          lastN(paragraphs, 1),
		EstimatedDurationSec: closingSec,
		Order:              order,
	})

	title := ""
	if len(sources) > 0 {
		title = sources[0].Title
	}
	if title == "" && len(paragraphs) > 0 {
		title = truncate(paragraphs[0], 40)
	}

	outline := &ContentOutline{
		DocumentID:            idOf(sources),
		EpisodeTitle:          title,
		TotalEstimatedDurationSec: targetDurationSec,
		Sections:              sections,
		KeyFacts:              extractKeyFacts(paragraphs),
		ExtractedNumbers:      extractNumbers(combined.String()),
		TechnicalTerms:        extractTechnicalTerms(combined.String()),
	}
	return outline, nil
}

func idOf(sources []SourceDocument) string {
	if len(sources) == 0 {
		return ""
	}
	return sources[0].ID
}

func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	var out []string
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// groupParagraphs divides paragraphs into at most maxGroups contiguous
// groups of roughly equal size, used to build up to three keypoint
// sections from however many paragraphs the source actually has.
func groupParagraphs(paragraphs []string, maxGroups int) [][]string {
	if len(paragraphs) == 0 {
		return nil
	}
	n := maxGroups
	if len(paragraphs) < n {
		n = len(paragraphs)
	}
	groups := make([][]string, n)
	for i, p := range paragraphs {
		idx := i * n / len(paragraphs)
		if idx >= n {
			idx = n - 1
		}
		groups[idx] = append(groups[idx], p)
	}
	return groups
}

func firstN(items []string, n int) []string {
	if len(items) < n {
		n = len(items)
	}
	return append([]string{}, items[:n]...)
}

func lastN(items []string, n int) []string {
	if len(items) < n {
		n = len(items)
	}
	return append([]string{}, items[len(items)-n:]...)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func extractKeyFacts(paragraphs []string) []string {
	var facts []string
	for _, p := range paragraphs {
		sentences := strings.Split(p, ".")
		for _, s := range sentences {
			s = strings.TrimSpace(s)
			if len(s) > 15 && len(s) < 140 {
				facts = append(facts, s)
			}
		}
	}
	if len(facts) > 20 {
		facts = facts[:20]
	}
	return facts
}

// extractNumbers captures every numeric literal plus a fixed context
// window on each side, so the downstream normalizer can cross-check that
// every number it reads aloud actually traces back to the source.
func extractNumbers(text string) []NumberMention {
	var mentions []NumberMention
	for _, loc := range numberPattern.FindAllStringIndex(text, -1) {
		start := loc[0] - numberContextWindow
		if start < 0 {
			start = 0
		}
		end := loc[1] + numberContextWindow
		if end > len(text) {
			end = len(text)
		}
		mentions = append(mentions, NumberMention{
			Raw:     text[loc[0]:loc[1]],
			Context: text[start:end],
		})
	}
	return mentions
}

func extractTechnicalTerms(text string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, m := range technicalTermPattern.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			terms = append(terms, m)
		}
	}
	return terms
}
