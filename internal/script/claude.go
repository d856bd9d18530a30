package script

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/apresai/koreanpodcast/internal/outline"
)

var claudeModels = map[string]string{
	"haiku":  "claude-haiku-4-5-20251001",
	"sonnet": "claude-sonnet-4-5-20250929",
}

const (
	claudeTemperature = 0.7
	claudeMaxAttempts = 3
	claudeInitialBackoff = 1 * time.Second
	claudeBackoffMult  = 2
)

// ClaudeGenerator is the opt-in LLM scriptwriter. It prompts Claude for a
// two-host transcript, parses the [A]/[B] line format back into
// ScriptTurns, and retries with the validator's complaints fed back into
// the prompt when the draft fails the voice-rule checks.
type ClaudeGenerator struct {
	model  string
	apiKey string // optional per-request override; empty = use env ANTHROPIC_API_KEY
}

func NewClaudeGenerator(model, apiKey string) *ClaudeGenerator {
	return &ClaudeGenerator{model: model, apiKey: apiKey}
}

func (g *ClaudeGenerator) Generate(ctx context.Context, o *outline.ContentOutline, opts GenerateOptions) (*ScriptDraft, error) {
	var client anthropic.Client
	if g.apiKey != "" {
		client = anthropic.NewClient(option.WithAPIKey(g.apiKey))
	} else {
		client = anthropic.NewClient()
	}

	personaA, personaB := buildPersonaPair(opts.SpeakerNames)
	modelID := claudeModels[g.model]
	if modelID == "" {
		modelID = claudeModels["haiku"]
	}

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}

	complaints := append([]string{}, opts.PriorComplaints...)
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		draft, err := g.generateOnce(ctx, client, modelID, o, personaA, personaB, opts, complaints)
		if err != nil {
			lastErr = err
			continue
		}

		issues := validateDraft(draft, opts.Preset)
		if len(issues) == 0 {
			return draft, nil
		}
		lastErr = fmt.Errorf("llm script failed validation: %s", strings.Join(issues, "; "))
		complaints = issues
	}

	return nil, lastErr
}

func (g *ClaudeGenerator) generateOnce(ctx context.Context, client anthropic.Client, modelID string, o *outline.ContentOutline, a, b Persona, opts GenerateOptions, complaints []string) (*ScriptDraft, error) {
	sysPrompt := buildSystemPrompt(a, b, opts.Preset, opts.BanterLevel)
	userPrompt := buildUserPrompt(o, complaints)

	backoff := claudeInitialBackoff
	var lastErr error

	for attempt := 1; attempt <= claudeMaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:       anthropic.Model(modelID),
			MaxTokens:   8192,
			Temperature: anthropic.Float(claudeTemperature),
			System: []anthropic.TextBlockParam{
				{Text: sysPrompt},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
			},
		})
		if err != nil {
			lastErr = fmt.Errorf("claude api error (attempt %d/%d): %w", attempt, claudeMaxAttempts, err)
			if !g.wait(ctx, attempt, &backoff) {
				return nil, ctx.Err()
			}
			continue
		}

		text := extractText(message)
		if text == "" {
			lastErr = fmt.Errorf("empty response from claude (attempt %d/%d)", attempt, claudeMaxAttempts)
			if !g.wait(ctx, attempt, &backoff) {
				return nil, ctx.Err()
			}
			continue
		}

		draft, err := parseDraftText(text, o, a, b)
		if err != nil {
			lastErr = fmt.Errorf("failed to parse script (attempt %d/%d): %w", attempt, claudeMaxAttempts, err)
			if !g.wait(ctx, attempt, &backoff) {
				return nil, ctx.Err()
			}
			continue
		}

		draft.EpisodeTitle = o.EpisodeTitle
		splitLongTurns(draft, opts.Preset)
		assignPauses(draft)
		assignDurations(draft)
		fillSegmentDurations(draft)
		return draft, nil
	}

	return nil, lastErr
}

func (g *ClaudeGenerator) wait(ctx context.Context, attempt int, backoff *time.Duration) bool {
	if attempt >= claudeMaxAttempts {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(*backoff):
	}
	*backoff *= time.Duration(claudeBackoffMult)
	return true
}

func extractText(msg *anthropic.Message) string {
	var parts []string
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			parts = append(parts, tb.Text)
		}
	}
	return strings.Join(parts, "")
}

var (
	turnLineRe  = regexp.MustCompile(`^\[(A|B)\]\s*(.*)$`)
	strongRe    = regexp.MustCompile(`\{\{STRONG\}\}\s*`)
	laughRe     = regexp.MustCompile(`\{\{LAUGH:(light|soft|big)\}\}\s*`)
	slideLineRe = regexp.MustCompile(`^\[\[슬라이드:.*\]\]$`)
)

// parseDraftText parses Claude's [A]/[B] transcript into a ScriptDraft,
// distributing turns across the outline's sections in proportion to each
// section's estimated duration share. [[슬라이드: ...]] lines are dropped;
// visual cues are not part of the audio pipeline's turn model.
func parseDraftText(text string, o *outline.ContentOutline, a, b Persona) (*ScriptDraft, error) {
	var turns []ScriptTurn
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" || slideLineRe.MatchString(line) {
			continue
		}
		m := turnLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		speaker := HostA
		if m[1] == "B" {
			speaker = HostB
		}
		body := m[2]

		isStrong := strongRe.MatchString(body)
		body = strongRe.ReplaceAllString(body, "")

		laughCue := ""
		if lm := laughRe.FindStringSubmatch(body); lm != nil {
			laughCue = lm[1]
		}
		body = laughRe.ReplaceAllString(body, "")
		body = strings.TrimSpace(body)
		if body == "" {
			continue
		}

		intent := IntentExplainPoint
		if strings.HasSuffix(body, "?") {
			intent = IntentAskQuestion
		}

		turns = append(turns, ScriptTurn{
			Speaker:          speaker,
			RawText:          body,
			Intent:           intent,
			IsStrongReaction: isStrong,
			HumorTag:         laughTagFor(laughCue),
		})
	}

	if len(turns) == 0 {
		return nil, fmt.Errorf("no [A]/[B] lines found in llm response")
	}

	assignSections(turns, o.Sections)

	draft := &ScriptDraft{EpisodeTitle: o.EpisodeTitle}
	for i := range turns {
		turns[i].ID = newTurnID()
		turns[i].Index = i
	}
	draft.Turns = turns
	draft.Segments = buildSegmentsFromTurns(turns, o.Sections)
	return draft, nil
}

func laughTagFor(cue string) string {
	if cue == "" {
		return ""
	}
	return "laugh_" + cue
}

// assignSections distributes turns across outline sections proportionally
// to each section's estimated duration share, in outline order.
func assignSections(turns []ScriptTurn, sections []outline.OutlineSection) {
	if len(sections) == 0 {
		for i := range turns {
			turns[i].SectionID = "section_0"
		}
		return
	}

	total := 0
	for _, s := range sections {
		total += s.EstimatedDurationSec
	}
	if total <= 0 {
		total = len(sections)
	}

	n := len(turns)
	assigned := 0
	for si, sec := range sections {
		share := sec.EstimatedDurationSec
		if total == len(sections) {
			share = 1
		}
		count := n * share / total
		if si == len(sections)-1 {
			count = n - assigned
		}
		if count < 0 {
			count = 0
		}
		id := sectionID(sec.Type, sec.Order)
		for i := assigned; i < assigned+count && i < n; i++ {
			turns[i].SectionID = id
		}
		assigned += count
	}
	// any remainder from integer division lands in the last section already
	// handled above; guard against assigned overshoot from rounding.
	if assigned < n {
		lastID := sectionID(sections[len(sections)-1].Type, sections[len(sections)-1].Order)
		for i := assigned; i < n; i++ {
			turns[i].SectionID = lastID
		}
	}
}

func buildSegmentsFromTurns(turns []ScriptTurn, sections []outline.OutlineSection) []ScriptSegment {
	if len(sections) == 0 {
		return []ScriptSegment{{ID: "section_0", Title: "Episode", Type: "opening", StartTurnIndex: 0, EndTurnIndex: len(turns) - 1}}
	}

	var segments []ScriptSegment
	for _, sec := range sections {
		id := sectionID(sec.Type, sec.Order)
		start, end := -1, -1
		for i, t := range turns {
			if t.SectionID == id {
				if start == -1 {
					start = i
				}
				end = i
			}
		}
		if start == -1 {
			continue
		}
		title := string(sec.Type)
		if len(sec.Keypoints) > 0 {
			title = truncateTitle(sec.Keypoints[0])
		}
		segments = append(segments, ScriptSegment{
			ID:               id,
			Title:            title,
			Type:             string(sec.Type),
			StartTurnIndex:   start,
			EndTurnIndex:     end,
			TargetDurationMs: sec.EstimatedDurationSec * 1000,
		})
	}
	return segments
}

