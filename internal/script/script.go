package script

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/apresai/koreanpodcast/internal/interjection"
	"github.com/apresai/koreanpodcast/internal/outline"
)

// Mode selects which scriptwriter implementation produces the draft.
// Both modes share the same ScriptDraft output contract.
type Mode string

const (
	ModeTemplate Mode = "template"
	ModeLLM      Mode = "llm"
)

// GenerateOptions parameterizes a single scriptwriter run.
type GenerateOptions struct {
	Preset       interjection.StylePreset
	BanterLevel  int
	SpeakerNames []string // [HOST_A name, HOST_B name]; defaults to persona names
	Mode         Mode
	Model        string // LLM model id, only consulted when Mode == ModeLLM
	APIKey       string // optional per-request override
	MaxRetries   int    // LLM validator retry budget, default 2

	// PriorComplaints carries the previous QA/validator failure list back
	// into the prompt when the regeneration controller re-enters this
	// stage with regenerate_script.
	PriorComplaints []string
}

// Generator turns a ContentOutline into a ScriptDraft.
type Generator interface {
	Generate(ctx context.Context, o *outline.ContentOutline, opts GenerateOptions) (*ScriptDraft, error)
}

// NewGenerator returns the Generator for opts.Mode. Template mode is the
// primary, fully deterministic path; LLM mode is an opt-in fallback that
// calls out to Claude.
func NewGenerator(opts GenerateOptions) (Generator, error) {
	switch opts.Mode {
	case "", ModeTemplate:
		return NewTemplateGenerator(nil), nil
	case ModeLLM:
		return NewClaudeGenerator(opts.Model, opts.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown scriptwriter mode %q: must be %q or %q", opts.Mode, ModeTemplate, ModeLLM)
	}
}

// newTurnID generates a stable, time-sortable turn identifier.
func newTurnID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return fmt.Sprintf("turn-%d", time.Now().UnixNano())
	}
	return "turn_" + id.String()
}

func newSegmentID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return fmt.Sprintf("segment-%d", time.Now().UnixNano())
	}
	return "segment_" + id.String()
}

// SaveScript writes an EnrichedScript as indented JSON, the §6 "Script
// JSON" artifact.
func SaveScript(s *EnrichedScript, path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal script: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write script to %s: %w", path, err)
	}
	return nil
}

// LoadScript reads back an EnrichedScript saved by SaveScript, used by the
// CLI's --from-script resume path.
func LoadScript(path string) (*EnrichedScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script from %s: %w", path, err)
	}
	var s EnrichedScript
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script from %s: %w", path, err)
	}
	if len(s.Turns) == 0 {
		return nil, fmt.Errorf("script %s has no turns", path)
	}
	return &s, nil
}

// ModelDisplayName returns a human-readable model name for verbose output.
func ModelDisplayName(model string) string {
	names := map[string]string{
		"haiku":  "claude-haiku-4-5-20251001",
		"sonnet": "claude-sonnet-4-5-20250929",
	}
	if name, ok := names[model]; ok {
		return name
	}
	if model == "" {
		return "template"
	}
	return model
}
