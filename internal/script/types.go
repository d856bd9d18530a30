// Package script turns a content outline into a two-host dialogue: the
// ScriptTurn/EnrichedScript record types, the template and LLM generators
// that produce them, and the validator that enforces voice rules.
package script

// Speaker identifies who is talking in a ScriptTurn.
type Speaker string

const (
	HostA Speaker = "HOST_A"
	HostB Speaker = "HOST_B"
	Guest Speaker = "GUEST"
)

// Intent classifies what a turn is doing conversationally.
type Intent string

const (
	IntentOpenerHook    Intent = "opener_hook"
	IntentIntroduceTopic Intent = "introduce_topic"
	IntentExplainPoint  Intent = "explain_point"
	IntentAskQuestion   Intent = "ask_question"
	IntentGiveExample   Intent = "give_example"
	IntentReact         Intent = "react"
	IntentSummarize     Intent = "summarize"
	IntentTransition    Intent = "transition"
	IntentClarify       Intent = "clarify"
	IntentCounter       Intent = "counter"
	IntentCallbackJoke  Intent = "callback_joke"
	IntentClosing       Intent = "closing"
)

// Pace controls the prosody rate applied at SSML compilation.
type Pace string

const (
	PaceSlow   Pace = "slow"
	PaceNormal Pace = "normal"
	PaceFast   Pace = "fast"
)

// InterjectionPosition marks whether an interjection sits before or after
// a turn's body text.
type InterjectionPosition string

const (
	InterjectionStart InterjectionPosition = "start"
	InterjectionEnd   InterjectionPosition = "end"
)

// TurnInterjection is the enrichment payload the chemistry engine attaches
// to a turn. It stores the resolved text/category rather than a reference
// to the library entry, since an EnrichedScript must be self-contained and
// JSON-serializable without the library alongside it.
type TurnInterjection struct {
	Text     string               `json:"text"`
	Category string               `json:"category"`
	Position InterjectionPosition `json:"position"`
}

// NormalizationLogEntry records one rewrite the normalizer applied to a
// turn's rawText, mirroring normalizer.TokenMapEntry but scoped per-turn.
type NormalizationLogEntry struct {
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
	Rule       string `json:"rule"`
}

// ScriptTurn is the atomic dialogue unit: one contiguous utterance by one
// speaker.
type ScriptTurn struct {
	ID           string  `json:"id"`
	Index        int     `json:"index"`
	Speaker      Speaker `json:"speaker"`
	RawText      string  `json:"rawText"`
	NormalizedText string `json:"normalizedText"`
	SSML         string  `json:"ssml,omitempty"`
	SectionID    string  `json:"sectionId"`
	Intent       Intent  `json:"intent"`
	EmphasisWords []string `json:"emphasisWords,omitempty"`
	Pace         Pace    `json:"pace"`
	PauseMsBefore int    `json:"pauseMsBefore"`
	PauseMsAfter  int    `json:"pauseMsAfter"`
	EstimatedDurationMs int `json:"estimatedDurationMs"`

	Interjection     *TurnInterjection `json:"interjection,omitempty"`
	LaughCueID       string            `json:"laughCueId,omitempty"`
	HumorTag         string            `json:"humorTag,omitempty"`
	IsStrongReaction bool              `json:"isStrongReaction"`

	NormalizationLog []NormalizationLogEntry `json:"normalizationLog,omitempty"`
	LexiconHits      []string                `json:"lexiconHits,omitempty"`
	RetryCount       int                     `json:"retryCount"`
}

// ScriptSegment is a contiguous range of turns inherited from an outline
// section.
type ScriptSegment struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Type              string  `json:"type"`
	StartTurnIndex    int     `json:"startTurnIndex"`
	EndTurnIndex      int     `json:"endTurnIndex"`
	TargetDurationMs  int     `json:"targetDurationMs"`
	ActualDurationMs  int     `json:"actualDurationMs"`
}

// ScriptDraft is the turn sequence before chemistry enrichment.
type ScriptDraft struct {
	EpisodeTitle string          `json:"episodeTitle"`
	Turns        []ScriptTurn    `json:"turns"`
	Segments     []ScriptSegment `json:"segments"`
}

// LaughCueType is the intensity of an inserted laugh clip.
type LaughCueType string

const (
	LightChuckle LaughCueType = "light_chuckle"
	SoftLaugh    LaughCueType = "soft_laugh"
	BigLaugh     LaughCueType = "big_laugh"
)

// LaughCue schedules a laugh clip mixed in after a given turn.
type LaughCue struct {
	ID                 string       `json:"id"`
	Type               LaughCueType `json:"type"`
	InsertAfterTurnIndex int        `json:"insertAfterTurnIndex"`
	DurationMs         int          `json:"durationMs"`
	VolumeOffsetDb      float64     `json:"volumeOffsetDb"`
}

// HumorCue marks a turn as carrying a humor tag, optionally referencing an
// earlier humor turn as a callback.
type HumorCue struct {
	Type               string `json:"type"`
	TargetTurnIndex    int    `json:"targetTurnIndex"`
	CallbackTurnIndex  int    `json:"callbackTurnIndex,omitempty"`
}

// CallbackRef links a later callback joke back to the turn it references.
type CallbackRef struct {
	SourceTurnIndex int    `json:"sourceTurnIndex"`
	TargetTurnIndex int    `json:"targetTurnIndex"`
	JokeExcerpt     string `json:"jokeExcerpt"`
}

// EnrichedScript is a ScriptDraft plus the chemistry engine's derived
// tables.
type EnrichedScript struct {
	EpisodeTitle       string          `json:"episodeTitle"`
	Turns              []ScriptTurn    `json:"turns"`
	Segments           []ScriptSegment `json:"segments"`
	HumorCues          []HumorCue      `json:"humorCues"`
	LaughCues          []LaughCue      `json:"laughCues"`
	InterjectionUsage  map[string]int  `json:"interjectionUsage"`
	StrongReactionCount int            `json:"strongReactionCount"`
	CallbackRefs       []CallbackRef   `json:"callbackRefs"`
}
