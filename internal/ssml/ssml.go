// Package ssml compiles a ScriptTurn into a provider-scoped SSML fragment:
// pauses, interjection placement, and (Google only) prosody/emphasis
// markup are encoded as XML. PlainText gives the markup-free text used by
// the openai and elevenlabs adapters, which do not accept SSML input.
package ssml

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/apresai/koreanpodcast/internal/script"
)

const interjectionPauseMs = 100

// laughMarkers are the parenthetical cues the template/chemistry stages
// insert into rawText to signal a laugh sound effect. They are stripped
// before synthesis; the corresponding audio comes from audio.InsertLaughs.
var laughMarkers = []string{"피식", "하하", "허허", "껄껄", "큭큭", "풋", "흐흐"}

var laughMarkerRe = regexp.MustCompile(`\((?:` + strings.Join(laughMarkers, "|") + `)\)`)

func stripLaughMarkers(text string) string {
	return strings.TrimSpace(laughMarkerRe.ReplaceAllString(text, ""))
}

func rateFor(pace script.Pace) string {
	switch pace {
	case script.PaceSlow:
		return "0.9"
	case script.PaceFast:
		return "1.1"
	default:
		return "1.0"
	}
}

func pauseElement(ms int) string {
	if ms <= 0 {
		return ""
	}
	return fmt.Sprintf(`<break time="%dms"/>`, ms)
}

func interjectionElement(turn script.ScriptTurn, position script.InterjectionPosition) string {
	if turn.Interjection == nil || turn.Interjection.Position != position {
		return ""
	}
	return turn.Interjection.Text + pauseElement(interjectionPauseMs)
}

func emphasize(body string, words []string) string {
	for _, w := range words {
		if w == "" {
			continue
		}
		body = strings.ReplaceAll(body, w, fmt.Sprintf(`<emphasis level="strong">%s</emphasis>`, w))
	}
	return body
}

// Compile renders the provider-scoped SSML fragment for a turn. provider is
// one of "google", "openai", "elevenlabs", "azure"; only "google" gets the
// prosody and emphasis elements. Other providers get the same <speak>
// wrapper, breaks, and interjections around a plain body. The azure
// adapter sends this fragment; openai and elevenlabs use PlainText.
func Compile(turn script.ScriptTurn, provider string) string {
	body := stripLaughMarkers(turn.NormalizedText)
	if body == "" {
		body = stripLaughMarkers(turn.RawText)
	}

	var sb strings.Builder
	sb.WriteString("<speak>")
	sb.WriteString(pauseElement(turn.PauseMsBefore))
	sb.WriteString(interjectionElement(turn, script.InterjectionStart))

	if provider == "google" {
		fmt.Fprintf(&sb, `<prosody rate="%s">%s</prosody>`, rateFor(turn.Pace), emphasize(body, turn.EmphasisWords))
	} else {
		sb.WriteString(body)
	}

	sb.WriteString(interjectionElement(turn, script.InterjectionEnd))
	sb.WriteString(pauseElement(turn.PauseMsAfter))
	sb.WriteString("</speak>")
	return sb.String()
}

// PlainText returns the laugh-marker-stripped text a non-SSML provider
// (openai, elevenlabs) synthesizes, with no markup at all.
func PlainText(turn script.ScriptTurn) string {
	body := stripLaughMarkers(turn.NormalizedText)
	if body == "" {
		body = stripLaughMarkers(turn.RawText)
	}
	if turn.Interjection != nil {
		if turn.Interjection.Position == script.InterjectionStart {
			body = turn.Interjection.Text + " " + body
		} else {
			body = body + " " + turn.Interjection.Text
		}
	}
	return body
}
