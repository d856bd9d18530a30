package script

import "github.com/apresai/koreanpodcast/internal/interjection"

// StylePresetNames returns all valid style preset values.
func StylePresetNames() []string {
	return []string{"NEWS", "FRIENDLY", "DEEPDIVE"}
}

// IsValidStylePreset returns true if preset is one of the recognized values.
func IsValidStylePreset(preset string) bool {
	for _, p := range StylePresetNames() {
		if p == preset {
			return true
		}
	}
	return false
}

// SentenceLengthCeiling returns the per-preset character ceiling before a
// turn's rawText must be split at a sentence or clause boundary.
func SentenceLengthCeiling(preset interjection.StylePreset) int {
	if preset == interjection.PresetDeepDive {
		return 30
	}
	return 25
}

// styleDirective returns the structural prompt section fed to the LLM
// generator's system prompt for a given style preset.
func styleDirective(preset interjection.StylePreset) string {
	directives := map[interjection.StylePreset]string{
		interjection.PresetNews: `구성: 뉴스 브리핑 형식 — 단단하고 사실 중심, 하나의 이야기를 깊이 있게 다룬다.
(1) 헤드라인 — 무슨 일이 있었는지 명확하고 간결하게, (2) 배경 — 왜 중요한지,
(3) 사실관계 — 핵심 수치와 관계자 발언, (4) 분석 — 무엇을 의미하는지, 누가 영향을 받는지,
(5) 다음 전망 — 앞으로 지켜볼 지점. 하나의 이야기에만 집중하고 곁가지로 새지 않는다.`,

		interjection.PresetFriendly: `구성: 캐주얼한 대화 — 자연스럽게 소재를 주고받으며, 곁가지로 새기도 하고 다시 돌아오기도 한다.
딱딱한 세그먼트 구분 없이 호기심을 따라가는 흐름. 카페에서 친한 친구 둘이 나누는 대화를 엿듣는 느낌.`,

		interjection.PresetDeepDive: `구성: 탐구형 딥다이브 — 사건을 하나씩 쌓아 올리며 증거를 층층이 제시하고 결론으로 수렴한다.
핵심 질문이나 미스터리로 시작해 증거를 한 겹씩 펼쳐 보인다. 각 "챕터"가 새로운 측면을 드러내고,
호스트들이 실시간으로 반응하며 긴장을 쌓아간다.`,
	}
	if d, ok := directives[preset]; ok {
		return d
	}
	return directives[interjection.PresetFriendly]
}
