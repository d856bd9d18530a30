package script

import (
	"fmt"
	"strings"

	"github.com/apresai/koreanpodcast/internal/interjection"
	"github.com/apresai/koreanpodcast/internal/outline"
)

// voiceRules are the per-host constraints encoded into the LLM system
// prompt. Both hosts share the same rule set; persona fields (background,
// speaking style, catchphrases) differentiate the two voices.
var voiceRules = []string{
	"한국어 구어체로만 말한다 — 문어체 어미(-습니다, -입니다)는 인트로/아웃트로를 제외하고 쓰지 않는다.",
	"한 턴은 1~3문장을 넘기지 않는다.",
	"상대방의 이름을 매 턴 부르지 않는다 — 자연스러운 대화는 이름을 자주 안 부른다.",
	"숫자를 말할 때는 출처에 있는 숫자만 인용한다 — 지어내지 않는다.",
	"전문 용어를 쓸 때는 바로 다음 문장에서 쉬운 말로 한 번 풀어준다.",
	"느낌표는 꼭 필요한 곳에서만 쓴다.",
	"인터넷 밈/신조어는 절대 쓰지 않는다.",
	"같은 리액션 표현을 반복해서 쓰지 않는다 — 쓰면 에피소드 전체에서 다양하게 분산시킨다.",
	"강한 리액션(탄성, 충격 표현)은 오프닝 90초 이후에만 등장한다.",
	"주제를 바꿀 때는 반드시 자연스러운 전환 문장을 넣는다.",
	"상대방의 말을 끊거나 무시하지 않는다 — 이어받는 구조로 말한다.",
	"의견이 갈릴 때는 근거를 먼저 말하고 나서 주장한다.",
	"농담은 에피소드 전체에서 과하게 남발하지 않는다.",
	"침묵/쉼을 표현하고 싶을 때는 '음', '그러니까요' 같은 짧은 필러만 쓴다.",
	"민감한 주제(정치적 편향, 의료 조언 확정)는 단정짓지 않고 '~라고 알려져 있다' 식으로 유보한다.",
	"광고/홍보처럼 들리는 문장은 쓰지 않는다.",
	"청취자에게 직접 말을 거는 문장은 오프닝과 클로징에서만 쓴다.",
	"한 턴 안에서 화제를 두 개 이상 섞지 않는다.",
	"에피소드 후반부로 갈수록 앞에서 나온 얘기를 한 번씩 가볍게 되짚는다.",
	"마무리 턴에서는 청취자에게 감사 인사를 포함한다.",
}

// buildSystemPrompt renders the host personalities, voice rules,
// interjection/humor budgets, and output-format contract the LLM
// generator's validator later checks against.
func buildSystemPrompt(a, b Persona, preset interjection.StylePreset, banterLevel int) string {
	var sb strings.Builder
	sb.WriteString("당신은 한국어 2인 호스트 팟캐스트 대본을 쓰는 작가입니다.\n\n")
	fmt.Fprintf(&sb, "HOST_A (%s): %s\n역할: %s\n말투: %s\n자주 쓰는 표현: %s\n\n", a.Name, a.Background, a.Role, a.SpeakingStyle, a.Catchphrases)
	fmt.Fprintf(&sb, "HOST_B (%s): %s\n역할: %s\n말투: %s\n자주 쓰는 표현: %s\n\n", b.Name, b.Background, b.Role, b.SpeakingStyle, b.Catchphrases)
	sb.WriteString(a.Independence + "\n" + b.Independence + "\n\n")
	sb.WriteString(styleDirective(preset))
	fmt.Fprintf(&sb, "\n\n반응/유머 밀도: banterLevel=%d (0=거의 없음, 3=활발함).\n\n", banterLevel)

	sb.WriteString("말투 규칙 (반드시 지킬 것):\n")
	for i, rule := range voiceRules {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, rule)
	}

	sb.WriteString("\n금지어 (절대 사용 금지): ")
	sb.WriteString(strings.Join(interjection.NewDefaultLibrary().ForbiddenSlang, ", "))
	sb.WriteString("\n\n")

	sb.WriteString(`출력 형식:
각 줄은 "[A] 대사" 또는 "[B] 대사" 형식으로만 작성한다. 그 외의 텍스트(설명, 마크다운, 번호)는 출력하지 않는다.
강한 리액션 턴 앞에는 {{STRONG}} 마커를 붙인다 (예: [B] {{STRONG}} 와 이건 진짜 몰랐던 얘기네요).
해당 턴 뒤에 웃음이 와야 하면 {{LAUGH:light|soft|big}} 마커를 줄 끝에 붙인다.
슬라이드에 띄울 시각 자료가 필요한 지점에는 별도 줄에 [[슬라이드: 설명]] 형식으로 적는다.
`)
	return sb.String()
}

// buildUserPrompt renders the outline, key facts, technical terms, and
// extracted numbers the model must ground the script in. complaints, when
// non-empty, carries the previous attempt's validator failures back in for
// a regenerate_script retry.
func buildUserPrompt(o *outline.ContentOutline, complaints []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "에피소드 제목: %s\n목표 길이: %d초\n\n", o.EpisodeTitle, o.TotalEstimatedDurationSec)

	sb.WriteString("구성:\n")
	for _, sec := range o.Sections {
		fmt.Fprintf(&sb, "- [%s] (%d초) %s\n", sec.Type, sec.EstimatedDurationSec, strings.Join(sec.Keypoints, " / "))
	}

	if len(o.KeyFacts) > 0 {
		sb.WriteString("\n핵심 사실:\n")
		for _, f := range o.KeyFacts {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
	}

	if len(o.TechnicalTerms) > 0 {
		fmt.Fprintf(&sb, "\n전문 용어: %s\n", strings.Join(o.TechnicalTerms, ", "))
	}

	if len(o.ExtractedNumbers) > 0 {
		sb.WriteString("\n인용 가능한 숫자 (출처 문맥 포함):\n")
		for _, n := range o.ExtractedNumbers {
			fmt.Fprintf(&sb, "- %s (맥락: %s)\n", n.Raw, n.Context)
		}
	}

	if len(complaints) > 0 {
		sb.WriteString("\n이전 초안에서 지적된 문제 — 이번에는 반드시 고칠 것:\n")
		for _, c := range complaints {
			fmt.Fprintf(&sb, "- %s\n", c)
		}
	}

	return sb.String()
}
