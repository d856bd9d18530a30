// Package interjection holds the static reaction/humor vocabulary and the
// stateful chemistry engine that places it across an episode's turns.
package interjection

import "github.com/apresai/koreanpodcast/internal/script"

// Category groups interjections by conversational function.
type Category string

const (
	CategorySurpriseWow     Category = "surprise_wow"
	CategoryApprovalRespect Category = "approval_respect"
	CategoryEmpathy         Category = "empathy"
	CategoryThinking        Category = "thinking"
	CategoryLaughCue        Category = "laugh_cue"
)

// Intensity ranks how strongly an interjection lands.
type Intensity string

const (
	IntensityWeak   Intensity = "weak"
	IntensityMedium Intensity = "medium"
	IntensityStrong Intensity = "strong"
)

// Entry is one library record: an interjection text plus the quota and
// eligibility rules that govern when it may be used.
type Entry struct {
	ID                string
	Text              string
	Category          Category
	Intensity         Intensity
	AllowedSpeakers   []script.Speaker
	MaxUsagePerEpisode int
	MinTurnGap        int
	ForbiddenSections []string
}

func allows(e Entry, speaker script.Speaker) bool {
	for _, s := range e.AllowedSpeakers {
		if s == speaker {
			return true
		}
	}
	return false
}

// maxUsageFor returns the effective per-episode cap, honoring the "맞아요"
// special case (3 instead of the default 2) and the strong-intensity cap
// of 2 regardless of what the entry declares.
func maxUsageFor(e Entry) int {
	if e.Text == "맞아요" {
		return 3
	}
	if e.Intensity == IntensityStrong && e.MaxUsagePerEpisode > 2 {
		return 2
	}
	return e.MaxUsagePerEpisode
}

// Library is the static, read-only table of interjections, strong
// reactions, and forbidden terms consulted by the chemistry engine.
type Library struct {
	Entries          []Entry
	StrongReactions  []StrongReaction
	ForbiddenSlang   []string
}

// StrongReaction is a high-intensity reaction line gated to the mid/late
// part of an episode and capped per preset.
type StrongReaction struct {
	ID       string
	Text     string
	Category Category
}

// ByCategory returns the entries in the given category that speaker is
// allowed to use.
func (lib *Library) ByCategory(cat Category, speaker script.Speaker) []Entry {
	var out []Entry
	for _, e := range lib.Entries {
		if e.Category == cat && allows(e, speaker) {
			out = append(out, e)
		}
	}
	return out
}

// NewDefaultLibrary returns the built-in interjection/strong-reaction/
// forbidden-slang tables.
func NewDefaultLibrary() *Library {
	return &Library{
		Entries:         defaultEntries,
		StrongReactions: defaultStrongReactions,
		ForbiddenSlang:  defaultForbiddenSlang,
	}
}

var bothHosts = []script.Speaker{script.HostA, script.HostB}
var hostBOnly = []script.Speaker{script.HostB}

var defaultEntries = []Entry{
	// surprise_wow
	{ID: "sw_01", Text: "헐", Category: CategorySurpriseWow, Intensity: IntensityMedium, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "sw_02", Text: "와", Category: CategorySurpriseWow, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "sw_03", Text: "진짜요?", Category: CategorySurpriseWow, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "sw_04", Text: "세상에", Category: CategorySurpriseWow, Intensity: IntensityMedium, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "sw_05", Text: "대박", Category: CategorySurpriseWow, Intensity: IntensityStrong, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 4},
	{ID: "sw_06", Text: "이야", Category: CategorySurpriseWow, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "sw_07", Text: "어머", Category: CategorySurpriseWow, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "sw_08", Text: "완전 의외네요", Category: CategorySurpriseWow, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "sw_09", Text: "오 진짜?", Category: CategorySurpriseWow, Intensity: IntensityWeak, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "sw_10", Text: "이게 되네요?", Category: CategorySurpriseWow, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "sw_11", Text: "말도 안 돼요", Category: CategorySurpriseWow, Intensity: IntensityStrong, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 4},
	{ID: "sw_12", Text: "와 이건 몰랐어요", Category: CategorySurpriseWow, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "sw_13", Text: "오호", Category: CategorySurpriseWow, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "sw_14", Text: "어 잠깐만요", Category: CategorySurpriseWow, Intensity: IntensityWeak, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "sw_15", Text: "소름이네요", Category: CategorySurpriseWow, Intensity: IntensityStrong, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 4},

	// approval_respect
	{ID: "ar_01", Text: "맞아요", Category: CategoryApprovalRespect, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 3, MinTurnGap: 1},
	{ID: "ar_02", Text: "그렇죠", Category: CategoryApprovalRespect, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "ar_03", Text: "좋은 지적이에요", Category: CategoryApprovalRespect, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "ar_04", Text: "정리 잘 해주셨네요", Category: CategoryApprovalRespect, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "ar_05", Text: "인정이요", Category: CategoryApprovalRespect, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "ar_06", Text: "역시", Category: CategoryApprovalRespect, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "ar_07", Text: "그 말씀이 맞네요", Category: CategoryApprovalRespect, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "ar_08", Text: "동의해요", Category: CategoryApprovalRespect, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "ar_09", Text: "깔끔하게 설명해주셨어요", Category: CategoryApprovalRespect, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "ar_10", Text: "공감돼요", Category: CategoryApprovalRespect, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "ar_11", Text: "좋네요 그 생각", Category: CategoryApprovalRespect, Intensity: IntensityWeak, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "ar_12", Text: "확실히 그렇네요", Category: CategoryApprovalRespect, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "ar_13", Text: "와 정확하시네요", Category: CategoryApprovalRespect, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "ar_14", Text: "그게 핵심이죠", Category: CategoryApprovalRespect, Intensity: IntensityMedium, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "ar_15", Text: "그럴 만하네요", Category: CategoryApprovalRespect, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},

	// empathy
	{ID: "em_01", Text: "그 마음 알죠", Category: CategoryEmpathy, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "em_02", Text: "저도 그랬어요", Category: CategoryEmpathy, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "em_03", Text: "힘드셨겠어요", Category: CategoryEmpathy, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "em_04", Text: "이해돼요", Category: CategoryEmpathy, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "em_05", Text: "공감이 많이 되네요", Category: CategoryEmpathy, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "em_06", Text: "그렇겠네요", Category: CategoryEmpathy, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "em_07", Text: "저라도 그랬을 것 같아요", Category: CategoryEmpathy, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "em_08", Text: "마음이 짠하네요", Category: CategoryEmpathy, Intensity: IntensityStrong, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 4},
	{ID: "em_09", Text: "많이 답답하셨겠어요", Category: CategoryEmpathy, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "em_10", Text: "그 과정이 쉽지 않았겠어요", Category: CategoryEmpathy, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "em_11", Text: "위로가 되네요", Category: CategoryEmpathy, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "em_12", Text: "저도 비슷한 고민 했었어요", Category: CategoryEmpathy, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "em_13", Text: "충분히 그럴 수 있어요", Category: CategoryEmpathy, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "em_14", Text: "안타깝네요", Category: CategoryEmpathy, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "em_15", Text: "그럴 수도 있겠다 싶어요", Category: CategoryEmpathy, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},

	// thinking
	{ID: "th_01", Text: "음", Category: CategoryThinking, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "th_02", Text: "그러니까요", Category: CategoryThinking, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "th_03", Text: "잠깐 생각해보면", Category: CategoryThinking, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "th_04", Text: "그게 궁금한데요", Category: CategoryThinking, Intensity: IntensityWeak, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "th_05", Text: "흠 그렇다면", Category: CategoryThinking, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "th_06", Text: "곰곰이 생각해보니", Category: CategoryThinking, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "th_07", Text: "그 부분이 헷갈리는데요", Category: CategoryThinking, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "th_08", Text: "잘 이해가 안 되는 게", Category: CategoryThinking, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "th_09", Text: "다시 짚어보면", Category: CategoryThinking, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "th_10", Text: "그럼 이건 어떨까요", Category: CategoryThinking, Intensity: IntensityWeak, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "th_11", Text: "한번 따져보죠", Category: CategoryThinking, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "th_12", Text: "그렇다면 결국", Category: CategoryThinking, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
	{ID: "th_13", Text: "질문이 하나 더 있는데요", Category: CategoryThinking, Intensity: IntensityWeak, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "th_14", Text: "그게 말이 되나 싶어서요", Category: CategoryThinking, Intensity: IntensityMedium, AllowedSpeakers: hostBOnly, MaxUsagePerEpisode: 2, MinTurnGap: 3},
	{ID: "th_15", Text: "잠시만요 정리해볼게요", Category: CategoryThinking, Intensity: IntensityWeak, AllowedSpeakers: bothHosts, MaxUsagePerEpisode: 2, MinTurnGap: 2},
}

var defaultStrongReactions = []StrongReaction{
	{ID: "str_01", Text: "와 이건 진짜 충격적인데요", Category: CategorySurpriseWow},
	{ID: "str_02", Text: "이거는 정말 대박 소식이네요", Category: CategorySurpriseWow},
	{ID: "str_03", Text: "와 소름 돋았어요 방금", Category: CategorySurpriseWow},
	{ID: "str_04", Text: "진짜 이건 예상 못 했어요", Category: CategorySurpriseWow},
	{ID: "str_05", Text: "이 정도면 업계 전체가 흔들릴 일인데요", Category: CategorySurpriseWow},
	{ID: "str_06", Text: "와 이건 진짜 말이 안 되는 수준이에요", Category: CategorySurpriseWow},
}

var defaultForbiddenSlang = []string{
	"레전드", "찐이다", "핵인싸", "개꿀", "ㅇㅈ", "실화냐", "ㅋㅋㅋㅋㅋ",
	"억까", "킹받", "어그로", "빼박", "극혐", "TMI 인정", "팩폭",
	"갑분싸", "병맛", "인싸템", "만렙", "꿀잼", "노잼", "존버",
	"당황스럽", "헐랭", "멘붕", "극대노", "갓생", "핵노잼",
}
