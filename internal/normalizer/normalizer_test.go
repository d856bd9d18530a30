package normalizer

import "testing"

func testNormalizer() *Normalizer {
	return New(NewLexicon(GlobalLexiconEntries))
}

func TestNormalize_CurrencyWonLarge(t *testing.T) {
	n := testNormalizer()
	out, tokenMap, _ := n.Normalize("이번 펀딩 규모는 2,400만원입니다.")
	if want := "이천사백만 원"; !contains(out, want) {
		t.Fatalf("expected output to contain %q, got %q", want, out)
	}
	if !hasRule(tokenMap, "currency_won_large") {
		t.Fatalf("expected currency_won_large rule in token map, got %+v", tokenMap)
	}
}

func TestNormalize_Acronym(t *testing.T) {
	n := testNormalizer()
	out, tokenMap, _ := n.Normalize("API 호출 속도를 개선했습니다.")
	if want := "에이피아이"; !contains(out, want) {
		t.Fatalf("expected %q in output, got %q", want, out)
	}
	if !hasRule(tokenMap, "lexicon_lookup") {
		t.Fatalf("expected lexicon_lookup rule applied, got %+v", tokenMap)
	}
}

func TestNormalize_DecimalPercent(t *testing.T) {
	n := testNormalizer()
	out, _, _ := n.Normalize("성장률은 3.14%였습니다.")
	if want := "삼 점 일사 퍼센트"; !contains(out, want) {
		t.Fatalf("expected %q in output, got %q", want, out)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := testNormalizer()
	first, _, _ := n.Normalize("2,400만원과 3.14% API 테스트")
	second, _, _ := n.Normalize(first)
	if first != second {
		t.Fatalf("normalization not idempotent:\nfirst:  %q\nsecond: %q", first, second)
	}
}

func TestNormalize_EmptyString(t *testing.T) {
	n := testNormalizer()
	out, tokenMap, warnings := n.Normalize("")
	if out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
	if len(tokenMap) != 0 || len(warnings) != 0 {
		t.Fatalf("expected no token map or warnings for empty input, got %+v / %+v", tokenMap, warnings)
	}
}

func TestNormalize_OutOfVocabularyWarning(t *testing.T) {
	n := testNormalizer()
	_, _, warnings := n.Normalize("이 제품은 Qwertzuiop 기술을 사용합니다.")
	if !hasWarning(warnings, "Qwertzuiop") {
		t.Fatalf("expected OOV warning for unresolved Latin token, got %+v", warnings)
	}
}

func TestNormalize_UnitMeasure(t *testing.T) {
	n := testNormalizer()
	out, _, _ := n.Normalize("최고 속도는 120km/h였습니다.")
	if want := "시속 킬로미터"; !contains(out, want) {
		t.Fatalf("expected %q in output, got %q", want, out)
	}
}

func TestNumberToKorean_Magnitudes(t *testing.T) {
	cases := map[int64]string{
		0:          "영",
		11:         "십일",
		100:        "백",
		2400:       "이천사백",
		24000000:   "이천사백만",
		100000000:  "일억",
		-5:         "마이너스 오",
	}
	for in, want := range cases {
		if got := NumberToKorean(in); got != want {
			t.Errorf("NumberToKorean(%d) = %q, want %q", in, got, want)
		}
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func hasRule(tokenMap []TokenMapEntry, ruleID string) bool {
	for _, e := range tokenMap {
		if e.Rule == ruleID {
			return true
		}
	}
	return false
}

func hasWarning(warnings []Warning, text string) bool {
	for _, w := range warnings {
		if w.Text == text {
			return true
		}
	}
	return false
}
