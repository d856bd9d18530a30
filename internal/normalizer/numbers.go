package normalizer

import (
	"strconv"
	"strings"
)

var digitWords = [10]string{"영", "일", "이", "삼", "사", "오", "육", "칠", "팔", "구"}
var placeWords = [4]string{"", "십", "백", "천"}
var magnitudeWords = [4]string{"", "만", "억", "조"}

// koreanChunk converts a number in [0, 9999] into its Korean reading,
// omitting the digit before 십/백/천 when it is 일 (e.g. 11 -> 십일, not 일십일).
func koreanChunk(n int) string {
	if n == 0 {
		return ""
	}
	var b strings.Builder
	for place := 3; place >= 0; place-- {
		div := pow10(place)
		digit := (n / div) % 10
		if digit == 0 {
			continue
		}
		if place > 0 {
			if digit != 1 {
				b.WriteString(digitWords[digit])
			}
			b.WriteString(placeWords[place])
		} else {
			b.WriteString(digitWords[digit])
		}
	}
	return b.String()
}

func pow10(n int) int {
	r := 1
	for i := 0; i < n; i++ {
		r *= 10
	}
	return r
}

// NumberToKorean converts an integer into its spelled-out Korean reading,
// splitting into 4-digit chunks assigned 만/억/조 magnitudes. Negative
// values are read with a "마이너스 " prefix.
func NumberToKorean(n int64) string {
	if n == 0 {
		return "영"
	}
	neg := n < 0
	if neg {
		n = -n
	}

	var chunks []int
	for n > 0 {
		chunks = append(chunks, int(n%10000))
		n /= 10000
	}

	var parts []string
	for i := len(chunks) - 1; i >= 0; i-- {
		if chunks[i] == 0 {
			continue
		}
		chunkStr := koreanChunk(chunks[i])
		if chunkStr == "" && i > 0 {
			// chunk value was a pure power-of-10 handled above; skip
			continue
		}
		parts = append(parts, chunkStr+magnitudeWords[i])
	}

	result := strings.Join(parts, "")
	if neg {
		result = "마이너스 " + result
	}
	return result
}

// NumberToKoreanString parses a decimal digit string and converts it.
// Commas are removed first. Returns ok=false if s does not parse as a
// 64-bit integer; a leading minus sign is accepted.
func NumberToKoreanString(s string) (string, bool) {
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return "", false
	}
	return NumberToKorean(n), true
}

// DecimalToKorean converts "N.M" into "N 점 M" with each side spelled out
// digit-by-digit for the fractional part (matching how decimals are read
// aloud), e.g. "3.14" -> "삼 점 일사".
func DecimalToKorean(intPart, fracPart string) string {
	intKo, _ := NumberToKoreanString(intPart)
	var fb strings.Builder
	for _, r := range fracPart {
		if r < '0' || r > '9' {
			continue
		}
		fb.WriteString(digitWords[r-'0'])
	}
	return intKo + " 점 " + fb.String()
}

// DigitsToKoreanSpellout reads a digit string out digit-by-digit (used for
// phone-number-like or ID-like numeric strings where positional magnitude
// readings would be wrong).
func DigitsToKoreanSpellout(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(digitWords[r-'0'])
	}
	return b.String()
}
