package normalizer

// unitReadings maps a unit token (as it appears directly after a number,
// no space) to its Korean reading. Longer keys are matched first by the
// unit rule so "km2" doesn't get shadowed by "km".
var unitReadings = map[string]string{
	"km2": "제곱킬로미터", "km²": "제곱킬로미터",
	"m2": "제곱미터", "m²": "제곱미터", "㎡": "제곱미터",
	"km": "킬로미터",
	"cm": "센티미터",
	"mm": "밀리미터",
	"nm": "나노미터",
	"m":  "미터",
	"평":  "평",

	"kg": "킬로그램",
	"mg": "밀리그램",
	"t":  "톤",
	"g":  "그램",

	"ml": "밀리리터",
	"cc": "씨씨",
	"l":  "리터",
	"L":  "리터",

	"km/h": "시속 킬로미터", "km·h⁻¹": "시속 킬로미터",
	"m/s": "초속 미터", "m·s⁻¹": "초속 미터",
	"mph": "시속 마일",

	"Gbps": "기가비피에스",
	"Mbps": "메가비피에스",
	"GB":   "기가바이트",
	"MB":   "메가바이트",
	"KB":   "킬로바이트",
	"TB":   "테라바이트",
	"PB":   "페타바이트",

	"ms":  "밀리초",
	"sec": "초",
	"min": "분",
	"hr":  "시간",

	"kW": "킬로와트",
	"MW": "메가와트",
	"kHz": "킬로헤르츠",
	"MHz": "메가헤르츠",
	"GHz": "기가헤르츠",
	"Hz":  "헤르츠",
	"V":   "볼트",
	"W":   "와트",
	"A":   "암페어",

	"°C": "도씨",
	"°F": "도파",

	"%":   "퍼센트",
	"px":  "픽셀",
	"dpi": "디피아이",
	"fps": "초당 프레임",
}

// unitOrder lists unit keys from longest to shortest so the unit regex
// alternation prefers the more specific match (e.g. km/h before km).
var unitOrder = []string{
	"km/h", "km·h⁻¹", "m/s", "m·s⁻¹", "mph",
	"km2", "km²", "m2", "m²", "㎡",
	"Gbps", "Mbps", "GB", "MB", "KB", "TB", "PB",
	"kHz", "MHz", "GHz", "Hz", "kW", "MW",
	"°C", "°F",
	"km", "cm", "mm", "nm",
	"kg", "mg",
	"ml", "cc",
	"ms", "sec", "min", "hr",
	"dpi", "fps", "px",
	"V", "W", "A", "t", "g", "m", "L", "l", "평", "%",
}
