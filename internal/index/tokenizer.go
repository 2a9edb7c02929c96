package index

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	// asciiRunPattern captures runs of latin letters and digits, so
	// course names like "C프로그래밍" yield "c" alongside the Korean
	// fragments.
	asciiRunPattern = regexp.MustCompile(`[a-z0-9]+`)

	// particleSplitPattern cuts Korean text on common connective
	// particles and on anything outside the Hangul syllable block.
	// Splitting on bare particle substrings is intentionally naive:
	// "자료구조및실습" becomes "자료구조" and "실습" without a
	// morphological analyzer.
	particleSplitPattern = regexp.MustCompile(`및|와|과|의|을|를|이|가|에|으로|부터|까지|[^가-힣]+`)
)

// ExtractKeywords normalizes text to NFC lowercase and returns its
// searchable fragments: every latin/digit run, plus every Hangul
// fragment of two or more syllables left after particle splitting.
// Order is deterministic for a given input.
func ExtractKeywords(text string) []string {
	normalized := strings.ToLower(norm.NFC.String(text))

	keywords := asciiRunPattern.FindAllString(normalized, -1)
	for _, fragment := range particleSplitPattern.Split(normalized, -1) {
		if utf8.RuneCountInString(fragment) >= 2 {
			keywords = append(keywords, fragment)
		}
	}
	return keywords
}

const weekdayRunes = "월화수목금토일"

// ExtractWeekdays returns the distinct weekday characters appearing in
// a schedule string such as "월수13:00-14:30", in order of first
// appearance.
func ExtractWeekdays(schedule string) []string {
	var days []string
	seen := make(map[rune]bool, 7)
	for _, r := range schedule {
		if strings.ContainsRune(weekdayRunes, r) && !seen[r] {
			seen[r] = true
			days = append(days, string(r))
		}
	}
	return days
}
