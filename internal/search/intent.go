// Package search implements keyword search over the course index:
// query keyword extraction, intent classification, parallel lookups
// across the five indices and hit-count ranking of the merged results.
package search

import "regexp"

// Intent is a coarse classification of what the user is asking about.
// It is attached to results as metadata for response phrasing and
// metrics; it never filters which indices are consulted.
type Intent string

const (
	IntentTime      Intent = "TIME_QUERY"
	IntentProfessor Intent = "PROFESSOR_QUERY"
	IntentType      Intent = "TYPE_QUERY"
	IntentLocation  Intent = "LOCATION_QUERY"
	IntentGeneral   Intent = "GENERAL"
)

// Patterns are checked in declaration order; the first match wins, so
// "월요일 교수님" classifies as a time query.
var intentPatterns = []struct {
	intent  Intent
	pattern *regexp.Regexp
}{
	{IntentTime, regexp.MustCompile(`언제|시간|요일|월요일|화요일|수요일|목요일|금요일|토요일|일요일`)},
	{IntentProfessor, regexp.MustCompile(`교수|선생|강사|님`)},
	{IntentType, regexp.MustCompile(`전필|전선|교필|교선|이수구분|전공필수|전공선택|교양필수|교양선택`)},
	{IntentLocation, regexp.MustCompile(`강의실|장소|어디|교실`)},
}

// ClassifyIntent returns the intent of a raw user query.
func ClassifyIntent(query string) Intent {
	for _, candidate := range intentPatterns {
		if candidate.pattern.MatchString(query) {
			return candidate.intent
		}
	}
	return IntentGeneral
}
