// Package respond renders search results as Korean markdown: a
// detailed card for a single match, a numbered list for several and a
// guidance message when nothing matched. It is the reply of last
// resort when no LLM provider is available.
package respond

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sejong-careerpath/coursebot-go/internal/catalog"
	"github.com/sejong-careerpath/coursebot-go/internal/search"
)

// maxListItems caps how many matches the list rendering spells out;
// the remainder is summarized as a count.
const maxListItems = 10

// schedulePattern matches a weekday run glued to its start time, e.g.
// "월수13:00".
var schedulePattern = regexp.MustCompile(`([월화수목금토일]+)(\d{2}:\d{2})`)

// FormatSchedule inserts a space between weekday characters and the
// time range ("월수13:00-14:30" becomes "월수 13:00-14:30") and maps an
// empty schedule to "미정".
func FormatSchedule(schedule string) string {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return "미정"
	}
	return schedulePattern.ReplaceAllString(schedule, "$1 $2")
}

// FormatRoom maps an empty room to "미정".
func FormatRoom(room string) string {
	room = strings.TrimSpace(room)
	if room == "" {
		return "미정"
	}
	return room
}

// Generator renders chat replies from search results.
type Generator struct{}

// NewGenerator creates a response generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the markdown reply for a search result.
func (g *Generator) Generate(result *search.Result) string {
	switch len(result.Records) {
	case 0:
		return g.renderNoResults(result.Query)
	case 1:
		return g.renderDetail(result.Records[0])
	default:
		return g.renderList(result.Records)
	}
}

func (g *Generator) renderNoResults(query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\"%s\"에 대한 검색 결과를 찾지 못했어요.\n\n", query)
	b.WriteString("다음과 같이 검색해 보세요:\n")
	b.WriteString("- **과목명**으로 검색: 예) 자료구조, C프로그래밍\n")
	b.WriteString("- **교수님 성함**으로 검색: 예) 김도년 교수님\n")
	b.WriteString("- **요일**로 검색: 예) 월요일 수업\n")
	b.WriteString("- **이수구분**으로 검색: 예) 전공필수 과목\n")
	return b.String()
}

func (g *Generator) renderDetail(record catalog.CourseRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", record.CourseName)
	b.WriteString("| 항목 | 내용 |\n")
	b.WriteString("| --- | --- |\n")

	writeRow := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fmt.Fprintf(&b, "| %s | %s |\n", label, value)
		}
	}

	writeRow("학수번호", record.RecordID())
	writeRow("이수구분", record.CourseType)
	writeRow("학점", record.Credits)
	writeRow("교수님", record.ProfessorName)
	writeRow("강의시간", FormatSchedule(record.Schedule))
	writeRow("강의실", FormatRoom(record.Room))
	writeRow("학년", record.GradeLevel)
	writeRow("강좌유형", record.CourseFormat)
	if record.CrossCredit == "Y" {
		writeRow("학점교류", "가능")
	}
	writeRow("사이버강좌", record.CyberCourse)
	writeRow("유의사항", record.Notes)
	return b.String()
}

func (g *Generator) renderList(records []catalog.CourseRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## 검색 결과 (총 %d개)\n\n", len(records))

	shown := records
	if len(shown) > maxListItems {
		shown = shown[:maxListItems]
	}
	for i, record := range shown {
		fmt.Fprintf(&b, "%d. **%s** (%s)", i+1, record.CourseName, record.RecordID())
		var facets []string
		if record.CourseType != "" {
			facets = append(facets, record.CourseType)
		}
		if record.ProfessorName != "" {
			facets = append(facets, record.ProfessorName)
		}
		facets = append(facets, FormatSchedule(record.Schedule))
		facets = append(facets, FormatRoom(record.Room))
		if record.Credits != "" {
			facets = append(facets, "학점 "+record.Credits)
		}
		fmt.Fprintf(&b, " - %s\n", strings.Join(facets, ", "))
	}

	if remaining := len(records) - maxListItems; remaining > 0 {
		fmt.Fprintf(&b, "\n이 외 %d개의 결과가 더 있어요. 더 구체적인 키워드로 검색해 보세요.\n", remaining)
	}
	b.WriteString("\n특정 과목의 자세한 정보를 보려면 과목명을 다시 검색해주세요.\n")
	return b.String()
}
