package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sejong-careerpath/coursebot-go/internal/catalog"
	"github.com/sejong-careerpath/coursebot-go/internal/index"
	"github.com/sejong-careerpath/coursebot-go/internal/logger"
	"github.com/sejong-careerpath/coursebot-go/internal/metrics"
)

type stubFetcher struct {
	records []catalog.CourseRecord
	err     error
}

func (f *stubFetcher) Fetch(ctx context.Context) ([]catalog.CourseRecord, error) {
	return f.records, f.err
}

func newTestEngine(t *testing.T, records []catalog.CourseRecord) *Engine {
	t.Helper()
	log := logger.NewWithWriter("error", io.Discard)
	m := metrics.New(prometheus.NewRegistry())
	loader := index.NewLoader(&stubFetcher{records: records}, nil, log, m)
	return NewEngine(loader, log, m)
}

func sampleCatalog() []catalog.CourseRecord {
	return []catalog.CourseRecord{
		{
			CourseCode:    "009908",
			Section:       "001",
			CourseName:    "자료구조및실습",
			CourseType:    "전필",
			Credits:       "3/2/2",
			ProfessorName: "김도년",
			Schedule:      "월수13:00-14:30",
			Room:          "충508",
		},
		{
			CourseCode:    "004310",
			Section:       "001",
			CourseName:    "C프로그래밍",
			CourseType:    "전선",
			Credits:       "3/2/2",
			ProfessorName: "이수정",
			Schedule:      "화목09:00-10:30",
			Room:          "충301",
		},
		{
			CourseCode:    "100200",
			Section:       "002",
			CourseName:    "글쓰기",
			CourseType:    "교필",
			Credits:       "3/3/0",
			ProfessorName: "박민서",
			Schedule:      "금10:00-12:00",
			Room:          "광112",
		},
	}
}

func TestSearchScenario(t *testing.T) {
	engine := newTestEngine(t, sampleCatalog())

	// Each facet of the same record is reachable through its own index.
	tests := []struct {
		query  string
		intent Intent
		wantID string
	}{
		{"자료구조 알려줘", IntentGeneral, "009908-001"},
		{"김도년 교수님 수업", IntentProfessor, "009908-001"},
		{"전공필수 과목 뭐 있어", IntentType, "009908-001"},
		{"009908 과목", IntentGeneral, "009908-001"},
		{"월요일 수업 알려줘", IntentTime, "009908-001"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			result, err := engine.Search(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Search(%q) error = %v", tt.query, err)
			}
			if result.Intent != tt.intent {
				t.Errorf("intent = %v, want %v", result.Intent, tt.intent)
			}
			if result.Empty() {
				t.Fatalf("Search(%q) returned no records", tt.query)
			}
			if got := result.Records[0].RecordID(); got != tt.wantID {
				t.Errorf("top record = %s, want %s", got, tt.wantID)
			}
			if result.Score != 1.0 {
				t.Errorf("score = %v, want 1.0", result.Score)
			}
		})
	}
}

func TestSearchNoMatches(t *testing.T) {
	engine := newTestEngine(t, sampleCatalog())

	result, err := engine.Search(context.Background(), "양자역학 알려줘")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !result.Empty() {
		t.Errorf("Search() returned %d records, want 0", len(result.Records))
	}
	if result.Score != 0.0 {
		t.Errorf("score = %v, want 0.0", result.Score)
	}
}

func TestSearchDayMiss(t *testing.T) {
	engine := newTestEngine(t, []catalog.CourseRecord{
		{
			CourseCode:    "009908",
			Section:       "001",
			CourseName:    "자료구조및실습",
			CourseType:    "전필",
			ProfessorName: "김도년",
			Schedule:      "월수13:00-14:30",
		},
	})

	result, err := engine.Search(context.Background(), "화요일 강의")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !result.Empty() {
		t.Errorf("Search(화요일) matched a 월수 course: %+v", result.Records)
	}
}

func TestSearchRankingByHitCount(t *testing.T) {
	// Both courses are 전필, but only one is taught by 김도년: the
	// two-index match must outrank the one-index match.
	engine := newTestEngine(t, []catalog.CourseRecord{
		{
			CourseCode:    "111111",
			Section:       "001",
			CourseName:    "운영체제",
			CourseType:    "전필",
			ProfessorName: "최윤호",
			Schedule:      "화목13:00-14:30",
		},
		{
			CourseCode:    "009908",
			Section:       "001",
			CourseName:    "자료구조및실습",
			CourseType:    "전필",
			ProfessorName: "김도년",
			Schedule:      "월수13:00-14:30",
		},
	})

	result, err := engine.Search(context.Background(), "김도년 전필")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("Search() returned %d records, want 2", len(result.Records))
	}
	if got := result.Records[0].RecordID(); got != "009908-001" {
		t.Errorf("top record = %s, want 009908-001 (professor+type match)", got)
	}
}

func TestSearchResultCap(t *testing.T) {
	var records []catalog.CourseRecord
	for i := 0; i < 50; i++ {
		records = append(records, catalog.CourseRecord{
			CourseCode: fmt.Sprintf("9%05d", i),
			Section:    "001",
			CourseName: "교양세미나",
			CourseType: "교선",
		})
	}
	engine := newTestEngine(t, records)

	result, err := engine.Search(context.Background(), "교양세미나")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(result.Records) != maxResults {
		t.Errorf("Search() returned %d records, want %d", len(result.Records), maxResults)
	}
}

func TestSearchDeterministic(t *testing.T) {
	engine := newTestEngine(t, sampleCatalog())

	first, err := engine.Search(context.Background(), "전필 수업")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := engine.Search(context.Background(), "전필 수업")
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if !reflect.DeepEqual(again.Records, first.Records) {
			t.Fatalf("Search() order changed between runs")
		}
	}
}

func TestSearchCatalogUnavailable(t *testing.T) {
	log := logger.NewWithWriter("error", io.Discard)
	m := metrics.New(prometheus.NewRegistry())
	fetchErr := fmt.Errorf("%w: upstream 503", catalog.ErrCatalogUnavailable)
	loader := index.NewLoader(&stubFetcher{err: fetchErr}, nil, log, m)
	engine := NewEngine(loader, log, m)

	if _, err := engine.Search(context.Background(), "자료구조"); !errors.Is(err, catalog.ErrCatalogUnavailable) {
		t.Errorf("Search() error = %v, want ErrCatalogUnavailable", err)
	}
}

func TestQueryKeywords(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"자료구조 알려줘", []string{"자료구조"}},
		{"김도년 교수님 수업", []string{"김도년", "교수님", "수업"}},
		{"C 수업", []string{"c", "수업"}},
		{"009908 과목", []string{"009908"}},
		{"뭐 있어", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := QueryKeywords(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("QueryKeywords(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
