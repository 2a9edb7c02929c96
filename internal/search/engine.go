package search

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/sejong-careerpath/coursebot-go/internal/catalog"
	"github.com/sejong-careerpath/coursebot-go/internal/index"
	"github.com/sejong-careerpath/coursebot-go/internal/logger"
	"github.com/sejong-careerpath/coursebot-go/internal/metrics"
	"github.com/sejong-careerpath/coursebot-go/internal/sliceutil"
	"github.com/sejong-careerpath/coursebot-go/internal/stringutil"
)

// maxResults caps how many ranked records a search returns.
const maxResults = 30

// minCodeQueryLen is the shortest numeric keyword treated as a course
// code prefix.
const minCodeQueryLen = 3

// stopWords are query fillers that never identify a course.
var stopWords = map[string]bool{
	"있어": true, "알려": true, "알려줘": true, "뭐": true, "어디": true,
	"언제": true, "누구": true, "교수": true, "선생": true, "과목": true,
}

// typeAliases maps long-form course types to the short codes the
// catalog uses.
var typeAliases = map[string]string{
	"전필": "전필", "전선": "전선", "교필": "교필", "교선": "교선",
	"전공필수": "전필", "전공선택": "전선", "교양필수": "교필", "교양선택": "교선",
}

// dayWords lists weekday words, matched as substrings of the raw
// query, with the single characters the day index is keyed by. Order
// is fixed so day lookups are deterministic.
var dayWords = []struct {
	word string
	day  string
}{
	{"월요일", "월"}, {"화요일", "화"}, {"수요일", "수"}, {"목요일", "목"},
	{"금요일", "금"}, {"토요일", "토"}, {"일요일", "일"},
}

// Result is the outcome of one search: the ranked records plus the
// query analysis that produced them.
type Result struct {
	Query    string
	Intent   Intent
	Keywords []string
	Records  []catalog.CourseRecord
	Score    float64
}

// Empty reports whether the search matched nothing. An empty result is
// a valid outcome, not an error.
func (r *Result) Empty() bool {
	return len(r.Records) == 0
}

// Engine runs searches against the loaded course snapshot.
type Engine struct {
	loader  *index.Loader
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewEngine creates a search engine backed by the given loader.
func NewEngine(loader *index.Loader, log *logger.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		loader:  loader,
		log:     log.WithModule("search"),
		metrics: m,
	}
}

// Search analyzes the query, consults all five indices concurrently
// and returns records ranked by how many indices matched each one.
// A catalog that cannot be loaded is the only error condition; a query
// matching nothing returns an empty Result.
func (e *Engine) Search(ctx context.Context, query string) (*Result, error) {
	start := time.Now()
	intent := ClassifyIntent(query)

	snapshot, err := e.loader.Load(ctx)
	if err != nil {
		e.metrics.RecordSearch(string(intent), "error", time.Since(start).Seconds())
		return nil, err
	}

	keywords := QueryKeywords(query)
	result := &Result{
		Query:    query,
		Intent:   intent,
		Keywords: keywords,
	}

	records := e.lookupAll(ctx, snapshot.Index, query, keywords)
	result.Records = records
	if len(records) > 0 {
		result.Score = 1.0
	}

	outcome := "hit"
	if result.Empty() {
		outcome = "empty"
	}
	e.metrics.RecordSearch(string(intent), outcome, time.Since(start).Seconds())
	e.log.WithFields(map[string]any{
		"intent":   string(intent),
		"keywords": keywords,
		"matches":  len(records),
	}).Debug("search completed")
	return result, nil
}

// QueryKeywords extracts searchable keywords from a raw query,
// dropping stop words. Unlike index keys, single-character latin runs
// survive so queries like "C 수업" still reach the name index.
func QueryKeywords(query string) []string {
	var keywords []string
	for _, keyword := range index.ExtractKeywords(query) {
		if !stopWords[keyword] {
			keywords = append(keywords, keyword)
		}
	}
	return sliceutil.Deduplicate(keywords, func(k string) string { return k })
}

// lookupAll fans out to the five indices, dedupes each index's hits by
// record identity and merges them by hit count. Lookups are pure map
// reads on an immutable index, so the goroutines share it freely.
func (e *Engine) lookupAll(ctx context.Context, ix *index.Index, query string, keywords []string) []catalog.CourseRecord {
	normalized := strings.ToLower(norm.NFC.String(strings.TrimSpace(query)))

	var byName, byProfessor, byType, byDay, byCode []catalog.CourseRecord
	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		byName = lookupNames(ix, normalized, keywords)
		return nil
	})
	group.Go(func() error {
		byProfessor = lookupProfessors(ix, keywords)
		return nil
	})
	group.Go(func() error {
		byType = lookupTypes(ix, keywords)
		return nil
	})
	group.Go(func() error {
		byDay = lookupDays(ix, normalized)
		return nil
	})
	group.Go(func() error {
		byCode = lookupCodes(ix, keywords)
		return nil
	})
	// The lookups never fail; Wait only synchronizes them.
	_ = group.Wait()

	return mergeRanked(byName, byProfessor, byType, byDay, byCode)
}

func lookupNames(ix *index.Index, normalizedQuery string, keywords []string) []catalog.CourseRecord {
	keys := append([]string{normalizedQuery}, keywords...)

	var hits []catalog.CourseRecord
	for _, key := range sliceutil.Deduplicate(keys, func(k string) string { return k }) {
		hits = append(hits, ix.LookupName(key)...)
	}
	return dedupeRecords(hits)
}

func lookupProfessors(ix *index.Index, keywords []string) []catalog.CourseRecord {
	var hits []catalog.CourseRecord
	for _, keyword := range keywords {
		hits = append(hits, ix.LookupProfessor(keyword)...)
	}
	return dedupeRecords(hits)
}

func lookupTypes(ix *index.Index, keywords []string) []catalog.CourseRecord {
	var hits []catalog.CourseRecord
	for _, keyword := range keywords {
		key := keyword
		if alias, ok := typeAliases[keyword]; ok {
			key = alias
		}
		hits = append(hits, ix.LookupType(key)...)
	}
	return dedupeRecords(hits)
}

// lookupDays scans the raw query rather than the keyword list: "월요일"
// survives extraction, but bare day characters inside phrases like
// "월수 수업" do not.
func lookupDays(ix *index.Index, normalizedQuery string) []catalog.CourseRecord {
	var hits []catalog.CourseRecord
	for _, entry := range dayWords {
		if strings.Contains(normalizedQuery, entry.word) {
			hits = append(hits, ix.LookupDay(entry.day)...)
		}
	}
	return dedupeRecords(hits)
}

func lookupCodes(ix *index.Index, keywords []string) []catalog.CourseRecord {
	var hits []catalog.CourseRecord
	for _, keyword := range keywords {
		if utf8.RuneCountInString(keyword) >= minCodeQueryLen && stringutil.IsNumeric(keyword) {
			hits = append(hits, ix.LookupCode(keyword)...)
		}
	}
	return dedupeRecords(hits)
}

func dedupeRecords(records []catalog.CourseRecord) []catalog.CourseRecord {
	return sliceutil.Deduplicate(records, catalog.CourseRecord.RecordID)
}

// mergeRanked scores each record by the number of index result sets it
// appears in and returns the top records, highest score first. The
// sort is stable over first-appearance order, so ranking is
// deterministic for a given index.
func mergeRanked(resultSets ...[]catalog.CourseRecord) []catalog.CourseRecord {
	scores := make(map[string]int)
	var order []catalog.CourseRecord
	for _, set := range resultSets {
		for _, record := range set {
			id := record.RecordID()
			if scores[id] == 0 {
				order = append(order, record)
			}
			scores[id]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i].RecordID()] > scores[order[j].RecordID()]
	})

	if len(order) > maxResults {
		order = order[:maxResults]
	}
	return order
}
