// Package index builds and serves the inverted keyword indices that
// back course search: name fragments, professor names, course types,
// weekday characters and course-code prefixes each map to the records
// that carry them.
package index

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/sejong-careerpath/coursebot-go/internal/catalog"
)

// minCodePrefixLen is the shortest course-code prefix worth indexing;
// anything shorter matches far too much of the catalog.
const minCodePrefixLen = 3

// Index holds the five keyword maps. Values are the full records so a
// lookup needs no second pass over the catalog.
type Index struct {
	Name      map[string][]catalog.CourseRecord
	Professor map[string][]catalog.CourseRecord
	Type      map[string][]catalog.CourseRecord
	Day       map[string][]catalog.CourseRecord
	Code      map[string][]catalog.CourseRecord
}

// Build constructs all five indices from the given records. The maps
// are built concurrently, one goroutine per index, each reading the
// shared record slice without mutation.
func Build(ctx context.Context, records []catalog.CourseRecord) (*Index, error) {
	ix := &Index{
		Name:      make(map[string][]catalog.CourseRecord),
		Professor: make(map[string][]catalog.CourseRecord),
		Type:      make(map[string][]catalog.CourseRecord),
		Day:       make(map[string][]catalog.CourseRecord),
		Code:      make(map[string][]catalog.CourseRecord),
	}

	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		buildNameIndex(ix.Name, records)
		return nil
	})
	group.Go(func() error {
		buildProfessorIndex(ix.Professor, records)
		return nil
	})
	group.Go(func() error {
		buildTypeIndex(ix.Type, records)
		return nil
	})
	group.Go(func() error {
		buildDayIndex(ix.Day, records)
		return nil
	})
	group.Go(func() error {
		buildCodeIndex(ix.Code, records)
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return ix, nil
}

func buildNameIndex(m map[string][]catalog.CourseRecord, records []catalog.CourseRecord) {
	for _, record := range records {
		if !record.HasName() {
			continue
		}
		full := strings.ToLower(norm.NFC.String(record.CourseName))

		seen := map[string]bool{full: true}
		m[full] = append(m[full], record)
		for _, keyword := range ExtractKeywords(record.CourseName) {
			if utf8.RuneCountInString(keyword) < 2 || seen[keyword] {
				continue
			}
			seen[keyword] = true
			m[keyword] = append(m[keyword], record)
		}
	}
}

func buildProfessorIndex(m map[string][]catalog.CourseRecord, records []catalog.CourseRecord) {
	for _, record := range records {
		professor := strings.ToLower(strings.TrimSpace(record.ProfessorName))
		if professor == "" {
			continue
		}
		m[professor] = append(m[professor], record)
	}
}

func buildTypeIndex(m map[string][]catalog.CourseRecord, records []catalog.CourseRecord) {
	for _, record := range records {
		courseType := strings.ToLower(strings.TrimSpace(record.CourseType))
		if courseType == "" {
			continue
		}
		m[courseType] = append(m[courseType], record)
	}
}

func buildDayIndex(m map[string][]catalog.CourseRecord, records []catalog.CourseRecord) {
	for _, record := range records {
		for _, day := range ExtractWeekdays(record.Schedule) {
			m[day] = append(m[day], record)
		}
	}
}

func buildCodeIndex(m map[string][]catalog.CourseRecord, records []catalog.CourseRecord) {
	for _, record := range records {
		code := strings.TrimSpace(record.CourseCode)
		if code == "" {
			continue
		}
		seen := map[string]bool{code: true}
		m[code] = append(m[code], record)
		for i := minCodePrefixLen; i < len(code); i++ {
			prefix := code[:i]
			if !seen[prefix] {
				seen[prefix] = true
				m[prefix] = append(m[prefix], record)
			}
		}
	}
}

// Entries returns the total number of keys across all five indices.
func (ix *Index) Entries() int {
	return len(ix.Name) + len(ix.Professor) + len(ix.Type) + len(ix.Day) + len(ix.Code)
}

// LookupName returns records indexed under the exact name key.
func (ix *Index) LookupName(key string) []catalog.CourseRecord {
	return ix.Name[key]
}

// LookupProfessor returns records taught by the given professor key.
func (ix *Index) LookupProfessor(key string) []catalog.CourseRecord {
	return ix.Professor[key]
}

// LookupType returns records with the given course-type key.
func (ix *Index) LookupType(key string) []catalog.CourseRecord {
	return ix.Type[key]
}

// LookupDay returns records scheduled on the given weekday character.
func (ix *Index) LookupDay(key string) []catalog.CourseRecord {
	return ix.Day[key]
}

// LookupCode returns records whose course code starts with the given
// numeric prefix.
func (ix *Index) LookupCode(key string) []catalog.CourseRecord {
	return ix.Code[key]
}
