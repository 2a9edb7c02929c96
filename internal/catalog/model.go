// Package catalog owns the course catalog: the record model, the HTTP
// fetcher for the static catalog document and the SQLite-backed
// snapshot store used to persist the search index between restarts.
package catalog

import "strings"

// CourseRecord is one scheduled course offering from the catalog.
// JSON tags bind to the Korean field names of the source document.
// Records are immutable once loaded; optional fields are empty strings
// when the source value is null or missing.
type CourseRecord struct {
	Seq            string `json:"순번,omitempty"`
	Department     string `json:"개설학과전공,omitempty"`
	CourseCode     string `json:"학수번호"`
	Section        string `json:"분반"`
	CourseName     string `json:"교과목명"`
	Language       string `json:"강의언어,omitempty"`
	CourseType     string `json:"이수구분"`
	ElectiveArea   string `json:"선택영역,omitempty"`
	Credits        string `json:"학점/이론/실습"`
	GradeLevel     string `json:"학년 (학기),omitempty"`
	TargetProgram  string `json:"대상과정,omitempty"`
	HostDepartment string `json:"주관학과,omitempty"`
	ProfessorName  string `json:"교수명,omitempty"`
	Schedule       string `json:"요일 및 강의시간,omitempty"`
	Room           string `json:"강의실,omitempty"`
	CyberCourse    string `json:"사이버강좌,omitempty"`
	CourseFormat   string `json:"강좌유형,omitempty"`
	CrossCredit    string `json:"학점교류수강가능,omitempty"`
	Notes          string `json:"수강대상 및 유의사항,omitempty"`
}

// RecordID returns the unique identifier of an offering (course code + section).
func (r CourseRecord) RecordID() string {
	return r.CourseCode + "-" + r.Section
}

// HasName reports whether the record carries a non-blank course name.
// Records without a name are skipped during indexing.
func (r CourseRecord) HasName() bool {
	return strings.TrimSpace(r.CourseName) != ""
}

// document is the top-level shape of the catalog JSON resource.
type document struct {
	Records []CourseRecord `json:"강의시간표"`
}
