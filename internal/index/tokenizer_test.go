package index

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "particle splits compound course name",
			text: "자료구조및실습",
			want: []string{"자료구조", "실습"},
		},
		{
			name: "mixed latin and korean",
			text: "C프로그래밍",
			want: []string{"c", "프로그래밍"},
		},
		{
			name: "single syllable fragments dropped",
			text: "이",
			want: nil,
		},
		{
			name: "short latin runs kept",
			text: "C",
			want: []string{"c"},
		},
		{
			name: "digits kept as runs",
			text: "자료구조 009908",
			want: []string{"009908", "자료구조"},
		},
		{
			name: "object particle splits query",
			text: "자료구조를 알려줘",
			want: []string{"자료구조", "알려줘"},
		},
		{
			name: "uppercase normalized",
			text: "Python 프로그래밍",
			want: []string{"python", "프로그래밍"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractKeywords(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractKeywordsDeterministic(t *testing.T) {
	first := ExtractKeywords("자료구조및실습과 C프로그래밍")
	for i := 0; i < 10; i++ {
		if got := ExtractKeywords("자료구조및실습과 C프로그래밍"); !reflect.DeepEqual(got, first) {
			t.Fatalf("ExtractKeywords() = %v on run %d, want %v", got, i, first)
		}
	}
}

func TestExtractWeekdays(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		want     []string
	}{
		{
			name:     "two days",
			schedule: "월수13:00-14:30",
			want:     []string{"월", "수"},
		},
		{
			name:     "duplicate day counted once",
			schedule: "월13:00-14:30 월15:00-16:30",
			want:     []string{"월"},
		},
		{
			name:     "empty schedule",
			schedule: "",
			want:     nil,
		},
		{
			name:     "no weekday characters",
			schedule: "13:00-14:30",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractWeekdays(tt.schedule)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractWeekdays(%q) = %v, want %v", tt.schedule, got, tt.want)
			}
		})
	}
}
