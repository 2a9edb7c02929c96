package sliceutil

import (
	"reflect"
	"testing"
)

func TestDeduplicate(t *testing.T) {
	type record struct {
		ID   string
		Name string
	}

	items := []record{
		{ID: "0099-01", Name: "자료구조및실습"},
		{ID: "1234-01", Name: "알고리즘"},
		{ID: "0099-01", Name: "자료구조및실습"},
	}

	got := Deduplicate(items, func(r record) string { return r.ID })
	want := []record{
		{ID: "0099-01", Name: "자료구조및실습"},
		{ID: "1234-01", Name: "알고리즘"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Deduplicate() = %v, want %v", got, want)
	}
}

func TestDeduplicate_PreservesOrder(t *testing.T) {
	items := []int{3, 1, 3, 2, 1}
	got := Deduplicate(items, func(i int) int { return i })
	want := []int{3, 1, 2}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Deduplicate() = %v, want %v", got, want)
	}
}

func TestDeduplicate_Empty(t *testing.T) {
	var items []string
	got := Deduplicate(items, func(s string) string { return s })
	if len(got) != 0 {
		t.Errorf("Deduplicate(empty) = %v, want empty", got)
	}
}
