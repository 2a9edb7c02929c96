package stringutil

import "testing"

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"009912", true},
		{"0", true},
		{"", false},
		{"12a4", false},
		{"일이삼", false},
		{"12 34", false},
	}

	for _, tt := range tests {
		if got := IsNumeric(tt.input); got != tt.want {
			t.Errorf("IsNumeric(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
