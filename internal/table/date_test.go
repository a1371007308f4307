package table

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		in string
		ok bool
	}{
		{"2023-02-01", true},
		{"2023/02/01", true},
		{"20230201", true},
		{"2023年02月01日", true},
		{"2023-02-01 09:30:00", true},
		{"23-02-01", true},
		{"not a date", false},
		{"", false},
		{"2023-13-01", false},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, want)
		}
	}
}

func TestNormalizeDropsTimeAndZone(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	in := time.Date(2023, 2, 1, 23, 59, 59, 0, loc)
	got := Normalize(in)
	want := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Normalize(%v) = %v, want %v", in, got, want)
	}
}
