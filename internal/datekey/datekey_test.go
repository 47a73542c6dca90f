package datekey

import (
	"testing"
	"time"
)

func TestKey_ZeroPads(t *testing.T) {
	got := Key(time.Date(2025, 6, 5, 10, 0, 0, 0, time.Local))
	if got != "06-05" {
		t.Errorf("Key = %q, want 06-05", got)
	}
}

func TestKey_UsesLocalDate(t *testing.T) {
	// 23:30 on Dec 31 in a UTC+9 zone is still Dec 31 locally even though
	// it is already Jan 1 nowhere and still Dec 31 14:30 in UTC.
	loc := time.FixedZone("UTC+9", 9*3600)
	got := Key(time.Date(2025, 12, 31, 23, 30, 0, 0, loc))
	if got != "12-31" {
		t.Errorf("Key = %q, want 12-31", got)
	}
}

func TestToday(t *testing.T) {
	c := FixedClock{T: time.Date(2025, 1, 9, 0, 0, 0, 0, time.Local)}
	if got := Today(c); got != "01-09" {
		t.Errorf("Today = %q, want 01-09", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"5-5", "05-05", true},
		{"05-05", "05-05", true},
		{"12-31", "12-31", true},
		{" 5-5 ", "05-05", true},
		{"1-09", "01-09", true},
		{"May 5", "", false},
		{"2000-05-05", "", false},
		{"5/5", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Normalize(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Normalize(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
