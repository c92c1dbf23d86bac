package timezone

import (
	"testing"
	"time"
)

func TestForAirport(t *testing.T) {
	tests := []struct {
		code string
		want *time.Location
	}{
		{"CGK", WIB},
		{"dps", WITA},
		{" DJJ ", WIT},
		{"JFK", WIB},
	}
	for _, tt := range tests {
		if got := ForAirport(tt.code); got != tt.want {
			t.Errorf("ForAirport(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestTodayUsesAirportZone(t *testing.T) {
	// 16:30 UTC is 23:30 in Jakarta and 00:30 the next day in Bali.
	now := time.Date(2026, 3, 1, 16, 30, 0, 0, time.UTC)
	if got := Today("CGK", now).Format(DateLayout); got != "2026-03-01" {
		t.Errorf("Today(CGK) = %s, want 2026-03-01", got)
	}
	if got := Today("DPS", now).Format(DateLayout); got != "2026-03-02" {
		t.Errorf("Today(DPS) = %s, want 2026-03-02", got)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-05-04", "2026-05-04"},
		{"2026-05-04T10:00:00+07:00", "2026-05-04"},
		{"04/05/2026", ""},
		{"", ""},
		{"2026-02-30", ""},
	}
	for _, tt := range tests {
		got := NormalizeDate(tt.in)
		if tt.want == "" {
			if got != nil {
				t.Errorf("NormalizeDate(%q) = %q, want nil", tt.in, *got)
			}
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("NormalizeDate(%q) = %v, want %q", tt.in, got, tt.want)
		}
	}
}
