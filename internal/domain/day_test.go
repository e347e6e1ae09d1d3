package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	t.Parallel()

	d, err := ParseDay("2024-02-29")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d != "2024-02-29" {
		t.Errorf("Expected 2024-02-29, got %s", d)
	}

	for _, bad := range []string{"", "2024-13-01", "2023-02-29", "01/05/2024", "2024-01-05T10:00:00Z"} {
		if _, err := ParseDay(bad); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseDay(%q): expected validation error, got %v", bad, err)
		}
	}
}

func TestDayArithmetic(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		day      Day
		n        int
		expected Day
	}{
		{"next day", "2024-01-05", 1, "2024-01-06"},
		{"previous day", "2024-01-05", -1, "2024-01-04"},
		{"month boundary", "2024-01-31", 1, "2024-02-01"},
		{"leap day", "2024-02-28", 1, "2024-02-29"},
		{"year boundary backwards", "2024-01-01", -1, "2023-12-31"},
		{"across DST change", "2024-03-10", 1, "2024-03-11"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.day.AddDays(tc.n); got != tc.expected {
				t.Errorf("%s.AddDays(%d) = %s, expected %s", tc.day, tc.n, got, tc.expected)
			}
		})
	}
}

func TestDayOf(t *testing.T) {
	t.Parallel()

	instant := time.Date(2024, 1, 5, 23, 30, 0, 0, time.UTC)

	if got := DayOf(instant, nil); got != "2024-01-05" {
		t.Errorf("Expected UTC day 2024-01-05, got %s", got)
	}

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("timezone database not available: %v", err)
	}
	if got := DayOf(instant, tokyo); got != "2024-01-06" {
		t.Errorf("Expected Tokyo day 2024-01-06, got %s", got)
	}
}
