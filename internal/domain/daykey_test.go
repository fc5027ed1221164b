package domain

import (
	"errors"
	"testing"
	"time"
)

func TestDayKeyOfUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	local := time.Date(2024, 2, 29, 23, 30, 0, 0, loc)

	if got := DayKeyOf(local); got != "2024-03-01" {
		t.Fatalf("expected 2024-03-01 got %s", got)
	}
}

func TestNormalizeDayKeyFromTimestamp(t *testing.T) {
	cases := map[string]string{
		"2024-03-01T10:00:00Z":      "2024-03-01",
		"2024-03-01T23:30:00-05:00": "2024-03-02",
		"2024-03-01T00:15:30.5Z":    "2024-03-01",
		"2024-03-01 10:00:00":       "2024-03-01",
	}

	for input, want := range cases {
		got, err := NormalizeDayKey(input)
		if err != nil {
			t.Fatalf("normalize %q failed: %v", input, err)
		}
		if got != want {
			t.Fatalf("normalize %q: expected %s got %s", input, want, got)
		}
	}
}

func TestNormalizeDayKeyAcceptsBareDate(t *testing.T) {
	got, err := NormalizeDayKey(" 2024-03-01 ")
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if got != "2024-03-01" {
		t.Fatalf("expected 2024-03-01 got %s", got)
	}
}

func TestNormalizeDayKeyRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "yesterday", "03/01/2024"} {
		if _, err := NormalizeDayKey(input); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected validation error for %q, got %v", input, err)
		}
	}
}
