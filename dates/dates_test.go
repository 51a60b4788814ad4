package dates

import (
	"errors"
	"testing"
	"time"
)

func TestNormalize_StringLayouts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  string
	}{
		{"2024-01-15", "01/15/2024"},
		{"2024-01-15T10:30:00", "01/15/2024"},
		{"2024-01-15T10:30", "01/15/2024"},
		{"2024-01-15 10:30:00", "01/15/2024"},
		{"01/15/2024", "01/15/2024"},
		{"01/15/2024 10:30", "01/15/2024"},
		{"15/01/2024", "01/15/2024"},
		{"January 15, 2024", "01/15/2024"},
		{"Jan 15, 2024", "01/15/2024"},
		{"15 January 2024", "01/15/2024"},
		{"15 Jan 2024", "01/15/2024"},
	}

	for _, tc := range cases {
		got, err := Normalize(tc.input)
		if err != nil {
			t.Errorf("Normalize(%q): unexpected error: %v", tc.input, err)
			continue
		}
		if Canonical(got) != tc.want {
			t.Errorf("Normalize(%q) = %s, want %s", tc.input, Canonical(got), tc.want)
		}
	}
}

func TestNormalize_TimezoneSuffixStripped(t *testing.T) {
	t.Parallel()

	for _, input := range []string{
		"2024-01-15T23:30:00Z",
		"2024-01-15T23:30:00+05:00",
		"2024-01-15T23:30:00-08:00",
	} {
		got, err := Normalize(input)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", input, err)
		}
		// Suffix is stripped, not converted: the wall-clock date stays put.
		if Canonical(got) != "01/15/2024" {
			t.Errorf("Normalize(%q) = %s, want 01/15/2024", input, Canonical(got))
		}
	}
}

func TestNormalize_Timestamps(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	seconds, err := Normalize(ref.Unix())
	if err != nil {
		t.Fatalf("seconds: %v", err)
	}
	if !seconds.Equal(ref) {
		t.Errorf("seconds timestamp = %v, want %v", seconds, ref)
	}

	millis, err := Normalize(float64(ref.UnixMilli()))
	if err != nil {
		t.Fatalf("milliseconds: %v", err)
	}
	if !millis.Equal(ref) {
		t.Errorf("millisecond timestamp = %v, want %v", millis, ref)
	}
}

func TestNormalize_Time(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	got, err := Normalize(ref)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(ref) {
		t.Errorf("got %v, want %v", got, ref)
	}
}

func TestNormalize_Map(t *testing.T) {
	t.Parallel()

	got, err := Normalize(map[string]any{"year": 2024, "month": 1, "day": 15})
	if err != nil {
		t.Fatal(err)
	}
	if Canonical(got) != "01/15/2024" {
		t.Errorf("got %s, want 01/15/2024", Canonical(got))
	}

	if _, err := Normalize(map[string]any{"year": 2024, "month": 1}); err == nil {
		t.Error("expected error for map missing day key")
	}
}

func TestNormalize_Slice(t *testing.T) {
	t.Parallel()

	got, err := Normalize([]int{2024, 1, 15})
	if err != nil {
		t.Fatal(err)
	}
	if Canonical(got) != "01/15/2024" {
		t.Errorf("got %s, want 01/15/2024", Canonical(got))
	}

	if _, err := Normalize([]int{2024, 1}); err == nil {
		t.Error("expected error for slice with fewer than 3 elements")
	}
}

func TestNormalize_UnsupportedType(t *testing.T) {
	t.Parallel()

	_, err := Normalize(struct{ X int }{1})
	var typeErr *UnsupportedTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected UnsupportedTypeError, got %v", err)
	}

	if _, err := Normalize(nil); err == nil {
		t.Error("expected error for nil input")
	}
}

func TestNormalize_UnparseableString(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "not a date", "99/99/9999"} {
		_, err := Normalize(input)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("Normalize(%q): expected ParseError, got %v", input, err)
		}
	}
}

func TestWeekdayCode(t *testing.T) {
	t.Parallel()

	monday := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if got := WeekdayCode(monday); got != "MON" {
		t.Errorf("WeekdayCode = %q, want MON", got)
	}
	sunday := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	if got := WeekdayCode(sunday); got != "SUN" {
		t.Errorf("WeekdayCode = %q, want SUN", got)
	}
}

func TestParseCanonical_RoundTrip(t *testing.T) {
	t.Parallel()

	parsed, err := ParseCanonical("01/15/2024")
	if err != nil {
		t.Fatal(err)
	}
	if Canonical(parsed) != "01/15/2024" {
		t.Errorf("round trip = %s", Canonical(parsed))
	}

	if _, err := ParseCanonical("2024-01-15"); err == nil {
		t.Error("expected error for non-canonical input")
	}
}
