package scheduler

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, expr string) *Schedule {
	t.Helper()
	s, err := Parse(expr)
	if err != nil {
		t.Fatalf("Parse(%q): %v", expr, err)
	}
	return s
}

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"0 9 * *",        // 4 fields
		"0 9 * * 1 2",    // 6 fields
		"60 * * * *",     // minute out of range
		"* 24 * * *",     // hour out of range
		"* * 0 * *",      // day of month starts at 1
		"* * * 13 *",     // month out of range
		"* * * * 7",      // day of week tops at 6
		"*/0 * * * *",    // zero step
		"abc * * * *",    // not a number
		"1,x * * * *",    // bad list member
	}
	for _, expr := range cases {
		if _, err := Parse(expr); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", expr)
		}
	}
}

func TestWildcardMatchesEveryMinute(t *testing.T) {
	s := mustParse(t, "* * * * *")
	if !s.Matches(at(2025, time.June, 2, 14, 37)) {
		t.Error("wildcard schedule should match any instant")
	}
}

func TestWeeklyMondayNineAM(t *testing.T) {
	s := mustParse(t, "0 9 * * 1")
	monday := at(2025, time.June, 2, 9, 0) // a Monday
	if !s.Matches(monday) {
		t.Error("should match Monday 09:00")
	}
	if s.Matches(at(2025, time.June, 2, 9, 1)) {
		t.Error("should not match 09:01")
	}
	if s.Matches(at(2025, time.June, 3, 9, 0)) {
		t.Error("should not match Tuesday")
	}
}

func TestSundayIsZero(t *testing.T) {
	s := mustParse(t, "0 12 * * 0")
	sunday := at(2025, time.June, 1, 12, 0)
	if sunday.Weekday() != time.Sunday {
		t.Fatal("test date is not a Sunday")
	}
	if !s.Matches(sunday) {
		t.Error("day-of-week 0 should match Sunday")
	}
}

func TestStepField(t *testing.T) {
	s := mustParse(t, "*/15 * * * *")
	for _, min := range []int{0, 15, 30, 45} {
		if !s.Matches(at(2025, time.June, 2, 10, min)) {
			t.Errorf("*/15 should match minute %d", min)
		}
	}
	for _, min := range []int{1, 14, 16, 59} {
		if s.Matches(at(2025, time.June, 2, 10, min)) {
			t.Errorf("*/15 should not match minute %d", min)
		}
	}
}

func TestStepDayOfMonth(t *testing.T) {
	// Sur un champ commençant à 1, */N signifie "valeur divisible
	// par N" : */7 retient les jours 7, 14, 21, 28, jamais le 1er.
	s := mustParse(t, "0 0 */7 * *")
	for _, day := range []int{7, 14, 21, 28} {
		if !s.Matches(at(2025, time.July, day, 0, 0)) {
			t.Errorf("*/7 should match day %d", day)
		}
	}
	for _, day := range []int{1, 2, 8, 15, 29} {
		if s.Matches(at(2025, time.July, day, 0, 0)) {
			t.Errorf("*/7 should not match day %d", day)
		}
	}
}

func TestCommaList(t *testing.T) {
	s := mustParse(t, "0 9,17 * * 1,3,5")
	if !s.Matches(at(2025, time.June, 4, 17, 0)) { // Wednesday
		t.Error("should match Wednesday 17:00")
	}
	if s.Matches(at(2025, time.June, 5, 17, 0)) { // Thursday
		t.Error("should not match Thursday")
	}
}
