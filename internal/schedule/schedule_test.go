package schedule

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpectedCounter(t *testing.T) {
	start := date(2025, time.March, 18)
	const min, max = 1, 1000

	cases := []struct {
		name  string
		today time.Time
		want  int
	}{
		{"day before start", start.AddDate(0, 0, -1), 0},
		{"start day", start, min},
		{"second day", start.AddDate(0, 0, 1), 2},
		{"hundredth day", start.AddDate(0, 0, 99), 100},
		{"final day", start.AddDate(0, 0, max-min), max},
		{"day past final", start.AddDate(0, 0, max-min+1), 0},
		{"long before start", start.AddDate(-1, 0, 0), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExpectedCounter(tc.today, start, min, max); got != tc.want {
				t.Errorf("ExpectedCounter(%s) = %d, want %d", tc.today.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}

func TestExpectedCounter_TimeOfDayIgnored(t *testing.T) {
	start := date(2025, time.March, 18)
	late := time.Date(2025, time.March, 19, 23, 59, 59, 0, time.UTC)
	early := time.Date(2025, time.March, 19, 0, 0, 1, 0, time.UTC)

	if got := ExpectedCounter(late, start, 1, 1000); got != 2 {
		t.Errorf("late in the day: got %d, want 2", got)
	}
	if got := ExpectedCounter(early, start, 1, 1000); got != 2 {
		t.Errorf("early in the day: got %d, want 2", got)
	}
}

func TestIsCI(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	if IsCI() {
		t.Error("IsCI() = true with no CI env set")
	}

	t.Setenv("CI", "true")
	if !IsCI() {
		t.Error("IsCI() = false with CI=true")
	}

	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "true")
	if !IsCI() {
		t.Error("IsCI() = false with GITHUB_ACTIONS=true")
	}
}
