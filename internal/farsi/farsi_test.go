package farsi

import (
	"strings"
	"testing"
)

func TestConvert_AtomicWords(t *testing.T) {
	if got := Convert(0); got != "صفر" {
		t.Errorf("Convert(0) = %q, want صفر", got)
	}
	for n, want := range atomicWords {
		if got := Convert(n); got != want {
			t.Errorf("Convert(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestConvert_Compounds(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{21, "بیست و یک"},
		{99, "نود و نه"},
		{110, "صد و ده"},
		{173, "صد و هفتاد و سه"},
		{305, "سیصد و پنج"},
		{999, "نهصد و نود و نه"},
		{1001, "هزار و یک"},
		{1234, "هزار و دویست و سی و چهار"},
		{2000, "دو هزار"},
		{2025, "دو هزار و بیست و پنج"},
		{21000, "بیست و یک هزار"},
		{100000, "صد هزار"},
		{999999, "نهصد و نود و نه هزار و نهصد و نود و نه"},
	}
	for _, tc := range cases {
		if got := Convert(tc.n); got != tc.want {
			t.Errorf("Convert(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestConvert_ThousandCollapse(t *testing.T) {
	// Exactly 1000 must be the bare thousand word, never "یک هزار".
	if got := Convert(1000); got != "هزار" {
		t.Errorf("Convert(1000) = %q, want هزار", got)
	}
	if got := Convert(1500); strings.Contains(got, "یک هزار") {
		t.Errorf("Convert(1500) = %q, contains uncollapsed one-thousand", got)
	}
}

func TestConvert_Negative(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{-1, "منفی یک"},
		{-10, "منفی ده"},
		{-100, "منفی صد"},
		{-999, "منفی نهصد و نود و نه"},
		{-Limit, "منفی نهصد و نود و نه هزار و نهصد و نود و نه"},
	}
	for _, tc := range cases {
		if got := Convert(tc.n); got != tc.want {
			t.Errorf("Convert(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestConvert_NegativeMirrorsPositive(t *testing.T) {
	for _, n := range []int{1, 7, 21, 173, 1000, 1234, Limit} {
		want := "منفی " + Convert(n)
		if got := Convert(-n); got != want {
			t.Errorf("Convert(%d) = %q, want %q", -n, got, want)
		}
	}
}

func TestConvert_OutOfRange(t *testing.T) {
	for _, n := range []int{Limit + 1, -(Limit + 1), 1000000, -5000000} {
		if got := Convert(n); got != OutOfRangeText {
			t.Errorf("Convert(%d) = %q, want the out-of-range text", n, got)
		}
	}
	if Convert(Limit) == OutOfRangeText {
		t.Error("Convert(Limit) must not be the out-of-range text")
	}
	if Convert(-Limit) == OutOfRangeText {
		t.Error("Convert(-Limit) must not be the out-of-range text")
	}
}

// countSegments returns how many atomic words make up n, counting the
// thousands multiplier recursively and teens as a single word.
func countSegments(n int) int {
	if n >= 1000 {
		return countSegments(n/1000) + countSegments(n%1000)
	}
	count := 0
	if n >= 100 {
		count++
		n %= 100
	}
	if n >= 20 {
		count++
		n %= 10
	}
	if n > 0 {
		count++
	}
	return count
}

func TestConvert_ConjunctionCount(t *testing.T) {
	for n := 1; n <= Limit; n += 317 {
		word := Convert(n)
		if strings.HasPrefix(word, "و ") || strings.HasSuffix(word, " و") {
			t.Fatalf("Convert(%d) = %q has a dangling conjunction", n, word)
		}
		got := strings.Count(word, " و ")
		want := countSegments(n) - 1
		if got != want {
			t.Errorf("Convert(%d) = %q: %d conjunctions, want %d", n, word, got, want)
		}
	}
}

func TestConvert_FullCampaignRange(t *testing.T) {
	// Every value the bot can ever post must render cleanly.
	for n := 1; n <= 1000; n++ {
		word := Convert(n)
		if word == "" || word == OutOfRangeText {
			t.Fatalf("Convert(%d) = %q", n, word)
		}
	}
}

func TestSupportedRange(t *testing.T) {
	min, max := SupportedRange()
	if min != -Limit || max != Limit {
		t.Errorf("SupportedRange() = (%d, %d), want (%d, %d)", min, max, -Limit, Limit)
	}
	if !IsSupported(Limit) || !IsSupported(-Limit) || !IsSupported(0) {
		t.Error("boundary values should be supported")
	}
	if IsSupported(Limit+1) || IsSupported(-Limit-1) {
		t.Error("values beyond the limit should not be supported")
	}
}
