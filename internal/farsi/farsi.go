// Package farsi converts integers to their Persian word form.
//
// The converter covers -999,999 to +999,999 from a small table of
// atomic forms (units, teens, tens, hundreds, thousand) composed with
// the Persian conjunction "و". Compound numbers are generated
// algorithmically, so the table stays at about 35 entries.
package farsi

import (
	"strconv"
	"strings"
)

// Limit is the absolute bound of the supported range.
const Limit = 999999

const (
	zeroWord       = "صفر"
	thousandWord   = "هزار"
	negativePrefix = "منفی"
	conjunction    = " و "
)

// OutOfRangeText is returned for numbers outside the supported range.
// Callers treat it as a non-fatal "cannot render" value, not a crash.
const OutOfRangeText = "خطا: عدد خارج از محدوده پشتیبانی شده (-999,999 تا +999,999)"

// atomicWords holds the irregular Persian forms. Everything else is
// composed from these.
var atomicWords = map[int]string{
	1:    "یک",
	2:    "دو",
	3:    "سه",
	4:    "چهار",
	5:    "پنج",
	6:    "شش",
	7:    "هفت",
	8:    "هشت",
	9:    "نه",
	10:   "ده",
	11:   "یازده",
	12:   "دوازده",
	13:   "سیزده",
	14:   "چهارده",
	15:   "پانزده",
	16:   "شانزده",
	17:   "هفده",
	18:   "هجده",
	19:   "نوزده",
	20:   "بیست",
	30:   "سی",
	40:   "چهل",
	50:   "پنجاه",
	60:   "شصت",
	70:   "هفتاد",
	80:   "هشتاد",
	90:   "نود",
	100:  "صد",
	200:  "دویست",
	300:  "سیصد",
	400:  "چهارصد",
	500:  "پانصد",
	600:  "ششصد",
	700:  "هفتصد",
	800:  "هشتصد",
	900:  "نهصد",
	1000: thousandWord,
}

// Convert returns the Persian word form of n, or OutOfRangeText when
// |n| exceeds Limit. It is a pure function: no I/O, no state.
func Convert(n int) string {
	if n > Limit || n < -Limit {
		return OutOfRangeText
	}

	if n == 0 {
		return zeroWord
	}

	if word, ok := atomicWords[n]; ok {
		return word
	}

	if n < 0 {
		return negativePrefix + " " + Convert(-n)
	}

	if n < 20 {
		// Unreachable while the table covers 1..19; render digits
		// rather than fail if the table ever loses an entry.
		return strconv.Itoa(n)
	}

	var b strings.Builder

	if n >= 1000 {
		thousands := n / 1000
		if thousands == 1 {
			// "one thousand" collapses to the bare thousand word.
			b.WriteString(thousandWord)
		} else {
			b.WriteString(Convert(thousands))
			b.WriteString(" ")
			b.WriteString(thousandWord)
		}
		n %= 1000
		if n > 0 {
			b.WriteString(conjunction)
		}
	}

	if n >= 100 {
		b.WriteString(atomicWords[(n/100)*100])
		n %= 100
		if n > 0 {
			b.WriteString(conjunction)
		}
	}

	if n >= 20 {
		b.WriteString(atomicWords[(n/10)*10])
		n %= 10
		if n > 0 {
			b.WriteString(conjunction)
		}
	}

	if n > 0 {
		b.WriteString(atomicWords[n])
	}

	return b.String()
}

// SupportedRange returns the inclusive range Convert accepts.
func SupportedRange() (min, max int) {
	return -Limit, Limit
}

// IsSupported reports whether n is within the supported range.
func IsSupported(n int) bool {
	return n >= -Limit && n <= Limit
}
