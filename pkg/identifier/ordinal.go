package identifier

import (
	"strings"
)

var ordinalWords, ordinalValues = buildOrdinals()

func buildOrdinals() ([]string, map[string]int) {
	special := map[int]string{
		1: "első", 2: "második", 10: "tizedik", 20: "huszadik",
		30: "harmincadik", 40: "negyvenedik", 50: "ötvenedik",
		60: "hatvanadik", 70: "hetvenedik", 80: "nyolcvanadik",
		90: "kilencvenedik",
	}
	ones := []string{
		"nulladik", "egyedik", "kettedik", "harmadik", "negyedik",
		"ötödik", "hatodik", "hetedik", "nyolcadik", "kilencedik",
	}
	tens := []string{
		"", "tizen", "huszon", "harminc", "negyven",
		"ötven", "hatvan", "hetven", "nyolcvan", "kilencven",
	}

	words := make([]string, 0, 101)
	for t, prefix := range tens {
		for o, suffix := range ones {
			if w, ok := special[t*10+o]; ok {
				words = append(words, w)
			} else {
				words = append(words, prefix+suffix)
			}
		}
	}
	words = append(words, "századik")

	values := make(map[string]int, len(words)*3)
	for n, w := range words {
		values[w] = n
		values[strings.ToUpper(w)] = n
		values[capitalize(w)] = n
	}
	return words, values
}

func capitalize(s string) string {
	for i := range s {
		if i > 0 {
			return strings.ToUpper(s[:i]) + s[i:]
		}
	}
	return strings.ToUpper(s)
}

// ParseOrdinal converts an ordinal word between "nulladik" (0) and
// "századik" (100) to its value. Lowercase, uppercase and capitalised
// spellings are accepted.
func ParseOrdinal(word string) (int, bool) {
	n, ok := ordinalValues[word]
	return n, ok
}

// Ordinal returns the lowercase ordinal word for n in [0, 100].
func Ordinal(n int) (string, bool) {
	if n < 0 || n >= len(ordinalWords) {
		return "", false
	}
	return ordinalWords[n], true
}

var months = []string{
	"január", "február", "március", "április", "május", "június",
	"július", "augusztus", "szeptember", "október", "november", "december",
}

// Months returns the month names in calendar order.
func Months() []string {
	return append([]string(nil), months...)
}

// ParseMonth converts a lowercase month name to 1-12.
func ParseMonth(name string) (int, bool) {
	for i, m := range months {
		if m == name {
			return i + 1, true
		}
	}
	return 0, false
}

// MonthName returns the month name for 1-12.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return months[m-1]
}
