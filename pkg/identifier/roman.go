package identifier

import (
	"fmt"
	"strings"
)

var romanValues = map[byte]int{
	'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000,
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// ParseRoman converts a canonical uppercase Roman numeral to an integer.
// Non-canonical spellings such as "IIII" or "VX" are rejected.
func ParseRoman(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty roman numeral")
	}
	total := 0
	for i := 0; i < len(s); i++ {
		v, ok := romanValues[s[i]]
		if !ok {
			return 0, fmt.Errorf("%q is not a roman numeral", s)
		}
		if i+1 < len(s) && romanValues[s[i+1]] > v {
			total -= v
		} else {
			total += v
		}
	}
	if ToRoman(total) != s {
		return 0, fmt.Errorf("%q is not a canonical roman numeral", s)
	}
	return total, nil
}

// ToRoman converts n to a Roman numeral. Non-positive values yield "".
func ToRoman(n int) string {
	var b strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}
