package identifier

import (
	"fmt"
	"regexp"
	"strconv"
)

// Act identifies an Act by year and number, as in
// "2013. évi V. törvény".
type Act struct {
	Year   int `json:"year" yaml:"year"`
	Number int `json:"number" yaml:"number"`
}

var actPattern = regexp.MustCompile(`^(\d{4})\. évi ([IVXLCDM]+)\. (?:törvény|tv\.)$`)

// ParseAct parses the canonical form "2013. évi V. törvény".
func ParseAct(s string) (Act, error) {
	m := actPattern.FindStringSubmatch(s)
	if m == nil {
		return Act{}, fmt.Errorf("%q is not an act identifier", s)
	}
	year, _ := strconv.Atoi(m[1])
	num, err := ParseRoman(m[2])
	if err != nil {
		return Act{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	return Act{Year: year, Number: num}, nil
}

// IsZero reports whether a is the zero Act.
func (a Act) IsZero() bool { return a.Year == 0 && a.Number == 0 }

func (a Act) String() string {
	return fmt.Sprintf("%d. évi %s. törvény", a.Year, ToRoman(a.Number))
}

// Compact returns "2013.5".
func (a Act) Compact() string {
	return fmt.Sprintf("%d.%d", a.Year, a.Number)
}
