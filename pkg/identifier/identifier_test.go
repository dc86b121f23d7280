package identifier

import (
	"testing"
)

func TestParseNumeric(t *testing.T) {
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{input: "12", want: "12", ok: true},
		{input: "12a", want: "12a", ok: true},
		{input: "5zs", want: "5zs", ok: true},
		{input: "11/cs", want: "11cs", ok: true},
		{input: "123/A", want: "123a", ok: true},
		{input: "", ok: false},
		{input: "a", ok: false},
		{input: "1aa", ok: false},
		{input: "1/", ok: false},
		{input: "12//a", ok: false},
		{input: "1:123", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseNumeric(tc.input)
			if (err == nil) != tc.ok {
				t.Fatalf("ParseNumeric(%q) error = %v, want ok=%v", tc.input, err, tc.ok)
			}
			if tc.ok && got.String() != tc.want {
				t.Errorf("ParseNumeric(%q) = %q, want %q", tc.input, got.String(), tc.want)
			}
		})
	}
}

func TestParseRomanNumeric(t *testing.T) {
	got, err := ParseRomanNumeric("XI/cs")
	if err != nil {
		t.Fatalf("ParseRomanNumeric failed: %v", err)
	}
	if got.Num != 11 || got.Suffix.String() != "cs" {
		t.Errorf("ParseRomanNumeric(XI/cs) = %+v", got)
	}
	if got.Roman() != "XI/Cs" {
		t.Errorf("Roman() = %q, want %q", got.Roman(), "XI/Cs")
	}
}

func TestNumericIsNextFrom(t *testing.T) {
	cases := []struct {
		next, prev string
		want       bool
	}{
		{"123", "122", true},
		{"123/A", "123", true},
		{"123zs", "123z", true},
		{"13", "12c", true},
		{"12b", "12", false},
		{"12a", "11", false},
		{"13", "11", false},
		{"11", "11", false},
		{"11", "12", false},
	}

	for _, tc := range cases {
		next, _ := ParseNumeric(tc.next)
		prev, _ := ParseNumeric(tc.prev)
		if got := next.IsNextFrom(prev); got != tc.want {
			t.Errorf("%s.IsNextFrom(%s) = %v, want %v", tc.next, tc.prev, got, tc.want)
		}
	}
}

func TestArticle(t *testing.T) {
	cases := []struct {
		next, prev string
		want       bool
	}{
		{"1:123", "1:122", true},
		{"2:1", "1:123", true},
		{"13", "12c", true},
		{"1:1", "2:2", false},
		{"1:1", "3:1", false},
		{"2:1a", "1:123", false},
		{"1:1", "1", false},
		{"1", "1:1", false},
		{"1:1", "2", false},
		{"1", "1:2", false},
	}

	for _, tc := range cases {
		next, err := ParseArticle(tc.next)
		if err != nil {
			t.Fatalf("ParseArticle(%q) failed: %v", tc.next, err)
		}
		prev, err := ParseArticle(tc.prev)
		if err != nil {
			t.Fatalf("ParseArticle(%q) failed: %v", tc.prev, err)
		}
		if got := next.IsNextFrom(prev); got != tc.want {
			t.Errorf("%s.IsNextFrom(%s) = %v, want %v", tc.next, tc.prev, got, tc.want)
		}
	}

	a, err := ParseArticle("1:123/b")
	if err != nil {
		t.Fatalf("ParseArticle failed: %v", err)
	}
	if a.String() != "1:123/B" {
		t.Errorf("String() = %q, want %q", a.String(), "1:123/B")
	}
}

func TestCharIsNextFrom(t *testing.T) {
	c := func(s string) Char {
		ch, err := ParseChar(s)
		if err != nil {
			t.Fatalf("ParseChar(%q) failed: %v", s, err)
		}
		return ch
	}

	cases := []struct {
		next, prev string
		want       bool
	}{
		{"B", "a", true},
		{"a", "b", false},
		{"a", "a", false},
		{"Ny", "n", true},
		{"ny", "ny", false},
		{"n", "ny", false},
		{"o", "ny", true},
		{"r", "p", true},
		{"d", "cs", true},
		{"cs", "c", true},
	}

	for _, tc := range cases {
		if got := c(tc.next).IsNextFrom(c(tc.prev)); got != tc.want {
			t.Errorf("%s.IsNextFrom(%s) = %v, want %v", tc.next, tc.prev, got, tc.want)
		}
	}

	if !(c("c") < c("cs") && c("cs") < c("d")) {
		t.Error("digraph cs should sort between c and d")
	}
}

func TestPrefixed(t *testing.T) {
	cases := []struct {
		next, prev string
		want       bool
	}{
		{"b", "a", true},
		{"ab", "aa", true},
		{"l", "k", true},
		{"cl", "ck", true},
		{"c", "c", false},
		{"ca", "db", false},
		{"c", "bb", false},
		{"cc", "b", false},
	}

	for _, tc := range cases {
		next, err := ParsePrefixed(tc.next)
		if err != nil {
			t.Fatalf("ParsePrefixed(%q) failed: %v", tc.next, err)
		}
		prev, err := ParsePrefixed(tc.prev)
		if err != nil {
			t.Fatalf("ParsePrefixed(%q) failed: %v", tc.prev, err)
		}
		if got := next.IsNextFrom(prev); got != tc.want {
			t.Errorf("%s.IsNextFrom(%s) = %v, want %v", tc.next, tc.prev, got, tc.want)
		}
	}

	sz, err := ParsePrefixed("sz")
	if err != nil {
		t.Fatalf("ParsePrefixed(sz) failed: %v", err)
	}
	if sz.Prefix != 0 || sz.Char.String() != "sz" {
		t.Errorf("ParsePrefixed(sz) = %+v, want digraph sz", sz)
	}
}

func TestRoman(t *testing.T) {
	cases := []struct {
		roman string
		value int
	}{
		{"I", 1}, {"IV", 4}, {"V", 5}, {"IX", 9}, {"XXII", 22},
		{"XLIX", 49}, {"CXVI", 116}, {"MCMXCVII", 1997},
	}

	for _, tc := range cases {
		got, err := ParseRoman(tc.roman)
		if err != nil {
			t.Fatalf("ParseRoman(%q) failed: %v", tc.roman, err)
		}
		if got != tc.value {
			t.Errorf("ParseRoman(%q) = %d, want %d", tc.roman, got, tc.value)
		}
		if back := ToRoman(tc.value); back != tc.roman {
			t.Errorf("ToRoman(%d) = %q, want %q", tc.value, back, tc.roman)
		}
	}

	for _, bad := range []string{"", "IIII", "VX", "ABC", "iv"} {
		if _, err := ParseRoman(bad); err == nil {
			t.Errorf("ParseRoman(%q) should fail", bad)
		}
	}
}

func TestOrdinal(t *testing.T) {
	cases := []struct {
		word  string
		value int
	}{
		{"nulladik", 0},
		{"első", 1},
		{"második", 2},
		{"tizedik", 10},
		{"tizenegyedik", 11},
		{"tizenkettedik", 12},
		{"huszonötödik", 25},
		{"Harmadik", 3},
		{"ÖTÖDIK", 5},
		{"Ötvenedik", 50},
		{"kilencvenkilencedik", 99},
		{"századik", 100},
	}

	for _, tc := range cases {
		got, ok := ParseOrdinal(tc.word)
		if !ok {
			t.Fatalf("ParseOrdinal(%q) failed", tc.word)
		}
		if got != tc.value {
			t.Errorf("ParseOrdinal(%q) = %d, want %d", tc.word, got, tc.value)
		}
	}

	if _, ok := ParseOrdinal("egyedik"); ok {
		t.Error("ParseOrdinal(egyedik) should fail, 1 is első")
	}
	if w, _ := Ordinal(21); w != "huszonegyedik" {
		t.Errorf("Ordinal(21) = %q, want huszonegyedik", w)
	}
}

func TestMonths(t *testing.T) {
	if m, ok := ParseMonth("július"); !ok || m != 7 {
		t.Errorf("ParseMonth(július) = %d, %v", m, ok)
	}
	if _, ok := ParseMonth("Július"); ok {
		t.Error("ParseMonth is case sensitive")
	}
	if MonthName(12) != "december" {
		t.Errorf("MonthName(12) = %q", MonthName(12))
	}
	if len(Months()) != 12 {
		t.Errorf("len(Months()) = %d", len(Months()))
	}
}

func TestAct(t *testing.T) {
	a, err := ParseAct("2013. évi V. törvény")
	if err != nil {
		t.Fatalf("ParseAct failed: %v", err)
	}
	if a != (Act{Year: 2013, Number: 5}) {
		t.Errorf("ParseAct = %+v", a)
	}
	if a.String() != "2013. évi V. törvény" {
		t.Errorf("String() = %q", a.String())
	}
	if a.Compact() != "2013.5" {
		t.Errorf("Compact() = %q", a.Compact())
	}
	if _, err := ParseAct("2013. évi 5. törvény"); err == nil {
		t.Error("ParseAct with arabic number should fail")
	}
}
