// Package identifier provides the identifier types used in Hungarian
// statutory references: Act identifiers, numeric and alphabetic ids of
// Articles, Paragraphs, Points and Subpoints, and the Hungarian numeral
// words (Roman numerals, ordinal words, month names) they are written with.
package identifier

import (
	"fmt"
	"strconv"
	"strings"
)

// Char is a Hungarian identifier letter: a latin letter a-z or one of
// the digraphs cs, dz, gy, ly, ny, sz, ty, zs. The zero value means no
// letter. Chars order the way the Hungarian alphabet does: a digraph
// sorts right after its first letter.
type Char uint16

var digraphs = map[byte]string{
	'c': "cs", 'd': "dz", 'g': "gy", 'l': "ly",
	'n': "ny", 's': "sz", 't': "ty", 'z': "zs",
}

// Digraphs lists the multigraph letters, in the order they must be tried.
var Digraphs = []string{"cs", "dz", "gy", "ly", "ny", "sz", "ty", "zs"}

// ParseChar parses a letter or digraph, ignoring case.
func ParseChar(s string) (Char, error) {
	lower := strings.ToLower(s)
	if len(lower) == 1 && lower[0] >= 'a' && lower[0] <= 'z' {
		return Char(uint16(lower[0]) * 2), nil
	}
	for base, d := range digraphs {
		if lower == d {
			return Char(uint16(base)*2 + 1), nil
		}
	}
	return 0, fmt.Errorf("%q is not a valid latin or hungarian character", s)
}

func (c Char) base() byte { return byte(c / 2) }

func (c Char) digraph() bool { return c%2 == 1 }

// IsFirst reports whether c is "a".
func (c Char) IsFirst() bool { return c == Char('a'*2) }

// IsNextFrom reports whether c directly follows prev.
func (c Char) IsNextFrom(prev Char) bool {
	if c == 0 || prev == 0 {
		return false
	}
	switch {
	case !c.digraph() && !prev.digraph():
		// q is skipped in some enumerations.
		return c.base() == prev.base()+1 || (c.base() == 'r' && prev.base() == 'p')
	case c.digraph() && !prev.digraph():
		return c.base() == prev.base()
	case !c.digraph() && prev.digraph():
		return c.base() == prev.base()+1 && prev.base() != 'z'
	}
	return false
}

// String returns the lowercase letter.
func (c Char) String() string {
	if c == 0 {
		return ""
	}
	if c.digraph() {
		return digraphs[c.base()]
	}
	return string(rune(c.base()))
}

// Upper returns the capitalised letter, "A" or "Cs".
func (c Char) Upper() string {
	s := c.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Numeric is a number with an optional letter suffix, like "12", "12a"
// or "5/A".
type Numeric struct {
	Num    int
	Suffix Char
}

// ParseNumeric parses "12", "12a", "5zs", "11/cs" or "123/A".
func ParseNumeric(s string) (Numeric, error) {
	return parseSuffixed(s, "0123456789", func(n string) (int, error) {
		return strconv.Atoi(n)
	})
}

// ParseRomanNumeric parses a Roman numeral with an optional suffix,
// like "XI" or "IV/A".
func ParseRomanNumeric(s string) (Numeric, error) {
	return parseSuffixed(s, "IVXLCDM", ParseRoman)
}

func parseSuffixed(s, digits string, conv func(string) (int, error)) (Numeric, error) {
	i := 0
	for i < len(s) && strings.IndexByte(digits, s[i]) >= 0 {
		i++
	}
	if i == 0 {
		return Numeric{}, fmt.Errorf("%q does not start with a number", s)
	}
	num, err := conv(s[:i])
	if err != nil {
		return Numeric{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	rest := s[i:]
	if strings.HasPrefix(rest, "/") {
		rest = rest[1:]
		if rest == "" {
			return Numeric{}, fmt.Errorf("%q: missing suffix after '/'", s)
		}
	}
	id := Numeric{Num: num}
	if rest != "" {
		c, err := ParseChar(rest)
		if err != nil {
			return Numeric{}, fmt.Errorf("parsing %q: %w", s, err)
		}
		id.Suffix = c
	}
	return id, nil
}

// IsFirst reports whether n is 1 without suffix.
func (n Numeric) IsFirst() bool { return n.Num == 1 && n.Suffix == 0 }

// IsNextFrom reports whether n directly follows prev, handling
// suffix transitions: 12a follows 12, 13 follows 12c.
func (n Numeric) IsNextFrom(prev Numeric) bool {
	switch {
	case n.Suffix == 0:
		return n.Num-prev.Num == 1
	case prev.Suffix == 0:
		return n.Num == prev.Num && n.Suffix.IsFirst()
	default:
		return n.Num == prev.Num && n.Suffix.IsNextFrom(prev.Suffix)
	}
}

// Less orders identifiers by number, then suffix.
func (n Numeric) Less(o Numeric) bool {
	if n.Num != o.Num {
		return n.Num < o.Num
	}
	return n.Suffix < o.Suffix
}

// String returns the compact form, "12a".
func (n Numeric) String() string {
	return strconv.Itoa(n.Num) + n.Suffix.String()
}

// Slashed returns the form used for Article ids, "12/A".
func (n Numeric) Slashed() string {
	if n.Suffix == 0 {
		return strconv.Itoa(n.Num)
	}
	return strconv.Itoa(n.Num) + "/" + n.Suffix.Upper()
}

// Roman returns the Roman form used for structural units, "IV/A".
func (n Numeric) Roman() string {
	s := ToRoman(n.Num)
	if n.Suffix != 0 {
		s += "/" + n.Suffix.Upper()
	}
	return s
}

// Article is an Article id with an optional Book, like "6:1" in the
// Civil Code.
type Article struct {
	Book int
	ID   Numeric
}

// ParseArticle parses "12", "5/A" or "6:1".
func ParseArticle(s string) (Article, error) {
	var a Article
	if book, rest, ok := strings.Cut(s, ":"); ok {
		n, err := strconv.Atoi(book)
		if err != nil || n <= 0 {
			return Article{}, fmt.Errorf("invalid book in article id %q", s)
		}
		a.Book = n
		s = rest
	}
	id, err := ParseNumeric(s)
	if err != nil {
		return Article{}, err
	}
	a.ID = id
	return a, nil
}

// IsNextFrom reports whether a directly follows prev. Crossing into the
// next Book restarts numbering; book and bookless ids never follow each
// other.
func (a Article) IsNextFrom(prev Article) bool {
	switch {
	case (a.Book == 0) != (prev.Book == 0):
		return false
	case a.Book == prev.Book:
		return a.ID.IsNextFrom(prev.ID)
	case a.Book == prev.Book+1:
		return a.ID.IsFirst()
	}
	return false
}

func (a Article) String() string {
	if a.Book > 0 {
		return strconv.Itoa(a.Book) + ":" + a.ID.Slashed()
	}
	return a.ID.Slashed()
}

// Prefixed is a Subpoint letter id with an optional prefix letter,
// like "aa" or "b".
type Prefixed struct {
	Prefix Char
	Char   Char
}

// ParsePrefixed parses one or two letters; the last one may be a digraph.
// "sz" is read as the digraph, not as prefix s and letter z.
func ParsePrefixed(s string) (Prefixed, error) {
	if c, err := ParseChar(s); err == nil {
		return Prefixed{Char: c}, nil
	}
	for i := 1; i < len(s); i++ {
		prefix, err := ParseChar(s[:i])
		if err != nil {
			continue
		}
		c, err := ParseChar(s[i:])
		if err != nil {
			continue
		}
		return Prefixed{Prefix: prefix, Char: c}, nil
	}
	return Prefixed{}, fmt.Errorf("%q is not a valid prefixed alphabetic identifier", s)
}

// IsNextFrom reports whether p follows prev under the same prefix.
func (p Prefixed) IsNextFrom(prev Prefixed) bool {
	return p.Prefix == prev.Prefix && p.Char.IsNextFrom(prev.Char)
}

func (p Prefixed) String() string {
	return p.Prefix.String() + p.Char.String()
}
