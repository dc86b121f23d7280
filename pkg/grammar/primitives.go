package grammar

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/coolbeans/hunlaw/pkg/identifier"
	"github.com/coolbeans/hunlaw/pkg/peg"
	"github.com/coolbeans/hunlaw/pkg/types"
)

func scanDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

func scanLower(s string) int {
	n := 0
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if !unicode.IsLower(r) {
			break
		}
		n += size
	}
	return n
}

func scanLetters(s string) int {
	n := 0
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if !unicode.IsLetter(r) {
			break
		}
		n += size
	}
	return n
}

func isLetterAt(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return s != "" && unicode.IsLetter(r)
}

// scanLetterID measures a single lowercase id letter, preferring
// digraphs: "sz" is one letter, never "s" followed by "z".
func scanLetterID(s string) int {
	for _, d := range identifier.Digraphs {
		if strings.HasPrefix(s, d) {
			return len(d)
		}
	}
	if s != "" && s[0] >= 'a' && s[0] <= 'z' {
		return 1
	}
	return 0
}

// scanNumericID measures "12", "12a" or "5/A".
func scanNumericID(s string) int {
	n := scanDigits(s)
	if n == 0 {
		return 0
	}
	rest := s[n:]
	if strings.HasPrefix(rest, "/") {
		r, size := utf8.DecodeRuneInString(rest[1:])
		if !unicode.IsUpper(r) {
			return n
		}
		m := 1 + size
		if next, nsize := utf8.DecodeRuneInString(rest[m:]); unicode.IsLower(next) {
			// digraph suffix, "5/Cs"
			if _, err := identifier.ParseChar(rest[1 : m+nsize]); err == nil {
				m += nsize
			}
		}
		return n + m
	}
	if l := scanLetterID(rest); l > 0 && !isLetterAt(rest[l:]) {
		return n + l
	}
	return n
}

// scanArticleID measures "12", "5/A" or "6:1".
func scanArticleID(s string) int {
	n := scanDigits(s)
	if n > 0 && n < len(s) && s[n] == ':' {
		if m := scanNumericID(s[n+1:]); m > 0 {
			return n + 1 + m
		}
		return 0
	}
	return scanNumericID(s)
}

// scanRoman measures a Roman numeral with an optional "/A" suffix.
func scanRoman(s string) int {
	n := 0
	for n < len(s) && strings.IndexByte("IVXLCDM", s[n]) >= 0 {
		n++
	}
	if n == 0 {
		return 0
	}
	if strings.HasPrefix(s[n:], "/") {
		r, size := utf8.DecodeRuneInString(s[n+1:])
		if unicode.IsUpper(r) {
			return n + 1 + size
		}
	}
	return n
}

// scanPrefixedID measures a one or two letter Subpoint id like "aa" or
// "bsz" before its closing parenthesis.
func scanPrefixedID(s string) int {
	n := 0
	for n < len(s) && n < 4 && s[n] >= 'a' && s[n] <= 'z' {
		n++
	}
	if n == 0 || n >= len(s) || s[n] != ')' {
		return 0
	}
	if _, err := identifier.ParsePrefixed(s[:n]); err != nil {
		return 0
	}
	return n
}

// scanQuote measures a „quoted” text, counting nested quote marks.
func scanQuote(s string) int {
	const open, closing = "„", "”"
	if !strings.HasPrefix(s, open) {
		return 0
	}
	depth := 0
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], open):
			depth++
			i += len(open)
		case strings.HasPrefix(s[i:], closing):
			depth--
			i += len(closing)
			if depth == 0 {
				return i
			}
		default:
			_, size := utf8.DecodeRuneInString(s[i:])
			i += size
		}
	}
	return 0
}

// scanChunk measures a run of non-space runes.
func scanChunk(s string) int {
	n := 0
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if unicode.IsSpace(r) {
			break
		}
		n += size
	}
	return n
}

var art = peg.Define("article", func(p *peg.Parser) (string, bool) {
	w, _, ok := p.Word("az", "Az", "a", "A")
	return w, ok
})

var dash = peg.Define("dash", func(p *peg.Parser) (string, bool) {
	for _, d := range []string{"-", "–", "—"} {
		if _, ok := p.Lit(d); ok {
			return d, true
		}
	}
	return "", false
})

var connector = peg.Define("connector", func(p *peg.Parser) (string, bool) {
	w, _, ok := p.Word("és", "valamint", "illetve", "vagy")
	return w, ok
})

// listSep separates list items: ",", ";", a connector, or punctuation
// followed by a connector.
var listSep = peg.Define("list separator", func(p *peg.Parser) (struct{}, bool) {
	if _, ok := p.Lit(","); ok {
		peg.Opt(p, connector)
		return struct{}{}, true
	}
	if _, ok := p.Lit(";"); ok {
		peg.Opt(p, connector)
		return struct{}{}, true
	}
	_, ok := connector(p)
	return struct{}{}, ok
})

// refSep separates references, which may restate the article word.
var refSep = peg.Define("reference separator", func(p *peg.Parser) (struct{}, bool) {
	if _, ok := listSep(p); !ok {
		return struct{}{}, false
	}
	peg.Opt(p, art)
	return struct{}{}, true
})

// numberDot is "12."
var numberDot = peg.Token("<number>", peg.Define("number", func(p *peg.Parser) (int, bool) {
	s, _, ok := p.Scan("<digits>", scanDigits)
	if !ok {
		return 0, false
	}
	if _, ok := p.Lit("."); !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}))

var ordinalWord = peg.Define("ordinal word", func(p *peg.Parser) (int, bool) {
	w, sp, ok := p.Scan("<ordinal>", scanLetters)
	if !ok {
		return 0, false
	}
	n, ok := identifier.ParseOrdinal(w)
	if !ok {
		p.Fail(sp.Start, "<ordinal>")
	}
	return n, ok
})

// ordinal is "8." or "nyolcadik".
var ordinal = peg.Choice(numberDot, ordinalWord)

var romanDot = peg.Token("<roman numeral>", peg.Define("roman numeral", func(p *peg.Parser) (identifier.Numeric, bool) {
	s, _, ok := p.Scan("<roman numeral>", scanRoman)
	if !ok {
		return identifier.Numeric{}, false
	}
	if _, ok := p.Lit("."); !ok {
		return identifier.Numeric{}, false
	}
	id, err := identifier.ParseRomanNumeric(s)
	return id, err == nil
}))

var quote = peg.Memo(peg.Define("quote", func(p *peg.Parser) (Quote, bool) {
	s, sp, ok := p.Scan("<quote>", scanQuote)
	if !ok {
		return Quote{}, false
	}
	return Quote{Span: sp, Text: strings.TrimSuffix(strings.TrimPrefix(s, "„"), "”")}, true
}))

var quotedItem = peg.Define("quoted item", func(p *peg.Parser) (Quote, bool) {
	peg.Opt(p, art)
	return quote(p)
})

// quotes is a list of quotes, each optionally preceded by an article.
var quotes = peg.Define("quote list", func(p *peg.Parser) ([]Quote, bool) {
	return peg.SepBy1(p, quotedItem, listSep)
})

var chunk = peg.Define("word", func(p *peg.Parser) (string, bool) {
	s, _, ok := p.Scan("<word>", scanChunk)
	return s, ok
})

// glued is a "-" followed by lowercase letters directly after the
// previous token, as in "§-a".
var glued = peg.Glued(peg.Define("glued suffix", func(p *peg.Parser) (string, bool) {
	if _, ok := p.Lit("-"); !ok {
		return "", false
	}
	s, _, ok := p.Scan("<suffix>", scanLower)
	return s, ok
}))

// date is "2013. július 1." or "2013. július 1-jén", optionally followed by
// "napján".
var date = peg.Define("date", func(p *peg.Parser) (DateSpec, bool) {
	start := p.Start()
	year, ok := numberDot(p)
	if !ok {
		return DateSpec{}, false
	}
	month, _, ok := p.Word(identifier.Months()...)
	if !ok {
		return DateSpec{}, false
	}
	day, ok := dayOfMonth(p)
	if !ok {
		return DateSpec{}, false
	}
	p.Word("napján")
	m, _ := identifier.ParseMonth(month)
	d := types.Date{Year: year, Month: m, Day: day}
	if !d.Valid() {
		return DateSpec{}, false
	}
	return DateSpec{Span: Span{Start: start, End: p.Pos()}, Kind: AbsoluteDate, Date: &d}, true
})

var dayOfMonth = peg.Token("<day>", peg.Define("day", func(p *peg.Parser) (int, bool) {
	s, _, ok := p.Scan("<digits>", scanDigits)
	if !ok {
		return 0, false
	}
	if _, ok := p.Lit("."); !ok {
		if _, ok := glued(p); !ok {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}))
