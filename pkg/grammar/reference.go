package grammar

import (
	"regexp"
	"strings"

	"github.com/coolbeans/hunlaw/pkg/identifier"
	"github.com/coolbeans/hunlaw/pkg/peg"
)

// Diagnostic kinds recorded while parsing.
const (
	diagUnresolved = "abbreviation-unresolved"
	diagRangeKind  = "range-kind-mismatch"
)

var (
	// abbreviationLike is an unknown token that is still used as an Act
	// abbreviation: "Ptk. 6:1. §". Abbreviations are short: "Szoctv." is
	// among the longest.
	abbreviationLike = regexp.MustCompile(`^(\p{Lu}[\p{L}-]{0,7}\.)\s+(?:\d+:)?\d+(?:/\p{Lu})?\.\s*§`)

	// mixedPointRange is a range whose endpoints are of different kinds:
	// "a)–3. pont".
	mixedPointRange = regexp.MustCompile(`^(?:[a-z]{1,3}\)\s*[-–—]\s*\d+[a-z]?\.|\d+[a-z]?\.?\s*[-–—]\s*[a-z]{1,3}\))\s*(?:al)?pont`)

	// mixedRangeEnd is the rest of such a range after the last id of a
	// list of the given kind: "b), c)–3. pont".
	mixedRangeEnd = map[IDKind]*regexp.Regexp{
		NumericID:    regexp.MustCompile(`^\s*[-–—]\s*[a-z]{1,3}\)\s*(?:al)?pont`),
		AlphabeticID: regexp.MustCompile(`^\s*[-–—]\s*\d+[a-z]?\.?\s*(?:al)?pont`),
	}
)

var romanNumber = peg.Token("<act number>", peg.Define("act number", func(p *peg.Parser) (int, bool) {
	s, _, ok := p.Scan("<roman numeral>", func(s string) int {
		n := 0
		for n < len(s) && strings.IndexByte("IVXLCDM", s[n]) >= 0 {
			n++
		}
		return n
	})
	if !ok {
		return 0, false
	}
	if _, ok := p.Lit("."); !ok {
		return 0, false
	}
	n, err := identifier.ParseRoman(s)
	return n, err == nil
}))

// actID is "2013. évi V. törvény", "2013. évi V. tv." or any inflection of
// "törvény", including "törvénnyel".
var actID = peg.Memo(peg.Define("act id", func(p *peg.Parser) (ActID, bool) {
	start := p.Start()
	year, ok := numberDot(p)
	if !ok {
		return ActID{}, false
	}
	if _, _, ok := p.Word("évi"); !ok {
		return ActID{}, false
	}
	number, ok := romanNumber(p)
	if !ok {
		return ActID{}, false
	}
	id := ActID{Year: year, Number: number, Roman: identifier.ToRoman(number)}
	if stem, suffix, _, ok := p.Stem("törvén"); ok {
		id.Suffix = stem + suffix
	} else if _, ok := p.Lit("tv."); ok {
		id.Suffix = "tv."
	} else {
		return ActID{}, false
	}
	id.Span = Span{Start: start, End: p.Pos()}
	return id, true
}))

func scanDeclared(s string) int {
	i := strings.IndexAny(s, "()")
	if i <= 0 || s[i] != ')' {
		return 0
	}
	return i
}

// declaration is "(a továbbiakban: Ptk.)" and yields the abbreviation.
var declaration = peg.Define("abbreviation declaration", func(p *peg.Parser) (string, bool) {
	if _, ok := p.Lit("("); !ok {
		return "", false
	}
	if !words(p, "a", "továbbiakban") {
		return "", false
	}
	if _, ok := p.Lit(":"); !ok {
		return "", false
	}
	key, _, ok := p.Scan("<abbreviation>", scanDeclared)
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", false
	}
	if _, ok := p.Lit(")"); !ok {
		return "", false
	}
	return key, true
})

// plainWords are capitalised words of statutory text that end a clause
// without being abbreviations.
var plainWords = map[string]bool{
	"Bíróság": true,
	"Hatóság": true,
	"Hivatal": true,
	"Kormány": true,
	"Kúria":   true,
	"Tanács":  true,
}

var abbreviation = peg.Define("abbreviation", func(p *peg.Parser) (ActReference, bool) {
	start := p.Start()
	m, ok := p.Lookup("<abbreviation>")
	if !ok {
		if sub := abbreviationLike.FindStringSubmatch(p.Rest()); sub != nil && !plainWords[strings.TrimSuffix(sub[1], ".")] {
			p.Report(peg.Diagnostic{Offset: start, Kind: diagUnresolved, Text: sub[1]})
		}
		return ActReference{}, false
	}
	act, ok := m.Value.(identifier.Act)
	if !ok {
		return ActReference{}, false
	}
	return ActReference{Span: m.Span, Act: act, Abbreviation: m.Key}, true
})

// actReference is an Act id with an optional abbreviation declaration, or
// a known abbreviation. A declaration emits an event binding the
// abbreviation to the Act.
var actReference = peg.Memo(peg.Define("act reference", func(p *peg.Parser) (ActReference, bool) {
	id, ok := peg.Opt(p, actID)
	if !ok {
		return abbreviation(p)
	}
	ref := ActReference{Span: id.Span, Act: identifier.Act{Year: id.Year, Number: id.Number}, ID: &id}
	if key, ok := peg.Opt(p, declaration); ok {
		p.Emit(key, ref.Act)
		ref.Declared = key
		ref.Span.End = p.Pos()
	}
	return ref, true
}))

// dottedItem matches "3." or "1–3." in one token.
func dottedItem(name string, scan func(string) int) peg.Rule[IDRange] {
	tail := peg.Define(name+" range end", func(p *peg.Parser) (string, bool) {
		p.Lit(".")
		if _, ok := dash(p); !ok {
			return "", false
		}
		s, _, ok := p.Scan(name, scan)
		return s, ok
	})
	return peg.Token(name, peg.Define(name, func(p *peg.Parser) (IDRange, bool) {
		start, sp, ok := p.Scan(name, scan)
		if !ok {
			return IDRange{}, false
		}
		r := IDRange{Start: start}
		if end, ok := peg.Opt(p, tail); ok {
			r.End = end
		}
		if _, ok := p.Lit("."); !ok {
			return IDRange{}, false
		}
		r.Span = Span{Start: sp.Start, End: p.Pos()}
		return r, true
	}))
}

// closedItem matches "a)" or "a)–c)", or with open "(", "(2)" or
// "(2)–(4)", in one token.
func closedItem(name, open string, scan func(string) int) peg.Rule[IDRange] {
	one := peg.Define(name+" id", func(p *peg.Parser) (string, bool) {
		if open != "" {
			if _, ok := p.Lit(open); !ok {
				return "", false
			}
		}
		s, _, ok := p.Scan(name, scan)
		if !ok {
			return "", false
		}
		if _, ok := p.Lit(")"); !ok {
			return "", false
		}
		return s, true
	})
	tail := peg.Define(name+" range end", func(p *peg.Parser) (string, bool) {
		if _, ok := dash(p); !ok {
			return "", false
		}
		return one(p)
	})
	return peg.Token(name, peg.Define(name, func(p *peg.Parser) (IDRange, bool) {
		start := p.Start()
		s, ok := one(p)
		if !ok {
			return IDRange{}, false
		}
		r := IDRange{Start: s}
		if end, ok := peg.Opt(p, tail); ok {
			r.End = end
		}
		r.Span = Span{Start: start, End: p.Pos()}
		return r, true
	}))
}

var (
	articleItem         = dottedItem("<article id>", scanArticleID)
	paragraphItem       = closedItem("<paragraph id>", "(", scanNumericID)
	numericPointItem    = dottedItem("<point id>", scanNumericID)
	alphaPointItem      = closedItem("<point id>", "", scanLetterID)
	numericSubpointItem = dottedItem("<subpoint id>", scanNumericID)
	alphaSubpointItem   = closedItem("<subpoint id>", "", scanPrefixedID)
)

// articlePart is "1.", "6:1.", "1. és 3." or "1–3." followed by "§" and
// an optional glued suffix: "§-a", "§-ának".
var articlePart = peg.Define("article part", func(p *peg.Parser) (PartList, bool) {
	start := p.Start()
	items, ok := peg.SepBy1(p, articleItem, listSep)
	if !ok {
		return PartList{}, false
	}
	if _, ok := p.Lit("§"); !ok {
		return PartList{}, false
	}
	suffix, _ := peg.Opt(p, glued)
	return PartList{Span: Span{Start: start, End: p.Pos()}, Items: items, Suffix: suffix}, true
})

var paragraphPart = peg.Define("paragraph part", func(p *peg.Parser) (PartList, bool) {
	start := p.Start()
	items, ok := peg.SepBy1(p, paragraphItem, listSep)
	if !ok {
		return PartList{}, false
	}
	_, suffix, _, ok := p.Stem("bekezdés")
	if !ok {
		return PartList{}, false
	}
	return PartList{Span: Span{Start: start, End: p.Pos()}, Items: items, Suffix: suffix}, true
})

// kindedPart matches a list of numeric or alphabetic ids before keyword.
// A range mixing the two kinds is reported and rejected.
func kindedPart(name, keyword string, numeric, alpha peg.Rule[IDRange]) peg.Rule[PartList] {
	return peg.Define(name, func(p *peg.Parser) (PartList, bool) {
		start := p.Start()
		if m := mixedPointRange.FindString(p.Rest()); m != "" && strings.HasSuffix(m, keyword) {
			p.Report(peg.Diagnostic{Offset: start, Kind: diagRangeKind, Text: m})
			return PartList{}, false
		}
		kind := NumericID
		items, ok := peg.SepBy1(p, numeric, listSep)
		if !ok {
			kind = AlphabeticID
			items, ok = peg.SepBy1(p, alpha, listSep)
		}
		if !ok {
			return PartList{}, false
		}
		if m := mixedRangeEnd[kind].FindString(p.Rest()); m != "" && strings.HasSuffix(m, keyword) {
			last := items[len(items)-1].Span.Start
			p.Report(peg.Diagnostic{Offset: last, Kind: diagRangeKind, Text: p.Input()[last : p.Pos()+len(m)]})
			return PartList{}, false
		}
		_, suffix, _, ok := p.Stem(keyword)
		if !ok {
			return PartList{}, false
		}
		return PartList{Span: Span{Start: start, End: p.Pos()}, Items: items, Suffix: suffix, Kind: kind}, true
	})
}

var (
	pointPart    = kindedPart("point part", "pont", numericPointItem, alphaPointItem)
	subpointPart = kindedPart("subpoint part", "alpont", numericSubpointItem, alphaSubpointItem)
)

// reference is an Article > Paragraph > Point > Subpoint chain with at
// least one level.
var reference = peg.Memo(peg.Define("reference", func(p *peg.Parser) (Reference, bool) {
	var r Reference
	var parts []*PartList
	for _, level := range []struct {
		rule peg.Rule[PartList]
		dst  **PartList
	}{
		{articlePart, &r.Article},
		{paragraphPart, &r.Paragraph},
		{pointPart, &r.Point},
		{subpointPart, &r.Subpoint},
	} {
		if part, ok := peg.Opt(p, level.rule); ok {
			*level.dst = &part
			parts = append(parts, &part)
		}
	}
	if len(parts) == 0 {
		return Reference{}, false
	}
	r.Span = Span{Start: parts[0].Start, End: parts[len(parts)-1].End}
	return r, true
}))

// references is an optional article word followed by a list of
// references.
var references = peg.Define("references", func(p *peg.Parser) ([]Reference, bool) {
	peg.Opt(p, art)
	return peg.SepBy1(p, reference, refSep)
})

// compoundReference is an optional Act followed by references into it.
// A lone Act is a compound reference too.
var compoundReference = peg.Memo(peg.Define("compound reference", func(p *peg.Parser) (CompoundReference, bool) {
	start := p.Start()
	var c CompoundReference
	if act, ok := peg.Opt(p, actReference); ok {
		c.Act = &act
	}
	refs, ok := peg.SepBy1(p, reference, refSep)
	if ok {
		c.References = refs
	} else if c.Act == nil {
		return CompoundReference{}, false
	}
	c.Span = Span{Start: start, End: p.Pos()}
	return c, true
}))

// words matches ws in sequence. Callers run inside Define, which undoes a
// partial match.
func words(p *peg.Parser, ws ...string) bool {
	for _, w := range ws {
		if _, _, ok := p.Word(w); !ok {
			return false
		}
	}
	return true
}

// stem matches one of stems with any inflection.
func stem(p *peg.Parser, stems ...string) bool {
	_, _, _, ok := p.Stem(stems...)
	return ok
}

// phrase is a fixed word sequence as a rule.
func phrase(ws ...string) peg.Rule[bool] {
	return peg.Define(strings.Join(ws, " "), func(p *peg.Parser) (bool, bool) {
		return true, words(p, ws...)
	})
}
