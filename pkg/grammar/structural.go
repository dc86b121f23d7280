package grammar

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/coolbeans/hunlaw/pkg/identifier"
	"github.com/coolbeans/hunlaw/pkg/peg"
)

// maxTitleWords bounds an unquoted subtitle title.
const maxTitleWords = 12

var bookPrefix = peg.Define("book", func(p *peg.Parser) (int, bool) {
	n, ok := ordinal(p)
	if !ok || !stem(p, "Könyv") {
		return 0, false
	}
	return n, true
})

var partUnit = peg.Define("part", func(p *peg.Parser) (StructuralReference, bool) {
	n, ok := ordinal(p)
	if !ok || !stem(p, "Rész", "rész") {
		return StructuralReference{}, false
	}
	return StructuralReference{Kind: PartUnit, ID: identifier.Numeric{Num: n}}, true
})

func romanUnit(name string, kind StructuralKind, stems ...string) peg.Rule[StructuralReference] {
	return peg.Define(name, func(p *peg.Parser) (StructuralReference, bool) {
		id, ok := romanDot(p)
		if !ok || !stem(p, stems...) {
			return StructuralReference{}, false
		}
		return StructuralReference{Kind: kind, ID: id}, true
	})
}

var (
	titleUnit   = romanUnit("title", TitleUnit, "Cím")
	chapterUnit = romanUnit("chapter", ChapterUnit, "Fejezet", "fejezet")
)

var subtitleNumber = peg.Token("<subtitle id>", peg.Define("subtitle id", func(p *peg.Parser) (identifier.Numeric, bool) {
	s, _, ok := p.Scan("<subtitle id>", scanNumericID)
	if !ok {
		return identifier.Numeric{}, false
	}
	if _, ok := p.Lit("."); !ok {
		return identifier.Numeric{}, false
	}
	id, err := identifier.ParseNumeric(s)
	return id, err == nil
}))

var subtitleStem = peg.Define("alcím", func(p *peg.Parser) (bool, bool) {
	return true, stem(p, "alcím")
})

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

// rawTitle is an unquoted subtitle title: capitalised words up to the
// word "alcím".
var rawTitle = peg.Define("subtitle title", func(p *peg.Parser) (string, bool) {
	start := p.Start()
	if !startsUpper(p.Rest()) {
		return "", false
	}
	end := start
	for n := 0; n < maxTitleWords; n++ {
		if peg.And(p, subtitleStem) {
			break
		}
		w, ok := chunk(p)
		if !ok || strings.Contains(w, "§") {
			return "", false
		}
		end = p.Pos()
	}
	if end == start || !peg.And(p, subtitleStem) {
		return "", false
	}
	return p.Input()[start:end], true
})

var subtitleUnit = peg.Define("subtitle", func(p *peg.Parser) (StructuralReference, bool) {
	s := StructuralReference{Kind: SubtitleUnit}
	if id, ok := peg.Opt(p, subtitleNumber); ok {
		s.ID = id
	} else if q, ok := peg.Opt(p, quote); ok {
		s.Title = q.Text
	} else if t, ok := peg.Opt(p, rawTitle); ok {
		s.Title = t
	} else {
		return StructuralReference{}, false
	}
	if !stem(p, "alcím") {
		return StructuralReference{}, false
	}
	return s, true
})

var unit = peg.Choice(partUnit, titleUnit, chapterUnit, subtitleUnit)

// structuralUnit is a structural reference: "Hatodik Könyv",
// "Hatodik Könyv Második Része", "II. Fejezete", "3/A. alcím",
// "„Záró rendelkezések” alcím címe". A trailing "cím" selects the title
// of the unit only.
var structuralUnit = peg.Memo(peg.Define("structural reference", func(p *peg.Parser) (StructuralReference, bool) {
	start := p.Start()
	book, hasBook := peg.Opt(p, bookPrefix)
	s, ok := peg.Opt(p, unit)
	switch {
	case ok:
		s.Book = book
	case hasBook:
		s = StructuralReference{Kind: BookUnit, ID: identifier.Numeric{Num: book}}
	default:
		return StructuralReference{}, false
	}
	if _, _, _, ok := p.Stem("cím"); ok {
		s.TitleOnly = true
	}
	s.Span = Span{Start: start, End: p.Pos()}
	return s, true
}))

var inclusive = phrase("és", "az", "azt", "megelőző")

// anchoredSubtitle is "a 12. §-t megelőző alcím", "a 12. §-t követő alcím"
// or "a 12. § és az azt megelőző alcím".
var anchoredSubtitle = peg.Define("anchored subtitle", func(p *peg.Parser) (StructuralPosition, bool) {
	start := p.Start()
	a, ok := articlePart(p)
	if !ok {
		return StructuralPosition{}, false
	}
	pos := StructuralPosition{Article: &a}
	if _, ok := peg.Opt(p, inclusive); ok {
		pos.Anchor = BeforeArticleInclusive
	} else if w, _, ok := p.Word("megelőző", "követő"); ok {
		pos.Anchor = BeforeArticle
		if w == "követő" {
			pos.Anchor = AfterArticle
		}
	} else {
		return StructuralPosition{}, false
	}
	if !stem(p, "alcím") {
		return StructuralPosition{}, false
	}
	pos.Span = Span{Start: start, End: p.Pos()}
	return pos, true
})

// unitPosition is a structural unit, optionally preceded by its parent:
// "II. Fejezet 3. alcíme".
var unitPosition = peg.Define("structural position", func(p *peg.Parser) (StructuralPosition, bool) {
	start := p.Start()
	first, ok := structuralUnit(p)
	if !ok {
		return StructuralPosition{}, false
	}
	pos := StructuralPosition{Unit: &first}
	if second, ok := peg.Opt(p, structuralUnit); ok {
		pos.Parent, pos.Unit = &first, &second
	}
	pos.Span = Span{Start: start, End: p.Pos()}
	return pos, true
})

var structuralPosition = peg.Choice(anchoredSubtitle, unitPosition)
