package grammar

import (
	"strings"

	"github.com/coolbeans/hunlaw/pkg/peg"
)

// maxTitleSpan bounds how far a "… szóló" title continuation is looked for.
const maxTitleSpan = 30

// titleContinuation is true when the Act reference just matched belongs
// to the title of another Act: "… törvény módosításáról szóló …" or
// "…, valamint a 2012. évi I. törvény".
var titleContinuation = peg.Choice(
	peg.Define("szóló title", func(p *peg.Parser) (bool, bool) {
		for n := 0; n < maxTitleSpan; n++ {
			w, ok := chunk(p)
			if !ok || startsUpper(w) || strings.ContainsAny(w, "§„”") {
				return false, false
			}
			if strings.TrimRight(w, ",;") == "szóló" {
				return true, true
			}
		}
		return false, false
	}),
	peg.Define("act list", func(p *peg.Parser) (bool, bool) {
		if _, ok := listSep(p); !ok {
			return false, false
		}
		peg.Opt(p, art)
		_, ok := actID(p)
		return true, ok
	}),
)

// anchor is the Act reference a sentence is about, as opposed to one
// inside a title.
var anchor = peg.Define("act anchor", func(p *peg.Parser) (ActReference, bool) {
	ref, ok := actReference(p)
	if !ok || peg.And(p, titleContinuation) {
		return ActReference{}, false
	}
	return ref, true
})

// titleToken is one token of a title. An Act cited inside the title is
// consumed whole, so its abbreviation declaration is kept.
var titleToken = peg.Define("title word", func(p *peg.Parser) (bool, bool) {
	if peg.And(p, anchor) {
		return false, false
	}
	if _, ok := peg.Opt(p, actReference); ok {
		return true, true
	}
	if _, ok := peg.Opt(p, quote); ok {
		return true, true
	}
	w, ok := chunk(p)
	return true, ok && !strings.HasPrefix(w, "§")
})

// titleSkip skips the title of an Act, "a Polgári Törvénykönyvről szóló",
// up to its anchor.
var titleSkip = peg.Memo(peg.Define("act title", func(p *peg.Parser) (int, bool) {
	return len(peg.Many(p, titleToken)), true
}))

var actPrefix = peg.Memo(peg.Define("act prefix", func(p *peg.Parser) (*ActReference, bool) {
	peg.Opt(p, art)
	titleSkip(p)
	ref, ok := actReference(p)
	if !ok {
		return nil, false
	}
	return &ref, true
}))

var noAct = peg.Define("article", func(p *peg.Parser) (*ActReference, bool) {
	peg.Opt(p, art)
	return nil, true
})

// leadAct is the Act a sentence starts with, if any.
var leadAct = peg.Choice(actPrefix, noAct)

// sentence wraps a sentence body so that it matches only the whole input.
func sentence[T Content](name string, body func(p *peg.Parser, start int) (T, bool)) peg.Rule[Content] {
	return peg.Define(name, func(p *peg.Parser) (Content, bool) {
		v, ok := body(p, p.Start())
		if !ok || !p.End() {
			return nil, false
		}
		return v, true
	})
}

func spanFrom(p *peg.Parser, start int) Span { return Span{Start: start, End: p.Pos()} }

var helyebe = phrase("helyébe", "a", "következő")

// trailingInsertion is ", és a § a következő (3) bekezdéssel egészül ki".
var trailingInsertion = peg.Define("trailing insertion", func(p *peg.Parser) (Reference, bool) {
	if _, ok := p.Lit(","); !ok || !words(p, "és") {
		return Reference{}, false
	}
	peg.Opt(p, art)
	if _, ok := peg.Opt(p, reference); !ok {
		if _, ok := p.Lit("§"); !ok {
			return Reference{}, false
		}
	}
	if !words(p, "a", "következő") {
		return Reference{}, false
	}
	ins, ok := reference(p)
	if !ok || !stem(p, "egészül") || !words(p, "ki") {
		return Reference{}, false
	}
	return ins, true
})

var blockAmendmentReplace = sentence("block amendment", func(p *peg.Parser, start int) (*BlockAmendment, bool) {
	act, _ := leadAct(p)
	ref, ok := reference(p)
	if !ok || !words(p, "helyébe", "a", "következő") || !stem(p, "rendelkezés") || !stem(p, "lép") {
		return nil, false
	}
	b := &BlockAmendment{Act: act, Amended: &ref}
	if ins, ok := peg.Opt(p, trailingInsertion); ok {
		b.Inserted = &ins
	}
	if _, ok := p.Lit(":"); !ok {
		return nil, false
	}
	b.Span = spanFrom(p, start)
	return b, true
})

var insertionAnchor = peg.Define("insertion anchor", func(p *peg.Parser) (Reference, bool) {
	peg.Opt(p, art)
	r, ok := reference(p)
	if !ok {
		return Reference{}, false
	}
	if _, _, ok := p.Word("követően", "megelőzően"); !ok {
		return Reference{}, false
	}
	return r, true
})

var blockAmendmentInsert = sentence("block amendment", func(p *peg.Parser, start int) (*BlockAmendment, bool) {
	act, _ := leadAct(p)
	b := &BlockAmendment{Act: act}
	if anc, ok := peg.Opt(p, insertionAnchor); ok {
		b.Anchor = &anc
	} else if ctx, ok := peg.Opt(p, reference); ok {
		b.Context = &ctx
		if anc, ok := peg.Opt(p, insertionAnchor); ok {
			b.Anchor = &anc
		}
	}
	if !words(p, "a", "következő") {
		return nil, false
	}
	ins, ok := reference(p)
	if !ok || !stem(p, "egészül") || !words(p, "ki") {
		return nil, false
	}
	if _, ok := p.Lit(":"); !ok {
		return nil, false
	}
	b.Inserted = &ins
	b.Span = spanFrom(p, start)
	return b, true
})

var subtitleReplaceInclusive = sentence("block amendment with subtitle", func(p *peg.Parser, start int) (*BlockAmendmentWithSubtitle, bool) {
	act, _ := leadAct(p)
	a, ok := articlePart(p)
	if !ok || !words(p, "és", "az", "azt", "megelőző") || !stem(p, "alcím") {
		return nil, false
	}
	if _, ok := helyebe(p); !ok || !stem(p, "alcím") || !words(p, "és") || !stem(p, "rendelkezés") || !stem(p, "lép") {
		return nil, false
	}
	if _, ok := p.Lit(":"); !ok {
		return nil, false
	}
	return &BlockAmendmentWithSubtitle{Span: spanFrom(p, start), Act: act, Anchor: BeforeArticleInclusive, Article: a}, true
})

var subtitleReplace = sentence("block amendment with subtitle", func(p *peg.Parser, start int) (*BlockAmendmentWithSubtitle, bool) {
	act, _ := leadAct(p)
	a, ok := articlePart(p)
	if !ok {
		return nil, false
	}
	w, _, ok := p.Word("megelőző", "követő")
	if !ok || !stem(p, "alcím") {
		return nil, false
	}
	if _, ok := helyebe(p); !ok || !stem(p, "alcím") || !stem(p, "lép") {
		return nil, false
	}
	if _, ok := p.Lit(":"); !ok {
		return nil, false
	}
	b := &BlockAmendmentWithSubtitle{Span: spanFrom(p, start), Act: act, Anchor: BeforeArticle, Article: a}
	if w == "követő" {
		b.Anchor = AfterArticle
	}
	return b, true
})

var alsoInserted = peg.Define("inserted provisions", func(p *peg.Parser) (Reference, bool) {
	if !words(p, "és") {
		return Reference{}, false
	}
	return reference(p)
})

var subtitleInsert = sentence("block amendment with subtitle", func(p *peg.Parser, start int) (*BlockAmendmentWithSubtitle, bool) {
	act, _ := leadAct(p)
	a, ok := articlePart(p)
	if !ok {
		return nil, false
	}
	w, _, ok := p.Word("megelőzően", "követően")
	if !ok || !words(p, "a", "következő") {
		return nil, false
	}
	b := &BlockAmendmentWithSubtitle{Act: act, Anchor: BeforeArticle, Article: a, Insertion: true}
	if w == "követően" {
		b.Anchor = AfterArticle
	}
	if id, ok := peg.Opt(p, subtitleNumber); ok {
		b.SubtitleID = &id
	}
	if !stem(p, "alcím") {
		return nil, false
	}
	if ins, ok := peg.Opt(p, alsoInserted); ok {
		b.Inserted = &ins
	}
	if !stem(p, "egészül") || !words(p, "ki") {
		return nil, false
	}
	if _, ok := p.Lit(":"); !ok {
		return nil, false
	}
	b.Span = spanFrom(p, start)
	return b, true
})

var andProvisions = peg.Define("and provisions", func(p *peg.Parser) (bool, bool) {
	return true, words(p, "és") && stem(p, "rendelkezés")
})

var structuralReplace = sentence("block amendment structural", func(p *peg.Parser, start int) (*BlockAmendmentStructural, bool) {
	act, _ := leadAct(p)
	target, ok := structuralUnit(p)
	if !ok {
		return nil, false
	}
	if _, ok := helyebe(p); !ok || !stem(p, "Könyv", "Rész", "rész", "Cím", "cím", "Fejezet", "fejezet", "alcím") {
		return nil, false
	}
	peg.Opt(p, andProvisions)
	if !stem(p, "lép") {
		return nil, false
	}
	if _, ok := p.Lit(":"); !ok {
		return nil, false
	}
	return &BlockAmendmentStructural{Span: spanFrom(p, start), Act: act, Target: target}, true
})

type articleAnchor struct {
	Article PartList
	After   bool
}

var structuralAnchor = peg.Define("article anchor", func(p *peg.Parser) (articleAnchor, bool) {
	peg.Opt(p, art)
	a, ok := articlePart(p)
	if !ok {
		return articleAnchor{}, false
	}
	w, _, ok := p.Word("követően", "megelőzően")
	return articleAnchor{Article: a, After: w == "követően"}, ok
})

var structuralInsert = sentence("block amendment structural", func(p *peg.Parser, start int) (*BlockAmendmentStructural, bool) {
	act, _ := leadAct(p)
	b := &BlockAmendmentStructural{Act: act, Insertion: true}
	if parent, ok := peg.Opt(p, structuralUnit); ok {
		b.Parent = &parent
	}
	if anc, ok := peg.Opt(p, structuralAnchor); ok {
		if anc.After {
			b.After = &anc.Article
		} else {
			b.Before = &anc.Article
		}
	}
	if !words(p, "a", "következő") {
		return nil, false
	}
	target, ok := structuralUnit(p)
	if !ok || !stem(p, "egészül") || !words(p, "ki") {
		return nil, false
	}
	if _, ok := p.Lit(":"); !ok {
		return nil, false
	}
	b.Target = target
	b.Span = spanFrom(p, start)
	return b, true
})

var textReference = peg.Define("text reference", func(p *peg.Parser) (TextReference, bool) {
	r, ok := reference(p)
	if !ok {
		return TextReference{}, false
	}
	tr := TextReference{Reference: r}
	if w, _, ok := p.Word("nyitó", "bevezető", "záró"); ok {
		if !stem(p, "szöveg") {
			return TextReference{}, false
		}
		tr.Part = IntroOnly
		if w == "záró" {
			tr.Part = WrapUpOnly
		}
	}
	return tr, true
})

// replacement is "az „a” szövegrész helyébe a „b” szöveg".
var replacement = peg.Define("replacement", func(p *peg.Parser) (Replacement, bool) {
	start := p.Start()
	from, ok := quotedItem(p)
	if !ok || !stem(p, "szöveg") || !words(p, "helyébe") {
		return Replacement{}, false
	}
	to, ok := quotedItem(p)
	if !ok || !stem(p, "szöveg") {
		return Replacement{}, false
	}
	return Replacement{Span: spanFrom(p, start), From: from, To: to}, true
})

var textAmendment = sentence("text amendment", func(p *peg.Parser, start int) (*TextAmendment, bool) {
	act, _ := leadAct(p)
	refs, ok := peg.SepBy1(p, textReference, refSep)
	if !ok {
		return nil, false
	}
	reps, ok := peg.SepBy1(p, replacement, listSep)
	if !ok || !stem(p, "lép") {
		return nil, false
	}
	if _, ok := p.Lit("."); !ok {
		return nil, false
	}
	return &TextAmendment{Span: spanFrom(p, start), Act: act, References: refs, Replacements: reps}, true
})

var articleTitleAmendment = sentence("article title amendment", func(p *peg.Parser, start int) (*ArticleTitleAmendment, bool) {
	act, _ := leadAct(p)
	r, ok := reference(p)
	if !ok || r.Article == nil || r.Paragraph != nil || r.Point != nil || r.Subpoint != nil {
		return nil, false
	}
	if !stem(p, "cím") {
		return nil, false
	}
	rep, ok := replacement(p)
	if !ok || !stem(p, "lép") {
		return nil, false
	}
	if _, ok := p.Lit("."); !ok {
		return nil, false
	}
	return &ArticleTitleAmendment{Span: spanFrom(p, start), Act: act, Article: r, Replacement: rep}, true
})

var wholeAct = peg.Choice(
	phrase("Ez", "a", "törvény"),
	phrase("E", "törvény"),
	peg.Define("this decree", func(p *peg.Parser) (bool, bool) {
		return true, (words(p, "Ez", "a") || words(p, "E")) && stem(p, "rendelet")
	}),
)

var exceptions = peg.Define("exceptions", func(p *peg.Parser) ([]Reference, bool) {
	if _, ok := peg.Opt(p, dash); !ok {
		if _, ok := p.Lit(","); !ok {
			return nil, false
		}
	}
	refs, ok := references(p)
	if !ok {
		return nil, false
	}
	p.Word("foglalt", "meghatározott")
	if !stem(p, "kivétel") {
		return nil, false
	}
	if _, ok := peg.Opt(p, dash); !ok {
		if _, ok := p.Lit(","); !ok {
			return nil, false
		}
	}
	return refs, true
})

// afterDays is "[a] <stem> követő [N.] napon"; N defaults to 1.
func afterDays(name, event string, kind DateKind) peg.Rule[DateSpec] {
	return peg.Define(name, func(p *peg.Parser) (DateSpec, bool) {
		start := p.Start()
		peg.Opt(p, art)
		if !stem(p, event) || !words(p, "követő") {
			return DateSpec{}, false
		}
		days := 1
		if n, ok := peg.Opt(p, ordinal); ok {
			days = n
		}
		if !stem(p, "nap") {
			return DateSpec{}, false
		}
		return DateSpec{Span: spanFrom(p, start), Kind: kind, Days: days}, true
	})
}

var (
	afterPublication = afterDays("after publication", "kihirdetés", AfterPublication)
	afterEnforcement = afterDays("after enforcement", "hatálybalépés", AfterEnforcement)
)

// dayInMonth is "a kihirdetését követő [N.] hónap M. napján"; without N
// the following month.
var dayInMonth = peg.Define("day in month", func(p *peg.Parser) (DateSpec, bool) {
	start := p.Start()
	peg.Opt(p, art)
	if !stem(p, "kihirdetés") || !words(p, "követő") {
		return DateSpec{}, false
	}
	d := DateSpec{Kind: DayInMonth}
	if n, ok := peg.Opt(p, ordinal); ok {
		d.Month = &n
	}
	if !words(p, "hónap") {
		return DateSpec{}, false
	}
	day, ok := ordinal(p)
	if !ok || !words(p, "napján") {
		return DateSpec{}, false
	}
	d.Day = day
	d.Span = spanFrom(p, start)
	return d, true
})

var enforcementWhen = peg.Choice(date, afterPublication, dayInMonth)

var repealWhen = peg.Choice(date, afterEnforcement)

var repealVerb = peg.Choice(phrase("hatályát", "veszti"), phrase("hatályukat", "vesztik"))

// clauseSep is the "," or ";" before a joined clause.
func clauseSep(p *peg.Parser) bool {
	if _, ok := p.Lit(","); ok {
		return true
	}
	_, ok := p.Lit(";")
	return ok
}

var inlineRepeal = peg.Define("inline repeal", func(p *peg.Parser) (InlineRepeal, bool) {
	start := p.Start()
	if !clauseSep(p) || !words(p, "és") {
		return InlineRepeal{}, false
	}
	ir := InlineRepeal{}
	if refs, ok := peg.Opt(p, references); ok {
		ir.References = refs
	}
	when, ok := repealWhen(p)
	if !ok {
		return InlineRepeal{}, false
	}
	if _, ok := repealVerb(p); !ok {
		return InlineRepeal{}, false
	}
	ir.When = when
	ir.Span = spanFrom(p, start)
	return ir, true
})

var enforcementDate = sentence("enforcement date", func(p *peg.Parser, start int) (*EnforcementDate, bool) {
	e := &EnforcementDate{}
	if _, ok := peg.Opt(p, wholeAct); !ok {
		refs, ok := references(p)
		if !ok {
			return nil, false
		}
		e.References = refs
	}
	if ex, ok := peg.Opt(p, exceptions); ok {
		e.Exceptions = ex
	}
	when, ok := enforcementWhen(p)
	if !ok {
		return nil, false
	}
	if _, _, ok := p.Word("lép", "lépnek"); !ok || !words(p, "hatályba") {
		return nil, false
	}
	if ir, ok := peg.Opt(p, inlineRepeal); ok {
		e.InlineRepeal = &ir
	}
	if _, ok := p.Lit("."); !ok {
		return nil, false
	}
	e.When = when
	e.Span = spanFrom(p, start)
	return e, true
})

// repealHead reports whether the sentence says "not in force" rather
// than "repealed".
var repealHead = peg.Choice(
	peg.Define("repeal", func(p *peg.Parser) (bool, bool) {
		_, ok := peg.Choice(phrase("Hatályát", "veszti"), phrase("Hatályukat", "vesztik"))(p)
		return false, ok
	}),
	peg.Define("not in force", func(p *peg.Parser) (bool, bool) {
		_, ok := peg.Choice(phrase("Nem", "lép", "hatályba"), phrase("Nem", "lépnek", "hatályba"))(p)
		return true, ok
	}),
)

var repealTexts = peg.Define("repealed texts", func(p *peg.Parser) ([]Quote, bool) {
	qs, ok := quotes(p)
	if !ok || !stem(p, "szöveg") {
		return nil, false
	}
	return qs, true
})

var repeal = sentence("repeal", func(p *peg.Parser, start int) (*Repeal, bool) {
	notInForce, ok := repealHead(p)
	if !ok {
		return nil, false
	}
	act, _ := leadAct(p)
	refs, ok := peg.SepBy1(p, reference, refSep)
	if !ok {
		return nil, false
	}
	r := &Repeal{Act: act, References: refs, NotInForce: notInForce}
	if texts, ok := peg.Opt(p, repealTexts); ok {
		r.Texts = texts
	}
	if _, ok := p.Lit("."); !ok {
		return nil, false
	}
	r.Span = spanFrom(p, start)
	return r, true
})

var repealPostfix = sentence("repeal", func(p *peg.Parser, start int) (*Repeal, bool) {
	act, _ := leadAct(p)
	refs, ok := peg.SepBy1(p, reference, refSep)
	if !ok {
		return nil, false
	}
	r := &Repeal{Act: act, References: refs}
	if texts, ok := peg.Opt(p, repealTexts); ok {
		r.Texts = texts
	}
	if _, ok := repealVerb(p); !ok {
		return nil, false
	}
	if _, ok := p.Lit("."); !ok {
		return nil, false
	}
	r.Span = spanFrom(p, start)
	return r, true
})

var structuralRepeal = sentence("structural repeal", func(p *peg.Parser, start int) (*StructuralRepeal, bool) {
	if notInForce, ok := repealHead(p); !ok || notInForce {
		return nil, false
	}
	act, _ := leadAct(p)
	pos, ok := structuralPosition(p)
	if !ok {
		return nil, false
	}
	if _, ok := p.Lit("."); !ok {
		return nil, false
	}
	return &StructuralRepeal{Span: spanFrom(p, start), Act: act, Position: pos}, true
})

var structuralRepealPostfix = sentence("structural repeal", func(p *peg.Parser, start int) (*StructuralRepeal, bool) {
	act, _ := leadAct(p)
	pos, ok := structuralPosition(p)
	if !ok {
		return nil, false
	}
	if _, ok := repealVerb(p); !ok {
		return nil, false
	}
	if _, ok := p.Lit("."); !ok {
		return nil, false
	}
	return &StructuralRepeal{Span: spanFrom(p, start), Act: act, Position: pos}, true
})

var simpleExpression = peg.Choice(
	peg.Define("quote", func(p *peg.Parser) (SimpleExpression, bool) {
		q, ok := quote(p)
		return SimpleExpression{Span: q.Span, Quote: &q}, ok
	}),
	peg.Define("reference", func(p *peg.Parser) (SimpleExpression, bool) {
		c, ok := compoundReference(p)
		return SimpleExpression{Span: c.Span, Reference: &c}, ok
	}),
	peg.Define("word", func(p *peg.Parser) (SimpleExpression, bool) {
		start := p.Start()
		w, ok := chunk(p)
		return SimpleExpression{Span: spanFrom(p, start), Text: w}, ok
	}),
)

// listOfSimpleExpressions matches any sentence.
var listOfSimpleExpressions = sentence("simple expressions", func(p *peg.Parser, start int) (*ListOfSimpleExpressions, bool) {
	items := peg.Many(p, simpleExpression)
	return &ListOfSimpleExpressions{Span: spanFrom(p, start), Items: items}, true
})

var content = peg.Choice(
	blockAmendmentReplace,
	blockAmendmentInsert,
	subtitleReplaceInclusive,
	subtitleReplace,
	subtitleInsert,
	structuralReplace,
	structuralInsert,
	textAmendment,
	articleTitleAmendment,
	enforcementDate,
	repeal,
	repealPostfix,
	structuralRepeal,
	structuralRepealPostfix,
	listOfSimpleExpressions,
)

var root = peg.Define("sentence", func(p *peg.Parser) (Root, bool) {
	start := p.Start()
	c, ok := content(p)
	return Root{Span: spanFrom(p, start), Content: c}, ok
})
