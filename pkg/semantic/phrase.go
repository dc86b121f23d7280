package semantic

import (
	"errors"
	"fmt"

	"github.com/coolbeans/hunlaw/pkg/grammar"
	"github.com/coolbeans/hunlaw/pkg/identifier"
	"github.com/coolbeans/hunlaw/pkg/reference"
)

// PhraseKind names a SpecialPhrase variant.
type PhraseKind string

const (
	KindBlockAmendment           PhraseKind = "block_amendment"
	KindStructuralBlockAmendment PhraseKind = "structural_block_amendment"
	KindTextAmendment            PhraseKind = "text_amendment"
	KindArticleTitleAmendment    PhraseKind = "article_title_amendment"
	KindEnforcementDate          PhraseKind = "enforcement_date"
	KindRepeal                   PhraseKind = "repeal"
	KindStructuralRepeal         PhraseKind = "structural_repeal"
)

// SpecialPhrase is an instruction a sentence gives about other
// provisions.
type SpecialPhrase interface {
	Kind() PhraseKind
}

// BlockAmendment replaces, or with PureInsertion inserts, the provisions
// at Position. The provisions follow the sentence.
type BlockAmendment struct {
	Position      reference.Reference `json:"position" yaml:"position"`
	PureInsertion bool                `json:"pure_insertion,omitempty" yaml:"pure_insertion,omitempty"`
}

// StructuralBlockAmendment replaces or inserts a structural unit.
type StructuralBlockAmendment struct {
	Position      reference.Structural `json:"position" yaml:"position"`
	PureInsertion bool                 `json:"pure_insertion,omitempty" yaml:"pure_insertion,omitempty"`
}

// AmendedPart restricts a text amendment to the intro or the wrap-up of
// a provision with children.
type AmendedPart string

const (
	WholeText  AmendedPart = "all"
	IntroOnly  AmendedPart = "intro_only"
	WrapUpOnly AmendedPart = "wrap_up_only"
)

// Replacement is a text replacement.
type Replacement struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// TextAmendmentItem replaces one text within one provision.
type TextAmendmentItem struct {
	Reference   reference.Reference `json:"reference" yaml:"reference"`
	AmendedPart AmendedPart         `json:"amended_part" yaml:"amended_part"`
	Replacement `yaml:",inline"`
}

// TextAmendment holds every reference and replacement pair of a text
// amendment sentence.
type TextAmendment struct {
	Items []TextAmendmentItem `json:"items" yaml:"items"`
}

// ArticleTitleAmendment replaces text in the title of an Article.
type ArticleTitleAmendment struct {
	Position    reference.Reference `json:"position" yaml:"position"`
	Replacement Replacement         `json:"replacement" yaml:"replacement"`
}

// InlineRepeal is the repeal clause of an enforcement date sentence.
// Without positions it repeals the provisions put into force.
type InlineRepeal struct {
	Positions []reference.Reference `json:"positions,omitempty" yaml:"positions,omitempty"`
	Date      Date                  `json:"date" yaml:"date"`
}

// EnforcementDate puts Positions, or the whole Act when there are none,
// into force, except for Exceptions.
type EnforcementDate struct {
	Positions    []reference.Reference `json:"positions,omitempty" yaml:"positions,omitempty"`
	Exceptions   []reference.Reference `json:"exceptions,omitempty" yaml:"exceptions,omitempty"`
	Date         Date                  `json:"date" yaml:"date"`
	InlineRepeal *InlineRepeal         `json:"inline_repeal,omitempty" yaml:"inline_repeal,omitempty"`
}

// Repeal repeals Positions, or only Texts within them. NotInForce marks
// provisions that are cancelled before entering into force.
type Repeal struct {
	Positions  []reference.Reference `json:"positions" yaml:"positions"`
	Texts      []string              `json:"texts,omitempty" yaml:"texts,omitempty"`
	NotInForce bool                  `json:"not_in_force,omitempty" yaml:"not_in_force,omitempty"`
}

// StructuralRepeal repeals a structural unit.
type StructuralRepeal struct {
	Position reference.Structural `json:"position" yaml:"position"`
}

func (BlockAmendment) Kind() PhraseKind           { return KindBlockAmendment }
func (StructuralBlockAmendment) Kind() PhraseKind { return KindStructuralBlockAmendment }
func (TextAmendment) Kind() PhraseKind            { return KindTextAmendment }
func (ArticleTitleAmendment) Kind() PhraseKind    { return KindArticleTitleAmendment }
func (EnforcementDate) Kind() PhraseKind          { return KindEnforcementDate }
func (Repeal) Kind() PhraseKind                   { return KindRepeal }
func (StructuralRepeal) Kind() PhraseKind         { return KindStructuralRepeal }

func newPhrase(kind PhraseKind) (SpecialPhrase, error) {
	switch kind {
	case KindBlockAmendment:
		return &BlockAmendment{}, nil
	case KindStructuralBlockAmendment:
		return &StructuralBlockAmendment{}, nil
	case KindTextAmendment:
		return &TextAmendment{}, nil
	case KindArticleTitleAmendment:
		return &ArticleTitleAmendment{}, nil
	case KindEnforcementDate:
		return &EnforcementDate{}, nil
	case KindRepeal:
		return &Repeal{}, nil
	case KindStructuralRepeal:
		return &StructuralRepeal{}, nil
	}
	return nil, fmt.Errorf("unknown special phrase %q", kind)
}

var errNoPosition = errors.New("no position found")

func convert(c grammar.Content) ([]OutgoingReference, SpecialPhrase, error) {
	b := newBuilder()
	var (
		phrase SpecialPhrase
		err    error
	)
	switch v := c.(type) {
	case *grammar.BlockAmendment:
		phrase, err = b.blockAmendment(v)
	case *grammar.BlockAmendmentWithSubtitle:
		phrase, err = b.subtitleAmendment(v)
	case *grammar.BlockAmendmentStructural:
		phrase, err = b.structuralAmendment(v)
	case *grammar.TextAmendment:
		phrase, err = b.textAmendment(v)
	case *grammar.ArticleTitleAmendment:
		phrase, err = b.articleTitleAmendment(v)
	case *grammar.EnforcementDate:
		phrase, err = b.enforcementDate(v)
	case *grammar.Repeal:
		phrase, err = b.repeal(v)
	case *grammar.StructuralRepeal:
		phrase, err = b.structuralRepeal(v)
	case *grammar.ListOfSimpleExpressions:
		return simpleExpressions(v), nil, nil
	default:
		return nil, nil, fmt.Errorf("unexpected sentence content %T", c)
	}
	if err != nil {
		return nil, nil, err
	}
	return b.out, phrase, nil
}

// simpleExpressions resolves each compound reference on its own. One
// that does not resolve is left out.
func simpleExpressions(v *grammar.ListOfSimpleExpressions) []OutgoingReference {
	var out []OutgoingReference
	for _, it := range v.Items {
		if it.Reference == nil {
			continue
		}
		b := newBuilder()
		if err := b.feedAct(it.Reference.Act); err != nil {
			continue
		}
		if err := b.feedRefs(it.Reference.References); err != nil {
			continue
		}
		out = append(out, b.out...)
	}
	return out
}

func (b *builder) feed(r *grammar.Reference) ([]reference.Reference, error) {
	if r == nil {
		return nil, nil
	}
	m := b.mark()
	if err := b.feedRef(*r); err != nil {
		return nil, err
	}
	return b.positions(m), nil
}

func (b *builder) blockAmendment(v *grammar.BlockAmendment) (SpecialPhrase, error) {
	if err := b.feedAct(v.Act); err != nil {
		return nil, err
	}
	amended, err := b.feed(v.Amended)
	if err != nil {
		return nil, err
	}
	if _, err := b.feed(v.Context); err != nil {
		return nil, err
	}
	if _, err := b.feed(v.Anchor); err != nil {
		return nil, err
	}
	inserted, err := b.feed(v.Inserted)
	if err != nil {
		return nil, err
	}
	all := append(amended, inserted...)
	if len(all) == 0 {
		return nil, errNoPosition
	}
	pos, err := reference.MakeRange(all[0], all[len(all)-1])
	if err != nil {
		return nil, err
	}
	return &BlockAmendment{Position: pos, PureInsertion: v.Amended == nil}, nil
}

func (b *builder) subtitleAmendment(v *grammar.BlockAmendmentWithSubtitle) (SpecialPhrase, error) {
	if err := b.feedAct(v.Act); err != nil {
		return nil, err
	}
	if err := b.feedRef(articleRef(v.Article)); err != nil {
		return nil, err
	}
	if _, err := b.feed(v.Inserted); err != nil {
		return nil, err
	}
	el, err := anchoredElement(v.Anchor, v.Article)
	if err != nil {
		return nil, err
	}
	return &StructuralBlockAmendment{
		Position:      reference.Structural{Act: actOf(v.Act), Element: el},
		PureInsertion: v.Insertion,
	}, nil
}

func (b *builder) structuralAmendment(v *grammar.BlockAmendmentStructural) (SpecialPhrase, error) {
	if err := b.feedAct(v.Act); err != nil {
		return nil, err
	}
	for _, a := range []*grammar.PartList{v.After, v.Before} {
		if a != nil {
			if err := b.feedRef(articleRef(*a)); err != nil {
				return nil, err
			}
		}
	}
	return &StructuralBlockAmendment{
		Position:      structural(v.Act, v.Parent, v.Target),
		PureInsertion: v.Insertion,
	}, nil
}

func amendedPart(p grammar.AmendedPart) AmendedPart {
	switch p {
	case grammar.IntroOnly:
		return IntroOnly
	case grammar.WrapUpOnly:
		return WrapUpOnly
	}
	return WholeText
}

func (b *builder) textAmendment(v *grammar.TextAmendment) (SpecialPhrase, error) {
	if err := b.feedAct(v.Act); err != nil {
		return nil, err
	}
	out := &TextAmendment{}
	for _, tr := range v.References {
		positions, err := b.feed(&tr.Reference)
		if err != nil {
			return nil, err
		}
		for _, pos := range positions {
			for _, rep := range v.Replacements {
				out.Items = append(out.Items, TextAmendmentItem{
					Reference:   pos,
					AmendedPart: amendedPart(tr.Part),
					Replacement: Replacement{From: rep.From.Text, To: rep.To.Text},
				})
			}
		}
	}
	if len(out.Items) == 0 {
		return nil, errNoPosition
	}
	return out, nil
}

func (b *builder) articleTitleAmendment(v *grammar.ArticleTitleAmendment) (SpecialPhrase, error) {
	if err := b.feedAct(v.Act); err != nil {
		return nil, err
	}
	positions, err := b.feed(&v.Article)
	if err != nil {
		return nil, err
	}
	if len(positions) != 1 {
		return nil, fmt.Errorf("article title amendment needs one position, found %d", len(positions))
	}
	return &ArticleTitleAmendment{
		Position:    positions[0],
		Replacement: Replacement{From: v.Replacement.From.Text, To: v.Replacement.To.Text},
	}, nil
}

func (b *builder) feedAll(refs []grammar.Reference) ([]reference.Reference, error) {
	m := b.mark()
	if err := b.feedRefs(refs); err != nil {
		return nil, err
	}
	return b.positions(m), nil
}

func (b *builder) enforcementDate(v *grammar.EnforcementDate) (SpecialPhrase, error) {
	positions, err := b.feedAll(v.References)
	if err != nil {
		return nil, err
	}
	exceptions, err := b.feedAll(v.Exceptions)
	if err != nil {
		return nil, err
	}
	date, err := dateOf(v.When)
	if err != nil {
		return nil, err
	}
	out := &EnforcementDate{Positions: positions, Exceptions: exceptions, Date: date}
	if ir := v.InlineRepeal; ir != nil {
		repealed, err := b.feedAll(ir.References)
		if err != nil {
			return nil, err
		}
		when, err := dateOf(ir.When)
		if err != nil {
			return nil, err
		}
		out.InlineRepeal = &InlineRepeal{Positions: repealed, Date: when}
	}
	return out, nil
}

func (b *builder) repeal(v *grammar.Repeal) (SpecialPhrase, error) {
	if err := b.feedAct(v.Act); err != nil {
		return nil, err
	}
	positions, err := b.feedAll(v.References)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, errNoPosition
	}
	out := &Repeal{Positions: positions, NotInForce: v.NotInForce}
	for _, q := range v.Texts {
		out.Texts = append(out.Texts, q.Text)
	}
	return out, nil
}

func (b *builder) structuralRepeal(v *grammar.StructuralRepeal) (SpecialPhrase, error) {
	if err := b.feedAct(v.Act); err != nil {
		return nil, err
	}
	pos := v.Position
	if pos.Article != nil {
		if err := b.feedRef(articleRef(*pos.Article)); err != nil {
			return nil, err
		}
		el, err := anchoredElement(pos.Anchor, *pos.Article)
		if err != nil {
			return nil, err
		}
		return &StructuralRepeal{Position: reference.Structural{Act: actOf(v.Act), Element: el}}, nil
	}
	if pos.Unit == nil {
		return nil, errNoPosition
	}
	return &StructuralRepeal{Position: structural(v.Act, pos.Parent, *pos.Unit)}, nil
}

func actOf(a *grammar.ActReference) *identifier.Act {
	if a == nil {
		return nil
	}
	act := a.Act
	return &act
}

func element(u grammar.StructuralReference) reference.Element {
	switch u.Kind {
	case grammar.BookUnit:
		return reference.Element{Kind: reference.Book, ID: u.ID}
	case grammar.PartUnit:
		return reference.Element{Kind: reference.Part, ID: u.ID}
	case grammar.TitleUnit:
		return reference.Element{Kind: reference.Title, ID: u.ID}
	case grammar.ChapterUnit:
		return reference.Element{Kind: reference.Chapter, ID: u.ID}
	}
	if u.Title != "" {
		return reference.Element{Kind: reference.SubtitleTitle, Text: u.Title}
	}
	return reference.Element{Kind: reference.SubtitleID, ID: u.ID}
}

// structural builds the position of unit inside parent. A Book parent
// becomes the Book of the position.
func structural(act *grammar.ActReference, parent *grammar.StructuralReference, unit grammar.StructuralReference) reference.Structural {
	s := reference.Structural{
		Act:       actOf(act),
		Book:      unit.Book,
		Element:   element(unit),
		TitleOnly: unit.TitleOnly,
	}
	if parent == nil {
		return s
	}
	if parent.Kind == grammar.BookUnit {
		s.Book = parent.ID.Num
		return s
	}
	p := element(*parent)
	s.Parent = &p
	if s.Book == 0 {
		s.Book = parent.Book
	}
	return s
}

func anchoredElement(anchor grammar.Anchor, a grammar.PartList) (reference.Element, error) {
	if len(a.Items) == 0 {
		return reference.Element{}, errNoPosition
	}
	first, err := parseRange(a.Items[0], identifier.ParseArticle)
	if err != nil {
		return reference.Element{}, err
	}
	last, err := parseRange(a.Items[len(a.Items)-1], identifier.ParseArticle)
	if err != nil {
		return reference.Element{}, err
	}
	el := reference.Element{Articles: reference.Span(first.Start, last.End)}
	switch anchor {
	case grammar.AfterArticle:
		el.Kind = reference.SubtitleAfterArticle
	case grammar.BeforeArticle:
		el.Kind = reference.SubtitleBeforeArticle
	case grammar.BeforeArticleInclusive:
		el.Kind = reference.SubtitleBeforeArticleInclusive
	default:
		el.Kind = reference.Article
	}
	return el, nil
}
