package grammar

import (
	"github.com/coolbeans/hunlaw/pkg/identifier"
	"github.com/coolbeans/hunlaw/pkg/peg"
	"github.com/coolbeans/hunlaw/pkg/types"
)

// Span is a half-open byte range of the parsed sentence.
type Span = peg.Span

// IDKind tells numeric and alphabetic Point and Subpoint ids apart.
type IDKind uint8

const (
	NumericID IDKind = iota
	AlphabeticID
)

// IDRange is one list item of a reference part: a single id, or a range
// when End is set.
type IDRange struct {
	Span  `json:"span" yaml:"span"`
	Start string `json:"start" yaml:"start"`
	End   string `json:"end,omitempty" yaml:"end,omitempty"`
}

// IsRange reports whether r is a range.
func (r IDRange) IsRange() bool { return r.End != "" }

// PartList is one level of a Reference: a single id, a list or a range,
// sharing the trailing morpheme written after the level keyword.
type PartList struct {
	Span   `json:"span" yaml:"span"`
	Items  []IDRange `json:"items" yaml:"items"`
	Suffix string    `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	Kind   IDKind    `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// Reference is an Article > Paragraph > Point > Subpoint chain. At least
// one level is present.
type Reference struct {
	Span      `json:"span" yaml:"span"`
	Article   *PartList `json:"article,omitempty" yaml:"article,omitempty"`
	Paragraph *PartList `json:"paragraph,omitempty" yaml:"paragraph,omitempty"`
	Point     *PartList `json:"point,omitempty" yaml:"point,omitempty"`
	Subpoint  *PartList `json:"subpoint,omitempty" yaml:"subpoint,omitempty"`
}

// ActID is a written Act identifier, "2013. évi V. törvény". Suffix is
// the type morpheme as written: "törvény", "törvényben", "tv.".
type ActID struct {
	Span   `json:"span" yaml:"span"`
	Year   int    `json:"year" yaml:"year"`
	Number int    `json:"number" yaml:"number"`
	Roman  string `json:"roman" yaml:"roman"`
	Suffix string `json:"suffix" yaml:"suffix"`
}

// ActReference names an Act either by its id or by an abbreviation. Act
// is always resolved.
type ActReference struct {
	Span         `json:"span" yaml:"span"`
	Act          identifier.Act `json:"act" yaml:"act"`
	ID           *ActID         `json:"id,omitempty" yaml:"id,omitempty"`
	Declared     string         `json:"declared,omitempty" yaml:"declared,omitempty"`
	Abbreviation string         `json:"abbreviation,omitempty" yaml:"abbreviation,omitempty"`
}

// CompoundReference is an optional Act followed by references into it.
type CompoundReference struct {
	Span       `json:"span" yaml:"span"`
	Act        *ActReference `json:"act,omitempty" yaml:"act,omitempty"`
	References []Reference   `json:"references,omitempty" yaml:"references,omitempty"`
}

// StructuralKind is the kind of a structural unit.
type StructuralKind uint8

const (
	BookUnit StructuralKind = iota + 1
	PartUnit
	TitleUnit
	ChapterUnit
	SubtitleUnit
)

var structuralKindNames = map[StructuralKind]string{
	BookUnit:     "book",
	PartUnit:     "part",
	TitleUnit:    "title",
	ChapterUnit:  "chapter",
	SubtitleUnit: "subtitle",
}

func (k StructuralKind) String() string { return structuralKindNames[k] }

// MarshalText implements encoding.TextMarshaler.
func (k StructuralKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// StructuralReference names a Book, Part, Title, Chapter or Subtitle.
// Subtitles are named by ID or by Title.
type StructuralReference struct {
	Span      `json:"span" yaml:"span"`
	Book      int                `json:"book,omitempty" yaml:"book,omitempty"`
	Kind      StructuralKind     `json:"kind" yaml:"kind"`
	ID        identifier.Numeric `json:"id" yaml:"id"`
	Title     string             `json:"title,omitempty" yaml:"title,omitempty"`
	TitleOnly bool               `json:"title_only,omitempty" yaml:"title_only,omitempty"`
}

// Anchor positions a subtitle relative to an Article.
type Anchor uint8

const (
	NoAnchor Anchor = iota
	AfterArticle
	BeforeArticle
	// BeforeArticleInclusive is the subtitle before an Article together
	// with the Article.
	BeforeArticleInclusive
)

// StructuralPosition is either a structural unit, optionally within a
// parent unit, or the subtitle anchored to an Article.
type StructuralPosition struct {
	Span    `json:"span" yaml:"span"`
	Parent  *StructuralReference `json:"parent,omitempty" yaml:"parent,omitempty"`
	Unit    *StructuralReference `json:"unit,omitempty" yaml:"unit,omitempty"`
	Anchor  Anchor               `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	Article *PartList            `json:"article,omitempty" yaml:"article,omitempty"`
}

// Quote is quoted text. Text excludes the outer quote marks.
type Quote struct {
	Span `json:"span" yaml:"span"`
	Text string `json:"text" yaml:"text"`
}

// DateKind distinguishes enforcement date expressions.
type DateKind uint8

const (
	AbsoluteDate DateKind = iota + 1
	// AfterPublication is "a kihirdetését követő [N.] napon".
	AfterPublication
	// DayInMonth is "a kihirdetését követő [N.] hónap M. napján".
	DayInMonth
	// AfterEnforcement is "a hatálybalépését követő [N.] napon".
	AfterEnforcement
)

// DateSpec is a date expression. Month is nil for "the following month".
type DateSpec struct {
	Span  `json:"span" yaml:"span"`
	Kind  DateKind    `json:"kind" yaml:"kind"`
	Date  *types.Date `json:"date,omitempty" yaml:"date,omitempty"`
	Days  int         `json:"days,omitempty" yaml:"days,omitempty"`
	Month *int        `json:"month,omitempty" yaml:"month,omitempty"`
	Day   int         `json:"day,omitempty" yaml:"day,omitempty"`
}

// Category names a top-level sentence shape.
type Category string

const (
	CategoryBlockAmendment             Category = "block_amendment"
	CategoryBlockAmendmentWithSubtitle Category = "block_amendment_with_subtitle"
	CategoryBlockAmendmentStructural   Category = "block_amendment_structural"
	CategoryTextAmendment              Category = "text_amendment"
	CategoryArticleTitleAmendment      Category = "article_title_amendment"
	CategoryEnforcementDate            Category = "enforcement_date"
	CategoryRepeal                     Category = "repeal"
	CategoryStructuralRepeal           Category = "structural_repeal"
	CategoryListOfSimpleExpressions    Category = "list_of_simple_expressions"
)

// Content is the recognized shape of a sentence.
type Content interface {
	Category() Category
}

// BlockAmendment replaces the provision at Amended, or inserts Inserted,
// optionally inside Context and before or after Anchor.
type BlockAmendment struct {
	Span     `json:"span" yaml:"span"`
	Act      *ActReference `json:"act,omitempty" yaml:"act,omitempty"`
	Amended  *Reference    `json:"amended,omitempty" yaml:"amended,omitempty"`
	Context  *Reference    `json:"context,omitempty" yaml:"context,omitempty"`
	Anchor   *Reference    `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	Inserted *Reference    `json:"inserted,omitempty" yaml:"inserted,omitempty"`
}

// BlockAmendmentWithSubtitle replaces or inserts the subtitle anchored to
// Article, optionally with the provisions in Inserted.
type BlockAmendmentWithSubtitle struct {
	Span       `json:"span" yaml:"span"`
	Act        *ActReference       `json:"act,omitempty" yaml:"act,omitempty"`
	Anchor     Anchor              `json:"anchor" yaml:"anchor"`
	Article    PartList            `json:"article" yaml:"article"`
	SubtitleID *identifier.Numeric `json:"subtitle_id,omitempty" yaml:"subtitle_id,omitempty"`
	Inserted   *Reference          `json:"inserted,omitempty" yaml:"inserted,omitempty"`
	Insertion  bool                `json:"insertion,omitempty" yaml:"insertion,omitempty"`
}

// BlockAmendmentStructural replaces or inserts a structural unit.
type BlockAmendmentStructural struct {
	Span      `json:"span" yaml:"span"`
	Act       *ActReference        `json:"act,omitempty" yaml:"act,omitempty"`
	Parent    *StructuralReference `json:"parent,omitempty" yaml:"parent,omitempty"`
	After     *PartList            `json:"after,omitempty" yaml:"after,omitempty"`
	Before    *PartList            `json:"before,omitempty" yaml:"before,omitempty"`
	Target    StructuralReference  `json:"target" yaml:"target"`
	Insertion bool                 `json:"insertion,omitempty" yaml:"insertion,omitempty"`
}

// AmendedPart restricts a text amendment to part of a provision.
type AmendedPart uint8

const (
	WholeText AmendedPart = iota
	IntroOnly
	WrapUpOnly
)

// TextReference is a reference a text amendment applies to.
type TextReference struct {
	Reference `json:"reference" yaml:"reference"`
	Part      AmendedPart `json:"part,omitempty" yaml:"part,omitempty"`
}

// Replacement is one "From" szövegrész helyébe "To" szöveg pair.
type Replacement struct {
	Span `json:"span" yaml:"span"`
	From Quote `json:"from" yaml:"from"`
	To   Quote `json:"to" yaml:"to"`
}

// TextAmendment applies every replacement within every reference.
type TextAmendment struct {
	Span         `json:"span" yaml:"span"`
	Act          *ActReference   `json:"act,omitempty" yaml:"act,omitempty"`
	References   []TextReference `json:"references" yaml:"references"`
	Replacements []Replacement   `json:"replacements" yaml:"replacements"`
}

// ArticleTitleAmendment replaces text in the title of an Article.
type ArticleTitleAmendment struct {
	Span        `json:"span" yaml:"span"`
	Act         *ActReference `json:"act,omitempty" yaml:"act,omitempty"`
	Article     Reference     `json:"article" yaml:"article"`
	Replacement Replacement   `json:"replacement" yaml:"replacement"`
}

// InlineRepeal is the ", és … hatályát veszti" clause of an enforcement
// date. No references means the Act itself.
type InlineRepeal struct {
	Span       `json:"span" yaml:"span"`
	References []Reference `json:"references,omitempty" yaml:"references,omitempty"`
	When       DateSpec    `json:"when" yaml:"when"`
}

// EnforcementDate states when References enter into force. No references
// means the whole Act.
type EnforcementDate struct {
	Span         `json:"span" yaml:"span"`
	References   []Reference   `json:"references,omitempty" yaml:"references,omitempty"`
	Exceptions   []Reference   `json:"exceptions,omitempty" yaml:"exceptions,omitempty"`
	When         DateSpec      `json:"when" yaml:"when"`
	InlineRepeal *InlineRepeal `json:"inline_repeal,omitempty" yaml:"inline_repeal,omitempty"`
}

// Repeal repeals References, or only the quoted Texts within them.
type Repeal struct {
	Span       `json:"span" yaml:"span"`
	Act        *ActReference `json:"act,omitempty" yaml:"act,omitempty"`
	References []Reference   `json:"references" yaml:"references"`
	Texts      []Quote       `json:"texts,omitempty" yaml:"texts,omitempty"`
	NotInForce bool          `json:"not_in_force,omitempty" yaml:"not_in_force,omitempty"`
}

// StructuralRepeal repeals a structural unit or an anchored subtitle.
type StructuralRepeal struct {
	Span     `json:"span" yaml:"span"`
	Act      *ActReference      `json:"act,omitempty" yaml:"act,omitempty"`
	Position StructuralPosition `json:"position" yaml:"position"`
}

// SimpleExpression is one item of the fallback token list. Exactly one
// field is set.
type SimpleExpression struct {
	Span      `json:"span" yaml:"span"`
	Quote     *Quote             `json:"quote,omitempty" yaml:"quote,omitempty"`
	Reference *CompoundReference `json:"reference,omitempty" yaml:"reference,omitempty"`
	Text      string             `json:"text,omitempty" yaml:"text,omitempty"`
}

// ListOfSimpleExpressions is the fallback shape matching any sentence.
type ListOfSimpleExpressions struct {
	Span  `json:"span" yaml:"span"`
	Items []SimpleExpression `json:"items" yaml:"items"`
}

func (BlockAmendment) Category() Category             { return CategoryBlockAmendment }
func (BlockAmendmentWithSubtitle) Category() Category { return CategoryBlockAmendmentWithSubtitle }
func (BlockAmendmentStructural) Category() Category   { return CategoryBlockAmendmentStructural }
func (TextAmendment) Category() Category              { return CategoryTextAmendment }
func (ArticleTitleAmendment) Category() Category      { return CategoryArticleTitleAmendment }
func (EnforcementDate) Category() Category            { return CategoryEnforcementDate }
func (Repeal) Category() Category                     { return CategoryRepeal }
func (StructuralRepeal) Category() Category           { return CategoryStructuralRepeal }
func (ListOfSimpleExpressions) Category() Category    { return CategoryListOfSimpleExpressions }

// Root is a parsed sentence.
type Root struct {
	Span    `json:"span" yaml:"span"`
	Content Content `json:"content" yaml:"content"`
}
