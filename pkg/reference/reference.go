// Package reference models resolved references into the hierarchy of an
// Act: Act > Article > Paragraph > Point > Subpoint, where every level
// may be a single identifier or a range.
package reference

import (
	"errors"
	"fmt"

	"github.com/coolbeans/hunlaw/pkg/identifier"
)

// ErrRangeKindMismatch is returned when the two ends of a range are of
// different identifier kinds, like a numeric and an alphabetic Point.
var ErrRangeKindMismatch = errors.New("range endpoints have different identifier kinds")

// Range is an inclusive identifier range. Start == End is a single id.
type Range[T comparable] struct {
	Start T
	End   T
}

// Single returns the range holding only id.
func Single[T comparable](id T) Range[T] { return Range[T]{Start: id, End: id} }

// Span returns the range from start to end.
func Span[T comparable](start, end T) Range[T] { return Range[T]{Start: start, End: end} }

// IsRange reports whether r covers more than one id.
func (r Range[T]) IsRange() bool { return r.Start != r.End }

// Kind tells numeric and alphabetic Point and Subpoint ids apart.
type Kind uint8

const (
	Numeric Kind = iota
	Alphabetic
)

func (k Kind) String() string {
	if k == Alphabetic {
		return "alphabetic"
	}
	return "numeric"
}

// Point is a numeric ("3.") or alphabetic ("a)") Point id range.
type Point struct {
	Kind    Kind
	Numeric Range[identifier.Numeric]
	Alpha   Range[identifier.Char]
}

// NumericPoint returns a numeric Point part.
func NumericPoint(r Range[identifier.Numeric]) Point { return Point{Kind: Numeric, Numeric: r} }

// AlphaPoint returns an alphabetic Point part.
func AlphaPoint(r Range[identifier.Char]) Point { return Point{Kind: Alphabetic, Alpha: r} }

// NewPointRange joins two single Points into a range.
func NewPointRange(start, end Point) (Point, error) {
	if start.Kind != end.Kind {
		return Point{}, fmt.Errorf("point %s-%s: %w", start, end, ErrRangeKindMismatch)
	}
	if start.Kind == Numeric {
		return NumericPoint(Span(start.Numeric.Start, end.Numeric.End)), nil
	}
	return AlphaPoint(Span(start.Alpha.Start, end.Alpha.End)), nil
}

// IsRange reports whether p covers more than one Point.
func (p Point) IsRange() bool {
	if p.Kind == Numeric {
		return p.Numeric.IsRange()
	}
	return p.Alpha.IsRange()
}

func (p Point) first() Point {
	if p.Kind == Numeric {
		return NumericPoint(Single(p.Numeric.Start))
	}
	return AlphaPoint(Single(p.Alpha.Start))
}

func (p Point) last() Point {
	if p.Kind == Numeric {
		return NumericPoint(Single(p.Numeric.End))
	}
	return AlphaPoint(Single(p.Alpha.End))
}

// Subpoint is a numeric ("1.") or prefixed alphabetic ("aa)") Subpoint id
// range.
type Subpoint struct {
	Kind    Kind
	Numeric Range[identifier.Numeric]
	Alpha   Range[identifier.Prefixed]
}

// NumericSubpoint returns a numeric Subpoint part.
func NumericSubpoint(r Range[identifier.Numeric]) Subpoint {
	return Subpoint{Kind: Numeric, Numeric: r}
}

// AlphaSubpoint returns an alphabetic Subpoint part.
func AlphaSubpoint(r Range[identifier.Prefixed]) Subpoint {
	return Subpoint{Kind: Alphabetic, Alpha: r}
}

// NewSubpointRange joins two single Subpoints into a range.
func NewSubpointRange(start, end Subpoint) (Subpoint, error) {
	if start.Kind != end.Kind {
		return Subpoint{}, fmt.Errorf("subpoint %s-%s: %w", start, end, ErrRangeKindMismatch)
	}
	if start.Kind == Numeric {
		return NumericSubpoint(Span(start.Numeric.Start, end.Numeric.End)), nil
	}
	return AlphaSubpoint(Span(start.Alpha.Start, end.Alpha.End)), nil
}

// IsRange reports whether s covers more than one Subpoint.
func (s Subpoint) IsRange() bool {
	if s.Kind == Numeric {
		return s.Numeric.IsRange()
	}
	return s.Alpha.IsRange()
}

func (s Subpoint) first() Subpoint {
	if s.Kind == Numeric {
		return NumericSubpoint(Single(s.Numeric.Start))
	}
	return AlphaSubpoint(Single(s.Alpha.Start))
}

func (s Subpoint) last() Subpoint {
	if s.Kind == Numeric {
		return NumericSubpoint(Single(s.Numeric.End))
	}
	return AlphaSubpoint(Single(s.Alpha.End))
}

// Reference points at a provision. Nil levels are absent. Build values
// with a Builder; the zero Reference is the empty reference.
type Reference struct {
	Act       *identifier.Act
	Article   *Range[identifier.Article]
	Paragraph *Range[identifier.Numeric]
	Point     *Point
	Subpoint  *Subpoint
}

// IsActOnly reports whether r names no Article.
func (r Reference) IsActOnly() bool { return r.Article == nil }

// IsEmpty reports whether r has no parts at all.
func (r Reference) IsEmpty() bool {
	return r.Act == nil && r.Article == nil && r.Paragraph == nil && r.Point == nil && r.Subpoint == nil
}

// Equal reports whether r and o name the same provision.
func (r Reference) Equal(o Reference) bool { return Compare(r, o) == 0 }

func ptrEq[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Validate checks the part combination and that only the last part is
// a range.
func (r Reference) Validate() error {
	act, art, par, pt, sub := r.Act != nil, r.Article != nil, r.Paragraph != nil, r.Point != nil, r.Subpoint != nil
	ok := false
	switch {
	case !art && !par && !pt && !sub:
		// act only, or empty
		ok = true
	case art && !sub:
		ok = true
	case art && pt && sub:
		ok = true
	case !act && !art && par && !pt && !sub:
		// relative paragraph
		ok = true
	case !act && !art && pt:
		// relative point or subpoint
		ok = true
	case !act && !art && !par && !pt && sub:
		ok = true
	}
	if !ok {
		return fmt.Errorf("invalid reference part combination: %s", r.Compact())
	}

	if r.Article != nil && r.Article.IsRange() && (par || pt || sub) {
		return fmt.Errorf("reference parts found after article range: %s", r.Compact())
	}
	if r.Paragraph != nil && r.Paragraph.IsRange() && (pt || sub) {
		return fmt.Errorf("reference parts found after paragraph range: %s", r.Compact())
	}
	if r.Point != nil && r.Point.IsRange() && sub {
		return fmt.Errorf("reference parts found after point range: %s", r.Compact())
	}
	return nil
}

// FirstInRange narrows every range in r to its first id.
func (r Reference) FirstInRange() Reference {
	out := r
	if r.Article != nil {
		out.Article = ptr(Single(r.Article.Start))
	}
	if r.Paragraph != nil {
		out.Paragraph = ptr(Single(r.Paragraph.Start))
	}
	if r.Point != nil {
		out.Point = ptr(r.Point.first())
	}
	if r.Subpoint != nil {
		out.Subpoint = ptr(r.Subpoint.first())
	}
	return out
}

// LastInRange narrows every range in r to its last id.
func (r Reference) LastInRange() Reference {
	out := r
	if r.Article != nil {
		out.Article = ptr(Single(r.Article.End))
	}
	if r.Paragraph != nil {
		out.Paragraph = ptr(Single(r.Paragraph.End))
	}
	if r.Point != nil {
		out.Point = ptr(r.Point.last())
	}
	if r.Subpoint != nil {
		out.Subpoint = ptr(r.Subpoint.last())
	}
	return out
}

func ptr[T any](v T) *T { return &v }

// MakeRange builds the reference spanning start to end. The two may only
// differ in their last part.
func MakeRange(start, end Reference) (Reference, error) {
	if !ptrEq(start.Act, end.Act) {
		return Reference{}, fmt.Errorf("reference ranges between acts are not allowed")
	}
	b := NewBuilder()
	if start.Act != nil {
		b.SetAct(*start.Act)
	}

	if !ptrEq(start.Article, end.Article) {
		if start.Paragraph != nil || end.Paragraph != nil || start.Point != nil || end.Point != nil || start.Subpoint != nil || end.Subpoint != nil {
			return Reference{}, fmt.Errorf("range where not only the last component differs (article)")
		}
		if start.Article == nil || end.Article == nil {
			return Reference{}, fmt.Errorf("range between different levels (article)")
		}
		b.SetArticle(Span(start.Article.Start, end.Article.End))
		return b.Build()
	}
	if start.Article != nil {
		b.SetArticle(*start.Article)
	}

	if !ptrEq(start.Paragraph, end.Paragraph) {
		if start.Point != nil || end.Point != nil || start.Subpoint != nil || end.Subpoint != nil {
			return Reference{}, fmt.Errorf("range where not only the last component differs (paragraph)")
		}
		if start.Paragraph == nil || end.Paragraph == nil {
			return Reference{}, fmt.Errorf("range between different levels (paragraph)")
		}
		b.SetParagraph(Span(start.Paragraph.Start, end.Paragraph.End))
		return b.Build()
	}
	if start.Paragraph != nil {
		b.SetParagraph(*start.Paragraph)
	}

	if !ptrEq(start.Point, end.Point) {
		if start.Subpoint != nil || end.Subpoint != nil {
			return Reference{}, fmt.Errorf("range where not only the last component differs (point)")
		}
		if start.Point == nil || end.Point == nil {
			return Reference{}, fmt.Errorf("range between different levels (point)")
		}
		p, err := NewPointRange(start.Point.first(), end.Point.last())
		if err != nil {
			return Reference{}, err
		}
		b.SetPoint(p)
		return b.Build()
	}
	if start.Point != nil {
		b.SetPoint(*start.Point)
	}

	if !ptrEq(start.Subpoint, end.Subpoint) {
		if start.Subpoint == nil || end.Subpoint == nil {
			return Reference{}, fmt.Errorf("range between different levels (subpoint)")
		}
		s, err := NewSubpointRange(start.Subpoint.first(), end.Subpoint.last())
		if err != nil {
			return Reference{}, err
		}
		b.SetSubpoint(s)
		return b.Build()
	}
	if start.Subpoint != nil {
		b.SetSubpoint(*start.Subpoint)
	}
	return b.Build()
}

// IsParentOf reports whether o lies strictly below r.
func (r Reference) IsParentOf(o Reference) bool {
	switch {
	case !ptrEq(r.Act, o.Act):
		return false
	case !ptrEq(r.Article, o.Article):
		return r.Article == nil
	case !ptrEq(r.Paragraph, o.Paragraph):
		return r.Paragraph == nil
	case !ptrEq(r.Point, o.Point):
		return r.Point == nil
	case !ptrEq(r.Subpoint, o.Subpoint):
		return r.Subpoint == nil
	}
	return false
}

// Contains reports whether o lies within r, counting ranges and parents.
func (r Reference) Contains(o Reference) bool {
	first, last := r.FirstInRange(), r.LastInRange()
	oFirst, oLast := o.FirstInRange(), o.LastInRange()
	return (Compare(first, oFirst) <= 0 || first.IsParentOf(oFirst)) &&
		(Compare(last, oLast) >= 0 || last.IsParentOf(oLast))
}

// RelativeTo fills the levels above r's first part from parent.
func (r Reference) RelativeTo(parent Reference) (Reference, error) {
	out := r
	switch {
	case r.Act != nil:
	case r.Article != nil:
		out.Act = parent.Act
	case r.Paragraph != nil:
		out.Act, out.Article = parent.Act, parent.Article
	case r.Point != nil:
		out.Act, out.Article, out.Paragraph = parent.Act, parent.Article, parent.Paragraph
	case r.Subpoint != nil:
		out.Act, out.Article, out.Paragraph, out.Point = parent.Act, parent.Article, parent.Paragraph, parent.Point
	default:
		out = parent
	}
	if err := out.Validate(); err != nil {
		return Reference{}, fmt.Errorf("relative reference: %w", err)
	}
	return out, nil
}

// Builder assembles a Reference top-down. Setting a part clears every
// part below it.
type Builder struct {
	ref Reference
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// SetAct sets the Act and clears all lower parts.
func (b *Builder) SetAct(a identifier.Act) *Builder {
	b.ref = Reference{Act: &a}
	return b
}

// SetArticle sets the Article and clears all lower parts.
func (b *Builder) SetArticle(r Range[identifier.Article]) *Builder {
	b.ref.Article = &r
	b.ref.Paragraph, b.ref.Point, b.ref.Subpoint = nil, nil, nil
	return b
}

// SetParagraph sets the Paragraph and clears all lower parts.
func (b *Builder) SetParagraph(r Range[identifier.Numeric]) *Builder {
	b.ref.Paragraph = &r
	b.ref.Point, b.ref.Subpoint = nil, nil
	return b
}

// SetPoint sets the Point and clears the Subpoint.
func (b *Builder) SetPoint(p Point) *Builder {
	b.ref.Point = &p
	b.ref.Subpoint = nil
	return b
}

// SetSubpoint sets the Subpoint.
func (b *Builder) SetSubpoint(s Subpoint) *Builder {
	b.ref.Subpoint = &s
	return b
}

// Build validates and returns a copy of the reference built so far.
func (b *Builder) Build() (Reference, error) {
	out := b.ref
	if err := out.Validate(); err != nil {
		return Reference{}, err
	}
	return out, nil
}
