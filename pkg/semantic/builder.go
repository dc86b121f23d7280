package semantic

import (
	"errors"
	"fmt"

	"github.com/coolbeans/hunlaw/pkg/grammar"
	"github.com/coolbeans/hunlaw/pkg/identifier"
	"github.com/coolbeans/hunlaw/pkg/reference"
)

// builder flattens syntax tree references into OutgoingReferences. Parts
// are fed top-down; a part inherits every level above it from what was
// fed before, and setting a level drops the levels below.
type builder struct {
	ref   reference.Builder
	out   []OutgoingReference
	start int // -1 when nothing was fed since the last record
	end   int
}

func newBuilder() *builder { return &builder{start: -1} }

func (b *builder) mark() int { return len(b.out) }

// positions returns the references recorded since mark, without the
// act-only ones.
func (b *builder) positions(mark int) []reference.Reference {
	var out []reference.Reference
	for _, o := range b.out[mark:] {
		if !o.Reference.IsActOnly() {
			out = append(out, o.Reference)
		}
	}
	return out
}

func (b *builder) touch(span grammar.Span) {
	if b.start < 0 {
		b.start = span.Start
	}
	b.end = span.End
}

func (b *builder) record() error {
	if b.start < 0 {
		return errors.New("recording a reference before any part")
	}
	r, err := b.ref.Build()
	if err != nil {
		return err
	}
	b.out = append(b.out, OutgoingReference{Start: b.start, End: b.end, Reference: r})
	b.start = -1
	return nil
}

func (b *builder) feedAct(a *grammar.ActReference) error {
	if a == nil {
		return nil
	}
	span := a.Span
	if a.ID != nil {
		span = a.ID.Span
	}
	b.touch(span)
	b.ref.SetAct(a.Act)
	return b.record()
}

func (b *builder) feedRefs(refs []grammar.Reference) error {
	for _, r := range refs {
		if err := b.feedRef(r); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) feedRef(r grammar.Reference) error {
	if err := b.feedList(r.Article, b.setArticle); err != nil {
		return err
	}
	if err := b.feedList(r.Paragraph, b.setParagraph); err != nil {
		return err
	}
	if err := b.feedList(r.Point, b.setPoint(r.Point)); err != nil {
		return err
	}
	if err := b.feedList(r.Subpoint, b.setSubpoint(r.Subpoint)); err != nil {
		return err
	}
	b.end = r.Span.End
	return b.record()
}

// feedList sets every item of l in turn, recording the previous item
// before moving on to the next.
func (b *builder) feedList(l *grammar.PartList, set func(grammar.IDRange) error) error {
	if l == nil {
		return nil
	}
	for i, it := range l.Items {
		if i > 0 {
			if err := b.record(); err != nil {
				return err
			}
		}
		b.touch(it.Span)
		if err := set(it); err != nil {
			return err
		}
	}
	return nil
}

func parseRange[T comparable](it grammar.IDRange, parse func(string) (T, error)) (reference.Range[T], error) {
	start, err := parse(it.Start)
	if err != nil {
		return reference.Range[T]{}, err
	}
	if !it.IsRange() {
		return reference.Single(start), nil
	}
	end, err := parse(it.End)
	if err != nil {
		return reference.Range[T]{}, err
	}
	return reference.Span(start, end), nil
}

func (b *builder) setArticle(it grammar.IDRange) error {
	r, err := parseRange(it, identifier.ParseArticle)
	if err != nil {
		return fmt.Errorf("article: %w", err)
	}
	b.ref.SetArticle(r)
	return nil
}

func (b *builder) setParagraph(it grammar.IDRange) error {
	r, err := parseRange(it, identifier.ParseNumeric)
	if err != nil {
		return fmt.Errorf("paragraph: %w", err)
	}
	b.ref.SetParagraph(r)
	return nil
}

func (b *builder) setPoint(l *grammar.PartList) func(grammar.IDRange) error {
	return func(it grammar.IDRange) error {
		if l.Kind == grammar.AlphabeticID {
			r, err := parseRange(it, identifier.ParseChar)
			if err != nil {
				return fmt.Errorf("point: %w", err)
			}
			b.ref.SetPoint(reference.AlphaPoint(r))
			return nil
		}
		r, err := parseRange(it, identifier.ParseNumeric)
		if err != nil {
			return fmt.Errorf("point: %w", err)
		}
		b.ref.SetPoint(reference.NumericPoint(r))
		return nil
	}
}

func (b *builder) setSubpoint(l *grammar.PartList) func(grammar.IDRange) error {
	return func(it grammar.IDRange) error {
		if l.Kind == grammar.AlphabeticID {
			r, err := parseRange(it, identifier.ParsePrefixed)
			if err != nil {
				return fmt.Errorf("subpoint: %w", err)
			}
			b.ref.SetSubpoint(reference.AlphaSubpoint(r))
			return nil
		}
		r, err := parseRange(it, identifier.ParseNumeric)
		if err != nil {
			return fmt.Errorf("subpoint: %w", err)
		}
		b.ref.SetSubpoint(reference.NumericSubpoint(r))
		return nil
	}
}

// articleRef wraps an anchoring Article list as a reference.
func articleRef(a grammar.PartList) grammar.Reference {
	return grammar.Reference{Span: a.Span, Article: &a}
}
