package reference

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coolbeans/hunlaw/pkg/identifier"
	"gopkg.in/yaml.v3"
)

func (p Point) String() string {
	if p.Kind == Numeric {
		return dotted(p.Numeric, identifier.Numeric.String)
	}
	return closed(p.Alpha, identifier.Char.String)
}

func (s Subpoint) String() string {
	if s.Kind == Numeric {
		return dotted(s.Numeric, identifier.Numeric.String)
	}
	return closed(s.Alpha, identifier.Prefixed.String)
}

// dotted renders "3." or "1–3.".
func dotted[T comparable](r Range[T], str func(T) string) string {
	if !r.IsRange() {
		return str(r.Start) + "."
	}
	return str(r.Start) + "–" + str(r.End) + "."
}

// closed renders "a)" or "a)–c)".
func closed[T comparable](r Range[T], str func(T) string) string {
	if !r.IsRange() {
		return str(r.Start) + ")"
	}
	return str(r.Start) + ")–" + str(r.End) + ")"
}

func paragraphString(r Range[identifier.Numeric]) string {
	if !r.IsRange() {
		return "(" + r.Start.String() + ")"
	}
	return "(" + r.Start.String() + ")–(" + r.End.String() + ")"
}

// String renders r the way statutes cite it, with the possessive suffix
// on the last part: "2012. évi I. törvény 1. § (2) bekezdés a) pontja".
func (r Reference) String() string {
	var b strings.Builder
	if r.Act != nil {
		b.WriteString(r.Act.String())
		if r.Article != nil {
			b.WriteByte(' ')
		}
	}
	if r.Article != nil {
		b.WriteString(dotted(*r.Article, identifier.Article.String))
		if r.Paragraph != nil || r.Point != nil {
			b.WriteString(" § ")
		} else {
			b.WriteString(" §-a")
		}
	}
	if r.Paragraph != nil {
		b.WriteString(paragraphString(*r.Paragraph))
		if r.Point != nil {
			b.WriteString(" bekezdés ")
		} else {
			b.WriteString(" bekezdése")
		}
	}
	if r.Point != nil {
		b.WriteString(r.Point.String())
		if r.Subpoint != nil {
			b.WriteString(" pont ")
		} else {
			b.WriteString(" pontja")
		}
	}
	if r.Subpoint != nil {
		b.WriteString(r.Subpoint.String())
		b.WriteString(" alpontja")
	}
	return b.String()
}

// unchecked is the serialised form of a Reference. Ranges are written as
// "start-end".
type unchecked struct {
	Act       *identifier.Act `json:"act,omitempty" yaml:"act,omitempty"`
	Article   string          `json:"article,omitempty" yaml:"article,omitempty"`
	Paragraph string          `json:"paragraph,omitempty" yaml:"paragraph,omitempty"`
	Point     string          `json:"point,omitempty" yaml:"point,omitempty"`
	Subpoint  string          `json:"subpoint,omitempty" yaml:"subpoint,omitempty"`
}

func compactRange[T comparable](r Range[T], str func(T) string) string {
	if !r.IsRange() {
		return str(r.Start)
	}
	return str(r.Start) + "-" + str(r.End)
}

func (r Reference) unchecked() unchecked {
	u := unchecked{Act: r.Act}
	if r.Article != nil {
		u.Article = compactRange(*r.Article, identifier.Article.String)
	}
	if r.Paragraph != nil {
		u.Paragraph = compactRange(*r.Paragraph, identifier.Numeric.String)
	}
	if r.Point != nil {
		if r.Point.Kind == Numeric {
			u.Point = compactRange(r.Point.Numeric, identifier.Numeric.String)
		} else {
			u.Point = compactRange(r.Point.Alpha, identifier.Char.String)
		}
	}
	if r.Subpoint != nil {
		if r.Subpoint.Kind == Numeric {
			u.Subpoint = compactRange(r.Subpoint.Numeric, identifier.Numeric.String)
		} else {
			u.Subpoint = compactRange(r.Subpoint.Alpha, identifier.Prefixed.String)
		}
	}
	return u
}

func parseRange[T comparable](s string, parse func(string) (T, error)) (Range[T], error) {
	start, end, isRange := strings.Cut(s, "-")
	first, err := parse(start)
	if err != nil {
		return Range[T]{}, err
	}
	if !isRange {
		return Single(first), nil
	}
	last, err := parse(end)
	if err != nil {
		return Range[T]{}, err
	}
	return Span(first, last), nil
}

func startsWithDigit(s string) bool { return s != "" && s[0] >= '0' && s[0] <= '9' }

// ParsePoint parses "3", "a" or the ranges "1-3", "a-c".
func ParsePoint(s string) (Point, error) {
	if err := sameKind(s); err != nil {
		return Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	if startsWithDigit(s) {
		r, err := parseRange(s, identifier.ParseNumeric)
		return NumericPoint(r), err
	}
	r, err := parseRange(s, identifier.ParseChar)
	return AlphaPoint(r), err
}

// ParseSubpoint parses "1", "aa" or their ranges.
func ParseSubpoint(s string) (Subpoint, error) {
	if err := sameKind(s); err != nil {
		return Subpoint{}, fmt.Errorf("subpoint %q: %w", s, err)
	}
	if startsWithDigit(s) {
		r, err := parseRange(s, identifier.ParseNumeric)
		return NumericSubpoint(r), err
	}
	r, err := parseRange(s, identifier.ParsePrefixed)
	return AlphaSubpoint(r), err
}

func sameKind(s string) error {
	start, end, isRange := strings.Cut(s, "-")
	if isRange && startsWithDigit(start) != startsWithDigit(end) {
		return ErrRangeKindMismatch
	}
	return nil
}

func (u unchecked) check() (Reference, error) {
	var r Reference
	r.Act = u.Act
	if u.Article != "" {
		a, err := parseRange(u.Article, identifier.ParseArticle)
		if err != nil {
			return Reference{}, fmt.Errorf("article: %w", err)
		}
		r.Article = &a
	}
	if u.Paragraph != "" {
		p, err := parseRange(u.Paragraph, identifier.ParseNumeric)
		if err != nil {
			return Reference{}, fmt.Errorf("paragraph: %w", err)
		}
		r.Paragraph = &p
	}
	if u.Point != "" {
		p, err := ParsePoint(u.Point)
		if err != nil {
			return Reference{}, fmt.Errorf("point: %w", err)
		}
		r.Point = &p
	}
	if u.Subpoint != "" {
		s, err := ParseSubpoint(u.Subpoint)
		if err != nil {
			return Reference{}, fmt.Errorf("subpoint: %w", err)
		}
		r.Subpoint = &s
	}
	if err := r.Validate(); err != nil {
		return Reference{}, err
	}
	return r, nil
}

// Compact returns the underscore separated form
// "act_article_paragraph_point_subpoint", like "2012.1_1_2_3_4".
func (r Reference) Compact() string {
	u := r.unchecked()
	act := ""
	if u.Act != nil {
		act = u.Act.Compact()
	}
	return strings.Join([]string{act, u.Article, u.Paragraph, u.Point, u.Subpoint}, "_")
}

// ParseCompact is the inverse of Compact.
func ParseCompact(s string) (Reference, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 5 {
		return Reference{}, fmt.Errorf("compact reference %q: want 5 parts, got %d", s, len(parts))
	}
	u := unchecked{Article: parts[1], Paragraph: parts[2], Point: parts[3], Subpoint: parts[4]}
	if parts[0] != "" {
		var a identifier.Act
		if _, err := fmt.Sscanf(parts[0], "%d.%d", &a.Year, &a.Number); err != nil {
			return Reference{}, fmt.Errorf("compact reference %q: act: %w", s, err)
		}
		u.Act = &a
	}
	return u.check()
}

// MarshalJSON encodes r in its unchecked form.
func (r Reference) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.unchecked())
}

// UnmarshalJSON decodes and validates r.
func (r *Reference) UnmarshalJSON(data []byte) error {
	var u unchecked
	if err := json.Unmarshal(data, &u); err != nil {
		return err
	}
	checked, err := u.check()
	if err != nil {
		return err
	}
	*r = checked
	return nil
}

// MarshalYAML encodes r in its unchecked form.
func (r Reference) MarshalYAML() (any, error) {
	return r.unchecked(), nil
}

// UnmarshalYAML decodes and validates r.
func (r *Reference) UnmarshalYAML(node *yaml.Node) error {
	var u unchecked
	if err := node.Decode(&u); err != nil {
		return err
	}
	checked, err := u.check()
	if err != nil {
		return err
	}
	*r = checked
	return nil
}
