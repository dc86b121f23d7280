package reference

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coolbeans/hunlaw/pkg/identifier"
	"gopkg.in/yaml.v3"
)

// ElementKind is the kind of structural unit a Structural reference names.
type ElementKind uint8

const (
	Book ElementKind = iota + 1
	Part
	Title
	Chapter
	SubtitleID
	SubtitleTitle
	// SubtitleAfterArticle is the subtitle right after an Article.
	SubtitleAfterArticle
	// SubtitleBeforeArticle is only the subtitle before an Article.
	SubtitleBeforeArticle
	// SubtitleBeforeArticleInclusive is the subtitle before an Article
	// together with the Article itself.
	SubtitleBeforeArticleInclusive
	// SubtitleUnknown is a subtitle positioned only by its parent.
	SubtitleUnknown
	Article
)

var elementKindNames = map[ElementKind]string{
	Book:                           "book",
	Part:                           "part",
	Title:                          "title",
	Chapter:                        "chapter",
	SubtitleID:                     "subtitle_id",
	SubtitleTitle:                  "subtitle_title",
	SubtitleAfterArticle:           "subtitle_after_article",
	SubtitleBeforeArticle:          "subtitle_before_article",
	SubtitleBeforeArticleInclusive: "subtitle_before_article_inclusive",
	SubtitleUnknown:                "subtitle_unknown",
	Article:                        "article",
}

func (k ElementKind) String() string {
	if s, ok := elementKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ElementKind(%d)", k)
}

// MarshalText implements encoding.TextMarshaler.
func (k ElementKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ElementKind) UnmarshalText(b []byte) error {
	for kind, name := range elementKindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown structural element kind %q", b)
}

// Element is one structural unit. ID is set for Book, Part, Title,
// Chapter and SubtitleID; Text for SubtitleTitle; Articles for the
// article-anchored kinds and Article.
type Element struct {
	Kind     ElementKind
	ID       identifier.Numeric
	Text     string
	Articles Range[identifier.Article]
}

// Structural references a structural unit of an Act, optionally inside a
// Book and a parent unit.
type Structural struct {
	Act       *identifier.Act
	Book      int
	Parent    *Element
	Element   Element
	TitleOnly bool
}

func (e Element) String() string {
	switch e.Kind {
	case Book:
		w, _ := identifier.Ordinal(e.ID.Num)
		return capitalize(w) + " Könyv"
	case Part:
		w, _ := identifier.Ordinal(e.ID.Num)
		return capitalize(w) + " Rész"
	case Title:
		return e.ID.Roman() + ". Cím"
	case Chapter:
		return e.ID.Roman() + ". Fejezet"
	case SubtitleID:
		return e.ID.Slashed() + ". alcím"
	case SubtitleTitle:
		return "„" + e.Text + "” alcím"
	case SubtitleAfterArticle:
		return dotted(e.Articles, identifier.Article.String) + " §-t követő alcím"
	case SubtitleBeforeArticle:
		return dotted(e.Articles, identifier.Article.String) + " §-t megelőző alcím"
	case SubtitleBeforeArticleInclusive:
		return dotted(e.Articles, identifier.Article.String) + " § és az azt megelőző alcím"
	case SubtitleUnknown:
		return "alcím"
	case Article:
		return dotted(e.Articles, identifier.Article.String) + " §"
	}
	return e.Kind.String()
}

func capitalize(s string) string {
	for i := range s {
		if i > 0 {
			return strings.ToUpper(s[:i]) + s[i:]
		}
	}
	return strings.ToUpper(s)
}

func (s Structural) String() string {
	var parts []string
	if s.Act != nil {
		parts = append(parts, s.Act.String())
	}
	if s.Book > 0 {
		parts = append(parts, Element{Kind: Book, ID: identifier.Numeric{Num: s.Book}}.String())
	}
	if s.Parent != nil {
		parts = append(parts, s.Parent.String())
	}
	parts = append(parts, s.Element.String())
	out := strings.Join(parts, " ")
	if s.TitleOnly {
		out += " címe"
	}
	return out
}

type rawElement struct {
	Kind     ElementKind `json:"kind" yaml:"kind"`
	ID       string      `json:"id,omitempty" yaml:"id,omitempty"`
	Text     string      `json:"text,omitempty" yaml:"text,omitempty"`
	Articles string      `json:"articles,omitempty" yaml:"articles,omitempty"`
}

type rawStructural struct {
	Act       *identifier.Act `json:"act,omitempty" yaml:"act,omitempty"`
	Book      int             `json:"book,omitempty" yaml:"book,omitempty"`
	Parent    *rawElement     `json:"parent,omitempty" yaml:"parent,omitempty"`
	Element   rawElement      `json:"element" yaml:"element"`
	TitleOnly bool            `json:"title_only,omitempty" yaml:"title_only,omitempty"`
}

func (e Element) raw() rawElement {
	r := rawElement{Kind: e.Kind, Text: e.Text}
	switch e.Kind {
	case Book, Part, Title, Chapter, SubtitleID:
		r.ID = e.ID.String()
	case SubtitleAfterArticle, SubtitleBeforeArticle, SubtitleBeforeArticleInclusive, Article:
		r.Articles = compactRange(e.Articles, identifier.Article.String)
	}
	return r
}

func (r rawElement) element() (Element, error) {
	e := Element{Kind: r.Kind, Text: r.Text}
	if r.ID != "" {
		id, err := identifier.ParseNumeric(r.ID)
		if err != nil {
			return Element{}, err
		}
		e.ID = id
	}
	if r.Articles != "" {
		a, err := parseRange(r.Articles, identifier.ParseArticle)
		if err != nil {
			return Element{}, err
		}
		e.Articles = a
	}
	return e, nil
}

func (s Structural) raw() rawStructural {
	r := rawStructural{Act: s.Act, Book: s.Book, Element: s.Element.raw(), TitleOnly: s.TitleOnly}
	if s.Parent != nil {
		p := s.Parent.raw()
		r.Parent = &p
	}
	return r
}

func (r rawStructural) structural() (Structural, error) {
	s := Structural{Act: r.Act, Book: r.Book, TitleOnly: r.TitleOnly}
	e, err := r.Element.element()
	if err != nil {
		return Structural{}, fmt.Errorf("structural element: %w", err)
	}
	s.Element = e
	if r.Parent != nil {
		p, err := r.Parent.element()
		if err != nil {
			return Structural{}, fmt.Errorf("structural parent: %w", err)
		}
		s.Parent = &p
	}
	return s, nil
}

// MarshalJSON implements json.Marshaler.
func (s Structural) MarshalJSON() ([]byte, error) { return json.Marshal(s.raw()) }

// UnmarshalJSON implements json.Unmarshaler.
func (s *Structural) UnmarshalJSON(data []byte) error {
	var r rawStructural
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	out, err := r.structural()
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Structural) MarshalYAML() (any, error) { return s.raw(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Structural) UnmarshalYAML(node *yaml.Node) error {
	var r rawStructural
	if err := node.Decode(&r); err != nil {
		return err
	}
	out, err := r.structural()
	if err != nil {
		return err
	}
	*s = out
	return nil
}
