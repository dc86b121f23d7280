// Package grammar parses single sentences of Hungarian statutory text
// into a syntax tree: references to provisions, Act identifiers and
// abbreviations, and the amendment, enforcement date and repeal
// sentence shapes.
//
// Every sentence parses. A sentence of no known shape yields a
// ListOfSimpleExpressions holding whatever references it contains. Parse
// errors are reserved for references that cannot be resolved: an Act
// abbreviation that is not known, or a range whose two ends are of
// different kinds.
package grammar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coolbeans/hunlaw/pkg/identifier"
	"github.com/coolbeans/hunlaw/pkg/peg"
	lawref "github.com/coolbeans/hunlaw/pkg/reference"
)

// Options configures a parse.
type Options struct {
	// Abbreviations resolves Act abbreviations known before the sentence,
	// typically an *abbrev.Registry.
	Abbreviations peg.Matcher
	// MaxDepth bounds rule nesting. Zero means peg.DefaultMaxDepth.
	MaxDepth int
}

// Abbreviation is an abbreviation declared by the sentence:
// "2013. évi V. törvény (a továbbiakban: Ptk.)".
type Abbreviation struct {
	Key    string         `json:"key" yaml:"key"`
	Act    identifier.Act `json:"act" yaml:"act"`
	Offset int            `json:"offset" yaml:"offset"`
}

// Parsed is a parsed sentence and the abbreviations it declares.
type Parsed struct {
	Root          Root
	Abbreviations []Abbreviation
}

// ErrorKind classifies a parse error.
type ErrorKind uint8

const (
	// SyntaxFailure is a sentence that matched no rule. With the fallback
	// shape it only happens to the single-reference entry points.
	SyntaxFailure ErrorKind = iota + 1
	// AbbreviationUnresolved is an unknown abbreviation used as an Act.
	AbbreviationUnresolved
	// RangeKindMismatch is a range like "a)–3." mixing id kinds.
	RangeKindMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxFailure:
		return "syntax failure"
	case AbbreviationUnresolved:
		return "abbreviation unresolved"
	case RangeKindMismatch:
		return "range kind mismatch"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Error is a failed parse.
type Error struct {
	Kind     ErrorKind
	Offset   int
	Expected []string
	// Token is the input at Offset up to the next space.
	Token string

	cause error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s at offset %d", e.Kind, e.Offset)
	if e.Token != "" {
		msg += fmt.Sprintf(" near %q", e.Token)
	}
	if len(e.Expected) > 0 {
		msg += fmt.Sprintf(": expected one of %v", e.Expected)
	}
	return msg
}

// Unwrap returns lawref.ErrRangeKindMismatch for range errors and the
// engine error for syntax failures.
func (e *Error) Unwrap() error {
	if e.Kind == RangeKindMismatch {
		return lawref.ErrRangeKindMismatch
	}
	return e.cause
}

func newParser(text string, opts Options) *peg.Parser {
	var po []peg.Option
	if opts.Abbreviations != nil {
		po = append(po, peg.WithMatcher(opts.Abbreviations))
	}
	if opts.MaxDepth > 0 {
		po = append(po, peg.WithMaxDepth(opts.MaxDepth))
	}
	return peg.New(text, po...)
}

func tokenAt(text string, offset int) string {
	if offset < 0 || offset >= len(text) {
		return ""
	}
	return text[offset : offset+scanChunk(text[offset:])]
}

// declaredBefore reports whether the committed event log binds the key
// used at offset, by a declaration ending at or before it.
func declaredBefore(p *peg.Parser, offset int) bool {
	rest := p.Input()[offset:]
	for _, e := range p.Events() {
		if e.Key != "" && e.Offset <= offset && strings.HasPrefix(rest, e.Key) {
			return true
		}
	}
	return false
}

// failure turns sticky diagnostics, or else err, into an *Error.
// Diagnostics win even over a successful parse. An unresolved abbreviation
// seen on a discarded path does not count when the committed parse
// declares it earlier in the sentence.
func failure(p *peg.Parser, err error) error {
	for _, d := range p.Diagnostics() {
		kind := AbbreviationUnresolved
		if d.Kind == diagRangeKind {
			kind = RangeKindMismatch
		} else if declaredBefore(p, d.Offset) {
			continue
		}
		return &Error{Kind: kind, Offset: d.Offset, Token: d.Text}
	}
	if err == nil {
		return nil
	}
	var perr *peg.Error
	if errors.As(err, &perr) {
		return &Error{
			Kind:     SyntaxFailure,
			Offset:   perr.Offset,
			Expected: perr.Expected,
			Token:    tokenAt(p.Input(), perr.Offset),
			cause:    perr,
		}
	}
	return err
}

func run[T any](text string, opts Options, rule peg.Rule[T]) (T, *peg.Parser, error) {
	p := newParser(text, opts)
	v, err := peg.Parse(p, rule)
	if err := failure(p, err); err != nil {
		var zero T
		return zero, p, err
	}
	return v, p, nil
}

// Parse parses one sentence.
func Parse(text string, opts Options) (*Parsed, error) {
	r, p, err := run(text, opts, root)
	if err != nil {
		return nil, err
	}
	out := &Parsed{Root: r}
	for _, e := range p.Events() {
		if act, ok := e.Value.(identifier.Act); ok {
			out.Abbreviations = append(out.Abbreviations, Abbreviation{Key: e.Key, Act: act, Offset: e.Offset})
		}
	}
	return out, nil
}

// ParseReference parses text consisting of exactly one reference, such as
// "5. § (2) bekezdés a) pont".
func ParseReference(text string, opts Options) (Reference, error) {
	r, _, err := run(text, opts, reference)
	return r, err
}

var leadingCompound = peg.Define("compound reference", func(p *peg.Parser) (CompoundReference, bool) {
	peg.Opt(p, art)
	return compoundReference(p)
})

// ParseCompoundReference parses text consisting of exactly one compound
// reference, optionally led by an article: "a Ptk. 6:1. §-a".
func ParseCompoundReference(text string, opts Options) (CompoundReference, error) {
	c, _, err := run(text, opts, leadingCompound)
	return c, err
}

// ParseStructuralReference parses text consisting of exactly one
// structural reference, such as "II. Fejezet".
func ParseStructuralReference(text string, opts Options) (StructuralReference, error) {
	s, _, err := run(text, opts, structuralUnit)
	return s, err
}
