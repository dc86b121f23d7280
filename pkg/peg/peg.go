// Package peg provides a small ordered-choice, backtracking parser
// combinator engine with packrat memoization, a whitespace-skipping policy,
// furthest-failure diagnostics and a tentative event log.
//
// Rules are plain Go functions of type Rule. Sequencing is written inside
// rule bodies wrapped with Define, which guarantees that a failing rule
// leaves the parser exactly as it found it. Events emitted by a rule
// (for example abbreviation declarations) stay tentative until the whole
// parse succeeds, so speculative paths never leak them.
package peg

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxDepth bounds rule nesting.
const DefaultMaxDepth = 256

// Span is a half-open byte range of the input.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Rule is a parsing function. On success it returns the produced value
// and true, having advanced the cursor past the consumed input.
type Rule[T any] func(p *Parser) (T, bool)

// Event is a side effect requested by a rule, such as registering an
// abbreviation. Key is the literal text the event binds.
type Event struct {
	Offset int
	Key    string
	Value  any
}

// Matcher resolves known keys at the start of the remaining input.
// It is the engine's only context-sensitive extension point.
type Matcher interface {
	// MatchPrefix returns the longest known key that s starts with.
	MatchPrefix(s string) (key string, value any, ok bool)
}

// Diagnostic is a sticky finding recorded while parsing. Unlike failures,
// diagnostics survive backtracking.
type Diagnostic struct {
	Offset int
	Kind   string
	Text   string
}

// Option configures a Parser.
type Option func(*Parser)

// WithMatcher installs the lookup strategy used by Lookup.
func WithMatcher(m Matcher) Option {
	return func(p *Parser) { p.matcher = m }
}

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// Parser holds the state of one parse over one input.
type Parser struct {
	input    string
	pos      int
	exact    int
	silent   int
	depth    int
	maxDepth int
	matcher  Matcher

	events []Event
	prints []uint64

	memo map[memoKey]memoEntry

	farthest int
	expected map[string]struct{}
	diags    []Diagnostic
	tooDeep  bool
}

// New creates a parser over input.
func New(input string, opts ...Option) *Parser {
	p := &Parser{
		input:    input,
		maxDepth: DefaultMaxDepth,
		memo:     make(map[memoKey]memoEntry),
		expected: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type mark struct {
	pos    int
	events int
}

func (p *Parser) mark() mark { return mark{pos: p.pos, events: len(p.events)} }

func (p *Parser) reset(m mark) {
	p.pos = m.pos
	if len(p.events) > m.events {
		p.events = p.events[:m.events]
		p.prints = p.prints[:m.events]
	}
}

// Input returns the full input.
func (p *Parser) Input() string { return p.input }

// Pos returns the cursor offset.
func (p *Parser) Pos() int { return p.pos }

// Rest returns the unconsumed input.
func (p *Parser) Rest() string { return p.input[p.pos:] }

// Exact reports whether whitespace skipping is currently disabled.
func (p *Parser) Exact() bool { return p.exact > 0 }

// Start skips whitespace the way the next terminal would and returns the
// offset where that terminal begins. Rules use it to open their Span.
func (p *Parser) Start() int {
	p.skip()
	return p.pos
}

// SkipSpace advances past whitespace.
func (p *Parser) SkipSpace() {
	for p.pos < len(p.input) {
		r, n := utf8.DecodeRuneInString(p.input[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += n
	}
}

func (p *Parser) skip() {
	if p.exact == 0 {
		p.SkipSpace()
	}
}

// Fail records that what was expected at offset at.
func (p *Parser) Fail(at int, what string) {
	if p.silent > 0 {
		return
	}
	switch {
	case at > p.farthest:
		p.farthest = at
		p.expected = map[string]struct{}{what: {}}
	case at == p.farthest:
		p.expected[what] = struct{}{}
	}
}

// Report records a sticky diagnostic. Duplicates are dropped.
func (p *Parser) Report(d Diagnostic) {
	for _, have := range p.diags {
		if have == d {
			return
		}
	}
	p.diags = append(p.diags, d)
}

// Diagnostics returns the sticky diagnostics ordered by offset.
func (p *Parser) Diagnostics() []Diagnostic {
	out := append([]Diagnostic(nil), p.diags...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// Events returns a copy of the event log of the current path.
func (p *Parser) Events() []Event {
	return append([]Event(nil), p.events...)
}

// Emit appends a tentative event. It is dropped if the emitting path
// is backtracked.
func (p *Parser) Emit(key string, value any) {
	e := Event{Offset: p.pos, Key: key, Value: value}
	p.events = append(p.events, e)
	p.prints = append(p.prints, fingerprint(p.fingerprint(), e))
}

func (p *Parser) fingerprint() uint64 {
	if len(p.prints) == 0 {
		return 0
	}
	return p.prints[len(p.prints)-1]
}

// fingerprint folds e into h with FNV-1a.
func fingerprint(h uint64, e Event) uint64 {
	const prime = 1099511628211
	if h == 0 {
		h = 14695981039346656037
	}
	for _, b := range []byte(fmt.Sprintf("%d\x00%s\x00%v\x00", e.Offset, e.Key, e.Value)) {
		h ^= uint64(b)
		h *= prime
	}
	return h
}

// End skips trailing whitespace and reports whether the input is consumed.
func (p *Parser) End() bool {
	p.skip()
	if p.pos == len(p.input) {
		return true
	}
	p.Fail(p.pos, "end of input")
	return false
}

// Lit matches the literal s.
func (p *Parser) Lit(s string) (Span, bool) {
	m := p.mark()
	p.skip()
	if strings.HasPrefix(p.input[p.pos:], s) {
		start := p.pos
		p.pos += len(s)
		return Span{start, p.pos}, true
	}
	p.Fail(p.pos, fmt.Sprintf("%q", s))
	p.reset(m)
	return Span{}, false
}

// Word matches one of words as a whole word: the following rune must not
// continue the word.
func (p *Parser) Word(words ...string) (string, Span, bool) {
	m := p.mark()
	p.skip()
	rest := p.input[p.pos:]
	for _, w := range words {
		if strings.HasPrefix(rest, w) && wordBoundary(rest[len(w):]) {
			start := p.pos
			p.pos += len(w)
			return w, Span{start, p.pos}, true
		}
	}
	for _, w := range words {
		p.Fail(p.pos, fmt.Sprintf("%q", w))
	}
	p.reset(m)
	return "", Span{}, false
}

// Stem matches one of stems followed by any glued lowercase suffix and
// returns the suffix.
func (p *Parser) Stem(stems ...string) (stem, suffix string, span Span, ok bool) {
	m := p.mark()
	p.skip()
	rest := p.input[p.pos:]
	for _, s := range stems {
		if !strings.HasPrefix(rest, s) {
			continue
		}
		n := len(s) + scanLower(rest[len(s):])
		if !boundary(rest[n:]) {
			continue
		}
		start := p.pos
		p.pos += n
		return s, rest[len(s):n], Span{start, p.pos}, true
	}
	for _, s := range stems {
		p.Fail(p.pos, fmt.Sprintf("%q", s))
	}
	p.reset(m)
	return "", "", Span{}, false
}

// Scan matches the prefix measured by scan, which returns the number of
// bytes it accepts (zero for no match).
func (p *Parser) Scan(name string, scan func(string) int) (string, Span, bool) {
	m := p.mark()
	p.skip()
	n := scan(p.input[p.pos:])
	if n <= 0 {
		p.Fail(p.pos, name)
		p.reset(m)
		return "", Span{}, false
	}
	start := p.pos
	p.pos += n
	return p.input[start:p.pos], Span{start, p.pos}, true
}

// Match is a successful Lookup.
type Match struct {
	Span
	Key   string
	Value any
}

// Lookup matches the longest key known either to the injected Matcher or
// to the tentative event log of the current path. Later events shadow
// earlier bindings of the same key.
func (p *Parser) Lookup(name string) (Match, bool) {
	m := p.mark()
	p.skip()
	rest := p.input[p.pos:]
	var best Match
	found := false
	for i := len(p.events) - 1; i >= 0; i-- {
		e := p.events[i]
		if e.Key == "" || !strings.HasPrefix(rest, e.Key) || !keyBoundary(e.Key, rest) {
			continue
		}
		if !found || len(e.Key) > len(best.Key) {
			best = Match{Key: e.Key, Value: e.Value}
			found = true
		}
	}
	if p.matcher != nil {
		if k, v, ok := p.matcher.MatchPrefix(rest); ok && k != "" && keyBoundary(k, rest) {
			if !found || len(k) > len(best.Key) {
				best = Match{Key: k, Value: v}
				found = true
			}
		}
	}
	if !found {
		p.Fail(p.pos, name)
		p.reset(m)
		return Match{}, false
	}
	best.Span = Span{p.pos, p.pos + len(best.Key)}
	p.pos += len(best.Key)
	return best, true
}

func boundary(rest string) bool {
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// wordBoundary additionally rejects ")" so that the article "a" never
// swallows the point identifier "a)".
func wordBoundary(rest string) bool {
	return boundary(rest) && !strings.HasPrefix(rest, ")")
}

// keyBoundary checks the rune after a looked-up key. Keys ending in
// punctuation, like "Ptk.", delimit themselves.
func keyBoundary(key, rest string) bool {
	last, _ := utf8.DecodeLastRuneInString(key)
	if !unicode.IsLetter(last) && !unicode.IsDigit(last) {
		return true
	}
	return boundary(rest[len(key):])
}

func scanLower(s string) int {
	n := 0
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if !unicode.IsLower(r) {
			break
		}
		n += size
	}
	return n
}
