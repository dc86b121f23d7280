package peg

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// Define wraps a rule body. A failing body is rolled back completely:
// cursor, event log and depth. Nesting beyond the parser's depth limit
// fails instead of recursing further.
func Define[T any](name string, body func(p *Parser) (T, bool)) Rule[T] {
	return func(p *Parser) (T, bool) {
		var zero T
		if p.depth >= p.maxDepth {
			p.tooDeep = true
			p.Fail(p.pos, fmt.Sprintf("%s (nesting limit %d)", name, p.maxDepth))
			return zero, false
		}
		m := p.mark()
		p.depth++
		v, ok := body(p)
		p.depth--
		if !ok {
			p.reset(m)
			return zero, false
		}
		return v, true
	}
}

// Choice tries alts in order and returns the first success.
func Choice[T any](alts ...Rule[T]) Rule[T] {
	return func(p *Parser) (T, bool) {
		for _, alt := range alts {
			m := p.mark()
			if v, ok := alt(p); ok {
				return v, true
			}
			p.reset(m)
		}
		var zero T
		return zero, false
	}
}

// Opt runs r and reports whether it matched. A failed attempt consumes
// nothing.
func Opt[T any](p *Parser, r Rule[T]) (T, bool) {
	m := p.mark()
	v, ok := r(p)
	if !ok {
		p.reset(m)
	}
	return v, ok
}

// Many runs r greedily until it fails or stops advancing.
func Many[T any](p *Parser, r Rule[T]) []T {
	var out []T
	for {
		m := p.mark()
		v, ok := r(p)
		if !ok || p.pos == m.pos {
			p.reset(m)
			return out
		}
		out = append(out, v)
	}
}

// Many1 is Many requiring at least one match.
func Many1[T any](p *Parser, r Rule[T]) ([]T, bool) {
	out := Many(p, r)
	return out, len(out) > 0
}

// SepBy1 matches item (sep item)*. A separator not followed by an item is
// left unconsumed. The loop is flat, so long lists never deepen the stack.
func SepBy1[T, S any](p *Parser, item Rule[T], sep Rule[S]) ([]T, bool) {
	first, ok := item(p)
	if !ok {
		return nil, false
	}
	out := []T{first}
	for {
		m := p.mark()
		if _, ok := sep(p); !ok {
			p.reset(m)
			return out, true
		}
		v, ok := item(p)
		if !ok || p.pos == m.pos {
			p.reset(m)
			return out, true
		}
		out = append(out, v)
	}
}

// And reports whether r would match here, without consuming input or
// recording failures.
func And[T any](p *Parser, r Rule[T]) bool {
	m := p.mark()
	p.silent++
	_, ok := r(p)
	p.silent--
	p.reset(m)
	return ok
}

// Not is the negation of And.
func Not[T any](p *Parser, r Rule[T]) bool {
	return !And(p, r)
}

// Exact runs r with whitespace skipping disabled. Leading whitespace
// before the first terminal is still skipped.
func Exact[T any](r Rule[T]) Rule[T] {
	return func(p *Parser) (T, bool) {
		m := p.mark()
		p.skip()
		p.exact++
		v, ok := r(p)
		p.exact--
		if !ok {
			p.reset(m)
		}
		return v, ok
	}
}

// Glued runs r in exact mode at the cursor. Unlike Exact, no whitespace
// may precede the match.
func Glued[T any](r Rule[T]) Rule[T] {
	return func(p *Parser) (T, bool) {
		m := p.mark()
		p.exact++
		v, ok := r(p)
		p.exact--
		if !ok {
			p.reset(m)
		}
		return v, ok
	}
}

// Token is Exact with atomic failure reporting: a failure anywhere inside
// r is reported once, as name expected at the token's first byte.
func Token[T any](name string, r Rule[T]) Rule[T] {
	return func(p *Parser) (T, bool) {
		m := p.mark()
		p.skip()
		start := p.pos
		p.exact++
		p.silent++
		v, ok := r(p)
		p.silent--
		p.exact--
		if !ok {
			p.reset(m)
			p.Fail(start, name)
		}
		return v, ok
	}
}

type memoKey struct {
	rule   int64
	pos    int
	print  uint64
	exact  bool
	silent bool
}

type memoEntry struct {
	ok     bool
	val    any
	end    int
	events []Event
}

var ruleIDs atomic.Int64

// Memo caches the outcome of r per input offset and event-log state.
// A cached success replays the events r emitted. An outcome shaped by the
// depth limit is not cached, since the same call may succeed shallower.
func Memo[T any](r Rule[T]) Rule[T] {
	id := ruleIDs.Add(1)
	return func(p *Parser) (T, bool) {
		key := memoKey{rule: id, pos: p.pos, print: p.fingerprint(), exact: p.exact > 0, silent: p.silent > 0}
		if e, ok := p.memo[key]; ok {
			var zero T
			if !e.ok {
				return zero, false
			}
			for _, ev := range e.events {
				p.events = append(p.events, ev)
				p.prints = append(p.prints, fingerprint(p.fingerprint(), ev))
			}
			p.pos = e.end
			v, _ := e.val.(T)
			return v, true
		}
		n := len(p.events)
		tooDeep := p.tooDeep
		p.tooDeep = false
		v, ok := r(p)
		if p.tooDeep {
			return v, ok
		}
		p.tooDeep = tooDeep
		e := memoEntry{ok: ok, end: p.pos}
		if ok {
			e.val = v
			e.events = append([]Event(nil), p.events[n:]...)
		}
		p.memo[key] = e
		return v, ok
	}
}

// Error is a failed parse: the furthest offset reached and the terminals
// expected there.
type Error struct {
	Offset        int
	Expected      []string
	DepthExceeded bool
	Panic         string
}

func (e *Error) Error() string {
	if e.Panic != "" {
		return fmt.Sprintf("parser fault at offset %d: %s", e.Offset, e.Panic)
	}
	msg := fmt.Sprintf("syntax error at offset %d", e.Offset)
	if len(e.Expected) > 0 {
		msg += fmt.Sprintf(": expected one of %v", e.Expected)
	}
	if e.DepthExceeded {
		msg += " (nesting limit reached)"
	}
	return msg
}

// Failure builds the Error describing the furthest failure so far.
func (p *Parser) Failure() *Error {
	expected := make([]string, 0, len(p.expected))
	for k := range p.expected {
		expected = append(expected, k)
	}
	sort.Strings(expected)
	return &Error{Offset: p.farthest, Expected: expected, DepthExceeded: p.tooDeep}
}

// Parse runs start over the whole input. Trailing input other than
// whitespace is a failure. A panic inside a rule is returned as an Error.
func Parse[T any](p *Parser, start Rule[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = &Error{Offset: p.pos, Panic: fmt.Sprint(r)}
		}
	}()
	v, ok := start(p)
	if ok && p.End() {
		return v, nil
	}
	var zero T
	return zero, p.Failure()
}
