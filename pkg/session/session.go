// Package session extracts semantic information from the sentences of one
// Act in order, carrying the abbreviations each sentence declares over to
// the sentences after it.
//
// A Session is not safe for concurrent use. Different Acts are parsed by
// different sessions, see ParseActs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/coolbeans/hunlaw/internal/logutil"
	"github.com/coolbeans/hunlaw/pkg/abbrev"
	"github.com/coolbeans/hunlaw/pkg/cache"
	"github.com/coolbeans/hunlaw/pkg/grammar"
	"github.com/coolbeans/hunlaw/pkg/semantic"
)

// Options configures a Session.
type Options struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Table seeds the abbreviations known before the first sentence.
	Table *abbrev.Table
	// MaxDepth bounds grammar rule nesting. Zero means the grammar default.
	MaxDepth int
	// Cache, when set, stores and serves extraction results.
	Cache *cache.Cache
	// Jobs limits the number of Acts ParseActs parses at once. Zero or
	// less means one.
	Jobs int
}

// Session parses the sentences of one Act.
type Session struct {
	logger   *slog.Logger
	registry *abbrev.Registry
	cache    *cache.Cache
	maxDepth int

	prefixes  []string
	postfixes []string
}

// New returns a Session with the abbreviations of opts.Table, or none.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := abbrev.NewRegistry()
	if opts.Table != nil {
		registry = opts.Table.Seed()
	}
	return &Session{
		logger:   logger,
		registry: registry,
		cache:    opts.Cache,
		maxDepth: opts.MaxDepth,
	}
}

// Registry returns the abbreviations known to the session.
func (s *Session) Registry() *abbrev.Registry {
	return s.registry
}

func (s *Session) prefix() string {
	if len(s.prefixes) == 0 {
		return ""
	}
	return s.prefixes[len(s.prefixes)-1]
}

func (s *Session) postfix() string {
	if len(s.postfixes) == 0 {
		return ""
	}
	return s.postfixes[len(s.postfixes)-1]
}

// Depth returns the number of open Enter calls.
func (s *Session) Depth() int {
	return len(s.prefixes)
}

// Extract parses one sentence in the current context. Spans of the
// outgoing references are relative to the NFC form of sentence.
func (s *Session) Extract(ctx context.Context, sentence string) (semantic.Info, error) {
	return s.ExtractWith(ctx, s.prefix(), sentence, s.postfix())
}

// ExtractWith parses middle between prefix and postfix. Only the references
// that end inside middle are returned.
func (s *Session) ExtractWith(ctx context.Context, prefix, middle, postfix string) (semantic.Info, error) {
	if err := ctx.Err(); err != nil {
		return semantic.Info{}, err
	}
	prefix, middle, postfix = norm.NFC.String(prefix), norm.NFC.String(middle), norm.NFC.String(postfix)
	text := AssembleText(prefix, middle, postfix)

	info, err := s.extractText(ctx, text)
	if err != nil {
		return semantic.Info{}, err
	}

	var refs []semantic.OutgoingReference
	for _, r := range info.OutgoingReferences {
		if r, ok := adjustOutgoingReference(len(prefix), len(text)-len(postfix), r); ok {
			refs = append(refs, r)
		}
	}
	info.OutgoingReferences = refs
	return info, nil
}

// Enter opens a context for the children of an element that has an intro
// and, optionally, a wrap-up: the sentences given to Extract until the
// matching Leave are parsed as intro + child + wrap-up.
//
// The intro is also parsed on its own. Of its instructions only block
// amendments are kept, since the rest need the children to be complete.
// The context is opened even when the intro cannot be parsed.
func (s *Session) Enter(ctx context.Context, intro, wrapUp string) (semantic.Info, error) {
	intro, wrapUp = norm.NFC.String(intro), norm.NFC.String(wrapUp)
	info, err := s.Extract(ctx, intro)
	if err == nil {
		switch info.SpecialPhrase.(type) {
		case *semantic.BlockAmendment, *semantic.StructuralBlockAmendment:
		default:
			info.SpecialPhrase = nil
		}
	}

	postfix := s.postfix()
	if wrapUp != "" {
		postfix = " " + wrapUp + postfix
	}
	s.prefixes = append(s.prefixes, s.prefix()+intro+" ")
	s.postfixes = append(s.postfixes, postfix)
	return info, err
}

// Leave closes the context opened by the last Enter.
func (s *Session) Leave() {
	if len(s.prefixes) == 0 {
		return
	}
	s.prefixes = s.prefixes[:len(s.prefixes)-1]
	s.postfixes = s.postfixes[:len(s.postfixes)-1]
}

func (s *Session) extractText(ctx context.Context, text string) (semantic.Info, error) {
	var key string
	if s.cache != nil {
		key = cache.Key(text, s.registry.Fingerprint())
		if info, ok := s.cached(ctx, key); ok {
			if err := s.registry.Replay(info.NewAbbreviations...); err != nil {
				return semantic.Info{}, fmt.Errorf("replaying abbreviations: %w", err)
			}
			logutil.TraceContext(ctx, s.logger, "cache hit", "text", text)
			return info, nil
		}
	}

	parsed, err := grammar.Parse(text, grammar.Options{Abbreviations: s.registry, MaxDepth: s.maxDepth})
	if err != nil {
		s.logger.Debug("sentence not parsed", "text", text, "error", err)
		return semantic.Info{}, fmt.Errorf("parsing %q: %w", text, err)
	}
	info, err := semantic.Convert(parsed.Root)
	if err != nil {
		return semantic.Info{}, fmt.Errorf("extracting %q: %w", text, err)
	}

	// The confirmed declarations, in the order they were written.
	info.NewAbbreviations = nil
	for _, a := range parsed.Abbreviations {
		info.NewAbbreviations = append(info.NewAbbreviations, abbrev.Entry{Key: a.Key, Act: a.Act})
	}
	if err := s.registry.Replay(info.NewAbbreviations...); err != nil {
		return semantic.Info{}, fmt.Errorf("replaying abbreviations: %w", err)
	}
	logutil.TraceContext(ctx, s.logger, "sentence parsed",
		"phrase", phraseKind(info),
		"references", len(info.OutgoingReferences),
		"abbreviations", len(info.NewAbbreviations))

	if s.cache != nil {
		s.store(ctx, key, info)
	}
	return info, nil
}

func phraseKind(info semantic.Info) semantic.PhraseKind {
	if info.SpecialPhrase == nil {
		return ""
	}
	return info.SpecialPhrase.Kind()
}

// cached returns the stored result at key. Cache failures are logged and
// treated as misses.
func (s *Session) cached(ctx context.Context, key string) (semantic.Info, bool) {
	data, err := s.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return semantic.Info{}, false
	}
	if err != nil {
		s.logger.Warn("cache lookup failed", "error", err)
		return semantic.Info{}, false
	}
	var info semantic.Info
	if err := json.Unmarshal(data, &info); err != nil {
		s.logger.Warn("discarding unreadable cache entry", "key", key, "error", err)
		return semantic.Info{}, false
	}
	return info, true
}

func (s *Session) store(ctx context.Context, key string, info semantic.Info) {
	data, err := json.Marshal(info)
	if err != nil {
		s.logger.Warn("cannot encode result", "error", err)
		return
	}
	if err := s.cache.Put(ctx, key, data); err != nil {
		s.logger.Warn("cache store failed", "error", err)
	}
}

// trailingJunk is stripped from the end of a sentence fragment, each at
// most once and in this order, so that ", és" goes as a whole.
var trailingJunk = []string{" a", " és", " valamint", " illetve", " vagy", " továbbá", ";", ","}

// AssembleText builds the text to parse from a fragment and its context.
// Without a postfix the text is closed with a "." unless it already ends
// a sentence.
func AssembleText(prefix, middle, postfix string) string {
	for _, junk := range trailingJunk {
		middle = strings.TrimSuffix(middle, junk)
	}
	if postfix != "" {
		return prefix + middle + postfix
	}
	if strings.HasSuffix(middle, ".") || strings.HasSuffix(middle, ":") ||
		strings.HasSuffix(middle, "!") || strings.HasSuffix(middle, "?") {
		return prefix + middle
	}
	return prefix + middle + "."
}

// adjustOutgoingReference moves r from the assembled text into the
// fragment starting at prefixLen and ending at end. A reference is kept
// when it ends inside the fragment, so references that start in the
// prefix are kept too, clipped to the fragment start.
func adjustOutgoingReference(prefixLen, end int, r semantic.OutgoingReference) (semantic.OutgoingReference, bool) {
	if r.End <= prefixLen || r.End > end {
		return semantic.OutgoingReference{}, false
	}
	r.Start = max(r.Start-prefixLen, 0)
	r.End -= prefixLen
	return r, true
}
