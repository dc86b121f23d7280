package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/coolbeans/hunlaw/pkg/abbrev"
	"github.com/coolbeans/hunlaw/pkg/semantic"
)

// Line is one sentence of a Document. A line followed by deeper lines is
// the intro of its element and the deeper lines are its children.
type Line struct {
	Number int
	Depth  int
	Text   string
}

// Document is the text of one Act, one sentence per line.
type Document struct {
	Name  string
	Lines []Line
}

// maxLine bounds the length of a document line.
const maxLine = 1 << 20

// ReadDocument reads a document. Blank lines and lines starting with "#"
// are skipped. Depth is the number of leading tabs, or of leading space
// pairs.
func ReadDocument(name string, r io.Reader) (Document, error) {
	doc := Document{Name: name}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	n := 0
	for scanner.Scan() {
		n++
		raw := scanner.Text()
		text := strings.TrimSpace(raw)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		doc.Lines = append(doc.Lines, Line{Number: n, Depth: depth(raw), Text: text})
	}
	if err := scanner.Err(); err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", name, err)
	}
	return doc, nil
}

func depth(line string) int {
	tabs := len(line) - len(strings.TrimLeft(line, "\t"))
	if tabs > 0 {
		return tabs
	}
	return (len(line) - len(strings.TrimLeft(line, " "))) / 2
}

// Result is the outcome of one sentence.
type Result struct {
	Line     int
	Sentence string
	Info     semantic.Info
	Err      error
}

// ExtractAll parses sentences in order. A sentence that fails does not
// stop the ones after it; once ctx is done the remaining results carry
// its error.
func (s *Session) ExtractAll(ctx context.Context, sentences []string) []Result {
	results := make([]Result, len(sentences))
	for i, sentence := range sentences {
		info, err := s.Extract(ctx, sentence)
		results[i] = Result{Line: i + 1, Sentence: sentence, Info: info, Err: err}
	}
	return results
}

// ExtractDocument parses every line of doc, entering the context of each
// intro line for its children.
func (s *Session) ExtractDocument(ctx context.Context, doc Document) []Result {
	results := make([]Result, len(doc.Lines))
	var open []int
	for i, line := range doc.Lines {
		for len(open) > 0 && open[len(open)-1] >= line.Depth {
			s.Leave()
			open = open[:len(open)-1]
		}

		var (
			info semantic.Info
			err  error
		)
		if i+1 < len(doc.Lines) && doc.Lines[i+1].Depth > line.Depth {
			info, err = s.Enter(ctx, line.Text, "")
			open = append(open, line.Depth)
		} else {
			info, err = s.Extract(ctx, line.Text)
		}
		if err != nil {
			s.logger.Debug("sentence failed", "document", doc.Name, "line", line.Number, "error", err)
		}
		results[i] = Result{Line: line.Number, Sentence: line.Text, Info: info, Err: err}
	}
	for range open {
		s.Leave()
	}
	return results
}

// DocumentResult is the outcome of one Act.
type DocumentResult struct {
	Name    string
	Results []Result
	// Abbreviations known at the end of the Act.
	Abbreviations []abbrev.Entry
}

// Failed returns the number of sentences that could not be parsed.
func (d DocumentResult) Failed() int {
	n := 0
	for _, r := range d.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// ParseActs parses docs in parallel, each in its own Session, at most
// opts.Jobs at a time. Failing sentences are reported in the results; the
// error is only set when ctx is done.
func ParseActs(ctx context.Context, docs []Document, opts Options) ([]DocumentResult, error) {
	results := make([]DocumentResult, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Jobs, 1))
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s := New(opts)
			s.logger.Debug("parsing act", "document", doc.Name, "lines", len(doc.Lines))
			results[i] = DocumentResult{
				Name:          doc.Name,
				Results:       s.ExtractDocument(ctx, doc),
				Abbreviations: s.Registry().Entries(),
			}
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
