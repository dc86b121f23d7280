// Package semantic turns parsed sentences into resolved references and
// machine-actionable instructions: the provisions a sentence points to,
// the abbreviations it declares, and what it amends, repeals or puts into
// force.
package semantic

import (
	"encoding/json"
	"fmt"

	"github.com/coolbeans/hunlaw/pkg/abbrev"
	"github.com/coolbeans/hunlaw/pkg/grammar"
	"github.com/coolbeans/hunlaw/pkg/reference"
)

// OutgoingReference is a resolved reference and the byte range of the
// sentence it was written at.
type OutgoingReference struct {
	Start     int                 `json:"start" yaml:"start"`
	End       int                 `json:"end" yaml:"end"`
	Reference reference.Reference `json:"reference" yaml:"reference"`
}

// Info is everything extracted from one sentence.
type Info struct {
	OutgoingReferences []OutgoingReference
	NewAbbreviations   []abbrev.Entry
	// SpecialPhrase is nil for sentences of no instruction shape.
	SpecialPhrase SpecialPhrase
}

// IsEmpty reports whether nothing was extracted.
func (i Info) IsEmpty() bool {
	return len(i.OutgoingReferences) == 0 && len(i.NewAbbreviations) == 0 && i.SpecialPhrase == nil
}

// Convert extracts the Info of a parsed sentence.
func Convert(root grammar.Root) (Info, error) {
	if root.Content == nil {
		return Info{}, nil
	}
	refs, phrase, err := convert(root.Content)
	if err != nil {
		return Info{}, fmt.Errorf("converting %s: %w", root.Content.Category(), err)
	}
	return Info{
		OutgoingReferences: refs,
		NewAbbreviations:   NewAbbreviations(root),
		SpecialPhrase:      phrase,
	}, nil
}

// OutgoingReferences returns the references of a parsed sentence, one
// per list item, in the order they are written.
func OutgoingReferences(root grammar.Root) ([]OutgoingReference, error) {
	info, err := Convert(root)
	return info.OutgoingReferences, err
}

// NewAbbreviations lists the abbreviations declared in the sentence.
func NewAbbreviations(root grammar.Root) []abbrev.Entry {
	var out []abbrev.Entry
	for _, a := range acts(root.Content) {
		if a != nil && a.Declared != "" {
			out = append(out, abbrev.Entry{Key: a.Declared, Act: a.Act})
		}
	}
	return out
}

func acts(c grammar.Content) []*grammar.ActReference {
	switch v := c.(type) {
	case *grammar.BlockAmendment:
		return []*grammar.ActReference{v.Act}
	case *grammar.BlockAmendmentWithSubtitle:
		return []*grammar.ActReference{v.Act}
	case *grammar.BlockAmendmentStructural:
		return []*grammar.ActReference{v.Act}
	case *grammar.TextAmendment:
		return []*grammar.ActReference{v.Act}
	case *grammar.ArticleTitleAmendment:
		return []*grammar.ActReference{v.Act}
	case *grammar.Repeal:
		return []*grammar.ActReference{v.Act}
	case *grammar.StructuralRepeal:
		return []*grammar.ActReference{v.Act}
	case *grammar.ListOfSimpleExpressions:
		var out []*grammar.ActReference
		for _, it := range v.Items {
			if it.Reference != nil {
				out = append(out, it.Reference.Act)
			}
		}
		return out
	}
	return nil
}

type phraseEnvelope struct {
	Kind  PhraseKind      `json:"kind" yaml:"kind"`
	Value json.RawMessage `json:"value" yaml:"-"`
	Any   SpecialPhrase   `json:"-" yaml:"value"`
}

type infoJSON struct {
	OutgoingReferences []OutgoingReference `json:"outgoing_references,omitempty" yaml:"outgoing_references,omitempty"`
	NewAbbreviations   []abbrev.Entry      `json:"new_abbreviations,omitempty" yaml:"new_abbreviations,omitempty"`
	SpecialPhrase      *phraseEnvelope     `json:"special_phrase,omitempty" yaml:"special_phrase,omitempty"`
}

func (i Info) wire() (infoJSON, error) {
	out := infoJSON{OutgoingReferences: i.OutgoingReferences, NewAbbreviations: i.NewAbbreviations}
	if i.SpecialPhrase != nil {
		raw, err := json.Marshal(i.SpecialPhrase)
		if err != nil {
			return infoJSON{}, err
		}
		out.SpecialPhrase = &phraseEnvelope{Kind: i.SpecialPhrase.Kind(), Value: raw, Any: i.SpecialPhrase}
	}
	return out, nil
}

// MarshalJSON tags the special phrase with its kind.
func (i Info) MarshalJSON() ([]byte, error) {
	w, err := i.wire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes what MarshalJSON produced.
func (i *Info) UnmarshalJSON(data []byte) error {
	var w infoJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*i = Info{OutgoingReferences: w.OutgoingReferences, NewAbbreviations: w.NewAbbreviations}
	if w.SpecialPhrase == nil {
		return nil
	}
	phrase, err := newPhrase(w.SpecialPhrase.Kind)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(w.SpecialPhrase.Value, phrase); err != nil {
		return fmt.Errorf("decoding %s: %w", w.SpecialPhrase.Kind, err)
	}
	i.SpecialPhrase = phrase
	return nil
}

// MarshalYAML renders the same layout as MarshalJSON.
func (i Info) MarshalYAML() (any, error) {
	return i.wire()
}
