package grammar

import (
	"fmt"
	"strings"
)

func joinItems(items []string) string {
	switch n := len(items); n {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:n-1], ", ") + " és " + items[n-1]
	}
}

func renderItems(items []IDRange, one func(string) string, sep string) string {
	out := make([]string, len(items))
	for i, it := range items {
		if it.IsRange() {
			out[i] = one(it.Start) + sep + one(it.End)
		} else {
			out[i] = one(it.Start)
		}
	}
	return joinItems(out)
}

func dottedRange(items []IDRange) string {
	out := make([]string, len(items))
	for i, it := range items {
		if it.IsRange() {
			out[i] = it.Start + "–" + it.End + "."
		} else {
			out[i] = it.Start + "."
		}
	}
	return joinItems(out)
}

func closedID(id string) string { return id + ")" }

func (l PartList) ids() string {
	if l.Kind == AlphabeticID {
		return renderItems(l.Items, closedID, "–")
	}
	return dottedRange(l.Items)
}

// String renders the reference in canonical form, keeping the written
// suffixes: "5. §-a", "(2)–(4) bekezdése", "a) és b) pontja".
func (r Reference) String() string {
	var parts []string
	if a := r.Article; a != nil {
		s := dottedRange(a.Items) + " §"
		if a.Suffix != "" {
			s += "-" + a.Suffix
		}
		parts = append(parts, s)
	}
	if par := r.Paragraph; par != nil {
		ids := renderItems(par.Items, func(id string) string { return "(" + id + ")" }, "–")
		parts = append(parts, ids+" bekezdés"+par.Suffix)
	}
	if pt := r.Point; pt != nil {
		parts = append(parts, pt.ids()+" pont"+pt.Suffix)
	}
	if sub := r.Subpoint; sub != nil {
		parts = append(parts, sub.ids()+" alpont"+sub.Suffix)
	}
	return strings.Join(parts, " ")
}

func (id ActID) String() string {
	if id.Suffix == "tv." {
		return fmt.Sprintf("%d. évi %s. tv.", id.Year, id.Roman)
	}
	return fmt.Sprintf("%d. évi %s. %s", id.Year, id.Roman, id.Suffix)
}

// String renders the Act as written: its id with any declaration, or the
// abbreviation.
func (a ActReference) String() string {
	switch {
	case a.ID != nil && a.Declared != "":
		return fmt.Sprintf("%s (a továbbiakban: %s)", a.ID, a.Declared)
	case a.ID != nil:
		return a.ID.String()
	case a.Abbreviation != "":
		return a.Abbreviation
	}
	return a.Act.String()
}

func (c CompoundReference) String() string {
	var b strings.Builder
	if c.Act != nil {
		b.WriteString(c.Act.String())
	}
	for i, r := range c.References {
		switch {
		case i == 0 && c.Act != nil:
			b.WriteString(" ")
		case i > 0 && i == len(c.References)-1:
			b.WriteString(" és ")
		case i > 0:
			b.WriteString(", ")
		}
		b.WriteString(r.String())
	}
	return b.String()
}

func (q Quote) String() string { return "„" + q.Text + "”" }
