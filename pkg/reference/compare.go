package reference

import (
	"cmp"

	"github.com/coolbeans/hunlaw/pkg/identifier"
)

// Compare orders references in document order. Absent parts sort first,
// so a parent sorts before its children.
func Compare(a, b Reference) int {
	if c := comparePtr(a.Act, b.Act, compareAct); c != 0 {
		return c
	}
	if c := comparePtr(a.Article, b.Article, compareRange(compareArticle)); c != 0 {
		return c
	}
	if c := comparePtr(a.Paragraph, b.Paragraph, compareRange(compareNumeric)); c != 0 {
		return c
	}
	if c := comparePtr(a.Point, b.Point, comparePoint); c != 0 {
		return c
	}
	return comparePtr(a.Subpoint, b.Subpoint, compareSubpoint)
}

func comparePtr[T any](a, b *T, f func(T, T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return f(*a, *b)
}

func compareRange[T comparable](f func(T, T) int) func(Range[T], Range[T]) int {
	return func(a, b Range[T]) int {
		if c := f(a.Start, b.Start); c != 0 {
			return c
		}
		return f(a.End, b.End)
	}
}

func compareAct(a, b identifier.Act) int {
	if c := cmp.Compare(a.Year, b.Year); c != 0 {
		return c
	}
	return cmp.Compare(a.Number, b.Number)
}

func compareNumeric(a, b identifier.Numeric) int {
	if c := cmp.Compare(a.Num, b.Num); c != 0 {
		return c
	}
	return cmp.Compare(a.Suffix, b.Suffix)
}

func compareArticle(a, b identifier.Article) int {
	if c := cmp.Compare(a.Book, b.Book); c != 0 {
		return c
	}
	return compareNumeric(a.ID, b.ID)
}

func comparePrefixed(a, b identifier.Prefixed) int {
	if c := cmp.Compare(a.Prefix, b.Prefix); c != 0 {
		return c
	}
	return cmp.Compare(a.Char, b.Char)
}

func comparePoint(a, b Point) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if a.Kind == Numeric {
		return compareRange(compareNumeric)(a.Numeric, b.Numeric)
	}
	return compareRange(cmp.Compare[identifier.Char])(a.Alpha, b.Alpha)
}

func compareSubpoint(a, b Subpoint) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if a.Kind == Numeric {
		return compareRange(compareNumeric)(a.Numeric, b.Numeric)
	}
	return compareRange(comparePrefixed)(a.Alpha, b.Alpha)
}
