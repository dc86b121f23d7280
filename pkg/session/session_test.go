package session

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coolbeans/hunlaw/pkg/abbrev"
	"github.com/coolbeans/hunlaw/pkg/cache"
	"github.com/coolbeans/hunlaw/pkg/grammar"
	"github.com/coolbeans/hunlaw/pkg/identifier"
	"github.com/coolbeans/hunlaw/pkg/semantic"
)

var (
	ptk = identifier.Act{Year: 2013, Number: 5}
	ftv = identifier.Act{Year: 2011, Number: 204}
)

const (
	declaring = "A Polgári Törvénykönyvről szóló 2013. évi V. törvény (a továbbiakban: Ptk.) 6:1. §-a helyébe a következő rendelkezés lép:"
	using     = "A Ptk. 6:1. § (2) bekezdése helyébe a következő rendelkezés lép:"
)

func withFtv(t *testing.T, opts Options) *Session {
	t.Helper()
	s := New(opts)
	if err := s.Registry().Add("Ftv.", ftv); err != nil {
		t.Fatal(err)
	}
	return s
}

func repealed(t *testing.T, info semantic.Info) []string {
	t.Helper()
	r, ok := info.SpecialPhrase.(*semantic.Repeal)
	if !ok {
		t.Fatalf("SpecialPhrase = %T, want *semantic.Repeal", info.SpecialPhrase)
	}
	out := make([]string, len(r.Positions))
	for i, p := range r.Positions {
		out[i] = p.Compact()
	}
	return out
}

func TestAssembleText(t *testing.T) {
	cases := []struct {
		prefix, middle, postfix string
		want                    string
	}{
		{"", "Xxx!", "", "Xxx!"},
		{"A ", "b", " c.", "A b c."},
		{"A ", "b", "", "A b."},
		{"A ", "b:", "", "A b:"},
		{"A ", "b, és", " kell.", "A b kell."},
		{"", "az 5. §;", "", "az 5. §."},
		{"", "a 3. pont, valamint", " hatályát veszti.", "a 3. pont hatályát veszti."},
		{"", "a b) pont, továbbá a", "", "a b) pont."},
	}
	for _, tc := range cases {
		if got := AssembleText(tc.prefix, tc.middle, tc.postfix); got != tc.want {
			t.Errorf("AssembleText(%q, %q, %q) = %q, want %q", tc.prefix, tc.middle, tc.postfix, got, tc.want)
		}
	}
}

func TestAdjustOutgoingReference(t *testing.T) {
	cases := []struct {
		name       string
		start, end int
		want       *semantic.OutgoingReference
	}{
		{"inside", 12, 15, &semantic.OutgoingReference{Start: 2, End: 5}},
		{"starts in prefix", 4, 14, &semantic.OutgoingReference{Start: 0, End: 4}},
		{"ends at fragment end", 12, 20, &semantic.OutgoingReference{Start: 2, End: 10}},
		{"in prefix", 2, 10, nil},
		{"in postfix", 18, 24, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := adjustOutgoingReference(10, 20, semantic.OutgoingReference{Start: tc.start, End: tc.end})
			if tc.want == nil {
				if ok {
					t.Errorf("adjustOutgoingReference() = %+v, want dropped", got)
				}
				return
			}
			if !ok || got.Start != tc.want.Start || got.End != tc.want.End {
				t.Errorf("adjustOutgoingReference() = %+v, %v, want %+v", got, ok, *tc.want)
			}
		})
	}
}

func TestExtractCarriesAbbreviations(t *testing.T) {
	ctx := context.Background()
	s := New(Options{})

	info, err := s.Extract(ctx, declaring)
	if err != nil {
		t.Fatalf("Extract(declaring) error = %v", err)
	}
	want := []abbrev.Entry{{Key: "Ptk.", Act: ptk}}
	if diff := cmp.Diff(want, info.NewAbbreviations); diff != "" {
		t.Errorf("NewAbbreviations mismatch (-want +got):\n%s", diff)
	}

	info, err = s.Extract(ctx, using)
	if err != nil {
		t.Fatalf("Extract(using) error = %v", err)
	}
	b, ok := info.SpecialPhrase.(*semantic.BlockAmendment)
	if !ok {
		t.Fatalf("SpecialPhrase = %T, want *semantic.BlockAmendment", info.SpecialPhrase)
	}
	if b.Position.Act == nil || *b.Position.Act != ptk {
		t.Errorf("Position.Act = %v, want %v", b.Position.Act, ptk)
	}
}

func TestExtractTitleDeclaration(t *testing.T) {
	s := New(Options{})
	ctx := context.Background()
	title := "A Polgári Törvénykönyvről szóló 2013. évi V. törvény (a továbbiakban: Ptk.) hatálybalépésével összefüggő átmeneti és felhatalmazó rendelkezésekről szóló 2013. évi CLXXVII. törvény (a továbbiakban: Ptké.) 5. §-a helyébe a következő rendelkezés lép:"
	if _, err := s.Extract(ctx, title); err != nil {
		t.Fatalf("Extract(title) error = %v", err)
	}
	if got, err := s.Registry().Get("Ptk."); err != nil || got != ptk {
		t.Errorf("Get(Ptk.) = %v, %v; want %v", got, err, ptk)
	}
	if _, err := s.Extract(ctx, "A Ptk. 6:1. §-a helyébe a következő rendelkezés lép:"); err != nil {
		t.Errorf("Extract(later sentence) error = %v", err)
	}
}

func TestExtractUnknownAbbreviation(t *testing.T) {
	_, err := New(Options{}).Extract(context.Background(), using)
	var perr *grammar.Error
	if !errors.As(err, &perr) || perr.Kind != grammar.AbbreviationUnresolved {
		t.Fatalf("Extract() error = %v, want abbreviation unresolved", err)
	}
}

func TestExtractCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Options{}).Extract(ctx, "Az 1. § hatályát veszti."); !errors.Is(err, context.Canceled) {
		t.Errorf("Extract() error = %v, want context.Canceled", err)
	}
}

func TestExtractNormalizes(t *testing.T) {
	s := withFtv(t, Options{})
	info, err := s.Extract(context.Background(), "Az Ftv. 5. §-a hata\u0301lya\u0301t veszti")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if diff := cmp.Diff([]string{"2011.204_5___"}, repealed(t, info)); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestEnterWrapUp(t *testing.T) {
	ctx := context.Background()
	s := withFtv(t, Options{})

	if _, err := s.Enter(ctx, "Az Ftv.", "hatályát veszti."); err != nil {
		t.Fatalf("Enter() error = %v", err)
	}
	if s.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", s.Depth())
	}

	child := "5. §-a,"
	info, err := s.Extract(ctx, child)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if diff := cmp.Diff([]string{"2011.204_5___"}, repealed(t, info)); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}

	// The Act reference sits in the intro and is dropped.
	if len(info.OutgoingReferences) != 1 {
		t.Fatalf("OutgoingReferences = %+v, want one", info.OutgoingReferences)
	}
	got := info.OutgoingReferences[0]
	if got.Start != 0 || got.End != len("5. §-a") {
		t.Errorf("reference spans [%d, %d), want [0, %d)", got.Start, got.End, len("5. §-a"))
	}
	if got.Reference.Compact() != "2011.204_5___" {
		t.Errorf("reference = %s, want 2011.204_5___", got.Reference.Compact())
	}

	s.Leave()
	s.Leave()
	if s.Depth() != 0 {
		t.Errorf("Depth() after Leave = %d, want 0", s.Depth())
	}
}

func TestEnterKeepsBlockAmendments(t *testing.T) {
	ctx := context.Background()
	s := withFtv(t, Options{})

	info, err := s.Enter(ctx, "Az Ftv. 5. § (2) bekezdése helyébe a következő rendelkezés lép:", "")
	if err != nil {
		t.Fatalf("Enter() error = %v", err)
	}
	if _, ok := info.SpecialPhrase.(*semantic.BlockAmendment); !ok {
		t.Errorf("SpecialPhrase = %T, want *semantic.BlockAmendment", info.SpecialPhrase)
	}
	s.Leave()

	info, err = s.Enter(ctx, "Az Ftv. 5. §-a hatályát veszti", "")
	if err != nil {
		t.Fatalf("Enter() error = %v", err)
	}
	if info.SpecialPhrase != nil {
		t.Errorf("SpecialPhrase = %T, want nil", info.SpecialPhrase)
	}
	if len(info.OutgoingReferences) == 0 {
		t.Error("intro references dropped")
	}
	s.Leave()
}

func TestExtractCache(t *testing.T) {
	ctx := context.Background()
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("cache.Open() error = %v", err)
	}
	defer c.Close()

	first, err := New(Options{Cache: c}).Extract(ctx, declaring)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	s := New(Options{Cache: c})
	second, err := s.Extract(ctx, declaring)
	if err != nil {
		t.Fatalf("cached Extract() error = %v", err)
	}
	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Hits != 1 || stats.Entries != 1 {
		t.Errorf("Stats() = %+v, want one entry and one hit", stats)
	}
	if s.Registry().Count() != 1 {
		t.Errorf("Registry().Count() = %d, want the cached abbreviation replayed", s.Registry().Count())
	}
	if first.SpecialPhrase.Kind() != second.SpecialPhrase.Kind() {
		t.Errorf("cached phrase %s, want %s", second.SpecialPhrase.Kind(), first.SpecialPhrase.Kind())
	}
	if len(first.OutgoingReferences) != len(second.OutgoingReferences) {
		t.Errorf("cached %d references, want %d", len(second.OutgoingReferences), len(first.OutgoingReferences))
	}

	// The registry changed, so the key did too.
	if _, err := s.Extract(ctx, using); err != nil {
		t.Fatalf("Extract(using) error = %v", err)
	}
	if stats, _ := c.Stats(ctx); stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}
}

func TestExtractAll(t *testing.T) {
	s := New(Options{})
	results := s.ExtractAll(context.Background(), []string{using, declaring, using})
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if results[0].Err == nil {
		t.Error("first sentence parsed before the abbreviation was declared")
	}
	for _, r := range results[1:] {
		if r.Err != nil {
			t.Errorf("line %d error = %v", r.Line, r.Err)
		}
	}
}

func TestReadDocument(t *testing.T) {
	in := strings.Join([]string{
		"# 2011. évi CCIV. törvény",
		"Az Ftv.",
		"\t5. §-a,",
		"",
		"  6. §-a",
		"    a) pontja",
	}, "\n")
	doc, err := ReadDocument("ftv.txt", strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}
	want := []Line{
		{Number: 2, Depth: 0, Text: "Az Ftv."},
		{Number: 3, Depth: 1, Text: "5. §-a,"},
		{Number: 5, Depth: 1, Text: "6. §-a"},
		{Number: 6, Depth: 2, Text: "a) pontja"},
	}
	if diff := cmp.Diff(want, doc.Lines); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractDocument(t *testing.T) {
	doc := Document{Name: "ftv", Lines: []Line{
		{Number: 1, Depth: 0, Text: "Az Ftv."},
		{Number: 2, Depth: 1, Text: "5. §-a hatályát veszti"},
		{Number: 3, Depth: 1, Text: "6. §-a hatályát veszti"},
		{Number: 4, Depth: 0, Text: "Az Ftv. 7. §-a hatályát veszti."},
	}}
	s := withFtv(t, Options{})
	results := s.ExtractDocument(context.Background(), doc)
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("line %d error = %v", r.Line, r.Err)
		}
	}
	for i, want := range map[int]string{1: "2011.204_5___", 2: "2011.204_6___", 3: "2011.204_7___"} {
		if diff := cmp.Diff([]string{want}, repealed(t, results[i].Info)); diff != "" {
			t.Errorf("line %d positions mismatch (-want +got):\n%s", results[i].Line, diff)
		}
	}
	if s.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", s.Depth())
	}
}

func TestParseActs(t *testing.T) {
	docs := []Document{
		{Name: "a", Lines: []Line{{Number: 1, Text: declaring}, {Number: 2, Text: using}}},
		{Name: "b", Lines: []Line{{Number: 1, Text: using}}},
		{Name: "c", Lines: []Line{{Number: 1, Text: declaring}, {Number: 2, Text: using}}},
	}
	results, err := ParseActs(context.Background(), docs, Options{Jobs: 2})
	if err != nil {
		t.Fatalf("ParseActs() error = %v", err)
	}
	failed := make(map[string]int)
	for _, r := range results {
		failed[r.Name] = r.Failed()
	}
	if diff := cmp.Diff(map[string]int{"a": 0, "b": 1, "c": 0}, failed); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]abbrev.Entry{{Key: "Ptk.", Act: ptk}}, results[0].Abbreviations); diff != "" {
		t.Errorf("Abbreviations mismatch (-want +got):\n%s", diff)
	}
	if len(results[1].Abbreviations) != 0 {
		t.Errorf("abbreviations leaked into another Act: %v", results[1].Abbreviations)
	}
}

func TestParseActsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	docs := []Document{{Name: "a", Lines: []Line{{Number: 1, Text: declaring}}}}
	if _, err := ParseActs(ctx, docs, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("ParseActs() error = %v, want context.Canceled", err)
	}
}
