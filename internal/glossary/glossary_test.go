package glossary_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/valpere/newstran/internal/glossary"
	"github.com/valpere/newstran/internal/parser"
)

func para(text string) parser.Block {
	return parser.Block{
		Kind:  parser.KindParagraph,
		Tag:   "p",
		HTML:  "<p>" + text + "</p>",
		Text:  text,
		Words: len(strings.Fields(text)),
	}
}

func find(g glossary.Glossary, source string) (glossary.Term, bool) {
	for _, t := range g.Terms {
		if strings.EqualFold(t.Source, source) {
			return t, true
		}
	}
	return glossary.Term{}, false
}

func TestBuild_DomainTermsGetCanonicalTargets(t *testing.T) {
	doc := parser.Document{
		Title: "Fed decision looms over markets",
		Blocks: []parser.Block{
			para("The Federal Reserve kept interest rates unchanged on Wednesday, citing persistent inflation in services."),
		},
	}
	g := glossary.Build(doc, 0)

	term, ok := find(g, "Federal Reserve")
	if !ok {
		t.Fatal("Federal Reserve not extracted")
	}
	if term.Target != "연방준비제도(Fed)" {
		t.Errorf("Federal Reserve target = %q", term.Target)
	}
	if term, ok = find(g, "inflation"); !ok || term.Target != "인플레이션" {
		t.Errorf("inflation term = %+v, ok=%v", term, ok)
	}
}

func TestBuild_EntityRunsGetEmptyTarget(t *testing.T) {
	doc := parser.Document{
		Blocks: []parser.Block{
			para("Analysts at Goldman Sachs raised their price target after the report."),
		},
	}
	g := glossary.Build(doc, 0)

	term, ok := find(g, "Goldman Sachs")
	if !ok {
		t.Fatal("Goldman Sachs not extracted")
	}
	if term.Target != "" {
		t.Errorf("unlisted entity should have empty target, got %q", term.Target)
	}
}

func TestBuild_NumericExpressionsCarryThemselves(t *testing.T) {
	doc := parser.Document{
		Blocks: []parser.Block{
			para("Revenue reached $35.1 billion in the quarter, while margins hit 74.6% overall."),
		},
	}
	g := glossary.Build(doc, 0)

	for _, want := range []string{"$35.1 billion", "74.6%"} {
		term, ok := find(g, want)
		if !ok {
			t.Errorf("%q not extracted", want)
			continue
		}
		if term.Target != want {
			t.Errorf("%q target = %q, want verbatim", want, term.Target)
		}
	}
}

func TestBuild_BareNumbersIgnored(t *testing.T) {
	doc := parser.Document{
		Blocks: []parser.Block{
			para("The company was founded in 1993 and employs 29600 people there."),
		},
	}
	g := glossary.Build(doc, 0)
	if _, ok := find(g, "1993"); ok {
		t.Error("bare year should not become a glossary term")
	}
}

func TestBuild_DedupKeepsFirstSeenOrder(t *testing.T) {
	doc := parser.Document{
		Title: "Nvidia earnings preview",
		Blocks: []parser.Block{
			para("Nvidia reports earnings on Wednesday. Investors expect Nvidia to beat estimates again."),
		},
	}
	g := glossary.Build(doc, 0)

	count := 0
	for _, term := range g.Terms {
		if strings.EqualFold(term.Source, "Nvidia") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Nvidia appears %d times, want 1", count)
	}
	if len(g.Terms) == 0 || !strings.EqualFold(g.Terms[0].Source, "Nvidia") {
		t.Errorf("first term = %+v, want Nvidia from the title", g.Terms)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	doc := parser.Document{
		Title: "Markets rally on Fed pause hopes",
		Blocks: []parser.Block{
			para("The Federal Reserve signaled patience. Goldman Sachs expects two cuts, worth $1.2 trillion to equities."),
		},
	}
	a := glossary.Build(doc, 0)
	b := glossary.Build(doc, 0)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("glossary not deterministic:\n a=%+v\n b=%+v", a, b)
	}
}

func TestBuild_OnlyLeadParagraphsScanned(t *testing.T) {
	doc := parser.Document{
		Blocks: []parser.Block{
			para("Stocks rose broadly on Tuesday as traders weighed new economic data."),
			para("Bond yields were little changed through the session in New York."),
			para("Oil prices slipped slightly after the inventory report came out."),
			para("Deep in the story, Berkshire Hathaway disclosed a new position."),
		},
	}
	g := glossary.Build(doc, 3)
	if _, ok := find(g, "Berkshire Hathaway"); ok {
		t.Error("term beyond the lead paragraphs was extracted")
	}
}

func TestBuild_TitleCaseDoesNotEmitEntityRuns(t *testing.T) {
	doc := parser.Document{
		Title: "Tech Stocks Rally As Chipmaker Reports Record Quarterly Revenue",
	}
	g := glossary.Build(doc, 0)
	if _, ok := find(g, "Tech Stocks Rally"); ok {
		t.Error("title-case run extracted as entity")
	}
	// Domain phrases still match inside a title-case headline.
	if _, ok := find(g, "Quarterly Revenue"); !ok {
		t.Error("domain phrase missed in title")
	}
}

func TestBuild_EmptyDocument(t *testing.T) {
	g := glossary.Build(parser.Document{}, 0)
	if !g.Empty() {
		t.Errorf("expected empty glossary, got %+v", g.Terms)
	}
}

func TestFormat_RendersTable(t *testing.T) {
	g := glossary.Glossary{Terms: []glossary.Term{
		{Source: "Federal Reserve", Target: "연방준비제도(Fed)"},
		{Source: "Acme Robotics", Target: ""},
	}}
	got := g.Format()
	if !strings.Contains(got, "- Federal Reserve → 연방준비제도(Fed)") {
		t.Errorf("formatted table missing canonical entry:\n%s", got)
	}
	if !strings.Contains(got, "- Acme Robotics → (한국어 표기를 정해 일관되게 사용)") {
		t.Errorf("formatted table missing placeholder entry:\n%s", got)
	}
}

func TestFormat_EmptyGlossary(t *testing.T) {
	if got := (glossary.Glossary{}).Format(); got != "(없음)" {
		t.Errorf("empty glossary renders %q", got)
	}
}

func TestMerge_OverridesAndAppends(t *testing.T) {
	doc := parser.Document{
		Blocks: []parser.Block{
			para("The acquisition by Quantum Dynamics drew scrutiny from regulators in Brussels and Washington."),
		},
	}
	g := glossary.Build(doc, 0)

	term, ok := find(g, "Quantum Dynamics")
	if !ok {
		t.Fatal("expected entity run before merge")
	}
	if term.Target != "" {
		t.Fatalf("expected empty target before merge, got %q", term.Target)
	}

	g.Merge(map[string]string{
		"Quantum Dynamics": "퀀텀 다이내믹스",
		"antitrust":        "반독점",
	})

	term, ok = find(g, "Quantum Dynamics")
	if !ok || term.Target != "퀀텀 다이내믹스" {
		t.Errorf("expected merged target for existing term, got %+v ok=%v", term, ok)
	}
	term, ok = find(g, "antitrust")
	if !ok || term.Target != "반독점" {
		t.Errorf("expected appended term, got %+v ok=%v", term, ok)
	}
}

func TestMerge_EmptyMapIsNoOp(t *testing.T) {
	g := glossary.Glossary{Terms: []glossary.Term{{Source: "GDP", Target: ""}}}
	g.Merge(nil)
	if len(g.Terms) != 1 {
		t.Errorf("expected glossary unchanged, got %d terms", len(g.Terms))
	}
}

func TestMerge_AppendsInSortedOrder(t *testing.T) {
	var g glossary.Glossary
	g.Merge(map[string]string{"beta": "베타", "alpha": "알파"})
	if len(g.Terms) != 2 {
		t.Fatalf("expected 2 terms, got %d", len(g.Terms))
	}
	if g.Terms[0].Source != "alpha" || g.Terms[1].Source != "beta" {
		t.Errorf("expected sorted append order, got %v", g.Terms)
	}
}
