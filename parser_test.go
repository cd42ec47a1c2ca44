package treesitter_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	treesitter "github.com/SINHASantos/tree-sitter"
	"github.com/SINHASantos/tree-sitter/grammars"
)

func newTestParser(t *testing.T, lang *treesitter.Language) *treesitter.Parser {
	t.Helper()
	parser := treesitter.NewParser()
	if !parser.SetLanguage(lang) {
		t.Fatal("SetLanguage failed")
	}
	return parser
}

// nodeSummary flattens a tree into (type, span) records for structural
// comparison.
type nodeSummary struct {
	Type       string
	StartByte  uint32
	EndByte    uint32
	ChildCount int
}

func summarize(n treesitter.Node) []nodeSummary {
	out := []nodeSummary{{
		Type:       n.Type(),
		StartByte:  n.StartByte(),
		EndByte:    n.EndByte(),
		ChildCount: n.ChildCount(),
	}}
	for i := 0; i < n.ChildCount(); i++ {
		out = append(out, summarize(n.Child(i))...)
	}
	return out
}

func TestParseArithmetic(t *testing.T) {
	parser := newTestParser(t, grammars.Arithmetic())

	tree := parser.ParseString(nil, []byte("1+2"))
	if tree == nil {
		t.Fatal("parse failed")
	}

	root := tree.RootNode()
	if got, want := root.String(), "(expression (expression (NUMBER)) (NUMBER))"; got != want {
		t.Errorf("tree = %s, want %s", got, want)
	}
	if root.StartByte() != 0 || root.EndByte() != 3 {
		t.Errorf("root span = [%d,%d), want [0,3)", root.StartByte(), root.EndByte())
	}
	if root.HasError() {
		t.Error("clean input must not report errors")
	}
}

func TestParseWithWhitespaceAndComment(t *testing.T) {
	parser := newTestParser(t, grammars.Arithmetic())

	source := []byte("1 + 2 # trailing")
	tree := parser.ParseString(nil, source)
	if tree == nil {
		t.Fatal("parse failed")
	}

	root := tree.RootNode()
	if got, want := root.String(), "(expression (expression (NUMBER)) (NUMBER) (COMMENT))"; got != want {
		t.Errorf("tree = %s, want %s", got, want)
	}
	if root.EndByte() != uint32(len(source)) {
		t.Errorf("root end = %d, want %d", root.EndByte(), len(source))
	}

	// The comment node is an extra covering its exact span.
	var comment treesitter.Node
	for i := 0; i < root.ChildCount(); i++ {
		if root.Child(i).Type() == "COMMENT" {
			comment = root.Child(i)
		}
	}
	if comment.IsZero() || !comment.IsExtra() {
		t.Fatal("expected an extra COMMENT child")
	}
	if comment.Text(source) != "# trailing" {
		t.Errorf("comment text = %q", comment.Text(source))
	}
}

func TestParseEmptyInput(t *testing.T) {
	parser := newTestParser(t, grammars.EmptyRule())

	tree := parser.ParseString(nil, nil)
	if tree == nil {
		t.Fatal("parse failed")
	}
	root := tree.RootNode()
	if got := root.String(); got != "(S)" {
		t.Errorf("tree = %s, want (S)", got)
	}
	if root.StartByte() != 0 || root.EndByte() != 0 {
		t.Errorf("root span = [%d,%d), want [0,0)", root.StartByte(), root.EndByte())
	}
}

func TestParseWhitespaceOnlyInput(t *testing.T) {
	parser := newTestParser(t, grammars.EmptyRule())

	tree := parser.ParseString(nil, []byte("   "))
	if tree == nil {
		t.Fatal("parse failed")
	}
	root := tree.RootNode()
	if root.HasError() {
		t.Error("whitespace-only input should parse cleanly")
	}
	// The whitespace survives as padding on the end-of-input extra.
	if root.EndByte() != 3 {
		t.Errorf("root end = %d, want 3", root.EndByte())
	}
}

func TestAmbiguityResolvedByDynamicPrecedence(t *testing.T) {
	parser := newTestParser(t, grammars.Ambiguous())

	tree := parser.ParseString(nil, []byte("x"))
	if tree == nil {
		t.Fatal("parse failed")
	}
	root := tree.RootNode()
	if got, want := root.String(), "(S (A (x)))"; got != want {
		t.Errorf("tree = %s, want %s", got, want)
	}
	if root.NamedChild(0).Type() != "A" {
		t.Errorf("winning alternative = %s, want A", root.NamedChild(0).Type())
	}
}

func TestAmbiguousForkConverges(t *testing.T) {
	parser := newTestParser(t, grammars.AmbiguousLength())

	tree := parser.ParseString(nil, []byte("xx"))
	if tree == nil {
		t.Fatal("parse failed")
	}
	root := tree.RootNode()
	if root.HasError() {
		t.Fatal("both fork branches parse the input; no errors expected")
	}
	if got, want := root.String(), "(S (A (x)) (B (x)))"; got != want {
		t.Errorf("tree = %s, want %s", got, want)
	}
	if root.EndByte() != 2 {
		t.Errorf("root end = %d, want 2", root.EndByte())
	}
}

func TestParseSpansCoverInput(t *testing.T) {
	parser := newTestParser(t, grammars.Arithmetic())

	for _, source := range []string{"1", "1+2", "1+2+3", " 1 + 2 ", "12+345+6"} {
		tree := parser.ParseString(nil, []byte(source))
		if tree == nil {
			t.Fatalf("%q: parse failed", source)
		}
		root := tree.RootNode()
		if root.EndByte() != uint32(len(source)) {
			t.Errorf("%q: root end = %d, want %d", source, root.EndByte(), len(source))
		}
	}
}

func TestReparseUnchangedIsStructurallyEqual(t *testing.T) {
	parser := newTestParser(t, grammars.Arithmetic())

	source := []byte("1+2+3")
	tree1 := parser.ParseString(nil, source)
	if tree1 == nil {
		t.Fatal("initial parse failed")
	}

	tree2 := parser.Parse(tree1, treesitter.StringInput(source))
	if tree2 == nil {
		t.Fatal("reparse failed")
	}

	if diff := cmp.Diff(summarize(tree1.RootNode()), summarize(tree2.RootNode())); diff != "" {
		t.Errorf("reparse differs (-old +new):\n%s", diff)
	}
}

func TestDotGraphOutput(t *testing.T) {
	parser := newTestParser(t, grammars.Arithmetic())

	var buf testWriter
	parser.PrintDotGraphs(&buf)
	if parser.ParseString(nil, []byte("1+2")) == nil {
		t.Fatal("parse failed")
	}

	out := buf.String()
	if len(out) == 0 {
		t.Fatal("expected dot output")
	}
	for _, want := range []string{"graph {", "digraph stack {", "digraph tree {"} {
		if !strings.Contains(out, want) {
			t.Errorf("dot output missing %q", want)
		}
	}
}

func TestSetLanguageRejectsIncompatibleABI(t *testing.T) {
	parser := treesitter.NewParser()
	lang := grammars.Arithmetic()
	lang.ABIVersion = 9999
	if parser.SetLanguage(lang) {
		t.Error("expected an ABI-version mismatch to be rejected")
	}
	if parser.ParseString(nil, []byte("1")) != nil {
		t.Error("parsing without a language must return nil")
	}
}

type testWriter struct {
	data []byte
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *testWriter) String() string { return string(w.data) }
