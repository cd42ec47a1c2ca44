package treesitter_test

import (
	"testing"

	treesitter "github.com/SINHASantos/tree-sitter"
	"github.com/SINHASantos/tree-sitter/grammars"
)

func TestIndentGrammarParsesNestedBlock(t *testing.T) {
	parser := newTestParser(t, grammars.Indent())

	source := []byte("a\n  b\n")
	tree := parser.ParseString(nil, source)
	if tree == nil {
		t.Fatal("parse failed")
	}

	root := tree.RootNode()
	if root.HasError() {
		t.Fatalf("unexpected error in %s", root.String())
	}
	want := "(doc (doc (stmt (name))) (stmt (indent) (doc (stmt (name))) (dedent)))"
	if got := root.String(); got != want {
		t.Errorf("tree = %s\nwant   %s", got, want)
	}
	if root.EndByte() != uint32(len(source)) {
		t.Errorf("root end = %d, want %d", root.EndByte(), len(source))
	}

	// The dedent at end of input is zero-width and appears exactly once.
	var dedents []treesitter.Node
	var walk func(n treesitter.Node)
	walk = func(n treesitter.Node) {
		if n.Type() == "dedent" {
			dedents = append(dedents, n)
		}
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	if len(dedents) != 1 {
		t.Fatalf("dedent count = %d, want 1", len(dedents))
	}
	if dedents[0].StartByte() != dedents[0].EndByte() {
		t.Error("the end-of-input dedent must be zero-width")
	}
}

func TestIndentGrammarFlatDocument(t *testing.T) {
	parser := newTestParser(t, grammars.Indent())

	tree := parser.ParseString(nil, []byte("a\nb\n"))
	if tree == nil {
		t.Fatal("parse failed")
	}
	root := tree.RootNode()
	if root.HasError() {
		t.Fatalf("unexpected error in %s", root.String())
	}
	want := "(doc (doc (stmt (name))) (stmt (name)))"
	if got := root.String(); got != want {
		t.Errorf("tree = %s, want %s", got, want)
	}
}

func TestIndentGrammarMidFileDedent(t *testing.T) {
	parser := newTestParser(t, grammars.Indent())

	source := []byte("a\n  b\nc\n")
	tree := parser.ParseString(nil, source)
	if tree == nil {
		t.Fatal("parse failed")
	}
	root := tree.RootNode()
	if root.HasError() {
		t.Fatalf("unexpected error in %s", root.String())
	}
	if root.EndByte() != uint32(len(source)) {
		t.Errorf("root end = %d, want %d", root.EndByte(), len(source))
	}
}

func TestExternalVMProgramValidation(t *testing.T) {
	cases := []struct {
		name    string
		program treesitter.ExternalVMProgram
	}{
		{
			name:    "empty program",
			program: treesitter.ExternalVMProgram{},
		},
		{
			name: "jump out of range",
			program: treesitter.ExternalVMProgram{
				Code: []treesitter.ExternalVMInstr{treesitter.VMJump(5)},
			},
		},
		{
			name: "inverted rune range",
			program: treesitter.ExternalVMProgram{
				Code: []treesitter.ExternalVMInstr{
					treesitter.VMIfRuneInRange('z', 'a', 0),
				},
			},
		},
		{
			name: "negative max steps",
			program: treesitter.ExternalVMProgram{
				Code:     []treesitter.ExternalVMInstr{treesitter.VMFail()},
				MaxSteps: -1,
			},
		},
	}

	for _, tc := range cases {
		if _, err := treesitter.NewExternalVMScanner(tc.program); err == nil {
			t.Errorf("%s: expected a validation error", tc.name)
		}
	}

	if _, err := treesitter.NewExternalVMScanner(treesitter.ExternalVMProgram{
		Code: []treesitter.ExternalVMInstr{treesitter.VMFail()},
	}); err != nil {
		t.Errorf("minimal program rejected: %v", err)
	}
}

func TestExternalVMSerializeRoundTrip(t *testing.T) {
	scanner := treesitter.MustNewExternalVMScanner(treesitter.ExternalVMProgram{
		Code: []treesitter.ExternalVMInstr{
			treesitter.VMSetState(42),
			treesitter.VMFail(),
		},
	})

	payload := scanner.Create()
	defer scanner.Destroy(payload)

	var buf [8]byte
	if n := scanner.Serialize(payload, buf[:]); n != 4 {
		t.Fatalf("serialized length = %d, want 4", n)
	}

	other := scanner.Create()
	scanner.Deserialize(other, buf[:4])
	var buf2 [8]byte
	scanner.Serialize(other, buf2[:])
	if buf != buf2 {
		t.Error("round-tripped state differs")
	}
}
