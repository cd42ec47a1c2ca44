package treesitter_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	treesitter "github.com/SINHASantos/tree-sitter"
	"github.com/SINHASantos/tree-sitter/grammars"
)

func TestTreeEditShiftsSpans(t *testing.T) {
	parser := newTestParser(t, grammars.Arithmetic())

	tree := parser.ParseString(nil, []byte("1+2"))
	if tree == nil {
		t.Fatal("parse failed")
	}

	// Insert "0" before "1": "01+2".
	tree.Edit(treesitter.InputEdit{
		StartByte: 0, OldEndByte: 0, NewEndByte: 1,
		NewEndPoint: treesitter.Point{Column: 1},
	})

	if got := tree.RootNode().EndByte(); got != 4 {
		t.Errorf("root end after edit = %d, want 4", got)
	}
}

func TestIncrementalReparseMatchesFreshParse(t *testing.T) {
	parser := newTestParser(t, grammars.Arithmetic())

	tree := parser.ParseString(nil, []byte("1+2"))
	if tree == nil {
		t.Fatal("initial parse failed")
	}

	// Replace "2" with "3".
	tree.Edit(treesitter.InputEdit{
		StartByte: 2, OldEndByte: 3, NewEndByte: 3,
		StartPoint:  treesitter.Point{Column: 2},
		OldEndPoint: treesitter.Point{Column: 3},
		NewEndPoint: treesitter.Point{Column: 3},
	})

	edited := parser.Parse(tree, treesitter.StringInput([]byte("1+3")))
	if edited == nil {
		t.Fatal("incremental parse failed")
	}

	fresh := newTestParser(t, grammars.Arithmetic()).ParseString(nil, []byte("1+3"))
	if fresh == nil {
		t.Fatal("fresh parse failed")
	}

	if diff := cmp.Diff(summarize(fresh.RootNode()), summarize(edited.RootNode())); diff != "" {
		t.Errorf("incremental parse differs from fresh parse (-fresh +incremental):\n%s", diff)
	}
}

func TestIncrementalReparseAfterInsertion(t *testing.T) {
	parser := newTestParser(t, grammars.Arithmetic())

	tree := parser.ParseString(nil, []byte("1+2"))
	if tree == nil {
		t.Fatal("initial parse failed")
	}

	// Append "+3": "1+2+3".
	tree.Edit(treesitter.InputEdit{
		StartByte: 3, OldEndByte: 3, NewEndByte: 5,
		StartPoint:  treesitter.Point{Column: 3},
		OldEndPoint: treesitter.Point{Column: 3},
		NewEndPoint: treesitter.Point{Column: 5},
	})

	edited := parser.Parse(tree, treesitter.StringInput([]byte("1+2+3")))
	if edited == nil {
		t.Fatal("incremental parse failed")
	}

	fresh := newTestParser(t, grammars.Arithmetic()).ParseString(nil, []byte("1+2+3"))
	if diff := cmp.Diff(summarize(fresh.RootNode()), summarize(edited.RootNode())); diff != "" {
		t.Errorf("incremental parse differs from fresh parse (-fresh +incremental):\n%s", diff)
	}
}

func TestIncrementalReparseIntroducingError(t *testing.T) {
	parser := newTestParser(t, grammars.Sequence())

	tree := parser.ParseString(nil, []byte("x x"))
	if tree == nil {
		t.Fatal("initial parse failed")
	}
	if tree.RootNode().HasError() {
		t.Fatal("control parse should be clean")
	}

	// Replace the second "x" with an unlexable "?".
	tree.Edit(treesitter.InputEdit{
		StartByte: 2, OldEndByte: 3, NewEndByte: 3,
		StartPoint:  treesitter.Point{Column: 2},
		OldEndPoint: treesitter.Point{Column: 3},
		NewEndPoint: treesitter.Point{Column: 3},
	})

	edited := parser.Parse(tree, treesitter.StringInput([]byte("x ?")))
	if edited == nil {
		t.Fatal("incremental parse failed")
	}
	root := edited.RootNode()
	if !root.HasError() {
		t.Fatal("expected an error after the edit")
	}
	if root.EndByte() != 3 {
		t.Errorf("root end = %d, want 3", root.EndByte())
	}
}
