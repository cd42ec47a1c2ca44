package treesitter

import "testing"

func TestCompareVersionStatus(t *testing.T) {
	cases := []struct {
		name string
		a, b errorStatus
		want errorComparison
	}{
		{
			name: "out-of-error beats in-error when cheaper",
			a:    errorStatus{cost: 10},
			b:    errorStatus{cost: 50, isInError: true},
			want: errorComparisonTakeLeft,
		},
		{
			name: "out-of-error only preferred when costlier",
			a:    errorStatus{cost: 80},
			b:    errorStatus{cost: 50, isInError: true},
			want: errorComparisonPreferLeft,
		},
		{
			name: "mirrored in-error on the left",
			a:    errorStatus{cost: 50, isInError: true},
			b:    errorStatus{cost: 10},
			want: errorComparisonTakeRight,
		},
		{
			name: "small cost difference prefers",
			a:    errorStatus{cost: 100, nodeCount: 1},
			b:    errorStatus{cost: 200, nodeCount: 1},
			want: errorComparisonPreferLeft,
		},
		{
			name: "large scaled difference takes",
			a:    errorStatus{cost: 100, nodeCount: 100},
			b:    errorStatus{cost: 200, nodeCount: 100},
			want: errorComparisonTakeLeft,
		},
		{
			name: "dynamic precedence breaks ties",
			a:    errorStatus{cost: 100, dynamicPrecedence: 2},
			b:    errorStatus{cost: 100, dynamicPrecedence: 1},
			want: errorComparisonPreferLeft,
		},
		{
			name: "identical statuses compare as none",
			a:    errorStatus{cost: 100},
			b:    errorStatus{cost: 100},
			want: errorComparisonNone,
		},
	}

	for _, tc := range cases {
		if got := compareVersionStatus(tc.a, tc.b); got != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestTokenCache(t *testing.T) {
	p := NewParser()
	if !p.SetLanguage(buildSequenceLanguage()) {
		t.Fatal("SetLanguage failed")
	}

	token := newLeaf(p.pool, 1, lengthZero(), lengthOf(1), 0, 1, false, false)
	p.setCachedToken(0, nil, token)

	got, entry := p.getCachedToken(1, 0, nil)
	if got != token {
		t.Fatal("expected the cached token")
	}
	if len(entry.Actions) == 0 || entry.Actions[0].Type != ParseActionShift {
		t.Fatal("expected the shift entry for x at state 1")
	}
	if token.refCount.Load() != 3 {
		t.Errorf("refCount = %d, want 3 (creator, cache, caller)", token.refCount.Load())
	}
	p.pool.release(got)

	// A different byte position misses.
	if miss, _ := p.getCachedToken(1, 5, nil); miss != nil {
		t.Error("cache must miss at a different position")
	}

	// Replacing the slot releases the old token.
	p.setCachedToken(0, nil, nil)
	if token.refCount.Load() != 1 {
		t.Errorf("refCount after eviction = %d, want 1", token.refCount.Load())
	}
}

func TestCondenseCapsVersionCount(t *testing.T) {
	p := NewParser()
	if !p.SetLanguage(buildSequenceLanguage()) {
		t.Fatal("SetLanguage failed")
	}

	// Create more distinguishable versions than the cap allows.
	for i := 0; i < 9; i++ {
		v := p.stack.copyVersion(0)
		leaf := newLeaf(p.pool, 1, lengthZero(), lengthOf(uint32(i+1)), 0, 1, false, false)
		p.stack.push(v, leaf, false, StateID(10+i))
	}

	p.condenseStack()
	if got := p.stack.versionCount(); got > maxVersionCount {
		t.Errorf("version count after condense = %d, want <= %d", got, maxVersionCount)
	}

	// Condensing again must be a no-op.
	before := p.stack.versionCount()
	p.condenseStack()
	if got := p.stack.versionCount(); got != before {
		t.Errorf("second condense changed version count: %d -> %d", before, got)
	}
}

func TestParseReleasesFinishedReferences(t *testing.T) {
	p := NewParser()
	if !p.SetLanguage(buildArithmeticLanguage()) {
		t.Fatal("SetLanguage failed")
	}

	tree := p.ParseString(nil, []byte("1+2"))
	if tree == nil {
		t.Fatal("parse failed")
	}
	if got := tree.root.refCount.Load(); got != 1 {
		t.Errorf("root refCount = %d, want 1 (tree is the only owner)", got)
	}
}

func TestIncrementalReuseKeepsNodeIdentity(t *testing.T) {
	p := NewParser()
	if !p.SetLanguage(buildArithmeticLanguage()) {
		t.Fatal("SetLanguage failed")
	}

	tree1 := p.ParseString(nil, []byte("1+2"))
	if tree1 == nil {
		t.Fatal("initial parse failed")
	}
	firstOperand := tree1.root.children[0].children[0]

	tree1.Edit(InputEdit{
		StartByte: 2, OldEndByte: 3, NewEndByte: 3,
		StartPoint:  Point{Column: 2},
		OldEndPoint: Point{Column: 3},
		NewEndPoint: Point{Column: 3},
	})

	tree2 := p.Parse(tree1, StringInput([]byte("1+3")))
	if tree2 == nil {
		t.Fatal("incremental parse failed")
	}
	if tree2.root.children[0].children[0] != firstOperand {
		t.Error("the unchanged first operand's NUMBER leaf should be reused by identity")
	}
	if tree2.RootNode().String() != "(expression (expression (NUMBER)) (NUMBER))" {
		t.Errorf("unexpected tree: %s", tree2.RootNode().String())
	}
}

func TestReparseWithoutEditsReusesRoot(t *testing.T) {
	p := NewParser()
	if !p.SetLanguage(buildArithmeticLanguage()) {
		t.Fatal("SetLanguage failed")
	}

	source := []byte("1+2")
	tree1 := p.ParseString(nil, source)
	if tree1 == nil {
		t.Fatal("initial parse failed")
	}

	tree2 := p.Parse(tree1, StringInput(source))
	if tree2 == nil {
		t.Fatal("reparse failed")
	}
	// All non-root structure is shared: the reused subtrees are the
	// same objects in both trees.
	if tree2.root.children[0] != tree1.root.children[0] {
		t.Error("expected the toplevel expression to be reused by identity")
	}
	if tree1.RootNode().String() != tree2.RootNode().String() {
		t.Errorf("trees differ: %s vs %s", tree1.RootNode().String(), tree2.RootNode().String())
	}
}
