package grammars

import treesitter "github.com/SINHASantos/tree-sitter"

// Ambiguous builds a grammar where one input parses two ways, forcing a
// GLR fork:
//
//	S -> A | B
//	A -> "x"   (dynamic precedence 1)
//	B -> "x"
//
// Symbols: 0=EOF, 1=x, 2=A, 3=B, 4=S
//
// States:
//
//	1 (start): x -> shift 2, A -> goto 3, B -> goto 4, S -> goto 5
//	2 (x):     reduce A->x AND reduce B->x (two actions: the fork)
//	3 (A):     reduce S->A
//	4 (B):     reduce S->B
//	5 (S):     EOF -> accept
//
// Both alternatives cover the same input; the A version wins on dynamic
// precedence.
func Ambiguous() *treesitter.Language {
	return &treesitter.Language{
		Name:              "ambiguous",
		SymbolCount:       5,
		TokenCount:        2,
		StateCount:        6,
		ProductionIDCount: 4,

		SymbolNames: []string{"end", "x", "A", "B", "S"},
		SymbolMetadata: []treesitter.SymbolMetadata{
			{},
			{Visible: true, Named: true},
			{Visible: true, Named: true},
			{Visible: true, Named: true},
			{Visible: true, Named: true},
		},

		ParseActions: []treesitter.ParseActionEntry{
			{},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 2}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 3}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 4}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 5}}},
			{Reusable: true, Actions: []treesitter.ParseAction{
				{Type: treesitter.ParseActionReduce, Symbol: 2, ChildCount: 1, DynamicPrecedence: 1, ProductionID: 0},
				{Type: treesitter.ParseActionReduce, Symbol: 3, ChildCount: 1, ProductionID: 1},
			}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 4, ChildCount: 1, ProductionID: 2}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 4, ChildCount: 1, ProductionID: 3}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionAccept}}},
		},

		ParseTable: [][]uint16{
			//  EOF  x   A   B   S
			0: {0, 0, 0, 0, 0},
			1: {0, 1, 2, 3, 4},
			2: {5, 5, 0, 0, 0},
			3: {6, 0, 0, 0, 0},
			4: {7, 0, 0, 0, 0},
			5: {8, 0, 0, 0, 0},
		},

		LexModes: []treesitter.LexMode{{}, {}, {}, {}, {}, {}},

		LexStates: xLexStates(),
	}
}

// AmbiguousLength builds a grammar where the fork spans several tokens,
// so two stack versions stay alive across shifts before converging:
//
//	S -> A B
//	A -> "x" | "x" "x"
//	B -> "x" | (empty)
//
// Symbols: 0=EOF, 1=x, 2=A, 3=B, 4=S
//
// States:
//
//	1 (start):  x -> shift 2, A -> goto 3, S -> goto 7
//	2 (x):      x -> shift 4 AND reduce A->x; EOF -> reduce A->x
//	3 (A):      x -> shift 5, B -> goto 6, EOF -> reduce B->empty
//	4 (x x):    reduce A->x x
//	5 (A x):    EOF -> reduce B->x
//	6 (A B):    EOF -> reduce S->A B
//	7 (S):      EOF -> accept
func AmbiguousLength() *treesitter.Language {
	return &treesitter.Language{
		Name:              "ambiguous-length",
		SymbolCount:       5,
		TokenCount:        2,
		StateCount:        8,
		ProductionIDCount: 5,

		SymbolNames: []string{"end", "x", "A", "B", "S"},
		SymbolMetadata: []treesitter.SymbolMetadata{
			{},
			{Visible: true, Named: true},
			{Visible: true, Named: true},
			{Visible: true, Named: true},
			{Visible: true, Named: true},
		},

		ParseActions: []treesitter.ParseActionEntry{
			{},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 2}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 3}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 7}}},
			// x at state 2: shift/reduce conflict. Reduces come first;
			// the shift is always the entry's last action.
			{Reusable: true, Actions: []treesitter.ParseAction{
				{Type: treesitter.ParseActionReduce, Symbol: 2, ChildCount: 1, ProductionID: 0},
				{Type: treesitter.ParseActionShift, State: 4},
			}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 2, ChildCount: 1, ProductionID: 0}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 5}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 6}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 3, ChildCount: 0, ProductionID: 2}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 2, ChildCount: 2, ProductionID: 1}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 3, ChildCount: 1, ProductionID: 3}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 4, ChildCount: 2, ProductionID: 4}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionAccept}}},
		},

		ParseTable: [][]uint16{
			//  EOF  x   A   B   S
			0: {0, 0, 0, 0, 0},
			1: {0, 1, 2, 0, 3},
			2: {5, 4, 0, 0, 0},
			3: {8, 6, 0, 7, 0},
			4: {9, 9, 0, 0, 0},
			5: {10, 0, 0, 0, 0},
			6: {11, 0, 0, 0, 0},
			7: {12, 0, 0, 0, 0},
		},

		LexModes: []treesitter.LexMode{{}, {}, {}, {}, {}, {}, {}, {}},

		LexStates: xLexStates(),
	}
}

// EmptyRule builds the degenerate grammar S -> (empty), which accepts
// only the empty document.
//
// States:
//
//	1 (start): EOF -> reduce S->empty, S -> goto 2
//	2 (S):     EOF -> accept
func EmptyRule() *treesitter.Language {
	return &treesitter.Language{
		Name:              "empty-rule",
		SymbolCount:       2,
		TokenCount:        1,
		StateCount:        3,
		ProductionIDCount: 1,

		SymbolNames: []string{"end", "S"},
		SymbolMetadata: []treesitter.SymbolMetadata{
			{},
			{Visible: true, Named: true},
		},

		ParseActions: []treesitter.ParseActionEntry{
			{},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 1, ChildCount: 0, ProductionID: 0}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 2}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionAccept}}},
		},

		ParseTable: [][]uint16{
			//  EOF  S
			0: {0, 0},
			1: {1, 2},
			2: {3, 0},
		},

		LexModes: []treesitter.LexMode{{}, {}, {}},

		LexStates: xLexStates(),
	}
}

// xLexStates is the shared single-token DFA: "x" tokens separated by
// whitespace.
func xLexStates() []treesitter.LexState {
	return []treesitter.LexState{
		{
			Transitions: []treesitter.LexTransition{
				{Lo: 'x', Hi: 'x', NextState: 1},
				{Lo: ' ', Hi: ' ', NextState: 2},
				{Lo: '\t', Hi: '\t', NextState: 2},
				{Lo: '\n', Hi: '\n', NextState: 2},
			},
			Default:  -1,
			EOFState: -1,
		},
		{AcceptToken: 1, Default: -1, EOFState: -1},
		{
			Skip: true,
			Transitions: []treesitter.LexTransition{
				{Lo: ' ', Hi: ' ', NextState: 2},
				{Lo: '\t', Hi: '\t', NextState: 2},
				{Lo: '\n', Hi: '\n', NextState: 2},
			},
			Default:  -1,
			EOFState: -1,
		},
	}
}
