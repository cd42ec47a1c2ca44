package treesitter

// Hand-built grammar fixtures for tests that need access to parser
// internals. The exported fixtures in the grammars package cover the
// public-API tests; these stay minimal.

// buildArithmeticLanguage constructs an LR grammar for simple addition:
//
//	expression -> NUMBER
//	expression -> expression "+" NUMBER
//
// Symbols: 0=EOF, 1=NUMBER, 2="+", 3=expression
//
// States:
//
//	1 (start):      NUMBER -> shift 2, expression -> goto 3
//	2 (NUMBER):     reduce expression->NUMBER
//	3 (expression): "+" -> shift 4, EOF -> accept
//	4 (expr "+"):   NUMBER -> shift 5
//	5 (expr "+" N): reduce expression->expression "+" NUMBER
func buildArithmeticLanguage() *Language {
	return &Language{
		Name:        "arithmetic",
		SymbolCount: 4,
		TokenCount:  3,
		StateCount:  6,

		SymbolNames: []string{"end", "NUMBER", "+", "expression"},
		SymbolMetadata: []SymbolMetadata{
			{},
			{Visible: true, Named: true},
			{Visible: true},
			{Visible: true, Named: true},
		},

		ParseActions: []ParseActionEntry{
			{},
			{Reusable: true, Actions: []ParseAction{{Type: ParseActionShift, State: 2}}},
			{Reusable: true, Actions: []ParseAction{{Type: ParseActionReduce, Symbol: 3, ChildCount: 1}}},
			{Actions: []ParseAction{{Type: ParseActionShift, State: 3}}},
			{Reusable: true, Actions: []ParseAction{{Type: ParseActionShift, State: 4}}},
			{Actions: []ParseAction{{Type: ParseActionAccept}}},
			{Reusable: true, Actions: []ParseAction{{Type: ParseActionShift, State: 5}}},
			{Reusable: true, Actions: []ParseAction{{Type: ParseActionReduce, Symbol: 3, ChildCount: 3, ProductionID: 1}}},
		},

		ParseTable: [][]uint16{
			0: {0, 0, 0, 0},
			1: {0, 1, 0, 3},
			2: {2, 2, 2, 0},
			3: {5, 0, 4, 0},
			4: {0, 6, 0, 0},
			5: {7, 7, 7, 0},
		},

		LexModes: []LexMode{{}, {}, {}, {}, {}, {}},

		LexStates: numberLexStates(),
	}
}

// buildSequenceLanguage constructs the fixed grammar S -> "x" "x".
//
// States:
//
//	1 (start): x -> shift 2, S -> goto 4
//	2 (x):     x -> shift 3
//	3 (x x):   EOF -> reduce S->x x
//	4 (S):     EOF -> accept
func buildSequenceLanguage() *Language {
	return &Language{
		Name:        "sequence",
		SymbolCount: 3,
		TokenCount:  2,
		StateCount:  5,

		SymbolNames: []string{"end", "x", "S"},
		SymbolMetadata: []SymbolMetadata{
			{},
			{Visible: true, Named: true},
			{Visible: true, Named: true},
		},

		ParseActions: []ParseActionEntry{
			{},
			{Reusable: true, Actions: []ParseAction{{Type: ParseActionShift, State: 2}}},
			{Reusable: true, Actions: []ParseAction{{Type: ParseActionShift, State: 3}}},
			{Reusable: true, Actions: []ParseAction{{Type: ParseActionReduce, Symbol: 2, ChildCount: 2}}},
			{Actions: []ParseAction{{Type: ParseActionShift, State: 4}}},
			{Actions: []ParseAction{{Type: ParseActionAccept}}},
		},

		ParseTable: [][]uint16{
			0: {0, 0, 0},
			1: {0, 1, 4},
			2: {0, 2, 0},
			3: {3, 0, 0},
			4: {5, 0, 0},
		},

		LexModes: []LexMode{{}, {}, {}, {}, {}},

		LexStates: []LexState{
			{
				Transitions: []LexTransition{
					{Lo: 'x', Hi: 'x', NextState: 1},
					{Lo: ' ', Hi: ' ', NextState: 2},
				},
				Default:  -1,
				EOFState: -1,
			},
			{AcceptToken: 1, Default: -1, EOFState: -1},
			{
				Skip:        true,
				Transitions: []LexTransition{{Lo: ' ', Hi: ' ', NextState: 2}},
				Default:     -1,
				EOFState:    -1,
			},
		},
	}
}
