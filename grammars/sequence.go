package grammars

import treesitter "github.com/SINHASantos/tree-sitter"

// Sequence builds the fixed two-token grammar S -> "x" "x", used by the
// incremental-reuse and error-recovery tests.
//
// States:
//
//	1 (start):  x -> shift 2, S -> goto 4
//	2 (x):      x -> shift 3
//	3 (x x):    EOF -> reduce S->x x
//	4 (S):      EOF -> accept
func Sequence() *treesitter.Language {
	return &treesitter.Language{
		Name:              "sequence",
		SymbolCount:       3,
		TokenCount:        2,
		StateCount:        5,
		ProductionIDCount: 1,

		SymbolNames: []string{"end", "x", "S"},
		SymbolMetadata: []treesitter.SymbolMetadata{
			{},
			{Visible: true, Named: true},
			{Visible: true, Named: true},
		},

		ParseActions: []treesitter.ParseActionEntry{
			{},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 2}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 3}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 2, ChildCount: 2, ProductionID: 0}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 4}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionAccept}}},
		},

		ParseTable: [][]uint16{
			//  EOF  x   S
			0: {0, 0, 0},
			1: {0, 1, 4},
			2: {0, 2, 0},
			3: {3, 0, 0},
			4: {5, 0, 0},
		},

		LexModes: []treesitter.LexMode{{}, {}, {}, {}, {}},

		LexStates: xLexStates(),
	}
}

// Paren builds a grammar whose missing-token recovery is reachable: a
// dropped ")" can be synthesized because the state after it has a
// reduction on the following ";".
//
//	stmt -> expr ";"
//	expr -> NAME | "(" expr ")"
//
// Symbols: 0=EOF, 1=NAME, 2="(", 3=")", 4=";", 5=expr, 6=stmt
//
// States:
//
//	1 (start):        NAME -> shift 2, "(" -> shift 3, expr -> goto 4, stmt -> goto 5
//	2 (NAME):         reduce expr->NAME on ")" ";"
//	3 ("("):          NAME -> shift 2, "(" -> shift 3, expr -> goto 6
//	4 (expr):         ";" -> shift 7
//	5 (stmt):         EOF -> accept
//	6 ("(" expr):     ")" -> shift 8
//	7 (expr ";"):     EOF -> reduce stmt->expr ";"
//	8 ("(" expr ")"): reduce expr->"(" expr ")" on ")" ";"
func Paren() *treesitter.Language {
	return &treesitter.Language{
		Name:              "paren",
		SymbolCount:       7,
		TokenCount:        5,
		StateCount:        9,
		ProductionIDCount: 3,

		SymbolNames: []string{"end", "NAME", "(", ")", ";", "expr", "stmt"},
		SymbolMetadata: []treesitter.SymbolMetadata{
			{},
			{Visible: true, Named: true},
			{Visible: true},
			{Visible: true},
			{Visible: true},
			{Visible: true, Named: true},
			{Visible: true, Named: true},
		},

		ParseActions: []treesitter.ParseActionEntry{
			{},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 2}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 3}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 4}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 5}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 5, ChildCount: 1, ProductionID: 0}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 6}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 7}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 8}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 6, ChildCount: 2, ProductionID: 1}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 5, ChildCount: 3, ProductionID: 2}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionAccept}}},
		},

		ParseTable: [][]uint16{
			//  EOF NAME  (   )   ;  expr stmt
			0: {0, 0, 0, 0, 0, 0, 0},
			1: {0, 1, 2, 0, 0, 3, 4},
			2: {0, 0, 0, 5, 5, 0, 0},
			3: {0, 1, 2, 0, 0, 6, 0},
			4: {0, 0, 0, 0, 7, 0, 0},
			5: {11, 0, 0, 0, 0, 0, 0},
			6: {0, 0, 0, 8, 0, 0, 0},
			7: {9, 0, 0, 0, 0, 0, 0},
			8: {0, 0, 0, 10, 10, 0, 0},
		},

		LexModes: []treesitter.LexMode{{}, {}, {}, {}, {}, {}, {}, {}, {}},

		// Lexer DFA: names, punctuation, whitespace.
		LexStates: []treesitter.LexState{
			{
				Transitions: []treesitter.LexTransition{
					{Lo: 'a', Hi: 'z', NextState: 1},
					{Lo: '(', Hi: '(', NextState: 2},
					{Lo: ')', Hi: ')', NextState: 3},
					{Lo: ';', Hi: ';', NextState: 4},
					{Lo: ' ', Hi: ' ', NextState: 5},
					{Lo: '\t', Hi: '\t', NextState: 5},
					{Lo: '\n', Hi: '\n', NextState: 5},
				},
				Default:  -1,
				EOFState: -1,
			},
			{
				AcceptToken: 1,
				Transitions: []treesitter.LexTransition{{Lo: 'a', Hi: 'z', NextState: 1}},
				Default:     -1,
				EOFState:    -1,
			},
			{AcceptToken: 2, Default: -1, EOFState: -1},
			{AcceptToken: 3, Default: -1, EOFState: -1},
			{AcceptToken: 4, Default: -1, EOFState: -1},
			{
				Skip: true,
				Transitions: []treesitter.LexTransition{
					{Lo: ' ', Hi: ' ', NextState: 5},
					{Lo: '\t', Hi: '\t', NextState: 5},
					{Lo: '\n', Hi: '\n', NextState: 5},
				},
				Default:  -1,
				EOFState: -1,
			},
		},
	}
}
