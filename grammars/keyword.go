package grammars

import treesitter "github.com/SINHASantos/tree-sitter"

// Keyword builds a grammar exercising keyword-capture lexing: the main
// lexer only knows NAME (the capture token), and a separate keyword
// lexer recognizes "if". Where "if" has no actions, the capture gate
// keeps the token as a plain NAME.
//
//	stmt -> NAME | "if" NAME
//
// Symbols: 0=EOF, 1=NAME (keyword capture), 2="if", 3=stmt
//
// States:
//
//	1 (start):     NAME -> shift 2, "if" -> shift 3, stmt -> goto 5
//	2 (NAME):      EOF -> reduce stmt->NAME
//	3 ("if"):      NAME -> shift 4
//	4 ("if" NAME): EOF -> reduce stmt->"if" NAME
//	5 (stmt):      EOF -> accept
func Keyword() *treesitter.Language {
	return &treesitter.Language{
		Name:              "keyword",
		SymbolCount:       4,
		TokenCount:        3,
		StateCount:        6,
		ProductionIDCount: 2,

		SymbolNames: []string{"end", "NAME", "if", "stmt"},
		SymbolMetadata: []treesitter.SymbolMetadata{
			{},
			{Visible: true, Named: true},
			{Visible: true},
			{Visible: true, Named: true},
		},

		KeywordCaptureToken: 1,

		ParseActions: []treesitter.ParseActionEntry{
			{},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 2}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 3}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 5}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 3, ChildCount: 1, ProductionID: 0}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 4}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 3, ChildCount: 2, ProductionID: 1}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionAccept}}},
		},

		ParseTable: [][]uint16{
			//  EOF NAME  if  stmt
			0: {0, 0, 0, 0},
			1: {0, 1, 2, 3},
			2: {4, 0, 0, 0},
			3: {0, 5, 0, 0},
			4: {6, 0, 0, 0},
			5: {7, 0, 0, 0},
		},

		LexModes: []treesitter.LexMode{{}, {}, {}, {}, {}, {}},

		// Main DFA: identifiers and whitespace only; "if" is indistinct
		// from any other NAME here.
		LexStates: []treesitter.LexState{
			{
				Transitions: []treesitter.LexTransition{
					{Lo: 'a', Hi: 'z', NextState: 1},
					{Lo: ' ', Hi: ' ', NextState: 2},
					{Lo: '\n', Hi: '\n', NextState: 2},
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
			{
				Skip: true,
				Transitions: []treesitter.LexTransition{
					{Lo: ' ', Hi: ' ', NextState: 2},
					{Lo: '\n', Hi: '\n', NextState: 2},
				},
				Default:  -1,
				EOFState: -1,
			},
		},

		// Keyword DFA: exactly "if".
		KeywordLexStates: []treesitter.LexState{
			{
				Transitions: []treesitter.LexTransition{{Lo: 'i', Hi: 'i', NextState: 1}},
				Default:     -1,
				EOFState:    -1,
			},
			{
				Transitions: []treesitter.LexTransition{{Lo: 'f', Hi: 'f', NextState: 2}},
				Default:     -1,
				EOFState:    -1,
			},
			{AcceptToken: 2, Default: -1, EOFState: -1},
		},
	}
}
