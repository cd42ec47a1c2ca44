package grammars

import treesitter "github.com/SINHASantos/tree-sitter"

// Indent builds an indentation-sensitive grammar backed by the external
// VM scanner. Indentation is one level deep, two spaces, which is enough
// to exercise the external-token plumbing: serialized scanner state,
// the empty-token guard, and the zero-width DEDENT at end of input.
//
//	doc  -> stmt | doc stmt
//	stmt -> NAME NEWLINE | INDENT doc DEDENT
//
// Symbols: 0=EOF, 1=NAME, 2=NEWLINE, 3=INDENT (external), 4=DEDENT
// (external), 5=stmt, 6=doc
//
// States:
//
//	1 (start):            NAME -> shift 2, INDENT -> shift 4, stmt -> goto 6, doc -> goto 7
//	2 (NAME):             NEWLINE -> shift 3
//	3 (NAME NEWLINE):     reduce stmt->NAME NEWLINE
//	4 (INDENT):           NAME -> shift 2, INDENT -> shift 4, stmt -> goto 6, doc -> goto 5
//	5 (INDENT doc):       DEDENT -> shift 8, NAME -> shift 2, INDENT -> shift 4, stmt -> goto 9
//	6 (stmt):             reduce doc->stmt
//	7 (doc):              EOF -> accept, NAME -> shift 2, INDENT -> shift 4, stmt -> goto 9
//	8 (INDENT doc DEDENT): reduce stmt->INDENT doc DEDENT
//	9 (doc stmt):         reduce doc->doc stmt
func Indent() *treesitter.Language {
	return &treesitter.Language{
		Name:               "indent",
		SymbolCount:        7,
		TokenCount:         5,
		ExternalTokenCount: 2,
		StateCount:         10,
		ProductionIDCount:  4,

		SymbolNames: []string{"end", "name", "newline", "indent", "dedent", "stmt", "doc"},
		SymbolMetadata: []treesitter.SymbolMetadata{
			{},
			{Visible: true, Named: true},
			{Visible: true},
			{Visible: true, Named: true},
			{Visible: true, Named: true},
			{Visible: true, Named: true},
			{Visible: true, Named: true},
		},

		ParseActions: []treesitter.ParseActionEntry{
			{},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 2}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 4}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 6}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 7}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 3}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 5, ChildCount: 2, ProductionID: 0}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 5}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 8}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 9}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 6, ChildCount: 1, ProductionID: 1}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionAccept}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 5, ChildCount: 3, ProductionID: 2}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 6, ChildCount: 2, ProductionID: 3}}},
		},

		ParseTable: [][]uint16{
			//  EOF NAME NL  IND DED stmt doc
			0: {0, 0, 0, 0, 0, 0, 0},
			1: {0, 1, 0, 2, 0, 3, 4},
			2: {0, 0, 5, 0, 0, 0, 0},
			3: {6, 6, 0, 6, 6, 0, 0},
			4: {0, 1, 0, 2, 0, 3, 7},
			5: {0, 1, 0, 2, 8, 9, 0},
			6: {10, 10, 0, 10, 10, 0, 0},
			7: {11, 1, 0, 2, 0, 9, 0},
			8: {12, 12, 0, 12, 12, 0, 0},
			9: {13, 13, 0, 13, 13, 0, 0},
		},

		// External lex state 1 allows only INDENT; state 2 allows both
		// INDENT and DEDENT. State 2 (expecting NEWLINE) disables the
		// scanner entirely so it never runs mid-line.
		LexModes: []treesitter.LexMode{
			0: {LexState: 0, ExternalLexState: 2},
			1: {LexState: 0, ExternalLexState: 1},
			2: {LexState: 0, ExternalLexState: 0},
			3: {LexState: 0, ExternalLexState: 2},
			4: {LexState: 0, ExternalLexState: 1},
			5: {LexState: 0, ExternalLexState: 2},
			6: {LexState: 0, ExternalLexState: 2},
			7: {LexState: 0, ExternalLexState: 1},
			8: {LexState: 0, ExternalLexState: 2},
			9: {LexState: 0, ExternalLexState: 2},
		},

		// Internal DFA: names, newlines, and mid-line space skipping.
		LexStates: []treesitter.LexState{
			{
				Transitions: []treesitter.LexTransition{
					{Lo: 'a', Hi: 'z', NextState: 1},
					{Lo: '\n', Hi: '\n', NextState: 2},
					{Lo: ' ', Hi: ' ', NextState: 3},
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
			{
				Skip:        true,
				Transitions: []treesitter.LexTransition{{Lo: ' ', Hi: ' ', NextState: 3}},
				Default:     -1,
				EOFState:    -1,
			},
		},

		ExternalScanner:   indentScanner(),
		ExternalSymbolMap: []treesitter.Symbol{3, 4},
		ExternalTokenSets: [][]bool{
			0: {false, false},
			1: {true, false},
			2: {true, true},
		},
	}
}

// indentScanner is a VM program tracking one level of two-space
// indentation in a single state register (0 = top level, 1 = indented).
//
// The INDENT token spans the two spaces; DEDENT tokens are zero-width
// but always flip the scanner state, which is what lets them through the
// parser's empty-external-token guard.
func indentScanner() *treesitter.ExternalVMScanner {
	const (
		localIndent = 0
		localDedent = 1
	)
	return treesitter.MustNewExternalVMScanner(treesitter.ExternalVMProgram{
		Code: []treesitter.ExternalVMInstr{
			// End of input: emit a final DEDENT if still indented.
			0: treesitter.VMIfEOF(6),
			1: treesitter.VMRequireStateEq(1, 5),
			2: treesitter.VMRequireValid(localDedent, 5),
			3: treesitter.VMSetState(0),
			4: treesitter.VMEmit(localDedent),
			5: treesitter.VMFail(),

			// Top level: two leading spaces begin an indented block.
			6:  treesitter.VMRequireStateEq(0, 16),
			7:  treesitter.VMRequireValid(localIndent, 5),
			8:  treesitter.VMIfRuneEq(' ', 5),
			9:  treesitter.VMAdvance(false),
			10: treesitter.VMIfRuneEq(' ', 5),
			11: treesitter.VMAdvance(false),
			12: treesitter.VMMarkEnd(),
			13: treesitter.VMSetState(1),
			14: treesitter.VMEmit(localIndent),
			15: treesitter.VMFail(),

			// Indented: a line that does not start with a space ends the
			// block.
			16: treesitter.VMRequireValid(localDedent, 5),
			17: treesitter.VMIfRuneEq(' ', 19),
			18: treesitter.VMFail(),
			19: treesitter.VMSetState(0),
			20: treesitter.VMEmit(localDedent),
		},
	})
}
