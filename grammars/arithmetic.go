// Package grammars provides hand-built Language fixtures for the
// treesitter runtime. Real grammars are produced by a grammar compiler;
// these small languages exist so the parser, the CLI, and the tests have
// complete tables to run against without one.
//
// Table conventions: state 0 is reserved for error recovery and state 1
// is the start state. Parse-table cells index into ParseActions; cell 0
// is the shared no-action entry. Goto entries for nonterminals are
// stored as a single shift action.
package grammars

import treesitter "github.com/SINHASantos/tree-sitter"

// Arithmetic builds an LR grammar for left-recursive addition, with
// line comments as extra tokens:
//
//	expression -> NUMBER
//	expression -> expression "+" NUMBER
//	extras: COMMENT ("#" to end of line)
//
// Symbols: 0=EOF, 1=NUMBER, 2="+", 3=COMMENT, 4=expression
//
// States:
//
//	1 (start):      NUMBER -> shift 2, expression -> goto 3
//	2 (NUMBER):     reduce expression->NUMBER (1 child)
//	3 (expression): "+" -> shift 4, EOF -> accept
//	4 (expr "+"):   NUMBER -> shift 5
//	5 (expr "+" N): reduce expression->expression "+" NUMBER (3 children)
//
// COMMENT is a shift-extra in every state.
func Arithmetic() *treesitter.Language {
	return &treesitter.Language{
		Name:              "arithmetic",
		SymbolCount:       5,
		TokenCount:        4,
		StateCount:        6,
		ProductionIDCount: 2,

		SymbolNames: []string{"end", "NUMBER", "+", "COMMENT", "expression"},
		SymbolMetadata: []treesitter.SymbolMetadata{
			{},
			{Visible: true, Named: true},
			{Visible: true},
			{Visible: true, Named: true},
			{Visible: true, Named: true},
		},

		ParseActions: []treesitter.ParseActionEntry{
			{},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 2}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 4, ChildCount: 1, ProductionID: 0}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 3}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 4}}},
			{Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionAccept}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, State: 5}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionReduce, Symbol: 4, ChildCount: 3, ProductionID: 1}}},
			{Reusable: true, Actions: []treesitter.ParseAction{{Type: treesitter.ParseActionShift, Extra: true}}},
		},

		ParseTable: [][]uint16{
			//  EOF NUM  +  CMT expr
			0: {0, 0, 0, 8, 0},
			1: {0, 1, 0, 8, 3},
			2: {2, 2, 2, 8, 0},
			3: {5, 0, 4, 8, 0},
			4: {0, 6, 0, 8, 0},
			5: {7, 7, 7, 8, 0},
		},

		LexModes: []treesitter.LexMode{
			{}, {LexState: 0}, {LexState: 0}, {LexState: 0}, {LexState: 0}, {LexState: 0},
		},

		// Lexer DFA:
		//
		//	0: start (digits, '+', '#', whitespace)
		//	1: in number (accept NUMBER)
		//	2: saw '+' (accept "+")
		//	3: whitespace (skip)
		//	4: in comment (accept COMMENT, grows until newline)
		LexStates: []treesitter.LexState{
			{
				Transitions: []treesitter.LexTransition{
					{Lo: '0', Hi: '9', NextState: 1},
					{Lo: '+', Hi: '+', NextState: 2},
					{Lo: '#', Hi: '#', NextState: 4},
					{Lo: ' ', Hi: ' ', NextState: 3},
					{Lo: '\t', Hi: '\t', NextState: 3},
					{Lo: '\n', Hi: '\n', NextState: 3},
				},
				Default:  -1,
				EOFState: -1,
			},
			{
				AcceptToken: 1,
				Transitions: []treesitter.LexTransition{{Lo: '0', Hi: '9', NextState: 1}},
				Default:     -1,
				EOFState:    -1,
			},
			{AcceptToken: 2, Default: -1, EOFState: -1},
			{
				Skip: true,
				Transitions: []treesitter.LexTransition{
					{Lo: ' ', Hi: ' ', NextState: 3},
					{Lo: '\t', Hi: '\t', NextState: 3},
					{Lo: '\n', Hi: '\n', NextState: 3},
				},
				Default:  -1,
				EOFState: -1,
			},
			{
				AcceptToken: 3,
				Transitions: []treesitter.LexTransition{
					{Lo: 0x01, Hi: '\t', NextState: 4},
					{Lo: 0x0B, Hi: 0x10FFFF, NextState: 4},
				},
				Default:  -1,
				EOFState: -1,
			},
		},
	}
}
