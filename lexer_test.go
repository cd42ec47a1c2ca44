package treesitter

import "testing"

// numberLexStates is a small DFA: numbers, '+', and skipped whitespace.
//
//	0: start
//	1: in number (accept 1)
//	2: saw '+' (accept 2)
//	3: whitespace (skip)
func numberLexStates() []LexState {
	return []LexState{
		{
			Transitions: []LexTransition{
				{Lo: '0', Hi: '9', NextState: 1},
				{Lo: '+', Hi: '+', NextState: 2},
				{Lo: ' ', Hi: ' ', NextState: 3},
				{Lo: '\n', Hi: '\n', NextState: 3},
			},
			Default:  -1,
			EOFState: -1,
		},
		{
			AcceptToken: 1,
			Transitions: []LexTransition{{Lo: '0', Hi: '9', NextState: 1}},
			Default:     -1,
			EOFState:    -1,
		},
		{AcceptToken: 2, Default: -1, EOFState: -1},
		{
			Skip: true,
			Transitions: []LexTransition{
				{Lo: ' ', Hi: ' ', NextState: 3},
				{Lo: '\n', Hi: '\n', NextState: 3},
			},
			Default:  -1,
			EOFState: -1,
		},
	}
}

func TestRunDFASkipsWhitespaceIntoPadding(t *testing.T) {
	l := newLexer()
	l.setInput(StringInput([]byte("  12+3")))

	l.start()
	if !l.runDFA(numberLexStates(), 0) {
		t.Fatal("expected a token")
	}
	if l.resultSymbol != 1 {
		t.Errorf("symbol = %d, want 1", l.resultSymbol)
	}
	if l.tokenStart.Bytes != 2 || l.tokenEnd.Bytes != 4 {
		t.Errorf("token span = [%d,%d), want [2,4)", l.tokenStart.Bytes, l.tokenEnd.Bytes)
	}

	// The lexer peeked at '+' to confirm the longest match.
	if end := l.finish(); end != 5 {
		t.Errorf("lookahead end byte = %d, want 5", end)
	}
}

func TestRunDFAEmitsEndSymbolAtEOF(t *testing.T) {
	l := newLexer()
	l.setInput(StringInput([]byte("   ")))

	l.start()
	if !l.runDFA(numberLexStates(), 0) {
		t.Fatal("expected the end token")
	}
	if l.resultSymbol != symbolEnd {
		t.Errorf("symbol = %d, want end symbol", l.resultSymbol)
	}
	if l.tokenStart.Bytes != 3 || l.tokenEnd.Bytes != 3 {
		t.Errorf("token span = [%d,%d), want [3,3)", l.tokenStart.Bytes, l.tokenEnd.Bytes)
	}
}

func TestRunDFAFailsOnUnrecognizedCharacter(t *testing.T) {
	l := newLexer()
	l.setInput(StringInput([]byte("@")))

	l.start()
	if l.runDFA(numberLexStates(), 0) {
		t.Fatal("expected no token")
	}
	if l.current.Bytes != 0 {
		t.Errorf("position after failed lex = %d, want 0", l.current.Bytes)
	}
	if l.lookahead != '@' {
		t.Errorf("lookahead = %q, want '@'", l.lookahead)
	}
}

func TestAdvanceTracksRowsAndColumns(t *testing.T) {
	l := newLexer()
	l.setInput(StringInput([]byte("a\nbc")))

	l.Advance(false)
	if l.current.Extent != (Point{Row: 0, Column: 1}) {
		t.Errorf("after 'a': %+v", l.current.Extent)
	}
	l.Advance(false)
	if l.current.Extent != (Point{Row: 1, Column: 0}) {
		t.Errorf("after newline: %+v", l.current.Extent)
	}
	l.Advance(false)
	if got := l.Column(); got != 1 {
		t.Errorf("column = %d, want 1", got)
	}
	if !l.didGetColumn {
		t.Error("expected didGetColumn to be set")
	}
}

func TestResetSnapsIntoIncludedRange(t *testing.T) {
	l := newLexer()
	l.setInput(StringInput([]byte("abcdef")))
	if !l.setIncludedRanges([]Range{{StartByte: 2, EndByte: 4}}) {
		t.Fatal("setIncludedRanges failed")
	}

	l.reset(lengthZero())
	if l.current.Bytes != 2 {
		t.Errorf("position = %d, want 2 (snapped to range start)", l.current.Bytes)
	}
	if l.Lookahead() != 'c' {
		t.Errorf("lookahead = %q, want 'c'", l.Lookahead())
	}

	// Advancing to the range end exhausts the input.
	l.Advance(false)
	l.Advance(false)
	if !l.AtEOF() {
		t.Error("expected EOF at included-range end")
	}
}

func TestSetIncludedRangesRejectsOverlap(t *testing.T) {
	l := newLexer()
	if l.setIncludedRanges([]Range{
		{StartByte: 0, EndByte: 4},
		{StartByte: 2, EndByte: 6},
	}) {
		t.Fatal("expected overlapping ranges to be rejected")
	}
}

func TestMarkEndRewindsTokenEnd(t *testing.T) {
	l := newLexer()
	l.setInput(StringInput([]byte("abc")))

	l.start()
	l.Advance(false)
	l.MarkEnd()
	l.Advance(false)
	l.SetResultSymbol(7)
	l.finish()

	if l.tokenEnd.Bytes != 1 {
		t.Errorf("token end = %d, want 1 (marked)", l.tokenEnd.Bytes)
	}
	if got := l.finish(); got != 3 {
		t.Errorf("lookahead end = %d, want 3", got)
	}
}
