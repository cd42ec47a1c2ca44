package treesitter

import "unicode/utf8"

// Point is a row/column position in source text. Columns are measured in
// bytes.
type Point struct {
	Row    uint32
	Column uint32
}

// Length is a distance through source text: a byte count plus the
// row/column extent those bytes span.
type Length struct {
	Bytes  uint32
	Extent Point
}

func lengthZero() Length { return Length{} }

func pointAdd(a, b Point) Point {
	if b.Row > 0 {
		return Point{Row: a.Row + b.Row, Column: b.Column}
	}
	return Point{Row: a.Row, Column: a.Column + b.Column}
}

func pointSub(a, b Point) Point {
	if a.Row > b.Row {
		return Point{Row: a.Row - b.Row, Column: a.Column}
	}
	if a.Column < b.Column {
		return Point{}
	}
	return Point{Row: 0, Column: a.Column - b.Column}
}

func lengthAdd(a, b Length) Length {
	return Length{Bytes: a.Bytes + b.Bytes, Extent: pointAdd(a.Extent, b.Extent)}
}

func lengthSub(a, b Length) Length {
	if a.Bytes < b.Bytes {
		return Length{}
	}
	return Length{Bytes: a.Bytes - b.Bytes, Extent: pointSub(a.Extent, b.Extent)}
}

// maxRangeEnd bounds the default included range when the document length
// is not known up front.
const maxRangeEnd = ^uint32(0)

func defaultIncludedRanges() []Range {
	return []Range{{
		StartByte: 0,
		EndByte:   maxRangeEnd,
		EndPoint:  Point{Row: maxRangeEnd, Column: maxRangeEnd},
	}}
}

// Lexer reads source bytes through a chunked Input callback and exposes
// the scanner-facing API used by both the built-in DFA and external
// scanners: Lookahead, Advance, MarkEnd, SetResultSymbol, Column, AtEOF.
type Lexer struct {
	input          Input
	includedRanges []Range
	rangeIndex     int

	chunk      []byte
	chunkStart uint32
	chunkValid bool

	current    Length
	tokenStart Length
	tokenEnd   Length
	markedEnd  bool

	// scannedEnd tracks the furthest byte examined since the last reset,
	// used to compute a token's lookahead-bytes value.
	scannedEnd uint32

	lookahead     rune
	lookaheadSize uint32

	resultSymbol Symbol
	hasResult    bool
	didGetColumn bool
}

func newLexer() *Lexer {
	return &Lexer{includedRanges: defaultIncludedRanges()}
}

func (l *Lexer) setInput(input Input) {
	l.input = input
	l.chunk = nil
	l.chunkValid = false
	l.reset(lengthZero())
}

// setIncludedRanges restricts lexing to the given byte ranges. Ranges
// must be sorted and non-overlapping; returns false otherwise. An empty
// list restores the default whole-document range.
func (l *Lexer) setIncludedRanges(ranges []Range) bool {
	if len(ranges) == 0 {
		l.includedRanges = defaultIncludedRanges()
		return true
	}
	prev := uint32(0)
	for _, r := range ranges {
		if r.StartByte < prev || r.EndByte < r.StartByte {
			return false
		}
		prev = r.EndByte
	}
	l.includedRanges = append([]Range(nil), ranges...)
	return true
}

// reset moves the lexer to the given position, snapping forward to the
// next included range if the position falls in an excluded gap.
func (l *Lexer) reset(position Length) {
	l.seek(position)
	l.scannedEnd = l.current.Bytes
}

// seek is reset without clearing the scanned-end watermark.
func (l *Lexer) seek(position Length) {
	l.current = position
	l.rangeIndex = len(l.includedRanges) - 1
	for i, r := range l.includedRanges {
		if position.Bytes < r.EndByte {
			l.rangeIndex = i
			if position.Bytes < r.StartByte {
				l.current = Length{Bytes: r.StartByte, Extent: r.StartPoint}
			}
			break
		}
	}
	l.refreshLookahead()
}

// start begins a new token at the current position.
func (l *Lexer) start() {
	l.tokenStart = l.current
	l.tokenEnd = l.current
	l.markedEnd = false
	l.resultSymbol = 0
	l.hasResult = false
	l.didGetColumn = false
}

// finish completes a token, returning the furthest byte the lexer
// examined. If MarkEnd was never called, the token ends at the current
// position.
func (l *Lexer) finish() (lookaheadEndByte uint32) {
	if !l.markedEnd {
		l.tokenEnd = l.current
	}
	end := l.current.Bytes + l.lookaheadSize
	if l.scannedEnd > end {
		end = l.scannedEnd
	}
	return end
}

func (l *Lexer) byteAt(pos uint32) (byte, bool) {
	if !l.chunkValid || pos < l.chunkStart || pos >= l.chunkStart+uint32(len(l.chunk)) {
		if l.input.Read == nil {
			return 0, false
		}
		l.chunk = l.input.Read(pos, l.current.Extent)
		l.chunkStart = pos
		l.chunkValid = true
	}
	if pos-l.chunkStart >= uint32(len(l.chunk)) {
		return 0, false
	}
	return l.chunk[pos-l.chunkStart], true
}

func (l *Lexer) activeRangeEnd() uint32 {
	return l.includedRanges[l.rangeIndex].EndByte
}

func (l *Lexer) refreshLookahead() {
	// Hop over excluded gaps between included ranges.
	for l.current.Bytes >= l.activeRangeEnd() && l.rangeIndex+1 < len(l.includedRanges) {
		l.rangeIndex++
		r := l.includedRanges[l.rangeIndex]
		if l.current.Bytes < r.StartByte {
			l.current = Length{Bytes: r.StartByte, Extent: r.StartPoint}
		}
	}

	if l.current.Bytes >= l.activeRangeEnd() {
		l.lookahead = 0
		l.lookaheadSize = 0
		return
	}

	var buf [4]byte
	n := 0
	for n < 4 {
		b, ok := l.byteAt(l.current.Bytes + uint32(n))
		if !ok {
			break
		}
		buf[n] = b
		n++
		if r, size := utf8.DecodeRune(buf[:n]); r != utf8.RuneError || size > 1 {
			l.lookahead = r
			l.lookaheadSize = uint32(size)
			return
		}
	}
	if n == 0 {
		l.lookahead = 0
		l.lookaheadSize = 0
		return
	}
	l.lookahead = utf8.RuneError
	l.lookaheadSize = 1
}

// Lookahead returns the rune at the current position, or 0 at end of
// input.
func (l *Lexer) Lookahead() rune {
	return l.lookahead
}

// AtEOF reports whether the current position is at the end of the last
// included range or the end of the document.
func (l *Lexer) AtEOF() bool {
	return l.lookaheadSize == 0
}

// Advance consumes one rune. When skip is true the consumed bytes are
// treated as padding: the pending token's start moves past them.
func (l *Lexer) Advance(skip bool) {
	if l.lookaheadSize == 0 {
		return
	}
	if l.lookahead == '\n' {
		l.current.Extent.Row++
		l.current.Extent.Column = 0
	} else {
		l.current.Extent.Column += l.lookaheadSize
	}
	l.current.Bytes += l.lookaheadSize
	if l.current.Bytes > l.scannedEnd {
		l.scannedEnd = l.current.Bytes
	}
	l.refreshLookahead()
	if skip {
		l.tokenStart = l.current
		l.tokenEnd = l.current
	}
}

// MarkEnd marks the current position as the pending token's end.
func (l *Lexer) MarkEnd() {
	l.tokenEnd = l.current
	l.markedEnd = true
}

// SetResultSymbol records the token symbol to emit.
func (l *Lexer) SetResultSymbol(sym Symbol) {
	l.resultSymbol = sym
	l.hasResult = true
}

// Column returns the current column, in bytes from the start of the row.
func (l *Lexer) Column() uint32 {
	l.didGetColumn = true
	return l.current.Extent.Column
}

// runDFA drives a table-driven lexer DFA from the current position,
// following the longest match. Skip-state matches restart the token so
// leading whitespace accrues as padding. Returns true if a token was
// recognized; at end of input it emits the end symbol.
func (l *Lexer) runDFA(states []LexState, startState uint16) bool {
	if int(startState) >= len(states) {
		return false
	}

	for {
		if l.AtEOF() {
			l.tokenStart = l.current
			l.tokenEnd = l.current
			l.markedEnd = true
			l.resultSymbol = symbolEnd
			l.hasResult = true
			return true
		}

		passStart := l.current
		cur := int(startState)
		accepted := false
		acceptedSkip := false
		var acceptEnd Length
		var acceptSym Symbol

		st := &states[cur]
		if st.AcceptToken != 0 || st.Skip {
			accepted = true
			acceptedSkip = st.Skip
			acceptEnd = l.current
			acceptSym = st.AcceptToken
		}

		for {
			next := -1
			if l.AtEOF() {
				next = st.EOFState
			} else {
				r := l.lookahead
				for i := range st.Transitions {
					tr := &st.Transitions[i]
					if r >= tr.Lo && r <= tr.Hi {
						next = tr.NextState
						break
					}
				}
				if next < 0 {
					next = st.Default
				}
			}
			if next < 0 || next >= len(states) {
				break
			}
			if !l.AtEOF() {
				l.Advance(false)
			}
			cur = next
			st = &states[cur]
			if st.AcceptToken != 0 || st.Skip {
				accepted = true
				acceptedSkip = st.Skip
				acceptEnd = l.current
				acceptSym = st.AcceptToken
			}
			if l.AtEOF() && st.EOFState < 0 {
				break
			}
		}

		if !accepted {
			l.seek(passStart)
			return false
		}

		if acceptedSkip {
			if acceptEnd.Bytes == passStart.Bytes {
				// Zero-width skip match: bail out rather than loop.
				l.seek(passStart)
				return false
			}
			l.seek(acceptEnd)
			l.tokenStart = l.current
			l.tokenEnd = l.current
			continue
		}

		l.seek(acceptEnd)
		l.tokenStart = passStart
		l.tokenEnd = acceptEnd
		l.markedEnd = true
		l.resultSymbol = acceptSym
		l.hasResult = true
		return true
	}
}
