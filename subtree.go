package treesitter

import (
	"bytes"
	"sync/atomic"
)

// Error-cost coefficients. Costs rank competing stack versions and
// finished trees; only their relative magnitudes matter, but they must be
// identical everywhere in the driver.
const (
	errorCostPerSkippedChar = 1
	errorCostPerSkippedLine = 2
	errorCostPerSkippedTree = 100
	errorCostPerMissingTree = 110
	errorCostPerRecovery    = 500

	maxCostDifference = 18 * errorCostPerSkippedTree
)

// Subtree is a reference-counted node in the concrete syntax tree.
// Subtrees are immutable while shared; mutation goes through makeMut,
// which clones when the reference count is greater than one.
type Subtree struct {
	refCount atomic.Int32

	symbol     Symbol
	parseState StateID

	// padding is the leading whitespace/extras distance before the node's
	// content; size is the content distance. The node's total span is
	// padding + size.
	padding        Length
	size           Length
	lookaheadBytes uint32

	errorCost         uint32
	nodeCount         uint32
	repeatDepth       uint32
	dynamicPrecedence int32
	productionID      uint16

	firstLeafSymbol     Symbol
	firstLeafParseState StateID

	extra        bool
	missing      bool
	keyword      bool
	fragileLeft  bool
	fragileRight bool
	hasChanges   bool

	hasExternalTokens             bool
	hasExternalScannerStateChange bool

	// firstErrorChar is the first unrecognized codepoint, for error
	// leaves produced by the lexer's skip-one-character recovery.
	firstErrorChar rune

	children      []*Subtree
	externalState []byte
}

func (t *Subtree) retain() *Subtree {
	t.refCount.Add(1)
	return t
}

func (t *Subtree) totalLength() Length { return lengthAdd(t.padding, t.size) }
func (t *Subtree) totalBytes() uint32  { return t.padding.Bytes + t.size.Bytes }

func (t *Subtree) childCount() int { return len(t.children) }

func (t *Subtree) isEOF() bool   { return t.symbol == symbolEnd && len(t.children) == 0 }
func (t *Subtree) isError() bool { return t.symbol == errorSymbol }

func (t *Subtree) isFragile() bool { return t.fragileLeft || t.fragileRight }

func (t *Subtree) leafSymbol() Symbol {
	if t == nil {
		return symbolEnd
	}
	return t.firstLeafSymbol
}

func (t *Subtree) leafParseState() StateID { return t.firstLeafParseState }

// lastExternalToken returns the rightmost descendant leaf carrying
// external scanner state, or nil.
func (t *Subtree) lastExternalToken() *Subtree {
	for t != nil && t.hasExternalTokens {
		if len(t.children) == 0 {
			return t
		}
		for i := len(t.children) - 1; i >= 0; i-- {
			if t.children[i].hasExternalTokens {
				t = t.children[i]
				break
			}
		}
	}
	return nil
}

// externalScannerStateEq compares the serialized external-scanner states
// of two tokens. Nil subtrees compare as the empty state.
func externalScannerStateEq(a, b *Subtree) bool {
	var sa, sb []byte
	if a != nil {
		sa = a.externalState
	}
	if b != nil {
		sb = b.externalState
	}
	return bytes.Equal(sa, sb)
}

func newLeaf(pool *SubtreePool, sym Symbol, padding, size Length, lookaheadBytes uint32, parseState StateID, hasExternalToken, isKeyword bool) *Subtree {
	t := pool.get()
	t.symbol = sym
	t.parseState = parseState
	t.padding = padding
	t.size = size
	t.lookaheadBytes = lookaheadBytes
	t.nodeCount = 1
	t.keyword = isKeyword
	t.hasExternalTokens = hasExternalToken
	t.firstLeafSymbol = sym
	t.firstLeafParseState = parseState
	// End-of-input tokens ride along as extras so the real root stays
	// the topmost non-extra subtree when the stack is unwound.
	if sym == symbolEnd {
		t.extra = true
	}
	return t
}

// newErrorLeaf builds a leaf spanning unrecognized bytes skipped by the
// lexer.
func newErrorLeaf(pool *SubtreePool, firstErrorChar rune, padding, size Length, lookaheadBytes uint32, parseState StateID) *Subtree {
	t := newLeaf(pool, errorSymbol, padding, size, lookaheadBytes, parseState, false, false)
	t.fragileLeft = true
	t.fragileRight = true
	t.firstErrorChar = firstErrorChar
	t.errorCost = errorCostPerRecovery +
		errorCostPerSkippedChar*size.Bytes +
		errorCostPerSkippedLine*size.Extent.Row
	return t
}

// newMissingLeaf builds a zero-width token synthesized by error recovery.
func newMissingLeaf(pool *SubtreePool, sym Symbol, padding Length, lookaheadBytes uint32) *Subtree {
	t := newLeaf(pool, sym, padding, lengthZero(), lookaheadBytes, errorState, false, false)
	t.missing = true
	t.errorCost = errorCostPerMissingTree
	return t
}

// newNode builds an interior node over children, which are adopted
// without retaining (ownership transfers from the caller).
func newNode(pool *SubtreePool, sym Symbol, children []*Subtree, productionID uint16, lang *Language) *Subtree {
	t := pool.get()
	t.symbol = sym
	t.productionID = productionID
	t.children = children
	t.summarizeChildren(lang)
	return t
}

// newErrorNode wraps skipped subtrees in an error node. Recovery error
// nodes are marked extra so they do not occupy child slots in later
// reductions.
func newErrorNode(pool *SubtreePool, children []*Subtree, extra bool, lang *Language) *Subtree {
	t := newNode(pool, errorSymbol, children, 0, lang)
	t.extra = extra
	return t
}

// summarizeChildren recomputes a node's aggregate fields from its
// children. It must be called again after any in-place child mutation.
func (t *Subtree) summarizeChildren(lang *Language) {
	t.nodeCount = 1
	t.errorCost = 0
	t.repeatDepth = 0
	t.dynamicPrecedence = 0
	t.hasChanges = false
	t.hasExternalTokens = false
	t.hasExternalScannerStateChange = false
	t.padding = lengthZero()
	t.size = lengthZero()
	t.fragileLeft = false
	t.fragileRight = false
	t.firstLeafSymbol = t.symbol
	t.firstLeafParseState = t.parseState

	for i, child := range t.children {
		if i == 0 {
			t.padding = child.padding
			t.size = child.size
			t.firstLeafSymbol = child.firstLeafSymbol
			t.firstLeafParseState = child.firstLeafParseState
			t.fragileLeft = child.fragileLeft
		} else {
			t.size = lengthAdd(t.size, child.totalLength())
		}
		t.errorCost += child.errorCost
		t.nodeCount += child.nodeCount
		t.dynamicPrecedence += child.dynamicPrecedence
		if child.hasChanges {
			t.hasChanges = true
		}
		if child.hasExternalTokens {
			t.hasExternalTokens = true
		}
		if child.hasExternalScannerStateChange {
			t.hasExternalScannerStateChange = true
		}
	}
	// A node's lookahead extends as far past its end as any child's
	// lexer peeked, so edits in that region invalidate it.
	t.lookaheadBytes = 0
	offset := uint32(0)
	for _, child := range t.children {
		offset += child.totalBytes()
		if peek := offset + child.lookaheadBytes; peek > t.totalBytes()+t.lookaheadBytes {
			t.lookaheadBytes = peek - t.totalBytes()
		}
	}

	if n := len(t.children); n > 0 {
		t.fragileRight = t.children[n-1].fragileRight
		// Only hidden repeat chains participate in the balance pass;
		// rotating visible recursion would change the visible tree.
		if t.children[0].symbol == t.symbol && lang != nil && !lang.IsVisible(t.symbol) {
			t.repeatDepth = t.children[0].repeatDepth + 1
		}
	}

	if t.symbol == errorSymbol || t.symbol == errorRepeatSymbol {
		t.errorCost += errorCostPerRecovery +
			errorCostPerSkippedChar*t.size.Bytes +
			errorCostPerSkippedLine*t.size.Extent.Row
		for _, child := range t.children {
			if !child.extra {
				t.errorCost += errorCostPerSkippedTree
			}
		}
		t.fragileLeft = true
		t.fragileRight = true
		t.parseState = stateNone
	}
}

// makeMut returns a subtree safe to mutate: t itself when uniquely owned,
// otherwise a clone whose children are retained.
func makeMut(pool *SubtreePool, t *Subtree) *Subtree {
	if t.refCount.Load() == 1 {
		return t
	}
	clone := pool.get()
	cloneInto(clone, t)
	for _, child := range clone.children {
		child.retain()
	}
	pool.release(t)
	return clone
}

func cloneInto(dst, src *Subtree) {
	dst.symbol = src.symbol
	dst.parseState = src.parseState
	dst.padding = src.padding
	dst.size = src.size
	dst.lookaheadBytes = src.lookaheadBytes
	dst.errorCost = src.errorCost
	dst.nodeCount = src.nodeCount
	dst.repeatDepth = src.repeatDepth
	dst.dynamicPrecedence = src.dynamicPrecedence
	dst.productionID = src.productionID
	dst.firstLeafSymbol = src.firstLeafSymbol
	dst.firstLeafParseState = src.firstLeafParseState
	dst.extra = src.extra
	dst.missing = src.missing
	dst.keyword = src.keyword
	dst.fragileLeft = src.fragileLeft
	dst.fragileRight = src.fragileRight
	dst.hasChanges = src.hasChanges
	dst.hasExternalTokens = src.hasExternalTokens
	dst.hasExternalScannerStateChange = src.hasExternalScannerStateChange
	dst.firstErrorChar = src.firstErrorChar
	dst.children = append(dst.children[:0], src.children...)
	dst.externalState = append(dst.externalState[:0], src.externalState...)
}

func (t *Subtree) setExtra(extra bool) { t.extra = extra }

func (t *Subtree) setSymbol(sym Symbol) {
	t.symbol = sym
	if len(t.children) == 0 {
		t.firstLeafSymbol = sym
	}
}

// compareSubtrees is the deterministic structural tie-break: lexicographic
// over (symbol, child count, recursive child comparison).
func compareSubtrees(a, b *Subtree) int {
	if a.symbol < b.symbol {
		return -1
	}
	if a.symbol > b.symbol {
		return 1
	}
	if len(a.children) < len(b.children) {
		return -1
	}
	if len(a.children) > len(b.children) {
		return 1
	}
	for i := range a.children {
		if c := compareSubtrees(a.children[i], b.children[i]); c != 0 {
			return c
		}
	}
	return 0
}

// removeTrailingExtras strips extra subtrees off the end of children,
// returning the shortened slice and the removed extras in stack order.
func removeTrailingExtras(children []*Subtree, extras []*Subtree) ([]*Subtree, []*Subtree) {
	n := len(children)
	for n > 0 && children[n-1].extra {
		n--
	}
	for i := n; i < len(children); i++ {
		extras = append(extras, children[i])
	}
	return children[:n], extras
}
