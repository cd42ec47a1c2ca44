package treesitter

import (
	"bytes"
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

const (
	maxVersionCount         = 6
	maxVersionCountOverflow = 4
	maxSummaryDepth         = 16

	// opCountPerTimeoutCheck is how many parse operations run between
	// cancellation / timeout / progress checks.
	opCountPerTimeoutCheck = 100
)

// LogType distinguishes parse-loop events from lexer events in log
// output.
type LogType uint8

const (
	LogTypeParse LogType = iota
	LogTypeLex
)

// Logger receives the parser's debug event stream.
type Logger func(logType LogType, message string)

// ParseState is the snapshot passed to a progress callback.
type ParseState struct {
	CurrentByteOffset uint32
	HasError          bool
	Payload           any
}

// ParseOptions customizes a single Parse call. The progress callback
// returns true to cancel parsing.
type ParseOptions struct {
	ProgressCallback func(*ParseState) bool
	Payload          any
}

type tokenCache struct {
	token             *Subtree
	lastExternalToken *Subtree
	byteIndex         uint32
}

// errorStatus summarizes how badly a stack version is doing, for
// comparing versions against each other.
type errorStatus struct {
	cost              uint32
	nodeCount         uint32
	dynamicPrecedence int32
	isInError         bool
}

type errorComparison uint8

const (
	errorComparisonTakeLeft errorComparison = iota
	errorComparisonPreferLeft
	errorComparisonNone
	errorComparisonPreferRight
	errorComparisonTakeRight
)

type reduceAction struct {
	symbol            Symbol
	count             uint8
	dynamicPrecedence int16
	productionID      uint16
}

// Parser is an incremental, error-tolerant GLR parser. It is not safe
// for concurrent use, except that the cancellation flag may be set from
// another goroutine.
type Parser struct {
	lexer    *Lexer
	stack    *parseStack
	pool     *SubtreePool
	language *Language

	finishedTree *Subtree
	tokenCache   tokenCache
	reusable     reusableNode

	externalPayload    any
	hasExternalPayload bool

	logger    Logger
	dotWriter io.Writer

	timeout  time.Duration
	deadline time.Time

	cancellationFlag *atomic.Bool

	acceptCount    int
	operationCount uint32

	oldTree                      *Subtree
	includedRangeDifferences     []Range
	includedRangeDifferenceIndex int

	parseOptions ParseOptions
	parseState   ParseState

	canceledBalancing bool
	hasError          bool

	trailingExtras  []*Subtree
	trailingExtras2 []*Subtree
	reduceActions   []reduceAction
	scratchTree     Subtree

	externalStateBuf [externalScannerStateBufferSize]byte
}

// NewParser creates a parser with no language assigned.
func NewParser() *Parser {
	pool := newSubtreePool(32)
	return &Parser{
		lexer: newLexer(),
		stack: newParseStack(pool),
		pool:  pool,
	}
}

// SetLanguage assigns the grammar to parse with. It returns false if the
// language's table format is incompatible with this runtime.
func (p *Parser) SetLanguage(lang *Language) bool {
	p.Reset()
	p.language = nil
	if lang != nil {
		version := lang.ABIVersion
		if version == 0 {
			version = languageABIVersion
		}
		if version > languageABIVersion || version < minCompatibleLanguage {
			return false
		}
	}
	p.language = lang
	return true
}

// Language returns the parser's current language.
func (p *Parser) Language() *Language { return p.language }

// SetLogger installs a callback receiving parse events.
func (p *Parser) SetLogger(logger Logger) { p.logger = logger }

// PrintDotGraphs directs per-event dot graphs of the stack and trees to
// w. Pass nil to disable.
func (p *Parser) PrintDotGraphs(w io.Writer) { p.dotWriter = w }

// SetTimeout bounds the wall-clock duration of each Parse call. Zero
// disables the deadline.
func (p *Parser) SetTimeout(d time.Duration) { p.timeout = d }

// SetCancellationFlag installs a flag polled during parsing; setting it
// from any goroutine cancels the in-progress parse.
func (p *Parser) SetCancellationFlag(flag *atomic.Bool) { p.cancellationFlag = flag }

// SetIncludedRanges restricts parsing to the given byte ranges of the
// input.
func (p *Parser) SetIncludedRanges(ranges []Range) bool {
	return p.lexer.setIncludedRanges(ranges)
}

// IncludedRanges returns the current included ranges.
func (p *Parser) IncludedRanges() []Range {
	return append([]Range(nil), p.lexer.includedRanges...)
}

// Reset abandons any outstanding parse, releasing its resources.
func (p *Parser) Reset() {
	p.externalScannerDestroy()
	if p.oldTree != nil {
		p.pool.release(p.oldTree)
		p.oldTree = nil
	}
	p.reusable.clear()
	if p.lexer.input.Read != nil {
		p.lexer.reset(lengthZero())
	}
	p.stack.clear()
	p.setCachedToken(0, nil, nil)
	if p.finishedTree != nil {
		p.pool.release(p.finishedTree)
		p.finishedTree = nil
	}
	p.acceptCount = 0
	p.hasError = false
	p.canceledBalancing = false
	p.parseOptions = ParseOptions{}
	p.parseState = ParseState{}
}

func (p *Parser) log(format string, args ...any) {
	if p.logger == nil && p.dotWriter == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if p.logger != nil {
		p.logger(LogTypeParse, msg)
	}
	if p.dotWriter != nil {
		fmt.Fprintf(p.dotWriter, "graph {\nlabel=%q\n}\n\n", msg)
	}
}

func (p *Parser) logStack() {
	if p.dotWriter != nil {
		p.stack.printDotGraph(p.dotWriter, p.language)
	}
}

func (p *Parser) logTree(tree *Subtree) {
	if p.dotWriter != nil && tree != nil {
		printSubtreeDotGraph(p.dotWriter, tree, p.language)
	}
}

func (p *Parser) symName(sym Symbol) string { return p.language.SymbolName(sym) }

// External scanner plumbing.

func (p *Parser) externalScannerCreate() {
	if p.language != nil && p.language.ExternalScanner != nil {
		p.externalPayload = p.language.ExternalScanner.Create()
		p.hasExternalPayload = true
	}
}

func (p *Parser) externalScannerDestroy() {
	if p.hasExternalPayload && p.language != nil && p.language.ExternalScanner != nil {
		p.language.ExternalScanner.Destroy(p.externalPayload)
	}
	p.externalPayload = nil
	p.hasExternalPayload = false
}

func (p *Parser) externalScannerSerialize() int {
	return p.language.ExternalScanner.Serialize(p.externalPayload, p.externalStateBuf[:])
}

func (p *Parser) externalScannerDeserialize(externalToken *Subtree) {
	var data []byte
	if externalToken != nil {
		data = externalToken.externalState
	}
	p.language.ExternalScanner.Deserialize(p.externalPayload, data)
}

// breakdownTopOfStack replaces a reused node on top of a version with
// its children, so the parser can retry the current lookahead against
// finer-grained state.
func (p *Parser) breakdownTopOfStack(version int) bool {
	didBreakDown := false
	pending := false

	for {
		pop := p.stack.popPending(version)
		if len(pop) == 0 {
			break
		}

		didBreakDown = true
		pending = false
		for _, slice := range pop {
			state := p.stack.state(slice.Version)
			parent := slice.Subtrees[0]

			for _, child := range parent.children {
				pending = len(child.children) > 0
				if child.isError() {
					state = errorState
				} else if !child.extra {
					state = p.language.NextState(state, child.symbol)
				}
				child.retain()
				p.stack.push(slice.Version, child, pending, state)
			}

			for _, tree := range slice.Subtrees[1:] {
				p.stack.push(slice.Version, tree, false, state)
			}

			p.pool.release(parent)
			p.log("breakdown_top_of_stack tree:%s", p.symName(parent.symbol))
			p.logStack()
		}

		if !pending {
			break
		}
	}

	return didBreakDown
}

// breakdownLookahead descends into a reused non-leaf lookahead until its
// parse state matches the expected state, replacing the lookahead with
// the cursor's current subtree.
func (p *Parser) breakdownLookahead(lookahead *Subtree, state StateID) *Subtree {
	didDescend := false
	tree := p.reusable.tree()
	for tree != nil && len(tree.children) > 0 && tree.parseState != state {
		p.log("state_mismatch sym:%s", p.symName(tree.symbol))
		p.reusable.descend()
		tree = p.reusable.tree()
		didDescend = true
	}

	if didDescend {
		p.pool.release(lookahead)
		lookahead = tree.retain()
	}
	return lookahead
}

func compareVersionStatus(a, b errorStatus) errorComparison {
	if !a.isInError && b.isInError {
		if a.cost < b.cost {
			return errorComparisonTakeLeft
		}
		return errorComparisonPreferLeft
	}
	if a.isInError && !b.isInError {
		if b.cost < a.cost {
			return errorComparisonTakeRight
		}
		return errorComparisonPreferRight
	}
	if a.cost < b.cost {
		if (b.cost-a.cost)*(1+a.nodeCount) > maxCostDifference {
			return errorComparisonTakeLeft
		}
		return errorComparisonPreferLeft
	}
	if b.cost < a.cost {
		if (a.cost-b.cost)*(1+b.nodeCount) > maxCostDifference {
			return errorComparisonTakeRight
		}
		return errorComparisonPreferRight
	}
	if a.dynamicPrecedence > b.dynamicPrecedence {
		return errorComparisonPreferLeft
	}
	if b.dynamicPrecedence > a.dynamicPrecedence {
		return errorComparisonPreferRight
	}
	return errorComparisonNone
}

func (p *Parser) versionStatus(version int) errorStatus {
	cost := p.stack.errorCost(version)
	isPaused := p.stack.isPaused(version)
	if isPaused {
		cost += errorCostPerSkippedTree
	}
	return errorStatus{
		cost:              cost,
		nodeCount:         p.stack.nodeCountSinceError(version),
		dynamicPrecedence: p.stack.dynamicPrecedence(version),
		isInError:         isPaused || p.stack.state(version) == errorState,
	}
}

func (p *Parser) betterVersionExists(version int, isInError bool, cost uint32) bool {
	if p.finishedTree != nil && p.finishedTree.errorCost <= cost {
		return true
	}

	position := p.stack.position(version)
	status := errorStatus{
		cost:              cost,
		isInError:         isInError,
		dynamicPrecedence: p.stack.dynamicPrecedence(version),
		nodeCount:         p.stack.nodeCountSinceError(version),
	}

	for i, n := 0, p.stack.versionCount(); i < n; i++ {
		if i == version || !p.stack.isActive(i) || p.stack.position(i).Bytes < position.Bytes {
			continue
		}
		switch compareVersionStatus(status, p.versionStatus(i)) {
		case errorComparisonTakeRight:
			return true
		case errorComparisonPreferRight:
			if p.stack.canMerge(i, version) {
				return true
			}
		}
	}
	return false
}

// canReuseFirstLeaf is the subtree-reuse gate: whether a token lexed in
// an earlier parse is a valid lookahead at the current state.
func (p *Parser) canReuseFirstLeaf(state StateID, tree *Subtree, entry TableEntry) bool {
	leafSymbol := tree.leafSymbol()
	leafState := tree.leafParseState()
	currentLexMode := p.language.LexModeForState(state)
	leafLexMode := p.language.LexModeForState(leafState)

	// At the end of a non-terminal extra rule the lexer returns no
	// lookahead so the parser can perform a fixed reduction. Reusing a
	// token here would bypass that path.
	if currentLexMode.LexState == lexStateNone {
		return false
	}

	// A token lexed in a state with the same lookahead set is reusable.
	if len(entry.Actions) > 0 && leafLexMode == currentLexMode &&
		(leafSymbol != p.language.KeywordCaptureToken ||
			(!tree.keyword && tree.parseState == state)) {
		return true
	}

	// Empty tokens are not reusable in states with different lookaheads.
	if tree.size.Bytes == 0 && leafSymbol != symbolEnd {
		return false
	}

	return currentLexMode.ExternalLexState == 0 && entry.Reusable
}

// lex produces the next leaf subtree for a version, driving the external
// scanner and the internal DFA, and synthesizing an error leaf over any
// unrecognizable bytes. A nil result marks the end of a non-terminal
// extra rule.
func (p *Parser) lex(version int, parseState StateID) *Subtree {
	lexMode := p.language.LexModeForState(parseState)
	if lexMode.LexState == lexStateNone {
		p.log("no_lookahead_after_non_terminal_extra")
		return nil
	}

	startPosition := p.stack.position(version)
	externalToken := p.stack.lastExternalToken(version)

	foundExternalToken := false
	errorMode := parseState == errorState
	skippedError := false
	var firstErrorCharacter rune
	errorStartPosition := lengthZero()
	errorEndPosition := lengthZero()
	lookaheadEndByte := uint32(0)
	externalStateLen := 0
	externalStateChanged := false
	p.lexer.reset(startPosition)

	for {
		foundToken := false
		currentPosition := p.lexer.current

		if lexMode.ExternalLexState != 0 && p.language.ExternalScanner != nil {
			p.log(
				"lex_external state:%d, row:%d, column:%d",
				lexMode.ExternalLexState,
				currentPosition.Extent.Row,
				currentPosition.Extent.Column,
			)
			p.lexer.start()
			p.externalScannerDeserialize(externalToken)
			foundToken = p.language.ExternalScanner.Scan(
				p.externalPayload, p.lexer,
				p.language.EnabledExternalTokens(lexMode.ExternalLexState),
			)
			foundToken = foundToken && p.lexer.hasResult
			lookaheadEndByte = p.lexer.finish()

			if foundToken {
				externalStateLen = p.externalScannerSerialize()
				var oldState []byte
				if externalToken != nil {
					oldState = externalToken.externalState
				}
				externalStateChanged = !bytes.Equal(oldState, p.externalStateBuf[:externalStateLen])

				// Guard against infinite loops caused by empty external
				// tokens: reject them in error mode, before the stack has
				// advanced past an error, or when they map to an extra —
				// unless the scanner's state changed.
				if p.lexer.tokenEnd.Bytes <= currentPosition.Bytes && !externalStateChanged {
					symbol := p.language.externalSymbol(p.lexer.resultSymbol)
					nextParseState := p.language.NextState(parseState, symbol)
					tokenIsExtra := nextParseState == parseState
					if errorMode || !p.stack.hasAdvancedSinceError(version) || tokenIsExtra {
						p.log("ignore_empty_external_token symbol:%s", p.symName(symbol))
						foundToken = false
					}
				}
			}

			if foundToken {
				foundExternalToken = true
				break
			}

			p.lexer.seek(currentPosition)
		}

		p.log(
			"lex_internal state:%d, row:%d, column:%d",
			lexMode.LexState,
			currentPosition.Extent.Row,
			currentPosition.Extent.Column,
		)
		p.lexer.start()
		foundToken = p.lexer.runDFA(p.language.LexStates, lexMode.LexState)
		lookaheadEndByte = p.lexer.finish()
		if foundToken {
			break
		}

		if !errorMode {
			errorMode = true
			lexMode = p.language.LexModeForState(errorState)
			p.lexer.reset(startPosition)
			continue
		}

		if !skippedError {
			p.log("skip_unrecognized_character")
			skippedError = true
			errorStartPosition = p.lexer.current
			errorEndPosition = p.lexer.current
			firstErrorCharacter = p.lexer.lookahead
		}

		if p.lexer.current.Bytes == errorEndPosition.Bytes {
			if p.lexer.AtEOF() {
				break
			}
			p.lexer.Advance(false)
		}
		errorEndPosition = p.lexer.current
	}

	var result *Subtree
	if skippedError {
		padding := lengthSub(errorStartPosition, startPosition)
		size := lengthSub(errorEndPosition, errorStartPosition)
		lookaheadBytes := lookaheadEndByte - errorEndPosition.Bytes
		result = newErrorLeaf(p.pool, firstErrorCharacter, padding, size, lookaheadBytes, parseState)
	} else {
		isKeyword := false
		symbol := p.lexer.resultSymbol
		padding := lengthSub(p.lexer.tokenStart, startPosition)
		size := lengthSub(p.lexer.tokenEnd, p.lexer.tokenStart)
		lookaheadBytes := lookaheadEndByte - p.lexer.tokenEnd.Bytes

		if foundExternalToken {
			symbol = p.language.externalSymbol(symbol)
		} else if symbol == p.language.KeywordCaptureToken && symbol != 0 {
			endByte := p.lexer.tokenEnd.Bytes
			tokenStart := p.lexer.tokenStart
			p.lexer.reset(tokenStart)
			p.lexer.start()

			isKeyword = p.lexer.runDFA(p.language.KeywordLexStates, 0)
			if isKeyword && p.lexer.resultSymbol == symbolEnd {
				isKeyword = false
			}

			if isKeyword &&
				p.lexer.tokenEnd.Bytes == endByte &&
				(p.language.HasActions(parseState, p.lexer.resultSymbol) ||
					p.language.IsReservedWord(parseState, p.lexer.resultSymbol)) {
				symbol = p.lexer.resultSymbol
			}
		}

		result = newLeaf(p.pool, symbol, padding, size, lookaheadBytes, parseState, foundExternalToken, isKeyword)

		if foundExternalToken {
			result.externalState = append(result.externalState[:0], p.externalStateBuf[:externalStateLen]...)
			result.hasExternalScannerStateChange = externalStateChanged
		}
	}

	p.log("lexed_lookahead sym:%s, size:%d", p.symName(result.symbol), result.totalBytes())
	return result
}

func (p *Parser) getCachedToken(state StateID, position uint32, lastExternalToken *Subtree) (*Subtree, TableEntry) {
	cache := &p.tokenCache
	if cache.token != nil && cache.byteIndex == position &&
		externalScannerStateEq(cache.lastExternalToken, lastExternalToken) {
		entry := p.language.TableEntry(state, cache.token.symbol)
		if p.canReuseFirstLeaf(state, cache.token, entry) {
			return cache.token.retain(), entry
		}
	}
	return nil, TableEntry{}
}

func (p *Parser) setCachedToken(byteIndex uint32, lastExternalToken, token *Subtree) {
	cache := &p.tokenCache
	if token != nil {
		token.retain()
	}
	if lastExternalToken != nil {
		lastExternalToken.retain()
	}
	if cache.token != nil {
		p.pool.release(cache.token)
	}
	if cache.lastExternalToken != nil {
		p.pool.release(cache.lastExternalToken)
	}
	cache.token = token
	cache.byteIndex = byteIndex
	cache.lastExternalToken = lastExternalToken
}

func (p *Parser) hasIncludedRangeDifference(start, end uint32) bool {
	return rangesIntersect(p.includedRangeDifferences, p.includedRangeDifferenceIndex, start, end)
}

// reuseNode walks the old tree looking for a subtree that can serve as
// the next lookahead at the current position and state.
func (p *Parser) reuseNode(version int, state *StateID, position uint32, lastExternalToken *Subtree) (*Subtree, TableEntry) {
	for {
		result := p.reusable.tree()
		if result == nil {
			break
		}
		byteOffset := p.reusable.byteOffset()
		endByteOffset := byteOffset + result.totalBytes()

		// Do not reuse an EOF node if the included ranges changed later
		// in the file.
		if result.isEOF() {
			endByteOffset = maxRangeEnd
		}

		if byteOffset > position {
			p.log("before_reusable_node symbol:%s", p.symName(result.symbol))
			break
		}

		if byteOffset < position {
			p.log("past_reusable_node symbol:%s", p.symName(result.symbol))
			if endByteOffset <= position || !p.reusable.descend() {
				p.reusable.advance()
			}
			continue
		}

		if !externalScannerStateEq(p.reusable.lastExternalToken, lastExternalToken) {
			p.log("reusable_node_has_different_external_scanner_state symbol:%s", p.symName(result.symbol))
			p.reusable.advance()
			continue
		}

		var reason string
		switch {
		case result.hasChanges:
			reason = "has_changes"
		case result.isError():
			reason = "is_error"
		case result.missing:
			reason = "is_missing"
		case result.isFragile():
			reason = "is_fragile"
		case p.hasIncludedRangeDifference(byteOffset, endByteOffset):
			reason = "contains_different_included_range"
		}

		if reason != "" {
			p.log("cant_reuse_node_%s tree:%s", reason, p.symName(result.symbol))
			if !p.reusable.descend() {
				p.reusable.advance()
				p.breakdownTopOfStack(version)
				*state = p.stack.state(version)
			}
			continue
		}

		leafSymbol := result.leafSymbol()
		entry := p.language.TableEntry(*state, leafSymbol)
		if !p.canReuseFirstLeaf(*state, result, entry) {
			p.log(
				"cant_reuse_node symbol:%s, first_leaf_symbol:%s",
				p.symName(result.symbol), p.symName(leafSymbol),
			)
			p.reusable.advancePastLeaf()
			break
		}

		p.log("reuse_node symbol:%s", p.symName(result.symbol))
		return result.retain(), entry
	}

	return nil, TableEntry{}
}

// selectTree decides whether right should replace left, based on error
// cost, then dynamic precedence, then a deterministic structural
// comparison.
func (p *Parser) selectTree(left, right *Subtree) bool {
	if left == nil {
		return true
	}
	if right == nil {
		return false
	}

	if right.errorCost < left.errorCost {
		p.log("select_smaller_error symbol:%s, over_symbol:%s", p.symName(right.symbol), p.symName(left.symbol))
		return true
	}
	if left.errorCost < right.errorCost {
		p.log("select_smaller_error symbol:%s, over_symbol:%s", p.symName(left.symbol), p.symName(right.symbol))
		return false
	}

	if right.dynamicPrecedence > left.dynamicPrecedence {
		p.log("select_higher_precedence symbol:%s, prec:%d, over_symbol:%s, other_prec:%d",
			p.symName(right.symbol), right.dynamicPrecedence, p.symName(left.symbol), left.dynamicPrecedence)
		return true
	}
	if left.dynamicPrecedence > right.dynamicPrecedence {
		p.log("select_higher_precedence symbol:%s, prec:%d, over_symbol:%s, other_prec:%d",
			p.symName(left.symbol), left.dynamicPrecedence, p.symName(right.symbol), right.dynamicPrecedence)
		return false
	}

	if left.errorCost > 0 {
		return true
	}

	switch compareSubtrees(left, right) {
	case -1:
		p.log("select_earlier symbol:%s, over_symbol:%s", p.symName(left.symbol), p.symName(right.symbol))
		return false
	case 1:
		p.log("select_earlier symbol:%s, over_symbol:%s", p.symName(right.symbol), p.symName(left.symbol))
		return true
	default:
		p.log("select_existing symbol:%s, over_symbol:%s", p.symName(left.symbol), p.symName(right.symbol))
		return false
	}
}

// selectChildren decides whether an alternative child array should
// replace a freshly built parent's children, using a scratch node so no
// allocation is needed for the comparison.
func (p *Parser) selectChildren(left *Subtree, children []*Subtree) bool {
	scratch := &p.scratchTree
	scratch.symbol = left.symbol
	scratch.productionID = left.productionID
	scratch.children = children
	scratch.summarizeChildren(p.language)
	result := p.selectTree(left, scratch)
	scratch.children = nil
	return result
}

func (p *Parser) shift(version int, state StateID, lookahead *Subtree, extra bool) {
	isLeaf := len(lookahead.children) == 0
	toPush := lookahead
	if extra != lookahead.extra && isLeaf {
		toPush = makeMut(p.pool, lookahead)
		toPush.setExtra(extra)
	}

	p.stack.push(version, toPush, !isLeaf, state)
	if toPush.hasExternalTokens {
		p.stack.setLastExternalToken(version, toPush.lastExternalToken())
	}
}

// reduce pops count subtrees from every path behind a version, wraps
// each path's subtrees in a new parent node, and pushes the parents at
// the goto state. Returns the first new version index, or versionNone.
func (p *Parser) reduce(version int, symbol Symbol, count int, dynamicPrecedence int32, productionID uint16, isFragile, endOfNonTerminalExtra bool) int {
	initialVersionCount := p.stack.versionCount()

	pop := p.stack.popCount(version, count)
	removedVersionCount := 0
	haltedVersionCount := p.stack.haltedVersionCount()
	for i := 0; i < len(pop); i++ {
		slice := pop[i]
		sliceVersion := slice.Version - removedVersionCount

		// Versions are sorted and truncated at the end of the outer
		// parse loop; allow the cap to be exceeded only by a bounded
		// overflow here.
		if sliceVersion > maxVersionCount+maxVersionCountOverflow+haltedVersionCount {
			p.stack.removeVersion(sliceVersion)
			p.pool.releaseAll(slice.Subtrees)
			removedVersionCount++
			for i+1 < len(pop) {
				p.log("aborting reduce with too many versions")
				next := pop[i+1]
				if next.Version != slice.Version {
					break
				}
				p.pool.releaseAll(next.Subtrees)
				i++
			}
			continue
		}

		// Trailing extras are re-pushed after the parent, not included
		// in it.
		children, extras := removeTrailingExtras(slice.Subtrees, p.trailingExtras[:0])
		p.trailingExtras = extras

		parent := newNode(p.pool, symbol, children, productionID, p.language)

		// When the pop collapsed several versions into one, pick the
		// best child array for the parent and discard the others.
		for i+1 < len(pop) {
			next := pop[i+1]
			if next.Version != slice.Version {
				break
			}
			i++

			nextChildren, extras2 := removeTrailingExtras(next.Subtrees, p.trailingExtras2[:0])
			p.trailingExtras2 = extras2

			if p.selectChildren(parent, nextChildren) {
				p.pool.releaseAll(p.trailingExtras)
				p.pool.release(parent)
				p.trailingExtras = append(p.trailingExtras[:0], p.trailingExtras2...)
				p.trailingExtras2 = p.trailingExtras2[:0]
				parent = newNode(p.pool, symbol, nextChildren, productionID, p.language)
			} else {
				p.trailingExtras2 = p.trailingExtras2[:0]
				p.pool.releaseAll(next.Subtrees)
			}
		}

		state := p.stack.state(sliceVersion)
		nextState := p.language.NextState(state, symbol)
		if endOfNonTerminalExtra && nextState == state {
			parent.extra = true
		}
		if isFragile || len(pop) > 1 || initialVersionCount > 1 {
			parent.fragileLeft = true
			parent.fragileRight = true
			parent.parseState = stateNone
		} else {
			parent.parseState = state
		}
		parent.dynamicPrecedence += dynamicPrecedence

		p.stack.push(sliceVersion, parent, false, nextState)
		for _, extraTree := range p.trailingExtras {
			p.stack.push(sliceVersion, extraTree, false, nextState)
		}
		p.trailingExtras = p.trailingExtras[:0]

		for j := 0; j < sliceVersion; j++ {
			if j == version {
				continue
			}
			if p.stack.merge(j, sliceVersion) {
				removedVersionCount++
				break
			}
		}
	}

	if p.stack.versionCount() > initialVersionCount {
		return initialVersionCount
	}
	return versionNone
}

// accept finishes a version: the stack is unwound into a root node,
// which competes with any previously finished tree.
func (p *Parser) accept(version int, lookahead *Subtree) {
	if !lookahead.isEOF() {
		panic("treesitter: accept requires an end-of-input lookahead")
	}
	p.stack.push(version, lookahead, false, 1)

	pop := p.stack.popAll(version)
	for _, slice := range pop {
		trees := slice.Subtrees

		var root *Subtree
		for j := len(trees) - 1; j >= 0; j-- {
			tree := trees[j]
			if tree.extra {
				continue
			}
			// Splice the topmost non-extra subtree's children in its
			// place, so leading extras hang off the new root.
			children := make([]*Subtree, 0, len(trees)-1+len(tree.children))
			children = append(children, trees[:j]...)
			for _, child := range tree.children {
				children = append(children, child.retain())
			}
			children = append(children, trees[j+1:]...)
			root = newNode(p.pool, tree.symbol, children, tree.productionID, p.language)
			p.pool.release(tree)
			break
		}
		if root == nil {
			panic("treesitter: accepted stack contained no non-extra subtree")
		}

		p.acceptCount++
		if p.finishedTree != nil {
			if p.selectTree(p.finishedTree, root) {
				p.pool.release(p.finishedTree)
				p.finishedTree = root
			} else {
				p.pool.release(root)
			}
		} else {
			p.finishedTree = root
		}
	}

	p.stack.removeVersion(pop[0].Version)
	p.stack.halt(version)
}

// doAllPotentialReductions explores every reduce action reachable from a
// version, optionally restricted to a single lookahead symbol. Returns
// whether any reached state can shift that symbol.
func (p *Parser) doAllPotentialReductions(startingVersion int, lookaheadSymbol Symbol) bool {
	initialVersionCount := p.stack.versionCount()

	canShiftLookaheadSymbol := false
	version := startingVersion
	for i := 0; ; i++ {
		versionCount := p.stack.versionCount()
		if version >= versionCount {
			break
		}

		merged := false
		for j := initialVersionCount; j < version; j++ {
			if p.stack.merge(j, version) {
				merged = true
				break
			}
		}
		if merged {
			continue
		}

		state := p.stack.state(version)
		hasShiftAction := false
		p.reduceActions = p.reduceActions[:0]

		var firstSymbol, endSymbol Symbol
		if lookaheadSymbol != 0 {
			firstSymbol = lookaheadSymbol
			endSymbol = lookaheadSymbol + 1
		} else {
			firstSymbol = 1
			endSymbol = Symbol(p.language.TokenCount)
		}

		for symbol := firstSymbol; symbol < endSymbol; symbol++ {
			entry := p.language.TableEntry(state, symbol)
			for _, action := range entry.Actions {
				switch action.Type {
				case ParseActionShift, ParseActionRecover:
					if !action.Extra && !action.Repetition {
						hasShiftAction = true
					}
				case ParseActionReduce:
					if action.ChildCount > 0 {
						p.addReduceAction(reduceAction{
							symbol:            action.Symbol,
							count:             action.ChildCount,
							dynamicPrecedence: action.DynamicPrecedence,
							productionID:      action.ProductionID,
						})
					}
				}
			}
		}

		reductionVersion := versionNone
		for _, action := range p.reduceActions {
			reductionVersion = p.reduce(
				version, action.symbol, int(action.count),
				int32(action.dynamicPrecedence), action.productionID,
				true, false,
			)
		}

		if hasShiftAction {
			canShiftLookaheadSymbol = true
		} else if reductionVersion != versionNone && i < maxVersionCount {
			p.stack.renumberVersion(reductionVersion, version)
			continue
		} else if lookaheadSymbol != 0 {
			p.stack.removeVersion(version)
		}

		if version == startingVersion {
			version = versionCount
		} else {
			version++
		}
	}

	return canShiftLookaheadSymbol
}

func (p *Parser) addReduceAction(action reduceAction) {
	for _, existing := range p.reduceActions {
		if existing.symbol == action.symbol && existing.count == action.count {
			return
		}
	}
	p.reduceActions = append(p.reduceActions, action)
}

// recoverToState implements recovery strategy 1: pop back to a prior
// state, wrapping everything popped in an error node.
func (p *Parser) recoverToState(version int, depth uint32, goalState StateID) bool {
	pop := p.stack.popCount(version, int(depth))
	previousVersion := versionNone

	for i := 0; i < len(pop); i++ {
		slice := pop[i]

		if slice.Version == previousVersion {
			p.pool.releaseAll(slice.Subtrees)
			continue
		}

		if p.stack.state(slice.Version) != goalState {
			p.stack.halt(slice.Version)
			p.pool.releaseAll(slice.Subtrees)
			continue
		}

		errorTrees := p.stack.popError(slice.Version)
		if len(errorTrees) > 0 {
			if len(errorTrees) > 1 {
				// A recovery pop is expected to find at most one error
				// tree; surface the anomaly instead of silently
				// dropping trees.
				p.log("unexpected_multiple_error_trees count:%d", len(errorTrees))
				p.pool.releaseAll(errorTrees[1:])
			}
			errorTree := errorTrees[0]
			if len(errorTree.children) > 0 {
				spliced := make([]*Subtree, 0, len(errorTree.children)+len(slice.Subtrees))
				for _, child := range errorTree.children {
					spliced = append(spliced, child.retain())
				}
				spliced = append(spliced, slice.Subtrees...)
				slice.Subtrees = spliced
			}
			p.pool.release(errorTree)
		}

		children, extras := removeTrailingExtras(slice.Subtrees, p.trailingExtras[:0])
		p.trailingExtras = extras

		if len(children) > 0 {
			errNode := newErrorNode(p.pool, children, true, p.language)
			p.stack.push(slice.Version, errNode, false, goalState)
		}

		for _, tree := range p.trailingExtras {
			p.stack.push(slice.Version, tree, false, goalState)
		}
		p.trailingExtras = p.trailingExtras[:0]

		previousVersion = slice.Version
	}

	return previousVersion != versionNone
}

// recover runs the two error-recovery strategies on a version standing
// in the error state with the given lookahead.
func (p *Parser) recover(version int, lookahead *Subtree) {
	didRecover := false
	previousVersionCount := p.stack.versionCount()
	position := p.stack.position(version)
	summary := p.stack.getSummary(version)
	nodeCountSinceError := p.stack.nodeCountSinceError(version)
	currentErrorCost := p.stack.errorCost(version)

	// Strategy 1: find a previous state in which the lookahead would be
	// valid, pop back to it, and wrap the popped subtrees in an error
	// node.
	if summary != nil && !lookahead.isError() {
		for _, entry := range summary {
			if entry.State == errorState {
				continue
			}
			if entry.Position.Bytes == position.Bytes {
				continue
			}
			depth := entry.Depth
			if nodeCountSinceError > 0 {
				depth++
			}

			// Don't recover in ways that would just merge into an
			// existing version.
			wouldMerge := false
			for j := 0; j < previousVersionCount; j++ {
				if p.stack.state(j) == entry.State && p.stack.position(j).Bytes == position.Bytes {
					wouldMerge = true
					break
				}
			}
			if wouldMerge {
				continue
			}

			newCost := currentErrorCost +
				entry.Depth*errorCostPerSkippedTree +
				(position.Bytes-entry.Position.Bytes)*errorCostPerSkippedChar +
				(position.Extent.Row-entry.Position.Extent.Row)*errorCostPerSkippedLine
			if p.betterVersionExists(version, false, newCost) {
				break
			}

			if p.language.HasActions(entry.State, lookahead.symbol) {
				if p.recoverToState(version, depth, entry.State) {
					didRecover = true
					p.log("recover_to_previous state:%d, depth:%d", entry.State, depth)
					p.logStack()
					break
				}
			}
		}
	}

	// Remove versions that were created and then halted while trying to
	// recover.
	for i := previousVersionCount; i < p.stack.versionCount(); i++ {
		if !p.stack.isActive(i) {
			p.log("removed paused version:%d", i)
			p.stack.removeVersion(i)
			p.logStack()
			i--
		}
	}

	// At end of input, wrap the whole stack in an error node and finish.
	if lookahead.isEOF() {
		p.log("recover_eof")
		parent := newErrorNode(p.pool, nil, false, p.language)
		p.stack.push(version, parent, false, 1)
		p.accept(version, lookahead)
		return
	}

	// Strategy 2: skip the lookahead token, wrapping it in an error
	// node, unless a stricter guard applies.
	if didRecover && p.stack.versionCount() > maxVersionCount {
		p.stack.halt(version)
		p.pool.release(lookahead)
		return
	}

	if didRecover && lookahead.hasExternalScannerStateChange {
		p.stack.halt(version)
		p.pool.release(lookahead)
		return
	}

	newCost := currentErrorCost + errorCostPerSkippedTree +
		lookahead.totalBytes()*errorCostPerSkippedChar +
		lookahead.totalLength().Extent.Row*errorCostPerSkippedLine
	if p.betterVersionExists(version, false, newCost) {
		p.stack.halt(version)
		p.pool.release(lookahead)
		return
	}

	// If the lookahead is an extra token, mark it so it doesn't count
	// toward error cost.
	actions := p.language.Actions(1, lookahead.symbol)
	if n := len(actions); n > 0 && actions[n-1].Type == ParseActionShift && actions[n-1].Extra {
		mut := makeMut(p.pool, lookahead)
		mut.setExtra(true)
		lookahead = mut
	}

	p.log("skip_token symbol:%s", p.symName(lookahead.symbol))
	children := make([]*Subtree, 1, 2)
	children[0] = lookahead
	errorRepeat := newNode(p.pool, errorRepeatSymbol, children, 0, p.language)

	// If an error already sits on top of the stack, concatenate into a
	// single larger error.
	if nodeCountSinceError > 0 {
		pop := p.stack.popCount(version, 1)

		// Multiple slices here should not be possible; pick the first
		// and report the rest rather than silently dropping them.
		if len(pop) > 1 {
			p.log("unexpected_multiple_slices count:%d", len(pop))
			for _, slice := range pop[1:] {
				p.pool.releaseAll(slice.Subtrees)
			}
			for p.stack.versionCount() > pop[0].Version+1 {
				p.stack.removeVersion(pop[0].Version + 1)
			}
		}

		p.stack.renumberVersion(pop[0].Version, version)
		merged := append(pop[0].Subtrees, errorRepeat)
		errorRepeat = newNode(p.pool, errorRepeatSymbol, merged, 0, p.language)
	}

	p.stack.push(version, errorRepeat, false, errorState)
	if lookahead.hasExternalTokens {
		p.stack.setLastExternalToken(version, lookahead.lastExternalToken())
	}

	hasError := true
	for i := 0; i < p.stack.versionCount(); i++ {
		if !p.versionStatus(i).isInError {
			hasError = false
			break
		}
	}
	p.hasError = hasError
}

// handleError begins recovery for a version whose lookahead has no
// actions: perform all pending reductions, try inserting a missing
// token, then mark the error discontinuity and recover.
func (p *Parser) handleError(version int, lookahead *Subtree) {
	previousVersionCount := p.stack.versionCount()

	p.doAllPotentialReductions(version, 0)
	versionCount := p.stack.versionCount()
	position := p.stack.position(version)

	didInsertMissingToken := false
	for v := version; v < versionCount; {
		if !didInsertMissingToken {
			state := p.stack.state(v)
			for missingSymbol := Symbol(1); uint32(missingSymbol) < p.language.TokenCount; missingSymbol++ {
				stateAfterMissingSymbol := p.language.NextState(state, missingSymbol)
				if stateAfterMissingSymbol == 0 || stateAfterMissingSymbol == state {
					continue
				}

				if p.language.HasReduceAction(stateAfterMissingSymbol, lookahead.leafSymbol()) {
					// If the parser is outside any included range, the
					// lexer snaps to the next one; the missing token's
					// padding positions it there.
					p.lexer.reset(position)
					padding := lengthSub(p.lexer.current, position)
					lookaheadBytes := lookahead.totalBytes() + lookahead.lookaheadBytes

					versionWithMissingTree := p.stack.copyVersion(v)
					missingTree := newMissingLeaf(p.pool, missingSymbol, padding, lookaheadBytes)
					p.stack.push(versionWithMissingTree, missingTree, false, stateAfterMissingSymbol)

					if p.doAllPotentialReductions(versionWithMissingTree, lookahead.leafSymbol()) {
						p.log(
							"recover_with_missing symbol:%s, state:%d",
							p.symName(missingSymbol),
							p.stack.state(versionWithMissingTree),
						)
						didInsertMissingToken = true
						break
					}
				}
			}
		}

		p.stack.push(v, nil, false, errorState)
		if v == version {
			v = previousVersionCount
		} else {
			v++
		}
	}

	for i := previousVersionCount; i < versionCount; i++ {
		if !p.stack.merge(version, previousVersionCount) {
			panic("treesitter: error-state versions must merge")
		}
	}

	p.stack.recordSummary(version, maxSummaryDepth)

	// Begin recovery with the current lookahead immediately so its
	// lookahead-bytes value is accounted for in the tree.
	if lookahead.childCount() > 0 {
		lookahead = p.breakdownLookahead(lookahead, errorState)
	}
	p.recover(version, lookahead)

	p.logStack()
}

// checkProgress runs the periodic cancellation, deadline, and progress
// callback checks. It returns false when the parse should unwind,
// releasing the pending lookahead if one was passed.
func (p *Parser) checkProgress(lookahead **Subtree, position *uint32, operations uint32) bool {
	p.operationCount += operations
	if p.operationCount >= opCountPerTimeoutCheck {
		p.operationCount = 0
	}
	if position != nil {
		p.parseState.CurrentByteOffset = *position
		p.parseState.HasError = p.hasError
	}
	if p.operationCount == 0 &&
		((p.cancellationFlag != nil && p.cancellationFlag.Load()) ||
			(!p.deadline.IsZero() && time.Now().After(p.deadline)) ||
			(p.parseOptions.ProgressCallback != nil && p.parseOptions.ProgressCallback(&p.parseState))) {
		if lookahead != nil && *lookahead != nil {
			p.pool.release(*lookahead)
			*lookahead = nil
		}
		return false
	}
	return true
}

// advance runs one lookahead's worth of parse actions for a version:
// reuse or lex a token, then interpret shift/reduce/accept/recover
// actions until the version consumes it, pauses, or halts.
func (p *Parser) advance(version int, allowNodeReuse bool) bool {
	state := p.stack.state(version)
	position := p.stack.position(version).Bytes
	lastExternalToken := p.stack.lastExternalToken(version)

	didReuse := true
	var lookahead *Subtree
	var entry TableEntry

	// If possible, reuse a node from the previous syntax tree.
	if allowNodeReuse {
		lookahead, entry = p.reuseNode(version, &state, position, lastExternalToken)
	}

	// Otherwise try the token previously returned by the lexer.
	if lookahead == nil {
		didReuse = false
		lookahead, entry = p.getCachedToken(state, position, lastExternalToken)
	}

	needsLex := lookahead == nil
	for {
		if needsLex {
			needsLex = false
			lookahead = p.lex(version, state)

			if lookahead != nil {
				p.setCachedToken(position, lastExternalToken, lookahead)
				entry = p.language.TableEntry(state, lookahead.symbol)
			} else {
				// A nil lookahead ends a non-terminal extra rule; the
				// required reduction lives in the EOF table entry.
				entry = p.language.TableEntry(state, symbolEnd)
			}
		}

		if !p.checkProgress(&lookahead, &position, 1) {
			return false
		}

		// Interpret each action for the lookahead in the current state.
		// Reduce actions fork new stack versions; a shift ends this
		// version's turn.
		didReduce := false
		lastReductionVersion := versionNone
		for _, action := range entry.Actions {
			switch action.Type {
			case ParseActionShift:
				if action.Repetition {
					break
				}
				var nextState StateID
				if action.Extra {
					nextState = state
					p.log("shift_extra")
				} else {
					nextState = action.State
					p.log("shift state:%d", nextState)
				}

				if lookahead.childCount() > 0 {
					lookahead = p.breakdownLookahead(lookahead, state)
					nextState = p.language.NextState(state, lookahead.symbol)
				}

				p.shift(version, nextState, lookahead, action.Extra)
				if didReuse {
					p.reusable.advance()
				}
				return true

			case ParseActionReduce:
				isFragile := len(entry.Actions) > 1
				endOfNonTerminalExtra := lookahead == nil
				p.log("reduce sym:%s, child_count:%d", p.symName(action.Symbol), action.ChildCount)
				reductionVersion := p.reduce(
					version, action.Symbol, int(action.ChildCount),
					int32(action.DynamicPrecedence), action.ProductionID,
					isFragile, endOfNonTerminalExtra,
				)
				didReduce = true
				if reductionVersion != versionNone {
					lastReductionVersion = reductionVersion
				}

			case ParseActionAccept:
				p.log("accept")
				p.accept(version, lookahead)
				return true

			case ParseActionRecover:
				if lookahead.childCount() > 0 {
					lookahead = p.breakdownLookahead(lookahead, errorState)
				}
				p.recover(version, lookahead)
				if didReuse {
					p.reusable.advance()
				}
				return true
			}
		}

		// Replace this version with one created by a reduction and keep
		// processing the same lookahead.
		if lastReductionVersion != versionNone {
			p.stack.renumberVersion(lastReductionVersion, version)
			p.logStack()
			state = p.stack.state(version)

			if lookahead == nil {
				// A non-terminal extra rule just finished; lex again
				// from the new state.
				needsLex = true
			} else {
				entry = p.language.TableEntry(state, lookahead.leafSymbol())
			}
			continue
		}

		// The reduction merged into an existing version: this one is
		// done.
		if didReduce {
			if lookahead != nil {
				p.pool.release(lookahead)
			}
			p.stack.halt(version)
			return true
		}

		// An invalid keyword may still be valid as the word token.
		if lookahead != nil && lookahead.keyword &&
			lookahead.symbol != p.language.KeywordCaptureToken &&
			!p.language.IsReservedWord(state, lookahead.symbol) {
			wordEntry := p.language.TableEntry(state, p.language.KeywordCaptureToken)
			if len(wordEntry.Actions) > 0 {
				p.log(
					"switch from_keyword:%s, to_word_token:%s",
					p.symName(lookahead.symbol), p.symName(p.language.KeywordCaptureToken),
				)
				mut := makeMut(p.pool, lookahead)
				mut.setSymbol(p.language.KeywordCaptureToken)
				lookahead = mut
				entry = wordEntry
				continue
			}
		}

		// If the subtree below was reused, it may have been wrong to
		// reuse it; break it down and retry with fresh state.
		if p.breakdownTopOfStack(version) {
			state = p.stack.state(version)
			if lookahead != nil {
				p.pool.release(lookahead)
			}
			needsLex = true
			continue
		}

		// This version is stuck. Pause it; if every version ends up
		// paused, error recovery takes over.
		if lookahead != nil {
			p.log("detect_error lookahead:%s", p.symName(lookahead.symbol))
		}
		p.stack.pause(version, lookahead)
		return true
	}
}

// condenseStack sorts, merges, and prunes stack versions after each
// outer parse-loop iteration, and resumes the best paused version when
// every version is stuck. Returns the minimum error cost among versions
// not currently in an error state.
func (p *Parser) condenseStack() uint32 {
	madeChanges := false
	minErrorCost := ^uint32(0)

	for i := 0; i < p.stack.versionCount(); i++ {
		if p.stack.isHalted(i) {
			p.stack.removeVersion(i)
			i--
			continue
		}

		statusI := p.versionStatus(i)
		if !statusI.isInError && statusI.cost < minErrorCost {
			minErrorCost = statusI.cost
		}

		for j := 0; j < i; j++ {
			statusJ := p.versionStatus(j)

			switch compareVersionStatus(statusJ, statusI) {
			case errorComparisonTakeLeft:
				madeChanges = true
				p.stack.removeVersion(i)
				i--
				j = i

			case errorComparisonPreferLeft, errorComparisonNone:
				if p.stack.merge(j, i) {
					madeChanges = true
					i--
					j = i
				}

			case errorComparisonPreferRight:
				madeChanges = true
				if p.stack.merge(j, i) {
					i--
					j = i
				} else {
					p.stack.swapVersions(i, j)
				}

			case errorComparisonTakeRight:
				madeChanges = true
				p.stack.removeVersion(j)
				i--
				j--
			}
		}
	}

	for p.stack.versionCount() > maxVersionCount {
		p.stack.removeVersion(maxVersionCount)
		madeChanges = true
	}

	if p.stack.versionCount() > 0 {
		hasUnpausedVersion := false
		for i := 0; i < p.stack.versionCount(); i++ {
			if p.stack.isPaused(i) {
				if !hasUnpausedVersion && p.acceptCount < maxVersionCount {
					p.log("resume version:%d", i)
					minErrorCost = p.stack.errorCost(i)
					lookahead := p.stack.resume(i)
					p.handleError(i, lookahead)
					hasUnpausedVersion = true
				} else {
					p.stack.removeVersion(i)
					madeChanges = true
					i--
				}
			} else {
				hasUnpausedVersion = true
			}
		}
	}

	if madeChanges {
		p.log("condense")
		p.logStack()
	}

	return minErrorCost
}

func (p *Parser) hasOutstandingParse() bool {
	return p.canceledBalancing ||
		p.hasExternalPayload ||
		p.stack.state(0) != 1 ||
		p.stack.nodeCountSinceError(0) != 0
}

// Parse parses input, reusing subtrees from oldTree when given. It
// returns nil on cancellation (the parse can be resumed by calling Parse
// again) and on setup failure.
func (p *Parser) Parse(oldTree *Tree, input Input) *Tree {
	if p.language == nil || input.Read == nil {
		return nil
	}

	p.lexer.setInput(input)
	p.includedRangeDifferences = p.includedRangeDifferences[:0]
	p.includedRangeDifferenceIndex = 0

	p.operationCount = 0
	if p.timeout > 0 {
		p.deadline = time.Now().Add(p.timeout)
	} else {
		p.deadline = time.Time{}
	}

	if p.hasOutstandingParse() {
		p.log("resume_parsing")
	} else {
		p.externalScannerCreate()

		if oldTree != nil && oldTree.root != nil {
			p.oldTree = oldTree.root.retain()
			p.includedRangeDifferences = rangeListsDiffer(oldTree.includedRanges, p.lexer.includedRanges)
			p.reusable.reset(p.oldTree)
			p.log("parse_after_edit")
			p.logTree(p.oldTree)
			for _, r := range p.includedRangeDifferences {
				p.log("different_included_range %d - %d", r.StartByte, r.EndByte)
			}
		} else {
			p.reusable.clear()
			p.log("new_parse")
		}
	}

	if !p.canceledBalancing {
		position := uint32(0)
		lastPosition := uint32(0)
		for {
			for version := 0; ; version++ {
				versionCount := p.stack.versionCount()
				if version >= versionCount {
					break
				}
				allowNodeReuse := versionCount == 1

				for p.stack.isActive(version) {
					p.log(
						"process version:%d, version_count:%d, state:%d, row:%d, col:%d",
						version, p.stack.versionCount(), p.stack.state(version),
						p.stack.position(version).Extent.Row,
						p.stack.position(version).Extent.Column,
					)

					if !p.advance(version, allowNodeReuse) {
						return nil
					}

					p.logStack()

					position = p.stack.position(version).Bytes
					if position > lastPosition || (version > 0 && position == lastPosition) {
						lastPosition = position
						break
					}
				}
			}

			minErrorCost := p.condenseStack()

			// A finished tree cheaper than every live version wins;
			// clearing the stack drops extra references so the tree can
			// be rebalanced in place.
			if p.finishedTree != nil && p.finishedTree.errorCost < minErrorCost {
				p.stack.clear()
				break
			}

			for p.includedRangeDifferenceIndex < len(p.includedRangeDifferences) {
				r := p.includedRangeDifferences[p.includedRangeDifferenceIndex]
				if r.EndByte <= position {
					p.includedRangeDifferenceIndex++
				} else {
					break
				}
			}

			if p.stack.versionCount() == 0 {
				break
			}
		}
	}

	if p.finishedTree == nil {
		panic("treesitter: parse finished without a tree")
	}
	if !p.balanceSubtree() {
		p.canceledBalancing = true
		return nil
	}
	p.canceledBalancing = false
	p.log("done")
	p.logTree(p.finishedTree)

	result := newTree(p.finishedTree, p.language, p.lexer.includedRanges)
	p.finishedTree = nil
	p.Reset()
	return result
}

// ParseWithOptions is Parse with a progress callback for this call only.
func (p *Parser) ParseWithOptions(oldTree *Tree, input Input, options ParseOptions) *Tree {
	p.parseOptions = options
	p.parseState.Payload = options.Payload
	result := p.Parse(oldTree, input)
	p.parseOptions = ParseOptions{}
	return result
}

// ParseString parses an in-memory source buffer.
func (p *Parser) ParseString(oldTree *Tree, source []byte) *Tree {
	return p.Parse(oldTree, StringInput(source))
}
