// Package treesitter implements an incremental, error-tolerant GLR parser
// runtime in pure Go.
//
// This file defines the grammar-table data structures consumed by the
// parser: symbols, parse actions, lexer DFA tables, and the Language
// container with its lookup operations.
package treesitter

// Symbol is a grammar symbol ID (terminal or nonterminal).
type Symbol uint16

// StateID is a parser state index.
type StateID uint16

const (
	// symbolEnd is the built-in end-of-input symbol.
	symbolEnd Symbol = 0
	// errorSymbol is the built-in symbol for error nodes.
	errorSymbol Symbol = 0xFFFF
	// errorRepeatSymbol is the hidden symbol used to chain skipped tokens
	// during error recovery.
	errorRepeatSymbol Symbol = 0xFFFE

	// errorState is the parser state reserved for error recovery. Real
	// parse states start at 1.
	errorState StateID = 0
	// stateNone marks a subtree whose parse state cannot be trusted
	// (built in an ambiguous context).
	stateNone StateID = 0xFFFF

	// lexStateNone is the lex-mode sentinel marking the end of a
	// non-terminal extra rule, where the parser must reduce without a
	// lookahead token.
	lexStateNone uint16 = 0xFFFF
)

// languageABIVersion is the table format version this runtime understands.
const (
	languageABIVersion    = 15
	minCompatibleLanguage = 13
)

// ParseActionType identifies the kind of parse action.
type ParseActionType uint8

const (
	ParseActionShift ParseActionType = iota
	ParseActionReduce
	ParseActionAccept
	ParseActionRecover
)

// ParseAction is a single parser action from the parse table.
type ParseAction struct {
	Type              ParseActionType
	State             StateID // target state (shift/recover)
	Symbol            Symbol  // reduced symbol (reduce)
	ChildCount        uint8   // children consumed (reduce)
	DynamicPrecedence int16   // precedence (reduce)
	ProductionID      uint16  // which production (reduce)
	Extra             bool    // is this an extra token (shift)
	Repetition        bool    // is this a repetition (shift)
}

// ParseActionEntry is a group of actions for a (state, symbol) pair.
type ParseActionEntry struct {
	Reusable bool
	Actions  []ParseAction
}

// TableEntry is the resolved action set for a (state, symbol) pair.
type TableEntry struct {
	Actions  []ParseAction
	Reusable bool
}

// LexState is one state in the table-driven lexer DFA.
type LexState struct {
	AcceptToken Symbol // 0 if this state doesn't accept
	Skip        bool   // true if accepted chars are whitespace
	Transitions []LexTransition
	Default     int // default next state (-1 if none)
	EOFState    int // state entered on end of input (-1 if none)
}

// LexTransition maps a character range to a next state.
type LexTransition struct {
	Lo, Hi    rune // inclusive character range
	NextState int
}

// LexMode maps a parser state to its lexer configuration.
type LexMode struct {
	LexState         uint16
	ExternalLexState uint16
}

// SymbolMetadata holds display information about a symbol.
type SymbolMetadata struct {
	Visible   bool
	Named     bool
	Supertype bool
}

// Language holds all data needed to parse a specific language. The tables
// are normally produced by a grammar compiler; the fixtures in the
// grammars package build them by hand.
type Language struct {
	Name       string
	ABIVersion uint32

	SymbolCount        uint32
	TokenCount         uint32
	ExternalTokenCount uint32
	StateCount         uint32
	ProductionIDCount  uint32

	SymbolNames    []string
	SymbolMetadata []SymbolMetadata

	// ParseTable is a dense [state][symbol] table of indices into
	// ParseActions. Index 0 is the shared "no action" entry.
	ParseTable   [][]uint16
	ParseActions []ParseActionEntry

	LexModes            []LexMode
	LexStates           []LexState
	KeywordLexStates    []LexState
	KeywordCaptureToken Symbol

	// ReservedWords lists, per state, keyword symbols that may not be
	// re-interpreted as the keyword-capture token in that state.
	ReservedWords map[StateID][]Symbol

	// External scanner tables. ExternalSymbolMap translates the scanner's
	// local token indices to grammar symbols. ExternalTokenSets holds, per
	// external lex state, which scanner tokens are currently valid.
	ExternalScanner   ExternalScanner
	ExternalSymbolMap []Symbol
	ExternalTokenSets [][]bool
}

// SymbolName returns the display name of a symbol.
func (l *Language) SymbolName(sym Symbol) string {
	switch sym {
	case errorSymbol:
		return "ERROR"
	case errorRepeatSymbol:
		return "_ERROR"
	}
	if int(sym) < len(l.SymbolNames) {
		return l.SymbolNames[sym]
	}
	return ""
}

// IsNamed reports whether sym is a named symbol.
func (l *Language) IsNamed(sym Symbol) bool {
	if sym == errorSymbol {
		return true
	}
	if int(sym) < len(l.SymbolMetadata) {
		return l.SymbolMetadata[sym].Named
	}
	return false
}

// IsVisible reports whether sym appears in the visible tree.
func (l *Language) IsVisible(sym Symbol) bool {
	if sym == errorSymbol {
		return true
	}
	if int(sym) < len(l.SymbolMetadata) {
		return l.SymbolMetadata[sym].Visible
	}
	return false
}

func (l *Language) actionEntry(state StateID, sym Symbol) *ParseActionEntry {
	if int(state) >= len(l.ParseTable) {
		return nil
	}
	row := l.ParseTable[state]
	if int(sym) >= len(row) {
		return nil
	}
	idx := row[sym]
	if idx == 0 || int(idx) >= len(l.ParseActions) {
		return nil
	}
	return &l.ParseActions[idx]
}

// TableEntry resolves the action set for a (state, symbol) pair.
func (l *Language) TableEntry(state StateID, sym Symbol) TableEntry {
	entry := l.actionEntry(state, sym)
	if entry == nil {
		return TableEntry{}
	}
	return TableEntry{Actions: entry.Actions, Reusable: entry.Reusable}
}

// Actions returns the parse actions for a (state, symbol) pair.
func (l *Language) Actions(state StateID, sym Symbol) []ParseAction {
	entry := l.actionEntry(state, sym)
	if entry == nil {
		return nil
	}
	return entry.Actions
}

// HasActions reports whether any action exists for (state, symbol).
func (l *Language) HasActions(state StateID, sym Symbol) bool {
	return len(l.Actions(state, sym)) > 0
}

// HasReduceAction reports whether (state, symbol) has a reduce action.
func (l *Language) HasReduceAction(state StateID, sym Symbol) bool {
	for _, action := range l.Actions(state, sym) {
		if action.Type == ParseActionReduce {
			return true
		}
	}
	return false
}

// IsReservedWord reports whether sym is a reserved word in the given
// state, meaning the keyword lexer's result must not be demoted back to
// the keyword-capture token there.
func (l *Language) IsReservedWord(state StateID, sym Symbol) bool {
	for _, reserved := range l.ReservedWords[state] {
		if reserved == sym {
			return true
		}
	}
	return false
}

// NextState returns the state the parser enters after consuming sym in
// the given state. For terminals this follows the last shift action; for
// nonterminals it is the goto entry.
func (l *Language) NextState(state StateID, sym Symbol) StateID {
	if sym == errorSymbol || sym == errorRepeatSymbol {
		return errorState
	}
	actions := l.Actions(state, sym)
	if uint32(sym) < l.TokenCount {
		if n := len(actions); n > 0 {
			action := actions[n-1]
			if action.Type == ParseActionShift {
				if action.Extra {
					return state
				}
				return action.State
			}
		}
		return 0
	}
	// Goto entries are stored as a single shift action.
	if len(actions) > 0 && actions[0].Type == ParseActionShift {
		return actions[0].State
	}
	return 0
}

// LexModeForState returns the lexer configuration for a parse state.
func (l *Language) LexModeForState(state StateID) LexMode {
	if int(state) < len(l.LexModes) {
		return l.LexModes[state]
	}
	return LexMode{}
}

// EnabledExternalTokens returns the valid-symbol set for an external lex
// state, indexed by the scanner's local token indices.
func (l *Language) EnabledExternalTokens(externalLexState uint16) []bool {
	if int(externalLexState) < len(l.ExternalTokenSets) {
		return l.ExternalTokenSets[externalLexState]
	}
	return nil
}

// externalSymbol maps a scanner-local token index to a grammar symbol.
func (l *Language) externalSymbol(local Symbol) Symbol {
	if int(local) < len(l.ExternalSymbolMap) {
		return l.ExternalSymbolMap[local]
	}
	return local
}
