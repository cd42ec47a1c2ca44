package treesitter

// externalScannerStateBufferSize bounds the serialized size of an
// external scanner's state.
const externalScannerStateBufferSize = 1024

// ExternalScanner is the interface for language-specific scanners that
// recognize tokens the built-in DFA cannot express, such as indentation
// or heredoc delimiters.
//
// Scan reads characters through the lexer's scanner-facing API
// (Lookahead, Advance, MarkEnd, SetResultSymbol, Column, AtEOF) and
// returns true when a token was recognized. validSymbols is indexed by
// the scanner's local token indices and reports which tokens the parser
// can currently accept.
type ExternalScanner interface {
	Create() any
	Destroy(payload any)
	Serialize(payload any, buf []byte) int
	Deserialize(payload any, buf []byte)
	Scan(payload any, lexer *Lexer, validSymbols []bool) bool
}
