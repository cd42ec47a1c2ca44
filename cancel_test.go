package treesitter_test

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	treesitter "github.com/SINHASantos/tree-sitter"
	"github.com/SINHASantos/tree-sitter/grammars"
)

func longArithmeticSource() []byte {
	return []byte("1" + strings.Repeat("+1", 400))
}

func TestProgressCallbackCancelsAndResumes(t *testing.T) {
	parser := newTestParser(t, grammars.Arithmetic())
	source := longArithmeticSource()

	calls := 0
	var lastOffset uint32
	tree := parser.ParseWithOptions(nil, treesitter.StringInput(source), treesitter.ParseOptions{
		ProgressCallback: func(state *treesitter.ParseState) bool {
			calls++
			lastOffset = state.CurrentByteOffset
			return true
		},
	})
	if tree != nil {
		t.Fatal("canceled parse must return nil")
	}
	if calls == 0 {
		t.Fatal("progress callback never ran")
	}
	if lastOffset == 0 {
		t.Error("expected the parse to have advanced before the first check")
	}

	// A follow-up call resumes the outstanding parse and completes.
	tree = parser.Parse(nil, treesitter.StringInput(source))
	if tree == nil {
		t.Fatal("resumed parse failed")
	}
	if got := tree.RootNode().EndByte(); got != uint32(len(source)) {
		t.Errorf("root end = %d, want %d", got, len(source))
	}
	if tree.RootNode().HasError() {
		t.Error("resumed parse should be clean")
	}
}

func TestCancellationFlagStopsParse(t *testing.T) {
	parser := newTestParser(t, grammars.Arithmetic())
	source := longArithmeticSource()

	var flag atomic.Bool
	flag.Store(true)
	parser.SetCancellationFlag(&flag)

	if parser.ParseString(nil, source) != nil {
		t.Fatal("parse with the cancellation flag set must return nil")
	}

	flag.Store(false)
	tree := parser.ParseString(nil, source)
	if tree == nil {
		t.Fatal("parse after clearing the flag failed")
	}
	if got := tree.RootNode().EndByte(); got != uint32(len(source)) {
		t.Errorf("root end = %d, want %d", got, len(source))
	}
}

func TestTimeoutStopsParse(t *testing.T) {
	parser := newTestParser(t, grammars.Arithmetic())
	source := longArithmeticSource()

	parser.SetTimeout(time.Nanosecond)
	if parser.ParseString(nil, source) != nil {
		t.Fatal("parse with an expired deadline must return nil")
	}

	parser.SetTimeout(0)
	if parser.ParseString(nil, source) == nil {
		t.Fatal("parse without a deadline failed")
	}
}

func TestProgressCallbackReportsErrors(t *testing.T) {
	parser := newTestParser(t, grammars.Sequence())

	// Garbage interleaved with tokens: each "?" is skipped as its own error
	// (an unbroken run of garbage would lex as a single error token), so
	// recovery keeps running past several progress checkpoints.
	source := []byte(strings.Repeat("? x ", 300))

	sawError := false
	tree := parser.ParseWithOptions(nil, treesitter.StringInput(source), treesitter.ParseOptions{
		ProgressCallback: func(state *treesitter.ParseState) bool {
			if state.HasError {
				sawError = true
			}
			return false
		},
	})
	if tree == nil {
		t.Fatal("parse failed")
	}
	if !sawError {
		t.Error("expected HasError to be reported during recovery")
	}
}
