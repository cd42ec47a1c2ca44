// Command tsparse parses a file (or stdin) with one of the fixture
// grammars and prints the resulting tree as an s-expression, optionally
// emitting dot graphs of the parse.
//
// Usage:
//
//	tsparse -grammar arithmetic [-dot graphs.dot] [-timeout 5s] [file]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	treesitter "github.com/SINHASantos/tree-sitter"
	"github.com/SINHASantos/tree-sitter/grammars"
)

func main() {
	grammarName := flag.String("grammar", "arithmetic", "grammar fixture to parse with")
	dotPath := flag.String("dot", "", "write dot graphs of the parse to this file")
	timeout := flag.Duration("timeout", 0, "abort parsing after this duration")
	flag.Parse()

	if err := run(*grammarName, *dotPath, *timeout, flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, "tsparse:", err)
		os.Exit(1)
	}
}

func run(grammarName, dotPath string, timeout time.Duration, path string) error {
	lang, err := grammars.ByName(grammarName)
	if err != nil {
		return err
	}

	var source []byte
	if path == "" {
		source, err = io.ReadAll(os.Stdin)
	} else {
		source, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}

	parser := treesitter.NewParser()
	if !parser.SetLanguage(lang) {
		return fmt.Errorf("grammar %q is not compatible with this runtime", grammarName)
	}
	if timeout > 0 {
		parser.SetTimeout(timeout)
	}

	if dotPath != "" {
		f, err := os.OpenFile(dotPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		parser.PrintDotGraphs(f)
	}

	tree := parser.ParseString(nil, source)
	if tree == nil {
		return fmt.Errorf("parse did not complete")
	}

	root := tree.RootNode()
	fmt.Println(root.String())
	if root.HasError() {
		fmt.Fprintln(os.Stderr, "tsparse: input contained errors")
	}
	return nil
}
