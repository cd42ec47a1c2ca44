package grammars

import (
	"fmt"
	"sort"

	treesitter "github.com/SINHASantos/tree-sitter"
)

// builders maps grammar names to their Language constructors.
var builders = map[string]func() *treesitter.Language{
	"arithmetic":       Arithmetic,
	"ambiguous":        Ambiguous,
	"ambiguous-length": AmbiguousLength,
	"empty-rule":       EmptyRule,
	"sequence":         Sequence,
	"paren":            Paren,
	"keyword":          Keyword,
	"indent":           Indent,
}

// Names lists the available grammar fixtures in sorted order.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByName builds the named grammar fixture.
func ByName(name string) (*treesitter.Language, error) {
	builder, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("grammars: unknown grammar %q (have %v)", name, Names())
	}
	return builder(), nil
}
