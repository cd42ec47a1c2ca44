package treesitter

import (
	"fmt"
	"io"
)

// printSubtreeDotGraph writes a subtree as a dot graph, one node per
// subtree with its symbol name and byte span.
func printSubtreeDotGraph(w io.Writer, tree *Subtree, lang *Language) {
	fmt.Fprintf(w, "digraph tree {\nedge [arrowhead=none]\n")
	id := 0
	var emit func(t *Subtree, startByte uint32) int
	emit = func(t *Subtree, startByte uint32) int {
		nodeID := id
		id++
		label := lang.SymbolName(t.symbol)
		attrs := ""
		if t.isError() || t.missing {
			attrs = ", color=red"
		}
		fmt.Fprintf(
			w, "tree_%d [label=\"%s %d-%d\"%s]\n",
			nodeID, label, startByte+t.padding.Bytes, startByte+t.totalBytes(), attrs,
		)
		childStart := startByte
		for _, child := range t.children {
			childID := emit(child, childStart)
			fmt.Fprintf(w, "tree_%d -> tree_%d\n", nodeID, childID)
			childStart += child.totalBytes()
		}
		return nodeID
	}
	emit(tree, 0)
	fmt.Fprintf(w, "}\n\n")
}
