package treesitter

import (
	"fmt"
	"strings"
)

// Tree holds a finished syntax tree along with the language and included
// ranges it was parsed with.
type Tree struct {
	root           *Subtree
	language       *Language
	includedRanges []Range
}

func newTree(root *Subtree, lang *Language, includedRanges []Range) *Tree {
	return &Tree{
		root:           root,
		language:       lang,
		includedRanges: append([]Range(nil), includedRanges...),
	}
}

// Language returns the language the tree was parsed with.
func (t *Tree) Language() *Language { return t.language }

// IncludedRanges returns the ranges of the input this tree covers.
func (t *Tree) IncludedRanges() []Range {
	return append([]Range(nil), t.includedRanges...)
}

// RootNode returns a navigable view of the tree's root.
func (t *Tree) RootNode() Node {
	return Node{subtree: t.root, tree: t}
}

// Edit adjusts the tree's byte spans to account for a source change and
// marks the affected subtrees, so a subsequent incremental parse knows
// what it may reuse.
func (t *Tree) Edit(edit InputEdit) {
	for i := range t.includedRanges {
		r := &t.includedRanges[i]
		if r.EndByte >= edit.OldEndByte && r.EndByte < maxRangeEnd {
			r.EndByte = edit.NewEndByte + (r.EndByte - edit.OldEndByte)
			r.EndPoint = pointAdd(edit.NewEndPoint, pointSub(r.EndPoint, edit.OldEndPoint))
			if r.StartByte >= edit.OldEndByte {
				r.StartByte = edit.NewEndByte + (r.StartByte - edit.OldEndByte)
				r.StartPoint = pointAdd(edit.NewEndPoint, pointSub(r.StartPoint, edit.OldEndPoint))
			}
		}
	}

	pool := newSubtreePool(0)
	t.root = editSubtree(pool, t.root, edit)
}

// editSubtree applies an edit, expressed relative to the subtree's start
// (including its padding), returning the possibly-cloned subtree.
func editSubtree(pool *SubtreePool, t *Subtree, edit InputEdit) *Subtree {
	endByte := t.totalBytes() + t.lookaheadBytes
	isNoop := edit.OldEndByte == edit.StartByte && edit.NewEndByte == edit.StartByte
	isPureInsertion := edit.OldEndByte == edit.StartByte

	if edit.StartByte > endByte || (isNoop && edit.StartByte == endByte) {
		return t
	}

	padding := t.padding
	size := t.size
	oldEnd := Length{Bytes: edit.OldEndByte, Extent: edit.OldEndPoint}
	newEnd := Length{Bytes: edit.NewEndByte, Extent: edit.NewEndPoint}
	start := Length{Bytes: edit.StartByte, Extent: edit.StartPoint}

	switch {
	// Edit entirely before the content: shift the padding.
	case edit.OldEndByte <= padding.Bytes:
		padding = lengthAdd(newEnd, lengthSub(padding, oldEnd))

	// Edit starts in the padding and extends into the content: the
	// content shrinks and the padding ends at the edit's new end.
	case edit.StartByte < padding.Bytes:
		size = lengthSub(size, lengthSub(oldEnd, padding))
		padding = newEnd

	// Edit within the content: resize.
	default:
		totalBytes := t.totalBytes()
		if edit.StartByte < totalBytes || (edit.StartByte == totalBytes && isPureInsertion) {
			newContentEnd := lengthSub(newEnd, padding)
			if oldEnd.Bytes <= totalBytes {
				size = lengthAdd(newContentEnd, lengthSub(size, lengthSub(oldEnd, padding)))
			} else {
				size = newContentEnd
			}
		}
	}

	t = makeMut(pool, t)
	t.padding = padding
	t.size = size
	t.hasChanges = true

	childLeft := lengthZero()
	childRight := lengthZero()
	childAlreadyEdited := false
	for i := 0; i < len(t.children); i++ {
		child := t.children[i]
		childLeft = childRight
		childRight = lengthAdd(childLeft, child.totalLength())

		// Children whose examined bytes (span plus lexer lookahead) all
		// precede the edit are unaffected, except that a pure insertion
		// directly at a child's end may still extend its token.
		if childRight.Bytes+child.lookaheadBytes <= edit.StartByte &&
			!(isPureInsertion && edit.StartByte <= childRight.Bytes) {
			continue
		}
		// Children that start after the edit shift implicitly through
		// their relative padding.
		if childLeft.Bytes > edit.OldEndByte ||
			(childLeft.Bytes == edit.OldEndByte && childLeft.Bytes > edit.StartByte && i > 0) {
			break
		}

		childEdit := InputEdit{
			StartByte:   lengthSub(start, childLeft).Bytes,
			OldEndByte:  lengthSub(oldEnd, childLeft).Bytes,
			NewEndByte:  lengthSub(newEnd, childLeft).Bytes,
			StartPoint:  pointSub(start.Extent, childLeft.Extent),
			OldEndPoint: pointSub(oldEnd.Extent, childLeft.Extent),
			NewEndPoint: pointSub(newEnd.Extent, childLeft.Extent),
		}
		if edit.OldEndByte > childRight.Bytes {
			clamped := lengthSub(childRight, childLeft)
			childEdit.OldEndByte = clamped.Bytes
			childEdit.OldEndPoint = clamped.Extent
		}

		// All inserted text belongs to the first affected child; later
		// children only shrink.
		if childAlreadyEdited {
			childEdit.NewEndByte = childEdit.StartByte
			childEdit.NewEndPoint = childEdit.StartPoint
		}
		childAlreadyEdited = true

		t.children[i] = editSubtree(pool, child, childEdit)
	}

	return t
}

// Node is a lightweight view over a subtree that carries its absolute
// position within the document.
type Node struct {
	subtree       *Subtree
	startPosition Length
	tree          *Tree
}

// IsZero reports whether the node is the zero Node (no subtree).
func (n Node) IsZero() bool { return n.subtree == nil }

// Symbol returns the node's grammar symbol.
func (n Node) Symbol() Symbol { return n.subtree.symbol }

// Type returns the node's symbol name.
func (n Node) Type() string { return n.tree.language.SymbolName(n.subtree.symbol) }

// StartByte returns the byte offset where the node's content begins.
func (n Node) StartByte() uint32 {
	return n.startPosition.Bytes + n.subtree.padding.Bytes
}

// EndByte returns the byte offset just past the node's content.
func (n Node) EndByte() uint32 {
	return n.startPosition.Bytes + n.subtree.totalBytes()
}

// StartPoint returns the row/column where the node's content begins.
func (n Node) StartPoint() Point {
	return lengthAdd(n.startPosition, n.subtree.padding).Extent
}

// EndPoint returns the row/column just past the node's content.
func (n Node) EndPoint() Point {
	return lengthAdd(n.startPosition, n.subtree.totalLength()).Extent
}

// IsNamed reports whether the node is a named node.
func (n Node) IsNamed() bool { return n.tree.language.IsNamed(n.subtree.symbol) }

// IsMissing reports whether the node was inserted by error recovery.
func (n Node) IsMissing() bool { return n.subtree.missing }

// IsExtra reports whether the node is an extra (e.g. a comment).
func (n Node) IsExtra() bool { return n.subtree.extra }

// IsError reports whether the node is an error node.
func (n Node) IsError() bool { return n.subtree.isError() }

// HasError reports whether the node or any descendant is an error or
// missing node.
func (n Node) HasError() bool { return n.subtree.errorCost > 0 }

// ChildCount returns the number of children.
func (n Node) ChildCount() int { return len(n.subtree.children) }

// Child returns the i-th child, or the zero Node if out of range.
func (n Node) Child(i int) Node {
	if i < 0 || i >= len(n.subtree.children) {
		return Node{}
	}
	offset := n.startPosition
	for j := 0; j < i; j++ {
		offset = lengthAdd(offset, n.subtree.children[j].totalLength())
	}
	return Node{subtree: n.subtree.children[i], startPosition: offset, tree: n.tree}
}

// NamedChild returns the i-th named child, skipping anonymous tokens.
func (n Node) NamedChild(i int) Node {
	count := 0
	for j := 0; j < n.ChildCount(); j++ {
		child := n.Child(j)
		if child.IsNamed() && !child.IsExtra() {
			if count == i {
				return child
			}
			count++
		}
	}
	return Node{}
}

// Text returns the source text covered by the node.
func (n Node) Text(source []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(source) {
		end = uint32(len(source))
	}
	if start > end {
		start = end
	}
	return string(source[start:end])
}

// String renders the node as an s-expression over named nodes, in the
// usual (symbol child ...) form, with (ERROR ...) and (MISSING name)
// for recovery nodes.
func (n Node) String() string {
	return strings.Join(n.sexpParts(nil), " ")
}

func (n Node) sexpParts(parts []string) []string {
	sub := n.subtree
	if sub.missing {
		return append(parts, fmt.Sprintf("(MISSING %s)", n.Type()))
	}
	if sub.isError() && len(sub.children) == 0 {
		return append(parts, "(ERROR)")
	}

	if n.IsNamed() {
		var inner []string
		for i := 0; i < n.ChildCount(); i++ {
			child := n.Child(i)
			if len(child.subtree.children) == 0 && !child.IsNamed() &&
				!child.subtree.missing && !child.subtree.isError() {
				continue
			}
			inner = child.sexpParts(inner)
		}
		s := "(" + n.Type()
		if len(inner) > 0 {
			s += " " + strings.Join(inner, " ")
		}
		return append(parts, s+")")
	}

	// Invisible node: splice its children into the parent's list.
	for i := 0; i < n.ChildCount(); i++ {
		child := n.Child(i)
		if len(child.subtree.children) == 0 && !child.IsNamed() &&
			!child.subtree.missing && !child.subtree.isError() {
			continue
		}
		parts = child.sexpParts(parts)
	}
	return parts
}
