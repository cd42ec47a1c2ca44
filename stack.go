package treesitter

import (
	"fmt"
	"io"
)

const versionNone = -1

type stackStatus uint8

const (
	stackStatusActive stackStatus = iota
	stackStatusPaused
	stackStatusHalted
)

// stackLink is an edge in the graph-structured stack. The subtree is the
// parse content between the two nodes; it is nil for the discontinuity
// sentinel pushed when entering error recovery. A pending link marks a
// reused node that may still be broken down into its children.
type stackLink struct {
	node      *stackNode
	subtree   *Subtree
	isPending bool
}

// stackNode is a vertex in the graph-structured stack. Multiple links
// arise when stack versions merge after diverging.
type stackNode struct {
	state    StateID
	position Length
	links    []stackLink
	refCount uint32

	// Aggregates over the cheapest/deepest path to the base.
	errorCost         uint32
	nodeCount         uint32
	dynamicPrecedence int32
}

// StackSummaryEntry is one breadcrumb recorded when entering the error
// state, used by recovery strategy 1.
type StackSummaryEntry struct {
	Position Length
	Depth    uint32
	State    StateID
}

type stackHead struct {
	node                 *stackNode
	lastExternalToken    *Subtree
	summary              []StackSummaryEntry
	nodeCountAtLastError uint32
	lookaheadWhenPaused  *Subtree
	status               stackStatus
}

// StackSlice is one path of subtrees produced by a pop operation, in
// bottom-to-top stack order.
type StackSlice struct {
	Version  int
	Subtrees []*Subtree
}

// parseStack is the graph-structured stack: an array of versions (heads)
// over a shared DAG of stack nodes.
type parseStack struct {
	heads []stackHead
	base  *stackNode
	pool  *SubtreePool
}

func newParseStack(pool *SubtreePool) *parseStack {
	base := &stackNode{state: 1, refCount: 1}
	return &parseStack{
		heads: []stackHead{{node: retainNode(base)}},
		base:  base,
		pool:  pool,
	}
}

func retainNode(n *stackNode) *stackNode {
	n.refCount++
	return n
}

func (s *parseStack) releaseNode(n *stackNode) {
	// Iterative release so long stacks don't recurse.
	work := []*stackNode{n}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		cur.refCount--
		if cur.refCount > 0 {
			continue
		}
		for _, link := range cur.links {
			if link.subtree != nil {
				s.pool.release(link.subtree)
			}
			work = append(work, link.node)
		}
		cur.links = nil
	}
}

func (s *parseStack) newNode(prev *stackNode, subtree *Subtree, pending bool, state StateID) *stackNode {
	n := &stackNode{
		state:             state,
		position:          prev.position,
		links:             []stackLink{{node: retainNode(prev), subtree: subtree, isPending: pending}},
		refCount:          1,
		errorCost:         prev.errorCost,
		nodeCount:         prev.nodeCount,
		dynamicPrecedence: prev.dynamicPrecedence,
	}
	if subtree != nil {
		n.position = lengthAdd(n.position, subtree.totalLength())
		n.errorCost += subtree.errorCost
		n.nodeCount += subtree.nodeCount
		n.dynamicPrecedence += subtree.dynamicPrecedence
	}
	return n
}

// addLink grafts a link onto an existing node, deduplicating identical
// edges and folding the alternative path's aggregates in (minimum error
// cost, maximum node count).
func (s *parseStack) addLink(n *stackNode, link stackLink) {
	for i := range n.links {
		existing := &n.links[i]
		if existing.node == link.node && existing.subtree == link.subtree {
			if !link.isPending {
				existing.isPending = false
			}
			return
		}
	}

	retainNode(link.node)
	if link.subtree != nil {
		link.subtree.retain()
	}
	n.links = append(n.links, link)

	errorCost := link.node.errorCost
	nodeCount := link.node.nodeCount
	if link.subtree != nil {
		errorCost += link.subtree.errorCost
		nodeCount += link.subtree.nodeCount
	}
	if errorCost < n.errorCost {
		n.errorCost = errorCost
	}
	if nodeCount > n.nodeCount {
		n.nodeCount = nodeCount
	}
}

func (s *parseStack) versionCount() int { return len(s.heads) }

func (s *parseStack) head(version int) *stackHead { return &s.heads[version] }

func (s *parseStack) state(version int) StateID { return s.heads[version].node.state }

func (s *parseStack) position(version int) Length { return s.heads[version].node.position }

func (s *parseStack) lastExternalToken(version int) *Subtree {
	return s.heads[version].lastExternalToken
}

func (s *parseStack) setLastExternalToken(version int, token *Subtree) {
	head := &s.heads[version]
	if token != nil {
		token.retain()
	}
	if head.lastExternalToken != nil {
		s.pool.release(head.lastExternalToken)
	}
	head.lastExternalToken = token
}

func (s *parseStack) isActive(version int) bool {
	return s.heads[version].status == stackStatusActive
}

func (s *parseStack) isPaused(version int) bool {
	return s.heads[version].status == stackStatusPaused
}

func (s *parseStack) isHalted(version int) bool {
	return s.heads[version].status == stackStatusHalted
}

func (s *parseStack) haltedVersionCount() int {
	count := 0
	for i := range s.heads {
		if s.heads[i].status == stackStatusHalted {
			count++
		}
	}
	return count
}

func (s *parseStack) errorCost(version int) uint32 {
	head := &s.heads[version]
	cost := head.node.errorCost
	if head.status == stackStatusPaused ||
		(head.node.state == errorState && len(head.node.links) > 0 && head.node.links[0].subtree == nil) {
		cost += errorCostPerRecovery
	}
	return cost
}

func (s *parseStack) nodeCountSinceError(version int) uint32 {
	head := &s.heads[version]
	if head.node.nodeCount < head.nodeCountAtLastError {
		head.nodeCountAtLastError = head.node.nodeCount
	}
	return head.node.nodeCount - head.nodeCountAtLastError
}

func (s *parseStack) dynamicPrecedence(version int) int32 {
	return s.heads[version].node.dynamicPrecedence
}

// hasAdvancedSinceError reports whether any real content was shifted
// since this version last entered the error state.
func (s *parseStack) hasAdvancedSinceError(version int) bool {
	head := &s.heads[version]
	node := head.node
	if node.errorCost == 0 {
		return true
	}
	for node != nil {
		if len(node.links) == 0 {
			break
		}
		subtree := node.links[0].subtree
		if subtree == nil {
			break
		}
		if subtree.totalBytes() > 0 {
			return true
		}
		if node.nodeCount > head.nodeCountAtLastError && subtree.errorCost == 0 {
			node = node.links[0].node
			continue
		}
		break
	}
	return false
}

// push adds a subtree to a version, transferring ownership of the
// subtree to the stack. A nil subtree records an error-recovery
// discontinuity.
func (s *parseStack) push(version int, subtree *Subtree, pending bool, state StateID) {
	head := &s.heads[version]
	n := s.newNode(head.node, subtree, pending, state)
	s.releaseNode(head.node)
	head.node = n
	if subtree == nil {
		head.nodeCountAtLastError = n.nodeCount
	}
}

type stackPathResult struct {
	node     *stackNode
	subtrees []*Subtree
}

// collectPaths walks backwards from node gathering subtrees until goal
// non-extra subtrees have been collected on each path. Results appear in
// link order (depth-first), which fixes version numbering downstream.
func (s *parseStack) collectPaths(node *stackNode, goal int, acc []*Subtree, results *[]stackPathResult) {
	if goal == 0 {
		*results = append(*results, stackPathResult{node: node, subtrees: reverseSubtrees(acc)})
		return
	}
	for i := range node.links {
		link := node.links[i]
		next := acc
		left := goal
		if link.subtree != nil {
			next = append(acc[:len(acc):len(acc)], link.subtree)
			if !link.subtree.extra {
				left--
			}
		}
		if left == 0 {
			*results = append(*results, stackPathResult{node: link.node, subtrees: reverseSubtrees(next)})
		} else if len(link.node.links) > 0 {
			s.collectPaths(link.node, left, next, results)
		}
	}
}

func reverseSubtrees(acc []*Subtree) []*Subtree {
	out := make([]*Subtree, len(acc))
	for i, t := range acc {
		out[len(acc)-1-i] = t
	}
	return out
}

// addVersion appends a new head at the given node, inheriting the
// original version's external token and error bookkeeping.
func (s *parseStack) addVersion(original int, node *stackNode) int {
	orig := &s.heads[original]
	head := stackHead{
		node:                 retainNode(node),
		lastExternalToken:    orig.lastExternalToken,
		nodeCountAtLastError: orig.nodeCountAtLastError,
		status:               stackStatusActive,
	}
	if head.lastExternalToken != nil {
		head.lastExternalToken.retain()
	}
	s.heads = append(s.heads, head)
	return len(s.heads) - 1
}

// commitPaths turns path results into stack slices. Each distinct ending
// node becomes a new version appended after the existing ones; paths
// sharing an ending node share a version. The popped version itself is
// left untouched — callers renumber onto it or remove it.
func (s *parseStack) commitPaths(version int, results []stackPathResult) []StackSlice {
	if len(results) == 0 {
		return nil
	}

	slices := make([]StackSlice, 0, len(results))
	versionByNode := make(map[*stackNode]int, len(results))

	for _, result := range results {
		for _, t := range result.subtrees {
			t.retain()
		}
		v, seen := versionByNode[result.node]
		if !seen {
			v = s.addVersion(version, result.node)
			versionByNode[result.node] = v
		}
		slices = append(slices, StackSlice{Version: v, Subtrees: result.subtrees})
	}
	return slices
}

// popCount pops paths of count non-extra subtrees from a version,
// returning one slice per distinct path.
func (s *parseStack) popCount(version int, count int) []StackSlice {
	var results []stackPathResult
	s.collectPaths(s.heads[version].node, count, nil, &results)
	return s.commitPaths(version, results)
}

// popPending pops a single pending subtree, if the top link is pending.
// The first slice is renumbered onto the popped version.
func (s *parseStack) popPending(version int) []StackSlice {
	node := s.heads[version].node
	var results []stackPathResult
	for i := range node.links {
		link := node.links[i]
		if link.subtree == nil || !link.isPending {
			continue
		}
		results = append(results, stackPathResult{node: link.node, subtrees: []*Subtree{link.subtree}})
	}
	slices := s.commitPaths(version, results)
	if len(slices) > 0 {
		s.renumberVersion(slices[0].Version, version)
		slices[0].Version = version
	}
	return slices
}

// popAll pops every subtree down to the stack base.
func (s *parseStack) popAll(version int) []StackSlice {
	var results []stackPathResult
	var walk func(node *stackNode, acc []*Subtree)
	walk = func(node *stackNode, acc []*Subtree) {
		if len(node.links) == 0 {
			results = append(results, stackPathResult{node: node, subtrees: reverseSubtrees(acc)})
			return
		}
		for i := range node.links {
			link := node.links[i]
			next := acc
			if link.subtree != nil {
				next = append(acc[:len(acc):len(acc)], link.subtree)
			}
			walk(link.node, next)
		}
	}
	walk(s.heads[version].node, nil)
	return s.commitPaths(version, results)
}

// popError pops the error subtree on top of a version, if any. The
// resulting head is renumbered onto the version and the popped subtrees
// are owned by the caller.
func (s *parseStack) popError(version int) []*Subtree {
	node := s.heads[version].node
	for i := range node.links {
		link := node.links[i]
		if link.subtree != nil && link.subtree.isError() {
			slices := s.commitPaths(version, []stackPathResult{
				{node: link.node, subtrees: []*Subtree{link.subtree}},
			})
			s.renumberVersion(slices[0].Version, version)
			return slices[0].Subtrees
		}
	}
	return nil
}

func (s *parseStack) canMerge(v1, v2 int) bool {
	head1 := &s.heads[v1]
	head2 := &s.heads[v2]
	return head1.status == stackStatusActive &&
		head2.status == stackStatusActive &&
		head1.node.state == head2.node.state &&
		head1.node.position.Bytes == head2.node.position.Bytes &&
		externalScannerStateEq(head1.lastExternalToken, head2.lastExternalToken)
}

// merge folds version v2 into v1 when both stand at the same state and
// position with equal external scanner state.
func (s *parseStack) merge(v1, v2 int) bool {
	if !s.canMerge(v1, v2) {
		return false
	}
	node1 := s.heads[v1].node
	for _, link := range s.heads[v2].node.links {
		s.addLink(node1, link)
	}
	s.removeVersion(v2)
	return true
}

func (s *parseStack) halt(version int) {
	s.heads[version].status = stackStatusHalted
}

func (s *parseStack) pause(version int, lookahead *Subtree) {
	head := &s.heads[version]
	head.status = stackStatusPaused
	head.lookaheadWhenPaused = lookahead
}

// resume reactivates a paused version and returns its saved lookahead,
// transferring ownership to the caller.
func (s *parseStack) resume(version int) *Subtree {
	head := &s.heads[version]
	lookahead := head.lookaheadWhenPaused
	head.lookaheadWhenPaused = nil
	head.status = stackStatusActive
	return lookahead
}

func (s *parseStack) removeVersion(version int) {
	head := &s.heads[version]
	s.releaseNode(head.node)
	if head.lastExternalToken != nil {
		s.pool.release(head.lastExternalToken)
	}
	if head.lookaheadWhenPaused != nil {
		s.pool.release(head.lookaheadWhenPaused)
	}
	s.heads = append(s.heads[:version], s.heads[version+1:]...)
}

// renumberVersion moves version v1 into slot v2 (v2 < v1), discarding
// v2's previous contents but keeping its summary if v1 has none.
func (s *parseStack) renumberVersion(v1, v2 int) {
	if v1 == v2 {
		return
	}
	source := &s.heads[v1]
	target := &s.heads[v2]
	if target.summary != nil && source.summary == nil {
		source.summary = target.summary
		target.summary = nil
	}
	s.releaseNode(target.node)
	if target.lastExternalToken != nil {
		s.pool.release(target.lastExternalToken)
	}
	if target.lookaheadWhenPaused != nil {
		s.pool.release(target.lookaheadWhenPaused)
	}
	*target = *source
	s.heads = append(s.heads[:v1], s.heads[v1+1:]...)
}

func (s *parseStack) swapVersions(v1, v2 int) {
	s.heads[v1], s.heads[v2] = s.heads[v2], s.heads[v1]
}

func (s *parseStack) copyVersion(version int) int {
	original := s.heads[version]
	head := stackHead{
		node:                 retainNode(original.node),
		lastExternalToken:    original.lastExternalToken,
		nodeCountAtLastError: original.nodeCountAtLastError,
		status:               original.status,
		summary:              append([]StackSummaryEntry(nil), original.summary...),
	}
	if head.lastExternalToken != nil {
		head.lastExternalToken.retain()
	}
	s.heads = append(s.heads, head)
	return len(s.heads) - 1
}

// recordSummary walks the stack behind a version, recording breadcrumbs
// of (state, depth, position) up to maxDepth non-extra subtrees deep.
func (s *parseStack) recordSummary(version int, maxDepth uint32) {
	head := &s.heads[version]
	var summary []StackSummaryEntry

	var walk func(node *stackNode, depth uint32)
	walk = func(node *stackNode, depth uint32) {
		if depth > maxDepth {
			return
		}
		duplicate := false
		for i := len(summary) - 1; i >= 0; i-- {
			entry := summary[i]
			if entry.Depth < depth {
				break
			}
			if entry.Depth == depth && entry.Position.Bytes == node.position.Bytes && entry.State == node.state {
				duplicate = true
				break
			}
		}
		if !duplicate {
			summary = append(summary, StackSummaryEntry{
				Position: node.position,
				Depth:    depth,
				State:    node.state,
			})
		}
		for i := range node.links {
			link := node.links[i]
			next := depth
			if link.subtree != nil && !link.subtree.extra {
				next++
			}
			walk(link.node, next)
		}
	}
	walk(head.node, 0)
	head.summary = summary
}

func (s *parseStack) getSummary(version int) []StackSummaryEntry {
	return s.heads[version].summary
}

// clear resets the stack to a single active version at the base state.
func (s *parseStack) clear() {
	for i := range s.heads {
		head := &s.heads[i]
		s.releaseNode(head.node)
		if head.lastExternalToken != nil {
			s.pool.release(head.lastExternalToken)
		}
		if head.lookaheadWhenPaused != nil {
			s.pool.release(head.lookaheadWhenPaused)
		}
	}
	s.heads = s.heads[:0]
	s.heads = append(s.heads, stackHead{node: retainNode(s.base)})
}

// printDotGraph writes the stack's node DAG as a dot graph.
func (s *parseStack) printDotGraph(w io.Writer, lang *Language) {
	fmt.Fprintf(w, "digraph stack {\nrankdir=\"RL\";\nedge [arrowhead=none]\n")
	visited := map[*stackNode]int{}
	var emit func(n *stackNode) int
	id := 0
	emit = func(n *stackNode) int {
		if nodeID, ok := visited[n]; ok {
			return nodeID
		}
		nodeID := id
		id++
		visited[n] = nodeID
		fmt.Fprintf(w, "node_%d [label=\"%d\"]\n", nodeID, n.state)
		for _, link := range n.links {
			target := emit(link.node)
			label := ""
			if link.subtree != nil {
				label = lang.SymbolName(link.subtree.symbol)
			}
			fmt.Fprintf(w, "node_%d -> node_%d [label=\"%s\"]\n", nodeID, target, label)
		}
		return nodeID
	}
	for i := range s.heads {
		headID := emit(s.heads[i].node)
		fmt.Fprintf(w, "version_%d [label=\"v%d\", shape=box]\n", i, i)
		fmt.Fprintf(w, "version_%d -> node_%d\n", i, headID)
	}
	fmt.Fprintf(w, "}\n\n")
}
