package treesitter

// compressRepeatChain performs up to count left-rotations on a chain of
// same-symbol repeat nodes hanging off tree's first child, reducing the
// chain's depth. Rotated ancestors are pushed onto the pool's tree stack
// so their aggregates can be recomputed bottom-up afterwards.
//
// Only uniquely-owned nodes may be rotated; shared nodes end the walk.
func compressRepeatChain(tree *Subtree, count uint32, pool *SubtreePool, lang *Language) {
	initialStackSize := len(pool.treeStack)
	symbol := tree.symbol

	for i := uint32(0); i < count; i++ {
		if tree.refCount.Load() > 1 || len(tree.children) < 2 {
			break
		}
		child := tree.children[0]
		if child.refCount.Load() > 1 || len(child.children) < 2 || child.symbol != symbol {
			break
		}
		grandchild := child.children[0]
		if grandchild.refCount.Load() > 1 || len(grandchild.children) < 2 || grandchild.symbol != symbol {
			break
		}

		tree.children[0] = grandchild
		child.children[0] = grandchild.children[len(grandchild.children)-1]
		grandchild.children[len(grandchild.children)-1] = child

		pool.treeStack = append(pool.treeStack, tree)
		tree = grandchild
	}

	for len(pool.treeStack) > initialStackSize {
		n := len(pool.treeStack) - 1
		tree = pool.treeStack[n]
		pool.treeStack = pool.treeStack[:n]

		child := tree.children[0]
		grandchild := child.children[len(child.children)-1]
		grandchild.summarizeChildren(lang)
		child.summarizeChildren(lang)
		tree.summarizeChildren(lang)
	}
}

// balanceSubtree rebalances repeat chains that run through each node's
// first child (left-leaning chains) in the finished tree. It is resumable: when a progress check cancels it, the work stack
// is preserved on the pool and the next call picks up where it left off.
func (p *Parser) balanceSubtree() bool {
	finished := p.finishedTree

	if !p.canceledBalancing {
		p.pool.treeStack = p.pool.treeStack[:0]
		if finished != nil && len(finished.children) > 0 && finished.refCount.Load() == 1 {
			p.pool.treeStack = append(p.pool.treeStack, finished)
		}
	}

	for len(p.pool.treeStack) > 0 {
		if !p.checkProgress(nil, nil, 1) {
			return false
		}

		tree := p.pool.treeStack[len(p.pool.treeStack)-1]

		if tree.repeatDepth > 0 {
			first := tree.children[0]
			last := tree.children[len(tree.children)-1]
			if first.repeatDepth > last.repeatDepth {
				n := first.repeatDepth - last.repeatDepth
				for i := n / 2; i > 0; i /= 2 {
					compressRepeatChain(tree, i, p.pool, p.language)
					n -= i
					// Larger rotations do proportionally more work, so
					// scale the progress increment with them.
					ops := i >> 4
					if ops == 0 {
						ops = 1
					}
					if !p.checkProgress(nil, nil, ops) {
						return false
					}
				}
			}
		}

		p.pool.treeStack = p.pool.treeStack[:len(p.pool.treeStack)-1]

		for _, child := range tree.children {
			if len(child.children) > 0 && child.refCount.Load() == 1 {
				p.pool.treeStack = append(p.pool.treeStack, child)
			}
		}
	}

	return true
}
