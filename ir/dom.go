package ir

// Dominator computation (§4.3): an iterative algorithm over reverse
// post-order, grounded on the citation in the teacher's lift.go
// ("Cooper, Harvey, Kennedy. 2001. A Simple, Fast Dominance Algorithm")
// since no file in the corpus actually carries buildDomTree's body, only
// its call site and the citation. Dominance frontiers are then built by
// the Cytron et al. postorder-of-dom-tree walk lift.go does carry, with
// df.build adapted to this package's domNode/BasicBlock shapes.

// domNode is one node of the dominator tree.
type domNode struct {
	Block    *BasicBlock
	Idom     *domNode
	Children []*domNode
}

// ReversePostOrder returns the procedure's blocks reachable from Entry in
// reverse post-order, caching the result until the next CFG mutation
// (§4.3: never cache across a mutation — invalidateRPO drops this on
// every edge/block change).
func (p *Procedure) ReversePostOrder() []*BasicBlock {
	if p.rpo != nil {
		return p.rpo
	}
	if p.Entry == nil {
		return nil
	}
	visited := make(map[*BasicBlock]bool, len(p.Blocks))
	var post []*BasicBlock
	var visit func(b *BasicBlock)
	visit = func(b *BasicBlock) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range b.Succs {
			visit(s)
		}
		post = append(post, b)
	}
	visit(p.Entry)
	rpo := make([]*BasicBlock, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}
	for i, b := range rpo {
		b.rpoNum = i
	}
	p.rpo = rpo
	return rpo
}

// intersect walks two dominator-tree paths toward the root until they
// meet, using each block's position in reverse post-order as the
// "already processed" test, exactly as Cooper/Harvey/Kennedy's figure 3
// describes.
func intersect(a, b *domNode) *domNode {
	for a != b {
		for a.Block.rpoNum > b.Block.rpoNum {
			a = a.Idom
		}
		for b.Block.rpoNum > a.Block.rpoNum {
			b = b.Idom
		}
	}
	return a
}

// BuildDomTree computes the immediate-dominator tree for p, rooted at
// Entry, by iterating the intersect step over reverse post-order to a
// fixed point. Blocks unreachable from Entry are left out of the tree
// entirely, matching the algorithm's precondition that it only considers
// the reachable subgraph.
func (p *Procedure) BuildDomTree() map[*BasicBlock]*domNode {
	if p.domTree != nil {
		return p.domTree
	}
	rpo := p.ReversePostOrder()
	if len(rpo) == 0 {
		p.domTree = map[*BasicBlock]*domNode{}
		return p.domTree
	}
	nodes := make(map[*BasicBlock]*domNode, len(rpo))
	for _, b := range rpo {
		nodes[b] = &domNode{Block: b}
	}
	entry := nodes[rpo[0]]
	entry.Idom = entry

	changed := true
	for changed {
		changed = false
		for _, b := range rpo[1:] {
			node := nodes[b]
			var newIdom *domNode
			for _, pred := range b.Preds {
				pn, ok := nodes[pred]
				if !ok || pn.Idom == nil {
					continue // predecessor not yet processed or unreachable
				}
				if newIdom == nil {
					newIdom = pn
					continue
				}
				newIdom = intersect(newIdom, pn)
			}
			if newIdom != nil && node.Idom != newIdom {
				node.Idom = newIdom
				changed = true
			}
		}
	}
	entry.Idom = nil // the entry has no dominator of its own
	for _, b := range rpo[1:] {
		node := nodes[b]
		if node.Idom != nil {
			node.Idom.Children = append(node.Idom.Children, node)
		}
	}
	for b, n := range nodes {
		b.dom = n
	}
	p.domTree = nodes
	return nodes
}

// IDom returns b's immediate dominator, or nil if b is the entry block
// or unreachable.
func (p *Procedure) IDom(b *BasicBlock) *BasicBlock {
	tree := p.BuildDomTree()
	n, ok := tree[b]
	if !ok || n.Idom == nil {
		return nil
	}
	return n.Idom.Block
}

// DomChildren returns b's immediate children in the dominator tree.
func (p *Procedure) DomChildren(b *BasicBlock) []*BasicBlock {
	tree := p.BuildDomTree()
	n, ok := tree[b]
	if !ok {
		return nil
	}
	out := make([]*BasicBlock, len(n.Children))
	for i, c := range n.Children {
		out[i] = c.Block
	}
	return out
}

// DomPreorder returns every block reachable from Entry in dominator-tree
// preorder: a block always precedes every block it dominates. Passes
// that rename or propagate along the dominator tree (BlockVarRename,
// §4.4) drive their walk from this order.
func (p *Procedure) DomPreorder() []*BasicBlock {
	tree := p.BuildDomTree()
	if p.Entry == nil {
		return nil
	}
	root, ok := tree[p.Entry]
	if !ok {
		return nil
	}
	var out []*BasicBlock
	var walk func(n *domNode)
	walk = func(n *domNode) {
		out = append(out, n.Block)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}

// Dominates reports whether a dominates b (reflexively: a dominates
// itself).
func (p *Procedure) Dominates(a, b *BasicBlock) bool {
	tree := p.BuildDomTree()
	nb, ok := tree[b]
	if !ok {
		return false
	}
	na := tree[a]
	for n := nb; n != nil; n = n.Idom {
		if n == na {
			return true
		}
		if n.Idom == n {
			break
		}
	}
	return a == b
}

// domFrontier maps each reachable block to its dominance frontier set.
type domFrontier map[*BasicBlock][]*BasicBlock

func (df domFrontier) add(u, v *domNode) {
	df[u.Block] = append(df[u.Block], v.Block)
}

// build populates df for the dom-subtree rooted at u, mirroring
// domFrontier.build in lift.go (Cytron et al.): children first, then
// u's own successors that u does not immediately dominate, then each
// child's frontier re-checked against u.
func (df domFrontier) build(u *domNode) {
	for _, child := range u.Children {
		df.build(child)
	}
	for _, vb := range u.Block.Succs {
		if v := vb.dom; v == nil || v.Idom != u {
			df.add(u, v)
		}
	}
	for _, w := range u.Children {
		for _, vb := range df[w.Block] {
			if v := vb.dom; v == nil || v.Idom != u {
				df.add(u, v)
			}
		}
	}
}

// DominanceFrontier returns the dominance-frontier set for every block
// reachable from p.Entry (§4.3, driving PhiPlacement).
func (p *Procedure) DominanceFrontier() map[*BasicBlock][]*BasicBlock {
	tree := p.BuildDomTree()
	if p.Entry == nil {
		return nil
	}
	root, ok := tree[p.Entry]
	if !ok {
		return nil
	}
	df := make(domFrontier, len(tree))
	df.build(root)
	return map[*BasicBlock][]*BasicBlock(df)
}

// IteratedDominanceFrontier returns the iterated dominance frontier of
// the given block set: the fixed point of repeatedly unioning in the
// frontier of every block added so far. This is exactly the set of
// blocks PhiPlacement must insert a phi into for a location defined in
// defBlocks (§4.4, Cytron et al.).
func (p *Procedure) IteratedDominanceFrontier(defBlocks []*BasicBlock) []*BasicBlock {
	df := p.DominanceFrontier()
	var worklist []*BasicBlock
	worklist = append(worklist, defBlocks...)
	inSet := make(map[*BasicBlock]bool)
	var out []*BasicBlock
	visitedWork := make(map[*BasicBlock]bool)
	for len(worklist) > 0 {
		b := worklist[0]
		worklist = worklist[1:]
		if visitedWork[b] {
			continue
		}
		visitedWork[b] = true
		for _, f := range df[b] {
			if !inSet[f] {
				inSet[f] = true
				out = append(out, f)
				worklist = append(worklist, f)
			}
		}
	}
	return out
}
