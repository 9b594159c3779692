package pass

import (
	"io"

	"github.com/heruix/boomerang/expr"
	"github.com/heruix/boomerang/ir"
)

// Dominators computes the dominator tree and dominance frontier for the
// procedure (§4.3). The dominator tree stays cached on the Procedure for
// PhiPlacement and every later consumer; the dominance frontier is not
// cached and is recomputed from that tree on each request. It never
// mutates the IR itself.
type Dominators struct{}

func (Dominators) Name() string { return "Dominators" }

func (Dominators) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	proc.BuildDomTree()
	proc.DominanceFrontier()
	return false, nil
}

// PhiPlacement inserts a phi assignment at the iterated dominance
// frontier of every block set that defines a given location (§4.4).
type PhiPlacement struct{}

func (PhiPlacement) Name() string { return "PhiPlacement" }

func (PhiPlacement) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	defBlocks := map[string][]*ir.BasicBlock{}
	defExpr := map[string]*expr.Expr{}
	for _, b := range proc.Blocks {
		for _, s := range b.Stmts {
			for _, d := range s.Definitions() {
				key := d.String()
				defExpr[key] = d
				if len(defBlocks[key]) == 0 || defBlocks[key][len(defBlocks[key])-1] != b {
					defBlocks[key] = append(defBlocks[key], b)
				}
			}
		}
	}

	changed := false
	for key, blocks := range defBlocks {
		if len(blocks) < 2 {
			continue // a single definition site never needs a join
		}
		for _, target := range proc.IteratedDominanceFrontier(blocks) {
			if hasPhiFor(target, key) {
				continue
			}
			phi := ir.NewPhiAssign(defExpr[key])
			target.PrependPhi(phi)
			changed = true
		}
	}
	return changed, nil
}

func hasPhiFor(b *ir.BasicBlock, key string) bool {
	for _, p := range b.Phis() {
		if p.Left.String() == key {
			return true
		}
	}
	return false
}

// BlockVarRename resolves every phi's operand set by walking the
// dominator tree in preorder, maintaining a per-location stack of the
// statement that currently reaches each point: pushed on entering the
// statement that defines it, popped on leaving the block that pushed it
// (§4.4), grounded on the dominator-driven rename walk lift.go performs
// over ssa.Value defs. This IR shares expression text by value rather
// than linking uses to a specific Value object, so renaming here means
// populating PhiAssign.Edges with the exact reaching definition for each
// predecessor, not rewriting operand text.
type BlockVarRename struct{}

func (BlockVarRename) Name() string { return "BlockVarRename" }

func (BlockVarRename) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	if proc.Entry == nil {
		return false, nil
	}
	stacks := map[string][]ir.Stmt{}
	changed := false

	var visit func(b *ir.BasicBlock)
	visit = func(b *ir.BasicBlock) {
		pushed := map[string]int{}
		push := func(key string, s ir.Stmt) {
			stacks[key] = append(stacks[key], s)
			pushed[key]++
		}

		for _, phi := range b.Phis() {
			push(phi.Left.String(), phi)
		}
		for _, s := range b.Stmts {
			if s.Tag() == ir.TagPhiAssign {
				continue
			}
			for _, d := range s.Definitions() {
				push(d.String(), s)
			}
		}

		for _, succ := range b.Succs {
			for _, phi := range succ.Phis() {
				key := phi.Left.String()
				stack := stacks[key]
				if len(stack) == 0 {
					continue
				}
				top := stack[len(stack)-1]
				if phi.Edges[b] != top {
					phi.SetEdge(b, top)
					changed = true
				}
			}
		}

		for _, child := range proc.DomChildren(b) {
			visit(child)
		}

		for key, n := range pushed {
			stacks[key] = stacks[key][:len(stacks[key])-n]
		}
	}
	visit(proc.Entry)
	return changed, nil
}
