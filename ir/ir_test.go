package ir

import (
	"testing"

	"github.com/heruix/boomerang/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond builds entry -> {left, right} -> join, the canonical shape
// PhiPlacement must insert a phi into join for any location defined
// differently along both paths (Scenario D).
func diamond(p *Procedure) (entry, left, right, join *BasicBlock) {
	entry = p.AddBlock(0x1000)
	left = p.AddBlock(0x1010)
	right = p.AddBlock(0x1020)
	join = p.AddBlock(0x1030)
	addEdge(entry, left)
	addEdge(entry, right)
	addEdge(left, join)
	addEdge(right, join)
	return
}

func TestReversePostOrderAndDominance(t *testing.T) {
	p := NewProcedure("f")
	entry, left, right, join := diamond(p)

	rpo := p.ReversePostOrder()
	require.Len(t, rpo, 4)
	assert.Equal(t, entry, rpo[0])

	assert.True(t, p.Dominates(entry, join))
	assert.True(t, p.Dominates(entry, left))
	assert.False(t, p.Dominates(left, right))
	assert.False(t, p.Dominates(left, join))
	assert.True(t, p.Dominates(join, join))
}

func TestDominanceFrontierDiamond(t *testing.T) {
	p := NewProcedure("f")
	_, left, right, join := diamond(p)

	df := p.DominanceFrontier()
	assert.Contains(t, df[left], join)
	assert.Contains(t, df[right], join)
}

func TestIteratedDominanceFrontierPhiPlacement(t *testing.T) {
	p := NewProcedure("f")
	_, left, right, _ := diamond(p)

	idf := p.IteratedDominanceFrontier([]*BasicBlock{left, right})
	require.Len(t, idf, 1)
}

// Testable Property 6: the branch taken/fall-through convention — index
// 0 is "taken" iff its low address equals the fixed destination — must
// hold after any edge mutation, never read from a cached field.
func TestBranchEdgeConvention(t *testing.T) {
	p := NewProcedure("f")
	entry := p.AddBlock(0x2000)
	taken := p.AddBlock(0x2100)
	fall := p.AddBlock(0x2010)
	addEdge(entry, taken)
	addEdge(entry, fall)

	br := NewBranchStmt(taken.Low)
	entry.Append(br)

	assert.Equal(t, taken, br.Taken())
	assert.Equal(t, fall, br.FallThrough())

	other := p.AddBlock(0x3000)
	br.SetTaken(other)
	assert.Equal(t, other, br.Taken())
	assert.NotContains(t, taken.Preds, entry)
	assert.Contains(t, other.Preds, entry)
}

// Testable Property 4: phi well-formedness — a phi's operand set equals
// its block's predecessor set once placement/renaming have run.
func TestPhiWellFormedness(t *testing.T) {
	p := NewProcedure("f")
	_, left, right, join := diamond(p)

	x := expr.NewRegOf(0)
	phi := NewPhiAssign(x)
	phi.SetEdge(left, NewAssign(x, expr.NewIntConst(1)))
	phi.SetEdge(right, NewAssign(x, expr.NewIntConst(2)))
	join.PrependPhi(phi)

	preds := phi.Preds()
	require.Len(t, preds, len(join.Preds))
	for _, pr := range join.Preds {
		assert.Contains(t, preds, pr)
	}
}

// Testable Property 5: edge consistency — every successor's predecessor
// list contains the block that names it as a successor, and vice versa.
func TestEdgeConsistency(t *testing.T) {
	p := NewProcedure("f")
	entry, left, right, join := diamond(p)
	for _, b := range []*BasicBlock{entry, left, right, join} {
		for _, s := range b.Succs {
			assert.Contains(t, s.Preds, b)
		}
		for _, pr := range b.Preds {
			assert.Contains(t, pr.Succs, b)
		}
	}
}

func TestReplaceSuccessorDropsStalePhiEdge(t *testing.T) {
	p := NewProcedure("f")
	_, left, right, join := diamond(p)

	x := expr.NewRegOf(0)
	phi := NewPhiAssign(x)
	phi.SetEdge(left, NewAssign(x, expr.NewIntConst(1)))
	phi.SetEdge(right, NewAssign(x, expr.NewIntConst(2)))
	join.PrependPhi(phi)

	other := p.AddBlock(0x4000)
	replaceSuccessor(left, 0, other)

	assert.NotContains(t, phi.Preds(), left)
	assert.NotContains(t, join.Preds, left)
}

func TestCloneEquivalenceStmt(t *testing.T) {
	x := expr.NewRegOf(0)
	a := NewAssign(x, expr.NewIntConst(5))
	c := a.Clone().(*Assign)
	assert.True(t, expr.Equal(a.Left, c.Left))
	assert.True(t, expr.Equal(a.Right, c.Right))
	c.Right.IntVal = 99
	assert.Equal(t, int64(5), a.Right.IntVal)
}

func TestBoolAssignMakeSigned(t *testing.T) {
	b := NewBoolAssign(expr.NewRegOf(0), 1)
	b.SetCondType(CondJUL, false)
	b.MakeSigned()
	assert.Equal(t, CondJSL, b.Kind)

	b2 := NewBoolAssign(expr.NewRegOf(0), 1)
	b2.SetCondType(CondJE, false)
	b2.MakeSigned()
	assert.Equal(t, CondJE, b2.Kind)
}

func TestSplitEdgePreservesPhiOperand(t *testing.T) {
	p := NewProcedure("f")
	_, left, right, join := diamond(p)

	x := expr.NewRegOf(0)
	phi := NewPhiAssign(x)
	leftDef := NewAssign(x, expr.NewIntConst(1))
	phi.SetEdge(left, leftDef)
	phi.SetEdge(right, NewAssign(x, expr.NewIntConst(2)))
	join.PrependPhi(phi)

	mid := SplitEdge(p, left, join)
	assert.Contains(t, mid.Preds, left)
	assert.Contains(t, mid.Succs, join)
	assert.NotContains(t, phi.Preds(), left)
	assert.Contains(t, phi.Preds(), mid)
	assert.Equal(t, leftDef, phi.Edges[mid])
}
