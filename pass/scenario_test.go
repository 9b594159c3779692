package pass_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heruix/boomerang/expr"
	"github.com/heruix/boomerang/ir"
	"github.com/heruix/boomerang/pass"
)

// Scenario A — Boolean assignment rewrite.
func TestScenarioA_BoolAssignSignedRewrite(t *testing.T) {
	ba := ir.NewBoolAssign(expr.NewTerminal("zf"), 32)
	ba.Kind = ir.CondJUL

	ba.MakeSigned()
	text := ba.PrintCompact()

	assert.Contains(t, text, "signed less")
	assert.NotContains(t, text, "unsigned")
}

// Scenario B — Branch relational synthesis.
func TestScenarioB_BranchRelationalSynthesis(t *testing.T) {
	proc := ir.NewProcedure("scenarioB")
	b := proc.AddBlock(0x1000)

	a := expr.NewTerminal("a")
	c := expr.NewTerminal("b")
	flags := ir.NewAssign(expr.NewTerminal("%flags"), expr.NewFlagCall("subflags", a, c))
	b.Append(flags)

	br := ir.NewBranchStmt(0x2000)
	br.Kind = ir.CondJSG
	b.Append(br)

	changed, err := (pass.BranchAnalysis{}).Execute(proc, nil)
	require.NoError(t, err)
	assert.True(t, changed)

	require.NotNil(t, br.Cond)
	assert.Equal(t, expr.OpGreater, br.Cond.Op)
	assert.Equal(t, "a", br.Cond.Kids[0].StrVal)
	assert.Equal(t, "b", br.Cond.Kids[1].StrVal)
}

// Scenario C — Propagation of a unique definition.
func TestScenarioC_StatementPropagationThenDeadCode(t *testing.T) {
	proc := ir.NewProcedure("scenarioC")
	b := proc.AddBlock(0x1000)

	x := expr.NewTerminal("x")
	tLoc := expr.NewTerminal("t")
	y := expr.NewTerminal("y")

	defT := ir.NewAssign(tLoc, expr.Binary(expr.OpPlus, x, expr.NewIntConst(1)))
	useT := ir.NewAssign(y, expr.Binary(expr.OpMult, tLoc, expr.NewIntConst(2)))
	b.Append(defT)
	b.Append(useT)

	changed, err := (pass.StatementPropagation{}).Execute(proc, nil)
	require.NoError(t, err)
	assert.True(t, changed)

	require.Equal(t, expr.OpMult, useT.Right.Op)
	inner := useT.Right.Kids[0]
	assert.Equal(t, expr.OpPlus, inner.Op)
	assert.Equal(t, "x", inner.Kids[0].StrVal)

	changed, err = (pass.UnusedStatementRemoval{}).Execute(proc, nil)
	require.NoError(t, err)
	assert.True(t, changed)

	stmts := proc.Statements()
	require.Len(t, stmts, 1)
	assert.Same(t, useT, stmts[0])
}

// Scenario D — Phi insertion on a diamond.
func TestScenarioD_PhiInsertionOnDiamond(t *testing.T) {
	proc := ir.NewProcedure("scenarioD")
	entry := proc.AddBlock(0x1000)
	left := proc.AddBlock(0x1010)
	right := proc.AddBlock(0x1020)
	join := proc.AddBlock(0x1030)
	proc.AddEdge(entry, left)
	proc.AddEdge(entry, right)
	proc.AddEdge(left, join)
	proc.AddEdge(right, join)

	x := expr.NewTerminal("x")
	left.Append(ir.NewAssign(x, expr.NewIntConst(1)))
	right.Append(ir.NewAssign(x, expr.NewIntConst(2)))

	_, err := (pass.Dominators{}).Execute(proc, nil)
	require.NoError(t, err)
	changed, err := (pass.PhiPlacement{}).Execute(proc, nil)
	require.NoError(t, err)
	assert.True(t, changed)

	phis := join.Phis()
	require.Len(t, phis, 1)
	assert.Equal(t, "x", phis[0].Left.StrVal)
	assert.Len(t, phis[0].Edges, 0) // PhiPlacement only inserts; BlockVarRename fills operands

	changed, err = (pass.BlockVarRename{}).Execute(proc, nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, phis[0].Edges, 2)
	assert.Equal(t, int64(1), phis[0].Edges[left].(*ir.Assign).Right.IntVal)
	assert.Equal(t, int64(2), phis[0].Edges[right].(*ir.Assign).Right.IntVal)
}

// LocalTypeAnalysis must reach BoolAssign, not just Assign/BranchStmt.
func TestLocalTypeAnalysisTypesBoolAssign(t *testing.T) {
	proc := ir.NewProcedure("typeBool")
	b := proc.AddBlock(0x1000)

	dest := expr.NewTerminal("zf")
	ba := ir.NewBoolAssign(dest, 1)
	ba.Cond = ir.CondExpr()
	b.Append(ba)

	changed, err := (pass.LocalTypeAnalysis{}).Execute(proc, nil)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, dest.Type)
	assert.Equal(t, "bool", dest.Type.Name)
	assert.Equal(t, 1, dest.Type.Width)
}

// FinalParameterSearch must discover a live-in parameter even when
// ImplicitPlacement has not run yet (its canonical position in the Late
// group, per pass/groups.go).
func TestFinalParameterSearchFindsLiveInWithoutImplicitAssign(t *testing.T) {
	proc := ir.NewProcedure("finalParams")
	proc.Signature = &ir.Signature{Name: "finalParams"}
	b := proc.AddBlock(0x1000)

	arg := expr.NewTerminal("a1")
	y := expr.NewTerminal("y")
	b.Append(ir.NewAssign(y, expr.Binary(expr.OpPlus, arg, expr.NewIntConst(1))))

	changed, err := (pass.FinalParameterSearch{}).Execute(proc, nil)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, proc.Signature.Params, 1)
	assert.Equal(t, "a1", proc.Signature.Params[0].StrVal)
}

// Scenario F — Preservation of the stack pointer.
func TestScenarioF_StackPointerPreserved(t *testing.T) {
	proc := ir.NewProcedure("scenarioF")
	proc.Signature = &ir.Signature{Name: "scenarioF"}

	entry := proc.AddBlock(0x1000)
	sp := expr.NewTerminal("%SP")
	entry.Append(ir.NewAssign(sp, expr.Binary(expr.OpMinus, sp, expr.NewIntConst(8))))

	exit := proc.AddBlock(0x2000)
	proc.AddEdge(entry, exit)
	exit.Append(ir.NewAssign(sp, expr.Binary(expr.OpPlus, sp, expr.NewIntConst(8))))
	exit.Append(ir.NewReturnStmt())

	changed, err := (pass.SPPreservation{}).Execute(proc, nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, proc.Signature.Preserved["%SP"])
}

func TestScenarioF_StackPointerUnmatchedAdjustmentNotPreserved(t *testing.T) {
	proc := ir.NewProcedure("scenarioFBad")
	proc.Signature = &ir.Signature{Name: "scenarioFBad"}

	entry := proc.AddBlock(0x1000)
	sp := expr.NewTerminal("%SP")
	entry.Append(ir.NewAssign(sp, expr.Binary(expr.OpMinus, sp, expr.NewIntConst(8))))

	exit := proc.AddBlock(0x2000)
	proc.AddEdge(entry, exit)
	exit.Append(ir.NewAssign(sp, expr.Binary(expr.OpPlus, sp, expr.NewIntConst(4))))
	exit.Append(ir.NewReturnStmt())

	changed, err := (pass.SPPreservation{}).Execute(proc, nil)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.False(t, proc.Signature.Preserved["%SP"])
}
