package xform

import (
	"testing"

	"github.com/heruix/boomerang/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario E: match a+b where typeof(a)=int, become plus(a,b); applied to
// 3+4 with both operands known integer constants folds to the constant 7.
func TestScenarioE_WhereClauseGate(t *testing.T) {
	intType := &expr.Type{Name: "int", Width: 32, Signed: true}
	a := expr.NewIntConst(3)
	a.Type = intType
	target := expr.Binary(expr.OpPlus, a, expr.NewIntConst(4))

	rule := &GenericRule{
		Name:   "fold-plus",
		Match:  expr.Binary(expr.OpPlus, expr.NewVar("a"), expr.NewVar("b")),
		Where:  expr.Binary(expr.OpEquals, expr.Unary(expr.OpTypeOf, expr.NewVar("a")), expr.NewTypeVal(intType)),
		Become: expr.NewFlagCall("plus", expr.NewVar("a"), expr.NewVar("b")),
	}

	out, ok := rule.Apply(target)
	require.True(t, ok)
	assert.Equal(t, int64(7), out.IntVal)
}

func TestWhereClauseFailsWithoutBoundType(t *testing.T) {
	// 'a' here carries no Type, so the typeof(a)=int probe cannot be
	// resolved and the rule must fail explicitly rather than panic.
	target := expr.Binary(expr.OpPlus, expr.NewIntConst(3), expr.NewIntConst(4))

	rule := &GenericRule{
		Name:   "fold-plus",
		Match:  expr.Binary(expr.OpPlus, expr.NewVar("a"), expr.NewVar("b")),
		Where:  expr.Binary(expr.OpEquals, expr.Unary(expr.OpTypeOf, expr.NewVar("a")), expr.NewTypeVal(&expr.Type{Name: "int"})),
		Become: expr.NewFlagCall("plus", expr.NewVar("a"), expr.NewVar("b")),
	}

	out, ok := rule.Apply(target)
	assert.False(t, ok)
	assert.True(t, expr.Equal(out, target))
}

func TestMatchFailureLeavesExpressionUnchanged(t *testing.T) {
	target := expr.Binary(expr.OpMinus, expr.NewRegOf(0), expr.NewIntConst(1))
	rule := &GenericRule{
		Name:   "fold-plus",
		Match:  expr.Binary(expr.OpPlus, expr.NewVar("a"), expr.NewVar("b")),
		Become: expr.NewFlagCall("plus", expr.NewVar("a"), expr.NewVar("b")),
	}
	out, ok := rule.Apply(target)
	assert.False(t, ok)
	assert.True(t, expr.Equal(out, target))
}
