package expr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleExpr() *Expr {
	// (r[0] + 1) * r[1]
	return Binary(OpMult, Binary(OpPlus, NewRegOf(0), NewIntConst(1)), NewRegOf(1))
}

// Property 1: clone equivalence — clone(s) is structurally equal to s but
// shares no nodes with it.
func TestCloneEquivalence(t *testing.T) {
	e := sampleExpr()
	c := Clone(e)
	assert.True(t, Equal(e, c))
	if cmp.Equal(e, c, cmp.Comparer(func(a, b *Expr) bool { return a == b })) {
		t.Fatalf("clone shares the root node with the original")
	}
	// Mutate the clone's leaf in place and confirm the original is untouched.
	c.Kids[0].Kids[1].IntVal = 99
	require.Equal(t, int64(1), e.Kids[0].Kids[1].IntVal)
}

// Property 2: search/replace totality.
func TestSearchReplaceTotality(t *testing.T) {
	e := sampleExpr()
	pattern := NewRegOf(0)

	_, found := Search(e, pattern)
	out, changed := SearchReplace(e, pattern, pattern)
	require.Equal(t, found, changed)
	if found {
		assert.True(t, Equal(out, e))
	}

	missing := NewRegOf(42)
	_, found2 := Search(e, missing)
	assert.False(t, found2)
	_, changed2 := SearchReplace(e, missing, missing)
	assert.False(t, changed2)
}

// Property 3: simplify idempotence.
func TestSimplifyIdempotent(t *testing.T) {
	e := Binary(OpPlus, Binary(OpPlus, NewIntConst(1), NewIntConst(2)), NewRegOf(0))
	once, ch1 := Simplify(e)
	assert.True(t, ch1)
	twice, ch2 := Simplify(once)
	assert.False(t, ch2)
	assert.True(t, Equal(once, twice))
}

func TestSimplifyConstantFolding(t *testing.T) {
	e := Binary(OpPlus, NewIntConst(3), NewIntConst(4))
	out, changed := Simplify(e)
	require.True(t, changed)
	assert.Equal(t, int64(7), out.IntVal)
}

func TestSimplifyIdentities(t *testing.T) {
	cases := []struct {
		name string
		in   *Expr
		want *Expr
	}{
		{"x+0", Binary(OpPlus, NewRegOf(0), NewIntConst(0)), NewRegOf(0)},
		{"x*1", Binary(OpMult, NewRegOf(0), NewIntConst(1)), NewRegOf(0)},
		{"x*0", Binary(OpMult, NewRegOf(0), NewIntConst(0)), NewIntConst(0)},
		{"x&~0", Binary(OpBitAnd, NewRegOf(0), NewIntConst(-1)), NewRegOf(0)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, _ := Simplify(c.in)
			assert.True(t, Equal(out, c.want), "got %s want %s", out, c.want)
		})
	}
}

func TestSimplifyUnsignedToSignedIsNotAutomatic(t *testing.T) {
	// Simplify does not itself rewrite the unsigned relational family into
	// the signed one. Confirm Simplify leaves the operator alone on
	// non-constant operands while still folding constant operands of the
	// same family.
	e := Binary(OpLessU, NewIntConst(1), NewIntConst(2))
	out, changed := Simplify(e)
	require.True(t, changed)
	assert.Equal(t, int64(1), out.IntVal) // folded to the boolean constant 1
	rel, _ := Simplify(Binary(OpLessU, NewRegOf(0), NewRegOf(1)))
	assert.Equal(t, OpLessU, rel.Op)
}

// Property matching round-trip used by xform: match then substitute
// reconstructs an equal expression when become equals match.
func TestMatchSubstituteRoundTrip(t *testing.T) {
	template := Binary(OpPlus, NewVar("a"), NewVar("b"))
	target := Binary(OpPlus, NewRegOf(0), NewIntConst(5))
	bindings, ok := Match(target, template)
	require.True(t, ok)
	got := Substitute(template, bindings)
	assert.True(t, Equal(got, target))
}

// Scenario E without its where clause (xform/rule_test.go covers the
// typeof gate): match a+b, become plus(a,b); applied to 3+4 the
// substituted plus(3,4) folds to the constant 7.
func TestScenarioE_GenericRewriteConstantFold(t *testing.T) {
	target := Binary(OpPlus, NewIntConst(3), NewIntConst(4))
	become := NewFlagCall("plus", NewVar("a"), NewVar("b"))
	template := Binary(OpPlus, NewVar("a"), NewVar("b"))

	bindings, ok := Match(target, template)
	require.True(t, ok)
	rewritten := Substitute(become, bindings)
	require.False(t, HasFreeVar(rewritten))

	result, changed := Simplify(rewritten)
	require.True(t, changed)
	assert.Equal(t, int64(7), result.IntVal)
}

func TestSearchAllNonOverlapping(t *testing.T) {
	e := Binary(OpPlus, NewRegOf(0), Binary(OpPlus, NewRegOf(0), NewRegOf(0)))
	locs := SearchAll(e, NewRegOf(0))
	assert.Len(t, locs, 3)
}

func TestSearchReplaceAllSinglePass(t *testing.T) {
	e := Binary(OpPlus, NewRegOf(0), NewRegOf(0))
	out, changed := SearchReplaceAll(e, NewRegOf(0), Binary(OpPlus, NewRegOf(0), NewIntConst(1)))
	require.True(t, changed)
	// Each r[0] becomes (r[0]+1); the replacement text is not re-scanned,
	// so the result still has exactly two r[0] leaves, not four.
	assert.Len(t, SearchAll(out, NewRegOf(0)), 2)
}
