package ir

import "github.com/heruix/boomerang/expr"

// BoolAssign means "Left ← (Cond ? 1 : 0)" (§3). Kind records the
// branch-condition kind it was derived from; IsFloat marks a
// floating-point comparison; Width is the result width in bits.
type BoolAssign struct {
	base
	Left    *expr.Expr
	Cond    *expr.Expr
	Kind    BranchKind
	IsFloat bool
	Width   int
}

func NewBoolAssign(left *expr.Expr, width int) *BoolAssign {
	return &BoolAssign{Left: left, Width: width}
}

func (b *BoolAssign) Tag() Tag { return TagBoolAssign }

func (b *BoolAssign) Operands() []**expr.Expr {
	return []**expr.Expr{&b.Left, &b.Cond}
}

func (b *BoolAssign) Definitions() []*expr.Expr { return []*expr.Expr{b.Left} }

func (b *BoolAssign) UsesExpr(e *expr.Expr) bool {
	if b.Cond != nil {
		if _, ok := expr.Search(b.Cond, e); ok {
			return true
		}
	}
	if b.Left != nil && b.Left.Op == expr.OpMemOf {
		if _, ok := expr.Search(b.Left.Kids[0], e); ok {
			return true
		}
	}
	return false
}

// SetCondType installs the raw CC(kind) condition over the flags
// terminal. It does not construct and discard an intermediate relational
// expression the way the original setCondType does when decompilation is
// disabled (§9's third open question): that construction has no
// observable effect, so it is skipped outright.
func (b *BoolAssign) SetCondType(kind BranchKind, isFloat bool) {
	b.Kind = kind
	b.IsFloat = isFloat
	b.Cond = CondExpr()
}

// MakeSigned rewrites the unsigned comparison family to its signed
// counterpart, leaving every other kind untouched (Testable Property 7,
// Scenario A).
func (b *BoolAssign) MakeSigned() { b.Kind = b.Kind.MakeSigned() }

func (b *BoolAssign) Clone() Stmt {
	return &BoolAssign{
		base: b.base, Left: expr.Clone(b.Left), Cond: expr.Clone(b.Cond),
		Kind: b.Kind, IsFloat: b.IsFloat, Width: b.Width,
	}
}

// PrintCompact renders the statement the way BoolAssign::printCompact
// does: "BOOL <left> := CC(<kind>)[, float]".
func (b *BoolAssign) PrintCompact() string {
	s := "BOOL " + b.Left.String() + " := CC(" + b.Kind.String() + ")"
	if b.IsFloat {
		s += ", float"
	}
	return s
}

func (b *BoolAssign) String() string { return b.PrintCompact() }

// DFATypeAnalysis gives Left a boolean (integer-1) type inherited from the
// condition, rather than delegating to the generic assignment behaviour
// the original leaves "not properly implemented" (§9's second open
// question).
func (b *BoolAssign) DFATypeAnalysis() {
	hint := &expr.Type{Name: "bool", Width: 1, Signed: false}
	b.Left.Type = hint
}
