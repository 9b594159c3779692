// Package xform implements the generic, rule-based expression rewriter
// of §4.5: match/where/become templates applied against a concrete
// expression, grounded on
// boomerang/transform/GenericExpTransformer.cpp's applyTo/checkCond.
package xform

import "github.com/heruix/boomerang/expr"

// GenericRule is one rewrite rule: unify Match against a target
// expression, evaluate the optional Where conjunction against the
// resulting bindings, and instantiate Become under the (possibly
// extended) bindings.
type GenericRule struct {
	Name   string
	Match  *expr.Expr
	Where  *expr.Expr // nil means no condition; otherwise a conjunction (opAnd) of opEquals probes
	Become *expr.Expr
}

// Apply runs one rule against e, returning the rewritten expression and
// ok=true if Match unified, Where (if any) held, and Become contained no
// unbound var after substitution. ok=false on a failed match or an
// unsatisfiable Where — in particular when Where probes typeof(x) for a
// binding whose Type is nil, mirroring checkCond's "no type for typeof"
// path in the original transformer, which always took that branch since
// its type solver was never wired up. A become template that still
// contains a free variable after a successful match is a malformed rule
// set and panics (§7, Transformer failure — a hard assertion, not a
// recoverable error).
func (r *GenericRule) Apply(e *expr.Expr) (result *expr.Expr, ok bool) {
	bindings, matched := expr.Match(e, r.Match)
	if !matched {
		return e, false
	}
	if r.Where != nil {
		bindings, ok = checkCond(r.Where, bindings)
		if !ok {
			return e, false
		}
	}
	out := expr.Substitute(r.Become, bindings)
	if expr.HasFreeVar(out) {
		panic("xform: become template for rule " + r.Name + " still has an unbound var after substitution")
	}
	out, _ = expr.Simplify(out)
	return out, true
}

// checkCond evaluates cond under bindings, returning the (possibly
// extended) bindings and whether every conjunct held. Only opAnd and
// opEquals conjuncts are understood, as in the original; anything else
// is an unconditional failure.
func checkCond(cond *expr.Expr, bindings expr.Bindings) (expr.Bindings, bool) {
	switch cond.Op {
	case expr.OpAnd:
		b1, ok1 := checkCond(cond.Kids[0], bindings)
		if !ok1 {
			return bindings, false
		}
		return checkCond(cond.Kids[1], b1)

	case expr.OpEquals:
		lhs := expr.Substitute(cond.Kids[0], bindings)
		rhs := expr.Substitute(cond.Kids[1], bindings)

		switch lhs.Op {
		case expr.OpTypeOf:
			inner := lhs.Kids[0]
			if inner.Type == nil {
				return bindings, false
			}
			lhs = expr.NewTypeVal(inner.Type)
		case expr.OpKindOf:
			lhs = expr.NewStrConst(lhs.Kids[0].Op.String())
		}
		rhs, _ = expr.Simplify(rhs)

		if lhs.Op == expr.OpVar {
			return append(bindings, expr.Binding{Name: lhs.StrVal, Expr: rhs}), true
		}
		if expr.Equal(lhs, rhs) {
			return bindings, true
		}
		if extra, ok := expr.Match(rhs, lhs); ok {
			return append(append(expr.Bindings{}, bindings...), extra...), true
		}
		return bindings, false

	default:
		return bindings, false
	}
}
