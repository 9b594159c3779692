package ir

import "github.com/heruix/boomerang/expr"

// CallStmt represents a call to Dest (an address, or DestExpr for an
// indirect call). Args and Defs are themselves statements — Assigns that
// bind each actual argument location on entry, and each possibly-
// clobbered/returned location on exit — so the usual statement machinery
// (search/replace, def/use) applies uniformly to call arguments and
// definitions (§3).
type CallStmt struct {
	base
	Dest      Address
	DestExpr  *expr.Expr
	Args      []Stmt
	Defs      []Stmt
	Signature *Signature
}

func NewCallStmt(dest Address) *CallStmt { return &CallStmt{Dest: dest} }

func (c *CallStmt) Tag() Tag { return TagCall }

func (c *CallStmt) Operands() []**expr.Expr {
	ops := []**expr.Expr{&c.DestExpr}
	for _, a := range c.Args {
		ops = append(ops, a.Operands()...)
	}
	for _, d := range c.Defs {
		ops = append(ops, d.Operands()...)
	}
	return ops
}

func (c *CallStmt) Definitions() []*expr.Expr {
	var out []*expr.Expr
	for _, d := range c.Defs {
		out = append(out, d.Definitions()...)
	}
	return out
}

func (c *CallStmt) UsesExpr(e *expr.Expr) bool {
	if c.DestExpr != nil {
		if _, ok := expr.Search(c.DestExpr, e); ok {
			return true
		}
	}
	for _, a := range c.Args {
		if a.UsesExpr(e) {
			return true
		}
	}
	return false
}

func (c *CallStmt) Clone() Stmt {
	clone := &CallStmt{base: c.base, Dest: c.Dest, DestExpr: expr.Clone(c.DestExpr), Signature: c.Signature}
	for _, a := range c.Args {
		clone.Args = append(clone.Args, a.Clone())
	}
	for _, d := range c.Defs {
		clone.Defs = append(clone.Defs, d.Clone())
	}
	return clone
}

func (c *CallStmt) String() string {
	s := "CALL " + c.Dest.String() + "("
	for i, a := range c.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

// Signature describes a procedure's parameters, returns and calling
// convention — enough for the pass pipeline's liveness/preservation/
// parameter-search passes to reason about call sites without needing the
// (out-of-scope) front end's full ABI model.
type Signature struct {
	Name       string
	Params     []*expr.Expr // parameter locations, in calling-convention order
	Returns    []*expr.Expr // returned-value locations
	Preserved  map[string]bool // location name -> preserved across the call
	Convention string
}
