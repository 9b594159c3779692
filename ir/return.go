package ir

import "github.com/heruix/boomerang/expr"

// ReturnStmt lists the statements (each an Assign binding a returned
// location) that define this procedure's return values (§3).
type ReturnStmt struct {
	base
	Returns []Stmt
}

func NewReturnStmt() *ReturnStmt { return &ReturnStmt{} }

func (r *ReturnStmt) Tag() Tag { return TagReturn }

func (r *ReturnStmt) Operands() []**expr.Expr {
	var ops []**expr.Expr
	for _, s := range r.Returns {
		ops = append(ops, s.Operands()...)
	}
	return ops
}

func (r *ReturnStmt) Definitions() []*expr.Expr { return nil }

func (r *ReturnStmt) UsesExpr(e *expr.Expr) bool {
	for _, s := range r.Returns {
		if s.UsesExpr(e) {
			return true
		}
		for _, d := range s.Definitions() {
			if expr.Equal(d, e) {
				return true
			}
		}
	}
	return false
}

func (r *ReturnStmt) Clone() Stmt {
	c := &ReturnStmt{base: r.base}
	for _, s := range r.Returns {
		c.Returns = append(c.Returns, s.Clone())
	}
	return c
}

func (r *ReturnStmt) String() string {
	s := "RETURN"
	for _, ret := range r.Returns {
		s += " " + ret.String()
	}
	return s
}
