package ir

import "github.com/heruix/boomerang/expr"

// GotoStmt is an unconditional transfer of control, static or computed.
type GotoStmt struct {
	base
	Dest     Address
	DestExpr *expr.Expr
	Computed bool
}

func NewGotoStmt(dest Address) *GotoStmt { return &GotoStmt{Dest: dest} }

func (g *GotoStmt) Tag() Tag { return TagGoto }

func (g *GotoStmt) Operands() []**expr.Expr { return []**expr.Expr{&g.DestExpr} }

func (g *GotoStmt) Definitions() []*expr.Expr { return nil }

func (g *GotoStmt) UsesExpr(e *expr.Expr) bool {
	if g.DestExpr == nil {
		return false
	}
	_, ok := expr.Search(g.DestExpr, e)
	return ok
}

func (g *GotoStmt) Clone() Stmt {
	return &GotoStmt{base: g.base, Dest: g.Dest, DestExpr: expr.Clone(g.DestExpr), Computed: g.Computed}
}

func (g *GotoStmt) String() string { return "GOTO " + g.Dest.String() }

// CaseEntry maps one case value to its target block's address.
type CaseEntry struct {
	Value int64
	Dest  Address
}

// CaseStmt is a multi-way computed branch (switch dispatch) with a
// case-table descriptor (§3).
type CaseStmt struct {
	base
	DestExpr *expr.Expr
	Table    []CaseEntry
}

func NewCaseStmt(destExpr *expr.Expr) *CaseStmt { return &CaseStmt{DestExpr: destExpr} }

func (c *CaseStmt) Tag() Tag { return TagCase }

func (c *CaseStmt) Operands() []**expr.Expr { return []**expr.Expr{&c.DestExpr} }

func (c *CaseStmt) Definitions() []*expr.Expr { return nil }

func (c *CaseStmt) UsesExpr(e *expr.Expr) bool {
	if c.DestExpr == nil {
		return false
	}
	_, ok := expr.Search(c.DestExpr, e)
	return ok
}

func (c *CaseStmt) Clone() Stmt {
	clone := &CaseStmt{base: c.base, DestExpr: expr.Clone(c.DestExpr)}
	clone.Table = append(clone.Table, c.Table...)
	return clone
}

func (c *CaseStmt) String() string { return "CASE " + c.DestExpr.String() }
