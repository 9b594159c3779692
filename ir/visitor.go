package ir

import "github.com/heruix/boomerang/expr"

// Three visitor shapes dispatch over the statement variants (§9): a
// read-only observer, an observer that also descends into owned
// expressions, and a modifier that may replace an owned expression root.
// Each shape has its own package-level function (Accept,
// AcceptExprDescend, AcceptModifier); Accept dispatches on the
// statement's concrete variant.

// Visitor observes a statement without touching its expressions.
type Visitor interface {
	VisitAssign(*Assign) bool
	VisitPhiAssign(*PhiAssign) bool
	VisitImplicitAssign(*ImplicitAssign) bool
	VisitBoolAssign(*BoolAssign) bool
	VisitCall(*CallStmt) bool
	VisitReturn(*ReturnStmt) bool
	VisitBranch(*BranchStmt) bool
	VisitGoto(*GotoStmt) bool
	VisitCase(*CaseStmt) bool
}

// ExprVisitor is invoked by ExprDescendVisitor once per owned expression.
type ExprVisitor interface {
	VisitExpr(e *expr.Expr) bool
}

// ExprDescendVisitor observes a statement and then recurses into each
// expression it owns via an ExprVisitor.
type ExprDescendVisitor interface {
	Visitor
	Exprs() ExprVisitor
}

// Modifier may replace the root of any expression it visits; statements
// call it through their Operands so a rewrite is reflected back into the
// owning statement.
type Modifier interface {
	ModifyExpr(e *expr.Expr) *expr.Expr
}

// Accept dispatches v over s using the Visitor shape.
func Accept(s Stmt, v Visitor) bool {
	switch st := s.(type) {
	case *Assign:
		return v.VisitAssign(st)
	case *PhiAssign:
		return v.VisitPhiAssign(st)
	case *ImplicitAssign:
		return v.VisitImplicitAssign(st)
	case *BoolAssign:
		return v.VisitBoolAssign(st)
	case *CallStmt:
		return v.VisitCall(st)
	case *ReturnStmt:
		return v.VisitReturn(st)
	case *BranchStmt:
		return v.VisitBranch(st)
	case *GotoStmt:
		return v.VisitGoto(st)
	case *CaseStmt:
		return v.VisitCase(st)
	default:
		return true
	}
}

// AcceptExprDescend dispatches v over s, then over each operand s owns.
func AcceptExprDescend(s Stmt, v ExprDescendVisitor) bool {
	if !Accept(s, v) {
		return false
	}
	ev := v.Exprs()
	for _, opnd := range s.Operands() {
		if *opnd == nil {
			continue
		}
		if !ev.VisitExpr(*opnd) {
			return false
		}
	}
	return true
}

// AcceptModifier applies m to every expression s owns, writing back any
// replacement root through the operand pointer.
func AcceptModifier(s Stmt, m Modifier) {
	for _, opnd := range s.Operands() {
		if *opnd == nil {
			continue
		}
		*opnd = m.ModifyExpr(*opnd)
	}
}
