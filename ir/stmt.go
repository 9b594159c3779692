// Package ir implements the statement IR and the per-procedure control-
// flow graph that owns it (§3, §4.2, §4.3): statements are variants over
// a fixed tag set, each owning its left/right expressions, a link to its
// containing block, a per-procedure sequence number, and visitor entry
// points.
package ir

import "github.com/heruix/boomerang/expr"

// Tag discriminates the statement variant (§3).
type Tag int

const (
	TagAssign Tag = iota
	TagPhiAssign
	TagImplicitAssign
	TagBoolAssign
	TagCall
	TagReturn
	TagBranch
	TagGoto
	TagCase
)

func (t Tag) String() string {
	switch t {
	case TagAssign:
		return "Assign"
	case TagPhiAssign:
		return "PhiAssign"
	case TagImplicitAssign:
		return "ImplicitAssign"
	case TagBoolAssign:
		return "BoolAssign"
	case TagCall:
		return "Call"
	case TagReturn:
		return "Return"
	case TagBranch:
		return "Branch"
	case TagGoto:
		return "Goto"
	case TagCase:
		return "Case"
	default:
		return "?"
	}
}

// Stmt is the common interface over every statement variant (§4.2).
// Every statement reachable from a procedure belongs to exactly one
// basic block and carries a unique per-procedure sequence number.
type Stmt interface {
	Tag() Tag
	Num() int
	SetNum(int)
	Block() *BasicBlock
	SetBlock(*BasicBlock)
	Proc() *Procedure
	SetProc(*Procedure)

	// Operands returns pointers to every expression this statement owns
	// (both definitions and uses), permitting in-place rewriting by
	// generic search/replace. Modeled on ssa.Instruction.Operands from
	// the teacher package.
	Operands() []**expr.Expr

	// Definitions returns the lvalues this statement defines.
	Definitions() []*expr.Expr

	// UsesExpr reports whether e appears syntactically in any rhs or
	// memory-dereference address owned by this statement.
	UsesExpr(e *expr.Expr) bool

	Clone() Stmt
	String() string
}

// base holds the fields every variant shares: sequence number and the
// back-references to owning block/procedure (§9: back-references are
// modeled as pointers into per-procedure arenas here, owned by the
// BasicBlock/Procedure, not by the expression beneath them).
type base struct {
	num   int
	block *BasicBlock
	proc  *Procedure
}

func (b *base) Num() int                  { return b.num }
func (b *base) SetNum(n int)              { b.num = n }
func (b *base) Block() *BasicBlock        { return b.block }
func (b *base) SetBlock(bb *BasicBlock)   { b.block = bb }
func (b *base) Proc() *Procedure          { return b.proc }
func (b *base) SetProc(p *Procedure)      { b.proc = p }

// Search returns the first pre-order match of pattern across every
// expression s owns.
func Search(s Stmt, pattern *expr.Expr) (expr.Location, bool) {
	for _, opnd := range s.Operands() {
		if *opnd == nil {
			continue
		}
		if loc, ok := expr.Search(*opnd, pattern); ok {
			return loc, true
		}
	}
	return expr.Location{}, false
}

// SearchAll returns every pre-order match of pattern across every
// expression s owns.
func SearchAll(s Stmt, pattern *expr.Expr) []expr.Location {
	var out []expr.Location
	for _, opnd := range s.Operands() {
		if *opnd == nil {
			continue
		}
		out = append(out, expr.SearchAll(*opnd, pattern)...)
	}
	return out
}

// SearchReplaceAll rewrites every expression s owns in place, replacing
// every match of pattern with replacement, and reports whether anything
// changed.
func SearchReplaceAll(s Stmt, pattern, replacement *expr.Expr) bool {
	changed := false
	for _, opnd := range s.Operands() {
		if *opnd == nil {
			continue
		}
		newE, ch := expr.SearchReplaceAll(*opnd, pattern, replacement)
		if ch {
			*opnd = newE
			changed = true
		}
	}
	return changed
}
