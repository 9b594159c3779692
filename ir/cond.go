package ir

import "github.com/heruix/boomerang/expr"

// BranchKind is the condition-code kind carried by BoolAssign and
// BranchStmt (§3), grounded on BranchType in
// boomerang/db/statements/BoolAssign.cpp / BranchStatement.cpp.
type BranchKind int

const (
	CondJE BranchKind = iota
	CondJNE
	CondJSL
	CondJSLE
	CondJSGE
	CondJSG
	CondJUL
	CondJULE
	CondJUGE
	CondJUG
	CondJMI
	CondJPOS
	CondJOF
	CondJNOF
	CondJPAR
)

// String renders the condition kind as printCompact does in the original
// source, e.g. "equals", "signed less", "unsigned greater or equals".
func (k BranchKind) String() string {
	switch k {
	case CondJE:
		return "equals"
	case CondJNE:
		return "not equals"
	case CondJSL:
		return "signed less"
	case CondJSLE:
		return "signed less or equals"
	case CondJSGE:
		return "signed greater or equals"
	case CondJSG:
		return "signed greater"
	case CondJUL:
		return "unsigned less"
	case CondJULE:
		return "unsigned less or equals"
	case CondJUGE:
		return "unsigned greater or equals"
	case CondJUG:
		return "unsigned greater"
	case CondJMI:
		return "minus"
	case CondJPOS:
		return "plus"
	case CondJOF:
		return "overflow"
	case CondJNOF:
		return "no overflow"
	case CondJPAR:
		return "ev parity"
	default:
		return "?"
	}
}

// MakeSigned rewrites the unsigned-comparison family to its signed
// counterpart; every other kind is the identity. Mirrors
// BoolAssign::makeSigned exactly (Testable Property 7).
func (k BranchKind) MakeSigned() BranchKind {
	switch k {
	case CondJUL:
		return CondJSL
	case CondJULE:
		return CondJSLE
	case CondJUGE:
		return CondJSGE
	case CondJUG:
		return CondJSG
	default:
		return k
	}
}

// HasRelationalForm reports whether k can be expressed as a typed
// relational comparison of two operands (§4.4, BranchAnalysis). The
// unsigned-overflow/no-overflow/parity kinds lack a direct relational
// form and must be left as raw-flag conditions.
func (k BranchKind) HasRelationalForm() bool {
	switch k {
	case CondJOF, CondJNOF, CondJPAR:
		return false
	default:
		return true
	}
}

// RelOp returns the expr.Op that synthesises k as a relational
// comparison "a <op> b", and ok=false for every other kind: those with no
// relational form, and minus/plus, which compare the difference a - b
// against zero rather than a against b.
func (k BranchKind) RelOp() (op expr.Op, ok bool) {
	switch k {
	case CondJE:
		return expr.OpEquals, true
	case CondJNE:
		return expr.OpNotEqual, true
	case CondJSL:
		return expr.OpLess, true
	case CondJSLE:
		return expr.OpLessEq, true
	case CondJSGE:
		return expr.OpGreaterEq, true
	case CondJSG:
		return expr.OpGreater, true
	case CondJUL:
		return expr.OpLessU, true
	case CondJULE:
		return expr.OpLessEqU, true
	case CondJUGE:
		return expr.OpGreaterEqU, true
	case CondJUG:
		return expr.OpGreaterU, true
	default:
		return expr.OpInvalid, false
	}
}

// CondExpr builds the raw high-level condition CC(kind) over the machine
// flags terminal, as BoolAssign::setCondType does before decompilation
// overwrites it (§9, open question: we skip that intermediate
// construction and keep this as the one true representation).
func CondExpr() *expr.Expr { return expr.NewTerminal("%flags") }
