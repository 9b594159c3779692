package pass

import (
	"io"

	"github.com/heruix/boomerang/expr"
	"github.com/heruix/boomerang/ir"
)

// LocalTypeAnalysis propagates type hints through every statement's
// right-hand side via expr.DescendType, derives a signedness hint for
// both operands of a relational branch condition, and gives every
// BoolAssign's destination a concrete boolean type via DFATypeAnalysis
// (§4.4.1).
type LocalTypeAnalysis struct{}

func (LocalTypeAnalysis) Name() string { return "LocalTypeAnalysis" }

func (LocalTypeAnalysis) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	changed := false
	for _, s := range proc.Statements() {
		switch st := s.(type) {
		case *ir.Assign:
			if st.Type == nil {
				continue
			}
			if reconcile(proc, reporter, st.Right, st.Type) {
				changed = true
			}
			if expr.DescendType(st.Right, st.Type, proc.Name) {
				changed = true
			}
		case *ir.BoolAssign:
			prev := st.Left.Type
			st.DFATypeAnalysis()
			if prev == nil || !prev.Equal(st.Left.Type) {
				changed = true
			}
		case *ir.BranchStmt:
			if st.Cond == nil || !expr.IsRelational(st.Cond.Op) {
				continue
			}
			hint := expr.RelationalSignednessHint(st.Cond.Op, widthOf(st.Cond))
			if hint == nil {
				continue
			}
			if reconcile(proc, reporter, st.Cond.Kids[0], hint) {
				changed = true
			}
			if reconcile(proc, reporter, st.Cond.Kids[1], hint) {
				changed = true
			}
			if expr.DescendType(st.Cond.Kids[0], hint, proc.Name) {
				changed = true
			}
			if expr.DescendType(st.Cond.Kids[1], hint, proc.Name) {
				changed = true
			}
		}
	}
	return changed, nil
}

func widthOf(e *expr.Expr) int {
	if e.Type != nil && e.Type.Width != 0 {
		return e.Type.Width
	}
	return 32
}

// reconcile detects a solver inconsistency — e already carries a concrete
// type that disagrees with hint — and resolves it by widening e's type to
// the widest consistent supertype of the two, warning about the conflict
// rather than silently dropping it (§7). expr.DescendType on its own
// leaves an already-typed node other than a size cast untouched on such a
// conflict; reconcile is
// the caller-side check DescendType's owner parameter exists for.
func reconcile(proc *ir.Procedure, reporter io.Writer, e *expr.Expr, hint *expr.Type) bool {
	if e == nil || hint == nil || e.Type == nil || e.Type.Width == 0 {
		return false
	}
	if e.Type.Equal(hint) {
		return false
	}
	width := e.Type.Width
	if hint.Width > width {
		width = hint.Width
	}
	warnf(reporter, "%s: solver inconsistency on %s: %s vs %s, widening to %d bits",
		proc.Name, e.String(), e.Type.Name, hint.Name, width)
	if width == e.Type.Width {
		return false
	}
	e.Type = &expr.Type{Name: e.Type.Name, Width: width, Signed: e.Type.Signed, IsFloat: e.Type.IsFloat}
	return true
}
