package pass

import (
	"io"

	"github.com/heruix/boomerang/expr"
	"github.com/heruix/boomerang/ir"
)

// CallAndPhiFix ensures every location a call's signature promises to
// return has a concrete defining Assign among the call's Defs, so later
// def/use and phi machinery has a statement to point at.
type CallAndPhiFix struct{}

func (CallAndPhiFix) Name() string { return "CallAndPhiFix" }

func (CallAndPhiFix) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	changed := false
	for _, s := range proc.Statements() {
		call, ok := s.(*ir.CallStmt)
		if !ok || call.Signature == nil {
			continue
		}
		have := map[string]bool{}
		for _, d := range call.Defs {
			for _, def := range d.Definitions() {
				have[def.String()] = true
			}
		}
		for _, ret := range call.Signature.Returns {
			if have[ret.String()] {
				continue
			}
			call.Defs = append(call.Defs, ir.NewAssign(ret, expr.NewTerminal("%result")))
			changed = true
		}
	}
	return changed, nil
}

// SPPreservation recognises the common entry/exit stack-adjustment
// pattern ("sp := sp - K" on entry, "sp := sp + K" on every return) and
// marks the stack pointer preserved, ahead of the general fixpoint
// PreservationAnalysis pass (§4.4).
type SPPreservation struct{}

func (SPPreservation) Name() string { return "SPPreservation" }

const spName = "%SP"

func (SPPreservation) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	if proc.Entry == nil || proc.Signature == nil {
		return false, nil
	}
	entryAdj, ok := spAdjustment(proc.Entry)
	if !ok {
		return false, nil
	}
	for _, b := range proc.Blocks {
		if _, isRet := findReturn(b); !isRet {
			continue
		}
		exitAdj, ok := spAdjustment(b)
		if !ok || exitAdj != -entryAdj {
			return false, nil
		}
	}
	if proc.Signature.Preserved == nil {
		proc.Signature.Preserved = map[string]bool{}
	}
	if proc.Signature.Preserved[spName] {
		return false, nil
	}
	proc.Signature.Preserved[spName] = true
	return true, nil
}

func findReturn(b *ir.BasicBlock) (ir.Stmt, bool) {
	for _, s := range b.Stmts {
		if s.Tag() == ir.TagReturn {
			return s, true
		}
	}
	return nil, false
}

// spAdjustment reports the net constant delta applied to %SP by "sp :=
// sp + K" / "sp := sp - K" assignments in b, or ok=false if b contains no
// such assignment.
func spAdjustment(b *ir.BasicBlock) (int64, bool) {
	found := false
	var total int64
	for _, s := range b.Stmts {
		a, ok := s.(*ir.Assign)
		if !ok || a.Left.Op != expr.OpTerminal || a.Left.StrVal != spName {
			continue
		}
		r := a.Right
		if r.Op != expr.OpPlus && r.Op != expr.OpMinus {
			continue
		}
		lhs, rhs := r.Kids[0], r.Kids[1]
		if lhs.Op != expr.OpTerminal || lhs.StrVal != spName || rhs.Op != expr.OpIntConst {
			continue
		}
		delta := rhs.IntVal
		if r.Op == expr.OpMinus {
			delta = -delta
		}
		total += delta
		found = true
	}
	return total, found
}

// PreservationAnalysis computes, by fixpoint, the set of locations whose
// value at every return equals their value on entry (§4.4): a location
// is preserved unless some statement defines it without the net-zero
// exception SPPreservation already grants the stack pointer.
type PreservationAnalysis struct{}

func (PreservationAnalysis) Name() string { return "PreservationAnalysis" }

func (PreservationAnalysis) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	if proc.Signature == nil {
		return false, nil
	}
	if proc.Signature.Preserved == nil {
		proc.Signature.Preserved = map[string]bool{}
	}
	changed := false
	defined := map[string]bool{}
	for _, s := range proc.Statements() {
		for _, d := range s.Definitions() {
			defined[d.String()] = true
		}
	}
	for key := range proc.UsedLocations() {
		if key == spName {
			continue // handled by SPPreservation's net-adjustment exception
		}
		want := !defined[key]
		if proc.Signature.Preserved[key] != want {
			proc.Signature.Preserved[key] = want
			changed = true
		}
	}
	return changed, nil
}

// StrengthReductionReversal undoes the compiler's strength reduction,
// rewriting a left-shift by a constant back into the multiplication it
// replaced, restoring the high-level operation the rest of the pipeline
// (and eventually the back end) expects to see.
type StrengthReductionReversal struct{}

func (StrengthReductionReversal) Name() string { return "StrengthReductionReversal" }

func (StrengthReductionReversal) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	changed := false
	for _, s := range proc.Statements() {
		for _, opnd := range s.Operands() {
			if *opnd == nil {
				continue
			}
			if out, ch := reverseShifts(*opnd); ch {
				*opnd = out
				changed = true
			}
		}
	}
	return changed, nil
}

func reverseShifts(e *expr.Expr) (*expr.Expr, bool) {
	if e == nil {
		return nil, false
	}
	changed := false
	n := expr.Arity(e.Op)
	kids := e.Kids
	for i := 0; i < n; i++ {
		if c, ch := reverseShifts(e.Kids[i]); ch {
			kids[i] = c
			changed = true
		}
	}
	out := &expr.Expr{Op: e.Op, Kids: kids, IntVal: e.IntVal, FloatVal: e.FloatVal, StrVal: e.StrVal, Type: e.Type}
	if out.Op == expr.OpShiftL && out.Kids[1].Op == expr.OpIntConst && out.Kids[1].IntVal > 0 {
		return expr.Binary(expr.OpMult, out.Kids[0], expr.NewIntConst(1<<uint(out.Kids[1].IntVal))), true
	}
	return out, changed
}

// AssignRemoval deletes identity assignments ("x := x"), a cleanup step
// after propagation and strength-reduction reversal may have introduced
// or exposed them.
type AssignRemoval struct{}

func (AssignRemoval) Name() string { return "AssignRemoval" }

func (AssignRemoval) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	changed := false
	for _, b := range proc.Blocks {
		var kept []ir.Stmt
		for _, s := range b.Stmts {
			if a, ok := s.(*ir.Assign); ok && expr.Equal(a.Left, a.Right) {
				changed = true
				continue
			}
			kept = append(kept, s)
		}
		if changed {
			b.Stmts = kept
		}
	}
	if changed {
		proc.Renumber()
	}
	return changed, nil
}

// DuplicateArgsRemoval drops a call argument binding that is a byte-for-
// byte duplicate of one already present (the same location bound to the
// same expression), leaving the first occurrence.
type DuplicateArgsRemoval struct{}

func (DuplicateArgsRemoval) Name() string { return "DuplicateArgsRemoval" }

func (DuplicateArgsRemoval) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	changed := false
	for _, s := range proc.Statements() {
		call, ok := s.(*ir.CallStmt)
		if !ok || len(call.Args) < 2 {
			continue
		}
		var kept []ir.Stmt
		seen := map[string]bool{}
		for _, a := range call.Args {
			key := a.String()
			if seen[key] {
				changed = true
				continue
			}
			seen[key] = true
			kept = append(kept, a)
		}
		call.Args = kept
	}
	return changed, nil
}

// ParameterSymbolMap seeds proc.Params from the procedure's call
// signature, giving every declared formal parameter a symbol-table
// entry even before LocalTypeAnalysis has refined its type.
type ParameterSymbolMap struct{}

func (ParameterSymbolMap) Name() string { return "ParameterSymbolMap" }

func (ParameterSymbolMap) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	if proc.Signature == nil {
		return false, nil
	}
	changed := false
	for _, p := range proc.Signature.Params {
		name := p.String()
		if _, ok := proc.Params[name]; !ok {
			proc.Params[name] = p.Type
			changed = true
		}
	}
	return changed, nil
}
