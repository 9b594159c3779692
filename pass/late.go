package pass

import (
	"io"

	"github.com/heruix/boomerang/expr"
	"github.com/heruix/boomerang/ir"
)

// BranchAnalysis recognises, for every branch whose condition still
// references the raw flags terminal, a preceding flag-setting assignment
// (a subflags(a, b) flag call into %flags) and rewrites the condition to
// a typed relational expression consistent with the branch kind (§4.4).
// Kinds with no relational form (overflow/no-overflow/parity) are left
// untouched and do not count toward changed.
type BranchAnalysis struct{}

func (BranchAnalysis) Name() string { return "BranchAnalysis" }

func (BranchAnalysis) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	changed := false
	for _, b := range proc.Blocks {
		for _, s := range b.Stmts {
			if br, ok := s.(*ir.BranchStmt); ok {
				if rewriteBranchCond(proc, reporter, br.Cond, br.Kind, b, br, func(e *expr.Expr) { br.Cond = e }) {
					changed = true
				}
			}
			if ba, ok := s.(*ir.BoolAssign); ok {
				if rewriteBranchCond(proc, reporter, ba.Cond, ba.Kind, b, ba, func(e *expr.Expr) { ba.Cond = e }) {
					changed = true
				}
			}
		}
	}
	return changed, nil
}

// rewriteBranchCond rewrites cond in place via set if it is still the
// raw flags terminal, kind has a relational form, and a subflags(a, b)
// definition of %flags precedes owner in b. A raw-flags condition whose
// kind has no relational form is logged at verbose level (§7) and left
// as-is; this is not a failure, just a kind rewriteBranchCond cannot
// synthesise (overflow/no-overflow/parity).
func rewriteBranchCond(proc *ir.Procedure, reporter io.Writer, cond *expr.Expr, kind ir.BranchKind, b *ir.BasicBlock, owner ir.Stmt, set func(*expr.Expr)) bool {
	if cond == nil || cond.Op != expr.OpTerminal || cond.StrVal != "%flags" {
		return false
	}
	if !kind.HasRelationalForm() {
		warnf(reporter, "%s: unrecognised branch kind %q has no relational form, leaving raw flags condition", proc.Name, kind)
		return false
	}
	a, c, found := precedingSubflags(b, owner)
	if !found {
		return false
	}
	switch kind {
	case ir.CondJMI, ir.CondJPOS:
		// minus/plus test the sign of the flag-setting subtraction a - b.
		signOp := expr.OpLess
		if kind == ir.CondJPOS {
			signOp = expr.OpGreaterEq
		}
		set(expr.Binary(signOp, expr.Binary(expr.OpMinus, a, c), expr.NewIntConst(0)))
		return true
	}
	op, ok := kind.RelOp()
	if !ok {
		return false
	}
	set(expr.Binary(op, a, c))
	return true
}

func precedingSubflags(b *ir.BasicBlock, owner ir.Stmt) (lhs, rhs *expr.Expr, ok bool) {
	for _, s := range b.Stmts {
		if s == owner {
			break
		}
		a, isAssign := s.(*ir.Assign)
		if !isAssign || a.Left.Op != expr.OpTerminal || a.Left.StrVal != "%flags" {
			continue
		}
		if a.Right.Op == expr.OpFlagCall && a.Right.Kids[0].StrVal == "subflags" {
			args := expr.ListItems(a.Right.Kids[1])
			if len(args) == 2 {
				lhs, rhs, ok = args[0], args[1], true
			}
		}
	}
	return
}

// CallLivenessRemoval drops a call's defined location when nothing after
// the call ever uses it (§4.4's CallAndPhiFix/liveness family).
type CallLivenessRemoval struct{}

func (CallLivenessRemoval) Name() string { return "CallLivenessRemoval" }

func (CallLivenessRemoval) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	all := proc.Statements()
	changed := false
	for i, s := range all {
		call, ok := s.(*ir.CallStmt)
		if !ok {
			continue
		}
		after := all[i+1:]
		var kept []ir.Stmt
		for _, d := range call.Defs {
			live := false
			for _, def := range d.Definitions() {
				for _, later := range after {
					if later.UsesExpr(def) {
						live = true
						break
					}
				}
				if live {
					break
				}
			}
			if live {
				kept = append(kept, d)
			} else {
				changed = true
			}
		}
		call.Defs = kept
	}
	return changed, nil
}

// UnusedStatementRemoval deletes a statement whose every definition is
// dead: not used by any other statement. Run to a fixed point by the
// pipeline driver, since removing one dead statement can expose another
// (§4.4).
type UnusedStatementRemoval struct{}

func (UnusedStatementRemoval) Name() string { return "UnusedStatementRemoval" }

func removableTag(t ir.Tag) bool {
	switch t {
	case ir.TagAssign, ir.TagBoolAssign, ir.TagPhiAssign, ir.TagImplicitAssign:
		return true
	default:
		return false
	}
}

func (UnusedStatementRemoval) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	all := proc.Statements()
	changed := false
	for _, b := range proc.Blocks {
		var kept []ir.Stmt
		for _, s := range b.Stmts {
			if !removableTag(s.Tag()) || len(s.Definitions()) == 0 {
				kept = append(kept, s)
				continue
			}
			used := false
			for _, def := range s.Definitions() {
				for _, other := range all {
					if other == s {
						continue
					}
					if other.UsesExpr(def) {
						used = true
						break
					}
				}
				if used {
					break
				}
			}
			if used {
				kept = append(kept, s)
			} else {
				changed = true
			}
		}
		b.Stmts = kept
	}
	if changed {
		proc.Renumber()
	}
	return changed, nil
}

// FromSSAForm replaces every phi with an ordinary move on each incoming
// edge, inserted before the predecessor block's terminator (§4.4).
// Congruence-class coalescing of the resulting SSA-versioned names into
// a single local per variable is not attempted here: this IR identifies
// locations by their expression text rather than a distinct per-version
// symbol, so every incoming edge already targets the same lvalue the
// phi itself names, and no separate coalescing step is needed to
// recover the original (non-versioned) local name.
type FromSSAForm struct{}

func (FromSSAForm) Name() string { return "FromSSAForm" }

func (FromSSAForm) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	changed := false
	for _, b := range proc.Blocks {
		phis := b.Phis()
		if len(phis) == 0 {
			continue
		}
		for _, phi := range phis {
			for _, pred := range phi.Preds() {
				def := phi.Edges[pred]
				if def == nil {
					continue
				}
				var rhs *expr.Expr
				for _, d := range def.Definitions() {
					if d.String() == phi.Left.String() {
						rhs = d
						break
					}
				}
				if rhs == nil {
					continue
				}
				move := ir.NewAssign(expr.Clone(phi.Left), expr.Clone(rhs))
				insertBeforeTerminator(pred, move)
				changed = true
			}
			b.RemoveStmt(phi)
		}
	}
	return changed, nil
}

func insertBeforeTerminator(b *ir.BasicBlock, s ir.Stmt) {
	if t := b.Terminator(); t != nil {
		for i, st := range b.Stmts {
			if st == t {
				b.InsertBefore(i, s)
				return
			}
		}
	}
	b.Append(s)
}

// liveIn returns the set of locations used somewhere in proc but defined
// nowhere — its live-in set at entry — keyed by canonical string form.
// Shared by FinalParameterSearch and ImplicitPlacement, neither of which
// can assume the other has already run: this computes the set directly
// from def/use rather than from ImplicitAssign placeholders, since
// Late-group passes run exactly once per pipeline pass (§4.4, no fixed
// point across the group) and FinalParameterSearch is ordered before
// ImplicitPlacement creates those placeholders.
func liveIn(proc *ir.Procedure) map[string]*expr.Expr {
	defined := map[string]bool{}
	for _, s := range proc.Statements() {
		for _, d := range s.Definitions() {
			defined[d.String()] = true
		}
	}
	out := map[string]*expr.Expr{}
	for key, e := range proc.UsedLocations() {
		if !defined[key] {
			out[key] = e
		}
	}
	return out
}

// FinalParameterSearch infers the final parameter list from the
// procedure's live-in locations — used somewhere, defined nowhere — once
// every other pass has run (§4.4).
type FinalParameterSearch struct{}

func (FinalParameterSearch) Name() string { return "FinalParameterSearch" }

func (FinalParameterSearch) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	if proc.Entry == nil || proc.Signature == nil {
		return false, nil
	}
	have := map[string]bool{}
	for _, p := range proc.Signature.Params {
		have[p.String()] = true
	}
	changed := false
	for key, e := range liveIn(proc) {
		if have[key] {
			continue
		}
		proc.Signature.Params = append(proc.Signature.Params, e)
		have[key] = true
		changed = true
	}
	return changed, nil
}

// UnusedLocalRemoval drops any local symbol-table entry for a location
// that no statement in the procedure references any more.
type UnusedLocalRemoval struct{}

func (UnusedLocalRemoval) Name() string { return "UnusedLocalRemoval" }

func (UnusedLocalRemoval) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	used := proc.UsedLocations()
	changed := false
	for name := range proc.Locals {
		if _, ok := used[name]; !ok {
			delete(proc.Locals, name)
			changed = true
		}
	}
	return changed, nil
}

// UnusedParamRemoval drops a formal parameter not used by any reachable
// statement (§4.4).
type UnusedParamRemoval struct{}

func (UnusedParamRemoval) Name() string { return "UnusedParamRemoval" }

func (UnusedParamRemoval) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	if proc.Signature == nil {
		return false, nil
	}
	used := proc.UsedLocations()
	var kept []*expr.Expr
	changed := false
	for _, p := range proc.Signature.Params {
		if _, ok := used[p.String()]; ok {
			kept = append(kept, p)
		} else {
			changed = true
		}
	}
	proc.Signature.Params = kept
	for name := range proc.Params {
		if _, ok := used[name]; !ok {
			delete(proc.Params, name)
			changed = true
		}
	}
	return changed, nil
}

// ImplicitPlacement materialises an implicit-assignment statement at
// procedure entry for every location used somewhere but defined nowhere,
// giving the back end a concrete binding site (§4.4).
type ImplicitPlacement struct{}

func (ImplicitPlacement) Name() string { return "ImplicitPlacement" }

func (ImplicitPlacement) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	if proc.Entry == nil {
		return false, nil
	}
	have := map[string]bool{}
	for _, s := range proc.Entry.Stmts {
		if ia, ok := s.(*ir.ImplicitAssign); ok {
			have[ia.Left.String()] = true
		}
	}
	changed := false
	for key, e := range liveIn(proc) {
		if have[key] {
			continue
		}
		proc.Entry.InsertBefore(0, ir.NewImplicitAssign(e))
		have[key] = true
		changed = true
	}
	return changed, nil
}

// LocalAndParamMap merges the parameter and local symbol tables into the
// procedure's unified Symbols table the back end reads, parameters
// taking precedence over a local of the same name (§4.4, final pass).
type LocalAndParamMap struct{}

func (LocalAndParamMap) Name() string { return "LocalAndParamMap" }

func (LocalAndParamMap) Execute(proc *ir.Procedure, reporter io.Writer) (bool, error) {
	if proc.Symbols == nil {
		proc.Symbols = map[string]*expr.Type{}
	}
	changed := false
	for name, t := range proc.Locals {
		if cur, ok := proc.Symbols[name]; !ok || cur != t {
			proc.Symbols[name] = t
			changed = true
		}
	}
	for name, t := range proc.Params {
		if cur, ok := proc.Symbols[name]; !ok || cur != t {
			proc.Symbols[name] = t
			changed = true
		}
	}
	return changed, nil
}
