package pass

import (
	"io"

	"github.com/heruix/boomerang/ir"
)

// Group is a named, ordered run of passes executed as a unit (§4.4),
// mirroring PassManager's createPassGroup/executePassGroup.
type Group struct {
	Name      string
	Passes    []string // pass names, resolved against a Registry
	Iterating map[string]bool // pass name -> run this one pass to fixed point within the group
}

// Groups returns the canonical phase ordering from §4.4's table.
func Groups() []Group {
	return []Group{
		{
			Name:      "Early",
			Passes:    []string{"StatementInit", "GlobalConstReplace", "BBSimplify", "StatementPropagation"},
			Iterating: map[string]bool{"StatementPropagation": true},
		},
		{
			Name:   "SSA construction",
			Passes: []string{"Dominators", "PhiPlacement", "BlockVarRename"},
		},
		{
			Name: "Middle",
			Passes: []string{
				"CallAndPhiFix", "SPPreservation", "PreservationAnalysis",
				"StrengthReductionReversal", "AssignRemoval", "DuplicateArgsRemoval",
				"ParameterSymbolMap",
			},
			Iterating: map[string]bool{"PreservationAnalysis": true},
		},
		{
			Name:   "Type",
			Passes: []string{"LocalTypeAnalysis"},
		},
		{
			Name: "Late",
			Passes: []string{
				"BranchAnalysis", "CallLivenessRemoval", "UnusedStatementRemoval",
				"FromSSAForm", "FinalParameterSearch", "UnusedLocalRemoval",
				"UnusedParamRemoval", "ImplicitPlacement", "LocalAndParamMap",
			},
			Iterating: map[string]bool{"UnusedStatementRemoval": true},
		},
	}
}

// RunGroup executes every pass in g against proc, in declared order,
// running the group's designated iterating passes to a fixed point.
// Warning-level diagnostics from every pass go to reporter (nil defaults
// to os.Stderr, per Pass.Execute).
func RunGroup(r *Registry, g Group, proc *ir.Procedure, reporter io.Writer) (changed bool, err error) {
	for _, name := range g.Passes {
		p, ok := r.Lookup(name)
		if !ok {
			return changed, ir.NewFault(proc.Name, -1, unknownPassError(name))
		}
		var ch bool
		if g.Iterating[name] {
			ch, err = runToFixpoint(p, proc, reporter)
		} else {
			ch, err = p.Execute(proc, reporter)
		}
		if err != nil {
			return changed, err
		}
		changed = changed || ch
	}
	return changed, nil
}

// RunPipeline executes every group in canonical order once through.
func RunPipeline(r *Registry, proc *ir.Procedure, reporter io.Writer) (changed bool, err error) {
	for _, g := range Groups() {
		ch, err := RunGroup(r, g, proc, reporter)
		if err != nil {
			return changed, err
		}
		changed = changed || ch
	}
	return changed, nil
}
