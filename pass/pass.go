// Package pass implements the ordered optimisation/analysis pipeline of
// §4.4: a fixed sequence of named passes, grouped into phases, each
// transforming a procedure's statement IR in place and reporting whether
// it changed anything. Grounded on
// boomerang/passes/PassManager.cpp's registry-by-name and
// execute/executePassGroup driver.
package pass

import (
	"fmt"
	"io"
	"os"

	"github.com/heruix/boomerang/ir"
)

// Pass is a single pipeline stage. reporter receives warning-level
// diagnostics (§7: solver inconsistency, unrecognised branch kind) that
// do not abort the pass; a nil reporter defaults to os.Stderr, mirroring
// go/ssa/sanity.go's sanityCheck(fn, reporter).
type Pass interface {
	Name() string
	Execute(proc *ir.Procedure, reporter io.Writer) (changed bool, err error)
}

// reporterOrStderr returns w, or os.Stderr if w is nil.
func reporterOrStderr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// warnf writes a formatted warning-level diagnostic to w (or os.Stderr,
// if w is nil), one line per call.
func warnf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(reporterOrStderr(w), format+"\n", args...)
}

// Registry is a read-only-after-construction lookup from pass name to
// implementation, mirroring PassManager's m_passes table (there indexed
// by PassID; here by name, since Go has no call-site equivalent of the
// C++ enum that needs a dense array). The package keeps no process-wide
// instance: each NewRegistry call builds a new one.
type Registry struct {
	byName map[string]Pass
	order  []string
}

// NewRegistry builds the registry containing every named pass in §4.4.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Pass)}
	for _, p := range []Pass{
		&StatementInit{},
		&GlobalConstReplace{},
		&BBSimplify{},
		&StatementPropagation{},
		&Dominators{},
		&PhiPlacement{},
		&BlockVarRename{},
		&CallAndPhiFix{},
		&SPPreservation{},
		&PreservationAnalysis{},
		&StrengthReductionReversal{},
		&AssignRemoval{},
		&DuplicateArgsRemoval{},
		&ParameterSymbolMap{},
		&LocalTypeAnalysis{},
		&BranchAnalysis{},
		&CallLivenessRemoval{},
		&UnusedStatementRemoval{},
		&FromSSAForm{},
		&FinalParameterSearch{},
		&UnusedLocalRemoval{},
		&UnusedParamRemoval{},
		&ImplicitPlacement{},
		&LocalAndParamMap{},
	} {
		r.register(p)
	}
	return r
}

func (r *Registry) register(p Pass) {
	r.byName[p.Name()] = p
	r.order = append(r.order, p.Name())
}

// Lookup returns the named pass, or ok=false if no such pass is
// registered (a Fault in the driver, per §7: unknown pass/group name).
func (r *Registry) Lookup(name string) (Pass, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Names returns every registered pass name, in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Execute runs a single pass by name against proc.
func (r *Registry) Execute(name string, proc *ir.Procedure, reporter io.Writer) (bool, error) {
	p, ok := r.Lookup(name)
	if !ok {
		return false, ir.NewFault(proc.Name, -1, unknownPassError(name))
	}
	return p.Execute(proc, reporter)
}

type unknownPassError string

func (e unknownPassError) Error() string { return "unknown pass: " + string(e) }

// runToFixpoint executes p repeatedly until it reports no further
// change, as §4.4 requires for StatementPropagation, PreservationAnalysis
// and UnusedStatementRemoval.
func runToFixpoint(p Pass, proc *ir.Procedure, reporter io.Writer) (bool, error) {
	any := false
	for {
		ch, err := p.Execute(proc, reporter)
		if err != nil {
			return any, err
		}
		if !ch {
			return any, nil
		}
		any = true
	}
}
