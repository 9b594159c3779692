package ir

import "golang.org/x/xerrors"

// Fault is a fatal core error (§7): a malformed-IR invariant violation or
// an unknown pass/group name. The procedure that triggered it is
// abandoned by the caller; Fault carries enough context for the driver's
// diagnostic to name the offending statement.
type Fault struct {
	Proc   string
	StmtNo int // -1 if not statement-specific
	Reason error
}

func (f *Fault) Error() string {
	if f.StmtNo >= 0 {
		return xerrors.Errorf("%s: statement #%d: %w", f.Proc, f.StmtNo, f.Reason).Error()
	}
	return xerrors.Errorf("%s: %w", f.Proc, f.Reason).Error()
}

func (f *Fault) Unwrap() error { return f.Reason }

// NewFault wraps reason as a Fault attributed to proc/stmtNo.
func NewFault(proc string, stmtNo int, reason error) *Fault {
	return &Fault{Proc: proc, StmtNo: stmtNo, Reason: reason}
}

// Malformed builds a Fault for a violated IR invariant, e.g. "branch
// block does not have exactly two successors".
func Malformed(proc string, stmtNo int, format string, args ...interface{}) *Fault {
	return NewFault(proc, stmtNo, xerrors.Errorf(format, args...))
}
