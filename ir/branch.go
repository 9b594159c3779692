package ir

import "github.com/heruix/boomerang/expr"

// BranchStmt is a conditional transfer of control (§3). Dest is the fixed
// destination address when the branch target is statically known;
// Computed marks a branch whose destination is only known via DestExpr
// (an indirect/computed branch). Cond is the high-level condition,
// synthesised from the raw flags terminal by BranchAnalysis once
// possible (§4.4).
type BranchStmt struct {
	base
	Dest     Address
	DestExpr *expr.Expr
	Kind     BranchKind
	IsFloat  bool
	Cond     *expr.Expr
	Computed bool
}

func NewBranchStmt(dest Address) *BranchStmt {
	return &BranchStmt{Dest: dest, Cond: CondExpr()}
}

func (br *BranchStmt) Tag() Tag { return TagBranch }

func (br *BranchStmt) Operands() []**expr.Expr {
	return []**expr.Expr{&br.DestExpr, &br.Cond}
}

func (br *BranchStmt) Definitions() []*expr.Expr { return nil }

func (br *BranchStmt) UsesExpr(e *expr.Expr) bool {
	if br.Cond != nil {
		if _, ok := expr.Search(br.Cond, e); ok {
			return true
		}
	}
	if br.DestExpr != nil {
		if _, ok := expr.Search(br.DestExpr, e); ok {
			return true
		}
	}
	return false
}

func (br *BranchStmt) Clone() Stmt {
	return &BranchStmt{
		base: br.base, Dest: br.Dest, DestExpr: expr.Clone(br.DestExpr),
		Kind: br.Kind, IsFloat: br.IsFloat, Cond: expr.Clone(br.Cond), Computed: br.Computed,
	}
}

func (br *BranchStmt) String() string {
	return "BRANCH " + br.Dest.String() + " if " + br.Cond.String()
}

// takenIndex returns the successor index (0 or 1) whose low address
// equals the branch's fixed destination, mirroring
// BranchStatement::getTakenBB's comparison against
// m_parent->getSuccessor(0)->getLowAddr(). It requires the containing
// block to have exactly two successors and a valid fixed destination;
// ok=false otherwise (e.g. a computed branch, §3's convention only binds
// statically-destined branches).
func (br *BranchStmt) takenIndex() (int, bool) {
	b := br.block
	if b == nil || !br.Dest.Valid() || len(b.Succs) != 2 {
		return 0, false
	}
	if b.Succs[0].Low == br.Dest {
		return 0, true
	}
	return 1, true
}

// Taken returns the block reached when the branch condition holds.
func (br *BranchStmt) Taken() *BasicBlock {
	i, ok := br.takenIndex()
	if !ok {
		return nil
	}
	return br.block.Succs[i]
}

// FallThrough returns the block reached when the branch condition fails.
func (br *BranchStmt) FallThrough() *BasicBlock {
	i, ok := br.takenIndex()
	if !ok {
		return nil
	}
	return br.block.Succs[1-i]
}

// SetTaken rewires the taken edge to target bb, preserving the
// invariant that successor 0 is the taken edge iff its low address
// equals the fixed destination (§3, Testable Property 6). Mirrors
// BranchStatement::setTakenBB.
func (br *BranchStmt) SetTaken(bb *BasicBlock) {
	i, ok := br.takenIndex()
	if !ok {
		return
	}
	replaceSuccessor(br.block, i, bb)
	// The fixed destination follows the new taken block, so takenIndex
	// keeps finding it by address.
	br.Dest = bb.Low
}

// SetFallThrough rewires the fall-through edge to target bb. Mirrors
// BranchStatement::setFallBB.
func (br *BranchStmt) SetFallThrough(bb *BasicBlock) {
	i, ok := br.takenIndex()
	if !ok {
		return
	}
	replaceSuccessor(br.block, 1-i, bb)
}
