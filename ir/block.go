package ir

// BasicBlock is a maximal straight-line run of statements with a single
// entry and a single exit (§4.3), modeled on ssa.BasicBlock: an index
// within its procedure's block list, the statements it owns in order,
// and explicit predecessor/successor lists that the branch-edge
// convention (§3, Testable Property 6) and dominator computation (§4.3)
// both read directly.
type BasicBlock struct {
	Index int
	Low   Address // address of the first statement, or AddressInvalid
	Proc  *Procedure
	Stmts []Stmt
	Preds []*BasicBlock
	Succs []*BasicBlock

	dom     *domNode
	rpoNum  int // position in the procedure's cached reverse post-order, -1 if stale
}

// NewBasicBlock creates an empty block with no statements and no edges;
// it is registered with a procedure via Procedure.AddBlock.
func NewBasicBlock(low Address) *BasicBlock {
	return &BasicBlock{Low: low, rpoNum: -1}
}

func (b *BasicBlock) String() string {
	if b.Low.Valid() {
		return b.Low.String()
	}
	return "<block>"
}

// renumber assigns sequential per-procedure sequence numbers to every
// statement in the block, in order. Called after any mutation of Stmts.
func (b *BasicBlock) renumber(next func() int) {
	for _, s := range b.Stmts {
		s.SetNum(next())
		s.SetBlock(b)
		if b.Proc != nil {
			s.SetProc(b.Proc)
		}
	}
}

// Append adds s to the end of the block's statement list.
func (b *BasicBlock) Append(s Stmt) {
	b.Stmts = append(b.Stmts, s)
	s.SetBlock(b)
	if b.Proc != nil {
		s.SetProc(b.Proc)
		b.Proc.renumberFrom(b)
	}
}

// InsertBefore inserts s immediately before the statement at index i in
// the block's statement list (i == len(Stmts) appends at the end).
func (b *BasicBlock) InsertBefore(i int, s Stmt) {
	b.Stmts = append(b.Stmts, nil)
	copy(b.Stmts[i+1:], b.Stmts[i:])
	b.Stmts[i] = s
	s.SetBlock(b)
	if b.Proc != nil {
		s.SetProc(b.Proc)
		b.Proc.renumberFrom(b)
	}
}

// PrependPhi inserts a phi assignment at the front of the block, after
// any phis already present but before every non-phi statement, mirroring
// where PhiPlacement (§4.4) must insert new phis: phis occupy a
// contiguous prefix of every block (Testable Property 4).
func (b *BasicBlock) PrependPhi(p *PhiAssign) {
	i := b.phiPrefixLen()
	b.InsertBefore(i, p)
}

// phiPrefixLen returns the length of the contiguous run of PhiAssign
// statements at the front of the block.
func (b *BasicBlock) phiPrefixLen() int {
	n := 0
	for _, s := range b.Stmts {
		if s.Tag() != TagPhiAssign {
			break
		}
		n++
	}
	return n
}

// Phis returns the block's phi-assignment prefix.
func (b *BasicBlock) Phis() []*PhiAssign {
	n := b.phiPrefixLen()
	out := make([]*PhiAssign, 0, n)
	for _, s := range b.Stmts[:n] {
		out = append(out, s.(*PhiAssign))
	}
	return out
}

// RemoveStmt deletes s from the block's statement list, if present.
func (b *BasicBlock) RemoveStmt(s Stmt) {
	for i, st := range b.Stmts {
		if st == s {
			b.Stmts = append(b.Stmts[:i], b.Stmts[i+1:]...)
			if b.Proc != nil {
				b.Proc.renumberFrom(b)
			}
			return
		}
	}
}

// Terminator returns the block's last statement if it is a control-
// transfer variant (Branch/Goto/Case), or nil for a block that falls
// through to a single successor (e.g. the last block of a Return).
func (b *BasicBlock) Terminator() Stmt {
	if len(b.Stmts) == 0 {
		return nil
	}
	last := b.Stmts[len(b.Stmts)-1]
	switch last.Tag() {
	case TagBranch, TagGoto, TagCase:
		return last
	default:
		return nil
	}
}

// addEdge records a successor/predecessor pair between from and to.
func addEdge(from, to *BasicBlock) {
	from.Succs = append(from.Succs, to)
	to.Preds = append(to.Preds, from)
	from.invalidateRPO()
}

// removeEdge drops one from->to successor/predecessor link (the first
// from->to entry in each list), the inverse of addEdge.
func removeEdge(from, to *BasicBlock) {
	for i, s := range from.Succs {
		if s == to {
			from.Succs = append(from.Succs[:i], from.Succs[i+1:]...)
			break
		}
	}
	for i, p := range to.Preds {
		if p == from {
			to.Preds = append(to.Preds[:i], to.Preds[i+1:]...)
			break
		}
	}
	from.invalidateRPO()
}

// replaceSuccessor rewires from's successor at index i to target,
// updating both ends of the edge and dropping any phi operand in the
// old successor that was keyed on from (§3: phi edges are keyed by
// predecessor block, so every edge mutation must rederive them, never
// cache them). SetTaken and SetFallThrough funnel through it, mirroring
// BasicBlock::addSuccessor/removePred in spirit; SplitEdge rewires its
// edges itself.
func replaceSuccessor(from *BasicBlock, i int, target *BasicBlock) {
	if i < 0 || i >= len(from.Succs) {
		return
	}
	old := from.Succs[i]
	if old == target {
		return
	}
	for j, p := range old.Preds {
		if p == from {
			old.Preds = append(old.Preds[:j], old.Preds[j+1:]...)
			break
		}
	}
	for _, phi := range old.Phis() {
		phi.RemoveEdge(from)
	}
	from.Succs[i] = target
	target.Preds = append(target.Preds, from)
	from.invalidateRPO()
}

// SplitEdge inserts a new empty block on the from->to edge, preserving
// every phi operand to's phis carried for from (the new block becomes
// the sole predecessor contributing that value), and returns the new
// block. Used by passes that need a place to land copies/phis on a
// critical edge (an edge whose source has multiple successors and whose
// target has multiple predecessors).
func SplitEdge(proc *Procedure, from, to *BasicBlock) *BasicBlock {
	mid := proc.AddBlock(AddressInvalid)
	for i, s := range from.Succs {
		if s == to {
			from.Succs[i] = mid
			break
		}
	}
	for i, p := range to.Preds {
		if p == from {
			to.Preds[i] = mid
			break
		}
	}
	mid.Preds = []*BasicBlock{from}
	mid.Succs = []*BasicBlock{to}
	for _, phi := range to.Phis() {
		if def, ok := phi.Edges[from]; ok {
			phi.RemoveEdge(from)
			phi.SetEdge(mid, def)
		}
	}
	mid.Append(NewGotoStmt(AddressInvalid))
	from.invalidateRPO()
	to.invalidateRPO()
	return mid
}

func (b *BasicBlock) invalidateRPO() {
	if b.Proc != nil {
		b.Proc.invalidateRPO()
	}
}
