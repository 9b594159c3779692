package ir

import "github.com/heruix/boomerang/expr"

// Assign is an ordinary assignment: Left (an lvalue) gets the value of
// Right. Type is the optional declared type of the destination.
type Assign struct {
	base
	Left  *expr.Expr
	Right *expr.Expr
	Type  *expr.Type
}

func NewAssign(left, right *expr.Expr) *Assign {
	return &Assign{Left: left, Right: right}
}

func (a *Assign) Tag() Tag { return TagAssign }

func (a *Assign) Operands() []**expr.Expr {
	return []**expr.Expr{&a.Left, &a.Right}
}

func (a *Assign) Definitions() []*expr.Expr { return []*expr.Expr{a.Left} }

func (a *Assign) UsesExpr(e *expr.Expr) bool {
	if _, ok := expr.Search(a.Right, e); ok {
		return true
	}
	if a.Left != nil && a.Left.Op == expr.OpMemOf {
		if _, ok := expr.Search(a.Left.Kids[0], e); ok {
			return true
		}
	}
	return false
}

func (a *Assign) Clone() Stmt {
	c := &Assign{base: a.base, Left: expr.Clone(a.Left), Right: expr.Clone(a.Right), Type: a.Type}
	return c
}

func (a *Assign) String() string {
	return a.Left.String() + " := " + a.Right.String()
}

// PhiAssign is an SSA join: Left gets whichever operand corresponds to
// the predecessor block actually taken. Edges maps each predecessor
// block to the statement defining the incoming value along that edge;
// there is exactly one operand per predecessor of the phi's block once
// PhiPlacement+BlockVarRename have run (§3, Property 4).
type PhiAssign struct {
	base
	Left  *expr.Expr
	Edges map[*BasicBlock]Stmt
	order []*BasicBlock // insertion order, for deterministic iteration/printing
}

func NewPhiAssign(left *expr.Expr) *PhiAssign {
	return &PhiAssign{Left: left, Edges: make(map[*BasicBlock]Stmt)}
}

func (p *PhiAssign) Tag() Tag { return TagPhiAssign }

func (p *PhiAssign) Operands() []**expr.Expr { return []**expr.Expr{&p.Left} }

func (p *PhiAssign) Definitions() []*expr.Expr { return []*expr.Expr{p.Left} }

func (p *PhiAssign) UsesExpr(e *expr.Expr) bool {
	for _, pred := range p.order {
		def := p.Edges[pred]
		if def == nil {
			continue
		}
		for _, d := range def.Definitions() {
			if expr.Equal(d, e) {
				return true
			}
		}
	}
	return false
}

// SetEdge records the incoming definition for pred, preserving the order
// in which predecessors were first recorded.
func (p *PhiAssign) SetEdge(pred *BasicBlock, def Stmt) {
	if _, ok := p.Edges[pred]; !ok {
		p.order = append(p.order, pred)
	}
	p.Edges[pred] = def
}

// RemoveEdge drops the operand for pred, used when an edge is removed
// from the CFG (§4.3 split_edge / edge mutation).
func (p *PhiAssign) RemoveEdge(pred *BasicBlock) {
	delete(p.Edges, pred)
	for i, b := range p.order {
		if b == pred {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Preds returns the predecessors in the order their edges were recorded.
func (p *PhiAssign) Preds() []*BasicBlock { return p.order }

func (p *PhiAssign) Clone() Stmt {
	c := &PhiAssign{base: p.base, Left: expr.Clone(p.Left), Edges: make(map[*BasicBlock]Stmt, len(p.Edges))}
	for _, b := range p.order {
		c.order = append(c.order, b)
		c.Edges[b] = p.Edges[b]
	}
	return c
}

func (p *PhiAssign) String() string {
	s := p.Left.String() + " := phi("
	for i, b := range p.order {
		if i > 0 {
			s += ", "
		}
		s += b.String()
	}
	return s + ")"
}

// ImplicitAssign materialises the live-in value of Left at procedure
// entry: a placeholder with an implicit/undefined right side, giving the
// back end a concrete binding site for every location used before being
// defined (§4.4, ImplicitPlacement).
type ImplicitAssign struct {
	base
	Left *expr.Expr
}

func NewImplicitAssign(left *expr.Expr) *ImplicitAssign {
	return &ImplicitAssign{Left: left}
}

func (i *ImplicitAssign) Tag() Tag { return TagImplicitAssign }

func (i *ImplicitAssign) Operands() []**expr.Expr { return []**expr.Expr{&i.Left} }

func (i *ImplicitAssign) Definitions() []*expr.Expr { return []*expr.Expr{i.Left} }

func (i *ImplicitAssign) UsesExpr(e *expr.Expr) bool { return false }

func (i *ImplicitAssign) Clone() Stmt {
	return &ImplicitAssign{base: i.base, Left: expr.Clone(i.Left)}
}

func (i *ImplicitAssign) String() string { return i.Left.String() + " := <implicit>" }
