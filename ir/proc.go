package ir

import "github.com/heruix/boomerang/expr"

// Procedure owns a CFG of basic blocks together with the statement
// numbering, symbol tables and dominance caches the pass pipeline reads
// and rebuilds as it runs (§4.2, §4.3).
type Procedure struct {
	Name      string
	Entry     *BasicBlock
	Blocks    []*BasicBlock
	Signature *Signature

	Locals  map[string]*expr.Type // local variable name -> declared type
	Params  map[string]*expr.Type // formal parameter name -> declared type
	Globals map[Address]string   // known global address -> symbolic name, for GlobalConstReplace
	Symbols map[string]*expr.Type // unified local+param symbol table, built by LocalAndParamMap

	nextNum int
	rpo     []*BasicBlock // cached reverse post-order from Entry, nil if stale
	domTree map[*BasicBlock]*domNode
}

// NewProcedure creates an empty procedure with no blocks.
func NewProcedure(name string) *Procedure {
	return &Procedure{
		Name:    name,
		Locals:  make(map[string]*expr.Type),
		Params:  make(map[string]*expr.Type),
		Globals: make(map[Address]string),
	}
}

// Renumber reassigns sequence numbers to every statement in the
// procedure, in block order. Exposed for the StatementInit pass (§4.4),
// which is the pipeline's point of establishing canonical numbering
// before any other pass runs; Append, InsertBefore and RemoveStmt
// already renumber the whole procedure themselves.
func (p *Procedure) Renumber() { p.renumberFrom(nil) }

// AddBlock creates a new block owned by p, appends it to p.Blocks and
// assigns it the next block index. The first block added to an empty
// procedure becomes its entry.
func (p *Procedure) AddBlock(low Address) *BasicBlock {
	b := NewBasicBlock(low)
	b.Proc = p
	b.Index = len(p.Blocks)
	p.Blocks = append(p.Blocks, b)
	if p.Entry == nil {
		p.Entry = b
	}
	p.invalidateRPO()
	return b
}

// AddEdge records a CFG edge from -> to; both blocks must already belong
// to p.
func (p *Procedure) AddEdge(from, to *BasicBlock) { addEdge(from, to) }

// RemoveEdge drops the CFG edge from -> to.
func (p *Procedure) RemoveEdge(from, to *BasicBlock) { removeEdge(from, to) }

// renumberFrom reassigns sequence numbers to every statement in the
// procedure starting from scratch; called after any statement-list
// mutation. Simpler and more robust than patching numbers incrementally,
// and procedures are small enough (single functions) for this to be
// cheap.
func (p *Procedure) renumberFrom(changed *BasicBlock) {
	p.nextNum = 0
	next := func() int { n := p.nextNum; p.nextNum++; return n }
	for _, b := range p.Blocks {
		b.renumber(next)
	}
}

// Statements iterates every statement in the procedure in block order.
func (p *Procedure) Statements() []Stmt {
	var out []Stmt
	for _, b := range p.Blocks {
		out = append(out, b.Stmts...)
	}
	return out
}

// UsedLocations returns the set of distinct location expressions
// (registers, memory-of, named terminals) referenced anywhere in the
// procedure, keyed by their canonical string form, for passes (parameter
// search, unused-local removal) that need the live vocabulary of
// locations without re-walking every statement themselves.
func (p *Procedure) UsedLocations() map[string]*expr.Expr {
	out := make(map[string]*expr.Expr)
	var walk func(e *expr.Expr)
	walk = func(e *expr.Expr) {
		if e == nil {
			return
		}
		switch e.Op {
		case expr.OpRegOf, expr.OpMemOf, expr.OpTerminal:
			out[e.String()] = e
		}
		for i := 0; i < expr.Arity(e.Op); i++ {
			walk(e.Kids[i])
		}
	}
	for _, s := range p.Statements() {
		for _, opnd := range s.Operands() {
			walk(*opnd)
		}
	}
	return out
}

// invalidateRPO drops the cached reverse-post-order and dominator tree;
// called by any edge or block-set mutation (§4.3: dominance must never
// be read stale across a CFG change).
func (p *Procedure) invalidateRPO() {
	p.rpo = nil
	p.domTree = nil
	for _, b := range p.Blocks {
		b.rpoNum = -1
		b.dom = nil
	}
}
