package expr

import "fmt"

// Type is a minimal type-valued leaf payload. The full type lattice lives
// above the core (front end/back end concern); here we only need enough
// structure for size-cast propagation, descendType hints and opTypeVal
// leaves (§4.1, §4.4.1).
type Type struct {
	Name     string
	Width    int  // bits; 0 if unknown
	Signed   bool // meaningful only for integer kinds
	IsFloat  bool
	IsPtr    bool
	Elem     *Type // pointee type, when IsPtr
	Fields   []Field
}

// Field describes one member of a compound (struct-like) type, used by the
// memberAtOffset/offsetToMember pseudo-functions (§9, GenericExpTransformer).
type Field struct {
	Name   string
	Offset int // bits
}

// NameAtOffset returns the name of the field at the given bit offset, or ""
// if none matches. Mirrors CompoundType::getNameAtOffset.
func (t *Type) NameAtOffset(offsetBits int) string {
	if t == nil {
		return ""
	}
	for _, f := range t.Fields {
		if f.Offset == offsetBits {
			return f.Name
		}
	}
	return ""
}

// OffsetTo returns the bit offset of the named field, or -1 if absent.
// Mirrors CompoundType::getOffsetTo.
func (t *Type) OffsetTo(name string) int {
	if t == nil {
		return -1
	}
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Offset
		}
	}
	return -1
}

// Equal reports structural equality of two type descriptors.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Name != o.Name || t.Width != o.Width || t.Signed != o.Signed ||
		t.IsFloat != o.IsFloat || t.IsPtr != o.IsPtr {
		return false
	}
	if t.IsPtr {
		return t.Elem.Equal(o.Elem)
	}
	return true
}

// Expr is a node in an expression tree (§3). Expressions are treated as
// values: rewrites produce new trees and subtrees may be shared between
// owners; there are no cycles. Construct leaves and interior nodes via the
// New* helpers rather than composite literals, so that arity is checked
// once, at the single point of construction.
type Expr struct {
	Op   Op
	Kids [3]*Expr

	IntVal   int64
	FloatVal float64
	StrVal   string
	Type     *Type
}

// newNode validates arity and builds a node; it panics unless exactly
// Arity(op) kids are passed.
func newNode(op Op, kids ...*Expr) *Expr {
	n := Arity(op)
	if len(kids) != n {
		panic(fmt.Sprintf("expr: %s wants %d children, got %d", op, n, len(kids)))
	}
	e := &Expr{Op: op}
	copy(e.Kids[:n], kids)
	return e
}

// Unary builds a 1-ary node, e.g. NewMemOf, NewNeg.
func Unary(op Op, x *Expr) *Expr { return newNode(op, x) }

// Binary builds a 2-ary node.
func Binary(op Op, x, y *Expr) *Expr { return newNode(op, x, y) }

// NewTernary builds the "cond ? then : else" selector.
func NewTernary(cond, then, els *Expr) *Expr { return newNode(OpTernary, cond, then, els) }

// NewIntConst builds an integer constant leaf.
func NewIntConst(v int64) *Expr { return &Expr{Op: OpIntConst, IntVal: v} }

// NewFloatConst builds a floating constant leaf.
func NewFloatConst(v float64) *Expr { return &Expr{Op: OpFloatConst, FloatVal: v} }

// NewStrConst builds a string constant leaf.
func NewStrConst(s string) *Expr { return &Expr{Op: OpStrConst, StrVal: s} }

// NewTerminal builds a named terminal leaf (flags register, stack pointer, ...).
func NewTerminal(name string) *Expr { return &Expr{Op: OpTerminal, StrVal: name} }

// NewRegOf builds a register-reference leaf.
func NewRegOf(reg int64) *Expr { return &Expr{Op: OpRegOf, IntVal: reg} }

// NewWild builds the wildcard leaf used by search/searchAll.
func NewWild() *Expr { return &Expr{Op: OpWild} }

// NewVar builds a pattern-variable leaf used by xform rule templates.
func NewVar(name string) *Expr { return &Expr{Op: OpVar, StrVal: name} }

// NewNil builds the list terminator leaf.
func NewNil() *Expr { return &Expr{Op: OpNil} }

// NewTypeVal builds a type-valued leaf.
func NewTypeVal(t *Type) *Expr { return &Expr{Op: OpTypeVal, Type: t} }

// NewList builds a cons cell; NewListOf builds a properly Nil-terminated
// list from a slice, mirroring opList's use as the flagCall argument vector.
func NewList(head, tail *Expr) *Expr { return newNode(OpList, head, tail) }

func NewListOf(items ...*Expr) *Expr {
	list := NewNil()
	for i := len(items) - 1; i >= 0; i-- {
		list = NewList(items[i], list)
	}
	return list
}

// ListItems flattens an OpList chain back into a slice; it stops at the
// first non-list, non-nil tail (malformed input) or at OpNil.
func ListItems(e *Expr) []*Expr {
	var out []*Expr
	for e != nil && e.Op == OpList {
		out = append(out, e.Kids[0])
		e = e.Kids[1]
	}
	return out
}

// NewFlagCall builds a flag-call pseudo-function node, e.g. subflags(a, b).
func NewFlagCall(name string, args ...*Expr) *Expr {
	return newNode(OpFlagCall, NewStrConst(name), NewListOf(args...))
}

// SizeCast wraps x in a size-cast to the given bit width.
func SizeCast(x *Expr, width int) *Expr {
	e := Unary(OpSizeCast, x)
	e.IntVal = int64(width)
	return e
}

// Clone returns a deep structural copy of e, sharing no nodes with e.
// nil clones to nil.
func Clone(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	c := &Expr{Op: e.Op, IntVal: e.IntVal, FloatVal: e.FloatVal, StrVal: e.StrVal, Type: e.Type}
	for i := 0; i < Arity(e.Op); i++ {
		c.Kids[i] = Clone(e.Kids[i])
	}
	return c
}

// Equal reports structural equality of a and b, modulo sharing: two
// distinct trees with the same shape and leaf payloads are equal.
func Equal(a, b *Expr) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Op != b.Op {
		return false
	}
	switch a.Op {
	case OpIntConst:
		return a.IntVal == b.IntVal
	case OpFloatConst:
		return a.FloatVal == b.FloatVal
	case OpStrConst, OpTerminal, OpVar:
		return a.StrVal == b.StrVal
	case OpRegOf:
		return a.IntVal == b.IntVal
	case OpTypeVal:
		return a.Type.Equal(b.Type)
	case OpWild, OpNil:
		return true
	}
	if a.Op == OpSizeCast && a.IntVal != b.IntVal {
		return false
	}
	n := Arity(a.Op)
	for i := 0; i < n; i++ {
		if !Equal(a.Kids[i], b.Kids[i]) {
			return false
		}
	}
	return true
}

// String renders e in a compact infix/prefix form suitable for diagnostics
// and the Scenario A/B textual expectations in the spec's testable
// properties section.
func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Op {
	case OpIntConst:
		return fmt.Sprintf("%d", e.IntVal)
	case OpFloatConst:
		return fmt.Sprintf("%g", e.FloatVal)
	case OpStrConst:
		return fmt.Sprintf("%q", e.StrVal)
	case OpTerminal:
		return e.StrVal
	case OpVar:
		return "var(" + e.StrVal + ")"
	case OpWild:
		return "?"
	case OpNil:
		return "nil"
	case OpRegOf:
		return fmt.Sprintf("r[%d]", e.IntVal)
	case OpTypeVal:
		if e.Type != nil {
			return e.Type.Name
		}
		return "typeval(?)"
	case OpMemOf:
		return "m[" + e.Kids[0].String() + "]"
	case OpAddrOf:
		return "a[" + e.Kids[0].String() + "]"
	case OpNeg, OpBitNeg, OpNot, OpTypeOf, OpKindOf:
		return e.Op.String() + "(" + e.Kids[0].String() + ")"
	case OpSizeCast:
		return fmt.Sprintf("%d:%s", e.IntVal, e.Kids[0].String())
	case OpTernary:
		return e.Kids[0].String() + " ? " + e.Kids[1].String() + " : " + e.Kids[2].String()
	case OpList:
		return "(" + e.Kids[0].String() + " . " + e.Kids[1].String() + ")"
	case OpFlagCall:
		items := ListItems(e.Kids[1])
		s := e.Kids[0].StrVal + "("
		for i, it := range items {
			if i > 0 {
				s += ", "
			}
			s += it.String()
		}
		return s + ")"
	default:
		if Arity(e.Op) == 2 {
			return "(" + e.Kids[0].String() + " " + e.Op.String() + " " + e.Kids[1].String() + ")"
		}
		return e.Op.String()
	}
}
