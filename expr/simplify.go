package expr

// Simplify performs algebraic normalisation (§4.1): constant folding,
// identity laws, flattening of associative chains to a left-leaning
// canonical shape, de-Morgan, size-cast propagation and evaluation of the
// flagCall pseudo-functions when their arguments are constant. De Morgan's
// laws are applied to every negated and/or, whether or not the result is
// shorter. Simplify is total (never fails) and idempotent: a second call
// on its own output reports changed=false.
func Simplify(e *Expr) (*Expr, bool) {
	if e == nil {
		return nil, false
	}
	changed := false

	// Bottom-up: simplify children first.
	n := Arity(e.Op)
	kids := e.Kids
	for i := 0; i < n; i++ {
		k, ch := Simplify(e.Kids[i])
		kids[i] = k
		changed = changed || ch
	}
	cur := &Expr{Op: e.Op, Kids: kids, IntVal: e.IntVal, FloatVal: e.FloatVal, StrVal: e.StrVal, Type: e.Type}

	next, ch := simplifyTop(cur)
	if !ch {
		return next, changed
	}
	// A root rewrite may build new interior nodes (flattening, De Morgan)
	// whose children are not yet simplified, so simplify the result again.
	out, _ := Simplify(next)
	return out, true
}

func isIntConst(e *Expr) (int64, bool) {
	if e != nil && e.Op == OpIntConst {
		return e.IntVal, true
	}
	return 0, false
}

func isFloatLike(e *Expr) (float64, bool) {
	switch {
	case e == nil:
		return 0, false
	case e.Op == OpFloatConst:
		return e.FloatVal, true
	case e.Op == OpIntConst:
		return float64(e.IntVal), true
	}
	return 0, false
}

// simplifyTop applies one rewrite at the root of e (children already
// simplified), reporting whether a rewrite fired.
func simplifyTop(e *Expr) (*Expr, bool) {
	switch e.Op {
	case OpFlagCall:
		return simplifyFlagCall(e)

	case OpSizeCast:
		x := e.Kids[0]
		if v, ok := isIntConst(x); ok {
			width := e.IntVal
			if width > 0 && width < 64 {
				mask := int64(1)<<uint(width) - 1
				return NewIntConst(v & mask), true
			}
			return NewIntConst(v), true
		}
		// size_cast(size_cast(x, w1), w2) -> size_cast(x, min(w1, w2))
		if x.Op == OpSizeCast {
			w := e.IntVal
			if x.IntVal < w {
				w = x.IntVal
			}
			return SizeCast(x.Kids[0], int(w)), true
		}

	case OpNeg:
		if v, ok := isIntConst(e.Kids[0]); ok {
			return NewIntConst(-v), true
		}
		if v, ok := isFloatLike(e.Kids[0]); ok && e.Kids[0].Op == OpFloatConst {
			return NewFloatConst(-v), true
		}
		if e.Kids[0].Op == OpNeg { // neg(neg(x)) -> x
			return e.Kids[0].Kids[0], true
		}

	case OpBitNeg:
		if v, ok := isIntConst(e.Kids[0]); ok {
			return NewIntConst(^v), true
		}

	case OpNot:
		if v, ok := isIntConst(e.Kids[0]); ok {
			if v == 0 {
				return NewIntConst(1), true
			}
			return NewIntConst(0), true
		}
		if e.Kids[0].Op == OpNot { // !!x -> x
			return e.Kids[0].Kids[0], true
		}
		// De Morgan: !(a and b) -> !a or !b ; !(a or b) -> !a and !b
		if inner := e.Kids[0]; inner.Op == OpAnd || inner.Op == OpOr {
			outOp := OpOr
			if inner.Op == OpOr {
				outOp = OpAnd
			}
			return Binary(outOp, Unary(OpNot, inner.Kids[0]), Unary(OpNot, inner.Kids[1])), true
		}
		if IsRelational(e.Kids[0].Op) {
			if neg, ok := negateRelational(e.Kids[0].Op); ok {
				return Binary(neg, e.Kids[0].Kids[0], e.Kids[0].Kids[1]), true
			}
		}

	case OpPlus, OpMinus, OpMult, OpMultU, OpDiv, OpDivU, OpMod, OpModU,
		OpBitAnd, OpBitOr, OpBitXor, OpShiftL, OpShiftR, OpShiftRA:
		if out, ok := simplifyArith(e); ok {
			return out, true
		}

	case OpAnd, OpOr:
		if out, ok := simplifyLogical(e); ok {
			return out, true
		}

	case OpEquals, OpNotEqual, OpLess, OpLessEq, OpGreater, OpGreaterEq,
		OpLessU, OpLessEqU, OpGreaterU, OpGreaterEqU:
		if out, ok := simplifyRelational(e); ok {
			return out, true
		}
	}
	return e, false
}

func negateRelational(op Op) (Op, bool) {
	switch op {
	case OpEquals:
		return OpNotEqual, true
	case OpNotEqual:
		return OpEquals, true
	case OpLess:
		return OpGreaterEq, true
	case OpLessEq:
		return OpGreater, true
	case OpGreater:
		return OpLessEq, true
	case OpGreaterEq:
		return OpLess, true
	case OpLessU:
		return OpGreaterEqU, true
	case OpLessEqU:
		return OpGreaterU, true
	case OpGreaterU:
		return OpLessEqU, true
	case OpGreaterEqU:
		return OpLessU, true
	}
	return op, false
}

func simplifyArith(e *Expr) (*Expr, bool) {
	x, y := e.Kids[0], e.Kids[1]

	if xv, ok := isIntConst(x); ok {
		if yv, ok := isIntConst(y); ok {
			switch e.Op {
			case OpPlus:
				return NewIntConst(xv + yv), true
			case OpMinus:
				return NewIntConst(xv - yv), true
			case OpMult, OpMultU:
				return NewIntConst(xv * yv), true
			case OpDiv, OpDivU:
				if yv != 0 {
					return NewIntConst(xv / yv), true
				}
			case OpMod, OpModU:
				if yv != 0 {
					return NewIntConst(xv % yv), true
				}
			case OpBitAnd:
				return NewIntConst(xv & yv), true
			case OpBitOr:
				return NewIntConst(xv | yv), true
			case OpBitXor:
				return NewIntConst(xv ^ yv), true
			case OpShiftL:
				return NewIntConst(xv << uint(yv)), true
			case OpShiftR, OpShiftRA:
				return NewIntConst(xv >> uint(yv)), true
			}
		}
	}
	if xv, ok := isFloatLike(x); ok {
		if yv, ok := isFloatLike(y); ok && (x.Op == OpFloatConst || y.Op == OpFloatConst) {
			switch e.Op {
			case OpPlus:
				return NewFloatConst(xv + yv), true
			case OpMinus:
				return NewFloatConst(xv - yv), true
			case OpMult, OpMultU:
				return NewFloatConst(xv * yv), true
			case OpDiv, OpDivU:
				if yv != 0 {
					return NewFloatConst(xv / yv), true
				}
			}
		}
	}

	// Identity laws.
	switch e.Op {
	case OpPlus:
		if v, ok := isIntConst(y); ok && v == 0 {
			return x, true
		}
		if v, ok := isIntConst(x); ok && v == 0 {
			return y, true
		}
	case OpMinus:
		if v, ok := isIntConst(y); ok && v == 0 {
			return x, true
		}
		if Equal(x, y) {
			return NewIntConst(0), true
		}
	case OpMult, OpMultU:
		if v, ok := isIntConst(y); ok {
			if v == 1 {
				return x, true
			}
			if v == 0 {
				return NewIntConst(0), true
			}
		}
		if v, ok := isIntConst(x); ok {
			if v == 1 {
				return y, true
			}
			if v == 0 {
				return NewIntConst(0), true
			}
		}
	case OpBitAnd:
		if v, ok := isIntConst(y); ok {
			if v == 0 {
				return NewIntConst(0), true
			}
			if v == -1 {
				return x, true
			}
		}
	case OpBitOr:
		if v, ok := isIntConst(y); ok {
			if v == -1 {
				return NewIntConst(-1), true
			}
			if v == 0 {
				return x, true
			}
		}
	case OpShiftL, OpShiftR, OpShiftRA:
		if v, ok := isIntConst(y); ok && v == 0 {
			return x, true
		}
	}

	// Flatten associative chains (+, *, &, |, ^) to a left-leaning shape:
	// a + (b + c) -> (a + b) + c. This is the canonical shape the spec
	// calls for; it also exposes further constant folding, which Simplify
	// picks up when it re-simplifies the rewritten node.
	if isAssociative(e.Op) && y.Op == e.Op {
		return Binary(e.Op, Binary(e.Op, x, y.Kids[0]), y.Kids[1]), true
	}
	return nil, false
}

func isAssociative(op Op) bool {
	switch op {
	case OpPlus, OpMult, OpMultU, OpBitAnd, OpBitOr, OpBitXor:
		return true
	}
	return false
}

func simplifyLogical(e *Expr) (*Expr, bool) {
	x, y := e.Kids[0], e.Kids[1]
	xv, xok := isIntConst(x)
	yv, yok := isIntConst(y)
	switch e.Op {
	case OpAnd:
		if xok && xv == 0 {
			return NewIntConst(0), true
		}
		if yok && yv == 0 {
			return NewIntConst(0), true
		}
		if xok && xv != 0 {
			return y, true
		}
		if yok && yv != 0 {
			return x, true
		}
	case OpOr:
		if xok && xv != 0 {
			return NewIntConst(1), true
		}
		if yok && yv != 0 {
			return NewIntConst(1), true
		}
		if xok && xv == 0 {
			return y, true
		}
		if yok && yv == 0 {
			return x, true
		}
	}
	return nil, false
}

func simplifyRelational(e *Expr) (*Expr, bool) {
	x, y := e.Kids[0], e.Kids[1]
	if xv, ok := isIntConst(x); ok {
		if yv, ok := isIntConst(y); ok {
			var res bool
			switch e.Op {
			case OpEquals:
				res = xv == yv
			case OpNotEqual:
				res = xv != yv
			case OpLess, OpLessU:
				res = xv < yv
			case OpLessEq, OpLessEqU:
				res = xv <= yv
			case OpGreater, OpGreaterU:
				res = xv > yv
			case OpGreaterEq, OpGreaterEqU:
				res = xv >= yv
			}
			if res {
				return NewIntConst(1), true
			}
			return NewIntConst(0), true
		}
	}
	if e.Op == OpEquals && Equal(x, y) {
		return NewIntConst(1), true
	}
	return nil, false
}

// simplifyFlagCall evaluates the plus/neg/memberAtOffset/offsetToMember
// pseudo-functions when their arguments are constants or type values,
// mirroring GenericExpTransformer::applyFuncs in the original source.
func simplifyFlagCall(e *Expr) (*Expr, bool) {
	name := e.Kids[0].StrVal
	args := ListItems(e.Kids[1])

	switch name {
	case "plus":
		if len(args) == 2 {
			if a, ok := isIntConst(args[0]); ok {
				if b, ok := isIntConst(args[1]); ok {
					return NewIntConst(a + b), true
				}
			}
		}
	case "neg":
		if len(args) == 1 {
			if a, ok := isIntConst(args[0]); ok {
				return NewIntConst(-a), true
			}
		}
	case "memberAtOffset":
		if len(args) == 2 && args[0].Op == OpTypeVal {
			if off, ok := isIntConst(args[1]); ok {
				if member := args[0].Type.NameAtOffset(int(off) * 8); member != "" {
					return NewStrConst(member), true
				}
			}
		}
	case "offsetToMember":
		if len(args) == 2 && args[0].Op == OpTypeVal && args[1].Op == OpStrConst {
			if off := args[0].Type.OffsetTo(args[1].StrVal); off >= 0 {
				return NewIntConst(int64(off) / 8), true
			}
		}
	}
	return nil, false
}
