package expr

// Location identifies a node within an expression tree by the path of
// child indices from the root, enabling callers to revisit the exact
// subtree a search found without re-walking from scratch.
type Location struct {
	Expr *Expr
	Path []int
}

// matchOne reports whether e matches pattern at the top level only:
// an OpWild in pattern matches anything; otherwise the operators and leaf
// payloads of e and pattern must agree and every child must match.
func matchOne(e, pattern *Expr) bool {
	if pattern == nil {
		return e == nil
	}
	if pattern.Op == OpWild {
		return e != nil
	}
	if e == nil || e.Op != pattern.Op {
		return false
	}
	switch pattern.Op {
	case OpIntConst:
		return e.IntVal == pattern.IntVal
	case OpFloatConst:
		return e.FloatVal == pattern.FloatVal
	case OpStrConst, OpTerminal, OpVar:
		return e.StrVal == pattern.StrVal
	case OpRegOf:
		return e.IntVal == pattern.IntVal
	case OpTypeVal:
		return e.Type.Equal(pattern.Type)
	case OpNil:
		return true
	}
	for i := 0; i < Arity(pattern.Op); i++ {
		if !matchOne(e.Kids[i], pattern.Kids[i]) {
			return false
		}
	}
	return true
}

// Search returns the location of the first pre-order match of pattern in
// e, or ok=false if there is none. A wildcard leaf in pattern matches any
// subtree.
func Search(e, pattern *Expr) (loc Location, ok bool) {
	var walk func(n *Expr, path []int) (Location, bool)
	walk = func(n *Expr, path []int) (Location, bool) {
		if n == nil {
			return Location{}, false
		}
		if matchOne(n, pattern) {
			p := append([]int(nil), path...)
			return Location{Expr: n, Path: p}, true
		}
		for i := 0; i < Arity(n.Op); i++ {
			if loc, ok := walk(n.Kids[i], append(path, i)); ok {
				return loc, true
			}
		}
		return Location{}, false
	}
	return walk(e, nil)
}

// SearchAll returns the locations of every non-overlapping pre-order match
// of pattern in e: once a subtree matches, its children are not
// separately searched.
func SearchAll(e, pattern *Expr) []Location {
	var out []Location
	var walk func(n *Expr, path []int)
	walk = func(n *Expr, path []int) {
		if n == nil {
			return
		}
		if matchOne(n, pattern) {
			p := append([]int(nil), path...)
			out = append(out, Location{Expr: n, Path: p})
			return
		}
		for i := 0; i < Arity(n.Op); i++ {
			walk(n.Kids[i], append(path, i))
		}
	}
	walk(e, nil)
	return out
}

// replaceFirst walks e in pre-order, replacing the first subtree matching
// pattern with a clone of replacement. It returns the (possibly new) root
// and whether a replacement occurred.
func replaceFirst(e, pattern, replacement *Expr) (*Expr, bool) {
	if e == nil {
		return nil, false
	}
	if matchOne(e, pattern) {
		return Clone(replacement), true
	}
	n := Arity(e.Op)
	if n == 0 {
		return e, false
	}
	out := &Expr{Op: e.Op, IntVal: e.IntVal, FloatVal: e.FloatVal, StrVal: e.StrVal, Type: e.Type}
	copy(out.Kids[:], e.Kids[:])
	for i := 0; i < n; i++ {
		if child, changed := replaceFirst(out.Kids[i], pattern, replacement); changed {
			out.Kids[i] = child
			for j := i + 1; j < n; j++ {
				out.Kids[j] = e.Kids[j]
			}
			return out, true
		}
	}
	return e, false
}

// SearchReplace replaces the first pre-order match of pattern in e with
// replacement, returning the new root and whether anything changed.
func SearchReplace(e, pattern, replacement *Expr) (*Expr, bool) {
	return replaceFirst(e, pattern, replacement)
}

// SearchReplaceAll replaces every non-overlapping pre-order match of
// pattern in e with (independent clones of) replacement, in a single pass:
// the replacement text is never itself re-scanned for further matches.
func SearchReplaceAll(e, pattern, replacement *Expr) (*Expr, bool) {
	changed := false
	var walk func(n *Expr) *Expr
	walk = func(n *Expr) *Expr {
		if n == nil {
			return nil
		}
		if matchOne(n, pattern) {
			changed = true
			return Clone(replacement)
		}
		arity := Arity(n.Op)
		if arity == 0 {
			return n
		}
		out := &Expr{Op: n.Op, IntVal: n.IntVal, FloatVal: n.FloatVal, StrVal: n.StrVal, Type: n.Type}
		childChanged := false
		for i := 0; i < arity; i++ {
			c := walk(n.Kids[i])
			out.Kids[i] = c
			if c != n.Kids[i] {
				childChanged = true
			}
		}
		if !childChanged {
			return n
		}
		return out
	}
	out := walk(e)
	return out, changed
}

// Binding pairs a var(name) pattern leaf's name with the subtree it was
// unified against. Bindings is ordered (first occurrence wins), mirroring
// the association-list semantics of the original transformer's bindings
// list.
type Binding struct {
	Name string
	Expr *Expr
}

type Bindings []Binding

// Lookup returns the bound expression for name, if any.
func (bs Bindings) Lookup(name string) (*Expr, bool) {
	for _, b := range bs {
		if b.Name == name {
			return b.Expr, true
		}
	}
	return nil, false
}

// Match unifies e against template, where template may contain var(name)
// leaves that bind to arbitrary subtrees of e. The same variable occurring
// twice in template must bind to structurally equal subtrees. Returns
// ok=false on any mismatch.
func Match(e, template *Expr) (Bindings, bool) {
	var bindings Bindings
	var unify func(n, t *Expr) bool
	unify = func(n, t *Expr) bool {
		if t == nil {
			return n == nil
		}
		if t.Op == OpVar {
			if bound, ok := bindings.Lookup(t.StrVal); ok {
				return Equal(bound, n)
			}
			bindings = append(bindings, Binding{Name: t.StrVal, Expr: n})
			return true
		}
		if n == nil || n.Op != t.Op {
			return false
		}
		switch t.Op {
		case OpIntConst:
			return n.IntVal == t.IntVal
		case OpFloatConst:
			return n.FloatVal == t.FloatVal
		case OpStrConst, OpTerminal:
			return n.StrVal == t.StrVal
		case OpRegOf:
			return n.IntVal == t.IntVal
		case OpTypeVal:
			return n.Type.Equal(t.Type)
		case OpNil, OpWild:
			return true
		}
		if t.Op == OpSizeCast && n.IntVal != t.IntVal {
			return false
		}
		for i := 0; i < Arity(t.Op); i++ {
			if !unify(n.Kids[i], t.Kids[i]) {
				return false
			}
		}
		return true
	}
	if !unify(e, template) {
		return nil, false
	}
	return bindings, true
}

// Substitute instantiates template under bindings, replacing every
// var(name) leaf with a clone of its bound expression. It is the
// "become" half of the generic rewrite rule (§4.5); a var with no binding
// is left as-is (callers that must reject this, e.g. xform, check for it
// explicitly rather than panicking).
func Substitute(template *Expr, bindings Bindings) *Expr {
	if template == nil {
		return nil
	}
	if template.Op == OpVar {
		if bound, ok := bindings.Lookup(template.StrVal); ok {
			return Clone(bound)
		}
		return Clone(template)
	}
	n := Arity(template.Op)
	out := &Expr{Op: template.Op, IntVal: template.IntVal, FloatVal: template.FloatVal, StrVal: template.StrVal, Type: template.Type}
	for i := 0; i < n; i++ {
		out.Kids[i] = Substitute(template.Kids[i], bindings)
	}
	return out
}

// HasFreeVar reports whether e still contains an unbound var(...) leaf,
// used to detect a malformed transformer rule (§7, Transformer failure).
func HasFreeVar(e *Expr) bool {
	if e == nil {
		return false
	}
	if e.Op == OpVar {
		return true
	}
	for i := 0; i < Arity(e.Op); i++ {
		if HasFreeVar(e.Kids[i]) {
			return true
		}
	}
	return false
}
