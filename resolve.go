package main

// maxInstances bounds generic instantiation so that polymorphic recursion
// such as f<T> calling f<*T> fails instead of looping.
const maxInstances = 1000

type resolver struct {
	s   *Session
	ctx *Context // function being resolved, nil for top-level declarations
}

// Resolve assigns a type to every node, binds forward references, creates
// generic instances and lays out stack frames. It repeats full passes over
// the declarations until one pass changes nothing, then reports the first
// node left without a type.
func (s *Session) Resolve() (err error) {
	defer catchBailout(&err)
	r := &resolver{s: s}
	passes := 0
	for {
		passes++
		changed := false
		// Instances appended during the pass are visited in the same pass.
		for i := 0; i < len(s.decls); i++ {
			if r.resolveDecl(s.decls[i]) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	s.logf("resolved in %d passes", passes)

	for _, d := range s.decls {
		r.checkDecl(d)
	}
	for _, d := range s.decls {
		if d.Kind == NodeFuncDef && !d.Sym.Ctx.IsGeneric() {
			d.Sym.Ctx.Layout()
		}
	}
	r.checkGlobalInits()
	return nil
}

// TypeByName resolves a type name the way declarations do, including the
// on-demand int<N> and uint<N> types.
func (s *Session) TypeByName(name string) (t *Type, err error) {
	defer catchBailout(&err)
	r := &resolver{s: s}
	t = r.lookupType(name, nil)
	if t == nil {
		bailout(ErrSemantic, nil, "unknown type name '%s'", name)
	}
	return t, nil
}

func (r *resolver) resolveDecl(d *Node) bool {
	if d.Kind != NodeFuncDef {
		return r.walk(d)
	}
	if d.Sym.Ctx.IsGeneric() {
		return false
	}
	r.ctx = d.Sym.Ctx
	defer func() { r.ctx = nil }()
	changed := r.walk(d.Lhs)
	changed = r.walk(d.Spec) || changed
	if d.Sym.Type == nil {
		if sig := r.signature(d); sig != nil {
			d.Sym.Type = sig
			changed = true
		}
	}
	return r.walk(d.Rhs) || changed
}

// signature builds the function type of a definition once its parameter and
// result types are known.
func (r *resolver) signature(fn *Node) *Type {
	var params []*Type
	for _, p := range fn.Lhs.Lhs.List() {
		t := p.Spec.Type
		if !IsConcrete(t) {
			return nil
		}
		if t.Kind == TypeVariadic {
			params = append(params, t)
			continue
		}
		params = append(params, &Type{Kind: TypeParam, Name: p.Sym.Name, Base: t})
	}
	if !IsConcrete(fn.Spec.Type) {
		return nil
	}
	return NewFunc(fn.Spec.Type, params)
}

// children lists the sub-nodes of n in source order.
func children(n *Node) []*Node {
	var list []*Node
	add := func(nodes ...*Node) {
		for _, c := range nodes {
			if c != nil {
				list = append(list, c)
			}
		}
	}
	switch n.Kind {
	case NodeBlock, NodeExprList, NodeParamList, NodeDeclSeq, NodeInitList:
		add(n.Lhs.List()...)
	case NodeComposite:
		add(n.Spec)
		add(n.Lhs.List()...)
	case NodeCall:
		add(n.Lhs)
		add(n.Spec.List()...)
		add(n.Rhs)
	case NodeIf, NodeFor:
		add(n.Cond, n.Lhs, n.Rhs)
	case NodeDefVar:
		add(n.Spec, n.Rhs, n.Lhs)
	case NodeCast:
		add(n.Lhs, n.Spec)
	default:
		add(n.Lhs, n.Rhs, n.Cond, n.Spec)
	}
	return list
}

func (r *resolver) walk(n *Node) bool {
	if n == nil {
		return false
	}
	changed := false
	for _, c := range children(n) {
		if r.walk(c) {
			changed = true
		}
	}
	return r.setType(n) || changed
}

func (r *resolver) set(n *Node, t *Type) bool {
	if t == nil || n.Type != nil {
		return false
	}
	n.Type = t
	return true
}

// setType tries to type n from its already visited children. It reports
// whether anything new was learned.
func (r *resolver) setType(n *Node) bool {
	switch n.Kind {
	case NodeType:
		if IsConcrete(n.Type) {
			return false
		}
		t := r.resolveType(n.Type)
		if t == nil || t == n.Type {
			return false
		}
		n.Type = t
		return true
	case NodeParam:
		if n.Sym == nil || n.Sym.Type != nil || !IsConcrete(n.Spec.Type) {
			return false
		}
		if !IsScalar(n.Spec.Type) {
			bailout(ErrSemantic, n.Tok, "parameter '%s' must have scalar type, got %s", n.Sym.Name, n.Spec.Type)
		}
		n.Sym.Type = n.Spec.Type
		return true
	case NodeExtern:
		if n.Sym.Type != nil || !IsConcrete(n.Spec.Type) {
			return false
		}
		n.Sym.Type = n.Spec.Type
		return true
	case NodeTypeDef:
		alias, _ := r.s.types.FindGlobal(n.Name)
		if alias.Base != nil || !IsConcrete(n.Spec.Type) {
			return false
		}
		alias.Base = n.Spec.Type
		return true
	case NodeIdent:
		changed := false
		if n.Sym.Kind == ObjUnresolved {
			obj, ok := r.s.syms.FindGlobal(n.Sym.Name)
			if !ok {
				return false
			}
			n.Sym = obj
			changed = true
		}
		return r.set(n, n.Sym.Type) || changed
	case NodeParamList, NodeDeclSeq, NodeFuncDef, NodeInitList:
		return false
	}
	if n.Type != nil {
		return false
	}

	switch n.Kind {
	case NodeInt, NodeSizeof:
		if n.Kind == NodeSizeof && !r.sizeofReady(n) {
			return false
		}
		return r.set(n, TypeInt64)
	case NodeString:
		return r.set(n, NewPointer(TypeUint8))
	case NodeIf, NodeLoop, NodeFor, NodeBlock, NodeBreak, NodeContinue, NodeExprList:
		return r.set(n, TypeVoidT)
	case NodeReturn:
		if n.Lhs == nil {
			return r.set(n, TypeVoidT)
		}
		if n.Lhs.Type != nil && !IsScalar(n.Lhs.Type) && Underlying(n.Lhs.Type).Kind != TypeVoid {
			bailout(ErrSemantic, n.Lhs.Tok, "cannot return value of type %s", n.Lhs.Type)
		}
		return r.set(n, n.Lhs.Type)
	case NodeDefVar:
		return r.setDefVar(n)
	case NodeAssign:
		if n.Lhs.Type == nil || n.Rhs.Type == nil {
			return false
		}
		r.checkAssignable(n.Lhs)
		r.checkConvertible(n.Rhs, n.Lhs.Type)
		return r.set(n, n.Lhs.Type)
	case NodeAdd, NodeSub:
		if n.Lhs.Type == nil || n.Rhs.Type == nil {
			return false
		}
		return r.set(n, r.additiveType(n))
	case NodeMul, NodeDiv:
		if n.Lhs.Type == nil || n.Rhs.Type == nil {
			return false
		}
		if !IsInteger(n.Lhs.Type) || !IsInteger(n.Rhs.Type) {
			r.invalidOperands(n)
		}
		return r.set(n, widerInt(n.Lhs.Type, n.Rhs.Type))
	case NodeEq, NodeNe, NodeLt, NodeLe, NodeLOr, NodeLAnd:
		if n.Lhs.Type == nil || n.Rhs.Type == nil {
			return false
		}
		if !IsScalar(decay(n.Lhs.Type)) || !IsScalar(decay(n.Rhs.Type)) {
			r.invalidOperands(n)
		}
		return r.set(n, TypeInt64)
	case NodeAddr:
		if n.Lhs.Type == nil {
			return false
		}
		r.checkAddressable(n.Lhs)
		return r.set(n, NewPointer(n.Lhs.Type))
	case NodeDeref:
		if n.Lhs.Type == nil {
			return false
		}
		return r.set(n, r.elemType(n, n.Lhs.Type))
	case NodeSubscript:
		if n.Lhs.Type == nil || n.Rhs.Type == nil {
			return false
		}
		if !IsInteger(n.Rhs.Type) {
			bailout(ErrSemantic, n.Rhs.Tok, "index must be an integer, got %s", n.Rhs.Type)
		}
		return r.set(n, r.elemType(n, n.Lhs.Type))
	case NodeInc, NodeDec:
		if n.Lhs.Type == nil {
			return false
		}
		r.checkAssignable(n.Lhs)
		if u := Underlying(n.Lhs.Type); !IsInteger(u) && u.Kind != TypePointer {
			bailout(ErrSemantic, n.Tok, "invalid operation: %s on %s", n.Tok.Text, n.Lhs.Type)
		}
		return r.set(n, n.Lhs.Type)
	case NodeCast:
		if n.Lhs.Type == nil || !IsConcrete(n.Spec.Type) {
			return false
		}
		if !IsScalar(decay(n.Lhs.Type)) || !IsScalar(n.Spec.Type) {
			bailout(ErrSemantic, n.Tok, "cannot convert %s to %s", n.Lhs.Type, n.Spec.Type)
		}
		return r.set(n, n.Spec.Type)
	case NodeDot, NodeArrow:
		return r.setFieldType(n)
	case NodeComposite:
		if !IsConcrete(n.Spec.Type) {
			return false
		}
		if Underlying(n.Spec.Type).Kind != TypeStruct {
			bailout(ErrSemantic, n.Tok, "composite literal of non-struct type %s", n.Spec.Type)
		}
		r.typeInitializer(n, n.Spec.Type)
		return true
	case NodeCall:
		return r.setCallType(n)
	}
	return false
}

func (r *resolver) sizeofReady(n *Node) bool {
	if n.Spec != nil {
		return IsConcrete(n.Spec.Type)
	}
	return n.Lhs.Type != nil
}

func (r *resolver) setDefVar(n *Node) bool {
	var t *Type
	switch {
	case n.Spec != nil:
		if IsConcrete(n.Spec.Type) {
			t = n.Spec.Type
		}
	case n.Rhs.Type != nil:
		t = n.Rhs.Type
		if Underlying(t).Kind == TypeVoid {
			bailout(ErrSemantic, n.Rhs.Tok, "%s is used as a value", ToSExpr(n.Rhs))
		}
	}
	if t == nil {
		return false
	}
	if Underlying(t).Kind == TypeVoid {
		bailout(ErrSemantic, n.Tok, "variable '%s' has type void", n.Sym.Name)
	}
	n.Sym.Type = t
	n.Lhs.Type = t
	n.Type = t
	if n.Rhs != nil && n.Rhs.Kind == NodeInitList {
		r.typeInitializer(n.Rhs, t)
	} else if n.Rhs != nil && n.Rhs.Type != nil {
		r.checkConvertible(n.Rhs, t)
	}
	return true
}

// typeInitializer gives a brace initializer its target type and pushes the
// element or field types down into nested brace initializers.
func (r *resolver) typeInitializer(n *Node, t *Type) {
	n.Type = t
	n.Sym.Type = t
	elems := n.Lhs.List()
	u := Underlying(t)
	switch u.Kind {
	case TypeArray:
		if int64(len(elems)) > u.Num {
			bailout(ErrSemantic, n.Tok, "too many elements in initializer of %s", t)
		}
		for _, e := range elems {
			if e.Kind == NodeInitList {
				r.typeInitializer(e, u.Base)
			}
		}
	case TypeStruct:
		fields := u.Fields()
		if len(elems) > len(fields) {
			bailout(ErrSemantic, n.Tok, "too many elements in initializer of %s", t)
		}
		for i, e := range elems {
			if e.Kind == NodeInitList {
				r.typeInitializer(e, fields[i].Base)
			}
		}
	default:
		bailout(ErrSemantic, n.Tok, "brace initializer requires an array or struct type, got %s", t)
	}
}

func (r *resolver) additiveType(n *Node) *Type {
	l, rt := n.Lhs.Type, n.Rhs.Type
	switch {
	case IsInteger(l) && IsInteger(rt):
		return widerInt(l, rt)
	case IsPointerLike(l) && IsInteger(rt):
		return decay(l)
	case n.Kind == NodeAdd && IsInteger(l) && IsPointerLike(rt):
		return decay(rt)
	case n.Kind == NodeSub && IsPointerLike(l) && IsPointerLike(rt):
		return TypeInt64
	}
	r.invalidOperands(n)
	return nil
}

func (r *resolver) invalidOperands(n *Node) {
	bailout(ErrSemantic, n.Tok, "invalid operands to '%s': %s and %s", n.Tok.Text, n.Lhs.Type, n.Rhs.Type)
}

// decay turns an array type into a pointer to its element.
func decay(t *Type) *Type {
	if u := Underlying(t); u.Kind == TypeArray {
		return NewPointer(u.Base)
	}
	return t
}

// elemType returns the element type of a pointer or array, or nil while the
// element is an alias that is not defined yet.
func (r *resolver) elemType(n *Node, t *Type) *Type {
	u := Underlying(t)
	if u.Kind != TypePointer && u.Kind != TypeArray {
		bailout(ErrSemantic, n.Tok, "invalid indirection of %s", t)
	}
	elem := Underlying(u.Base)
	if elem == nil {
		return nil
	}
	if elem.Kind == TypeVoid {
		bailout(ErrSemantic, n.Tok, "cannot dereference %s", t)
	}
	return u.Base
}

// setFieldType looks a field up and rewrites Dot on a pointer to Arrow.
func (r *resolver) setFieldType(n *Node) bool {
	lt := n.Lhs.Type
	if lt == nil {
		return false
	}
	st := Underlying(lt)
	arrow := st.Kind == TypePointer
	if arrow {
		st = Underlying(st.Base)
		if st == nil {
			return false
		}
	}
	if st.Kind != TypeStruct {
		bailout(ErrSemantic, n.Tok, "%s has no field '%s'", lt, n.Name)
	}
	f := st.Field(n.Name)
	if f == nil {
		bailout(ErrSemantic, n.Tok, "%s has no field '%s'", lt, n.Name)
	}
	if arrow {
		n.Kind = NodeArrow
	}
	return r.set(n, f.Base)
}

func (r *resolver) setCallType(n *Node) bool {
	callee := n.Lhs
	if n.Spec != nil {
		obj := callee.Sym
		if callee.Kind != NodeIdent || obj.Kind == ObjUnresolved {
			return false
		}
		if obj.Kind == ObjFunc && obj.Ctx.IsGeneric() {
			var targs []*Type
			for _, ta := range n.Spec.List() {
				if !IsConcrete(ta.Type) {
					return false
				}
				targs = append(targs, ta.Type)
			}
			inst := r.instantiate(obj, targs, n.Tok)
			if inst == nil {
				return false
			}
			callee.Sym = inst
			callee.Type = inst.Type
			return true
		}
		if obj.Kind != ObjFunc || obj.Ctx.TypeArgs == nil {
			bailout(ErrGeneric, n.Tok, "'%s' is not a generic function", obj.Name)
		}
	}
	ft := callee.Type
	if ft == nil {
		return false
	}
	u := Underlying(ft)
	if u.Kind == TypePointer {
		base := Underlying(u.Base)
		if base == nil {
			return false
		}
		if base.Kind == TypeFunc {
			u = base
		}
	}
	if u.Kind != TypeFunc {
		bailout(ErrSemantic, n.Tok, "cannot call non-function of type %s", ft)
	}
	args := n.Rhs.Lhs.List()
	fixed := len(u.Params())
	variadic := u.IsVariadic()
	if variadic {
		fixed--
	}
	if len(args) < fixed || (!variadic && len(args) > fixed) {
		bailout(ErrSemantic, n.Tok, "wrong number of arguments in call to '%s': got %d, want %d",
			callee.Tok.Text, len(args), fixed)
	}
	if len(args) > 6 {
		bailout(ErrSemantic, n.Tok, "too many arguments in call to '%s': at most 6 are supported", callee.Tok.Text)
	}
	params := u.Params()
	for i, a := range args {
		if a.Type == nil {
			return false
		}
		if Underlying(a.Type).Kind == TypeVoid {
			bailout(ErrSemantic, a.Tok, "%s is used as a value", ToSExpr(a))
		}
		if i < fixed {
			r.checkConvertible(a, params[i].Base)
		} else if !IsScalar(decay(a.Type)) {
			bailout(ErrSemantic, a.Tok, "cannot pass value of type %s as a variadic argument", a.Type)
		}
	}
	return r.set(n, u.Base)
}

func (r *resolver) checkAssignable(n *Node) {
	switch n.Kind {
	case NodeDeref, NodeSubscript, NodeDot, NodeArrow:
		return
	case NodeIdent:
		switch n.Sym.Kind {
		case ObjLocalVar, ObjGlobalVar, ObjExternVar:
			return
		}
	}
	bailout(ErrSemantic, n.Tok, "cannot assign to %s", ToSExpr(n))
}

func (r *resolver) checkAddressable(n *Node) {
	switch n.Kind {
	case NodeComposite, NodeInitList:
		return
	case NodeIdent:
		if n.Sym.Kind == ObjFunc || n.Sym.Kind == ObjExternFunc {
			return
		}
	}
	r.checkAssignable(n)
}

// checkConvertible reports an error if a value of v's type cannot be stored
// into a location of type dst.
func (r *resolver) checkConvertible(v *Node, dst *Type) {
	d, s := Underlying(dst), Underlying(v.Type)
	ok := false
	switch d.Kind {
	case TypeInt, TypeUint:
		ok = IsInteger(s)
	case TypePointer, TypeFunc:
		ok = s.Kind == TypePointer || s.Kind == TypeArray || s.Kind == TypeFunc || IsInteger(s)
	case TypeStruct, TypeArray:
		ok = SameType(d, s)
	}
	if !ok {
		bailout(ErrSemantic, v.Tok, "cannot use value of type %s as %s", v.Type, dst)
	}
}

// resolveType replaces the names in a written type with the types they
// denote. It returns nil while some name is still unknown.
func (r *resolver) resolveType(t *Type) *Type {
	switch t.Kind {
	case TypeUnknown:
		found := r.lookupType(t.Name, t.Tok)
		if found == nil {
			return nil
		}
		return r.resolveType(found)
	case TypeGenericParam:
		if r.ctx == nil || r.ctx.TypeArgs == nil {
			return nil
		}
		arg, ok := r.ctx.TypeArgs[t.Name]
		if !ok {
			bailout(ErrGeneric, t.Tok, "unresolved generic parameter '%s'", t.Name)
		}
		return arg
	case TypeUser:
		if IsConcrete(t) {
			return t
		}
		return nil
	case TypePointer:
		base := t.Base
		if base.Kind == TypeUnknown {
			// A pointer may name an alias whose definition is still pending.
			base = r.lookupType(base.Name, base.Tok)
			if base != nil && base.Kind != TypeUser {
				base = r.resolveType(base)
			}
		} else if base.Kind != TypeUser {
			base = r.resolveType(base)
		}
		if base == nil {
			return nil
		}
		if base == t.Base {
			return t
		}
		return NewPointer(base)
	case TypeArray:
		base := r.resolveType(t.Base)
		if base == nil {
			return nil
		}
		if base == t.Base {
			return t
		}
		return NewArray(base, t.Num)
	case TypeFunc:
		ret := r.resolveType(t.Base)
		if ret == nil {
			return nil
		}
		var params []*Type
		same := ret == t.Base
		for _, p := range t.Params() {
			if p.Kind == TypeVariadic {
				params = append(params, p)
				continue
			}
			b := r.resolveType(p.Base)
			if b == nil {
				return nil
			}
			same = same && b == p.Base
			params = append(params, &Type{Kind: TypeParam, Name: p.Name, Base: b})
		}
		if same {
			return t
		}
		return NewFunc(ret, params)
	case TypeStruct:
		var names []string
		var types []*Type
		same := true
		for _, f := range t.Fields() {
			b := r.resolveType(f.Base)
			if b == nil {
				return nil
			}
			same = same && b == f.Base
			names = append(names, f.Name)
			types = append(types, b)
		}
		if same {
			layoutStruct(t)
			return t
		}
		return NewStruct(names, types)
	}
	return t
}

// lookupType finds a type name among globals, creating int<N> and uint<N>
// on first use. The created types are cached so every later use gets the
// same *Type.
func (r *resolver) lookupType(name string, tok *Token) *Type {
	if t, ok := r.s.types.FindGlobal(name); ok {
		return t
	}
	t, ok, err := parseIntTypeName(name)
	if !ok {
		return nil
	}
	if err != nil {
		bailout(ErrSemantic, tok, "%s", err)
	}
	r.s.types.PutGlobal(name, t)
	return t
}

func (r *resolver) checkDecl(d *Node) {
	if d.Kind == NodeFuncDef {
		if d.Sym.Ctx.IsGeneric() {
			return
		}
		r.ctx = d.Sym.Ctx
		defer func() { r.ctx = nil }()
	}
	r.check(d)
}

// check reports the first node, in source order, that did not get a type.
func (r *resolver) check(n *Node) {
	for _, c := range children(n) {
		r.check(c)
	}
	switch n.Kind {
	case NodeParamList, NodeDeclSeq, NodeParam, NodeExtern:
		return
	case NodeTypeDef:
		alias, _ := r.s.types.FindGlobal(n.Name)
		if alias.Base == nil {
			r.reportType(n.Spec, map[string]bool{n.Name: true})
		}
	case NodeFuncDef:
		if n.Sym.Type == nil {
			bailout(ErrSemantic, n.Tok, "cannot determine signature of '%s'", n.Sym.Name)
		}
	case NodeType:
		if !IsConcrete(n.Type) {
			r.reportType(n, map[string]bool{})
		}
	case NodeIdent:
		if n.Type != nil {
			return
		}
		switch {
		case n.Sym.Kind == ObjUnresolved:
			bailout(ErrSemantic, n.Tok, "undefined variable '%s'", n.Tok.Text)
		case n.Sym.Kind == ObjFunc && n.Sym.Ctx.IsGeneric():
			bailout(ErrGeneric, n.Tok, "generic function '%s' used without type arguments", n.Tok.Text)
		}
		bailout(ErrSemantic, n.Tok, "cannot determine type of '%s'", n.Tok.Text)
	default:
		if n.Type == nil {
			bailout(ErrSemantic, n.Tok, "cannot determine type of expression")
		}
	}
}

// reportType explains why a written type did not resolve, following alias
// definitions to the name that is actually missing.
func (r *resolver) reportType(n *Node, seen map[string]bool) {
	t := n.Type
	alias := firstPendingAlias(t)
	if u := firstUnresolved(t); u != nil {
		tok := u.Tok
		if tok == nil {
			tok = n.Tok
		}
		if u.Kind == TypeGenericParam {
			bailout(ErrGeneric, tok, "unresolved generic parameter '%s'", u.Name)
		}
		// A name that is an alias still being defined is pending, not unknown.
		found := r.lookupType(u.Name, tok)
		if found == nil || found.Kind != TypeUser {
			bailout(ErrSemantic, tok, "unknown type name '%s'", u.Name)
		}
		alias = found
	}
	if alias == nil || seen[alias.Name] {
		name := n.Tok.Text
		if alias != nil {
			name = alias.Name
		}
		bailout(ErrSemantic, n.Tok, "invalid recursive type '%s'", name)
	}
	seen[alias.Name] = true
	def := r.s.typedefs[alias.Name]
	if def == nil {
		bailout(ErrInternal, n.Tok, "alias '%s' has no definition", alias.Name)
	}
	r.reportType(def.Spec, seen)
}

// firstPendingAlias returns the first alias, held by value, whose
// underlying type is not known yet.
func firstPendingAlias(t *Type) *Type {
	switch t.Kind {
	case TypeUser:
		if t.Base == nil || !IsConcrete(t.Base) {
			return t
		}
	case TypeArray, TypeParam, TypeField:
		return firstPendingAlias(t.Base)
	case TypeFunc:
		for p := t.Next; p != nil; p = p.Next {
			if a := firstPendingAlias(p); a != nil {
				return a
			}
		}
		return firstPendingAlias(t.Base)
	case TypeStruct:
		for f := t.Next; f != nil; f = f.Next {
			if a := firstPendingAlias(f); a != nil {
				return a
			}
		}
	}
	return nil
}

// checkGlobalInits accepts integer constants, negated integer constants and
// string literals as global initializers.
func (r *resolver) checkGlobalInits() {
	for _, d := range r.s.decls {
		if d.Kind != NodeDefVar || d.Rhs == nil {
			continue
		}
		if _, ok := constInit(d.Rhs); !ok && d.Rhs.Kind != NodeString {
			bailout(ErrSemantic, d.Rhs.Tok, "initializer of global '%s' is not a constant", d.Sym.Name)
		}
	}
}

func constInit(n *Node) (int64, bool) {
	switch {
	case n.Kind == NodeInt:
		return n.Int, true
	case n.Kind == NodeSub && n.Lhs.Kind == NodeInt && n.Lhs.Int == 0 && n.Rhs.Kind == NodeInt:
		return -n.Rhs.Int, true
	}
	return 0, false
}
