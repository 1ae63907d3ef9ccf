package main

import (
	"strconv"
	"strings"
)

// instantiate returns the instance of the generic function def for the
// given type arguments, creating it on first request. It returns nil while
// the instance signature still mentions types that are not resolved.
func (r *resolver) instantiate(def *Object, targs []*Type, tok *Token) *Object {
	params := def.Ctx.GenericParams
	if len(targs) != len(params) {
		bailout(ErrGeneric, tok, "wrong number of type arguments to '%s': got %d, want %d",
			def.Name, len(targs), len(params))
	}
	for _, t := range targs {
		if !validTypeArg(t) {
			bailout(ErrGeneric, tok, "cannot use %s as a type argument", t)
		}
	}
	key := instanceKey(def.Name, targs)
	if inst, ok := r.s.instances[key]; ok {
		return inst
	}

	subst := make(map[string]*Type, len(params))
	for i, p := range params {
		subst[p.Name] = targs[i]
	}
	sig := r.substituteSignature(def.Def, subst)
	if sig == nil {
		return nil
	}
	if len(r.s.instances) >= maxInstances {
		bailout(ErrGeneric, tok, "too many instances of '%s'; is the instantiation recursive?", def.Name)
	}

	name := r.s.mangledName(def.Name, key, sig, tok)
	inst := cloneFuncDef(def.Def, name, subst)
	inst.Type = sig
	if _, inserted := r.s.syms.PutGlobal(name, inst); !inserted {
		bailout(ErrGeneric, tok, "instance name '%s' collides with an existing symbol", name)
	}
	r.s.instances[key] = inst
	r.s.decls = append(r.s.decls, inst.Def)
	r.s.logf("instantiated %s", name)
	return inst
}

// Substitute replaces generic parameters in t by their bindings in subst.
// A parameter without a binding is a generic instantiation error at the
// place the parameter was written.
func (s *Session) Substitute(t *Type, subst map[string]*Type) (out *Type, err error) {
	defer catchBailout(&err)
	r := &resolver{s: s, ctx: &Context{TypeArgs: subst}}
	out = r.resolveType(t)
	if out == nil {
		u := firstUnresolved(t)
		bailout(ErrSemantic, u.Tok, "unknown type name '%s'", u.Name)
	}
	return out, nil
}

// substituteSignature computes the concrete function type of a generic
// definition under subst.
func (r *resolver) substituteSignature(fn *Node, subst map[string]*Type) *Type {
	saved := r.ctx
	r.ctx = &Context{TypeArgs: subst}
	defer func() { r.ctx = saved }()

	var params []*Type
	for _, p := range fn.Lhs.Lhs.List() {
		if p.Sym == nil {
			params = append(params, p.Spec.Type)
			continue
		}
		t := r.resolveType(p.Spec.Type)
		if t == nil {
			return nil
		}
		params = append(params, &Type{Kind: TypeParam, Name: p.Sym.Name, Base: t})
	}
	ret := r.resolveType(fn.Spec.Type)
	if ret == nil {
		return nil
	}
	return NewFunc(ret, params)
}

func instanceKey(name string, targs []*Type) string {
	var parts []string
	for _, t := range targs {
		parts = append(parts, t.String())
	}
	return name + "<" + strings.Join(parts, ",") + ">"
}

// Mangle spells a type for use inside a symbol name.
func Mangle(t *Type) string {
	switch t.Kind {
	case TypeInt:
		return "int" + strconv.FormatInt(t.Num, 10)
	case TypeUint:
		return "uint" + strconv.FormatInt(t.Num, 10)
	case TypePointer:
		return "ptr_" + Mangle(t.Base)
	case TypeStruct:
		s := "struct"
		for f := t.Next; f != nil; f = f.Next {
			s += "_" + Mangle(f.Base)
		}
		return s
	case TypeArray:
		return "array" + strconv.FormatInt(t.Num, 10) + "_" + Mangle(t.Base)
	case TypeFunc:
		s := "fn" + strconv.Itoa(len(t.Params()))
		for p := t.Next; p != nil; p = p.Next {
			if p.Kind == TypeVariadic {
				s += "_va"
				break
			}
			s += "_" + Mangle(p.Base)
		}
		return s + "_" + Mangle(t.Base)
	case TypeVoid:
		return "void"
	case TypeUser, TypeGenericParam:
		return t.Name
	}
	bailout(ErrInternal, nil, "type %s has no mangled form", t)
	return ""
}

// validTypeArg reports whether t may be passed as a type argument. Function
// types may appear in generic signatures but not as type arguments.
func validTypeArg(t *Type) bool {
	switch t.Kind {
	case TypeInt, TypeUint, TypeVoid, TypeUser, TypeGenericParam:
		return true
	case TypePointer, TypeArray:
		return validTypeArg(t.Base)
	case TypeStruct:
		for f := t.Next; f != nil; f = f.Next {
			if !validTypeArg(f.Base) {
				return false
			}
		}
		return true
	}
	return false
}

// MangledName appends the mangled parameter types to name. A variadic
// marker ends the list.
func MangledName(name string, params []*Type) string {
	var b strings.Builder
	b.WriteString(name)
	for _, p := range params {
		if p.Kind == TypeVariadic {
			break
		}
		if p.Kind == TypeParam {
			p = p.Base
		}
		b.WriteString("__")
		b.WriteString(Mangle(p))
	}
	return b.String()
}

// mangledName names a new instance. Instances that differ only in their
// result type get the result type appended as well.
func (s *Session) mangledName(name, key string, sig *Type, tok *Token) string {
	mn := MangledName(name, sig.Params())
	// Without parameters the bare name would collide with the definition.
	if owner, ok := s.mangled[mn]; mn == name || (ok && owner != key) {
		mn += "__ret_" + Mangle(sig.Base)
	}
	if owner, ok := s.mangled[mn]; ok && owner != key {
		bailout(ErrGeneric, tok, "instances %s and %s mangle to the same name '%s'", owner, key, mn)
	}
	s.mangled[mn] = key
	return mn
}

// cloneFuncDef copies a generic definition for one instance. Locals and
// parameters get fresh objects owned by a new context; references to
// globals are shared.
func cloneFuncDef(fn *Node, name string, subst map[string]*Type) *Object {
	old := fn.Sym.Ctx
	ctx := &Context{Name: name, TypeArgs: subst}
	objs := make(map[*Object]*Object, len(old.Locals))
	for _, l := range old.Locals {
		nl := &Object{Kind: l.Kind, Name: l.Name, Tok: l.Tok, Ctx: ctx}
		objs[l] = nl
		ctx.Locals = append(ctx.Locals, nl)
	}
	for _, p := range old.Params {
		ctx.Params = append(ctx.Params, objs[p])
	}

	inst := &Object{Kind: ObjFunc, Name: name, Tok: fn.Sym.Tok, Ctx: ctx}
	c := *fn
	c.Next = nil
	c.Sym = inst
	c.Lhs = cloneNode(fn.Lhs, objs)
	c.Spec = cloneNode(fn.Spec, objs)
	c.Rhs = cloneNode(fn.Rhs, objs)
	inst.Def = &c
	return inst
}

func cloneNode(n *Node, objs map[*Object]*Object) *Node {
	if n == nil {
		return nil
	}
	c := *n
	if o, ok := objs[n.Sym]; ok {
		c.Sym = o
	}
	c.Lhs = cloneNode(n.Lhs, objs)
	c.Rhs = cloneNode(n.Rhs, objs)
	c.Cond = cloneNode(n.Cond, objs)
	c.Spec = cloneNode(n.Spec, objs)
	c.Next = cloneNode(n.Next, objs)
	return &c
}
