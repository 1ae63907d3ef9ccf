package main

// Scope is a stack of name tables. The bottom layer holds globals, is never
// popped, and remembers insertion order.
type Scope[T any] struct {
	layers []map[string]T
	order  []string
}

func NewScope[T any]() *Scope[T] {
	return &Scope[T]{layers: []map[string]T{{}}}
}

func (s *Scope[T]) Enter() {
	s.layers = append(s.layers, map[string]T{})
}

// Leave pops the innermost layer. The global layer stays.
func (s *Scope[T]) Leave() {
	if len(s.layers) > 1 {
		s.layers = s.layers[:len(s.layers)-1]
	}
}

// Depth is the number of layers above the global one.
func (s *Scope[T]) Depth() int {
	return len(s.layers) - 1
}

// Find looks name up from the innermost layer outwards.
func (s *Scope[T]) Find(name string) (T, bool) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if v, ok := s.layers[i][name]; ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// FindCurrentBlock looks name up in the innermost layer only.
func (s *Scope[T]) FindCurrentBlock(name string) (T, bool) {
	v, ok := s.layers[len(s.layers)-1][name]
	return v, ok
}

// FindGlobal looks name up in the global layer only.
func (s *Scope[T]) FindGlobal(name string) (T, bool) {
	v, ok := s.layers[0][name]
	return v, ok
}

// Put adds name to the innermost layer. The first write wins: if name is
// already there, the existing value is returned with inserted == false.
func (s *Scope[T]) Put(name string, v T) (existing T, inserted bool) {
	return s.put(len(s.layers)-1, name, v)
}

// PutGlobal is Put on the global layer regardless of the current depth.
func (s *Scope[T]) PutGlobal(name string, v T) (existing T, inserted bool) {
	return s.put(0, name, v)
}

func (s *Scope[T]) put(layer int, name string, v T) (T, bool) {
	if old, ok := s.layers[layer][name]; ok {
		return old, false
	}
	s.layers[layer][name] = v
	if layer == 0 {
		s.order = append(s.order, name)
	}
	return v, true
}

// Globals returns the global layer in insertion order.
func (s *Scope[T]) Globals() []T {
	values := make([]T, 0, len(s.order))
	for _, name := range s.order {
		values = append(values, s.layers[0][name])
	}
	return values
}

// ObjectKind classifies what a name refers to.
type ObjectKind int

const (
	ObjUnresolved ObjectKind = iota
	ObjLocalVar
	ObjGlobalVar
	ObjFunc
	ObjExternVar
	ObjExternFunc
)

func (k ObjectKind) String() string {
	switch k {
	case ObjUnresolved:
		return "unresolved"
	case ObjLocalVar:
		return "local"
	case ObjGlobalVar:
		return "global"
	case ObjFunc:
		return "func"
	case ObjExternVar:
		return "extern var"
	case ObjExternFunc:
		return "extern func"
	}
	return "unknown"
}

// Object is a named entity. Every node referring to the same declaration
// points at the same Object.
type Object struct {
	Kind ObjectKind
	Name string
	Tok  *Token
	Type *Type

	// Ctx is the owning function for locals and the function's own
	// context for ObjFunc.
	Ctx *Context
	// Def is the FuncDef of a function or the DefVar of a global.
	Def *Node

	// Offset is the distance below the frame pointer; 0 until laid out.
	Offset int64
}

// Context is the per-function state: its locals in declaration order, its
// parameters, and for generic code the type parameters or their bindings.
type Context struct {
	Name      string
	Locals    []*Object
	Params    []*Object
	StackSize int64

	// GenericParams is set on generic definitions, which are never emitted.
	GenericParams []*Type
	// TypeArgs binds generic parameter names inside an instance.
	TypeArgs map[string]*Type
}

func NewContext(name string) *Context {
	return &Context{Name: name}
}

func (c *Context) IsGeneric() bool {
	return len(c.GenericParams) > 0
}

// AddLocal appends a local and returns it.
func (c *Context) AddLocal(name string, tok *Token) *Object {
	obj := &Object{Kind: ObjLocalVar, Name: name, Tok: tok, Ctx: c}
	c.Locals = append(c.Locals, obj)
	return obj
}

// Layout assigns frame offsets in declaration order. Each local takes its
// size rounded up to 8 bytes, so a function with only scalar locals uses
// exactly 8 bytes per local.
func (c *Context) Layout() {
	var offset int64
	for _, local := range c.Locals {
		size := int64(8)
		if local.Type != nil {
			size = max(alignTo(local.Type.Size(), 8), 8)
		}
		offset += size
		local.Offset = offset
	}
	c.StackSize = offset
}

// FrameSize is the stack reservation made by the prologue.
func (c *Context) FrameSize() int64 {
	return alignTo(c.StackSize, 16)
}
