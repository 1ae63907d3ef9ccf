package main

import (
	"bytes"
	"fmt"
	"io"
)

// Native is an external C symbol made visible to the program, as if it had
// been declared with `extern "C" Name Sig;`.
type Native struct {
	Name string
	Sig  string
}

// Options configure one compilation.
type Options struct {
	Arch    Arch
	Natives []Native
	// Verbose receives progress messages when non-nil.
	Verbose io.Writer
}

// Session holds every table of one compilation. Sessions share nothing, so
// independent compilations may run side by side.
type Session struct {
	opts Options

	syms  *Scope[*Object]
	types *Scope[*Type]

	// decls is the resolver's work list: parsed top-level declarations
	// followed by generic instances in creation order.
	decls   []*Node
	program *Node

	typedefs  map[string]*Node   // alias name -> TypeDef
	instances map[string]*Object // instance key -> function
	mangled   map[string]string  // mangled name -> instance key
}

func NewSession(opts Options) *Session {
	s := &Session{
		opts:      opts,
		syms:      NewScope[*Object](),
		types:     NewScope[*Type](),
		typedefs:  map[string]*Node{},
		instances: map[string]*Object{},
		mangled:   map[string]string{},
	}
	s.types.PutGlobal("int", TypeInt64)
	s.types.PutGlobal("int64", TypeInt64)
	s.types.PutGlobal("uint", TypeUint64)
	s.types.PutGlobal("uint64", TypeUint64)
	s.types.PutGlobal("byte", TypeUint8)
	s.types.PutGlobal("uint8", TypeUint8)
	s.types.PutGlobal("void", TypeVoidT)
	return s
}

func (s *Session) logf(format string, args ...any) {
	if s.opts.Verbose != nil {
		fmt.Fprintf(s.opts.Verbose, format+"\n", args...)
	}
}

// Program returns the parsed declaration sequence.
func (s *Session) Program() *Node {
	return s.program
}

// Decls returns every top-level declaration including generic instances.
func (s *Session) Decls() []*Node {
	return s.decls
}

// Lookup finds a global object by name.
func (s *Session) Lookup(name string) *Object {
	obj, _ := s.syms.FindGlobal(name)
	return obj
}

// Parse declares the natives and then parses src.
func (s *Session) Parse(src []byte) (err error) {
	defer catchBailout(&err)
	for _, n := range s.opts.Natives {
		s.declareNative(n)
	}
	p := newParser(s, NewLexer(src))
	s.program = p.parseProgram()
	s.decls = append(s.decls, s.program.Lhs.List()...)
	s.logf("parsed %d declarations", len(s.decls))
	return nil
}

func (s *Session) declareNative(n Native) {
	p := newParser(s, NewLexer([]byte(n.Sig)))
	spec := p.parseTypeNode()
	if tok := p.l.Peek(); tok.Kind != EOF {
		bailout(ErrSyntax, nil, "native %s: unexpected %s after signature", n.Name, tok)
	}
	t := spec.Type
	if !IsConcrete(t) {
		u := firstUnresolved(t)
		bailout(ErrSemantic, nil, "native %s: unknown type name '%s'", n.Name, u.Name)
	}
	kind := ObjExternVar
	if t.Kind == TypeFunc {
		kind = ObjExternFunc
	}
	obj := &Object{Kind: kind, Name: n.Name, Tok: &Token{Kind: IDENT, Text: n.Name}, Type: t}
	if _, inserted := s.syms.PutGlobal(n.Name, obj); !inserted {
		bailout(ErrSemantic, nil, "native %s declared twice", n.Name)
	}
}

// Generate writes assembly for the resolved program.
func (s *Session) Generate(w io.Writer) (err error) {
	defer catchBailout(&err)
	a, err := NewAsm(s.opts.Arch, w)
	if err != nil {
		return err
	}
	g := &generator{s: s, a: a}
	g.genProgram()
	return a.Flush()
}

// Compile runs the whole pipeline on src and writes assembly to w. Nothing is
// written when compilation fails.
func Compile(src []byte, opts Options, w io.Writer) error {
	if _, err := NewAsm(opts.Arch, io.Discard); err != nil {
		return err
	}
	s := NewSession(opts)
	if err := s.Parse(src); err != nil {
		return err
	}
	if err := s.Resolve(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := s.Generate(&buf); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
