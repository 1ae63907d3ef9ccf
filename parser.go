package main

// Parser is a recursive-descent parser. It binds identifiers through the
// session's scope stack while it parses; names that are not visible yet get
// an unresolved placeholder that the resolver re-binds against globals.
type Parser struct {
	s     *Session
	l     *Lexer
	ctx   *Context // enclosing function, nil at top level
	loops int      // depth of enclosing loops
}

func newParser(s *Session, l *Lexer) *Parser {
	return &Parser{s: s, l: l}
}

// ParseExpr parses a single expression. Identifiers stay unresolved and
// `:=` declares into a throwaway function context.
func ParseExpr(src []byte) (n *Node, err error) {
	defer catchBailout(&err)
	p := newParser(NewSession(Options{}), NewLexer(src))
	p.ctx = NewContext("expr")
	p.s.syms.Enter()
	n = p.parseExpr()
	if tok := p.l.Peek(); tok.Kind != EOF {
		bailout(ErrSyntax, tok, "unexpected %s after expression", tok)
	}
	return n, nil
}

func (p *Parser) parseProgram() *Node {
	tok := p.l.Peek()
	switch tok.Kind {
	case FUNC, VAR, TYPE, EXTERN:
	default:
		return &Node{Kind: NodeDeclSeq, Tok: tok, Lhs: p.parseImplicitMain()}
	}
	var decls []*Node
	for p.l.Peek().Kind != EOF {
		decls = append(decls, p.parseTopLevel())
	}
	return &Node{Kind: NodeDeclSeq, Tok: tok, Lhs: chain(decls)}
}

// parseImplicitMain wraps a bare statement list in `func main() int`.
func (p *Parser) parseImplicitMain() *Node {
	tok := p.l.Peek()
	ctx := NewContext("main")
	obj := &Object{Kind: ObjFunc, Name: "main", Tok: &Token{Kind: IDENT, Text: "main", Offset: tok.Offset}, Ctx: ctx}
	p.declareGlobal(obj, "function")

	p.ctx = ctx
	defer func() { p.ctx = nil }()
	p.s.syms.Enter()
	defer p.s.syms.Leave()

	var stmts []*Node
	for p.l.Peek().Kind != EOF {
		stmts = append(stmts, p.parseStmt())
	}
	fn := &Node{
		Kind: NodeFuncDef,
		Tok:  obj.Tok,
		Sym:  obj,
		Lhs:  &Node{Kind: NodeParamList, Tok: tok},
		Spec: &Node{Kind: NodeType, Tok: tok, Type: TypeInt64},
		Rhs:  &Node{Kind: NodeBlock, Tok: tok, Lhs: chain(stmts)},
	}
	obj.Def = fn
	return fn
}

func (p *Parser) parseTopLevel() *Node {
	tok := p.l.Peek()
	switch tok.Kind {
	case FUNC:
		return p.parseFuncDef()
	case VAR:
		n := p.parseVarDecl()
		p.l.Expect(";")
		return n
	case TYPE:
		return p.parseTypeDef()
	case EXTERN:
		return p.parseExtern()
	}
	bailout(ErrSyntax, tok, "expected declaration, got %s", tok)
	return nil
}

func (p *Parser) parseFuncDef() *Node {
	p.l.NextToken() // func
	name := p.l.ExpectKind(IDENT)
	ctx := NewContext(name.Text)
	obj := &Object{Kind: ObjFunc, Name: name.Text, Tok: name, Ctx: ctx}
	p.declareGlobal(obj, "function")

	p.s.types.Enter()
	defer p.s.types.Leave()
	if p.l.Consume("<") != nil {
		for {
			pt := p.l.ExpectKind(IDENT)
			gp := &Type{Kind: TypeGenericParam, Name: pt.Text, Tok: pt}
			if _, inserted := p.s.types.Put(pt.Text, gp); !inserted {
				bailout(ErrSemantic, pt, "type parameter '%s' already declared", pt.Text)
			}
			ctx.GenericParams = append(ctx.GenericParams, gp)
			if p.l.Consume(",") == nil {
				break
			}
		}
		p.l.Expect(">")
	}

	outer := p.ctx
	p.ctx = ctx
	defer func() { p.ctx = outer }()
	p.s.syms.Enter()
	defer p.s.syms.Leave()

	params := p.parseParams()
	var ret *Node
	if p.l.AtOp("{") {
		ret = &Node{Kind: NodeType, Tok: p.l.Peek(), Type: TypeVoidT}
	} else {
		ret = p.parseTypeNode()
	}
	body := p.parseBlock()
	fn := &Node{Kind: NodeFuncDef, Tok: name, Sym: obj, Lhs: params, Spec: ret, Rhs: body}
	obj.Def = fn
	return fn
}

func (p *Parser) parseParams() *Node {
	open := p.l.Expect("(")
	var params []*Node
	for !p.l.AtOp(")") {
		if tok := p.l.Consume("..."); tok != nil {
			spec := &Node{Kind: NodeType, Tok: tok, Type: &Type{Kind: TypeVariadic}}
			params = append(params, &Node{Kind: NodeParam, Tok: tok, Spec: spec})
			break
		}
		name := p.l.ExpectKind(IDENT)
		spec := p.parseTypeNode()
		obj := p.declareLocal(name)
		p.ctx.Params = append(p.ctx.Params, obj)
		params = append(params, &Node{Kind: NodeParam, Tok: name, Sym: obj, Spec: spec})
		if p.l.Consume(",") == nil {
			break
		}
	}
	p.l.Expect(")")
	return &Node{Kind: NodeParamList, Tok: open, Lhs: chain(params)}
}

// parseVarDecl parses `var name type (= init)?` without the semicolon.
func (p *Parser) parseVarDecl() *Node {
	p.l.NextToken() // var
	name := p.l.ExpectKind(IDENT)
	spec := p.parseTypeNode()
	var init *Node
	if p.l.Consume("=") != nil {
		init = p.parseInitializer()
	}
	obj := p.declareVar(name)
	ident := &Node{Kind: NodeIdent, Tok: name, Sym: obj, Ershov: 1}
	n := &Node{Kind: NodeDefVar, Tok: name, Lhs: ident, Spec: spec, Rhs: init, Sym: obj}
	if obj.Kind == ObjGlobalVar {
		obj.Def = n
	}
	return n
}

func (p *Parser) parseInitializer() *Node {
	if !p.l.AtOp("{") {
		return p.parseExpr()
	}
	tok := p.l.Peek()
	n := &Node{Kind: NodeInitList, Tok: tok, Lhs: p.parseBraceList(), Ershov: 1}
	n.Sym = p.newTemp(tok)
	return n
}

func (p *Parser) parseBraceList() *Node {
	p.l.Expect("{")
	var elems []*Node
	for !p.l.AtOp("}") {
		elems = append(elems, p.parseExpr())
		if p.l.Consume(",") == nil {
			break
		}
	}
	p.l.Expect("}")
	return chain(elems)
}

func (p *Parser) parseTypeDef() *Node {
	p.l.NextToken() // type
	name := p.l.ExpectKind(IDENT)
	spec := p.parseTypeNode()
	p.l.Expect(";")
	alias := &Type{Kind: TypeUser, Name: name.Text, Tok: name}
	if _, inserted := p.s.types.PutGlobal(name.Text, alias); !inserted {
		bailout(ErrSemantic, name, "type '%s' already declared", name.Text)
	}
	n := &Node{Kind: NodeTypeDef, Tok: name, Name: name.Text, Spec: spec}
	p.s.typedefs[name.Text] = n
	return n
}

func (p *Parser) parseExtern() *Node {
	p.l.NextToken() // extern
	lang := p.l.ExpectKind(STRING)
	if string(lang.Str) != "C" {
		bailout(ErrSemantic, lang, "unsupported linkage %s", lang.Text)
	}
	name := p.l.ExpectKind(IDENT)
	spec := p.parseTypeNode()
	p.l.Expect(";")
	kind := ObjExternVar
	if spec.Type.Kind == TypeFunc {
		kind = ObjExternFunc
	}
	obj := &Object{Kind: kind, Name: name.Text, Tok: name}
	p.declareGlobal(obj, "symbol")
	return &Node{Kind: NodeExtern, Tok: name, Sym: obj, Spec: spec}
}

func (p *Parser) parseTypeNode() *Node {
	tok := p.l.Peek()
	return &Node{Kind: NodeType, Tok: tok, Type: p.parseType()}
}

// parseType parses a written type. Names are looked up in the type scope;
// a name that is not visible yet becomes an Unknown type for the resolver.
func (p *Parser) parseType() *Type {
	tok := p.l.Peek()
	switch {
	case p.l.Consume("*") != nil:
		return NewPointer(p.parseType())
	case p.l.Consume("[") != nil:
		n := p.l.ExpectKind(INT)
		p.l.Expect("]")
		return NewArray(p.parseType(), n.Value)
	case tok.Kind == FUNC:
		p.l.NextToken()
		return p.parseFuncType()
	case tok.Kind == STRUCT:
		p.l.NextToken()
		return p.parseStructType()
	case tok.Kind == IDENT:
		p.l.NextToken()
		if t, ok := p.s.types.Find(tok.Text); ok {
			return t
		}
		return &Type{Kind: TypeUnknown, Name: tok.Text, Tok: tok}
	}
	bailout(ErrSyntax, tok, "expected type, got %s", tok)
	return nil
}

func (p *Parser) parseFuncType() *Type {
	p.l.Expect("(")
	var params []*Type
	for !p.l.AtOp(")") {
		if p.l.Consume("...") != nil {
			params = append(params, &Type{Kind: TypeVariadic})
			break
		}
		param := &Type{Kind: TypeParam}
		if p.l.Peek().Kind == IDENT {
			saved := p.l.Save()
			name := p.l.NextToken()
			if startsType(p.l.Peek()) {
				param.Name = name.Text
			} else {
				p.l.Restore(saved)
			}
		}
		param.Base = p.parseType()
		params = append(params, param)
		if p.l.Consume(",") == nil {
			break
		}
	}
	p.l.Expect(")")
	ret := TypeVoidT
	if startsType(p.l.Peek()) {
		ret = p.parseType()
	}
	return NewFunc(ret, params)
}

func (p *Parser) parseStructType() *Type {
	p.l.Expect("{")
	var names []string
	var types []*Type
	seen := map[string]bool{}
	for !p.l.AtOp("}") {
		name := p.l.ExpectKind(IDENT)
		if seen[name.Text] {
			bailout(ErrSemantic, name, "duplicate field '%s'", name.Text)
		}
		seen[name.Text] = true
		names = append(names, name.Text)
		types = append(types, p.parseType())
		p.l.Expect(";")
	}
	p.l.Expect("}")
	return NewStruct(names, types)
}

func startsType(tok *Token) bool {
	switch tok.Kind {
	case IDENT, FUNC, STRUCT:
		return true
	case RESERVED:
		return tok.Text == "*" || tok.Text == "["
	}
	return false
}

func (p *Parser) parseStmt() *Node {
	tok := p.l.Peek()
	switch tok.Kind {
	case RETURN:
		p.l.NextToken()
		var e *Node
		if !p.l.AtOp(";") {
			e = p.parseExpr()
		}
		p.l.Expect(";")
		return &Node{Kind: NodeReturn, Tok: tok, Lhs: e}
	case IF:
		return p.parseIf()
	case FOR:
		return p.parseFor()
	case BREAK, CONTINUE:
		p.l.NextToken()
		if p.loops == 0 {
			bailout(ErrSemantic, tok, "%s is not in a loop", tok.Text)
		}
		p.l.Expect(";")
		if tok.Kind == BREAK {
			return &Node{Kind: NodeBreak, Tok: tok}
		}
		return &Node{Kind: NodeContinue, Tok: tok}
	case VAR:
		n := p.parseVarDecl()
		p.l.Expect(";")
		return n
	case TYPE:
		return p.parseTypeDef()
	case FUNC, EXTERN:
		bailout(ErrSyntax, tok, "%s declarations are only allowed at top level", tok.Text)
	}
	if p.l.AtOp("{") {
		return p.parseBlock()
	}
	e := p.parseExpr()
	p.l.Expect(";")
	return e
}

func (p *Parser) parseBlock() *Node {
	tok := p.l.Expect("{")
	p.s.syms.Enter()
	defer p.s.syms.Leave()
	var stmts []*Node
	for !p.l.AtOp("}") {
		if p.l.Peek().Kind == EOF {
			bailout(ErrSyntax, p.l.Peek(), "expected '}', got end of file")
		}
		stmts = append(stmts, p.parseStmt())
	}
	p.l.Expect("}")
	return &Node{Kind: NodeBlock, Tok: tok, Lhs: chain(stmts)}
}

func (p *Parser) parseIf() *Node {
	tok := p.l.NextToken() // if
	n := &Node{Kind: NodeIf, Tok: tok}
	n.Cond = p.parseExpr()
	n.Lhs = p.parseBlock()
	if p.l.ConsumeKind(ELSE) != nil {
		if p.l.Peek().Kind == IF {
			n.Rhs = p.parseIf()
		} else {
			n.Rhs = p.parseBlock()
		}
	}
	return n
}

// parseFor handles the three loop forms. A three-clause loop with an init
// statement becomes a block holding the init followed by the loop.
func (p *Parser) parseFor() *Node {
	tok := p.l.NextToken() // for
	p.s.syms.Enter()
	defer p.s.syms.Leave()
	p.loops++
	defer func() { p.loops-- }()

	if p.l.AtOp("{") {
		return &Node{Kind: NodeLoop, Tok: tok, Lhs: p.parseBlock()}
	}
	var init, cond, post *Node
	if !p.l.AtOp(";") {
		init = p.parseExpr()
	}
	if p.l.AtOp("{") {
		return &Node{Kind: NodeFor, Tok: tok, Cond: init, Lhs: p.parseBlock()}
	}
	p.l.Expect(";")
	if !p.l.AtOp(";") {
		cond = p.parseExpr()
	}
	p.l.Expect(";")
	if !p.l.AtOp("{") {
		post = p.parseExpr()
	}
	loop := &Node{Kind: NodeFor, Tok: tok, Cond: cond, Lhs: p.parseBlock(), Rhs: post}
	if init == nil {
		return loop
	}
	init.Next = loop
	return &Node{Kind: NodeBlock, Tok: tok, Lhs: init}
}

func (p *Parser) parseExpr() *Node {
	return p.parseAssign()
}

func (p *Parser) parseAssign() *Node {
	lhs := p.parseLOr()
	if tok := p.l.Consume("="); tok != nil {
		return newBinary(NodeAssign, tok, lhs, p.parseAssign())
	}
	if tok := p.l.Consume(":="); tok != nil {
		if lhs.Kind != NodeIdent {
			bailout(ErrSemantic, lhs.Tok, "cannot define non-identifier")
		}
		if p.ctx == nil {
			bailout(ErrSemantic, tok, "':=' outside a function")
		}
		if _, exists := p.s.syms.FindCurrentBlock(lhs.Tok.Text); exists {
			bailout(ErrSemantic, lhs.Tok, "variable '%s' already declared", lhs.Tok.Text)
		}
		// The initializer still sees any outer variable of the same name.
		rhs := p.parseAssign()
		lhs.Sym = p.declareLocal(lhs.Tok)
		return &Node{Kind: NodeDefVar, Tok: lhs.Tok, Lhs: lhs, Rhs: rhs, Sym: lhs.Sym, Ershov: rhs.Ershov}
	}
	return lhs
}

func (p *Parser) parseLOr() *Node {
	n := p.parseLAnd()
	for {
		tok := p.l.Consume("||")
		if tok == nil {
			return n
		}
		n = newBinary(NodeLOr, tok, n, p.parseLAnd())
	}
}

func (p *Parser) parseLAnd() *Node {
	n := p.parseEquality()
	for {
		tok := p.l.Consume("&&")
		if tok == nil {
			return n
		}
		n = newBinary(NodeLAnd, tok, n, p.parseEquality())
	}
}

func (p *Parser) parseEquality() *Node {
	n := p.parseRelational()
	for {
		if tok := p.l.Consume("=="); tok != nil {
			n = newBinary(NodeEq, tok, n, p.parseRelational())
		} else if tok := p.l.Consume("!="); tok != nil {
			n = newBinary(NodeNe, tok, n, p.parseRelational())
		} else {
			return n
		}
	}
}

// parseRelational rewrites > and >= as < and <= with swapped operands.
func (p *Parser) parseRelational() *Node {
	n := p.parseAdditive()
	for {
		if tok := p.l.Consume("<"); tok != nil {
			n = newBinary(NodeLt, tok, n, p.parseAdditive())
		} else if tok := p.l.Consume("<="); tok != nil {
			n = newBinary(NodeLe, tok, n, p.parseAdditive())
		} else if tok := p.l.Consume(">"); tok != nil {
			n = newBinary(NodeLt, tok, p.parseAdditive(), n)
		} else if tok := p.l.Consume(">="); tok != nil {
			n = newBinary(NodeLe, tok, p.parseAdditive(), n)
		} else {
			return n
		}
	}
}

func (p *Parser) parseAdditive() *Node {
	n := p.parseMul()
	for {
		if tok := p.l.Consume("+"); tok != nil {
			n = newBinary(NodeAdd, tok, n, p.parseMul())
		} else if tok := p.l.Consume("-"); tok != nil {
			n = newBinary(NodeSub, tok, n, p.parseMul())
		} else {
			return n
		}
	}
}

func (p *Parser) parseMul() *Node {
	n := p.parseCast()
	for {
		if tok := p.l.Consume("*"); tok != nil {
			n = newBinary(NodeMul, tok, n, p.parseCast())
		} else if tok := p.l.Consume("/"); tok != nil {
			n = newBinary(NodeDiv, tok, n, p.parseCast())
		} else {
			return n
		}
	}
}

func (p *Parser) parseCast() *Node {
	n := p.parseUnary()
	for {
		tok := p.l.Consume("@")
		if tok == nil {
			return n
		}
		n = &Node{Kind: NodeCast, Tok: tok, Lhs: n, Spec: p.parseTypeNode(), Ershov: n.Ershov}
	}
}

func (p *Parser) parseUnary() *Node {
	switch tok := p.l.Peek(); {
	case p.l.Consume("+") != nil:
		return p.parseUnary()
	case p.l.Consume("-") != nil:
		zero := &Node{Kind: NodeInt, Tok: tok, Ershov: 1}
		return newBinary(NodeSub, tok, zero, p.parseUnary())
	case p.l.Consume("&") != nil:
		return newUnary(NodeAddr, tok, p.parseUnary())
	case p.l.Consume("*") != nil:
		return newUnary(NodeDeref, tok, p.parseUnary())
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() *Node {
	n := p.parsePrimary()
	for {
		tok := p.l.Peek()
		switch {
		case p.l.AtOp("("):
			n = &Node{Kind: NodeCall, Tok: n.Tok, Lhs: n, Rhs: p.parseArgs(), Ershov: 1}
		case p.l.Consume("[") != nil:
			idx := p.parseExpr()
			p.l.Expect("]")
			n = newBinary(NodeSubscript, tok, n, idx)
		case p.l.Consume(".") != nil:
			name := p.l.ExpectKind(IDENT)
			n = &Node{Kind: NodeDot, Tok: name, Lhs: n, Name: name.Text, Ershov: n.Ershov}
		case p.l.Consume("++") != nil:
			n = newUnary(NodeInc, tok, n)
		case p.l.Consume("--") != nil:
			n = newUnary(NodeDec, tok, n)
		default:
			return n
		}
	}
}

func (p *Parser) parseArgs() *Node {
	open := p.l.Expect("(")
	var args []*Node
	for !p.l.AtOp(")") {
		args = append(args, p.parseExpr())
		if p.l.Consume(",") == nil {
			break
		}
	}
	p.l.Expect(")")
	return &Node{Kind: NodeExprList, Tok: open, Lhs: chain(args)}
}

func (p *Parser) parsePrimary() *Node {
	tok := p.l.Peek()
	switch tok.Kind {
	case INT, CHAR:
		p.l.NextToken()
		return &Node{Kind: NodeInt, Tok: tok, Int: tok.Value, Ershov: 1}
	case STRING:
		p.l.NextToken()
		return &Node{Kind: NodeString, Tok: tok, Str: tok.Str, Ershov: 1}
	case SIZEOF:
		return p.parseSizeof()
	case IDENT:
		return p.parseIdentExpr()
	}
	if p.l.Consume("(") != nil {
		n := p.parseExpr()
		p.l.Expect(")")
		return n
	}
	bailout(ErrSyntax, tok, "expected expression, got %s", tok)
	return nil
}

func (p *Parser) parseIdentExpr() *Node {
	tok := p.l.NextToken()
	if p.l.AtOp("{") && p.ctx != nil {
		if t, ok := p.s.types.Find(tok.Text); ok {
			spec := &Node{Kind: NodeType, Tok: tok, Type: t}
			n := &Node{Kind: NodeComposite, Tok: tok, Spec: spec, Lhs: p.parseBraceList(), Ershov: 1}
			n.Sym = p.newTemp(tok)
			return n
		}
	}
	obj, ok := p.s.syms.Find(tok.Text)
	if !ok {
		obj = &Object{Kind: ObjUnresolved, Name: tok.Text, Tok: tok}
	}
	ident := &Node{Kind: NodeIdent, Tok: tok, Sym: obj, Ershov: 1}
	if p.l.AtOp("<") && (obj.Kind == ObjUnresolved || obj.Kind == ObjFunc) {
		if targs := p.tryTypeArgs(); targs != nil {
			return &Node{Kind: NodeCall, Tok: tok, Lhs: ident, Rhs: p.parseArgs(), Spec: chain(targs), Ershov: 1}
		}
	}
	return ident
}

// tryTypeArgs speculatively parses `<type, ...>` followed by `(`. On any
// mismatch the lexer is rewound and nil is returned so that `<` is read as
// a comparison.
func (p *Parser) tryTypeArgs() (targs []*Node) {
	saved := p.l.Save()
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*CompileError); ok && ce.Kind == ErrSyntax {
				p.l.Restore(saved)
				targs = nil
				return
			}
			panic(r)
		}
	}()
	p.l.Expect("<")
	for {
		if !startsType(p.l.Peek()) {
			p.l.Restore(saved)
			return nil
		}
		targs = append(targs, p.parseTypeNode())
		if p.l.Consume(",") == nil {
			break
		}
	}
	if p.l.Consume(">") == nil || !p.l.AtOp("(") {
		p.l.Restore(saved)
		return nil
	}
	return targs
}

func (p *Parser) parseSizeof() *Node {
	tok := p.l.NextToken() // sizeof
	p.l.Expect("(")
	n := &Node{Kind: NodeSizeof, Tok: tok, Ershov: 1}
	if spec := p.trySizeofType(); spec != nil {
		n.Spec = spec
	} else {
		n.Lhs = p.parseExpr()
	}
	p.l.Expect(")")
	return n
}

// trySizeofType accepts the operand of sizeof as a type only if every name
// in it is already known to be a type; otherwise it is an expression.
func (p *Parser) trySizeofType() (spec *Node) {
	if !startsType(p.l.Peek()) {
		return nil
	}
	saved := p.l.Save()
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*CompileError); ok && ce.Kind == ErrSyntax {
				p.l.Restore(saved)
				spec = nil
				return
			}
			panic(r)
		}
	}()
	spec = p.parseTypeNode()
	if !p.l.AtOp(")") || !typeNamesKnown(spec.Type) {
		p.l.Restore(saved)
		return nil
	}
	return spec
}

func typeNamesKnown(t *Type) bool {
	u := firstUnresolved(t)
	if u == nil || u.Kind == TypeGenericParam {
		return true
	}
	_, ok, _ := parseIntTypeName(u.Name)
	return ok
}

func (p *Parser) declareGlobal(obj *Object, what string) {
	if _, inserted := p.s.syms.PutGlobal(obj.Name, obj); !inserted {
		bailout(ErrSemantic, obj.Tok, "%s '%s' already declared", what, obj.Name)
	}
}

func (p *Parser) declareLocal(tok *Token) *Object {
	if _, exists := p.s.syms.FindCurrentBlock(tok.Text); exists {
		bailout(ErrSemantic, tok, "variable '%s' already declared", tok.Text)
	}
	obj := p.ctx.AddLocal(tok.Text, tok)
	p.s.syms.Put(tok.Text, obj)
	return obj
}

// declareVar declares a global at top level and a local inside a function.
func (p *Parser) declareVar(tok *Token) *Object {
	if p.ctx != nil {
		return p.declareLocal(tok)
	}
	obj := &Object{Kind: ObjGlobalVar, Name: tok.Text, Tok: tok}
	p.declareGlobal(obj, "variable")
	return obj
}

// newTemp reserves an unnamed frame slot for a brace initializer.
func (p *Parser) newTemp(tok *Token) *Object {
	if p.ctx == nil {
		bailout(ErrSemantic, tok, "brace initializer outside a function")
	}
	return p.ctx.AddLocal("", tok)
}

func newBinary(kind NodeKind, tok *Token, lhs, rhs *Node) *Node {
	n := &Node{Kind: kind, Tok: tok, Lhs: lhs, Rhs: rhs}
	if lhs.Ershov == rhs.Ershov {
		n.Ershov = lhs.Ershov + 1
	} else {
		n.Ershov = max(lhs.Ershov, rhs.Ershov)
	}
	return n
}

func newUnary(kind NodeKind, tok *Token, lhs *Node) *Node {
	return &Node{Kind: kind, Tok: tok, Lhs: lhs, Ershov: lhs.Ershov}
}
