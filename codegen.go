package main

import (
	"encoding/binary"
	"fmt"
)

// generator lowers the resolved AST as a stack machine: every expression
// pushes exactly one value, and operators pop their operands into
// temporaries, compute, and push the result. Aggregates are represented by
// their address.
type generator struct {
	s *Session
	a Asm

	fn       *Object
	retLabel string
	depth    int // values pushed by the current function and not yet popped
	labels   int
	loops    []loopLabels
	strs     [][]byte
}

type loopLabels struct {
	brk, cont string
}

func (g *generator) push(r Reg) {
	g.a.Push(r)
	g.depth++
}

func (g *generator) pop(r Reg) {
	g.a.Pop(r)
	g.depth--
}

func (g *generator) newLabel(kind string) string {
	g.labels++
	return fmt.Sprintf(".%s.%d", kind, g.labels)
}

func (g *generator) genProgram() {
	g.a.ProgramHeader()
	var globals []*Object
	funcs := 0
	for _, obj := range g.s.syms.Globals() {
		switch {
		case obj.Kind == ObjFunc && !obj.Ctx.IsGeneric():
			g.genFunc(obj)
			funcs++
		case obj.Kind == ObjGlobalVar:
			globals = append(globals, obj)
		}
	}
	if len(globals) > 0 {
		g.a.DataSection()
		for _, obj := range globals {
			g.genGlobal(obj)
		}
	}
	if len(g.strs) > 0 {
		g.a.ReadOnlySection()
		for i, s := range g.strs {
			b := append(append([]byte{}, s...), 0)
			g.a.Data(DataItem{Name: fmt.Sprintf(".str.%d", i), Local: true, Align: 1, Size: int64(len(b)), Bytes: b})
		}
	}
	g.s.logf("emitted %d functions, %d globals, %d strings", funcs, len(globals), len(g.strs))
}

func (g *generator) genFunc(obj *Object) {
	fn, ctx := obj.Def, obj.Ctx
	if len(ctx.Params) > len(argRegs) {
		bailout(ErrSemantic, fn.Tok, "function '%s' has more than %d parameters", obj.Name, len(argRegs))
	}
	g.fn = obj
	g.depth = 0
	g.retLabel = ".return." + obj.Name

	g.a.FuncHeader(obj.Name)
	g.a.EnterFrame()
	if size := ctx.FrameSize(); size > 0 {
		g.a.SubImm(RegSP, RegSP, size)
	}
	// Parameters are spilled before RegV is cleared because RegV may share
	// a register with the first argument.
	for i, p := range ctx.Params {
		g.a.Store(argRegs[i], RegFP, -p.Offset, p.Type.Size())
	}
	g.a.Zero(RegV)

	g.genStmt(fn.Rhs)
	if g.depth != 0 {
		bailout(ErrInternal, fn.Tok, "unbalanced stack in '%s': %d values left", obj.Name, g.depth)
	}
	g.a.Label(g.retLabel)
	g.a.Leave()
	g.a.Ret()
}

func (g *generator) genGlobal(obj *Object) {
	t := obj.Type
	d := DataItem{Name: obj.Name, Align: t.Align(), Size: t.Size()}
	if init := obj.Def.Rhs; init != nil {
		if init.Kind == NodeString {
			d.Ref = g.stringLabel(init)
		} else {
			v, _ := constInit(init)
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], uint64(v))
			d.Bytes = buf[:min(d.Size, 8)]
		}
	}
	g.a.Data(d)
}

func (g *generator) stringLabel(n *Node) string {
	g.strs = append(g.strs, n.Str)
	return fmt.Sprintf(".str.%d", len(g.strs)-1)
}

func (g *generator) genStmt(n *Node) {
	switch n.Kind {
	case NodeBlock:
		for _, s := range n.Lhs.List() {
			g.genStmt(s)
		}
	case NodeReturn:
		if n.Lhs != nil {
			g.genExpr(n.Lhs)
			g.pop(RegV)
		}
		g.a.Jmp(g.retLabel)
	case NodeIf:
		els, end := g.newLabel("else"), g.newLabel("end")
		g.genExpr(n.Cond)
		g.pop(RegT0)
		g.a.JmpIfZero(RegT0, els)
		g.genStmt(n.Lhs)
		g.a.Jmp(end)
		g.a.Label(els)
		if n.Rhs != nil {
			g.genStmt(n.Rhs)
		}
		g.a.Label(end)
	case NodeLoop:
		begin, end := g.newLabel("begin"), g.newLabel("break")
		g.loops = append(g.loops, loopLabels{brk: end, cont: begin})
		g.a.Label(begin)
		g.genStmt(n.Lhs)
		g.a.Jmp(begin)
		g.a.Label(end)
		g.loops = g.loops[:len(g.loops)-1]
	case NodeFor:
		cond, cont, end := g.newLabel("cond"), g.newLabel("continue"), g.newLabel("break")
		g.loops = append(g.loops, loopLabels{brk: end, cont: cont})
		g.a.Label(cond)
		if n.Cond != nil {
			g.genExpr(n.Cond)
			g.pop(RegT0)
			g.a.JmpIfZero(RegT0, end)
		}
		g.genStmt(n.Lhs)
		g.a.Label(cont)
		if n.Rhs != nil {
			g.genExpr(n.Rhs)
			g.pop(RegT0)
		}
		g.a.Jmp(cond)
		g.a.Label(end)
		g.loops = g.loops[:len(g.loops)-1]
	case NodeBreak:
		g.a.Jmp(g.loops[len(g.loops)-1].brk)
	case NodeContinue:
		g.a.Jmp(g.loops[len(g.loops)-1].cont)
	case NodeTypeDef:
	default:
		// The last expression statement leaves its value in RegV, which
		// becomes the result if the function falls off its end.
		g.genExpr(n)
		g.pop(RegV)
	}
}

// genAddr pushes the address of an lvalue.
func (g *generator) genAddr(n *Node) {
	switch n.Kind {
	case NodeIdent:
		if n.Sym.Kind == ObjLocalVar {
			g.a.AddImm(RegT0, RegFP, -n.Sym.Offset)
		} else {
			g.a.LoadLabelAddr(RegT0, n.Sym.Name, false)
		}
		g.push(RegT0)
	case NodeDeref:
		g.genExpr(n.Lhs)
	case NodeSubscript:
		g.genExpr(n.Lhs)
		g.genExpr(n.Rhs)
		g.pop(RegT1)
		g.pop(RegT0)
		g.scale(RegT1, Underlying(n.Lhs.Type).Base.Size())
		g.a.Add(RegT0, RegT0, RegT1)
		g.push(RegT0)
	case NodeDot, NodeArrow:
		if n.Kind == NodeDot {
			g.genAddr(n.Lhs)
		} else {
			g.genExpr(n.Lhs)
		}
		st := Underlying(n.Lhs.Type)
		if n.Kind == NodeArrow {
			st = Underlying(st.Base)
		}
		g.pop(RegT0)
		g.a.AddImm(RegT0, RegT0, st.Field(n.Name).Num)
		g.push(RegT0)
	case NodeInitList, NodeComposite:
		g.genInit(n)
	default:
		bailout(ErrInternal, n.Tok, "cannot take the address of %s", n.Kind)
	}
}

func (g *generator) genExpr(n *Node) {
	switch n.Kind {
	case NodeInt:
		g.a.MovImm(RegT0, n.Int)
		g.push(RegT0)
	case NodeString:
		g.a.LoadLabelAddr(RegT0, g.stringLabel(n), true)
		g.push(RegT0)
	case NodeIdent:
		g.genAddr(n)
		if k := n.Sym.Kind; k != ObjFunc && k != ObjExternFunc {
			g.load(n.Type)
		}
	case NodeSubscript, NodeDot, NodeArrow, NodeDeref:
		g.genAddr(n)
		g.load(n.Type)
	case NodeAddr:
		g.genAddr(n.Lhs)
	case NodeAssign:
		g.genAddr(n.Lhs)
		g.genExpr(n.Rhs)
		g.store(n.Lhs.Type)
	case NodeDefVar:
		g.genAddr(n.Lhs)
		if n.Rhs == nil {
			g.pop(RegT0)
			g.zeroFill(RegT0, n.Type.Size())
			g.a.MovImm(RegT0, 0)
			g.push(RegT0)
			return
		}
		g.genExpr(n.Rhs)
		g.store(n.Type)
	case NodeAdd, NodeSub:
		g.genOperands(n)
		g.genAdditive(n)
		g.push(RegT0)
	case NodeMul:
		g.genOperands(n)
		g.a.Mul(RegT0, RegT0, RegT1)
		g.push(RegT0)
	case NodeDiv:
		g.genOperands(n)
		g.a.Div(RegT0, RegT0, RegT1)
		g.push(RegT0)
	case NodeEq, NodeNe, NodeLt, NodeLe:
		g.genOperands(n)
		g.genCompare(n)
		g.push(RegT0)
	case NodeLAnd, NodeLOr:
		g.genLogical(n)
	case NodeCall:
		g.genCall(n)
	case NodeSizeof:
		var t *Type
		if n.Spec != nil {
			t = n.Spec.Type
		} else {
			t = n.Lhs.Type
		}
		g.a.MovImm(RegT0, t.Size())
		g.push(RegT0)
	case NodeInc, NodeDec:
		g.genIncDec(n)
	case NodeCast:
		g.genExpr(n.Lhs)
		if u := Underlying(n.Type); IsInteger(u) && u.Size() < 8 {
			g.pop(RegT0)
			g.a.Extend(RegT0, RegT0, u.Size(), u.Kind == TypeInt)
			g.push(RegT0)
		}
	case NodeInitList, NodeComposite:
		g.genInit(n)
	default:
		bailout(ErrInternal, n.Tok, "cannot generate code for %s", n.Kind)
	}
}

// genOperands evaluates both operands of a binary node into RegT0 (left)
// and RegT1 (right). When neither side has effects, the side needing more
// values goes first.
func (g *generator) genOperands(n *Node) {
	if pure(n.Lhs) && pure(n.Rhs) && n.Rhs.Ershov > n.Lhs.Ershov {
		g.genExpr(n.Rhs)
		g.genExpr(n.Lhs)
		g.pop(RegT0)
		g.pop(RegT1)
		return
	}
	g.genExpr(n.Lhs)
	g.genExpr(n.Rhs)
	g.pop(RegT1)
	g.pop(RegT0)
}

func pure(n *Node) bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case NodeCall, NodeAssign, NodeDefVar, NodeInc, NodeDec, NodeInitList, NodeComposite:
		return false
	}
	return pure(n.Lhs) && pure(n.Rhs) && pure(n.Cond)
}

func (g *generator) scale(r Reg, size int64) {
	if size == 1 {
		return
	}
	g.a.MovImm(RegX0, size)
	g.a.Mul(r, r, RegX0)
}

func elemSize(t *Type) int64 {
	return Underlying(t).Base.Size()
}

func (g *generator) genAdditive(n *Node) {
	lt, rt := n.Lhs.Type, n.Rhs.Type
	op := g.a.Add
	if n.Kind == NodeSub {
		op = g.a.Sub
	}
	switch {
	case IsPointerLike(lt) && IsPointerLike(rt):
		g.a.Sub(RegT0, RegT0, RegT1)
		if size := elemSize(lt); size > 1 {
			g.a.MovImm(RegT1, size)
			g.a.Div(RegT0, RegT0, RegT1)
		}
		return
	case IsPointerLike(lt):
		g.scale(RegT1, elemSize(lt))
	case IsPointerLike(rt):
		g.scale(RegT0, elemSize(rt))
	}
	op(RegT0, RegT0, RegT1)
}

// genCompare lowers the four comparison kinds; a < b is computed as b > a.
func (g *generator) genCompare(n *Node) {
	unsigned := IsUnsigned(decay(n.Lhs.Type)) || IsUnsigned(decay(n.Rhs.Type))
	switch n.Kind {
	case NodeEq:
		g.a.CmpSet(RegT0, CondEQ, RegT0, RegT1)
	case NodeNe:
		g.a.CmpSet(RegT0, CondNE, RegT0, RegT1)
	case NodeLt:
		cond := CondGT
		if unsigned {
			cond = CondUGT
		}
		g.a.CmpSet(RegT0, cond, RegT1, RegT0)
	case NodeLe:
		cond := CondLE
		if unsigned {
			cond = CondULE
		}
		g.a.CmpSet(RegT0, cond, RegT0, RegT1)
	}
}

func (g *generator) genLogical(n *Node) {
	rhs, short, end := g.newLabel("rhs"), g.newLabel("short"), g.newLabel("end")
	g.genExpr(n.Lhs)
	g.pop(RegT0)
	if n.Kind == NodeLAnd {
		g.a.JmpIfZero(RegT0, short)
	} else {
		g.a.JmpIfZero(RegT0, rhs)
		g.a.Jmp(short)
		g.a.Label(rhs)
	}
	g.genExpr(n.Rhs)
	g.pop(RegT0)
	if n.Kind == NodeLAnd {
		g.a.JmpIfZero(RegT0, short)
		g.a.MovImm(RegT0, 1)
	} else {
		g.a.JmpIfZero(RegT0, end)
		g.a.MovImm(RegT0, 1)
	}
	g.a.Jmp(end)
	g.a.Label(short)
	if n.Kind == NodeLAnd {
		g.a.MovImm(RegT0, 0)
	} else {
		g.a.MovImm(RegT0, 1)
	}
	g.a.Label(end)
	g.push(RegT0)
}

func (g *generator) genCall(n *Node) {
	callee := n.Lhs
	args := n.Rhs.Lhs.List()
	direct := callee.Kind == NodeIdent && (callee.Sym.Kind == ObjFunc || callee.Sym.Kind == ObjExternFunc)
	if !direct {
		g.genExpr(callee)
	}
	for _, arg := range args {
		g.genExpr(arg)
	}
	for i := len(args) - 1; i >= 0; i-- {
		g.pop(argRegs[i])
	}
	if !direct {
		g.pop(RegX0)
	}
	// Values still on the stack may leave it misaligned for the callee.
	pad := int64(g.depth)*g.a.SlotSize()%16 != 0
	if pad {
		g.a.SubImm(RegSP, RegSP, 8)
	}
	if direct {
		g.a.Call(callee.Sym.Name)
	} else {
		g.a.CallReg(RegX0)
	}
	if pad {
		g.a.AddImm(RegSP, RegSP, 8)
	}
	if u := Underlying(n.Type); IsInteger(u) && u.Size() < 8 {
		g.a.Extend(RegV, RegV, u.Size(), u.Kind == TypeInt)
	}
	g.push(RegV)
}

func (g *generator) genIncDec(n *Node) {
	t := Underlying(n.Lhs.Type)
	step := int64(1)
	if t.Kind == TypePointer {
		step = t.Base.Size()
	}
	if n.Kind == NodeDec {
		step = -step
	}
	g.genAddr(n.Lhs)
	g.pop(RegT0)
	g.a.Load(RegT1, RegT0, 0, t.Size(), t.Kind == TypeInt)
	g.a.MovReg(RegX0, RegT1)
	g.a.AddImm(RegT1, RegT1, step)
	g.a.Store(RegT1, RegT0, 0, t.Size())
	g.push(RegX0)
}

// load replaces the address on top of the stack with the value it points
// to. Aggregates stay as addresses.
func (g *generator) load(t *Type) {
	u := Underlying(t)
	if u.Kind == TypeArray || u.Kind == TypeStruct {
		return
	}
	g.pop(RegT0)
	g.a.Load(RegT0, RegT0, 0, u.Size(), u.Kind == TypeInt)
	g.push(RegT0)
}

// store pops a value and an address, stores the value and pushes it back.
func (g *generator) store(t *Type) {
	u := Underlying(t)
	g.pop(RegT1)
	g.pop(RegT0)
	if u.Kind == TypeArray || u.Kind == TypeStruct {
		g.copyBytes(RegT0, RegT1, u.Size())
		g.push(RegT0)
		return
	}
	size := u.Size()
	g.a.Store(RegT1, RegT0, 0, size)
	if size < 8 {
		g.a.Extend(RegT1, RegT1, size, u.Kind == TypeInt)
	}
	g.push(RegT1)
}

func chunkSize(n int64) int64 {
	switch {
	case n >= 8:
		return 8
	case n >= 4:
		return 4
	case n >= 2:
		return 2
	}
	return 1
}

func (g *generator) copyBytes(dst, src Reg, size int64) {
	for off := int64(0); off < size; {
		c := chunkSize(size - off)
		g.a.Load(RegX0, src, off, c, false)
		g.a.Store(RegX0, dst, off, c)
		off += c
	}
}

func (g *generator) zeroFill(base Reg, size int64) {
	for off := int64(0); off < size; {
		c := chunkSize(size - off)
		g.a.Store(RegZero, base, off, c)
		off += c
	}
}

// genInit fills the frame slot of a brace initializer and pushes its
// address. Elements without an initializer are zero.
func (g *generator) genInit(n *Node) {
	t := Underlying(n.Type)
	base := -n.Sym.Offset
	g.a.AddImm(RegT0, RegFP, base)
	g.zeroFill(RegT0, t.Size())
	for i, e := range n.Lhs.List() {
		var et *Type
		var off int64
		if t.Kind == TypeArray {
			et = t.Base
			off = int64(i) * et.Size()
		} else {
			f := t.Fields()[i]
			et, off = f.Base, f.Num
		}
		g.a.AddImm(RegT0, RegFP, base+off)
		g.push(RegT0)
		g.genExpr(e)
		g.store(et)
		g.pop(RegT0)
	}
	g.a.AddImm(RegT0, RegFP, base)
	g.push(RegT0)
}
