package main

import (
	"bufio"
	"fmt"
	"io"
)

// Register stems. The sized names are derived in X86RegName.
var x86Regs = map[Reg]string{
	RegV:  "a",
	RegA0: "di",
	RegA1: "si",
	RegA2: "d",
	RegA3: "c",
	RegA4: "r8",
	RegA5: "r9",
	RegX0: "r10",
	RegX1: "r11",
	RegS0: "b",
	RegS1: "r12",
	RegS2: "r13",
	RegS3: "r14",
	RegS4: "r15",
	RegFP: "bp",
	RegSP: "sp",
}

// X86RegName returns the name of r when accessed with the given width in
// bytes.
func X86RegName(r Reg, size int64) string {
	stem, ok := x86Regs[r]
	if !ok {
		panic(fmt.Sprintf("x86-64: register %d has no name", r))
	}
	switch {
	case len(stem) == 1: // a b c d
		switch size {
		case 1:
			return stem + "l"
		case 2:
			return stem + "x"
		case 4:
			return "e" + stem + "x"
		}
		return "r" + stem + "x"
	case stem[0] == 'r': // r8 .. r15
		switch size {
		case 1:
			return stem + "b"
		case 2:
			return stem + "w"
		case 4:
			return stem + "d"
		}
		return stem
	default: // di si bp sp
		switch size {
		case 1:
			return stem + "l"
		case 2:
			return stem
		case 4:
			return "e" + stem
		}
		return "r" + stem
	}
}

func x86PtrSize(size int64) string {
	switch size {
	case 1:
		return "byte ptr"
	case 2:
		return "word ptr"
	case 4:
		return "dword ptr"
	}
	return "qword ptr"
}

var x86Setcc = map[Cond]string{
	CondEQ:  "sete",
	CondNE:  "setne",
	CondGT:  "setg",
	CondLE:  "setle",
	CondUGT: "seta",
	CondULE: "setbe",
}

type x86Asm struct {
	w *bufio.Writer
}

func newX86Asm(w io.Writer) *x86Asm {
	return &x86Asm{w: bufio.NewWriter(w)}
}

func (a *x86Asm) emit(format string, args ...any) {
	fmt.Fprintf(a.w, "\t"+format+"\n", args...)
}

func (a *x86Asm) raw(format string, args ...any) {
	fmt.Fprintf(a.w, format+"\n", args...)
}

func (a *x86Asm) reg(r Reg) string {
	return X86RegName(r, 8)
}

func (a *x86Asm) local(name string) string {
	return ".L" + name
}

func (a *x86Asm) mem(base Reg, disp int64) string {
	switch {
	case disp > 0:
		return fmt.Sprintf("[%s + %d]", a.reg(base), disp)
	case disp < 0:
		return fmt.Sprintf("[%s - %d]", a.reg(base), -disp)
	}
	return "[" + a.reg(base) + "]"
}

func (a *x86Asm) SlotSize() int64 { return 8 }

func (a *x86Asm) ProgramHeader() {
	a.raw(".intel_syntax noprefix")
	a.raw(".text")
}

func (a *x86Asm) FuncHeader(name string) {
	a.raw("")
	a.raw(".global %s", name)
	a.raw("%s:", name)
}

func (a *x86Asm) DataSection() {
	a.raw("")
	a.raw(".data")
}

func (a *x86Asm) ReadOnlySection() {
	a.raw("")
	a.raw(".section .rodata")
}

func (a *x86Asm) Data(d DataItem) {
	name := d.Name
	if d.Local {
		name = a.local(name)
	} else {
		a.raw(".global %s", name)
	}
	a.raw(".balign %d", max(d.Align, 1))
	a.raw("%s:", name)
	for _, line := range dataLines(d, ".quad "+a.local(d.Ref)) {
		a.emit("%s", line)
	}
}

func (a *x86Asm) Label(name string) {
	a.raw("%s:", a.local(name))
}

func (a *x86Asm) EnterFrame() {
	a.emit("push rbp")
	a.emit("mov rbp, rsp")
}

func (a *x86Asm) Leave() {
	a.emit("leave")
}

func (a *x86Asm) Ret() {
	a.emit("ret")
}

func (a *x86Asm) MovImm(dst Reg, imm int64) {
	a.emit("mov %s, %d", a.reg(dst), imm)
}

func (a *x86Asm) MovReg(dst, src Reg) {
	switch {
	case src == RegZero:
		a.Zero(dst)
	case dst != src:
		a.emit("mov %s, %s", a.reg(dst), a.reg(src))
	}
}

// binop emits a two-address instruction for dst = x op y.
func (a *x86Asm) binop(op string, dst, x, y Reg, commutative bool) {
	switch {
	case dst == x:
		a.emit("%s %s, %s", op, a.reg(dst), a.reg(y))
	case dst == y && commutative:
		a.emit("%s %s, %s", op, a.reg(dst), a.reg(x))
	case dst == y:
		a.emit("mov r11, %s", a.reg(y))
		a.emit("mov %s, %s", a.reg(dst), a.reg(x))
		a.emit("%s %s, r11", op, a.reg(dst))
	default:
		a.emit("mov %s, %s", a.reg(dst), a.reg(x))
		a.emit("%s %s, %s", op, a.reg(dst), a.reg(y))
	}
}

func (a *x86Asm) Add(dst, x, y Reg) { a.binop("add", dst, x, y, true) }
func (a *x86Asm) Sub(dst, x, y Reg) { a.binop("sub", dst, x, y, false) }
func (a *x86Asm) Mul(dst, x, y Reg) { a.binop("imul", dst, x, y, true) }

func fitsInt32(v int64) bool {
	return v >= -1<<31 && v < 1<<31
}

func (a *x86Asm) AddImm(dst, src Reg, imm int64) {
	switch {
	case !fitsInt32(imm):
		a.emit("mov r11, %d", imm)
		a.binop("add", dst, src, RegX1, true)
	case dst == src && imm < 0:
		a.emit("sub %s, %d", a.reg(dst), -imm)
	case dst == src:
		a.emit("add %s, %d", a.reg(dst), imm)
	default:
		a.emit("lea %s, %s", a.reg(dst), a.mem(src, imm))
	}
}

func (a *x86Asm) SubImm(dst, src Reg, imm int64) {
	a.AddImm(dst, src, -imm)
}

// Div sign-extends rax into rdx:rax and divides by r11.
func (a *x86Asm) Div(dst, x, y Reg) {
	a.emit("mov r11, %s", a.reg(y))
	if x != RegV {
		a.emit("mov rax, %s", a.reg(x))
	}
	a.emit("cqo")
	a.emit("idiv r11")
	if dst != RegV {
		a.emit("mov %s, rax", a.reg(dst))
	}
}

func (a *x86Asm) Push(r Reg) { a.emit("push %s", a.reg(r)) }
func (a *x86Asm) Pop(r Reg)  { a.emit("pop %s", a.reg(r)) }

func (a *x86Asm) Load(dst, base Reg, disp, size int64, signed bool) {
	m := x86PtrSize(size) + " " + a.mem(base, disp)
	switch {
	case size == 8:
		a.emit("mov %s, %s", a.reg(dst), m)
	case size == 4 && signed:
		a.emit("movsxd %s, %s", a.reg(dst), m)
	case size == 4:
		a.emit("mov %s, %s", X86RegName(dst, 4), m)
	case signed:
		a.emit("movsx %s, %s", a.reg(dst), m)
	default:
		a.emit("movzx %s, %s", a.reg(dst), m)
	}
}

func (a *x86Asm) Store(src, base Reg, disp, size int64) {
	m := x86PtrSize(size) + " " + a.mem(base, disp)
	if src == RegZero {
		a.emit("mov %s, 0", m)
		return
	}
	a.emit("mov %s, %s", m, X86RegName(src, size))
}

func (a *x86Asm) Extend(dst, src Reg, size int64, signed bool) {
	switch {
	case size >= 8:
		a.MovReg(dst, src)
	case size == 4 && signed:
		a.emit("movsxd %s, %s", a.reg(dst), X86RegName(src, 4))
	case size == 4:
		a.emit("mov %s, %s", X86RegName(dst, 4), X86RegName(src, 4))
	case signed:
		a.emit("movsx %s, %s", a.reg(dst), X86RegName(src, size))
	default:
		a.emit("movzx %s, %s", a.reg(dst), X86RegName(src, size))
	}
}

func (a *x86Asm) CmpSet(dst Reg, cond Cond, x, y Reg) {
	a.emit("cmp %s, %s", a.reg(x), a.reg(y))
	a.emit("%s %s", x86Setcc[cond], X86RegName(dst, 1))
	a.emit("movzx %s, %s", a.reg(dst), X86RegName(dst, 1))
}

func (a *x86Asm) Zero(dst Reg) {
	r := X86RegName(dst, 4)
	a.emit("xor %s, %s", r, r)
}

func (a *x86Asm) Jmp(label string) {
	a.emit("jmp %s", a.local(label))
}

func (a *x86Asm) JmpIfZero(r Reg, label string) {
	a.emit("cmp %s, 0", a.reg(r))
	a.emit("je %s", a.local(label))
}

// Calls clear al, which tells variadic callees that no vector registers
// carry arguments.
func (a *x86Asm) Call(sym string) {
	a.emit("xor eax, eax")
	a.emit("call %s", sym)
}

func (a *x86Asm) CallReg(r Reg) {
	a.emit("xor eax, eax")
	a.emit("call %s", a.reg(r))
}

func (a *x86Asm) LoadLabelAddr(dst Reg, sym string, local bool) {
	if local {
		sym = a.local(sym)
	}
	a.emit("lea %s, [rip + %s]", a.reg(dst), sym)
}

func (a *x86Asm) Flush() error {
	return a.w.Flush()
}
