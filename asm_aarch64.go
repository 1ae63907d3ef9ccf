package main

import (
	"bufio"
	"fmt"
	"io"
	"math/bits"
)

var aarch64Regs = map[Reg]int{
	RegV:  0,
	RegA0: 0,
	RegA1: 1,
	RegA2: 2,
	RegA3: 3,
	RegA4: 4,
	RegA5: 5,
	RegX0: 9,
	RegX1: 10,
	RegS0: 19,
	RegS1: 20,
	RegS2: 21,
	RegS3: 22,
	RegS4: 23,
	RegFP: 29,
}

// AArch64RegName returns the x form of r, or the w form for accesses of
// four bytes or less.
func AArch64RegName(r Reg, size int64) string {
	prefix := "x"
	if size < 8 {
		prefix = "w"
	}
	switch r {
	case RegSP:
		if size < 8 {
			return "wsp"
		}
		return "sp"
	case RegZero:
		return prefix + "zr"
	}
	n, ok := aarch64Regs[r]
	if !ok {
		panic(fmt.Sprintf("aarch64: register %d has no name", r))
	}
	return fmt.Sprintf("%s%d", prefix, n)
}

var aarch64Conds = map[Cond]string{
	CondEQ:  "eq",
	CondNE:  "ne",
	CondGT:  "gt",
	CondLE:  "le",
	CondUGT: "hi",
	CondULE: "ls",
}

type aarch64Asm struct {
	w *bufio.Writer
}

func newAArch64Asm(w io.Writer) *aarch64Asm {
	return &aarch64Asm{w: bufio.NewWriter(w)}
}

func (a *aarch64Asm) emit(format string, args ...any) {
	fmt.Fprintf(a.w, "\t"+format+"\n", args...)
}

func (a *aarch64Asm) raw(format string, args ...any) {
	fmt.Fprintf(a.w, format+"\n", args...)
}

func (a *aarch64Asm) reg(r Reg) string {
	return AArch64RegName(r, 8)
}

func (a *aarch64Asm) local(name string) string {
	return "L" + name
}

func (a *aarch64Asm) global(name string) string {
	return "_" + name
}

func (a *aarch64Asm) SlotSize() int64 { return 16 }

func (a *aarch64Asm) ProgramHeader() {
	a.raw(".text")
}

func (a *aarch64Asm) FuncHeader(name string) {
	a.raw("")
	a.raw(".global %s", a.global(name))
	a.raw(".p2align 2")
	a.raw("%s:", a.global(name))
}

func (a *aarch64Asm) DataSection() {
	a.raw("")
	a.raw(".data")
}

func (a *aarch64Asm) ReadOnlySection() {
	a.raw("")
	a.raw(".section __TEXT,__const")
}

func (a *aarch64Asm) Data(d DataItem) {
	var name string
	if d.Local {
		name = a.local(d.Name)
	} else {
		name = a.global(d.Name)
		a.raw(".global %s", name)
	}
	a.raw(".p2align %d", bits.TrailingZeros64(uint64(max(d.Align, 1))))
	a.raw("%s:", name)
	for _, line := range dataLines(d, ".quad "+a.local(d.Ref)) {
		a.emit("%s", line)
	}
}

func (a *aarch64Asm) Label(name string) {
	a.raw("%s:", a.local(name))
}

func (a *aarch64Asm) EnterFrame() {
	a.emit("stp x29, x30, [sp, #-16]!")
	a.emit("mov x29, sp")
}

func (a *aarch64Asm) Leave() {
	a.emit("mov sp, x29")
	a.emit("ldp x29, x30, [sp], #16")
}

func (a *aarch64Asm) Ret() {
	a.emit("ret")
}

// MovImm uses a single mov for small values and a movz/movk sequence
// otherwise.
func (a *aarch64Asm) MovImm(dst Reg, imm int64) {
	if imm > -65536 && imm < 65536 {
		a.emit("mov %s, #%d", a.reg(dst), imm)
		return
	}
	u := uint64(imm)
	first := true
	for shift := 0; shift < 64; shift += 16 {
		chunk := (u >> shift) & 0xffff
		if chunk == 0 {
			continue
		}
		op := "movk"
		if first {
			op = "movz"
			first = false
		}
		a.emit("%s %s, #%d, lsl #%d", op, a.reg(dst), chunk, shift)
	}
}

func (a *aarch64Asm) MovReg(dst, src Reg) {
	if dst != src {
		a.emit("mov %s, %s", a.reg(dst), a.reg(src))
	}
}

func (a *aarch64Asm) Add(dst, x, y Reg) {
	a.emit("add %s, %s, %s", a.reg(dst), a.reg(x), a.reg(y))
}

func (a *aarch64Asm) Sub(dst, x, y Reg) {
	a.emit("sub %s, %s, %s", a.reg(dst), a.reg(x), a.reg(y))
}

func (a *aarch64Asm) Mul(dst, x, y Reg) {
	a.emit("mul %s, %s, %s", a.reg(dst), a.reg(x), a.reg(y))
}

func (a *aarch64Asm) Div(dst, x, y Reg) {
	a.emit("sdiv %s, %s, %s", a.reg(dst), a.reg(x), a.reg(y))
}

// AddImm uses the 12-bit immediate forms and falls back to x10.
func (a *aarch64Asm) AddImm(dst, src Reg, imm int64) {
	switch {
	case imm >= 0 && imm < 4096:
		a.emit("add %s, %s, #%d", a.reg(dst), a.reg(src), imm)
	case imm < 0 && -imm < 4096:
		a.emit("sub %s, %s, #%d", a.reg(dst), a.reg(src), -imm)
	default:
		a.MovImm(RegX1, imm)
		a.emit("add %s, %s, x10", a.reg(dst), a.reg(src))
	}
}

func (a *aarch64Asm) SubImm(dst, src Reg, imm int64) {
	a.AddImm(dst, src, -imm)
}

// The stack pointer must stay 16-byte aligned, so each slot is 16 bytes.
func (a *aarch64Asm) Push(r Reg) {
	a.emit("str %s, [sp, #-16]!", a.reg(r))
}

func (a *aarch64Asm) Pop(r Reg) {
	a.emit("ldr %s, [sp], #16", a.reg(r))
}

// address returns base and disp usable by the unscaled load/store forms,
// computing out-of-range addresses into x10.
func (a *aarch64Asm) address(base Reg, disp int64) string {
	if disp < -256 || disp > 255 {
		a.AddImm(RegX1, base, disp)
		base, disp = RegX1, 0
	}
	if disp == 0 {
		return "[" + a.reg(base) + "]"
	}
	return fmt.Sprintf("[%s, #%d]", a.reg(base), disp)
}

func (a *aarch64Asm) Load(dst, base Reg, disp, size int64, signed bool) {
	m := a.address(base, disp)
	switch {
	case size == 8:
		a.emit("ldur %s, %s", a.reg(dst), m)
	case size == 4 && signed:
		a.emit("ldursw %s, %s", a.reg(dst), m)
	case size == 4:
		a.emit("ldur %s, %s", AArch64RegName(dst, 4), m)
	case size == 2 && signed:
		a.emit("ldursh %s, %s", a.reg(dst), m)
	case size == 2:
		a.emit("ldurh %s, %s", AArch64RegName(dst, 4), m)
	case signed:
		a.emit("ldursb %s, %s", a.reg(dst), m)
	default:
		a.emit("ldurb %s, %s", AArch64RegName(dst, 4), m)
	}
}

func (a *aarch64Asm) Store(src, base Reg, disp, size int64) {
	m := a.address(base, disp)
	switch size {
	case 8:
		a.emit("stur %s, %s", a.reg(src), m)
	case 4:
		a.emit("stur %s, %s", AArch64RegName(src, 4), m)
	case 2:
		a.emit("sturh %s, %s", AArch64RegName(src, 4), m)
	default:
		a.emit("sturb %s, %s", AArch64RegName(src, 4), m)
	}
}

func (a *aarch64Asm) Extend(dst, src Reg, size int64, signed bool) {
	w := AArch64RegName(src, 4)
	switch {
	case size >= 8:
		a.MovReg(dst, src)
	case size == 4 && signed:
		a.emit("sxtw %s, %s", a.reg(dst), w)
	case size == 4:
		a.emit("mov %s, %s", AArch64RegName(dst, 4), w)
	case size == 2 && signed:
		a.emit("sxth %s, %s", a.reg(dst), w)
	case size == 2:
		a.emit("uxth %s, %s", AArch64RegName(dst, 4), w)
	case signed:
		a.emit("sxtb %s, %s", a.reg(dst), w)
	default:
		a.emit("uxtb %s, %s", AArch64RegName(dst, 4), w)
	}
}

func (a *aarch64Asm) CmpSet(dst Reg, cond Cond, x, y Reg) {
	a.emit("cmp %s, %s", a.reg(x), a.reg(y))
	a.emit("cset %s, %s", a.reg(dst), aarch64Conds[cond])
}

func (a *aarch64Asm) Zero(dst Reg) {
	r := a.reg(dst)
	a.emit("eor %s, %s, %s", r, r, r)
}

func (a *aarch64Asm) Jmp(label string) {
	a.emit("b %s", a.local(label))
}

func (a *aarch64Asm) JmpIfZero(r Reg, label string) {
	a.emit("cbz %s, %s", a.reg(r), a.local(label))
}

func (a *aarch64Asm) Call(sym string) {
	a.emit("bl %s", a.global(sym))
}

func (a *aarch64Asm) CallReg(r Reg) {
	a.emit("blr %s", a.reg(r))
}

func (a *aarch64Asm) LoadLabelAddr(dst Reg, sym string, local bool) {
	if local {
		sym = a.local(sym)
	} else {
		sym = a.global(sym)
	}
	a.emit("adrp %s, %s@PAGE", a.reg(dst), sym)
	a.emit("add %s, %s, %s@PAGEOFF", a.reg(dst), a.reg(dst), sym)
}

func (a *aarch64Asm) Flush() error {
	return a.w.Flush()
}
