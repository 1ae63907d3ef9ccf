package main

import (
	"bytes"
	"testing"

	"github.com/nalgeon/be"
)

func TestParseArch(t *testing.T) {
	tests := []struct {
		input    string
		expected Arch
	}{
		{"x86-64", ArchX86_64},
		{"x86_64", ArchX86_64},
		{"AMD64", ArchX86_64},
		{"aarch64", ArchAArch64},
		{"arm64", ArchAArch64},
	}
	for _, test := range tests {
		arch, err := ParseArch(test.input)
		be.Err(t, err, nil)
		be.Equal(t, arch, test.expected)
	}

	_, err := ParseArch("riscv")
	be.Err(t, err, `unknown architecture "riscv" (want x86-64 or aarch64)`)
}

func TestNewAsmRejectsUnknownArch(t *testing.T) {
	_, err := NewAsm(Arch("mips"), &bytes.Buffer{})
	be.Err(t, err, `unsupported architecture "mips"`)
}

func TestX86RegName(t *testing.T) {
	tests := []struct {
		reg      Reg
		size     int64
		expected string
	}{
		{RegV, 8, "rax"},
		{RegV, 4, "eax"},
		{RegV, 2, "ax"},
		{RegV, 1, "al"},
		{RegA0, 8, "rdi"},
		{RegA0, 4, "edi"},
		{RegA0, 2, "di"},
		{RegA0, 1, "dil"},
		{RegA1, 1, "sil"},
		{RegA2, 8, "rdx"},
		{RegA3, 1, "cl"},
		{RegA4, 8, "r8"},
		{RegA4, 4, "r8d"},
		{RegA4, 2, "r8w"},
		{RegA5, 1, "r9b"},
		{RegX0, 8, "r10"},
		{RegX1, 8, "r11"},
		{RegS0, 8, "rbx"},
		{RegS4, 8, "r15"},
		{RegFP, 8, "rbp"},
		{RegSP, 8, "rsp"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			be.Equal(t, X86RegName(test.reg, test.size), test.expected)
		})
	}
}

func TestAArch64RegName(t *testing.T) {
	tests := []struct {
		reg      Reg
		size     int64
		expected string
	}{
		{RegV, 8, "x0"},
		{RegA0, 8, "x0"},
		{RegA1, 4, "w1"},
		{RegA5, 8, "x5"},
		{RegX0, 8, "x9"},
		{RegX1, 1, "w10"},
		{RegS0, 8, "x19"},
		{RegFP, 8, "x29"},
		{RegSP, 8, "sp"},
		{RegSP, 4, "wsp"},
		{RegZero, 8, "xzr"},
		{RegZero, 1, "wzr"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			be.Equal(t, AArch64RegName(test.reg, test.size), test.expected)
		})
	}
}

func TestDataLines(t *testing.T) {
	be.Equal(t, dataLines(DataItem{Size: 8, Bytes: []byte{42}}, ".quad x"), []string{".byte 42", ".zero 7"})
	be.Equal(t, dataLines(DataItem{Size: 2, Bytes: []byte{1, 2}}, ".quad x"), []string{".byte 1,2"})
	be.Equal(t, dataLines(DataItem{Size: 16}, ".quad x"), []string{".zero 16"})
	be.Equal(t, dataLines(DataItem{Size: 8, Ref: "str.0"}, ".quad .Lstr.0"), []string{".quad .Lstr.0"})
	be.Equal(t, len(dataLines(DataItem{}, ".quad x")), 0)
}

func emitX86(t *testing.T, f func(a Asm)) string {
	t.Helper()
	var buf bytes.Buffer
	a, err := NewAsm(ArchX86_64, &buf)
	be.Err(t, err, nil)
	f(a)
	be.Err(t, a.Flush(), nil)
	return buf.String()
}

func emitAArch64(t *testing.T, f func(a Asm)) string {
	t.Helper()
	var buf bytes.Buffer
	a, err := NewAsm(ArchAArch64, &buf)
	be.Err(t, err, nil)
	f(a)
	be.Err(t, a.Flush(), nil)
	return buf.String()
}

func TestX86Instructions(t *testing.T) {
	tests := []struct {
		name     string
		emit     func(a Asm)
		expected string
	}{
		{"add into first", func(a Asm) { a.Add(RegA0, RegA0, RegA1) }, "\tadd rdi, rsi\n"},
		{"add into second", func(a Asm) { a.Add(RegA1, RegA0, RegA1) }, "\tadd rsi, rdi\n"},
		{"sub into second", func(a Asm) { a.Sub(RegA1, RegA0, RegA1) }, "\tmov r11, rsi\n\tmov rsi, rdi\n\tsub rsi, r11\n"},
		{"add immediate", func(a Asm) { a.AddImm(RegA0, RegA0, 8) }, "\tadd rdi, 8\n"},
		{"sub immediate", func(a Asm) { a.SubImm(RegA0, RegA0, 8) }, "\tsub rdi, 8\n"},
		{"frame address", func(a Asm) { a.AddImm(RegA0, RegFP, -16) }, "\tlea rdi, [rbp - 16]\n"},
		{"div", func(a Asm) { a.Div(RegA0, RegA0, RegA1) }, "\tmov r11, rsi\n\tmov rax, rdi\n\tcqo\n\tidiv r11\n\tmov rdi, rax\n"},
		{"load byte", func(a Asm) { a.Load(RegA0, RegA0, 0, 1, false) }, "\tmovzx rdi, byte ptr [rdi]\n"},
		{"load int16", func(a Asm) { a.Load(RegA1, RegA0, 2, 2, true) }, "\tmovsx rsi, word ptr [rdi + 2]\n"},
		{"load int32", func(a Asm) { a.Load(RegA0, RegA0, 0, 4, true) }, "\tmovsxd rdi, dword ptr [rdi]\n"},
		{"store byte", func(a Asm) { a.Store(RegA1, RegA0, 0, 1) }, "\tmov byte ptr [rdi], sil\n"},
		{"store zero", func(a Asm) { a.Store(RegZero, RegA0, 8, 8) }, "\tmov qword ptr [rdi + 8], 0\n"},
		{"extend", func(a Asm) { a.Extend(RegA0, RegA0, 1, true) }, "\tmovsx rdi, dil\n"},
		{"compare", func(a Asm) { a.CmpSet(RegA0, CondUGT, RegA0, RegA1) }, "\tcmp rdi, rsi\n\tseta dil\n\tmovzx rdi, dil\n"},
		{"branch", func(a Asm) { a.JmpIfZero(RegA0, "else.1") }, "\tcmp rdi, 0\n\tje .Lelse.1\n"},
		{"call", func(a Asm) { a.Call("puts") }, "\txor eax, eax\n\tcall puts\n"},
		{"string address", func(a Asm) { a.LoadLabelAddr(RegA0, ".str.0", true) }, "\tlea rdi, [rip + .L.str.0]\n"},
		{"zero", func(a Asm) { a.Zero(RegV) }, "\txor eax, eax\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			be.Equal(t, emitX86(t, test.emit), test.expected)
		})
	}
}

func TestAArch64Instructions(t *testing.T) {
	tests := []struct {
		name     string
		emit     func(a Asm)
		expected string
	}{
		{"small immediate", func(a Asm) { a.MovImm(RegV, -1) }, "\tmov x0, #-1\n"},
		{"wide immediate", func(a Asm) { a.MovImm(RegV, 0x12345) }, "\tmovz x0, #9029, lsl #0\n\tmovk x0, #1, lsl #16\n"},
		{"aligned immediate", func(a Asm) { a.MovImm(RegA1, 65536) }, "\tmovz x1, #1, lsl #16\n"},
		{"add immediate", func(a Asm) { a.AddImm(RegA0, RegFP, -8) }, "\tsub x0, x29, #8\n"},
		{"push", func(a Asm) { a.Push(RegA0) }, "\tstr x0, [sp, #-16]!\n"},
		{"load byte", func(a Asm) { a.Load(RegA0, RegA0, 0, 1, false) }, "\tldurb w0, [x0]\n"},
		{"store far", func(a Asm) { a.Store(RegA1, RegFP, -512, 8) }, "\tsub x10, x29, #512\n\tstur x1, [x10]\n"},
		{"extend", func(a Asm) { a.Extend(RegA0, RegA0, 2, true) }, "\tsxth x0, w0\n"},
		{"compare", func(a Asm) { a.CmpSet(RegA0, CondULE, RegA0, RegA1) }, "\tcmp x0, x1\n\tcset x0, ls\n"},
		{"branch", func(a Asm) { a.JmpIfZero(RegA0, ".break.3") }, "\tcbz x0, L.break.3\n"},
		{"call", func(a Asm) { a.Call("puts") }, "\tbl _puts\n"},
		{"global address", func(a Asm) { a.LoadLabelAddr(RegA0, "g", false) }, "\tadrp x0, _g@PAGE\n\tadd x0, x0, _g@PAGEOFF\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			be.Equal(t, emitAArch64(t, test.emit), test.expected)
		})
	}
}

func TestX86Data(t *testing.T) {
	out := emitX86(t, func(a Asm) {
		a.DataSection()
		a.Data(DataItem{Name: "g", Align: 8, Size: 8, Bytes: []byte{1}})
		a.ReadOnlySection()
		a.Data(DataItem{Name: ".str.0", Local: true, Align: 1, Size: 3, Bytes: []byte{104, 105, 0}})
	})
	be.Equal(t, out, "\n.data\n.global g\n.balign 8\ng:\n\t.byte 1\n\t.zero 7\n"+
		"\n.section .rodata\n.balign 1\n.L.str.0:\n\t.byte 104,105,0\n")
}

func TestAArch64Data(t *testing.T) {
	out := emitAArch64(t, func(a Asm) {
		a.Data(DataItem{Name: "p", Align: 8, Size: 8, Ref: ".str.0"})
	})
	be.Equal(t, out, ".global _p\n.p2align 3\n_p:\n\t.quad L.str.0\n")
}
