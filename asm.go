package main

import (
	"fmt"
	"io"
	"strings"
)

// Arch names a target instruction set.
type Arch string

const (
	ArchX86_64  Arch = "x86-64"
	ArchAArch64 Arch = "aarch64"
)

// ParseArch accepts the canonical names and the common aliases.
func ParseArch(s string) (Arch, error) {
	switch strings.ToLower(s) {
	case "x86-64", "x86_64", "amd64":
		return ArchX86_64, nil
	case "aarch64", "arm64":
		return ArchAArch64, nil
	}
	return "", fmt.Errorf("unknown architecture %q (want x86-64 or aarch64)", s)
}

// Reg is a logical register. Each backend maps it to a machine register.
type Reg int

const (
	RegV Reg = iota // return value
	RegA0           // arguments
	RegA1
	RegA2
	RegA3
	RegA4
	RegA5
	RegX0 // extra scratch; RegX1 is also used by backends internally
	RegX1
	RegS0 // callee-saved
	RegS1
	RegS2
	RegS3
	RegS4
	RegFP
	RegSP
	RegZero // reads as zero
)

// Temporaries share the argument registers.
const (
	RegT0 = RegA0
	RegT1 = RegA1
	RegT2 = RegA2
	RegT3 = RegA3
	RegT4 = RegA4
	RegT5 = RegA5
)

var argRegs = []Reg{RegA0, RegA1, RegA2, RegA3, RegA4, RegA5}

// Cond is a comparison understood by CmpSet.
type Cond int

const (
	CondEQ Cond = iota
	CondNE
	CondGT
	CondLE
	CondUGT
	CondULE
)

// DataItem is one object in a data section. Bytes shorter than Size are
// padded with zeros. Ref, when set, stores the address of that local label
// instead of Bytes.
type DataItem struct {
	Name  string
	Local bool
	Align int64
	Size  int64
	Bytes []byte
	Ref   string
}

// Asm emits assembly for one target. Labels passed to Label, Jmp and
// JmpIfZero are local to the file; the backend adds its local prefix.
type Asm interface {
	// SlotSize is the number of bytes one Push moves the stack pointer by.
	SlotSize() int64

	ProgramHeader()
	FuncHeader(name string)
	DataSection()
	ReadOnlySection()
	Data(d DataItem)
	Label(name string)

	// EnterFrame saves the caller's frame and sets FP to SP.
	EnterFrame()
	// Leave undoes EnterFrame.
	Leave()
	Ret()

	MovImm(dst Reg, imm int64)
	MovReg(dst, src Reg)
	Add(dst, a, b Reg)
	AddImm(dst, src Reg, imm int64)
	Sub(dst, a, b Reg)
	SubImm(dst, src Reg, imm int64)
	Mul(dst, a, b Reg)
	// Div is signed division truncating toward zero.
	Div(dst, a, b Reg)
	Push(r Reg)
	Pop(r Reg)
	Load(dst, base Reg, disp, size int64, signed bool)
	Store(src, base Reg, disp, size int64)
	// Extend sign- or zero-extends the low size bytes of src into dst.
	Extend(dst, src Reg, size int64, signed bool)
	// CmpSet sets dst to 1 if a cond b holds and to 0 otherwise.
	CmpSet(dst Reg, cond Cond, a, b Reg)
	Zero(dst Reg)

	Jmp(label string)
	JmpIfZero(r Reg, label string)
	Call(sym string)
	CallReg(r Reg)
	// LoadLabelAddr loads the address of a global symbol, or of a local
	// label when local is set.
	LoadLabelAddr(dst Reg, sym string, local bool)

	Flush() error
}

// NewAsm returns the backend for arch writing to w.
func NewAsm(arch Arch, w io.Writer) (Asm, error) {
	switch arch {
	case ArchX86_64:
		return newX86Asm(w), nil
	case ArchAArch64:
		return newAArch64Asm(w), nil
	}
	return nil, fmt.Errorf("unsupported architecture %q", string(arch))
}

// dataLines renders the initial contents of d as a .byte list followed by
// zero padding. quad is the directive used when d holds a label address.
func dataLines(d DataItem, quad string) []string {
	var lines []string
	if d.Ref != "" {
		return []string{quad}
	}
	if len(d.Bytes) > 0 {
		var parts []string
		for _, b := range d.Bytes {
			parts = append(parts, fmt.Sprint(b))
		}
		lines = append(lines, ".byte "+strings.Join(parts, ","))
	}
	if pad := d.Size - int64(len(d.Bytes)); pad > 0 {
		lines = append(lines, fmt.Sprintf(".zero %d", pad))
	}
	return lines
}
