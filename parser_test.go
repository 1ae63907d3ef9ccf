package main

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func TestToSourceRoundTrip(t *testing.T) {
	tests := []struct {
		input  string
		source string
	}{
		{"a + b * c", "(a + (b * c))"},
		{"(a + b) * c", "((a + b) * c)"},
		{"a > b", "(b < a)"},
		{"-x", "(0 - x)"},
		{"a = b || c && d", "(a = (b || (c && d)))"},
		{"f(x, 1)[2]", "f(x, 1)[2]"},
		{"*&p.x", "*&p.x"},
		{"i++ - j--", "(i++ - j--)"},
		{`"hi\n"`, `"hi\n"`},
		{"a != b == c", "((a != b) == c)"},
		{"x / 2 <= 'a'", "((x / 2) <= 97)"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			n, err := ParseExpr([]byte(test.input))
			be.Err(t, err, nil)
			be.Equal(t, ToSource(n), test.source)

			again, err := ParseExpr([]byte(ToSource(n)))
			be.Err(t, err, nil)
			be.Equal(t, ToSExpr(again), ToSExpr(n))
		})
	}
}

func TestParseExprErrors(t *testing.T) {
	tests := []struct {
		input  string
		msg    string
		offset int
	}{
		{"1 + 2)", "unexpected ')' after expression", 5},
		{"(1 + 2", "expected ')', got end of file", 6},
		{"1 +", "expected expression, got end of file", 3},
		{"f(1,", "expected expression, got end of file", 4},
		{"a[1", "expected ']', got end of file", 3},
		{"p.1", "expected ident, got '1'", 2},
		{"1 := 2", "cannot define non-identifier", 0},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			_, err := ParseExpr([]byte(test.input))
			var ce *CompileError
			be.True(t, errors.As(err, &ce))
			be.Equal(t, ce.Msg, test.msg)
			be.Equal(t, ce.Offset, test.offset)
		})
	}
}

func parseProgram(t *testing.T, src string) (*Session, error) {
	t.Helper()
	s := NewSession(Options{Arch: ArchX86_64})
	return s, s.Parse([]byte(src))
}

func TestParseBindsLocalsWhileParsing(t *testing.T) {
	s, err := parseProgram(t, "a := 1;\n{ a := 2; a; }\na;\n")
	be.Err(t, err, nil)

	main := s.Lookup("main")
	be.True(t, main != nil)
	be.Equal(t, len(main.Ctx.Locals), 2)

	body := main.Def.Rhs.Lhs.List()
	inner := body[1].Lhs.List()
	be.Equal(t, inner[1].Sym, main.Ctx.Locals[1])
	be.Equal(t, body[2].Sym, main.Ctx.Locals[0])
}

func TestParseLeavesForwardReferencesUnresolved(t *testing.T) {
	s, err := parseProgram(t, "func main() int { return later(); }\nfunc later() int { return 1; }\n")
	be.Err(t, err, nil)

	ret := s.Lookup("main").Def.Rhs.Lhs
	call := ret.Lhs
	be.Equal(t, call.Kind, NodeCall)
	be.Equal(t, call.Lhs.Sym.Kind, ObjUnresolved)
}

func TestParseGenericCallNeedsParenthesis(t *testing.T) {
	// Without a following "(" the angle brackets are comparisons.
	n, err := ParseExpr([]byte("f < int > (1)"))
	be.Err(t, err, nil)
	be.Equal(t, ToSExpr(n), `(call (ident "f") (targs (type "int64")) 1)`)

	n, err = ParseExpr([]byte("f < g > h"))
	be.Err(t, err, nil)
	be.Equal(t, ToSExpr(n), `(lt (ident "h") (lt (ident "f") (ident "g")))`)
}

func TestParseProgramErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind ErrorKind
		msg  string
	}{
		{"missing function name", "func (", ErrSyntax, "expected ident, got '('"},
		{"extern in a block", "func main() int { extern \"C\" f func(); }", ErrSyntax,
			"extern declarations are only allowed at top level"},
		{"duplicate type parameter", "func f<T, T>(x T) T { return x; }", ErrSemantic,
			"type parameter 'T' already declared"},
		{"duplicate parameter", "func f(a int, a int) int { return a; }", ErrSemantic,
			"variable 'a' already declared"},
		{"break at top level", "break;", ErrSemantic, "break is not in a loop"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := parseProgram(t, test.src)
			var ce *CompileError
			be.True(t, errors.As(err, &ce))
			be.Equal(t, ce.Kind, test.kind)
			be.Equal(t, ce.Msg, test.msg)
		})
	}
}

func TestParseNatives(t *testing.T) {
	s := NewSession(Options{Natives: []Native{
		{Name: "puts", Sig: "func(*byte) int"},
		{Name: "errno", Sig: "int"},
	}})
	be.Err(t, s.Parse([]byte("puts(\"x\");")), nil)
	be.Equal(t, s.Lookup("puts").Kind, ObjExternFunc)
	be.Equal(t, s.Lookup("puts").Type.String(), "func(*uint8) int64")
	be.Equal(t, s.Lookup("errno").Kind, ObjExternVar)
}

func TestParseNativeErrors(t *testing.T) {
	s := NewSession(Options{Natives: []Native{{Name: "f", Sig: "func() int )"}}})
	be.Err(t, s.Parse(nil), "native f: unexpected ')' after signature")

	s = NewSession(Options{Natives: []Native{{Name: "g", Sig: "*foo"}}})
	be.Err(t, s.Parse(nil), "native g: unknown type name 'foo'")
}
