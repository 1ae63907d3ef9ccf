package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestSameType(t *testing.T) {
	int32T := &Type{Kind: TypeInt, Num: 32}
	alias := &Type{Kind: TypeUser, Name: "P", Base: TypeInt64}

	tests := []struct {
		name     string
		a, b     *Type
		expected bool
	}{
		{"same builtin", TypeInt64, &Type{Kind: TypeInt, Num: 64}, true},
		{"different width", TypeInt64, int32T, false},
		{"signedness", TypeUint64, TypeInt64, false},
		{"pointers", NewPointer(TypeUint8), NewPointer(TypeUint8), true},
		{"pointer bases differ", NewPointer(TypeUint8), NewPointer(TypeInt64), false},
		{"arrays", NewArray(TypeInt64, 3), NewArray(TypeInt64, 3), true},
		{"array lengths differ", NewArray(TypeInt64, 3), NewArray(TypeInt64, 4), false},
		{"alias by name", alias, &Type{Kind: TypeUser, Name: "P"}, true},
		{"alias is not its base", alias, TypeInt64, false},
		{
			"param names ignored",
			NewFunc(TypeInt64, []*Type{{Kind: TypeParam, Name: "a", Base: TypeInt64}}),
			NewFunc(TypeInt64, []*Type{TypeInt64}),
			true,
		},
		{
			"param count",
			NewFunc(TypeInt64, []*Type{TypeInt64}),
			NewFunc(TypeInt64, []*Type{TypeInt64, TypeInt64}),
			false,
		},
		{
			"variadic",
			NewFunc(TypeInt64, []*Type{NewPointer(TypeUint8), {Kind: TypeVariadic}}),
			NewFunc(TypeInt64, []*Type{NewPointer(TypeUint8), {Kind: TypeVariadic}}),
			true,
		},
		{
			"struct field names",
			NewStruct([]string{"x"}, []*Type{TypeInt64}),
			NewStruct([]string{"y"}, []*Type{TypeInt64}),
			false,
		},
		{"nil", TypeInt64, nil, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			be.Equal(t, SameType(test.a, test.b), test.expected)
			be.Equal(t, SameType(test.b, test.a), test.expected)
		})
	}
}

func TestSizeAndAlign(t *testing.T) {
	tests := []struct {
		typ   *Type
		size  int64
		align int64
	}{
		{TypeInt64, 8, 8},
		{TypeUint8, 1, 1},
		{&Type{Kind: TypeInt, Num: 16}, 2, 2},
		{&Type{Kind: TypeUint, Num: 32}, 4, 4},
		{NewPointer(TypeUint8), 8, 8},
		{NewFunc(TypeVoidT, nil), 8, 8},
		{NewArray(TypeUint8, 5), 5, 1},
		{NewArray(NewArray(TypeInt64, 3), 2), 48, 8},
		{NewStruct([]string{"a", "b", "c"}, []*Type{TypeUint8, TypeInt64, TypeUint8}), 24, 8},
		{NewStruct([]string{"a", "b"}, []*Type{TypeUint8, &Type{Kind: TypeInt, Num: 16}}), 4, 2},
		{NewStruct(nil, nil), 0, 1},
		{&Type{Kind: TypeUser, Name: "B", Base: TypeUint8}, 1, 1},
	}

	for _, test := range tests {
		t.Run(test.typ.String(), func(t *testing.T) {
			be.Equal(t, test.typ.Size(), test.size)
			be.Equal(t, test.typ.Align(), test.align)
		})
	}
}

func TestStructLayout(t *testing.T) {
	s := NewStruct([]string{"a", "b", "c"}, []*Type{TypeUint8, &Type{Kind: TypeInt, Num: 32}, TypeInt64})
	be.Equal(t, s.Field("a").Num, int64(0))
	be.Equal(t, s.Field("b").Num, int64(4))
	be.Equal(t, s.Field("c").Num, int64(8))
	be.True(t, s.Field("d") == nil)
	be.Equal(t, len(s.Fields()), 3)
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ      *Type
		expected string
	}{
		{TypeInt64, "int64"},
		{TypeUint8, "uint8"},
		{TypeVoidT, "void"},
		{NewPointer(NewPointer(TypeUint8)), "**uint8"},
		{NewArray(NewArray(TypeUint8, 3), 2), "[2][3]uint8"},
		{NewFunc(TypeVoidT, nil), "func()"},
		{NewFunc(TypeInt64, []*Type{{Kind: TypeParam, Name: "x", Base: TypeInt64}}), "func(x int64) int64"},
		{NewFunc(TypeInt64, []*Type{NewPointer(TypeUint8), {Kind: TypeVariadic}}), "func(*uint8, ...) int64"},
		{NewStruct([]string{"x", "y"}, []*Type{TypeInt64, TypeInt64}), "struct{x int64; y int64;}"},
		{&Type{Kind: TypeUser, Name: "Point", Base: TypeInt64}, "Point"},
		{&Type{Kind: TypeGenericParam, Name: "T"}, "T"},
		{nil, "<nil>"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			be.Equal(t, test.typ.String(), test.expected)
		})
	}
}

func TestIsVariadic(t *testing.T) {
	be.True(t, NewFunc(TypeInt64, []*Type{NewPointer(TypeUint8), {Kind: TypeVariadic}}).IsVariadic())
	be.True(t, !NewFunc(TypeInt64, []*Type{TypeInt64}).IsVariadic())
	be.True(t, !NewFunc(TypeInt64, nil).IsVariadic())
}

func TestTypePredicates(t *testing.T) {
	alias := &Type{Kind: TypeUser, Name: "N", Base: TypeUint8}
	ptr := NewPointer(TypeInt64)
	arr := NewArray(TypeInt64, 2)
	fn := NewFunc(TypeVoidT, nil)
	st := NewStruct([]string{"x"}, []*Type{TypeInt64})

	be.True(t, IsInteger(alias))
	be.True(t, !IsInteger(ptr))
	be.True(t, IsPointerLike(ptr))
	be.True(t, IsPointerLike(arr))
	be.True(t, !IsPointerLike(TypeInt64))
	be.True(t, IsScalar(fn))
	be.True(t, IsScalar(ptr))
	be.True(t, !IsScalar(arr))
	be.True(t, !IsScalar(st))
	be.True(t, IsUnsigned(alias))
	be.True(t, IsUnsigned(ptr))
	be.True(t, !IsUnsigned(TypeInt64))
	be.Equal(t, Underlying(alias), TypeUint8)
}

func TestIsConcrete(t *testing.T) {
	unknown := &Type{Kind: TypeUnknown, Name: "foo"}
	pending := &Type{Kind: TypeUser, Name: "Node"}

	be.True(t, IsConcrete(TypeInt64))
	be.True(t, !IsConcrete(nil))
	be.True(t, !IsConcrete(unknown))
	be.True(t, !IsConcrete(NewPointer(unknown)))
	be.True(t, !IsConcrete(&Type{Kind: TypeGenericParam, Name: "T"}))
	be.True(t, !IsConcrete(pending))
	// A pointer to a pending alias is enough for a self-referential struct.
	be.True(t, IsConcrete(NewPointer(pending)))
	be.True(t, !IsConcrete(NewArray(pending, 2)))
	be.True(t, !IsConcrete(NewFunc(TypeInt64, []*Type{unknown})))
	be.True(t, IsConcrete(NewFunc(TypeInt64, []*Type{TypeInt64, {Kind: TypeVariadic}})))
}

func TestFirstUnresolved(t *testing.T) {
	tp := &Type{Kind: TypeGenericParam, Name: "T"}
	fn := NewFunc(TypeInt64, []*Type{TypeInt64, NewPointer(tp)})
	be.Equal(t, firstUnresolved(fn), tp)
	be.True(t, firstUnresolved(TypeInt64) == nil)
}

func TestParseIntTypeName(t *testing.T) {
	tests := []struct {
		name string
		kind TypeKind
		num  int64
		ok   bool
		err  string
	}{
		{name: "int8", kind: TypeInt, num: 8, ok: true},
		{name: "int16", kind: TypeInt, num: 16, ok: true},
		{name: "uint32", kind: TypeUint, num: 32, ok: true},
		{name: "uint64", kind: TypeUint, num: 64, ok: true},
		{name: "int12", ok: true, err: "unsupported integer width 12 in 'int12'"},
		{name: "intx", ok: true, err: "malformed integer width 'intx'"},
		{name: "int+8", ok: true, err: "malformed integer width 'int+8'"},
		{name: "byte", ok: false},
		{name: "Point", ok: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			typ, ok, err := parseIntTypeName(test.name)
			be.Equal(t, ok, test.ok)
			if test.err != "" {
				be.Err(t, err, test.err)
				return
			}
			be.Err(t, err, nil)
			if !test.ok {
				be.True(t, typ == nil)
				return
			}
			be.Equal(t, typ.Kind, test.kind)
			be.Equal(t, typ.Num, test.num)
		})
	}
}

func TestWiderInt(t *testing.T) {
	int16T := &Type{Kind: TypeInt, Num: 16}
	be.Equal(t, widerInt(int16T, TypeInt64), TypeInt64)
	be.Equal(t, widerInt(TypeInt64, TypeUint8), TypeInt64)
	be.Equal(t, widerInt(TypeUint8, int16T), int16T)
}
