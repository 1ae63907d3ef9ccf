package main

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeKind represents different kinds of types
type TypeKind int

const (
	TypeUndefined TypeKind = iota
	TypeUnknown            // named type not yet found in any scope
	TypeInt
	TypeUint
	TypePointer
	TypeFunc
	TypeArray
	TypeStruct
	TypeGenericParam
	TypeVariadic
	TypeParam
	TypeField
	TypeUser
	TypeVoid
)

// Type describes an OpeLa type. Composite types link their parts:
//
//	Pointer      Base = pointee
//	Array        Base = element, Num = length
//	Func         Base = result, Next = first Param
//	Struct       Next = first Field
//	Param        Base = parameter type, Next = next Param
//	Field        Base = field type, Next = next Field, Num = byte offset
//	User         Base = underlying type, once resolved
//	Int, Uint    Num = width in bits
type Type struct {
	Kind TypeKind
	Num  int64
	Base *Type
	Next *Type
	Name string
	Tok  *Token // Unknown and GenericParam: where the name was written
}

var (
	TypeInt64  = &Type{Kind: TypeInt, Num: 64}
	TypeUint8  = &Type{Kind: TypeUint, Num: 8}
	TypeUint64 = &Type{Kind: TypeUint, Num: 64}
	TypeVoidT  = &Type{Kind: TypeVoid}
)

func NewPointer(base *Type) *Type {
	return &Type{Kind: TypePointer, Base: base}
}

func NewArray(elem *Type, n int64) *Type {
	return &Type{Kind: TypeArray, Base: elem, Num: n}
}

// NewFunc builds a function type. A nil name in params leaves the Param
// unnamed, which is how signatures in type position are written.
func NewFunc(ret *Type, params []*Type) *Type {
	var list []*Type
	for _, p := range params {
		if p.Kind == TypeVariadic || p.Kind == TypeParam {
			list = append(list, p)
		} else {
			list = append(list, &Type{Kind: TypeParam, Base: p})
		}
	}
	return &Type{Kind: TypeFunc, Base: ret, Next: chainTypes(list)}
}

// NewStruct lays out fields in order, each at the next multiple of its
// alignment.
func NewStruct(names []string, types []*Type) *Type {
	var fields []*Type
	for i, name := range names {
		fields = append(fields, &Type{Kind: TypeField, Name: name, Base: types[i]})
	}
	t := &Type{Kind: TypeStruct, Next: chainTypes(fields)}
	layoutStruct(t)
	return t
}

func chainTypes(list []*Type) *Type {
	for i := 0; i+1 < len(list); i++ {
		list[i].Next = list[i+1]
	}
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

// layoutStruct assigns field offsets. It is a no-op on fields whose types
// are not concrete yet.
func layoutStruct(t *Type) {
	var offset int64
	for f := t.Next; f != nil; f = f.Next {
		if !IsConcrete(f.Base) {
			return
		}
		offset = alignTo(offset, f.Base.Align())
		f.Num = offset
		offset += f.Base.Size()
	}
}

// Params returns the parameter list of a function type.
func (t *Type) Params() []*Type {
	var params []*Type
	for p := t.Next; p != nil; p = p.Next {
		params = append(params, p)
	}
	return params
}

// Fields returns the field list of a struct type.
func (t *Type) Fields() []*Type {
	return t.Params()
}

// Field finds a struct field by name.
func (t *Type) Field(name string) *Type {
	for f := t.Next; f != nil; f = f.Next {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// IsVariadic reports whether a function type ends in "...".
func (t *Type) IsVariadic() bool {
	params := t.Params()
	return len(params) > 0 && params[len(params)-1].Kind == TypeVariadic
}

// Underlying strips aliases.
func Underlying(t *Type) *Type {
	for t != nil && t.Kind == TypeUser {
		t = t.Base
	}
	return t
}

func IsInteger(t *Type) bool {
	t = Underlying(t)
	return t != nil && (t.Kind == TypeInt || t.Kind == TypeUint)
}

// IsPointerLike reports whether t can be indexed or dereferenced.
func IsPointerLike(t *Type) bool {
	t = Underlying(t)
	return t != nil && (t.Kind == TypePointer || t.Kind == TypeArray)
}

// IsScalar reports whether values of type t fit in a register.
func IsScalar(t *Type) bool {
	t = Underlying(t)
	return t != nil && (t.Kind == TypeInt || t.Kind == TypeUint || t.Kind == TypePointer || t.Kind == TypeFunc)
}

// IsUnsigned reports whether comparisons on t use unsigned conditions.
func IsUnsigned(t *Type) bool {
	t = Underlying(t)
	return t != nil && (t.Kind == TypeUint || t.Kind == TypePointer)
}

// IsConcrete reports whether t contains no Unknown or GenericParam leaves
// and every alias it holds by value has a known underlying type.
func IsConcrete(t *Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case TypeUndefined, TypeUnknown, TypeGenericParam:
		return false
	case TypeInt, TypeUint, TypeVoid, TypeVariadic:
		return true
	case TypeUser:
		return t.Base != nil && IsConcrete(t.Base)
	case TypePointer:
		// A pointer to an alias is complete even while the alias is not,
		// which lets a struct point to itself.
		return t.Base.Kind == TypeUser || IsConcrete(t.Base)
	case TypeArray, TypeParam, TypeField:
		return IsConcrete(t.Base)
	case TypeFunc:
		if !IsConcrete(t.Base) {
			return false
		}
		for p := t.Next; p != nil; p = p.Next {
			if !IsConcrete(p) {
				return false
			}
		}
		return true
	case TypeStruct:
		for f := t.Next; f != nil; f = f.Next {
			if !IsConcrete(f) {
				return false
			}
		}
		return true
	}
	return false
}

// firstUnresolved returns the first Unknown or GenericParam leaf in t.
func firstUnresolved(t *Type) *Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TypeUnknown, TypeGenericParam:
		return t
	case TypePointer, TypeArray, TypeParam, TypeField:
		return firstUnresolved(t.Base)
	case TypeFunc:
		for p := t.Next; p != nil; p = p.Next {
			if u := firstUnresolved(p); u != nil {
				return u
			}
		}
		return firstUnresolved(t.Base)
	case TypeStruct:
		for f := t.Next; f != nil; f = f.Next {
			if u := firstUnresolved(f); u != nil {
				return u
			}
		}
	}
	return nil
}

// SameType compares types structurally. Aliases compare by name.
func SameType(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case TypeInt, TypeUint:
		return a.Num == b.Num
	case TypeVoid, TypeVariadic:
		return true
	case TypeUser, TypeGenericParam, TypeUnknown:
		return a.Name == b.Name
	case TypePointer:
		return SameType(a.Base, b.Base)
	case TypeArray:
		return a.Num == b.Num && SameType(a.Base, b.Base)
	case TypeParam:
		// Parameter names do not matter.
		return SameType(a.Base, b.Base) && sameChain(a.Next, b.Next)
	case TypeField:
		return a.Name == b.Name && SameType(a.Base, b.Base) && sameChain(a.Next, b.Next)
	case TypeFunc:
		return SameType(a.Base, b.Base) && sameChain(a.Next, b.Next)
	case TypeStruct:
		return sameChain(a.Next, b.Next)
	}
	return false
}

func sameChain(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return SameType(a, b)
}

// Size returns the storage size of t in bytes.
func (t *Type) Size() int64 {
	switch t.Kind {
	case TypeInt, TypeUint:
		return t.Num / 8
	case TypePointer, TypeFunc:
		return 8
	case TypeArray:
		return t.Num * t.Base.Size()
	case TypeStruct:
		var end int64
		for f := t.Next; f != nil; f = f.Next {
			end = f.Num + f.Base.Size()
		}
		return alignTo(end, t.Align())
	case TypeUser:
		if t.Base == nil {
			return 0
		}
		return t.Base.Size()
	}
	return 0
}

// Align returns the alignment of t in bytes.
func (t *Type) Align() int64 {
	switch t.Kind {
	case TypeArray, TypeUser:
		if t.Base == nil {
			return 1
		}
		return t.Base.Align()
	case TypeStruct:
		var a int64 = 1
		for f := t.Next; f != nil; f = f.Next {
			a = max(a, f.Base.Align())
		}
		return a
	}
	return max(t.Size(), 1)
}

func alignTo(n, align int64) int64 {
	return (n + align - 1) / align * align
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case TypeUndefined:
		return "<undefined>"
	case TypeUnknown, TypeGenericParam, TypeUser:
		return t.Name
	case TypeInt:
		return "int" + strconv.FormatInt(t.Num, 10)
	case TypeUint:
		return "uint" + strconv.FormatInt(t.Num, 10)
	case TypeVoid:
		return "void"
	case TypeVariadic:
		return "..."
	case TypePointer:
		return "*" + t.Base.String()
	case TypeArray:
		return fmt.Sprintf("[%d]%s", t.Num, t.Base)
	case TypeParam:
		if t.Name == "" {
			return t.Base.String()
		}
		return t.Name + " " + t.Base.String()
	case TypeField:
		return t.Name + " " + t.Base.String()
	case TypeFunc:
		var params []string
		for _, p := range t.Params() {
			params = append(params, p.String())
		}
		s := "func(" + strings.Join(params, ", ") + ")"
		if t.Base != nil && t.Base.Kind != TypeVoid {
			s += " " + t.Base.String()
		}
		return s
	case TypeStruct:
		var fields []string
		for _, f := range t.Fields() {
			fields = append(fields, f.String()+";")
		}
		return "struct{" + strings.Join(fields, " ") + "}"
	}
	return fmt.Sprintf("Type(%d)", int(t.Kind))
}

// parseIntTypeName recognizes int<N> and uint<N>. ok is false when name does
// not start with int or uint; err is set when it does but the suffix is not a
// supported width.
func parseIntTypeName(name string) (t *Type, ok bool, err error) {
	var kind TypeKind
	var suffix string
	switch {
	case strings.HasPrefix(name, "uint"):
		kind, suffix = TypeUint, name[len("uint"):]
	case strings.HasPrefix(name, "int"):
		kind, suffix = TypeInt, name[len("int"):]
	default:
		return nil, false, nil
	}
	width, convErr := strconv.Atoi(suffix)
	if convErr != nil || strings.HasPrefix(suffix, "+") || strings.HasPrefix(suffix, "-") {
		return nil, true, fmt.Errorf("malformed integer width '%s'", name)
	}
	switch width {
	case 8, 16, 32, 64:
	default:
		return nil, true, fmt.Errorf("unsupported integer width %d in '%s'", width, name)
	}
	return &Type{Kind: kind, Num: int64(width)}, true, nil
}

// widerInt picks the result type of integer arithmetic.
func widerInt(a, b *Type) *Type {
	ua, ub := Underlying(a), Underlying(b)
	if ub.Num > ua.Num {
		return b
	}
	return a
}
