package main

import (
	"strconv"
	"strings"
)

// NodeKind represents different types of AST nodes
type NodeKind string

const (
	NodeInt       NodeKind = "NodeInt"
	NodeAdd       NodeKind = "NodeAdd"
	NodeSub       NodeKind = "NodeSub"
	NodeMul       NodeKind = "NodeMul"
	NodeDiv       NodeKind = "NodeDiv"
	NodeEq        NodeKind = "NodeEq"
	NodeNe        NodeKind = "NodeNe"
	NodeLt        NodeKind = "NodeLt"
	NodeLe        NodeKind = "NodeLe"
	NodeIdent     NodeKind = "NodeIdent"
	NodeAssign    NodeKind = "NodeAssign"
	NodeDefVar    NodeKind = "NodeDefVar"
	NodeReturn    NodeKind = "NodeReturn"
	NodeIf        NodeKind = "NodeIf"
	NodeLoop      NodeKind = "NodeLoop"
	NodeFor       NodeKind = "NodeFor"
	NodeBlock     NodeKind = "NodeBlock"
	NodeCall      NodeKind = "NodeCall"
	NodeExprList  NodeKind = "NodeExprList"
	NodeDeclSeq   NodeKind = "NodeDeclSeq"
	NodeFuncDef   NodeKind = "NodeFuncDef"
	NodeAddr      NodeKind = "NodeAddr"
	NodeDeref     NodeKind = "NodeDeref"
	NodeType      NodeKind = "NodeType"
	NodeParamList NodeKind = "NodeParamList"
	NodeParam     NodeKind = "NodeParam"
	NodeExtern    NodeKind = "NodeExtern"
	NodeSubscript NodeKind = "NodeSubscript"
	NodeString    NodeKind = "NodeString"
	NodeSizeof    NodeKind = "NodeSizeof"
	NodeLOr       NodeKind = "NodeLOr"
	NodeLAnd      NodeKind = "NodeLAnd"
	NodeBreak     NodeKind = "NodeBreak"
	NodeContinue  NodeKind = "NodeContinue"
	NodeTypeDef   NodeKind = "NodeTypeDef"
	NodeInc       NodeKind = "NodeInc"
	NodeDec       NodeKind = "NodeDec"
	NodeInitList  NodeKind = "NodeInitList"
	NodeDot       NodeKind = "NodeDot"
	NodeArrow     NodeKind = "NodeArrow"
	NodeComposite NodeKind = "NodeComposite"
	NodeCast      NodeKind = "NodeCast"
)

// Node is one AST node. Which fields are meaningful depends on Kind:
//
//	binary operators, Assign, Subscript     Lhs, Rhs
//	Addr, Deref, Inc, Dec, Return, Dot      Lhs
//	If                                      Cond, Lhs (then), Rhs (else)
//	Loop                                    Lhs (body)
//	For                                     Cond, Lhs (body), Rhs (post)
//	Block, ExprList, DeclSeq, ParamList     Lhs (first element, chained by Next)
//	Call                                    Lhs (callee), Rhs (ExprList), Spec (type arguments)
//	DefVar                                  Lhs (Ident), Spec (declared type), Rhs (initializer)
//	FuncDef                                 Sym, Lhs (ParamList), Spec (result), Rhs (body)
//	Cast, Sizeof, Composite                 Spec, Lhs
//
// Sym on Ident, DefVar, FuncDef, Param and Extern is shared with every other
// node naming the same object; nodes never own it.
type Node struct {
	Kind NodeKind
	Tok  *Token

	Lhs, Rhs *Node
	Cond     *Node
	Spec     *Node
	Next     *Node

	Int  int64   // NodeInt
	Sym  *Object // NodeIdent, NodeDefVar, NodeFuncDef, NodeParam, NodeExtern, temporaries
	Str  []byte  // NodeString
	Name string  // NodeDot, NodeArrow, NodeTypeDef

	// Type is nil until the resolver assigns it. On NodeType it holds the
	// written type until that resolves.
	Type *Type

	// Ershov is the number of values an expression keeps live while it is
	// evaluated.
	Ershov int
}

// List returns n and every node chained after it.
func (n *Node) List() []*Node {
	var nodes []*Node
	for ; n != nil; n = n.Next {
		nodes = append(nodes, n)
	}
	return nodes
}

func chain(nodes []*Node) *Node {
	for i := 0; i+1 < len(nodes); i++ {
		nodes[i].Next = nodes[i+1]
	}
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

var sexprNames = map[NodeKind]string{
	NodeAdd:    "add",
	NodeSub:    "sub",
	NodeMul:    "mul",
	NodeDiv:    "div",
	NodeEq:     "eq",
	NodeNe:     "ne",
	NodeLt:     "lt",
	NodeLe:     "le",
	NodeLOr:    "lor",
	NodeLAnd:   "land",
	NodeAssign: "assign",
	NodeAddr:   "addr",
	NodeDeref:  "deref",
	NodeInc:    "inc",
	NodeDec:    "dec",
}

// ToSExpr converts an AST node to s-expression string representation
func ToSExpr(node *Node) string {
	if node == nil {
		return "nil"
	}
	switch node.Kind {
	case NodeInt:
		return strconv.FormatInt(node.Int, 10)
	case NodeString:
		return "(string " + quote(string(node.Str)) + ")"
	case NodeIdent:
		return "(ident " + quote(node.Tok.Text) + ")"
	case NodeAdd, NodeSub, NodeMul, NodeDiv, NodeEq, NodeNe, NodeLt, NodeLe,
		NodeLOr, NodeLAnd, NodeAssign:
		return "(" + sexprNames[node.Kind] + " " + ToSExpr(node.Lhs) + " " + ToSExpr(node.Rhs) + ")"
	case NodeAddr, NodeDeref, NodeInc, NodeDec:
		return "(" + sexprNames[node.Kind] + " " + ToSExpr(node.Lhs) + ")"
	case NodeType:
		return "(type " + quote(node.Type.String()) + ")"
	case NodeDefVar:
		result := "(var " + quote(node.Lhs.Tok.Text)
		if node.Spec != nil {
			result += " " + ToSExpr(node.Spec)
		}
		if node.Rhs != nil {
			result += " " + ToSExpr(node.Rhs)
		}
		return result + ")"
	case NodeReturn:
		if node.Lhs == nil {
			return "(return)"
		}
		return "(return " + ToSExpr(node.Lhs) + ")"
	case NodeIf:
		result := "(if " + ToSExpr(node.Cond) + " " + ToSExpr(node.Lhs)
		if node.Rhs != nil {
			result += " " + ToSExpr(node.Rhs)
		}
		return result + ")"
	case NodeLoop:
		return "(loop " + ToSExpr(node.Lhs) + ")"
	case NodeFor:
		result := "(for " + ToSExpr(node.Cond) + " " + ToSExpr(node.Lhs)
		if node.Rhs != nil {
			result += " " + ToSExpr(node.Rhs)
		}
		return result + ")"
	case NodeBlock:
		return listSExpr("block", node.Lhs)
	case NodeDeclSeq:
		return listSExpr("decls", node.Lhs)
	case NodeExprList:
		return listSExpr("list", node.Lhs)
	case NodeParamList:
		return listSExpr("params", node.Lhs)
	case NodeInitList:
		return listSExpr("init", node.Lhs)
	case NodeCall:
		result := "(call " + ToSExpr(node.Lhs)
		if node.Spec != nil {
			result += " " + listSExpr("targs", node.Spec)
		}
		for _, arg := range node.Rhs.Lhs.List() {
			result += " " + ToSExpr(arg)
		}
		return result + ")"
	case NodeSubscript:
		return "(idx " + ToSExpr(node.Lhs) + " " + ToSExpr(node.Rhs) + ")"
	case NodeDot, NodeArrow:
		op := "dot"
		if node.Kind == NodeArrow {
			op = "arrow"
		}
		return "(" + op + " " + ToSExpr(node.Lhs) + " " + quote(node.Name) + ")"
	case NodeSizeof:
		if node.Spec != nil {
			return "(sizeof " + ToSExpr(node.Spec) + ")"
		}
		return "(sizeof " + ToSExpr(node.Lhs) + ")"
	case NodeCast:
		return "(cast " + ToSExpr(node.Lhs) + " " + ToSExpr(node.Spec) + ")"
	case NodeComposite:
		return "(composite " + ToSExpr(node.Spec) + " " + listSExpr("init", node.Lhs) + ")"
	case NodeBreak:
		return "(break)"
	case NodeContinue:
		return "(continue)"
	case NodeParam:
		if node.Sym == nil {
			return "(param ...)"
		}
		return "(param " + quote(node.Sym.Name) + " " + ToSExpr(node.Spec) + ")"
	case NodeFuncDef:
		result := "(func " + quote(node.Sym.Name)
		if gp := node.Sym.Ctx.GenericParams; len(gp) > 0 {
			var names []string
			for _, p := range gp {
				names = append(names, quote(p.Name))
			}
			result += " (generic " + strings.Join(names, " ") + ")"
		}
		result += " " + ToSExpr(node.Lhs)
		if node.Spec != nil {
			result += " " + ToSExpr(node.Spec)
		}
		return result + " " + ToSExpr(node.Rhs) + ")"
	case NodeExtern:
		return "(extern " + quote(node.Sym.Name) + " " + ToSExpr(node.Spec) + ")"
	case NodeTypeDef:
		return "(typedef " + quote(node.Name) + " " + ToSExpr(node.Spec) + ")"
	default:
		return "(" + string(node.Kind) + ")"
	}
}

func listSExpr(head string, first *Node) string {
	result := "(" + head
	for _, n := range first.List() {
		result += " " + ToSExpr(n)
	}
	return result + ")"
}

func quote(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
}

var sourceOps = map[NodeKind]string{
	NodeAdd:    "+",
	NodeSub:    "-",
	NodeMul:    "*",
	NodeDiv:    "/",
	NodeEq:     "==",
	NodeNe:     "!=",
	NodeLt:     "<",
	NodeLe:     "<=",
	NodeLOr:    "||",
	NodeLAnd:   "&&",
	NodeAssign: "=",
}

// ToSource prints an expression back as source text with every binary
// operation parenthesized. Only the expression subset is supported.
func ToSource(node *Node) string {
	switch node.Kind {
	case NodeInt:
		return strconv.FormatInt(node.Int, 10)
	case NodeIdent:
		return node.Tok.Text
	case NodeString:
		return strconv.Quote(string(node.Str))
	case NodeAddr:
		return "&" + ToSource(node.Lhs)
	case NodeDeref:
		return "*" + ToSource(node.Lhs)
	case NodeSubscript:
		return ToSource(node.Lhs) + "[" + ToSource(node.Rhs) + "]"
	case NodeDot:
		return ToSource(node.Lhs) + "." + node.Name
	case NodeInc:
		return ToSource(node.Lhs) + "++"
	case NodeDec:
		return ToSource(node.Lhs) + "--"
	case NodeCall:
		var args []string
		for _, arg := range node.Rhs.Lhs.List() {
			args = append(args, ToSource(arg))
		}
		return ToSource(node.Lhs) + "(" + strings.Join(args, ", ") + ")"
	}
	if op, ok := sourceOps[node.Kind]; ok {
		return "(" + ToSource(node.Lhs) + " " + op + " " + ToSource(node.Rhs) + ")"
	}
	panic("ToSource: unsupported node " + string(node.Kind))
}
