package ast

import "strconv"

type Kind int

const (
	NoExpr Kind = iota
	IntConst
	BoolConst
	StringConst
	Object // identifier reference
	Assign
	StaticDispatch
	Dispatch
	Cond
	Loop
	TypeCase
	Block
	Let
	Plus
	Sub
	Mul
	Divide
	Neg
	LT
	LE
	EQ
	Not
	New
	IsVoid
)

var kindNames = [...]string{
	"no_expr", "int_const", "bool_const", "string_const", "object", "assign",
	"static_dispatch", "dispatch", "cond", "loop", "typcase", "block", "let",
	"plus", "sub", "mul", "divide", "neg", "lt", "leq", "eq", "comp", "new", "isvoid",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Expr is one arena node. Which fields are meaningful depends on Kind:
//
//	IntConst, StringConst   Value
//	BoolConst               Bool
//	Object                  Name
//	Assign                  Name <- E1
//	StaticDispatch          E1@Type.Name(Args)
//	Dispatch                E1.Name(Args)
//	Cond                    if E1 then E2 else E3 fi
//	Loop                    while E1 loop E2 pool
//	TypeCase                case E1 of Branches esac
//	Block                   { Args }
//	Let                     let Name : Type <- E1 in E2
//	Plus Sub Mul Divide     E1 op E2
//	LT LE EQ                E1 op E2
//	Neg Not IsVoid          op E1
//	New                     new Type
type Expr struct {
	Kind     Kind
	Line     int
	Name     string
	Type     string
	Value    string
	Bool     bool
	E1       ExprID
	E2       ExprID
	E3       ExprID
	Args     []ExprID
	Branches []Branch
}

// Branch is one arm of a case expression.
type Branch struct {
	Name string
	Type string
	Body ExprID
	Line int
}

// Node builders used by the parser and by tests that assemble trees directly.

func (p *Program) NoExpr(line int) ExprID {
	return p.Add(Expr{Kind: NoExpr, Line: line, E1: NoID, E2: NoID, E3: NoID})
}

func (p *Program) Int(line int, value string) ExprID {
	return p.Add(Expr{Kind: IntConst, Line: line, Value: value, E1: NoID, E2: NoID, E3: NoID})
}

func (p *Program) Str(line int, value string) ExprID {
	return p.Add(Expr{Kind: StringConst, Line: line, Value: value, E1: NoID, E2: NoID, E3: NoID})
}

func (p *Program) BoolConst(line int, value bool) ExprID {
	return p.Add(Expr{Kind: BoolConst, Line: line, Bool: value, E1: NoID, E2: NoID, E3: NoID})
}

func (p *Program) Ident(line int, name string) ExprID {
	return p.Add(Expr{Kind: Object, Line: line, Name: name, E1: NoID, E2: NoID, E3: NoID})
}

func (p *Program) Assign(line int, name string, value ExprID) ExprID {
	return p.Add(Expr{Kind: Assign, Line: line, Name: name, E1: value, E2: NoID, E3: NoID})
}

func (p *Program) Dispatch(line int, recv ExprID, method string, args ...ExprID) ExprID {
	return p.Add(Expr{Kind: Dispatch, Line: line, Name: method, E1: recv, E2: NoID, E3: NoID, Args: args})
}

func (p *Program) StaticDispatch(line int, recv ExprID, typeName, method string, args ...ExprID) ExprID {
	return p.Add(Expr{Kind: StaticDispatch, Line: line, Name: method, Type: typeName, E1: recv, E2: NoID, E3: NoID, Args: args})
}

func (p *Program) Cond(line int, pred, then, els ExprID) ExprID {
	return p.Add(Expr{Kind: Cond, Line: line, E1: pred, E2: then, E3: els})
}

func (p *Program) Loop(line int, pred, body ExprID) ExprID {
	return p.Add(Expr{Kind: Loop, Line: line, E1: pred, E2: body, E3: NoID})
}

func (p *Program) Case(line int, scrutinee ExprID, branches ...Branch) ExprID {
	return p.Add(Expr{Kind: TypeCase, Line: line, E1: scrutinee, E2: NoID, E3: NoID, Branches: branches})
}

func (p *Program) Block(line int, body ...ExprID) ExprID {
	return p.Add(Expr{Kind: Block, Line: line, E1: NoID, E2: NoID, E3: NoID, Args: body})
}

func (p *Program) Let(line int, name, typeName string, init, body ExprID) ExprID {
	return p.Add(Expr{Kind: Let, Line: line, Name: name, Type: typeName, E1: init, E2: body, E3: NoID})
}

// Binary builds one of Plus, Sub, Mul, Divide, LT, LE or EQ.
func (p *Program) Binary(line int, kind Kind, left, right ExprID) ExprID {
	return p.Add(Expr{Kind: kind, Line: line, E1: left, E2: right, E3: NoID})
}

// Unary builds one of Neg, Not or IsVoid.
func (p *Program) Unary(line int, kind Kind, operand ExprID) ExprID {
	return p.Add(Expr{Kind: kind, Line: line, E1: operand, E2: NoID, E3: NoID})
}

func (p *Program) New(line int, typeName string) ExprID {
	return p.Add(Expr{Kind: New, Line: line, Type: typeName, E1: NoID, E2: NoID, E3: NoID})
}

// Operator returns the source spelling of a binary or unary operator kind.
func (k Kind) Operator() string {
	switch k {
	case Plus:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Divide:
		return "/"
	case LT:
		return "<"
	case LE:
		return "<="
	case EQ:
		return "="
	case Neg:
		return "~"
	case Not:
		return "not"
	case IsVoid:
		return "isvoid"
	}
	return k.String()
}
