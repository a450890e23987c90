// Package ast holds the COOL syntax tree. Expression nodes live in an arena
// owned by the Program and are addressed by ExprID, so analysis passes can keep
// per-node facts (such as inferred types) in slices parallel to the arena
// instead of mutating shared nodes.
package ast

import "fmt"

// Reserved names of the language.
const (
	SelfName     = "self"
	SelfTypeName = "SELF_TYPE"
	ObjectName   = "Object"
	IOName       = "IO"
	IntName      = "Int"
	BoolName     = "Bool"
	StringName   = "String"
)

// ExprID indexes Program.Exprs.
type ExprID int

// NoID marks an absent expression, used only for the bodies of built-in
// methods which are implemented by the runtime.
const NoID ExprID = -1

// Valid reports whether id refers to a node.
func (id ExprID) Valid() bool { return id >= 0 }

type Program struct {
	Classes []*Class
	Exprs   []Expr
}

// Add appends e to the arena and returns its id.
func (p *Program) Add(e Expr) ExprID {
	p.Exprs = append(p.Exprs, e)
	return ExprID(len(p.Exprs) - 1)
}

// Expr returns the node for id. It panics on an id outside the arena.
func (p *Program) Expr(id ExprID) *Expr {
	if id < 0 || int(id) >= len(p.Exprs) {
		panic(fmt.Sprintf("ast: expression id %d out of range", id))
	}
	return &p.Exprs[id]
}

// Len is the number of expression nodes in the arena.
func (p *Program) Len() int { return len(p.Exprs) }

type Class struct {
	Name     string
	Parent   string // empty only for Object
	Features []Feature
	Filename string
	Line     int
}

// Feature is either a *Method or an *Attribute.
type Feature interface {
	FeatureName() string
	FeatureLine() int
	featureNode()
}

type Method struct {
	Name       string
	Formals    []*Formal
	ReturnType string
	Body       ExprID
	Line       int
}

func (m *Method) FeatureName() string { return m.Name }
func (m *Method) FeatureLine() int    { return m.Line }
func (m *Method) featureNode()        {}

type Attribute struct {
	Name string
	Type string
	Init ExprID // a NoExpr node when no initializer was written
	Line int
}

func (a *Attribute) FeatureName() string { return a.Name }
func (a *Attribute) FeatureLine() int    { return a.Line }
func (a *Attribute) featureNode()        {}

type Formal struct {
	Name string
	Type string
	Line int
}

// Methods returns the methods of c in declaration order.
func (c *Class) Methods() []*Method {
	var out []*Method
	for _, f := range c.Features {
		if m, ok := f.(*Method); ok {
			out = append(out, m)
		}
	}
	return out
}

// Attributes returns the attributes of c in declaration order.
func (c *Class) Attributes() []*Attribute {
	var out []*Attribute
	for _, f := range c.Features {
		if a, ok := f.(*Attribute); ok {
			out = append(out, a)
		}
	}
	return out
}
