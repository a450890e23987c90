package semant

import (
	"cool-semant/ast"
)

// BasicFile is the file name recorded for the built-in classes.
const BasicFile = "<basic class>"

// primSlot is the declared type of the runtime-managed value slots of the
// primitive classes. It is not a class.
const primSlot = "_prim_slot"

// ClassTable maps class names to declarations. Built-in classes come first,
// then user classes in declaration order.
type ClassTable struct {
	classes map[string]*ast.Class
	names   []string
}

func newClassTable() *ClassTable {
	return &ClassTable{classes: make(map[string]*ast.Class)}
}

func (ct *ClassTable) add(c *ast.Class) {
	ct.classes[c.Name] = c
	ct.names = append(ct.names, c.Name)
}

// Lookup finds a class by exact name. SELF_TYPE is never a key.
func (ct *ClassTable) Lookup(name string) (*ast.Class, bool) {
	c, ok := ct.classes[name]
	return c, ok
}

// Has reports whether name is a registered class.
func (ct *ClassTable) Has(name string) bool {
	_, ok := ct.classes[name]
	return ok
}

// Names lists the registered classes in registration order.
func (ct *ClassTable) Names() []string {
	out := make([]string, len(ct.names))
	copy(out, ct.names)
	return out
}

func (ct *ClassTable) Len() int { return len(ct.names) }

// IsBasic reports whether name is one of the five built-in classes.
func IsBasic(name string) bool {
	switch name {
	case ast.ObjectName, ast.IOName, ast.IntName, ast.BoolName, ast.StringName:
		return true
	}
	return false
}

// uninheritable parents are rejected at registration.
var uninheritable = map[string]bool{
	ast.IntName:      true,
	ast.BoolName:     true,
	ast.StringName:   true,
	ast.SelfTypeName: true,
}

func builtinMethod(name, ret string, formals ...*ast.Formal) *ast.Method {
	return &ast.Method{Name: name, ReturnType: ret, Formals: formals, Body: ast.NoID}
}

func builtinFormal(name, typ string) *ast.Formal {
	return &ast.Formal{Name: name, Type: typ}
}

func builtinAttr(name, typ string) *ast.Attribute {
	return &ast.Attribute{Name: name, Type: typ, Init: ast.NoID}
}

func basicClasses() []*ast.Class {
	object := &ast.Class{
		Name:     ast.ObjectName,
		Filename: BasicFile,
		Features: []ast.Feature{
			builtinMethod("abort", ast.ObjectName),
			builtinMethod("type_name", ast.StringName),
			builtinMethod("copy", ast.SelfTypeName),
		},
	}

	io := &ast.Class{
		Name:     ast.IOName,
		Parent:   ast.ObjectName,
		Filename: BasicFile,
		Features: []ast.Feature{
			builtinMethod("out_string", ast.SelfTypeName, builtinFormal("arg", ast.StringName)),
			builtinMethod("out_int", ast.SelfTypeName, builtinFormal("arg", ast.IntName)),
			builtinMethod("in_string", ast.StringName),
			builtinMethod("in_int", ast.IntName),
		},
	}

	integer := &ast.Class{
		Name:     ast.IntName,
		Parent:   ast.ObjectName,
		Filename: BasicFile,
		Features: []ast.Feature{builtinAttr("_val", primSlot)},
	}

	boolean := &ast.Class{
		Name:     ast.BoolName,
		Parent:   ast.ObjectName,
		Filename: BasicFile,
		Features: []ast.Feature{builtinAttr("_val", primSlot)},
	}

	str := &ast.Class{
		Name:     ast.StringName,
		Parent:   ast.ObjectName,
		Filename: BasicFile,
		Features: []ast.Feature{
			builtinAttr("_val", ast.IntName),
			builtinAttr("_str_field", primSlot),
			builtinMethod("length", ast.IntName),
			builtinMethod("concat", ast.StringName, builtinFormal("arg", ast.StringName)),
			builtinMethod("substr", ast.StringName,
				builtinFormal("arg", ast.IntName),
				builtinFormal("arg2", ast.IntName)),
		},
	}

	return []*ast.Class{object, io, integer, boolean, str}
}

// buildClassTable installs the built-in classes and then every user class
// that is not a redefinition and does not extend a final class.
func buildClassTable(prog *ast.Program, diags *Diagnostics) *ClassTable {
	ct := newClassTable()
	for _, c := range basicClasses() {
		ct.add(c)
	}

	for _, c := range prog.Classes {
		switch {
		case c.Name == ast.SelfTypeName:
			diags.addf(c.Filename, c.Line, "Redefinition of basic class %s.", ast.SelfTypeName)
		case ct.Has(c.Name):
			diags.addf(c.Filename, c.Line, "Class %s was previously defined.", c.Name)
		case uninheritable[c.Parent]:
			diags.addf(c.Filename, c.Line, "Class %s cannot inherit class %s.", c.Name, c.Parent)
		default:
			ct.add(c)
		}
	}
	return ct
}

// validate reports classes with an unregistered parent, then inheritance
// cycles. Each cycle is reported once, against the first of its members in
// registration order. A walk that runs into a cycle not containing its start
// stops without a report.
func (ct *ClassTable) validate(diags *Diagnostics) {
	for _, name := range ct.names {
		c := ct.classes[name]
		if name == ast.ObjectName || ct.Has(c.Parent) {
			continue
		}
		diags.addf(c.Filename, c.Line, "Class %s inherits from an undefined class %s.", name, c.Parent)
	}

	reported := make(map[string]bool)
	for _, name := range ct.names {
		if name == ast.ObjectName || reported[name] {
			continue
		}
		c := ct.classes[name]
		seen := map[string]bool{name: true}
		for cur := c.Parent; cur != ast.ObjectName; {
			if cur == name {
				diags.addf(c.Filename, c.Line,
					"Class %s, or an ancestor of %s, is involved in an inheritance cycle.", name, name)
				ct.markCycle(name, reported)
				break
			}
			next, ok := ct.classes[cur]
			if !ok || seen[cur] {
				break
			}
			seen[cur] = true
			cur = next.Parent
		}
	}
}

func (ct *ClassTable) markCycle(start string, reported map[string]bool) {
	for cur := start; !reported[cur]; cur = ct.classes[cur].Parent {
		reported[cur] = true
	}
}
