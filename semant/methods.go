package semant

import (
	"cool-semant/ast"
	"cool-semant/types"
)

// MethodTable holds each class's own methods, without inherited ones. When a
// class declares a name twice only the first declaration is kept.
type MethodTable struct {
	classes *ClassTable
	own     map[string][]*ast.Method
}

func buildMethodTable(ct *ClassTable, diags *Diagnostics) *MethodTable {
	mt := &MethodTable{classes: ct, own: make(map[string][]*ast.Method, ct.Len())}

	for _, name := range ct.names {
		c := ct.classes[name]
		seen := make(map[string]bool)
		methods := []*ast.Method{}
		for _, m := range c.Methods() {
			if seen[m.Name] {
				diags.addf(c.Filename, m.Line, "Method %s is multiply defined.", m.Name)
				continue
			}
			seen[m.Name] = true
			methods = append(methods, m)
		}
		mt.own[name] = methods
	}
	return mt
}

// Own returns the methods declared directly in class.
func (mt *MethodTable) Own(class string) []*ast.Method {
	return mt.own[class]
}

func (mt *MethodTable) lookupOwn(class, method string) *ast.Method {
	for _, m := range mt.own[class] {
		if m.Name == method {
			return m
		}
	}
	return nil
}

// Find searches class and then its ancestors for method and returns the
// first declaration met together with the class declaring it.
func (mt *MethodTable) Find(class, method string) (*ast.Method, string, bool) {
	if !mt.classes.Has(class) {
		return nil, "", false
	}
	for _, name := range mt.classes.Chain(types.Class(class), class) {
		if m := mt.lookupOwn(name, method); m != nil {
			return m, name, true
		}
	}
	return nil, "", false
}
