// Package layout derives the runtime object and dispatch layout of an
// analyzed program and records it as LLVM IR: one named struct per class,
// one declared function per method implementation and one constant vtable
// per class.
package layout

import (
	"errors"
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"cool-semant/ast"
	"cool-semant/semant"
)

// ErrNoResult is returned when Build is given no analysis result.
var ErrNoResult = errors.New("layout: no analysis result")

// Field is one slot of an object. Index 0 always holds the vtable pointer.
type Field struct {
	Name  string
	Type  string
	Index int
}

// Slot is one vtable entry. An override keeps the slot of the method it
// replaces.
type Slot struct {
	Method string
	Class  string
	Index  int
}

// Class is the layout of one class.
type Class struct {
	Name   string
	Parent string
	Fields []Field
	Slots  []Slot
	Struct *types.StructType
	Vtable *ir.Global
}

// Slot returns the vtable entry for method.
func (c *Class) Slot(method string) (Slot, bool) {
	for _, s := range c.Slots {
		if s.Method == method {
			return s, true
		}
	}
	return Slot{}, false
}

type Layout struct {
	Module  *ir.Module
	Classes map[string]*Class
	// Order lists the classes in registration order.
	Order []string
}

// Class returns the layout of name.
func (l *Layout) Class(name string) (*Class, bool) {
	c, ok := l.Classes[name]
	return c, ok
}

type builder struct {
	res     *semant.Result
	layout  *Layout
	structs map[string]*types.StructType
	funcs   map[string]*ir.Func
}

var vtablePtr = types.NewPointer(types.NewPointer(types.I8))

// Build lays out every class of a successfully analyzed program.
func Build(res *semant.Result) (*Layout, error) {
	if res == nil {
		return nil, ErrNoResult
	}

	b := &builder{
		res: res,
		layout: &Layout{
			Module:  ir.NewModule(),
			Classes: make(map[string]*Class),
			Order:   res.Classes.Names(),
		},
		structs: make(map[string]*types.StructType),
		funcs:   make(map[string]*ir.Func),
	}

	// Struct types are created up front so attributes may refer to any class.
	for _, name := range b.layout.Order {
		st := types.NewStruct()
		b.layout.Module.NewTypeDef(name, st)
		b.structs[name] = st
	}

	for _, name := range b.layout.Order {
		if _, err := b.classLayout(name, 0); err != nil {
			return nil, err
		}
	}
	return b.layout, nil
}

func (b *builder) classLayout(name string, depth int) (*Class, error) {
	if c, ok := b.layout.Classes[name]; ok {
		return c, nil
	}
	if depth > len(b.layout.Order) {
		return nil, fmt.Errorf("layout: inheritance chain of %s does not end", name)
	}

	decl, ok := b.res.Classes.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("layout: class %s is not registered", name)
	}

	c := &Class{
		Name:   name,
		Parent: decl.Parent,
		Fields: []Field{{Name: "_vtable", Type: "_vtable", Index: 0}},
		Struct: b.structs[name],
	}
	if name != ast.ObjectName {
		parent, err := b.classLayout(decl.Parent, depth+1)
		if err != nil {
			return nil, err
		}
		c.Fields = append([]Field(nil), parent.Fields...)
		c.Slots = append([]Slot(nil), parent.Slots...)
	}

	for _, attr := range decl.Attributes() {
		if hasField(c.Fields, attr.Name) {
			continue
		}
		c.Fields = append(c.Fields, Field{Name: attr.Name, Type: attr.Type, Index: len(c.Fields)})
	}

	fieldTypes := make([]types.Type, len(c.Fields))
	fieldTypes[0] = vtablePtr
	for i, f := range c.Fields[1:] {
		fieldTypes[i+1] = b.fieldType(name, f.Type)
	}
	c.Struct.Fields = fieldTypes

	for _, m := range b.res.Methods.Own(name) {
		b.declare(name, m)
		if i := slotIndex(c.Slots, m.Name); i >= 0 {
			c.Slots[i].Class = name
			continue
		}
		c.Slots = append(c.Slots, Slot{Method: m.Name, Class: name, Index: len(c.Slots)})
	}

	entries := make([]constant.Constant, len(c.Slots))
	for i, s := range c.Slots {
		fn, ok := b.funcs[symbol(s.Class, s.Method)]
		if !ok {
			return nil, fmt.Errorf("layout: no function for %s.%s", s.Class, s.Method)
		}
		entries[i] = constant.NewBitCast(fn, types.NewPointer(types.I8))
	}
	arrType := types.NewArray(uint64(len(entries)), types.NewPointer(types.I8))
	c.Vtable = b.layout.Module.NewGlobalDef(name+"_vtable", constant.NewArray(arrType, entries...))
	c.Vtable.Immutable = true

	b.layout.Classes[name] = c
	return c, nil
}

// declare adds the function implementing m in class. Only the signature is
// emitted.
func (b *builder) declare(class string, m *ast.Method) {
	params := []*ir.Param{ir.NewParam("self", types.NewPointer(b.structs[class]))}
	for _, f := range m.Formals {
		params = append(params, ir.NewParam(f.Name, b.valueType(class, f.Type)))
	}
	name := symbol(class, m.Name)
	b.funcs[name] = b.layout.Module.NewFunc(name, b.valueType(class, m.ReturnType), params...)
}

// fieldType maps an attribute type. The runtime value slots of the
// primitive classes are unboxed.
func (b *builder) fieldType(class, typ string) types.Type {
	if _, ok := b.structs[typ]; ok || typ == ast.SelfTypeName {
		return b.valueType(class, typ)
	}
	switch class {
	case ast.IntName:
		return types.I32
	case ast.BoolName:
		return types.I1
	}
	return types.NewPointer(types.I8)
}

func (b *builder) valueType(class, typ string) types.Type {
	switch typ {
	case ast.IntName:
		return types.I32
	case ast.BoolName:
		return types.I1
	case ast.SelfTypeName:
		return types.NewPointer(b.structs[class])
	}
	if st, ok := b.structs[typ]; ok {
		return types.NewPointer(st)
	}
	return types.NewPointer(b.structs[ast.ObjectName])
}

func hasField(fields []Field, name string) bool {
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func slotIndex(slots []Slot, method string) int {
	for i, s := range slots {
		if s.Method == method {
			return i
		}
	}
	return -1
}

// symbol names the function implementing method in class. A dot cannot occur
// in a COOL identifier, so distinct pairs never share a symbol.
func symbol(class, method string) string {
	return class + "." + method
}
