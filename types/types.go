// Package types defines the static types assigned to COOL expressions.
package types

import "cool-semant/ast"

type kind uint8

const (
	kindNone kind = iota
	kindClass
	kindSelf
)

// Type is a named class, SELF_TYPE, or the no-type marker carried by empty
// expressions. The zero value is NoType.
type Type struct {
	k    kind
	name string
}

var (
	NoType   = Type{}
	SelfType = Type{k: kindSelf}

	Object = Class(ast.ObjectName)
	IO     = Class(ast.IOName)
	Int    = Class(ast.IntName)
	Bool   = Class(ast.BoolName)
	String = Class(ast.StringName)
)

// Class returns the class type called name.
func Class(name string) Type {
	return Type{k: kindClass, name: name}
}

// FromName converts a type name as written in source. SELF_TYPE maps to
// SelfType and the empty string to NoType.
func FromName(name string) Type {
	switch name {
	case "":
		return NoType
	case ast.SelfTypeName:
		return SelfType
	}
	return Class(name)
}

func (t Type) IsSelf() bool { return t.k == kindSelf }
func (t Type) IsNone() bool { return t.k == kindNone }

// Name returns the class name, or "" for SELF_TYPE and NoType.
func (t Type) Name() string {
	if t.k == kindClass {
		return t.name
	}
	return ""
}

func (t Type) String() string {
	switch t.k {
	case kindSelf:
		return ast.SelfTypeName
	case kindNone:
		return "_no_type"
	}
	return t.name
}

// Resolve replaces SELF_TYPE with the class it stands for.
func (t Type) Resolve(current string) Type {
	if t.k == kindSelf {
		return Class(current)
	}
	return t
}

// MarshalText renders t for YAML and other text encoders.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
