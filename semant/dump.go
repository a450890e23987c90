package semant

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"cool-semant/ast"
	"cool-semant/types"
)

// Dump prints the user classes of an analyzed program as a tree, each
// expression followed by its inferred type.
func Dump(res *Result) string {
	var sb strings.Builder
	sb.WriteString("Program\n")

	classes := userClasses(res)
	for i, class := range classes {
		last := i == len(classes)-1
		sb.WriteString(branch(last) + "Class " + class.Name + " inherits " + class.Parent +
			fmt.Sprintf(" (%s:%d)\n", class.Filename, class.Line))

		indent := continuation(last)
		for j, feature := range class.Features {
			lastFeature := j == len(class.Features)-1
			switch f := feature.(type) {
			case *ast.Method:
				formals := make([]string, len(f.Formals))
				for k, formal := range f.Formals {
					formals[k] = formal.Name + " : " + formal.Type
				}
				sb.WriteString(indent + branch(lastFeature) +
					fmt.Sprintf("Method %s(%s) : %s\n", f.Name, strings.Join(formals, ", "), f.ReturnType))
				dumpExpr(&sb, res, f.Body, indent+continuation(lastFeature), true)
			case *ast.Attribute:
				sb.WriteString(indent + branch(lastFeature) + "Attribute " + f.Name + " : " + f.Type + "\n")
				if res.Program.Expr(f.Init).Kind != ast.NoExpr {
					dumpExpr(&sb, res, f.Init, indent+continuation(lastFeature), true)
				}
			}
		}
	}
	return sb.String()
}

func branch(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func continuation(last bool) string {
	if last {
		return "    "
	}
	return "│   "
}

func dumpExpr(sb *strings.Builder, res *Result, id ast.ExprID, indent string, last bool) {
	e := res.Program.Expr(id)
	sb.WriteString(indent + branch(last) + describe(e) + " : " + res.TypeOf(id).String() + "\n")

	children := childrenOf(e)
	for i, child := range children {
		dumpExpr(sb, res, child, indent+continuation(last), i == len(children)-1)
	}
}

func describe(e *ast.Expr) string {
	switch e.Kind {
	case ast.IntConst:
		return "Integer " + e.Value
	case ast.StringConst:
		return fmt.Sprintf("String %q", e.Value)
	case ast.BoolConst:
		return fmt.Sprintf("Boolean %t", e.Bool)
	case ast.Object:
		return "Identifier " + e.Name
	case ast.Assign:
		return "Assign " + e.Name
	case ast.Dispatch:
		return "Dispatch ." + e.Name
	case ast.StaticDispatch:
		return "StaticDispatch @" + e.Type + "." + e.Name
	case ast.Let:
		return "Let " + e.Name + " : " + e.Type
	case ast.New:
		return "New " + e.Type
	case ast.TypeCase:
		var arms []string
		for _, b := range e.Branches {
			arms = append(arms, b.Name+" : "+b.Type)
		}
		return "Case [" + strings.Join(arms, ", ") + "]"
	}
	return e.Kind.String()
}

// childrenOf lists sub-expressions in evaluation order.
func childrenOf(e *ast.Expr) []ast.ExprID {
	var out []ast.ExprID
	if e.E1.Valid() {
		out = append(out, e.E1)
	}
	out = append(out, e.Args...)
	for _, id := range []ast.ExprID{e.E2, e.E3} {
		if id.Valid() {
			out = append(out, id)
		}
	}
	for _, b := range e.Branches {
		out = append(out, b.Body)
	}
	return out
}

func userClasses(res *Result) []*ast.Class {
	var out []*ast.Class
	for _, name := range res.Classes.Names() {
		if IsBasic(name) {
			continue
		}
		c, _ := res.Classes.Lookup(name)
		out = append(out, c)
	}
	return out
}

// ClassReport is the serialized form of one analyzed class.
type ClassReport struct {
	Name       string          `yaml:"name"`
	Parent     string          `yaml:"parent"`
	File       string          `yaml:"file"`
	Line       int             `yaml:"line"`
	Attributes []FeatureReport `yaml:"attributes,omitempty"`
	Methods    []FeatureReport `yaml:"methods,omitempty"`
}

type FeatureReport struct {
	Name     string       `yaml:"name"`
	Line     int          `yaml:"line"`
	Declared string       `yaml:"declared"`
	Formals  []string     `yaml:"formals,omitempty"`
	Inferred types.Type   `yaml:"inferred"`
	Exprs    []ExprReport `yaml:"expressions,omitempty"`
}

type ExprReport struct {
	Line int        `yaml:"line"`
	Kind string     `yaml:"kind"`
	Type types.Type `yaml:"type"`
}

// Reports summarizes every user class with the types inferred inside it.
func Reports(res *Result) []ClassReport {
	var out []ClassReport
	for _, class := range userClasses(res) {
		cr := ClassReport{Name: class.Name, Parent: class.Parent, File: class.Filename, Line: class.Line}
		for _, feature := range class.Features {
			fr := FeatureReport{Name: feature.FeatureName(), Line: feature.FeatureLine()}
			switch f := feature.(type) {
			case *ast.Method:
				fr.Declared, fr.Inferred = f.ReturnType, res.TypeOf(f.Body)
				for _, formal := range f.Formals {
					fr.Formals = append(fr.Formals, formal.Name+":"+formal.Type)
				}
				fr.Exprs = exprReports(res, f.Body, nil)
				cr.Methods = append(cr.Methods, fr)
			case *ast.Attribute:
				fr.Declared, fr.Inferred = f.Type, res.TypeOf(f.Init)
				fr.Exprs = exprReports(res, f.Init, nil)
				cr.Attributes = append(cr.Attributes, fr)
			}
		}
		out = append(out, cr)
	}
	return out
}

func exprReports(res *Result, id ast.ExprID, out []ExprReport) []ExprReport {
	e := res.Program.Expr(id)
	if e.Kind == ast.NoExpr {
		return out
	}
	out = append(out, ExprReport{Line: e.Line, Kind: e.Kind.String(), Type: res.TypeOf(id)})
	for _, child := range childrenOf(e) {
		out = exprReports(res, child, out)
	}
	return out
}

// DumpYAML renders Reports as YAML.
func DumpYAML(res *Result) ([]byte, error) {
	data, err := yaml.Marshal(Reports(res))
	if err != nil {
		return nil, fmt.Errorf("marshal annotations: %w", err)
	}
	return data, nil
}
