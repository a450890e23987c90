package semant

import (
	"cool-semant/ast"
	"cool-semant/config"
	"cool-semant/types"
)

// checker type-checks the features of one user class. All state it touches
// is explicit: the registry and method table are shared read-only, the
// environment is private, and inferred types go to the run's annotation
// slice.
type checker struct {
	cfg     config.Config
	prog    *ast.Program
	classes *ClassTable
	methods *MethodTable
	class   *ast.Class
	env     *Env
	types   []types.Type
	diags   *Diagnostics
}

func (c *checker) errorf(line int, format string, args ...any) {
	c.diags.addf(c.class.Filename, line, format, args...)
}

func (c *checker) set(id ast.ExprID, t types.Type) types.Type {
	c.types[id] = t
	return t
}

func (c *checker) conforms(sub, sup types.Type) bool {
	return c.classes.Conforms(sub, sup, c.class.Name)
}

func (c *checker) lca(a, b types.Type) types.Type {
	return c.classes.LCA(a, b, c.class.Name)
}

// bindable converts a declared type name to the type bound in scope. A type
// name that is neither SELF_TYPE nor a registered class binds as Object; the
// declaration itself is reported elsewhere.
func (c *checker) bindable(name string) types.Type {
	if name == ast.SelfTypeName || c.classes.Has(name) {
		return types.FromName(name)
	}
	return types.Object
}

func (c *checker) checkClass() {
	chain := c.classes.Chain(types.Class(c.class.Name), c.class.Name)
	for i := len(chain) - 1; i >= 0; i-- {
		ancestor, _ := c.classes.Lookup(chain[i])
		c.env.EnterScope()
		for _, a := range ancestor.Attributes() {
			if a.Name != ast.SelfName {
				c.env.Add(a.Name, c.bindable(a.Type))
			}
		}
	}

	if c.cfg.CheckAttributes {
		c.checkAttributeDecls(chain[1:])
	}

	for _, f := range c.class.Features {
		switch f := f.(type) {
		case *ast.Method:
			c.checkMethod(f)
			c.checkOverride(f)
		case *ast.Attribute:
			c.checkAttribute(f)
		}
	}

	for range chain {
		c.env.ExitScope()
	}
}

func (c *checker) checkAttributeDecls(ancestors []string) {
	inherited := make(map[string]bool)
	for _, name := range ancestors {
		ancestor, _ := c.classes.Lookup(name)
		for _, a := range ancestor.Attributes() {
			inherited[a.Name] = true
		}
	}

	seen := make(map[string]bool)
	for _, a := range c.class.Attributes() {
		switch {
		case a.Name == ast.SelfName:
			c.errorf(a.Line, "'self' cannot be the name of an attribute.")
		case seen[a.Name]:
			c.errorf(a.Line, "Attribute %s is multiply defined in class.", a.Name)
		case inherited[a.Name]:
			c.errorf(a.Line, "Attribute %s is an attribute of an inherited class.", a.Name)
		}
		seen[a.Name] = true

		if a.Type != ast.SelfTypeName && !c.classes.Has(a.Type) {
			c.errorf(a.Line, "Class %s of attribute %s is undefined.", a.Type, a.Name)
		}
	}
}

func (c *checker) checkAttribute(a *ast.Attribute) {
	init := c.check(a.Init)
	if init.IsNone() {
		return
	}
	if a.Type != ast.SelfTypeName && !c.classes.Has(a.Type) {
		return
	}
	if declared := types.FromName(a.Type); !c.conforms(init, declared) {
		c.errorf(a.Line, "Inferred type %s of initialization of attribute %s does not conform to declared type %s.",
			init, a.Name, declared)
	}
}

func (c *checker) checkMethod(m *ast.Method) {
	c.env.EnterScope()
	defer c.env.ExitScope()

	for _, f := range m.Formals {
		switch _, dup := c.env.Probe(f.Name); {
		case f.Name == ast.SelfName:
			c.errorf(f.Line, "'self' cannot be the name of a formal parameter.")
		case dup:
			c.errorf(f.Line, "Formal parameter %s is multiply defined.", f.Name)
		case !c.classes.Has(f.Type):
			c.errorf(f.Line, "Class %s of formal parameter %s is undefined.", f.Type, f.Name)
			c.env.Add(f.Name, types.Object)
		default:
			c.env.Add(f.Name, types.Class(f.Type))
		}
	}

	body := c.check(m.Body)
	switch ret := types.FromName(m.ReturnType); {
	case !ret.IsSelf() && !c.classes.Has(m.ReturnType):
		c.errorf(m.Line, "Undefined return type %s in method %s.", m.ReturnType, m.Name)
	case !c.conforms(body, ret):
		c.errorf(m.Line, "Inferred return type %s of method %s does not conform to declared return type %s.",
			body, m.Name, ret)
	}
}

// checkOverride compares m with the nearest ancestor declaration of the
// same name.
func (c *checker) checkOverride(m *ast.Method) {
	orig, _, ok := c.methods.Find(c.class.Parent, m.Name)
	if !ok {
		return
	}

	if len(m.Formals) != len(orig.Formals) {
		c.errorf(m.Line, "Incompatible number of formal parameters in redefined method %s.", m.Name)
	} else {
		for i, f := range m.Formals {
			if f.Type != orig.Formals[i].Type {
				c.errorf(m.Line, "In redefined method %s, parameter type %s is different from original type %s.",
					m.Name, f.Type, orig.Formals[i].Type)
			}
		}
	}

	if c.cfg.OverrideReturns == config.OverrideExact && m.ReturnType != orig.ReturnType {
		c.errorf(m.Line, "In redefined method %s, return type %s is different from original return type %s.",
			m.Name, m.ReturnType, orig.ReturnType)
	}
}

// check infers the type of id, records it and returns it.
func (c *checker) check(id ast.ExprID) types.Type {
	e := c.prog.Expr(id)

	switch e.Kind {
	case ast.NoExpr:
		return c.set(id, types.NoType)
	case ast.IntConst:
		return c.set(id, types.Int)
	case ast.BoolConst:
		return c.set(id, types.Bool)
	case ast.StringConst:
		return c.set(id, types.String)

	case ast.Object:
		if e.Name == ast.SelfName {
			return c.set(id, types.SelfType)
		}
		if t, ok := c.env.Lookup(e.Name); ok {
			return c.set(id, t)
		}
		c.errorf(e.Line, "Undeclared identifier %s.", e.Name)
		return c.set(id, types.Object)

	case ast.Assign:
		return c.set(id, c.checkAssign(e))

	case ast.Dispatch, ast.StaticDispatch:
		return c.set(id, c.checkDispatch(e))

	case ast.Cond:
		if pred := c.check(e.E1); pred != types.Bool {
			c.errorf(e.Line, "Predicate of 'if' does not have type Bool.")
		}
		then, els := c.check(e.E2), c.check(e.E3)
		if then.IsSelf() && els.IsSelf() {
			return c.set(id, types.SelfType)
		}
		return c.set(id, c.lca(then, els))

	case ast.Loop:
		if pred := c.check(e.E1); pred != types.Bool {
			c.errorf(e.Line, "Loop condition does not have type Bool.")
		}
		c.check(e.E2)
		return c.set(id, types.Object)

	case ast.TypeCase:
		return c.set(id, c.checkCase(e))

	case ast.Block:
		t := types.NoType
		for _, sub := range e.Args {
			t = c.check(sub)
		}
		return c.set(id, t)

	case ast.Let:
		return c.set(id, c.checkLet(e))

	case ast.Plus, ast.Sub, ast.Mul, ast.Divide:
		c.checkArith(e)
		return c.set(id, types.Int)

	case ast.LT, ast.LE:
		c.checkArith(e)
		return c.set(id, types.Bool)

	case ast.EQ:
		left, right := c.check(e.E1), c.check(e.E2)
		if (isPrimitive(left) || isPrimitive(right)) && left != right {
			c.errorf(e.Line, "Illegal comparison with a basic type.")
		}
		return c.set(id, types.Bool)

	case ast.Neg:
		if t := c.check(e.E1); t != types.Int {
			c.errorf(e.Line, "Argument of '~' has type %s instead of Int.", t)
		}
		return c.set(id, types.Int)

	case ast.Not:
		if t := c.check(e.E1); t != types.Bool {
			c.errorf(e.Line, "Argument of 'not' has type %s instead of Bool.", t)
		}
		return c.set(id, types.Bool)

	case ast.New:
		if e.Type == ast.SelfTypeName {
			return c.set(id, types.SelfType)
		}
		if !c.classes.Has(e.Type) {
			c.errorf(e.Line, "'new' used with undefined class %s.", e.Type)
			return c.set(id, types.Object)
		}
		return c.set(id, types.Class(e.Type))

	case ast.IsVoid:
		c.check(e.E1)
		return c.set(id, types.Bool)
	}

	internalf("unexpected expression kind %s at line %d", e.Kind, e.Line)
	return types.NoType
}

func isPrimitive(t types.Type) bool {
	return t == types.Int || t == types.Bool || t == types.String
}

func (c *checker) checkArith(e *ast.Expr) {
	left, right := c.check(e.E1), c.check(e.E2)
	if left != types.Int || right != types.Int {
		c.errorf(e.Line, "non-Int arguments: %s %s %s", left, e.Kind.Operator(), right)
	}
}

func (c *checker) checkAssign(e *ast.Expr) types.Type {
	value := c.check(e.E1)
	if e.Name == ast.SelfName {
		c.errorf(e.Line, "Cannot assign to 'self'.")
		return value
	}

	declared, ok := c.env.Lookup(e.Name)
	if !ok {
		c.errorf(e.Line, "Assignment to undeclared variable %s.", e.Name)
		return value
	}
	if !c.conforms(value, declared) {
		c.errorf(e.Line, "Type %s of assigned expression does not conform to declared type %s of identifier %s.",
			value, declared, e.Name)
		return declared
	}
	return value
}

// checkDispatch types both dispatch forms. Every argument is checked before
// the call itself. A non-conforming static receiver, a wrong arity and each
// argument mismatch are reported independently and any of them makes the
// call Object.
func (c *checker) checkDispatch(e *ast.Expr) types.Type {
	receiver := c.check(e.E1)
	args := make([]types.Type, len(e.Args))
	for i, a := range e.Args {
		args[i] = c.check(a)
	}

	static := e.Kind == ast.StaticDispatch
	target := receiver
	failed := false
	if static {
		if !c.classes.Has(e.Type) {
			c.errorf(e.Line, "Static dispatch to undefined class %s.", e.Type)
			return types.Object
		}
		target = types.Class(e.Type)
		if !c.conforms(receiver, target) {
			c.errorf(e.Line, "Expression type %s does not conform to declared static dispatch type %s.",
				receiver, target)
			failed = true
		}
	}

	method, _, ok := c.methods.Find(target.Resolve(c.class.Name).Name(), e.Name)
	if !ok {
		if static {
			c.errorf(e.Line, "Static dispatch to undefined method %s.", e.Name)
		} else {
			c.errorf(e.Line, "Dispatch to undefined method %s.", e.Name)
		}
		return types.Object
	}

	if len(args) != len(method.Formals) {
		c.errorf(e.Line, "Method %s called with wrong number of arguments.", e.Name)
		failed = true
	}
	for i, f := range method.Formals {
		if i >= len(args) || !c.classes.Has(f.Type) {
			continue
		}
		if formal := types.Class(f.Type); !c.conforms(args[i], formal) {
			c.errorf(e.Line, "In call of method %s, type %s of parameter %s does not conform to declared type %s.",
				e.Name, args[i], f.Name, formal)
			failed = true
		}
	}
	if failed {
		return types.Object
	}

	ret := types.FromName(method.ReturnType)
	switch {
	case ret.IsSelf():
		return target
	case !c.classes.Has(method.ReturnType):
		return types.Object
	}
	return ret
}

func (c *checker) checkLet(e *ast.Expr) types.Type {
	init := c.check(e.E1)

	declared := types.FromName(e.Type)
	if e.Type != ast.SelfTypeName && !c.classes.Has(e.Type) {
		c.errorf(e.Line, "Class %s of let-bound identifier %s is undefined.", e.Type, e.Name)
		declared = types.Object
	}
	if e.Name == ast.SelfName {
		c.errorf(e.Line, "'self' cannot be bound in a 'let' expression.")
	}
	if !init.IsNone() && !c.conforms(init, declared) {
		c.errorf(e.Line, "Inferred type %s of initialization of %s does not conform to identifier's declared type %s.",
			init, e.Name, declared)
	}

	c.env.EnterScope()
	defer c.env.ExitScope()
	if e.Name != ast.SelfName {
		c.env.Add(e.Name, declared)
	}
	return c.check(e.E2)
}

func (c *checker) checkCase(e *ast.Expr) types.Type {
	c.check(e.E1)

	result := types.NoType
	seen := make(map[string]bool)
	for i, b := range e.Branches {
		if seen[b.Type] {
			c.errorf(b.Line, "Duplicate branch %s in case statement.", b.Type)
		}
		seen[b.Type] = true

		t := c.checkBranch(b)
		switch {
		case i == 0:
			result = t
		case !result.IsSelf() || !t.IsSelf():
			result = c.lca(result, t)
		}
	}
	return result
}

func (c *checker) checkBranch(b ast.Branch) types.Type {
	declared := types.Class(b.Type)
	switch {
	case b.Name == ast.SelfName:
		c.errorf(b.Line, "'self' bound in 'case'.")
	case b.Type == ast.SelfTypeName:
		c.errorf(b.Line, "Identifier %s declared with type SELF_TYPE in case branch.", b.Name)
		declared = types.Object
	case !c.classes.Has(b.Type):
		c.errorf(b.Line, "Class %s of case branch is undefined.", b.Type)
		declared = types.Object
	}

	c.env.EnterScope()
	defer c.env.ExitScope()
	if b.Name != ast.SelfName {
		c.env.Add(b.Name, declared)
	}
	return c.check(b.Body)
}
