package semant

import (
	"cool-semant/ast"
	"cool-semant/types"
)

// Chain returns the class t names, resolving SELF_TYPE to current, followed
// by each of its ancestors up to and including Object.
func (ct *ClassTable) Chain(t types.Type, current string) []string {
	name := t.Resolve(current).Name()
	c, ok := ct.classes[name]
	if !ok {
		internalf("%s not found in class table", t.Resolve(current))
	}

	chain := []string{name}
	for c.Name != ast.ObjectName {
		parent, ok := ct.classes[c.Parent]
		if !ok {
			internalf("invalid inheritance chain at %s", c.Name)
		}
		if len(chain) > len(ct.names) {
			internalf("inheritance chain of %s does not reach %s", name, ast.ObjectName)
		}
		chain = append(chain, parent.Name)
		c = parent
	}
	return chain
}

// Conforms reports whether a value of type sub may be used where sup is
// expected. SELF_TYPE conforms to itself and to every ancestor of current;
// only SELF_TYPE conforms to SELF_TYPE. The no-type of an empty expression
// conforms to everything.
func (ct *ClassTable) Conforms(sub, sup types.Type, current string) bool {
	switch {
	case sub.IsNone():
		return true
	case sub.IsSelf() && sup.IsSelf():
		return true
	case sup.IsSelf(), sup.IsNone():
		return false
	}

	if !ct.Has(sup.Name()) {
		internalf("%s not found in class table", sup)
	}
	for _, name := range ct.Chain(sub, current) {
		if name == sup.Name() {
			return true
		}
	}
	return false
}

// LCA returns the most specific common ancestor of a and b, with SELF_TYPE
// resolved to current. The no-type is neutral.
func (ct *ClassTable) LCA(a, b types.Type, current string) types.Type {
	switch {
	case a.IsNone():
		return b
	case b.IsNone():
		return a
	}

	ca := reversed(ct.Chain(a, current))
	cb := reversed(ct.Chain(b, current))

	i := 1
	for ; i < len(ca) && i < len(cb); i++ {
		if ca[i] != cb[i] {
			break
		}
	}
	return types.Class(ca[i-1])
}

func reversed(chain []string) []string {
	out := make([]string, len(chain))
	for i, name := range chain {
		out[len(chain)-1-i] = name
	}
	return out
}
