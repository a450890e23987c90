package semant

import "cool-semant/types"

// Env maps identifiers to their declared types through a stack of lexical
// scopes. Inner scopes shadow outer ones.
type Env struct {
	scopes []map[string]types.Type
}

func NewEnv() *Env {
	return &Env{}
}

func (e *Env) EnterScope() {
	e.scopes = append(e.scopes, make(map[string]types.Type))
}

// ExitScope drops the innermost scope. Exiting with no open scope is an
// analyzer bug.
func (e *Env) ExitScope() {
	if len(e.scopes) == 0 {
		internalf("exit from empty scope stack")
	}
	e.scopes = e.scopes[:len(e.scopes)-1]
}

// Add binds name in the innermost scope.
func (e *Env) Add(name string, t types.Type) {
	if len(e.scopes) == 0 {
		internalf("binding %s with no open scope", name)
	}
	e.scopes[len(e.scopes)-1][name] = t
}

// Lookup searches from the innermost scope outwards.
func (e *Env) Lookup(name string) (types.Type, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if t, ok := e.scopes[i][name]; ok {
			return t, true
		}
	}
	return types.NoType, false
}

// Probe looks at the innermost scope only.
func (e *Env) Probe(name string) (types.Type, bool) {
	if len(e.scopes) == 0 {
		return types.NoType, false
	}
	t, ok := e.scopes[len(e.scopes)-1][name]
	return t, ok
}

func (e *Env) Depth() int { return len(e.scopes) }
