// Package semant is the static semantic analysis pass for COOL programs. It
// validates the class hierarchy, builds the method tables, and infers a
// type for every expression node.
package semant

import (
	"fmt"
	"io"
	"log/slog"

	"cool-semant/ast"
	"cool-semant/config"
	"cool-semant/types"
)

// Result is the outcome of a run. Types is parallel to Program.Exprs.
type Result struct {
	Program *ast.Program
	Classes *ClassTable
	Methods *MethodTable
	Types   []types.Type
}

// TypeOf returns the type inferred for id. Nodes that no rule visited, such
// as the target of an assignment, have NoType.
func (r *Result) TypeOf(id ast.ExprID) types.Type {
	if !id.Valid() || int(id) >= len(r.Types) {
		return types.NoType
	}
	return r.Types[id]
}

// Analyzer runs the pass. It keeps no state between runs, so one Analyzer
// may analyze any number of programs.
type Analyzer struct {
	cfg config.Config
	log *slog.Logger
}

// NewAnalyzer returns an analyzer for cfg. A nil logger discards output.
func NewAnalyzer(cfg config.Config, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Analyzer{cfg: cfg, log: log}
}

// Analyze checks prog without modifying it.
//
// A program with errors in its class hierarchy halts before type checking
// and yields a nil Result. A program that fails type checking yields the
// partial Result alongside the error. Both errors are *HaltError. A broken
// analyzer invariant is returned wrapped in ErrInternal.
func (a *Analyzer) Analyze(prog *ast.Program) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(internalError)
			if !ok {
				panic(r)
			}
			res, err = nil, fmt.Errorf("%w: %s", ErrInternal, ie.msg)
		}
	}()

	var diags Diagnostics

	classes := buildClassTable(prog, &diags)
	a.log.Debug("registered classes", "phase", "registry", "classes", classes.Len(), "errors", len(diags))
	if len(diags) == 0 {
		classes.validate(&diags)
		a.log.Debug("validated hierarchy", "phase", "hierarchy", "errors", len(diags))
	}
	if len(diags) > 0 {
		a.log.Info("halting", "phase", "hierarchy", "errors", len(diags))
		return nil, &HaltError{Phase: "class hierarchy validation", Diagnostics: diags}
	}

	a.checkEntry(classes, &diags)
	methods := buildMethodTable(classes, &diags)

	res = &Result{
		Program: prog,
		Classes: classes,
		Methods: methods,
		Types:   make([]types.Type, prog.Len()),
	}

	for _, name := range classes.Names() {
		if IsBasic(name) {
			continue
		}
		class, _ := classes.Lookup(name)
		before := len(diags)
		c := &checker{
			cfg:     a.cfg,
			prog:    prog,
			classes: classes,
			methods: methods,
			class:   class,
			env:     NewEnv(),
			types:   res.Types,
			diags:   &diags,
		}
		c.checkClass()
		a.log.Debug("checked class", "phase", "typecheck", "class", name, "errors", len(diags)-before)
	}

	if len(diags) > 0 {
		a.log.Info("halting", "phase", "typecheck", "errors", len(diags))
		return res, &HaltError{Phase: "type checking", Diagnostics: diags}
	}
	a.log.Debug("analysis succeeded", "classes", classes.Len(), "expressions", prog.Len())
	return res, nil
}

// checkEntry requires the configured entry class to declare the entry method
// itself.
func (a *Analyzer) checkEntry(classes *ClassTable, diags *Diagnostics) {
	class, ok := classes.Lookup(a.cfg.EntryClass)
	if !ok {
		diags.addf("", 0, "Class %s is not defined.", a.cfg.EntryClass)
		return
	}

	for _, m := range class.Methods() {
		if m.Name != a.cfg.EntryMethod {
			continue
		}
		if a.cfg.RequireNullaryEntry && len(m.Formals) > 0 {
			diags.addf(class.Filename, m.Line, "'%s' method in class %s should have no arguments.",
				a.cfg.EntryMethod, a.cfg.EntryClass)
		}
		return
	}
	diags.addf(class.Filename, class.Line, "No '%s' method in class %s.", a.cfg.EntryMethod, a.cfg.EntryClass)
}
