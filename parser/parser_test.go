package parser

import (
	"strings"
	"testing"

	"cool-semant/ast"
	"cool-semant/lexer"
)

func newParser(input string) *Parser {
	l := lexer.NewLexer(strings.NewReader(input))
	return New(l, "test.cl")
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errors := p.Errors()
	if len(errors) == 0 {
		return
	}

	t.Errorf("parser has %d errors", len(errors))
	for _, msg := range errors {
		t.Errorf("parser error: %q", msg)
	}
	t.FailNow()
}

func assertClassCount(t *testing.T, program *ast.Program, expected int) {
	t.Helper()
	if len(program.Classes) != expected {
		t.Fatalf("program.Classes does not contain %d classes. got=%d",
			expected, len(program.Classes))
	}
}

// parseBody parses a single method class and returns the program and body id.
func parseBody(t *testing.T, body string) (*ast.Program, ast.ExprID) {
	t.Helper()
	p := newParser("class Test {\n  m() : Object { " + body + " };\n};")
	program := p.ParseProgram()
	checkParserErrors(t, p)
	assertClassCount(t, program, 1)

	method, ok := program.Classes[0].Features[0].(*ast.Method)
	if !ok {
		t.Fatalf("feature is not *ast.Method. got=%T", program.Classes[0].Features[0])
	}
	return program, method.Body
}

func TestBasicClassParsing(t *testing.T) {
	tests := []struct {
		input          string
		expectedClass  string
		expectedParent string
	}{
		{"class A {};", "A", "Object"},
		{"class B inherits A {};", "B", "A"},
	}

	for _, tt := range tests {
		p := newParser(tt.input)
		program := p.ParseProgram()
		checkParserErrors(t, p)

		assertClassCount(t, program, 1)
		class := program.Classes[0]
		if class.Name != tt.expectedClass {
			t.Errorf("class.Name not %q. got=%q", tt.expectedClass, class.Name)
		}
		if class.Parent != tt.expectedParent {
			t.Errorf("class.Parent not %q. got=%q", tt.expectedParent, class.Parent)
		}
		if class.Filename != "test.cl" || class.Line != 1 {
			t.Errorf("class position wrong. got=%s:%d", class.Filename, class.Line)
		}
	}
}

func TestClassFeatureParsing(t *testing.T) {
	input := `
class Test {
	x: Int;
	y: String <- "hello";
	method(a: Int, b: Bool): Int { 42 };
};
`
	p := newParser(input)
	program := p.ParseProgram()
	checkParserErrors(t, p)

	assertClassCount(t, program, 1)
	class := program.Classes[0]
	if len(class.Features) != 3 {
		t.Fatalf("class.Features does not contain 3 features. got=%d", len(class.Features))
	}

	x, ok := class.Features[0].(*ast.Attribute)
	if !ok {
		t.Fatalf("class.Features[0] is not *ast.Attribute. got=%T", class.Features[0])
	}
	if x.Name != "x" || x.Type != "Int" || x.Line != 3 {
		t.Errorf("attribute x incorrect. got name=%s type=%s line=%d", x.Name, x.Type, x.Line)
	}
	if kind := program.Expr(x.Init).Kind; kind != ast.NoExpr {
		t.Errorf("attribute x init should be no_expr. got=%s", kind)
	}

	y := class.Features[1].(*ast.Attribute)
	if init := program.Expr(y.Init); init.Kind != ast.StringConst || init.Value != "hello" {
		t.Errorf("attribute y init incorrect. got=%s %q", init.Kind, init.Value)
	}

	m, ok := class.Features[2].(*ast.Method)
	if !ok {
		t.Fatalf("class.Features[2] is not *ast.Method. got=%T", class.Features[2])
	}
	if m.Name != "method" || m.ReturnType != "Int" || len(m.Formals) != 2 {
		t.Fatalf("method incorrect. got name=%s return=%s formals=%d", m.Name, m.ReturnType, len(m.Formals))
	}
	if m.Formals[1].Name != "b" || m.Formals[1].Type != "Bool" {
		t.Errorf("second formal incorrect. got=%s:%s", m.Formals[1].Name, m.Formals[1].Type)
	}
	if body := program.Expr(m.Body); body.Kind != ast.IntConst || body.Value != "42" {
		t.Errorf("method body incorrect. got=%s %q", body.Kind, body.Value)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a + b * c", "(a + (b * c))"},
		{"a * b - c", "((a * b) - c)"},
		{"a + b <= c", "((a + b) <= c)"},
		{"not a = b", "(not (a = b))"},
		{"~a + b", "((~a) + b)"},
		{"isvoid a + b", "((isvoid a) + b)"},
		{"x <- a + b", "(x <- (a + b))"},
		{"x <- y <- 1", "(x <- (y <- 1))"},
		{"a.f(b) + c", "((a.f(b)) + c)"},
		{"~a.f()", "(~(a.f()))"},
		{"a@B.f(1, 2).g()", "((a@B.f(1, 2)).g())"},
		{"(a + b) * c", "((a + b) * c)"},
		{"f(1)", "(self.f(1))"},
	}

	for _, tt := range tests {
		program, body := parseBody(t, tt.input)
		if got := render(program, body); got != tt.expected {
			t.Errorf("%q: expected=%q, got=%q", tt.input, tt.expected, got)
		}
	}
}

func TestCompoundExpressions(t *testing.T) {
	t.Run("if", func(t *testing.T) {
		program, body := parseBody(t, "if a < b then 1 else 2 fi")
		e := program.Expr(body)
		if e.Kind != ast.Cond {
			t.Fatalf("expected cond. got=%s", e.Kind)
		}
		if program.Expr(e.E1).Kind != ast.LT || program.Expr(e.E3).Value != "2" {
			t.Errorf("cond operands wrong: %s", render(program, body))
		}
	})

	t.Run("while", func(t *testing.T) {
		program, body := parseBody(t, "while true loop x <- x + 1 pool")
		if got := render(program, body); got != "(while true loop (x <- (x + 1)) pool)" {
			t.Errorf("got=%q", got)
		}
	})

	t.Run("block", func(t *testing.T) {
		program, body := parseBody(t, "{ 1; \"s\"; x; }")
		e := program.Expr(body)
		if e.Kind != ast.Block || len(e.Args) != 3 {
			t.Fatalf("expected 3 element block. got=%s with %d", e.Kind, len(e.Args))
		}
	})

	t.Run("let with several bindings nests", func(t *testing.T) {
		program, body := parseBody(t, "let a : Int <- 1, b : String in a")
		outer := program.Expr(body)
		if outer.Kind != ast.Let || outer.Name != "a" || outer.Type != "Int" {
			t.Fatalf("outer let wrong: %+v", outer)
		}
		inner := program.Expr(outer.E2)
		if inner.Kind != ast.Let || inner.Name != "b" || inner.Type != "String" {
			t.Fatalf("inner let wrong: %+v", inner)
		}
		if program.Expr(inner.E1).Kind != ast.NoExpr {
			t.Errorf("b should have no initializer")
		}
		if got := program.Expr(inner.E2); got.Kind != ast.Object || got.Name != "a" {
			t.Errorf("let body wrong: %+v", got)
		}
	})

	t.Run("let body extends right", func(t *testing.T) {
		program, body := parseBody(t, "let a : Int in a + 1")
		if got := render(program, body); got != "(let a : Int in (a + 1))" {
			t.Errorf("got=%q", got)
		}
	})

	t.Run("case", func(t *testing.T) {
		program, body := parseBody(t, "case x of i : Int => 1; s : String => 2; esac")
		e := program.Expr(body)
		if e.Kind != ast.TypeCase || len(e.Branches) != 2 {
			t.Fatalf("expected 2 branch case. got=%s", e.Kind)
		}
		if e.Branches[1].Name != "s" || e.Branches[1].Type != "String" {
			t.Errorf("second branch wrong: %+v", e.Branches[1])
		}
	})

	t.Run("new", func(t *testing.T) {
		program, body := parseBody(t, "new SELF_TYPE")
		e := program.Expr(body)
		if e.Kind != ast.New || e.Type != "SELF_TYPE" {
			t.Errorf("new wrong: %+v", e)
		}
	})
}

func TestExpressionLines(t *testing.T) {
	input := "class Test {\n  m() : Object {\n    {\n      1;\n      x.f(\n        2);\n    }\n  };\n};"
	p := newParser(input)
	program := p.ParseProgram()
	checkParserErrors(t, p)

	body := program.Expr(program.Classes[0].Methods()[0].Body)
	if body.Line != 3 {
		t.Errorf("block line: expected 3, got %d", body.Line)
	}
	if line := program.Expr(body.Args[0]).Line; line != 4 {
		t.Errorf("int line: expected 4, got %d", line)
	}
	call := program.Expr(body.Args[1])
	if call.Line != 5 || program.Expr(call.Args[0]).Line != 6 {
		t.Errorf("dispatch lines wrong: call %d, arg %d", call.Line, program.Expr(call.Args[0]).Line)
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		input          string
		expectedErrors int
		expectedErrMsg []string
	}{
		{
			`class Test {}`,
			1,
			[]string{"Expected next token to be SEMI"},
		},
		{
			`class {};`,
			1,
			[]string{"Expected next token to be TYPEID"},
		},
		{
			"class Test {\n  method(: Int { 42 };\n};",
			1,
			[]string{"test.cl:2:10: Expected parameter name"},
		},
		{
			"class Test {\n  method(): Int { let Int <- 5 in x };\n};",
			1,
			[]string{"Expected next token to be OBJECTID"},
		},
		{
			"class Test {\n  method(): Int { if x then 1 fi };\n};",
			1,
			[]string{"Expected next token to be ELSE"},
		},
		{
			"class Test {\n  method(): Int { {} };\n};",
			1,
			[]string{"Block must contain at least one expression"},
		},
		{
			"class Test {\n  s : String <- \"open\n};",
			2,
			[]string{"Unterminated string constant"},
		},
		{
			"class A { x : Int <- 1 + ; };\nclass B {};",
			1,
			[]string{"no prefix parse function for SEMI"},
		},
	}

	for _, tt := range tests {
		p := newParser(tt.input)
		p.ParseProgram()
		errors := p.Errors()

		if len(errors) != tt.expectedErrors {
			t.Errorf("expected %d errors, got %d for input:\n%s\nErrors: %v",
				tt.expectedErrors, len(errors), tt.input, errors)
			continue
		}
		for i, expectedMsg := range tt.expectedErrMsg {
			if !strings.Contains(errors[i], expectedMsg) {
				t.Errorf("expected error message to contain %q, got %q\nfor input:\n%s",
					expectedMsg, errors[i], tt.input)
			}
		}
	}
}

func TestRecoveryKeepsLaterClasses(t *testing.T) {
	p := newParser("class A { x : Int <- 1 + ; };\nclass B {};")
	program := p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected a syntax error")
	}
	assertClassCount(t, program, 1)
	if program.Classes[0].Name != "B" {
		t.Errorf("expected class B to survive, got %s", program.Classes[0].Name)
	}
}

// render prints an expression fully parenthesized.
func render(prog *ast.Program, id ast.ExprID) string {
	e := prog.Expr(id)
	args := func() string {
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = render(prog, a)
		}
		return strings.Join(parts, ", ")
	}
	switch e.Kind {
	case ast.IntConst, ast.StringConst:
		return e.Value
	case ast.BoolConst:
		if e.Bool {
			return "true"
		}
		return "false"
	case ast.Object:
		return e.Name
	case ast.Assign:
		return "(" + e.Name + " <- " + render(prog, e.E1) + ")"
	case ast.Dispatch:
		return "(" + render(prog, e.E1) + "." + e.Name + "(" + args() + "))"
	case ast.StaticDispatch:
		return "(" + render(prog, e.E1) + "@" + e.Type + "." + e.Name + "(" + args() + "))"
	case ast.Loop:
		return "(while " + render(prog, e.E1) + " loop " + render(prog, e.E2) + " pool)"
	case ast.Let:
		return "(let " + e.Name + " : " + e.Type + " in " + render(prog, e.E2) + ")"
	case ast.Neg:
		return "(~" + render(prog, e.E1) + ")"
	case ast.Not, ast.IsVoid:
		return "(" + e.Kind.Operator() + " " + render(prog, e.E1) + ")"
	case ast.Plus, ast.Sub, ast.Mul, ast.Divide, ast.LT, ast.LE, ast.EQ:
		return "(" + render(prog, e.E1) + " " + e.Kind.Operator() + " " + render(prog, e.E2) + ")"
	}
	return e.Kind.String()
}
