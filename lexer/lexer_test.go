package lexer

import (
	"strings"
	"testing"
)

type lexerTest struct {
	input             string
	expectedTokenType []TokenType
	expectedLiteral   []string
}

func TestNextToken(t *testing.T) {
	tests := []lexerTest{
		{
			"class Main inherits IO {};",
			[]TokenType{CLASS, TYPEID, INHERITS, TYPEID, LBRACE, RBRACE, SEMI, EOF},
			[]string{"class", "Main", "inherits", "IO", "{", "}", ";", ""},
		},
		{
			"x <- true; -- trailing comment\nx <- false;",
			[]TokenType{OBJECTID, ASSIGN, BOOL_CONST, SEMI, OBJECTID, ASSIGN, BOOL_CONST, SEMI, EOF},
			[]string{"x", "<-", "true", ";", "x", "<-", "false", ";", ""},
		},
		{
			"a_1 <= \"1\\n\" = b",
			[]TokenType{OBJECTID, LE, STR_CONST, EQ, OBJECTID, EOF},
			[]string{"a_1", "<=", "1\n", "=", "b", ""},
		},
		{
			"case a of b : B => ~1 esac",
			[]TokenType{CASE, OBJECTID, OF, OBJECTID, COLON, TYPEID, DARROW, NEG, INT_CONST, ESAC, EOF},
			[]string{"case", "a", "of", "b", ":", "B", "=>", "~", "1", "esac", ""},
		},
		{
			"x@A.f(y, z) * 2 / 3 - 4 + 5 < 6",
			[]TokenType{OBJECTID, AT, TYPEID, DOT, OBJECTID, LPAREN, OBJECTID, COMMA, OBJECTID, RPAREN,
				TIMES, INT_CONST, DIVIDE, INT_CONST, MINUS, INT_CONST, PLUS, INT_CONST, LT, INT_CONST, EOF},
			[]string{"x", "@", "A", ".", "f", "(", "y", ",", "z", ")",
				"*", "2", "/", "3", "-", "4", "+", "5", "<", "6", ""},
		},
		{
			"while isvoid x loop new SELF_TYPE pool",
			[]TokenType{WHILE, ISVOID, OBJECTID, LOOP, NEW, TYPEID, POOL, EOF},
			[]string{"while", "isvoid", "x", "loop", "new", "SELF_TYPE", "pool", ""},
		},
	}

	for _, tt := range tests {
		runLexerTest(t, tt)
	}
}

func TestKeywordCase(t *testing.T) {
	tests := []lexerTest{
		{
			"CLASS Class class",
			[]TokenType{CLASS, CLASS, CLASS},
			[]string{"CLASS", "Class", "class"},
		},
		{
			"true tRUE True False",
			[]TokenType{BOOL_CONST, BOOL_CONST, TYPEID, TYPEID},
			[]string{"true", "tRUE", "True", "False"},
		},
	}
	for _, tt := range tests {
		runLexerTest(t, tt)
	}
}

func TestComments(t *testing.T) {
	tests := []lexerTest{
		{
			"(* outer (* inner *) outer *) x",
			[]TokenType{OBJECTID},
			[]string{"x"},
		},
		{
			"x (* multi\nline *) y -- rest",
			[]TokenType{OBJECTID, OBJECTID},
			[]string{"x", "y"},
		},
		{
			"(* never closed",
			[]TokenType{ERROR},
			[]string{"EOF in comment"},
		},
		{
			"x *) y",
			[]TokenType{OBJECTID, ERROR, OBJECTID},
			[]string{"x", "Unmatched *)", "y"},
		},
	}
	for _, tt := range tests {
		runLexerTest(t, tt)
	}
}

func TestStringErrors(t *testing.T) {
	tests := []lexerTest{
		{
			"\"no end\nx",
			[]TokenType{ERROR, OBJECTID},
			[]string{"Unterminated string constant", "x"},
		},
		{
			`"tab\there \"q\""`,
			[]TokenType{STR_CONST},
			[]string{"tab\there \"q\""},
		},
		{
			`"` + strings.Repeat("a", maxStringLength+1) + `" y`,
			[]TokenType{ERROR, OBJECTID},
			[]string{"String constant too long", "y"},
		},
		{
			"99999999999",
			[]TokenType{ERROR},
			[]string{"Number out of range"},
		},
		{
			"#",
			[]TokenType{ERROR},
			[]string{"Unexpected character: #"},
		},
	}
	for _, tt := range tests {
		runLexerTest(t, tt)
	}
}

func TestTokenPositions(t *testing.T) {
	input := "class A {\n  f() : Int { 1 };\n};"
	l := NewLexer(strings.NewReader(input))

	expected := []struct {
		literal string
		line    int
		column  int
	}{
		{"class", 1, 1},
		{"A", 1, 7},
		{"{", 1, 9},
		{"f", 2, 3},
		{"(", 2, 4},
		{")", 2, 5},
		{":", 2, 7},
		{"Int", 2, 9},
		{"{", 2, 13},
		{"1", 2, 15},
		{"}", 2, 17},
		{";", 2, 18},
		{"}", 3, 1},
	}
	for _, e := range expected {
		tok := l.NextToken()
		if tok.Literal != e.literal || tok.Line != e.line || tok.Column != e.column {
			t.Errorf("expected %q at %d:%d, got %q at %d:%d",
				e.literal, e.line, e.column, tok.Literal, tok.Line, tok.Column)
		}
	}
}

func runLexerTest(t *testing.T, test lexerTest) {
	t.Helper()
	l := NewLexer(strings.NewReader(test.input))

	for i, expectedType := range test.expectedTokenType {
		tok := l.NextToken()

		if tok.Type != expectedType {
			t.Errorf("[%q]: wrong token type at %d. expected=%s, got=%s",
				test.input, i, expectedType, tok.Type)
		}
		if tok.Literal != test.expectedLiteral[i] {
			t.Errorf("[%q]: wrong literal at %d. expected=%q, got=%q",
				test.input, i, test.expectedLiteral[i], tok.Literal)
		}
	}
}
