package parser

import (
	"fmt"
	"strings"

	"cool-semant/ast"
	"cool-semant/lexer"
)

const (
	_ int = iota
	LOWEST
	ASSIGN  // <- (right associative)
	NOT     // not
	COMPARE // <=, <, =
	SUM     // +, -
	PRODUCT // *, /
	ISVOID  // isvoid
	NEG     // ~
	AT      // @
	DOT     // . (highest precedence)
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN: ASSIGN,
	lexer.EQ:     COMPARE,
	lexer.LE:     COMPARE,
	lexer.LT:     COMPARE,
	lexer.PLUS:   SUM,
	lexer.MINUS:  SUM,
	lexer.TIMES:  PRODUCT,
	lexer.DIVIDE: PRODUCT,
	lexer.AT:     AT,
	lexer.DOT:    DOT,
}

var binaryKinds = map[lexer.TokenType]ast.Kind{
	lexer.PLUS:   ast.Plus,
	lexer.MINUS:  ast.Sub,
	lexer.TIMES:  ast.Mul,
	lexer.DIVIDE: ast.Divide,
	lexer.LT:     ast.LT,
	lexer.LE:     ast.LE,
	lexer.EQ:     ast.EQ,
}

type (
	prefixParseFn func() ast.ExprID
	infixParseFn  func(ast.ExprID) ast.ExprID
)

// Parser turns the token stream of one source file into classes whose
// expressions are stored in a shared ast.Program arena. A failed parse
// function returns ast.NoID after recording an error.
type Parser struct {
	l        *lexer.Lexer
	filename string
	prog     *ast.Program

	curToken  lexer.Token
	peekToken lexer.Token
	errors    []string

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

func New(l *lexer.Lexer, filename string) *Parser {
	p := &Parser{
		l:              l,
		filename:       filename,
		errors:         []string{},
		prefixParseFns: make(map[lexer.TokenType]prefixParseFn),
		infixParseFns:  make(map[lexer.TokenType]infixParseFn),
	}

	p.nextToken()
	p.nextToken()

	p.registerPrefix(lexer.INT_CONST, p.parseIntegerExpression)
	p.registerPrefix(lexer.STR_CONST, p.parseStringExpression)
	p.registerPrefix(lexer.BOOL_CONST, p.parseBoolExpression)
	p.registerPrefix(lexer.OBJECTID, p.parseObjectIdentifier)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.IF, p.parseIfExpression)
	p.registerPrefix(lexer.WHILE, p.parseWhileExpression)
	p.registerPrefix(lexer.LET, p.parseLetExpression)
	p.registerPrefix(lexer.CASE, p.parseCaseExpression)
	p.registerPrefix(lexer.NEW, p.parseNewExpression)
	p.registerPrefix(lexer.ISVOID, p.parseIsvoidExpression)
	p.registerPrefix(lexer.NOT, p.parseNotExpression)
	p.registerPrefix(lexer.NEG, p.parseNegExpression)
	p.registerPrefix(lexer.LBRACE, p.parseBlockExpression)

	for t := range binaryKinds {
		p.registerInfix(t, p.parseInfixExpression)
	}
	p.registerInfix(lexer.ASSIGN, p.parseAssignment)
	p.registerInfix(lexer.DOT, p.parseDispatch)
	p.registerInfix(lexer.AT, p.parseDispatch)

	return p
}

func (p *Parser) Errors() []string {
	return p.errors
}

// nextToken advances the window, recording lexical errors as it skips them.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	for {
		p.peekToken = p.l.NextToken()
		if p.peekToken.Type != lexer.ERROR {
			return
		}
		p.errorAt(p.peekToken, "%s", p.peekToken.Literal)
	}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectAndPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) errorAt(tok lexer.Token, format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf("%s:%d:%d: %s", p.filename, tok.Line, tok.Column, fmt.Sprintf(format, args...)))
}

func (p *Parser) peekError(t lexer.TokenType) {
	p.errorAt(p.peekToken, "Expected next token to be %v, got %v", t, p.peekToken.Type)
}

// ParseProgram parses the whole input into a fresh program.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	p.ParseInto(prog)
	return prog
}

// ParseInto appends the classes of this file to prog, sharing its arena.
func (p *Parser) ParseInto(prog *ast.Program) {
	p.prog = prog

	for !p.curTokenIs(lexer.EOF) {
		class := p.parseClass()
		if class == nil || !p.expectAndPeek(lexer.SEMI) {
			p.nextToken()
			p.skipUntil(lexer.CLASS)
			continue
		}
		prog.Classes = append(prog.Classes, class)
		p.nextToken()
	}
}

func (p *Parser) skipUntil(tokens ...lexer.TokenType) {
	for !p.curTokenIs(lexer.EOF) {
		for _, t := range tokens {
			if p.curTokenIs(t) {
				return
			}
		}
		p.nextToken()
	}
}

func (p *Parser) parseClass() *ast.Class {
	if !p.curTokenIs(lexer.CLASS) {
		p.errorAt(p.curToken, "Expected class, got %s", p.curToken.Type)
		return nil
	}

	c := &ast.Class{Filename: p.filename, Line: p.curToken.Line, Parent: ast.ObjectName}

	if !p.expectAndPeek(lexer.TYPEID) {
		return nil
	}
	c.Name = p.curToken.Literal

	if p.peekTokenIs(lexer.INHERITS) {
		p.nextToken()
		if !p.expectAndPeek(lexer.TYPEID) {
			return nil
		}
		c.Parent = p.curToken.Literal
	}

	if !p.expectAndPeek(lexer.LBRACE) {
		return nil
	}
	p.nextToken()

	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		feature := p.parseFeature()
		if feature == nil {
			return nil
		}
		c.Features = append(c.Features, feature)

		if !p.expectAndPeek(lexer.SEMI) {
			return nil
		}
		p.nextToken()
	}

	if !p.curTokenIs(lexer.RBRACE) {
		p.errorAt(p.curToken, "Expected closing brace")
		return nil
	}
	return c
}

func (p *Parser) parseFeature() ast.Feature {
	if p.peekTokenIs(lexer.LPAREN) {
		if m := p.parseMethod(); m != nil {
			return m
		}
		return nil
	}
	if a := p.parseAttribute(); a != nil {
		return a
	}
	return nil
}

func (p *Parser) parseMethod() *ast.Method {
	if !p.curTokenIs(lexer.OBJECTID) {
		p.errorAt(p.curToken, "Expected method name to be OBJECTID, got %s", p.curToken.Type)
		return nil
	}
	m := &ast.Method{Name: p.curToken.Literal, Line: p.curToken.Line}

	p.nextToken() // (
	p.nextToken()

	if !p.curTokenIs(lexer.RPAREN) {
		for {
			formal := p.parseFormal()
			if formal == nil {
				return nil
			}
			m.Formals = append(m.Formals, formal)

			if p.peekTokenIs(lexer.RPAREN) {
				break
			}
			if !p.expectAndPeek(lexer.COMMA) {
				return nil
			}
			p.nextToken()
		}
		p.nextToken()
	}

	if !p.expectAndPeek(lexer.COLON) {
		return nil
	}
	if !p.expectAndPeek(lexer.TYPEID) {
		return nil
	}
	m.ReturnType = p.curToken.Literal

	if !p.expectAndPeek(lexer.LBRACE) {
		return nil
	}
	p.nextToken()

	m.Body = p.parseExpression(LOWEST)
	if !m.Body.Valid() {
		return nil
	}
	if !p.expectAndPeek(lexer.RBRACE) {
		return nil
	}
	return m
}

func (p *Parser) parseFormal() *ast.Formal {
	if !p.curTokenIs(lexer.OBJECTID) {
		p.errorAt(p.curToken, "Expected parameter name, got %s", p.curToken.Type)
		return nil
	}
	f := &ast.Formal{Name: p.curToken.Literal, Line: p.curToken.Line}

	if !p.expectAndPeek(lexer.COLON) {
		return nil
	}
	if !p.expectAndPeek(lexer.TYPEID) {
		return nil
	}
	f.Type = p.curToken.Literal
	return f
}

func (p *Parser) parseAttribute() *ast.Attribute {
	if !p.curTokenIs(lexer.OBJECTID) {
		p.errorAt(p.curToken, "Expected attribute name to be OBJECTID, got %s", p.curToken.Type)
		return nil
	}
	a := &ast.Attribute{Name: p.curToken.Literal, Line: p.curToken.Line}

	if !p.expectAndPeek(lexer.COLON) {
		return nil
	}
	if !p.expectAndPeek(lexer.TYPEID) {
		return nil
	}
	a.Type = p.curToken.Literal

	a.Init = p.parseOptionalInit()
	if !a.Init.Valid() {
		return nil
	}
	return a
}

// parseOptionalInit parses "<- expr" when present and otherwise yields an
// empty expression node on the current line.
func (p *Parser) parseOptionalInit() ast.ExprID {
	if !p.peekTokenIs(lexer.ASSIGN) {
		return p.prog.NoExpr(p.curToken.Line)
	}
	p.nextToken()
	p.nextToken()
	return p.parseExpression(LOWEST)
}

// parseExpression implements Pratt parsing over the operator table above.
func (p *Parser) parseExpression(precedence int) ast.ExprID {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return ast.NoID
	}

	left := prefix()
	for left.Valid() && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

// (expr)
func (p *Parser) parseGroupedExpression() ast.ExprID {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if !exp.Valid() || !p.expectAndPeek(lexer.RPAREN) {
		return ast.NoID
	}
	return exp
}

func (p *Parser) parseInfixExpression(left ast.ExprID) ast.ExprID {
	tok := p.curToken
	precedence := p.curPrecedence()
	p.nextToken()

	right := p.parseExpression(precedence)
	if !right.Valid() {
		return ast.NoID
	}
	return p.prog.Binary(tok.Line, binaryKinds[tok.Type], left, right)
}

// { expr; [[expr;]]* }
func (p *Parser) parseBlockExpression() ast.ExprID {
	line := p.curToken.Line
	p.nextToken()

	if p.curTokenIs(lexer.RBRACE) {
		p.errorAt(p.curToken, "Block must contain at least one expression")
		return ast.NoID
	}

	var body []ast.ExprID
	for {
		expr := p.parseExpression(LOWEST)
		if !expr.Valid() {
			return ast.NoID
		}
		body = append(body, expr)

		if !p.expectAndPeek(lexer.SEMI) {
			return ast.NoID
		}
		p.nextToken()
		if p.curTokenIs(lexer.RBRACE) {
			break
		}
	}
	return p.prog.Block(line, body...)
}

// if expr then expr else expr fi
func (p *Parser) parseIfExpression() ast.ExprID {
	line := p.curToken.Line
	p.nextToken()

	pred := p.parseExpression(LOWEST)
	if !pred.Valid() || !p.expectAndPeek(lexer.THEN) {
		return ast.NoID
	}
	p.nextToken()
	then := p.parseExpression(LOWEST)
	if !then.Valid() || !p.expectAndPeek(lexer.ELSE) {
		return ast.NoID
	}
	p.nextToken()
	els := p.parseExpression(LOWEST)
	if !els.Valid() || !p.expectAndPeek(lexer.FI) {
		return ast.NoID
	}
	return p.prog.Cond(line, pred, then, els)
}

// while expr loop expr pool
func (p *Parser) parseWhileExpression() ast.ExprID {
	line := p.curToken.Line
	p.nextToken()

	pred := p.parseExpression(LOWEST)
	if !pred.Valid() || !p.expectAndPeek(lexer.LOOP) {
		return ast.NoID
	}
	p.nextToken()
	body := p.parseExpression(LOWEST)
	if !body.Valid() || !p.expectAndPeek(lexer.POOL) {
		return ast.NoID
	}
	return p.prog.Loop(line, pred, body)
}

type letBinding struct {
	name, typ string
	init      ast.ExprID
	line      int
}

// let ID : TYPE [ <- expr ] [[, ID : TYPE [ <- expr ]]]* in expr
//
// Several bindings become nested single-binding lets, innermost last.
func (p *Parser) parseLetExpression() ast.ExprID {
	var bindings []letBinding
	for {
		if !p.expectAndPeek(lexer.OBJECTID) {
			return ast.NoID
		}
		b := letBinding{name: p.curToken.Literal, line: p.curToken.Line}

		if !p.expectAndPeek(lexer.COLON) || !p.expectAndPeek(lexer.TYPEID) {
			return ast.NoID
		}
		b.typ = p.curToken.Literal

		b.init = p.parseOptionalInit()
		if !b.init.Valid() {
			return ast.NoID
		}
		bindings = append(bindings, b)

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectAndPeek(lexer.IN) {
		return ast.NoID
	}
	p.nextToken()
	body := p.parseExpression(LOWEST)
	if !body.Valid() {
		return ast.NoID
	}

	for i := len(bindings) - 1; i >= 0; i-- {
		b := bindings[i]
		body = p.prog.Let(b.line, b.name, b.typ, b.init, body)
	}
	return body
}

// case expr of [[ID : TYPE => expr;]]+ esac
func (p *Parser) parseCaseExpression() ast.ExprID {
	line := p.curToken.Line
	p.nextToken()

	scrutinee := p.parseExpression(LOWEST)
	if !scrutinee.Valid() || !p.expectAndPeek(lexer.OF) {
		return ast.NoID
	}
	p.nextToken()

	var branches []ast.Branch
	for !p.curTokenIs(lexer.ESAC) && !p.curTokenIs(lexer.EOF) {
		branch, ok := p.parseBranch()
		if !ok {
			return ast.NoID
		}
		branches = append(branches, branch)

		if !p.expectAndPeek(lexer.SEMI) {
			return ast.NoID
		}
		p.nextToken()
	}

	if !p.curTokenIs(lexer.ESAC) {
		p.errorAt(p.curToken, "Expected esac, got %s", p.curToken.Type)
		return ast.NoID
	}
	if len(branches) == 0 {
		p.errorAt(p.curToken, "Case expression must have at least one branch")
		return ast.NoID
	}
	return p.prog.Case(line, scrutinee, branches...)
}

func (p *Parser) parseBranch() (ast.Branch, bool) {
	if !p.curTokenIs(lexer.OBJECTID) {
		p.errorAt(p.curToken, "Expected identifier in case branch, got %s", p.curToken.Type)
		return ast.Branch{}, false
	}
	b := ast.Branch{Name: p.curToken.Literal, Line: p.curToken.Line}

	if !p.expectAndPeek(lexer.COLON) || !p.expectAndPeek(lexer.TYPEID) {
		return ast.Branch{}, false
	}
	b.Type = p.curToken.Literal

	if !p.expectAndPeek(lexer.DARROW) {
		return ast.Branch{}, false
	}
	p.nextToken()

	b.Body = p.parseExpression(LOWEST)
	return b, b.Body.Valid()
}

// new TYPE
func (p *Parser) parseNewExpression() ast.ExprID {
	line := p.curToken.Line
	if !p.expectAndPeek(lexer.TYPEID) {
		return ast.NoID
	}
	return p.prog.New(line, p.curToken.Literal)
}

func (p *Parser) parseUnary(kind ast.Kind, precedence int) ast.ExprID {
	line := p.curToken.Line
	p.nextToken()

	operand := p.parseExpression(precedence)
	if !operand.Valid() {
		return ast.NoID
	}
	return p.prog.Unary(line, kind, operand)
}

// isvoid expr
func (p *Parser) parseIsvoidExpression() ast.ExprID {
	return p.parseUnary(ast.IsVoid, ISVOID)
}

// not expr
func (p *Parser) parseNotExpression() ast.ExprID {
	return p.parseUnary(ast.Not, NOT)
}

// ~expr
func (p *Parser) parseNegExpression() ast.ExprID {
	return p.parseUnary(ast.Neg, NEG)
}

func (p *Parser) parseBoolExpression() ast.ExprID {
	return p.prog.BoolConst(p.curToken.Line, strings.ToLower(p.curToken.Literal) == "true")
}

func (p *Parser) parseIntegerExpression() ast.ExprID {
	return p.prog.Int(p.curToken.Line, p.curToken.Literal)
}

func (p *Parser) parseStringExpression() ast.ExprID {
	return p.prog.Str(p.curToken.Line, p.curToken.Literal)
}

// ID, or ID(expr, ...) which dispatches on self.
func (p *Parser) parseObjectIdentifier() ast.ExprID {
	tok := p.curToken
	if !p.peekTokenIs(lexer.LPAREN) {
		return p.prog.Ident(tok.Line, tok.Literal)
	}

	p.nextToken()
	args, ok := p.parseExpressionList(lexer.RPAREN)
	if !ok {
		return ast.NoID
	}
	self := p.prog.Ident(tok.Line, ast.SelfName)
	return p.prog.Dispatch(tok.Line, self, tok.Literal, args...)
}

// expr.ID(expr, ...) or expr@TYPE.ID(expr, ...)
func (p *Parser) parseDispatch(receiver ast.ExprID) ast.ExprID {
	line := p.curToken.Line
	static := ""

	if p.curTokenIs(lexer.AT) {
		if !p.expectAndPeek(lexer.TYPEID) {
			return ast.NoID
		}
		static = p.curToken.Literal
		if !p.expectAndPeek(lexer.DOT) {
			return ast.NoID
		}
	}

	if !p.expectAndPeek(lexer.OBJECTID) {
		return ast.NoID
	}
	method := p.curToken.Literal

	if !p.expectAndPeek(lexer.LPAREN) {
		return ast.NoID
	}
	args, ok := p.parseExpressionList(lexer.RPAREN)
	if !ok {
		return ast.NoID
	}

	if static != "" {
		return p.prog.StaticDispatch(line, receiver, static, method, args...)
	}
	return p.prog.Dispatch(line, receiver, method, args...)
}

func (p *Parser) parseExpressionList(end lexer.TokenType) ([]ast.ExprID, bool) {
	var exps []ast.ExprID

	if p.peekTokenIs(end) {
		p.nextToken()
		return exps, true
	}

	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if !exp.Valid() {
		return nil, false
	}
	exps = append(exps, exp)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		exp := p.parseExpression(LOWEST)
		if !exp.Valid() {
			return nil, false
		}
		exps = append(exps, exp)
	}

	if !p.expectAndPeek(end) {
		return nil, false
	}
	return exps, true
}

// ID <- expr
func (p *Parser) parseAssignment(left ast.ExprID) ast.ExprID {
	target := p.prog.Expr(left)
	if target.Kind != ast.Object {
		p.errorAt(p.curToken, "Left side of assignment must be an identifier")
		return ast.NoID
	}
	name, line := target.Name, target.Line

	p.nextToken()
	value := p.parseExpression(LOWEST)
	if !value.Valid() {
		return ast.NoID
	}
	return p.prog.Assign(line, name, value)
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	p.errorAt(tok, "no prefix parse function for %s found", tok.Type)
}
