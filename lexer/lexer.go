package lexer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

const maxStringLength = 1024

// Lexer is the lexical analyzer.
type Lexer struct {
	reader *bufio.Reader
	line   int
	column int
	char   rune
}

// NewLexer creates a new lexer from an io.Reader
func NewLexer(reader io.Reader) *Lexer {
	l := &Lexer{
		reader: bufio.NewReader(reader),
		line:   1,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.char == '\n' {
		l.line++
		l.column = 0
	}
	r, _, err := l.reader.ReadRune()
	if err != nil {
		r = 0
	}
	l.char = r
	l.column++
}

func (l *Lexer) peekChar() rune {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		return 0
	}
	_ = l.reader.UnreadRune()
	return r
}

func (l *Lexer) skipWhiteSpace() {
	for unicode.IsSpace(l.char) {
		l.readChar()
	}
}

func isIdentifierStart(char rune) bool {
	return unicode.IsLetter(char)
}

func isIdentifierPart(char rune) bool {
	return unicode.IsLetter(char) || unicode.IsDigit(char) || char == '_'
}

func (l *Lexer) readWhile(pred func(rune) bool) string {
	var sb strings.Builder
	for l.char != 0 && pred(l.char) {
		sb.WriteRune(l.char)
		l.readChar()
	}
	return sb.String()
}

// readString consumes a string constant, opening quote included. On error the
// rest of the string is skipped so scanning resumes after it.
func (l *Lexer) readString() (string, error) {
	var sb strings.Builder
	l.readChar()
	for l.char != '"' {
		switch l.char {
		case 0:
			return "", fmt.Errorf("EOF in string constant")
		case '\n':
			l.readChar()
			return "", fmt.Errorf("Unterminated string constant")
		case '\\':
			l.readChar()
			switch l.char {
			case 'b':
				sb.WriteRune('\b')
			case 't':
				sb.WriteRune('\t')
			case 'n':
				sb.WriteRune('\n')
			case 'f':
				sb.WriteRune('\f')
			case 0:
				return "", fmt.Errorf("EOF in string constant")
			default:
				sb.WriteRune(l.char)
			}
		default:
			sb.WriteRune(l.char)
		}
		l.readChar()
	}
	l.readChar()
	if sb.Len() > maxStringLength {
		return "", fmt.Errorf("String constant too long")
	}
	return sb.String(), nil
}

// skipComment consumes a -- line comment or a nested (* *) block comment.
func (l *Lexer) skipComment() error {
	if l.char == '-' {
		for l.char != '\n' && l.char != 0 {
			l.readChar()
		}
		return nil
	}

	l.readChar() // (
	l.readChar() // *
	for nesting := 1; nesting > 0; {
		switch {
		case l.char == 0:
			return fmt.Errorf("EOF in comment")
		case l.char == '(' && l.peekChar() == '*':
			l.readChar()
			nesting++
		case l.char == '*' && l.peekChar() == ')':
			l.readChar()
			nesting--
		}
		l.readChar()
	}
	return nil
}

// NextToken scans the next token. Lexical errors are reported as ERROR tokens
// whose literal holds the message.
func (l *Lexer) NextToken() Token {
	for {
		l.skipWhiteSpace()
		if (l.char == '-' && l.peekChar() == '-') || (l.char == '(' && l.peekChar() == '*') {
			line, col := l.line, l.column
			if err := l.skipComment(); err != nil {
				return Token{Type: ERROR, Literal: err.Error(), Line: line, Column: col}
			}
			continue
		}
		if l.char == '*' && l.peekChar() == ')' {
			tok := Token{Type: ERROR, Literal: "Unmatched *)", Line: l.line, Column: l.column}
			l.readChar()
			l.readChar()
			return tok
		}
		break
	}

	tok := Token{Line: l.line, Column: l.column}

	if t, lit, ok := l.readOperator(); ok {
		tok.Type, tok.Literal = t, lit
		return tok
	}

	switch {
	case l.char == 0:
		tok.Type = EOF
	case l.char == '"':
		str, err := l.readString()
		if err != nil {
			tok.Type = ERROR
			tok.Literal = err.Error()
		} else {
			tok.Type = STR_CONST
			tok.Literal = str
		}
	case unicode.IsDigit(l.char):
		num := l.readWhile(unicode.IsDigit)
		if _, err := strconv.ParseInt(num, 10, 32); err != nil {
			tok.Type = ERROR
			tok.Literal = "Number out of range"
		} else {
			tok.Type = INT_CONST
			tok.Literal = num
		}
	case isIdentifierStart(l.char):
		tok.Literal = l.readWhile(isIdentifierPart)
		tok.Type = classifyIdentifier(tok.Literal)
	default:
		tok.Type = ERROR
		tok.Literal = fmt.Sprintf("Unexpected character: %c", l.char)
		l.readChar()
	}
	return tok
}

var singleCharTokens = map[rune]TokenType{
	'(': LPAREN, ')': RPAREN, '{': LBRACE, '}': RBRACE,
	';': SEMI, ':': COLON, ',': COMMA, '.': DOT, '@': AT,
	'+': PLUS, '-': MINUS, '*': TIMES, '/': DIVIDE, '~': NEG,
}

func (l *Lexer) readOperator() (TokenType, string, bool) {
	switch {
	case l.char == '<' && l.peekChar() == '-':
		l.readChar()
		l.readChar()
		return ASSIGN, "<-", true
	case l.char == '<' && l.peekChar() == '=':
		l.readChar()
		l.readChar()
		return LE, "<=", true
	case l.char == '<':
		l.readChar()
		return LT, "<", true
	case l.char == '=' && l.peekChar() == '>':
		l.readChar()
		l.readChar()
		return DARROW, "=>", true
	case l.char == '=':
		l.readChar()
		return EQ, "=", true
	}
	if t, ok := singleCharTokens[l.char]; ok {
		lit := string(l.char)
		l.readChar()
		return t, lit, true
	}
	return EOF, "", false
}

func classifyIdentifier(ident string) TokenType {
	lower := strings.ToLower(ident)
	if t, ok := keywords[lower]; ok {
		return t
	}
	if (lower == "true" || lower == "false") && unicode.IsLower(rune(ident[0])) {
		return BOOL_CONST
	}
	if unicode.IsUpper(rune(ident[0])) {
		return TYPEID
	}
	return OBJECTID
}
