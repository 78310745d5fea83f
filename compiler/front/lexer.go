package front

import (
	"context"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

// Lexer scans MiniLang source left to right, tracking line and column
// for error reporting.
type Lexer struct {
	src string

	pos  int
	line int
	col  int
}

func NewLexer(src string) *Lexer {
	return &Lexer{
		src:  src,
		line: 1,
		col:  1,
	}
}

// Tokenize turns the whole source into a token sequence terminated by EOF.
func Tokenize(ctx context.Context, src string) ([]Token, error) {
	l := NewLexer(src)

	tr := tlog.SpanFromContext(ctx)

	var tokens []Token

	for {
		err := l.skipSpaceAndComments()
		if err != nil {
			return nil, err
		}

		if l.peek() == 0 {
			tokens = append(tokens, Token{Kind: EOF, Line: l.line, Col: l.col})
			break
		}

		tok, err := l.next()
		if err != nil {
			return nil, err
		}

		if tr.If("next_token") {
			tr.Printw("next token", "tok", tok, "from", loc.Callers(1, 2))
		}

		tokens = append(tokens, tok)
	}

	tr.Printw("tokenized", "tokens", len(tokens))

	return tokens, nil
}

func (l *Lexer) peek() byte {
	if l.pos < len(l.src) {
		return l.src[l.pos]
	}

	return 0
}

func (l *Lexer) peek2() byte {
	if l.pos+1 < len(l.src) {
		return l.src[l.pos+1]
	}

	return 0
}

func (l *Lexer) advance() byte {
	c := l.peek()
	l.pos++

	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return c
}

func (l *Lexer) match(expected byte) bool {
	if l.peek() != expected {
		return false
	}

	l.advance()

	return true
}

func (l *Lexer) skipSpaceAndComments() error {
	for {
		switch c := l.peek(); {
		case c == ' ' || c == '\r' || c == '\t' || c == '\n':
			l.advance()
		case c == '/' && l.peek2() == '/':
			for l.peek() != '\n' && l.peek() != 0 {
				l.advance()
			}
		case c == '/' && l.peek2() == '*':
			l.advance()
			l.advance()

			for {
				if l.peek() == 0 {
					return newLexError(l.src, l.line, l.col, "Unterminated block comment")
				}

				if l.peek() == '*' && l.peek2() == '/' {
					l.advance()
					l.advance()
					break
				}

				l.advance()
			}
		default:
			return nil
		}
	}
}

func (l *Lexer) next() (Token, error) {
	line, col := l.line, l.col

	c := l.advance()

	switch {
	case isAlpha(c):
		return l.ident(line, col), nil
	case isDigit(c):
		return l.number(line, col), nil
	}

	tok := func(k TokenKind, lexeme string) (Token, error) {
		return Token{Kind: k, Lexeme: lexeme, Line: line, Col: col}, nil
	}

	switch c {
	case '+':
		return tok(Plus, "+")
	case '-':
		return tok(Minus, "-")
	case '*':
		return tok(Star, "*")
	case '/':
		return tok(Slash, "/")
	case '(':
		return tok(LParen, "(")
	case ')':
		return tok(RParen, ")")
	case '{':
		return tok(LBrace, "{")
	case '}':
		return tok(RBrace, "}")
	case ';':
		return tok(Semi, ";")
	case '!':
		if l.match('=') {
			return tok(Neq, "!=")
		}

		return Token{}, newLexError(l.src, line, col, "Unexpected '!' (expected '!=')")
	case '=':
		if l.match('=') {
			return tok(Eq, "==")
		}

		return tok(Assign, "=")
	case '<':
		if l.match('=') {
			return tok(Le, "<=")
		}

		return tok(Lt, "<")
	case '>':
		if l.match('=') {
			return tok(Ge, ">=")
		}

		return tok(Gt, ">")
	}

	return Token{}, newLexError(l.src, line, col, "Unexpected character %q", string(c))
}

// ident scans the rest of an identifier whose first char is already consumed
// and resolves keywords.
func (l *Lexer) ident(line, col int) Token {
	start := l.pos - 1

	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}

	text := l.src[start:l.pos]

	kind := Ident
	if kw, ok := keywords[text]; ok {
		kind = kw
	}

	return Token{Kind: kind, Lexeme: text, Line: line, Col: col}
}

func (l *Lexer) number(line, col int) Token {
	start := l.pos - 1

	for isDigit(l.peek()) {
		l.advance()
	}

	return Token{Kind: Number, Lexeme: l.src[start:l.pos], Line: line, Col: col}
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
