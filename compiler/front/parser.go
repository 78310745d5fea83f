package front

import (
	"context"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/minilang/mini/compiler/ast"
)

// Parser is a recursive-descent parser with one token of lookahead
// and no backtracking.
type Parser struct {
	tokens []Token
	pos    int
	src    string
}

func NewParser(tokens []Token, src string) *Parser {
	return &Parser{
		tokens: tokens,
		src:    src,
	}
}

// Parse consumes the whole token stream: statements up to the terminal
// 'end' keyword, followed by EOF. Anything after 'end' is an error.
func Parse(ctx context.Context, tokens []Token, src string) (ast.Program, error) {
	p := NewParser(tokens, src)

	prog, err := p.parseProgram()
	if err != nil {
		return ast.Program{}, err
	}

	tlog.SpanFromContext(ctx).Printw("parsed", "stmts", len(prog.Body))

	return prog, nil
}

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.peek()

	if p.pos < len(p.tokens)-1 {
		p.pos++
	}

	return tok
}

func (p *Parser) match(kinds ...TokenKind) bool {
	for _, k := range kinds {
		if p.peek().Kind == k {
			p.advance()
			return true
		}
	}

	return false
}

// prev is the token just consumed by match.
func (p *Parser) prev() Token {
	return p.tokens[p.pos-1]
}

func (p *Parser) consume(k TokenKind, msg string) (Token, error) {
	if p.peek().Kind == k {
		return p.advance(), nil
	}

	tok := p.peek()

	return Token{}, newParseError(p.src, tok, "%v at %d:%d", msg, tok.Line, tok.Col)
}

func (p *Parser) parseProgram() (ast.Program, error) {
	var body []ast.Stmt

	for p.peek().Kind != KwEnd {
		if p.peek().Kind == EOF {
			tok := p.peek()
			return ast.Program{}, newParseError(p.src, tok, "Expected 'end' before EOF at %d:%d", tok.Line, tok.Col)
		}

		stmt, err := p.statement()
		if err != nil {
			return ast.Program{}, err
		}

		body = append(body, stmt)
	}

	_, err := p.consume(KwEnd, "Expected 'end' to terminate program")
	if err != nil {
		return ast.Program{}, err
	}

	_, err = p.consume(EOF, "Expected no tokens after 'end'")
	if err != nil {
		return ast.Program{}, err
	}

	return ast.Program{Body: body}, nil
}

func (p *Parser) statement() (ast.Stmt, error) {
	tok := p.peek()

	switch tok.Kind {
	case KwRead:
		p.advance()

		name, err := p.consume(Ident, "Expected identifier after 'read'")
		if err != nil {
			return nil, err
		}

		_, err = p.consume(Semi, "Expected ';' after read statement")
		if err != nil {
			return nil, err
		}

		return ast.Read{Name: name.Lexeme}, nil

	case KwPrint:
		p.advance()

		expr, err := p.expression()
		if err != nil {
			return nil, err
		}

		_, err = p.consume(Semi, "Expected ';' after print expression")
		if err != nil {
			return nil, err
		}

		return ast.Print{Expr: expr}, nil

	case KwIf:
		p.advance()

		cond, err := p.expression()
		if err != nil {
			return nil, err
		}

		then, err := p.block("if")
		if err != nil {
			return nil, err
		}

		_, err = p.consume(KwElse, "Expected 'else' after if-block")
		if err != nil {
			return nil, err
		}

		els, err := p.block("else")
		if err != nil {
			return nil, err
		}

		return ast.IfElse{Cond: cond, Then: then, Else: els}, nil

	case KwWhile:
		p.advance()

		cond, err := p.expression()
		if err != nil {
			return nil, err
		}

		body, err := p.block("while")
		if err != nil {
			return nil, err
		}

		return ast.While{Cond: cond, Body: body}, nil

	case Ident:
		name := p.advance().Lexeme

		_, err := p.consume(Assign, "Expected '=' after identifier in assignment")
		if err != nil {
			return nil, err
		}

		expr, err := p.expression()
		if err != nil {
			return nil, err
		}

		_, err = p.consume(Semi, "Expected ';' after assignment")
		if err != nil {
			return nil, err
		}

		return ast.Assign{Name: name, Expr: expr}, nil
	}

	return nil, newParseError(p.src, tok, "Unexpected token at %d:%d", tok.Line, tok.Col)
}

// block parses '{' stmt* '}'.
func (p *Parser) block(kw string) ([]ast.Stmt, error) {
	_, err := p.consume(LBrace, "Expected '{' to start "+kw+"-block")
	if err != nil {
		return nil, err
	}

	var body []ast.Stmt

	for p.peek().Kind != RBrace {
		if p.peek().Kind == EOF {
			break
		}

		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}

		body = append(body, stmt)
	}

	_, err = p.consume(RBrace, "Expected '}' to end "+kw+"-block")
	if err != nil {
		return nil, err
	}

	return body, nil
}

func (p *Parser) expression() (ast.Expr, error) {
	return p.equality()
}

// equality := comparison (('==' | '!=') comparison)*
func (p *Parser) equality() (ast.Expr, error) {
	expr, err := p.comparison()
	if err != nil {
		return nil, err
	}

	for p.match(Eq, Neq) {
		op := p.prev().Lexeme

		right, err := p.comparison()
		if err != nil {
			return nil, err
		}

		expr = ast.Binary{Left: expr, Op: op, Right: right}
	}

	return expr, nil
}

// comparison := term (('<' | '>' | '<=' | '>=') term)*
func (p *Parser) comparison() (ast.Expr, error) {
	expr, err := p.term()
	if err != nil {
		return nil, err
	}

	for p.match(Lt, Gt, Le, Ge) {
		op := p.prev().Lexeme

		right, err := p.term()
		if err != nil {
			return nil, err
		}

		expr = ast.Binary{Left: expr, Op: op, Right: right}
	}

	return expr, nil
}

// term := factor (('+' | '-') factor)*
func (p *Parser) term() (ast.Expr, error) {
	expr, err := p.factor()
	if err != nil {
		return nil, err
	}

	for p.match(Plus, Minus) {
		op := p.prev().Lexeme

		right, err := p.factor()
		if err != nil {
			return nil, err
		}

		expr = ast.Binary{Left: expr, Op: op, Right: right}
	}

	return expr, nil
}

// factor := unary (('*' | '/') unary)*
func (p *Parser) factor() (ast.Expr, error) {
	expr, err := p.unary()
	if err != nil {
		return nil, err
	}

	for p.match(Star, Slash) {
		op := p.prev().Lexeme

		right, err := p.unary()
		if err != nil {
			return nil, err
		}

		expr = ast.Binary{Left: expr, Op: op, Right: right}
	}

	return expr, nil
}

// unary := '-' unary | primary
//
// Right-recursive so negation stacks: --x.
func (p *Parser) unary() (ast.Expr, error) {
	if p.match(Minus) {
		op := p.prev().Lexeme

		right, err := p.unary()
		if err != nil {
			return nil, err
		}

		return ast.Unary{Op: op, Expr: right}, nil
	}

	return p.primary()
}

// primary := NUMBER | IDENT | '(' expr ')'
func (p *Parser) primary() (ast.Expr, error) {
	tok := p.peek()

	switch {
	case p.match(Number):
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "parse number literal")
		}

		return ast.Number{Value: v}, nil

	case p.match(Ident):
		return ast.Var{Name: tok.Lexeme}, nil

	case p.match(LParen):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}

		_, err = p.consume(RParen, "Expected ')' after expression")
		if err != nil {
			return nil, err
		}

		return expr, nil
	}

	return nil, newParseError(p.src, tok, "Expected expression at %d:%d", tok.Line, tok.Col)
}
