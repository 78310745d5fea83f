package front

import "fmt"

type (
	TokenKind int

	// Token is produced by the lexer and never mutated after that.
	// Line and Col are 1-based.
	Token struct {
		Kind   TokenKind
		Lexeme string
		Line   int
		Col    int
	}
)

const (
	EOF TokenKind = iota

	// single char
	Plus
	Minus
	Star
	Slash
	LParen
	RParen
	LBrace
	RBrace
	Semi
	Assign

	// one or two chars
	Lt
	Gt
	Le
	Ge
	Eq
	Neq

	// literals
	Ident
	Number

	// keywords
	KwRead
	KwPrint
	KwIf
	KwElse
	KwWhile
	KwEnd
)

var keywords = map[string]TokenKind{
	"read":  KwRead,
	"print": KwPrint,
	"if":    KwIf,
	"else":  KwElse,
	"while": KwWhile,
	"end":   KwEnd,
}

var kindNames = map[TokenKind]string{
	EOF:     "EOF",
	Plus:    "PLUS",
	Minus:   "MINUS",
	Star:    "STAR",
	Slash:   "SLASH",
	LParen:  "LPAREN",
	RParen:  "RPAREN",
	LBrace:  "LBRACE",
	RBrace:  "RBRACE",
	Semi:    "SEMI",
	Assign:  "ASSIGN",
	Lt:      "LT",
	Gt:      "GT",
	Le:      "LE",
	Ge:      "GE",
	Eq:      "EQ",
	Neq:     "NEQ",
	Ident:   "IDENT",
	Number:  "NUMBER",
	KwRead:  "READ",
	KwPrint: "PRINT",
	KwIf:    "IF",
	KwElse:  "ELSE",
	KwWhile: "WHILE",
	KwEnd:   "END",
}

func (k TokenKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("TokenKind(%d)", int(k))
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%v, %q, %d:%d)", t.Kind, t.Lexeme, t.Line, t.Col)
}
