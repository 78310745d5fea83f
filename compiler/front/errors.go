package front

import (
	"fmt"
	"strings"
)

type (
	// LexError is fatal. Msg says what went wrong, Snippet points at where.
	LexError struct {
		Msg     string
		Line    int
		Col     int
		Snippet string
	}

	// ParseError reports an expected-vs-found mismatch.
	ParseError struct {
		Msg     string
		Found   Token
		Snippet string
	}
)

func newLexError(src string, line, col int, format string, args ...any) LexError {
	return LexError{
		Msg:     fmt.Sprintf(format, args...),
		Line:    line,
		Col:     col,
		Snippet: snippet(src, line, col),
	}
}

func (e LexError) Error() string {
	return fmt.Sprintf("%v\n%v", e.Msg, e.Snippet)
}

func newParseError(src string, found Token, format string, args ...any) ParseError {
	return ParseError{
		Msg:     fmt.Sprintf(format, args...),
		Found:   found,
		Snippet: snippet(src, found.Line, found.Col),
	}
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%v, found %v %q\n%v", e.Msg, e.Found.Kind, e.Found.Lexeme, e.Snippet)
}

// snippet renders the offending source line with a caret under the column.
func snippet(src string, line, col int) string {
	lines := strings.Split(src, "\n")
	if line-1 < 0 || line-1 >= len(lines) {
		return fmt.Sprintf("Line %d, Col %d", line, col)
	}

	text := strings.TrimRight(lines[line-1], "\r")

	if col < 1 {
		col = 1
	}

	caret := strings.Repeat(" ", col-1) + "^"

	return fmt.Sprintf("Line %d, Col %d:\n%s\n%s", line, col, text, caret)
}
