package front

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minilang/mini/compiler/ast"
)

func parse(t *testing.T, src string) (ast.Program, error) {
	t.Helper()

	ctx := context.Background()

	tokens, err := Tokenize(ctx, src)
	require.NoError(t, err)

	return Parse(ctx, tokens, src)
}

func TestParsePrecedence(t *testing.T) {
	prog, err := parse(t, "a = 2 + 3 * 4; end")
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)

	assign := prog.Body[0].(ast.Assign)

	// multiplication binds tighter: 2 + (3 * 4)
	sum := assign.Expr.(ast.Binary)
	assert.Equal(t, "+", sum.Op)
	assert.Equal(t, ast.Number{Value: 2}, sum.Left)

	mul := sum.Right.(ast.Binary)
	assert.Equal(t, "*", mul.Op)
	assert.Equal(t, ast.Number{Value: 3}, mul.Left)
	assert.Equal(t, ast.Number{Value: 4}, mul.Right)
}

func TestParseRelationalPrecedence(t *testing.T) {
	prog, err := parse(t, "x = a + b < c == d; end")
	require.NoError(t, err)

	// ((a + b) < c) == d
	eq := prog.Body[0].(ast.Assign).Expr.(ast.Binary)
	assert.Equal(t, "==", eq.Op)

	lt := eq.Left.(ast.Binary)
	assert.Equal(t, "<", lt.Op)

	sum := lt.Left.(ast.Binary)
	assert.Equal(t, "+", sum.Op)
}

func TestParseLeftAssociativity(t *testing.T) {
	prog, err := parse(t, "x = 1 - 2 - 3; end")
	require.NoError(t, err)

	// (1 - 2) - 3
	outer := prog.Body[0].(ast.Assign).Expr.(ast.Binary)
	assert.Equal(t, ast.Number{Value: 3}, outer.Right)

	inner := outer.Left.(ast.Binary)
	assert.Equal(t, ast.Number{Value: 1}, inner.Left)
	assert.Equal(t, ast.Number{Value: 2}, inner.Right)
}

func TestParseParens(t *testing.T) {
	prog, err := parse(t, "x = (1 + 2) * 3; end")
	require.NoError(t, err)

	mul := prog.Body[0].(ast.Assign).Expr.(ast.Binary)
	assert.Equal(t, "*", mul.Op)

	sum := mul.Left.(ast.Binary)
	assert.Equal(t, "+", sum.Op)
}

func TestParseStackedNegation(t *testing.T) {
	prog, err := parse(t, "x = --5; end")
	require.NoError(t, err)

	outer := prog.Body[0].(ast.Assign).Expr.(ast.Unary)
	inner := outer.Expr.(ast.Unary)

	assert.Equal(t, ast.Number{Value: 5}, inner.Expr)
}

func TestParseStatements(t *testing.T) {
	prog, err := parse(t, "read a; print a + 1; if a { b = 1; } else { b = 2; } while b { b = b - 1; } end")
	require.NoError(t, err)
	require.Len(t, prog.Body, 4)

	assert.IsType(t, ast.Read{}, prog.Body[0])
	assert.IsType(t, ast.Print{}, prog.Body[1])
	assert.IsType(t, ast.IfElse{}, prog.Body[2])
	assert.IsType(t, ast.While{}, prog.Body[3])

	ife := prog.Body[2].(ast.IfElse)
	require.Len(t, ife.Then, 1)
	require.Len(t, ife.Else, 1)
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
	}{
		{"missing semi", "a = 1 end"},
		{"missing end", "a = 1;"},
		{"tokens after end", "a = 1; end b = 2;"},
		{"if without else", "if a { b = 1; } end"},
		{"missing brace", "if a b = 1; } else { } end"},
		{"missing rparen", "a = (1 + 2; end"},
		{"statement expected", "+ 1; end"},
		{"expression expected", "a = ; end"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse(t, tc.src)

			var perr ParseError
			require.ErrorAs(t, err, &perr, "src: %q", tc.src)

			t.Logf("error: %v", err)
		})
	}
}

func TestParseErrorReportsFound(t *testing.T) {
	_, err := parse(t, "read 1; end")

	var perr ParseError
	require.ErrorAs(t, err, &perr)

	assert.Equal(t, Number, perr.Found.Kind)
	assert.Contains(t, perr.Msg, "identifier")
}
