package fold

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minilang/mini/compiler/ast"
)

func TestFoldExprArithmetic(t *testing.T) {
	for _, tc := range []struct {
		op   string
		a, b int64
		want int64
	}{
		{"+", 2, 3, 5},
		{"-", 2, 3, -1},
		{"*", 3, 4, 12},
		{"/", 9, 2, 4},
		{"/", -7, 2, -3}, // truncates toward zero, like the VM
		{"/", 7, -2, -3},
		{"==", 2, 2, 1},
		{"==", 2, 3, 0},
		{"!=", 2, 3, 1},
		{"<", 2, 3, 1},
		{">", 2, 3, 0},
		{"<=", 3, 3, 1},
		{">=", 2, 3, 0},
	} {
		got := foldExpr(ast.Binary{Left: ast.Number{Value: tc.a}, Op: tc.op, Right: ast.Number{Value: tc.b}})

		assert.Equal(t, ast.Number{Value: tc.want}, got, "%d %v %d", tc.a, tc.op, tc.b)
	}
}

func TestFoldNested(t *testing.T) {
	// 2 + 3 * 4
	e := ast.Binary{
		Left: ast.Number{Value: 2},
		Op:   "+",
		Right: ast.Binary{
			Left:  ast.Number{Value: 3},
			Op:    "*",
			Right: ast.Number{Value: 4},
		},
	}

	assert.Equal(t, ast.Number{Value: 14}, foldExpr(e))
}

func TestFoldUnary(t *testing.T) {
	e := ast.Unary{Op: "-", Expr: ast.Unary{Op: "-", Expr: ast.Number{Value: 5}}}

	assert.Equal(t, ast.Number{Value: 5}, foldExpr(e))
}

func TestFoldKeepsVariables(t *testing.T) {
	e := ast.Binary{Left: ast.Var{Name: "x"}, Op: "+", Right: ast.Binary{Left: ast.Number{Value: 1}, Op: "+", Right: ast.Number{Value: 2}}}

	got := foldExpr(e).(ast.Binary)

	assert.Equal(t, ast.Var{Name: "x"}, got.Left)
	assert.Equal(t, ast.Number{Value: 3}, got.Right)
}

func TestFoldDivisionByZeroLiteralStays(t *testing.T) {
	e := ast.Binary{Left: ast.Number{Value: 1}, Op: "/", Right: ast.Number{Value: 0}}

	// left for the VM to fail at run time
	assert.Equal(t, e, foldExpr(e))
}

func TestFoldDeadBranch(t *testing.T) {
	ctx := context.Background()

	p := ast.Program{Body: []ast.Stmt{
		ast.IfElse{
			Cond: ast.Binary{Left: ast.Number{Value: 1}, Op: "<", Right: ast.Number{Value: 2}},
			Then: []ast.Stmt{ast.Assign{Name: "x", Expr: ast.Number{Value: 1}}},
			Else: []ast.Stmt{ast.Assign{Name: "x", Expr: ast.Number{Value: 2}}},
		},
		ast.Print{Expr: ast.Var{Name: "x"}},
	}}

	got := Fold(ctx, p)
	require.Len(t, got.Body, 2)

	// then-branch spliced in place of the if
	assert.Equal(t, ast.Assign{Name: "x", Expr: ast.Number{Value: 1}}, got.Body[0])
	assert.Equal(t, ast.Print{Expr: ast.Var{Name: "x"}}, got.Body[1])
}

func TestFoldDeadBranchFalse(t *testing.T) {
	ctx := context.Background()

	p := ast.Program{Body: []ast.Stmt{
		ast.IfElse{
			Cond: ast.Number{Value: 0},
			Then: []ast.Stmt{ast.Assign{Name: "x", Expr: ast.Number{Value: 1}}},
			Else: []ast.Stmt{ast.Assign{Name: "x", Expr: ast.Number{Value: 2}}},
		},
	}}

	got := Fold(ctx, p)
	require.Len(t, got.Body, 1)
	assert.Equal(t, ast.Assign{Name: "x", Expr: ast.Number{Value: 2}}, got.Body[0])
}

func TestFoldNestedDeadBranch(t *testing.T) {
	ctx := context.Background()

	p := ast.Program{Body: []ast.Stmt{
		ast.While{
			Cond: ast.Var{Name: "i"},
			Body: []ast.Stmt{
				ast.IfElse{
					Cond: ast.Number{Value: 1},
					Then: []ast.Stmt{ast.Print{Expr: ast.Var{Name: "i"}}},
					Else: nil,
				},
			},
		},
	}}

	got := Fold(ctx, p)

	loop := got.Body[0].(ast.While)
	require.Len(t, loop.Body, 1)
	assert.Equal(t, ast.Print{Expr: ast.Var{Name: "i"}}, loop.Body[0])
}

func TestFoldKeepsConditionalIf(t *testing.T) {
	ctx := context.Background()

	p := ast.Program{Body: []ast.Stmt{
		ast.IfElse{
			Cond: ast.Var{Name: "c"},
			Then: []ast.Stmt{ast.Print{Expr: ast.Binary{Left: ast.Number{Value: 1}, Op: "+", Right: ast.Number{Value: 1}}}},
			Else: []ast.Stmt{ast.Print{Expr: ast.Number{Value: 0}}},
		},
	}}

	got := Fold(ctx, p)

	ife := got.Body[0].(ast.IfElse)
	assert.Equal(t, ast.Print{Expr: ast.Number{Value: 2}}, ife.Then[0])
}

func TestFoldWhileKeepsLoop(t *testing.T) {
	ctx := context.Background()

	p := ast.Program{Body: []ast.Stmt{
		ast.While{
			Cond: ast.Number{Value: 0},
			Body: []ast.Stmt{ast.Print{Expr: ast.Number{Value: 1}}},
		},
	}}

	got := Fold(ctx, p)

	// folding selects no while branch, the loop structure survives
	require.IsType(t, ast.While{}, got.Body[0])
}
