// Package fold collapses compile-time-constant subexpressions and
// constant-condition branches. The rewrite is pure and can never change
// what a finite execution prints.
package fold

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/minilang/mini/compiler/ast"
)

// Fold rewrites the program bottom-up in a single pass.
func Fold(ctx context.Context, p ast.Program) ast.Program {
	out := ast.Program{Body: foldBlock(p.Body)}

	tlog.SpanFromContext(ctx).Printw("folded", "stmts_in", len(p.Body), "stmts_out", len(out.Body))

	return out
}

// foldBlock folds every statement and splices statements of constant-taken
// branches directly into the surrounding block.
func foldBlock(body []ast.Stmt) []ast.Stmt {
	var out []ast.Stmt

	for _, stmt := range body {
		switch s := stmt.(type) {
		case ast.Read:
			out = append(out, s)
		case ast.Print:
			out = append(out, ast.Print{Expr: foldExpr(s.Expr)})
		case ast.Assign:
			out = append(out, ast.Assign{Name: s.Name, Expr: foldExpr(s.Expr)})
		case ast.IfElse:
			cond := foldExpr(s.Cond)
			then := foldBlock(s.Then)
			els := foldBlock(s.Else)

			if n, ok := cond.(ast.Number); ok {
				if n.Value != 0 {
					out = append(out, then...)
				} else {
					out = append(out, els...)
				}

				continue
			}

			out = append(out, ast.IfElse{Cond: cond, Then: then, Else: els})
		case ast.While:
			out = append(out, ast.While{Cond: foldExpr(s.Cond), Body: foldBlock(s.Body)})
		default:
			panic(stmt)
		}
	}

	return out
}

func foldExpr(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case ast.Number, ast.Var:
		return e
	case ast.Unary:
		inner := foldExpr(e.Expr)

		if n, ok := inner.(ast.Number); ok && e.Op == "-" {
			return ast.Number{Value: -n.Value}
		}

		return ast.Unary{Op: e.Op, Expr: inner}
	case ast.Binary:
		left := foldExpr(e.Left)
		right := foldExpr(e.Right)

		l, lok := left.(ast.Number)
		r, rok := right.(ast.Number)

		if lok && rok {
			if v, ok := evalBinary(l.Value, e.Op, r.Value); ok {
				return ast.Number{Value: v}
			}
		}

		return ast.Binary{Left: left, Op: e.Op, Right: right}
	default:
		panic(e)
	}
}

// evalBinary mirrors the VM arithmetic exactly: int64 operations, division
// truncating toward zero. Division by a zero literal is left unfolded so
// the failure still happens at run time.
func evalBinary(a int64, op string, b int64) (int64, bool) {
	switch op {
	case "+":
		return a + b, true
	case "-":
		return a - b, true
	case "*":
		return a * b, true
	case "/":
		if b == 0 {
			return 0, false
		}

		return a / b, true
	case "==":
		return b2i(a == b), true
	case "!=":
		return b2i(a != b), true
	case "<":
		return b2i(a < b), true
	case ">":
		return b2i(a > b), true
	case "<=":
		return b2i(a <= b), true
	case ">=":
		return b2i(a >= b), true
	default:
		panic(op)
	}
}

func b2i(v bool) int64 {
	if v {
		return 1
	}

	return 0
}
