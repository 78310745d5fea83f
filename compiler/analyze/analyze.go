// Package analyze runs the flow-sensitive definite-initialization check.
// Uninitialized use is reported as a warning, never as an error; the only
// hard failures are internal invariant violations.
package analyze

import (
	"context"
	"fmt"
	"reflect"

	"tlog.app/go/tlog"

	"github.com/minilang/mini/compiler/ast"
)

type (
	Symbol struct {
		Name        string
		Initialized bool
	}

	// Table holds every variable the program mentions. Entries are never
	// removed. Initialized reflects the state at the end of the program.
	Table map[string]*Symbol

	Result struct {
		Table    Table
		Warnings []string
	}

	Analyzer struct {
		table    Table
		warnings []string
	}

	// initSet is the set of definitely-initialized names at a program point.
	initSet map[string]struct{}

	UnsupportedNodeError struct {
		Node any
	}
)

func New() *Analyzer {
	return &Analyzer{
		table: make(Table),
	}
}

func Analyze(ctx context.Context, p ast.Program) (Result, error) {
	a := New()

	init, err := a.block(p.Body, make(initSet))
	if err != nil {
		return Result{}, err
	}

	for name := range init {
		a.declare(name).Initialized = true
	}

	tlog.SpanFromContext(ctx).Printw("analyzed", "symbols", len(a.table), "warnings", len(a.warnings))

	return Result{Table: a.table, Warnings: a.warnings}, nil
}

func (a *Analyzer) declare(name string) *Symbol {
	s, ok := a.table[name]
	if !ok {
		s = &Symbol{Name: name}
		a.table[name] = s
	}

	return s
}

func (a *Analyzer) warnf(format string, args ...any) {
	a.warnings = append(a.warnings, fmt.Sprintf(format, args...))
}

func (a *Analyzer) block(body []ast.Stmt, init initSet) (initSet, error) {
	current := init.clone()

	for _, stmt := range body {
		var err error

		current, err = a.stmt(stmt, current)
		if err != nil {
			return nil, err
		}
	}

	return current, nil
}

func (a *Analyzer) stmt(stmt ast.Stmt, init initSet) (initSet, error) {
	switch s := stmt.(type) {
	case ast.Read:
		a.declare(s.Name)
		init[s.Name] = struct{}{}

		return init, nil
	case ast.Print:
		err := a.expr(s.Expr, init)

		return init, err
	case ast.Assign:
		err := a.expr(s.Expr, init)
		if err != nil {
			return nil, err
		}

		a.declare(s.Name)
		init[s.Name] = struct{}{}

		return init, nil
	case ast.IfElse:
		err := a.expr(s.Cond, init)
		if err != nil {
			return nil, err
		}

		thenOut, err := a.block(s.Then, init)
		if err != nil {
			return nil, err
		}

		elseOut, err := a.block(s.Else, init)
		if err != nil {
			return nil, err
		}

		// only variables initialized on both paths are guaranteed after
		return thenOut.intersect(elseOut), nil
	case ast.While:
		err := a.expr(s.Cond, init)
		if err != nil {
			return nil, err
		}

		// the body may run zero times, so nothing it initializes
		// propagates past the loop
		_, err = a.block(s.Body, init)
		if err != nil {
			return nil, err
		}

		return init, nil
	default:
		return nil, NewUnsupportedNode(stmt)
	}
}

func (a *Analyzer) expr(e ast.Expr, init initSet) error {
	switch e := e.(type) {
	case ast.Number:
		return nil
	case ast.Var:
		a.declare(e.Name)

		if _, ok := init[e.Name]; !ok {
			a.warnf("variable '%s' may be used before initialization", e.Name)
		}

		return nil
	case ast.Unary:
		if e.Op != "-" {
			return NewUnsupportedNode(e)
		}

		return a.expr(e.Expr, init)
	case ast.Binary:
		switch e.Op {
		case "+", "-", "*", "/", "==", "!=", "<", ">", "<=", ">=":
		default:
			return NewUnsupportedNode(e)
		}

		err := a.expr(e.Left, init)
		if err != nil {
			return err
		}

		return a.expr(e.Right, init)
	default:
		return NewUnsupportedNode(e)
	}
}

func (s initSet) clone() initSet {
	c := make(initSet, len(s))

	for name := range s {
		c[name] = struct{}{}
	}

	return c
}

func (s initSet) intersect(t initSet) initSet {
	r := make(initSet)

	for name := range s {
		if _, ok := t[name]; ok {
			r[name] = struct{}{}
		}
	}

	return r
}

func NewUnsupportedNode(x any) UnsupportedNodeError {
	return UnsupportedNodeError{Node: x}
}

func (e UnsupportedNodeError) Error() string {
	return fmt.Sprintf("unsupported node: %v", reflect.TypeOf(e.Node))
}
