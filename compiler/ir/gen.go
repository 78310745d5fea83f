package ir

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/minilang/mini/compiler/ast"
)

// Generator owns the temporary and label counters for one generation run,
// so concurrent compilations cannot interfere.
type Generator struct {
	temp  int
	label int

	out []Instr
}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate lowers the program to a flat instruction sequence ending with
// `label END`.
func Generate(ctx context.Context, p ast.Program) ([]Instr, error) {
	g := NewGenerator()

	for _, stmt := range p.Body {
		err := g.stmt(stmt)
		if err != nil {
			return nil, err
		}
	}

	g.emit(Instr{Op: Lab, A1: LabelRef("END")})

	tlog.SpanFromContext(ctx).Printw("ir generated", "instrs", len(g.out), "temps", g.temp, "labels", g.label)

	return g.out, nil
}

func (g *Generator) newTemp() string {
	g.temp++
	return fmt.Sprintf("t%d", g.temp)
}

func (g *Generator) newLabel() string {
	g.label++
	return fmt.Sprintf("L%d", g.label)
}

func (g *Generator) emit(i Instr) {
	g.out = append(g.out, i)
}

func (g *Generator) stmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case ast.Read:
		g.emit(Instr{Op: Read, A1: Symbol(s.Name)})

		return nil
	case ast.Print:
		val, err := g.expr(s.Expr)
		if err != nil {
			return err
		}

		g.emit(Instr{Op: Print, A1: val})

		return nil
	case ast.Assign:
		val, err := g.expr(s.Expr)
		if err != nil {
			return err
		}

		g.emit(Instr{Op: Assign, A1: val, Res: s.Name})

		return nil
	case ast.IfElse:
		cond, err := g.expr(s.Cond)
		if err != nil {
			return err
		}

		lTrue := g.newLabel()
		lEnd := g.newLabel()

		// then is reached only by the explicit jump, else falls through
		g.emit(Instr{Op: IfNZ, A1: cond, A2: LabelRef(lTrue)})

		err = g.stmts(s.Else)
		if err != nil {
			return err
		}

		g.emit(Instr{Op: Goto, A1: LabelRef(lEnd)})
		g.emit(Instr{Op: Lab, A1: LabelRef(lTrue)})

		err = g.stmts(s.Then)
		if err != nil {
			return err
		}

		g.emit(Instr{Op: Lab, A1: LabelRef(lEnd)})

		return nil
	case ast.While:
		lStart := g.newLabel()
		lBody := g.newLabel()
		lEnd := g.newLabel()

		g.emit(Instr{Op: Lab, A1: LabelRef(lStart)})

		cond, err := g.expr(s.Cond)
		if err != nil {
			return err
		}

		g.emit(Instr{Op: IfNZ, A1: cond, A2: LabelRef(lBody)})
		g.emit(Instr{Op: Goto, A1: LabelRef(lEnd)})
		g.emit(Instr{Op: Lab, A1: LabelRef(lBody)})

		err = g.stmts(s.Body)
		if err != nil {
			return err
		}

		g.emit(Instr{Op: Goto, A1: LabelRef(lStart)})
		g.emit(Instr{Op: Lab, A1: LabelRef(lEnd)})

		return nil
	default:
		return errors.New("unsupported statement: %T", stmt)
	}
}

func (g *Generator) stmts(body []ast.Stmt) error {
	for _, s := range body {
		err := g.stmt(s)
		if err != nil {
			return err
		}
	}

	return nil
}

// expr emits code evaluating e and returns the symbol holding the result.
// Literals are always materialized into a fresh temporary; later stages
// never see a literal where a value symbol is expected.
func (g *Generator) expr(e ast.Expr) (Operand, error) {
	switch e := e.(type) {
	case ast.Number:
		t := g.newTemp()
		g.emit(Instr{Op: Assign, A1: Literal(e.Value), Res: t})

		return Symbol(t), nil
	case ast.Var:
		return Symbol(e.Name), nil
	case ast.Unary:
		val, err := g.expr(e.Expr)
		if err != nil {
			return Operand{}, err
		}

		if e.Op != "-" {
			return Operand{}, errors.New("unsupported unary operator %q", e.Op)
		}

		t := g.newTemp()
		g.emit(Instr{Op: UMinus, A1: val, Res: t})

		return Symbol(t), nil
	case ast.Binary:
		left, err := g.expr(e.Left)
		if err != nil {
			return Operand{}, err
		}

		right, err := g.expr(e.Right)
		if err != nil {
			return Operand{}, err
		}

		t := g.newTemp()
		g.emit(Instr{Op: Op(e.Op), A1: left, A2: right, Res: t})

		return Symbol(t), nil
	default:
		return Operand{}, errors.New("unsupported expression: %T", e)
	}
}
