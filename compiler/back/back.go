// Package back translates three-address code into assembly text for the
// accumulator machine. The machine has a single live register, so every
// operation routes through LOAD/STORE of memory.
package back

import (
	"context"
	"fmt"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/minilang/mini/compiler/ir"
)

// Generator collects assembly lines plus the symbols and integer constants
// the linker must allocate memory for.
type Generator struct {
	lines  []string
	syms   map[string]struct{}
	consts map[int64]struct{}

	buf []byte
}

func NewGenerator() *Generator {
	return &Generator{
		syms:   make(map[string]struct{}),
		consts: make(map[int64]struct{}),
	}
}

// Generate returns the assembly lines, the set of referenced symbols and
// the set of referenced integer constants.
func Generate(ctx context.Context, code []ir.Instr) (lines []string, syms map[string]struct{}, consts map[int64]struct{}, err error) {
	g := NewGenerator()

	for _, ins := range code {
		err = g.instr(ins)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "%v", ins)
		}
	}

	tlog.SpanFromContext(ctx).Printw("asm generated", "lines", len(g.lines), "syms", len(g.syms), "consts", len(g.consts))

	return g.lines, g.syms, g.consts, nil
}

func (g *Generator) emitf(format string, args ...any) {
	g.buf = hfmt.Appendf(g.buf[:0], format, args...)
	g.lines = append(g.lines, string(g.buf))
}

// sym resolves an operand to a memory symbol. Literals become synthetic
// const_<v> symbols so the linker allocates them like variables.
func (g *Generator) sym(o ir.Operand) (string, error) {
	switch o.Kind {
	case ir.Sym:
		g.syms[o.Name] = struct{}{}

		return o.Name, nil
	case ir.Lit:
		return g.constSym(o.Val), nil
	default:
		return "", errors.New("value operand expected, got %v", o)
	}
}

func (g *Generator) constSym(v int64) string {
	g.consts[v] = struct{}{}

	return fmt.Sprintf("const_%d", v)
}

// res registers the instruction result as a symbol.
func (g *Generator) res(name string) string {
	g.syms[name] = struct{}{}

	return name
}

func (g *Generator) instr(ins ir.Instr) error {
	switch ins.Op {
	case ir.Assign:
		src, err := g.sym(ins.A1)
		if err != nil {
			return err
		}

		g.emitf("LOAD %v", src)
		g.emitf("STORE %v", g.res(ins.Res))
	case ir.UMinus:
		val, err := g.sym(ins.A1)
		if err != nil {
			return err
		}

		g.emitf("LOAD %v", g.constSym(0))
		g.emitf("SUB %v", val)
		g.emitf("STORE %v", g.res(ins.Res))
	case ir.Add, ir.Sub, ir.Mul, ir.Div:
		return g.arith(ins)
	case ir.Eq, ir.Neq, ir.Lt, ir.Gt, ir.Le, ir.Ge:
		return g.relational(ins)
	case ir.IfNZ:
		cond, err := g.sym(ins.A1)
		if err != nil {
			return err
		}

		g.emitf("LOAD %v", cond)
		g.emitf("JNE %v", ins.A2.Name)
	case ir.Goto:
		g.emitf("JMP %v", ins.A1.Name)
	case ir.Lab:
		g.emitf("LABEL %v", ins.A1.Name)

		if ins.A1.Name == "END" {
			g.emitf("HALT")
		}
	case ir.Read:
		v, err := g.sym(ins.A1)
		if err != nil {
			return err
		}

		g.emitf("IN %v", v)
	case ir.Print:
		v, err := g.sym(ins.A1)
		if err != nil {
			return err
		}

		g.emitf("OUT %v", v)
	default:
		return errors.New("unsupported IR op: %v", ins.Op)
	}

	return nil
}

func (g *Generator) arith(ins ir.Instr) error {
	l, err := g.sym(ins.A1)
	if err != nil {
		return err
	}

	r, err := g.sym(ins.A2)
	if err != nil {
		return err
	}

	g.emitf("LOAD %v", l)

	switch ins.Op {
	case ir.Add:
		g.emitf("ADD %v", r)
	case ir.Sub:
		g.emitf("SUB %v", r)
	case ir.Mul:
		g.emitf("MUL %v", r)
	case ir.Div:
		g.emitf("DIV %v", r)
	}

	g.emitf("STORE %v", g.res(ins.Res))

	return nil
}

// relational computes left-right in the accumulator and branches on its
// sign. The fallthrough path stores 0, the true label stores 1. Label names
// derive from the destination temporary so they stay unique per instruction.
func (g *Generator) relational(ins ir.Instr) error {
	l, err := g.sym(ins.A1)
	if err != nil {
		return err
	}

	r, err := g.sym(ins.A2)
	if err != nil {
		return err
	}

	dst := g.res(ins.Res)
	lTrue := "LBL_TRUE_" + dst
	lEnd := "LBL_END_" + dst

	g.emitf("LOAD %v", l)
	g.emitf("SUB %v", r)

	switch ins.Op {
	case ir.Eq:
		g.emitf("JEQ %v", lTrue)
	case ir.Neq:
		g.emitf("JNE %v", lTrue)
	case ir.Lt:
		g.emitf("JLT %v", lTrue)
	case ir.Gt:
		g.emitf("JGT %v", lTrue)
	case ir.Le:
		g.emitf("JLE %v", lTrue)
	case ir.Ge:
		g.emitf("JGE %v", lTrue)
	}

	g.emitf("LOAD %v", g.constSym(0))
	g.emitf("STORE %v", dst)
	g.emitf("JMP %v", lEnd)
	g.emitf("LABEL %v", lTrue)
	g.emitf("LOAD %v", g.constSym(1))
	g.emitf("STORE %v", dst)
	g.emitf("LABEL %v", lEnd)

	return nil
}
