package compiler

import (
	"context"
	"fmt"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/minilang/mini/compiler/analyze"
	"github.com/minilang/mini/compiler/asm"
	"github.com/minilang/mini/compiler/ast"
	"github.com/minilang/mini/compiler/back"
	"github.com/minilang/mini/compiler/fold"
	"github.com/minilang/mini/compiler/front"
	"github.com/minilang/mini/compiler/ir"
	"github.com/minilang/mini/compiler/vm"
)

type (
	// Result exposes every stage's output for inspection. It is only
	// returned fully formed: a failing stage leaves nothing half-built.
	Result struct {
		Tokens   []front.Token
		AST      ast.Program
		Warnings []string
		Symbols  analyze.Table
		IR       []ir.Instr
		Asm      []string
		Machine  *asm.Program
	}
)

func CompileFile(ctx context.Context, name string, optimize bool) (*Result, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, string(text), optimize)
}

// Compile runs the full pipeline: lex, parse, optionally fold constants,
// analyze, generate IR, generate assembly, assemble and link.
func Compile(ctx context.Context, source string, optimize bool) (res *Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "optimize", optimize)
	defer tr.Finish("err", &err)

	tokens, err := front.Tokenize(ctx, source)
	if err != nil {
		return nil, errors.Wrap(err, "lex")
	}

	prog, err := front.Parse(ctx, tokens, source)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}

	if optimize {
		prog = fold.Fold(ctx, prog)
	}

	sem, err := analyze.Analyze(ctx, prog)
	if err != nil {
		return nil, errors.Wrap(err, "analyze")
	}

	code, err := ir.Generate(ctx, prog)
	if err != nil {
		return nil, errors.Wrap(err, "generate ir")
	}

	lines, _, consts, err := back.Generate(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "generate assembly")
	}

	a := asm.New()

	instrs, labels, syms, err := a.Assemble(lines)
	if err != nil {
		return nil, errors.Wrap(err, "assemble")
	}

	constValues := make(map[string]int64, len(consts))
	for v := range consts {
		constValues[fmt.Sprintf("const_%d", v)] = v
	}

	mprog, err := a.Link(instrs, labels, syms, constValues)
	if err != nil {
		return nil, errors.Wrap(err, "link")
	}

	return &Result{
		Tokens:   tokens,
		AST:      prog,
		Warnings: sem.Warnings,
		Symbols:  sem.Table,
		IR:       code,
		Asm:      lines,
		Machine:  mprog,
	}, nil
}

// Execute runs a linked program on the VM. Input values are pulled from
// source as IN instructions execute.
func Execute(ctx context.Context, p *asm.Program, source vm.InputSource, trace bool) (res vm.Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "execute", "trace", trace)
	defer tr.Finish("err", &err)

	m := vm.New(p, source, trace)

	return m.Run(ctx)
}
