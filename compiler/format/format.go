// Package format renders compilation artifacts as text: tokens, the AST as
// MiniLang source, IR listings, assembly, and linked machine programs.
package format

import (
	"sort"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/minilang/mini/compiler/asm"
	"github.com/minilang/mini/compiler/ast"
	"github.com/minilang/mini/compiler/front"
	"github.com/minilang/mini/compiler/ir"
)

func Tokens(b []byte, tokens []front.Token) []byte {
	for _, tok := range tokens {
		b = hfmt.Appendf(b, "%v\n", tok)
	}

	return b
}

func IR(b []byte, code []ir.Instr) []byte {
	for _, ins := range code {
		b = hfmt.Appendf(b, "%v\n", ins)
	}

	return b
}

func Asm(b []byte, lines []string) []byte {
	for _, line := range lines {
		b = append(b, line...)
		b = append(b, '\n')
	}

	return b
}

// Program renders the AST back as MiniLang source.
func Program(b []byte, p ast.Program) ([]byte, error) {
	return stmts(b, p.Body, 0)
}

func stmts(b []byte, body []ast.Stmt, d int) (_ []byte, err error) {
	for _, s := range body {
		b, err = stmt(b, s, d)
		if err != nil {
			return nil, err
		}
	}

	return b, nil
}

func stmt(b []byte, x ast.Stmt, d int) (_ []byte, err error) {
	b = indent(b, d)

	switch x := x.(type) {
	case ast.Read:
		b = hfmt.Appendf(b, "read %v;\n", x.Name)
	case ast.Print:
		b = append(b, "print "...)

		b, err = expr(b, x.Expr)
		if err != nil {
			return nil, err
		}

		b = append(b, ";\n"...)
	case ast.Assign:
		b = hfmt.Appendf(b, "%v = ", x.Name)

		b, err = expr(b, x.Expr)
		if err != nil {
			return nil, err
		}

		b = append(b, ";\n"...)
	case ast.IfElse:
		b = append(b, "if "...)

		b, err = expr(b, x.Cond)
		if err != nil {
			return nil, err
		}

		b = append(b, " {\n"...)

		b, err = stmts(b, x.Then, d+1)
		if err != nil {
			return nil, err
		}

		b = indent(b, d)
		b = append(b, "} else {\n"...)

		b, err = stmts(b, x.Else, d+1)
		if err != nil {
			return nil, err
		}

		b = indent(b, d)
		b = append(b, "}\n"...)
	case ast.While:
		b = append(b, "while "...)

		b, err = expr(b, x.Cond)
		if err != nil {
			return nil, err
		}

		b = append(b, " {\n"...)

		b, err = stmts(b, x.Body, d+1)
		if err != nil {
			return nil, err
		}

		b = indent(b, d)
		b = append(b, "}\n"...)
	default:
		return nil, errors.New("unsupported statement: %T", x)
	}

	return b, nil
}

func expr(b []byte, x ast.Expr) (_ []byte, err error) {
	switch x := x.(type) {
	case ast.Number:
		b = hfmt.Appendf(b, "%d", x.Value)
	case ast.Var:
		b = append(b, x.Name...)
	case ast.Unary:
		b = append(b, '-')

		b, err = paren(b, x.Expr)
		if err != nil {
			return nil, err
		}
	case ast.Binary:
		b, err = paren(b, x.Left)
		if err != nil {
			return nil, err
		}

		b = hfmt.Appendf(b, " %v ", x.Op)

		b, err = paren(b, x.Right)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported expression: %T", x)
	}

	return b, nil
}

// paren wraps compound subexpressions so precedence survives the round trip.
func paren(b []byte, x ast.Expr) (_ []byte, err error) {
	switch x.(type) {
	case ast.Number, ast.Var:
		return expr(b, x)
	}

	b = append(b, '(')

	b, err = expr(b, x)
	if err != nil {
		return nil, err
	}

	b = append(b, ')')

	return b, nil
}

func indent(b []byte, d int) []byte {
	for i := 0; i < d; i++ {
		b = append(b, "    "...)
	}

	return b
}

// Machine renders the linked program with deterministic table ordering.
func Machine(b []byte, p *asm.Program) []byte {
	b = append(b, "CODE:"...)

	for _, v := range p.Code {
		b = hfmt.Appendf(b, " %d", v)
	}

	b = append(b, '\n')

	b = append(b, "SYMS:"...)
	for _, name := range sortedKeys(p.SymAddrs) {
		b = hfmt.Appendf(b, " %v=%d", name, p.SymAddrs[name])
	}
	b = append(b, '\n')

	b = append(b, "MEM_INIT:"...)

	addrs := make([]int64, 0, len(p.MemInit))
	for addr := range p.MemInit {
		addrs = append(addrs, addr)
	}

	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	for _, addr := range addrs {
		b = hfmt.Appendf(b, " %d=%d", addr, p.MemInit[addr])
	}
	b = append(b, '\n')

	b = append(b, "LABELS:"...)
	for _, name := range sortedKeys(p.Labels) {
		b = hfmt.Appendf(b, " %v=%d", name, p.Labels[name])
	}
	b = append(b, '\n')

	return b
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
