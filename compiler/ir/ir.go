// Package ir defines the three-address code the AST lowers into and the
// generator producing it.
package ir

import "fmt"

type (
	Op string

	OperandKind int

	// Operand is either absent, an integer literal, a symbol (variable or
	// temporary), or a label reference. The tag is fixed at generation
	// time, so later stages never have to guess from the text.
	Operand struct {
		Kind OperandKind
		Name string
		Val  int64
	}

	// Instr has up to two source operands and an optional result symbol.
	Instr struct {
		Op  Op
		A1  Operand
		A2  Operand
		Res string
	}
)

const (
	None OperandKind = iota
	Lit
	Sym
	Label
)

const (
	Assign Op = "assign"
	UMinus Op = "uminus"
	IfNZ   Op = "ifnz"
	Goto   Op = "goto"
	Lab    Op = "label"
	Read   Op = "read"
	Print  Op = "print"

	Add Op = "+"
	Sub Op = "-"
	Mul Op = "*"
	Div Op = "/"
	Eq  Op = "=="
	Neq Op = "!="
	Lt  Op = "<"
	Gt  Op = ">"
	Le  Op = "<="
	Ge  Op = ">="
)

func Literal(v int64) Operand {
	return Operand{Kind: Lit, Val: v}
}

func Symbol(name string) Operand {
	return Operand{Kind: Sym, Name: name}
}

func LabelRef(name string) Operand {
	return Operand{Kind: Label, Name: name}
}

func (o Operand) String() string {
	switch o.Kind {
	case None:
		return "_"
	case Lit:
		return fmt.Sprintf("%d", o.Val)
	default:
		return o.Name
	}
}

func (i Instr) String() string {
	s := string(i.Op)

	if i.A1.Kind != None {
		s += " " + i.A1.String()
	}

	if i.A2.Kind != None {
		s += " " + i.A2.String()
	}

	if i.Res != "" {
		s += " " + i.Res
	}

	return s
}
