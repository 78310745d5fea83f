// Package vm interprets linked machine programs. The machine is a single
// accumulator over a linear memory array; the program counter advances by
// two per step, opcode then operand.
package vm

import (
	"context"
	"fmt"

	"tlog.app/go/tlog"

	"github.com/minilang/mini/compiler/asm"
)

type (
	// InputSource supplies the next value for an IN instruction. It must
	// return ErrNoInput (possibly wrapped) when exhausted.
	InputSource func() (int64, error)

	// Snapshot is one trace entry, taken after an instruction executed.
	// Mem holds the first 32 cells at most.
	Snapshot struct {
		PC  int
		Op  int64
		Arg int64
		Acc int64
		Mem []int64
	}

	Result struct {
		Outputs []int64
		Trace   []Snapshot
	}

	// Machine state lives for one Run call.
	Machine struct {
		code []int64
		pc   int
		acc  int64
		mem  []int64

		outputs []int64

		input InputSource

		traceOn bool
		trace   []Snapshot
	}

	DivideByZeroError struct {
		PC int
	}

	UnknownOpcodeError struct {
		Op int64
		PC int
	}

	// BadAddressError reports a memory operand outside the allocated
	// cells or a negative jump target. Linked programs never produce
	// one; hand-written numeric operands can.
	BadAddressError struct {
		Addr int64
		PC   int
	}

	InputError struct {
		PC  int
		Err error
	}
)

// ErrNoInput reports an exhausted input source.
var ErrNoInput = fmt.Errorf("insufficient input")

// New prepares a machine for the program. Memory is sized from the linked
// symbol addresses and pre-populated with the constant pool.
func New(p *asm.Program, input InputSource, trace bool) *Machine {
	m := &Machine{
		code:    p.Code,
		mem:     make([]int64, p.MemSize()),
		input:   input,
		traceOn: trace,
	}

	for addr, val := range p.MemInit {
		if addr >= 0 && addr < int64(len(m.mem)) {
			m.mem[addr] = val
		}
	}

	return m
}

// Inputs is a fixed-list input source.
func Inputs(vals ...int64) InputSource {
	i := 0

	return func() (int64, error) {
		if i >= len(vals) {
			return 0, ErrNoInput
		}

		v := vals[i]
		i++

		return v, nil
	}
}

// Run executes until HALT, the end of code, or a runtime error. Outputs
// produced before a failure are preserved in the result. There is no step
// budget: a diverging program runs until the caller gives up.
func (m *Machine) Run(ctx context.Context) (Result, error) {
	tr := tlog.SpanFromContext(ctx)

loop:
	for m.pc < len(m.code) {
		op := m.code[m.pc]

		arg := int64(-1)
		if m.pc+1 < len(m.code) {
			arg = m.code[m.pc+1]
		}

		m.pc += 2

		switch op {
		case asm.OpLoad, asm.OpStore, asm.OpAdd, asm.OpSub, asm.OpMul, asm.OpDiv, asm.OpIn, asm.OpOut:
			if arg < 0 || arg >= int64(len(m.mem)) {
				return m.result(), BadAddressError{Addr: arg, PC: m.pc - 2}
			}
		case asm.OpJmp, asm.OpJlt, asm.OpJgt, asm.OpJle, asm.OpJge, asm.OpJeq, asm.OpJne:
			if arg < 0 {
				return m.result(), BadAddressError{Addr: arg, PC: m.pc - 2}
			}
		}

		switch op {
		case asm.OpLoad:
			m.acc = m.mem[arg]
		case asm.OpStore:
			m.mem[arg] = m.acc
		case asm.OpAdd:
			m.acc += m.mem[arg]
		case asm.OpSub:
			m.acc -= m.mem[arg]
		case asm.OpMul:
			m.acc *= m.mem[arg]
		case asm.OpDiv:
			if m.mem[arg] == 0 {
				return m.result(), DivideByZeroError{PC: m.pc - 2}
			}

			// truncates toward zero, same as constant folding
			m.acc /= m.mem[arg]
		case asm.OpJmp:
			m.pc = int(arg) * 2
		case asm.OpJlt:
			if m.acc < 0 {
				m.pc = int(arg) * 2
			}
		case asm.OpJgt:
			if m.acc > 0 {
				m.pc = int(arg) * 2
			}
		case asm.OpJle:
			if m.acc <= 0 {
				m.pc = int(arg) * 2
			}
		case asm.OpJge:
			if m.acc >= 0 {
				m.pc = int(arg) * 2
			}
		case asm.OpJeq:
			if m.acc == 0 {
				m.pc = int(arg) * 2
			}
		case asm.OpJne:
			if m.acc != 0 {
				m.pc = int(arg) * 2
			}
		case asm.OpIn:
			if m.input == nil {
				return m.result(), InputError{PC: m.pc - 2, Err: ErrNoInput}
			}

			v, err := m.input()
			if err != nil {
				return m.result(), InputError{PC: m.pc - 2, Err: err}
			}

			m.mem[arg] = v
		case asm.OpOut:
			m.outputs = append(m.outputs, m.mem[arg])
		case asm.OpHalt:
			break loop
		default:
			return m.result(), UnknownOpcodeError{Op: op, PC: m.pc - 2}
		}

		if m.traceOn {
			m.snapshot(op, arg)
		}
	}

	tr.Printw("vm finished", "outputs", len(m.outputs), "steps_traced", len(m.trace))

	return m.result(), nil
}

func (m *Machine) snapshot(op, arg int64) {
	n := len(m.mem)
	if n > 32 {
		n = 32
	}

	mem := make([]int64, n)
	copy(mem, m.mem[:n])

	m.trace = append(m.trace, Snapshot{
		PC:  m.pc,
		Op:  op,
		Arg: arg,
		Acc: m.acc,
		Mem: mem,
	})
}

func (m *Machine) result() Result {
	return Result{
		Outputs: m.outputs,
		Trace:   m.trace,
	}
}

func (e DivideByZeroError) Error() string {
	return fmt.Sprintf("division by zero at pc=%d", e.PC)
}

func (e UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %d at pc=%d", e.Op, e.PC)
}

func (e BadAddressError) Error() string {
	return fmt.Sprintf("bad address %d at pc=%d", e.Addr, e.PC)
}

func (e InputError) Error() string {
	return fmt.Sprintf("input at pc=%d: %v", e.PC, e.Err)
}

func (e InputError) Unwrap() error {
	return e.Err
}
