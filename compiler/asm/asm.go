// Package asm assembles accumulator-machine assembly text and links it into
// a flat numeric program.
//
// The text format is line oriented: one instruction per line, mnemonic
// first, optional operand second. Blank lines and lines starting with '#'
// are ignored. `LABEL <name>` is the only non-executable directive; it
// records the current instruction index under that name.
package asm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Fixed opcode numbering. Persisted machine programs rely on these values,
// so they must never change.
const (
	OpLoad  = 1
	OpStore = 2
	OpAdd   = 3
	OpSub   = 4
	OpMul   = 5
	OpDiv   = 6
	OpJmp   = 7
	OpJlt   = 8
	OpJgt   = 9
	OpJle   = 10
	OpJge   = 11
	OpJeq   = 12
	OpJne   = 13
	OpIn    = 14
	OpOut   = 15
	OpHalt  = 16
)

var opcodes = map[string]int64{
	"LOAD":  OpLoad,
	"STORE": OpStore,
	"ADD":   OpAdd,
	"SUB":   OpSub,
	"MUL":   OpMul,
	"DIV":   OpDiv,
	"JMP":   OpJmp,
	"JLT":   OpJlt,
	"JGT":   OpJgt,
	"JLE":   OpJle,
	"JGE":   OpJge,
	"JEQ":   OpJeq,
	"JNE":   OpJne,
	"IN":    OpIn,
	"OUT":   OpOut,
	"HALT":  OpHalt,
}

// memory-referencing opcodes whose symbolic operands need addresses
var memOps = map[string]struct{}{
	"LOAD": {}, "STORE": {}, "ADD": {}, "SUB": {},
	"MUL": {}, "DIV": {}, "IN": {}, "OUT": {},
}

// jump opcodes whose symbolic operands are label references
var jumpOps = map[string]struct{}{
	"JMP": {}, "JLT": {}, "JGT": {}, "JLE": {},
	"JGE": {}, "JEQ": {}, "JNE": {},
}

type (
	// Instr is one assembled instruction before linking. Operand is ""
	// when the mnemonic takes none.
	Instr struct {
		Op      string
		Operand string
	}

	// Program is the linked, immutable artifact: code as interleaved
	// (opcode, operand) pairs, plus the tables needed to execute and
	// inspect it.
	Program struct {
		Code     []int64
		SymAddrs map[string]int64
		MemInit  map[int64]int64
		Labels   map[string]int64
	}

	Assembler struct {
		instrs []Instr
		labels map[string]int64
		syms   map[string]struct{}
	}

	LinkError struct {
		Msg string
	}
)

func New() *Assembler {
	return &Assembler{
		labels: make(map[string]int64),
		syms:   make(map[string]struct{}),
	}
}

// Assemble parses the text lines into instructions, records label addresses
// and collects the symbols that will need memory.
func (a *Assembler) Assemble(lines []string) ([]Instr, map[string]int64, map[string]struct{}, error) {
	pc := int64(0)

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)

		if strings.ToUpper(parts[0]) == "LABEL" {
			if len(parts) != 2 {
				return nil, nil, nil, newLinkError("invalid LABEL syntax: %v", line)
			}

			a.labels[parts[1]] = pc

			continue
		}

		op := strings.ToUpper(parts[0])

		operand := ""
		if len(parts) > 1 {
			operand = parts[1]
		}

		if operand != "" && !isNumeral(operand) {
			if _, ok := memOps[op]; ok {
				a.syms[operand] = struct{}{}
			}
		}

		a.instrs = append(a.instrs, Instr{Op: op, Operand: operand})
		pc++
	}

	return a.instrs, a.labels, a.syms, nil
}

// Link allocates a memory address for every symbol and constant in
// lexicographic order, then rewrites operands into resolved integers.
// Resolution is per opcode class: jump operands against labels, memory
// operands against symbol addresses, numerals unchanged either way. A
// variable may therefore share its name with a label without the two
// aliasing each other.
func (a *Assembler) Link(instrs []Instr, labels map[string]int64, syms map[string]struct{}, constValues map[string]int64) (*Program, error) {
	all := make([]string, 0, len(syms)+len(constValues))

	for s := range syms {
		all = append(all, s)
	}

	for s := range constValues {
		if _, ok := syms[s]; !ok {
			all = append(all, s)
		}
	}

	sort.Strings(all)

	symAddrs := make(map[string]int64, len(all))
	memInit := make(map[int64]int64)

	for addr, s := range all {
		symAddrs[s] = int64(addr)

		if v, ok := constValues[s]; ok {
			memInit[int64(addr)] = v
		}
	}

	code := make([]int64, 0, 2*len(instrs))

	for _, ins := range instrs {
		opcode, ok := opcodes[ins.Op]
		if !ok {
			return nil, newLinkError("unknown opcode: %v", ins.Op)
		}

		operand := int64(-1)

		switch {
		case ins.Operand == "":
		case isJumpOp(ins.Op) && hasKey(labels, ins.Operand):
			operand = labels[ins.Operand]
		case !isJumpOp(ins.Op) && hasKey(symAddrs, ins.Operand):
			operand = symAddrs[ins.Operand]
		case isNumeral(ins.Operand):
			operand, _ = strconv.ParseInt(ins.Operand, 10, 64)
		case isJumpOp(ins.Op):
			return nil, newLinkError("unresolved jump target: %v", ins.Operand)
		default:
			return nil, newLinkError("unresolved operand: %v", ins.Operand)
		}

		code = append(code, opcode, operand)
	}

	return &Program{
		Code:     code,
		SymAddrs: symAddrs,
		MemInit:  memInit,
		Labels:   labels,
	}, nil
}

// MemSize is the number of memory cells the program needs, at least one.
func (p *Program) MemSize() int {
	max := int64(0)

	for _, addr := range p.SymAddrs {
		if addr+1 > max {
			max = addr + 1
		}
	}

	if max < 1 {
		max = 1
	}

	return int(max)
}

func hasKey(m map[string]int64, k string) bool {
	_, ok := m[k]
	return ok
}

func isJumpOp(op string) bool {
	_, ok := jumpOps[op]
	return ok
}

func isNumeral(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func newLinkError(format string, args ...any) error {
	return LinkError{Msg: fmt.Sprintf(format, args...)}
}

func (e LinkError) Error() string {
	return e.Msg
}
