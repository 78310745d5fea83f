package compiler

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minilang/mini/compiler/front"
	"github.com/minilang/mini/compiler/vm"
)

func compileAndRun(t *testing.T, src string, optimize bool, inputs ...int64) ([]int64, error) {
	t.Helper()

	ctx := context.Background()

	res, err := Compile(ctx, src, optimize)
	require.NoError(t, err)

	out, err := Execute(ctx, res.Machine, vm.Inputs(inputs...), false)

	return out.Outputs, err
}

func TestArithmeticPrecedence(t *testing.T) {
	out, err := compileAndRun(t, "a = 2 + 3 * 4; print a; end", true)
	require.NoError(t, err)

	assert.Equal(t, []int64{14}, out)
}

func TestFullPipeline(t *testing.T) {
	src := `read a;
read b;
c = a + b * 2;
if c >= 10 {
    print c;
} else {
    print 0;
}
i = 0;
while i < c {
    print i;
    i = i + 1;
}
end
`

	for _, optimize := range []bool{true, false} {
		out, err := compileAndRun(t, src, optimize, 3, 7)
		require.NoError(t, err)

		require.Len(t, out, 18)
		assert.Equal(t, int64(17), out[0])
		assert.Equal(t, int64(0), out[1])
		assert.Equal(t, int64(16), out[17])
	}
}

func TestStagesInspectable(t *testing.T) {
	ctx := context.Background()

	res, err := Compile(ctx, "read a; print a; end", true)
	require.NoError(t, err)

	assert.NotEmpty(t, res.Tokens)
	assert.Equal(t, front.EOF, res.Tokens[len(res.Tokens)-1].Kind)
	assert.Len(t, res.AST.Body, 2)
	assert.NotEmpty(t, res.IR)
	assert.NotEmpty(t, res.Asm)
	require.NotNil(t, res.Machine)
	assert.Contains(t, res.Machine.SymAddrs, "a")
	assert.Contains(t, res.Machine.Labels, "END")
}

func TestWarningsSurfaced(t *testing.T) {
	ctx := context.Background()

	res, err := Compile(ctx, "print x; end", true)
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "variable 'x' may be used before initialization", res.Warnings[0])
}

func TestDivisionByZeroAtRuntime(t *testing.T) {
	for _, optimize := range []bool{true, false} {
		out, err := compileAndRun(t, "x = 1 / 0; print x; end", optimize)

		var derr vm.DivideByZeroError
		require.ErrorAs(t, err, &derr, "optimize=%v", optimize)
		assert.Empty(t, out)
	}
}

func TestUnterminatedBlockCommentFailsLexing(t *testing.T) {
	ctx := context.Background()

	_, err := Compile(ctx, "/* never closes", true)

	var lerr front.LexError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 1, lerr.Line)
}

func TestLexErrorFromPipeline(t *testing.T) {
	ctx := context.Background()

	_, err := Compile(ctx, "a = 1 ! 2; end", true)

	var lerr front.LexError
	require.ErrorAs(t, err, &lerr)
}

func TestParseErrorFromPipeline(t *testing.T) {
	ctx := context.Background()

	_, err := Compile(ctx, "if a { b = 1; } end", true)

	var perr front.ParseError
	require.ErrorAs(t, err, &perr)
}

// Folding must be observably transparent: same outputs with and without it.
func TestFoldingTransparency(t *testing.T) {
	for _, tc := range []struct {
		name   string
		src    string
		inputs []int64
	}{
		{"constants", "a = 2 + 3 * 4; print a; print -a; end", nil},
		{"dead branch", "if 1 < 2 { print 10; } else { print 20; } end", nil},
		{"mixed", "read a; b = a * (2 + 2); if b == 8 { print 1; } else { print b; } end", []int64{2}},
		{"loop", "i = 10 - 10; while i < 2 + 1 { print i; i = i + 1; } end", nil},
		{"negative division", "print -7 / 2; print 0 - 7 / 2; end", nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			plain, err := compileAndRun(t, tc.src, false, tc.inputs...)
			require.NoError(t, err)

			folded, err := compileAndRun(t, tc.src, true, tc.inputs...)
			require.NoError(t, err)

			assert.Equal(t, plain, folded)
		})
	}
}

// Every relational operator must produce 1 exactly when the relation holds.
func TestRelationalOperators(t *testing.T) {
	rel := map[string]func(a, b int64) bool{
		"==": func(a, b int64) bool { return a == b },
		"!=": func(a, b int64) bool { return a != b },
		"<":  func(a, b int64) bool { return a < b },
		">":  func(a, b int64) bool { return a > b },
		"<=": func(a, b int64) bool { return a <= b },
		">=": func(a, b int64) bool { return a >= b },
	}

	vals := []int64{-3, -1, 0, 1, 2, 7}

	for op, holds := range rel {
		src := fmt.Sprintf("read a; read b; c = a %v b; print c; end", op)

		for _, a := range vals {
			for _, b := range vals {
				out, err := compileAndRun(t, src, false, a, b)
				require.NoError(t, err)
				require.Len(t, out, 1)

				want := int64(0)
				if holds(a, b) {
					want = 1
				}

				assert.Equal(t, want, out[0], "%d %v %d", a, op, b)
			}
		}
	}
}

// A variable named like a generated jump label must keep its own memory
// cell instead of aliasing the label's instruction index.
func TestVariableNamedLikeLabel(t *testing.T) {
	src := "read L1; if L1 { print L1; } else { print 0; } end"

	for _, optimize := range []bool{true, false} {
		out, err := compileAndRun(t, src, optimize, 5)
		require.NoError(t, err, "optimize=%v", optimize)

		assert.Equal(t, []int64{5}, out, "optimize=%v", optimize)
	}
}

func TestExecuteTrace(t *testing.T) {
	ctx := context.Background()

	res, err := Compile(ctx, "a = 1; print a; end", true)
	require.NoError(t, err)

	plain, err := Execute(ctx, res.Machine, nil, false)
	require.NoError(t, err)

	traced, err := Execute(ctx, res.Machine, nil, true)
	require.NoError(t, err)

	assert.Empty(t, plain.Trace)
	assert.NotEmpty(t, traced.Trace)
	assert.Equal(t, plain.Outputs, traced.Outputs)
}

func TestExecuteInsufficientInput(t *testing.T) {
	ctx := context.Background()

	res, err := Compile(ctx, "read a; read b; print a; end", true)
	require.NoError(t, err)

	_, err = Execute(ctx, res.Machine, vm.Inputs(1), false)

	require.ErrorIs(t, err, vm.ErrNoInput)
}

func TestCompileFailureLeavesNoResult(t *testing.T) {
	ctx := context.Background()

	res, err := Compile(ctx, "a = ; end", true)

	require.Error(t, err)
	assert.Nil(t, res)
}
